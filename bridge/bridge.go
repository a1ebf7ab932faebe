package bridge

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/com-bridge/abi"
	"github.com/wippyai/com-bridge/hstring"
	"github.com/wippyai/com-bridge/registry"
	"github.com/wippyai/com-bridge/vtable"
)

// Bridge ties the projection pieces together: an instance registry, a
// string pool, and a vtable builder over both. One Bridge stands for one
// boundary; Default() is the process-wide instance.
type Bridge struct {
	Registry *registry.Table
	Strings  *hstring.Pool
	builder  *vtable.Builder
}

var (
	defaultOnce   sync.Once
	defaultBridge *Bridge
)

// New creates an independent bridge with its own registry and pool.
func New() *Bridge {
	reg := registry.NewTable()
	pool := hstring.NewPool()
	return &Bridge{
		Registry: reg,
		Strings:  pool,
		builder:  vtable.NewBuilder(reg, pool),
	}
}

// Default returns the process-wide bridge. Vtables built through it live
// for the rest of the process.
func Default() *Bridge {
	defaultOnce.Do(func() {
		defaultBridge = New()
	})
	return defaultBridge
}

// Builder returns the bridge's vtable builder.
func (b *Bridge) Builder() *vtable.Builder {
	return b.builder
}

// Vtable returns the (lazily built, cached) vtable for a descriptor.
func (b *Bridge) Vtable(desc *abi.Descriptor) (*vtable.Vtable, error) {
	return b.builder.GetOrBuild(desc)
}

// Expose projects a host object through an interface descriptor: the
// object's handlers are bound and validated, the vtable is built or
// fetched, and a dispatch handle is registered for native callers.
func (b *Bridge) Expose(obj any, desc *abi.Descriptor) (abi.Handle, *vtable.Vtable, error) {
	vt, err := b.builder.GetOrBuild(desc)
	if err != nil {
		return 0, nil, err
	}

	inst, err := vtable.Bind(obj, desc)
	if err != nil {
		return 0, nil, err
	}

	h, err := b.Registry.Expose(inst)
	if err != nil {
		return 0, nil, err
	}

	Logger().Debug("instance exposed",
		zap.String("interface", string(desc.ID)),
		zap.Uint64("handle", uint64(h)))
	return h, vt, nil
}

// Revoke invalidates a dispatch handle. Subsequent resolutions fail with
// a not-found condition; the handle can never reach a recycled instance.
func (b *Bridge) Revoke(h abi.Handle) bool {
	_, ok := b.Registry.Revoke(h)
	if ok {
		Logger().Debug("instance revoked", zap.Uint64("handle", uint64(h)))
	}
	return ok
}

// Close revokes all instances. Vtables stay valid (they hold no instance
// state) but every dispatch through them fails with not-found.
func (b *Bridge) Close() error {
	return b.Registry.Close()
}
