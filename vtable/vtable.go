package vtable

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/com-bridge/abi"
	"github.com/wippyai/com-bridge/hstring"
	"github.com/wippyai/com-bridge/registry"
)

// Vtable is the per-interface slot table handed to native callers. It is
// immutable once published and lives as long as its builder: callers may
// cache the pointer and any slot for the life of the process.
type Vtable struct {
	desc  *abi.Descriptor
	slots []abi.Thunk
}

// Descriptor returns the interface identity the table was built for.
func (v *Vtable) Descriptor() *abi.Descriptor {
	return v.desc
}

// NumSlots returns the slot count, reserved slots included.
func (v *Vtable) NumSlots() int {
	return len(v.slots)
}

// Slot returns the thunk at a slot index, or nil if out of range.
func (v *Vtable) Slot(i int) abi.Thunk {
	if i < 0 || i >= len(v.slots) {
		return nil
	}
	return v.slots[i]
}

// MethodAt returns the wire signature of a slot, reserved slots included.
func (v *Vtable) MethodAt(i int) (abi.Method, bool) {
	if i < 0 || i >= len(v.slots) {
		return abi.Method{}, false
	}
	if i < abi.NumReservedSlots {
		return ReservedMethods()[i], true
	}
	return v.desc.Methods[i-abi.NumReservedSlots], true
}

// Builder constructs vtables lazily, exactly once per interface identity,
// and wires their thunks to an instance registry and string pool.
type Builder struct {
	registry *registry.Table
	strings  *hstring.Pool
	tables   sync.Map // abi.InterfaceID -> *tableEntry
	baseOnce sync.Once
	base     [abi.NumReservedSlots]abi.Thunk
	builds   atomic.Uint64
}

type tableEntry struct {
	once sync.Once
	vt   *Vtable
	err  error
}

// NewBuilder creates a builder over the given registry and string pool.
func NewBuilder(reg *registry.Table, pool *hstring.Pool) *Builder {
	return &Builder{
		registry: reg,
		strings:  pool,
	}
}

// Registry returns the instance registry the thunks resolve against.
func (b *Builder) Registry() *registry.Table {
	return b.registry
}

// Strings returns the string pool the thunks marshal through.
func (b *Builder) Strings() *hstring.Pool {
	return b.strings
}

// GetOrBuild returns the vtable for a descriptor, building it on first
// use. Concurrent first callers block for at most one build and all
// observe the identical pointer; a failed build publishes no partial
// table and is returned to every caller.
func (b *Builder) GetOrBuild(desc *abi.Descriptor) (*Vtable, error) {
	e := &tableEntry{}
	if actual, loaded := b.tables.LoadOrStore(desc.ID, e); loaded {
		e = actual.(*tableEntry)
	}
	e.once.Do(func() {
		e.vt, e.err = b.build(desc)
	})
	return e.vt, e.err
}

// Builds returns how many vtables this builder has constructed. Lookups
// that hit the cache do not count.
func (b *Builder) Builds() uint64 {
	return b.builds.Load()
}

func (b *Builder) build(desc *abi.Descriptor) (*Vtable, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	slots := make([]abi.Thunk, desc.NumSlots())
	base := b.baseThunks()
	copy(slots[:abi.NumReservedSlots], base[:])
	for i := range desc.Methods {
		slots[abi.NumReservedSlots+i] = b.methodThunk(desc, i)
	}

	b.builds.Add(1)
	Logger().Debug("vtable built",
		zap.String("interface", string(desc.ID)),
		zap.Int("slots", len(slots)))

	return &Vtable{desc: desc, slots: slots}, nil
}
