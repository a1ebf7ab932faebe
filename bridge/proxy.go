package bridge

import (
	"github.com/wippyai/com-bridge/abi"
	"github.com/wippyai/com-bridge/errors"
	"github.com/wippyai/com-bridge/hstring"
	"github.com/wippyai/com-bridge/status"
	"github.com/wippyai/com-bridge/vtable"
)

// Proxy is the outward path: it lets host code call through a vtable the
// way a native caller would, and converts failing status codes back into
// descriptive Go errors via the error channel.
type Proxy struct {
	bridge *Bridge
	vt     *vtable.Vtable
	this   abi.Handle
}

// Proxy wraps a dispatch handle and vtable for outward calls.
func (b *Bridge) Proxy(this abi.Handle, vt *vtable.Vtable) *Proxy {
	return &Proxy{bridge: b, vt: vt, this: this}
}

// Handle returns the dispatch handle the proxy targets.
func (p *Proxy) Handle() abi.Handle {
	return p.this
}

// Call invokes a method slot by name. Argument strings are allocated for
// the callee and freed again by the proxy once the call returns (the
// caller owns what it passes in); result strings arrive as callee-
// allocated handles that the proxy reads and frees (the caller owns what
// it receives).
func (p *Proxy) Call(method string, args ...any) ([]any, error) {
	slot := p.vt.Descriptor().MethodIndex(method)
	if slot < 0 {
		return nil, errors.NotFound(errors.PhaseOutbound, "method "+method, p.vt.Descriptor().ID)
	}
	m, _ := p.vt.MethodAt(slot)
	return p.invoke(slot, m, args)
}

// QueryInterface asks the instance whether it implements an interface,
// returning its dispatch handle when it does.
func (p *Proxy) QueryInterface(id abi.InterfaceID) (abi.Handle, error) {
	m, _ := p.vt.MethodAt(abi.SlotQueryInterface)
	results, err := p.invoke(abi.SlotQueryInterface, m, []any{string(id)})
	if err != nil {
		return 0, err
	}
	return abi.Handle(results[0].(uint64)), nil
}

// AddRef invokes the reserved add-ref slot.
func (p *Proxy) AddRef() (uint32, error) {
	return p.refCount(abi.SlotAddRef)
}

// Release invokes the reserved release slot.
func (p *Proxy) Release() (uint32, error) {
	return p.refCount(abi.SlotRelease)
}

func (p *Proxy) refCount(slot int) (uint32, error) {
	m, _ := p.vt.MethodAt(slot)
	results, err := p.invoke(slot, m, nil)
	if err != nil {
		return 0, err
	}
	return results[0].(uint32), nil
}

func (p *Proxy) invoke(slot int, m abi.Method, args []any) ([]any, error) {
	if len(args) != len(m.Params) {
		return nil, errors.New(errors.PhaseOutbound, errors.KindInvalidInput).
			Path(string(p.vt.Descriptor().ID), m.Name).
			Detail("want %d arguments, got %d", len(m.Params), len(args)).
			Build()
	}

	pw := m.ParamWords()
	stack := make([]abi.Word, m.StackWords())

	// Argument handles this side owns and must free after the call.
	var argHandles []hstring.Handle
	free := func() {
		for _, h := range argHandles {
			_ = p.bridge.Strings.Free(h)
		}
	}

	for j, t := range m.Params {
		if abi.IsString(t) {
			s, ok := args[j].(string)
			if !ok {
				free()
				return nil, errors.TypeMismatch(errors.PhaseOutbound,
					[]string{string(p.vt.Descriptor().ID), m.Name}, typeName(args[j]), "string")
			}
			h, err := p.bridge.Strings.Alloc(s)
			if err != nil {
				free()
				return nil, err
			}
			if h != 0 {
				argHandles = append(argHandles, h)
			}
			stack[j] = abi.Word(h)
			continue
		}
		w, err := abi.EncodeWord(t, args[j])
		if err != nil {
			free()
			return nil, err
		}
		stack[j] = w
	}

	thunk := p.vt.Slot(slot)
	if thunk == nil {
		free()
		return nil, errors.OutOfBounds(errors.PhaseOutbound,
			[]string{string(p.vt.Descriptor().ID)}, slot, p.vt.NumSlots())
	}

	st := thunk(p.this, stack)
	free()
	if err := status.ToError(st); err != nil {
		return nil, err
	}

	results := make([]any, len(m.Results))
	for j, t := range m.Results {
		w := stack[pw+j]
		if abi.IsString(t) {
			// Callee-allocated handle: read it, then free it - this side
			// owns handles it receives as outputs.
			h := hstring.Handle(w)
			s, err := p.bridge.Strings.Get(h)
			if err != nil {
				return nil, err
			}
			_ = p.bridge.Strings.Free(h)
			results[j] = s
			continue
		}
		v, err := abi.DecodeWord(t, w)
		if err != nil {
			return nil, err
		}
		results[j] = v
	}
	return results, nil
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	switch v.(type) {
	case string:
		return "string"
	default:
		return "non-string"
	}
}
