package vtable

import (
	"go.bytecodealliance.org/wit"

	combridge "github.com/wippyai/com-bridge"
	"github.com/wippyai/com-bridge/abi"
	"github.com/wippyai/com-bridge/errors"
	"github.com/wippyai/com-bridge/hstring"
	"github.com/wippyai/com-bridge/status"
)

// ReservedMethods returns the wire signatures of the three reserved slots
// every vtable starts with: identity query, add-ref, release.
func ReservedMethods() [abi.NumReservedSlots]abi.Method {
	return [abi.NumReservedSlots]abi.Method{
		{Name: "query-interface", Params: []wit.Type{wit.String{}}, Results: []wit.Type{wit.U64{}}},
		{Name: "add-ref", Results: []wit.Type{wit.U32{}}},
		{Name: "release", Results: []wit.Type{wit.U32{}}},
	}
}

// baseThunks returns the shared reserved-slot thunks. They are built once
// per builder and copied into every vtable, never regenerated per
// interface: identity comes from the resolved instance, not the table.
func (b *Builder) baseThunks() [abi.NumReservedSlots]abi.Thunk {
	b.baseOnce.Do(func() {
		b.base = [abi.NumReservedSlots]abi.Thunk{
			b.queryInterfaceThunk(),
			b.refCountThunk(true),
			b.refCountThunk(false),
		}
	})
	return b.base
}

// queryInterfaceThunk answers identity queries: stack[0] holds the
// requested interface ID as a string handle, stack[1] receives the
// instance handle when the interface matches.
func (b *Builder) queryInterfaceThunk() abi.Thunk {
	return func(this abi.Handle, stack []abi.Word) (st abi.Status) {
		if len(stack) < 2 {
			return status.FromError(errors.OutOfBounds(errors.PhaseDispatch,
				[]string{"query-interface"}, 2, len(stack)))
		}
		stack[1] = 0

		defer func() {
			if r := recover(); r != nil {
				stack[1] = 0
				st = status.FromError(errors.Wrap(errors.PhaseDispatch,
					errors.KindUnspecified, nil, "panic in query-interface"))
			}
		}()

		requested, err := b.strings.Get(hstring.Handle(stack[0]))
		if err != nil {
			return status.FromError(err)
		}

		v, err := b.registry.Resolve(this)
		if err != nil {
			return status.FromError(err)
		}
		inst, ok := v.(*Instance)
		if !ok {
			return status.FromError(errors.NotFound(errors.PhaseResolve, "bound instance", this))
		}

		if inst.desc.ID != abi.InterfaceID(requested) {
			return status.FromError(errors.New(errors.PhaseResolve, errors.KindNoInterface).
				Path(requested).
				Detail("instance implements %s", inst.desc.ID).
				Build())
		}
		stack[1] = abi.Word(this)
		status.Set(nil)
		return abi.OK
	}
}

// refCountThunk builds the add-ref or release thunk. Reference counting
// is owned by the caller's external scheme: objects implementing
// combridge.RefCounter are delegated to, everything else reports a
// neutral count of 1.
func (b *Builder) refCountThunk(add bool) abi.Thunk {
	return func(this abi.Handle, stack []abi.Word) (st abi.Status) {
		if len(stack) < 1 {
			return status.FromError(errors.OutOfBounds(errors.PhaseDispatch,
				[]string{"ref-count"}, 1, len(stack)))
		}
		stack[0] = 0

		defer func() {
			if r := recover(); r != nil {
				stack[0] = 0
				st = status.FromError(errors.Wrap(errors.PhaseDispatch,
					errors.KindUnspecified, nil, "panic in ref-count slot"))
			}
		}()

		v, err := b.registry.Resolve(this)
		if err != nil {
			return status.FromError(err)
		}

		count := uint32(1)
		if inst, ok := v.(*Instance); ok {
			if rc, ok := inst.obj.(combridge.RefCounter); ok {
				if add {
					count = rc.AddRef()
				} else {
					count = rc.Release()
				}
			}
		}
		stack[0] = abi.Word(count)
		status.Set(nil)
		return abi.OK
	}
}
