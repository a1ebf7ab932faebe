package vtable

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/wippyai/com-bridge/abi"
	"github.com/wippyai/com-bridge/errors"
	"github.com/wippyai/com-bridge/hstring"
	"github.com/wippyai/com-bridge/status"
)

// methodThunk builds the native-callable entry for one generated slot.
//
// The thunk's failure boundary is absolute: result words are zeroed before
// any work happens, every error and panic is routed through the status
// package, and on failure the result words are zeroed again with any
// half-marshalled string handles released. Nothing unwinds to the caller.
func (b *Builder) methodThunk(desc *abi.Descriptor, mi int) abi.Thunk {
	m := desc.Methods[mi]
	pw := m.ParamWords()
	rw := m.ResultWords()

	return func(this abi.Handle, stack []abi.Word) (st abi.Status) {
		if len(stack) < pw+rw {
			return status.FromError(errors.OutOfBounds(errors.PhaseDispatch,
				[]string{string(desc.ID), m.Name}, pw+rw, len(stack)))
		}
		out := stack[pw : pw+rw]
		zeroWords(out)

		var allocated []hstring.Handle
		defer func() {
			if r := recover(); r != nil {
				b.releaseAll(allocated)
				zeroWords(out)
				st = status.FromError(errors.Wrap(errors.PhaseDispatch, errors.KindUnspecified,
					fmt.Errorf("%v", r), "panic in host method "+m.Name))
			}
		}()

		inst, err := b.resolveInstance(this, desc)
		if err != nil {
			return status.FromError(err)
		}

		args, err := b.decodeArgs(desc, m, stack[:pw])
		if err != nil {
			return status.FromError(err)
		}

		results, err := inst.call(mi, args)
		if err != nil {
			Logger().Debug("host method failed",
				zap.String("interface", string(desc.ID)),
				zap.String("method", m.Name),
				zap.Error(err))
			return status.FromError(err)
		}

		if err := b.encodeResults(desc, m, results, out, &allocated); err != nil {
			b.releaseAll(allocated)
			zeroWords(out)
			return status.FromError(err)
		}

		// A successful call supersedes any record an earlier failure left
		// on this thread; without this a stale record could be attributed
		// to a later failure with the same code.
		status.Set(nil)
		return abi.OK
	}
}

// resolveInstance maps a dispatch handle to the bound instance it denotes
// and checks it actually implements this vtable's interface.
func (b *Builder) resolveInstance(this abi.Handle, desc *abi.Descriptor) (*Instance, error) {
	v, err := b.registry.Resolve(this)
	if err != nil {
		return nil, err
	}
	inst, ok := v.(*Instance)
	if !ok {
		return nil, errors.NotFound(errors.PhaseResolve, "bound instance", this)
	}
	if inst.desc.ID != desc.ID {
		return nil, errors.New(errors.PhaseResolve, errors.KindNoInterface).
			Path(string(desc.ID)).
			Detail("instance implements %s", inst.desc.ID).
			Build()
	}
	return inst, nil
}

// decodeArgs unmarshals parameter words into Go values. String handles
// received here are owned by the caller: they are read, never freed.
func (b *Builder) decodeArgs(desc *abi.Descriptor, m abi.Method, words []abi.Word) ([]reflect.Value, error) {
	args := make([]reflect.Value, len(m.Params))
	for j, t := range m.Params {
		var v any
		if abi.IsString(t) {
			s, err := b.strings.Get(hstring.Handle(words[j]))
			if err != nil {
				return nil, errors.Wrap(errors.PhaseMarshal, errors.KindNotFound, err,
					fmt.Sprintf("string argument %d of %s.%s", j, desc.ID, m.Name))
			}
			v = s
		} else {
			dv, err := abi.DecodeWord(t, words[j])
			if err != nil {
				return nil, err
			}
			v = dv
		}
		args[j] = reflect.ValueOf(v)
	}
	return args, nil
}

// encodeResults marshals handler results into the out words. String
// results are allocated from the pool and owned by the native caller;
// handles allocated before a later failure are collected so the thunk can
// roll them back and leave no partially constructed output.
func (b *Builder) encodeResults(desc *abi.Descriptor, m abi.Method, results []reflect.Value, out []abi.Word, allocated *[]hstring.Handle) error {
	for j, t := range m.Results {
		if abi.IsString(t) {
			h, err := b.strings.Alloc(results[j].String())
			if err != nil {
				return err
			}
			if h != 0 {
				*allocated = append(*allocated, h)
			}
			out[j] = abi.Word(h)
			continue
		}
		w, err := abi.EncodeWord(t, results[j].Interface())
		if err != nil {
			return err
		}
		out[j] = w
	}
	return nil
}

func (b *Builder) releaseAll(handles []hstring.Handle) {
	for _, h := range handles {
		_ = b.strings.Free(h)
	}
}

func zeroWords(w []abi.Word) {
	for i := range w {
		w[i] = 0
	}
}
