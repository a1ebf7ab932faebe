package status

import (
	stderrors "errors"
	"fmt"

	"github.com/wippyai/com-bridge/abi"
	"github.com/wippyai/com-bridge/errors"
)

var kindToStatus = map[errors.Kind]abi.Status{
	errors.KindNotFound:     abi.BadHandle,
	errors.KindAllocation:   abi.OutOfMemory,
	errors.KindTypeMismatch: abi.InvalidArg,
	errors.KindInvalidInput: abi.InvalidArg,
	errors.KindOutOfBounds:  abi.Bounds,
	errors.KindUnsupported:  abi.NotImpl,
	errors.KindNoInterface:  abi.NoInterface,
	errors.KindUnspecified:  abi.Fail,
}

var statusToKind = map[abi.Status]errors.Kind{
	abi.BadHandle:   errors.KindNotFound,
	abi.OutOfMemory: errors.KindAllocation,
	abi.InvalidArg:  errors.KindInvalidInput,
	abi.Bounds:      errors.KindOutOfBounds,
	abi.NotImpl:     errors.KindUnsupported,
	abi.NoInterface: errors.KindNoInterface,
}

// Classify maps a host failure onto its status code without touching the
// thread record. Unrecognized error types fall back to the generic failure
// code; an error reconstructed from a native status returns that exact
// status again.
func Classify(err error) abi.Status {
	if err == nil {
		return abi.OK
	}

	var e *errors.Error
	if stderrors.As(err, &e) {
		if e.Kind == errors.KindNativeFailure {
			if code, ok := e.Value.(int32); ok && abi.Status(code).Failed() {
				return abi.Status(code)
			}
			return abi.Fail
		}
		if st, ok := kindToStatus[e.Kind]; ok {
			return st
		}
	}
	return abi.Fail
}

// FromError converts a host failure to a status code and records the rich
// error context for the calling thread. This is the single outbound choke
// point: every failure leaving the host crosses here exactly once.
func FromError(err error) abi.Status {
	if err == nil {
		return abi.OK
	}
	st := Classify(err)
	Set(&Record{
		Message: err.Error(),
		Code:    st,
		Cause:   err,
	})
	return st
}

// ToError converts a status code received from a native call back into a
// host failure. A matching record left on this thread by the failing call
// supplies the descriptive message and origin; otherwise a generic failure
// carrying just the code is synthesized. Success returns nil and clears
// nothing.
func ToError(st abi.Status) error {
	if st.Succeeded() {
		return nil
	}

	if r := Take(); r != nil && r.Code == st {
		e := errors.NativeFailure(int32(st), r.Message)
		e.Cause = r.Cause
		return e
	}

	if kind, ok := statusToKind[st]; ok {
		e := errors.NativeFailure(int32(st), fmt.Sprintf("native call failed: %s", st))
		e.Kind = kind
		e.Value = int32(st)
		return e
	}
	return errors.NativeFailure(int32(st), "")
}
