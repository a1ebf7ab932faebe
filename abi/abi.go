package abi

import "fmt"

// Word is one flat value crossing the boundary. Integers are stored
// zero- or sign-extended, floats as their IEEE bit patterns, strings
// as hstring handles.
type Word uint64

// Handle is an opaque dispatch context identifying a projected instance.
// Handle 0 is reserved and always invalid. The low 32 bits carry a table
// index, the high 32 bits a generation tag for liveness checks.
type Handle uint64

// PackHandle builds a handle from a table index and generation tag.
func PackHandle(index, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(index))
}

// Index returns the table index encoded in the handle.
func (h Handle) Index() uint32 {
	return uint32(h)
}

// Generation returns the generation tag encoded in the handle.
func (h Handle) Generation() uint32 {
	return uint32(h >> 32)
}

// Status is the 32-bit signed result of every cross-boundary call.
// Zero is success; the sign bit set is the universal failure marker.
type Status int32

// Well-known status codes. Values follow the COM HRESULT convention so
// the sign-bit contract holds for any caller that already speaks it.
const (
	OK          Status = 0
	NotImpl     Status = -0x7FFFBFFF // 0x80004001
	NoInterface Status = -0x7FFFBFFE // 0x80004002
	Pointer     Status = -0x7FFFBFFD // 0x80004003
	Fail        Status = -0x7FFFBFFB // 0x80004005
	Bounds      Status = -0x7FFFFFF5 // 0x8000000B
	Unexpected  Status = -0x7FFF0001 // 0x8000FFFF
	BadHandle   Status = -0x7FF8FFFA // 0x80070006
	OutOfMemory Status = -0x7FF8FFF2 // 0x8007000E
	InvalidArg  Status = -0x7FF8FFA9 // 0x80070057
)

// Succeeded reports whether the status denotes success.
func (s Status) Succeeded() bool {
	return s >= 0
}

// Failed reports whether the status denotes failure.
func (s Status) Failed() bool {
	return s < 0
}

func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case NotImpl:
		return "not implemented"
	case NoInterface:
		return "no such interface"
	case Pointer:
		return "invalid pointer"
	case Fail:
		return "unspecified failure"
	case Bounds:
		return "out of bounds"
	case Unexpected:
		return "unexpected failure"
	case BadHandle:
		return "invalid handle"
	case OutOfMemory:
		return "out of memory"
	case InvalidArg:
		return "invalid argument"
	default:
		return fmt.Sprintf("status 0x%08X", uint32(s))
	}
}

// Thunk is the native-callable entry stored in one vtable slot. The stack
// carries the method's parameter words followed by its result words; a
// thunk writes results in place and returns a status code. Thunks never
// panic and never let a host failure unwind to the caller.
type Thunk func(this Handle, stack []Word) Status
