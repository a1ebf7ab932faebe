package status

import (
	"sync"

	"github.com/petermattis/goid"

	"github.com/wippyai/com-bridge/abi"
)

// Record is the rich, out-of-band context for the most recent failure on
// one thread of execution: the descriptive message, the status code it was
// reported as, and the originating failure.
type Record struct {
	Message string
	Code    abi.Status
	Cause   error
}

// records holds at most one record per goroutine. Calls across the
// boundary run synchronously on their caller, so the goroutine stands in
// for the native thread and concurrent failing calls never share a slot.
var records sync.Map // int64 -> *Record

// Set installs the record for the current thread, replacing any previous
// one. A nil record clears the slot.
func Set(r *Record) {
	id := goid.Get()
	if r == nil {
		records.Delete(id)
		return
	}
	records.Store(id, r)
}

// Take removes and returns the current thread's record, or nil.
func Take() *Record {
	id := goid.Get()
	if v, ok := records.LoadAndDelete(id); ok {
		return v.(*Record)
	}
	return nil
}

// Peek returns the current thread's record without consuming it, or nil.
func Peek() *Record {
	if v, ok := records.Load(goid.Get()); ok {
		return v.(*Record)
	}
	return nil
}
