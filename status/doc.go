// Package status is the error channel between host failures and boundary
// status codes. Every cross-boundary failure, in either direction, passes
// through it exactly once.
//
// Outbound, a host failure is classified against the errors package
// taxonomy, recorded as a thread-scoped rich record, and returned as a
// negative status code:
//
//	st := status.FromError(err) // inside a dispatch thunk
//
// Inbound, a failing status from a native call is converted back into a
// descriptive host error, enriched from the record the failing call left
// on the same thread:
//
//	if err := status.ToError(st); err != nil { ... }
//
// Records are keyed by goroutine, which stands in for the calling thread
// because nothing at this layer suspends or queues work. Concurrent
// failures on different threads never corrupt each other's record. A
// record lives only until the next call on its thread: consumed by the
// next inbound conversion, or cleared by the next successful dispatch.
package status
