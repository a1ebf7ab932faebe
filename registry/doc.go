// Package registry maps opaque dispatch handles to host instances.
//
// A dispatch handle is what a native caller passes as "this". The registry
// owns the mapping, not the instances: lifetime is controlled externally
// through Expose and Revoke.
//
//	table := registry.NewTable()
//
//	h, err := table.Expose(myObject)
//	// hand h to native code
//
//	obj, err := table.Resolve(h) // on every dispatch
//
//	table.Revoke(h) // h now fails Resolve forever
//
// Handles embed a generation tag. Revoking bumps the generation, so a
// stale handle keeps failing with a not-found error even after its table
// slot is reused for a new instance. Resolution takes a read lock only;
// concurrent resolutions from any number of call sites never serialize
// against each other, and registrations never block unrelated lookups
// beyond the write itself.
package registry
