// Package vtable constructs per-interface slot tables and the dispatch
// thunks that fill them.
//
// A Builder produces exactly one Vtable per interface identity, built
// race-free on first use; concurrent first callers all observe the
// identical pointer. Slots 0-2 are a shared base (identity query,
// add-ref, release) copied from a common set of thunks; the remaining
// slots are generated from the descriptor's method list in order, so the
// layout is deterministic and native callers may cache slot addresses for
// the life of the process.
//
// Each generated thunk unpacks parameter words, resolves the instance
// behind the dispatch handle, invokes the bound Go handler, and packs the
// results. All of that happens inside a failure boundary: the thunk zeroes
// its result words up front, converts every error and panic into a status
// code through the status package, and never lets a host failure unwind
// into the caller.
//
// Host objects are attached with Bind, which resolves one handler per
// method - from an explicit Register() table or by reflection over
// exported methods - and validates the Go signature against the wire
// signature before the object can be exposed.
package vtable
