// Package hstring marshals host strings across the boundary as opaque
// pool-allocated handles, following the platform string-handle convention
// where the null handle denotes the empty string.
//
// Ownership transfer is direction-dependent and strict:
//
//	Alloc  - the shim allocates, the receiving native caller frees
//	Get    - read-only; a handle received as input is never freed here
//	Free   - releases a handle the caller owns
//
// Handles are generation-tagged, so double frees and reads of stale
// handles fail with a not-found error instead of touching recycled data.
// Allocation beyond the pool limit surfaces as an allocation error routed
// through the error channel like any other failure; no partially
// constructed handle is ever returned.
package hstring
