// Package combridge projects Go objects across a COM-style, vtable-based
// binary calling convention, and lets Go code call outward through the same
// convention.
//
// A call crosses the boundary as an opaque instance handle plus a flat stack
// of 64-bit words, and returns a 32-bit signed status code. Method
// signatures are described with WIT primitive types; strings cross as
// pool-allocated handles with direction-dependent ownership.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	combridge/           Root package with RefCounter and Registrar interfaces
//	├── abi/             Words, handles, status codes, interface descriptors
//	├── vtable/          Per-interface vtable construction and dispatch thunks
//	├── registry/        Instance handle table with liveness checks
//	├── hstring/         String handle pool with ownership transfer rules
//	├── status/          Error channel: Go errors <-> status codes + rich records
//	├── bridge/          High-level Expose/Revoke API and outward-call proxies
//	├── idl/             WIT-flavored interface text to descriptor parsing
//	├── errors/          Structured error types for debugging
//	└── wasmhost/        wazero host module exposing projected objects to guests
//
// # Quick Start
//
// Describe an interface, expose an object, and let a native-shaped caller
// invoke it:
//
//	desc, err := idl.ParseInterface(`
//	    interface acme:calc/display@1.0.0 {
//	        to-display-string: func() -> string;
//	    }`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	b := bridge.Default()
//	this, vt, err := b.Expose(myObject, desc)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// A native caller resolves slot 3 and invokes it.
//	stack := make([]abi.Word, 1)
//	if st := vt.Slot(3)(this, stack); st.Failed() {
//	    // status code plus out-of-band rich error record
//	}
//
// Calling outward through a vtable uses a Proxy, which converts failing
// status codes back into descriptive Go errors:
//
//	p := b.Proxy(this, vt)
//	results, err := p.Call("to-display-string")
//
// # Failure Boundary
//
// No Go failure ever unwinds past a dispatch thunk. Thunks zero every
// result slot before doing any work, catch errors and panics, route them
// through the status package, and return a negative status code. The rich
// error record carrying the original message is scoped to the calling
// thread and lives only until the next call there: consumed by the next
// inbound status conversion, or cleared by the next successful dispatch.
package combridge
