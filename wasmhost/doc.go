// Package wasmhost projects bridge vtables into a wazero runtime.
//
// Bind builds one host module named "com-bridge" whose exports mirror
// the vtable layout: every slot of every bound interface is a function
// "<interface>#<method>" with the dispatch handle and parameter words as
// i64 arguments and the status code plus result words as results. Guests
// never see Go values; strings cross as pool handles moved through the
// hstring-new / hstring-len / hstring-read / hstring-free exports and
// linear memory.
//
// The host module can also be driven from the host side through
// ExportedFunction, which is how the package tests exercise it without a
// guest binary.
package wasmhost
