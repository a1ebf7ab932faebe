// Package idl parses a small textual interface definition language into
// descriptors.
//
// The grammar is a subset of WIT interface syntax:
//
//	interface my.Greeter {
//	    greet: func(name: string) -> string;
//	    add: func(a: s32, b: s32) -> s32;
//	}
//
// Only types that cross the boundary as single words are accepted;
// anything else is rejected at parse time rather than at dispatch time.
// Line comments (//) are stripped before matching.
package idl
