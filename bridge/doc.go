// Package bridge assembles the projection boundary: one Bridge owns an
// instance registry, a string pool, and a vtable builder wired over both.
//
// The inward path is Expose: a host object plus an interface descriptor
// yields a dispatch handle and a vtable that native callers drive slot by
// slot. The outward path is Proxy: host code calls through a vtable the
// way a native caller would, and failing status codes are reconstructed
// into descriptive errors from the per-thread error records.
//
// Default() returns the process-wide bridge; independent bridges from
// New() keep separate handle spaces and vtable caches, which tests rely
// on.
package bridge
