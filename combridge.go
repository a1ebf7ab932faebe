package combridge

// Version is the library version, used by tooling for artifact checks.
const Version = "0.3.0"

// RefCounter is optionally implemented by host objects that participate in
// an external reference-counting scheme. The reserved add-ref/release vtable
// slots delegate to it when present; objects without it report a neutral
// count of 1 and their lifetime is managed entirely by the host.
type RefCounter interface {
	AddRef() uint32
	Release() uint32
}

// Registrar allows host objects to provide an explicit method table when
// automatic PascalCase-to-kebab-case mapping doesn't apply. Keys are the
// descriptor method names, values are the handler functions.
type Registrar interface {
	Register() map[string]any
}
