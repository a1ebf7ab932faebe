// Package errors provides structured error types for the com-bridge library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). Each Kind corresponds to exactly one boundary status code, so
// classification in the status package is a table lookup.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseMarshal, errors.KindTypeMismatch).
//		Path("acme:calc/display@1.0.0", "to-display-string").
//		GoType("string").
//		AbiType("u32").
//		Detail("cannot convert string to integer").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.NotFound(errors.PhaseResolve, "instance", handle)
//	err := errors.AllocationFailed(errors.PhaseMarshal, "string pool exhausted")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
