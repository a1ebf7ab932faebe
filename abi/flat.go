package abi

import (
	"fmt"

	"go.bytecodealliance.org/wit"
)

// WordCount returns the number of stack words a WIT type occupies on the
// call stack. Unlike the wasm canonical ABI, a string is a single word: it
// crosses the boundary as an hstring handle, not as a pointer/length pair.
func WordCount(t wit.Type) int {
	if t == nil {
		return 0
	}
	return 1
}

// TotalWords returns the total word count for a type list.
func TotalWords(types []wit.Type) int {
	count := 0
	for _, t := range types {
		count += WordCount(t)
	}
	return count
}

// Marshallable reports whether a WIT type can cross the boundary. Only
// primitives and strings are supported; composites belong to a richer
// marshalling layer that this ABI deliberately does not carry.
func Marshallable(t wit.Type) bool {
	switch t.(type) {
	case wit.Bool, wit.U8, wit.S8, wit.U16, wit.S16, wit.U32, wit.S32,
		wit.U64, wit.S64, wit.F32, wit.F64, wit.Char, wit.String:
		return true
	default:
		return false
	}
}

// IsString reports whether the type marshals as an hstring handle.
func IsString(t wit.Type) bool {
	_, ok := t.(wit.String)
	return ok
}

// TypeName returns the WIT spelling of a type for diagnostics.
func TypeName(t wit.Type) string {
	switch v := t.(type) {
	case wit.Bool:
		return "bool"
	case wit.U8:
		return "u8"
	case wit.S8:
		return "s8"
	case wit.U16:
		return "u16"
	case wit.S16:
		return "s16"
	case wit.U32:
		return "u32"
	case wit.S32:
		return "s32"
	case wit.U64:
		return "u64"
	case wit.S64:
		return "s64"
	case wit.F32:
		return "f32"
	case wit.F64:
		return "f64"
	case wit.Char:
		return "char"
	case wit.String:
		return "string"
	case *wit.TypeDef:
		if v.Name != nil {
			return *v.Name
		}
		return "typedef"
	default:
		return fmt.Sprintf("%T", t)
	}
}
