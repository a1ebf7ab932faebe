package abi

import (
	"math"
	"reflect"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/com-bridge/errors"
)

// GoType returns the Go type a WIT type maps to on the host side.
func GoType(t wit.Type) (reflect.Type, error) {
	switch t.(type) {
	case wit.Bool:
		return reflect.TypeOf(false), nil
	case wit.U8:
		return reflect.TypeOf(uint8(0)), nil
	case wit.S8:
		return reflect.TypeOf(int8(0)), nil
	case wit.U16:
		return reflect.TypeOf(uint16(0)), nil
	case wit.S16:
		return reflect.TypeOf(int16(0)), nil
	case wit.U32:
		return reflect.TypeOf(uint32(0)), nil
	case wit.S32:
		return reflect.TypeOf(int32(0)), nil
	case wit.U64:
		return reflect.TypeOf(uint64(0)), nil
	case wit.S64:
		return reflect.TypeOf(int64(0)), nil
	case wit.F32:
		return reflect.TypeOf(float32(0)), nil
	case wit.F64:
		return reflect.TypeOf(float64(0)), nil
	case wit.Char:
		return reflect.TypeOf(rune(0)), nil
	case wit.String:
		return reflect.TypeOf(""), nil
	default:
		return nil, errors.New(errors.PhaseMarshal, errors.KindUnsupported).
			AbiType(TypeName(t)).
			Detail("no Go mapping for type").
			Build()
	}
}

// EncodeWord converts a Go value to its stack word per the WIT type.
// Strings are not handled here: they cross as hstring handles and are
// allocated by the marshalling layer that owns the pool.
func EncodeWord(t wit.Type, v any) (Word, error) {
	switch t.(type) {
	case wit.Bool:
		if b, ok := v.(bool); ok {
			if b {
				return 1, nil
			}
			return 0, nil
		}
	case wit.U8:
		if n, ok := v.(uint8); ok {
			return Word(n), nil
		}
	case wit.S8:
		if n, ok := v.(int8); ok {
			return Word(uint64(int64(n))), nil
		}
	case wit.U16:
		if n, ok := v.(uint16); ok {
			return Word(n), nil
		}
	case wit.S16:
		if n, ok := v.(int16); ok {
			return Word(uint64(int64(n))), nil
		}
	case wit.U32:
		if n, ok := v.(uint32); ok {
			return Word(n), nil
		}
	case wit.S32:
		if n, ok := v.(int32); ok {
			return Word(uint64(int64(n))), nil
		}
	case wit.U64:
		if n, ok := v.(uint64); ok {
			return Word(n), nil
		}
	case wit.S64:
		if n, ok := v.(int64); ok {
			return Word(uint64(n)), nil
		}
	case wit.F32:
		if f, ok := v.(float32); ok {
			return Word(math.Float32bits(f)), nil
		}
	case wit.F64:
		if f, ok := v.(float64); ok {
			return Word(math.Float64bits(f)), nil
		}
	case wit.Char:
		if r, ok := v.(rune); ok {
			return Word(uint32(r)), nil
		}
	}
	goType := "nil"
	if v != nil {
		goType = reflect.TypeOf(v).String()
	}
	return 0, errors.New(errors.PhaseMarshal, errors.KindTypeMismatch).
		GoType(goType).
		AbiType(TypeName(t)).
		Detail("cannot encode value as stack word").
		Build()
}

// DecodeWord converts a stack word back to the Go value for the WIT type.
// Strings are not handled here; see EncodeWord.
func DecodeWord(t wit.Type, w Word) (any, error) {
	switch t.(type) {
	case wit.Bool:
		return w != 0, nil
	case wit.U8:
		return uint8(w), nil
	case wit.S8:
		return int8(w), nil
	case wit.U16:
		return uint16(w), nil
	case wit.S16:
		return int16(w), nil
	case wit.U32:
		return uint32(w), nil
	case wit.S32:
		return int32(w), nil
	case wit.U64:
		return uint64(w), nil
	case wit.S64:
		return int64(w), nil
	case wit.F32:
		return math.Float32frombits(uint32(w)), nil
	case wit.F64:
		return math.Float64frombits(uint64(w)), nil
	case wit.Char:
		return rune(uint32(w)), nil
	default:
		return nil, errors.New(errors.PhaseMarshal, errors.KindUnsupported).
			AbiType(TypeName(t)).
			Detail("cannot decode stack word").
			Build()
	}
}
