package abi

import (
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/com-bridge/errors"
)

// InterfaceID identifies an interface, e.g. "acme:calc/display@1.0.0".
// Two descriptors with the same ID denote the same vtable layout.
type InterfaceID string

// Reserved vtable slots shared by every interface. They come from a common
// base and are never regenerated per interface.
const (
	SlotQueryInterface = 0
	SlotAddRef         = 1
	SlotRelease        = 2
	NumReservedSlots   = 3
)

// Method is one generated vtable slot: a name plus its wire signature.
type Method struct {
	Name    string
	Params  []wit.Type
	Results []wit.Type
}

// ParamWords returns the number of stack words the parameters occupy.
func (m Method) ParamWords() int {
	return TotalWords(m.Params)
}

// ResultWords returns the number of stack words the results occupy.
func (m Method) ResultWords() int {
	return TotalWords(m.Results)
}

// StackWords returns the full stack size for one call of this method.
func (m Method) StackWords() int {
	return m.ParamWords() + m.ResultWords()
}

// Descriptor is the immutable identity and slot list of one interface.
// It defines the vtable layout deterministically: reserved slots first,
// then one slot per method in declaration order.
type Descriptor struct {
	ID      InterfaceID
	Methods []Method
}

// NumSlots returns the total vtable slot count including reserved slots.
func (d *Descriptor) NumSlots() int {
	return NumReservedSlots + len(d.Methods)
}

// MethodIndex returns the vtable slot for a method name, or -1.
func (d *Descriptor) MethodIndex(name string) int {
	for i, m := range d.Methods {
		if m.Name == name {
			return NumReservedSlots + i
		}
	}
	return -1
}

// Validate checks that the descriptor can back a vtable: a non-empty
// identity, unique non-empty method names, and marshallable signatures.
func (d *Descriptor) Validate() error {
	if d.ID == "" {
		return errors.InvalidInput(errors.PhaseBuild, "descriptor has empty interface ID")
	}
	seen := make(map[string]bool, len(d.Methods))
	for _, m := range d.Methods {
		if m.Name == "" {
			return errors.InvalidInput(errors.PhaseBuild, "descriptor "+string(d.ID)+" has unnamed method")
		}
		if seen[m.Name] {
			return errors.New(errors.PhaseBuild, errors.KindInvalidInput).
				Path(string(d.ID), m.Name).
				Detail("duplicate method name").
				Build()
		}
		seen[m.Name] = true

		for _, t := range append(append([]wit.Type{}, m.Params...), m.Results...) {
			if !Marshallable(t) {
				return errors.New(errors.PhaseBuild, errors.KindUnsupported).
					Path(string(d.ID), m.Name).
					AbiType(TypeName(t)).
					Detail("type cannot cross the boundary").
					Build()
			}
		}
	}
	return nil
}
