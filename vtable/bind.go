package vtable

import (
	"reflect"
	"strings"

	combridge "github.com/wippyai/com-bridge"
	"github.com/wippyai/com-bridge/abi"
	"github.com/wippyai/com-bridge/errors"
)

var errType = reflect.TypeOf((*error)(nil)).Elem()

// Instance is a host object bound to an interface descriptor: one resolved
// handler per generated slot, validated against the wire signature. It is
// what the registry actually stores for an exposed object.
type Instance struct {
	obj     any
	desc    *abi.Descriptor
	methods []reflect.Value
	hasErr  []bool
}

// Object returns the underlying host object.
func (i *Instance) Object() any {
	return i.obj
}

// Descriptor returns the interface the object was bound to.
func (i *Instance) Descriptor() *abi.Descriptor {
	return i.desc
}

// Bind resolves and validates one handler per descriptor method. An
// explicit Register() method table takes precedence; otherwise exported
// methods are matched by PascalCase conversion of the kebab-case method
// name. Binding fails fast: a missing or mis-typed handler means the
// object cannot be exposed at all.
func Bind(obj any, desc *abi.Descriptor) (*Instance, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	var table map[string]any
	if r, ok := obj.(combridge.Registrar); ok {
		table = r.Register()
	}

	rv := reflect.ValueOf(obj)
	inst := &Instance{
		obj:     obj,
		desc:    desc,
		methods: make([]reflect.Value, len(desc.Methods)),
		hasErr:  make([]bool, len(desc.Methods)),
	}

	for i, m := range desc.Methods {
		var fn reflect.Value
		if table != nil {
			handler, ok := table[m.Name]
			if !ok {
				return nil, errors.New(errors.PhaseBuild, errors.KindNotFound).
					Path(string(desc.ID), m.Name).
					Detail("method missing from register table").
					Build()
			}
			fn = reflect.ValueOf(handler)
		} else {
			fn = rv.MethodByName(toPascalCase(m.Name))
			if !fn.IsValid() {
				return nil, errors.New(errors.PhaseBuild, errors.KindNotFound).
					Path(string(desc.ID), m.Name).
					GoType(reflect.TypeOf(obj).String()).
					Detail("no exported method %s", toPascalCase(m.Name)).
					Build()
			}
		}

		hasErr, err := validateHandler(fn, desc, m)
		if err != nil {
			return nil, err
		}
		inst.methods[i] = fn
		inst.hasErr[i] = hasErr
	}

	return inst, nil
}

// call invokes the handler for generated method index mi. A non-nil
// trailing error return is the host failure; it is reported as-is.
func (i *Instance) call(mi int, args []reflect.Value) ([]reflect.Value, error) {
	outs := i.methods[mi].Call(args)
	if i.hasErr[mi] {
		last := outs[len(outs)-1]
		if !last.IsNil() {
			return nil, last.Interface().(error)
		}
		outs = outs[:len(outs)-1]
	}
	return outs, nil
}

// validateHandler checks a handler against the method's wire signature:
// parameters map 1:1 through abi.GoType, results likewise, with one
// optional trailing error.
func validateHandler(fn reflect.Value, desc *abi.Descriptor, m abi.Method) (hasErr bool, err error) {
	if fn.Kind() != reflect.Func {
		return false, errors.New(errors.PhaseBuild, errors.KindTypeMismatch).
			Path(string(desc.ID), m.Name).
			GoType(fn.Type().String()).
			Detail("handler must be a function").
			Build()
	}

	ft := fn.Type()
	if ft.NumIn() != len(m.Params) {
		return false, errors.New(errors.PhaseBuild, errors.KindTypeMismatch).
			Path(string(desc.ID), m.Name).
			GoType(ft.String()).
			Detail("want %d parameters, handler has %d", len(m.Params), ft.NumIn()).
			Build()
	}
	for j, t := range m.Params {
		want, gerr := abi.GoType(t)
		if gerr != nil {
			return false, gerr
		}
		if ft.In(j) != want {
			return false, errors.New(errors.PhaseBuild, errors.KindTypeMismatch).
				Path(string(desc.ID), m.Name).
				GoType(ft.In(j).String()).
				AbiType(abi.TypeName(t)).
				Detail("parameter %d", j).
				Build()
		}
	}

	numOut := ft.NumOut()
	if numOut > 0 && ft.Out(numOut-1) == errType {
		hasErr = true
		numOut--
	}
	if numOut != len(m.Results) {
		return false, errors.New(errors.PhaseBuild, errors.KindTypeMismatch).
			Path(string(desc.ID), m.Name).
			GoType(ft.String()).
			Detail("want %d results, handler has %d", len(m.Results), numOut).
			Build()
	}
	for j, t := range m.Results {
		want, gerr := abi.GoType(t)
		if gerr != nil {
			return false, gerr
		}
		if ft.Out(j) != want {
			return false, errors.New(errors.PhaseBuild, errors.KindTypeMismatch).
				Path(string(desc.ID), m.Name).
				GoType(ft.Out(j).String()).
				AbiType(abi.TypeName(t)).
				Detail("result %d", j).
				Build()
		}
	}
	return hasErr, nil
}

// toPascalCase converts kebab-case to PascalCase: "to-display-string"
// becomes "ToDisplayString".
func toPascalCase(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		if r == '-' || r == '_' {
			upper = true
			continue
		}
		if upper {
			b.WriteRune(toUpper(r))
			upper = false
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func toUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - 'a' + 'A'
	}
	return r
}
