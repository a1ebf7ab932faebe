package main

import (
	"reflect"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/com-bridge/abi"
)

// echoObject implements any parsed interface by reflection: each method
// fills its results from the first parameter of the same type, or the
// type's zero value when no parameter matches. It lets the tool expose
// and invoke an interface without a real host implementation.
type echoObject struct {
	desc    *abi.Descriptor
	methods map[string]any
}

func newEchoObject(desc *abi.Descriptor) (*echoObject, error) {
	o := &echoObject{desc: desc, methods: make(map[string]any, len(desc.Methods))}
	for _, m := range desc.Methods {
		fn, err := makeEchoMethod(m)
		if err != nil {
			return nil, err
		}
		o.methods[m.Name] = fn
	}
	return o, nil
}

// Register satisfies the explicit handler table the binder looks for.
func (o *echoObject) Register() map[string]any {
	return o.methods
}

func makeEchoMethod(m abi.Method) (any, error) {
	in := make([]reflect.Type, len(m.Params))
	for i, t := range m.Params {
		gt, err := abi.GoType(t)
		if err != nil {
			return nil, err
		}
		in[i] = gt
	}
	out := make([]reflect.Type, len(m.Results))
	for i, t := range m.Results {
		gt, err := abi.GoType(t)
		if err != nil {
			return nil, err
		}
		out[i] = gt
	}

	resultSources := pickSources(m.Params, m.Results)

	fnType := reflect.FuncOf(in, out, false)
	fn := reflect.MakeFunc(fnType, func(args []reflect.Value) []reflect.Value {
		results := make([]reflect.Value, len(out))
		for i, rt := range out {
			if src := resultSources[i]; src >= 0 {
				results[i] = args[src]
			} else {
				results[i] = reflect.Zero(rt)
			}
		}
		return results
	})
	return fn.Interface(), nil
}

// pickSources maps each result to the first same-typed parameter, each
// parameter echoed at most once.
func pickSources(params, results []wit.Type) []int {
	used := make([]bool, len(params))
	sources := make([]int, len(results))
	for i, rt := range results {
		sources[i] = -1
		for j, pt := range params {
			if !used[j] && pt == rt {
				sources[i] = j
				used[j] = true
				break
			}
		}
	}
	return sources
}
