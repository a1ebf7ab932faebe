package vtable

import (
	"reflect"
	"testing"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/com-bridge/abi"
)

func TestBind_ByReflection(t *testing.T) {
	desc := greeterDescriptor()
	inst, err := Bind(&greeter{}, desc)
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	if inst.Object() == nil {
		t.Fatal("Object() returned nil")
	}
	if inst.Descriptor() != desc {
		t.Fatal("Descriptor() mismatch")
	}
}

type tableObject struct {
	called bool
}

func (o *tableObject) Register() map[string]any {
	return map[string]any{
		"to-display-string": func(v uint32) string {
			o.called = true
			return "ok"
		},
	}
}

// ToDisplayString would also match by name; the explicit table must win.
func (o *tableObject) ToDisplayString(v uint32) string {
	return "reflected"
}

func TestBind_RegisterTablePrecedence(t *testing.T) {
	desc := &abi.Descriptor{ID: "test:bind/table", Methods: []abi.Method{
		{Name: "to-display-string", Params: []wit.Type{wit.U32{}}, Results: []wit.Type{wit.String{}}},
	}}

	obj := &tableObject{}
	inst, err := Bind(obj, desc)
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}

	outs, err := inst.call(0, []reflect.Value{reflect.ValueOf(uint32(7))})
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if outs[0].String() != "ok" {
		t.Fatalf("got %q", outs[0].String())
	}
	if !obj.called {
		t.Fatal("explicit table handler must win over the reflected method")
	}
}

func TestBind_MissingMethod(t *testing.T) {
	desc := &abi.Descriptor{ID: "test:bind/missing", Methods: []abi.Method{
		{Name: "no-such-method"},
	}}
	if _, err := Bind(&greeter{}, desc); err == nil {
		t.Fatal("missing handler must fail binding")
	}
}

func TestBind_SignatureMismatch(t *testing.T) {
	// greet takes a string, not a u64.
	desc := &abi.Descriptor{ID: "test:bind/badsig", Methods: []abi.Method{
		{Name: "greet", Params: []wit.Type{wit.U64{}}, Results: []wit.Type{wit.String{}}},
	}}
	if _, err := Bind(&greeter{}, desc); err == nil {
		t.Fatal("mismatched handler signature must fail binding")
	}
}

func TestBind_ResultCountMismatch(t *testing.T) {
	desc := &abi.Descriptor{ID: "test:bind/badresults", Methods: []abi.Method{
		{Name: "greet", Params: []wit.Type{wit.String{}}, Results: []wit.Type{wit.String{}, wit.String{}}},
	}}
	if _, err := Bind(&greeter{}, desc); err == nil {
		t.Fatal("result arity mismatch must fail binding")
	}
}

func TestBind_TableMissingEntry(t *testing.T) {
	desc := &abi.Descriptor{ID: "test:bind/table2", Methods: []abi.Method{
		{Name: "to-display-string", Params: []wit.Type{wit.U32{}}, Results: []wit.Type{wit.String{}}},
		{Name: "absent"},
	}}
	if _, err := Bind(&tableObject{}, desc); err == nil {
		t.Fatal("table without the method must fail binding")
	}
}

func TestBind_NonFunctionHandler(t *testing.T) {
	desc := &abi.Descriptor{ID: "test:bind/notfunc", Methods: []abi.Method{
		{Name: "value"},
	}}
	obj := registrarFunc(func() map[string]any {
		return map[string]any{"value": 42}
	})
	if _, err := Bind(obj, desc); err == nil {
		t.Fatal("non-function table entry must fail binding")
	}
}

type registrarFunc func() map[string]any

func (f registrarFunc) Register() map[string]any { return f() }

func TestToPascalCase(t *testing.T) {
	cases := map[string]string{
		"greet":             "Greet",
		"to-display-string": "ToDisplayString",
		"add_two":           "AddTwo",
		"a":                 "A",
	}
	for in, want := range cases {
		if got := toPascalCase(in); got != want {
			t.Fatalf("toPascalCase(%q): got %q, want %q", in, got, want)
		}
	}
}
