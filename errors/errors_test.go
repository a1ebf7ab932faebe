package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Format(t *testing.T) {
	err := New(PhaseMarshal, KindTypeMismatch).
		Path("acme:calc/display", "to-display-string").
		GoType("int").
		AbiType("string").
		Detail("parameter 0").
		Build()

	msg := err.Error()
	for _, want := range []string{
		"[marshal]", "type_mismatch",
		"acme:calc/display.to-display-string",
		"Go type int", "ABI type string",
		"parameter 0",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message %q missing %q", msg, want)
		}
	}
}

func TestError_Cause(t *testing.T) {
	cause := fmt.Errorf("underlying")
	err := Wrap(PhaseDispatch, KindUnspecified, cause, "call failed")

	if !strings.Contains(err.Error(), "caused by: underlying") {
		t.Fatalf("message %q missing cause", err.Error())
	}
	if stderrors.Unwrap(err) != cause {
		t.Fatal("Unwrap must return the cause")
	}
}

func TestError_Is(t *testing.T) {
	a := NotFound(PhaseResolve, "instance", uint64(1))
	b := NotFound(PhaseResolve, "instance", uint64(99))
	c := NotFound(PhaseMarshal, "string handle", uint64(1))

	if !stderrors.Is(a, b) {
		t.Fatal("same phase and kind must match")
	}
	if stderrors.Is(a, c) {
		t.Fatal("different phase must not match")
	}
	if stderrors.Is(a, fmt.Errorf("plain")) {
		t.Fatal("plain error must not match")
	}
}

func TestError_IsThroughWrap(t *testing.T) {
	inner := NotFound(PhaseResolve, "instance", uint64(3))
	outer := Wrap(PhaseDispatch, KindUnspecified, inner, "while dispatching")

	if !stderrors.Is(outer, NotFound(PhaseResolve, "", nil)) {
		t.Fatal("wrapped cause must still match")
	}
}

func TestConstructors(t *testing.T) {
	if e := AllocationFailed(PhaseMarshal, "pool limit"); e.Kind != KindAllocation {
		t.Fatalf("AllocationFailed kind: %s", e.Kind)
	}
	if e := InvalidInput(PhaseParse, "bad text"); e.Kind != KindInvalidInput {
		t.Fatalf("InvalidInput kind: %s", e.Kind)
	}
	if e := OutOfBounds(PhaseDispatch, []string{"iface"}, 9, 4); e.Kind != KindOutOfBounds {
		t.Fatalf("OutOfBounds kind: %s", e.Kind)
	}
	if e := Unsupported(PhaseBuild, "type list<u8>"); e.Kind != KindUnsupported {
		t.Fatalf("Unsupported kind: %s", e.Kind)
	}
}

func TestNativeFailure(t *testing.T) {
	e := NativeFailure(-0x7FFFBFFB, "something broke")
	if e.Kind != KindNativeFailure {
		t.Fatalf("kind: %s", e.Kind)
	}
	if code, ok := e.Value.(int32); !ok || code != -0x7FFFBFFB {
		t.Fatalf("Value must carry the code, got %v", e.Value)
	}

	// Default detail spells the code in hex.
	def := NativeFailure(-0x7FFFBFFB, "")
	if !strings.Contains(def.Error(), "0x80004005") {
		t.Fatalf("default detail %q missing code", def.Error())
	}
}

func TestBuilder_DetailFormatting(t *testing.T) {
	e := New(PhaseBuild, KindInvalidInput).Detail("want %d, got %d", 2, 5).Build()
	if !strings.Contains(e.Error(), "want 2, got 5") {
		t.Fatalf("detail not formatted: %q", e.Error())
	}
}
