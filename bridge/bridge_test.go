package bridge

import (
	stderrors "errors"
	"strings"
	"testing"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/com-bridge/abi"
)

type calculator struct {
	last uint32
}

func (c *calculator) Add(a, b uint32) uint32 {
	c.last = a + b
	return c.last
}

func (c *calculator) Describe(name string) string {
	return name + " calculator"
}

func (c *calculator) Divide(a, b uint32) (uint32, error) {
	if b == 0 {
		return 0, stderrors.New("division by zero")
	}
	return a / b, nil
}

func calculatorDescriptor() *abi.Descriptor {
	return &abi.Descriptor{
		ID: "test:calc/calculator",
		Methods: []abi.Method{
			{Name: "add", Params: []wit.Type{wit.U32{}, wit.U32{}}, Results: []wit.Type{wit.U32{}}},
			{Name: "describe", Params: []wit.Type{wit.String{}}, Results: []wit.Type{wit.String{}}},
			{Name: "divide", Params: []wit.Type{wit.U32{}, wit.U32{}}, Results: []wit.Type{wit.U32{}}},
		},
	}
}

func TestBridge_ExposeAndCall(t *testing.T) {
	b := New()
	defer b.Close()

	h, vt, err := b.Expose(&calculator{}, calculatorDescriptor())
	if err != nil {
		t.Fatalf("Expose failed: %v", err)
	}

	p := b.Proxy(h, vt)
	results, err := p.Call("add", uint32(40), uint32(2))
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if results[0] != uint32(42) {
		t.Fatalf("got %v", results[0])
	}
}

func TestBridge_StringRoundTrip(t *testing.T) {
	b := New()
	defer b.Close()

	h, vt, err := b.Expose(&calculator{}, calculatorDescriptor())
	if err != nil {
		t.Fatalf("Expose failed: %v", err)
	}

	results, err := b.Proxy(h, vt).Call("describe", "pocket")
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if results[0] != "pocket calculator" {
		t.Fatalf("got %v", results[0])
	}

	// The proxy frees its argument handles and the returned result handle.
	if b.Strings.Count() != 0 {
		t.Fatalf("pool leaked %d handles", b.Strings.Count())
	}
}

func TestBridge_ErrorRoundTrip(t *testing.T) {
	b := New()
	defer b.Close()

	h, vt, err := b.Expose(&calculator{}, calculatorDescriptor())
	if err != nil {
		t.Fatalf("Expose failed: %v", err)
	}

	_, err = b.Proxy(h, vt).Call("divide", uint32(1), uint32(0))
	if err == nil {
		t.Fatal("division by zero must fail")
	}
	if !strings.Contains(err.Error(), "division by zero") {
		t.Fatalf("reconstructed error %q lost the host message", err.Error())
	}
}

func TestBridge_RevokedHandle(t *testing.T) {
	b := New()
	defer b.Close()

	h, vt, err := b.Expose(&calculator{}, calculatorDescriptor())
	if err != nil {
		t.Fatalf("Expose failed: %v", err)
	}
	if !b.Revoke(h) {
		t.Fatal("Revoke failed")
	}
	if b.Revoke(h) {
		t.Fatal("second Revoke must fail")
	}

	if _, err := b.Proxy(h, vt).Call("add", uint32(1), uint32(2)); err == nil {
		t.Fatal("call through a revoked handle must fail")
	}
}

func TestBridge_UnknownMethod(t *testing.T) {
	b := New()
	defer b.Close()

	h, vt, err := b.Expose(&calculator{}, calculatorDescriptor())
	if err != nil {
		t.Fatalf("Expose failed: %v", err)
	}

	if _, err := b.Proxy(h, vt).Call("subtract"); err == nil {
		t.Fatal("unknown method must fail")
	}
}

func TestBridge_ArgumentMismatch(t *testing.T) {
	b := New()
	defer b.Close()

	h, vt, err := b.Expose(&calculator{}, calculatorDescriptor())
	if err != nil {
		t.Fatalf("Expose failed: %v", err)
	}
	p := b.Proxy(h, vt)

	if _, err := p.Call("add", uint32(1)); err == nil {
		t.Fatal("wrong arity must fail")
	}
	if _, err := p.Call("add", uint32(1), "two"); err == nil {
		t.Fatal("wrong type must fail")
	}
	if _, err := p.Call("add", nil, uint32(2)); err == nil {
		t.Fatal("nil argument must fail, not crash")
	}
	if _, err := p.Call("describe", 42); err == nil {
		t.Fatal("non-string for a string parameter must fail")
	}
	if _, err := p.Call("describe", nil); err == nil {
		t.Fatal("nil for a string parameter must fail")
	}
	if b.Strings.Count() != 0 {
		t.Fatalf("failed calls leaked %d handles", b.Strings.Count())
	}
}

func TestBridge_QueryInterface(t *testing.T) {
	b := New()
	defer b.Close()

	desc := calculatorDescriptor()
	h, vt, err := b.Expose(&calculator{}, desc)
	if err != nil {
		t.Fatalf("Expose failed: %v", err)
	}
	p := b.Proxy(h, vt)

	got, err := p.QueryInterface(desc.ID)
	if err != nil {
		t.Fatalf("QueryInterface failed: %v", err)
	}
	if got != h {
		t.Fatalf("got handle %d, want %d", got, h)
	}

	if _, err := p.QueryInterface("test:calc/unrelated"); err == nil {
		t.Fatal("unrelated interface must fail")
	}
}

func TestBridge_RefCounts(t *testing.T) {
	b := New()
	defer b.Close()

	h, vt, err := b.Expose(&calculator{}, calculatorDescriptor())
	if err != nil {
		t.Fatalf("Expose failed: %v", err)
	}
	p := b.Proxy(h, vt)

	count, err := p.AddRef()
	if err != nil || count != 1 {
		t.Fatalf("AddRef: got %d, %v", count, err)
	}
	count, err = p.Release()
	if err != nil || count != 1 {
		t.Fatalf("Release: got %d, %v", count, err)
	}
}

func TestBridge_SharedVtable(t *testing.T) {
	b := New()
	defer b.Close()

	desc := calculatorDescriptor()
	_, vt1, err := b.Expose(&calculator{}, desc)
	if err != nil {
		t.Fatalf("Expose failed: %v", err)
	}
	_, vt2, err := b.Expose(&calculator{}, desc)
	if err != nil {
		t.Fatalf("Expose failed: %v", err)
	}

	if vt1 != vt2 {
		t.Fatal("instances of one interface must share the vtable")
	}
	if b.Builder().Builds() != 1 {
		t.Fatalf("Builds: got %d", b.Builder().Builds())
	}
}

func TestDefault_Singleton(t *testing.T) {
	if Default() != Default() {
		t.Fatal("Default must return the same bridge")
	}
}

func TestBridge_IndependentBridges(t *testing.T) {
	b1 := New()
	defer b1.Close()
	b2 := New()
	defer b2.Close()

	h, _, err := b1.Expose(&calculator{}, calculatorDescriptor())
	if err != nil {
		t.Fatalf("Expose failed: %v", err)
	}

	// A handle from one bridge means nothing to another.
	if _, err := b2.Registry.Resolve(h); err == nil {
		t.Fatal("handle must not resolve in a foreign bridge")
	}
}
