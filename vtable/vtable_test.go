package vtable

import (
	"sync"
	"testing"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/com-bridge/abi"
	"github.com/wippyai/com-bridge/hstring"
	"github.com/wippyai/com-bridge/registry"
)

func newTestBuilder() *Builder {
	return NewBuilder(registry.NewTable(), hstring.NewPool())
}

func greeterDescriptor() *abi.Descriptor {
	return &abi.Descriptor{
		ID: "test:greet/greeter",
		Methods: []abi.Method{
			{Name: "greet", Params: []wit.Type{wit.String{}}, Results: []wit.Type{wit.String{}}},
			{Name: "add", Params: []wit.Type{wit.U32{}, wit.U32{}}, Results: []wit.Type{wit.U32{}}},
			{Name: "fail", Results: []wit.Type{wit.String{}}},
		},
	}
}

func TestBuilder_GetOrBuild(t *testing.T) {
	b := newTestBuilder()
	desc := greeterDescriptor()

	vt, err := b.GetOrBuild(desc)
	if err != nil {
		t.Fatalf("GetOrBuild failed: %v", err)
	}
	if vt.NumSlots() != abi.NumReservedSlots+3 {
		t.Fatalf("NumSlots: got %d", vt.NumSlots())
	}
	for i := 0; i < vt.NumSlots(); i++ {
		if vt.Slot(i) == nil {
			t.Fatalf("slot %d is nil", i)
		}
	}
	if vt.Slot(-1) != nil || vt.Slot(vt.NumSlots()) != nil {
		t.Fatal("out-of-range slots must be nil")
	}

	again, err := b.GetOrBuild(desc)
	if err != nil {
		t.Fatalf("second GetOrBuild failed: %v", err)
	}
	if again != vt {
		t.Fatal("same descriptor must yield the identical table")
	}
	if b.Builds() != 1 {
		t.Fatalf("Builds: got %d", b.Builds())
	}
}

func TestBuilder_GetOrBuildConcurrent(t *testing.T) {
	b := newTestBuilder()
	desc := greeterDescriptor()

	const n = 32
	tables := make([]*Vtable, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			vt, err := b.GetOrBuild(desc)
			if err != nil {
				t.Errorf("GetOrBuild failed: %v", err)
				return
			}
			tables[i] = vt
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if tables[i] != tables[0] {
			t.Fatal("concurrent first callers must observe the identical table")
		}
	}
	if b.Builds() != 1 {
		t.Fatalf("Builds: got %d, want 1", b.Builds())
	}
}

func TestBuilder_InvalidDescriptor(t *testing.T) {
	b := newTestBuilder()
	bad := &abi.Descriptor{ID: "test:bad/dup", Methods: []abi.Method{
		{Name: "m"}, {Name: "m"},
	}}

	if _, err := b.GetOrBuild(bad); err == nil {
		t.Fatal("invalid descriptor must fail")
	}
	// The failure is cached like a success.
	if _, err := b.GetOrBuild(bad); err == nil {
		t.Fatal("cached failure must still fail")
	}
	if b.Builds() != 0 {
		t.Fatalf("Builds: got %d", b.Builds())
	}
}

func TestVtable_MethodAt(t *testing.T) {
	b := newTestBuilder()
	vt, err := b.GetOrBuild(greeterDescriptor())
	if err != nil {
		t.Fatalf("GetOrBuild failed: %v", err)
	}

	m, ok := vt.MethodAt(abi.SlotQueryInterface)
	if !ok || m.Name != "query-interface" {
		t.Fatalf("slot 0: got %q", m.Name)
	}
	m, ok = vt.MethodAt(abi.SlotAddRef)
	if !ok || m.Name != "add-ref" {
		t.Fatalf("slot 1: got %q", m.Name)
	}
	m, ok = vt.MethodAt(abi.SlotRelease)
	if !ok || m.Name != "release" {
		t.Fatalf("slot 2: got %q", m.Name)
	}
	m, ok = vt.MethodAt(abi.NumReservedSlots)
	if !ok || m.Name != "greet" {
		t.Fatalf("slot 3: got %q", m.Name)
	}
	if _, ok := vt.MethodAt(vt.NumSlots()); ok {
		t.Fatal("out-of-range slot must not resolve")
	}
}

func TestBuilder_DistinctInterfaces(t *testing.T) {
	b := newTestBuilder()

	first, err := b.GetOrBuild(greeterDescriptor())
	if err != nil {
		t.Fatalf("GetOrBuild failed: %v", err)
	}
	other := &abi.Descriptor{ID: "test:greet/other", Methods: []abi.Method{
		{Name: "ping"},
	}}
	second, err := b.GetOrBuild(other)
	if err != nil {
		t.Fatalf("GetOrBuild failed: %v", err)
	}

	if first == second {
		t.Fatal("distinct interfaces must get distinct tables")
	}
	if b.Builds() != 2 {
		t.Fatalf("Builds: got %d", b.Builds())
	}
}
