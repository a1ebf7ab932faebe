package vtable

import (
	"testing"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/com-bridge/abi"
	"github.com/wippyai/com-bridge/status"
)

func TestQueryInterface_Match(t *testing.T) {
	b := newTestBuilder()
	this, vt := exposeGreeter(t, b)

	id, err := b.Strings().Alloc(string(vt.Descriptor().ID))
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}

	stack := []abi.Word{abi.Word(id), 0}
	st := vt.Slot(abi.SlotQueryInterface)(this, stack)
	if st != abi.OK {
		t.Fatalf("status: %s", st)
	}
	if abi.Handle(stack[1]) != this {
		t.Fatalf("matched query must return the instance handle, got %d", stack[1])
	}
}

func TestQueryInterface_Mismatch(t *testing.T) {
	b := newTestBuilder()
	this, vt := exposeGreeter(t, b)

	id, _ := b.Strings().Alloc("test:greet/unrelated")
	stack := []abi.Word{abi.Word(id), 0xDEAD}
	st := vt.Slot(abi.SlotQueryInterface)(this, stack)
	if st != abi.NoInterface {
		t.Fatalf("status: got %s, want %s", st, abi.NoInterface)
	}
	if stack[1] != 0 {
		t.Fatal("result word must be zeroed on mismatch")
	}
	status.Take()
}

func TestQueryInterface_StaleHandle(t *testing.T) {
	b := newTestBuilder()
	this, vt := exposeGreeter(t, b)
	b.Registry().Revoke(this)

	id, _ := b.Strings().Alloc(string(vt.Descriptor().ID))
	stack := []abi.Word{abi.Word(id), 0}
	st := vt.Slot(abi.SlotQueryInterface)(this, stack)
	if st != abi.BadHandle {
		t.Fatalf("status: got %s, want %s", st, abi.BadHandle)
	}
	status.Take()
}

func TestRefCount_Neutral(t *testing.T) {
	b := newTestBuilder()
	this, vt := exposeGreeter(t, b)

	// greeter does not count references: both slots report 1.
	stack := []abi.Word{0xDEAD}
	if st := vt.Slot(abi.SlotAddRef)(this, stack); st != abi.OK {
		t.Fatalf("add-ref status: %s", st)
	}
	if stack[0] != 1 {
		t.Fatalf("add-ref count: got %d", stack[0])
	}

	stack[0] = 0xDEAD
	if st := vt.Slot(abi.SlotRelease)(this, stack); st != abi.OK {
		t.Fatalf("release status: %s", st)
	}
	if stack[0] != 1 {
		t.Fatalf("release count: got %d", stack[0])
	}
}

type countedObject struct {
	refs uint32
}

func (c *countedObject) AddRef() uint32 {
	c.refs++
	return c.refs
}

func (c *countedObject) Release() uint32 {
	c.refs--
	return c.refs
}

func (c *countedObject) Ping() {}

func TestRefCount_Delegated(t *testing.T) {
	b := newTestBuilder()
	desc := &abi.Descriptor{ID: "test:greet/counted", Methods: []abi.Method{
		{Name: "ping"},
	}}
	vt, err := b.GetOrBuild(desc)
	if err != nil {
		t.Fatalf("GetOrBuild failed: %v", err)
	}
	obj := &countedObject{refs: 1}
	inst, err := Bind(obj, desc)
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	this, _ := b.Registry().Expose(inst)

	stack := []abi.Word{0}
	vt.Slot(abi.SlotAddRef)(this, stack)
	if stack[0] != 2 {
		t.Fatalf("add-ref: got %d", stack[0])
	}
	vt.Slot(abi.SlotRelease)(this, stack)
	if stack[0] != 1 {
		t.Fatalf("release: got %d", stack[0])
	}
	if obj.refs != 1 {
		t.Fatalf("object count: got %d", obj.refs)
	}
}

func TestReservedMethods_Signatures(t *testing.T) {
	ms := ReservedMethods()
	if ms[abi.SlotQueryInterface].Name != "query-interface" {
		t.Fatalf("slot 0: %q", ms[0].Name)
	}
	if len(ms[abi.SlotQueryInterface].Params) != 1 || !abi.IsString(ms[0].Params[0]) {
		t.Fatal("query-interface takes one string")
	}
	if _, ok := ms[abi.SlotAddRef].Results[0].(wit.U32); !ok {
		t.Fatal("add-ref returns u32")
	}
	if _, ok := ms[abi.SlotRelease].Results[0].(wit.U32); !ok {
		t.Fatal("release returns u32")
	}
}
