package wasmhost

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/com-bridge/abi"
	"github.com/wippyai/com-bridge/bridge"
	"github.com/wippyai/com-bridge/hstring"
	"github.com/wippyai/com-bridge/vtable"
)

// ModuleName is the import namespace guest modules link against.
const ModuleName = "com-bridge"

// Bind instantiates a host module exposing the given interfaces to wasm
// guests. Each vtable slot becomes one exported function named
// "<interface>#<method>", taking the dispatch handle followed by the
// parameter words and returning a status followed by the result words.
// String accessor functions are exported alongside so guests can move
// text in and out of the bridge's pool through linear memory.
func Bind(ctx context.Context, runtime wazero.Runtime, b *bridge.Bridge, descs ...*abi.Descriptor) (api.Module, error) {
	builder := runtime.NewHostModuleBuilder(ModuleName)

	for _, desc := range descs {
		vt, err := b.Vtable(desc)
		if err != nil {
			return nil, err
		}
		for slot := 0; slot < vt.NumSlots(); slot++ {
			m, _ := vt.MethodAt(slot)
			name := string(desc.ID) + "#" + m.Name
			builder.NewFunctionBuilder().
				WithGoModuleFunction(slotFunc(vt, slot, m),
					slotParamTypes(m), slotResultTypes(m)).
				Export(name)
		}
		Logger().Debug("interface bound",
			zap.String("interface", string(desc.ID)),
			zap.Int("slots", vt.NumSlots()))
	}

	bindStringAccessors(builder, b.Strings)

	return builder.Instantiate(ctx)
}

// slotFunc adapts one vtable slot to the wazero calling convention.
// Guest stack in: [this, param words...]; stack out: [status, result
// words...]. The thunk's failure boundary already guarantees the result
// words are zero whenever the status is failing.
func slotFunc(vt *vtable.Vtable, slot int, m abi.Method) api.GoModuleFunc {
	pw := m.ParamWords()
	rw := m.ResultWords()
	thunk := vt.Slot(slot)

	return api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
		this := abi.Handle(stack[0])

		words := make([]abi.Word, pw+rw)
		for j := 0; j < pw; j++ {
			words[j] = abi.Word(stack[1+j])
		}

		st := thunk(this, words)

		stack[0] = uint64(uint32(st))
		for j := 0; j < rw; j++ {
			stack[1+j] = uint64(words[pw+j])
		}
	})
}

func slotParamTypes(m abi.Method) []api.ValueType {
	types := make([]api.ValueType, 1+m.ParamWords())
	types[0] = api.ValueTypeI64
	for j := range m.Params {
		types[1+j] = api.ValueTypeI64
	}
	return types
}

func slotResultTypes(m abi.Method) []api.ValueType {
	types := make([]api.ValueType, 1+m.ResultWords())
	types[0] = api.ValueTypeI32
	for j := range m.Results {
		types[1+j] = api.ValueTypeI64
	}
	return types
}

// bindStringAccessors exports the pool operations guests need to build
// argument strings and consume result strings through linear memory.
//
//	hstring-new(ptr: i32, len: i32) -> (handle: i64)
//	hstring-len(handle: i64) -> (len: i32)             -1 on stale handle
//	hstring-read(handle: i64, ptr: i32, cap: i32) -> (written: i32)
//	hstring-free(handle: i64) -> (ok: i32)
//
// hstring-new returns the null handle both for the empty string (its
// ordinary spelling, always valid) and on allocation failure; guests that
// need to tell the two apart check len before allocating.
func bindStringAccessors(builder wazero.HostModuleBuilder, pool *hstring.Pool) {
	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, mod api.Module, stack []uint64) {
			ptr, n := uint32(stack[0]), uint32(stack[1])
			stack[0] = 0
			mem := mod.Memory()
			if mem == nil {
				return
			}
			buf, ok := mem.Read(ptr, n)
			if !ok {
				return
			}
			h, err := pool.Alloc(string(buf))
			if err != nil {
				Logger().Debug("guest string allocation failed", zap.Error(err))
				return
			}
			stack[0] = uint64(h)
		}), []api.ValueType{api.ValueTypeI32, api.ValueTypeI32}, []api.ValueType{api.ValueTypeI64}).
		Export("hstring-new")

	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			s, err := pool.Get(hstring.Handle(stack[0]))
			if err != nil {
				stack[0] = uint64(uint32(0xFFFFFFFF))
				return
			}
			stack[0] = uint64(uint32(len(s)))
		}), []api.ValueType{api.ValueTypeI64}, []api.ValueType{api.ValueTypeI32}).
		Export("hstring-len")

	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, mod api.Module, stack []uint64) {
			h := hstring.Handle(stack[0])
			ptr, capacity := uint32(stack[1]), uint32(stack[2])
			stack[0] = 0
			mem := mod.Memory()
			if mem == nil {
				return
			}
			s, err := pool.Get(h)
			if err != nil {
				return
			}
			n := uint32(len(s))
			if n > capacity {
				n = capacity
			}
			if !mem.Write(ptr, []byte(s)[:n]) {
				return
			}
			stack[0] = uint64(n)
		}), []api.ValueType{api.ValueTypeI64, api.ValueTypeI32, api.ValueTypeI32}, []api.ValueType{api.ValueTypeI32}).
		Export("hstring-read")

	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
			if err := pool.Free(hstring.Handle(stack[0])); err != nil {
				stack[0] = 0
				return
			}
			stack[0] = 1
		}), []api.ValueType{api.ValueTypeI64}, []api.ValueType{api.ValueTypeI32}).
		Export("hstring-free")
}
