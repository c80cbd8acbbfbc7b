package wazero

import (
	"context"
	"fmt"
	"math"
	"reflect"

	"github.com/student/wazeroir-slots/api"
	"github.com/student/wazeroir-slots/internal/engine/interpreter"
	"github.com/student/wazeroir-slots/internal/wasm"
)

// moduleAdapter implements api.Module over a *wasm.ModuleInstance, bridging
// the internal typed wasm.Val vocabulary to the public uint64-encoded one
// in api/wasm.go (api.EncodeI32 et al.), the same boundary the teacher
// draws between its internal/wasm and api packages.
type moduleAdapter struct {
	engine *interpreter.Engine
	inst   *wasm.ModuleInstance
}

func (m *moduleAdapter) String() string { return m.inst.String() }
func (m *moduleAdapter) Name() string   { return m.inst.Name() }

func (m *moduleAdapter) Memory() api.Memory {
	if len(m.inst.Memories) == 0 {
		return nil
	}
	return &memoryAdapter{m.inst.Memories[0]}
}

func (m *moduleAdapter) ExportedFunction(name string) api.Function {
	fi := m.inst.ExportedFunctionInstance(name)
	if fi == nil {
		return nil
	}
	return &functionAdapter{engine: m.engine, inst: m.inst, fi: fi}
}

func (m *moduleAdapter) ExportedMemory(name string) api.Memory {
	mi := m.inst.ExportedMemoryInstance(name)
	if mi == nil {
		return nil
	}
	return &memoryAdapter{mi}
}

func (m *moduleAdapter) ExportedGlobal(name string) api.Global {
	gi := m.inst.ExportedGlobalInstance(name)
	if gi == nil {
		return nil
	}
	return &globalAdapter{gi}
}

func (m *moduleAdapter) CloseWithExitCode(_ context.Context, exitCode uint32) error {
	m.inst.CloseWithExitCode(exitCode)
	return nil
}

func (m *moduleAdapter) Close(ctx context.Context) error {
	return m.CloseWithExitCode(ctx, 0)
}

// functionAdapter implements api.Function, translating the uint64-encoded
// calling convention (Function.Call's contract in api/wasm.go) to and from
// the engine's boxed wasm.Val parameters/results.
type functionAdapter struct {
	engine *interpreter.Engine
	inst   *wasm.ModuleInstance
	fi     *wasm.FunctionInstance
}

func (f *functionAdapter) Definition() api.FunctionDefinition {
	return &functionDefinitionAdapter{f.fi}
}

func (f *functionAdapter) Call(ctx context.Context, params ...uint64) ([]uint64, error) {
	if len(params) != len(f.fi.Type.Params) {
		return nil, fmt.Errorf("expected %d params, got %d", len(f.fi.Type.Params), len(params))
	}
	vals := make([]wasm.Val, len(params))
	for i, p := range params {
		vals[i] = wasm.ValFromUint64(f.fi.Type.Params[i], p)
	}
	results, err := f.engine.Call(ctx, f.inst, f.fi.Index, vals)
	if err != nil {
		return nil, err
	}
	out := make([]uint64, len(results))
	for i, r := range results {
		out[i] = r.Bits()
	}
	return out, nil
}

// functionDefinitionAdapter implements api.FunctionDefinition; GoFunc is
// omitted (returns nil) since nothing in this repo needs reflect-based
// host function introspection.
type functionDefinitionAdapter struct {
	fi *wasm.FunctionInstance
}

func (d *functionDefinitionAdapter) ModuleName() string { return d.fi.Module.Name() }
func (d *functionDefinitionAdapter) Index() uint32      { return d.fi.Index }
func (d *functionDefinitionAdapter) Name() string       { return d.fi.Name }
func (d *functionDefinitionAdapter) DebugName() string {
	if d.fi.Name != "" {
		return fmt.Sprintf("%s.%s", d.fi.Module.Name(), d.fi.Name)
	}
	return fmt.Sprintf("%s.$%d", d.fi.Module.Name(), d.fi.Index)
}
func (d *functionDefinitionAdapter) Import() (string, string, bool) { return "", "", false }
func (d *functionDefinitionAdapter) ExportNames() []string          { return d.fi.ExportNames }
func (d *functionDefinitionAdapter) GoFunc() *reflect.Value          { return nil }
func (d *functionDefinitionAdapter) ParamTypes() []api.ValueType    { return d.fi.Type.Params }
func (d *functionDefinitionAdapter) ParamNames() []string           { return nil }
func (d *functionDefinitionAdapter) ResultTypes() []api.ValueType   { return d.fi.Type.Results }

// globalAdapter implements api.Global/api.MutableGlobal over a
// *wasm.GlobalInstance, encoding/decoding through its raw Bits.
type globalAdapter struct{ gi *wasm.GlobalInstance }

func (g *globalAdapter) String() string { return fmt.Sprintf("Global(%s)", api.ValueTypeName(g.Type())) }
func (g *globalAdapter) Type() api.ValueType { return g.gi.Type().ValType }
func (g *globalAdapter) Get(context.Context) uint64 { return g.gi.Get().Bits() }
func (g *globalAdapter) Set(_ context.Context, v uint64) {
	g.gi.Set(wasm.ValFromUint64(g.gi.Type().ValType, v))
}

// memoryAdapter implements api.Memory over a *wasm.MemoryInstance.
type memoryAdapter struct{ mi *wasm.MemoryInstance }

func (m *memoryAdapter) Size(context.Context) uint32 { return m.mi.PageCount() * 65536 }
func (m *memoryAdapter) Grow(_ context.Context, delta uint32) (uint32, bool) { return m.mi.Grow(delta) }
func (m *memoryAdapter) ReadByte(_ context.Context, offset uint32) (byte, bool) {
	return m.mi.ReadByte(offset)
}
func (m *memoryAdapter) ReadUint16Le(_ context.Context, offset uint32) (uint16, bool) {
	b, ok := m.mi.Read(offset, 2)
	if !ok {
		return 0, false
	}
	return uint16(b[0]) | uint16(b[1])<<8, true
}
func (m *memoryAdapter) ReadUint32Le(_ context.Context, offset uint32) (uint32, bool) {
	return m.mi.ReadUint32Le(offset)
}
func (m *memoryAdapter) ReadFloat32Le(_ context.Context, offset uint32) (float32, bool) {
	return m.mi.LoadF32(offset)
}
func (m *memoryAdapter) ReadUint64Le(_ context.Context, offset uint32) (uint64, bool) {
	return m.mi.ReadUint64Le(offset)
}
func (m *memoryAdapter) ReadFloat64Le(_ context.Context, offset uint32) (float64, bool) {
	return m.mi.LoadF64(offset)
}
func (m *memoryAdapter) Read(_ context.Context, offset, byteCount uint32) ([]byte, bool) {
	return m.mi.View(offset, byteCount)
}
func (m *memoryAdapter) WriteByte(_ context.Context, offset uint32, v byte) bool {
	return m.mi.WriteByte(offset, v)
}
func (m *memoryAdapter) WriteUint16Le(_ context.Context, offset uint32, v uint16) bool {
	return m.mi.Write(offset, []byte{byte(v), byte(v >> 8)})
}
func (m *memoryAdapter) WriteUint32Le(_ context.Context, offset, v uint32) bool {
	return m.mi.WriteUint32Le(offset, v)
}
func (m *memoryAdapter) WriteFloat32Le(_ context.Context, offset uint32, v float32) bool {
	return m.mi.Store32(offset, math.Float32bits(v))
}
func (m *memoryAdapter) WriteUint64Le(_ context.Context, offset uint32, v uint64) bool {
	return m.mi.WriteUint64Le(offset, v)
}
func (m *memoryAdapter) WriteFloat64Le(_ context.Context, offset uint32, v float64) bool {
	return m.mi.Store64(offset, math.Float64bits(v))
}
func (m *memoryAdapter) Write(_ context.Context, offset uint32, v []byte) bool {
	return m.mi.Write(offset, v)
}
