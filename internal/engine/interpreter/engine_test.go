package interpreter

import (
	"context"
	"testing"

	"github.com/student/wazeroir-slots/internal/testing/require"
	"github.com/student/wazeroir-slots/internal/wasm"
)

func addModule() *wasm.Module {
	return &wasm.Module{
		Types:               []wasm.FunctionType{{Params: []wasm.ValueType{wasm.ValueTypeI32, wasm.ValueTypeI32}, Results: []wasm.ValueType{wasm.ValueTypeI32}}},
		FunctionTypeIndices: []uint32{0},
		Codes: []wasm.Code{{Body: []wasm.Instruction{
			{Op: wasm.OpcodeLocalGet, Index: 0},
			{Op: wasm.OpcodeLocalGet, Index: 1},
			{Op: wasm.OpcodeI32Add},
			{Op: wasm.OpcodeEnd},
		}}},
		Exports: []wasm.Export{{Type: 0x00, Name: "add", Index: 0}}, // 0x00 == api.ExternTypeFunc
	}
}

func TestEngine_CallAdd(t *testing.T) {
	mod := addModule()

	inst, err := wasm.Instantiate("test", mod, nil)
	require.NoError(t, err)

	engine := NewEngine()
	require.NoError(t, engine.CompileModule(mod, inst))

	results, err := engine.Call(context.Background(), inst, 0, []wasm.Val{wasm.ValI32(3), wasm.ValI32(4)})
	require.NoError(t, err)
	require.Equal(t, 1, len(results))
	require.Equal(t, wasm.ValI32(7).Bits(), results[0].Bits())
}

func TestEngine_CallIfElse(t *testing.T) {
	// fn(x i32) -> i32 { if x { 10 } else { 20 } }
	mod := &wasm.Module{
		Types:               []wasm.FunctionType{{Params: []wasm.ValueType{wasm.ValueTypeI32}, Results: []wasm.ValueType{wasm.ValueTypeI32}}},
		FunctionTypeIndices: []uint32{0},
		Codes: []wasm.Code{{Body: []wasm.Instruction{
			{Op: wasm.OpcodeLocalGet, Index: 0},
			{Op: wasm.OpcodeIf, Block: wasm.BlockType{Results: []wasm.ValueType{wasm.ValueTypeI32}}},
			{Op: wasm.OpcodeI32Const, ConstI32: 10},
			{Op: wasm.OpcodeElse},
			{Op: wasm.OpcodeI32Const, ConstI32: 20},
			{Op: wasm.OpcodeEnd},
			{Op: wasm.OpcodeEnd},
		}}},
	}

	inst, err := wasm.Instantiate("test", mod, nil)
	require.NoError(t, err)

	engine := NewEngine()
	require.NoError(t, engine.CompileModule(mod, inst))

	results, err := engine.Call(context.Background(), inst, 0, []wasm.Val{wasm.ValI32(1)})
	require.NoError(t, err)
	require.Equal(t, wasm.ValI32(10).Bits(), results[0].Bits())

	results, err = engine.Call(context.Background(), inst, 0, []wasm.Val{wasm.ValI32(0)})
	require.NoError(t, err)
	require.Equal(t, wasm.ValI32(20).Bits(), results[0].Bits())
}

func TestEngine_CallNestedWasmCall(t *testing.T) {
	// fn0(x i32) -> i32 { x }  (identity, called by fn1)
	// fn1(x i32) -> i32 { call fn0 }
	mod := &wasm.Module{
		Types:               []wasm.FunctionType{{Params: []wasm.ValueType{wasm.ValueTypeI32}, Results: []wasm.ValueType{wasm.ValueTypeI32}}},
		FunctionTypeIndices: []uint32{0, 0},
		Codes: []wasm.Code{
			{Body: []wasm.Instruction{
				{Op: wasm.OpcodeLocalGet, Index: 0},
				{Op: wasm.OpcodeEnd},
			}},
			{Body: []wasm.Instruction{
				{Op: wasm.OpcodeLocalGet, Index: 0},
				{Op: wasm.OpcodeCall, Index: 0},
				{Op: wasm.OpcodeEnd},
			}},
		},
	}

	inst, err := wasm.Instantiate("test", mod, nil)
	require.NoError(t, err)

	engine := NewEngine()
	require.NoError(t, engine.CompileModule(mod, inst))

	results, err := engine.Call(context.Background(), inst, 1, []wasm.Val{wasm.ValI32(42)})
	require.NoError(t, err)
	require.Equal(t, wasm.ValI32(42).Bits(), results[0].Bits())
}

func TestEngine_CallLoopSum(t *testing.T) {
	// fn(n i32) -> i32 {
	//   acc := 0 (local 1)
	//   block {
	//     loop {
	//       br_if 1 (n == 0)   ; exit to just past the block
	//       acc := acc + n
	//       n := n - 1
	//       br 0               ; continue
	//     }
	//   }
	//   acc
	// }
	mod := &wasm.Module{
		Types:               []wasm.FunctionType{{Params: []wasm.ValueType{wasm.ValueTypeI32}, Results: []wasm.ValueType{wasm.ValueTypeI32}}},
		FunctionTypeIndices: []uint32{0},
		Codes: []wasm.Code{{
			LocalTypes: []wasm.ValueType{wasm.ValueTypeI32}, // local 1: acc
			Body: []wasm.Instruction{
				{Op: wasm.OpcodeBlock, Block: wasm.BlockType{}},
				{Op: wasm.OpcodeLoop, Block: wasm.BlockType{}},
				{Op: wasm.OpcodeLocalGet, Index: 0},
				{Op: wasm.OpcodeI32Eqz},
				{Op: wasm.OpcodeBrIf, Index: 1}, // exits the block once n == 0
				{Op: wasm.OpcodeLocalGet, Index: 1},
				{Op: wasm.OpcodeLocalGet, Index: 0},
				{Op: wasm.OpcodeI32Add},
				{Op: wasm.OpcodeLocalSet, Index: 1},
				{Op: wasm.OpcodeLocalGet, Index: 0},
				{Op: wasm.OpcodeI32Const, ConstI32: 1},
				{Op: wasm.OpcodeI32Sub},
				{Op: wasm.OpcodeLocalSet, Index: 0},
				{Op: wasm.OpcodeBr, Index: 0}, // continue loop
				{Op: wasm.OpcodeEnd},          // closes loop
				{Op: wasm.OpcodeEnd},          // closes block
				{Op: wasm.OpcodeLocalGet, Index: 1},
				{Op: wasm.OpcodeEnd}, // closes function
			},
		}},
	}

	inst, err := wasm.Instantiate("test", mod, nil)
	require.NoError(t, err)

	engine := NewEngine()
	require.NoError(t, engine.CompileModule(mod, inst))

	results, err := engine.Call(context.Background(), inst, 0, []wasm.Val{wasm.ValI32(4)})
	require.NoError(t, err)
	require.Equal(t, wasm.ValI32(10).Bits(), results[0].Bits()) // 4+3+2+1
}

func TestEngine_UnreachableTrapsAsError(t *testing.T) {
	mod := &wasm.Module{
		Types:               []wasm.FunctionType{{}},
		FunctionTypeIndices: []uint32{0},
		Codes: []wasm.Code{{Body: []wasm.Instruction{
			{Op: wasm.OpcodeUnreachable},
			{Op: wasm.OpcodeEnd},
		}}},
	}

	inst, err := wasm.Instantiate("test", mod, nil)
	require.NoError(t, err)

	engine := NewEngine()
	require.NoError(t, engine.CompileModule(mod, inst))

	_, err = engine.Call(context.Background(), inst, 0, nil)
	require.Error(t, err)
	require.EqualError(t, err, "wasm runtime error: unreachable")
}

func TestEngine_CallHostFunction(t *testing.T) {
	// A module importing one host function, adding 1 to its argument, then
	// calling it from a locally-defined exported function.
	hostFn := &wasm.FunctionInstance{
		Kind: wasm.FunctionKindHost,
		Type: &wasm.FunctionType{Params: []wasm.ValueType{wasm.ValueTypeI32}, Results: []wasm.ValueType{wasm.ValueTypeI32}},
		GoFunc: func(_ context.Context, _ *wasm.ModuleInstance, params []wasm.Val) ([]wasm.Val, error) {
			v, _ := params[0].AsI32()
			return []wasm.Val{wasm.ValI32(v + 1)}, nil
		},
		Name: "increment",
	}
	mod := &wasm.Module{
		Types: []wasm.FunctionType{{Params: []wasm.ValueType{wasm.ValueTypeI32}, Results: []wasm.ValueType{wasm.ValueTypeI32}}},
		Imports: []wasm.Import{
			{Type: 0x00, Module: "env", Name: "increment", DescFunc: 0},
		},
		NumImportedFunctions: 1,
		FunctionTypeIndices:  []uint32{0},
		Codes: []wasm.Code{{Body: []wasm.Instruction{
			{Op: wasm.OpcodeLocalGet, Index: 0},
			{Op: wasm.OpcodeCall, Index: 0},
			{Op: wasm.OpcodeEnd},
		}}},
	}

	imports := wasm.Imports{"env": {"increment": hostFn}}
	inst, err := wasm.Instantiate("test", mod, imports)
	require.NoError(t, err)

	engine := NewEngine()
	require.NoError(t, engine.CompileModule(mod, inst))

	results, err := engine.Call(context.Background(), inst, 1, []wasm.Val{wasm.ValI32(41)})
	require.NoError(t, err)
	require.Equal(t, wasm.ValI32(42).Bits(), results[0].Bits())
}
