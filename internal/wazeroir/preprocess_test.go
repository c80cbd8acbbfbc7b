package wazeroir

import (
	"testing"

	"github.com/student/wazeroir-slots/api"
	"github.com/student/wazeroir-slots/internal/testing/require"
	"github.com/student/wazeroir-slots/internal/wasm"
)

func TestCompile_ConstAdd(t *testing.T) {
	fnType := &wasm.FunctionType{Results: []wasm.ValueType{wasm.ValueTypeI32}}
	code := &wasm.Code{Body: []wasm.Instruction{
		{Op: wasm.OpcodeI32Const, ConstI32: 1},
		{Op: wasm.OpcodeI32Const, ConstI32: 2},
		{Op: wasm.OpcodeI32Add},
		{Op: wasm.OpcodeEnd},
	}}

	cf, err := Compile(&wasm.Module{}, 0, fnType, code)
	require.NoError(t, err)
	require.Equal(t, 4, len(cf.Body))

	require.Equal(t, IRTyped, cf.Body[0].Op)
	require.Equal(t, int32(1), cf.Body[0].ConstI32)
	require.Equal(t, Slot{Kind: SlotKindI32, Idx: 0}, cf.Body[0].Dst)

	require.Equal(t, Slot{Kind: SlotKindI32, Idx: 1}, cf.Body[1].Dst)

	add := cf.Body[2]
	require.Equal(t, IRTyped, add.Op)
	require.Equal(t, wasm.OpcodeI32Add, add.WasmOp)
	require.Equal(t, Slot{Kind: SlotKindI32, Idx: 0}, add.Src1)
	require.Equal(t, Slot{Kind: SlotKindI32, Idx: 1}, add.Src2)
	require.Equal(t, Slot{Kind: SlotKindI32, Idx: 0}, add.Dst)

	end := cf.Body[3]
	require.Equal(t, IREnd, end.Op)
	require.Equal(t, int32(1), end.Arity)

	require.Equal(t, PerKindCounts{SlotKindI32: 2}, cf.SlotCounts)
}

func TestCompile_LocalGetSetAdd(t *testing.T) {
	fnType := &wasm.FunctionType{
		Params:  []wasm.ValueType{wasm.ValueTypeI32, wasm.ValueTypeI32},
		Results: []wasm.ValueType{wasm.ValueTypeI32},
	}
	code := &wasm.Code{Body: []wasm.Instruction{
		{Op: wasm.OpcodeLocalGet, Index: 0},
		{Op: wasm.OpcodeLocalGet, Index: 1},
		{Op: wasm.OpcodeI32Add},
		{Op: wasm.OpcodeEnd},
	}}

	cf, err := Compile(&wasm.Module{}, 0, fnType, code)
	require.NoError(t, err)

	require.Equal(t, 2, cf.NumLocals)
	require.Equal(t, []Slot{{Kind: SlotKindI32, Idx: 0}, {Kind: SlotKindI32, Idx: 1}}, cf.LocalSlots)

	require.Equal(t, 4, len(cf.Body))
	require.Equal(t, IRLocalGet, cf.Body[0].Op)
	require.Equal(t, uint32(0), cf.Body[0].LocalIdx)
	require.Equal(t, Slot{Kind: SlotKindI32, Idx: 0}, cf.Body[0].Src1)

	require.Equal(t, IRLocalGet, cf.Body[1].Op)
	require.Equal(t, uint32(1), cf.Body[1].LocalIdx)
	require.Equal(t, Slot{Kind: SlotKindI32, Idx: 1}, cf.Body[1].Src1)

	require.Equal(t, PerKindCounts{SlotKindI32: 4}, cf.SlotCounts)
}

func TestCompile_IfElse(t *testing.T) {
	fnType := &wasm.FunctionType{
		Params:  []wasm.ValueType{wasm.ValueTypeI32},
		Results: []wasm.ValueType{wasm.ValueTypeI32},
	}
	code := &wasm.Code{Body: []wasm.Instruction{
		{Op: wasm.OpcodeLocalGet, Index: 0},
		{Op: wasm.OpcodeIf, Block: wasm.BlockType{Results: []wasm.ValueType{wasm.ValueTypeI32}}},
		{Op: wasm.OpcodeI32Const, ConstI32: 10},
		{Op: wasm.OpcodeElse},
		{Op: wasm.OpcodeI32Const, ConstI32: 20},
		{Op: wasm.OpcodeEnd}, // closes if
		{Op: wasm.OpcodeEnd}, // closes function
	}}

	cf, err := Compile(&wasm.Module{}, 0, fnType, code)
	require.NoError(t, err)
	require.Equal(t, 7, len(cf.Body))

	ifInstr := cf.Body[1]
	require.Equal(t, IRIf, ifInstr.Op)
	require.True(t, ifInstr.HasElse)
	require.Equal(t, int32(4), ifInstr.Target2) // false arm starts right after the jump
	require.Equal(t, int32(6), ifInstr.Target)   // past the if's own end

	jump := cf.Body[3]
	require.Equal(t, IRJump, jump.Op)
	require.Equal(t, int32(6), jump.Target)

	require.Equal(t, IREnd, cf.Body[5].Op) // if's end
	require.Equal(t, IREnd, cf.Body[6].Op) // function's end
}

func TestCompile_LoopBr(t *testing.T) {
	fnType := &wasm.FunctionType{}
	code := &wasm.Code{Body: []wasm.Instruction{
		{Op: wasm.OpcodeLoop, Block: wasm.BlockType{}},
		{Op: wasm.OpcodeBr, Index: 0},
		{Op: wasm.OpcodeEnd}, // closes loop
		{Op: wasm.OpcodeEnd}, // closes function
	}}

	cf, err := Compile(&wasm.Module{}, 0, fnType, code)
	require.NoError(t, err)
	require.Equal(t, 4, len(cf.Body))

	require.Equal(t, IRLoop, cf.Body[0].Op)

	br := cf.Body[1]
	require.Equal(t, IRBr, br.Op)
	require.Equal(t, int32(1), br.Target) // re-entry skips the Loop marker itself
	require.Equal(t, int32(0), br.Level)  // branching to an enclosing loop doesn't pop a scope
}

func TestCompile_CallLocal(t *testing.T) {
	module := &wasm.Module{
		Types:               []wasm.FunctionType{{Params: []wasm.ValueType{wasm.ValueTypeI32}, Results: []wasm.ValueType{wasm.ValueTypeI32}}},
		FunctionTypeIndices: []uint32{0, 0},
	}
	fnType := &module.Types[0]
	code := &wasm.Code{Body: []wasm.Instruction{
		{Op: wasm.OpcodeLocalGet, Index: 0},
		{Op: wasm.OpcodeCall, Index: 0},
		{Op: wasm.OpcodeEnd},
	}}

	cf, err := Compile(module, 1, fnType, code)
	require.NoError(t, err)

	call := cf.Body[1]
	require.Equal(t, IRCall, call.Op)
	require.Equal(t, uint32(0), call.FuncIdx)
	require.Equal(t, 1, len(call.SrcSlots))
	require.Equal(t, 1, len(call.DstSlots))
}

func TestCompile_CallImportedBecomesCallWasi(t *testing.T) {
	module := &wasm.Module{
		Types: []wasm.FunctionType{{Params: []wasm.ValueType{wasm.ValueTypeI32}, Results: []wasm.ValueType{wasm.ValueTypeI32}}},
		Imports: []wasm.Import{
			{Type: api.ExternTypeFunc, Module: "wasi_snapshot_preview1", Name: "proc_exit", DescFunc: 0},
		},
		NumImportedFunctions: 1,
	}
	fnType := &wasm.FunctionType{}
	code := &wasm.Code{Body: []wasm.Instruction{
		{Op: wasm.OpcodeI32Const, ConstI32: 1},
		{Op: wasm.OpcodeCall, Index: 0},
		{Op: wasm.OpcodeDrop},
		{Op: wasm.OpcodeEnd},
	}}

	cf, err := Compile(module, 0, fnType, code)
	require.NoError(t, err)

	call := cf.Body[1]
	require.Equal(t, IRCallWasi, call.Op)
	require.Equal(t, uint32(0), call.FuncIdx)
}

func TestCompile_BranchDepthExceedsScope(t *testing.T) {
	fnType := &wasm.FunctionType{}
	code := &wasm.Code{Body: []wasm.Instruction{
		{Op: wasm.OpcodeBr, Index: 5},
		{Op: wasm.OpcodeEnd},
	}}

	_, err := Compile(&wasm.Module{}, 0, fnType, code)
	require.Error(t, err)
	pe, ok := err.(*PreprocessError)
	require.True(t, ok)
	require.Equal(t, uint32(0), pe.FuncIndex)
}

func TestCompile_ElseWithoutIf(t *testing.T) {
	fnType := &wasm.FunctionType{}
	code := &wasm.Code{Body: []wasm.Instruction{{Op: wasm.OpcodeElse}}}

	_, err := Compile(&wasm.Module{}, 0, fnType, code)
	require.Error(t, err)
}

func TestCompile_EndWithoutMatchingScope(t *testing.T) {
	fnType := &wasm.FunctionType{}
	// the first End closes the function's own outer scope; the second has
	// nothing left to close.
	code := &wasm.Code{Body: []wasm.Instruction{{Op: wasm.OpcodeEnd}, {Op: wasm.OpcodeEnd}}}

	_, err := Compile(&wasm.Module{}, 0, fnType, code)
	require.Error(t, err)
}

func TestCompile_MissingEnd(t *testing.T) {
	fnType := &wasm.FunctionType{}
	code := &wasm.Code{Body: []wasm.Instruction{{Op: wasm.OpcodeNop}}}

	_, err := Compile(&wasm.Module{}, 0, fnType, code)
	require.Error(t, err)
	require.EqualError(t, err, "wazeroir: function 0: function body ended without matching end for every block")
}
