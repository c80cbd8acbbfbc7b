package interpreter

import (
	"testing"

	"github.com/student/wazeroir-slots/internal/testing/require"
	"github.com/student/wazeroir-slots/internal/wasm"
	"github.com/student/wazeroir-slots/internal/wazeroir"
)

// TestDispatchTables_CoverRepresentativeOpcodes spot-checks that every
// handler file (dispatch_i32/i64/f32/f64/conversion.go) actually registered
// into numericTable/conversionTable, rather than merely compiling: a typed
// opcode missing its entry panics with "engine invariant violated" the
// first time a module uses it, which none of the narrowly-scoped tests
// below would catch on their own.
func TestDispatchTables_CoverRepresentativeOpcodes(t *testing.T) {
	numeric := []wasm.Opcode{
		wasm.OpcodeI32Eqz, wasm.OpcodeI32Eq, wasm.OpcodeI32Clz, wasm.OpcodeI32Add, wasm.OpcodeI32Const,
		wasm.OpcodeI32Extend8S, wasm.OpcodeI32Extend16S,
		wasm.OpcodeI64Eqz, wasm.OpcodeI64Eq, wasm.OpcodeI64Add, wasm.OpcodeI64Const,
		wasm.OpcodeI64Extend8S, wasm.OpcodeI64Extend16S, wasm.OpcodeI64Extend32S,
		wasm.OpcodeF32Eq, wasm.OpcodeF32Abs, wasm.OpcodeF32Add, wasm.OpcodeF32Const,
		wasm.OpcodeF64Eq, wasm.OpcodeF64Abs, wasm.OpcodeF64Add, wasm.OpcodeF64Const,
	}
	for _, op := range numeric {
		if _, ok := numericTable[op]; !ok {
			t.Errorf("opcode %#x has no numericTable entry", op)
		}
	}

	conversion := []wasm.Opcode{
		wasm.OpcodeI32WrapI64, wasm.OpcodeI32TruncF32S, wasm.OpcodeI32TruncF64U,
		wasm.OpcodeI64ExtendI32S, wasm.OpcodeI64ExtendI32U, wasm.OpcodeI64TruncF64S,
		wasm.OpcodeF32ConvertI32S, wasm.OpcodeF32DemoteF64,
		wasm.OpcodeF64ConvertI64U, wasm.OpcodeF64PromoteF32,
		wasm.OpcodeI32ReinterpretF32, wasm.OpcodeI64ReinterpretF64,
		wasm.OpcodeF32ReinterpretI32, wasm.OpcodeF64ReinterpretI64,
		wasm.OpcodeI32TruncSatF32S, wasm.OpcodeI64TruncSatF64U,
	}
	for _, op := range conversion {
		if _, ok := conversionTable[op]; !ok {
			t.Errorf("opcode %#x has no conversionTable entry", op)
		}
	}
}

func TestExecTyped_I32Add(t *testing.T) {
	s := wazeroir.NewSlotFile()
	s.PushFrame(wazeroir.PerKindCounts{wazeroir.SlotKindI32: 3})
	s.SetI32(0, 3)
	s.SetI32(1, 4)
	instr := &wazeroir.Instr{WasmOp: wasm.OpcodeI32Add, Src1: wazeroir.Slot{Kind: wazeroir.SlotKindI32, Idx: 0}, Src2: wazeroir.Slot{Kind: wazeroir.SlotKindI32, Idx: 1}, Dst: wazeroir.Slot{Kind: wazeroir.SlotKindI32, Idx: 2}}
	execTyped(s, instr)
	require.Equal(t, int32(7), s.GetI32(2))
}

func TestExecTyped_I32DivU(t *testing.T) {
	s := wazeroir.NewSlotFile()
	s.PushFrame(wazeroir.PerKindCounts{wazeroir.SlotKindI32: 3})
	s.SetI32(0, -8) // 0xFFFFFFF8 as unsigned
	s.SetI32(1, 2)
	instr := &wazeroir.Instr{WasmOp: wasm.OpcodeI32DivU, Src1: wazeroir.Slot{Kind: wazeroir.SlotKindI32, Idx: 0}, Src2: wazeroir.Slot{Kind: wazeroir.SlotKindI32, Idx: 1}, Dst: wazeroir.Slot{Kind: wazeroir.SlotKindI32, Idx: 2}}
	execTyped(s, instr)
	require.Equal(t, int32(uint32(0xFFFFFFF8)/2), s.GetI32(2))
}

func TestExecTyped_I64Mul(t *testing.T) {
	s := wazeroir.NewSlotFile()
	s.PushFrame(wazeroir.PerKindCounts{wazeroir.SlotKindI64: 3})
	s.SetI64(0, 6)
	s.SetI64(1, 7)
	instr := &wazeroir.Instr{WasmOp: wasm.OpcodeI64Mul, Src1: wazeroir.Slot{Kind: wazeroir.SlotKindI64, Idx: 0}, Src2: wazeroir.Slot{Kind: wazeroir.SlotKindI64, Idx: 1}, Dst: wazeroir.Slot{Kind: wazeroir.SlotKindI64, Idx: 2}}
	execTyped(s, instr)
	require.Equal(t, int64(42), s.GetI64(2))
}

func TestExecTyped_F64Lt(t *testing.T) {
	s := wazeroir.NewSlotFile()
	s.PushFrame(wazeroir.PerKindCounts{wazeroir.SlotKindF64: 2, wazeroir.SlotKindI32: 1})
	s.SetF64(0, 1.5)
	s.SetF64(1, 2.5)
	instr := &wazeroir.Instr{WasmOp: wasm.OpcodeF64Lt, Src1: wazeroir.Slot{Kind: wazeroir.SlotKindF64, Idx: 0}, Src2: wazeroir.Slot{Kind: wazeroir.SlotKindF64, Idx: 1}, Dst: wazeroir.Slot{Kind: wazeroir.SlotKindI32, Idx: 0}}
	execTyped(s, instr)
	require.Equal(t, int32(1), s.GetI32(0))
}

func TestExecConversion_I32WrapI64(t *testing.T) {
	s := wazeroir.NewSlotFile()
	s.PushFrame(wazeroir.PerKindCounts{wazeroir.SlotKindI64: 1, wazeroir.SlotKindI32: 1})
	s.SetI64(0, 1<<33+5)
	instr := &wazeroir.Instr{WasmOp: wasm.OpcodeI32WrapI64, Src1: wazeroir.Slot{Kind: wazeroir.SlotKindI64, Idx: 0}, Dst: wazeroir.Slot{Kind: wazeroir.SlotKindI32, Idx: 0}}
	execConversion(s, instr)
	require.Equal(t, int32(5), s.GetI32(0))
}

func TestExecSelect(t *testing.T) {
	s := wazeroir.NewSlotFile()
	s.PushFrame(wazeroir.PerKindCounts{wazeroir.SlotKindI32: 3})
	s.SetI32(0, 11) // v1
	s.SetI32(1, 22) // v2
	s.SetI32(2, 1)  // cond true -> v1
	instr := &wazeroir.Instr{Src1: wazeroir.Slot{Kind: wazeroir.SlotKindI32, Idx: 0}, Src2: wazeroir.Slot{Kind: wazeroir.SlotKindI32, Idx: 1}, Src3: wazeroir.Slot{Kind: wazeroir.SlotKindI32, Idx: 2}, Dst: wazeroir.Slot{Kind: wazeroir.SlotKindI32, Idx: 1}}
	execSelect(s, instr)
	require.Equal(t, int32(11), s.GetI32(1))
}

func TestExecTyped_UnregisteredOpcodePanics(t *testing.T) {
	s := wazeroir.NewSlotFile()
	s.PushFrame(wazeroir.PerKindCounts{wazeroir.SlotKindI32: 1})
	instr := &wazeroir.Instr{WasmOp: wasm.OpcodeNop, Dst: wazeroir.Slot{Kind: wazeroir.SlotKindI32, Idx: 0}}
	require.Panics(t, func() { execTyped(s, instr) })
}
