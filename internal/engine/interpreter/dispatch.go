package interpreter

import (
	"github.com/student/wazeroir-slots/internal/wasm"
	"github.com/student/wazeroir-slots/internal/wazeroir"
)

// numericHandler executes one arithmetic/compare/unary/const instruction
// against the slot file, reading its operands from Src1/Src2 and writing
// its result to Dst — the per-type dispatch tables of spec.md §4.5.
// Populated by dispatch_i32.go/dispatch_i64.go/dispatch_f32.go/
// dispatch_f64.go's init functions into numericTable, and by
// dispatch_conversion.go's into conversionTable; every real opcode belongs
// to exactly one category.
type numericHandler func(s *wazeroir.SlotFile, instr *wazeroir.Instr)

var numericTable = map[wasm.Opcode]numericHandler{}
var conversionTable = map[wasm.Opcode]numericHandler{}

func execTyped(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
	h, ok := numericTable[instr.WasmOp]
	if !ok {
		panic("engine invariant violated: no handler for typed opcode")
	}
	h(s, instr)
}

func execConversion(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
	h, ok := conversionTable[instr.WasmOp]
	if !ok {
		panic("engine invariant violated: no handler for conversion opcode")
	}
	h(s, instr)
}

func execSelect(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
	if s.GetI32(instr.Src3.Idx) != 0 {
		s.CopySlot(instr.Src1, instr.Dst)
	} else {
		s.CopySlot(instr.Src2, instr.Dst)
	}
}

func boolI32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
