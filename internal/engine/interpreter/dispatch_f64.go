package interpreter

import (
	"math"

	"github.com/student/wazeroir-slots/internal/wasm"
	"github.com/student/wazeroir-slots/internal/wazeroir"
)

func init() {
	unary := func(f func(float64) float64) numericHandler {
		return func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
			s.SetF64(instr.Dst.Idx, f(s.GetF64(instr.Src1.Idx)))
		}
	}
	binary := func(f func(a, b float64) float64) numericHandler {
		return func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
			s.SetF64(instr.Dst.Idx, f(s.GetF64(instr.Src1.Idx), s.GetF64(instr.Src2.Idx)))
		}
	}
	compare := func(f func(a, b float64) bool) numericHandler {
		return func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
			s.SetI32(instr.Dst.Idx, boolI32(f(s.GetF64(instr.Src1.Idx), s.GetF64(instr.Src2.Idx))))
		}
	}

	numericTable[wasm.OpcodeF64Const] = func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
		s.SetF64(instr.Dst.Idx, instr.ConstF64)
	}

	numericTable[wasm.OpcodeF64Eq] = compare(func(a, b float64) bool { return a == b })
	numericTable[wasm.OpcodeF64Ne] = compare(func(a, b float64) bool { return a != b })
	numericTable[wasm.OpcodeF64Lt] = compare(func(a, b float64) bool { return a < b })
	numericTable[wasm.OpcodeF64Gt] = compare(func(a, b float64) bool { return a > b })
	numericTable[wasm.OpcodeF64Le] = compare(func(a, b float64) bool { return a <= b })
	numericTable[wasm.OpcodeF64Ge] = compare(func(a, b float64) bool { return a >= b })

	numericTable[wasm.OpcodeF64Abs] = unary(math.Abs)
	numericTable[wasm.OpcodeF64Neg] = unary(func(a float64) float64 { return -a })
	numericTable[wasm.OpcodeF64Ceil] = unary(math.Ceil)
	numericTable[wasm.OpcodeF64Floor] = unary(math.Floor)
	numericTable[wasm.OpcodeF64Trunc] = unary(math.Trunc)
	numericTable[wasm.OpcodeF64Nearest] = unary(wasmNearestF64)
	numericTable[wasm.OpcodeF64Sqrt] = unary(math.Sqrt)

	numericTable[wasm.OpcodeF64Add] = binary(func(a, b float64) float64 { return a + b })
	numericTable[wasm.OpcodeF64Sub] = binary(func(a, b float64) float64 { return a - b })
	numericTable[wasm.OpcodeF64Mul] = binary(func(a, b float64) float64 { return a * b })
	numericTable[wasm.OpcodeF64Div] = binary(func(a, b float64) float64 { return a / b })
	numericTable[wasm.OpcodeF64Min] = binary(wasmF64Min)
	numericTable[wasm.OpcodeF64Max] = binary(wasmF64Max)
	numericTable[wasm.OpcodeF64Copysign] = binary(math.Copysign)
}
