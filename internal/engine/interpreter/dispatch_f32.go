package interpreter

import (
	"math"

	"github.com/student/wazeroir-slots/internal/wasm"
	"github.com/student/wazeroir-slots/internal/wazeroir"
)

func init() {
	unary := func(f func(float32) float32) numericHandler {
		return func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
			s.SetF32(instr.Dst.Idx, f(s.GetF32(instr.Src1.Idx)))
		}
	}
	binary := func(f func(a, b float32) float32) numericHandler {
		return func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
			s.SetF32(instr.Dst.Idx, f(s.GetF32(instr.Src1.Idx), s.GetF32(instr.Src2.Idx)))
		}
	}
	compare := func(f func(a, b float32) bool) numericHandler {
		return func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
			s.SetI32(instr.Dst.Idx, boolI32(f(s.GetF32(instr.Src1.Idx), s.GetF32(instr.Src2.Idx))))
		}
	}

	numericTable[wasm.OpcodeF32Const] = func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
		s.SetF32(instr.Dst.Idx, instr.ConstF32)
	}

	numericTable[wasm.OpcodeF32Eq] = compare(func(a, b float32) bool { return a == b })
	numericTable[wasm.OpcodeF32Ne] = compare(func(a, b float32) bool { return a != b })
	numericTable[wasm.OpcodeF32Lt] = compare(func(a, b float32) bool { return a < b })
	numericTable[wasm.OpcodeF32Gt] = compare(func(a, b float32) bool { return a > b })
	numericTable[wasm.OpcodeF32Le] = compare(func(a, b float32) bool { return a <= b })
	numericTable[wasm.OpcodeF32Ge] = compare(func(a, b float32) bool { return a >= b })

	numericTable[wasm.OpcodeF32Abs] = unary(func(a float32) float32 { return float32(math.Abs(float64(a))) })
	numericTable[wasm.OpcodeF32Neg] = unary(func(a float32) float32 { return -a })
	numericTable[wasm.OpcodeF32Ceil] = unary(func(a float32) float32 { return float32(math.Ceil(float64(a))) })
	numericTable[wasm.OpcodeF32Floor] = unary(func(a float32) float32 { return float32(math.Floor(float64(a))) })
	numericTable[wasm.OpcodeF32Trunc] = unary(func(a float32) float32 { return float32(math.Trunc(float64(a))) })
	numericTable[wasm.OpcodeF32Nearest] = unary(wasmNearestF32)
	numericTable[wasm.OpcodeF32Sqrt] = unary(func(a float32) float32 { return float32(math.Sqrt(float64(a))) })

	numericTable[wasm.OpcodeF32Add] = binary(func(a, b float32) float32 { return a + b })
	numericTable[wasm.OpcodeF32Sub] = binary(func(a, b float32) float32 { return a - b })
	numericTable[wasm.OpcodeF32Mul] = binary(func(a, b float32) float32 { return a * b })
	numericTable[wasm.OpcodeF32Div] = binary(func(a, b float32) float32 { return a / b })
	numericTable[wasm.OpcodeF32Min] = binary(wasmF32Min)
	numericTable[wasm.OpcodeF32Max] = binary(wasmF32Max)
	numericTable[wasm.OpcodeF32Copysign] = binary(func(a, b float32) float32 {
		return float32(math.Copysign(float64(a), float64(b)))
	})
}
