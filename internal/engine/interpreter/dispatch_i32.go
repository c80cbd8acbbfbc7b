package interpreter

import (
	"math/bits"

	"github.com/student/wazeroir-slots/internal/wasm"
	"github.com/student/wazeroir-slots/internal/wasmruntime"
	"github.com/student/wazeroir-slots/internal/wazeroir"
)

func init() {
	unary := func(f func(int32) int32) numericHandler {
		return func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
			s.SetI32(instr.Dst.Idx, f(s.GetI32(instr.Src1.Idx)))
		}
	}
	binary := func(f func(a, b int32) int32) numericHandler {
		return func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
			s.SetI32(instr.Dst.Idx, f(s.GetI32(instr.Src1.Idx), s.GetI32(instr.Src2.Idx)))
		}
	}
	compare := func(f func(a, b int32) bool) numericHandler {
		return func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
			s.SetI32(instr.Dst.Idx, boolI32(f(s.GetI32(instr.Src1.Idx), s.GetI32(instr.Src2.Idx))))
		}
	}
	compareU := func(f func(a, b uint32) bool) numericHandler {
		return func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
			s.SetI32(instr.Dst.Idx, boolI32(f(uint32(s.GetI32(instr.Src1.Idx)), uint32(s.GetI32(instr.Src2.Idx)))))
		}
	}

	numericTable[wasm.OpcodeI32Const] = func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
		s.SetI32(instr.Dst.Idx, instr.ConstI32)
	}

	numericTable[wasm.OpcodeI32Eqz] = unary(func(a int32) int32 { return boolI32(a == 0) })
	numericTable[wasm.OpcodeI32Eq] = compare(func(a, b int32) bool { return a == b })
	numericTable[wasm.OpcodeI32Ne] = compare(func(a, b int32) bool { return a != b })
	numericTable[wasm.OpcodeI32LtS] = compare(func(a, b int32) bool { return a < b })
	numericTable[wasm.OpcodeI32LtU] = compareU(func(a, b uint32) bool { return a < b })
	numericTable[wasm.OpcodeI32GtS] = compare(func(a, b int32) bool { return a > b })
	numericTable[wasm.OpcodeI32GtU] = compareU(func(a, b uint32) bool { return a > b })
	numericTable[wasm.OpcodeI32LeS] = compare(func(a, b int32) bool { return a <= b })
	numericTable[wasm.OpcodeI32LeU] = compareU(func(a, b uint32) bool { return a <= b })
	numericTable[wasm.OpcodeI32GeS] = compare(func(a, b int32) bool { return a >= b })
	numericTable[wasm.OpcodeI32GeU] = compareU(func(a, b uint32) bool { return a >= b })

	numericTable[wasm.OpcodeI32Clz] = unary(func(a int32) int32 { return int32(bits.LeadingZeros32(uint32(a))) })
	numericTable[wasm.OpcodeI32Ctz] = unary(func(a int32) int32 { return int32(bits.TrailingZeros32(uint32(a))) })
	numericTable[wasm.OpcodeI32Popcnt] = unary(func(a int32) int32 { return int32(bits.OnesCount32(uint32(a))) })
	numericTable[wasm.OpcodeI32Extend8S] = unary(func(a int32) int32 { return int32(int8(a)) })
	numericTable[wasm.OpcodeI32Extend16S] = unary(func(a int32) int32 { return int32(int16(a)) })

	numericTable[wasm.OpcodeI32Add] = binary(func(a, b int32) int32 { return a + b })
	numericTable[wasm.OpcodeI32Sub] = binary(func(a, b int32) int32 { return a - b })
	numericTable[wasm.OpcodeI32Mul] = binary(func(a, b int32) int32 { return a * b })
	numericTable[wasm.OpcodeI32DivS] = binary(func(a, b int32) int32 {
		if b == 0 {
			panic(wasmruntime.ErrRuntimeIntegerDivideByZero)
		}
		if a == -1<<31 && b == -1 {
			panic(wasmruntime.ErrRuntimeIntegerOverflow)
		}
		return a / b
	})
	numericTable[wasm.OpcodeI32DivU] = binary(func(a, b int32) int32 {
		if b == 0 {
			panic(wasmruntime.ErrRuntimeIntegerDivideByZero)
		}
		return int32(uint32(a) / uint32(b))
	})
	numericTable[wasm.OpcodeI32RemS] = binary(func(a, b int32) int32 {
		if b == 0 {
			panic(wasmruntime.ErrRuntimeIntegerDivideByZero)
		}
		if a == -1<<31 && b == -1 {
			return 0
		}
		return a % b
	})
	numericTable[wasm.OpcodeI32RemU] = binary(func(a, b int32) int32 {
		if b == 0 {
			panic(wasmruntime.ErrRuntimeIntegerDivideByZero)
		}
		return int32(uint32(a) % uint32(b))
	})
	numericTable[wasm.OpcodeI32And] = binary(func(a, b int32) int32 { return a & b })
	numericTable[wasm.OpcodeI32Or] = binary(func(a, b int32) int32 { return a | b })
	numericTable[wasm.OpcodeI32Xor] = binary(func(a, b int32) int32 { return a ^ b })
	numericTable[wasm.OpcodeI32Shl] = binary(func(a, b int32) int32 { return a << (uint32(b) % 32) })
	numericTable[wasm.OpcodeI32ShrS] = binary(func(a, b int32) int32 { return a >> (uint32(b) % 32) })
	numericTable[wasm.OpcodeI32ShrU] = binary(func(a, b int32) int32 { return int32(uint32(a) >> (uint32(b) % 32)) })
	numericTable[wasm.OpcodeI32Rotl] = binary(func(a, b int32) int32 { return int32(bits.RotateLeft32(uint32(a), int(b))) })
	numericTable[wasm.OpcodeI32Rotr] = binary(func(a, b int32) int32 { return int32(bits.RotateLeft32(uint32(a), -int(b))) })
}
