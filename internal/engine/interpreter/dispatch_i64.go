package interpreter

import (
	"math/bits"

	"github.com/student/wazeroir-slots/internal/wasm"
	"github.com/student/wazeroir-slots/internal/wasmruntime"
	"github.com/student/wazeroir-slots/internal/wazeroir"
)

func init() {
	unary := func(f func(int64) int64) numericHandler {
		return func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
			s.SetI64(instr.Dst.Idx, f(s.GetI64(instr.Src1.Idx)))
		}
	}
	binary := func(f func(a, b int64) int64) numericHandler {
		return func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
			s.SetI64(instr.Dst.Idx, f(s.GetI64(instr.Src1.Idx), s.GetI64(instr.Src2.Idx)))
		}
	}
	compareI32 := func(f func(a, b int64) bool) numericHandler {
		return func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
			s.SetI32(instr.Dst.Idx, boolI32(f(s.GetI64(instr.Src1.Idx), s.GetI64(instr.Src2.Idx))))
		}
	}
	compareU := func(f func(a, b uint64) bool) numericHandler {
		return func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
			s.SetI32(instr.Dst.Idx, boolI32(f(uint64(s.GetI64(instr.Src1.Idx)), uint64(s.GetI64(instr.Src2.Idx)))))
		}
	}

	numericTable[wasm.OpcodeI64Const] = func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
		s.SetI64(instr.Dst.Idx, instr.ConstI64)
	}

	numericTable[wasm.OpcodeI64Eqz] = func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
		s.SetI32(instr.Dst.Idx, boolI32(s.GetI64(instr.Src1.Idx) == 0))
	}
	numericTable[wasm.OpcodeI64Eq] = compareI32(func(a, b int64) bool { return a == b })
	numericTable[wasm.OpcodeI64Ne] = compareI32(func(a, b int64) bool { return a != b })
	numericTable[wasm.OpcodeI64LtS] = compareI32(func(a, b int64) bool { return a < b })
	numericTable[wasm.OpcodeI64LtU] = compareU(func(a, b uint64) bool { return a < b })
	numericTable[wasm.OpcodeI64GtS] = compareI32(func(a, b int64) bool { return a > b })
	numericTable[wasm.OpcodeI64GtU] = compareU(func(a, b uint64) bool { return a > b })
	numericTable[wasm.OpcodeI64LeS] = compareI32(func(a, b int64) bool { return a <= b })
	numericTable[wasm.OpcodeI64LeU] = compareU(func(a, b uint64) bool { return a <= b })
	numericTable[wasm.OpcodeI64GeS] = compareI32(func(a, b int64) bool { return a >= b })
	numericTable[wasm.OpcodeI64GeU] = compareU(func(a, b uint64) bool { return a >= b })

	numericTable[wasm.OpcodeI64Clz] = unary(func(a int64) int64 { return int64(bits.LeadingZeros64(uint64(a))) })
	numericTable[wasm.OpcodeI64Ctz] = unary(func(a int64) int64 { return int64(bits.TrailingZeros64(uint64(a))) })
	numericTable[wasm.OpcodeI64Popcnt] = unary(func(a int64) int64 { return int64(bits.OnesCount64(uint64(a))) })
	numericTable[wasm.OpcodeI64Extend8S] = unary(func(a int64) int64 { return int64(int8(a)) })
	numericTable[wasm.OpcodeI64Extend16S] = unary(func(a int64) int64 { return int64(int16(a)) })
	numericTable[wasm.OpcodeI64Extend32S] = unary(func(a int64) int64 { return int64(int32(a)) })

	numericTable[wasm.OpcodeI64Add] = binary(func(a, b int64) int64 { return a + b })
	numericTable[wasm.OpcodeI64Sub] = binary(func(a, b int64) int64 { return a - b })
	numericTable[wasm.OpcodeI64Mul] = binary(func(a, b int64) int64 { return a * b })
	numericTable[wasm.OpcodeI64DivS] = binary(func(a, b int64) int64 {
		if b == 0 {
			panic(wasmruntime.ErrRuntimeIntegerDivideByZero)
		}
		if a == -1<<63 && b == -1 {
			panic(wasmruntime.ErrRuntimeIntegerOverflow)
		}
		return a / b
	})
	numericTable[wasm.OpcodeI64DivU] = binary(func(a, b int64) int64 {
		if b == 0 {
			panic(wasmruntime.ErrRuntimeIntegerDivideByZero)
		}
		return int64(uint64(a) / uint64(b))
	})
	numericTable[wasm.OpcodeI64RemS] = binary(func(a, b int64) int64 {
		if b == 0 {
			panic(wasmruntime.ErrRuntimeIntegerDivideByZero)
		}
		if a == -1<<63 && b == -1 {
			return 0
		}
		return a % b
	})
	numericTable[wasm.OpcodeI64RemU] = binary(func(a, b int64) int64 {
		if b == 0 {
			panic(wasmruntime.ErrRuntimeIntegerDivideByZero)
		}
		return int64(uint64(a) % uint64(b))
	})
	numericTable[wasm.OpcodeI64And] = binary(func(a, b int64) int64 { return a & b })
	numericTable[wasm.OpcodeI64Or] = binary(func(a, b int64) int64 { return a | b })
	numericTable[wasm.OpcodeI64Xor] = binary(func(a, b int64) int64 { return a ^ b })
	numericTable[wasm.OpcodeI64Shl] = binary(func(a, b int64) int64 { return a << (uint64(b) % 64) })
	numericTable[wasm.OpcodeI64ShrS] = binary(func(a, b int64) int64 { return a >> (uint64(b) % 64) })
	numericTable[wasm.OpcodeI64ShrU] = binary(func(a, b int64) int64 { return int64(uint64(a) >> (uint64(b) % 64)) })
	numericTable[wasm.OpcodeI64Rotl] = binary(func(a, b int64) int64 { return int64(bits.RotateLeft64(uint64(a), int(b))) })
	numericTable[wasm.OpcodeI64Rotr] = binary(func(a, b int64) int64 { return int64(bits.RotateLeft64(uint64(a), -int(b))) })
}
