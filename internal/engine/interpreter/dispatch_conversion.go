package interpreter

import (
	"math"

	"github.com/student/wazeroir-slots/internal/wasm"
	"github.com/student/wazeroir-slots/internal/wasmruntime"
	"github.com/student/wazeroir-slots/internal/wazeroir"
)

// truncF64ToI32 implements the trapping i32.trunc_f32_s/f64_s/_u family
// (spec.md §4.5: NaN or out-of-range source traps InvalidConversionToInteger).
func truncF64ToI32(f float64, signed bool) int32 {
	if math.IsNaN(f) {
		panic(wasmruntime.ErrRuntimeInvalidConversionToInteger)
	}
	t := math.Trunc(f)
	if signed {
		if t < -2147483648.0 || t >= 2147483648.0 {
			panic(wasmruntime.ErrRuntimeInvalidConversionToInteger)
		}
		return int32(t)
	}
	if t < 0 || t >= 4294967296.0 {
		panic(wasmruntime.ErrRuntimeInvalidConversionToInteger)
	}
	return int32(uint32(t))
}

func truncF64ToI64(f float64, signed bool) int64 {
	if math.IsNaN(f) {
		panic(wasmruntime.ErrRuntimeInvalidConversionToInteger)
	}
	t := math.Trunc(f)
	if signed {
		if t < -9223372036854775808.0 || t >= 9223372036854775808.0 {
			panic(wasmruntime.ErrRuntimeInvalidConversionToInteger)
		}
		return int64(t)
	}
	if t < 0 || t >= 18446744073709551616.0 {
		panic(wasmruntime.ErrRuntimeInvalidConversionToInteger)
	}
	return int64(uint64(t))
}

// truncSatF64ToI32/I64 implement the non-trapping trunc_sat family
// (spec.md §1's non-trapping float-to-int proposal): NaN saturates to 0,
// out-of-range saturates to the nearest representable bound.
func truncSatF64ToI32(f float64, signed bool) int32 {
	if math.IsNaN(f) {
		return 0
	}
	t := math.Trunc(f)
	if signed {
		if t < -2147483648.0 {
			return math.MinInt32
		}
		if t >= 2147483648.0 {
			return math.MaxInt32
		}
		return int32(t)
	}
	if t < 0 {
		return 0
	}
	if t >= 4294967296.0 {
		return -1 // bit pattern of math.MaxUint32
	}
	return int32(uint32(t))
}

func truncSatF64ToI64(f float64, signed bool) int64 {
	if math.IsNaN(f) {
		return 0
	}
	t := math.Trunc(f)
	if signed {
		if t < -9223372036854775808.0 {
			return math.MinInt64
		}
		if t >= 9223372036854775808.0 {
			return math.MaxInt64
		}
		return int64(t)
	}
	if t < 0 {
		return 0
	}
	if t >= 18446744073709551616.0 {
		return -1 // bit pattern of math.MaxUint64
	}
	return int64(uint64(t))
}

func init() {
	conversionTable[wasm.OpcodeI32WrapI64] = func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
		s.SetI32(instr.Dst.Idx, int32(s.GetI64(instr.Src1.Idx)))
	}
	conversionTable[wasm.OpcodeI32TruncF32S] = func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
		s.SetI32(instr.Dst.Idx, truncF64ToI32(float64(s.GetF32(instr.Src1.Idx)), true))
	}
	conversionTable[wasm.OpcodeI32TruncF32U] = func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
		s.SetI32(instr.Dst.Idx, truncF64ToI32(float64(s.GetF32(instr.Src1.Idx)), false))
	}
	conversionTable[wasm.OpcodeI32TruncF64S] = func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
		s.SetI32(instr.Dst.Idx, truncF64ToI32(s.GetF64(instr.Src1.Idx), true))
	}
	conversionTable[wasm.OpcodeI32TruncF64U] = func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
		s.SetI32(instr.Dst.Idx, truncF64ToI32(s.GetF64(instr.Src1.Idx), false))
	}

	conversionTable[wasm.OpcodeI64ExtendI32S] = func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
		s.SetI64(instr.Dst.Idx, int64(s.GetI32(instr.Src1.Idx)))
	}
	conversionTable[wasm.OpcodeI64ExtendI32U] = func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
		s.SetI64(instr.Dst.Idx, int64(uint32(s.GetI32(instr.Src1.Idx))))
	}
	conversionTable[wasm.OpcodeI64TruncF32S] = func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
		s.SetI64(instr.Dst.Idx, truncF64ToI64(float64(s.GetF32(instr.Src1.Idx)), true))
	}
	conversionTable[wasm.OpcodeI64TruncF32U] = func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
		s.SetI64(instr.Dst.Idx, truncF64ToI64(float64(s.GetF32(instr.Src1.Idx)), false))
	}
	conversionTable[wasm.OpcodeI64TruncF64S] = func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
		s.SetI64(instr.Dst.Idx, truncF64ToI64(s.GetF64(instr.Src1.Idx), true))
	}
	conversionTable[wasm.OpcodeI64TruncF64U] = func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
		s.SetI64(instr.Dst.Idx, truncF64ToI64(s.GetF64(instr.Src1.Idx), false))
	}

	conversionTable[wasm.OpcodeF32ConvertI32S] = func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
		s.SetF32(instr.Dst.Idx, float32(s.GetI32(instr.Src1.Idx)))
	}
	conversionTable[wasm.OpcodeF32ConvertI32U] = func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
		s.SetF32(instr.Dst.Idx, float32(uint32(s.GetI32(instr.Src1.Idx))))
	}
	conversionTable[wasm.OpcodeF32ConvertI64S] = func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
		s.SetF32(instr.Dst.Idx, float32(s.GetI64(instr.Src1.Idx)))
	}
	conversionTable[wasm.OpcodeF32ConvertI64U] = func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
		s.SetF32(instr.Dst.Idx, float32(uint64(s.GetI64(instr.Src1.Idx))))
	}
	conversionTable[wasm.OpcodeF32DemoteF64] = func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
		s.SetF32(instr.Dst.Idx, float32(s.GetF64(instr.Src1.Idx)))
	}

	conversionTable[wasm.OpcodeF64ConvertI32S] = func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
		s.SetF64(instr.Dst.Idx, float64(s.GetI32(instr.Src1.Idx)))
	}
	conversionTable[wasm.OpcodeF64ConvertI32U] = func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
		s.SetF64(instr.Dst.Idx, float64(uint32(s.GetI32(instr.Src1.Idx))))
	}
	conversionTable[wasm.OpcodeF64ConvertI64S] = func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
		s.SetF64(instr.Dst.Idx, float64(s.GetI64(instr.Src1.Idx)))
	}
	conversionTable[wasm.OpcodeF64ConvertI64U] = func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
		s.SetF64(instr.Dst.Idx, float64(uint64(s.GetI64(instr.Src1.Idx))))
	}
	conversionTable[wasm.OpcodeF64PromoteF32] = func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
		s.SetF64(instr.Dst.Idx, float64(s.GetF32(instr.Src1.Idx)))
	}

	conversionTable[wasm.OpcodeI32ReinterpretF32] = func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
		s.SetI32(instr.Dst.Idx, int32(math.Float32bits(s.GetF32(instr.Src1.Idx))))
	}
	conversionTable[wasm.OpcodeI64ReinterpretF64] = func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
		s.SetI64(instr.Dst.Idx, int64(math.Float64bits(s.GetF64(instr.Src1.Idx))))
	}
	conversionTable[wasm.OpcodeF32ReinterpretI32] = func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
		s.SetF32(instr.Dst.Idx, math.Float32frombits(uint32(s.GetI32(instr.Src1.Idx))))
	}
	conversionTable[wasm.OpcodeF64ReinterpretI64] = func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
		s.SetF64(instr.Dst.Idx, math.Float64frombits(uint64(s.GetI64(instr.Src1.Idx))))
	}

	conversionTable[wasm.OpcodeI32TruncSatF32S] = func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
		s.SetI32(instr.Dst.Idx, truncSatF64ToI32(float64(s.GetF32(instr.Src1.Idx)), true))
	}
	conversionTable[wasm.OpcodeI32TruncSatF32U] = func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
		s.SetI32(instr.Dst.Idx, truncSatF64ToI32(float64(s.GetF32(instr.Src1.Idx)), false))
	}
	conversionTable[wasm.OpcodeI32TruncSatF64S] = func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
		s.SetI32(instr.Dst.Idx, truncSatF64ToI32(s.GetF64(instr.Src1.Idx), true))
	}
	conversionTable[wasm.OpcodeI32TruncSatF64U] = func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
		s.SetI32(instr.Dst.Idx, truncSatF64ToI32(s.GetF64(instr.Src1.Idx), false))
	}
	conversionTable[wasm.OpcodeI64TruncSatF32S] = func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
		s.SetI64(instr.Dst.Idx, truncSatF64ToI64(float64(s.GetF32(instr.Src1.Idx)), true))
	}
	conversionTable[wasm.OpcodeI64TruncSatF32U] = func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
		s.SetI64(instr.Dst.Idx, truncSatF64ToI64(float64(s.GetF32(instr.Src1.Idx)), false))
	}
	conversionTable[wasm.OpcodeI64TruncSatF64S] = func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
		s.SetI64(instr.Dst.Idx, truncSatF64ToI64(s.GetF64(instr.Src1.Idx), true))
	}
	conversionTable[wasm.OpcodeI64TruncSatF64U] = func(s *wazeroir.SlotFile, instr *wazeroir.Instr) {
		s.SetI64(instr.Dst.Idx, truncSatF64ToI64(s.GetF64(instr.Src1.Idx), false))
	}
}
