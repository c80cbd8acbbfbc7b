package wazeroir

import (
	"testing"

	"github.com/student/wazeroir-slots/internal/testing/require"
	"github.com/student/wazeroir-slots/internal/wasm"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		op     wasm.Opcode
		cat    category
		arity  int
		operand SlotKind
		result SlotKind
	}{
		{"i32.const", wasm.OpcodeI32Const, catI32, 0, SlotKindI32, SlotKindI32},
		{"i32.add", wasm.OpcodeI32Add, catI32, 2, SlotKindI32, SlotKindI32},
		{"i32.eqz", wasm.OpcodeI32Eqz, catI32, 1, SlotKindI32, SlotKindI32},
		{"i32.eq", wasm.OpcodeI32Eq, catI32, 2, SlotKindI32, SlotKindI32},
		{"i64.add", wasm.OpcodeI64Add, catI64, 2, SlotKindI64, SlotKindI64},
		{"i64.eq", wasm.OpcodeI64Eq, catI64, 2, SlotKindI64, SlotKindI32},
		{"f32.add", wasm.OpcodeF32Add, catF32, 2, SlotKindF32, SlotKindF32},
		{"f32.eq", wasm.OpcodeF32Eq, catF32, 2, SlotKindF32, SlotKindI32},
		{"f64.sqrt", wasm.OpcodeF64Sqrt, catF64, 1, SlotKindF64, SlotKindF64},
		{"i32.wrap_i64", wasm.OpcodeI32WrapI64, catConversion, 1, SlotKindI64, SlotKindI32},
		{"i64.extend_i32_s", wasm.OpcodeI64ExtendI32S, catConversion, 1, SlotKindI32, SlotKindI64},
		{"f64.promote_f32", wasm.OpcodeF64PromoteF32, catConversion, 1, SlotKindF32, SlotKindF64},
		{"i32.reinterpret_f32", wasm.OpcodeI32ReinterpretF32, catConversion, 1, SlotKindF32, SlotKindI32},
		{"i32.trunc_sat_f32_s", wasm.OpcodeI32TruncSatF32S, catConversion, 1, SlotKindF32, SlotKindI32},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cat, arity, operand, result := classify(tc.op)
			require.Equal(t, tc.cat, cat)
			require.Equal(t, tc.arity, arity)
			require.Equal(t, tc.operand, operand)
			require.Equal(t, tc.result, result)
		})
	}
}

func TestClassify_UnknownOpcodeIsOther(t *testing.T) {
	cat, _, _, _ := classify(wasm.OpcodeUnreachable)
	require.Equal(t, catOther, cat)
}
