package wazeroir

import "github.com/student/wazeroir-slots/internal/wasm"

// category names which per-type dispatch table (spec.md §4.5) a typed
// instruction belongs to.
type category byte

const (
	catI32 category = iota
	catI64
	catF32
	catF64
	catConversion
	catOther
)

// classify reports, for a typed or conversion opcode, which dispatch
// category it belongs to, how many operands it pops (0 for a const, else 1
// or 2), the kind of those operands, and the kind of its single result. The
// Wasm opcode space is laid out (both in the real binary format and in
// internal/wasm/opcode.go, which mirrors it) as contiguous per-category
// ranges, so a handful of range checks classify ~150 opcodes without a
// giant literal table — the preprocessor's emit pass (emitTyped, in
// preprocess.go) is the same six
// lines regardless of which table ends up handling the instruction.
func classify(op wasm.Opcode) (cat category, arity int, operand, result SlotKind) {
	switch {
	case op == wasm.OpcodeI32Eqz:
		return catI32, 1, SlotKindI32, SlotKindI32
	case op >= wasm.OpcodeI32Eq && op <= wasm.OpcodeI32GeU:
		return catI32, 2, SlotKindI32, SlotKindI32
	case op >= wasm.OpcodeI32Clz && op <= wasm.OpcodeI32Popcnt:
		return catI32, 1, SlotKindI32, SlotKindI32
	case op >= wasm.OpcodeI32Add && op <= wasm.OpcodeI32Rotr:
		return catI32, 2, SlotKindI32, SlotKindI32
	case op == wasm.OpcodeI32Const:
		return catI32, 0, SlotKindI32, SlotKindI32
	case op == wasm.OpcodeI32Extend8S || op == wasm.OpcodeI32Extend16S:
		return catI32, 1, SlotKindI32, SlotKindI32

	case op == wasm.OpcodeI64Eqz:
		return catI64, 1, SlotKindI64, SlotKindI32
	case op >= wasm.OpcodeI64Eq && op <= wasm.OpcodeI64GeU:
		return catI64, 2, SlotKindI64, SlotKindI32
	case op >= wasm.OpcodeI64Clz && op <= wasm.OpcodeI64Popcnt:
		return catI64, 1, SlotKindI64, SlotKindI64
	case op >= wasm.OpcodeI64Add && op <= wasm.OpcodeI64Rotr:
		return catI64, 2, SlotKindI64, SlotKindI64
	case op == wasm.OpcodeI64Const:
		return catI64, 0, SlotKindI64, SlotKindI64
	case op == wasm.OpcodeI64Extend8S || op == wasm.OpcodeI64Extend16S || op == wasm.OpcodeI64Extend32S:
		return catI64, 1, SlotKindI64, SlotKindI64

	case op >= wasm.OpcodeF32Eq && op <= wasm.OpcodeF32Ge:
		return catF32, 2, SlotKindF32, SlotKindI32
	case op >= wasm.OpcodeF32Abs && op <= wasm.OpcodeF32Sqrt:
		return catF32, 1, SlotKindF32, SlotKindF32
	case op >= wasm.OpcodeF32Add && op <= wasm.OpcodeF32Copysign:
		return catF32, 2, SlotKindF32, SlotKindF32
	case op == wasm.OpcodeF32Const:
		return catF32, 0, SlotKindF32, SlotKindF32

	case op >= wasm.OpcodeF64Eq && op <= wasm.OpcodeF64Ge:
		return catF64, 2, SlotKindF64, SlotKindI32
	case op >= wasm.OpcodeF64Abs && op <= wasm.OpcodeF64Sqrt:
		return catF64, 1, SlotKindF64, SlotKindF64
	case op >= wasm.OpcodeF64Add && op <= wasm.OpcodeF64Copysign:
		return catF64, 2, SlotKindF64, SlotKindF64
	case op == wasm.OpcodeF64Const:
		return catF64, 0, SlotKindF64, SlotKindF64

	case op == wasm.OpcodeI32WrapI64:
		return catConversion, 1, SlotKindI64, SlotKindI32
	case op == wasm.OpcodeI32TruncF32S || op == wasm.OpcodeI32TruncF32U:
		return catConversion, 1, SlotKindF32, SlotKindI32
	case op == wasm.OpcodeI32TruncF64S || op == wasm.OpcodeI32TruncF64U:
		return catConversion, 1, SlotKindF64, SlotKindI32
	case op == wasm.OpcodeI64ExtendI32S || op == wasm.OpcodeI64ExtendI32U:
		return catConversion, 1, SlotKindI32, SlotKindI64
	case op == wasm.OpcodeI64TruncF32S || op == wasm.OpcodeI64TruncF32U:
		return catConversion, 1, SlotKindF32, SlotKindI64
	case op == wasm.OpcodeI64TruncF64S || op == wasm.OpcodeI64TruncF64U:
		return catConversion, 1, SlotKindF64, SlotKindI64
	case op == wasm.OpcodeF32ConvertI32S || op == wasm.OpcodeF32ConvertI32U:
		return catConversion, 1, SlotKindI32, SlotKindF32
	case op == wasm.OpcodeF32ConvertI64S || op == wasm.OpcodeF32ConvertI64U:
		return catConversion, 1, SlotKindI64, SlotKindF32
	case op == wasm.OpcodeF32DemoteF64:
		return catConversion, 1, SlotKindF64, SlotKindF32
	case op == wasm.OpcodeF64ConvertI32S || op == wasm.OpcodeF64ConvertI32U:
		return catConversion, 1, SlotKindI32, SlotKindF64
	case op == wasm.OpcodeF64ConvertI64S || op == wasm.OpcodeF64ConvertI64U:
		return catConversion, 1, SlotKindI64, SlotKindF64
	case op == wasm.OpcodeF64PromoteF32:
		return catConversion, 1, SlotKindF32, SlotKindF64
	case op == wasm.OpcodeI32ReinterpretF32:
		return catConversion, 1, SlotKindF32, SlotKindI32
	case op == wasm.OpcodeI64ReinterpretF64:
		return catConversion, 1, SlotKindF64, SlotKindI64
	case op == wasm.OpcodeF32ReinterpretI32:
		return catConversion, 1, SlotKindI32, SlotKindF32
	case op == wasm.OpcodeF64ReinterpretI64:
		return catConversion, 1, SlotKindI64, SlotKindF64
	case op == wasm.OpcodeI32TruncSatF32S || op == wasm.OpcodeI32TruncSatF32U:
		return catConversion, 1, SlotKindF32, SlotKindI32
	case op == wasm.OpcodeI32TruncSatF64S || op == wasm.OpcodeI32TruncSatF64U:
		return catConversion, 1, SlotKindF64, SlotKindI32
	case op == wasm.OpcodeI64TruncSatF32S || op == wasm.OpcodeI64TruncSatF32U:
		return catConversion, 1, SlotKindF32, SlotKindI64
	case op == wasm.OpcodeI64TruncSatF64S || op == wasm.OpcodeI64TruncSatF64U:
		return catConversion, 1, SlotKindF64, SlotKindI64

	default:
		return catOther, 0, SlotKindI32, SlotKindI32
	}
}

func (c category) slotKind() SlotKind {
	switch c {
	case catI32:
		return SlotKindI32
	case catI64:
		return SlotKindI64
	case catF32:
		return SlotKindF32
	case catF64:
		return SlotKindF64
	default:
		return SlotKindI32
	}
}
