package wazeroir

import "github.com/student/wazeroir-slots/internal/wasm"

// IROp identifies the shape of one preprocessed instruction. Control ops
// are interpreted inline by the frame loop (spec.md §4.5: "Control ops ...
// are handled inline in the frame loop rather than through a dispatch
// table, because they manipulate the label stack, frame stack, or signal
// the driver"). IRTyped/IRConversion/IRMemLoad/IRMemStore/IRMemOp/IRSelect
// instructions instead carry a wasm.Opcode (WasmOp) that the frame loop
// uses to look up a handler in the matching per-category dispatch table
// (spec.md §4.5's i32/i64/f32/f64/conversion/mem_load/mem_store/mem_ops/
// select tables).
type IROp uint8

const (
	IRUnreachable IROp = iota
	IRNop
	IRBlock
	IRLoop
	IRIf
	IRJump // realizes `else` as an unconditional jump to the if's end (spec.md §4.4)
	IREnd
	IRBr
	IRBrIf
	IRBrTable
	IRReturn
	IRCall
	IRCallIndirect
	IRCallWasi
	IRLocalGet
	IRLocalSet
	IRLocalTee
	IRGlobalGet
	IRGlobalSet
	IRDataDrop
	IRElemDrop
	IRRefNull
	IRRefIsNull
	IRRefFunc
	IRTableGet
	IRTableSet
	IRTableSize
	IRTableGrow
	IRTableFill
	IRTableCopy
	IRTableInit
	IRDrop // never emitted: the preprocessor lowers `drop` to an allocator pop only

	IRTyped      // arithmetic/compare/unary on i32/i64/f32/f64, dispatched by WasmOp
	IRConversion // int<->float, wrap, extend, reinterpret, trunc/trunc_sat
	IRMemLoad
	IRMemStore
	IRMemSize
	IRMemGrow
	IRMemCopy
	IRMemFill
	IRMemInit
	IRSelect
)

// Instr is the flat IR node (spec.md §4.4's "ProcessedInstr" form): a
// single struct shape reused across all op kinds, trading a few unused
// fields per instruction for a dispatch that never needs a type switch on
// payload shape — the same flat-struct-over-tagged-union trade the teacher
// makes for its own (removed) compiler IR.
type Instr struct {
	Op     IROp
	WasmOp wasm.Opcode

	Dst, Src1, Src2 Slot
	Src3            Slot // third operand; only Select uses this (the condition)

	// Control-flow operands.
	Target  int32 // resolved absolute IP (Br/BrIf target, Block/Loop/If's return_ip)
	Target2 int32 // If's false-branch target (else, or past end when there is no else)
	Targets []int32
	Default int32
	Arity   int32
	IsLoop  bool
	HasElse bool

	// Level/TargetLevels/DefaultLevel count how many open block/loop/if
	// scopes a Br/BrIf/BrTable closes, i.e. how far the frame loop's label
	// depth counter must unwind (spec.md §4.6's label stack, collapsed at
	// runtime to a depth counter since branch IPs are already resolved —
	// see preprocess.go's emitBranch/emitBrTable).
	Level        int32
	TargetLevels []int32
	DefaultLevel int32

	SrcSlots []Slot // End/Br/BrTable: the scope's live result slots, in order
	DstSlots []Slot // End/Br: where those results must land in the parent scope;
	// BrTable: where they land for the Default target specifically

	// TargetDstSlots holds BrTable's per-target destination slots: each
	// target branches to a different enclosing scope, which in general has
	// its own canonical result slots distinct from every other target's
	// (spec.md §4.4's per-scope canonical-slot convention doesn't collapse
	// across targets the way it does for a single Br's one destination).
	TargetDstSlots [][]Slot

	LocalIdx, GlobalIdx, FuncIdx, TableIdx, TypeIdx, DataIdx, ElemIdx uint32
	Align, Offset                                                    uint32

	ConstI32 int32
	ConstI64 int64
	ConstF32 float32
	ConstF64 float64
}

// CompiledFunction is the preprocessed form of one wasm.Code body (spec.md
// §3 "Preprocessed function"): computed once (when the module is
// instantiated, by Engine.CompileModule — see SPEC_FULL.md §11's
// resolution of the lazy-vs-eager open question) and
// shared by every call, matching spec.md §9's "per-function lazy
// compilation cache" note reworked as eager-and-shared rather than
// lock-guarded-and-lazy.
type CompiledFunction struct {
	Body       []Instr
	SlotCounts PerKindCounts
	NumLocals  int
	LocalTypes []wasm.ValueType // params ++ declared locals, by local index
	LocalSlots []Slot           // where each local lives within the frame's slot file
	Type       *wasm.FunctionType
}
