package wazeroir

import (
	"github.com/student/wazeroir-slots/api"
	"github.com/student/wazeroir-slots/internal/wasm"
)

// scope tracks one open block/loop/if/function-body while the emit pass
// walks a function's instruction list (spec.md §4.4's three passes:
// emit, resolve branch targets, wire result slots — folded into a single
// forward walk with deferred backpatching, the same shape a one-pass
// structured-control compiler uses elsewhere in the corpus: a loop's
// target is known the instant it opens, while a block/if's target and
// result slots are only known once its matching `end` is reached, so
// those are queued on the scope and resolved there).
type scope struct {
	isLoop     bool
	results    []wasm.ValueType
	startIdx   int // IR index of the Block/Loop/If instruction that opened this scope
	entry      allocatorState
	elseFixup  int // IR index of the If instruction, or -1
	pendingEnd []pendingBranch
}

// pendingBranch is a branch instruction (or one arm of a br_table) whose
// Target and DstSlots can't be resolved until the scope it exits reaches
// its `end`.
type pendingBranch struct {
	instrIdx int
	// which field on Body[instrIdx] to patch
	field branchField
	index int // for brTableTarget, the index into Targets
}

type branchField byte

const (
	fieldTarget branchField = iota
	fieldBrTableTarget
	fieldBrTableDefault
)

// preprocessor holds the mutable state threaded through one function's
// emit pass.
type preprocessor struct {
	module *wasm.Module
	fnIdx  uint32
	fnType *wasm.FunctionType
	locals []wasm.ValueType

	alloc      *slotAllocator
	localSlots []Slot
	body       []Instr
	ctrl       []scope
}

// Compile lowers one function body into its preprocessed form (spec.md §6:
// "Preprocess: Module, FuncIndex -> CompiledFunction | PreprocessError").
// Called eagerly for every local function when a module is instantiated
// (Engine.CompileModule), not lazily per call.
func Compile(module *wasm.Module, fnIdx uint32, fnType *wasm.FunctionType, code *wasm.Code) (*CompiledFunction, error) {
	p := &preprocessor{
		module: module,
		fnIdx:  fnIdx,
		fnType: fnType,
		alloc:  newSlotAllocator(),
	}
	p.locals = append(p.locals, fnType.Params...)
	p.locals = append(p.locals, code.LocalTypes...)

	// Locals live at the bottom of each per-kind array, one contiguous
	// region per frame; operand-stack temporaries are allocated above
	// them, so seed the allocator's depth with the local counts before
	// any push/pop of stack temporaries happens.
	p.localSlots = make([]Slot, len(p.locals))
	for i, t := range p.locals {
		p.localSlots[i] = p.alloc.push(t)
	}

	// The function body is itself the outermost scope (label index 0);
	// its `end` — present in Body as a trailing OpcodeEnd, same as any
	// other — both wires the return-value slots and, for the frame loop,
	// marks the point at which the label stack empties and EndOfFrame
	// fires (spec.md §4.6).
	p.ctrl = append(p.ctrl, scope{
		isLoop:    false,
		results:   fnType.Results,
		startIdx:  -1,
		entry:     p.alloc.save(),
		elseFixup: -1,
	})

	for _, in := range code.Body {
		if err := p.emit(in); err != nil {
			return nil, err
		}
	}

	if len(p.ctrl) != 0 {
		return nil, &PreprocessError{fnIdx, "function body ended without matching end for every block"}
	}

	return &CompiledFunction{
		Body:       p.body,
		SlotCounts: p.alloc.finalize(),
		NumLocals:  len(p.locals),
		LocalTypes: p.locals,
		LocalSlots: p.localSlots,
		Type:       fnType,
	}, nil
}

func (p *preprocessor) emitInstr(in Instr) int {
	idx := len(p.body)
	p.body = append(p.body, in)
	return idx
}

func (p *preprocessor) localType(idx uint32) wasm.ValueType {
	return p.locals[idx]
}

func (p *preprocessor) globalType(idx uint32) wasm.GlobalType {
	n := p.module.NumImportedGlobals
	if idx < n {
		// Imported globals aren't resolvable from the Module alone before
		// instantiation; the loader is expected to have already folded
		// their type into Module.Imports for validation purposes. Since
		// this package only needs the value type (to size the slot), and
		// import descriptors carry it, look there.
		i := idx
		for _, imp := range p.module.Imports {
			if imp.Type == api.ExternTypeGlobal {
				if i == 0 {
					return *imp.DescGlobal
				}
				i--
			}
		}
	}
	return p.module.Globals[idx-p.module.NumImportedGlobals].Type
}

func (p *preprocessor) tableRefType(idx uint32) wasm.ValueType {
	n := p.module.NumImportedTables
	if idx < n {
		i := idx
		for _, imp := range p.module.Imports {
			if imp.Type == api.ExternTypeTable {
				if i == 0 {
					return imp.DescTable.RefType
				}
				i--
			}
		}
	}
	return p.module.Tables[idx-p.module.NumImportedTables].RefType
}

func (p *preprocessor) funcType(funcIdx uint32) *wasm.FunctionType {
	n := p.module.NumImportedFunctions
	if funcIdx < n {
		i := funcIdx
		for _, imp := range p.module.Imports {
			if imp.Type == api.ExternTypeFunc {
				if i == 0 {
					return &p.module.Types[imp.DescFunc]
				}
				i--
			}
		}
	}
	return &p.module.Types[p.module.FunctionTypeIndices[funcIdx-n]]
}

// emit handles one decoded instruction: the bulk of spec.md §4.4's first
// pass. Control-flow opcodes additionally push/pop p.ctrl and queue or
// resolve pendingBranch fixups; every other opcode only touches the
// allocator and appends exactly one Instr (or, for `drop`, none).
func (p *preprocessor) emit(in wasm.Instruction) error {
	switch in.Op {
	case wasm.OpcodeUnreachable:
		p.emitInstr(Instr{Op: IRUnreachable})
	case wasm.OpcodeNop:
		// no IR emitted; matches drop/nop's "adjust nothing" treatment

	case wasm.OpcodeBlock, wasm.OpcodeLoop, wasm.OpcodeIf:
		return p.emitBlockLike(in)
	case wasm.OpcodeElse:
		return p.emitElse()
	case wasm.OpcodeEnd:
		return p.emitEnd()

	case wasm.OpcodeBr:
		return p.emitBranch(in.Index, nil)
	case wasm.OpcodeBrIf:
		cond := p.alloc.pop(wasm.ValueTypeI32)
		return p.emitBranch(in.Index, &cond)
	case wasm.OpcodeBrTable:
		selector := p.alloc.pop(wasm.ValueTypeI32)
		return p.emitBrTable(in.BrTableTargets, in.BrTableDefault, selector)
	case wasm.OpcodeReturn:
		srcs := p.alloc.peekTypes(p.fnType.Results)
		p.emitInstr(Instr{Op: IRReturn, SrcSlots: srcs, Arity: int32(len(srcs))})

	case wasm.OpcodeCall:
		p.emitCall(in.Index)
	case wasm.OpcodeCallIndirect:
		elemIdx := p.alloc.pop(wasm.ValueTypeI32) // selects the function within the table
		ft := &p.module.Types[in.Index]
		params := make([]Slot, len(ft.Params))
		for i := len(ft.Params) - 1; i >= 0; i-- {
			params[i] = p.alloc.pop(ft.Params[i])
		}
		results := make([]Slot, len(ft.Results))
		for i, r := range ft.Results {
			results[i] = p.alloc.push(r)
		}
		p.emitInstr(Instr{Op: IRCallIndirect, TypeIdx: in.Index, TableIdx: in.Index2, Src1: elemIdx, SrcSlots: params, DstSlots: results})

	case wasm.OpcodeDrop:
		p.alloc.popAny()

	case wasm.OpcodeSelect:
		cond := p.alloc.pop(wasm.ValueTypeI32)
		v2, t := p.alloc.popAny()
		v1 := p.alloc.pop(t)
		dst := p.alloc.push(t)
		p.emitInstr(Instr{Op: IRSelect, Src1: v1, Src2: v2, Src3: cond, Dst: dst})

	case wasm.OpcodeLocalGet:
		t := p.localType(in.Index)
		dst := p.alloc.push(t)
		p.emitInstr(Instr{Op: IRLocalGet, LocalIdx: in.Index, Src1: p.localSlots[in.Index], Dst: dst})
	case wasm.OpcodeLocalSet:
		t := p.localType(in.Index)
		src := p.alloc.pop(t)
		p.emitInstr(Instr{Op: IRLocalSet, LocalIdx: in.Index, Src1: src, Dst: p.localSlots[in.Index]})
	case wasm.OpcodeLocalTee:
		t := p.localType(in.Index)
		top := p.alloc.peekTypes([]wasm.ValueType{t})[0]
		p.emitInstr(Instr{Op: IRLocalTee, LocalIdx: in.Index, Src1: top, Dst: p.localSlots[in.Index]})

	case wasm.OpcodeGlobalGet:
		gt := p.globalType(in.Index)
		dst := p.alloc.push(gt.ValType)
		p.emitInstr(Instr{Op: IRGlobalGet, GlobalIdx: in.Index, Dst: dst})
	case wasm.OpcodeGlobalSet:
		gt := p.globalType(in.Index)
		src := p.alloc.pop(gt.ValType)
		p.emitInstr(Instr{Op: IRGlobalSet, GlobalIdx: in.Index, Src1: src})

	case wasm.OpcodeDataDrop:
		p.emitInstr(Instr{Op: IRDataDrop, DataIdx: in.Index})
	case wasm.OpcodeElemDrop:
		p.emitInstr(Instr{Op: IRElemDrop, ElemIdx: in.Index})

	case wasm.OpcodeRefNull:
		rt := wasm.ValueTypeFuncref
		if in.Index == 1 {
			rt = wasm.ValueTypeExternref
		}
		dst := p.alloc.push(rt)
		p.emitInstr(Instr{Op: IRRefNull, Dst: dst, ConstI32: int32(in.Index)})
	case wasm.OpcodeRefIsNull:
		_, t := p.alloc.popAny()
		dst := p.alloc.push(wasm.ValueTypeI32)
		_ = t
		p.emitInstr(Instr{Op: IRRefIsNull, Dst: dst})
	case wasm.OpcodeRefFunc:
		dst := p.alloc.push(wasm.ValueTypeFuncref)
		p.emitInstr(Instr{Op: IRRefFunc, FuncIdx: in.Index, Dst: dst})

	case wasm.OpcodeTableGet:
		rt := p.tableRefType(in.Index)
		idx := p.alloc.pop(wasm.ValueTypeI32)
		dst := p.alloc.push(rt)
		p.emitInstr(Instr{Op: IRTableGet, TableIdx: in.Index, Src1: idx, Dst: dst})
	case wasm.OpcodeTableSet:
		rt := p.tableRefType(in.Index)
		val := p.alloc.pop(rt)
		idx := p.alloc.pop(wasm.ValueTypeI32)
		p.emitInstr(Instr{Op: IRTableSet, TableIdx: in.Index, Src1: idx, Src2: val})
	case wasm.OpcodeTableSize:
		dst := p.alloc.push(wasm.ValueTypeI32)
		p.emitInstr(Instr{Op: IRTableSize, TableIdx: in.Index, Dst: dst})
	case wasm.OpcodeTableGrow:
		rt := p.tableRefType(in.Index)
		delta := p.alloc.pop(wasm.ValueTypeI32)
		fill := p.alloc.pop(rt)
		dst := p.alloc.push(wasm.ValueTypeI32)
		p.emitInstr(Instr{Op: IRTableGrow, TableIdx: in.Index, Src1: fill, Src2: delta, Dst: dst})
	case wasm.OpcodeTableFill:
		rt := p.tableRefType(in.Index)
		n := p.alloc.pop(wasm.ValueTypeI32)
		val := p.alloc.pop(rt)
		idx := p.alloc.pop(wasm.ValueTypeI32)
		p.emitInstr(Instr{Op: IRTableFill, TableIdx: in.Index, Src1: idx, Src2: val, Dst: n})
	case wasm.OpcodeTableCopy:
		n := p.alloc.pop(wasm.ValueTypeI32)
		src := p.alloc.pop(wasm.ValueTypeI32)
		dst := p.alloc.pop(wasm.ValueTypeI32)
		p.emitInstr(Instr{Op: IRTableCopy, TableIdx: in.Index, TypeIdx: in.Index2, Src1: src, Src2: dst, Dst: n})
	case wasm.OpcodeTableInit:
		n := p.alloc.pop(wasm.ValueTypeI32)
		src := p.alloc.pop(wasm.ValueTypeI32)
		dst := p.alloc.pop(wasm.ValueTypeI32)
		p.emitInstr(Instr{Op: IRTableInit, TableIdx: in.Index2, ElemIdx: in.Index, Src1: src, Src2: dst, Dst: n})

	case wasm.OpcodeMemorySize:
		dst := p.alloc.push(wasm.ValueTypeI32)
		p.emitInstr(Instr{Op: IRMemSize, Dst: dst})
	case wasm.OpcodeMemoryGrow:
		delta := p.alloc.pop(wasm.ValueTypeI32)
		dst := p.alloc.push(wasm.ValueTypeI32)
		p.emitInstr(Instr{Op: IRMemGrow, Src1: delta, Dst: dst})
	case wasm.OpcodeMemoryCopy:
		n := p.alloc.pop(wasm.ValueTypeI32)
		src := p.alloc.pop(wasm.ValueTypeI32)
		dst := p.alloc.pop(wasm.ValueTypeI32)
		p.emitInstr(Instr{Op: IRMemCopy, Src1: src, Src2: dst, Dst: n})
	case wasm.OpcodeMemoryFill:
		n := p.alloc.pop(wasm.ValueTypeI32)
		val := p.alloc.pop(wasm.ValueTypeI32)
		dst := p.alloc.pop(wasm.ValueTypeI32)
		p.emitInstr(Instr{Op: IRMemFill, Src1: dst, Src2: val, Dst: n})
	case wasm.OpcodeMemoryInit:
		n := p.alloc.pop(wasm.ValueTypeI32)
		src := p.alloc.pop(wasm.ValueTypeI32)
		dst := p.alloc.pop(wasm.ValueTypeI32)
		p.emitInstr(Instr{Op: IRMemInit, DataIdx: in.Index, Src1: src, Src2: dst, Dst: n})

	default:
		return p.emitTyped(in)
	}
	return nil
}

// emitTyped handles every arithmetic/compare/unary/conversion/load/store
// opcode via classify's range-based category lookup (spec.md §4.5's
// per-type dispatch tables; see classify.go).
func (p *preprocessor) emitTyped(in wasm.Instruction) error {
	if in.Op >= wasm.OpcodeI32Load && in.Op <= wasm.OpcodeI64Store32 {
		return p.emitMemAccess(in)
	}

	cat, arity, operand, result := classify(in.Op)
	if cat == catOther {
		return &PreprocessError{p.fnIdx, "unknown opcode in function body"}
	}

	op := IRTyped
	if cat == catConversion {
		op = IRConversion
	}

	switch arity {
	case 0: // const
		dst := p.alloc.push(result.toValueType())
		instr := Instr{Op: op, WasmOp: in.Op, Dst: dst}
		switch in.Op {
		case wasm.OpcodeI32Const:
			instr.ConstI32 = in.ConstI32
		case wasm.OpcodeI64Const:
			instr.ConstI64 = in.ConstI64
		case wasm.OpcodeF32Const:
			instr.ConstF32 = in.ConstF32
		case wasm.OpcodeF64Const:
			instr.ConstF64 = in.ConstF64
		}
		p.emitInstr(instr)
	case 1:
		src := p.alloc.pop(operand.toValueType())
		dst := p.alloc.push(result.toValueType())
		p.emitInstr(Instr{Op: op, WasmOp: in.Op, Src1: src, Dst: dst})
	case 2:
		src2 := p.alloc.pop(operand.toValueType())
		src1 := p.alloc.pop(operand.toValueType())
		dst := p.alloc.push(result.toValueType())
		p.emitInstr(Instr{Op: op, WasmOp: in.Op, Src1: src1, Src2: src2, Dst: dst})
	}
	return nil
}

func (k SlotKind) toValueType() wasm.ValueType {
	switch k {
	case SlotKindI32:
		return wasm.ValueTypeI32
	case SlotKindI64:
		return wasm.ValueTypeI64
	case SlotKindF32:
		return wasm.ValueTypeF32
	case SlotKindF64:
		return wasm.ValueTypeF64
	default:
		return wasm.ValueTypeI32
	}
}

func (p *preprocessor) emitMemAccess(in wasm.Instruction) error {
	var resultOrValue wasm.ValueType
	isStore := false
	switch in.Op {
	case wasm.OpcodeI32Load, wasm.OpcodeI32Load8S, wasm.OpcodeI32Load8U, wasm.OpcodeI32Load16S, wasm.OpcodeI32Load16U:
		resultOrValue = wasm.ValueTypeI32
	case wasm.OpcodeI64Load, wasm.OpcodeI64Load8S, wasm.OpcodeI64Load8U, wasm.OpcodeI64Load16S, wasm.OpcodeI64Load16U, wasm.OpcodeI64Load32S, wasm.OpcodeI64Load32U:
		resultOrValue = wasm.ValueTypeI64
	case wasm.OpcodeF32Load:
		resultOrValue = wasm.ValueTypeF32
	case wasm.OpcodeF64Load:
		resultOrValue = wasm.ValueTypeF64
	case wasm.OpcodeI32Store, wasm.OpcodeI32Store8, wasm.OpcodeI32Store16:
		resultOrValue, isStore = wasm.ValueTypeI32, true
	case wasm.OpcodeI64Store, wasm.OpcodeI64Store8, wasm.OpcodeI64Store16, wasm.OpcodeI64Store32:
		resultOrValue, isStore = wasm.ValueTypeI64, true
	case wasm.OpcodeF32Store:
		resultOrValue, isStore = wasm.ValueTypeF32, true
	case wasm.OpcodeF64Store:
		resultOrValue, isStore = wasm.ValueTypeF64, true
	}
	if isStore {
		val := p.alloc.pop(resultOrValue)
		addr := p.alloc.pop(wasm.ValueTypeI32)
		p.emitInstr(Instr{Op: IRMemStore, WasmOp: in.Op, Src1: addr, Src2: val, Align: in.Align, Offset: in.Offset})
	} else {
		addr := p.alloc.pop(wasm.ValueTypeI32)
		dst := p.alloc.push(resultOrValue)
		p.emitInstr(Instr{Op: IRMemLoad, WasmOp: in.Op, Src1: addr, Dst: dst, Align: in.Align, Offset: in.Offset})
	}
	return nil
}

func (p *preprocessor) emitCall(funcIdx uint32) {
	ft := p.funcType(funcIdx)
	params := make([]Slot, len(ft.Params))
	for i := len(ft.Params) - 1; i >= 0; i-- {
		params[i] = p.alloc.pop(ft.Params[i])
	}
	results := make([]Slot, len(ft.Results))
	for i, r := range ft.Results {
		results[i] = p.alloc.push(r)
	}
	op := IRCall
	n := p.module.NumImportedFunctions
	if funcIdx < n {
		// every imported function is emitted as IRCallWasi; the frame loop
		// handles IRCall and IRCallWasi alike and routes on the callee's
		// Kind (wasm, host or WASI) at run time.
		op = IRCallWasi
	}
	p.emitInstr(Instr{Op: op, FuncIdx: funcIdx, SrcSlots: params, DstSlots: results, Arity: int32(len(results))})
}

// emitBlockLike opens a Block/Loop/If scope (spec.md §4.4 pass 1): block
// parameters beyond the common result-only arity (the multi-value
// proposal) are out of scope here — not among the proposals SPEC_FULL.md
// §1 lists as extending core 1.0 — so every scope's entry state is simply
// the allocator state as found, and only Results sizes the canonical exit
// slots computed at End.
func (p *preprocessor) emitBlockLike(in wasm.Instruction) error {
	instr := Instr{Op: blockIROp(in.Op), Arity: int32(len(in.Block.Results))}
	if in.Op == wasm.OpcodeIf {
		instr.Src1 = p.alloc.pop(wasm.ValueTypeI32) // condition
	}
	idx := p.emitInstr(instr)
	entry := p.alloc.save()
	sc := scope{
		isLoop:    in.Op == wasm.OpcodeLoop,
		results:   in.Block.Results,
		startIdx:  idx,
		entry:     entry,
		elseFixup: -1,
	}
	if in.Op == wasm.OpcodeIf {
		sc.elseFixup = idx
	}
	p.ctrl = append(p.ctrl, sc)
	return nil
}

func blockIROp(op wasm.Opcode) IROp {
	switch op {
	case wasm.OpcodeBlock:
		return IRBlock
	case wasm.OpcodeLoop:
		return IRLoop
	default:
		return IRIf
	}
}

// emitElse closes an if's true-arm: the arm's live results are copied into
// the scope's canonical (post-restore) slots exactly as at `end` — an if
// with no else still needs this copy to happen on some path, and when
// there is one, the true arm's path is this one (spec.md §4.4's "else
// realized as an unconditional jump to the if's end").
func (p *preprocessor) emitElse() error {
	if len(p.ctrl) == 0 {
		return &PreprocessError{p.fnIdx, "else without matching if"}
	}
	sc := &p.ctrl[len(p.ctrl)-1]
	if sc.elseFixup < 0 {
		return &PreprocessError{p.fnIdx, "else without matching if"}
	}
	src := p.alloc.peekTypes(sc.results)
	p.alloc.restore(sc.entry)
	dst := make([]Slot, len(sc.results))
	for i, r := range sc.results {
		dst[i] = p.alloc.push(r)
	}
	jumpIdx := p.emitInstr(Instr{Op: IRJump, SrcSlots: src, DstSlots: dst, Arity: int32(len(src)), Level: 1})
	sc.pendingEnd = append(sc.pendingEnd, pendingBranch{instrIdx: jumpIdx, field: fieldTarget})

	p.body[sc.startIdx].HasElse = true
	p.body[sc.startIdx].Target2 = int32(len(p.body)) // false branch starts right after `else`

	// Re-open the scope for the false arm at the if's original entry
	// allocator state, so both arms allocate independently but converge on
	// the same dst slots computed above.
	p.alloc.restore(sc.entry)
	return nil
}

// emitEnd closes the innermost open scope: patches every pending forward
// branch into it, copies its live result slots into the canonical exit
// slots, and — for the function's own outermost scope — leaves the
// allocator/ctrl stack empty, which Compile uses to detect a well-formed
// body.
func (p *preprocessor) emitEnd() error {
	if len(p.ctrl) == 0 {
		return &PreprocessError{p.fnIdx, "end without matching block/loop/if/function"}
	}
	sc := p.ctrl[len(p.ctrl)-1]
	p.ctrl = p.ctrl[:len(p.ctrl)-1]

	src := p.alloc.peekTypes(sc.results)
	p.alloc.restore(sc.entry)
	dst := make([]Slot, len(sc.results))
	for i, r := range sc.results {
		dst[i] = p.alloc.push(r)
	}

	p.emitInstr(Instr{Op: IREnd, SrcSlots: src, DstSlots: dst, Arity: int32(len(src))})
	targetIP := int32(len(p.body)) // the instruction right after this end

	for _, pb := range sc.pendingEnd {
		switch pb.field {
		case fieldTarget:
			p.body[pb.instrIdx].Target = targetIP
			if p.body[pb.instrIdx].DstSlots == nil {
				p.body[pb.instrIdx].DstSlots = dst
			}
		case fieldBrTableTarget:
			p.body[pb.instrIdx].Targets[pb.index] = targetIP
			p.body[pb.instrIdx].TargetDstSlots[pb.index] = dst
		case fieldBrTableDefault:
			p.body[pb.instrIdx].Default = targetIP
			p.body[pb.instrIdx].DstSlots = dst
		}
	}

	if sc.isLoop {
		p.body[sc.startIdx].Target = int32(sc.startIdx)
	} else if sc.startIdx >= 0 {
		// Block/If forward target, for documentation/debugging symmetry
		// with Loop's backward one; the frame loop doesn't consult it.
		p.body[sc.startIdx].Target = targetIP
		if sc.elseFixup >= 0 && !p.body[sc.startIdx].HasElse {
			// if without else: the false branch has nothing to jump over,
			// so it lands directly past this end too.
			p.body[sc.startIdx].Target2 = targetIP
		}
	}
	return nil
}

// emitBranch resolves (or, for a forward target, queues) one br/br_if. cond
// is non-nil for br_if, naming the slot already holding its (popped)
// condition.
func (p *preprocessor) emitBranch(depth uint32, cond *Slot) error {
	if int(depth) >= len(p.ctrl) {
		return &PreprocessError{p.fnIdx, "branch depth exceeds enclosing scope count"}
	}
	target := &p.ctrl[len(p.ctrl)-1-int(depth)]
	src := p.alloc.peekTypes(target.branchValueTypes())

	op := IRBr
	if cond != nil {
		op = IRBrIf
	}
	level := int32(depth)
	if !target.isLoop {
		level++
	}
	instr := Instr{Op: op, SrcSlots: src, Arity: int32(len(src)), Level: level}
	if cond != nil {
		instr.Src1 = *cond
	}
	idx := p.emitInstr(instr)

	if target.isLoop {
		// +1 skips the Loop marker instruction itself: re-entering through it
		// would re-run its frame.labelDepth++ every iteration, a runaway
		// counter that never unwinds since a loop's own matching End only
		// fires once, on the one path that falls out of the loop normally.
		p.body[idx].Target = int32(target.startIdx) + 1
		p.body[idx].DstSlots = nil // loop re-entry carries no values (no block-param support)
	} else {
		target.pendingEnd = append(target.pendingEnd, pendingBranch{instrIdx: idx, field: fieldTarget})
	}
	return nil
}

func (s *scope) branchValueTypes() []wasm.ValueType {
	if s.isLoop {
		return nil
	}
	return s.results
}

func (p *preprocessor) emitBrTable(targets []uint32, def uint32, selector Slot) error {
	allDepths := append(append([]uint32{}, targets...), def)
	maxDepth := uint32(0)
	for _, d := range allDepths {
		if d > maxDepth {
			maxDepth = d
		}
	}
	if int(maxDepth) >= len(p.ctrl) {
		return &PreprocessError{p.fnIdx, "br_table depth exceeds enclosing scope count"}
	}

	// br_table's arity is governed by the default target's arity (every
	// arm must agree under validation); read results via that scope.
	defScope := &p.ctrl[len(p.ctrl)-1-int(def)]
	src := p.alloc.peekTypes(defScope.branchValueTypes())

	idx := p.emitInstr(Instr{
		Op:             IRBrTable,
		Src1:           selector,
		SrcSlots:       src,
		Arity:          int32(len(src)),
		Targets:        make([]int32, len(targets)),
		TargetLevels:   make([]int32, len(targets)),
		TargetDstSlots: make([][]Slot, len(targets)),
	})

	for i, d := range targets {
		sc := &p.ctrl[len(p.ctrl)-1-int(d)]
		level := int32(d)
		if !sc.isLoop {
			level++
		}
		p.body[idx].TargetLevels[i] = level
		if sc.isLoop {
			p.body[idx].Targets[i] = int32(sc.startIdx) + 1 // skip the Loop marker; see emitBranch
			p.body[idx].TargetDstSlots[i] = nil             // loop re-entry carries no values
		} else {
			sc.pendingEnd = append(sc.pendingEnd, pendingBranch{instrIdx: idx, field: fieldBrTableTarget, index: i})
		}
	}
	defLevel := int32(def)
	if !defScope.isLoop {
		defLevel++
	}
	p.body[idx].DefaultLevel = defLevel
	if defScope.isLoop {
		p.body[idx].Default = int32(defScope.startIdx) + 1 // skip the Loop marker; see emitBranch
		p.body[idx].DstSlots = nil
	} else {
		defScope.pendingEnd = append(defScope.pendingEnd, pendingBranch{instrIdx: idx, field: fieldBrTableDefault})
	}
	return nil
}
