package interpreter

import (
	"github.com/student/wazeroir-slots/internal/wasm"
	"github.com/student/wazeroir-slots/internal/wasmruntime"
	"github.com/student/wazeroir-slots/internal/wazeroir"
)

// runFrame is the per-frame interpreter loop (spec.md §4.6): it executes
// Body[ip] until a control signal fires. Control-flow ops (Block/Loop/If/
// Jump/End/Br/BrIf/BrTable/Return/Call*/RefNull/Table*/Data/ElemDrop) are
// handled inline, right here, because they touch the label-depth counter,
// the frame/call stack, or the module's own tables/segments rather than a
// per-type numeric dispatch table (spec.md §4.5's rationale for keeping
// control ops out of those tables). Everything else is looked up in the
// matching per-category table built in the dispatch_*.go files.
func (ce *callEngine) runFrame(frame *Frame) (signal, []wasm.Val, *pendingCall) {
	body := frame.compiled.Body
	slots := ce.slots
	mod := frame.fn.Module

	for {
		instr := &body[frame.ip]

		switch instr.Op {
		case wazeroir.IRUnreachable:
			panic(wasmruntime.ErrRuntimeUnreachable)

		case wazeroir.IRBlock, wazeroir.IRLoop:
			frame.labelDepth++
			frame.ip++

		case wazeroir.IRIf:
			if slots.GetI32(instr.Src1.Idx) != 0 {
				frame.labelDepth++
				frame.ip++
			} else if instr.HasElse {
				frame.labelDepth++
				frame.ip = int(instr.Target2)
			} else {
				// no else: Target2 is past the if's End, so the scope is
				// never entered and its End's decrement never runs.
				frame.ip = int(instr.Target2)
			}

		case wazeroir.IRJump:
			slots.CopySlots(instr.SrcSlots, instr.DstSlots)
			frame.labelDepth -= instr.Level
			frame.ip = int(instr.Target)

		case wazeroir.IREnd:
			slots.CopySlots(instr.SrcSlots, instr.DstSlots)
			if frame.labelDepth == 0 {
				return sigEndOfFrame, boxResults(slots, instr.SrcSlots, frame.fn.Type.Results), nil
			}
			frame.labelDepth--
			frame.ip++

		case wazeroir.IRBr:
			slots.CopySlots(instr.SrcSlots, instr.DstSlots)
			frame.labelDepth -= instr.Level
			frame.ip = int(instr.Target)

		case wazeroir.IRBrIf:
			if slots.GetI32(instr.Src1.Idx) != 0 {
				slots.CopySlots(instr.SrcSlots, instr.DstSlots)
				frame.labelDepth -= instr.Level
				frame.ip = int(instr.Target)
			} else {
				frame.ip++
			}

		case wazeroir.IRBrTable:
			i := slots.GetI32(instr.Src1.Idx)
			var target, level int32
			var dst []wazeroir.Slot
			if i >= 0 && int(i) < len(instr.Targets) {
				target, level, dst = instr.Targets[i], instr.TargetLevels[i], instr.TargetDstSlots[i]
			} else {
				target, level, dst = instr.Default, instr.DefaultLevel, instr.DstSlots
			}
			slots.CopySlots(instr.SrcSlots, dst)
			frame.labelDepth -= level
			frame.ip = int(target)

		case wazeroir.IRReturn:
			return sigReturn, boxResults(slots, instr.SrcSlots, frame.fn.Type.Results), nil

		case wazeroir.IRCall, wazeroir.IRCallWasi:
			callee := mod.Functions[instr.FuncIdx]
			args := boxResults(slots, instr.SrcSlots, callee.Type.Params)
			frame.ip++
			if callee.Kind == wasm.FunctionKindWasm {
				return sigInvokeFunction, nil, &pendingCall{callee: callee, args: args, dst: instr.DstSlots}
			}
			return sigInvokeHost, nil, &pendingCall{callee: callee, args: args, dst: instr.DstSlots}

		case wazeroir.IRCallIndirect:
			elemIdx := slots.GetI32(instr.Src1.Idx)
			table := mod.Tables[instr.TableIdx]
			ref, ok := table.Get(uint32(elemIdx))
			if !ok {
				panic(wasmruntime.ErrRuntimeInvalidTableAccess)
			}
			if ref.IsNull || !ref.IsFunc {
				panic(wasmruntime.ErrRuntimeUninitializedElement)
			}
			callee := mod.Functions[ref.FuncIndex]
			want := &mod.Types[instr.TypeIdx]
			if !callee.Type.Matches(want) {
				panic(wasmruntime.ErrRuntimeIndirectCallTypeMismatch)
			}
			args := boxResults(slots, instr.SrcSlots, callee.Type.Params)
			frame.ip++
			if callee.Kind == wasm.FunctionKindWasm {
				return sigInvokeFunction, nil, &pendingCall{callee: callee, args: args, dst: instr.DstSlots}
			}
			return sigInvokeHost, nil, &pendingCall{callee: callee, args: args, dst: instr.DstSlots}

		case wazeroir.IRLocalGet, wazeroir.IRLocalTee:
			slots.CopySlot(instr.Src1, instr.Dst)
			frame.ip++
		case wazeroir.IRLocalSet:
			slots.CopySlot(instr.Src1, instr.Dst)
			frame.ip++

		case wazeroir.IRGlobalGet:
			slots.SetVal(instr.Dst, mod.Globals[instr.GlobalIdx].Get())
			frame.ip++
		case wazeroir.IRGlobalSet:
			g := mod.Globals[instr.GlobalIdx]
			g.Set(slots.GetVal(instr.Src1, g.Type().ValType))
			frame.ip++

		case wazeroir.IRDataDrop:
			mod.DropData(instr.DataIdx)
			frame.ip++
		case wazeroir.IRElemDrop:
			mod.DropElem(instr.ElemIdx)
			frame.ip++

		case wazeroir.IRRefNull:
			slots.SetRef(instr.Dst.Idx, wasm.NullReference)
			frame.ip++
		case wazeroir.IRRefIsNull:
			r := slots.GetRef(instr.Src1.Idx)
			slots.SetI32(instr.Dst.Idx, boolI32(r.IsNull))
			frame.ip++
		case wazeroir.IRRefFunc:
			slots.SetRef(instr.Dst.Idx, wasm.Reference{IsFunc: true, FuncIndex: instr.FuncIdx})
			frame.ip++

		case wazeroir.IRTableGet:
			t := mod.Tables[instr.TableIdx]
			r, ok := t.Get(uint32(slots.GetI32(instr.Src1.Idx)))
			if !ok {
				panic(wasmruntime.ErrRuntimeInvalidTableAccess)
			}
			slots.SetRef(instr.Dst.Idx, r)
			frame.ip++
		case wazeroir.IRTableSet:
			t := mod.Tables[instr.TableIdx]
			if !t.Set(uint32(slots.GetI32(instr.Src1.Idx)), slots.GetRef(instr.Src2.Idx)) {
				panic(wasmruntime.ErrRuntimeInvalidTableAccess)
			}
			frame.ip++
		case wazeroir.IRTableSize:
			slots.SetI32(instr.Dst.Idx, int32(mod.Tables[instr.TableIdx].Size()))
			frame.ip++
		case wazeroir.IRTableGrow:
			t := mod.Tables[instr.TableIdx]
			prev, ok := t.Grow(uint32(slots.GetI32(instr.Src2.Idx)), slots.GetRef(instr.Src1.Idx))
			if !ok {
				slots.SetI32(instr.Dst.Idx, -1)
			} else {
				slots.SetI32(instr.Dst.Idx, int32(prev))
			}
			frame.ip++
		case wazeroir.IRTableFill:
			t := mod.Tables[instr.TableIdx]
			if !t.Fill(uint32(slots.GetI32(instr.Src1.Idx)), slots.GetRef(instr.Src2.Idx), uint32(slots.GetI32(instr.Dst.Idx))) {
				panic(wasmruntime.ErrRuntimeInvalidTableAccess)
			}
			frame.ip++
		case wazeroir.IRTableCopy:
			dstT, srcT := mod.Tables[instr.TableIdx], mod.Tables[instr.TypeIdx]
			n := uint32(slots.GetI32(instr.Dst.Idx))
			src := uint32(slots.GetI32(instr.Src1.Idx))
			dst := uint32(slots.GetI32(instr.Src2.Idx))
			if !tableCopy(dstT, srcT, dst, src, n) {
				panic(wasmruntime.ErrRuntimeInvalidTableAccess)
			}
			frame.ip++
		case wazeroir.IRTableInit:
			t := mod.Tables[instr.TableIdx]
			n := uint32(slots.GetI32(instr.Dst.Idx))
			src := uint32(slots.GetI32(instr.Src1.Idx))
			dst := uint32(slots.GetI32(instr.Src2.Idx))
			seg := mod.ElementSegments[instr.ElemIdx]
			if mod.ElemDropped(instr.ElemIdx) {
				if n != 0 {
					panic(wasmruntime.ErrRuntimeInvalidTableAccess)
				}
			} else if !t.Init(dst, elemRefs(seg), src, n) {
				panic(wasmruntime.ErrRuntimeInvalidTableAccess)
			}
			frame.ip++

		case wazeroir.IRMemSize:
			slots.SetI32(instr.Dst.Idx, int32(mod.Memories[0].PageCount()))
			frame.ip++
		case wazeroir.IRMemGrow:
			prev, ok := mod.Memories[0].Grow(uint32(slots.GetI32(instr.Src1.Idx)))
			if !ok {
				slots.SetI32(instr.Dst.Idx, -1)
			} else {
				slots.SetI32(instr.Dst.Idx, int32(prev))
			}
			frame.ip++
		case wazeroir.IRMemCopy:
			m := mod.Memories[0]
			n := uint32(slots.GetI32(instr.Dst.Idx))
			src := uint32(slots.GetI32(instr.Src1.Idx))
			dst := uint32(slots.GetI32(instr.Src2.Idx))
			if !m.Copy(dst, src, n) {
				panic(wasmruntime.ErrRuntimeOutOfBoundsMemoryAccess)
			}
			frame.ip++
		case wazeroir.IRMemFill:
			m := mod.Memories[0]
			n := uint32(slots.GetI32(instr.Dst.Idx))
			val := byte(slots.GetI32(instr.Src2.Idx))
			dst := uint32(slots.GetI32(instr.Src1.Idx))
			if !m.Fill(dst, val, n) {
				panic(wasmruntime.ErrRuntimeOutOfBoundsMemoryAccess)
			}
			frame.ip++
		case wazeroir.IRMemInit:
			m := mod.Memories[0]
			n := uint32(slots.GetI32(instr.Dst.Idx))
			src := uint32(slots.GetI32(instr.Src1.Idx))
			dst := uint32(slots.GetI32(instr.Src2.Idx))
			if mod.DataDropped(instr.DataIdx) {
				if n != 0 {
					panic(wasmruntime.ErrRuntimeOutOfBoundsMemoryAccess)
				}
			} else if !m.Init(dst, mod.DataSegments[instr.DataIdx].Init, src, n) {
				panic(wasmruntime.ErrRuntimeOutOfBoundsMemoryAccess)
			}
			frame.ip++

		case wazeroir.IRSelect:
			execSelect(slots, instr)
			frame.ip++

		case wazeroir.IRTyped:
			execTyped(slots, instr)
			frame.ip++
		case wazeroir.IRConversion:
			execConversion(slots, instr)
			frame.ip++
		case wazeroir.IRMemLoad:
			execMemLoad(mod.Memories[0], slots, instr)
			frame.ip++
		case wazeroir.IRMemStore:
			execMemStore(mod.Memories[0], slots, instr)
			frame.ip++

		default:
			frame.ip++
		}
	}
}

func boxResults(slots *wazeroir.SlotFile, sl []wazeroir.Slot, types []wasm.ValueType) []wasm.Val {
	out := make([]wasm.Val, len(sl))
	for i, s := range sl {
		out[i] = slots.GetVal(s, types[i])
	}
	return out
}

// tableCopy implements table.copy across two (possibly identical) table
// instances: same-table copies delegate to TableInstance.Copy (which uses
// Go's overlap-safe copy()); cross-table copies can never overlap, so a
// plain element-by-element walk suffices.
func tableCopy(dstT, srcT *wasm.TableInstance, dst, src, n uint32) bool {
	if dstT == srcT {
		return dstT.Copy(dst, src, n)
	}
	if uint64(src)+uint64(n) > uint64(srcT.Size()) || uint64(dst)+uint64(n) > uint64(dstT.Size()) {
		return false
	}
	for i := uint32(0); i < n; i++ {
		r, _ := srcT.Get(src + i)
		dstT.Set(dst+i, r)
	}
	return true
}

// elemRefs materializes an element segment's function-index list as
// references, the same conversion wasm.Instantiate applies to active
// segments (instance.go), needed here because ElementSegment.Init stores
// indices rather than Reference values directly.
func elemRefs(seg wasm.ElementSegment) []wasm.Reference {
	out := make([]wasm.Reference, len(seg.Init))
	for i, fidx := range seg.Init {
		if fidx == wasm.FuncIndexNull {
			out[i] = wasm.NullReference
		} else {
			out[i] = wasm.Reference{IsFunc: true, FuncIndex: fidx}
		}
	}
	return out
}
