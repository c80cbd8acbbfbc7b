package wazeroir

import "github.com/student/wazeroir-slots/internal/wasm"

// allocatorState is a snapshot of the allocator's per-kind depths plus the
// type-stack length, used to save/restore at block boundaries (spec.md
// §4.3 save()/restore(state)). Grounded on
// original_source/src/execution/slots.rs's SlotAllocatorState.
type allocatorState struct {
	depth      PerKindCounts
	typeStackLen int
}

// slotAllocator is the compile-time component of spec.md §4.3: it tracks
// six per-type depths and a parallel type-stack recording the type
// identity of each logical operand-stack entry in push order, so pop_any
// can learn the top type without a separate explicit stack discipline per
// opcode.
type slotAllocator struct {
	depth    PerKindCounts
	maxDepth PerKindCounts
	typeStack []wasm.ValueType
}

func newSlotAllocator() *slotAllocator {
	return &slotAllocator{}
}

// push allocates a fresh slot of type t at the current depth for its kind,
// then increments the depth and records the high-water mark.
func (a *slotAllocator) push(t wasm.ValueType) Slot {
	k := SlotKindOf(t)
	idx := a.depth[k]
	a.depth[k]++
	if a.depth[k] > a.maxDepth[k] {
		a.maxDepth[k] = a.depth[k]
	}
	a.typeStack = append(a.typeStack, t)
	return Slot{Kind: k, Idx: uint16(idx)}
}

// pop frees and returns the slot most recently pushed for kind k. Callers
// that know the static type (the common case — spec.md §4.4's emit pass
// knows each operand's type from the instruction signature) use pop
// directly; popAny is for contexts that only know "the top of stack",
// namely `drop`, `select`'s value operands (its condition is a plain i32
// pop) and `ref.is_null`.
func (a *slotAllocator) pop(t wasm.ValueType) Slot {
	k := SlotKindOf(t)
	a.depth[k]--
	a.typeStack = a.typeStack[:len(a.typeStack)-1]
	return Slot{Kind: k, Idx: uint16(a.depth[k])}
}

// popAny consults the type stack to learn the top type, then pops it
// (spec.md §4.3 pop_any).
func (a *slotAllocator) popAny() (Slot, wasm.ValueType) {
	t := a.typeStack[len(a.typeStack)-1]
	return a.pop(t), t
}

// peekTypes reconstructs the slots currently holding tys at the top of the
// stack without popping them, used to learn where a block's inputs live at
// entry (spec.md §4.3 peek_types).
func (a *slotAllocator) peekTypes(tys []wasm.ValueType) []Slot {
	out := make([]Slot, len(tys))
	// Walk the type stack from the position n-len(tys) upward, tracking a
	// scratch per-kind counter seeded from the depth just below these
	// entries, so each peeked type resolves to its real slot index.
	n := len(a.typeStack)
	start := n - len(tys)
	var scratch PerKindCounts
	for k := SlotKind(0); k < slotKindCount; k++ {
		scratch[k] = a.depth[k]
	}
	for i := len(tys) - 1; i >= 0; i-- {
		k := SlotKindOf(a.typeStack[start+i])
		scratch[k]--
		out[i] = Slot{Kind: k, Idx: uint16(scratch[k])}
	}
	return out
}

func (a *slotAllocator) save() allocatorState {
	return allocatorState{depth: a.depth, typeStackLen: len(a.typeStack)}
}

// restore resets depths to a saved state without shrinking maxDepth
// (spec.md §4.3: "without shrinking max_depth").
func (a *slotAllocator) restore(st allocatorState) {
	a.depth = st.depth
	a.typeStack = a.typeStack[:st.typeStackLen]
}

func (a *slotAllocator) finalize() PerKindCounts {
	return a.maxDepth
}
