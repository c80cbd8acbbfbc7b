package wazeroir

import (
	"testing"

	"github.com/student/wazeroir-slots/internal/testing/require"
	"github.com/student/wazeroir-slots/internal/wasm"
)

func TestSlotAllocator_PushPop(t *testing.T) {
	a := newSlotAllocator()
	s0 := a.push(wasm.ValueTypeI32)
	s1 := a.push(wasm.ValueTypeI32)
	require.Equal(t, Slot{Kind: SlotKindI32, Idx: 0}, s0)
	require.Equal(t, Slot{Kind: SlotKindI32, Idx: 1}, s1)

	popped := a.pop(wasm.ValueTypeI32)
	require.Equal(t, s1, popped)

	require.Equal(t, PerKindCounts{SlotKindI32: 2}, a.finalize())
}

func TestSlotAllocator_PopAny(t *testing.T) {
	a := newSlotAllocator()
	a.push(wasm.ValueTypeI32)
	a.push(wasm.ValueTypeF64)

	slot, typ := a.popAny()
	require.Equal(t, wasm.ValueTypeF64, typ)
	require.Equal(t, Slot{Kind: SlotKindF64, Idx: 0}, slot)

	slot, typ = a.popAny()
	require.Equal(t, wasm.ValueTypeI32, typ)
	require.Equal(t, Slot{Kind: SlotKindI32, Idx: 0}, slot)
}

func TestSlotAllocator_PeekTypes(t *testing.T) {
	a := newSlotAllocator()
	a.push(wasm.ValueTypeI32)
	a.push(wasm.ValueTypeI64)
	a.push(wasm.ValueTypeI32)

	got := a.peekTypes([]wasm.ValueType{wasm.ValueTypeI64, wasm.ValueTypeI32})
	want := []Slot{
		{Kind: SlotKindI64, Idx: 0},
		{Kind: SlotKindI32, Idx: 1},
	}
	require.Equal(t, want, got)

	// peekTypes must not have popped anything.
	require.Equal(t, PerKindCounts{SlotKindI32: 2, SlotKindI64: 1}, a.depth)
}

func TestSlotAllocator_SaveRestore_KeepsMaxDepth(t *testing.T) {
	a := newSlotAllocator()
	a.push(wasm.ValueTypeI32)
	st := a.save()

	a.push(wasm.ValueTypeI32)
	a.push(wasm.ValueTypeI32)
	require.Equal(t, uint32(3), a.maxDepth[SlotKindI32])

	a.restore(st)
	require.Equal(t, uint32(1), a.depth[SlotKindI32])
	// restore must not shrink the high-water mark recorded before it.
	require.Equal(t, uint32(3), a.maxDepth[SlotKindI32])
}
