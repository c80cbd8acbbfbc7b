package wazeroir

import (
	"testing"

	"github.com/student/wazeroir-slots/internal/testing/require"
	"github.com/student/wazeroir-slots/internal/wasm"
)

func TestSlotKindOf(t *testing.T) {
	tests := []struct {
		t    wasm.ValueType
		kind SlotKind
	}{
		{wasm.ValueTypeI32, SlotKindI32},
		{wasm.ValueTypeI64, SlotKindI64},
		{wasm.ValueTypeF32, SlotKindF32},
		{wasm.ValueTypeF64, SlotKindF64},
		{wasm.ValueTypeV128, SlotKindV128},
		{wasm.ValueTypeFuncref, SlotKindRef},
		{wasm.ValueTypeExternref, SlotKindRef},
	}
	for _, tc := range tests {
		require.Equal(t, tc.kind, SlotKindOf(tc.t))
	}
}

func TestSlotFile_PushPopFrame_Isolation(t *testing.T) {
	sf := NewSlotFile()
	sf.PushFrame(PerKindCounts{SlotKindI32: 2, SlotKindI64: 1})
	sf.SetI32(0, 10)
	sf.SetI32(1, 20)
	sf.SetI64(0, 99)

	sf.PushFrame(PerKindCounts{SlotKindI32: 1})
	sf.SetI32(0, 7)
	require.Equal(t, int32(7), sf.GetI32(0))
	sf.PopFrame()

	// Caller frame's slots are untouched by the callee frame.
	require.Equal(t, int32(10), sf.GetI32(0))
	require.Equal(t, int32(20), sf.GetI32(1))
	require.Equal(t, int64(99), sf.GetI64(0))
}

func TestSlotFile_GetSetVal_RoundTrip(t *testing.T) {
	sf := NewSlotFile()
	sf.PushFrame(PerKindCounts{SlotKindI32: 1, SlotKindI64: 1, SlotKindF32: 1, SlotKindF64: 1, SlotKindRef: 1})

	tests := []struct {
		name string
		slot Slot
		typ  wasm.ValueType
		val  wasm.Val
	}{
		{"i32", Slot{Kind: SlotKindI32}, wasm.ValueTypeI32, wasm.ValI32(-5)},
		{"i64", Slot{Kind: SlotKindI64}, wasm.ValueTypeI64, wasm.ValI64(1 << 40)},
		{"f32", Slot{Kind: SlotKindF32}, wasm.ValueTypeF32, wasm.ValF32(1.5)},
		{"f64", Slot{Kind: SlotKindF64}, wasm.ValueTypeF64, wasm.ValF64(2.25)},
		{"funcref", Slot{Kind: SlotKindRef}, wasm.ValueTypeFuncref, wasm.ValRef(wasm.Reference{IsFunc: true, FuncIndex: 3})},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sf.SetVal(tc.slot, tc.val)
			got := sf.GetVal(tc.slot, tc.typ)
			require.Equal(t, tc.val.Bits(), got.Bits())
		})
	}
}

func TestSlotFile_CopySlot(t *testing.T) {
	sf := NewSlotFile()
	sf.PushFrame(PerKindCounts{SlotKindI32: 2})
	sf.SetI32(0, 42)
	sf.CopySlot(Slot{Kind: SlotKindI32, Idx: 0}, Slot{Kind: SlotKindI32, Idx: 1})
	require.Equal(t, int32(42), sf.GetI32(1))
}

func TestSlotFile_CopySlot_KindMismatchPanics(t *testing.T) {
	sf := NewSlotFile()
	sf.PushFrame(PerKindCounts{SlotKindI32: 1, SlotKindI64: 1})
	require.Panics(t, func() {
		sf.CopySlot(Slot{Kind: SlotKindI32}, Slot{Kind: SlotKindI64})
	})
}

func TestSlotFile_CopySlots(t *testing.T) {
	sf := NewSlotFile()
	sf.PushFrame(PerKindCounts{SlotKindI32: 4})
	sf.SetI32(0, 1)
	sf.SetI32(1, 2)
	src := []Slot{{Kind: SlotKindI32, Idx: 0}, {Kind: SlotKindI32, Idx: 1}}
	dst := []Slot{{Kind: SlotKindI32, Idx: 2}, {Kind: SlotKindI32, Idx: 3}}
	sf.CopySlots(src, dst)
	require.Equal(t, int32(1), sf.GetI32(2))
	require.Equal(t, int32(2), sf.GetI32(3))
}
