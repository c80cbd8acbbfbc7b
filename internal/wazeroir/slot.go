// Package wazeroir implements the slot-based, directly-threaded
// intermediate representation: the slot allocator (compile-time) and the
// preprocessor that lowers a validated, stack-shaped wasm.Code body into a
// flat Instr vector with resolved branch targets and pre-assigned slot
// operands (spec.md §2 items 2-4). Grounded throughout on
// _examples/original_source/src/execution/slots.rs and vm.rs, the chiwawa
// Rust implementation this design was distilled from, reworked in the
// teacher's (tetratelabs/wazero) package-layout and naming idiom: this
// package plays the same "IR between decode and execution" role wazero's
// own wazeroir package does, with a slot-based IR in place of its
// stack/register-machine one.
package wazeroir

import "github.com/student/wazeroir-slots/internal/wasm"

// SlotKind selects one of the six parallel typed arrays a Slot addresses.
type SlotKind byte

const (
	SlotKindI32 SlotKind = iota
	SlotKindI64
	SlotKindF32
	SlotKindF64
	SlotKindRef
	SlotKindV128
	slotKindCount
)

func SlotKindOf(t wasm.ValueType) SlotKind {
	switch t {
	case wasm.ValueTypeI32:
		return SlotKindI32
	case wasm.ValueTypeI64:
		return SlotKindI64
	case wasm.ValueTypeF32:
		return SlotKindF32
	case wasm.ValueTypeF64:
		return SlotKindF64
	case wasm.ValueTypeV128:
		return SlotKindV128
	case wasm.ValueTypeFuncref, wasm.ValueTypeExternref:
		return SlotKindRef
	default:
		panic("engine invariant violated: unknown value type")
	}
}

// Slot is a tagged pair (kind, dense per-kind index), spec.md §3's "Slot".
type Slot struct {
	Kind SlotKind
	Idx  uint16
}

// PerKindCounts is a per-type count vector: slot_allocation (spec.md §3),
// frame offsets (spec.md §3 FrameFileOffsets), and high-water marks
// (spec.md §4.3 max_depth) all share this shape.
type PerKindCounts [slotKindCount]uint32

// SlotFile is the runtime-owned, frame-stacked typed register file
// (spec.md §3 "SlotFile"). Grounded on
// original_source/src/execution/slots.rs's SlotFile: six parallel arrays
// plus a stack of per-frame base offsets.
type SlotFile struct {
	i32  []int32
	i64  []int64
	f32  []float32
	f64  []float64
	ref  []wasm.Reference
	v128 [][2]uint64

	offsets []PerKindCounts // one entry per live frame; top is current
}

func NewSlotFile() *SlotFile {
	return &SlotFile{offsets: []PerKindCounts{{}}}
}

func (s *SlotFile) cur() PerKindCounts {
	return s.offsets[len(s.offsets)-1]
}

// PushFrame grows each array by counts[k] if needed (never truncating or
// relocating a live caller frame's already-written range — slots.rs
// invariant (c)) and pushes a new base-offset record at the prior
// end-of-array position for each kind.
func (s *SlotFile) PushFrame(counts PerKindCounts) {
	base := s.cur()
	var newBase PerKindCounts
	for k := SlotKind(0); k < slotKindCount; k++ {
		newBase[k] = s.lenOf(k)
	}
	for k := SlotKind(0); k < slotKindCount; k++ {
		s.ensureCapacity(k, newBase[k]+counts[k])
	}
	_ = base
	s.offsets = append(s.offsets, newBase)
}

// PopFrame pops the offset stack; underlying arrays are not truncated
// (slots.rs invariant (b): reuse is allowed on the next PushFrame).
func (s *SlotFile) PopFrame() {
	s.offsets = s.offsets[:len(s.offsets)-1]
}

func (s *SlotFile) lenOf(k SlotKind) uint32 {
	switch k {
	case SlotKindI32:
		return uint32(len(s.i32))
	case SlotKindI64:
		return uint32(len(s.i64))
	case SlotKindF32:
		return uint32(len(s.f32))
	case SlotKindF64:
		return uint32(len(s.f64))
	case SlotKindRef:
		return uint32(len(s.ref))
	default:
		return uint32(len(s.v128))
	}
}

func (s *SlotFile) ensureCapacity(k SlotKind, n uint32) {
	switch k {
	case SlotKindI32:
		if uint32(len(s.i32)) < n {
			s.i32 = append(s.i32, make([]int32, n-uint32(len(s.i32)))...)
		}
	case SlotKindI64:
		if uint32(len(s.i64)) < n {
			s.i64 = append(s.i64, make([]int64, n-uint32(len(s.i64)))...)
		}
	case SlotKindF32:
		if uint32(len(s.f32)) < n {
			s.f32 = append(s.f32, make([]float32, n-uint32(len(s.f32)))...)
		}
	case SlotKindF64:
		if uint32(len(s.f64)) < n {
			s.f64 = append(s.f64, make([]float64, n-uint32(len(s.f64)))...)
		}
	case SlotKindRef:
		if uint32(len(s.ref)) < n {
			extra := make([]wasm.Reference, n-uint32(len(s.ref)))
			for i := range extra {
				extra[i] = wasm.NullReference
			}
			s.ref = append(s.ref, extra...)
		}
	case SlotKindV128:
		if uint32(len(s.v128)) < n {
			s.v128 = append(s.v128, make([][2]uint64, n-uint32(len(s.v128)))...)
		}
	}
}

func (s *SlotFile) base(k SlotKind) uint32 {
	return s.cur()[k]
}

func (s *SlotFile) GetI32(i uint16) int32  { return s.i32[s.base(SlotKindI32)+uint32(i)] }
func (s *SlotFile) SetI32(i uint16, v int32) { s.i32[s.base(SlotKindI32)+uint32(i)] = v }
func (s *SlotFile) GetI64(i uint16) int64  { return s.i64[s.base(SlotKindI64)+uint32(i)] }
func (s *SlotFile) SetI64(i uint16, v int64) { s.i64[s.base(SlotKindI64)+uint32(i)] = v }
func (s *SlotFile) GetF32(i uint16) float32 { return s.f32[s.base(SlotKindF32)+uint32(i)] }
func (s *SlotFile) SetF32(i uint16, v float32) {
	s.f32[s.base(SlotKindF32)+uint32(i)] = v
}
func (s *SlotFile) GetF64(i uint16) float64 { return s.f64[s.base(SlotKindF64)+uint32(i)] }
func (s *SlotFile) SetF64(i uint16, v float64) {
	s.f64[s.base(SlotKindF64)+uint32(i)] = v
}
func (s *SlotFile) GetRef(i uint16) wasm.Reference {
	return s.ref[s.base(SlotKindRef)+uint32(i)]
}
func (s *SlotFile) SetRef(i uint16, v wasm.Reference) {
	s.ref[s.base(SlotKindRef)+uint32(i)] = v
}
func (s *SlotFile) GetV128(i uint16) [2]uint64 {
	return s.v128[s.base(SlotKindV128)+uint32(i)]
}
func (s *SlotFile) SetV128(i uint16, v [2]uint64) {
	s.v128[s.base(SlotKindV128)+uint32(i)] = v
}

// GetVal/SetVal are the generic, boundary-crossing path (spec.md §4.2).
func (s *SlotFile) GetVal(sl Slot, t wasm.ValueType) wasm.Val {
	switch sl.Kind {
	case SlotKindI32:
		return wasm.ValI32(s.GetI32(sl.Idx))
	case SlotKindI64:
		return wasm.ValI64(s.GetI64(sl.Idx))
	case SlotKindF32:
		return wasm.ValF32(s.GetF32(sl.Idx))
	case SlotKindF64:
		return wasm.ValF64(s.GetF64(sl.Idx))
	case SlotKindRef:
		if t == wasm.ValueTypeExternref {
			return wasm.ValExternref(s.GetRef(sl.Idx))
		}
		return wasm.ValRef(s.GetRef(sl.Idx))
	default:
		return wasm.Val{Type: wasm.ValueTypeV128}
	}
}

func (s *SlotFile) SetVal(sl Slot, v wasm.Val) {
	switch sl.Kind {
	case SlotKindI32:
		i, _ := v.AsI32()
		s.SetI32(sl.Idx, i)
	case SlotKindI64:
		i, _ := v.AsI64()
		s.SetI64(sl.Idx, i)
	case SlotKindF32:
		f, _ := v.AsF32()
		s.SetF32(sl.Idx, f)
	case SlotKindF64:
		f, _ := v.AsF64()
		s.SetF64(sl.Idx, f)
	case SlotKindRef:
		r, _ := v.AsRef()
		s.SetRef(sl.Idx, r)
	}
}

// CopySlot copies one slot of identical kind — the allocator guarantees
// src.Kind == dst.Kind for every copy it emits (slots.rs invariant (b) /
// spec.md §4.2 guarantee (b)).
func (s *SlotFile) CopySlot(src, dst Slot) {
	if src.Kind != dst.Kind {
		panic("engine invariant violated: slot copy kind mismatch")
	}
	switch src.Kind {
	case SlotKindI32:
		s.SetI32(dst.Idx, s.GetI32(src.Idx))
	case SlotKindI64:
		s.SetI64(dst.Idx, s.GetI64(src.Idx))
	case SlotKindF32:
		s.SetF32(dst.Idx, s.GetF32(src.Idx))
	case SlotKindF64:
		s.SetF64(dst.Idx, s.GetF64(src.Idx))
	case SlotKindRef:
		s.SetRef(dst.Idx, s.GetRef(src.Idx))
	case SlotKindV128:
		s.SetV128(dst.Idx, s.GetV128(src.Idx))
	}
}

func (s *SlotFile) CopySlots(src, dst []Slot) {
	for i := range src {
		s.CopySlot(src[i], dst[i])
	}
}
