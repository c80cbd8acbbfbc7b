package interpreter

import (
	"math"

	"github.com/student/wazeroir-slots/internal/wasm"
	"github.com/student/wazeroir-slots/internal/wasmruntime"
	"github.com/student/wazeroir-slots/internal/wazeroir"
)

type memLoadFn func(m *wasm.MemoryInstance, s *wazeroir.SlotFile, dst wazeroir.Slot, addr uint32) bool
type memStoreFn func(m *wasm.MemoryInstance, s *wazeroir.SlotFile, val wazeroir.Slot, addr uint32) bool

var memLoadTable = map[wasm.Opcode]memLoadFn{}
var memStoreTable = map[wasm.Opcode]memStoreFn{}

// execMemLoad/execMemStore compute the effective address (base + static
// offset, spec.md §4.1) and dispatch to the per-width/per-sign handler.
// Alignment hints are not enforced: like most Wasm interpreters, unaligned
// accesses execute correctly rather than trapping — only the declared
// memory bounds matter.
func execMemLoad(m *wasm.MemoryInstance, s *wazeroir.SlotFile, instr *wazeroir.Instr) {
	addr := uint32(s.GetI32(instr.Src1.Idx)) + instr.Offset
	h := memLoadTable[instr.WasmOp]
	if !h(m, s, instr.Dst, addr) {
		panic(wasmruntime.ErrRuntimeOutOfBoundsMemoryAccess)
	}
}

func execMemStore(m *wasm.MemoryInstance, s *wazeroir.SlotFile, instr *wazeroir.Instr) {
	addr := uint32(s.GetI32(instr.Src1.Idx)) + instr.Offset
	h := memStoreTable[instr.WasmOp]
	if !h(m, s, instr.Src2, addr) {
		panic(wasmruntime.ErrRuntimeOutOfBoundsMemoryAccess)
	}
}

func init() {
	memLoadTable[wasm.OpcodeI32Load] = func(m *wasm.MemoryInstance, s *wazeroir.SlotFile, dst wazeroir.Slot, addr uint32) bool {
		v, ok := m.LoadI32(addr)
		if ok {
			s.SetI32(dst.Idx, v)
		}
		return ok
	}
	memLoadTable[wasm.OpcodeI32Load8S] = func(m *wasm.MemoryInstance, s *wazeroir.SlotFile, dst wazeroir.Slot, addr uint32) bool {
		v, ok := m.Load8S(addr)
		if ok {
			s.SetI32(dst.Idx, v)
		}
		return ok
	}
	memLoadTable[wasm.OpcodeI32Load8U] = func(m *wasm.MemoryInstance, s *wazeroir.SlotFile, dst wazeroir.Slot, addr uint32) bool {
		v, ok := m.Load8U(addr)
		if ok {
			s.SetI32(dst.Idx, v)
		}
		return ok
	}
	memLoadTable[wasm.OpcodeI32Load16S] = func(m *wasm.MemoryInstance, s *wazeroir.SlotFile, dst wazeroir.Slot, addr uint32) bool {
		v, ok := m.Load16S(addr)
		if ok {
			s.SetI32(dst.Idx, v)
		}
		return ok
	}
	memLoadTable[wasm.OpcodeI32Load16U] = func(m *wasm.MemoryInstance, s *wazeroir.SlotFile, dst wazeroir.Slot, addr uint32) bool {
		v, ok := m.Load16U(addr)
		if ok {
			s.SetI32(dst.Idx, v)
		}
		return ok
	}

	memLoadTable[wasm.OpcodeI64Load] = func(m *wasm.MemoryInstance, s *wazeroir.SlotFile, dst wazeroir.Slot, addr uint32) bool {
		v, ok := m.LoadI64(addr)
		if ok {
			s.SetI64(dst.Idx, v)
		}
		return ok
	}
	memLoadTable[wasm.OpcodeI64Load8S] = func(m *wasm.MemoryInstance, s *wazeroir.SlotFile, dst wazeroir.Slot, addr uint32) bool {
		v, ok := m.Load8S64(addr)
		if ok {
			s.SetI64(dst.Idx, v)
		}
		return ok
	}
	memLoadTable[wasm.OpcodeI64Load8U] = func(m *wasm.MemoryInstance, s *wazeroir.SlotFile, dst wazeroir.Slot, addr uint32) bool {
		v, ok := m.Load8U64(addr)
		if ok {
			s.SetI64(dst.Idx, v)
		}
		return ok
	}
	memLoadTable[wasm.OpcodeI64Load16S] = func(m *wasm.MemoryInstance, s *wazeroir.SlotFile, dst wazeroir.Slot, addr uint32) bool {
		v, ok := m.Load16S64(addr)
		if ok {
			s.SetI64(dst.Idx, v)
		}
		return ok
	}
	memLoadTable[wasm.OpcodeI64Load16U] = func(m *wasm.MemoryInstance, s *wazeroir.SlotFile, dst wazeroir.Slot, addr uint32) bool {
		v, ok := m.Load16U64(addr)
		if ok {
			s.SetI64(dst.Idx, v)
		}
		return ok
	}
	memLoadTable[wasm.OpcodeI64Load32S] = func(m *wasm.MemoryInstance, s *wazeroir.SlotFile, dst wazeroir.Slot, addr uint32) bool {
		v, ok := m.Load32S64(addr)
		if ok {
			s.SetI64(dst.Idx, v)
		}
		return ok
	}
	memLoadTable[wasm.OpcodeI64Load32U] = func(m *wasm.MemoryInstance, s *wazeroir.SlotFile, dst wazeroir.Slot, addr uint32) bool {
		v, ok := m.Load32U64(addr)
		if ok {
			s.SetI64(dst.Idx, v)
		}
		return ok
	}

	memLoadTable[wasm.OpcodeF32Load] = func(m *wasm.MemoryInstance, s *wazeroir.SlotFile, dst wazeroir.Slot, addr uint32) bool {
		v, ok := m.LoadF32(addr)
		if ok {
			s.SetF32(dst.Idx, v)
		}
		return ok
	}
	memLoadTable[wasm.OpcodeF64Load] = func(m *wasm.MemoryInstance, s *wazeroir.SlotFile, dst wazeroir.Slot, addr uint32) bool {
		v, ok := m.LoadF64(addr)
		if ok {
			s.SetF64(dst.Idx, v)
		}
		return ok
	}

	memStoreTable[wasm.OpcodeI32Store] = func(m *wasm.MemoryInstance, s *wazeroir.SlotFile, val wazeroir.Slot, addr uint32) bool {
		return m.Store32(addr, uint32(s.GetI32(val.Idx)))
	}
	memStoreTable[wasm.OpcodeI32Store8] = func(m *wasm.MemoryInstance, s *wazeroir.SlotFile, val wazeroir.Slot, addr uint32) bool {
		return m.Store8(addr, byte(s.GetI32(val.Idx)))
	}
	memStoreTable[wasm.OpcodeI32Store16] = func(m *wasm.MemoryInstance, s *wazeroir.SlotFile, val wazeroir.Slot, addr uint32) bool {
		return m.Store16(addr, uint16(s.GetI32(val.Idx)))
	}
	memStoreTable[wasm.OpcodeI64Store] = func(m *wasm.MemoryInstance, s *wazeroir.SlotFile, val wazeroir.Slot, addr uint32) bool {
		return m.Store64(addr, uint64(s.GetI64(val.Idx)))
	}
	memStoreTable[wasm.OpcodeI64Store8] = func(m *wasm.MemoryInstance, s *wazeroir.SlotFile, val wazeroir.Slot, addr uint32) bool {
		return m.Store8(addr, byte(s.GetI64(val.Idx)))
	}
	memStoreTable[wasm.OpcodeI64Store16] = func(m *wasm.MemoryInstance, s *wazeroir.SlotFile, val wazeroir.Slot, addr uint32) bool {
		return m.Store16(addr, uint16(s.GetI64(val.Idx)))
	}
	memStoreTable[wasm.OpcodeI64Store32] = func(m *wasm.MemoryInstance, s *wazeroir.SlotFile, val wazeroir.Slot, addr uint32) bool {
		return m.Store32(addr, uint32(s.GetI64(val.Idx)))
	}
	memStoreTable[wasm.OpcodeF32Store] = func(m *wasm.MemoryInstance, s *wazeroir.SlotFile, val wazeroir.Slot, addr uint32) bool {
		return m.Store32(addr, math.Float32bits(s.GetF32(val.Idx)))
	}
	memStoreTable[wasm.OpcodeF64Store] = func(m *wasm.MemoryInstance, s *wazeroir.SlotFile, val wazeroir.Slot, addr uint32) bool {
		return m.Store64(addr, math.Float64bits(s.GetF64(val.Idx)))
	}
}
