package wasm

import (
	"encoding/binary"
	"math"
	"sync"
)

const memoryPageSize = 65536

// MemoryMaxPages is the implementation maximum in Wasm pages (4GiB linear
// address space), used when a memory declares no explicit max (spec.md
// §8's "memory.grow returns -1 when the requested delta exceeds the
// declared max or implementation maximum").
const MemoryMaxPages = 1 << 16

// MemoryInstance is linear memory behind a reader/writer lock (spec.md §5:
// "held behind reader/writer locks so that multiple module instances ...
// may share them"). Grounded on original_source/src/execution/mem.rs for
// the load/store/grow shape, diverging deliberately where the reference's
// mem.rs hardcodes a single absolute max: this type honors both the
// declared Limits.Max and MemoryMaxPages.
type MemoryInstance struct {
	mu   sync.RWMutex
	typ  MemoryType
	data []byte
}

func NewMemoryInstance(t MemoryType) *MemoryInstance {
	return &MemoryInstance{typ: t, data: make([]byte, uint64(t.Limits.Min)*memoryPageSize)}
}

// PageCount returns the current size in pages.
func (m *MemoryInstance) PageCount() uint32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return uint32(len(m.data) / memoryPageSize)
}

// Grow implements memory.grow: returns the previous page count, or false
// if delta would exceed the declared or implementation maximum.
func (m *MemoryInstance) Grow(delta uint32) (previous uint32, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur := uint32(len(m.data) / memoryPageSize)
	next := uint64(cur) + uint64(delta)
	max := uint64(MemoryMaxPages)
	if m.typ.Limits.Max != nil && uint64(*m.typ.Limits.Max) < max {
		max = uint64(*m.typ.Limits.Max)
	}
	if next > max {
		return cur, false
	}
	grown := make([]byte, next*memoryPageSize)
	copy(grown, m.data)
	m.data = grown
	return cur, true
}

func (m *MemoryInstance) sizeBytes() uint64 {
	return uint64(len(m.data))
}

// inBounds reports whether [addr, addr+n) lies within memory, without
// holding the lock (callers hold it).
func (m *MemoryInstance) inBounds(addr uint64, n uint64) bool {
	end := addr + n
	return end >= addr && end <= m.sizeBytes()
}

// Read copies n bytes starting at addr; MemoryOutOfBounds is the caller's
// responsibility to raise as a trap (spec.md §8: "memory.load at addr +
// offset + width > memory_size*65536 traps MemoryOutOfBounds").
func (m *MemoryInstance) Read(addr uint32, n uint32) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.inBounds(uint64(addr), uint64(n)) {
		return nil, false
	}
	out := make([]byte, n)
	copy(out, m.data[addr:uint64(addr)+uint64(n)])
	return out, true
}

// View returns a live (write-through) slice, matching api.Memory.Read's
// write-through contract. Used by the api.Memory adapter's Read
// (api_adapter.go).
func (m *MemoryInstance) View(addr, n uint32) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.inBounds(uint64(addr), uint64(n)) {
		return nil, false
	}
	return m.data[addr : uint64(addr)+uint64(n)], true
}

func (m *MemoryInstance) Write(addr uint32, b []byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.inBounds(uint64(addr), uint64(len(b))) {
		return false
	}
	copy(m.data[addr:], b)
	return true
}

func (m *MemoryInstance) ReadByte(addr uint32) (byte, bool) {
	b, ok := m.Read(addr, 1)
	if !ok {
		return 0, false
	}
	return b[0], true
}

func (m *MemoryInstance) WriteByte(addr uint32, v byte) bool {
	return m.Write(addr, []byte{v})
}

func (m *MemoryInstance) ReadUint32Le(addr uint32) (uint32, bool) {
	b, ok := m.Read(addr, 4)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b), true
}

func (m *MemoryInstance) ReadUint64Le(addr uint32) (uint64, bool) {
	b, ok := m.Read(addr, 8)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint64(b), true
}

func (m *MemoryInstance) WriteUint32Le(addr uint32, v uint32) bool {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return m.Write(addr, b[:])
}

func (m *MemoryInstance) WriteUint64Le(addr uint32, v uint64) bool {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return m.Write(addr, b[:])
}

// LoadI32 etc. implement the per-width/per-sign byte codec of spec.md
// §4.1: "Loads that widen ... sign- or zero-extend after decoding."

func (m *MemoryInstance) LoadI32(addr uint32) (int32, bool) {
	v, ok := m.ReadUint32Le(addr)
	return int32(v), ok
}

func (m *MemoryInstance) LoadI64(addr uint32) (int64, bool) {
	v, ok := m.ReadUint64Le(addr)
	return int64(v), ok
}

func (m *MemoryInstance) LoadF32(addr uint32) (float32, bool) {
	v, ok := m.ReadUint32Le(addr)
	return math.Float32frombits(v), ok
}

func (m *MemoryInstance) LoadF64(addr uint32) (float64, bool) {
	v, ok := m.ReadUint64Le(addr)
	return math.Float64frombits(v), ok
}

func (m *MemoryInstance) Load8S(addr uint32) (int32, bool) {
	b, ok := m.ReadByte(addr)
	return int32(int8(b)), ok
}
func (m *MemoryInstance) Load8U(addr uint32) (int32, bool) {
	b, ok := m.ReadByte(addr)
	return int32(b), ok
}
func (m *MemoryInstance) Load16S(addr uint32) (int32, bool) {
	b, ok := m.Read(addr, 2)
	if !ok {
		return 0, false
	}
	return int32(int16(binary.LittleEndian.Uint16(b))), true
}
func (m *MemoryInstance) Load16U(addr uint32) (int32, bool) {
	b, ok := m.Read(addr, 2)
	if !ok {
		return 0, false
	}
	return int32(binary.LittleEndian.Uint16(b)), true
}
func (m *MemoryInstance) Load8S64(addr uint32) (int64, bool) {
	b, ok := m.ReadByte(addr)
	return int64(int8(b)), ok
}
func (m *MemoryInstance) Load8U64(addr uint32) (int64, bool) {
	b, ok := m.ReadByte(addr)
	return int64(b), ok
}
func (m *MemoryInstance) Load16S64(addr uint32) (int64, bool) {
	v, ok := m.Load16S(addr)
	return int64(v), ok
}
func (m *MemoryInstance) Load16U64(addr uint32) (int64, bool) {
	v, ok := m.Load16U(addr)
	return int64(v), ok
}
func (m *MemoryInstance) Load32S64(addr uint32) (int64, bool) {
	v, ok := m.ReadUint32Le(addr)
	return int64(int32(v)), ok
}
func (m *MemoryInstance) Load32U64(addr uint32) (int64, bool) {
	v, ok := m.ReadUint32Le(addr)
	return int64(v), ok
}

func (m *MemoryInstance) Store8(addr uint32, v byte) bool  { return m.WriteByte(addr, v) }
func (m *MemoryInstance) Store16(addr uint32, v uint16) bool {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return m.Write(addr, b[:])
}
func (m *MemoryInstance) Store32(addr uint32, v uint32) bool { return m.WriteUint32Le(addr, v) }
func (m *MemoryInstance) Store64(addr uint32, v uint64) bool { return m.WriteUint64Le(addr, v) }

// Copy implements memory.copy (bulk-memory proposal, in scope per
// spec.md §1).
func (m *MemoryInstance) Copy(dst, src, n uint32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.inBounds(uint64(src), uint64(n)) || !m.inBounds(uint64(dst), uint64(n)) {
		return false
	}
	copy(m.data[dst:uint64(dst)+uint64(n)], m.data[src:uint64(src)+uint64(n)])
	return true
}

// Fill implements memory.fill.
func (m *MemoryInstance) Fill(dst uint32, v byte, n uint32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.inBounds(uint64(dst), uint64(n)) {
		return false
	}
	region := m.data[dst : uint64(dst)+uint64(n)]
	for i := range region {
		region[i] = v
	}
	return true
}

// Init implements memory.init from a (non-dropped) passive data segment.
func (m *MemoryInstance) Init(dst uint32, seg []byte, src, n uint32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if uint64(src)+uint64(n) > uint64(len(seg)) {
		return false
	}
	if !m.inBounds(uint64(dst), uint64(n)) {
		return false
	}
	copy(m.data[dst:uint64(dst)+uint64(n)], seg[src:uint64(src)+uint64(n)])
	return true
}
