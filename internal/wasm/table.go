package wasm

import "sync"

// TableInstance holds function or extern references, behind a reader/
// writer lock (spec.md §5). Grounded on
// original_source/src/execution/table.rs: Get returns ok=false only for an
// out-of-range index; an uninitialized element comes back as
// NullReference with ok=true. The interpreter's call_indirect handler traps
// InvalidTableAccess on the first and UninitializedElement on the second.
type TableInstance struct {
	mu   sync.RWMutex
	typ  TableType
	elem []Reference
}

func NewTableInstance(t TableType) *TableInstance {
	elem := make([]Reference, t.Limits.Min)
	for i := range elem {
		elem[i] = NullReference
	}
	return &TableInstance{typ: t, elem: elem}
}

func (t *TableInstance) Size() uint32 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return uint32(len(t.elem))
}

func (t *TableInstance) Get(i uint32) (Reference, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if i >= uint32(len(t.elem)) {
		return Reference{}, false
	}
	return t.elem[i], true
}

func (t *TableInstance) Set(i uint32, r Reference) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i >= uint32(len(t.elem)) {
		return false
	}
	t.elem[i] = r
	return true
}

func (t *TableInstance) Grow(delta uint32, fill Reference) (previous uint32, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cur := uint32(len(t.elem))
	next := uint64(cur) + uint64(delta)
	max := uint64(^uint32(0))
	if t.typ.Limits.Max != nil {
		max = uint64(*t.typ.Limits.Max)
	}
	if next > max {
		return cur, false
	}
	grown := make([]Reference, next)
	copy(grown, t.elem)
	for i := cur; i < uint32(next); i++ {
		grown[i] = fill
	}
	t.elem = grown
	return cur, true
}

func (t *TableInstance) Fill(dst uint32, r Reference, n uint32) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if uint64(dst)+uint64(n) > uint64(len(t.elem)) {
		return false
	}
	for i := uint32(0); i < n; i++ {
		t.elem[dst+i] = r
	}
	return true
}

func (t *TableInstance) Copy(dst, src, n uint32) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if uint64(dst)+uint64(n) > uint64(len(t.elem)) || uint64(src)+uint64(n) > uint64(len(t.elem)) {
		return false
	}
	copy(t.elem[dst:dst+n], t.elem[src:src+n])
	return true
}

func (t *TableInstance) Init(dst uint32, seg []Reference, src, n uint32) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if uint64(src)+uint64(n) > uint64(len(seg)) {
		return false
	}
	if uint64(dst)+uint64(n) > uint64(len(t.elem)) {
		return false
	}
	copy(t.elem[dst:dst+n], seg[src:src+n])
	return true
}
