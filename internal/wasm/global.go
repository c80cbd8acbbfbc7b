package wasm

import "sync"

// GlobalInstance is a single global value behind a reader/writer lock
// (spec.md §5). Grounded on original_source/src/execution/global.rs, with
// the divergence spec.md §9 calls for: the reference checks the value's
// runtime type against the declared type on every Set and returns a user
// trap on mismatch; this implementation instead treats that mismatch as an
// engine invariant violation (validation is assumed to have already
// excluded it), raised as a plain Go panic that Engine.Call's recover turns
// into a returned error rather than a Wasm trap.
type GlobalInstance struct {
	mu  sync.RWMutex
	typ GlobalType
	val Val
}

func NewGlobalInstance(t GlobalType, initial Val) *GlobalInstance {
	return &GlobalInstance{typ: t, val: initial}
}

func (g *GlobalInstance) Type() GlobalType {
	return g.typ
}

func (g *GlobalInstance) Get() Val {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.val
}

// Set requires the global to be declared mutable; the spec (§5 "writes
// require the global to be declared mutable, otherwise InstructionFailed")
// treats an attempt to set an immutable global the same way as a type
// mismatch: an engine invariant violation, not a trap, since validation
// already rejects such modules.
func (g *GlobalInstance) Set(v Val) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.typ.Mutable {
		panic("engine invariant violated: set on immutable global")
	}
	if v.Type != g.typ.ValType {
		panic("engine invariant violated: global set type mismatch")
	}
	g.val = v
}
