package wasm

import "context"

// FunctionKind discriminates the three function instance shapes spec.md §3
// names: Runtime{type, module-weak, body, slot_allocation}, Host{type,
// closure}, and Wasi{type, wasi-id}. The slot_allocation/body payload for
// FunctionKindWasm is not stored here — it is compiled once, eagerly when
// the module is instantiated, by the engine into its own parallel table
// (see internal/engine/interpreter),
// following the teacher's moduleEngine/codes split, so that this package
// never needs to import the IR package and risk a cycle.
type FunctionKind byte

const (
	FunctionKindWasm FunctionKind = iota
	FunctionKindHost
	FunctionKindWasi
)

// GoFunc is a host function implementation: given the calling module and
// parameter Vals, produce result Vals or trap.
type GoFunc func(ctx context.Context, mod *ModuleInstance, params []Val) ([]Val, error)

// FunctionInstance is one entry in a module's function address space.
// Functions refer back to their owning module via a plain (non-owning)
// pointer: Go has no ref-counted Weak<T>, so — matching the teacher's own
// moduleEngine.parentEngine back-pointer pattern — the embedder is
// responsible for keeping the owning ModuleInstance alive for as long as
// any FunctionInstance derived from it is reachable (spec.md §9: "break
// the cycle with a weak back-reference from function to module").
type FunctionInstance struct {
	Kind       FunctionKind
	Type       *FunctionType
	Module     *ModuleInstance
	Code       *Code   // valid when Kind == FunctionKindWasm
	GoFunc     GoFunc  // valid when Kind == FunctionKindHost
	WasiName   string  // valid when Kind == FunctionKindWasi
	Index      uint32  // index in the defining module's function address space
	Name       string
	ExportNames []string
}
