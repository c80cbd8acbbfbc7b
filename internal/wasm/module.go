package wasm

// Package wasm holds the runtime data model: the already-validated Module
// the parser hands in (spec.md §6(a)), and the instantiated ModuleInstance
// graph (types, functions, tables, memories, globals) the engine executes
// against (spec.md §3). Binary decoding itself is out of scope; Module
// values are built either by an external parser or, in tests, by hand —
// the same way the teacher's own engine-level tests construct *wasm.Module
// literals without going through its binary decoder.

// FunctionType is a Wasm function signature.
type FunctionType struct {
	Params, Results []ValueType
}

// Matches reports whether two signatures are identical, the check
// call_indirect uses against a table slot's function type (spec.md §8).
func (t *FunctionType) Matches(o *FunctionType) bool {
	if len(t.Params) != len(o.Params) || len(t.Results) != len(o.Results) {
		return false
	}
	for i, p := range t.Params {
		if p != o.Params[i] {
			return false
		}
	}
	for i, r := range t.Results {
		if r != o.Results[i] {
			return false
		}
	}
	return true
}

// Import describes one imported extern.
type Import struct {
	Type       byte // api.ExternType
	Module     string
	Name       string
	DescFunc   uint32 // index into Module.Types, valid when Type==ExternTypeFunc
	DescMem    *MemoryType
	DescTable  *TableType
	DescGlobal *GlobalType
}

// Export describes one exported extern.
type Export struct {
	Type  byte // api.ExternType
	Name  string
	Index uint32
}

// Limits is a min/max pair shared by memories and tables.
type Limits struct {
	Min uint32
	Max *uint32 // nil means unbounded (up to the implementation maximum)
}

type MemoryType struct{ Limits Limits }

type TableType struct {
	Limits  Limits
	RefType ValueType // ValueTypeFuncref or ValueTypeExternref
}

type GlobalType struct {
	ValType ValueType
	Mutable bool
}

// Code is one function body: its declared locals (beyond parameters) and
// decoded instruction list.
type Code struct {
	LocalTypes []ValueType
	Body       []Instruction
}

// DataSegment is a memory initializer; Active segments carry an offset
// expression already evaluated to a constant by the (out-of-scope) loader.
type DataSegment struct {
	Passive bool
	MemIdx  uint32
	Offset  uint32 // meaningless when Passive
	Init    []byte
	dropped bool
}

// ElementSegment is a table initializer of function indices.
type ElementSegment struct {
	Passive bool
	TableIdx uint32
	Offset   uint32
	Init     []uint32 // function indices; FuncIndexNull marks ref.null entries
	dropped  bool
}

// FuncIndexNull marks a ref.null entry within an ElementSegment.Init.
const FuncIndexNull = ^uint32(0)

// Module is the parser's output: a fully validated, already linked-shape
// description of one Wasm binary. No field here is re-derived at
// instantiation; Instantiate (instance.go) only allocates instances
// and wires imports.
type Module struct {
	Types   []FunctionType
	Imports []Import

	// FunctionTypeIndices is dense over the module's own (non-imported)
	// functions, indexing into Types.
	FunctionTypeIndices []uint32
	Codes               []Code

	Tables  []TableType
	Memories []MemoryType

	Globals []GlobalInit

	Exports []Export

	StartFunc *uint32 // index into the function address space, or nil

	DataSegments    []DataSegment
	ElementSegments []ElementSegment

	// NumImportedFunctions etc. let callers compute the function/table/
	// memory/global address-space split between imported and local
	// entries, matching spec.md's ModuleInst function split.
	NumImportedFunctions uint32
	NumImportedTables    uint32
	NumImportedMemories  uint32
	NumImportedGlobals   uint32
}

// GlobalInit is a declared (non-imported) global: its type and a constant
// initializer expression, already evaluated by the loader to one of the
// forms below (spec.md's "invalid constant expression" validation error
// covers malformed initializers upstream of this package).
type GlobalInit struct {
	Type GlobalType
	Init ConstExpr
}

// ConstExpr is a constant initializer: either a literal or a read of an
// imported (therefore already-initialized) global.
type ConstExpr struct {
	IsGlobalGet bool
	GlobalIndex uint32
	Value       Val
}
