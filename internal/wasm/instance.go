package wasm

import (
	"fmt"

	"github.com/student/wazeroir-slots/api"
)

// Imports is the embedder-supplied set of extern values satisfying a
// module's import section, keyed the way imports are declared:
// Imports[moduleName][name]. Grounded on
// original_source/src/execution/module.rs's ImportObjects map.
type Imports map[string]map[string]interface{}

// ModuleInstance is the instantiated module (spec.md §3 ModuleInst): type
// table plus function/table/memory/global address spaces, exports, and
// (if imported) a WASI marker. Embedders see it through moduleAdapter
// (api_adapter.go), which implements api.Module on top of it.
type ModuleInstance struct {
	name string

	Types     []FunctionType
	Functions []*FunctionInstance
	Tables    []*TableInstance
	Memories  []*MemoryInstance
	Globals   []*GlobalInstance

	DataSegments    []DataSegment
	ElementSegments []ElementSegment

	exportFuncs   map[string]*FunctionInstance
	exportMems    map[string]*MemoryInstance
	exportGlobals map[string]*GlobalInstance

	closed    bool
	exitCode  uint32
}

// NewHostModuleInstance builds a ModuleInstance whose functions are Go
// closures rather than compiled Wasm bytecode (spec.md §3's Host function
// kind) — used by the embedder (runtime.go's HostModuleBuilder) and by the
// WASI import module, neither of which can populate exportFuncs directly
// since it is unexported.
func NewHostModuleInstance(name string, funcs map[string]*FunctionInstance) *ModuleInstance {
	inst := &ModuleInstance{name: name, exportFuncs: map[string]*FunctionInstance{}}
	for fname, fi := range funcs {
		fi.Module = inst
		fi.Index = uint32(len(inst.Functions))
		fi.ExportNames = []string{fname}
		inst.Functions = append(inst.Functions, fi)
		inst.exportFuncs[fname] = fi
	}
	return inst
}

func (m *ModuleInstance) Name() string { return m.name }

func (m *ModuleInstance) String() string { return fmt.Sprintf("Module[%s]", m.name) }

func (m *ModuleInstance) ExportedFunctionInstance(name string) *FunctionInstance {
	return m.exportFuncs[name]
}

func (m *ModuleInstance) ExportedMemoryInstance(name string) *MemoryInstance {
	return m.exportMems[name]
}

func (m *ModuleInstance) ExportedGlobalInstance(name string) *GlobalInstance {
	return m.exportGlobals[name]
}

// CloseWithExitCode records that the module exited (typically via the WASI
// proc_exit host call) with the given code; IsClosed/ExitCode let the
// embedder distinguish a normal return from an explicit exit after the
// sys.ExitError panic set up by the WASI dispatcher unwinds back out of
// Engine.Call.
func (m *ModuleInstance) CloseWithExitCode(exitCode uint32) {
	m.closed = true
	m.exitCode = exitCode
}

func (m *ModuleInstance) IsClosed() bool { return m.closed }

func (m *ModuleInstance) ExitCode() uint32 { return m.exitCode }

// Instantiate links a Module against the given imports and allocates all
// instances, mirroring original_source/src/execution/module.rs's ModuleInst::new
// algorithm: resolve imports first (by address-space order: functions,
// tables, memories, globals), then allocate the module's own declared
// entries, then build exports. Start-function lookup (not invocation) is
// left to the caller (spec.md §6(b) fixes invocation as a separate `run`
// operation; the embedder layer in runtime.go invokes the start function
// immediately after Instantiate returns, as wazero's Runtime.InstantiateModule
// does).
func Instantiate(name string, mod *Module, imports Imports) (*ModuleInstance, error) {
	inst := &ModuleInstance{
		name:          name,
		Types:         append([]FunctionType(nil), mod.Types...),
		exportFuncs:   map[string]*FunctionInstance{},
		exportMems:    map[string]*MemoryInstance{},
		exportGlobals: map[string]*GlobalInstance{},
	}

	for _, imp := range mod.Imports {
		modImports, ok := imports[imp.Module]
		if !ok {
			return nil, &ImportNotFoundError{imp.Module, imp.Name}
		}
		val, ok := modImports[imp.Name]
		if !ok {
			return nil, &ImportNotFoundError{imp.Module, imp.Name}
		}
		switch imp.Type {
		case api.ExternTypeFunc:
			fi, ok := val.(*FunctionInstance)
			if !ok {
				return nil, &ImportTypeMismatchError{imp.Module, imp.Name, "not a function"}
			}
			want := &mod.Types[imp.DescFunc]
			if !fi.Type.Matches(want) {
				return nil, &ImportTypeMismatchError{imp.Module, imp.Name, "signature mismatch"}
			}
			inst.Functions = append(inst.Functions, fi)
		case api.ExternTypeTable:
			ti, ok := val.(*TableInstance)
			if !ok {
				return nil, &ImportTypeMismatchError{imp.Module, imp.Name, "not a table"}
			}
			inst.Tables = append(inst.Tables, ti)
		case api.ExternTypeMemory:
			mi, ok := val.(*MemoryInstance)
			if !ok {
				return nil, &ImportTypeMismatchError{imp.Module, imp.Name, "not a memory"}
			}
			inst.Memories = append(inst.Memories, mi)
		case api.ExternTypeGlobal:
			gi, ok := val.(*GlobalInstance)
			if !ok {
				return nil, &ImportTypeMismatchError{imp.Module, imp.Name, "not a global"}
			}
			inst.Globals = append(inst.Globals, gi)
		}
	}

	for i, typeIdx := range mod.FunctionTypeIndices {
		code := &mod.Codes[i]
		fi := &FunctionInstance{
			Kind:   FunctionKindWasm,
			Type:   &inst.Types[typeIdx],
			Module: inst,
			Code:   code,
			Index:  uint32(len(inst.Functions)),
		}
		inst.Functions = append(inst.Functions, fi)
	}

	for _, t := range mod.Tables {
		inst.Tables = append(inst.Tables, NewTableInstance(t))
	}
	for _, mt := range mod.Memories {
		inst.Memories = append(inst.Memories, NewMemoryInstance(mt))
	}
	for _, g := range mod.Globals {
		var init Val
		if g.Init.IsGlobalGet {
			init = inst.Globals[g.Init.GlobalIndex].Get()
		} else {
			init = g.Init.Value
		}
		inst.Globals = append(inst.Globals, NewGlobalInstance(g.Type, init))
	}

	inst.DataSegments = append([]DataSegment(nil), mod.DataSegments...)
	inst.ElementSegments = append([]ElementSegment(nil), mod.ElementSegments...)

	for _, seg := range mod.ElementSegments {
		if seg.Passive {
			continue
		}
		t := inst.Tables[seg.TableIdx]
		for i, fidx := range seg.Init {
			var ref Reference
			if fidx == FuncIndexNull {
				ref = NullReference
			} else {
				ref = Reference{IsFunc: true, FuncIndex: fidx}
			}
			t.Set(seg.Offset+uint32(i), ref)
		}
	}
	for _, seg := range mod.DataSegments {
		if seg.Passive {
			continue
		}
		m := inst.Memories[seg.MemIdx]
		if !m.Write(seg.Offset, seg.Init) {
			return nil, &InstantiationError{"active data segment out of bounds"}
		}
	}

	for _, exp := range mod.Exports {
		switch exp.Type {
		case api.ExternTypeFunc:
			fi := inst.Functions[exp.Index]
			fi.ExportNames = append(fi.ExportNames, exp.Name)
			inst.exportFuncs[exp.Name] = fi
		case api.ExternTypeMemory:
			inst.exportMems[exp.Name] = inst.Memories[exp.Index]
		case api.ExternTypeGlobal:
			inst.exportGlobals[exp.Name] = inst.Globals[exp.Index]
		}
	}

	return inst, nil
}

// DropData implements the data.drop instruction (spec.md §4.5 lists
// Data.Drop as an inline control op; the supplemental semantics below are
// recovered from original_source, see SPEC_FULL.md §12): marks a passive
// data segment inactive so a subsequent memory.init against it either
// no-ops (zero length) or traps MemoryOutOfBounds (non-zero length).
func (m *ModuleInstance) DropData(idx uint32) {
	m.DataSegments[idx].dropped = true
}

func (m *ModuleInstance) DataDropped(idx uint32) bool {
	return m.DataSegments[idx].dropped
}

func (m *ModuleInstance) DropElem(idx uint32) {
	m.ElementSegments[idx].dropped = true
}

func (m *ModuleInstance) ElemDropped(idx uint32) bool {
	return m.ElementSegments[idx].dropped
}
