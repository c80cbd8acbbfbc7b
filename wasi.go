package wazero

import (
	"context"

	"github.com/student/wazeroir-slots/api"
	"github.com/student/wazeroir-slots/internal/wasi_snapshot_preview1"
	"github.com/student/wazeroir-slots/internal/wasm"
)

// InstantiateWASI builds and registers the wasi_snapshot_preview1 host
// module from the fixed dispatch table in internal/wasi_snapshot_preview1,
// so that a guest module importing "wasi_snapshot_preview1"."fd_write"
// (and the rest of SPEC_FULL.md §8(c)'s function set) resolves against a
// real FunctionKindWasi entry instead of failing Instantiate's import
// resolution. The embedder controls the guest-visible args/environ/stdio
// by wrapping the ctx it later passes to Function.Call with
// wasi_snapshot_preview1.WithWasiConfig — this just wires the calls.
func (r *Runtime) InstantiateWASI(_ context.Context) (api.Closer, error) {
	funcs := make(map[string]*wasm.FunctionInstance, len(wasi_snapshot_preview1.Functions))
	for name := range wasi_snapshot_preview1.Functions {
		funcs[name] = &wasm.FunctionInstance{
			Kind:     wasm.FunctionKindWasi,
			Type:     wasi_snapshot_preview1.FuncType(name),
			WasiName: name,
			Name:     name,
		}
	}
	inst := wasm.NewHostModuleInstance(wasi_snapshot_preview1.ModuleName, funcs)
	r.modules[wasi_snapshot_preview1.ModuleName] = inst
	return &moduleAdapter{engine: r.engine, inst: inst}, nil
}

// WasiImports builds the Imports entry a guest's Instantiate call needs to
// resolve its wasi_snapshot_preview1 imports, once InstantiateWASI has
// registered the host module.
func (r *Runtime) WasiImports() map[string]interface{} {
	inst := r.modules[wasi_snapshot_preview1.ModuleName]
	if inst == nil {
		return nil
	}
	out := make(map[string]interface{}, len(inst.Functions))
	for _, fi := range inst.Functions {
		out[fi.Name] = fi
	}
	return out
}
