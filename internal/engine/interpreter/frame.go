package interpreter

import (
	"context"

	"github.com/student/wazeroir-slots/internal/wasm"
	"github.com/student/wazeroir-slots/internal/wasmruntime"
	"github.com/student/wazeroir-slots/internal/wazeroir"
)

// signal is what a single pass through runFrame hands back to the driver
// loop (spec.md §4.7): EndOfFrame/Return both end the current frame (the
// distinction — explicit `return` vs falling off the end — only matters
// for readability of a trace, not for driver behavior); InvokeFunction and
// InvokeHost ask the driver to perform a call before resuming this frame
// (InvokeHost) or a new one (InvokeFunction).
type signal byte

const (
	sigEndOfFrame signal = iota
	sigReturn
	sigInvokeFunction
	sigInvokeHost
)

// pendingCall carries everything the driver needs to either push a new
// Frame (InvokeFunction) or run a host function synchronously
// (InvokeHost) and resume the caller.
type pendingCall struct {
	callee *wasm.FunctionInstance
	args   []wasm.Val
	dst    []wazeroir.Slot
}

// Frame is one activation record: the function being run, its compiled
// body, the current instruction pointer, and the open-scope depth counter
// that substitutes for a real runtime label stack (spec.md §4.6) now that
// every branch target is an absolute IP resolved at compile time — see
// wazeroir/instr.go's Level/TargetLevels/DefaultLevel fields.
type Frame struct {
	fn         *wasm.FunctionInstance
	compiled   *wazeroir.CompiledFunction
	ip         int
	labelDepth int32
}

// returnSite records where an in-flight call's results must land once the
// callee frame ends: the caller's dst slots and the callee's declared
// result types (needed to box each slot back into a wasm.Val — results
// cross the frame boundary the same boxed way params do, spec.md §4.2).
type returnSite struct {
	dstSlots    []wazeroir.Slot
	resultTypes []wasm.ValueType
}

// callEngine is the per-Call() driver state: one shared SlotFile (every
// Frame's locals+stack live in the same six arrays, at disjoint
// frame-relative offsets per wazeroir.SlotFile.PushFrame) plus an explicit
// frame stack, so a deep call chain never recurses the host Go stack.
type callEngine struct {
	engine *Engine
	ctx    context.Context

	slots      *wazeroir.SlotFile
	frames     []*Frame
	returnSites []returnSite
}

func (ce *callEngine) pushFrame(fi *wasm.FunctionInstance, args []wasm.Val, rs *returnSite) {
	if len(ce.frames) > 1<<20 {
		panic(wasmruntime.ErrRuntimeCallStackOverflow)
	}
	compiled := ce.engine.compiled[fi.Module][fi.Index]
	if ce.slots == nil {
		ce.slots = wazeroir.NewSlotFile()
	}
	ce.slots.PushFrame(compiled.SlotCounts)
	for i, v := range args {
		ce.slots.SetVal(compiled.LocalSlots[i], v)
	}
	ce.frames = append(ce.frames, &Frame{fn: fi, compiled: compiled})
	if rs != nil {
		ce.returnSites = append(ce.returnSites, *rs)
	} else {
		ce.returnSites = append(ce.returnSites, returnSite{})
	}
}

func (ce *callEngine) popFrame() {
	ce.frames = ce.frames[:len(ce.frames)-1]
	ce.returnSites = ce.returnSites[:len(ce.returnSites)-1]
	ce.slots.PopFrame()
}

// callWasm is the driver loop (spec.md §4.7): repeatedly run the top
// frame until it signals, act on the signal, and either resume (host
// call), descend (wasm call), or unwind one level (end/return) —
// returning to the Go caller only once the initial frame itself ends.
func (ce *callEngine) callWasm(inst *wasm.ModuleInstance, fnIdx uint32, params []wasm.Val) ([]wasm.Val, error) {
	fi := inst.Functions[fnIdx]
	ce.pushFrame(fi, params, nil)

	for {
		frame := ce.frames[len(ce.frames)-1]
		sig, vals, call := ce.runFrame(frame)

		switch sig {
		case sigEndOfFrame, sigReturn:
			rs := ce.returnSites[len(ce.returnSites)-1]
			ce.popFrame()
			if len(ce.frames) == 0 {
				return vals, nil
			}
			for i, v := range vals {
				ce.slots.SetVal(rs.dstSlots[i], v)
			}

		case sigInvokeFunction:
			ce.pushFrame(call.callee, call.args, &returnSite{dstSlots: call.dst, resultTypes: call.callee.Type.Results})

		case sigInvokeHost:
			// A host or WASI function runs against the calling module (its
			// memory, its exit state), not the host module exporting it.
			callee := *call.callee
			callee.Module = frame.fn.Module
			results, err := ce.engine.callHost(ce.ctx, &callee, call.args)
			if err != nil {
				panic(err)
			}
			for i, v := range results {
				ce.slots.SetVal(call.dst[i], v)
			}
		}
	}
}
