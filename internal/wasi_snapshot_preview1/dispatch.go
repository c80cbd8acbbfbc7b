// Package wasi_snapshot_preview1 is the typed WASI dispatcher spec.md
// §4.7/§6(c) calls for: a fixed table of preview-1 function names, each
// backed by a Go closure that unpacks its boxed wasm.Val parameters,
// touches the calling module's memory/streams, and boxes an errno (never
// a trap, per the WASI calling convention) back as the lone i32 result.
// Grounded on the teacher's imports/wasi_snapshot_preview1 package for the
// function catalogue and per-call shape, collapsed here into one
// dispatch table instead of one exported Go function per call, since
// Engine.callHost (internal/engine/interpreter/engine.go) only needs a
// name -> implementation lookup, not an importable Go API.
package wasi_snapshot_preview1

import (
	"context"
	"crypto/rand"
	"io"
	"time"

	"github.com/student/wazeroir-slots/internal/wasm"
	"github.com/student/wazeroir-slots/sys"
)

// ModuleName is the import module name guest binaries use for preview-1
// WASI calls.
const ModuleName = "wasi_snapshot_preview1"

// Func is one WASI host call: given the calling module and its already
// type-checked parameters, produce the (errno-shaped) result Vals, or a
// Go error for a condition the dispatcher itself considers fatal (out of
// bounds memory access is reported as ErrnoFault, not a Go error, so that
// only genuine host bugs surface as traps).
type Func func(ctx context.Context, mod *wasm.ModuleInstance, params []wasm.Val) ([]wasm.Val, error)

// Functions is the fixed preview-1 dispatch table keyed by
// wasm.FunctionInstance.WasiName. Every name SPEC_FULL.md §8(c) lists is
// present, even where the implementation behind it is a stub: a guest
// linking against an unsupported call observes ErrnoNosys rather than an
// unresolvable import.
var Functions = map[string]Func{
	"args_get":          argsGet,
	"args_sizes_get":    argsSizesGet,
	"environ_get":       environGet,
	"environ_sizes_get": environSizesGet,
	"clock_res_get":     nosys,
	"clock_time_get":    clockTimeGet,
	"fd_write":          fdWrite,
	"fd_read":           fdRead,
	"fd_close":          nosys,
	"fd_seek":           nosys,
	"fd_tell":           nosys,
	"fd_fdstat_get":     nosys,
	"fd_prestat_get":    nosys,
	"fd_prestat_dir_name": nosys,
	"path_open":         nosys,
	"proc_exit":         procExit,
	"random_get":        randomGet,
	"poll_oneoff":       nosys,
	"sched_yield":       schedYield,
}

// params/errnoResult build the signatures shared by most of the preview-1
// calls (clock_time_get's precision, fd_seek's offset and path_open's
// rights fields are i64; proc_exit has no result, since it never returns
// to the caller).
func params(n int) []wasm.ValueType {
	p := make([]wasm.ValueType, n)
	for i := range p {
		p[i] = wasm.ValueTypeI32
	}
	return p
}

var errnoResult = []wasm.ValueType{wasm.ValueTypeI32}

// FuncType returns the Wasm function signature for a named preview-1
// call, used when the embedder builds the wasi_snapshot_preview1 host
// module's function table (runtime.go) — every entry in Functions has one.
func FuncType(name string) *wasm.FunctionType {
	switch name {
	case "args_get", "environ_get":
		return &wasm.FunctionType{Params: params(2), Results: errnoResult}
	case "args_sizes_get", "environ_sizes_get":
		return &wasm.FunctionType{Params: params(2), Results: errnoResult}
	case "clock_res_get":
		return &wasm.FunctionType{Params: params(2), Results: errnoResult}
	case "clock_time_get":
		return &wasm.FunctionType{
			Params:  []wasm.ValueType{wasm.ValueTypeI32, wasm.ValueTypeI64, wasm.ValueTypeI32},
			Results: errnoResult,
		}
	case "fd_write", "fd_read":
		return &wasm.FunctionType{Params: params(4), Results: errnoResult}
	case "fd_close":
		return &wasm.FunctionType{Params: params(1), Results: errnoResult}
	case "fd_seek":
		return &wasm.FunctionType{
			Params:  []wasm.ValueType{wasm.ValueTypeI32, wasm.ValueTypeI64, wasm.ValueTypeI32, wasm.ValueTypeI32},
			Results: errnoResult,
		}
	case "fd_tell", "fd_fdstat_get", "fd_prestat_get":
		return &wasm.FunctionType{Params: params(2), Results: errnoResult}
	case "fd_prestat_dir_name":
		return &wasm.FunctionType{Params: params(3), Results: errnoResult}
	case "path_open":
		return &wasm.FunctionType{
			Params: []wasm.ValueType{
				wasm.ValueTypeI32, wasm.ValueTypeI32, wasm.ValueTypeI32, wasm.ValueTypeI32,
				wasm.ValueTypeI32, wasm.ValueTypeI64, wasm.ValueTypeI64, wasm.ValueTypeI32, wasm.ValueTypeI32,
			},
			Results: errnoResult,
		}
	case "proc_exit":
		return &wasm.FunctionType{Params: params(1)}
	case "random_get":
		return &wasm.FunctionType{Params: params(2), Results: errnoResult}
	case "poll_oneoff":
		return &wasm.FunctionType{Params: params(4), Results: errnoResult}
	case "sched_yield":
		return &wasm.FunctionType{Results: errnoResult}
	default:
		return nil
	}
}

func errnoVal(e Errno) []wasm.Val { return []wasm.Val{wasm.ValI32(int32(e))} }

func memOf(mod *wasm.ModuleInstance) *wasm.MemoryInstance {
	return mod.ExportedMemoryInstance("memory")
}

func u32(v wasm.Val) uint32 {
	n, _ := v.AsI32()
	return uint32(n)
}

func nosys(_ context.Context, _ *wasm.ModuleInstance, _ []wasm.Val) ([]wasm.Val, error) {
	return errnoVal(ErrnoNosys), nil
}

// argsGet writes argv pointers into argv and the joined, NUL-terminated
// argument bytes into argvBuf, mirroring environGet's layout.
func argsGet(ctx context.Context, mod *wasm.ModuleInstance, p []wasm.Val) ([]wasm.Val, error) {
	return writeStrings(mod, config(ctx).Args, u32(p[0]), u32(p[1]))
}

func argsSizesGet(ctx context.Context, mod *wasm.ModuleInstance, p []wasm.Val) ([]wasm.Val, error) {
	return writeSizes(mod, config(ctx).Args, u32(p[0]), u32(p[1]))
}

func environGet(ctx context.Context, mod *wasm.ModuleInstance, p []wasm.Val) ([]wasm.Val, error) {
	return writeStrings(mod, config(ctx).Environ, u32(p[0]), u32(p[1]))
}

func environSizesGet(ctx context.Context, mod *wasm.ModuleInstance, p []wasm.Val) ([]wasm.Val, error) {
	return writeSizes(mod, config(ctx).Environ, u32(p[0]), u32(p[1]))
}

// writeSizes stores len(strs) at countPtr and the total NUL-inclusive byte
// length at bufSizePtr, as args_sizes_get/environ_sizes_get require before
// the guest sizes its argv/argv_buf allocation for the paired *_get call.
func writeSizes(mod *wasm.ModuleInstance, strs []string, countPtr, bufSizePtr uint32) ([]wasm.Val, error) {
	mem := memOf(mod)
	if mem == nil {
		return errnoVal(ErrnoFault), nil
	}
	size := 0
	for _, s := range strs {
		size += len(s) + 1
	}
	if !mem.WriteUint32Le(countPtr, uint32(len(strs))) || !mem.WriteUint32Le(bufSizePtr, uint32(size)) {
		return errnoVal(ErrnoFault), nil
	}
	return errnoVal(ErrnoSuccess), nil
}

// writeStrings lays out strs as a pointer array at ptrsAddr (one i32 per
// entry, pointing into buf) followed by the NUL-terminated bytes
// themselves at bufAddr, the layout args_get/environ_get share.
func writeStrings(mod *wasm.ModuleInstance, strs []string, ptrsAddr, bufAddr uint32) ([]wasm.Val, error) {
	mem := memOf(mod)
	if mem == nil {
		return errnoVal(ErrnoFault), nil
	}
	cursor := bufAddr
	for i, s := range strs {
		if !mem.WriteUint32Le(ptrsAddr+uint32(i)*4, cursor) {
			return errnoVal(ErrnoFault), nil
		}
		if !mem.Write(cursor, append([]byte(s), 0)) {
			return errnoVal(ErrnoFault), nil
		}
		cursor += uint32(len(s)) + 1
	}
	return errnoVal(ErrnoSuccess), nil
}

// clockTimeGet supports realtime (0) and monotonic (1) clock ids; any
// other id is rejected with ErrnoInval rather than guessed at.
func clockTimeGet(_ context.Context, mod *wasm.ModuleInstance, p []wasm.Val) ([]wasm.Val, error) {
	id := u32(p[0])
	resultPtr := u32(p[2])
	var now time.Time
	switch id {
	case 0:
		now = time.Now()
	case 1:
		now = time.Unix(0, time.Now().UnixNano())
	default:
		return errnoVal(ErrnoInval), nil
	}
	mem := memOf(mod)
	if mem == nil || !mem.WriteUint64Le(resultPtr, uint64(now.UnixNano())) {
		return errnoVal(ErrnoFault), nil
	}
	return errnoVal(ErrnoSuccess), nil
}

// iovec is one entry of the guest's __wasi_ciovec_t/__wasi_iovec_t array:
// a (buf pointer, buf length) pair, 8 bytes total.
func readIovec(mem *wasm.MemoryInstance, addr uint32) (ptr, length uint32, ok bool) {
	ptr, ok = mem.ReadUint32Le(addr)
	if !ok {
		return 0, 0, false
	}
	length, ok = mem.ReadUint32Le(addr + 4)
	return ptr, length, ok
}

// fdWrite implements fd_write for stdout(1)/stderr(2); any other fd is
// ErrnoBadf since this dispatcher does not model a file descriptor table.
func fdWrite(ctx context.Context, mod *wasm.ModuleInstance, p []wasm.Val) ([]wasm.Val, error) {
	fd, iovs, iovsLen, nwrittenPtr := u32(p[0]), u32(p[1]), u32(p[2]), u32(p[3])
	var w io.Writer
	switch fd {
	case 1:
		w = config(ctx).stdout()
	case 2:
		w = config(ctx).stderr()
	default:
		return errnoVal(ErrnoBadf), nil
	}
	mem := memOf(mod)
	if mem == nil {
		return errnoVal(ErrnoFault), nil
	}
	var written uint32
	for i := uint32(0); i < iovsLen; i++ {
		ptr, length, ok := readIovec(mem, iovs+i*8)
		if !ok {
			return errnoVal(ErrnoFault), nil
		}
		buf, ok := mem.Read(ptr, length)
		if !ok {
			return errnoVal(ErrnoFault), nil
		}
		n, err := w.Write(buf)
		written += uint32(n)
		if err != nil {
			return errnoVal(ToErrno(err)), nil
		}
	}
	if !mem.WriteUint32Le(nwrittenPtr, written) {
		return errnoVal(ErrnoFault), nil
	}
	return errnoVal(ErrnoSuccess), nil
}

// fdRead implements fd_read for stdin(0) only.
func fdRead(ctx context.Context, mod *wasm.ModuleInstance, p []wasm.Val) ([]wasm.Val, error) {
	fd, iovs, iovsLen, nreadPtr := u32(p[0]), u32(p[1]), u32(p[2]), u32(p[3])
	if fd != 0 {
		return errnoVal(ErrnoBadf), nil
	}
	mem := memOf(mod)
	if mem == nil {
		return errnoVal(ErrnoFault), nil
	}
	r := config(ctx).stdin()
	var total uint32
	for i := uint32(0); i < iovsLen; i++ {
		ptr, length, ok := readIovec(mem, iovs+i*8)
		if !ok {
			return errnoVal(ErrnoFault), nil
		}
		buf := make([]byte, length)
		n, err := r.Read(buf)
		if n > 0 {
			if !mem.Write(ptr, buf[:n]) {
				return errnoVal(ErrnoFault), nil
			}
			total += uint32(n)
		}
		if err != nil {
			break
		}
	}
	if !mem.WriteUint32Le(nreadPtr, total) {
		return errnoVal(ErrnoFault), nil
	}
	return errnoVal(ErrnoSuccess), nil
}

// procExit never returns: it unwinds the call via a sys.ExitError panic,
// caught by wasmruntime.RecoverOnTrap at the Engine.Call boundary, the
// same recover-to-error seam every other trap uses (internal/engine/
// interpreter/engine.go).
func procExit(_ context.Context, mod *wasm.ModuleInstance, p []wasm.Val) ([]wasm.Val, error) {
	code := u32(p[0])
	mod.CloseWithExitCode(code)
	panic(sys.NewExitError(code))
}

func randomGet(ctx context.Context, mod *wasm.ModuleInstance, p []wasm.Val) ([]wasm.Val, error) {
	buf, length := u32(p[0]), u32(p[1])
	b := make([]byte, length)
	src := config(ctx).RandSource
	if src == nil {
		src = rand.Reader
	}
	if _, err := io.ReadFull(src, b); err != nil {
		return errnoVal(ToErrno(err)), nil
	}
	mem := memOf(mod)
	if mem == nil || !mem.Write(buf, b) {
		return errnoVal(ErrnoFault), nil
	}
	return errnoVal(ErrnoSuccess), nil
}

func schedYield(_ context.Context, _ *wasm.ModuleInstance, _ []wasm.Val) ([]wasm.Val, error) {
	return errnoVal(ErrnoSuccess), nil
}
