package wasi_snapshot_preview1

import (
	"context"
	"io"
	"os"
)

// wasiConfigKey is the context.Context key under which a *WasiConfig is
// stashed, mirroring the teacher's own sys.Context-via-context-key
// pattern for threading per-instantiation state through to host calls
// without widening every GoFunc signature.
type wasiConfigKey struct{}

// WasiConfig carries the guest-visible environment: argv, environ, and the
// three standard streams. A zero WasiConfig is valid and behaves like a
// guest run with no arguments, no environment, and the process's own
// stdin/stdout/stderr plus crypto/rand as the randomness source.
type WasiConfig struct {
	Args    []string
	Environ []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// RandSource is read by random_get; defaults to crypto/rand.Reader.
	RandSource io.Reader
}

// WithWasiConfig returns a context carrying cfg, readable by the host
// functions in Functions via config(ctx).
func WithWasiConfig(ctx context.Context, cfg *WasiConfig) context.Context {
	return context.WithValue(ctx, wasiConfigKey{}, cfg)
}

// config returns the WasiConfig stashed in ctx, or a set of OS defaults
// when the embedder didn't supply one (so a guest can still run standalone
// against the process's own stdio).
func config(ctx context.Context) *WasiConfig {
	if cfg, ok := ctx.Value(wasiConfigKey{}).(*WasiConfig); ok && cfg != nil {
		return cfg
	}
	return &WasiConfig{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

func (c *WasiConfig) stdin() io.Reader {
	if c.Stdin != nil {
		return c.Stdin
	}
	return os.Stdin
}

func (c *WasiConfig) stdout() io.Writer {
	if c.Stdout != nil {
		return c.Stdout
	}
	return os.Stdout
}

func (c *WasiConfig) stderr() io.Writer {
	if c.Stderr != nil {
		return c.Stderr
	}
	return os.Stderr
}
