package wasm

import "fmt"

// Linking/instantiation error kinds (spec.md §7). These are returned, never
// panicked: they can legitimately occur given embedder-supplied imports.

type ImportNotFoundError struct {
	Module, Name string
}

func (e *ImportNotFoundError) Error() string {
	return fmt.Sprintf("import %q.%q not found", e.Module, e.Name)
}

type ImportTypeMismatchError struct {
	Module, Name string
	Reason       string
}

func (e *ImportTypeMismatchError) Error() string {
	return fmt.Sprintf("import %q.%q type mismatch: %s", e.Module, e.Name, e.Reason)
}

type ExportFuncNotFoundError struct {
	Name string
}

func (e *ExportFuncNotFoundError) Error() string {
	return fmt.Sprintf("export function %q not found", e.Name)
}

type InstantiationError struct {
	Reason string
}

func (e *InstantiationError) Error() string {
	return fmt.Sprintf("instantiation failed: %s", e.Reason)
}
