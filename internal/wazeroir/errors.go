package wazeroir

import "fmt"

// PreprocessError reports a structural problem in an already-validated
// function body that the preprocessor itself cannot resolve — in practice
// this should never fire against output from a conformant validator, but
// the teacher's own compiler returns an error rather than panicking when it
// finds a shape it doesn't expect, and original_source/src/error.rs's
// ParserError does the same for its one-pass compiler, so this package
// follows suit instead of trusting its input unconditionally.
type PreprocessError struct {
	FuncIndex uint32
	Reason    string
}

func (e *PreprocessError) Error() string {
	return fmt.Sprintf("wazeroir: function %d: %s", e.FuncIndex, e.Reason)
}
