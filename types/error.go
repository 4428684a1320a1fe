package types

import "fmt"

// CompileError is the translator's error type: a short domain message,
// optionally tagged with the function it occurred in. It matches the error
// kinds enumerated in the specification (Custom("...") messages plus
// Unexpected for invariant violations).
type CompileError struct {
	Message  string
	Function string
	// Unexpected marks an internal-invariant violation rather than a
	// recoverable user-facing diagnostic.
	Unexpected bool
}

func (e *CompileError) Error() string {
	if e.Function != "" {
		return fmt.Sprintf("in function %s: %s", e.Function, e.Message)
	}
	return e.Message
}

// Errf builds a CompileError from a format string, the way the rest of the
// codebase reaches for fmt.Errorf.
func Errf(format string, args ...any) error {
	return &CompileError{Message: fmt.Sprintf(format, args...)}
}

// Unexpectedf builds a CompileError flagged as an internal invariant
// violation (a path that validated WebAssembly should never reach).
func Unexpectedf(format string, args ...any) error {
	return &CompileError{Message: fmt.Sprintf(format, args...), Unexpected: true}
}

// WithFunction annotates an error with the function it occurred in. A
// *CompileError is copied with Function set; any other error is replaced by
// a CompileError carrying only its message, so errors.Is/As no longer reach
// the original error.
func WithFunction(err error, fn string) error {
	if err == nil {
		return nil
	}
	if ce, ok := err.(*CompileError); ok {
		cp := *ce
		cp.Function = fn
		return &cp
	}
	return &CompileError{Message: err.Error(), Function: fn}
}
