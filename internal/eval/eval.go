// Package eval runs operator-typed expressions in the namespace of a
// suspended frame. The command router falls through to it for any input
// that is not a registered command.
package eval

import (
	"fmt"

	"github.com/dshills/tracepad/internal/trace"
)

// Evaluator runs an expression against a frame's local namespace.
// Implementations must never panic; failures come back as *Error.
type Evaluator interface {
	// Eval evaluates expr. A nil result with a nil error means the input
	// was a statement executed for its side effects.
	Eval(expr string, frame trace.Frame) (any, error)
}

// Error is a structured expression evaluation failure.
type Error struct {
	// Expr is the offending input.
	Expr string

	// Err is the underlying failure.
	Err error

	// Traceback holds evaluation stack lines, innermost first. The
	// printer truncates it to the configured limit.
	Traceback []string
}

// Error returns the evaluation diagnostic.
func (e *Error) Error() string {
	return fmt.Sprintf("eval %q: %v", e.Expr, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }
