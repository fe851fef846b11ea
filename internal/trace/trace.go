package trace

// TracebackHideLocal is the conventional local variable name that marks a
// frame as hidden from navigation and display.
const TracebackHideLocal = "__tracebackhide__"

// EventKind identifies why the tracer suspended execution.
type EventKind int

const (
	// EventCall indicates a function call is about to execute.
	EventCall EventKind = iota
	// EventLine indicates a new source line is about to execute.
	EventLine
	// EventReturn indicates the current function is about to return.
	EventReturn
	// EventException indicates an exception is propagating through the frame.
	EventException
)

// String returns the event name.
func (k EventKind) String() string {
	switch k {
	case EventCall:
		return "call"
	case EventLine:
		return "line"
	case EventReturn:
		return "return"
	case EventException:
		return "exception"
	default:
		return "unknown"
	}
}

// Frame is a borrowed handle to one activation record supplied by the
// tracer. Implementations expose the code location, the local namespace and
// the link to the calling frame. The session engine never mutates frame
// identity; SetLocal is the only state mutation it performs.
type Frame interface {
	// Caller returns the calling frame, or nil for the root frame.
	Caller() Frame

	// File returns the source file path for the executing code.
	File() string

	// Line returns the currently executing line (1-based).
	Line() int

	// FuncName returns the name of the executing function.
	FuncName() string

	// FuncSpan returns the first and last source line of the syntactic
	// unit (function or method) the frame executes, excluding decorators.
	FuncSpan() (first, last int)

	// Locals returns the frame's local variables.
	Locals() map[string]any

	// SetLocal assigns a local variable in the frame's namespace.
	SetLocal(name string, value any) error

	// HideMarked reports whether the tracer explicitly marked this frame
	// as hidden.
	HideMarked() bool

	// Module returns the module/package the frame's code belongs to.
	Module() string

	// LibraryBoundary reports whether the frame sits on a
	// library/framework boundary.
	LibraryBoundary() bool
}

// ExceptionInfo describes an in-flight exception attached to a suspension.
// CallerLine, when non-zero, is the line in an intermediate frame that the
// display marks with ">>".
type ExceptionInfo struct {
	// Value is the exception's display value.
	Value string

	// CallerLine is the raising line in the frame below the current one.
	CallerLine int
}
