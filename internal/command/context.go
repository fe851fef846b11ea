package command

import (
	"fmt"
	"io"

	"github.com/dshills/tracepad/internal/config"
	"github.com/dshills/tracepad/internal/eval"
	"github.com/dshills/tracepad/internal/render"
	"github.com/dshills/tracepad/internal/stack"
	"github.com/dshills/tracepad/internal/trace"
)

// DefaultViewportHeight is used when neither the options nor the wiring
// supply a terminal height.
const DefaultViewportHeight = 25

// StickyState tracks whether the session is in sticky mode plus the
// operator-pinned line ranges, kept per frame so each frame remembers its
// own restriction across navigation.
type StickyState struct {
	On     bool
	ranges map[trace.Frame][2]int
}

// NewStickyState creates sticky state, optionally starting enabled.
func NewStickyState(on bool) *StickyState {
	return &StickyState{On: on}
}

// SetRange pins frame's sticky redraw to [first, last].
func (s *StickyState) SetRange(frame trace.Frame, first, last int) {
	if s.ranges == nil {
		s.ranges = make(map[trace.Frame][2]int)
	}
	s.ranges[frame] = [2]int{first, last}
}

// Range returns frame's pinned range, if any.
func (s *StickyState) Range(frame trace.Frame) (first, last int, ok bool) {
	r, ok := s.ranges[frame]
	return r[0], r[1], ok
}

// ClearRanges drops every pinned range.
func (s *StickyState) ClearRanges() {
	s.ranges = nil
}

// Context carries everything a command handler may touch. The session
// wires one per suspension; handlers never reach outside it.
type Context struct {
	// Stack is the navigable frame model for the current suspension.
	Stack *stack.Model

	// Display renders source windows.
	Display *render.Engine

	// Eval runs expressions in the current frame's namespace.
	Eval eval.Evaluator

	// Breakpoints is the tracer's breakpoint store; may be nil.
	Breakpoints trace.Breakpoints

	// Watch is the persistent display-expression list.
	Watch *WatchList

	// Sticky is the sticky-mode toggle and pinned range.
	Sticky *StickyState

	// Sink receives all command output.
	Sink io.Writer

	// Depth is the session nesting level, 0 for top-level.
	Depth int

	// Event is the suspension event kind.
	Event trace.EventKind

	// Exception is set when Event is EventException.
	Exception *trace.ExceptionInfo

	// Options is the session configuration snapshot.
	Options config.Options

	// ViewportHeight is the detected terminal height; 0 falls back to
	// Options.ViewportHeight, then DefaultViewportHeight.
	ViewportHeight int

	// ReadLine reads one input line; the router installs it for the
	// duration of its loop so multi-line commands can consume input.
	ReadLine func(prompt string) (string, error)

	// Recurse opens a nested session over frame, evaluating expr inside
	// it. Returns ErrRecursionGuard when frame is already being debugged.
	Recurse func(expr string, frame trace.Frame) error

	// RunEditor hands off to an external editor; may be nil.
	RunEditor func(editor, file string, line int) error

	// Resolve maps a name to a frame-shaped handle describing that
	// object's source span, for "source <name>". May be nil.
	Resolve func(name string) (trace.Frame, error)

	// Commands is the owning router's handler table, installed by
	// NewRouter so "help" can render it.
	Commands *Registry
}

// Printf writes formatted output to the sink.
func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Sink, format, args...)
}

// Viewport returns the usable sticky viewport height.
func (c *Context) Viewport() int {
	if c.ViewportHeight > 0 {
		return c.ViewportHeight
	}
	if c.Options.ViewportHeight > 0 {
		return c.Options.ViewportHeight
	}
	return DefaultViewportHeight
}

// PrintLocation writes the current frame banner, then either redraws the
// sticky view or echoes the executing source line.
func (c *Context) PrintLocation() {
	v := c.Stack.Current()
	c.Printf("%s\n", FrameBanner(v))
	c.RedrawSource()
}

// RedrawSource renders the sticky view when sticky mode is on, otherwise
// the single executing line.
func (c *Context) RedrawSource() {
	v := c.Stack.Current()
	if c.Sticky != nil && c.Sticky.On {
		out, err := c.renderSticky(v.Frame)
		if err != nil {
			c.Printf("*** %v\n", err)
			return
		}
		c.Printf("%s\n", out)
		return
	}
	out, err := c.Display.ListAround(v.Frame, v.Frame.Line(), 1)
	if err != nil {
		c.Printf("*** %v\n", err)
		return
	}
	c.Printf("%s\n", out)
}

func (c *Context) renderSticky(frame trace.Frame) (string, error) {
	if first, last, ok := c.Sticky.Range(frame); ok {
		return c.Display.StickyRange(frame, first, last)
	}
	if c.Exception != nil && c.Exception.CallerLine > 0 {
		return c.Display.StickyException(frame, c.Viewport(), c.Exception.CallerLine)
	}
	return c.Display.Sticky(frame, c.Viewport())
}

// FrameBanner formats one frame as "[idx] > file(line)fn()".
func FrameBanner(v stack.View) string {
	f := v.Frame
	return fmt.Sprintf("[%d] > %s(%d)%s()", v.Index, f.File(), f.Line(), f.FuncName())
}
