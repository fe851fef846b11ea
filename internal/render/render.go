// Package render turns the stack model's current neighborhood into
// gutter-prefixed source text. Three modes share one retrieval path: a
// one-shot window, a whole-function listing, and the persistent sticky
// view with viewport cutoff.
package render

import (
	"fmt"
	"strings"

	"github.com/dshills/tracepad/internal/source"
	"github.com/dshills/tracepad/internal/trace"
)

// EOFMarker is the explicit end-of-file line returned for out-of-range
// window requests.
const EOFMarker = "[EOF]"

// ellipsisText marks an elided range in sticky output.
const ellipsisText = "..."

// Highlight transforms one source line into its colorized form. The engine
// treats lines as opaque strings before and after.
type Highlight func(string) string

// Line is one rendered row before gutter formatting.
type Line struct {
	// Number is the 1-based source line, 0 for marker rows.
	Number int

	// Text is the raw source text.
	Text string

	// Current flags the executing line ("->").
	Current bool

	// CallerMark flags the intermediate raising line shown during
	// exception display (">>").
	CallerMark bool

	// Ellipsis marks an elided-range row.
	Ellipsis bool
}

// Engine renders source windows for frames.
type Engine struct {
	src       source.Provider
	highlight Highlight
	policy    CutoffPolicy
}

// Option configures an Engine.
type Option func(*Engine)

// WithHighlight injects the line highlighter.
func WithHighlight(h Highlight) Option {
	return func(e *Engine) { e.highlight = h }
}

// WithCutoffPolicy overrides the sticky cutoff policy.
func WithCutoffPolicy(p CutoffPolicy) Option {
	return func(e *Engine) { e.policy = p }
}

// New creates a display engine over the given source provider.
func New(src source.Provider, opts ...Option) *Engine {
	e := &Engine{
		src:    src,
		policy: DefaultCutoffPolicy(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// fileLines drops the cached content for the frame's file and re-fetches
// it. Every render call goes through here: on-disk edits are reflected on
// the next invocation, deliberately.
func (e *Engine) fileLines(file string) ([]string, error) {
	e.src.Invalidate(file)
	lines, err := e.src.Lines(file)
	if err != nil {
		return nil, &Error{Path: file, Err: err}
	}
	return lines, nil
}

// ListAround renders a window of source centered on center. Requests past
// the end of the file yield the EOF marker line instead of an error.
func (e *Engine) ListAround(frame trace.Frame, center, window int) (string, error) {
	lines, err := e.fileLines(frame.File())
	if err != nil {
		return "", err
	}
	if window < 1 {
		window = 1
	}

	first := center - window/2
	if first < 1 {
		first = 1
	}

	var rows []Line
	for num := first; num < first+window; num++ {
		if num > len(lines) {
			rows = append(rows, Line{Text: EOFMarker, Ellipsis: true})
			break
		}
		rows = append(rows, Line{
			Number:  num,
			Text:    lines[num-1],
			Current: num == frame.Line(),
		})
	}
	return e.format(rows), nil
}

// ListFunction renders the whole syntactic unit the frame executes,
// including leading decorators, with the executing line flagged.
func (e *Engine) ListFunction(frame trace.Frame) (string, error) {
	rows, _, err := e.functionRows(frame, 0)
	if err != nil {
		return "", err
	}
	return e.format(rows), nil
}

// Sticky renders the frame's function cut down to the viewport. height
// counts source rows; ellipsis markers for elided ranges come on top.
// Rendering twice with unchanged state and size is byte-identical.
func (e *Engine) Sticky(frame trace.Frame, height int) (string, error) {
	rows, decorators, err := e.functionRows(frame, 0)
	if err != nil {
		return "", err
	}
	rows = cutRows(rows, decorators, e.policy, height)
	return e.format(rows), nil
}

// StickyException renders like Sticky but marks callerLine, the
// intermediate line an exception propagated through, with ">>".
func (e *Engine) StickyException(frame trace.Frame, height, callerLine int) (string, error) {
	rows, decorators, err := e.functionRows(frame, callerLine)
	if err != nil {
		return "", err
	}
	rows = cutRows(rows, decorators, e.policy, height)
	return e.format(rows), nil
}

// StickyRange renders only the [first, last] line range of the frame's
// file in sticky form, bypassing the cutoff.
func (e *Engine) StickyRange(frame trace.Frame, first, last int) (string, error) {
	lines, err := e.fileLines(frame.File())
	if err != nil {
		return "", err
	}
	if first < 1 {
		first = 1
	}
	if last > len(lines) {
		last = len(lines)
	}

	var rows []Line
	for num := first; num <= last; num++ {
		rows = append(rows, Line{
			Number:  num,
			Text:    lines[num-1],
			Current: num == frame.Line(),
		})
	}
	return e.format(rows), nil
}

// functionRows builds the unit's rows (decorators first) and returns the
// decorator count. callerLine, when non-zero, receives the ">>" mark.
func (e *Engine) functionRows(frame trace.Frame, callerLine int) ([]Line, int, error) {
	lines, err := e.fileLines(frame.File())
	if err != nil {
		return nil, 0, err
	}

	first, last := frame.FuncSpan()
	if first < 1 {
		first = 1
	}
	if last > len(lines) || last < first {
		last = len(lines)
	}

	// Decorators immediately preceding the definition belong to the unit.
	start := first
	for start > 1 && strings.HasPrefix(strings.TrimSpace(lines[start-2]), "@") {
		start--
	}
	decorators := first - start

	rows := make([]Line, 0, last-start+1)
	for num := start; num <= last; num++ {
		rows = append(rows, Line{
			Number:     num,
			Text:       lines[num-1],
			Current:    num == frame.Line(),
			CallerMark: callerLine != 0 && num == callerLine,
		})
	}
	return rows, decorators, nil
}

// format joins rows with the gutter prefix, passing each source line
// through the highlighter.
func (e *Engine) format(rows []Line) string {
	width := 0
	for _, r := range rows {
		if w := len(fmt.Sprint(r.Number)); r.Number > 0 && w > width {
			width = w
		}
	}

	var b strings.Builder
	for i, r := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		if r.Ellipsis && r.Number == 0 && r.Text == "" {
			b.WriteString(ellipsisText)
			continue
		}
		if r.Number == 0 {
			b.WriteString(r.Text)
			continue
		}

		marker := "  "
		switch {
		case r.Current:
			marker = "->"
		case r.CallerMark:
			marker = ">>"
		}

		text := r.Text
		if e.highlight != nil {
			text = e.highlight(text)
		}
		fmt.Fprintf(&b, "%*d  %s  %s", width, r.Number, marker, text)
	}
	return b.String()
}
