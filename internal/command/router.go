// Package command parses operator input lines and dispatches them to a
// handler table. The router owns the read-eval loop of one session: it
// runs until a terminal command produces a resume reason, and nothing
// thrown by a handler escapes its dispatch boundary.
package command

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/dshills/tracepad/internal/eval"
	"github.com/dshills/tracepad/internal/render"
	"github.com/dshills/tracepad/internal/trace"
)

// HandlerFunc runs one command. A non-nil reason terminates the loop.
type HandlerFunc func(ctx *Context, arg string) (*trace.ResumeReason, error)

// Command is one entry in the handler table.
type Command struct {
	// Name is the primary command word.
	Name string

	// Aliases are additional words dispatching to the same handler.
	Aliases []string

	// Help is the one-line help text.
	Help string

	// SuppressRepeat stops a blank follow-up line from re-running this
	// command.
	SuppressRepeat bool

	// Run executes the command.
	Run HandlerFunc
}

// Registry maps command words to handlers.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]*Command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]*Command)}
}

// Register adds cmd under its name and aliases, replacing any previous
// entries for those words.
func (r *Registry) Register(cmd *Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.commands[alias] = cmd
	}
}

// Get returns the command registered under word, or nil.
func (r *Registry) Get(word string) *Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.commands[word]
}

// Has reports whether word is a registered command or alias.
func (r *Registry) Has(word string) bool {
	return r.Get(word) != nil
}

// Names returns all primary command names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var names []string
	for _, cmd := range r.commands {
		if !seen[cmd.Name] {
			seen[cmd.Name] = true
			names = append(names, cmd.Name)
		}
	}
	sort.Strings(names)
	return names
}

// Complete returns the registered words starting with prefix, sorted. An
// empty prefix returns every word including aliases.
func (r *Registry) Complete(prefix string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var words []string
	for word := range r.commands {
		if strings.HasPrefix(word, prefix) {
			words = append(words, word)
		}
	}
	sort.Strings(words)
	return words
}

// Prompt returns the prompt text for a nesting depth: "# " at depth 0,
// wrapped in one more parenthesis layer per level.
func Prompt(depth int) string {
	p := "#"
	for i := 0; i < depth; i++ {
		p = "(" + p + ")"
	}
	return p + " "
}

// LineReader supplies one input line per call. io.EOF ends the loop as if
// the operator had quit.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// Router runs the read-eval loop for one session over a handler table.
type Router struct {
	reg *Registry
	ctx *Context

	lastLine     string
	lastSuppress bool
	lastEscape   string
}

// NewRouter builds a router over ctx with the builtin command table.
func NewRouter(ctx *Context) *Router {
	reg := NewRegistry()
	registerBuiltins(reg)
	ctx.Commands = reg
	return &Router{reg: reg, ctx: ctx}
}

// Registry exposes the handler table for registration of extra commands.
func (r *Router) Registry() *Registry { return r.reg }

// LastEscape returns the raw-eval prefix of the most recent line, "" when
// the line used none.
func (r *Router) LastEscape() string { return r.lastEscape }

// History returns the blank-line repeat state: the last recorded line and
// whether it suppresses repeating.
func (r *Router) History() (line string, suppress bool) {
	return r.lastLine, r.lastSuppress
}

// SetHistory seeds the blank-line repeat state. Sessions carry it across
// suspensions so a blank line at the next stop repeats the command that
// resumed the previous one. The escape memory is not seeded; it starts
// empty on every router.
func (r *Router) SetHistory(line string, suppress bool) {
	r.lastLine = line
	r.lastSuppress = suppress
}

// Loop reads and dispatches lines until a terminal command. io.EOF from
// the reader resumes as quit. Every other failure mode is printed and the
// loop continues.
func (r *Router) Loop(rd LineReader) trace.ResumeReason {
	prompt := Prompt(r.ctx.Depth)
	r.ctx.ReadLine = rd.ReadLine
	defer func() { r.ctx.ReadLine = nil }()

	for {
		line, err := rd.ReadLine(prompt)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				r.ctx.Printf("*** %s\n", safeErrorText(err))
			}
			return trace.ResumeReason{Kind: trace.ResumeQuit}
		}
		if reason := r.Dispatch(line); reason.Terminal() {
			return *reason
		}
	}
}

// Dispatch parses and runs one line. A nil result keeps the loop running.
// Handler panics and errors are reported to the sink, never propagated.
func (r *Router) Dispatch(line string) (reason *trace.ResumeReason) {
	defer func() {
		if p := recover(); p != nil {
			r.ctx.Printf("*** internal error: %s\n", render.FormatValue(p))
			reason = nil
		}
	}()

	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		if r.lastLine == "" || r.lastSuppress {
			return nil
		}
		trimmed = r.lastLine
	}

	in := parseLine(trimmed, r.reg.Has)
	r.lastEscape = in.Escape

	if in.Name == "" {
		r.record(trimmed, false)
		r.evalAndPrint(in.Expr)
		return nil
	}

	cmd := r.reg.Get(in.Name)
	r.record(trimmed, cmd.SuppressRepeat)
	reason, err := cmd.Run(r.ctx, in.Arg)
	if err != nil {
		r.reportError(err)
		return nil
	}
	return reason
}

// record stores the line for blank-line repeat.
func (r *Router) record(line string, suppress bool) {
	r.lastLine = line
	r.lastSuppress = suppress
}

// evalAndPrint is the fall-through for unrecognized input: evaluate in
// the current frame and print any result.
func (r *Router) evalAndPrint(expr string) {
	if expr == "" {
		return
	}
	v, err := r.ctx.Eval.Eval(expr, r.ctx.Stack.Current().Frame)
	if err != nil {
		r.reportError(err)
		return
	}
	if v != nil {
		r.ctx.Printf("%s\n", render.FormatValue(v))
	}
}

// reportError prints one diagnostic line, plus a bounded traceback for
// evaluation failures when configured.
func (r *Router) reportError(err error) {
	r.ctx.Printf("*** %s\n", safeErrorText(err))

	var evalErr *eval.Error
	if !errors.As(err, &evalErr) || !r.ctx.Options.ShowTracebackOnError {
		return
	}
	tb := evalErr.Traceback
	if limit := r.ctx.Options.TracebackLimit; limit > 0 && len(tb) > limit {
		tb = tb[:limit]
	}
	for _, frame := range tb {
		r.ctx.Printf("  %s\n", frame)
	}
}

// safeErrorText formats err, degrading to the fixed unprintable marker if
// the error's own formatting panics.
func safeErrorText(err error) (s string) {
	defer func() {
		if recover() != nil {
			s = render.Unprintable
		}
	}()
	return err.Error()
}

// ScannerReader reads lines from r, echoing the prompt to w first. It is
// the stdin-backed LineReader used by interactive sessions.
type ScannerReader struct {
	scanner *bufio.Scanner
	w       io.Writer
}

// NewScannerReader wraps r and prompt sink w.
func NewScannerReader(r io.Reader, w io.Writer) *ScannerReader {
	return &ScannerReader{scanner: bufio.NewScanner(r), w: w}
}

// ReadLine prints prompt and returns the next line without its newline.
func (s *ScannerReader) ReadLine(prompt string) (string, error) {
	fmt.Fprint(s.w, prompt)
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.scanner.Text(), nil
}
