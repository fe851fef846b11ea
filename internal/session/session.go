// Package session ties one suspension of the debuggee to a stack model, a
// display engine and a command router, and decides which session object a
// suspending thread attaches to.
package session

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dshills/tracepad/internal/command"
	"github.com/dshills/tracepad/internal/config"
	"github.com/dshills/tracepad/internal/eval"
	"github.com/dshills/tracepad/internal/render"
	"github.com/dshills/tracepad/internal/render/highlight"
	"github.com/dshills/tracepad/internal/source"
	"github.com/dshills/tracepad/internal/stack"
	"github.com/dshills/tracepad/internal/trace"
)

// Config wires the collaborators of a Session. Zero-value fields get
// workable defaults: OS-backed source cache, Lua evaluator, stdin/stdout
// input, a no-op logger.
type Config struct {
	// Class identifies the debugger flavor; reuse is scoped per class.
	Class string

	// Options is the behavior configuration snapshot.
	Options config.Options

	// Source supplies file lines to the display engine.
	Source source.Provider

	// Eval runs operator expressions.
	Eval eval.Evaluator

	// Breakpoints is the tracer's breakpoint store; may be nil.
	Breakpoints trace.Breakpoints

	// Input supplies command lines. Nil reads stdin.
	Input command.LineReader

	// Sink receives all output. Nil writes stdout.
	Sink io.Writer

	// Logger receives session lifecycle events. Nil disables logging.
	Logger *zap.Logger

	// ViewportHeight is the detected terminal height for sticky mode.
	ViewportHeight int

	// Resolve maps names to frame-shaped source spans for "source".
	Resolve func(name string) (trace.Frame, error)

	// RunEditor overrides the editor hand-off; nil execs the editor with
	// a "+line" argument.
	RunEditor func(editor, file string, line int) error
}

// Session owns the per-suspension machinery plus the state that survives
// across suspensions when the session is reused: the watch list, sticky
// mode and the recursion guard.
type Session struct {
	id     string
	class  string
	depth  int
	cfg    Config
	log    *zap.Logger
	disp   *render.Engine
	watch  *command.WatchList
	sticky *command.StickyState

	// inDebug holds the frames currently inside a nested session, shared
	// down the recursion chain so a frame cannot re-enter itself.
	inDebug map[trace.Frame]bool

	// entryExpr is evaluated and printed when the next Interact starts;
	// set for nested sessions opened by "debug <expr>".
	entryExpr string

	// lastLine and lastSuppress carry the blank-line repeat memory across
	// suspensions, so a blank line at the next stop repeats the command
	// that resumed the previous one.
	lastLine     string
	lastSuppress bool
}

// New constructs a top-level session.
func New(cfg Config) *Session {
	if cfg.Source == nil {
		cfg.Source = source.NewFileCache(nil)
	}
	if cfg.Eval == nil {
		cfg.Eval = eval.NewLua()
	}
	if cfg.Sink == nil {
		cfg.Sink = os.Stdout
	}
	if cfg.Input == nil {
		cfg.Input = command.NewScannerReader(os.Stdin, cfg.Sink)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.RunEditor == nil {
		cfg.RunEditor = execEditor
	}

	var opts []render.Option
	if cfg.Options.Highlight {
		// Highlighting is injected here so the display engine stays
		// collaborator-agnostic.
		opts = append(opts, render.WithHighlight(defaultHighlight()))
	}
	if cfg.Options.HeadBias > 0 {
		policy := render.DefaultCutoffPolicy()
		policy.HeadBias = cfg.Options.HeadBias
		opts = append(opts, render.WithCutoffPolicy(policy))
	}

	s := &Session{
		id:      uuid.NewString(),
		class:   cfg.Class,
		cfg:     cfg,
		log:     cfg.Logger,
		disp:    render.New(cfg.Source, opts...),
		watch:   command.NewWatchList(),
		sticky:  command.NewStickyState(cfg.Options.StickyByDefault),
		inDebug: make(map[trace.Frame]bool),
	}
	s.log.Debug("session created",
		zap.String("session", s.id),
		zap.String("class", s.class))
	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Class returns the debugger class identity.
func (s *Session) Class() string { return s.class }

// Depth returns the nesting level, 0 for top-level.
func (s *Session) Depth() int { return s.depth }

// Watch returns the persistent watch list.
func (s *Session) Watch() *command.WatchList { return s.watch }

// Interact runs one read-eval loop over a fresh stack built from frame
// and returns the operator's resume decision. It blocks until a terminal
// command.
func (s *Session) Interact(frame trace.Frame, event trace.EventKind, exc *trace.ExceptionInfo) trace.ResumeReason {
	pred := s.predicate()
	model := stack.Build(frame, pred)

	ctx := &command.Context{
		Stack:          model,
		Display:        s.disp,
		Eval:           s.cfg.Eval,
		Breakpoints:    s.cfg.Breakpoints,
		Watch:          s.watch,
		Sticky:         s.sticky,
		Sink:           s.cfg.Sink,
		Depth:          s.depth,
		Event:          event,
		Exception:      exc,
		Options:        s.cfg.Options,
		ViewportHeight: s.cfg.ViewportHeight,
		Recurse:        s.recurse,
		RunEditor:      s.cfg.RunEditor,
		Resolve:        s.cfg.Resolve,
	}
	// A fresh router per suspension resets the escape memory; the repeat
	// memory is seeded from the session so it survives resumes.
	router := command.NewRouter(ctx)
	router.SetHistory(s.lastLine, s.lastSuppress)

	s.printStop(ctx, model, event, exc)
	s.flushWatch(ctx, model)
	if entry := s.entryExpr; entry != "" {
		s.entryExpr = ""
		router.Dispatch(entry)
	}

	reason := router.Loop(s.cfg.Input)
	s.lastLine, s.lastSuppress = router.History()
	s.log.Debug("session resumed",
		zap.String("session", s.id),
		zap.Int("depth", s.depth),
		zap.String("reason", reason.Kind.String()))
	return reason
}

// predicate builds the hidden-frame filter from the options.
func (s *Session) predicate() stack.HidePredicate {
	if !s.cfg.Options.EnableHiddenFrames {
		return stack.ShowAll
	}
	return stack.DefaultPredicate(s.cfg.Options.SkipModules)
}

// printStop writes the stop banner and either the sticky view or the
// executing line.
func (s *Session) printStop(ctx *command.Context, model *stack.Model, event trace.EventKind, exc *trace.ExceptionInfo) {
	switch event {
	case trace.EventCall:
		ctx.Printf("--Call--\n")
	case trace.EventReturn:
		ctx.Printf("--Return--\n")
	case trace.EventException:
		if exc != nil {
			ctx.Printf("!! %s\n", render.FormatValue(exc.Value))
		}
	}

	banner := command.FrameBanner(model.Current())
	if n := model.HiddenCount(); n > 0 && s.cfg.Options.ShowHiddenFramesCount {
		banner += fmt.Sprintf(", %d frames hidden", n)
	}
	ctx.Printf("%s\n", banner)
	ctx.RedrawSource()
}

// flushWatch prints every watch expression whose value changed since the
// previous suspension.
func (s *Session) flushWatch(ctx *command.Context, model *stack.Model) {
	for _, wv := range s.watch.Changed(s.cfg.Eval, model.Current().Frame) {
		ctx.Printf("%s: %s\n", wv.Expr, wv.Value)
	}
}

// recurse opens a nested session on frame, guarding against a frame
// re-entering its own debugger.
func (s *Session) recurse(expr string, frame trace.Frame) error {
	if s.inDebug[frame] {
		return command.ErrRecursionGuard
	}
	s.inDebug[frame] = true
	defer delete(s.inDebug, frame)

	nested := &Session{
		id:      uuid.NewString(),
		class:   s.class,
		depth:   s.depth + 1,
		cfg:     s.cfg,
		log:     s.log,
		disp:    s.disp,
		watch:   command.NewWatchList(),
		sticky:  command.NewStickyState(false),
		inDebug: s.inDebug,
	}
	nested.entryExpr = expr
	nested.Interact(frame, trace.EventCall, nil)
	return nil
}

// Interrupt translates an external interrupt signal into a resume reason
// per the configured opt-in. Nil means the signal should keep its
// platform default behavior.
func (s *Session) Interrupt() *trace.ResumeReason {
	switch s.cfg.Options.InterruptResume {
	case "quit":
		return &trace.ResumeReason{Kind: trace.ResumeQuit}
	case "continue":
		return &trace.ResumeReason{Kind: trace.ResumeContinue}
	default:
		return nil
	}
}

// defaultHighlight adapts the stock highlighter to the display engine's
// line hook.
func defaultHighlight() render.Highlight {
	h := highlight.Default()
	return h.Line
}

// execEditor is the default editor hand-off: run the editor attached to
// the terminal, positioned at line.
func execEditor(editor, file string, line int) error {
	cmd := exec.Command(editor, fmt.Sprintf("+%d", line), file)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
