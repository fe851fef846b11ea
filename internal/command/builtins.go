package command

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/dshills/tracepad/internal/render"
	"github.com/dshills/tracepad/internal/trace"
)

// listWindow is the line count shown by a plain "list".
const listWindow = 11

// registerBuiltins installs the standard command table.
func registerBuiltins(reg *Registry) {
	for _, cmd := range []*Command{
		{Name: "up", Help: "up [n]: move n frames toward the oldest frame", Run: cmdUp},
		{Name: "down", Help: "down [n]: move n frames toward the newest frame", Run: cmdDown},
		{Name: "frame", Aliases: []string{"f"}, Help: "frame n: jump to frame n; negative counts from the newest", Run: cmdFrame},
		{Name: "top", Help: "top: jump to the oldest frame", Run: cmdTop},
		{Name: "bottom", Help: "bottom: jump to the newest frame", Run: cmdBottom},
		{Name: "where", Aliases: []string{"w", "bt"}, Help: "where: print the visible frame chain", Run: cmdWhere},
		{Name: "list", Aliases: []string{"l"}, Help: "list [first [last]]: show source around a line, or a line range", SuppressRepeat: true, Run: cmdList},
		{Name: "longlist", Aliases: []string{"ll"}, Help: "longlist: show the whole current function", Run: cmdLonglist},
		{Name: "sticky", Help: "sticky [first last]: toggle sticky mode, optionally pinning a line range", Run: cmdSticky},
		{Name: "source", Help: "source <name>: show the source of a named object", Run: cmdSource},
		{Name: "display", Help: "display [expr]: watch expr, printing it whenever its value changes", Run: cmdDisplay},
		{Name: "undisplay", Help: "undisplay <expr>: stop watching expr", Run: cmdUndisplay},
		{Name: "break", Aliases: []string{"b"}, Help: "break [[file:]line[, cond]]: set or list breakpoints", Run: cmdBreak},
		{Name: "clear", Help: "clear <id>: remove a breakpoint", Run: cmdClear},
		{Name: "commands", Help: "commands <id>: attach command lines to a breakpoint, ended by \"end\"", Run: cmdCommands},
		{Name: "continue", Aliases: []string{"c", "cont"}, Help: "continue [line]: resume, optionally until a temporary breakpoint at line", Run: cmdContinue},
		{Name: "until", Help: "until [line]: resume until a line greater than the current one", Run: cmdUntil},
		{Name: "step", Aliases: []string{"s"}, Help: "step: execute one line, stepping into calls", Run: resume(trace.ResumeStep)},
		{Name: "next", Aliases: []string{"n"}, Help: "next: execute one line, stepping over calls", Run: resume(trace.ResumeNext)},
		{Name: "return", Aliases: []string{"r"}, Help: "return: run until the current function returns", Run: resume(trace.ResumeReturn)},
		{Name: "quit", Aliases: []string{"q", "exit"}, Help: "quit: abandon the debuggee", Run: resume(trace.ResumeQuit)},
		{Name: "debug", Help: "debug <expr>: evaluate expr inside a nested session", Run: cmdDebug},
		{Name: "edit", Help: "edit [file[:line]]: open an editor at the given or current location", Run: cmdEdit},
		{Name: "hf_hide", Help: "hf_hide [n]: hide frame n (default current)", Run: cmdHFHide},
		{Name: "hf_unhide", Help: "hf_unhide: unhide every frame", Run: cmdHFUnhide},
		{Name: "hf_list", Help: "hf_list: print the hidden frames", Run: cmdHFList},
		{Name: "p", Help: "p <expr>: evaluate expr and print its value", Run: cmdPrint},
		{Name: "args", Aliases: []string{"a"}, Help: "args: print the current frame's locals", Run: cmdArgs},
		{Name: "help", Aliases: []string{"h"}, Help: "help [command]: list commands or describe one", Run: cmdHelp},
	} {
		reg.Register(cmd)
	}
}

// resume builds a handler that exits the loop with a fixed resume kind.
func resume(kind trace.ResumeKind) HandlerFunc {
	return func(ctx *Context, arg string) (*trace.ResumeReason, error) {
		return &trace.ResumeReason{Kind: kind}, nil
	}
}

func optionalCount(arg string) (int, error) {
	if arg == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("expected a positive count, got %q", arg)
	}
	return n, nil
}

func cmdUp(ctx *Context, arg string) (*trace.ResumeReason, error) {
	n, err := optionalCount(arg)
	if err != nil {
		return nil, err
	}
	if err := ctx.Stack.Move(-n); err != nil {
		return nil, err
	}
	ctx.PrintLocation()
	return nil, nil
}

func cmdDown(ctx *Context, arg string) (*trace.ResumeReason, error) {
	n, err := optionalCount(arg)
	if err != nil {
		return nil, err
	}
	if err := ctx.Stack.Move(n); err != nil {
		return nil, err
	}
	ctx.PrintLocation()
	return nil, nil
}

func cmdFrame(ctx *Context, arg string) (*trace.ResumeReason, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return nil, fmt.Errorf("expected a frame index, got %q", arg)
	}
	if err := ctx.Stack.Jump(n); err != nil {
		return nil, err
	}
	ctx.PrintLocation()
	return nil, nil
}

func cmdTop(ctx *Context, arg string) (*trace.ResumeReason, error) {
	if err := ctx.Stack.Top(); err != nil {
		return nil, err
	}
	ctx.PrintLocation()
	return nil, nil
}

func cmdBottom(ctx *Context, arg string) (*trace.ResumeReason, error) {
	if err := ctx.Stack.Bottom(); err != nil {
		return nil, err
	}
	ctx.PrintLocation()
	return nil, nil
}

func cmdWhere(ctx *Context, arg string) (*trace.ResumeReason, error) {
	cursor := ctx.Stack.Cursor()
	for _, v := range ctx.Stack.Frames() {
		if v.Hidden {
			continue
		}
		marker := "  "
		if v.Index == cursor {
			marker = "> "
		}
		ctx.Printf("%s%s\n", marker, FrameBanner(v))
	}
	if n := ctx.Stack.HiddenCount(); n > 0 && ctx.Options.ShowHiddenFramesCount {
		ctx.Printf("   %d frames hidden (try hf_list)\n", n)
	}
	return nil, nil
}

func cmdList(ctx *Context, arg string) (*trace.ResumeReason, error) {
	frame := ctx.Stack.Current().Frame

	fields := strings.Fields(arg)
	if len(fields) == 2 {
		first, err1 := strconv.Atoi(fields[0])
		last, err2 := strconv.Atoi(fields[1])
		if err1 != nil || err2 != nil || first < 1 || last < first {
			return nil, fmt.Errorf("invalid line range %q", arg)
		}
		out, err := ctx.Display.StickyRange(frame, first, last)
		if err != nil {
			return nil, err
		}
		ctx.Printf("%s\n", out)
		return nil, nil
	}

	center := frame.Line()
	if arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("expected a line number, got %q", arg)
		}
		center = n
	}
	out, err := ctx.Display.ListAround(frame, center, listWindow)
	if err != nil {
		return nil, err
	}
	ctx.Printf("%s\n", out)
	return nil, nil
}

func cmdLonglist(ctx *Context, arg string) (*trace.ResumeReason, error) {
	out, err := ctx.Display.ListFunction(ctx.Stack.Current().Frame)
	if err != nil {
		return nil, err
	}
	ctx.Printf("%s\n", out)
	return nil, nil
}

func cmdSticky(ctx *Context, arg string) (*trace.ResumeReason, error) {
	if arg != "" {
		fields := strings.Fields(arg)
		if len(fields) != 2 {
			return nil, fmt.Errorf("expected \"sticky first last\", got %q", arg)
		}
		first, err1 := strconv.Atoi(fields[0])
		last, err2 := strconv.Atoi(fields[1])
		if err1 != nil || err2 != nil || first < 1 || last < first {
			return nil, fmt.Errorf("invalid line range %q", arg)
		}
		ctx.Sticky.On = true
		ctx.Sticky.SetRange(ctx.Stack.Current().Frame, first, last)
		ctx.RedrawSource()
		return nil, nil
	}

	ctx.Sticky.On = !ctx.Sticky.On
	ctx.Sticky.ClearRanges()
	if ctx.Sticky.On {
		ctx.RedrawSource()
	}
	return nil, nil
}

func cmdSource(ctx *Context, arg string) (*trace.ResumeReason, error) {
	if arg == "" {
		return nil, errors.New("expected an object name")
	}
	frame, err := resolveSource(ctx, arg)
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", arg, err)
	}
	out, err := ctx.Display.ListFunction(frame)
	if err != nil {
		return nil, err
	}
	ctx.Printf("%s\n", out)
	return nil, nil
}

// resolveSource maps a "source" argument to a frame-shaped span: the
// injected resolver when wired, otherwise a file[:line] spec spanning the
// whole file.
func resolveSource(ctx *Context, arg string) (trace.Frame, error) {
	if ctx.Resolve != nil {
		return ctx.Resolve(arg)
	}

	file, line := arg, 0
	if i := strings.LastIndex(arg, ":"); i >= 0 {
		if n, err := strconv.Atoi(arg[i+1:]); err == nil {
			file, line = arg[:i], n
		}
	}
	return &trace.StaticFrame{
		FileName:  file,
		LineNo:    line,
		Function:  file,
		SpanFirst: 1,
		SpanLast:  math.MaxInt32,
	}, nil
}

func cmdDisplay(ctx *Context, arg string) (*trace.ResumeReason, error) {
	if arg == "" {
		for _, expr := range ctx.Watch.Exprs() {
			ctx.Printf("display %s\n", expr)
		}
		return nil, nil
	}
	ctx.Watch.Add(arg)
	for _, wv := range ctx.Watch.Changed(ctx.Eval, ctx.Stack.Current().Frame) {
		ctx.Printf("%s: %s\n", wv.Expr, wv.Value)
	}
	return nil, nil
}

func cmdUndisplay(ctx *Context, arg string) (*trace.ResumeReason, error) {
	if arg == "" {
		return nil, errors.New("expected an expression")
	}
	if !ctx.Watch.Remove(arg) {
		return nil, fmt.Errorf("not watching %q", arg)
	}
	return nil, nil
}

func cmdBreak(ctx *Context, arg string) (*trace.ResumeReason, error) {
	if ctx.Breakpoints == nil {
		return nil, errors.New("no breakpoint store wired")
	}
	if arg == "" {
		for _, bp := range ctx.Breakpoints.All() {
			ctx.Printf("%s\n", bp)
		}
		return nil, nil
	}

	spec := arg
	condition := ""
	if i := strings.Index(arg, ","); i >= 0 {
		spec = strings.TrimSpace(arg[:i])
		condition = strings.TrimSpace(arg[i+1:])
	}

	file := ctx.Stack.Current().Frame.File()
	lineText := spec
	if i := strings.LastIndex(spec, ":"); i >= 0 {
		file = spec[:i]
		lineText = spec[i+1:]
	}
	line, err := strconv.Atoi(lineText)
	if err != nil || line < 1 {
		return nil, fmt.Errorf("expected [file:]line, got %q", spec)
	}

	bp, err := ctx.Breakpoints.Set(file, line, condition)
	if err != nil {
		return nil, err
	}
	ctx.Printf("Breakpoint %d at %s:%d\n", bp.ID, bp.File, bp.Line)
	return nil, nil
}

func cmdClear(ctx *Context, arg string) (*trace.ResumeReason, error) {
	if ctx.Breakpoints == nil {
		return nil, errors.New("no breakpoint store wired")
	}
	id, err := strconv.Atoi(arg)
	if err != nil {
		return nil, fmt.Errorf("expected a breakpoint id, got %q", arg)
	}
	return nil, ctx.Breakpoints.Clear(id)
}

func cmdCommands(ctx *Context, arg string) (*trace.ResumeReason, error) {
	if ctx.Breakpoints == nil {
		return nil, errors.New("no breakpoint store wired")
	}
	id, err := strconv.Atoi(arg)
	if err != nil {
		return nil, fmt.Errorf("expected a breakpoint id, got %q", arg)
	}
	if ctx.ReadLine == nil {
		return nil, errors.New("commands needs an interactive input")
	}

	var lines []string
	for {
		line, err := ctx.ReadLine("(com) ")
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(line) == "end" {
			break
		}
		lines = append(lines, line)
	}
	return nil, ctx.Breakpoints.SetCommands(id, lines)
}

func cmdContinue(ctx *Context, arg string) (*trace.ResumeReason, error) {
	reason := &trace.ResumeReason{Kind: trace.ResumeContinue}
	if arg != "" {
		line, err := strconv.Atoi(arg)
		if err != nil || line < 1 {
			return nil, fmt.Errorf("expected a line number, got %q", arg)
		}
		reason.Line = line
	}
	return reason, nil
}

func cmdUntil(ctx *Context, arg string) (*trace.ResumeReason, error) {
	line := ctx.Stack.Current().Frame.Line() + 1
	if arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("expected a line number, got %q", arg)
		}
		line = n
	}
	return &trace.ResumeReason{Kind: trace.ResumeContinue, Line: line}, nil
}

func cmdDebug(ctx *Context, arg string) (*trace.ResumeReason, error) {
	if arg == "" {
		return nil, errors.New("expected an expression")
	}
	if ctx.Recurse == nil {
		return nil, ErrNoRecursion
	}

	frame := ctx.Stack.Current().Frame
	err := ctx.Recurse(arg, frame)
	if errors.Is(err, ErrRecursionGuard) {
		ctx.Printf("*** %s; evaluating without recursion\n", err)
		v, evalErr := ctx.Eval.Eval(arg, frame)
		if evalErr != nil {
			return nil, evalErr
		}
		if v != nil {
			ctx.Printf("%s\n", render.FormatValue(v))
		}
		return nil, nil
	}
	return nil, err
}

func cmdEdit(ctx *Context, arg string) (*trace.ResumeReason, error) {
	frame := ctx.Stack.Current().Frame
	file, line := frame.File(), frame.Line()
	if arg != "" {
		file, line = arg, 1
		if i := strings.LastIndex(arg, ":"); i >= 0 {
			if n, err := strconv.Atoi(arg[i+1:]); err == nil {
				file, line = arg[:i], n
			}
		}
	}

	editor := ctx.Options.Editor
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		return nil, ErrNoEditor
	}
	if ctx.RunEditor == nil {
		return nil, errors.New("editor hand-off is not wired")
	}
	return nil, ctx.RunEditor(editor, file, line)
}

func cmdHFHide(ctx *Context, arg string) (*trace.ResumeReason, error) {
	index := ctx.Stack.Cursor()
	if arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("expected a frame index, got %q", arg)
		}
		index = n
	}
	if err := ctx.Stack.Hide(index); err != nil {
		return nil, err
	}
	ctx.PrintLocation()
	return nil, nil
}

func cmdHFUnhide(ctx *Context, arg string) (*trace.ResumeReason, error) {
	ctx.Stack.UnhideAll()
	return nil, nil
}

func cmdHFList(ctx *Context, arg string) (*trace.ResumeReason, error) {
	any := false
	for _, v := range ctx.Stack.Frames() {
		if !v.Hidden {
			continue
		}
		any = true
		ctx.Printf("  %s\n", FrameBanner(v))
	}
	if !any {
		ctx.Printf("no frames hidden\n")
	}
	return nil, nil
}

func cmdPrint(ctx *Context, arg string) (*trace.ResumeReason, error) {
	if arg == "" {
		return nil, errors.New("expected an expression")
	}
	v, err := ctx.Eval.Eval(arg, ctx.Stack.Current().Frame)
	if err != nil {
		return nil, err
	}
	ctx.Printf("%s\n", render.FormatValue(v))
	return nil, nil
}

func cmdArgs(ctx *Context, arg string) (*trace.ResumeReason, error) {
	locals := ctx.Stack.Current().Frame.Locals()
	names := make([]string, 0, len(locals))
	for name := range locals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ctx.Printf("%s = %s\n", name, render.FormatValue(locals[name]))
	}
	return nil, nil
}

func cmdHelp(ctx *Context, arg string) (*trace.ResumeReason, error) {
	reg := ctx.Commands
	if arg != "" {
		cmd := reg.Get(arg)
		if cmd == nil {
			return nil, fmt.Errorf("no command %q", arg)
		}
		ctx.Printf("%s\n", cmd.Help)
		return nil, nil
	}
	for _, name := range reg.Names() {
		ctx.Printf("%s\n", reg.Get(name).Help)
	}
	return nil, nil
}
