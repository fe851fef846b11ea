// Package main is the entry point for the tracepad interactive debugger
// shell. It replays a suspension over a source file and hands the operator
// a full session: navigation, source views, watches and breakpoints.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/dshills/tracepad/internal/config"
	"github.com/dshills/tracepad/internal/session"
	"github.com/dshills/tracepad/internal/trace"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	logger, err := newLogger(opts.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if opts.Sticky {
		cfg.StickyByDefault = true
	}

	// Live-reload the rc file; the next suspension picks up the change.
	current := cfg
	if watcher, err := config.NewWatcher(opts.ConfigPath, logger); err == nil {
		watcher.OnReload(func(next config.Options) { current = next })
		defer func() { _ = watcher.Close() }()
	} else {
		logger.Warn("config watch unavailable", zap.Error(err))
	}

	frame, err := demoFrame(opts.File, opts.Line)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	registry := session.NewRegistry(logger)
	key := session.KeyFor(1, "tracepad")
	s := registry.Obtain(key, true, true, func() *session.Session {
		return session.New(session.Config{
			Class:          "tracepad",
			Options:        current,
			Logger:         logger,
			ViewportHeight: terminalHeight(),
		})
	})

	// Translate an interrupt per the configured opt-in. Without one the
	// signal keeps its platform default behavior.
	if s.Interrupt() != nil {
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-signals
			reason := s.Interrupt()
			fmt.Fprintf(os.Stderr, "\ninterrupted: %s\n", reason.Kind)
			os.Exit(0)
		}()
	}

	reason := registry.Interact(s, frame, trace.EventLine, nil)
	logger.Info("session ended", zap.String("reason", reason.Kind.String()))
	if reason.Kind == trace.ResumeQuit {
		return 0
	}
	fmt.Printf("-> %s\n", reason.Kind)
	return 0
}

// options holds the parsed command line.
type options struct {
	ConfigPath string
	LogLevel   string
	Sticky     bool
	File       string
	Line       int
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	defaultRC := ""
	if home, err := os.UserHomeDir(); err == nil {
		defaultRC = filepath.Join(home, ".tracepadrc.toml")
	}

	flag.StringVar(&opts.ConfigPath, "config", defaultRC, "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", defaultRC, "Path to configuration file (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	flag.BoolVar(&opts.Sticky, "sticky", false, "Start in sticky mode")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Tracepad - interactive source-level debugging shell\n\n")
		fmt.Fprintf(os.Stderr, "Usage: tracepad [options] [file[:line]]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  tracepad                    Explore the bundled sample\n")
		fmt.Fprintf(os.Stderr, "  tracepad main.go:42         Suspend at main.go line 42\n")
		fmt.Fprintf(os.Stderr, "  tracepad -sticky main.go    Start in sticky mode\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if showVersion {
		fmt.Printf("Tracepad %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	switch opts.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		os.Exit(1)
	}

	if args := flag.Args(); len(args) > 0 {
		opts.File = args[0]
		if i := strings.LastIndex(args[0], ":"); i >= 0 {
			if n, err := strconv.Atoi(args[0][i+1:]); err == nil {
				opts.File = args[0][:i]
				opts.Line = n
			}
		}
	}
	return opts
}

// newLogger builds a console zap logger at the given level, on stderr so
// it never interleaves with the session's own output.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// terminalHeight detects the usable viewport, 0 when stdout is not a
// terminal.
func terminalHeight() int {
	_, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || h < 3 {
		return 0
	}
	// Leave room for the banner and the prompt.
	return h - 2
}

// demoFrame builds the suspension frame. With a file argument it suspends
// at that location; otherwise it writes the bundled sample next to the
// temp dir and suspends inside it.
func demoFrame(file string, line int) (trace.Frame, error) {
	if file == "" {
		path, err := writeSample()
		if err != nil {
			return nil, err
		}
		return sampleChain(path), nil
	}

	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, err
	}
	lines, err := countLines(abs)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}
	if line < 1 || line > lines {
		line = 1
	}
	first, last := spanAround(abs, line, lines)
	return &trace.StaticFrame{
		FileName:  abs,
		LineNo:    line,
		Function:  strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs)),
		SpanFirst: first,
		SpanLast:  last,
		Vars:      map[string]any{"argc": len(os.Args)},
	}, nil
}

// countLines returns the number of lines in path.
func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n := 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		n++
	}
	return n, sc.Err()
}

// spanAround finds a displayable unit around line: the nearest enclosing
// top-level block by brace heuristic, falling back to the whole file.
func spanAround(path string, line, total int) (int, int) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 1, total
	}
	lines := strings.Split(string(data), "\n")

	first := 1
	for i := line - 1; i >= 0 && i < len(lines); i-- {
		if strings.HasPrefix(lines[i], "func ") || strings.HasPrefix(lines[i], "def ") {
			first = i + 1
			break
		}
	}
	last := total
	for i := line - 1; i < len(lines); i++ {
		if lines[i] == "}" {
			last = i + 1
			break
		}
	}
	if last < first {
		return 1, total
	}
	return first, last
}

const sampleSource = `package sample

func produce(n int) []int {
	out := make([]int, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, i*i)
	}
	return out
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}
`

// writeSample drops the bundled sample into the temp dir.
func writeSample() (string, error) {
	path := filepath.Join(os.TempDir(), "tracepad_sample.go")
	if err := os.WriteFile(path, []byte(sampleSource), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// sampleChain is the two-frame demo suspension: produce called from sum's
// caller.
func sampleChain(path string) trace.Frame {
	return trace.Chain(
		&trace.StaticFrame{
			FileName: path, LineNo: 12, Function: "sum",
			SpanFirst: 11, SpanLast: 17,
			Vars: map[string]any{"total": 0},
		},
		&trace.StaticFrame{
			FileName: path, LineNo: 6, Function: "produce",
			SpanFirst: 3, SpanLast: 9,
			Vars: map[string]any{"n": 5, "i": 2, "out": []any{0, 1}},
		},
	)
}
