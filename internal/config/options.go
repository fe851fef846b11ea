// Package config holds the named options consumed at session construction
// time, plus loading from TOML/YAML rc files and live reload.
package config

// Options toggles individual session behaviors. Each field maps to one
// documented behavior of the display engine, the command router or the
// session itself.
type Options struct {
	// StickyByDefault starts sessions in sticky mode.
	StickyByDefault bool `toml:"sticky_by_default" yaml:"sticky_by_default"`

	// EnableHiddenFrames applies the hidden-frame predicate at stack
	// build time. When false every frame is visible.
	EnableHiddenFrames bool `toml:"enable_hidden_frames" yaml:"enable_hidden_frames"`

	// ShowHiddenFramesCount appends ", N frames hidden" to the stop
	// banner when frames are hidden.
	ShowHiddenFramesCount bool `toml:"show_hidden_frames_count" yaml:"show_hidden_frames_count"`

	// ShowTracebackOnError prints evaluation tracebacks, truncated to
	// TracebackLimit lines.
	ShowTracebackOnError bool `toml:"show_traceback_on_error" yaml:"show_traceback_on_error"`

	// TracebackLimit bounds the traceback depth; 0 means unlimited.
	TracebackLimit int `toml:"traceback_limit" yaml:"traceback_limit"`

	// HeadBias is the sticky cutoff head/tail ratio, between 0 and 1.
	HeadBias float64 `toml:"head_bias" yaml:"head_bias"`

	// SkipModules feeds the hidden-frame predicate's module skip list.
	SkipModules []string `toml:"skip_modules" yaml:"skip_modules"`

	// Editor is the command used by "edit"; empty falls back to $EDITOR.
	Editor string `toml:"editor" yaml:"editor"`

	// Highlight enables the default line highlighter.
	Highlight bool `toml:"highlight" yaml:"highlight"`

	// ViewportHeight fixes the sticky viewport; 0 detects the terminal.
	ViewportHeight int `toml:"viewport_height" yaml:"viewport_height"`

	// InterruptResume, when non-empty, names the terminal command an
	// external interrupt signal is translated to ("quit", "continue").
	// Empty opts out: the signal keeps its platform default behavior.
	InterruptResume string `toml:"interrupt_resume" yaml:"interrupt_resume"`
}

// Default returns the standard option set.
func Default() Options {
	return Options{
		EnableHiddenFrames:    true,
		ShowHiddenFramesCount: true,
		ShowTracebackOnError:  true,
		TracebackLimit:        8,
		HeadBias:              0.5,
		Highlight:             true,
	}
}
