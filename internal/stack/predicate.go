package stack

import "github.com/dshills/tracepad/internal/trace"

// HidePredicate decides whether a frame is hidden from navigation and
// display. It is evaluated exactly once per frame at build time so that
// display and navigation always agree.
type HidePredicate func(trace.Frame) bool

// DefaultPredicate hides frames carrying an explicit hide marker, frames
// whose module is in the skip list, frames whose locals set the
// __tracebackhide__ flag, and library-boundary frames.
func DefaultPredicate(skipModules []string) HidePredicate {
	skip := make(map[string]bool, len(skipModules))
	for _, m := range skipModules {
		skip[m] = true
	}

	return func(f trace.Frame) bool {
		if f.HideMarked() || f.LibraryBoundary() {
			return true
		}
		if skip[f.Module()] {
			return true
		}
		if v, ok := f.Locals()[trace.TracebackHideLocal]; ok {
			if b, ok := v.(bool); ok && b {
				return true
			}
		}
		return false
	}
}

// ShowAll is the predicate used when hidden-frame support is disabled.
func ShowAll(trace.Frame) bool { return false }
