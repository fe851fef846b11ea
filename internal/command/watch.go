package command

import (
	"github.com/dshills/tracepad/internal/eval"
	"github.com/dshills/tracepad/internal/render"
	"github.com/dshills/tracepad/internal/trace"
)

// WatchValue is one watch expression paired with its rendered value.
type WatchValue struct {
	Expr  string
	Value string
}

type watchEntry struct {
	expr string
	last string
	seen bool
}

// WatchList holds persistent "display" expressions in insertion order,
// each with the last value shown to the operator. It survives across
// suspensions when the owning session is reused.
type WatchList struct {
	entries []watchEntry
}

// NewWatchList returns an empty list.
func NewWatchList() *WatchList {
	return &WatchList{}
}

// Add registers expr. Re-adding an existing expression resets its
// last-seen value so it prints again on the next flush.
func (w *WatchList) Add(expr string) {
	for i := range w.entries {
		if w.entries[i].expr == expr {
			w.entries[i].seen = false
			return
		}
	}
	w.entries = append(w.entries, watchEntry{expr: expr})
}

// Remove drops expr and reports whether it was present.
func (w *WatchList) Remove(expr string) bool {
	for i := range w.entries {
		if w.entries[i].expr == expr {
			w.entries = append(w.entries[:i], w.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Exprs returns the watched expressions in insertion order.
func (w *WatchList) Exprs() []string {
	exprs := make([]string, len(w.entries))
	for i, e := range w.entries {
		exprs[i] = e.expr
	}
	return exprs
}

// Len returns the number of watched expressions.
func (w *WatchList) Len() int { return len(w.entries) }

// Changed evaluates every expression against frame and returns the ones
// whose rendered value differs from the last flush, updating the stored
// values. Evaluation failures render as the unprintable placeholder, so a
// watch that becomes unreadable shows up as a change exactly once.
func (w *WatchList) Changed(ev eval.Evaluator, frame trace.Frame) []WatchValue {
	var changed []WatchValue
	for i := range w.entries {
		e := &w.entries[i]
		value := watchValue(ev, e.expr, frame)
		if e.seen && value == e.last {
			continue
		}
		e.last = value
		e.seen = true
		changed = append(changed, WatchValue{Expr: e.expr, Value: value})
	}
	return changed
}

func watchValue(ev eval.Evaluator, expr string, frame trace.Frame) string {
	v, err := ev.Eval(expr, frame)
	if err != nil {
		return render.Unprintable
	}
	return render.FormatValue(v)
}
