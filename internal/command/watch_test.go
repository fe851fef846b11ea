package command

import (
	"errors"
	"testing"

	"github.com/dshills/tracepad/internal/render"
	"github.com/dshills/tracepad/internal/trace"
)

func TestWatchListChanged(t *testing.T) {
	ev := &stubEval{values: map[string]any{"a": 1, "b": "hi"}}
	frame := &trace.StaticFrame{}

	w := NewWatchList()
	w.Add("a")
	w.Add("b")

	changed := w.Changed(ev, frame)
	if len(changed) != 2 {
		t.Fatalf("first flush changed %d entries, want 2", len(changed))
	}
	if changed[0].Expr != "a" || changed[0].Value != "1" {
		t.Errorf("changed[0] = %+v", changed[0])
	}

	// Unchanged values are suppressed on the next flush.
	if changed := w.Changed(ev, frame); len(changed) != 0 {
		t.Errorf("second flush changed %v, want none", changed)
	}

	// A value change shows up exactly once.
	ev.values["a"] = 2
	changed = w.Changed(ev, frame)
	if len(changed) != 1 || changed[0].Expr != "a" || changed[0].Value != "2" {
		t.Errorf("third flush changed %v, want a: 2", changed)
	}
}

func TestWatchListErrorValue(t *testing.T) {
	ev := &stubEval{errs: map[string]error{"boom": errors.New("no such name")}}
	frame := &trace.StaticFrame{}

	w := NewWatchList()
	w.Add("boom")

	changed := w.Changed(ev, frame)
	if len(changed) != 1 || changed[0].Value != render.Unprintable {
		t.Fatalf("changed = %+v, want %s", changed, render.Unprintable)
	}

	// The failure is itself a stable value, not a change.
	if changed := w.Changed(ev, frame); len(changed) != 0 {
		t.Errorf("second flush changed %v, want none", changed)
	}
}

func TestWatchListAddRemove(t *testing.T) {
	ev := &stubEval{values: map[string]any{"a": 1}}
	frame := &trace.StaticFrame{}

	w := NewWatchList()
	w.Add("a")
	w.Changed(ev, frame)

	// Re-adding forces the value to print again.
	w.Add("a")
	if changed := w.Changed(ev, frame); len(changed) != 1 {
		t.Errorf("re-add flush changed %v, want one entry", changed)
	}

	if !w.Remove("a") {
		t.Error("Remove(a) = false, want true")
	}
	if w.Remove("a") {
		t.Error("second Remove(a) = true, want false")
	}
	if w.Len() != 0 {
		t.Errorf("Len() = %d, want 0", w.Len())
	}
}
