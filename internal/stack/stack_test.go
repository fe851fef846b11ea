package stack

import (
	"errors"
	"testing"

	"github.com/dshills/tracepad/internal/trace"
)

func buildChain(n int, hidden ...int) *Model {
	frames := make([]*trace.StaticFrame, n)
	hide := make(map[int]bool)
	for _, h := range hidden {
		hide[h] = true
	}
	for i := 0; i < n; i++ {
		frames[i] = &trace.StaticFrame{
			FileName: "app.go",
			LineNo:   10 + i,
			Function: "fn",
			Hide:     hide[i],
		}
	}
	return Build(trace.Chain(frames...), DefaultPredicate(nil))
}

func TestBuild_Order(t *testing.T) {
	outer := &trace.StaticFrame{Function: "main", LineNo: 1}
	mid := &trace.StaticFrame{Function: "work", LineNo: 2}
	inner := &trace.StaticFrame{Function: "leaf", LineNo: 3}

	m := Build(trace.Chain(outer, mid, inner), nil)

	if m.Len() != 3 {
		t.Fatalf("Len() = %d, expected 3", m.Len())
	}
	if got := m.Frames()[0].Frame.FuncName(); got != "main" {
		t.Errorf("frame 0 = %s, expected main (outermost first)", got)
	}
	if got := m.Frames()[2].Frame.FuncName(); got != "leaf" {
		t.Errorf("frame 2 = %s, expected leaf", got)
	}
	if m.Cursor() != 2 {
		t.Errorf("Cursor() = %d, expected start frame index 2", m.Cursor())
	}
}

func TestBuild_HiddenCount(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		hidden   []int
		expected int
	}{
		{name: "none hidden", total: 4, hidden: nil, expected: 0},
		{name: "two hidden", total: 5, hidden: []int{1, 3}, expected: 2},
		{name: "all hidden forces innermost", total: 3, hidden: []int{0, 1, 2}, expected: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := buildChain(tt.total, tt.hidden...)
			if m.HiddenCount() != tt.expected {
				t.Errorf("HiddenCount() = %d, expected %d", m.HiddenCount(), tt.expected)
			}
			if m.Current().Hidden {
				t.Error("cursor landed on a hidden frame")
			}
		})
	}
}

func TestBuild_AllHiddenForcesInnermost(t *testing.T) {
	m := buildChain(3, 0, 1, 2)

	if m.Cursor() != 2 {
		t.Fatalf("Cursor() = %d, expected forced innermost 2", m.Cursor())
	}
	if !m.Current().Forced {
		t.Error("innermost frame should carry the Forced flag")
	}
}

func TestMove(t *testing.T) {
	tests := []struct {
		name       string
		total      int
		hidden     []int
		delta      int
		wantCursor int
		wantEdge   Edge
		wantErr    bool
	}{
		{name: "up one", total: 4, delta: -1, wantCursor: 2},
		{name: "up skips hidden", total: 4, hidden: []int{2}, delta: -1, wantCursor: 1},
		{name: "up past oldest", total: 3, delta: -5, wantCursor: 2, wantErr: true, wantEdge: EdgeOldest},
		{name: "down at newest", total: 3, delta: 1, wantCursor: 2, wantErr: true, wantEdge: EdgeNewest},
		{name: "zero is a no-op", total: 3, delta: 0, wantCursor: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := buildChain(tt.total, tt.hidden...)
			err := m.Move(tt.delta)
			if tt.wantErr {
				var be *BoundaryError
				if !errors.As(err, &be) {
					t.Fatalf("Move(%d) error = %v, expected BoundaryError", tt.delta, err)
				}
				if be.Kind != tt.wantEdge {
					t.Errorf("edge = %v, expected %v", be.Kind, tt.wantEdge)
				}
			} else if err != nil {
				t.Fatalf("Move(%d) unexpected error: %v", tt.delta, err)
			}
			if m.Cursor() != tt.wantCursor {
				t.Errorf("Cursor() = %d, expected %d", m.Cursor(), tt.wantCursor)
			}
		})
	}
}

func TestJump_Equivalences(t *testing.T) {
	for _, hidden := range [][]int{nil, {0}, {3}, {0, 3}} {
		m1 := buildChain(4, hidden...)
		m2 := buildChain(4, hidden...)

		_ = m1.Jump(-1)
		_ = m2.Bottom()
		if m1.Cursor() != m2.Cursor() {
			t.Errorf("hidden %v: Jump(-1) = %d, Bottom() = %d", hidden, m1.Cursor(), m2.Cursor())
		}

		_ = m1.Jump(0)
		_ = m2.Top()
		if m1.Cursor() != m2.Cursor() {
			t.Errorf("hidden %v: Jump(0) = %d, Top() = %d", hidden, m1.Cursor(), m2.Cursor())
		}
	}
}

func TestJump_OutOfRange(t *testing.T) {
	m := buildChain(3)
	before := m.Cursor()

	err := m.Jump(7)
	var re *RangeError
	if !errors.As(err, &re) {
		t.Fatalf("Jump(7) error = %v, expected RangeError", err)
	}
	if m.Cursor() != before {
		t.Errorf("cursor mutated on failed jump: %d -> %d", before, m.Cursor())
	}

	if err := m.Jump(-4); err == nil {
		t.Error("Jump(-4) on a 3-frame stack should fail")
	}
}

func TestTopBottom_EdgeRepeat(t *testing.T) {
	m := buildChain(3)

	if err := m.Top(); err != nil {
		t.Fatalf("Top() unexpected error: %v", err)
	}
	err := m.Top()
	var be *BoundaryError
	if !errors.As(err, &be) || be.Kind != EdgeOldest {
		t.Fatalf("repeated Top() = %v, expected BoundaryError{Oldest}", err)
	}
	if m.Cursor() != 0 {
		t.Errorf("cursor = %d, expected 0 after failed Top", m.Cursor())
	}

	if err := m.Bottom(); err != nil {
		t.Fatalf("Bottom() unexpected error: %v", err)
	}
	err = m.Bottom()
	if !errors.As(err, &be) || be.Kind != EdgeNewest {
		t.Fatalf("repeated Bottom() = %v, expected BoundaryError{Newest}", err)
	}
}

func TestHide_MovesCursorOffHiddenFrame(t *testing.T) {
	m := buildChain(4)

	if err := m.Hide(3); err != nil {
		t.Fatalf("Hide(3) unexpected error: %v", err)
	}
	if m.Cursor() != 2 {
		t.Errorf("Cursor() = %d, expected snap to 2", m.Cursor())
	}
	if m.HiddenCount() != 1 {
		t.Errorf("HiddenCount() = %d, expected 1", m.HiddenCount())
	}

	// Hiding an already hidden frame changes nothing.
	if err := m.Hide(3); err != nil {
		t.Fatalf("repeat Hide(3) unexpected error: %v", err)
	}
	if m.HiddenCount() != 1 {
		t.Errorf("HiddenCount() = %d after repeat hide, expected 1", m.HiddenCount())
	}
}

func TestHide_AllHiddenReforcesInnermost(t *testing.T) {
	m := buildChain(2, 0)

	if err := m.Hide(1); err != nil {
		t.Fatalf("Hide(1) unexpected error: %v", err)
	}
	if m.Current().Hidden {
		t.Error("cursor on hidden frame after hiding the whole chain")
	}
	if m.Cursor() != 1 || !m.Frames()[1].Forced {
		t.Errorf("expected innermost frame forced visible, cursor=%d", m.Cursor())
	}
}

func TestUnhideAll(t *testing.T) {
	m := buildChain(4, 1, 2)

	m.UnhideAll()
	if m.HiddenCount() != 0 {
		t.Errorf("HiddenCount() = %d, expected 0", m.HiddenCount())
	}
	for _, v := range m.Frames() {
		if v.Hidden || v.Forced {
			t.Errorf("frame %d still flagged after UnhideAll", v.Index)
		}
	}
}

func TestDefaultPredicate(t *testing.T) {
	tests := []struct {
		name   string
		frame  *trace.StaticFrame
		skip   []string
		hidden bool
	}{
		{name: "plain frame", frame: &trace.StaticFrame{}, hidden: false},
		{name: "explicit marker", frame: &trace.StaticFrame{Hide: true}, hidden: true},
		{name: "library boundary", frame: &trace.StaticFrame{Boundary: true}, hidden: true},
		{name: "skip list", frame: &trace.StaticFrame{Mod: "vendor/runtime"}, skip: []string{"vendor/runtime"}, hidden: true},
		{
			name:   "traceback hide local",
			frame:  &trace.StaticFrame{Vars: map[string]any{trace.TracebackHideLocal: true}},
			hidden: true,
		},
		{
			name:   "traceback hide local false",
			frame:  &trace.StaticFrame{Vars: map[string]any{trace.TracebackHideLocal: false}},
			hidden: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred := DefaultPredicate(tt.skip)
			if pred(tt.frame) != tt.hidden {
				t.Errorf("predicate = %v, expected %v", pred(tt.frame), tt.hidden)
			}
		})
	}
}
