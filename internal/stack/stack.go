// Package stack materializes a tracer frame chain into an indexed,
// navigable model. The chain is walked once per suspension; all navigation
// afterwards operates on integer indices, never on raw caller links.
package stack

import (
	"github.com/dshills/tracepad/internal/trace"
)

// View wraps one activation record with its position in the unfiltered
// chain and the hidden flag computed at build time.
type View struct {
	// Frame is the borrowed tracer handle.
	Frame trace.Frame

	// Index is the position in the full chain; 0 is the root/outermost.
	Index int

	// Hidden excludes the frame from navigation and display.
	Hidden bool

	// Forced marks the innermost frame of an all-hidden chain, kept
	// visible so the cursor always has somewhere to land.
	Forced bool
}

// Model is an ordered frame sequence with a navigation cursor. The cursor
// always indexes a visible frame; navigation that would leave the valid
// range fails without mutating it.
type Model struct {
	frames      []View
	cursor      int
	hiddenCount int
}

// Build walks from start via the caller link to the root and produces the
// model in outer-to-inner order. The predicate is applied once per frame;
// nil means no frame is hidden. The cursor lands on the start frame,
// snapped outward to the nearest visible frame.
func Build(start trace.Frame, pred HidePredicate) *Model {
	if pred == nil {
		pred = ShowAll
	}

	var chain []trace.Frame
	for f := start; f != nil; f = f.Caller() {
		chain = append(chain, f)
	}

	n := len(chain)
	m := &Model{frames: make([]View, n)}
	for i, f := range chain {
		idx := n - 1 - i
		hidden := pred(f)
		m.frames[idx] = View{Frame: f, Index: idx, Hidden: hidden}
		if hidden {
			m.hiddenCount++
		}
	}

	m.forceVisibleIfNeeded()
	m.cursor = m.nearestVisible(n - 1)
	return m
}

// forceVisibleIfNeeded overrides the predicate for the innermost frame
// when every frame in the chain is hidden.
func (m *Model) forceVisibleIfNeeded() {
	if len(m.frames) == 0 || m.hiddenCount < len(m.frames) {
		return
	}
	last := len(m.frames) - 1
	m.frames[last].Hidden = false
	m.frames[last].Forced = true
	m.hiddenCount--
}

// nearestVisible returns the visible index closest to idx, preferring the
// outward (older) direction. Build guarantees at least one visible frame.
func (m *Model) nearestVisible(idx int) int {
	for i := idx; i >= 0; i-- {
		if !m.frames[i].Hidden {
			return i
		}
	}
	for i := idx + 1; i < len(m.frames); i++ {
		if !m.frames[i].Hidden {
			return i
		}
	}
	return idx
}

// Len returns the unfiltered frame count.
func (m *Model) Len() int { return len(m.frames) }

// Cursor returns the current frame index.
func (m *Model) Cursor() int { return m.cursor }

// Current returns the view under the cursor.
func (m *Model) Current() View { return m.frames[m.cursor] }

// Frames returns the full view sequence in outer-to-inner order.
func (m *Model) Frames() []View { return m.frames }

// HiddenCount returns the number of hidden frames, for "N frames hidden"
// display only.
func (m *Model) HiddenCount() int { return m.hiddenCount }

// visibleStep returns the next visible index from idx in direction dir
// (+1 or -1), or -1 when none remains.
func (m *Model) visibleStep(idx, dir int) int {
	for i := idx + dir; i >= 0 && i < len(m.frames); i += dir {
		if !m.frames[i].Hidden {
			return i
		}
	}
	return -1
}

// Move shifts the cursor by delta visible frames. Positive delta moves
// inward (newer frames). Hitting either end fails with a BoundaryError and
// leaves the cursor unchanged.
func (m *Model) Move(delta int) error {
	if delta == 0 {
		return nil
	}
	dir := 1
	edge := EdgeNewest
	if delta < 0 {
		dir = -1
		edge = EdgeOldest
		delta = -delta
	}

	target := m.cursor
	for i := 0; i < delta; i++ {
		next := m.visibleStep(target, dir)
		if next < 0 {
			return &BoundaryError{Kind: edge}
		}
		target = next
	}
	m.cursor = target
	return nil
}

// Jump moves the cursor to an absolute unfiltered index. Negative n counts
// from the newest frame (-1 is the innermost). A hidden target snaps
// inward first, then outward. Out-of-range indices fail with a RangeError
// and leave the cursor unchanged.
func (m *Model) Jump(n int) error {
	idx := n
	if idx < 0 {
		idx += len(m.frames)
	}
	if idx < 0 || idx >= len(m.frames) {
		return &RangeError{Index: idx, Len: len(m.frames)}
	}

	if m.frames[idx].Hidden {
		if next := m.visibleStep(idx, 1); next >= 0 {
			idx = next
		} else {
			idx = m.nearestVisible(idx)
		}
	}
	m.cursor = idx
	return nil
}

// Top moves the cursor to the outermost visible frame. Repeating Top at
// the edge is an explicit BoundaryError rather than a silent no-op.
func (m *Model) Top() error {
	idx := m.visibleStep(-1, 1)
	if idx == m.cursor {
		return &BoundaryError{Kind: EdgeOldest}
	}
	m.cursor = idx
	return nil
}

// Bottom moves the cursor to the innermost visible frame, with the same
// edge-repeat semantics as Top.
func (m *Model) Bottom() error {
	idx := m.visibleStep(len(m.frames), -1)
	if idx == m.cursor {
		return &BoundaryError{Kind: EdgeNewest}
	}
	m.cursor = idx
	return nil
}

// Hide marks the frame at index hidden without rebuilding the model. If
// the cursor's frame becomes hidden it snaps to the nearest visible frame;
// an all-hidden chain forces the innermost frame visible again.
func (m *Model) Hide(index int) error {
	if index < 0 || index >= len(m.frames) {
		return &RangeError{Index: index, Len: len(m.frames)}
	}
	if m.frames[index].Hidden {
		return nil
	}

	m.frames[index].Hidden = true
	m.frames[index].Forced = false
	m.hiddenCount++
	m.forceVisibleIfNeeded()

	if m.frames[m.cursor].Hidden {
		m.cursor = m.nearestVisible(m.cursor)
	}
	return nil
}

// UnhideAll clears every hidden flag, including the forced-visible
// override.
func (m *Model) UnhideAll() {
	for i := range m.frames {
		m.frames[i].Hidden = false
		m.frames[i].Forced = false
	}
	m.hiddenCount = 0
}
