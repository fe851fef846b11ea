package render

import "math"

// CutoffPolicy tunes how sticky rendering trims a unit that is taller
// than the viewport.
type CutoffPolicy struct {
	// HeadBias is the fraction of the window placed above the executing
	// line when both the unit's head and tail must be elided.
	HeadBias float64

	// MinViewport is the smallest usable window; smaller requests are
	// raised to it so the executing line always has context.
	MinViewport int
}

// DefaultCutoffPolicy returns the standard policy.
func DefaultCutoffPolicy() CutoffPolicy {
	return CutoffPolicy{HeadBias: 0.5, MinViewport: 4}
}

// cutRows trims unit rows to fit height source rows. decorators is the
// count of decorator rows at the head of rows; they stay pinned even when
// that forces more aggressive tail elision. Each elided range collapses
// into a single ellipsis row.
func cutRows(rows []Line, decorators int, policy CutoffPolicy, height int) []Line {
	if height < policy.MinViewport {
		height = policy.MinViewport
	}
	if len(rows) <= height {
		return rows
	}

	exec := execIndex(rows)
	budget := height

	// Pin the decorators. When they would crowd out the body window,
	// keep the first and last with an ellipsis between.
	var pinned []Line
	switch {
	case decorators == 0:
	case decorators <= budget-2:
		pinned = append(pinned, rows[:decorators]...)
		budget -= decorators
	default:
		pinned = append(pinned, rows[0], Line{Ellipsis: true}, rows[decorators-1])
		budget -= 2
	}

	body := rows[decorators:]
	execIdx := exec - decorators
	if execIdx < 0 {
		execIdx = 0
	}
	if budget < 2 {
		budget = 2
	}
	if len(body) <= budget {
		return append(pinned, body...)
	}

	var start int
	headElided, tailElided := false, false
	switch {
	case execIdx <= budget-1:
		// Head fits: show the unit's head, elide the tail.
		start = 0
		tailElided = true
	case len(body)-execIdx <= budget:
		// Tail fits: elide the head, show through the unit's end.
		start = len(body) - budget
		headElided = true
	default:
		// Both sides give way; bias the window around the executing line.
		before := int(math.Round(policy.HeadBias * float64(budget-1)))
		start = execIdx - before
		if start < 1 {
			start = 1
		}
		if start > len(body)-budget-1 {
			start = len(body) - budget - 1
		}
		headElided = true
		tailElided = true
	}

	out := pinned
	if headElided {
		out = append(out, Line{Ellipsis: true})
	}
	out = append(out, body[start:start+budget]...)
	if tailElided {
		out = append(out, Line{Ellipsis: true})
	}
	return out
}

// execIndex locates the executing row, defaulting to 0.
func execIndex(rows []Line) int {
	for i, r := range rows {
		if r.Current {
			return i
		}
	}
	return 0
}
