package stack

import "fmt"

// Edge identifies which end of the stack a navigation command ran into.
type Edge int

const (
	// EdgeOldest is the root/outermost end of the stack.
	EdgeOldest Edge = iota
	// EdgeNewest is the innermost end of the stack.
	EdgeNewest
)

// String returns the edge name.
func (e Edge) String() string {
	if e == EdgeOldest {
		return "oldest"
	}
	return "newest"
}

// BoundaryError is returned by navigation that would move the cursor past
// either end of the stack. The cursor is left unchanged.
type BoundaryError struct {
	// Kind is the edge that was hit.
	Kind Edge
}

// Error returns the "already at the edge" diagnostic.
func (e *BoundaryError) Error() string {
	return fmt.Sprintf("already at %s frame", e.Kind)
}

// RangeError is returned for an out-of-range absolute frame index. The
// cursor is left unchanged.
type RangeError struct {
	// Index is the requested index after negative normalization.
	Index int

	// Len is the stack length.
	Len int
}

// Error returns the out-of-range diagnostic.
func (e *RangeError) Error() string {
	return fmt.Sprintf("frame index %d out of range [0, %d)", e.Index, e.Len)
}
