package trace

import "fmt"

// Breakpoint describes one breakpoint owned by the tracer.
type Breakpoint struct {
	// ID is the tracer-assigned identifier.
	ID int

	// File is the source file path.
	File string

	// Line is the breakpoint line (1-based).
	Line int

	// Condition is an optional expression; empty means unconditional.
	Condition string

	// Enabled reports whether the breakpoint is active.
	Enabled bool

	// HitCount is the number of times the breakpoint has triggered.
	HitCount int
}

// String returns a one-line listing form, e.g. "2  breakpoint at app.go:14".
func (b Breakpoint) String() string {
	s := fmt.Sprintf("%d  breakpoint at %s:%d", b.ID, b.File, b.Line)
	if b.Condition != "" {
		s += fmt.Sprintf(" if %s", b.Condition)
	}
	if !b.Enabled {
		s += " (disabled)"
	}
	return s
}

// Breakpoints is the tracer-side breakpoint store. The session engine only
// performs CRUD through it; trigger semantics stay with the tracer.
type Breakpoints interface {
	// Set creates a breakpoint and returns the tracer's record of it.
	Set(file string, line int, condition string) (Breakpoint, error)

	// Clear removes a breakpoint by ID.
	Clear(id int) error

	// All returns every breakpoint in creation order.
	All() []Breakpoint

	// SetCommands attaches command lines to run when the breakpoint hits.
	SetCommands(id int, commands []string) error
}
