package render

import (
	"fmt"
	"strings"
)

// Unprintable is the fixed placeholder for values whose textual
// representation itself fails.
const Unprintable = "(unprintable)"

// FormatValue renders an arbitrary value for display. A value whose
// formatting panics, or whose Stringer panics under fmt, degrades to the
// Unprintable placeholder instead of propagating.
func FormatValue(v any) (s string) {
	defer func() {
		if recover() != nil {
			s = Unprintable
		}
	}()

	if v == nil {
		return "nil"
	}
	s = fmt.Sprintf("%v", v)
	// fmt swallows Stringer panics and embeds a %!v(PANIC=...) note.
	if strings.Contains(s, "%!v(PANIC=") {
		return Unprintable
	}
	return s
}
