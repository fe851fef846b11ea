package command

import "strings"

// escapePrefix forces raw expression evaluation. A doubled prefix always
// bypasses the command table; a single one only does so when the first
// word is not a registered command.
const escapePrefix = "!"

// input is one parsed line. Exactly one of Name or Expr is set.
type input struct {
	// Name is the registered command name, with Arg its remainder.
	Name string
	Arg  string

	// Expr is the raw expression for the evaluator fall-through.
	Expr string

	// Escape records the raw-eval prefix used, "" when none.
	Escape string
}

// parseLine splits a trimmed, non-empty line using has to probe the
// command table.
func parseLine(line string, has func(string) bool) input {
	if rest, ok := strings.CutPrefix(line, escapePrefix+escapePrefix); ok {
		return input{Expr: strings.TrimSpace(rest), Escape: escapePrefix + escapePrefix}
	}
	if rest, ok := strings.CutPrefix(line, escapePrefix); ok {
		rest = strings.TrimSpace(rest)
		name, arg := splitWord(rest)
		if has(name) {
			return input{Name: name, Arg: arg, Escape: escapePrefix}
		}
		return input{Expr: rest, Escape: escapePrefix}
	}

	name, arg := splitWord(line)
	if has(name) {
		return input{Name: name, Arg: arg}
	}
	return input{Expr: line}
}

// splitWord separates the first whitespace-delimited word from the rest.
func splitWord(s string) (string, string) {
	s = strings.TrimSpace(s)
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i+1:])
}
