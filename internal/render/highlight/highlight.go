// Package highlight provides the default line highlighter for the display
// engine. The engine treats highlighting as an injected function; this
// package is one convenient implementation, not a dependency of the core.
package highlight

import (
	"regexp"
	"strings"

	"github.com/fatih/color"
)

// Rule pairs a pattern with the color applied to its matches.
type Rule struct {
	// Pattern is the regex to match.
	Pattern *regexp.Regexp

	// Paint renders the matched text.
	Paint func(a ...interface{}) string
}

// Highlighter is a simple regex and keyword based ANSI colorizer.
type Highlighter struct {
	rules    []Rule
	keywords map[string]func(a ...interface{}) string
	word     *regexp.Regexp
}

// New creates an empty highlighter.
func New() *Highlighter {
	return &Highlighter{
		keywords: make(map[string]func(a ...interface{}) string),
		word:     regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`),
	}
}

// AddRule adds a pattern rule.
func (h *Highlighter) AddRule(pattern string, c *color.Color) *Highlighter {
	h.rules = append(h.rules, Rule{
		Pattern: regexp.MustCompile(pattern),
		Paint:   c.SprintFunc(),
	})
	return h
}

// AddKeywords colors each keyword with c.
func (h *Highlighter) AddKeywords(c *color.Color, keywords ...string) *Highlighter {
	paint := c.SprintFunc()
	for _, kw := range keywords {
		h.keywords[kw] = paint
	}
	return h
}

// Line colorizes one source line. Comments and strings win over keywords;
// unmatched text passes through untouched.
func (h *Highlighter) Line(line string) string {
	for _, rule := range h.rules {
		if loc := rule.Pattern.FindStringIndex(line); loc != nil {
			return line[:loc[0]] + rule.Paint(line[loc[0]:loc[1]]) + h.Line(line[loc[1]:])
		}
	}

	return h.word.ReplaceAllStringFunc(line, func(w string) string {
		if paint, ok := h.keywords[w]; ok {
			return paint(w)
		}
		return w
	})
}

// Default returns a highlighter tuned for Go-like source.
func Default() *Highlighter {
	h := New()
	h.AddRule(`//.*$`, color.New(color.FgHiBlack))
	h.AddRule(`#.*$`, color.New(color.FgHiBlack))
	h.AddRule(`"(?:[^"\\]|\\.)*"`, color.New(color.FgGreen))
	h.AddKeywords(color.New(color.FgMagenta),
		"func", "return", "if", "else", "for", "range", "switch", "case",
		"def", "class", "import", "package", "var", "const", "type",
		"go", "defer", "select", "break", "continue",
	)
	return h
}

// Strip removes ANSI escape sequences; useful for width math and tests.
func Strip(s string) string {
	if !strings.Contains(s, "\x1b[") {
		return s
	}
	return ansiPattern.ReplaceAllString(s, "")
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)
