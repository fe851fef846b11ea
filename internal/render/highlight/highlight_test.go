package highlight

import (
	"testing"

	"github.com/fatih/color"
)

func TestHighlighter_Keywords(t *testing.T) {
	color.NoColor = false
	defer func() { color.NoColor = true }()

	h := Default()
	out := h.Line("func main() {")
	if Strip(out) != "func main() {" {
		t.Errorf("Strip() = %q, expected original text", Strip(out))
	}
	if out == "func main() {" {
		t.Error("expected keyword coloring to change the line")
	}
}

func TestHighlighter_CommentWinsOverKeyword(t *testing.T) {
	color.NoColor = false
	defer func() { color.NoColor = true }()

	h := Default()
	out := h.Line("x // return value")
	if Strip(out) != "x // return value" {
		t.Errorf("Strip() = %q, expected original text", Strip(out))
	}
}

func TestHighlighter_PassThrough(t *testing.T) {
	h := New()
	line := "plain text with nothing special"
	if got := h.Line(line); got != line {
		t.Errorf("Line() = %q, expected unchanged", got)
	}
}

func TestStrip_NoEscapes(t *testing.T) {
	if got := Strip("plain"); got != "plain" {
		t.Errorf("Strip() = %q", got)
	}
}
