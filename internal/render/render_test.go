package render

import (
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/dshills/tracepad/internal/source"
	"github.com/dshills/tracepad/internal/trace"
)

// fixtureFile writes a file of n generated lines, optionally prefixed by
// decorator lines starting at line decoStart.
func fixtureEngine(t *testing.T, lines []string) (*Engine, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	content := strings.Join(lines, "\n") + "\n"
	if err := afero.WriteFile(fs, "/src/app.go", []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return New(source.NewFileCache(fs)), fs
}

func bodyLines(n int) []string {
	lines := make([]string, n)
	for i := 0; i < n; i++ {
		lines[i] = fmt.Sprintf("body %d", i+1)
	}
	return lines
}

func frameAt(line, first, last int) *trace.StaticFrame {
	return &trace.StaticFrame{
		FileName:  "/src/app.go",
		LineNo:    line,
		Function:  "fn",
		SpanFirst: first,
		SpanLast:  last,
	}
}

func countEllipses(s string) int {
	n := 0
	for _, line := range strings.Split(s, "\n") {
		if line == "..." {
			n++
		}
	}
	return n
}

func countNumbered(s string) int {
	n := 0
	for _, line := range strings.Split(s, "\n") {
		if line != "..." && line != EOFMarker && line != "" {
			n++
		}
	}
	return n
}

func TestListAround(t *testing.T) {
	e, _ := fixtureEngine(t, bodyLines(10))
	f := frameAt(5, 1, 10)

	out, err := e.ListAround(f, 5, 4)
	if err != nil {
		t.Fatalf("ListAround unexpected error: %v", err)
	}
	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("rendered %d lines, expected 4:\n%s", len(lines), out)
	}
	if !strings.Contains(out, "->  body 5") {
		t.Errorf("executing line not flagged:\n%s", out)
	}
}

func TestListAround_EOF(t *testing.T) {
	e, _ := fixtureEngine(t, bodyLines(3))
	f := frameAt(2, 1, 3)

	out, err := e.ListAround(f, 50, 6)
	if err != nil {
		t.Fatalf("ListAround unexpected error: %v", err)
	}
	if !strings.HasSuffix(out, EOFMarker) {
		t.Errorf("expected trailing %s marker:\n%s", EOFMarker, out)
	}

	// A window overlapping the end carries real lines before the marker.
	out, err = e.ListAround(f, 3, 6)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "body 3") || !strings.Contains(out, EOFMarker) {
		t.Errorf("expected tail lines plus %s:\n%s", EOFMarker, out)
	}
}

func TestListFunction_IncludesDecorators(t *testing.T) {
	lines := []string{"@wrap", "@trace", "func fn() {", "\ta()", "\tb()", "}"}
	e, _ := fixtureEngine(t, lines)
	f := frameAt(4, 3, 6)

	out, err := e.ListFunction(f)
	if err != nil {
		t.Fatalf("ListFunction unexpected error: %v", err)
	}
	if !strings.Contains(out, "@wrap") || !strings.Contains(out, "@trace") {
		t.Errorf("decorators missing:\n%s", out)
	}
	if !strings.Contains(out, "->  \ta()") {
		t.Errorf("executing line not flagged:\n%s", out)
	}
	if countNumbered(out) != 6 {
		t.Errorf("rendered %d lines, expected the whole unit (6):\n%s", countNumbered(out), out)
	}
}

func TestSticky_FitsWithoutEllipsis(t *testing.T) {
	e, _ := fixtureEngine(t, bodyLines(6))
	f := frameAt(3, 1, 6)

	out, err := e.Sticky(f, 10)
	if err != nil {
		t.Fatal(err)
	}
	if countEllipses(out) != 0 {
		t.Errorf("unexpected ellipsis for a unit that fits:\n%s", out)
	}
	if countNumbered(out) != 6 {
		t.Errorf("rendered %d lines, expected 6:\n%s", countNumbered(out), out)
	}
}

func TestSticky_HeadWindowSingleEllipsis(t *testing.T) {
	// 20-line unit, 10 usable rows, executing line at unit-line 10: the
	// window includes the executing line, spans exactly 10 source rows,
	// and elides the tail behind a single ellipsis.
	e, _ := fixtureEngine(t, bodyLines(20))
	f := frameAt(10, 1, 20)

	out, err := e.Sticky(f, 10)
	if err != nil {
		t.Fatal(err)
	}
	if n := countNumbered(out); n != 10 {
		t.Errorf("window spans %d rows, expected 10:\n%s", n, out)
	}
	if n := countEllipses(out); n != 1 {
		t.Errorf("found %d ellipsis markers, expected exactly 1:\n%s", n, out)
	}
	if !strings.Contains(out, "->  body 10") {
		t.Errorf("executing line missing:\n%s", out)
	}
}

func TestSticky_TailWindow(t *testing.T) {
	e, _ := fixtureEngine(t, bodyLines(20))
	f := frameAt(19, 1, 20)

	out, err := e.Sticky(f, 6)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(out, "\n")
	if lines[0] != "..." {
		t.Errorf("expected leading ellipsis:\n%s", out)
	}
	if !strings.HasSuffix(out, "body 20") {
		t.Errorf("expected window to run to the unit's end:\n%s", out)
	}
	if !strings.Contains(out, "->  body 19") {
		t.Errorf("executing line missing:\n%s", out)
	}
}

func TestSticky_BothSidesElided(t *testing.T) {
	e, _ := fixtureEngine(t, bodyLines(40))
	f := frameAt(20, 1, 40)

	out, err := e.Sticky(f, 8)
	if err != nil {
		t.Fatal(err)
	}
	if n := countEllipses(out); n != 2 {
		t.Errorf("found %d ellipsis markers, expected 2:\n%s", n, out)
	}
	if n := countNumbered(out); n != 8 {
		t.Errorf("window spans %d rows, expected 8:\n%s", n, out)
	}
	if !strings.Contains(out, "->  body 20") {
		t.Errorf("executing line missing:\n%s", out)
	}
}

func TestSticky_DecoratorsPinned(t *testing.T) {
	lines := append([]string{"@wrap"}, bodyLines(20)...)
	e, _ := fixtureEngine(t, lines)
	// Unit body starts at line 2; executing near the end forces tail bias.
	f := frameAt(19, 2, 21)

	out, err := e.Sticky(f, 6)
	if err != nil {
		t.Fatal(err)
	}
	split := strings.Split(out, "\n")
	if !strings.HasSuffix(split[0], "@wrap") {
		t.Errorf("decorator not pinned at head:\n%s", out)
	}
	if !strings.Contains(out, "->  body 18") {
		t.Errorf("executing line missing:\n%s", out)
	}
}

func TestSticky_ManyDecoratorsSqueezed(t *testing.T) {
	deco := []string{"@d1", "@d2", "@d3", "@d4", "@d5", "@d6"}
	lines := append(append([]string{}, deco...), bodyLines(10)...)
	e, _ := fixtureEngine(t, lines)
	f := frameAt(15, 7, 16) // executing "body 9"

	out, err := e.Sticky(f, 6)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "@d1") || !strings.Contains(out, "@d6") {
		t.Errorf("expected first and last decorator kept:\n%s", out)
	}
	if strings.Contains(out, "@d3") {
		t.Errorf("middle decorators should be elided:\n%s", out)
	}
	if !strings.Contains(out, "->  body 9") {
		t.Errorf("executing line missing:\n%s", out)
	}
}

func TestSticky_Idempotent(t *testing.T) {
	e, _ := fixtureEngine(t, bodyLines(30))
	f := frameAt(15, 1, 30)

	first, err := e.Sticky(f, 8)
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.Sticky(f, 8)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("sticky output changed between identical calls:\n%s\n----\n%s", first, second)
	}
}

func TestRender_PicksUpFileEdits(t *testing.T) {
	e, fs := fixtureEngine(t, bodyLines(5))
	f := frameAt(2, 1, 5)

	out, err := e.ListAround(f, 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "body 2") {
		t.Fatalf("unexpected initial render:\n%s", out)
	}

	edited := strings.Join([]string{"body 1", "EDITED", "body 3", "body 4", "body 5"}, "\n") + "\n"
	if err := afero.WriteFile(fs, "/src/app.go", []byte(edited), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err = e.ListAround(f, 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "EDITED") {
		t.Errorf("render did not reflect on-disk edit:\n%s", out)
	}
}

type panickyValue struct{}

func (panickyValue) String() string { panic("no repr") }

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{name: "nil", value: nil, expected: "nil"},
		{name: "string", value: "x", expected: "x"},
		{name: "int", value: 42, expected: "42"},
		{name: "panicking stringer", value: panickyValue{}, expected: Unprintable},
		{name: "string mentioning a panic note", value: "saw (PANIC= once", expected: "saw (PANIC= once"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatValue(tt.value); got != tt.expected {
				t.Errorf("FormatValue() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestStickyException_MarksCallerLine(t *testing.T) {
	e, _ := fixtureEngine(t, bodyLines(8))
	f := frameAt(6, 1, 8)

	out, err := e.StickyException(f, 10, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, ">>  body 3") {
		t.Errorf("caller line not marked:\n%s", out)
	}
	if !strings.Contains(out, "->  body 6") {
		t.Errorf("executing line not flagged:\n%s", out)
	}
}
