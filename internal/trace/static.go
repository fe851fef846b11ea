package trace

// StaticFrame is a struct-backed Frame implementation. The real tracer
// supplies live frames; StaticFrame exists for tests and for demo harnesses
// that replay a recorded suspension.
type StaticFrame struct {
	// FileName is the source file path.
	FileName string

	// LineNo is the executing line.
	LineNo int

	// Function is the executing function name.
	Function string

	// SpanFirst and SpanLast delimit the function's source lines.
	SpanFirst int
	SpanLast  int

	// Vars is the local namespace.
	Vars map[string]any

	// Hide is the explicit tracer hide marker.
	Hide bool

	// Mod is the owning module name.
	Mod string

	// Boundary marks a library/framework boundary frame.
	Boundary bool

	caller Frame
}

// Chain links frames outermost-first and returns the innermost frame,
// which is the natural starting frame for a stack build.
func Chain(frames ...*StaticFrame) *StaticFrame {
	for i := 1; i < len(frames); i++ {
		frames[i].caller = frames[i-1]
	}
	if len(frames) == 0 {
		return nil
	}
	return frames[len(frames)-1]
}

// Caller returns the calling frame, or nil at the root.
func (f *StaticFrame) Caller() Frame {
	if f.caller == nil {
		return nil
	}
	return f.caller
}

// File returns the source file path.
func (f *StaticFrame) File() string { return f.FileName }

// Line returns the executing line.
func (f *StaticFrame) Line() int { return f.LineNo }

// FuncName returns the executing function name.
func (f *StaticFrame) FuncName() string { return f.Function }

// FuncSpan returns the function's first and last source line.
func (f *StaticFrame) FuncSpan() (int, int) { return f.SpanFirst, f.SpanLast }

// Locals returns the frame's local variables.
func (f *StaticFrame) Locals() map[string]any {
	if f.Vars == nil {
		f.Vars = make(map[string]any)
	}
	return f.Vars
}

// SetLocal assigns a local variable.
func (f *StaticFrame) SetLocal(name string, value any) error {
	f.Locals()[name] = value
	return nil
}

// HideMarked reports the explicit hide marker.
func (f *StaticFrame) HideMarked() bool { return f.Hide }

// Module returns the owning module name.
func (f *StaticFrame) Module() string { return f.Mod }

// LibraryBoundary reports the library boundary marker.
func (f *StaticFrame) LibraryBoundary() bool { return f.Boundary }
