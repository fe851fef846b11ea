package trace

// ResumeKind identifies how the debuggee should resume after a session's
// read-eval loop ends.
type ResumeKind int

const (
	// ResumeContinue resumes until the next breakpoint.
	ResumeContinue ResumeKind = iota
	// ResumeStep executes one line, stepping into calls.
	ResumeStep
	// ResumeNext executes one line, stepping over calls.
	ResumeNext
	// ResumeReturn runs until the current function returns.
	ResumeReturn
	// ResumeQuit abandons the debuggee.
	ResumeQuit
)

// String returns the resume kind name.
func (k ResumeKind) String() string {
	switch k {
	case ResumeContinue:
		return "continue"
	case ResumeStep:
		return "step"
	case ResumeNext:
		return "next"
	case ResumeReturn:
		return "return"
	case ResumeQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// ResumeReason is the typed result a session hands back to the tracer when
// its loop exits. It replaces exception-style unwinding: the loop returns
// exactly one of these, and nothing else terminates a session.
type ResumeReason struct {
	// Kind is the resume action.
	Kind ResumeKind

	// Line, when non-zero, asks the tracer to arm a temporary breakpoint
	// at this line before continuing ("continue 42" / "until 42").
	Line int
}

// Terminal reports whether a command result carries a resume reason.
// A nil reason keeps the loop running.
func (r *ResumeReason) Terminal() bool {
	return r != nil
}
