// Package trace defines the contracts between the session engine and the
// external execution tracer.
//
// The tracer owns program execution: it suspends the debuggee, hands the
// engine a chain of activation records (Frame), and consumes the
// ResumeReason the interactive loop returns. The engine only ever borrows
// frame handles; it never manages their lifetime or identity.
package trace
