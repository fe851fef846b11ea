package render

import "fmt"

// Error wraps a source retrieval failure during rendering.
type Error struct {
	// Path is the file being rendered.
	Path string

	// Err is the underlying failure.
	Err error
}

// Error returns the render diagnostic.
func (e *Error) Error() string {
	return fmt.Sprintf("render %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }
