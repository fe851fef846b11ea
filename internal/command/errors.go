package command

import "errors"

// ErrRecursionGuard reports an attempt to open a nested session on a frame
// that is already inside the debugger's own call path. The router degrades
// it to a warning and evaluates non-recursively.
var ErrRecursionGuard = errors.New("command: frame is already being debugged")

// ErrNoEditor reports that "edit" could not resolve an editor from the
// configured option or $EDITOR.
var ErrNoEditor = errors.New("command: no editor configured and $EDITOR is unset")

// ErrNoRecursion reports that the session was wired without a nested
// session constructor.
var ErrNoRecursion = errors.New("command: recursive debugging is not available")
