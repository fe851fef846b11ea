package session

import (
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/dshills/tracepad/internal/trace"
)

// Key identifies one active-session slot. Reuse is scoped strictly per
// (thread, class, home): two classes on the same thread keep separate
// sessions, and a changed home fingerprint invalidates reuse.
type Key struct {
	// Thread is the suspending thread's identity.
	Thread int64

	// Class is the debugger class identity.
	Class string

	// Home is an environment fingerprint namespacing persisted state.
	Home string
}

// KeyFor builds a key with the current home-directory fingerprint.
func KeyFor(thread int64, class string) Key {
	home, _ := os.UserHomeDir()
	return Key{Thread: thread, Class: class, Home: home}
}

// Registry is the process-wide table of active sessions, one per key. It
// also owns the input token serializing concurrently suspended threads on
// the shared input stream.
type Registry struct {
	mu     sync.Mutex
	active map[Key]*Session
	log    *zap.Logger

	// inputMu is the input-ownership token. A suspending thread holds it
	// for the whole of its read-eval loop.
	inputMu sync.Mutex
}

// NewRegistry creates an empty registry. A nil logger disables logging.
func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		active: make(map[Key]*Session),
		log:    log,
	}
}

// Obtain returns the session a suspension at key should attach to. With
// wantReuse, an existing active session for the exact key is returned
// unchanged, its watch list intact. Otherwise build constructs a fresh
// session, registered as active only when wantGlobal is set; a non-global
// session is never discoverable by later calls.
func (r *Registry) Obtain(key Key, wantGlobal, wantReuse bool, build func() *Session) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if wantReuse {
		if s, ok := r.active[key]; ok {
			r.log.Debug("session reused",
				zap.String("session", s.ID()),
				zap.Int64("thread", key.Thread),
				zap.String("class", key.Class))
			return s
		}
	}

	s := build()
	if wantGlobal {
		r.active[key] = s
	}
	r.log.Debug("session registered",
		zap.String("session", s.ID()),
		zap.Int64("thread", key.Thread),
		zap.String("class", key.Class),
		zap.Bool("global", wantGlobal))
	return s
}

// Active returns the active session for key, or nil.
func (r *Registry) Active(key Key) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active[key]
}

// Deactivate removes s from key's slot. A different session under the
// same key is left untouched.
func (r *Registry) Deactivate(key Key, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active[key] == s {
		delete(r.active, key)
	}
}

// Interact runs s.Interact while holding the registry's input token, so
// threads suspending concurrently block until the owning thread's loop
// releases the shared input stream.
func (r *Registry) Interact(s *Session, frame trace.Frame, event trace.EventKind, exc *trace.ExceptionInfo) trace.ResumeReason {
	r.inputMu.Lock()
	defer r.inputMu.Unlock()
	return s.Interact(frame, event, exc)
}
