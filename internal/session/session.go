package session

import "sync/atomic"

// Session is one active document context: the reference of the uploaded
// document and the log of turns asked against it. Sessions are not persisted;
// closing one discards its log for good.
type Session struct {
	DocumentRef string

	log    *Log
	closed atomic.Bool
}

// New creates a session for the given document reference with an empty log.
func New(documentRef string, opts ...Option) *Session {
	return &Session{
		DocumentRef: documentRef,
		log:         NewLog(opts...),
	}
}

// Log returns the session's message log.
func (s *Session) Log() *Log { return s.log }

// Close marks the session discarded. A response that arrives for a closed
// session is dropped rather than appended, so a torn-down view can never be
// written to by a late network reply. Close is idempotent.
func (s *Session) Close() { s.closed.Store(true) }

// Closed reports whether the session has been discarded.
func (s *Session) Closed() bool { return s.closed.Load() }
