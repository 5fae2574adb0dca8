package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// IDSource produces unique turn identifiers.
type IDSource func() string

// Option configures a Log (and the Session that owns it).
type Option func(*Log)

// WithIDSource overrides the identifier generator, e.g. for deterministic ids
// in tests.
func WithIDSource(fn IDSource) Option {
	return func(l *Log) { l.newID = fn }
}

// WithClock overrides the wall clock used to stamp turns.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// Log is the ordered, append-only record of conversation turns. Appends come
// from the submission pipeline's goroutine while snapshots are read on the UI
// loop, so access is guarded by a RWMutex.
type Log struct {
	mu    sync.RWMutex
	turns []Turn
	newID IDSource
	now   func() time.Time
}

// NewLog returns an empty log with uuid identifiers and the system clock.
func NewLog(opts ...Option) *Log {
	l := &Log{
		turns: make([]Turn, 0, 16),
		newID: uuid.NewString,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append creates a turn and adds it to the end of the log, returning the
// stored turn. Only assistant turns may be appended revealing; the flag is
// forced off for user turns.
func (l *Log) Append(role Role, content string, revealing bool) Turn {
	if role != RoleAssistant {
		revealing = false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	t := Turn{
		ID:        l.newID(),
		Role:      role,
		Content:   content,
		CreatedAt: l.now(),
		Revealing: revealing,
	}
	l.turns = append(l.turns, t)
	return t
}

// MarkRevealComplete flips the named turn's Revealing flag to false. Unknown
// ids and turns that already completed are silently ignored: reveal completion
// callbacks can race with a session teardown, and that race must never fail.
func (l *Log) MarkRevealComplete(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.turns {
		if l.turns[i].ID == id {
			l.turns[i].Revealing = false
			return
		}
	}
}

// Snapshot returns a copy of the log in conversation order.
func (l *Log) Snapshot() []Turn {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Turn, len(l.turns))
	copy(out, l.turns)
	return out
}

// Len reports the number of turns in the log.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.turns)
}
