// Package notify defines the transient notification surface the conversation
// core reports through. The presentation layer owns how notifications are
// shown; the core only emits them.
package notify

import "sync"

// Level classifies a notification for presentation purposes.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

// String returns the lowercase name of the level.
func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notification is a single transient message for the user.
type Notification struct {
	Level   Level
	Message string
}

// Notifier receives notifications emitted by the core.
type Notifier interface {
	Notify(n Notification)
}

// Func adapts a plain function to the Notifier interface.
type Func func(Notification)

func (f Func) Notify(n Notification) { f(n) }

// Discard drops all notifications.
var Discard Notifier = Func(func(Notification) {})

// Recorder captures notifications for inspection in tests.
type Recorder struct {
	mu    sync.Mutex
	notes []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

// All returns a copy of every notification received so far.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.notes))
	copy(out, r.notes)
	return out
}
