package reveal

import "time"

// Scheduler abstracts one-shot timer creation so the sequencer's pacing can
// be stepped deterministically in tests instead of depending on ambient
// timers. AfterFunc returns a cancel function that stops the pending call;
// cancelling after the callback ran is a no-op.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (cancel func())
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// NewTimerScheduler returns the production scheduler backed by time.AfterFunc.
func NewTimerScheduler() Scheduler { return timerScheduler{} }
