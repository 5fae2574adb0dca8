// Package reveal implements the typewriter effect: the incremental,
// time-paced disclosure of an answer string that is already fully known. The
// sequencer works on a plain text value and two callbacks; it knows nothing
// about turns, logs, or the network.
package reveal

import (
	"sync"
	"time"
)

// Sequencer emits increasing rune-boundary prefixes of a text, one per
// scheduler tick, then signals completion exactly once. At most one run is
// active at a time.
type Sequencer struct {
	mu    sync.Mutex
	sched Scheduler
	cur   *run
}

type run struct {
	text       []rune
	raw        string
	interval   time.Duration
	onStep     func(prefix string)
	onComplete func()
	idx        int
	done       bool
	cancel     func()
}

// NewSequencer creates a sequencer. A nil scheduler selects the timer-backed
// production scheduler.
func NewSequencer(sched Scheduler) *Sequencer {
	if sched == nil {
		sched = NewTimerScheduler()
	}
	return &Sequencer{sched: sched}
}

// Start begins emitting prefixes of text every interval. onStep receives each
// prefix (text[:1] through the full text); onComplete fires once, after the
// final prefix, and never fires if the run is cancelled first. Starting while
// a run with different text is active cancels that run and restarts from the
// empty prefix — there is no partial carry-over when the underlying answer
// changes. Starting with the text already mid-reveal is a no-op. Empty text
// completes immediately, before Start returns.
func (s *Sequencer) Start(text string, interval time.Duration, onStep func(prefix string), onComplete func()) {
	s.mu.Lock()
	if s.cur != nil && !s.cur.done && s.cur.raw == text {
		s.mu.Unlock()
		return
	}
	s.cancelLocked()

	if text == "" {
		s.mu.Unlock()
		if onComplete != nil {
			onComplete()
		}
		return
	}

	r := &run{
		text:       []rune(text),
		raw:        text,
		interval:   interval,
		onStep:     onStep,
		onComplete: onComplete,
	}
	s.cur = r
	s.mu.Unlock()

	s.schedule(r)
}

// Cancel stops the active run, if any: no further prefixes are emitted and
// onComplete will not fire. Safe to call repeatedly and after completion.
func (s *Sequencer) Cancel() {
	s.mu.Lock()
	s.cancelLocked()
	s.mu.Unlock()
}

// Active reports whether a run is currently emitting.
func (s *Sequencer) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur != nil && !s.cur.done
}

func (s *Sequencer) cancelLocked() {
	if s.cur == nil {
		return
	}
	s.cur.done = true
	if s.cur.cancel != nil {
		s.cur.cancel()
	}
	s.cur = nil
}

func (s *Sequencer) schedule(r *run) {
	s.mu.Lock()
	if r != s.cur || r.done {
		s.mu.Unlock()
		return
	}
	r.cancel = s.sched.AfterFunc(r.interval, func() { s.step(r) })
	s.mu.Unlock()
}

func (s *Sequencer) step(r *run) {
	s.mu.Lock()
	if r != s.cur || r.done {
		// Superseded or cancelled between the tick firing and us running.
		s.mu.Unlock()
		return
	}
	r.idx++
	prefix := string(r.text[:r.idx])
	last := r.idx == len(r.text)
	if last {
		r.done = true
		s.cur = nil
	}
	onStep, onComplete := r.onStep, r.onComplete
	s.mu.Unlock()

	if onStep != nil {
		onStep(prefix)
	}
	if last {
		if onComplete != nil {
			onComplete()
		}
		return
	}
	s.schedule(r)
}
