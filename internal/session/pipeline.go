package session

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"askpdf/internal/notify"
)

// QuestionService is the remote operation the pipeline depends on. The real
// implementation lives in internal/service; tests substitute fakes.
type QuestionService interface {
	Ask(ctx context.Context, documentRef, question string) (string, error)
}

// State is the submission pipeline's admission state.
type State int32

const (
	StateIdle State = iota
	StateSubmitting
)

// FallbackAnswer is appended in place of an answer when the service call
// fails. The fallback turn is revealed like any other answer.
const FallbackAnswer = "I'm sorry, I couldn't process your question. Please try again."

var (
	// ErrEmptyQuestion rejects blank input before any state change or I/O.
	ErrEmptyQuestion = errors.New("question is empty")
	// ErrBusy rejects a submission while another is in flight.
	ErrBusy = errors.New("a submission is already in flight")
	// ErrSessionClosed means the session was discarded before the submission
	// could complete; nothing was or will be appended for it.
	ErrSessionClosed = errors.New("session is closed")
)

// Pipeline orchestrates one question/answer round trip against a session. A
// compare-and-swap on the state field is the sole admission control: at most
// one submission runs at a time, which in turn guarantees that user/assistant
// turn pairs are never interleaved. Reveal completion is decoupled from the
// pipeline and never blocks the next submission.
type Pipeline struct {
	sess     *Session
	svc      QuestionService
	notifier notify.Notifier
	state    atomic.Int32
}

// NewPipeline binds a pipeline to a session. A nil notifier discards
// notifications.
func NewPipeline(sess *Session, svc QuestionService, notifier notify.Notifier) *Pipeline {
	if notifier == nil {
		notifier = notify.Discard
	}
	return &Pipeline{sess: sess, svc: svc, notifier: notifier}
}

// State returns the current admission state.
func (p *Pipeline) State() State {
	return State(p.state.Load())
}

// Session returns the session this pipeline submits against.
func (p *Pipeline) Session() *Session { return p.sess }

// Submit runs one submission to completion and returns the assistant turn
// that was appended. The user's turn is appended before the service call so
// the question stays visible whatever the outcome. A failed service call does
// not surface as an error: it appends a revealing fallback turn, emits a
// failure notification, and the pipeline returns to Idle. The returned error
// is non-nil only when nothing happened at all: blank input, a submission
// already in flight, or a session closed before the response could be applied.
func (p *Pipeline) Submit(ctx context.Context, question string) (Turn, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Turn{}, ErrEmptyQuestion
	}
	if !p.state.CompareAndSwap(int32(StateIdle), int32(StateSubmitting)) {
		return Turn{}, ErrBusy
	}
	defer p.state.Store(int32(StateIdle))

	if p.sess.Closed() {
		return Turn{}, ErrSessionClosed
	}
	p.sess.Log().Append(RoleUser, question, false)

	answer, err := p.svc.Ask(ctx, p.sess.DocumentRef, question)

	// Stale-update guard: the session may have been discarded while the
	// request was in flight. The response is simply not acted upon.
	if p.sess.Closed() {
		return Turn{}, ErrSessionClosed
	}

	if err != nil {
		turn := p.sess.Log().Append(RoleAssistant, FallbackAnswer, true)
		p.notifier.Notify(notify.Notification{Level: notify.LevelError, Message: "Failed to process question"})
		return turn, nil
	}

	turn := p.sess.Log().Append(RoleAssistant, answer, true)
	p.notifier.Notify(notify.Notification{Level: notify.LevelSuccess, Message: "Answer ready!"})
	return turn, nil
}
