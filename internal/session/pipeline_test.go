package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"askpdf/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeService scripts responses for the pipeline under test.
type fakeService struct {
	mu      sync.Mutex
	answers []string
	err     error
	block   chan struct{} // when non-nil, Ask waits until closed
	asked   []string
}

func (f *fakeService) Ask(ctx context.Context, documentRef, question string) (string, error) {
	f.mu.Lock()
	f.asked = append(f.asked, question)
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	answer := "default answer"
	if len(f.answers) > 0 {
		answer = f.answers[0]
		f.answers = f.answers[1:]
	}
	return answer, nil
}

func TestSubmitAppendsUserAndAssistantPair(t *testing.T) {
	sess := New("report")
	svc := &fakeService{answers: []string{"the answer"}}
	rec := &notify.Recorder{}
	pipe := NewPipeline(sess, svc, rec)

	turn, err := pipe.Submit(context.Background(), "what is this?")
	require.NoError(t, err)

	turns := sess.Log().Snapshot()
	require.Len(t, turns, 2)
	assert.Equal(t, RoleUser, turns[0].Role)
	assert.Equal(t, "what is this?", turns[0].Content)
	assert.Equal(t, RoleAssistant, turns[1].Role)
	assert.Equal(t, "the answer", turns[1].Content)
	assert.True(t, turns[1].Revealing, "answer should start revealing")
	assert.Equal(t, turns[1].ID, turn.ID)

	require.Len(t, rec.All(), 1)
	assert.Equal(t, notify.LevelSuccess, rec.All()[0].Level)
	assert.Equal(t, StateIdle, pipe.State())
}

func TestSubmitTrimsQuestionBeforeSending(t *testing.T) {
	sess := New("report")
	svc := &fakeService{}
	pipe := NewPipeline(sess, svc, nil)

	_, err := pipe.Submit(context.Background(), "  padded question \n")
	require.NoError(t, err)
	assert.Equal(t, []string{"padded question"}, svc.asked)
	assert.Equal(t, "padded question", sess.Log().Snapshot()[0].Content)
}

func TestSubmitRejectsEmptyQuestion(t *testing.T) {
	sess := New("report")
	pipe := NewPipeline(sess, &fakeService{}, nil)

	for _, q := range []string{"", "   ", "\t\n"} {
		_, err := pipe.Submit(context.Background(), q)
		assert.ErrorIs(t, err, ErrEmptyQuestion, "input %q", q)
	}
	assert.Equal(t, 0, sess.Log().Len(), "rejected input must not touch the log")
}

func TestSubmitServiceFailureAppendsFallback(t *testing.T) {
	sess := New("report")
	svc := &fakeService{err: errors.New("connection refused")}
	rec := &notify.Recorder{}
	pipe := NewPipeline(sess, svc, rec)

	turn, err := pipe.Submit(context.Background(), "doomed question")
	require.NoError(t, err, "service failure is absorbed, not surfaced")

	turns := sess.Log().Snapshot()
	require.Len(t, turns, 2, "question and fallback must both be recorded")
	assert.Equal(t, "doomed question", turns[0].Content)
	assert.Equal(t, FallbackAnswer, turns[1].Content)
	assert.True(t, turns[1].Revealing, "fallback reveals like a normal answer")
	assert.Equal(t, turns[1].ID, turn.ID)

	require.Len(t, rec.All(), 1)
	assert.Equal(t, notify.LevelError, rec.All()[0].Level)
	assert.Equal(t, StateIdle, pipe.State(), "pipeline must recover to Idle after failure")
}

func TestSubmitRejectsConcurrentSubmission(t *testing.T) {
	sess := New("report")
	block := make(chan struct{})
	svc := &fakeService{block: block, answers: []string{"late answer"}}
	pipe := NewPipeline(sess, svc, nil)

	done := make(chan error, 1)
	go func() {
		_, err := pipe.Submit(context.Background(), "first")
		done <- err
	}()

	// Wait for the first submission to reach the service call.
	deadline := time.After(2 * time.Second)
	for pipe.State() != StateSubmitting {
		select {
		case <-deadline:
			t.Fatal("first submission never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	_, err := pipe.Submit(context.Background(), "second")
	assert.ErrorIs(t, err, ErrBusy)

	close(block)
	require.NoError(t, <-done)

	turns := sess.Log().Snapshot()
	require.Len(t, turns, 2, "rejected submission must leave no trace")
	assert.Equal(t, "first", turns[0].Content)
	assert.Equal(t, "late answer", turns[1].Content)

	// The pipeline is available again once the first submission settles.
	_, err = pipe.Submit(context.Background(), "third")
	assert.NoError(t, err)
}

func TestSubmitOnClosedSession(t *testing.T) {
	sess := New("report")
	pipe := NewPipeline(sess, &fakeService{}, nil)
	sess.Close()

	_, err := pipe.Submit(context.Background(), "anyone there?")
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.Equal(t, 0, sess.Log().Len())
	assert.Equal(t, StateIdle, pipe.State())
}

func TestSubmitDropsResponseForSessionClosedMidFlight(t *testing.T) {
	sess := New("report")
	block := make(chan struct{})
	svc := &fakeService{block: block, answers: []string{"stale answer"}}
	pipe := NewPipeline(sess, svc, nil)

	done := make(chan error, 1)
	go func() {
		_, err := pipe.Submit(context.Background(), "question")
		done <- err
	}()

	deadline := time.After(2 * time.Second)
	for pipe.State() != StateSubmitting {
		select {
		case <-deadline:
			t.Fatal("submission never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	// Close the session while the request is in flight, then release it.
	sess.Close()
	close(block)

	assert.ErrorIs(t, <-done, ErrSessionClosed)

	turns := sess.Log().Snapshot()
	require.Len(t, turns, 1, "stale answer must not be appended")
	assert.Equal(t, RoleUser, turns[0].Role)
}
