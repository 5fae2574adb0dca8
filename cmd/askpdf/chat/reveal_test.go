package chat

import (
	"testing"
	"time"

	"askpdf/internal/session"
)

func revealingCount(turns []session.Turn) int {
	n := 0
	for _, t := range turns {
		if t.Revealing {
			n++
		}
	}
	return n
}

func TestSupersededRevealSettlesPriorTurn(t *testing.T) {
	m := testModel(t)
	m.sess = session.New("report")
	log := m.sess.Log()

	turnA := log.Append(session.RoleAssistant, "first answer, still typing", true)
	m.startReveal(turnA)

	// A second answer can arrive while the first is still revealing. The
	// first turn must settle when the new reveal takes over.
	turnB := log.Append(session.RoleAssistant, "second answer", true)
	m.startReveal(turnB)
	defer m.sequencer.Cancel()

	for _, turn := range log.Snapshot() {
		if turn.ID == turnA.ID && turn.Revealing {
			t.Error("superseded turn still revealing after a new reveal started")
		}
	}
	if n := revealingCount(log.Snapshot()); n > 1 {
		t.Errorf("%d turns revealing at once, want at most 1", n)
	}
	if m.revealTurnID != turnB.ID {
		t.Errorf("reveal target = %q, want %q", m.revealTurnID, turnB.ID)
	}
}

func TestRevealCompletionSurvivesFullEventChannel(t *testing.T) {
	m := testModel(t)
	m.sess = session.New("report")
	log := m.sess.Log()

	// Saturate the event channel so step events get dropped. The
	// completion event must still come through once the listener drains.
	for i := 0; i < cap(m.revealCh); i++ {
		m.revealCh <- revealEvent{turnID: "noise"}
	}

	turn := log.Append(session.RoleAssistant, "hi", true)
	m.startReveal(turn)
	defer m.sequencer.Cancel()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-m.revealCh:
			if ev.turnID == turn.ID && ev.done {
				if log.Snapshot()[0].Revealing {
					t.Error("log not marked complete before the done event")
				}
				return
			}
		case <-deadline:
			t.Fatal("done event never delivered")
		}
	}
}
