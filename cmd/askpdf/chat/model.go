// Package chat implements the interactive terminal interface for
// conversing with an uploaded PDF document.
package chat

import (
	"os"
	"time"

	"askpdf/cmd/askpdf/ui"
	"askpdf/internal/config"
	"askpdf/internal/logging"
	"askpdf/internal/notify"
	"askpdf/internal/reveal"
	"askpdf/internal/service"
	"askpdf/internal/session"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

// ViewMode determines which component is focused/active.
type ViewMode int

const (
	PickerView ViewMode = iota
	ChatView
)

// revealEvent carries a typewriter step or completion for one turn.
type revealEvent struct {
	turnID string
	prefix string
	done   bool
}

// =============================================================================
// MESSAGES
// =============================================================================

// uploadedMsg signals that a document was uploaded and a session started.
type uploadedMsg struct {
	sess     *session.Session
	pipeline *session.Pipeline
	message  string
}

// uploadFailedMsg signals that the upload did not complete.
type uploadFailedMsg struct {
	filename string
	err      error
}

// answerMsg signals that a submission finished and the log gained an
// assistant turn.
type answerMsg struct {
	turn session.Turn
}

// submitSkippedMsg signals that a submission was rejected before it ran.
type submitSkippedMsg struct {
	err error
}

// revealMsg delivers the next typewriter event from the sequencer.
type revealMsg revealEvent

// noticeMsg delivers a transient notification for the status line.
type noticeMsg notify.Notification

// clearNoticeMsg clears the status line after a delay.
type clearNoticeMsg struct{}

// exportedMsg signals that the transcript was written to disk.
type exportedMsg struct {
	filename string
}

// exportFailedMsg signals that the export did not complete.
type exportFailedMsg struct {
	err error
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the main model for the interactive chat interface.
type Model struct {
	// UI components
	textinput  textinput.Model
	viewport   viewport.Model
	spinner    spinner.Model
	filepicker filepicker.Model
	styles     ui.Styles
	renderer   *glamour.TermRenderer

	viewMode ViewMode

	// Backend
	client    *service.Client
	sess      *session.Session
	pipeline  *session.Pipeline
	sequencer *reveal.Sequencer
	cfg       *config.UserConfig

	// Reveal state for the turn currently being typed out
	revealTurnID string
	revealPrefix string

	// Event bridges out of goroutine callbacks into the update loop
	revealCh chan revealEvent
	noticeCh chan notify.Notification

	// State
	isLoading bool
	notice    *notify.Notification
	width     int
	height    int
	ready     bool
}

// InitChat creates a new chat model from the loaded user configuration.
func InitChat(cfg *config.UserConfig) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask a question about the document..."
	ti.Prompt = "| "
	ti.CharLimit = 4096
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	fp := filepicker.New()
	fp.AllowedTypes = []string{".pdf"}
	fp.ShowHidden = false
	if wd, err := os.Getwd(); err == nil {
		fp.CurrentDirectory = wd
	}

	styles := ui.NewStyles(ui.ThemeByName(cfg.Theme))
	sp.Style = styles.Spinner

	vp := viewport.New(80, 20)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		renderer = nil
	}

	m := Model{
		textinput:  ti,
		viewport:   vp,
		spinner:    sp,
		filepicker: fp,
		styles:     styles,
		renderer:   renderer,
		viewMode:   PickerView,
		client:     service.NewClient(cfg.ServerURL, time.Duration(cfg.TimeoutSecs)*time.Second),
		cfg:        cfg,
		sequencer:  reveal.NewSequencer(nil),
		revealCh:   make(chan revealEvent, 256),
		noticeCh:   make(chan notify.Notification, 16),
	}
	return m
}

// Init starts the background listeners and component tickers.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.filepicker.Init(),
		m.waitForReveal(),
		m.waitForNotice(),
	)
}

// notifier returns a Notifier that forwards into the update loop. Late
// notifications after quit are dropped rather than blocking the sender.
func (m Model) notifier() notify.Notifier {
	ch := m.noticeCh
	return notify.Func(func(n notify.Notification) {
		select {
		case ch <- n:
		default:
		}
	})
}

// startReveal begins the typewriter for an assistant turn. Step and
// completion callbacks fire on timer goroutines and are bridged through
// revealCh back into Update.
func (m *Model) startReveal(turn session.Turn) {
	if m.sess == nil {
		return
	}
	log := m.sess.Log()
	// A new answer supersedes any reveal still in progress. Starting the
	// sequencer below cancels that run without firing its completion
	// callback, so the superseded turn is settled here: its flag must
	// still flip, and only one turn may be mid-reveal at a time.
	if m.revealTurnID != "" {
		log.MarkRevealComplete(m.revealTurnID)
	}
	ch := m.revealCh
	id := turn.ID
	m.revealTurnID = id
	m.revealPrefix = ""
	m.sequencer.Start(turn.Content, time.Duration(m.cfg.TypeIntervalMs)*time.Millisecond,
		func(prefix string) {
			select {
			case ch <- revealEvent{turnID: id, prefix: prefix}:
			default:
			}
		},
		func() {
			log.MarkRevealComplete(id)
			// Unlike step events, completion must not be lost: a dropped
			// done event would leave the prefix and cursor frozen on
			// screen. The send blocks until the listener catches up.
			ch <- revealEvent{turnID: id, done: true}
		},
	)
}

// waitForReveal blocks on the reveal channel and re-arms after each event.
func (m Model) waitForReveal() tea.Cmd {
	ch := m.revealCh
	return func() tea.Msg {
		return revealMsg(<-ch)
	}
}

// waitForNotice blocks on the notification channel and re-arms after each
// event.
func (m Model) waitForNotice() tea.Cmd {
	ch := m.noticeCh
	return func() tea.Msg {
		return noticeMsg(<-ch)
	}
}

// clearNoticeAfter schedules the status line to clear.
func clearNoticeAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearNoticeMsg{}
	})
}

// closeSession tears down the active session and cancels any reveal in
// progress. Safe to call when no session is active.
func (m *Model) closeSession() {
	m.sequencer.Cancel()
	if m.sess != nil {
		m.sess.Close()
		logging.Session("session closed for %q", m.sess.DocumentRef)
	}
	m.sess = nil
	m.pipeline = nil
	m.revealTurnID = ""
	m.revealPrefix = ""
	m.isLoading = false
}
