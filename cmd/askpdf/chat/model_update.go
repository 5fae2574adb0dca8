package chat

import (
	"strings"
	"time"

	"askpdf/internal/notify"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

const noticeDuration = 4 * time.Second

// Update handles all incoming messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.closeSession()
			return m, tea.Quit

		case "esc":
			if m.viewMode == ChatView {
				m.closeSession()
				m.viewMode = PickerView
				m.notice = nil
				return m, nil
			}

		case "ctrl+e":
			if m.viewMode == ChatView && m.sess != nil {
				return m, m.exportTranscript()
			}

		case "enter":
			if m.viewMode == ChatView {
				question := strings.TrimSpace(m.textinput.Value())
				if question == "" {
					return m, nil
				}
				m.textinput.Reset()
				m.isLoading = true
				m.refreshContent()
				return m, tea.Batch(m.submitQuestion(question), m.spinner.Tick)
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.refreshContent()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.isLoading {
			cmds = append(cmds, cmd)
		}

	case uploadedMsg:
		m.sess = msg.sess
		m.pipeline = msg.pipeline
		m.viewMode = ChatView
		m.isLoading = false
		m.notice = &notify.Notification{Level: notify.LevelSuccess, Message: msg.message}
		m.refreshContent()
		return m, tea.Batch(clearNoticeAfter(noticeDuration), m.textinput.Focus())

	case uploadFailedMsg:
		m.isLoading = false
		m.notice = &notify.Notification{Level: notify.LevelError, Message: "Upload failed: " + msg.err.Error()}
		return m, clearNoticeAfter(noticeDuration)

	case answerMsg:
		m.isLoading = false
		if msg.turn.Revealing {
			m.startReveal(msg.turn)
		}
		m.refreshContent()

	case submitSkippedMsg:
		m.isLoading = false
		if text, level := skipMessage(msg.err); text != "" {
			m.notice = &notify.Notification{Level: level, Message: text}
			cmds = append(cmds, clearNoticeAfter(noticeDuration))
		}
		m.refreshContent()

	case revealMsg:
		if msg.turnID == m.revealTurnID {
			if msg.done {
				m.revealTurnID = ""
				m.revealPrefix = ""
			} else {
				m.revealPrefix = msg.prefix
			}
			m.refreshContent()
		}
		cmds = append(cmds, m.waitForReveal())

	case noticeMsg:
		n := notify.Notification(msg)
		m.notice = &n
		cmds = append(cmds, m.waitForNotice(), clearNoticeAfter(noticeDuration))

	case clearNoticeMsg:
		m.notice = nil

	case exportedMsg:
		m.notice = &notify.Notification{Level: notify.LevelSuccess, Message: "Transcript saved to " + msg.filename}
		return m, clearNoticeAfter(noticeDuration)

	case exportFailedMsg:
		m.notice = &notify.Notification{Level: notify.LevelError, Message: "Export failed: " + msg.err.Error()}
		return m, clearNoticeAfter(noticeDuration)
	}

	switch m.viewMode {
	case PickerView:
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)
		cmds = append(cmds, cmd)

		if ok, path := m.filepicker.DidSelectFile(msg); ok {
			m.isLoading = true
			cmds = append(cmds, m.uploadDocument(path), m.spinner.Tick)
		}

	case ChatView:
		var tiCmd, vpCmd tea.Cmd
		m.textinput, tiCmd = m.textinput.Update(msg)
		m.viewport, vpCmd = m.viewport.Update(msg)
		cmds = append(cmds, tiCmd, vpCmd)
	}

	return m, tea.Batch(cmds...)
}

// resize fits the components to the terminal and rebuilds the markdown
// renderer at the new wrap width.
func (m *Model) resize() {
	contentWidth := m.width - 2
	if contentWidth < 20 {
		contentWidth = 20
	}
	contentHeight := m.height - 6
	if contentHeight < 3 {
		contentHeight = 3
	}

	m.viewport.Width = contentWidth
	m.viewport.Height = contentHeight
	m.textinput.Width = contentWidth - 4
	m.filepicker.Height = contentHeight

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(contentWidth),
	)
	if err == nil {
		m.renderer = renderer
	}
}

// refreshContent re-renders the conversation into the viewport and keeps it
// pinned to the bottom.
func (m *Model) refreshContent() {
	if m.viewMode != ChatView || m.sess == nil {
		return
	}
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}
