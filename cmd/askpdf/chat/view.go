package chat

import (
	"strings"

	"askpdf/internal/notify"
	"askpdf/internal/session"
)

const revealCursor = "▌"

// View renders the full interface.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.viewMode == PickerView {
		return m.pickerView()
	}
	return m.chatView()
}

func (m Model) pickerView() string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render("Chat with PDF"))
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("Select a PDF to upload:"))
	b.WriteString("\n\n")
	if m.isLoading {
		b.WriteString(m.spinner.View())
		b.WriteString(m.styles.Muted.Render(" Uploading..."))
		b.WriteString("\n\n")
	}
	b.WriteString(m.styles.Content.Render(m.filepicker.View()))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString(m.styles.Footer.Render("enter: select • ctrl+c: quit"))
	return b.String()
}

func (m Model) chatView() string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render("Chat with PDF: " + m.sess.DocumentRef))
	b.WriteString("\n")
	b.WriteString(m.styles.Content.Render(m.viewport.View()))
	b.WriteString("\n")
	b.WriteString(m.statusLine())

	if m.isLoading {
		b.WriteString(m.spinner.View())
		b.WriteString(m.styles.Muted.Render(" Analyzing document..."))
		b.WriteString("\n")
	}

	b.WriteString(m.textinput.View())
	b.WriteString("\n")
	b.WriteString(m.styles.Footer.Render("enter: ask • ctrl+e: export • esc: new pdf • ctrl+c: quit"))
	return b.String()
}

// statusLine renders the transient notification, or "" when none is active.
func (m Model) statusLine() string {
	if m.notice == nil {
		return ""
	}
	style := m.styles.Info
	switch m.notice.Level {
	case notify.LevelSuccess:
		style = m.styles.Success
	case notify.LevelError:
		style = m.styles.Error
	}
	return style.Render(m.notice.Message) + "\n"
}

// renderHistory formats every turn in the log. The turn currently being
// revealed shows only its visible prefix with a cursor glyph; settled
// assistant turns render as markdown.
func (m Model) renderHistory() string {
	turns := m.sess.Log().Snapshot()
	if len(turns) == 0 {
		return m.welcomeContent()
	}

	var b strings.Builder
	for _, t := range turns {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		switch t.Role {
		case session.RoleUser:
			b.WriteString(m.styles.Prompt.Render("You"))
			b.WriteString("\n")
			b.WriteString(m.styles.UserInput.Render(t.Content))
			b.WriteString("\n")
		case session.RoleAssistant:
			b.WriteString(m.styles.Title.Render("AI Assistant"))
			b.WriteString("\n")
			if t.ID == m.revealTurnID {
				b.WriteString(m.revealPrefix + revealCursor)
				b.WriteString("\n")
			} else {
				b.WriteString(m.renderMarkdown(t.Content))
			}
		}
	}
	return b.String()
}

// welcomeContent shows suggested questions before the first exchange.
func (m Model) welcomeContent() string {
	var b strings.Builder
	b.WriteString(m.styles.Bold.Render("Your PDF is ready. Try asking:"))
	b.WriteString("\n\n")
	for _, q := range suggestedQuestions() {
		b.WriteString(m.styles.Muted.Render("  • " + q))
		b.WriteString("\n")
	}
	return b.String()
}

// renderMarkdown renders content through glamour, falling back to plain
// text if the renderer is unavailable or panics on malformed input.
func (m Model) renderMarkdown(content string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = content + "\n"
		}
	}()
	if m.renderer == nil {
		return content + "\n"
	}
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return content + "\n"
	}
	return strings.TrimRight(rendered, "\n") + "\n"
}
