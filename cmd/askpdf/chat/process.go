package chat

import (
	"context"
	"errors"
	"os"
	"time"

	"askpdf/internal/export"
	"askpdf/internal/logging"
	"askpdf/internal/notify"
	"askpdf/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

// uploadDocument sends the chosen file to the service and, on success,
// builds the session and pipeline the chat view will use.
func (m Model) uploadDocument(path string) tea.Cmd {
	client := m.client
	notifier := m.notifier()
	timeout := time.Duration(m.cfg.TimeoutSecs) * time.Second
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			logging.APIError("open %q: %v", path, err)
			return uploadFailedMsg{filename: path, err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		docRef, err := client.UploadDocument(ctx, path, f)
		if err != nil {
			logging.APIError("upload %q: %v", path, err)
			return uploadFailedMsg{filename: path, err: err}
		}
		logging.API("uploaded %q as %q", path, docRef)

		sess := session.New(docRef)
		pipe := session.NewPipeline(sess, client, notifier)
		return uploadedMsg{
			sess:     sess,
			pipeline: pipe,
			message:  "PDF uploaded successfully. You can now ask questions about it.",
		}
	}
}

// submitQuestion runs one submission through the pipeline. Admission
// rejections come back as submitSkippedMsg; service failures surface as a
// fallback assistant turn and still produce answerMsg.
func (m Model) submitQuestion(question string) tea.Cmd {
	pipe := m.pipeline
	timeout := time.Duration(m.cfg.TimeoutSecs) * time.Second
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		turn, err := pipe.Submit(ctx, question)
		if err != nil {
			return submitSkippedMsg{err: err}
		}
		return answerMsg{turn: turn}
	}
}

// exportTranscript writes the current conversation to the export directory.
func (m Model) exportTranscript() tea.Cmd {
	sess := m.sess
	dir := m.cfg.ExportDir
	return func() tea.Msg {
		filename, err := export.Export(sess, export.DirSink{Dir: dir}, time.Now())
		if err != nil {
			logging.ExportError("export for %q: %v", sess.DocumentRef, err)
			return exportFailedMsg{err: err}
		}
		logging.Export("wrote %q", filename)
		return exportedMsg{filename: filename}
	}
}

// skipMessage maps an admission rejection to a status line, or "" for
// rejections that should stay silent.
func skipMessage(err error) (string, notify.Level) {
	switch {
	case errors.Is(err, session.ErrEmptyQuestion):
		return "", notify.LevelInfo
	case errors.Is(err, session.ErrBusy):
		return "Still working on the previous question...", notify.LevelInfo
	case errors.Is(err, session.ErrSessionClosed):
		return "Session ended. Upload a PDF to start again.", notify.LevelError
	default:
		return err.Error(), notify.LevelError
	}
}
