// Package export serializes a session's message log into the flat-text
// transcript artifact. The filename convention and content layout are part of
// the observable contract — users diff exports — so the format reproduces the
// original layout byte for byte.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"askpdf/internal/session"
)

// exportedOnLayout mirrors the en-US locale timestamp the original artifact
// carried in its header.
const exportedOnLayout = "1/2/2006, 3:04:05 PM"

// ExportError reports a failed hand-off to the byte sink. The session is
// untouched when it occurs.
type ExportError struct {
	Filename string
	Err      error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Filename, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// Sink receives the rendered transcript bytes under a suggested filename.
// Saving is the only side effect of an export.
type Sink interface {
	Save(filename string, data []byte) error
}

// DirSink saves transcripts as files under Dir, creating it if needed.
type DirSink struct {
	Dir string
}

func (s DirSink) Save(filename string, data []byte) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.Dir, filename), data, 0o644)
}

// Filename builds the transcript filename for a document reference and export
// date: chat-<base>-<YYYY-MM-DD>.txt, with anything after the first dot of
// the reference stripped.
func Filename(documentRef string, now time.Time) string {
	base := documentRef
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	return fmt.Sprintf("chat-%s-%s.txt", base, now.Format("2006-01-02"))
}

// Render serializes turns into the transcript body: a two-line header, a
// blank separator, then one block per turn in log order. Blocks are joined
// with blank lines exactly as the original writer did, including the lone
// newline element between header and body.
func Render(documentRef string, turns []session.Turn, now time.Time) []byte {
	blocks := make([]string, 0, len(turns)+3)
	blocks = append(blocks,
		"# Chat with PDF: "+documentRef,
		"# Exported on: "+now.Format(exportedOnLayout),
		"\n",
	)
	for _, t := range turns {
		who := "You"
		if t.Role == session.RoleAssistant {
			who = "AI Assistant"
		}
		blocks = append(blocks, fmt.Sprintf("[%s] %s:\n%s\n", t.CreatedAt.Format("15:04"), who, t.Content))
	}
	return []byte(strings.Join(blocks, "\n\n"))
}

// Export renders the session transcript and hands it to the sink. The log and
// pipeline are never mutated; a sink failure comes back as an *ExportError.
// The chosen filename is returned either way.
func Export(sess *session.Session, sink Sink, now time.Time) (string, error) {
	filename := Filename(sess.DocumentRef, now)
	data := Render(sess.DocumentRef, sess.Log().Snapshot(), now)
	if err := sink.Save(filename, data); err != nil {
		return filename, &ExportError{Filename: filename, Err: err}
	}
	return filename, nil
}
