// Package session implements the conversation core: the append-only message
// log, the session scoped to one uploaded document, and the submission
// pipeline that drives one question/answer round trip at a time.
package session

import "time"

// Role identifies the author of a turn. The set is closed; nothing else is
// ever appended to a log.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in the conversation log. ID and Content never change
// after creation; Revealing flips from true to false exactly once, when the
// incremental on-screen reveal of an assistant turn finishes.
type Turn struct {
	ID        string
	Role      Role
	Content   string
	CreatedAt time.Time
	Revealing bool
}
