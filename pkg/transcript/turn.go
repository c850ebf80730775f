// Package transcript holds the ordered, append-only list of turns for one chat session.
package transcript

import "time"

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Kind identifies how a turn's content is rendered.
type Kind string

const (
	// KindText turns render their literal string.
	KindText Kind = "text"

	// KindImage turns carry a reference (URL or path) to image bytes.
	KindImage Kind = "image"
)

// Turn is one message in the transcript. Turns are values: once appended,
// the copy held by the transcript is never modified.
type Turn struct {
	// ID is the chain hash assigned on append. It commits to this turn and
	// every turn before it.
	ID string `json:"id"`

	Role    Role   `json:"role"`
	Kind    Kind   `json:"kind"`
	Content string `json:"content"`

	CreatedAt time.Time `json:"created_at"`
}

// UserText returns a user text turn.
func UserText(text string) Turn {
	return Turn{Role: RoleUser, Kind: KindText, Content: text}
}

// UserImage returns a user image turn pointing at ref.
func UserImage(ref string) Turn {
	return Turn{Role: RoleUser, Kind: KindImage, Content: ref}
}

// AssistantText returns an assistant text turn.
func AssistantText(text string) Turn {
	return Turn{Role: RoleAssistant, Kind: KindText, Content: text}
}

// AssistantImage returns an assistant image turn pointing at ref.
func AssistantImage(ref string) Turn {
	return Turn{Role: RoleAssistant, Kind: KindImage, Content: ref}
}

// hashable is the part of a turn that is committed to by its ID.
type hashable struct {
	Role    Role   `json:"role"`
	Kind    Kind   `json:"kind"`
	Content string `json:"content"`
}
