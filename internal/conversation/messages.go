// Package conversation maintains the append-only transcript and the answer-input focus.
package conversation

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"docfill/internal/types"
)

// Kind tags the origin of a message id. It has no meaning beyond readability.
type Kind string

const (
	KindUser      Kind = "user"
	KindAssistant Kind = "assistant"
	KindEdit      Kind = "edit"
	KindSuccess   Kind = "success"
	KindError     Kind = "error"
)

// Stamp carries the identity and time of a message before it is built.
// Events carry stamps so that applying them stays deterministic.
type Stamp struct {
	ID string
	At time.Time
}

// NewStamp generates a fresh message id of the form msg-<kind>-<uuid>.
func NewStamp(kind Kind) Stamp {
	return Stamp{
		ID: fmt.Sprintf("msg-%s-%s", kind, uuid.NewString()),
		At: time.Now(),
	}
}

// UserMessage records what the user asked.
func UserMessage(s Stamp, text string) types.ChatMessage {
	return types.ChatMessage{ID: s.ID, Role: types.RoleUser, Content: text, Timestamp: s.At}
}

// AssistantMessage records a reply. filled is the identity the turn filled, or "".
func AssistantMessage(s Stamp, text, filled string) types.ChatMessage {
	return types.ChatMessage{
		ID:                s.ID,
		Role:              types.RoleAssistant,
		Content:           text,
		Timestamp:         s.At,
		PlaceholderFilled: filled,
	}
}

// EditConfirmation names the edited field and its new value.
func EditConfirmation(s Stamp, fieldName, value string) types.ChatMessage {
	return AssistantMessage(s, fmt.Sprintf("✅ Updated **%s** to: \"%s\"", fieldName, value), "")
}

// CompletionMessage carries the server's completion text verbatim.
func CompletionMessage(s Stamp, serverMessage string) types.ChatMessage {
	return AssistantMessage(s, serverMessage, "")
}

// ErrorMessage is the inline transcript entry for a failed conversational turn.
func ErrorMessage(s Stamp, message string) types.ChatMessage {
	return AssistantMessage(s, "Error: "+message, "")
}

// Append returns a new transcript with msg at the end. The input slice is never written to,
// so earlier snapshots keep their view of the log.
func Append(transcript []types.ChatMessage, msg types.ChatMessage) []types.ChatMessage {
	return append(slices.Clip(transcript), msg)
}
