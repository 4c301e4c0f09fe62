package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/samber/lo"
)

// MaxContentLength caps the rune count of a direct message body.
const MaxContentLength = 4000

var (
	ErrMissingSender   = errors.New("senderId is required")
	ErrMissingReceiver = errors.New("receiverId is required")
	ErrEmptyContent    = errors.New("content must not be empty")
	ErrContentTooLong  = errors.New("content exceeds the allowed length")
)

// Message es el mensaje directo intercambiado entre dos usuarios de la plataforma.
// The websocket layer only moves it around; persistence belongs to the message store.
type Message struct {
	ID         string              `json:"id"`
	SenderID   string              `json:"senderId"`
	ReceiverID string              `json:"receiverId"`
	Content    string              `json:"content"`
	ReplyTo    string              `json:"replyTo,omitempty"`
	Reactions  map[string][]string `json:"reactions,omitempty"`
	Edited     bool                `json:"edited"`
	EditedAt   *time.Time          `json:"editedAt,omitempty"`
	Deleted    bool                `json:"deleted"`
	Delivered  bool                `json:"delivered"`
	Read       bool                `json:"read"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}

// ValidateOutgoing checks the user-supplied fields of a message about to be sent.
func ValidateOutgoing(receiverID, content string) error {
	if strings.TrimSpace(receiverID) == "" {
		return ErrMissingReceiver
	}
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return ErrEmptyContent
	}
	if utf8.RuneCountInString(trimmed) > MaxContentLength {
		return ErrContentTooLong
	}
	return nil
}

// Participants returns the two users party to the message, deduplicated.
func (m *Message) Participants() []string {
	ids := make([]string, 0, 2)
	for _, id := range []string{m.SenderID, m.ReceiverID} {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return lo.Uniq(ids)
}

// IsParticipant reports whether the user is the sender or the receiver.
func (m *Message) IsParticipant(userID string) bool {
	trimmed := strings.TrimSpace(userID)
	if trimmed == "" {
		return false
	}
	return trimmed == m.SenderID || trimmed == m.ReceiverID
}

// IsSender reports whether the user authored the message.
func (m *Message) IsSender(userID string) bool {
	trimmed := strings.TrimSpace(userID)
	return trimmed != "" && trimmed == m.SenderID
}

// AddReaction records the user under the emoji, once per user.
func (m *Message) AddReaction(emoji, userID string) {
	emoji = strings.TrimSpace(emoji)
	userID = strings.TrimSpace(userID)
	if emoji == "" || userID == "" {
		return
	}
	if m.Reactions == nil {
		m.Reactions = make(map[string][]string)
	}
	if lo.Contains(m.Reactions[emoji], userID) {
		return
	}
	m.Reactions[emoji] = append(m.Reactions[emoji], userID)
}

// RemoveReaction drops the user's entry for the emoji and deletes the emoji
// key once nobody holds it.
func (m *Message) RemoveReaction(emoji, userID string) {
	emoji = strings.TrimSpace(emoji)
	userID = strings.TrimSpace(userID)
	if emoji == "" || userID == "" {
		return
	}
	users, ok := m.Reactions[emoji]
	if !ok {
		return
	}
	remaining := lo.Without(users, userID)
	if len(remaining) == 0 {
		delete(m.Reactions, emoji)
		return
	}
	m.Reactions[emoji] = remaining
}

// ConversationQuery pages through the history between two users.
type ConversationQuery struct {
	Page  int
	Limit int
}

// Normalize clamps paging values into a safe range.
func (q ConversationQuery) Normalize() ConversationQuery {
	out := q
	if out.Page < 1 {
		out.Page = 1
	}
	if out.Limit < 1 {
		out.Limit = 50
	}
	if out.Limit > 200 {
		out.Limit = 200
	}
	return out
}

// Offset translates the page number into a row offset.
func (q ConversationQuery) Offset() int {
	normalized := q.Normalize()
	return (normalized.Page - 1) * normalized.Limit
}
