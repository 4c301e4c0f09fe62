package domain

import (
	"strings"
	"time"

	"github.com/samber/lo"
)

// Event is a realtime notification addressed to the users party to a message.
// SenderID and ReceiverID steer the fan-out; the Frame is what goes on the wire.
type Event struct {
	Type       string
	MessageID  string
	SenderID   string
	ReceiverID string
	Frame      any
}

// Recipients resuelve los destinatarios del evento según su tipo.
// An empty result means the participants could not be resolved and the
// dispatcher must fall back to broadcasting across every connected user.
func (e *Event) Recipients() []string {
	if e.Type == FrameNewMessage {
		if receiver := strings.TrimSpace(e.ReceiverID); receiver != "" {
			return []string{receiver}
		}
		return nil
	}
	recipients := make([]string, 0, 2)
	for _, id := range []string{e.SenderID, e.ReceiverID} {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			recipients = append(recipients, trimmed)
		}
	}
	return lo.Uniq(recipients)
}

// NewMessageEvent targets the receiver of a freshly stored message.
func NewMessageEvent(msg *Message) *Event {
	return &Event{
		Type:       FrameNewMessage,
		MessageID:  msg.ID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Frame:      NewMessageFrame{Type: FrameNewMessage, Message: msg},
	}
}

// ReactionAddedEvent notifies both participants about a new reaction.
func ReactionAddedEvent(msg *Message, actorID, emoji string) *Event {
	return reactionEvent(FrameMessageReaction, msg, actorID, emoji)
}

// ReactionRemovedEvent notifies both participants about a withdrawn reaction.
func ReactionRemovedEvent(msg *Message, actorID, emoji string) *Event {
	return reactionEvent(FrameMessageReactionRemove, msg, actorID, emoji)
}

func reactionEvent(frameType string, msg *Message, actorID, emoji string) *Event {
	return &Event{
		Type:       frameType,
		MessageID:  msg.ID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Frame: ReactionFrame{
			Type:      frameType,
			MessageID: msg.ID,
			Reactions: msg.Reactions,
			UserID:    actorID,
			Emoji:     emoji,
		},
	}
}

// EditEvent carries the rewritten content to both participants.
func EditEvent(msg *Message) *Event {
	return &Event{
		Type:       FrameMessageEdit,
		MessageID:  msg.ID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Frame: EditFrame{
			Type:      FrameMessageEdit,
			MessageID: msg.ID,
			Content:   msg.Content,
			Edited:    msg.Edited,
			EditedAt:  msg.EditedAt,
		},
	}
}

// DeleteEvent tells both participants the message is gone.
func DeleteEvent(msg *Message) *Event {
	return &Event{
		Type:       FrameMessageDelete,
		MessageID:  msg.ID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Frame:      DeleteFrame{Type: FrameMessageDelete, MessageID: msg.ID, Deleted: msg.Deleted},
	}
}

// DeliveredEvent confirms delivery to both participants.
func DeliveredEvent(msg *Message) *Event {
	return &Event{
		Type:       FrameMessageDelivered,
		MessageID:  msg.ID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Frame:      DeliveredFrame{Type: FrameMessageDelivered, MessageID: msg.ID, Delivered: msg.Delivered},
	}
}

// Stream actions understood on the message lifecycle topic.
const (
	StreamActionSend           = "send"
	StreamActionEdit           = "edit"
	StreamActionDelete         = "delete"
	StreamActionReactionAdd    = "reaction_add"
	StreamActionReactionRemove = "reaction_remove"
	StreamActionDelivered      = "delivered"
)

// StreamRecord is the lifecycle notice other services publish on the bus when
// they mutate a message themselves. Participant ids are optional; consumers
// should resolve them from the store before trusting the record.
type StreamRecord struct {
	Action     string    `json:"action"`
	MessageID  string    `json:"messageId"`
	ActorID    string    `json:"actorId"`
	SenderID   string    `json:"senderId,omitempty"`
	ReceiverID string    `json:"receiverId,omitempty"`
	Content    string    `json:"content,omitempty"`
	Emoji      string    `json:"emoji,omitempty"`
	At         time.Time `json:"at,omitempty"`
}

// AsMessage projects the record onto a partial message for fallback frames
// when the store cannot resolve the full entity.
func (r *StreamRecord) AsMessage() *Message {
	at := r.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return &Message{
		ID:         r.MessageID,
		SenderID:   r.SenderID,
		ReceiverID: r.ReceiverID,
		Content:    r.Content,
		CreatedAt:  at,
		UpdatedAt:  at,
	}
}
