package domain

import "time"

// Frame types accepted from clients.
const (
	FrameAuth    = "auth"
	FrameMessage = "message"
	FramePong    = "pong"
)

// Frame types pushed to clients.
const (
	FrameAuthSuccess           = "auth_success"
	FrameMessageSent           = "message_sent"
	FrameNewMessage            = "new_message"
	FrameMessageReaction       = "message_reaction"
	FrameMessageReactionRemove = "message_reaction_remove"
	FrameMessageEdit           = "message_edit"
	FrameMessageDelete         = "message_delete"
	FrameMessageDelivered      = "message_delivered"
	FramePing                  = "ping"
	FrameError                 = "error"
)

// AuthFrame identifies the user behind a fresh connection.
type AuthFrame struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

// MessageFrame carries an outgoing direct message from an authenticated client.
type MessageFrame struct {
	Type       string `json:"type"`
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
	ReplyTo    string `json:"replyTo,omitempty"`
}

// PongFrame answers the application-level heartbeat probe.
type PongFrame struct {
	Type string `json:"type"`
}

// AuthSuccessFrame acknowledges a completed registration.
type AuthSuccessFrame struct {
	Type string `json:"type"`
}

// MessageSentFrame acks a persisted message back to the connection that sent it.
type MessageSentFrame struct {
	Type    string   `json:"type"`
	Message *Message `json:"message"`
}

// NewMessageFrame delivers a message to its receiver.
type NewMessageFrame struct {
	Type    string   `json:"type"`
	Message *Message `json:"message"`
}

// ReactionFrame notifies participants that the reaction set of a message changed.
// The same shape serves both the add and the remove notification.
type ReactionFrame struct {
	Type      string              `json:"type"`
	MessageID string              `json:"messageId"`
	Reactions map[string][]string `json:"reactions"`
	UserID    string              `json:"userId"`
	Emoji     string              `json:"emoji"`
}

// EditFrame carries the rewritten body of an edited message.
type EditFrame struct {
	Type      string     `json:"type"`
	MessageID string     `json:"messageId"`
	Content   string     `json:"content"`
	Edited    bool       `json:"edited"`
	EditedAt  *time.Time `json:"editedAt,omitempty"`
}

// DeleteFrame marks a message as removed for both participants.
type DeleteFrame struct {
	Type      string `json:"type"`
	MessageID string `json:"messageId"`
	Deleted   bool   `json:"deleted"`
}

// DeliveredFrame flags a message as delivered to its receiver.
type DeliveredFrame struct {
	Type      string `json:"type"`
	MessageID string `json:"messageId"`
	Delivered bool   `json:"delivered"`
}

// PingFrame is the liveness probe written on every heartbeat tick.
type PingFrame struct {
	Type string `json:"type"`
}

// ErrorFrame reports a rejected frame without tearing the connection down.
type ErrorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewErrorFrame builds the standard error reply.
func NewErrorFrame(message string) ErrorFrame {
	return ErrorFrame{Type: FrameError, Message: message}
}
