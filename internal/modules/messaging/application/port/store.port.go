package port

import (
	"context"
	"errors"

	"chambaYaWs/internal/modules/messaging/domain"
)

var (
	ErrMessageNotFound  = errors.New("message not found")
	ErrNotParticipant   = errors.New("user is not part of this conversation")
	ErrNotSender        = errors.New("only the sender may modify this message")
	ErrStoreUnavailable = errors.New("message store unavailable")
)

// MessageStore define el contrato con el sistema que es dueño de los mensajes.
// The realtime service never owns the data: every mutation goes through here
// and only then is fanned out to live connections.
//
// Ownership rules enforced by implementations: edit and delete are sender
// only; reactions belong to either participant; delivered and read are
// receiver side acknowledgements.
type MessageStore interface {
	SendMessage(ctx context.Context, senderID, receiverID, content, replyTo string) (*domain.Message, error)
	GetMessage(ctx context.Context, messageID string) (*domain.Message, error)
	ListConversation(ctx context.Context, userA, userB string, query domain.ConversationQuery) ([]*domain.Message, error)
	EditMessage(ctx context.Context, messageID, actorID, content string) (*domain.Message, error)
	DeleteMessage(ctx context.Context, messageID, actorID string) (*domain.Message, error)
	AddReaction(ctx context.Context, messageID, actorID, emoji string) (*domain.Message, error)
	RemoveReaction(ctx context.Context, messageID, actorID, emoji string) (*domain.Message, error)
	MarkDelivered(ctx context.Context, messageID, actorID string) (*domain.Message, error)
	MarkRead(ctx context.Context, peerID, actorID string) (int64, error)
}
