package handler

import (
	"context"
	"log/slog"
	"strings"

	"chambaYaWs/internal/modules/messaging/application/port"
	"chambaYaWs/internal/modules/messaging/application/usecase"
	"chambaYaWs/internal/modules/messaging/domain"
)

// MessageStreamHandler reenvía los avisos de ciclo de vida publicados por el
// backend principal hacia las conexiones vivas. Records name only the message
// and the acting user, so the handler resolves the full message from the
// store before dispatching; when that fails it falls back to the partial
// record, which degrades the dispatch to a broadcast.
type MessageStreamHandler struct {
	kafkaTopic string
	store      port.MessageStore
	dispatch   *usecase.DispatchUseCase
}

func NewMessageStreamHandler(kafkaTopic string, store port.MessageStore, dispatch *usecase.DispatchUseCase) *MessageStreamHandler {
	return &MessageStreamHandler{
		kafkaTopic: strings.TrimSpace(kafkaTopic),
		store:      store,
		dispatch:   dispatch,
	}
}

func (h *MessageStreamHandler) Topic() string { return h.kafkaTopic }

func (h *MessageStreamHandler) Handle(ctx context.Context, record *domain.StreamRecord) error {
	if record == nil || strings.TrimSpace(record.MessageID) == "" {
		slog.Debug("message-stream record without message id ignored", slog.String("topic", h.kafkaTopic))
		return nil
	}

	msg := h.resolve(ctx, record)
	event := h.buildEvent(record, msg)
	if event == nil {
		slog.Debug("message-stream unknown action ignored", slog.String("topic", h.kafkaTopic), slog.String("action", record.Action))
		return nil
	}
	h.dispatch.Execute(ctx, event)
	return nil
}

// resolve prefers store state over the record's own participant claims.
func (h *MessageStreamHandler) resolve(ctx context.Context, record *domain.StreamRecord) *domain.Message {
	if h.store != nil {
		msg, err := h.store.GetMessage(ctx, record.MessageID)
		if err == nil {
			return msg
		}
		slog.Warn("message-stream resolution failed, using partial record",
			slog.String("topic", h.kafkaTopic),
			slog.String("messageId", record.MessageID),
			slog.String("action", record.Action),
			slog.Any("error", err),
		)
	}
	return record.AsMessage()
}

func (h *MessageStreamHandler) buildEvent(record *domain.StreamRecord, msg *domain.Message) *domain.Event {
	switch strings.ToLower(strings.TrimSpace(record.Action)) {
	case domain.StreamActionSend:
		return domain.NewMessageEvent(msg)
	case domain.StreamActionEdit:
		return domain.EditEvent(msg)
	case domain.StreamActionDelete:
		return domain.DeleteEvent(msg)
	case domain.StreamActionReactionAdd:
		return domain.ReactionAddedEvent(msg, record.ActorID, record.Emoji)
	case domain.StreamActionReactionRemove:
		return domain.ReactionRemovedEvent(msg, record.ActorID, record.Emoji)
	case domain.StreamActionDelivered:
		return domain.DeliveredEvent(msg)
	default:
		return nil
	}
}

var _ port.TopicHandler = (*MessageStreamHandler)(nil)
