package usecase

import (
	"context"
	"fmt"

	"chambaYaWs/internal/modules/messaging/application/port"
	"chambaYaWs/internal/modules/messaging/domain"
)

// MessageLifecycleUseCase cubre las mutaciones sobre mensajes existentes:
// edición, borrado, reacciones y confirmación de entrega. Every mutation goes
// through the store first; the matching event is dispatched only on success.
type MessageLifecycleUseCase struct {
	store    port.MessageStore
	dispatch *DispatchUseCase
}

func NewMessageLifecycleUseCase(store port.MessageStore, dispatch *DispatchUseCase) *MessageLifecycleUseCase {
	return &MessageLifecycleUseCase{store: store, dispatch: dispatch}
}

// Edit rewrites the body of a message owned by the actor.
func (uc *MessageLifecycleUseCase) Edit(ctx context.Context, messageID, actorID, content string) (*domain.Message, error) {
	msg, err := uc.store.EditMessage(ctx, messageID, actorID, content)
	if err != nil {
		return nil, fmt.Errorf("edit message: %w", err)
	}
	uc.dispatch.Execute(ctx, domain.EditEvent(msg))
	return msg, nil
}

// Delete soft-deletes a message owned by the actor.
func (uc *MessageLifecycleUseCase) Delete(ctx context.Context, messageID, actorID string) (*domain.Message, error) {
	msg, err := uc.store.DeleteMessage(ctx, messageID, actorID)
	if err != nil {
		return nil, fmt.Errorf("delete message: %w", err)
	}
	uc.dispatch.Execute(ctx, domain.DeleteEvent(msg))
	return msg, nil
}

// AddReaction records the actor's reaction and notifies both participants.
func (uc *MessageLifecycleUseCase) AddReaction(ctx context.Context, messageID, actorID, emoji string) (*domain.Message, error) {
	msg, err := uc.store.AddReaction(ctx, messageID, actorID, emoji)
	if err != nil {
		return nil, fmt.Errorf("add reaction: %w", err)
	}
	uc.dispatch.Execute(ctx, domain.ReactionAddedEvent(msg, actorID, emoji))
	return msg, nil
}

// RemoveReaction withdraws the actor's reaction and notifies both participants.
func (uc *MessageLifecycleUseCase) RemoveReaction(ctx context.Context, messageID, actorID, emoji string) (*domain.Message, error) {
	msg, err := uc.store.RemoveReaction(ctx, messageID, actorID, emoji)
	if err != nil {
		return nil, fmt.Errorf("remove reaction: %w", err)
	}
	uc.dispatch.Execute(ctx, domain.ReactionRemovedEvent(msg, actorID, emoji))
	return msg, nil
}

// MarkDelivered flags the message as delivered on behalf of its receiver.
func (uc *MessageLifecycleUseCase) MarkDelivered(ctx context.Context, messageID, actorID string) (*domain.Message, error) {
	msg, err := uc.store.MarkDelivered(ctx, messageID, actorID)
	if err != nil {
		return nil, fmt.Errorf("mark delivered: %w", err)
	}
	uc.dispatch.Execute(ctx, domain.DeliveredEvent(msg))
	return msg, nil
}

// MarkRead flags every message from peer to actor as read. There is no wire
// frame for read receipts, so this is a store-only mutation.
func (uc *MessageLifecycleUseCase) MarkRead(ctx context.Context, peerID, actorID string) (int64, error) {
	updated, err := uc.store.MarkRead(ctx, peerID, actorID)
	if err != nil {
		return 0, fmt.Errorf("mark read: %w", err)
	}
	return updated, nil
}

// History pages through the conversation between the actor and a peer.
func (uc *MessageLifecycleUseCase) History(ctx context.Context, actorID, peerID string, query domain.ConversationQuery) ([]*domain.Message, error) {
	messages, err := uc.store.ListConversation(ctx, actorID, peerID, query)
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	return messages, nil
}
