package usecase

import (
	"context"
	"fmt"

	"chambaYaWs/internal/modules/messaging/application/port"
	"chambaYaWs/internal/modules/messaging/domain"
)

// SendMessageUseCase valida, persiste y despacha un mensaje directo nuevo.
// The caller decides what to do with the stored message (ws ack or HTTP body);
// the receiver side fan-out happens here.
type SendMessageUseCase struct {
	store    port.MessageStore
	dispatch *DispatchUseCase
}

func NewSendMessageUseCase(store port.MessageStore, dispatch *DispatchUseCase) *SendMessageUseCase {
	return &SendMessageUseCase{store: store, dispatch: dispatch}
}

// Execute returns the persisted message on success. Validation failures are
// returned before anything is persisted; a store failure yields no dispatch.
func (uc *SendMessageUseCase) Execute(ctx context.Context, senderID, receiverID, content, replyTo string) (*domain.Message, error) {
	if err := domain.ValidateOutgoing(receiverID, content); err != nil {
		return nil, err
	}
	msg, err := uc.store.SendMessage(ctx, senderID, receiverID, content, replyTo)
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	uc.dispatch.Execute(ctx, domain.NewMessageEvent(msg))
	return msg, nil
}
