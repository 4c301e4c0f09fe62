package port

import (
	"context"

	"chambaYaWs/internal/modules/messaging/domain"
)

// ConnectionNotifier entrega frames serializados a las conexiones vivas.
// Push returns how many connections accepted the frame; a dead or saturated
// connection is dropped by the implementation, never surfaced as an error.
type ConnectionNotifier interface {
	Push(userID string, data []byte) int
	PushAll(data []byte) int
}

// TopicHandler define la interfaz que implementan los handlers registrados por tópico.
type TopicHandler interface {
	Topic() string
	Handle(ctx context.Context, record *domain.StreamRecord) error
}
