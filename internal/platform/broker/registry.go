package broker

import (
	"context"
	"log/slog"

	"chambaYaWs/internal/modules/messaging/application/port"
	"chambaYaWs/internal/modules/messaging/domain"
)

// HandlerRegistry enruta registros consumidos hacia el handler de su tópico.
type HandlerRegistry struct {
	handlers map[string]port.TopicHandler
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[string]port.TopicHandler)}
}

func (r *HandlerRegistry) Register(h port.TopicHandler) {
	r.handlers[h.Topic()] = h
}

func (r *HandlerRegistry) Dispatch(ctx context.Context, topic string, record *domain.StreamRecord) error {
	if handler, ok := r.handlers[topic]; ok {
		return handler.Handle(ctx, record)
	}
	return nil
}

// StartKafkaConsumers levanta un consumidor por tópico registrado. Without
// brokers configured the ingress stays off and the service runs standalone.
func StartKafkaConsumers(
	ctx context.Context,
	registry *HandlerRegistry,
	brokers []string,
	groupID string,
	topics []string,
) {
	if len(brokers) == 0 {
		slog.Info("kafka ingress disabled, no brokers configured")
		return
	}
	for _, topic := range topics {
		go func(tp string) {
			consumer := NewKafkaConsumer(brokers, groupID, tp)
			_ = consumer.Consume(ctx, func(record *domain.StreamRecord) error {
				return registry.Dispatch(ctx, tp, record)
			})
		}(topic)
	}
}
