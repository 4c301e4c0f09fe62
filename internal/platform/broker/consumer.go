package broker

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"chambaYaWs/internal/modules/messaging/domain"
)

type KafkaConsumer struct {
	reader *kafka.Reader
}

func NewKafkaConsumer(brokers []string, groupID string, topic string) *KafkaConsumer {
	return &KafkaConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: brokers,
			GroupID: groupID,
			Topic:   topic,
		}),
	}
}

// Consume lee el tópico hasta que el contexto se cancele. Decode failures and
// handler errors are logged and skipped so one bad record never stalls the
// stream.
func (c *KafkaConsumer) Consume(ctx context.Context, handler func(*domain.StreamRecord) error) error {
	defer c.reader.Close()
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("kafka read error", slog.Any("error", err))
			continue
		}
		record := decodeRecord(m)
		if record == nil {
			continue
		}
		slog.Info("kafka record consumed",
			slog.String("topic", m.Topic),
			slog.Int("partition", m.Partition),
			slog.Int64("offset", m.Offset),
			slog.String("action", record.Action),
			slog.String("messageId", record.MessageID),
		)
		if err := handler(record); err != nil {
			slog.Warn("kafka handler error", slog.String("topic", m.Topic), slog.String("messageId", record.MessageID), slog.Any("error", err))
		}
	}
}

func decodeRecord(m kafka.Message) *domain.StreamRecord {
	var record domain.StreamRecord
	if err := json.Unmarshal(m.Value, &record); err != nil {
		slog.Warn("kafka record decode failed", slog.String("topic", m.Topic), slog.Int64("offset", m.Offset), slog.Any("error", err))
		return nil
	}
	if record.At.IsZero() {
		record.At = time.Now().UTC()
	}
	return &record
}
