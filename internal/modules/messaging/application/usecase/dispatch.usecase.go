package usecase

import (
	"context"
	"encoding/json"
	"log/slog"

	"chambaYaWs/internal/modules/messaging/application/port"
	"chambaYaWs/internal/modules/messaging/domain"
)

// DispatchUseCase abanica un evento hacia las conexiones vivas de sus
// destinatarios. Delivery is fire and forget: offline recipients simply miss
// the realtime frame, the persisted message remains the source of truth.
type DispatchUseCase struct {
	notifier port.ConnectionNotifier
}

func NewDispatchUseCase(notifier port.ConnectionNotifier) *DispatchUseCase {
	return &DispatchUseCase{notifier: notifier}
}

// Execute serializes the event once and pushes it to every live connection of
// each recipient. An event whose participants could not be resolved degrades
// to a broadcast across all connected users rather than being dropped.
func (uc *DispatchUseCase) Execute(_ context.Context, event *domain.Event) {
	if event == nil || event.Frame == nil {
		return
	}
	data, err := json.Marshal(event.Frame)
	if err != nil {
		slog.Error("event marshal error", slog.String("type", event.Type), slog.String("messageId", event.MessageID), slog.Any("error", err))
		return
	}

	recipients := event.Recipients()
	if len(recipients) == 0 {
		delivered := uc.notifier.PushAll(data)
		slog.Warn("event participants unresolved, broadcasting",
			slog.String("type", event.Type),
			slog.String("messageId", event.MessageID),
			slog.Int("delivered", delivered),
		)
		return
	}

	delivered := 0
	for _, userID := range recipients {
		delivered += uc.notifier.Push(userID, data)
	}
	slog.Debug("event dispatched",
		slog.String("type", event.Type),
		slog.String("messageId", event.MessageID),
		slog.Int("recipients", len(recipients)),
		slog.Int("delivered", delivered),
	)
}
