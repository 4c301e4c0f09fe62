package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"chambaYaWs/internal/modules/messaging/application/port"
	"chambaYaWs/internal/modules/messaging/application/usecase"
	"chambaYaWs/internal/modules/messaging/domain"
	"chambaYaWs/internal/modules/messaging/infrastructure"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// NewChatWebsocketHandler expone /ws/chat. The connection is anonymous until
// its first auth frame; registration, heartbeat and frame handling all run in
// the client's own pumps.
func NewChatWebsocketHandler(
	registry *infrastructure.Registry,
	processor *infrastructure.FrameProcessor,
	presence port.PresenceStore,
	sendBuffer int,
) func(echo.Context) error {
	pingFrame, _ := json.Marshal(domain.PingFrame{Type: domain.FramePing})

	return func(c echo.Context) error {
		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			slog.Error("ws upgrade failed", slog.String("ip", c.RealIP()), slog.Any("error", err))
			return err
		}

		sessionID := uuid.NewString()
		client := infrastructure.NewClient(conn, sessionID, sendBuffer, processor)
		client.AddCloseHook(func(closed *infrastructure.Client) {
			userID := closed.UserID()
			registry.Unregister(closed)
			if userID == "" || presence == nil {
				return
			}
			// Another tab may still hold the user online.
			if registry.Online(userID) {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := presence.Offline(ctx, userID); err != nil {
				slog.Warn("presence offline failed", slog.String("userId", userID), slog.Any("error", err))
			}
		})

		go client.WritePump(pingFrame)
		go client.ReadPump()

		slog.Info("ws connection opened", slog.String("sessionId", sessionID), slog.String("ip", c.RealIP()))
		return nil
	}
}

// RegisterChatFrames wires the authenticated chat frames onto the processor.
func RegisterChatFrames(processor *infrastructure.FrameProcessor, sendUC *usecase.SendMessageUseCase) {
	processor.Register(domain.FrameMessage, func(ctx context.Context, client *infrastructure.Client, raw json.RawMessage) {
		var frame domain.MessageFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			slog.Warn("ws message frame decode failed", slog.String("sessionId", client.SessionID()), slog.Any("error", err))
			return
		}

		msg, err := sendUC.Execute(ctx, client.UserID(), frame.ReceiverID, frame.Content, frame.ReplyTo)
		if err != nil {
			if isValidationError(err) {
				processor.Send(client, domain.NewErrorFrame(err.Error()))
				return
			}
			// Store failures stay server side: the client infers from the
			// missing ack and re-sends.
			slog.Error("ws message persist failed", slog.String("userId", client.UserID()), slog.String("sessionId", client.SessionID()), slog.Any("error", err))
			return
		}

		processor.Send(client, domain.MessageSentFrame{Type: domain.FrameMessageSent, Message: msg})
	})
}

func isValidationError(err error) bool {
	return errors.Is(err, domain.ErrMissingReceiver) ||
		errors.Is(err, domain.ErrEmptyContent) ||
		errors.Is(err, domain.ErrContentTooLong) ||
		errors.Is(err, domain.ErrMissingSender)
}
