package infrastructure

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"chambaYaWs/internal/modules/messaging/application/port"
	"chambaYaWs/internal/modules/messaging/domain"
	"chambaYaWs/internal/shared/normalization"
)

// FrameHandler procesa un frame ya autenticado con su payload crudo.
type FrameHandler func(ctx context.Context, client *Client, raw json.RawMessage)

// FrameProcessor interprets the inbound frame stream of one connection at a
// time. Auth and pong are handled locally; everything else is delegated to
// handlers registered by the transport layer. Frames are processed in arrival
// order: the read pump does not fetch frame N+1 until Process returns.
type FrameProcessor struct {
	registry *Registry
	presence port.PresenceStore
	handlers map[string]FrameHandler
	timeout  time.Duration
}

func NewFrameProcessor(registry *Registry, presence port.PresenceStore) *FrameProcessor {
	return &FrameProcessor{
		registry: registry,
		presence: presence,
		handlers: make(map[string]FrameHandler),
		timeout:  10 * time.Second,
	}
}

// Register binds a handler to a canonical frame type.
func (p *FrameProcessor) Register(frameType string, handler FrameHandler) {
	key := normalization.FrameType(frameType)
	if key == "" || handler == nil {
		return
	}
	p.handlers[key] = handler
}

type frameEnvelope struct {
	Type string `json:"type"`
}

// Process interprets a single raw frame. Malformed frames are logged and
// dropped without a reply; a bad frame never tears the connection down.
func (p *FrameProcessor) Process(client *Client, raw []byte) {
	if client == nil {
		return
	}

	var envelope frameEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		slog.Warn("ws malformed frame dropped", slog.String("sessionId", client.SessionID()), slog.String("userId", client.UserID()), slog.Any("error", err))
		return
	}

	frameType := normalization.FrameType(envelope.Type)
	if frameType == domain.FrameAuth {
		p.handleAuth(client, raw)
		return
	}

	// Antes de autenticar solo se acepta el frame auth; un pong temprano
	// tampoco cuenta como latido.
	if !client.Authenticated() {
		slog.Warn("ws frame before auth ignored", slog.String("sessionId", client.SessionID()), slog.String("type", frameType))
		return
	}

	if frameType == domain.FramePong {
		p.handlePong(client)
		return
	}

	handler, ok := p.handlers[frameType]
	if !ok {
		slog.Debug("ws frame ignored", slog.String("sessionId", client.SessionID()), slog.String("userId", client.UserID()), slog.String("type", frameType))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	handler(ctx, client, raw)
}

func (p *FrameProcessor) handleAuth(client *Client, raw []byte) {
	var frame domain.AuthFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		slog.Warn("ws auth frame decode failed", slog.String("sessionId", client.SessionID()), slog.Any("error", err))
		return
	}
	userID := normalization.ID(frame.UserID)
	if userID == "" {
		p.Send(client, domain.NewErrorFrame("userId is required"))
		return
	}

	p.registry.Register(userID, client)
	if p.presence != nil {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		if err := p.presence.Online(ctx, userID); err != nil {
			slog.Warn("presence online failed", slog.String("userId", userID), slog.Any("error", err))
		}
	}
	p.Send(client, domain.AuthSuccessFrame{Type: domain.FrameAuthSuccess})
}

func (p *FrameProcessor) handlePong(client *Client) {
	client.RefreshPong()
	userID := client.UserID()
	if userID == "" || p.presence == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.presence.Refresh(ctx, userID); err != nil {
		slog.Warn("presence refresh failed", slog.String("userId", userID), slog.Any("error", err))
	}
}

// Send serializes the frame and queues it on the client, dropping the client
// when its buffer refuses the write.
func (p *FrameProcessor) Send(client *Client, frame any) {
	data, err := json.Marshal(frame)
	if err != nil {
		slog.Error("ws frame marshal error", slog.Any("error", err))
		return
	}
	if !client.Enqueue(data) {
		slog.Warn("ws send buffer full, dropping client", slog.String("userId", client.UserID()), slog.String("sessionId", client.SessionID()))
		p.registry.Drop(client)
	}
}
