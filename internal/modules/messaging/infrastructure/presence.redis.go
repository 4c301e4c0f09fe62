package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"chambaYaWs/internal/modules/messaging/application/port"
)

const defaultPresenceTTL = 90 * time.Second

// RedisPresence espeja el estado de conexión en Redis para que el resto de la
// plataforma pueda responder "¿está en línea?" sin tocar este proceso. The key
// value names the gateway instance holding the connection; the TTL expires
// stale entries when a gateway dies without cleaning up.
type RedisPresence struct {
	client    *redis.Client
	gatewayID string
	ttl       time.Duration
}

func NewRedisPresence(client *redis.Client, gatewayID string, ttl time.Duration) *RedisPresence {
	if ttl <= 0 {
		ttl = defaultPresenceTTL
	}
	return &RedisPresence{client: client, gatewayID: strings.TrimSpace(gatewayID), ttl: ttl}
}

func presenceKey(userID string) string { return "presence:" + userID }

func (p *RedisPresence) Online(ctx context.Context, userID string) error {
	if err := p.client.Set(ctx, presenceKey(userID), p.gatewayID, p.ttl).Err(); err != nil {
		return fmt.Errorf("presence online: %w", err)
	}
	return nil
}

func (p *RedisPresence) Refresh(ctx context.Context, userID string) error {
	// SetXX only renews existing entries; a refresh never resurrects a user
	// that already went offline.
	if err := p.client.SetXX(ctx, presenceKey(userID), p.gatewayID, p.ttl).Err(); err != nil {
		return fmt.Errorf("presence refresh: %w", err)
	}
	return nil
}

func (p *RedisPresence) Offline(ctx context.Context, userID string) error {
	if err := p.client.Del(ctx, presenceKey(userID)).Err(); err != nil {
		return fmt.Errorf("presence offline: %w", err)
	}
	return nil
}

func (p *RedisPresence) Lookup(ctx context.Context, userID string) (string, bool, error) {
	value, err := p.client.Get(ctx, presenceKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("presence lookup: %w", err)
	}
	return value, true, nil
}

var _ port.PresenceStore = (*RedisPresence)(nil)
