package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type ServerConfig struct {
	Port string
}

type LoggingConfig struct {
	Directory string
	Level     string
	Format    string
}

type SecurityConfig struct {
	JWTSecret    string
	JWTPublicKey string
}

type WebsocketConfig struct {
	SendBuffer  int
	PresenceTTL time.Duration
}

type DatabaseConfig struct {
	Driver string
	DSN    string
}

type StoreConfig struct {
	// Backend selects who owns the messages table: "gorm" keeps it local,
	// "rest" delegates to the main backend's internal messages API.
	Backend      string
	BaseURL      string
	Timeout      time.Duration
	ServiceToken string
}

type KafkaConfig struct {
	Brokers []string
	GroupID string
	Topics  []string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type Config struct {
	GatewayID string
	Server    ServerConfig
	Logging   LoggingConfig
	Security  SecurityConfig
	Websocket WebsocketConfig
	Database  DatabaseConfig
	Store     StoreConfig
	Kafka     KafkaConfig
	Redis     RedisConfig
}

// Load arma la configuración desde el entorno con defaults aptos para correr
// local. Only truly inconsistent combinations fail.
func Load() (*Config, error) {
	cfg := &Config{
		GatewayID: envOr("GATEWAY_ID", hostnameOr("chamba-ws")),
		Server: ServerConfig{
			Port: envOr("PORT", "8081"),
		},
		Logging: LoggingConfig{
			Directory: envOr("LOG_DIR", "./logs"),
			Level:     envOr("LOG_LEVEL", "info"),
			Format:    envOr("LOG_FORMAT", "text"),
		},
		Security: SecurityConfig{
			JWTSecret:    os.Getenv("JWT_SECRET"),
			JWTPublicKey: os.Getenv("JWT_PUBLIC_KEY"),
		},
		Websocket: WebsocketConfig{
			SendBuffer:  envInt("WS_SEND_BUFFER", 8),
			PresenceTTL: envDuration("PRESENCE_TTL", 90*time.Second),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(envOr("DB_DRIVER", "sqlite")),
			DSN:    envOr("DB_DSN", "chambaya_ws.db"),
		},
		Store: StoreConfig{
			Backend:      strings.ToLower(envOr("STORE_BACKEND", "gorm")),
			BaseURL:      os.Getenv("STORE_BASE_URL"),
			Timeout:      envDuration("STORE_TIMEOUT", 10*time.Second),
			ServiceToken: os.Getenv("STORE_SERVICE_TOKEN"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(firstEnv("KAFKA_BROKERS", "KAFKA_BROKER")),
			GroupID: envOr("KAFKA_GROUP_ID", "chambaya-ws"),
			Topics:  splitList(envOr("KAFKA_TOPICS", "messages.events")),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       envInt("REDIS_DB", 0),
		},
	}

	switch cfg.Store.Backend {
	case "gorm", "rest":
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.Store.Backend)
	}
	if cfg.Store.Backend == "rest" && strings.TrimSpace(cfg.Store.BaseURL) == "" {
		return nil, fmt.Errorf("STORE_BACKEND=rest requires STORE_BASE_URL")
	}
	switch cfg.Database.Driver {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.Database.Driver)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return value
		}
	}
	return ""
}

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return value
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

func hostnameOr(fallback string) string {
	if name, err := os.Hostname(); err == nil && strings.TrimSpace(name) != "" {
		return name
	}
	return fallback
}
