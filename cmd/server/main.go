package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"chambaYaWs/internal/config"
	streamhandler "chambaYaWs/internal/modules/messaging/application/handler"
	"chambaYaWs/internal/modules/messaging/application/port"
	"chambaYaWs/internal/modules/messaging/application/usecase"
	"chambaYaWs/internal/modules/messaging/infrastructure"
	transport "chambaYaWs/internal/modules/messaging/interface"
	"chambaYaWs/internal/platform/broker"
	"chambaYaWs/internal/shared/auth"
	"chambaYaWs/internal/shared/logging"
)

func main() {
	// Attempt to load variables from .env so local runs honour configuration tweaks.
	if err := godotenv.Overload(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	logFile, logger, err := setupLogging(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging setup error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	slog.SetDefault(logger)
	slog.Info("logging initialized", slog.String("directory", cfg.Logging.Directory), slog.String("level", cfg.Logging.Level), slog.String("format", cfg.Logging.Format))
	slog.Info("gateway starting", slog.String("gatewayId", cfg.GatewayID), slog.String("storeBackend", cfg.Store.Backend), slog.Any("kafkaBrokers", cfg.Kafka.Brokers))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := infrastructure.NewRegistry()
	presence := setupPresence(ctx, cfg)
	store, err := setupStore(cfg)
	if err != nil {
		slog.Error("store setup failed", slog.Any("error", err))
		os.Exit(1)
	}

	// Use cases
	dispatchUC := usecase.NewDispatchUseCase(registry)
	sendUC := usecase.NewSendMessageUseCase(store, dispatchUC)
	lifecycleUC := usecase.NewMessageLifecycleUseCase(store, dispatchUC)

	// Inbound frame processing
	processor := infrastructure.NewFrameProcessor(registry, presence)
	transport.RegisterChatFrames(processor, sendUC)

	// Kafka ingress: the main backend publishes message lifecycle records when
	// it mutates messages itself.
	handlerRegistry := broker.NewHandlerRegistry()
	for _, topic := range cfg.Kafka.Topics {
		handlerRegistry.Register(streamhandler.NewMessageStreamHandler(topic, store, dispatchUC))
	}
	broker.StartKafkaConsumers(ctx, handlerRegistry, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topics)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.Logger.SetOutput(log.Writer())
	e.Validator = transport.NewRequestValidator()

	validator := auth.NewJWTValidatorWithPublicKey(cfg.Security.JWTSecret, cfg.Security.JWTPublicKey)

	e.GET("/healthz", transport.NewHealthHandler(registry))
	e.GET("/ws/chat", transport.NewChatWebsocketHandler(registry, processor, presence, cfg.Websocket.SendBuffer))

	api := e.Group("/api/v1", transport.NewAuthMiddleware(validator))
	transport.NewMessagesHandler(sendUC, lifecycleUC).Register(api)
	transport.NewPresenceHandler(registry, presence).Register(api)

	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil {
			slog.Error("http server stopped", slog.Any("error", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	slog.Info("shutting down")
	cancel()
	e.Close()
}

func setupPresence(ctx context.Context, cfg *config.Config) port.PresenceStore {
	if cfg.Redis.Addr == "" {
		slog.Info("presence mirror disabled, no redis configured")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		slog.Warn("redis unreachable, running without presence mirror", slog.String("addr", cfg.Redis.Addr), slog.Any("error", err))
		return nil
	}
	slog.Info("presence mirror enabled", slog.String("addr", cfg.Redis.Addr))
	return infrastructure.NewRedisPresence(client, cfg.GatewayID, cfg.Websocket.PresenceTTL)
}

func setupStore(cfg *config.Config) (port.MessageStore, error) {
	if cfg.Store.Backend == "rest" {
		slog.Info("message store: rest", slog.String("baseUrl", cfg.Store.BaseURL))
		return infrastructure.NewRESTMessageStore(cfg.Store.BaseURL, cfg.Store.ServiceToken, cfg.Store.Timeout, nil), nil
	}

	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.Database.DSN)
	default:
		dialector = sqlite.Open(cfg.Database.DSN)
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	slog.Info("message store: gorm", slog.String("driver", cfg.Database.Driver))
	return infrastructure.NewGormMessageStore(db)
}

func setupLogging(cfg config.LoggingConfig) (*os.File, *slog.Logger, error) {
	dir := cfg.Directory
	if dir == "" {
		dir = "./logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	fileName := filepath.Join(dir, time.Now().UTC().Format("2006-01-02")+".log")
	file, err := os.OpenFile(fileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	writer := io.MultiWriter(os.Stdout, file)
	logger := logging.New(writer, logging.Config{
		Level:     cfg.Level,
		Format:    cfg.Format,
		AddSource: true,
	})
	log.SetOutput(writer)
	log.SetFlags(0)
	log.SetPrefix("")

	return file, logger, nil
}
