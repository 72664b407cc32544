package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/smartnotify/console/internal/alerts"
	"github.com/smartnotify/console/internal/api"
	"github.com/smartnotify/console/internal/config"
	"github.com/smartnotify/console/internal/events"
	"github.com/smartnotify/console/internal/monitor"
	"github.com/smartnotify/console/internal/storage"
)

func main() {
	cfg, err := config.Load("./config")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Pick the store backing: the REST backend when configured, the
	// local SQLite store otherwise. Never both.
	var store storage.RuleStore
	if cfg.Backend.BaseURL != "" {
		store = storage.NewRemoteStore(logger, storage.RemoteConfig{
			BaseURL: cfg.Backend.BaseURL,
			Token:   cfg.Backend.Token,
			Timeout: cfg.Backend.Timeout,
		})
		logger.Info("Using remote rule store", zap.String("base_url", cfg.Backend.BaseURL))
	} else {
		sqliteStore, err := storage.NewSQLiteStore(logger, cfg.SQLitePath)
		if err != nil {
			logger.Fatal("Failed to open local rule store", zap.Error(err))
		}
		defer sqliteStore.Close()
		store = sqliteStore
		logger.Info("Using local rule store", zap.String("path", cfg.SQLitePath))
	}

	var publisher *events.Publisher
	if cfg.NATS.URL != "" {
		nc, err := connectNATS(cfg, logger)
		if err != nil {
			logger.Fatal("Failed to connect to NATS after retries", zap.Error(err))
		}
		defer nc.Close()

		js, err := nc.JetStream()
		if err != nil {
			logger.Fatal("Failed to create JetStream context", zap.Error(err))
		}

		publisher, err = events.NewPublisher(logger, js)
		if err != nil {
			logger.Fatal("Failed to create event publisher", zap.Error(err))
		}
		logger.Info("Rule change events enabled", zap.String("url", nc.ConnectedUrl()))
	}

	sessions := alerts.NewSessionManager(logger, store)
	collector := monitor.NewCollector(logger)
	server := api.NewServer(logger, sessions, publisher, collector)

	httpServer := &http.Server{
		Addr:         cfg.Listen,
		Handler:      server.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	go func() {
		logger.Info("Console listening", zap.String("addr", cfg.Listen))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown incomplete", zap.Error(err))
	}

	logger.Info("Server shutting down gracefully")
}

func newLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func connectNATS(cfg *config.Config, logger *zap.Logger) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name("smartnotify-console"),
		nats.MaxReconnects(cfg.NATS.MaxReconnects),
		nats.ReconnectWait(cfg.NATS.ReconnectWait),
		nats.Timeout(cfg.NATS.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	}

	var nc *nats.Conn
	var err error
	maxRetries := 5
	for i := 0; i < maxRetries; i++ {
		nc, err = nats.Connect(cfg.NATS.URL, opts...)
		if err == nil {
			return nc, nil
		}
		logger.Warn("Failed to connect to NATS, retrying...",
			zap.Int("attempt", i+1),
			zap.Error(err))
		time.Sleep(time.Second * time.Duration(i+1))
	}
	return nil, err
}
