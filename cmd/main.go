package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatrelay/internal/config"
	"chatrelay/internal/infrastructure"
	"chatrelay/internal/interfaces"
	httpapi "chatrelay/internal/interfaces/http"
	"chatrelay/internal/logger"
	"chatrelay/internal/repository"
	"chatrelay/internal/usecases"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", slog.String("component", "app"), slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("dotenv.load.fail", slog.String("error", err.Error()))
	}

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return err
	}
	log := logger.Init(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var usage interfaces.UsageRecorder = repository.NopUsage{}
	if cfg.Database.URL != "" {
		pgClient, err := infrastructure.NewPostgresClient(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer pgClient.Close()
		usage = repository.NewUsageRepository(pgClient.Pool)
		log.Info("usage.enabled", slog.String("component", "db"))
	}

	store := infrastructure.NewMemorySessionStore()
	aiClient := infrastructure.NewAzureOpenAIClient(cfg.Azure)
	messenger := infrastructure.NewGupshupClient(cfg.Gupshup)

	sessions := usecases.NewSessionManager(store, aiClient, usecases.DefaultPrompts(), log)
	dispatcher := usecases.NewDispatcher(messenger, log)
	messageService := usecases.NewMessageService(sessions, dispatcher, usage, log)

	gin.SetMode(cfg.Server.GinMode)
	r := gin.New()
	httpapi.SetupRoutes(r, httpapi.NewHandler(messageService, dispatcher, store, log), cfg.Server.MaxBodyBytes)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http.listen", slog.String("component", "app"), slog.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutdown", slog.String("component", "app"))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	sent, failed := dispatcher.Stats()
	log.Info("shutdown.done",
		slog.String("component", "app"),
		slog.Uint64("dispatch_sent", sent),
		slog.Uint64("dispatch_failed", failed),
	)
	return nil
}
