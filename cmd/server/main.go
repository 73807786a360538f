package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/nestris-commentator/internal/config"
	"github.com/DoyleJ11/nestris-commentator/internal/httpapi"
	"github.com/DoyleJ11/nestris-commentator/internal/hub"
	"github.com/DoyleJ11/nestris-commentator/internal/logging"
	"github.com/DoyleJ11/nestris-commentator/internal/room"
	"github.com/DoyleJ11/nestris-commentator/internal/transcript"
	"github.com/DoyleJ11/nestris-commentator/internal/ws"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.Fatalf("load .env: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.Debug)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := room.Options{
		Logger:        logger,
		Settle:        cfg.Settle,
		Grace:         cfg.Grace,
		ReminderEvery: cfg.Reminder,
		EvalCooldown:  cfg.EvalCooldown,
	}
	if cfg.DatabaseURL != "" {
		store, err := transcript.Open(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer store.Close()
		opts.Sink = store
		logger.Info("transcript enabled")
	}

	h := hub.NewHub(ctx, opts)

	// Build the router *with* the hub injected
	handler := httpapi.SetupRoutes(h, ws.Options{Logger: logger, FrameRate: cfg.FrameRate})
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		select {
		case h.Inbox() <- hub.ShutdownHub{}:
		case <-h.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
