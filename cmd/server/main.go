package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/parcours-backend-go/internal/api"
	"github.com/jengzang/parcours-backend-go/internal/app"
	"github.com/jengzang/parcours-backend-go/internal/config"
	"github.com/jengzang/parcours-backend-go/internal/database"
	"github.com/jengzang/parcours-backend-go/internal/logging"
	"github.com/jengzang/parcours-backend-go/internal/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("[Server] config error")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: os.Stderr})
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := database.Init(database.Config{Path: cfg.DBPath}); err != nil {
		logging.Fatal().Err(err).Msg("[Server] failed to initialize database")
	}
	defer database.Close()

	collector := metrics.NewCollector()
	comps, err := app.Build(ctx, cfg, database.GetDB(), collector)
	if err != nil {
		logging.Fatal().Err(err).Msg("[Server] failed to build components")
	}
	defer comps.Close()

	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           api.SetupRouter(cfg, comps.Service, collector),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info().Str("addr", cfg.Port).Msg("[Server] listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("[Server] listen failed")
			cancel()
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("[Server] shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("[Server] graceful shutdown failed")
	}
}
