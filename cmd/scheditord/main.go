package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmarrero/scheditor/internal/config"
	"github.com/dmarrero/scheditor/internal/engine"
	"github.com/dmarrero/scheditor/internal/server"
	"github.com/dmarrero/scheditor/pkg/board"
	"github.com/dmarrero/scheditor/pkg/history"
	"github.com/dmarrero/scheditor/pkg/slotmask"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("cannot initialize logger: %v", err)
	}
	defer logger.Sync()

	grid, err := slotmask.NewGrid(cfg.CycleDays, cfg.PeriodsPerDay)
	if err != nil {
		logger.Fatal("invalid grid configuration", zap.Error(err))
	}

	sessionBoard := board.NewBoard(grid)
	sessionHistory := history.NewHistory(sessionBoard, cfg.HistoryMaxSize, logger)
	engineClient := engine.NewClient(cfg.EngineBaseURL, cfg.EngineTimeout, logger)

	editor := server.New(grid, sessionBoard, sessionHistory, engineClient, logger)
	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: editor.Handler(),
	}

	go func() {
		logger.Info("starting editing service",
			zap.String("addr", cfg.Addr),
			zap.Int("cycleDays", grid.CycleDays),
			zap.Int("periodsPerDay", grid.PeriodsPerDay))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped unexpectedly", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
	logger.Info("editing service stopped")
}

func newLogger(level string) (*zap.Logger, error) {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(parsed)
	return zapConfig.Build()
}
