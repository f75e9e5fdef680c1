package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"scamshield/internal/api"
	"scamshield/internal/classifier"
	"scamshield/internal/config"
	"scamshield/internal/generator"
	"scamshield/internal/logger"
	"scamshield/internal/metrics"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the yaml config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lg, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer lg.Sync()

	gen, err := generator.New(cfg.Generator)
	if err != nil {
		lg.Fatal("failed to create generator", zap.Error(err))
	}

	m := metrics.New()
	pipeline := classifier.New(gen, lg, m)
	server := api.NewServer(pipeline, lg, m, cfg.Server)

	lg.Info("server starting",
		zap.String("addr", cfg.Server.Port),
		zap.String("provider", cfg.Generator.Provider),
		zap.String("model", cfg.Generator.Model),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	if err := serve(lg, server, cfg.Server.Port, quit); err != nil {
		lg.Error("server error", zap.Error(err))
		_ = lg.Sync()
		os.Exit(1)
	}
}

type httpServer interface {
	Start(addr string) error
	Shutdown(ctx context.Context) error
}

// serve runs srv until a signal arrives on quit or Start fails.
func serve(lg *zap.Logger, srv httpServer, addr string, quit <-chan os.Signal) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("start server on %s: %w", addr, err)
	case <-quit:
	}

	lg.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(ctx)
}
