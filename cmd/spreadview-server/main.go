package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"spreadview/internal/config"
	"spreadview/internal/httpapi"
	"spreadview/internal/market"
	"spreadview/internal/store"
	"spreadview/internal/upstream"
	"spreadview/internal/util"
)

func main() {
	// Optional .env for local development; credentials usually live there.
	godotenv.Load()

	cfgPath := "config/spreadview.yaml"
	if p := os.Getenv("SPREADVIEW_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	loc, err := time.LoadLocation(cfg.Market.Exchange)
	if err != nil {
		log.Fatalf("invalid exchange zone %q: %v", cfg.Market.Exchange, err)
	}

	claims, err := store.NewClaimStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("failed to open claims store: %v", err)
	}
	defer claims.Close()

	analysis := upstream.NewClient(upstream.Options{
		BaseURL:        cfg.Upstream.BaseURL,
		RequestsPerSec: cfg.Upstream.RequestsPerSec,
		MaxRetries:     cfg.Upstream.MaxRetries,
		Timeout:        time.Duration(cfg.Upstream.TimeoutSec) * time.Second,
	}, logger)

	var bars market.BarSource
	switch cfg.Market.Source {
	case "alpaca":
		bars = market.NewAlpacaSource(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret,
			cfg.Alpaca.DataURL, cfg.Alpaca.Feed, cfg.Alpaca.RateLimitPerMin, logger)
	case "upstream", "":
		bars = market.NewUpstreamSource(analysis)
	default:
		log.Fatalf("unknown market source %q", cfg.Market.Source)
	}

	api := httpapi.NewDashboardServer(analysis, bars, claims,
		cfg.Chart.Width, cfg.Chart.Height, loc, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("spreadview-server listening", "addr", addr, "source", cfg.Market.Source)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
