package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/gallerihuset/kiosk/internal/clock"
	"github.com/gallerihuset/kiosk/internal/config"
	"github.com/gallerihuset/kiosk/internal/health"
	"github.com/gallerihuset/kiosk/internal/listing"
	"github.com/gallerihuset/kiosk/internal/session"
	"github.com/gallerihuset/kiosk/internal/syncer"
	"github.com/gallerihuset/kiosk/internal/telemetry"
	"github.com/gallerihuset/kiosk/internal/transport"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	if err := run(*configPath); err != nil {
		slog.Error("fatal error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Local overrides for development; missing .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	tp, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		slog.Warn("telemetry setup failed, continuing without OTEL export", slog.Any("error", err))
		tp = telemetry.NewNopProvider()
	}
	defer func() {
		if shutdownErr := tp.Shutdown(context.Background()); shutdownErr != nil {
			slog.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	logger := tp.Logger
	clk := clock.Real{}

	metrics, err := telemetry.NewMetrics(tp.MeterProvider)
	if err != nil {
		return fmt.Errorf("creating metrics: %w", err)
	}

	// The shell has no rendering surface; presentation callbacks just log.
	// A real kiosk front end supplies its own here.
	sess := session.New(logger, session.Callbacks{
		ShowDetails: func(v session.ItemView) {
			logger.Info("show details", slog.String("listing_id", v.ID), slog.Int("lot", v.LotOrdinal))
		},
		PresentModal: func(v session.ItemView) {
			logger.Info("present modal", slog.String("listing_id", v.ID), slog.Int("lot", v.LotOrdinal))
		},
	})

	client := transport.NewClient(cfg.Auction.BaseURL, logger, tp.TracerProvider)
	fetcher := syncer.NewFetcher(client, cfg.Auction.ID, cfg.Auction.PageSize,
		listing.NewArtworkCache(), metrics, tp.TracerProvider)
	scheduler := syncer.NewScheduler(fetcher, sess,
		cfg.Auction.SyncInterval, cfg.Auction.FetchTimeout,
		clk, logger, metrics, tp.TracerProvider)

	healthHandler := health.NewHandler(clk,
		health.Checker{
			Name: "sync",
			Check: func(context.Context) error {
				if _, ok := sess.LastSyncAt(); !ok {
					return fmt.Errorf("no successful sync yet")
				}
				return nil
			},
		},
	)
	sess.OnSynced(func(time.Time) { healthHandler.SetReady(true) })

	router := mux.NewRouter()
	healthHandler.Routes(router, healthHandler.StatusHandler(sess))

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.InfoContext(ctx, "starting health server", slog.Int("port", cfg.Server.Port))
		if listenErr := httpServer.ListenAndServe(); listenErr != nil && listenErr != http.ErrServerClosed {
			logger.ErrorContext(ctx, "health server error", slog.Any("error", listenErr))
		}
	}()

	logger.InfoContext(ctx, "kiosk listings sync running",
		slog.String("version", version),
		slog.String("auction_id", cfg.Auction.ID),
		slog.Duration("interval", cfg.Auction.SyncInterval),
	)

	done := make(chan struct{})
	go func() {
		scheduler.Run(ctx)
		close(done)
	}()

	<-ctx.Done()
	logger.Info("shutting down...")
	<-done

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", slog.Any("error", err))
	}

	logger.Info("shutdown complete")
	return nil
}
