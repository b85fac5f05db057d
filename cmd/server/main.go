package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/knostijr/BE-coderr/internal/account"
	"github.com/knostijr/BE-coderr/internal/api"
	"github.com/knostijr/BE-coderr/internal/config"
	"github.com/knostijr/BE-coderr/internal/database"
	"github.com/knostijr/BE-coderr/internal/offer"
	"github.com/knostijr/BE-coderr/internal/order"
	"github.com/knostijr/BE-coderr/internal/review"
	"github.com/knostijr/BE-coderr/internal/stats"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := database.New(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	accountRepo := account.NewRepository(db.Pool())
	offerRepo := offer.NewRepository(db.Pool())
	orderRepo := order.NewRepository(db.Pool())
	reviewRepo := review.NewRepository(db.Pool())

	accountService := account.NewService(accountRepo, cfg.JWTSecret, time.Duration(cfg.TokenTTL)*time.Hour, cfg.BcryptCost)
	aggregator := stats.NewAggregator(offerRepo, reviewRepo, accountRepo)

	router := api.NewRouter(api.RouterDeps{
		AccountService: accountService,
		AccountRepo:    accountRepo,
		OfferRepo:      offerRepo,
		OrderRepo:      orderRepo,
		ReviewRepo:     reviewRepo,
		Aggregator:     aggregator,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting coderr server", "port", cfg.Port, "version", cfg.Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
