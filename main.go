package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dnldd/sparkgraph/chart"
	"github.com/dnldd/sparkgraph/fetch"
	"github.com/dnldd/sparkgraph/service"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

// handleTermination processes context cancellation signals or interrupt signals from the OS.
func handleTermination(ctx context.Context, cancel context.CancelFunc) {
	// Listen for interrupt signals.
	signals := []os.Signal{os.Interrupt, syscall.SIGTERM}
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, signals...)

	// Wait for the context to be cancelled or an interrupt signal.
	for {
		select {
		case <-ctx.Done():
			return

		case <-interrupt:
			cancel()
		}
	}
}

func main() {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	logger := log.With().Str("service", "sparkgraph").Logger()

	var cfg Config
	err := loadConfig(&cfg, "")
	if err != nil {
		logger.Error().Msgf("loading config: %v", err)
		return
	}

	// Validated by loadConfig.
	style, _ := chart.ParseStyle(cfg.ChartStyle)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clientLogger := logger.With().Str("component", "polygon").Logger()
	client, err := fetch.NewPolygonClient(&fetch.PolygonConfig{
		APIKey:  cfg.PolygonAPIKey,
		BaseURL: fetch.BaseURL,
		Logger:  &clientLogger,
	})
	if err != nil {
		logger.Error().Msgf("creating polygon client: %v", err)
		return
	}

	sparkLogger := logger.With().Str("component", "service").Logger()
	spark, err := service.NewSpark(&service.SparkConfig{
		APIKey:        cfg.PolygonAPIKey,
		AuthUsername:  cfg.BasicAuthUsername,
		AuthPassword:  cfg.BasicAuthPassword,
		ListenAddress: cfg.ListenAddress,
		ChartStyle:    style,
		Client:        client,
		Logger:        &sparkLogger,
	})
	if err != nil {
		logger.Error().Msgf("creating spark service: %v", err)
		return
	}

	go handleTermination(ctx, cancel)

	err = spark.Run(ctx)
	if err != nil {
		logger.Error().Msgf("running spark service: %v", err)
	}
}
