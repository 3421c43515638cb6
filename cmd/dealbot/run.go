package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/BunsoMendoza/dealbot-tech/internal/ai"
	"github.com/BunsoMendoza/dealbot-tech/internal/bot"
	"github.com/BunsoMendoza/dealbot-tech/internal/composer"
	"github.com/BunsoMendoza/dealbot-tech/internal/config"
	"github.com/BunsoMendoza/dealbot-tech/internal/feeds"
	"github.com/BunsoMendoza/dealbot-tech/internal/health"
	"github.com/BunsoMendoza/dealbot-tech/internal/publisher"
	"github.com/BunsoMendoza/dealbot-tech/internal/storage"
)

// harvestLimit caps items taken per feed during the pre-cycle refresh.
const harvestLimit = 50

var (
	runOnce        bool
	runLimit       int
	runIntervalMin int
	runCSV         string
	runNoFetch     bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the post cycle, once or on an interval",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBot(cmd.Context())
	},
}

func init() {
	runCmd.Flags().BoolVar(&runOnce, "once", false, "run a single cycle and exit")
	runCmd.Flags().IntVar(&runLimit, "limit", 1, "maximum products to post per cycle")
	runCmd.Flags().IntVar(&runIntervalMin, "interval", 60, "minutes between cycles")
	runCmd.Flags().StringVar(&runCSV, "csv", "", "catalog file path (overrides PRODUCTS_CSV)")
	runCmd.Flags().BoolVar(&runNoFetch, "no-fetch", false, "skip the feed refresh before each cycle")
}

func runBot(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if runCSV != "" {
		cfg.CSVPath = runCSV
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := storage.Open(cfg.PostedDBPath)

	pub, err := buildPublisher(cfg)
	if err != nil {
		return err
	}
	if identity, err := pub.WhoAmI(ctx); err != nil {
		slog.Warn("Account lookup failed, continuing anyway", "platform", pub.Platform(), "error", err)
	} else {
		slog.Info("Authenticated", "platform", pub.Platform(), "account_id", identity.ID, "username", identity.Username)
	}

	var provider composer.TextProvider
	gemini, err := ai.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		slog.Warn("Gemini client unavailable, posts will use the template composer", "error", err)
	} else if gemini != nil {
		provider = gemini
		defer gemini.Close()
	}

	comp := composer.New(provider, cfg.MaxPostChars, "")

	var producer bot.Producer
	if !runNoFetch {
		producer = feeds.New(cfg, harvestLimit, "tech")
	}

	b := bot.New(cfg.CSVPath, cfg.LastRunPath, store, producer, comp, pub, runLimit)

	if cfg.HealthPort != "" {
		srv := &http.Server{
			Addr:        ":" + cfg.HealthPort,
			Handler:     health.Handler(store, cfg.LastRunPath),
			ReadTimeout: 10 * time.Second,
		}
		go func() {
			slog.Info("Health endpoint listening", "port", cfg.HealthPort)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("Health server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if runOnce {
		_, err := b.RunOnce(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	return b.RunLoop(ctx, time.Duration(runIntervalMin)*time.Minute)
}

func buildPublisher(cfg *config.Config) (publisher.Publisher, error) {
	switch cfg.Platform {
	case "twitter":
		return publisher.NewTwitter(cfg.TwitterAccessToken)
	default:
		return publisher.NewThreads(cfg.ThreadsUserID, cfg.ThreadsAccessToken)
	}
}
