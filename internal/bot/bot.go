// Package bot runs the harvest, compose, publish cycle. Each cycle reads the
// catalog, drops anything already posted, and delivers up to a configured
// number of new products in catalog order. Delivery is at-least-once: the
// posted record is written only after a successful publish, so a crash
// between the two can repost one product on the next cycle.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/BunsoMendoza/dealbot-tech/internal/catalog"
	"github.com/BunsoMendoza/dealbot-tech/internal/publisher"
	"github.com/BunsoMendoza/dealbot-tech/internal/storage"
)

type Bot struct {
	csvPath    string
	markerPath string
	store      PostedStore
	producer   Producer // optional; nil skips the harvest step
	composer   Synthesizer
	publisher  publisher.Publisher
	limit      int
}

func New(csvPath, markerPath string, store PostedStore, producer Producer, composer Synthesizer, pub publisher.Publisher, limit int) *Bot {
	return &Bot{
		csvPath:    csvPath,
		markerPath: markerPath,
		store:      store,
		producer:   producer,
		composer:   composer,
		publisher:  pub,
		limit:      limit,
	}
}

// RunOnce executes a single cycle and returns the number of products posted.
// A harvest failure is logged and the cycle continues with the existing
// catalog; a catalog read failure aborts the cycle.
func (b *Bot) RunOnce(ctx context.Context) (int, error) {
	if b.producer != nil {
		added, err := b.producer.Refresh(ctx, b.csvPath)
		if err != nil {
			slog.Warn("Feed refresh failed, continuing with existing catalog", "error", err)
		} else if added > 0 {
			slog.Info("Feed refresh complete", "added", added)
		}
	}

	products, rowErrs, err := catalog.ReadProducts(b.csvPath)
	if err != nil {
		return 0, fmt.Errorf("reading catalog: %w", err)
	}
	for _, rowErr := range rowErrs {
		slog.Warn("Skipping catalog row", "reason", rowErr)
	}

	var candidates []int
	for i, p := range products {
		if !b.store.Contains(p.URL) {
			candidates = append(candidates, i)
		}
	}
	slog.Info("Cycle starting",
		"platform", b.publisher.Platform(),
		"catalog", len(products),
		"new", len(candidates),
		"limit", b.limit)

	posted := 0
	for _, i := range candidates {
		if posted >= b.limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return posted, err
		}
		p := products[i]

		text := b.composer.Synthesize(ctx, p)
		result, err := b.publisher.Publish(ctx, text)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return posted, err
			}
			slog.Error("Publish failed, moving to next product", "url", p.URL, "error", err)
			continue
		}

		if err := b.store.Record(p.URL, p.Title, result.ID); err != nil {
			slog.Error("Posted record not persisted, duplicate possible after restart",
				"url", p.URL, "error", err)
		}
		if err := storage.MarkRun(b.markerPath); err != nil {
			slog.Warn("Run marker not written", "path", b.markerPath, "error", err)
		}
		posted++
		slog.Info("Posted product", "title", p.Title, "url", p.URL, "post_id", result.ID)
	}

	slog.Info("Cycle complete", "posted", posted)
	return posted, nil
}

// RunLoop runs cycles every interval until ctx is cancelled. Cycle errors are
// logged and the loop keeps going; only cancellation ends it.
func (b *Bot) RunLoop(ctx context.Context, interval time.Duration) error {
	for {
		if _, err := b.RunOnce(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			slog.Error("Cycle failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}
