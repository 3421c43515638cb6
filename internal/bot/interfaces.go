package bot

import (
	"context"

	"github.com/BunsoMendoza/dealbot-tech/internal/models"
)

// Producer harvests fresh listings into the catalog file ahead of a cycle.
type Producer interface {
	Refresh(ctx context.Context, csvPath string) (int, error)
}

// Synthesizer turns a product into post text.
type Synthesizer interface {
	Synthesize(ctx context.Context, p models.Product) string
}

// PostedStore tracks which product URLs have already been posted.
type PostedStore interface {
	Contains(url string) bool
	Record(url, title, externalID string) error
}
