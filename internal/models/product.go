package models

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrMissingCredentials is returned when a platform client is constructed
// without the environment variables it needs. It is fatal at startup.
var ErrMissingCredentials = errors.New("missing delivery credentials")

// Product is one deal discovered from a feed. Created by the catalog reader
// from a single row; immutable afterwards.
type Product struct {
	Title     string           `validate:"required"`
	URL       string           `validate:"required,url"`
	Price     *decimal.Decimal `validate:"-"`
	DealPrice *decimal.Decimal `validate:"-"`
	Currency  string
	ImageURL  string
	Tags      []string
}

// PostedRecord is the durable outcome of a successful publish for a product
// URL. Once written, that URL is permanently excluded from selection.
type PostedRecord struct {
	Title      string    `json:"title"`
	ExternalID string    `json:"external_id,omitempty"`
	PostedAt   time.Time `json:"posted_at"`
}

var validate = validator.New()

// Validate checks a product against its struct tags.
func Validate(p Product) error {
	return validate.Struct(p)
}
