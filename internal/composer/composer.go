// Package composer turns a product into a bounded-length social post. A
// generative provider is tried first when configured; any failure degrades
// to a deterministic template. Synthesize never fails for a well-formed
// product and its output never exceeds the configured character budget.
package composer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/BunsoMendoza/dealbot-tech/internal/models"
)

const separator = " — "

// TextProvider is the generative collaborator. A nil provider means
// template-only operation.
type TextProvider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Composer struct {
	provider TextProvider
	maxChars int
	style    string
}

func New(provider TextProvider, maxChars int, style string) *Composer {
	return &Composer{provider: provider, maxChars: maxChars, style: style}
}

// Synthesize produces the post text for p. The result is at most maxChars
// characters; when maxChars is too small to hold even the URL, the final
// hard cut truncates the URL itself.
func (c *Composer) Synthesize(ctx context.Context, p models.Product) string {
	if c.provider != nil {
		text, err := c.fromProvider(ctx, p)
		if err == nil {
			return text
		}
		slog.Warn("Text provider failed, falling back to template", "url", p.URL, "error", err)
	}
	return c.template(p)
}

func (c *Composer) fromProvider(ctx context.Context, p models.Product) (string, error) {
	text, err := c.provider.Complete(ctx, c.buildPrompt(p))
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("provider returned empty text")
	}

	if p.URL != "" && !strings.Contains(text, p.URL) {
		text = text + " " + p.URL
	}
	if utf8.RuneCountInString(text) > c.maxChars {
		text = truncateRunes(text, c.maxChars-3) + "..."
	}
	return text, nil
}

func (c *Composer) buildPrompt(p models.Product) string {
	var b strings.Builder
	b.WriteString("You are a friendly, concise social media copywriter. ")
	b.WriteString("Write a single social post (<=280 chars) that highlights the product title, ")
	b.WriteString("mentions the deal price if present, includes the product URL, ")
	b.WriteString("and keeps the tone enthusiastic but factual. ")
	b.WriteString("Do not invent discounts or false claims.\n\n")

	fmt.Fprintf(&b, "Product: %s\n", p.Title)
	fmt.Fprintf(&b, "Price: %s\n", priceOrNA(p.Price))
	fmt.Fprintf(&b, "Deal price: %s\n", priceOrNA(p.DealPrice))
	fmt.Fprintf(&b, "Currency: %s\n", p.Currency)
	fmt.Fprintf(&b, "URL: %s\n", p.URL)
	if c.style != "" {
		fmt.Fprintf(&b, "Style: %s\n", c.style)
	}
	return b.String()
}

// template builds the deterministic fallback post. When the joined string is
// over budget only the title segment is shortened; the URL is kept intact as
// long as the budget can hold it at all, dropping the title and price
// segments entirely at very small budgets.
func (c *Composer) template(p models.Product) string {
	price := p.DealPrice
	if price == nil {
		price = p.Price
	}

	parts := []string{p.Title}
	if price != nil {
		parts = append(parts, fmt.Sprintf("Now %s%s!", p.Currency, price.String()))
	}
	parts = append(parts, p.URL)

	text := strings.Join(parts, separator)
	if utf8.RuneCountInString(text) > c.maxChars {
		overhead := utf8.RuneCountInString(text) - utf8.RuneCountInString(p.Title)
		if maxTitle := c.maxChars - overhead - 3; maxTitle > 0 {
			parts[0] = truncateRunes(p.Title, maxTitle) + "..."
			text = strings.Join(parts, separator)
		}
		// No room for a shortened title (or price): drop leading segments
		// so the URL survives intact whenever the budget can hold it.
		for utf8.RuneCountInString(text) > c.maxChars && len(parts) > 1 {
			parts = parts[1:]
			text = strings.Join(parts, separator)
		}
	}
	// Hard cut covers budgets too small to fit even the URL.
	if utf8.RuneCountInString(text) > c.maxChars {
		text = truncateRunes(text, c.maxChars)
	}
	return text
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func priceOrNA(d *decimal.Decimal) string {
	if d == nil {
		return "N/A"
	}
	return d.String()
}
