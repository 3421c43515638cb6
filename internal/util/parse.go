package util

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var nonPriceRegex = regexp.MustCompile(`[^0-9.\-]`)

// ParsePrice converts a raw price string to a decimal, stripping currency
// symbols, commas and other junk first. Returns nil when nothing numeric
// survives — an unparsable price is absent, never an error.
func ParsePrice(s string) *decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	cleaned := nonPriceRegex.ReplaceAllString(s, "")
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil
	}
	return &d
}

// SplitTags splits a comma-separated tag string, trimming each token and
// dropping empty ones. Returns nil for an effectively empty input.
func SplitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
