package feeds

import (
	"regexp"
	"strings"
)

var (
	priceRegex         = regexp.MustCompile(`\$\s*(\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?)`)
	originalPriceRegex = regexp.MustCompile(`(?i)(?:was|reg(?:ular)?|original|list|retail)[^$]*\$\s*(\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?)`)
)

// extractPrice returns the first dollar price found in text, without the
// currency symbol or thousands separators. Empty when no price is present.
func extractPrice(text string) string {
	m := priceRegex.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.ReplaceAll(m[1], ",", "")
}

// extractOriginalPrice finds a "was $X" / "reg $X" style pre-deal price.
func extractOriginalPrice(text string) string {
	m := originalPriceRegex.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.ReplaceAll(m[1], ",", "")
}
