// Package catalog reads and writes the product catalog CSV that backs the
// posting pipeline. The catalog is append-only: the feed fetcher merges new
// rows in, the bot filters rows out at selection time, nothing is deleted.
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/BunsoMendoza/dealbot-tech/internal/models"
	"github.com/BunsoMendoza/dealbot-tech/internal/util"
)

// ReadProducts parses and validates the catalog at path. Malformed rows are
// skipped, each contributing one human-readable string to the returned error
// list; a single bad row never aborts the batch. Row order is preserved.
// The returned error covers file-level failures only (missing file, broken
// header), not row problems.
func ReadProducts(path string) ([]models.Product, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read catalog header: %w", err)
	}

	// Column names are matched case-insensitively and trimmed. The first
	// header cell may carry a UTF-8 BOM from spreadsheet exports.
	idx := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\uFEFF")
		}
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var products []models.Product
	var rowErrs []string

	for rowNum := 1; ; rowNum++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			rowErrs = append(rowErrs, fmt.Sprintf("row %d: malformed row: %v", rowNum, err))
			continue
		}

		get := func(keys ...string) string {
			for _, k := range keys {
				if i, ok := idx[k]; ok && i < len(rec) {
					if v := strings.TrimSpace(rec[i]); v != "" {
						return v
					}
				}
			}
			return ""
		}

		title := get("title", "name")
		rawURL := get("url", "link")

		if title == "" {
			rowErrs = append(rowErrs, fmt.Sprintf("row %d: missing title", rowNum))
			continue
		}
		if !isHTTPURL(rawURL) {
			rowErrs = append(rowErrs, fmt.Sprintf("row %d (%s): invalid or missing URL: %s", rowNum, title, rawURL))
			continue
		}

		p := models.Product{
			Title:     title,
			URL:       rawURL,
			Price:     util.ParsePrice(get("price")),
			DealPrice: util.ParsePrice(get("deal_price", "sale_price")),
			Currency:  get("currency"),
			ImageURL:  get("image_url", "image"),
			Tags:      util.SplitTags(get("tags")),
		}
		if err := models.Validate(p); err != nil {
			rowErrs = append(rowErrs, fmt.Sprintf("row %d (%s): %v", rowNum, title, err))
			continue
		}
		products = append(products, p)
	}

	return products, rowErrs, nil
}

func isHTTPURL(s string) bool {
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
