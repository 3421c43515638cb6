package catalog

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// Row is one raw catalog row as produced by the feed fetcher, prior to
// validation. Field order matches the CSV header.
type Row struct {
	Title     string
	URL       string
	Price     string
	DealPrice string
	Currency  string
	ImageURL  string
	Tags      string
}

var csvHeader = []string{"title", "url", "price", "deal_price", "currency", "image_url", "tags"}

// ExistingURLs returns the set of URLs already present in the catalog.
// A missing file is an empty set, not an error.
func ExistingURLs(path string) (map[string]struct{}, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return map[string]struct{}{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	urls := make(map[string]struct{})
	if len(records) == 0 {
		return urls, nil
	}

	urlCol := -1
	for i, h := range records[0] {
		if i == 0 {
			h = strings.TrimPrefix(h, "\uFEFF")
		}
		if strings.ToLower(strings.TrimSpace(h)) == "url" {
			urlCol = i
			break
		}
	}
	if urlCol == -1 {
		return urls, nil
	}

	for _, rec := range records[1:] {
		if urlCol < len(rec) {
			if u := strings.TrimSpace(rec[urlCol]); u != "" {
				urls[u] = struct{}{}
			}
		}
	}
	return urls, nil
}

// AppendRows merges rows into the catalog, skipping any whose URL is already
// present. Creates the file with a header when absent. Returns the number of
// rows actually added.
func AppendRows(path string, rows []Row) (int, error) {
	existing, err := ExistingURLs(path)
	if err != nil {
		return 0, err
	}

	var fresh []Row
	for _, row := range rows {
		if _, dup := existing[row.URL]; dup {
			continue
		}
		existing[row.URL] = struct{}{}
		fresh = append(fresh, row)
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	_, statErr := os.Stat(path)
	needHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return 0, fmt.Errorf("open catalog %s for append: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if needHeader {
		if err := w.Write(csvHeader); err != nil {
			return 0, fmt.Errorf("write catalog header: %w", err)
		}
	}
	for _, row := range fresh {
		rec := []string{row.Title, row.URL, row.Price, row.DealPrice, row.Currency, row.ImageURL, row.Tags}
		if err := w.Write(rec); err != nil {
			return 0, fmt.Errorf("write catalog row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("flush catalog: %w", err)
	}
	return len(fresh), nil
}
