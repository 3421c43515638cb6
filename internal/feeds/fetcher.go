// Package feeds pulls tech deal entries from public RSS feeds and merges
// them into the product catalog. It is the candidate producer for the
// posting pipeline; everything downstream only sees catalog rows.
package feeds

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/BunsoMendoza/dealbot-tech/internal/catalog"
	"github.com/BunsoMendoza/dealbot-tech/internal/config"
)

const slickDealsBase = "https://slickdeals.net/newsearch.php?mode=frontpage&searcharea=deals&searchin=first&rss=1"

var dealNewsFeeds = map[string]string{
	"electronics": "https://www.dealnews.com/c142/Electronics/?rss=1",
	"computers":   "https://www.dealnews.com/c143/Computers/?rss=1",
	"phones":      "https://www.dealnews.com/c131/Cell-Phones/?rss=1",
	"tvs":         "https://www.dealnews.com/c141/TVs/?rss=1",
	"gaming":      "https://www.dealnews.com/c154/Gaming/?rss=1",
}

// techKeywords gates which entries count as tech deals. An empty list keeps
// everything.
var techKeywords = []string{
	"laptop", "monitor", "keyboard", "mouse", "headphone", "earbuds", "speaker",
	"tablet", "ipad", "phone", "ssd", "hard drive", "ram", "gpu", "cpu",
	"graphics card", "router", "switch", "hub", "usb", "cable", "charger",
	"power bank", "webcam", "microphone", "tv", "4k", "gaming", "console",
	"nintendo", "playstation", "xbox", "steam deck", "drone", "camera",
	"smartwatch", "apple", "samsung", "dell", "lenovo", "asus", "acer", "hp",
	"logitech", "razer", "corsair", "anker", "belkin", "intel", "amd", "nvidia",
}

type Fetcher struct {
	feeds    []string
	client   *http.Client
	parser   *gofeed.Parser
	limit    int
	tags     string
	keywords []string
}

// New builds a fetcher over the feed list derived from cfg: one SlickDeals
// search feed per configured keyword (or the front-page feed when none) plus
// the configured DealNews category feeds. limit caps entries taken per feed.
func New(cfg *config.Config, limit int, tags string) *Fetcher {
	return &Fetcher{
		feeds:    BuildFeedURLs(cfg.SlickDealsKeywords, cfg.DealNewsCategories),
		client:   &http.Client{Timeout: 15 * time.Second},
		parser:   gofeed.NewParser(),
		limit:    limit,
		tags:     tags,
		keywords: techKeywords,
	}
}

func BuildFeedURLs(keywords, categories []string) []string {
	var feeds []string
	if len(keywords) > 0 {
		for _, kw := range keywords {
			feeds = append(feeds, slickDealsBase+"&q="+kw)
		}
	} else {
		feeds = append(feeds, slickDealsBase)
	}
	for _, cat := range categories {
		if u, ok := dealNewsFeeds[strings.ToLower(cat)]; ok {
			feeds = append(feeds, u)
		}
	}
	return feeds
}

// Fetch pulls all feeds concurrently and returns their rows merged in feed
// order, deduplicated by URL within the batch. Individual feed failures are
// logged and skipped; Fetch only fails when the context dies.
func (f *Fetcher) Fetch(ctx context.Context) ([]catalog.Row, error) {
	results := make([][]catalog.Row, len(f.feeds))

	g, gctx := errgroup.WithContext(ctx)
	for i, feedURL := range f.feeds {
		g.Go(func() error {
			rows, err := f.fetchFeed(gctx, feedURL)
			if err != nil {
				slog.Warn("Feed fetch failed, skipping", "feed", feedURL, "error", err)
				return nil
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	seen := make(map[string]struct{})
	var merged []catalog.Row
	for _, rows := range results {
		for _, row := range rows {
			if _, dup := seen[row.URL]; dup {
				continue
			}
			seen[row.URL] = struct{}{}
			merged = append(merged, row)
		}
	}
	return merged, nil
}

// Refresh fetches all feeds and merges new rows into the catalog at csvPath.
// Returns the number of rows added.
func (f *Fetcher) Refresh(ctx context.Context, csvPath string) (int, error) {
	rows, err := f.Fetch(ctx)
	if err != nil {
		return 0, err
	}
	added, err := catalog.AppendRows(csvPath, rows)
	if err != nil {
		return 0, fmt.Errorf("merge rows into catalog: %w", err)
	}
	return added, nil
}

func (f *Fetcher) fetchFeed(ctx context.Context, feedURL string) ([]catalog.Row, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed status %d", resp.StatusCode)
	}

	feed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := feed.Items
	if len(items) > f.limit {
		items = items[:f.limit]
	}

	var rows []catalog.Row
	for _, item := range items {
		link := strings.TrimSpace(item.Link)
		if link == "" {
			continue
		}

		title := strings.TrimSpace(item.Title)
		summary := stripHTML(item.Description)
		if !f.isTech(title, summary) {
			continue
		}

		// The first price in the title is usually the deal price.
		dealPrice := extractPrice(title)
		if dealPrice == "" {
			dealPrice = extractPrice(summary)
		}
		originalPrice := extractOriginalPrice(title)
		if originalPrice == "" {
			originalPrice = extractOriginalPrice(summary)
		}

		currency := ""
		if dealPrice != "" || originalPrice != "" {
			currency = "$"
		}

		rows = append(rows, catalog.Row{
			Title:     title,
			URL:       link,
			Price:     originalPrice,
			DealPrice: dealPrice,
			Currency:  currency,
			ImageURL:  extractImage(item),
			Tags:      f.tags,
		})
	}
	return rows, nil
}

func (f *Fetcher) isTech(title, summary string) bool {
	if len(f.keywords) == 0 {
		return true
	}
	combined := strings.ToLower(title + " " + summary)
	for _, kw := range f.keywords {
		if strings.Contains(combined, kw) {
			return true
		}
	}
	return false
}

// stripHTML flattens an HTML fragment to its text content. Feed summaries
// routinely embed markup that would confuse keyword and price matching.
func stripHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}

func extractImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, key := range []string{"thumbnail", "content"} {
		if media, ok := item.Extensions["media"]; ok {
			for _, ext := range media[key] {
				if u := ext.Attrs["url"]; u != "" {
					return u
				}
			}
		}
	}
	for _, enc := range item.Enclosures {
		if strings.HasPrefix(enc.Type, "image") && enc.URL != "" {
			return enc.URL
		}
	}
	return ""
}
