package rss

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
)

// Item is a normalized feed entry. Field values are already
// HTML-stripped and whitespace-collapsed.
type Item struct {
	Title     string
	Link      string
	Summary   string
	Content   string
	Author    string
	Slug      string
	Published time.Time
	Tags      []string
}

// Fetcher downloads and parses RSS/Atom feeds.
type Fetcher struct {
	parser *gofeed.Parser
	logger *zap.Logger
}

// NewFetcher creates a feed fetcher with the given HTTP timeout.
func NewFetcher(timeout time.Duration, logger *zap.Logger) *Fetcher {
	parser := gofeed.NewParser()
	parser.UserAgent = "newsai/1.0"
	if timeout > 0 {
		parser.Client = &http.Client{Timeout: timeout}
	}
	return &Fetcher{parser: parser, logger: logger}
}

// Fetch parses the feed at url and returns at most limit normalized items.
// limit <= 0 means no cap.
func (f *Fetcher) Fetch(ctx context.Context, url string, limit int) ([]Item, error) {
	feed, err := f.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", url, err)
	}

	items := feed.Items
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	out := make([]Item, 0, len(items))
	for _, raw := range items {
		out = append(out, normalize(raw))
	}

	f.logger.Debug("fetched feed",
		zap.String("url", url),
		zap.Int("items", len(out)),
	)
	return out, nil
}

func normalize(raw *gofeed.Item) Item {
	item := Item{
		Title:   CleanText(raw.Title),
		Link:    strings.TrimSpace(raw.Link),
		Summary: CleanText(raw.Description),
		Content: CleanText(raw.Content),
		Tags:    raw.Categories,
		Slug:    slugify(raw.Title),
	}

	if raw.PublishedParsed != nil {
		item.Published = raw.PublishedParsed.UTC()
	} else if raw.UpdatedParsed != nil {
		item.Published = raw.UpdatedParsed.UTC()
	}

	if len(raw.Authors) > 0 && raw.Authors[0] != nil {
		item.Author = raw.Authors[0].Name
	}

	return item
}

// CleanText strips HTML markup and collapses whitespace.
func CleanText(s string) string {
	if s == "" {
		return ""
	}

	if strings.ContainsAny(s, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			s = doc.Text()
		}
	}

	return strings.Join(strings.Fields(s), " ")
}

// slugify produces a lowercase URL-safe slug from a title.
func slugify(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}
