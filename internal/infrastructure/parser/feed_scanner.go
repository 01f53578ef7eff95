package parser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html"

	"GameRegMonitor/internal/domain"
	"GameRegMonitor/internal/scanner"
)

const defaultUserAgent = "GameRegMonitor/1.0"

// FeedScanner reads RSS and Atom feeds.
type FeedScanner struct {
	client    *http.Client
	userAgent string
	now       func() time.Time
}

// NewFeedScanner wires an HTTP client; a nil client gets a 30s timeout.
func NewFeedScanner(client *http.Client, userAgent string) *FeedScanner {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &FeedScanner{client: client, userAgent: userAgent, now: time.Now}
}

// Name identifies the strategy inside the registry.
func (f *FeedScanner) Name() string {
	return "rss"
}

// Scan downloads one feed and maps every entry to a raw item.
func (f *FeedScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.RawItem, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("feed %s has no url", req.SourceName)
	}

	feed, err := fetchFeed(ctx, f.client, req.URL, f.userAgent)
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", req.SourceName, err)
	}

	lang := req.Lang
	if lang == "" {
		lang = "en"
	}
	today := f.now().Format(domain.DateLayout)

	items := make([]domain.RawItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		summary := entry.Description
		if summary == "" {
			summary = entry.Content
		}
		items = append(items, domain.RawItem{
			Title:      CleanHTML(entry.Title, 0),
			Summary:    CleanHTML(summary, domain.SummaryLimit),
			URL:        strings.TrimSpace(entry.Link),
			Date:       entryDate(entry, today),
			Source:     req.SourceName,
			Lang:       lang,
			RegionHint: req.RegionHint,
		})
	}
	return items, nil
}

func fetchFeed(ctx context.Context, client *http.Client, feedURL, userAgent string) (*gofeed.Feed, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("feed returned %s", resp.Status)
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

// entryDate prefers the published timestamp, then the updated one. Entries
// with neither are dated today.
func entryDate(entry *gofeed.Item, today string) string {
	switch {
	case entry.PublishedParsed != nil:
		return entry.PublishedParsed.Format(domain.DateLayout)
	case entry.UpdatedParsed != nil:
		return entry.UpdatedParsed.Format(domain.DateLayout)
	default:
		return today
	}
}

// CleanHTML strips markup, collapses whitespace and cuts the result to limit
// runes. A limit of zero keeps the full text.
func CleanHTML(raw string, limit int) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	text := raw
	if strings.ContainsAny(raw, "<&") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
		if err == nil {
			var b strings.Builder
			for _, n := range doc.Nodes {
				collectText(n, &b)
			}
			text = b.String()
		}
	}

	text = strings.Join(strings.Fields(text), " ")
	if limit > 0 {
		text = domain.TruncateRunes(text, limit)
	}
	return text
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}
