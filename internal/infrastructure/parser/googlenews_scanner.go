package parser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"GameRegMonitor/internal/domain"
	"GameRegMonitor/internal/scanner"
)

const (
	googleNewsSource = "Google News"
	fallbackLocale   = "en_US"
)

// Locale holds the edition parameters of a Google News search.
type Locale struct {
	HL   string
	GL   string
	CEID string
}

// GoogleNewsScanner runs keyword searches against the Google News RSS endpoint.
type GoogleNewsScanner struct {
	client    *http.Client
	endpoint  string
	userAgent string
	locales   map[string]Locale
	limiter   *rate.Limiter
	now       func() time.Time
}

// NewGoogleNewsScanner paces requests with limiter; a nil limiter disables pacing.
func NewGoogleNewsScanner(client *http.Client, endpoint, userAgent string, locales map[string]Locale, limiter *rate.Limiter) *GoogleNewsScanner {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &GoogleNewsScanner{
		client:    client,
		endpoint:  endpoint,
		userAgent: userAgent,
		locales:   locales,
		limiter:   limiter,
		now:       time.Now,
	}
}

// Name identifies the strategy inside the registry.
func (g *GoogleNewsScanner) Name() string {
	return "googlenews"
}

// Scan issues one search and splits "Title - Publisher" headlines.
func (g *GoogleNewsScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.RawItem, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, fmt.Errorf("google news request has no query")
	}

	locale, err := g.locale(req.Locale)
	if err != nil {
		return nil, err
	}

	searchURL, err := buildSearchURL(g.endpoint, req.Query, locale)
	if err != nil {
		return nil, err
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for rate limit: %w", err)
		}
	}

	feed, err := fetchFeed(ctx, g.client, searchURL, g.userAgent)
	if err != nil {
		return nil, fmt.Errorf("search %q (%s): %w", req.Query, req.Locale, err)
	}

	lang := strings.SplitN(locale.HL, "-", 2)[0]
	today := g.now().Format(domain.DateLayout)

	items := make([]domain.RawItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		title, source := splitHeadline(entry.Title)
		items = append(items, domain.RawItem{
			Title:   CleanHTML(title, 0),
			Summary: CleanHTML(entry.Description, domain.SummaryLimit),
			URL:     strings.TrimSpace(entry.Link),
			Date:    entryDate(entry, today),
			Source:  source,
			Lang:    lang,
		})
	}
	return items, nil
}

func (g *GoogleNewsScanner) locale(key string) (Locale, error) {
	if l, ok := g.locales[key]; ok {
		return l, nil
	}
	if l, ok := g.locales[fallbackLocale]; ok {
		return l, nil
	}
	return Locale{}, fmt.Errorf("google news locale %q is not configured", key)
}

func buildSearchURL(endpoint, query string, locale Locale) (string, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid google news endpoint %s: %w", endpoint, err)
	}

	q := parsed.Query()
	q.Set("q", query)
	q.Set("hl", locale.HL)
	q.Set("gl", locale.GL)
	q.Set("ceid", locale.CEID)
	parsed.RawQuery = q.Encode()
	return parsed.String(), nil
}

// splitHeadline separates the trailing " - Publisher" suffix Google News
// appends to every title.
func splitHeadline(raw string) (string, string) {
	idx := strings.LastIndex(raw, " - ")
	if idx < 0 {
		return raw, googleNewsSource
	}
	source := strings.TrimSpace(raw[idx+3:])
	if source == "" {
		source = googleNewsSource
	}
	return raw[:idx], source
}
