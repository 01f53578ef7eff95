package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"GameRegMonitor/internal/domain"
	"GameRegMonitor/internal/ports"
)

// earliestDate bounds every extracted date from below.
const earliestDate = "2020-01-01"

var metaDateProps = []string{
	"article:published_time",
	"og:article:published_time",
	"datePublished",
	"date",
	"pubdate",
	"article:modified_time",
}

var (
	jsonLDDateKeys = []string{"datePublished", "dateCreated"}
	timeDateAttrs  = []string{"datetime", "pubdate", "content"}

	isoDateExpr   = regexp.MustCompile(`20\d{2}-(?:0[1-9]|1[0-2])-(?:0[1-9]|[12]\d|3[01])`)
	dateClassExpr = regexp.MustCompile(`(?i)\b(?:date|time|published|updated|posted|created|pubdate|timestamp|byline|article-meta)\b`)
)

const monthPattern = `(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sep|oct|nov|dec)`

var (
	monthFirstExpr = regexp.MustCompile(`\b` + monthPattern + `\s+(\d{1,2}),?\s+(20[2-9]\d)\b`)
	dayFirstExpr   = regexp.MustCompile(`\b(\d{1,2})\s+` + monthPattern + `\s+(20[2-9]\d)\b`)
)

var monthByName = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June, "july": time.July,
	"august": time.August, "september": time.September, "october": time.October,
	"november": time.November, "december": time.December,
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"jun": time.June, "jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

const containerScanLimit = 2000

// PageDateResolver reads the publication date from an article page.
type PageDateResolver struct {
	client    *http.Client
	userAgent string
	now       func() time.Time
}

var _ ports.DateResolver = (*PageDateResolver)(nil)

// NewPageDateResolver wires an HTTP client; a nil client gets an 8s timeout.
func NewPageDateResolver(client *http.Client, userAgent string) *PageDateResolver {
	if client == nil {
		client = &http.Client{Timeout: 8 * time.Second}
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &PageDateResolver{client: client, userAgent: userAgent, now: time.Now}
}

// ResolveDate returns the page date as YYYY-MM-DD. Dates before 2020 or after
// today are ignored. Any fetch failure reports false.
func (r *PageDateResolver) ResolveDate(ctx context.Context, pageURL string) (string, bool) {
	if !strings.HasPrefix(pageURL, "http") {
		return "", false
	}

	doc, err := r.fetchDocument(ctx, pageURL)
	if err != nil {
		return "", false
	}

	return extractDate(doc, r.now().Format(domain.DateLayout))
}

func (r *PageDateResolver) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("page returned %s", resp.Status)
	}

	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return doc, nil
}

// extractDate walks the date sources from most to least reliable.
func extractDate(doc *goquery.Document, today string) (string, bool) {
	for _, prop := range metaDateProps {
		sel := fmt.Sprintf(`meta[property=%q], meta[name=%q]`, prop, prop)
		if content, ok := doc.Find(sel).First().Attr("content"); ok {
			if d, ok := parseISODate(content, today); ok {
				return d, true
			}
		}
	}

	var found string
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if d, ok := jsonLDDate(s.Text(), today); ok {
			found = d
			return false
		}
		return true
	})
	if found != "" {
		return found, true
	}

	doc.Find("time").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		for _, attr := range timeDateAttrs {
			if val, ok := s.Attr(attr); ok {
				if d, ok := parseISODate(val, today); ok {
					found = d
					return false
				}
			}
		}
		if d, ok := parseHumanDate(s.Text(), today); ok {
			found = d
			return false
		}
		return true
	})
	if found != "" {
		return found, true
	}

	doc.Find("[class]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		if !dateClassExpr.MatchString(class) {
			return true
		}
		text := strings.Join(strings.Fields(s.Text()), " ")
		if d, ok := parseISODate(text, today); ok {
			found = d
			return false
		}
		if d, ok := parseHumanDate(text, today); ok {
			found = d
			return false
		}
		return true
	})
	if found != "" {
		return found, true
	}

	for _, container := range []string{"header", "article", "main"} {
		sel := doc.Find(container).First()
		if sel.Length() == 0 {
			continue
		}
		text := domain.TruncateRunes(strings.Join(strings.Fields(sel.Text()), " "), containerScanLimit)
		if d, ok := parseHumanDate(text, today); ok {
			return d, true
		}
	}
	return "", false
}

func jsonLDDate(raw, today string) (string, bool) {
	var payload any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return "", false
	}

	var entries []any
	switch v := payload.(type) {
	case []any:
		entries = v
	case map[string]any:
		entries = []any{v}
		if graph, ok := v["@graph"].([]any); ok {
			entries = append(entries, graph...)
		}
	}

	for _, e := range entries {
		entry, ok := e.(map[string]any)
		if !ok {
			continue
		}
		for _, key := range jsonLDDateKeys {
			if val, ok := entry[key].(string); ok {
				if d, ok := parseISODate(val, today); ok {
					return d, true
				}
			}
		}
	}
	return "", false
}

// parseISODate accepts YYYY-MM-DD or YYYYMMDD prefixes, then falls back to
// the first YYYY-MM-DD found anywhere in s.
func parseISODate(s, today string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	if len(s) >= 10 {
		if t, err := time.Parse(domain.DateLayout, s[:10]); err == nil {
			return withinRange(t.Format(domain.DateLayout), today)
		}
	}
	if len(s) >= 8 {
		if t, err := time.Parse("20060102", s[:8]); err == nil {
			return withinRange(t.Format(domain.DateLayout), today)
		}
	}
	if m := isoDateExpr.FindString(s); m != "" {
		if _, err := time.Parse(domain.DateLayout, m); err == nil {
			return withinRange(m, today)
		}
	}
	return "", false
}

// parseHumanDate recognises "February 26, 2026" and "26 Feb 2026".
func parseHumanDate(text, today string) (string, bool) {
	if text == "" {
		return "", false
	}
	lower := strings.ToLower(text)

	if m := monthFirstExpr.FindStringSubmatch(lower); m != nil {
		if d, ok := buildDate(m[3], m[1], m[2], today); ok {
			return d, true
		}
	}
	if m := dayFirstExpr.FindStringSubmatch(lower); m != nil {
		if d, ok := buildDate(m[3], m[2], m[1], today); ok {
			return d, true
		}
	}
	return "", false
}

func buildDate(yearText, monthName, dayText, today string) (string, bool) {
	year, err := strconv.Atoi(yearText)
	if err != nil {
		return "", false
	}
	day, err := strconv.Atoi(dayText)
	if err != nil {
		return "", false
	}
	month, ok := monthByName[monthName]
	if !ok {
		return "", false
	}

	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != month {
		return "", false
	}
	return withinRange(t.Format(domain.DateLayout), today)
}

func withinRange(date, today string) (string, bool) {
	if date < earliestDate || date > today {
		return "", false
	}
	return date, true
}
