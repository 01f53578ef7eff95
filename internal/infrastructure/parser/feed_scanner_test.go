package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"GameRegMonitor/internal/scanner"
)

var fixedNow = func() time.Time {
	return time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)
}

const rssBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>FTC News</title>
    <item>
      <title>FTC fines &lt;b&gt;game studio&lt;/b&gt; over COPPA</title>
      <link>https://www.ftc.gov/news/1</link>
      <pubDate>Mon, 05 Oct 2026 14:30:00 GMT</pubDate>
      <description>&lt;p&gt;The agency&lt;/p&gt;&lt;p&gt;fined   the publisher.&lt;/p&gt;</description>
    </item>
    <item>
      <title>Undated item</title>
      <link>https://www.ftc.gov/news/2</link>
    </item>
  </channel>
</rss>`

const atomBody = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>UK Gov</title>
  <id>urn:uuid:feed</id>
  <updated>2026-10-10T08:00:00Z</updated>
  <entry>
    <title>Online Safety Act guidance for games</title>
    <id>urn:uuid:1</id>
    <link href="https://www.gov.uk/guidance/1"/>
    <published>2026-10-09T08:00:00Z</published>
    <updated>2026-10-10T08:00:00Z</updated>
    <summary>Age checks for online games.</summary>
  </entry>
</feed>`

func serveBody(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("missing user agent")
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFeedScannerRSS(t *testing.T) {
	t.Parallel()

	server := serveBody(t, rssBody)
	sc := NewFeedScanner(server.Client(), "")
	sc.now = fixedNow

	items, err := sc.Scan(context.Background(), scanner.Request{
		SourceName: "FTC News",
		URL:        server.URL,
		RegionHint: "North America",
	})
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	first := items[0]
	if first.Title != "FTC fines game studio over COPPA" {
		t.Fatalf("unexpected title: %q", first.Title)
	}
	if first.Summary != "The agency fined the publisher." {
		t.Fatalf("unexpected summary: %q", first.Summary)
	}
	if first.Date != "2026-10-05" {
		t.Fatalf("unexpected date: %s", first.Date)
	}
	if first.Source != "FTC News" || first.Lang != "en" || first.RegionHint != "North America" {
		t.Fatalf("unexpected metadata: %+v", first)
	}
	if items[1].Date != "2026-10-19" {
		t.Fatalf("undated entry should fall back to today, got %s", items[1].Date)
	}
}

func TestFeedScannerAtom(t *testing.T) {
	t.Parallel()

	server := serveBody(t, atomBody)
	sc := NewFeedScanner(server.Client(), "test-agent")
	sc.now = fixedNow

	items, err := sc.Scan(context.Background(), scanner.Request{SourceName: "UK Gov", URL: server.URL, Lang: "en"})
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].URL != "https://www.gov.uk/guidance/1" {
		t.Fatalf("unexpected link: %s", items[0].URL)
	}
	if items[0].Date != "2026-10-09" {
		t.Fatalf("unexpected date: %s", items[0].Date)
	}
	if items[0].Summary != "Age checks for online games." {
		t.Fatalf("unexpected summary: %q", items[0].Summary)
	}
}

func TestFeedScannerErrors(t *testing.T) {
	t.Parallel()

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusBadGateway)
	}))
	defer failing.Close()

	sc := NewFeedScanner(failing.Client(), "")
	if _, err := sc.Scan(context.Background(), scanner.Request{SourceName: "broken", URL: failing.URL}); err == nil {
		t.Fatalf("expected error for bad status")
	}
	if _, err := sc.Scan(context.Background(), scanner.Request{SourceName: "empty"}); err == nil {
		t.Fatalf("expected error for missing url")
	}

	garbage := serveBody(t, "not a feed at all")
	sc = NewFeedScanner(garbage.Client(), "")
	if _, err := sc.Scan(context.Background(), scanner.Request{SourceName: "garbage", URL: garbage.URL}); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestCleanHTML(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in    string
		limit int
		want  string
	}{
		{in: "", want: ""},
		{in: "  plain   text ", want: "plain text"},
		{in: "<p>One</p><p>Two</p>", want: "One Two"},
		{in: "AT&amp;T <script>var x = 1;</script>fined", want: "AT&T fined"},
		{in: "<b>게임</b> 규제 법안", limit: 4, want: "게임 규"},
	}

	for _, tc := range cases {
		if got := CleanHTML(tc.in, tc.limit); got != tc.want {
			t.Fatalf("CleanHTML(%q, %d) = %q, want %q", tc.in, tc.limit, got, tc.want)
		}
	}

	long := strings.Repeat("a", 600)
	if got := CleanHTML(long, 500); len(got) != 500 {
		t.Fatalf("expected 500 runes, got %d", len(got))
	}
}
