package parser

import (
	"context"
	"errors"
	"sync"
	"testing"

	"GameRegMonitor/internal/config"
	"GameRegMonitor/internal/domain"
	"GameRegMonitor/internal/scanner"
)

type stubScanner struct {
	name string
	fail map[string]error

	mu   sync.Mutex
	seen []scanner.Request
}

func (s *stubScanner) Name() string { return s.name }

func (s *stubScanner) Scan(_ context.Context, req scanner.Request) ([]domain.RawItem, error) {
	s.mu.Lock()
	s.seen = append(s.seen, req)
	s.mu.Unlock()

	key := req.SourceName + req.Query
	if err := s.fail[key]; err != nil {
		return nil, err
	}
	return []domain.RawItem{{Title: key, Source: req.SourceName, RegionHint: req.RegionHint}}, nil
}

func TestStrategySourceFetch(t *testing.T) {
	t.Parallel()

	rss := &stubScanner{name: "rss", fail: map[string]error{"Broken": errors.New("boom")}}
	news := &stubScanner{name: "googlenews"}
	reg := scanner.NewRegistry()
	reg.Register(rss)
	reg.Register(news)

	feeds := []config.FeedConfig{
		{Name: "FTC News", URL: "https://ftc.example/rss", Scanner: "rss", Region: "North America"},
		{Name: "Broken", URL: "https://broken.example/rss", Scanner: "rss"},
	}
	gn := config.GoogleNewsConfig{
		Queries: []config.QueryConfig{{Locale: "ko_KR", Terms: []string{"확률형 아이템", "게임 규제"}}},
	}

	src := NewStrategySource(reg, feeds, gn, 2, nil)
	batches, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if len(batches) != 4 {
		t.Fatalf("expected 4 batches, got %d", len(batches))
	}
	if batches[0].Source != "FTC News" || len(batches[0].Items) != 1 || batches[0].Items[0].RegionHint != "North America" {
		t.Fatalf("unexpected first batch: %+v", batches[0])
	}
	if batches[1].Err == nil || len(batches[1].Items) != 0 {
		t.Fatalf("failing feed should carry its error: %+v", batches[1])
	}
	if batches[2].Source != "Google News [ko_KR] 확률형 아이템" || batches[3].Err != nil {
		t.Fatalf("unexpected search batches: %+v", batches[2:])
	}
	if len(news.seen) != 2 || news.seen[0].Locale != "ko_KR" {
		t.Fatalf("unexpected search requests: %+v", news.seen)
	}
}

func TestStrategySourceSkipsDisabledSearch(t *testing.T) {
	t.Parallel()

	news := &stubScanner{name: "googlenews"}
	reg := scanner.NewRegistry()
	reg.Register(news)

	gn := config.GoogleNewsConfig{
		Disabled: true,
		Queries:  []config.QueryConfig{{Locale: "en_US", Terms: []string{"loot box"}}},
	}
	batches, err := NewStrategySource(reg, nil, gn, 0, nil).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(batches) != 0 || len(news.seen) != 0 {
		t.Fatalf("disabled search must not run: %+v", batches)
	}
}

func TestStrategySourceUnknownScanner(t *testing.T) {
	t.Parallel()

	feeds := []config.FeedConfig{{Name: "Mystery", URL: "https://x.example", Scanner: "carrier-pigeon"}}
	if _, err := NewStrategySource(scanner.NewRegistry(), feeds, config.GoogleNewsConfig{}, 1, nil).Fetch(context.Background()); err == nil {
		t.Fatalf("expected error for unregistered scanner")
	}
	if _, err := NewStrategySource(nil, feeds, config.GoogleNewsConfig{}, 1, nil).Fetch(context.Background()); err == nil {
		t.Fatalf("expected error without registry")
	}
}

func TestStrategySourceCancelled(t *testing.T) {
	t.Parallel()

	reg := scanner.NewRegistry()
	reg.Register(&stubScanner{name: "rss"})
	feeds := []config.FeedConfig{{Name: "FTC News", URL: "https://ftc.example/rss", Scanner: "rss"}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewStrategySource(reg, feeds, config.GoogleNewsConfig{}, 1, nil).Fetch(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
