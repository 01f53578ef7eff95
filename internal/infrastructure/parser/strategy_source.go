package parser

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"GameRegMonitor/internal/config"
	"GameRegMonitor/internal/domain"
	"GameRegMonitor/internal/ports"
	"GameRegMonitor/internal/scanner"
)

const defaultMaxConcurrent = 5

// StrategySource implements ItemSource via registered scanner strategies.
type StrategySource struct {
	registry      *scanner.Registry
	feeds         []config.FeedConfig
	googleNews    config.GoogleNewsConfig
	maxConcurrent int
	logger        *slog.Logger
}

var _ ports.ItemSource = (*StrategySource)(nil)

type job struct {
	label    string
	strategy scanner.Scanner
	req      scanner.Request
}

// NewStrategySource wires the scanner registry with config-defined feeds and searches.
func NewStrategySource(reg *scanner.Registry, feeds []config.FeedConfig, googleNews config.GoogleNewsConfig, maxConcurrent int, log *slog.Logger) *StrategySource {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	return &StrategySource{
		registry:      reg,
		feeds:         feeds,
		googleNews:    googleNews,
		maxConcurrent: maxConcurrent,
		logger:        log,
	}
}

// Fetch runs every configured source and returns one batch per source in
// configuration order. A failing source is reported in its batch and does
// not stop the others.
func (s *StrategySource) Fetch(ctx context.Context) ([]domain.SourceBatch, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	jobs, err := s.jobs()
	if err != nil {
		return nil, err
	}
	s.debug("fetch sources", "jobs", len(jobs), "max_concurrent", s.maxConcurrent)

	batches := make([]domain.SourceBatch, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for i, j := range jobs {
		g.Go(func() error {
			items, err := j.strategy.Scan(gctx, j.req)
			batches[i] = domain.SourceBatch{Source: j.label, Items: items, Err: err}
			if err != nil {
				s.warn("source failed", "source", j.label, "error", err)
				return nil
			}
			s.debug("source produced items", "source", j.label, "count", len(items))
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fetch sources: %w", err)
	}
	return batches, nil
}

func (s *StrategySource) jobs() ([]job, error) {
	var jobs []job
	for _, feed := range s.feeds {
		strategy, err := s.registry.Resolve(feed.Scanner)
		if err != nil {
			return nil, fmt.Errorf("feed %s: %w", feed.Name, err)
		}
		jobs = append(jobs, job{
			label:    feed.Name,
			strategy: strategy,
			req: scanner.Request{
				SourceName: feed.Name,
				URL:        feed.URL,
				Lang:       feed.Lang,
				RegionHint: feed.Region,
			},
		})
	}

	if s.googleNews.Disabled || len(s.googleNews.Queries) == 0 {
		return jobs, nil
	}

	strategy, err := s.registry.Resolve("googlenews")
	if err != nil {
		return nil, fmt.Errorf("google news: %w", err)
	}
	for _, q := range s.googleNews.Queries {
		for _, term := range q.Terms {
			jobs = append(jobs, job{
				label:    fmt.Sprintf("%s [%s] %s", googleNewsSource, q.Locale, term),
				strategy: strategy,
				req: scanner.Request{
					SourceName: googleNewsSource,
					Query:      term,
					Locale:     q.Locale,
				},
			})
		}
	}
	return jobs, nil
}

func (s *StrategySource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *StrategySource) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
