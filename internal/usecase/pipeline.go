package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"GameRegMonitor/internal/classifier"
	"GameRegMonitor/internal/dedup"
	"GameRegMonitor/internal/domain"
	"GameRegMonitor/internal/ports"
	"GameRegMonitor/internal/relevance"
)

const (
	defaultEnrichWorkers    = 8
	defaultTranslateWorkers = 4
	defaultDigestLimit      = 10
)

// PipelineOptions tunes the stages that are not plain adapters.
type PipelineOptions struct {
	MaxAgeDays          int
	RecycledDateSources []string
	SkipDateEnrichment  bool
	EnrichWorkers       int
	TranslateWorkers    int
	DigestLimit         int
}

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source       ports.ItemSource
	Repository   ports.ItemRepository
	Filter       *relevance.Filter
	Classifier   *classifier.Classifier
	DateResolver ports.DateResolver
	Translator   ports.Translator
	Notifier     ports.Notifier
	Logger       *slog.Logger
	Options      PipelineOptions
	NewRunID     func() string
}

// Pipeline implements the monitoring workflow.
type Pipeline struct {
	source       ports.ItemSource
	repository   ports.ItemRepository
	filter       *relevance.Filter
	classifier   *classifier.Classifier
	dateResolver ports.DateResolver
	translator   ports.Translator
	notifier     ports.Notifier
	logger       *slog.Logger
	opts         PipelineOptions
	recycled     map[string]struct{}
	newRunID     func() string
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	opts := deps.Options
	if opts.MaxAgeDays <= 0 {
		opts.MaxAgeDays = relevance.DefaultMaxAgeDays
	}
	if opts.EnrichWorkers <= 0 {
		opts.EnrichWorkers = defaultEnrichWorkers
	}
	if opts.TranslateWorkers <= 0 {
		opts.TranslateWorkers = defaultTranslateWorkers
	}
	if opts.DigestLimit <= 0 {
		opts.DigestLimit = defaultDigestLimit
	}

	recycled := make(map[string]struct{}, len(opts.RecycledDateSources))
	for _, name := range opts.RecycledDateSources {
		recycled[name] = struct{}{}
	}

	newRunID := deps.NewRunID
	if newRunID == nil {
		newRunID = uuid.NewString
	}

	return &Pipeline{
		source:       deps.Source,
		repository:   deps.Repository,
		filter:       deps.Filter,
		classifier:   deps.Classifier,
		dateResolver: deps.DateResolver,
		translator:   deps.Translator,
		notifier:     deps.Notifier,
		logger:       deps.Logger,
		opts:         opts,
		recycled:     recycled,
		newRunID:     newRunID,
	}
}

// Run fetches, filters, classifies, stores and announces one batch of news.
func (p *Pipeline) Run(ctx context.Context, now time.Time) (domain.RunReport, error) {
	report := domain.RunReport{RunID: p.newRunID()}
	if p.source == nil || p.filter == nil || p.classifier == nil {
		return report, fmt.Errorf("pipeline is not fully configured")
	}

	batches, err := p.source.Fetch(ctx)
	if err != nil {
		return report, fmt.Errorf("fetch items: %w", err)
	}

	raw := p.collect(ctx, report.RunID, batches, now)
	report.Fetched = len(raw)

	unique := dedup.Deduplicate(raw)
	report.Unique = len(unique)

	relevant := make([]domain.RawItem, 0, len(unique))
	for _, item := range unique {
		verdict := p.filter.Evaluate(item)
		if !verdict.Relevant {
			p.debug("item rejected", "title", item.Title, "reason", verdict.Reason, "pattern", verdict.Pattern)
			continue
		}
		relevant = append(relevant, item)
	}
	report.Relevant = len(relevant)

	recent := relevant[:0]
	for _, item := range relevant {
		if relevance.IsRecent(item, now, p.opts.MaxAgeDays) {
			recent = append(recent, item)
		}
	}
	report.Recent = len(recent)

	if err := p.enrichDates(ctx, recent, now); err != nil {
		return report, fmt.Errorf("enrich dates: %w", err)
	}

	labeled, err := p.classifier.ClassifyAll(ctx, recent)
	if err != nil {
		return report, fmt.Errorf("label items: %w", err)
	}
	report.Classified = len(labeled)

	if err := p.translate(ctx, labeled); err != nil {
		return report, fmt.Errorf("translate items: %w", err)
	}
	report.Items = labeled

	if p.repository != nil {
		inserted, err := p.repository.SaveItems(ctx, labeled)
		if err != nil {
			return report, fmt.Errorf("persist items: %w", err)
		}
		report.NewItems = inserted
		report.Inserted = len(inserted)
	}

	p.debug("pipeline stages",
		"run_id", report.RunID,
		"fetched", report.Fetched,
		"unique", report.Unique,
		"relevant", report.Relevant,
		"recent", report.Recent,
		"classified", report.Classified,
		"inserted", report.Inserted,
	)
	p.info("run finished", "run_id", report.RunID, "classified", report.Classified, "inserted", report.Inserted)

	if p.notifier == nil || report.Inserted == 0 {
		return report, nil
	}
	message := buildDigestMessage(report, p.opts.DigestLimit)
	if err := p.notifier.PublishDigest(ctx, message); err != nil {
		return report, fmt.Errorf("publish digest: %w", err)
	}
	return report, nil
}

// collect flattens batches and records one fetch log row per source.
func (p *Pipeline) collect(ctx context.Context, runID string, batches []domain.SourceBatch, now time.Time) []domain.RawItem {
	var raw []domain.RawItem
	for _, batch := range batches {
		entry := domain.FetchLog{
			RunID:     runID,
			Source:    batch.Source,
			ItemCount: len(batch.Items),
			Status:    domain.FetchOK,
			FetchedAt: now,
		}
		if batch.Err != nil {
			entry.Status = domain.FetchFailed
			entry.Error = batch.Err.Error()
		}

		if p.repository != nil {
			if err := p.repository.LogFetch(ctx, entry); err != nil {
				p.warn("log fetch failed", "source", batch.Source, "error", err)
			}
		}
		raw = append(raw, batch.Items...)
	}
	return raw
}

// enrichDates replaces feed dates that cannot be trusted with the date
// published on the article page.
func (p *Pipeline) enrichDates(ctx context.Context, items []domain.RawItem, now time.Time) error {
	if p.dateResolver == nil || p.opts.SkipDateEnrichment {
		return nil
	}

	today := now.Format(domain.DateLayout)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.EnrichWorkers)

	for i := range items {
		if !p.needsEnrichment(items[i], today) {
			continue
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			date, ok := p.dateResolver.ResolveDate(gctx, items[i].URL)
			if ok && date != items[i].Date {
				p.debug("date corrected", "title", items[i].Title, "from", items[i].Date, "to", date)
				items[i].Date = date
			}
			return nil
		})
	}
	return g.Wait()
}

func (p *Pipeline) needsEnrichment(item domain.RawItem, today string) bool {
	if _, ok := p.recycled[item.Source]; ok {
		return true
	}
	return item.Date >= today
}

// translate fills SummaryTranslated. A failed translation leaves the field
// empty and is logged.
func (p *Pipeline) translate(ctx context.Context, items []domain.LabeledItem) error {
	if p.translator == nil {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.TranslateWorkers)

	for i := range items {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			text, err := p.translator.Translate(gctx, translationSource(items[i]))
			if err != nil {
				p.warn("translation failed", "title", items[i].Title, "error", err)
				return nil
			}
			items[i].SummaryTranslated = text
			return nil
		})
	}
	return g.Wait()
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
