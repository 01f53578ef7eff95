package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"GameRegMonitor/internal/classifier"
	"GameRegMonitor/internal/config"
	"GameRegMonitor/internal/domain"
	"GameRegMonitor/internal/infrastructure/chatwebhook"
	"GameRegMonitor/internal/infrastructure/llm"
	"GameRegMonitor/internal/infrastructure/parser"
	"GameRegMonitor/internal/infrastructure/scheduler"
	"GameRegMonitor/internal/infrastructure/storage"
	"GameRegMonitor/internal/logging"
	"GameRegMonitor/internal/relevance"
	"GameRegMonitor/internal/rules"
	"GameRegMonitor/internal/scanner"
	"GameRegMonitor/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg        config.Config
	logger     *slog.Logger
	repository *storage.SQLRepository
	filter     *relevance.Filter
	classifier *classifier.Classifier
	pipeline   *usecase.Pipeline
	reporter   *usecase.Reporter
}

// New loads the rule pack, opens the store and builds every adapter named in cfg.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging)
	}

	pack, err := loadRules(cfg.Rules.Path)
	if err != nil {
		return nil, err
	}
	filter := relevance.NewFilter(pack)
	labeler := classifier.New(pack)

	repo, err := storage.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	client := &http.Client{Timeout: cfg.Fetch.Timeout}

	registry := scanner.NewRegistry()
	registry.Register(parser.NewFeedScanner(client, cfg.Fetch.UserAgent))
	registry.Register(parser.NewGoogleNewsScanner(
		client,
		cfg.GoogleNews.Endpoint,
		cfg.Fetch.UserAgent,
		searchLocales(cfg.GoogleNews.Locales),
		rate.NewLimiter(rate.Limit(cfg.Fetch.GoogleNewsPerSecond), 1),
	))

	source := parser.NewStrategySource(registry, cfg.Feeds, cfg.GoogleNews, cfg.Fetch.MaxConcurrent, baseLogger.With("component", "source"))

	deps := usecase.PipelineDeps{
		Source:       source,
		Repository:   repo,
		Filter:       filter,
		Classifier:   labeler,
		DateResolver: parser.NewPageDateResolver(client, cfg.Fetch.UserAgent),
		Logger:       baseLogger.With("component", "pipeline"),
		Options: usecase.PipelineOptions{
			MaxAgeDays:          cfg.Fetch.MaxAgeDays,
			RecycledDateSources: cfg.Fetch.RecycledDateSources,
			SkipDateEnrichment:  cfg.Fetch.SkipDateEnrichment,
			DigestLimit:         cfg.Notifications.Webhook.DigestLimit,
		},
	}
	if cfg.Translator.Enabled {
		deps.Translator = llm.NewChatGPTTranslator(cfg.Translator, nil)
	}
	if cfg.Notifications.Webhook.URL != "" {
		deps.Notifier = chatwebhook.NewNotifier(cfg.Notifications.Webhook.URL, nil)
	}

	return &Application{
		cfg:        cfg,
		logger:     baseLogger,
		repository: repo,
		filter:     filter,
		classifier: labeler,
		pipeline:   usecase.NewPipeline(deps),
		reporter:   usecase.NewReporter(repo),
	}, nil
}

func loadRules(path string) (*rules.Pack, error) {
	if path == "" {
		return rules.Load()
	}
	return rules.LoadFile(path)
}

func searchLocales(locales []config.LocaleConfig) map[string]parser.Locale {
	out := make(map[string]parser.Locale, len(locales))
	for _, l := range locales {
		out[l.Key] = parser.Locale{HL: l.HL, GL: l.GL, CEID: l.CEID}
	}
	return out
}

// Run performs a single pipeline execution.
func (a *Application) Run(ctx context.Context) (domain.RunReport, error) {
	now := time.Now().In(a.cfg.Scheduler.Location())
	return a.pipeline.Run(ctx, now)
}

// Schedule runs the pipeline at the configured interval until ctx is done.
func (a *Application) Schedule(ctx context.Context) error {
	sched := usecase.NewScheduler(
		scheduler.NewIntervalScheduler(a.cfg.Scheduler.Interval),
		a.pipeline,
		a.logger.With("component", "scheduler"),
	)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started", "interval", a.cfg.Scheduler.Interval)

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return sched.Stop(stopCtx)
}

// Report lists stored items for period narrowed by q.
func (a *Application) Report(ctx context.Context, period string, q domain.Query) ([]domain.LabeledItem, error) {
	return a.reporter.Items(ctx, period, q)
}

// Stats summarizes the store.
func (a *Application) Stats(ctx context.Context) (domain.Stats, error) {
	return a.reporter.Stats(ctx)
}

// Classify runs the relevance filter and classifier on one item without
// touching the network or the store.
func (a *Application) Classify(item domain.RawItem) (relevance.Verdict, domain.LabeledItem) {
	return a.filter.Evaluate(item), a.classifier.Classify(item)
}

// Close releases the store.
func (a *Application) Close() error {
	if a.repository == nil {
		return nil
	}
	return a.repository.Close()
}
