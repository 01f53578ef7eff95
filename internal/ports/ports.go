package ports

import (
	"context"
	"time"

	"GameRegMonitor/internal/domain"
)

// ItemSource pulls raw items from every configured upstream source.
type ItemSource interface {
	Fetch(ctx context.Context) ([]domain.SourceBatch, error)
}

// ItemRepository persists labelled items and fetch history. SaveItems returns
// the items that were not stored before.
type ItemRepository interface {
	SaveItems(ctx context.Context, items []domain.LabeledItem) ([]domain.LabeledItem, error)
	QueryItems(ctx context.Context, q domain.Query) ([]domain.LabeledItem, error)
	Stats(ctx context.Context) (domain.Stats, error)
	LogFetch(ctx context.Context, entry domain.FetchLog) error
}

// DateResolver looks up the publication date of an article page.
type DateResolver interface {
	ResolveDate(ctx context.Context, url string) (string, bool)
}

// Translator renders summaries in the reader's language.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Notifier streams selected digests to chat webhooks or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
