package usecase

import (
	"context"
	"fmt"

	"GameRegMonitor/internal/domain"
	"GameRegMonitor/internal/ports"
)

// Reporter answers read-side questions about stored items.
type Reporter struct {
	repository ports.ItemRepository
}

// NewReporter wraps a repository.
func NewReporter(repo ports.ItemRepository) *Reporter {
	return &Reporter{repository: repo}
}

// Items lists stored items for a named period (week, month, all) narrowed by q.
func (r *Reporter) Items(ctx context.Context, period string, q domain.Query) ([]domain.LabeledItem, error) {
	if r.repository == nil {
		return nil, fmt.Errorf("report: repository is not configured")
	}
	days, ok := domain.PeriodDays(period)
	if !ok {
		return nil, fmt.Errorf("report: unknown period %q", period)
	}
	q.Days = days

	items, err := r.repository.QueryItems(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	return items, nil
}

// Stats summarizes the whole store.
func (r *Reporter) Stats(ctx context.Context) (domain.Stats, error) {
	if r.repository == nil {
		return domain.Stats{}, fmt.Errorf("stats: repository is not configured")
	}
	stats, err := r.repository.Stats(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("stats: %w", err)
	}
	return stats, nil
}
