package usecase

import (
	"context"
	"testing"

	"GameRegMonitor/internal/domain"
)

func TestReporterItemsResolvesPeriod(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{saved: []domain.LabeledItem{{Title: "stored"}}}
	r := NewReporter(repo)

	items, err := r.Items(context.Background(), domain.PeriodMonth, domain.Query{Region: "Japan", Limit: 10})
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(items) != 1 || repo.queried.Days != 30 || repo.queried.Region != "Japan" || repo.queried.Limit != 10 {
		t.Fatalf("unexpected query: %+v", repo.queried)
	}

	if _, err := r.Items(context.Background(), "decade", domain.Query{}); err == nil {
		t.Fatalf("expected error for unknown period")
	}
	if _, err := NewReporter(nil).Items(context.Background(), domain.PeriodWeek, domain.Query{}); err == nil {
		t.Fatalf("expected error without repository")
	}
}

func TestReporterStats(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{stats: domain.Stats{Total: 4, ByImpact: map[int]int{3: 1}}}
	stats, err := NewReporter(repo).Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 4 || stats.ByImpact[3] != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
