package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"GameRegMonitor/internal/domain"
)

func TestDispatchRejectsUnknownCommand(t *testing.T) {
	t.Parallel()

	err := dispatch(context.Background(), nil, "publish", nil, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), `unknown command "publish"`) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClassifyRequiresText(t *testing.T) {
	t.Parallel()

	if err := runClassify(nil, []string{"-source", "FTC"}, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error without title or summary")
	}
}

func TestPrintStats(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	printStats(&out, domain.Stats{
		Total:      3,
		LatestDate: "2026-10-15",
		ByRegion:   map[string]int{"Japan": 1, "Europe": 2},
		ByCategory: map[string]int{"Data Privacy": 3},
		ByImpact:   map[int]int{3: 1, 2: 2},
	})

	got := out.String()
	if !strings.Contains(got, "total: 3") || !strings.Contains(got, "  1: 0") {
		t.Fatalf("unexpected output: %q", got)
	}
	if strings.Index(got, "Europe") > strings.Index(got, "Japan") {
		t.Fatalf("regions should be ordered by count: %q", got)
	}
}
