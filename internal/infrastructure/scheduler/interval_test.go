package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestIntervalSchedulerRunsImmediatelyAndRepeats(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	s := NewIntervalScheduler(10 * time.Millisecond)
	if err := s.Start(context.Background(), func(time.Time) { runs.Add(1) }); err != nil {
		t.Fatalf("Start: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for runs.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if runs.Load() < 3 {
		t.Fatalf("expected at least 3 runs, got %d", runs.Load())
	}

	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	if runs.Load() != after {
		t.Fatalf("job ran after Stop")
	}
}

func TestIntervalSchedulerStopsOnContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{}, 1)
	s := NewIntervalScheduler(time.Hour)
	if err := s.Start(ctx, func(time.Time) {
		select {
		case started <- struct{}{}:
		default:
		}
	}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	<-started
	cancel()

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop after cancel: %v", err)
	}
}

func TestIntervalSchedulerRestartsAfterContextEnds(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	s := NewIntervalScheduler(time.Hour)
	if err := s.Start(ctx, func(time.Time) {}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	cancel()

	ran := make(chan struct{}, 1)
	job := func(time.Time) {
		select {
		case ran <- struct{}{}:
		default:
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if err := s.Start(context.Background(), job); err != nil {
			t.Fatalf("restart: %v", err)
		}
		select {
		case <-ran:
			if err := s.Stop(context.Background()); err != nil {
				t.Fatalf("Stop: %v", err)
			}
			return
		case <-time.After(10 * time.Millisecond):
		}
		if time.Now().After(deadline) {
			t.Fatalf("scheduler never restarted after its context ended")
		}
	}
}

func TestIntervalSchedulerValidation(t *testing.T) {
	t.Parallel()

	if err := NewIntervalScheduler(0).Start(context.Background(), func(time.Time) {}); err == nil {
		t.Fatalf("expected error for zero interval")
	}
	if err := NewIntervalScheduler(time.Second).Start(context.Background(), nil); err != nil {
		t.Fatalf("nil job should be ignored: %v", err)
	}
	if err := NewIntervalScheduler(time.Second).Stop(context.Background()); err != nil {
		t.Fatalf("Stop without Start: %v", err)
	}
}
