package runrepo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tessely/summarizer/internal/domain/summarizer"
)

func TestMemoryRepositoryRecentNewestFirst(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		record := summarizer.RunRecord{
			ID:         uuid.New(),
			DurationMs: float64(i),
			CreatedAt:  time.Now().UTC(),
		}
		if err := repo.Record(ctx, record); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	recent, err := repo.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(recent))
	}
	for i, run := range recent {
		if want := float64(4 - i); run.DurationMs != want {
			t.Fatalf("position %d: expected duration %f got %f", i, want, run.DurationMs)
		}
	}
}

func TestMemoryRepositoryTotals(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	totals, err := repo.Totals(ctx)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals.Runs != 0 {
		t.Fatalf("expected 0 runs, got %d", totals.Runs)
	}

	_ = repo.Record(ctx, summarizer.RunRecord{DurationMs: 10, Degraded: true, CreatedAt: time.Now()})
	_ = repo.Record(ctx, summarizer.RunRecord{DurationMs: 30, CreatedAt: time.Now()})

	totals, err = repo.Totals(ctx)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals.Runs != 2 || totals.Degraded != 1 {
		t.Fatalf("unexpected totals: %+v", totals)
	}
	if totals.AvgDurMs != 20 {
		t.Fatalf("expected avg 20, got %f", totals.AvgDurMs)
	}
	if totals.LastRunAt == "" {
		t.Fatalf("expected last run timestamp")
	}
}
