package runrepo

import (
	"context"
	"sync"
	"time"

	"github.com/tessely/summarizer/internal/domain/summarizer"
)

// maxMemoryRuns bounds the in-process history buffer.
const maxMemoryRuns = 1000

// MemoryRepository keeps run history in process memory for dev/tests.
type MemoryRepository struct {
	mu   sync.RWMutex
	runs []summarizer.RunRecord
}

// NewMemoryRepository constructs the repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Record appends a run, evicting the oldest entries past the buffer cap.
func (r *MemoryRepository) Record(_ context.Context, record summarizer.RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, record)
	if len(r.runs) > maxMemoryRuns {
		r.runs = r.runs[len(r.runs)-maxMemoryRuns:]
	}
	return nil
}

// Recent returns the newest runs, newest first.
func (r *MemoryRepository) Recent(_ context.Context, limit int) ([]summarizer.RunRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if limit <= 0 || limit > len(r.runs) {
		limit = len(r.runs)
	}
	out := make([]summarizer.RunRecord, 0, limit)
	for i := len(r.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.runs[i])
	}
	return out, nil
}

// Totals aggregates over the buffered runs.
func (r *MemoryRepository) Totals(_ context.Context) (summarizer.RunTotals, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	totals := summarizer.RunTotals{Runs: int64(len(r.runs))}
	if len(r.runs) == 0 {
		return totals, nil
	}
	var durSum float64
	var last time.Time
	for _, run := range r.runs {
		durSum += run.DurationMs
		if run.Degraded {
			totals.Degraded++
		}
		if run.CreatedAt.After(last) {
			last = run.CreatedAt
		}
	}
	totals.AvgDurMs = durSum / float64(len(r.runs))
	totals.LastRunAt = last.Format(time.RFC3339)
	return totals, nil
}

var _ summarizer.RunRepository = (*MemoryRepository)(nil)
