package summarizer

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RunRecord is one completed pipeline computation, kept for operational
// stats. Cache hits are not recorded; they did no pipeline work.
type RunRecord struct {
	ID            uuid.UUID `json:"id"`
	Fingerprint   string    `json:"fingerprint"`
	RequestedMode Mode      `json:"requested_mode"`
	DeliveredMode Mode      `json:"delivered_mode"`
	Degraded      bool      `json:"degraded"`
	SentenceCount int       `json:"sentence_count"`
	SelectedCount int       `json:"selected_count"`
	DurationMs    float64   `json:"duration_ms"`
	Embedding     []float32 `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
}

// RunRepository persists pipeline run history.
type RunRepository interface {
	Record(ctx context.Context, record RunRecord) error
	Recent(ctx context.Context, limit int) ([]RunRecord, error)
	Totals(ctx context.Context) (RunTotals, error)
}

// RunTotals aggregates the run history.
type RunTotals struct {
	Runs      int64   `json:"runs"`
	Degraded  int64   `json:"degraded"`
	AvgDurMs  float64 `json:"avg_duration_ms"`
	LastRunAt string  `json:"last_run_at,omitempty"`
}

// Stats is the payload served by the stats endpoint.
type Stats struct {
	Totals RunTotals   `json:"totals"`
	Recent []RunRecord `json:"recent"`
}
