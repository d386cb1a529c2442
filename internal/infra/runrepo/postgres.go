package runrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/tessely/summarizer/internal/domain/summarizer"
)

// PostgresRepository persists run history using pgx. The optional document
// embedding is stored as a pgvector column so degraded/slow runs can later be
// correlated with similar documents.
//
// Expected schema:
//
//	CREATE TABLE pipeline_runs (
//	    id UUID PRIMARY KEY,
//	    fingerprint TEXT NOT NULL,
//	    requested_mode TEXT NOT NULL,
//	    delivered_mode TEXT NOT NULL,
//	    degraded BOOLEAN NOT NULL,
//	    sentence_count INT NOT NULL,
//	    selected_count INT NOT NULL,
//	    duration_ms DOUBLE PRECISION NOT NULL,
//	    doc_embedding VECTOR,
//	    created_at TIMESTAMPTZ NOT NULL
//	);
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Record inserts one run row.
func (r *PostgresRepository) Record(ctx context.Context, record summarizer.RunRecord) error {
	var embedding any
	if len(record.Embedding) > 0 {
		embedding = pgvector.NewVector(record.Embedding)
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO pipeline_runs
			(id, fingerprint, requested_mode, delivered_mode, degraded,
			 sentence_count, selected_count, duration_ms, doc_embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, record.ID, record.Fingerprint, string(record.RequestedMode), string(record.DeliveredMode),
		record.Degraded, record.SentenceCount, record.SelectedCount, record.DurationMs,
		embedding, record.CreatedAt)
	return err
}

// Recent returns the newest runs, newest first.
func (r *PostgresRepository) Recent(ctx context.Context, limit int) ([]summarizer.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, fingerprint, requested_mode, delivered_mode, degraded,
		       sentence_count, selected_count, duration_ms, created_at
		FROM pipeline_runs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []summarizer.RunRecord
	for rows.Next() {
		var record summarizer.RunRecord
		var requested, delivered string
		if err := rows.Scan(&record.ID, &record.Fingerprint, &requested, &delivered,
			&record.Degraded, &record.SentenceCount, &record.SelectedCount,
			&record.DurationMs, &record.CreatedAt); err != nil {
			return nil, err
		}
		record.RequestedMode = summarizer.Mode(requested)
		record.DeliveredMode = summarizer.Mode(delivered)
		out = append(out, record)
	}
	return out, rows.Err()
}

// Totals aggregates the run history.
func (r *PostgresRepository) Totals(ctx context.Context) (summarizer.RunTotals, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE degraded),
		       COALESCE(AVG(duration_ms), 0),
		       MAX(created_at)
		FROM pipeline_runs
	`)
	var totals summarizer.RunTotals
	var last sql.NullTime
	if err := row.Scan(&totals.Runs, &totals.Degraded, &totals.AvgDurMs, &last); err != nil {
		return summarizer.RunTotals{}, err
	}
	if last.Valid {
		totals.LastRunAt = last.Time.UTC().Format(time.RFC3339)
	}
	return totals, nil
}

var _ summarizer.RunRepository = (*PostgresRepository)(nil)
