package summarizer

import (
	"context"
	"time"
)

// ResultStore is the persistence contract for the result cache. Expired
// entries are misses. Implementations store and return independent copies;
// nothing they hand out aliases a live pipeline run. Backend failures are
// returned as errors and never invented as misses, so the orchestrator can
// decide to bypass the cache for that request.
type ResultStore interface {
	Get(ctx context.Context, fingerprint string) (Result, bool, error)
	Put(ctx context.Context, fingerprint string, result Result, ttl time.Duration) error
}
