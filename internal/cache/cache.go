package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/atxlegis/bill-analyzer/internal/domain"
)

// DefaultTTL is how long an analysis stays fresh before the pipeline
// rebuilds it.
const DefaultTTL = 24 * time.Hour

// Key derives the cache key for a bill analysis. Equivalent raw inputs
// ("HB 150", "hb150") share a key because the identifier is canonical.
func Key(session string, id domain.BillIdentifier) string {
	return fmt.Sprintf("bill_analysis:%s:%s", session, id)
}

// lockKey marks an in-flight build for a cache key so concurrent misses can
// collapse onto one upstream pipeline run.
func lockKey(key string) string {
	return key + ":building"
}

// AnalysisCache is the shared, process-external store for assembled
// results. Writes are unconditional overwrites; the later writer wins.
// Store errors are absorbed as misses — the pipeline never fails because
// the cache is down.
type AnalysisCache interface {
	Get(ctx context.Context, key string) (*domain.AnalysisResult, bool)
	Put(ctx context.Context, key string, result *domain.AnalysisResult, ttl time.Duration)
	Invalidate(ctx context.Context, key string) error

	// TryLock claims the build lock for key with a short TTL, returning
	// false when another builder holds it. Unlock releases early; the TTL
	// bounds leaks from crashed builders.
	TryLock(ctx context.Context, key string, ttl time.Duration) bool
	Unlock(ctx context.Context, key string)

	Ping(ctx context.Context) error
}
