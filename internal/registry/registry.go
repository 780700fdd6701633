package registry

import (
	"context"
	"time"

	"govsignal-engine/internal/domain"
)

// Registry hands source descriptors to the pipeline and records fetch
// outcomes per source. The pipeline never mutates descriptors itself.
type Registry interface {
	// ActiveSources returns active descriptors, optionally restricted
	// to the given feed groups. Empty groups means all. Paused sources
	// (scraping disabled) are still returned; the pipeline skips them.
	ActiveSources(ctx context.Context, feedGroups []string) ([]domain.FeedSource, error)

	// AllSources returns every descriptor with operational state
	// attached, for inspection surfaces.
	AllSources(ctx context.Context) ([]domain.FeedSource, error)

	ReportFetchSuccess(ctx context.Context, sourceID string, at time.Time) error
	ReportFetchError(ctx context.Context, sourceID string, fetchErr error, at time.Time) error
}
