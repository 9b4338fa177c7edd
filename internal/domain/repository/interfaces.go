package repository

import (
	"context"

	"KabuScan/internal/domain/models"
)

// BarSource supplies daily bars for a batch of instruments over a trailing
// window of calendar days. Implementations may return partial results; a
// symbol with no data is simply absent from the map. Only total failure
// returns an error.
type BarSource interface {
	FetchBars(ctx context.Context, codes []string, days int) (map[string][]models.Bar, error)
}

// UniverseSource loads the instrument universe, already filtered to equities
// in the configured market segments.
type UniverseSource interface {
	Load(ctx context.Context) ([]models.Instrument, error)
}

// ResultPublisher pushes a finished scan report to a downstream channel.
// Optional; a nil publisher means results go only to the caller.
type ResultPublisher interface {
	Publish(ctx context.Context, report *models.ScanReport) error
	Close() error
}

// Metrics records scan observability counters. Implemented by pkg/metrics.
type Metrics interface {
	RecordScan(outcome string, seconds float64)
	RecordScored(n int)
	RecordSkip(reason string, n int)
	RecordCandidates(n int)
	RecordFetch(source string, seconds float64)
	RecordCacheHit(hit bool)
	RecordError(kind string)
}
