package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/veridianid/risk-engine/internal/domain/model"
)

// SeriesQuery selects trust-score history for trend aggregation.
// Region is an optional filter; empty means all regions.
type SeriesQuery struct {
	SubjectID  uuid.UUID
	TenantID   uuid.UUID
	WindowDays int
	Region     string
}

// TrendBucket is one calendar-day aggregate of a subject's scores.
// Days without events are omitted from a series, not zero-filled.
type TrendBucket struct {
	Day        time.Time
	Dimensions map[string]TrendStats
	Overall    TrendStats
}

// TrendStats summarises the scores observed inside one bucket.
type TrendStats struct {
	Avg   float64
	Min   float64
	Max   float64
	Count int
}

// AnomalyQuery selects anomaly labels for frequency aggregation.
type AnomalyQuery struct {
	TenantID   uuid.UUID
	WindowDays int
	Region     string
}

// AnomalyStat is the per-type aggregate of recorded anomaly labels.
type AnomalyStat struct {
	Type          string
	Count         int
	AvgConfidence float64
	LastDetected  time.Time
}

// HistoryRepository is the persistence port for the trust score store.
// The store is a pure log/aggregate layer: append, read, and the
// retention-purge deletion contract, no updates.
type HistoryRepository interface {
	// Append persists one completed evaluation record.
	Append(ctx context.Context, record *model.TrustScoreRecord) error

	// QuerySeries returns sparse calendar-day buckets ordered by day.
	QuerySeries(ctx context.Context, q SeriesQuery) ([]TrendBucket, error)

	// QueryAnomalyCounts returns per-type anomaly aggregates.
	QueryAnomalyCounts(ctx context.Context, q AnomalyQuery) ([]AnomalyStat, error)

	// DeleteBefore removes records created before cutoff for a tenant,
	// optionally restricted to one region. Returns rows removed. This is
	// the deletion contract consumed by the external retention batch.
	DeleteBefore(ctx context.Context, tenantID uuid.UUID, region string, cutoff time.Time) (int64, error)
}
