package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/veridianid/risk-engine/internal/domain/port"
)

// TrendsRequest is the input DTO for the GetTrustTrends use case.
type TrendsRequest struct {
	SubjectID  uuid.UUID `json:"subject_id"`
	TenantID   uuid.UUID `json:"tenant_id"`
	WindowDays int       `json:"window_days"`
	Region     string    `json:"region,omitempty"`
}

// TrendStatsPayload summarises one statistic bucket.
type TrendStatsPayload struct {
	Avg   float64 `json:"avg"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// TrendBucketPayload is one calendar-day aggregate. Days without events
// are absent from the series.
type TrendBucketPayload struct {
	Day        time.Time                    `json:"day"`
	Dimensions map[string]TrendStatsPayload `json:"dimensions"`
	Overall    TrendStatsPayload            `json:"overall"`
}

// TrendsResponse is the time-bucketed series for a subject.
type TrendsResponse struct {
	Buckets []TrendBucketPayload `json:"buckets"`
}

// FromTrendBuckets maps repository buckets into the response DTO.
func FromTrendBuckets(buckets []port.TrendBucket) TrendsResponse {
	out := TrendsResponse{Buckets: make([]TrendBucketPayload, 0, len(buckets))}
	for _, b := range buckets {
		dims := make(map[string]TrendStatsPayload, len(b.Dimensions))
		for name, s := range b.Dimensions {
			dims[name] = TrendStatsPayload(s)
		}
		out.Buckets = append(out.Buckets, TrendBucketPayload{
			Day:        b.Day,
			Dimensions: dims,
			Overall:    TrendStatsPayload(b.Overall),
		})
	}
	return out
}

// AnomalyFrequencyRequest is the input DTO for anomaly aggregation.
type AnomalyFrequencyRequest struct {
	TenantID   uuid.UUID `json:"tenant_id"`
	WindowDays int       `json:"window_days"`
	Region     string    `json:"region,omitempty"`
}

// AnomalyStatPayload is one per-type anomaly aggregate.
type AnomalyStatPayload struct {
	Type          string    `json:"type"`
	Count         int       `json:"count"`
	AvgConfidence float64   `json:"avg_confidence"`
	LastDetected  time.Time `json:"last_detected"`
}

// AnomalyFrequencyResponse lists anomaly aggregates for a tenant.
type AnomalyFrequencyResponse struct {
	Anomalies []AnomalyStatPayload `json:"anomalies"`
}

// FromAnomalyStats maps repository aggregates into the response DTO.
func FromAnomalyStats(stats []port.AnomalyStat) AnomalyFrequencyResponse {
	out := AnomalyFrequencyResponse{Anomalies: make([]AnomalyStatPayload, 0, len(stats))}
	for _, s := range stats {
		out.Anomalies = append(out.Anomalies, AnomalyStatPayload{
			Type:          s.Type,
			Count:         s.Count,
			AvgConfidence: s.AvgConfidence,
			LastDetected:  s.LastDetected,
		})
	}
	return out
}

// PurgeHistoryRequest is the deletion contract consumed by the external
// retention batch: delete-before-date per tenant, optionally per region.
type PurgeHistoryRequest struct {
	TenantID uuid.UUID `json:"tenant_id"`
	Region   string    `json:"region,omitempty"`
	Before   time.Time `json:"before"`
}
