package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/veridianid/risk-engine/internal/application/dto"
	"github.com/veridianid/risk-engine/internal/domain/port"
)

// DefaultTrendWindowDays is used when a trends query omits the window.
const DefaultTrendWindowDays = 30

// GetTrustTrends answers time-bucketed score series queries against the
// trust score store. Reads tolerate eventual consistency with the async
// write path.
type GetTrustTrends struct {
	repo port.HistoryRepository
}

// NewGetTrustTrends creates the trends query use case.
func NewGetTrustTrends(repo port.HistoryRepository) *GetTrustTrends {
	return &GetTrustTrends{repo: repo}
}

// Execute returns sparse calendar-day buckets for a subject.
func (uc *GetTrustTrends) Execute(ctx context.Context, req dto.TrendsRequest) (dto.TrendsResponse, error) {
	if req.SubjectID == uuid.Nil {
		return dto.TrendsResponse{}, fmt.Errorf("subject ID is required")
	}
	if req.TenantID == uuid.Nil {
		return dto.TrendsResponse{}, fmt.Errorf("tenant ID is required")
	}

	windowDays := req.WindowDays
	if windowDays <= 0 {
		windowDays = DefaultTrendWindowDays
	}

	buckets, err := uc.repo.QuerySeries(ctx, port.SeriesQuery{
		SubjectID:  req.SubjectID,
		TenantID:   req.TenantID,
		WindowDays: windowDays,
		Region:     req.Region,
	})
	if err != nil {
		return dto.TrendsResponse{}, fmt.Errorf("query trust score series: %w", err)
	}

	return dto.FromTrendBuckets(buckets), nil
}
