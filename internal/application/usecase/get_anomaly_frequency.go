package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/veridianid/risk-engine/internal/application/dto"
	"github.com/veridianid/risk-engine/internal/domain/port"
)

// GetAnomalyFrequency answers per-type anomaly aggregation queries for a
// tenant over a rolling window.
type GetAnomalyFrequency struct {
	repo port.HistoryRepository
}

// NewGetAnomalyFrequency creates the anomaly frequency query use case.
func NewGetAnomalyFrequency(repo port.HistoryRepository) *GetAnomalyFrequency {
	return &GetAnomalyFrequency{repo: repo}
}

// Execute returns counts, average confidence and last-detected time per
// anomaly type.
func (uc *GetAnomalyFrequency) Execute(ctx context.Context, req dto.AnomalyFrequencyRequest) (dto.AnomalyFrequencyResponse, error) {
	if req.TenantID == uuid.Nil {
		return dto.AnomalyFrequencyResponse{}, fmt.Errorf("tenant ID is required")
	}

	windowDays := req.WindowDays
	if windowDays <= 0 {
		windowDays = DefaultTrendWindowDays
	}

	stats, err := uc.repo.QueryAnomalyCounts(ctx, port.AnomalyQuery{
		TenantID:   req.TenantID,
		WindowDays: windowDays,
		Region:     req.Region,
	})
	if err != nil {
		return dto.AnomalyFrequencyResponse{}, fmt.Errorf("query anomaly counts: %w", err)
	}

	return dto.FromAnomalyStats(stats), nil
}
