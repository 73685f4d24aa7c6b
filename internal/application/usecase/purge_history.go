package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/veridianid/risk-engine/internal/application/dto"
	"github.com/veridianid/risk-engine/internal/domain/port"
)

// PurgeHistory implements the retention deletion contract: remove a
// tenant's records created before a cutoff, optionally per region. It
// is invoked by the external retention batch, never by the decision
// path.
type PurgeHistory struct {
	repo   port.HistoryRepository
	logger *slog.Logger
}

// NewPurgeHistory creates the retention purge use case.
func NewPurgeHistory(repo port.HistoryRepository, logger *slog.Logger) *PurgeHistory {
	return &PurgeHistory{repo: repo, logger: logger}
}

// Execute deletes matching records and returns how many were removed.
func (uc *PurgeHistory) Execute(ctx context.Context, req dto.PurgeHistoryRequest) (int64, error) {
	if req.TenantID == uuid.Nil {
		return 0, fmt.Errorf("tenant ID is required")
	}
	if req.Before.IsZero() {
		return 0, fmt.Errorf("cutoff timestamp is required")
	}

	removed, err := uc.repo.DeleteBefore(ctx, req.TenantID, req.Region, req.Before)
	if err != nil {
		return 0, fmt.Errorf("purge trust score history: %w", err)
	}

	uc.logger.Info("purged trust score history",
		"tenant_id", req.TenantID, "region", req.Region,
		"before", req.Before, "removed", removed)

	return removed, nil
}
