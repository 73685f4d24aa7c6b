package bureau

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/veridianid/risk-engine/internal/domain/port"
)

// StubClient implements port.CreditBureauClient as a stub for development.
// In production, this would call an external bureau or watchlist provider.
type StubClient struct {
	logger *slog.Logger
}

// NewStubClient creates a new stub bureau client.
func NewStubClient(logger *slog.Logger) *StubClient {
	return &StubClient{logger: logger}
}

// CheckScore returns a clean bureau result. The account evaluator treats
// unavailable bureau data as a small degraded-signal bump, so the stub
// reports success with no restrictions.
func (c *StubClient) CheckScore(ctx context.Context, subjectID uuid.UUID) (port.BureauResult, error) {
	c.logger.Debug("stub bureau check requested",
		slog.String("subject_id", subjectID.String()),
	)

	return port.BureauResult{
		Success:         true,
		Score:           0.0,
		HasRestrictions: false,
		IsWatchlisted:   false,
	}, nil
}
