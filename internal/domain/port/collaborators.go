package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/veridianid/risk-engine/internal/domain/event"
)

// EventPublisher is the port for publishing domain events.
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.DomainEvent) error
}

// BureauResult is the outcome of an external verification lookup.
// Success=false means the collaborator could not answer; callers treat
// that as degraded data, never as an evaluation failure.
type BureauResult struct {
	Success         bool
	Score           int
	HasRestrictions bool
	IsWatchlisted   bool
}

// CreditBureauClient is the port for the external credit-bureau /
// verification collaborator used by account evaluators.
type CreditBureauClient interface {
	CheckScore(ctx context.Context, subjectID uuid.UUID) (BureauResult, error)
}
