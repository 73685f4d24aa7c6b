package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/veridianid/risk-engine/internal/application/dto"
	"github.com/veridianid/risk-engine/internal/domain/evaluator"
	"github.com/veridianid/risk-engine/internal/domain/model"
	"github.com/veridianid/risk-engine/internal/domain/policy"
	"github.com/veridianid/risk-engine/internal/domain/port"
	"github.com/veridianid/risk-engine/internal/domain/service"
)

// DefaultEvaluatorTimeout bounds a single evaluator's contribution to
// request latency.
const DefaultEvaluatorTimeout = 200 * time.Millisecond

// Recorder accepts completed records for asynchronous persistence.
// Enqueue must not block the decision path; it reports false when the
// record could not be queued.
type Recorder interface {
	Enqueue(record *model.TrustScoreRecord) bool
}

// anomalyFactorNames are the engine-produced factor names promoted to
// anomaly labels when their score clears anomalyConfidenceFloor.
var anomalyFactorNames = map[string]struct{}{
	"impossible_travel": {},
	"watchlist_hit":     {},
	"tor_exit_node":     {},
}

const anomalyConfidenceFloor = 0.6

// EvaluateRisk is the orchestrator: it fans evaluators out concurrently,
// aggregates their partial assessments, resolves the authentication
// policy and hands the record to the async recorder. The caller receives
// the decision before persistence completes.
type EvaluateRisk struct {
	registry   *evaluator.Registry
	aggregator *service.Aggregator
	resolver   *policy.Resolver
	recorder   Recorder
	publisher  port.EventPublisher
	timeout    time.Duration
	logger     *slog.Logger
}

// NewEvaluateRisk creates the evaluation use case. A non-positive
// timeout selects DefaultEvaluatorTimeout.
func NewEvaluateRisk(
	registry *evaluator.Registry,
	aggregator *service.Aggregator,
	resolver *policy.Resolver,
	recorder Recorder,
	publisher port.EventPublisher,
	timeout time.Duration,
	logger *slog.Logger,
) *EvaluateRisk {
	if timeout <= 0 {
		timeout = DefaultEvaluatorTimeout
	}
	return &EvaluateRisk{
		registry:   registry,
		aggregator: aggregator,
		resolver:   resolver,
		recorder:   recorder,
		publisher:  publisher,
		timeout:    timeout,
		logger:     logger,
	}
}

// Execute runs one evaluation end to end.
func (uc *EvaluateRisk) Execute(ctx context.Context, req dto.EvaluateRiskRequest) (dto.EvaluationResponse, error) {
	rc := req.ToModel()
	if err := rc.Validate(); err != nil {
		return dto.EvaluationResponse{}, fmt.Errorf("invalid risk context: %w", err)
	}

	evaluators := uc.registry.For(rc.Region)
	if len(evaluators) == 0 {
		return dto.EvaluationResponse{}, fmt.Errorf("no evaluators registered for region %q", rc.Region)
	}

	partials := uc.fanOut(ctx, evaluators, rc)

	assessment, err := uc.aggregator.Aggregate(partials)
	if err != nil {
		return dto.EvaluationResponse{}, fmt.Errorf("aggregate assessments: %w", err)
	}

	requiredFactors := uc.resolver.Resolve(assessment.Level, rc.Region, rc.Industry)

	anomalies := append(anomalyLabels(assessment), rc.ExternalAnomalies...)

	record, err := model.NewTrustScoreRecord(
		rc.SubjectID, rc.TenantID, rc.Region, assessment, anomalies, rc.Timestamp,
	)
	if err != nil {
		return dto.EvaluationResponse{}, fmt.Errorf("create trust score record: %w", err)
	}

	// Events and persistence are off the decision path: failures here
	// are logged, never surfaced to the authentication layer.
	events := record.DomainEvents()
	if len(events) > 0 {
		if err := uc.publisher.Publish(ctx, events...); err != nil {
			uc.logger.Warn("failed to publish evaluation events",
				"record_id", record.ID(), "error", err)
		}
	}

	if !uc.recorder.Enqueue(record) {
		uc.logger.Error("history recorder queue full, record dropped",
			"record_id", record.ID(), "tenant_id", record.TenantID())
	}

	return dto.FromAssessment(record, assessment, requiredFactors), nil
}

// fanOut invokes all evaluators concurrently, bounding each by the
// per-evaluator timeout. A timed-out evaluator contributes the same
// degraded partial as missing data.
func (uc *EvaluateRisk) fanOut(ctx context.Context, evaluators []evaluator.Evaluator, rc *model.RiskContext) []model.PartialAssessment {
	partials := make([]model.PartialAssessment, len(evaluators))

	var wg sync.WaitGroup
	for i, ev := range evaluators {
		wg.Add(1)
		go func(i int, ev evaluator.Evaluator) {
			defer wg.Done()

			evalCtx, cancel := context.WithTimeout(ctx, uc.timeout)
			defer cancel()

			done := make(chan model.PartialAssessment, 1)
			go func() {
				done <- ev.Evaluate(evalCtx, rc)
			}()

			select {
			case p := <-done:
				partials[i] = p
			case <-evalCtx.Done():
				uc.logger.Warn("evaluator timed out",
					"evaluator_id", ev.ID(), "dimension", ev.Dimension().String())
				partials[i] = evaluator.Degraded(ev.Dimension(), ev.ID(), "evaluator exceeded latency budget")
			}
		}(i, ev)
	}
	wg.Wait()

	return partials
}

// anomalyLabels promotes high-confidence engine factors to anomaly
// labels for the trust score history.
func anomalyLabels(assessment model.CombinedAssessment) []model.Anomaly {
	var labels []model.Anomaly
	for _, f := range assessment.AllFactors {
		if _, tracked := anomalyFactorNames[f.Name]; !tracked {
			continue
		}
		if f.Score < anomalyConfidenceFloor {
			continue
		}
		labels = append(labels, model.Anomaly{Type: f.Name, Confidence: f.Score})
	}
	return labels
}
