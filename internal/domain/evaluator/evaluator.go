// Package evaluator contains the pluggable risk-factor evaluators. Each
// evaluator transforms one slice of a RiskContext into a PartialAssessment
// for its dimension. Evaluators are pure: they never mutate the context
// and never fail a request: absent or unreliable input degrades to a
// neutral mid-range score with an explicit insufficient_data factor.
package evaluator

import (
	"context"

	"github.com/veridianid/risk-engine/internal/domain/model"
	"github.com/veridianid/risk-engine/internal/domain/valueobject"
)

// Factor names shared across evaluators.
const (
	FactorInsufficientData = "insufficient_data"
	FactorAPIError         = "api_error"
)

// neutralScore is returned when an evaluator lacks its required input.
// Mid-range rather than zero or one: missing data is uncertainty, not
// evidence in either direction.
const neutralScore = 0.5

// Evaluator is the capability contract every risk-factor evaluator
// implements, one concrete variant per (dimension, region).
type Evaluator interface {
	// ID identifies the concrete evaluator variant for audit trails.
	ID() string

	// Dimension names the risk dimension this evaluator covers.
	Dimension() valueobject.Dimension

	// Evaluate scores one slice of the context. It must not mutate rc.
	Evaluate(ctx context.Context, rc *model.RiskContext) model.PartialAssessment
}

// Degraded builds the neutral PartialAssessment used whenever an
// evaluator's required input is absent or the evaluator could not finish
// inside its latency budget. The orchestrator uses it for timeouts.
func Degraded(dim valueobject.Dimension, evaluatorID, detail string) model.PartialAssessment {
	return insufficientData(dim, evaluatorID, detail)
}

// insufficientData builds the degraded PartialAssessment used whenever
// an evaluator's required input is absent.
func insufficientData(dim valueobject.Dimension, evaluatorID, detail string) model.PartialAssessment {
	return model.PartialAssessment{
		Dimension: dim,
		Score:     neutralScore,
		Level:     valueobject.DefaultThresholds().Classify(neutralScore),
		Factors: []model.RiskFactor{{
			Name:        FactorInsufficientData,
			Dimension:   dim,
			Score:       neutralScore,
			Detail:      detail,
			EvaluatorID: evaluatorID,
		}},
	}
}

// finish clamps the accumulated score and assembles the assessment.
func finish(dim valueobject.Dimension, score float64, factors []model.RiskFactor) model.PartialAssessment {
	score = model.ClampScore(score)
	return model.PartialAssessment{
		Dimension: dim,
		Score:     score,
		Level:     valueobject.DefaultThresholds().Classify(score),
		Factors:   factors,
	}
}
