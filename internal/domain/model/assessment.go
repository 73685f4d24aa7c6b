package model

import (
	"sort"

	"github.com/veridianid/risk-engine/internal/domain/valueobject"
)

// ClampScore bounds a score to [0,1]. All scores in the engine live on
// that interval; evaluators and the aggregator clamp at their edges.
func ClampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// RiskFactor is a single named risk signal produced by an evaluator.
// Immutable once created.
type RiskFactor struct {
	Name        string
	Dimension   valueobject.Dimension
	Score       float64
	Detail      string
	EvaluatorID string
}

// PartialAssessment is one evaluator's contribution: a dimension score
// with the factors that produced it. Owned by the aggregator for the
// duration of a single evaluation.
type PartialAssessment struct {
	Dimension valueobject.Dimension
	Score     float64
	Level     valueobject.RiskLevel
	Factors   []RiskFactor
}

// CombinedAssessment is the engine's verdict for one evaluation.
type CombinedAssessment struct {
	OverallScore    float64
	Level           valueobject.RiskLevel
	DimensionScores map[valueobject.Dimension]float64

	// TopFactors is the caller-facing ranked summary (score descending,
	// name ascending on ties, truncated). AllFactors retains the full
	// list for audit.
	TopFactors []RiskFactor
	AllFactors []RiskFactor

	Recommendations []string
}

// RankFactors orders factors by score descending, breaking ties by name
// ascending, and removes duplicate (name, dimension) pairs keeping the
// highest-scoring instance. The input slice is not modified.
func RankFactors(factors []RiskFactor) []RiskFactor {
	ranked := make([]RiskFactor, len(factors))
	copy(ranked, factors)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Name < ranked[j].Name
	})

	type key struct {
		name string
		dim  string
	}
	seen := make(map[key]struct{}, len(ranked))
	deduped := ranked[:0]
	for _, f := range ranked {
		k := key{name: f.Name, dim: f.Dimension.String()}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		deduped = append(deduped, f)
	}

	return deduped
}
