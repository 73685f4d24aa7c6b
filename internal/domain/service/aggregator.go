package service

import (
	"fmt"

	"github.com/veridianid/risk-engine/internal/domain/model"
	"github.com/veridianid/risk-engine/internal/domain/valueobject"
)

// DefaultTopFactors is the caller-facing summary size when the tenant
// does not configure one.
const DefaultTopFactors = 5

// AggregatorConfig holds the tenant-tunable aggregation parameters.
// The config is immutable after validation; updates replace the whole
// Aggregator.
type AggregatorConfig struct {
	// Weights per dimension. Dimensions absent from an evaluation are
	// excluded from both numerator and denominator, never zero-filled.
	Weights map[valueobject.Dimension]float64

	Thresholds valueobject.Thresholds

	// TopFactors truncates the ranked caller-facing factor list.
	TopFactors int
}

// DefaultAggregatorConfig returns equal weights over all dimensions and
// the platform default bands.
func DefaultAggregatorConfig() AggregatorConfig {
	weights := make(map[valueobject.Dimension]float64)
	for _, d := range valueobject.AllDimensions() {
		weights[d] = 1.0
	}
	return AggregatorConfig{
		Weights:    weights,
		Thresholds: valueobject.DefaultThresholds(),
		TopFactors: DefaultTopFactors,
	}
}

// Aggregator combines partial assessments into one CombinedAssessment.
// Aggregation is pure and deterministic: identical inputs yield
// bit-identical results.
type Aggregator struct {
	cfg AggregatorConfig
}

// NewAggregator validates the configuration and builds an Aggregator.
// Malformed weights or thresholds are configuration errors and must
// prevent startup.
func NewAggregator(cfg AggregatorConfig) (*Aggregator, error) {
	if len(cfg.Weights) == 0 {
		return nil, fmt.Errorf("aggregator: weight table is empty")
	}
	for d, w := range cfg.Weights {
		if w <= 0 {
			return nil, fmt.Errorf("aggregator: weight for dimension %s must be positive, got %v", d, w)
		}
	}
	if err := cfg.Thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("aggregator: %w", err)
	}
	if cfg.TopFactors <= 0 {
		cfg.TopFactors = DefaultTopFactors
	}
	return &Aggregator{cfg: cfg}, nil
}

// Aggregate computes the weighted overall score over the dimensions
// present in the input, classifies it, ranks the merged factor list and
// derives recommendations.
func (a *Aggregator) Aggregate(partials []model.PartialAssessment) (model.CombinedAssessment, error) {
	if len(partials) == 0 {
		return model.CombinedAssessment{}, fmt.Errorf("aggregator: no partial assessments to combine")
	}

	dimScores := make(map[valueobject.Dimension]float64, len(partials))
	var allFactors []model.RiskFactor
	var weightedSum, weightSum float64

	for _, p := range partials {
		if p.Dimension.IsZero() {
			return model.CombinedAssessment{}, fmt.Errorf("aggregator: partial assessment without dimension")
		}
		if _, dup := dimScores[p.Dimension]; dup {
			return model.CombinedAssessment{}, fmt.Errorf("aggregator: duplicate dimension %s", p.Dimension)
		}

		score := model.ClampScore(p.Score)
		dimScores[p.Dimension] = score
		allFactors = append(allFactors, p.Factors...)

		weight, ok := a.cfg.Weights[p.Dimension]
		if !ok {
			// Unweighted dimensions contribute factors for audit but do
			// not move the overall score.
			continue
		}
		weightedSum += weight * score
		weightSum += weight
	}

	if weightSum == 0 {
		return model.CombinedAssessment{}, fmt.Errorf("aggregator: no weighted dimension present in input")
	}

	overall := model.ClampScore(weightedSum / weightSum)
	level := a.cfg.Thresholds.Classify(overall)

	ranked := model.RankFactors(allFactors)
	top := ranked
	if len(top) > a.cfg.TopFactors {
		top = top[:a.cfg.TopFactors]
	}

	return model.CombinedAssessment{
		OverallScore:    overall,
		Level:           level,
		DimensionScores: dimScores,
		TopFactors:      top,
		AllFactors:      ranked,
		Recommendations: recommendations(level, ranked),
	}, nil
}

// recommendations derives the ordered advice list from the level reached
// and the specific factors that fired. Deterministic by construction.
func recommendations(level valueobject.RiskLevel, ranked []model.RiskFactor) []string {
	var recs []string

	if level.AtLeast(valueobject.RiskLevelCritical) {
		recs = append(recs, "block pending manual review")
	}
	if level.AtLeast(valueobject.RiskLevelHigh) {
		recs = append(recs, "require additional verification")
	}
	if level.AtLeast(valueobject.RiskLevelMedium) {
		recs = append(recs, "step up authentication strength")
	}

	fired := func(name string) bool {
		for _, f := range ranked {
			if f.Name == name {
				return true
			}
		}
		return false
	}

	if fired("impossible_travel") {
		recs = append(recs, "verify current location out of band")
	}
	if fired("unknown_device") {
		recs = append(recs, "enroll and attest the new device")
	}
	if fired("no_mfa_enrolled") {
		recs = append(recs, "prompt MFA enrollment after sign-in")
	}
	if fired("insufficient_data") {
		recs = append(recs, "collect missing context before next evaluation")
	}

	if len(recs) == 0 {
		recs = append(recs, "no action required")
	}
	return recs
}
