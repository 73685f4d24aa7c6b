package valueobject

import "fmt"

// Thresholds are the ordered band boundaries mapping a continuous score
// in [0,1] to a RiskLevel. Boundaries are closed-upper: a score equal to
// a boundary belongs to the higher band.
type Thresholds struct {
	Medium   float64
	High     float64
	Critical float64
}

// DefaultThresholds returns the platform default bands
// (LOW < 0.3 <= MEDIUM < 0.6 <= HIGH < 0.8 <= CRITICAL).
func DefaultThresholds() Thresholds {
	return Thresholds{Medium: 0.3, High: 0.6, Critical: 0.8}
}

// Validate checks that the bands are contiguous and within [0,1].
func (t Thresholds) Validate() error {
	if t.Medium <= 0 || t.Medium >= 1 {
		return fmt.Errorf("medium threshold %v outside (0,1)", t.Medium)
	}
	if t.High <= t.Medium || t.High >= 1 {
		return fmt.Errorf("high threshold %v must lie in (%v,1)", t.High, t.Medium)
	}
	if t.Critical <= t.High || t.Critical >= 1 {
		return fmt.Errorf("critical threshold %v must lie in (%v,1)", t.Critical, t.High)
	}
	return nil
}

// Classify maps a score to its RiskLevel. Every score in [0,1] maps to
// exactly one level.
func (t Thresholds) Classify(score float64) RiskLevel {
	switch {
	case score >= t.Critical:
		return RiskLevelCritical
	case score >= t.High:
		return RiskLevelHigh
	case score >= t.Medium:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}
