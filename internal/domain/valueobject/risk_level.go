package valueobject

import "fmt"

// RiskLevel is an immutable value object representing the discrete risk
// classification derived from a continuous score.
type RiskLevel struct {
	value string
	rank  int
}

var (
	RiskLevelLow      = RiskLevel{value: "LOW", rank: 1}
	RiskLevelMedium   = RiskLevel{value: "MEDIUM", rank: 2}
	RiskLevelHigh     = RiskLevel{value: "HIGH", rank: 3}
	RiskLevelCritical = RiskLevel{value: "CRITICAL", rank: 4}
)

// AllRiskLevels returns the levels in ascending severity order.
func AllRiskLevels() []RiskLevel {
	return []RiskLevel{RiskLevelLow, RiskLevelMedium, RiskLevelHigh, RiskLevelCritical}
}

// RiskLevelFromString reconstructs a RiskLevel from its string representation.
func RiskLevelFromString(s string) (RiskLevel, error) {
	switch s {
	case "LOW":
		return RiskLevelLow, nil
	case "MEDIUM":
		return RiskLevelMedium, nil
	case "HIGH":
		return RiskLevelHigh, nil
	case "CRITICAL":
		return RiskLevelCritical, nil
	default:
		return RiskLevel{}, fmt.Errorf("invalid risk level: %s", s)
	}
}

// String returns the string representation.
func (r RiskLevel) String() string {
	return r.value
}

// IsZero returns true if the RiskLevel has not been set.
func (r RiskLevel) IsZero() bool {
	return r.value == ""
}

// Equal checks equality with another RiskLevel.
func (r RiskLevel) Equal(other RiskLevel) bool {
	return r.value == other.value
}

// AtLeast reports whether this level is at least as severe as other.
func (r RiskLevel) AtLeast(other RiskLevel) bool {
	return r.rank >= other.rank
}
