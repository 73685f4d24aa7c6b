package valueobject

import "fmt"

// Dimension is an immutable value object naming one category of risk signal.
type Dimension struct {
	value string
}

var (
	DimensionAccount    = Dimension{value: "account"}
	DimensionLocation   = Dimension{value: "location"}
	DimensionDevice     = Dimension{value: "device"}
	DimensionRegional   = Dimension{value: "regional"}
	DimensionBehavioral = Dimension{value: "behavioral"}
)

// AllDimensions returns the known dimensions in canonical order.
func AllDimensions() []Dimension {
	return []Dimension{
		DimensionAccount,
		DimensionLocation,
		DimensionDevice,
		DimensionRegional,
		DimensionBehavioral,
	}
}

// DimensionFromString reconstructs a Dimension from its string representation.
func DimensionFromString(s string) (Dimension, error) {
	switch s {
	case "account":
		return DimensionAccount, nil
	case "location":
		return DimensionLocation, nil
	case "device":
		return DimensionDevice, nil
	case "regional":
		return DimensionRegional, nil
	case "behavioral":
		return DimensionBehavioral, nil
	default:
		return Dimension{}, fmt.Errorf("invalid dimension: %s", s)
	}
}

// String returns the string representation.
func (d Dimension) String() string {
	return d.value
}

// IsZero returns true if the Dimension has not been set.
func (d Dimension) IsZero() bool {
	return d.value == ""
}

// Equal checks equality with another Dimension.
func (d Dimension) Equal(other Dimension) bool {
	return d.value == other.value
}
