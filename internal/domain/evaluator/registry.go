package evaluator

import (
	"fmt"

	"github.com/veridianid/risk-engine/internal/domain/valueobject"
)

type registryKey struct {
	dimension string
	region    string
}

// Registry maps (dimension, region) to the evaluator variant serving it.
// An entry registered with an empty region is the default for that
// dimension. The registry is built once at startup and is read-only
// afterwards; configuration updates swap the whole registry.
type Registry struct {
	entries map[registryKey]Evaluator
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[registryKey]Evaluator)}
}

// Register binds an evaluator to a region. An empty region registers the
// dimension default. Registering the same (dimension, region) twice is a
// wiring bug and returns an error.
func (r *Registry) Register(region string, e Evaluator) error {
	key := registryKey{dimension: e.Dimension().String(), region: region}
	if existing, dup := r.entries[key]; dup {
		return fmt.Errorf("evaluator %s already registered for dimension %s region %q",
			existing.ID(), key.dimension, region)
	}
	r.entries[key] = e
	return nil
}

// For returns the ordered evaluator set for a region: for each dimension
// the region-specific variant when one exists, otherwise the default.
// Dimensions with neither are simply absent from the result.
func (r *Registry) For(region string) []Evaluator {
	var out []Evaluator
	for _, dim := range valueobject.AllDimensions() {
		if e, ok := r.entries[registryKey{dimension: dim.String(), region: region}]; ok {
			out = append(out, e)
			continue
		}
		if e, ok := r.entries[registryKey{dimension: dim.String(), region: ""}]; ok {
			out = append(out, e)
		}
	}
	return out
}
