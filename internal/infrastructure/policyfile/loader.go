// Package policyfile loads and validates the engine policy document:
// one YAML file carrying aggregation weights, classification
// thresholds, the authentication policy table and the per-region
// compliance profiles. The document is parsed once at startup; a
// malformed document is fatal and prevents the engine from serving.
package policyfile

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/veridianid/risk-engine/internal/domain/evaluator"
	"github.com/veridianid/risk-engine/internal/domain/policy"
	"github.com/veridianid/risk-engine/internal/domain/port"
	"github.com/veridianid/risk-engine/internal/domain/service"
	"github.com/veridianid/risk-engine/internal/domain/valueobject"
)

type document struct {
	Engine struct {
		EvaluatorTimeoutMs int `yaml:"evaluator_timeout_ms"`
		TopFactors         int `yaml:"top_factors"`
	} `yaml:"engine"`

	Weights map[string]float64 `yaml:"weights"`

	Thresholds struct {
		Medium   float64 `yaml:"medium"`
		High     float64 `yaml:"high"`
		Critical float64 `yaml:"critical"`
	} `yaml:"thresholds"`

	Policies []struct {
		Level    string   `yaml:"level"`
		Region   string   `yaml:"region"`
		Industry string   `yaml:"industry"`
		Factors  []string `yaml:"factors"`
	} `yaml:"policies"`

	Regions []struct {
		Region                 string             `yaml:"region"`
		BaselineScore          float64            `yaml:"baseline_score"`
		DomesticCountries      []string           `yaml:"domestic_countries"`
		HighRiskCountries      []string           `yaml:"high_risk_countries"`
		RegulatedIndustries    map[string]float64 `yaml:"regulated_industries"`
		BorderCrossingElevated bool               `yaml:"border_crossing_elevated"`
		MaxPlausibleSpeedKmh   float64            `yaml:"max_plausible_speed_kmh"`
	} `yaml:"regions"`
}

// EngineSettings is the validated, immutable engine configuration built
// from the document. Reloading replaces the whole value; nothing is
// mutated in place.
type EngineSettings struct {
	EvaluatorTimeout time.Duration
	Aggregator       service.AggregatorConfig
	Policies         []policy.AuthPolicy
	Profiles         []evaluator.ComplianceProfile

	// LocationOptionsByRegion carries the location tuning for regions
	// whose compliance profile deviates from the default.
	LocationOptionsByRegion map[string]evaluator.LocationOptions
}

// Load reads and validates the engine policy document at path.
func Load(path string) (EngineSettings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return EngineSettings{}, fmt.Errorf("policyfile: read %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse validates a raw engine policy document.
func Parse(raw []byte) (EngineSettings, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return EngineSettings{}, fmt.Errorf("policyfile: parse yaml: %w", err)
	}

	settings := EngineSettings{
		EvaluatorTimeout:        time.Duration(doc.Engine.EvaluatorTimeoutMs) * time.Millisecond,
		LocationOptionsByRegion: make(map[string]evaluator.LocationOptions),
	}

	// Aggregator configuration.
	cfg := service.DefaultAggregatorConfig()
	if len(doc.Weights) > 0 {
		weights := make(map[valueobject.Dimension]float64, len(doc.Weights))
		for name, w := range doc.Weights {
			dim, err := valueobject.DimensionFromString(name)
			if err != nil {
				return EngineSettings{}, fmt.Errorf("policyfile: weights: %w", err)
			}
			weights[dim] = w
		}
		cfg.Weights = weights
	}
	if doc.Thresholds.Medium != 0 || doc.Thresholds.High != 0 || doc.Thresholds.Critical != 0 {
		cfg.Thresholds = valueobject.Thresholds{
			Medium:   doc.Thresholds.Medium,
			High:     doc.Thresholds.High,
			Critical: doc.Thresholds.Critical,
		}
	}
	if doc.Engine.TopFactors > 0 {
		cfg.TopFactors = doc.Engine.TopFactors
	}
	settings.Aggregator = cfg

	// Validation by construction: NewAggregator and NewResolver reject
	// malformed tables; run both here so startup fails loudly.
	if _, err := service.NewAggregator(cfg); err != nil {
		return EngineSettings{}, fmt.Errorf("policyfile: %w", err)
	}

	for _, p := range doc.Policies {
		level, err := valueobject.RiskLevelFromString(p.Level)
		if err != nil {
			return EngineSettings{}, fmt.Errorf("policyfile: policies: %w", err)
		}
		settings.Policies = append(settings.Policies, policy.AuthPolicy{
			Level:           level,
			Region:          p.Region,
			Industry:        p.Industry,
			RequiredFactors: p.Factors,
		})
	}
	if _, err := policy.NewResolver(settings.Policies); err != nil {
		return EngineSettings{}, fmt.Errorf("policyfile: %w", err)
	}

	for _, r := range doc.Regions {
		if r.Region == "" {
			return EngineSettings{}, fmt.Errorf("policyfile: regions: entry without region code")
		}
		settings.Profiles = append(settings.Profiles, evaluator.ComplianceProfile{
			Region:                 r.Region,
			BaselineScore:          r.BaselineScore,
			DomesticCountries:      r.DomesticCountries,
			HighRiskCountries:      r.HighRiskCountries,
			RegulatedIndustries:    r.RegulatedIndustries,
			BorderCrossingElevated: r.BorderCrossingElevated,
		})
		if r.BorderCrossingElevated || r.MaxPlausibleSpeedKmh > 0 {
			settings.LocationOptionsByRegion[r.Region] = evaluator.LocationOptions{
				MaxPlausibleSpeedKmh: r.MaxPlausibleSpeedKmh,
				BorderElevated:       r.BorderCrossingElevated,
			}
		}
	}

	return settings, nil
}

// BuildRegistry assembles the factor registry from the settings: the
// default evaluator per dimension plus a variant per configured region.
func BuildRegistry(settings EngineSettings, bureau port.CreditBureauClient) (*evaluator.Registry, error) {
	registry := evaluator.NewRegistry()

	defaults := []evaluator.Evaluator{
		evaluator.NewAccountRiskEvaluator(bureau),
		evaluator.NewLocationAnomalyEvaluator(evaluator.LocationOptions{}),
		evaluator.NewDeviceBehaviorEvaluator(),
		evaluator.NewRegionalFactorsEvaluator(evaluator.ComplianceProfile{}),
	}
	for _, e := range defaults {
		if err := registry.Register("", e); err != nil {
			return nil, fmt.Errorf("policyfile: %w", err)
		}
	}

	for _, profile := range settings.Profiles {
		if err := registry.Register(profile.Region, evaluator.NewRegionalFactorsEvaluator(profile)); err != nil {
			return nil, fmt.Errorf("policyfile: %w", err)
		}
	}
	for region, opts := range settings.LocationOptionsByRegion {
		if err := registry.Register(region, evaluator.NewLocationAnomalyEvaluator(opts)); err != nil {
			return nil, fmt.Errorf("policyfile: %w", err)
		}
	}

	return registry, nil
}
