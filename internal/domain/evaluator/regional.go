package evaluator

import (
	"context"

	"github.com/veridianid/risk-engine/internal/domain/model"
	"github.com/veridianid/risk-engine/internal/domain/valueobject"
)

// ComplianceProfile is the per-region rule content a regional evaluator
// variant is built from. Profiles are configuration: adding a region
// means adding a profile and a registry entry, never new code.
type ComplianceProfile struct {
	Region string

	// BaselineScore is the jurisdiction's ambient risk level.
	BaselineScore float64

	// DomesticCountries are ISO country codes considered in-region;
	// logins from elsewhere score as out-of-region access.
	DomesticCountries []string

	// HighRiskCountries elevate any login originating from them.
	HighRiskCountries []string

	// RegulatedIndustries maps industry codes to a minimum dimension
	// score the jurisdiction imposes (e.g. banking under local AML law).
	RegulatedIndustries map[string]float64

	// BorderCrossingElevated mirrors the location profile flag; kept on
	// the compliance profile so one document describes the jurisdiction.
	BorderCrossingElevated bool
}

// RegionalFactorsEvaluator applies one jurisdiction's compliance rules.
// One instance per region is registered in the factor registry.
type RegionalFactorsEvaluator struct {
	profile ComplianceProfile
}

// NewRegionalFactorsEvaluator creates a regional evaluator from its
// compliance profile.
func NewRegionalFactorsEvaluator(profile ComplianceProfile) *RegionalFactorsEvaluator {
	return &RegionalFactorsEvaluator{profile: profile}
}

// ID identifies this evaluator variant, qualified by region.
func (e *RegionalFactorsEvaluator) ID() string {
	region := e.profile.Region
	if region == "" {
		region = "default"
	}
	return "regional-factors/" + region
}

// Dimension returns the regional dimension.
func (e *RegionalFactorsEvaluator) Dimension() valueobject.Dimension {
	return valueobject.DimensionRegional
}

// Evaluate applies the profile to the request's region, industry and
// origin country.
func (e *RegionalFactorsEvaluator) Evaluate(_ context.Context, rc *model.RiskContext) model.PartialAssessment {
	score := e.profile.BaselineScore
	var factors []model.RiskFactor

	add := func(name string, s float64, detail string) {
		factors = append(factors, model.RiskFactor{
			Name:        name,
			Dimension:   e.Dimension(),
			Score:       model.ClampScore(s),
			Detail:      detail,
			EvaluatorID: e.ID(),
		})
	}

	if e.profile.BaselineScore > 0 {
		add("regional_baseline", e.profile.BaselineScore, "jurisdiction baseline risk")
	}

	if rc.Location != nil && rc.Location.Country != "" {
		country := rc.Location.Country

		for _, c := range e.profile.HighRiskCountries {
			if c == country {
				score += 0.3
				add("high_risk_country", 0.3, "origin country "+country+" is high risk for this jurisdiction")
				break
			}
		}

		if len(e.profile.DomesticCountries) > 0 && !contains(e.profile.DomesticCountries, country) {
			score += 0.15
			add("out_of_region_access", 0.15, "origin country "+country+" outside the home jurisdiction")
		}
	}

	if floor, regulated := e.profile.RegulatedIndustries[rc.Industry]; regulated && score < floor {
		score = floor
		add("regulated_industry_floor", floor, "industry "+rc.Industry+" carries a compliance floor")
	}

	return finish(e.Dimension(), score, factors)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
