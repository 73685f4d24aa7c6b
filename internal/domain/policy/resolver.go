// Package policy maps a risk verdict to the authentication factors a
// region and industry require. Policy content is configuration loaded at
// startup; the resolver is read-only during evaluation.
package policy

import (
	"fmt"

	"github.com/veridianid/risk-engine/internal/domain/valueobject"
)

// AuthPolicy is one policy table entry. Region and Industry are optional
// match keys; absence means wildcard. RequiredFactors is ordered and
// duplicate-free.
type AuthPolicy struct {
	Level           valueobject.RiskLevel
	Region          string
	Industry        string
	RequiredFactors []string
}

type policyKey struct {
	level    string
	region   string
	industry string
}

// Resolver answers resolve(level, region, industry) lookups with the
// documented fallback order:
//
//  1. exact (level, region, industry) override
//  2. (level, region) override
//  3. global default for the level
//
// A missing override silently falls back; an unknown region or industry
// is never an error. The table must carry a global default for every
// level; that is validated at construction and is fatal when violated.
type Resolver struct {
	entries map[policyKey][]string
}

// NewResolver validates the policy table and builds a resolver.
func NewResolver(policies []AuthPolicy) (*Resolver, error) {
	entries := make(map[policyKey][]string, len(policies))

	for _, p := range policies {
		if p.Level.IsZero() {
			return nil, fmt.Errorf("policy: entry without risk level (region %q industry %q)", p.Region, p.Industry)
		}
		if p.Industry != "" && p.Region == "" {
			return nil, fmt.Errorf("policy: industry %q requires a region on the same entry", p.Industry)
		}
		if len(p.RequiredFactors) == 0 {
			return nil, fmt.Errorf("policy: entry %s/%s/%s has no required factors", p.Level, p.Region, p.Industry)
		}

		seen := make(map[string]struct{}, len(p.RequiredFactors))
		for _, f := range p.RequiredFactors {
			if _, dup := seen[f]; dup {
				return nil, fmt.Errorf("policy: duplicate factor %q in entry %s/%s/%s", f, p.Level, p.Region, p.Industry)
			}
			seen[f] = struct{}{}
		}

		key := policyKey{level: p.Level.String(), region: p.Region, industry: p.Industry}
		if _, dup := entries[key]; dup {
			return nil, fmt.Errorf("policy: duplicate entry %s/%s/%s", p.Level, p.Region, p.Industry)
		}
		entries[key] = append([]string(nil), p.RequiredFactors...)
	}

	for _, level := range valueobject.AllRiskLevels() {
		if _, ok := entries[policyKey{level: level.String()}]; !ok {
			return nil, fmt.Errorf("policy: no global default for risk level %s", level)
		}
	}

	return &Resolver{entries: entries}, nil
}

// Resolve returns the ordered required-factor sequence for a verdict.
// The returned slice is a copy; callers may keep it.
//
// Calling Resolve with an unset RiskLevel is a programming error and
// panics: level values originate inside the engine, never from request
// input.
func (r *Resolver) Resolve(level valueobject.RiskLevel, region, industry string) []string {
	if level.IsZero() {
		panic("policy: Resolve called with unset risk level")
	}

	if region != "" && industry != "" {
		if factors, ok := r.entries[policyKey{level: level.String(), region: region, industry: industry}]; ok {
			return append([]string(nil), factors...)
		}
	}
	if region != "" {
		if factors, ok := r.entries[policyKey{level: level.String(), region: region}]; ok {
			return append([]string(nil), factors...)
		}
	}

	// Construction guarantees the global default exists.
	return append([]string(nil), r.entries[policyKey{level: level.String()}]...)
}
