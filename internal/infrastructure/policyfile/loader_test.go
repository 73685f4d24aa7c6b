package policyfile_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridianid/risk-engine/internal/domain/valueobject"
	"github.com/veridianid/risk-engine/internal/infrastructure/policyfile"
)

const validDocument = `
engine:
  evaluator_timeout_ms: 150
  top_factors: 3

weights:
  account: 1.0
  location: 1.2
  device: 1.0

thresholds:
  medium: 0.3
  high: 0.6
  critical: 0.8

policies:
  - level: LOW
    factors: [password]
  - level: MEDIUM
    factors: [password, otp]
  - level: HIGH
    factors: [password, otp, device_attestation]
  - level: CRITICAL
    factors: [password, otp, manual_review]
  - level: HIGH
    region: eu-west
    factors: [password, webauthn]

regions:
  - region: eu-west
    baseline_score: 0.05
    domestic_countries: [DE, FR, NL]
    high_risk_countries: [KP, IR]
    regulated_industries:
      banking: 0.3
  - region: apac
    baseline_score: 0.1
    border_crossing_elevated: true
    max_plausible_speed_kmh: 1000
`

func TestParseValidDocument(t *testing.T) {
	settings, err := policyfile.Parse([]byte(validDocument))
	require.NoError(t, err)

	assert.Equal(t, 150*time.Millisecond, settings.EvaluatorTimeout)
	assert.Equal(t, 3, settings.Aggregator.TopFactors)
	assert.InDelta(t, 1.2, settings.Aggregator.Weights[valueobject.DimensionLocation], 1e-9)
	assert.InDelta(t, 0.6, settings.Aggregator.Thresholds.High, 1e-9)

	assert.Len(t, settings.Policies, 5)
	assert.Len(t, settings.Profiles, 2)
	assert.Equal(t, "eu-west", settings.Profiles[0].Region)
	assert.InDelta(t, 0.3, settings.Profiles[0].RegulatedIndustries["banking"], 1e-9)

	// only apac deviates from default location tuning
	require.Len(t, settings.LocationOptionsByRegion, 1)
	opts, ok := settings.LocationOptionsByRegion["apac"]
	require.True(t, ok)
	assert.True(t, opts.BorderElevated)
	assert.InDelta(t, 1000, opts.MaxPlausibleSpeedKmh, 1e-9)
}

func TestParseRejectsMalformedDocuments(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name:    "not yaml",
			doc:     "{{nope",
			wantErr: "parse yaml",
		},
		{
			name: "unknown dimension in weights",
			doc: `
weights:
  network: 1.0
policies:
  - level: CRITICAL
    factors: [manual_review]
`,
			wantErr: "weights",
		},
		{
			name: "inverted thresholds",
			doc: `
thresholds:
  medium: 0.6
  high: 0.3
  critical: 0.8
policies:
  - level: CRITICAL
    factors: [manual_review]
`,
			wantErr: "threshold",
		},
		{
			name: "unknown risk level in policies",
			doc: `
policies:
  - level: SEVERE
    factors: [password]
`,
			wantErr: "policies",
		},
		{
			name: "missing global critical default",
			doc: `
policies:
  - level: LOW
    factors: [password]
  - level: MEDIUM
    factors: [password, otp]
  - level: HIGH
    factors: [password, otp]
`,
			wantErr: "CRITICAL",
		},
		{
			name: "region entry without code",
			doc: `
policies:
  - level: LOW
    factors: [password]
  - level: MEDIUM
    factors: [password, otp]
  - level: HIGH
    factors: [password, otp]
  - level: CRITICAL
    factors: [manual_review]
regions:
  - baseline_score: 0.1
`,
			wantErr: "without region code",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := policyfile.Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBuildRegistry(t *testing.T) {
	settings, err := policyfile.Parse([]byte(validDocument))
	require.NoError(t, err)

	registry, err := policyfile.BuildRegistry(settings, nil)
	require.NoError(t, err)

	ids := func(region string) map[string]bool {
		out := make(map[string]bool)
		for _, e := range registry.For(region) {
			out[e.ID()] = true
		}
		return out
	}

	// every region gets the four engine dimensions
	assert.Len(t, registry.For("eu-west"), 4)
	assert.Len(t, registry.For("unconfigured"), 4)

	assert.True(t, ids("eu-west")["regional-factors/eu-west"])
	assert.True(t, ids("apac")["regional-factors/apac"])
	assert.True(t, ids("unconfigured")["regional-factors/default"])

	// the apac location variant replaces the default tuning
	assert.True(t, ids("apac")["location-anomaly/v1"])
}
