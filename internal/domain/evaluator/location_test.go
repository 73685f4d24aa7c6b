package evaluator_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridianid/risk-engine/internal/domain/evaluator"
	"github.com/veridianid/risk-engine/internal/domain/model"
	"github.com/veridianid/risk-engine/internal/domain/valueobject"
	"github.com/veridianid/risk-engine/pkg/testutil"
)

func locationContext(loc *model.LocationContext, at time.Time) *model.RiskContext {
	return &model.RiskContext{
		SubjectID: testutil.TestSubjectID1,
		TenantID:  testutil.TestTenantID,
		Region:    "mena",
		Timestamp: at,
		Location:  loc,
	}
}

func factorNames(p model.PartialAssessment) []string {
	names := make([]string, 0, len(p.Factors))
	for _, f := range p.Factors {
		names = append(names, f.Name)
	}
	return names
}

func TestLocationEvaluatorMissingContext(t *testing.T) {
	ev := evaluator.NewLocationAnomalyEvaluator(evaluator.LocationOptions{})

	p := ev.Evaluate(context.Background(), locationContext(nil, testutil.TestEvaluationTime))

	assert.True(t, p.Dimension.Equal(valueobject.DimensionLocation))
	assert.Equal(t, 0.5, p.Score)
	assert.Contains(t, factorNames(p), evaluator.FactorInsufficientData)
}

func TestLocationEvaluatorImpossibleTravel(t *testing.T) {
	ev := evaluator.NewLocationAnomalyEvaluator(evaluator.LocationOptions{})

	// Johannesburg ten minutes ago, Maputo now: roughly 450 km, which
	// implies a travel speed far beyond any commercial aircraft.
	now := testutil.TestEvaluationTime
	rc := locationContext(&model.LocationContext{
		Latitude:  -25.9686,
		Longitude: 32.5804,
		Country:   "MZ",
		History: []model.LocationSample{
			{Latitude: -26.2041, Longitude: 28.0473, Country: "ZA", ObservedAt: now.Add(-10 * time.Minute)},
		},
	}, now)

	p := ev.Evaluate(context.Background(), rc)

	assert.Contains(t, factorNames(p), "impossible_travel")
	assert.GreaterOrEqual(t, p.Score, 0.75, "implausible travel floors the dimension score")
	assert.True(t, p.Level.AtLeast(valueobject.RiskLevelHigh))
}

func TestLocationEvaluatorPlausibleTravel(t *testing.T) {
	ev := evaluator.NewLocationAnomalyEvaluator(evaluator.LocationOptions{})

	// Same metro area an hour apart: short distance, sensible speed.
	now := testutil.TestEvaluationTime
	rc := locationContext(&model.LocationContext{
		Latitude:  52.5200,
		Longitude: 13.4050,
		Country:   "DE",
		History: []model.LocationSample{
			{Latitude: 52.4800, Longitude: 13.3600, Country: "DE", ObservedAt: now.Add(-1 * time.Hour)},
		},
	}, now)

	p := ev.Evaluate(context.Background(), rc)

	assert.NotContains(t, factorNames(p), "impossible_travel")
	assert.Less(t, p.Score, 0.3)
	assert.True(t, p.Level.Equal(valueobject.RiskLevelLow))
}

func TestLocationEvaluatorNoHistory(t *testing.T) {
	ev := evaluator.NewLocationAnomalyEvaluator(evaluator.LocationOptions{})

	rc := locationContext(&model.LocationContext{
		Latitude:  48.8566,
		Longitude: 2.3522,
		Country:   "FR",
	}, testutil.TestEvaluationTime)

	p := ev.Evaluate(context.Background(), rc)

	assert.Contains(t, factorNames(p), "no_location_history")
	// Distance component neutral, no velocity, clean network:
	// (0.4*0.5 + 0.2*0) / 0.6
	assert.InDelta(t, 0.3333, p.Score, 1e-3)
}

func TestLocationEvaluatorNetworkSignals(t *testing.T) {
	ev := evaluator.NewLocationAnomalyEvaluator(evaluator.LocationOptions{})
	now := testutil.TestEvaluationTime

	t.Run("tor exit dominates", func(t *testing.T) {
		rc := locationContext(&model.LocationContext{
			Latitude: 1, Longitude: 1, IPAddress: "198.51.100.7",
			TorExit: true, VPN: true,
		}, now)
		p := ev.Evaluate(context.Background(), rc)
		names := factorNames(p)
		assert.Contains(t, names, "tor_exit_node")
		assert.NotContains(t, names, "vpn_detected")
	})

	t.Run("proxy outranks vpn", func(t *testing.T) {
		rc := locationContext(&model.LocationContext{
			Latitude: 1, Longitude: 1, IPAddress: "198.51.100.8",
			Proxy: true, VPN: true,
		}, now)
		p := ev.Evaluate(context.Background(), rc)
		names := factorNames(p)
		assert.Contains(t, names, "anonymous_proxy")
		assert.NotContains(t, names, "vpn_detected")
	})

	t.Run("vpn alone", func(t *testing.T) {
		rc := locationContext(&model.LocationContext{
			Latitude: 1, Longitude: 1, IPAddress: "198.51.100.9",
			VPN: true,
		}, now)
		p := ev.Evaluate(context.Background(), rc)
		assert.Contains(t, factorNames(p), "vpn_detected")
		// (0.4*0.5 + 0.2*0.6) / 0.6
		assert.InDelta(t, 0.5333, p.Score, 1e-3)
	})
}

func TestLocationEvaluatorBorderElevation(t *testing.T) {
	now := testutil.TestEvaluationTime
	loc := &model.LocationContext{
		Latitude: 25.2048, Longitude: 55.2708, Country: "AE", NearBorder: true,
	}

	plain := evaluator.NewLocationAnomalyEvaluator(evaluator.LocationOptions{})
	elevated := evaluator.NewLocationAnomalyEvaluator(evaluator.LocationOptions{BorderElevated: true})

	base := plain.Evaluate(context.Background(), locationContext(loc, now))
	raised := elevated.Evaluate(context.Background(), locationContext(loc, now))

	assert.NotContains(t, factorNames(base), "border_proximity")
	assert.Contains(t, factorNames(raised), "border_proximity")
	assert.InDelta(t, base.Score+0.15, raised.Score, 1e-9)
}

func TestLocationEvaluatorCustomSpeedCeiling(t *testing.T) {
	// A 1000 km/h ceiling tolerates a hop the 900 km/h default flags.
	now := testutil.TestEvaluationTime
	rc := locationContext(&model.LocationContext{
		Latitude:  51.5074,
		Longitude: -0.1278,
		Country:   "GB",
		History: []model.LocationSample{
			// Paris to London is ~340 km; 22 minutes implies ~930 km/h.
			{Latitude: 48.8566, Longitude: 2.3522, Country: "FR", ObservedAt: now.Add(-22 * time.Minute)},
		},
	}, now)

	strict := evaluator.NewLocationAnomalyEvaluator(evaluator.LocationOptions{})
	lenient := evaluator.NewLocationAnomalyEvaluator(evaluator.LocationOptions{MaxPlausibleSpeedKmh: 1000})

	require.Contains(t, factorNames(strict.Evaluate(context.Background(), rc)), "impossible_travel")
	assert.NotContains(t, factorNames(lenient.Evaluate(context.Background(), rc)), "impossible_travel")
}

func TestLocationEvaluatorDoesNotMutateContext(t *testing.T) {
	ev := evaluator.NewLocationAnomalyEvaluator(evaluator.LocationOptions{})
	now := testutil.TestEvaluationTime

	loc := &model.LocationContext{
		Latitude: 1, Longitude: 2, Country: "SG",
		History: []model.LocationSample{
			{Latitude: 1.1, Longitude: 2.1, Country: "SG", ObservedAt: now.Add(-2 * time.Hour)},
		},
	}
	rc := locationContext(loc, now)

	_ = ev.Evaluate(context.Background(), rc)

	assert.Equal(t, 1.0, loc.Latitude)
	assert.Len(t, loc.History, 1)
}
