package evaluator

import (
	"context"
	"fmt"
	"math"

	"github.com/veridianid/risk-engine/internal/domain/model"
	"github.com/veridianid/risk-engine/internal/domain/valueobject"
)

const earthRadiusKm = 6371.0

// haversineKm returns the great-circle distance between two coordinates.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	rLat1 := lat1 * math.Pi / 180
	rLat2 := lat2 * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// LocationOptions tunes a LocationAnomalyEvaluator for a region's
// compliance profile.
type LocationOptions struct {
	// MaxPlausibleSpeedKmh is the travel-speed ceiling above which a
	// login is flagged as impossible travel. Zero selects the default
	// (900 km/h, commercial aircraft).
	MaxPlausibleSpeedKmh float64

	// BorderElevated marks border-proximate logins as elevated risk,
	// required by some regional compliance profiles.
	BorderElevated bool
}

// Internal component weights. Fixed by design review, not configurable
// per tenant.
const (
	locWeightDistance = 0.4
	locWeightVelocity = 0.4
	locWeightNetwork  = 0.2

	// impossibleTravelFloor bounds the dimension score from below when
	// travel speed is implausible, regardless of the other components.
	impossibleTravelFloor = 0.75
)

// LocationAnomalyEvaluator scores geolocation anomalies: distance from
// the subject's historical locations, travel velocity since the last
// observation, and anonymising-network indicators.
type LocationAnomalyEvaluator struct {
	opts LocationOptions
}

// NewLocationAnomalyEvaluator creates the geolocation evaluator.
func NewLocationAnomalyEvaluator(opts LocationOptions) *LocationAnomalyEvaluator {
	if opts.MaxPlausibleSpeedKmh <= 0 {
		opts.MaxPlausibleSpeedKmh = 900
	}
	return &LocationAnomalyEvaluator{opts: opts}
}

// ID identifies this evaluator variant.
func (e *LocationAnomalyEvaluator) ID() string { return "location-anomaly/v1" }

// Dimension returns the location dimension.
func (e *LocationAnomalyEvaluator) Dimension() valueobject.Dimension {
	return valueobject.DimensionLocation
}

// Evaluate combines distance, velocity and network components with the
// fixed internal weights, averaging only over components that could be
// computed from the supplied history.
func (e *LocationAnomalyEvaluator) Evaluate(_ context.Context, rc *model.RiskContext) model.PartialAssessment {
	loc := rc.Location
	if loc == nil {
		return insufficientData(e.Dimension(), e.ID(), "no location sub-context supplied")
	}

	var factors []model.RiskFactor
	addFactor := func(name string, s float64, detail string) {
		factors = append(factors, model.RiskFactor{
			Name:        name,
			Dimension:   e.Dimension(),
			Score:       model.ClampScore(s),
			Detail:      detail,
			EvaluatorID: e.ID(),
		})
	}

	var weightedSum, weightSum float64
	implausible := false

	// Distance component: nearest historical location.
	if len(loc.History) > 0 {
		nearest := math.MaxFloat64
		for _, sample := range loc.History {
			d := haversineKm(loc.Latitude, loc.Longitude, sample.Latitude, sample.Longitude)
			if d < nearest {
				nearest = d
			}
		}
		distRisk := distanceBandRisk(nearest)
		if distRisk >= 0.35 {
			addFactor("distant_from_typical_locations", distRisk,
				fmt.Sprintf("%.0f km from nearest known location", nearest))
		}
		weightedSum += locWeightDistance * distRisk
		weightSum += locWeightDistance
	} else {
		// No history is valid input; score it as uncertainty.
		addFactor("no_location_history", neutralScore, "subject has no prior locations on record")
		weightedSum += locWeightDistance * neutralScore
		weightSum += locWeightDistance
	}

	// Velocity component: speed since the most recent observation.
	if last, ok := loc.LastSeen(); ok && rc.Timestamp.After(last.ObservedAt) {
		dist := haversineKm(loc.Latitude, loc.Longitude, last.Latitude, last.Longitude)
		hours := rc.Timestamp.Sub(last.ObservedAt).Hours()
		speed := dist / hours
		velRisk := math.Min(speed/e.opts.MaxPlausibleSpeedKmh, 1) * 0.5
		if speed > e.opts.MaxPlausibleSpeedKmh {
			implausible = true
			velRisk = 0.95
			addFactor("impossible_travel", 0.95,
				fmt.Sprintf("%.0f km in %.1f min implies %.0f km/h", dist, hours*60, speed))
		}
		weightedSum += locWeightVelocity * velRisk
		weightSum += locWeightVelocity
	}

	// Network component: anonymising infrastructure.
	netRisk := 0.0
	switch {
	case loc.TorExit:
		netRisk = 0.9
		addFactor("tor_exit_node", 0.9, "login from Tor exit node "+loc.IPAddress)
	case loc.Proxy:
		netRisk = 0.7
		addFactor("anonymous_proxy", 0.7, "login via anonymous proxy "+loc.IPAddress)
	case loc.VPN:
		netRisk = 0.6
		addFactor("vpn_detected", 0.6, "login via VPN address "+loc.IPAddress)
	}
	weightedSum += locWeightNetwork * netRisk
	weightSum += locWeightNetwork

	score := weightedSum / weightSum

	if e.opts.BorderElevated && loc.NearBorder {
		score += 0.15
		addFactor("border_proximity", 0.15, "login near a land border crossing")
	}

	if implausible && score < impossibleTravelFloor {
		score = impossibleTravelFloor
	}

	return finish(e.Dimension(), score, factors)
}

// distanceBandRisk buckets a distance (km) into the fixed risk bands.
func distanceBandRisk(km float64) float64 {
	switch {
	case km < 50:
		return 0.05
	case km < 200:
		return 0.2
	case km < 500:
		return 0.35
	case km < 1500:
		return 0.55
	default:
		return 0.8
	}
}
