package evaluator

import (
	"context"
	"fmt"
	"time"

	"github.com/veridianid/risk-engine/internal/domain/model"
	"github.com/veridianid/risk-engine/internal/domain/valueobject"
)

// DeviceBehaviorEvaluator scores device fingerprint recognition and
// behavioral signals collected by the session layer.
type DeviceBehaviorEvaluator struct{}

// NewDeviceBehaviorEvaluator creates the device/behavioral evaluator.
func NewDeviceBehaviorEvaluator() *DeviceBehaviorEvaluator {
	return &DeviceBehaviorEvaluator{}
}

// ID identifies this evaluator variant.
func (e *DeviceBehaviorEvaluator) ID() string { return "device-behavior/v1" }

// Dimension returns the device dimension.
func (e *DeviceBehaviorEvaluator) Dimension() valueobject.Dimension {
	return valueobject.DimensionDevice
}

// Evaluate scores the device sub-context. A fingerprint identifier is
// the evaluator's one required field.
func (e *DeviceBehaviorEvaluator) Evaluate(_ context.Context, rc *model.RiskContext) model.PartialAssessment {
	dev := rc.Device
	if dev == nil {
		return insufficientData(e.Dimension(), e.ID(), "no device sub-context supplied")
	}
	if dev.FingerprintID == "" {
		return insufficientData(e.Dimension(), e.ID(), "device sub-context has no fingerprint")
	}

	score := 0.05
	var factors []model.RiskFactor

	add := func(name string, weight float64, detail string) {
		score += weight
		factors = append(factors, model.RiskFactor{
			Name:        name,
			Dimension:   e.Dimension(),
			Score:       model.ClampScore(weight),
			Detail:      detail,
			EvaluatorID: e.ID(),
		})
	}

	switch {
	case !dev.Known:
		add("unknown_device", 0.35, "fingerprint never seen for this subject")
	case !dev.Trusted:
		add("unverified_device", 0.15, "device seen before but not attested")
	}

	if dev.Known && !dev.Trusted && !dev.FirstSeenAt.IsZero() &&
		rc.Timestamp.Sub(dev.FirstSeenAt) < 24*time.Hour {
		add("recently_enrolled_device", 0.1, "device first seen within 24h")
	}

	if dev.HeadlessIndicators {
		add("automation_indicators", 0.3, "user agent exhibits headless/automation markers")
	}

	if dev.TypingCadenceShift {
		add("behavioral_shift", 0.2, "typing cadence deviates from subject baseline")
	}

	if dev.SeenDeviceCount > 5 {
		add("device_churn", 0.1, fmt.Sprintf("%d distinct devices on record", dev.SeenDeviceCount))
	}

	return finish(e.Dimension(), score, factors)
}
