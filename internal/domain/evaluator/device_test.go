package evaluator_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/veridianid/risk-engine/internal/domain/evaluator"
	"github.com/veridianid/risk-engine/internal/domain/model"
	"github.com/veridianid/risk-engine/internal/domain/valueobject"
	"github.com/veridianid/risk-engine/pkg/testutil"
)

func deviceContext(dev *model.DeviceContext) *model.RiskContext {
	return &model.RiskContext{
		SubjectID: testutil.TestSubjectID1,
		TenantID:  testutil.TestTenantID,
		Region:    "eu-west",
		Timestamp: testutil.TestEvaluationTime,
		Device:    dev,
	}
}

func TestDeviceEvaluatorMissingContext(t *testing.T) {
	ev := evaluator.NewDeviceBehaviorEvaluator()

	t.Run("nil sub-context", func(t *testing.T) {
		p := ev.Evaluate(context.Background(), deviceContext(nil))
		assert.Equal(t, 0.5, p.Score)
		assert.Contains(t, factorNames(p), evaluator.FactorInsufficientData)
	})

	t.Run("empty fingerprint", func(t *testing.T) {
		p := ev.Evaluate(context.Background(), deviceContext(&model.DeviceContext{Known: true}))
		assert.Contains(t, factorNames(p), evaluator.FactorInsufficientData)
	})
}

func TestDeviceEvaluatorTrustedDevice(t *testing.T) {
	ev := evaluator.NewDeviceBehaviorEvaluator()

	p := ev.Evaluate(context.Background(), deviceContext(&model.DeviceContext{
		FingerprintID: "fp-trusted-01",
		Known:         true,
		Trusted:       true,
	}))

	assert.True(t, p.Dimension.Equal(valueobject.DimensionDevice))
	assert.InDelta(t, 0.05, p.Score, 1e-9)
	assert.Empty(t, p.Factors)
}

func TestDeviceEvaluatorRecognition(t *testing.T) {
	ev := evaluator.NewDeviceBehaviorEvaluator()

	t.Run("unknown device", func(t *testing.T) {
		p := ev.Evaluate(context.Background(), deviceContext(&model.DeviceContext{
			FingerprintID: "fp-new",
		}))
		assert.Contains(t, factorNames(p), "unknown_device")
		assert.InDelta(t, 0.4, p.Score, 1e-9)
	})

	t.Run("known but unattested", func(t *testing.T) {
		p := ev.Evaluate(context.Background(), deviceContext(&model.DeviceContext{
			FingerprintID: "fp-seen",
			Known:         true,
			FirstSeenAt:   testutil.TestEvaluationTime.AddDate(0, -1, 0),
		}))
		names := factorNames(p)
		assert.Contains(t, names, "unverified_device")
		assert.NotContains(t, names, "unknown_device")
		assert.NotContains(t, names, "recently_enrolled_device")
	})

	t.Run("enrolled within the last day", func(t *testing.T) {
		p := ev.Evaluate(context.Background(), deviceContext(&model.DeviceContext{
			FingerprintID: "fp-fresh",
			Known:         true,
			FirstSeenAt:   testutil.TestEvaluationTime.Add(-2 * time.Hour),
		}))
		names := factorNames(p)
		assert.Contains(t, names, "unverified_device")
		assert.Contains(t, names, "recently_enrolled_device")
	})
}

func TestDeviceEvaluatorBehavioralSignals(t *testing.T) {
	ev := evaluator.NewDeviceBehaviorEvaluator()

	p := ev.Evaluate(context.Background(), deviceContext(&model.DeviceContext{
		FingerprintID:      "fp-bot",
		Known:              true,
		Trusted:            true,
		HeadlessIndicators: true,
		TypingCadenceShift: true,
		SeenDeviceCount:    9,
	}))

	names := factorNames(p)
	assert.Contains(t, names, "automation_indicators")
	assert.Contains(t, names, "behavioral_shift")
	assert.Contains(t, names, "device_churn")
	// 0.05 base + 0.3 automation + 0.2 cadence + 0.1 churn
	assert.InDelta(t, 0.65, p.Score, 1e-9)
	assert.True(t, p.Level.AtLeast(valueobject.RiskLevelHigh))
}
