package valueobject_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridianid/risk-engine/internal/domain/valueobject"
)

func TestDefaultThresholds(t *testing.T) {
	th := valueobject.DefaultThresholds()

	assert.Equal(t, 0.3, th.Medium)
	assert.Equal(t, 0.6, th.High)
	assert.Equal(t, 0.8, th.Critical)
	require.NoError(t, th.Validate())
}

func TestThresholdsValidate(t *testing.T) {
	tests := []struct {
		name    string
		th      valueobject.Thresholds
		wantErr bool
	}{
		{name: "defaults are valid", th: valueobject.DefaultThresholds(), wantErr: false},
		{name: "custom contiguous bands", th: valueobject.Thresholds{Medium: 0.2, High: 0.5, Critical: 0.9}, wantErr: false},
		{name: "medium at zero", th: valueobject.Thresholds{Medium: 0, High: 0.5, Critical: 0.9}, wantErr: true},
		{name: "medium at one", th: valueobject.Thresholds{Medium: 1, High: 0.5, Critical: 0.9}, wantErr: true},
		{name: "high below medium", th: valueobject.Thresholds{Medium: 0.5, High: 0.3, Critical: 0.9}, wantErr: true},
		{name: "high equals medium", th: valueobject.Thresholds{Medium: 0.5, High: 0.5, Critical: 0.9}, wantErr: true},
		{name: "critical below high", th: valueobject.Thresholds{Medium: 0.2, High: 0.6, Critical: 0.4}, wantErr: true},
		{name: "critical at one", th: valueobject.Thresholds{Medium: 0.2, High: 0.6, Critical: 1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.th.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestThresholdsClassify(t *testing.T) {
	th := valueobject.DefaultThresholds()

	tests := []struct {
		name  string
		score float64
		want  valueobject.RiskLevel
	}{
		{name: "zero is low", score: 0, want: valueobject.RiskLevelLow},
		{name: "just below medium boundary", score: 0.29999, want: valueobject.RiskLevelLow},
		{name: "exactly medium boundary", score: 0.3, want: valueobject.RiskLevelMedium},
		{name: "mid medium band", score: 0.45, want: valueobject.RiskLevelMedium},
		{name: "just below high boundary", score: 0.59999, want: valueobject.RiskLevelMedium},
		{name: "exactly high boundary", score: 0.6, want: valueobject.RiskLevelHigh},
		{name: "just below critical boundary", score: 0.79999, want: valueobject.RiskLevelHigh},
		{name: "exactly critical boundary", score: 0.8, want: valueobject.RiskLevelCritical},
		{name: "one is critical", score: 1, want: valueobject.RiskLevelCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := th.Classify(tt.score)
			assert.True(t, got.Equal(tt.want), "Classify(%v) = %s, want %s", tt.score, got, tt.want)
		})
	}
}
