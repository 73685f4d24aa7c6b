package model_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridianid/risk-engine/internal/domain/event"
	"github.com/veridianid/risk-engine/internal/domain/model"
	"github.com/veridianid/risk-engine/internal/domain/valueobject"
	"github.com/veridianid/risk-engine/pkg/testutil"
)

func mediumAssessment() model.CombinedAssessment {
	return model.CombinedAssessment{
		OverallScore: 0.45,
		Level:        valueobject.RiskLevelMedium,
		DimensionScores: map[valueobject.Dimension]float64{
			valueobject.DimensionAccount:  0.4,
			valueobject.DimensionLocation: 0.5,
		},
		TopFactors: []model.RiskFactor{
			{Name: "vpn_detected", Dimension: valueobject.DimensionLocation, Score: 0.6},
		},
	}
}

func TestNewTrustScoreRecord(t *testing.T) {
	record, err := model.NewTrustScoreRecord(
		testutil.TestSubjectID1, testutil.TestTenantID, "eu-west",
		mediumAssessment(), nil, testutil.TestEvaluationTime,
	)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, record.ID())
	assert.Equal(t, testutil.TestSubjectID1, record.SubjectID())
	assert.Equal(t, testutil.TestTenantID, record.TenantID())
	assert.Equal(t, "eu-west", record.Region())
	assert.Equal(t, 0.45, record.OverallScore())
	assert.True(t, record.RiskLevel().Equal(valueobject.RiskLevelMedium))
	assert.Equal(t, testutil.TestEvaluationTime, record.CreatedAt())
	assert.Len(t, record.DimensionScores(), 2)
}

func TestNewTrustScoreRecordValidation(t *testing.T) {
	_, err := model.NewTrustScoreRecord(
		uuid.Nil, testutil.TestTenantID, "eu-west",
		mediumAssessment(), nil, testutil.TestEvaluationTime,
	)
	assert.Error(t, err)

	_, err = model.NewTrustScoreRecord(
		testutil.TestSubjectID1, uuid.Nil, "eu-west",
		mediumAssessment(), nil, testutil.TestEvaluationTime,
	)
	assert.Error(t, err)

	_, err = model.NewTrustScoreRecord(
		testutil.TestSubjectID1, testutil.TestTenantID, "eu-west",
		model.CombinedAssessment{OverallScore: 0.4}, nil, testutil.TestEvaluationTime,
	)
	assert.Error(t, err, "assessment without a level must be rejected")
}

func TestNewTrustScoreRecordEmitsEvaluationCompleted(t *testing.T) {
	record, err := model.NewTrustScoreRecord(
		testutil.TestSubjectID1, testutil.TestTenantID, "eu-west",
		mediumAssessment(), nil, testutil.TestEvaluationTime,
	)
	require.NoError(t, err)

	events := record.DomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, event.EventTypeEvaluationCompleted, events[0].EventType())
	assert.Equal(t, record.ID(), events[0].AggregateID())

	// Events drain on read.
	assert.Empty(t, record.DomainEvents())
}

func TestNewTrustScoreRecordCriticalEmitsHighRisk(t *testing.T) {
	assessment := mediumAssessment()
	assessment.OverallScore = 0.85
	assessment.Level = valueobject.RiskLevelCritical

	record, err := model.NewTrustScoreRecord(
		testutil.TestSubjectID1, testutil.TestTenantID, "eu-west",
		assessment, nil, testutil.TestEvaluationTime,
	)
	require.NoError(t, err)

	events := record.DomainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, event.EventTypeEvaluationCompleted, events[0].EventType())
	assert.Equal(t, event.EventTypeHighRiskDetected, events[1].EventType())
}

func TestNewTrustScoreRecordEmitsAnomalyEvents(t *testing.T) {
	anomalies := []model.Anomaly{
		{Type: "impossible_travel", Confidence: 0.95},
		{Type: "tor_exit_node", Confidence: 0.9},
	}

	record, err := model.NewTrustScoreRecord(
		testutil.TestSubjectID1, testutil.TestTenantID, "eu-west",
		mediumAssessment(), anomalies, testutil.TestEvaluationTime,
	)
	require.NoError(t, err)

	assert.Len(t, record.Anomalies(), 2)

	events := record.DomainEvents()
	require.Len(t, events, 3)
	assert.Equal(t, event.EventTypeAnomalyDetected, events[1].EventType())
	assert.Equal(t, event.EventTypeAnomalyDetected, events[2].EventType())
}

func TestReconstructTrustScoreRecordEmitsNoEvents(t *testing.T) {
	record := model.ReconstructTrustScoreRecord(
		testutil.TestRecordID, testutil.TestSubjectID1, testutil.TestTenantID, "eu-west",
		map[valueobject.Dimension]float64{valueobject.DimensionAccount: 0.3},
		0.3, valueobject.RiskLevelMedium, nil, testutil.TestEvaluationTime,
	)

	assert.Equal(t, testutil.TestRecordID, record.ID())
	assert.Empty(t, record.DomainEvents())
}
