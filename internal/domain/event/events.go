package event

import (
	"time"

	"github.com/google/uuid"
)

const (
	// EventTypeEvaluationCompleted is emitted when a risk evaluation finishes.
	EventTypeEvaluationCompleted = "risk.evaluation.completed"

	// EventTypeHighRiskDetected is emitted when a CRITICAL risk level is reached.
	EventTypeHighRiskDetected = "risk.high_risk.detected"

	// EventTypeAnomalyDetected is emitted once per anomaly label on a record.
	EventTypeAnomalyDetected = "risk.anomaly.detected"
)

// DomainEvent is implemented by every event this service publishes.
type DomainEvent interface {
	EventType() string
	AggregateID() uuid.UUID
}

// EvaluationCompleted is published when a risk evaluation has produced a
// verdict for a subject.
type EvaluationCompleted struct {
	RecordID     uuid.UUID `json:"record_id"`
	TenantID     uuid.UUID `json:"tenant_id"`
	SubjectID    uuid.UUID `json:"subject_id"`
	Region       string    `json:"region"`
	OverallScore float64   `json:"overall_score"`
	RiskLevel    string    `json:"risk_level"`
	TopFactors   []string  `json:"top_factors"`
	EvaluatedAt  time.Time `json:"evaluated_at"`
}

// NewEvaluationCompleted builds an EvaluationCompleted event.
func NewEvaluationCompleted(
	recordID, tenantID, subjectID uuid.UUID,
	region string,
	overallScore float64,
	riskLevel string,
	topFactors []string,
	at time.Time,
) EvaluationCompleted {
	return EvaluationCompleted{
		RecordID:     recordID,
		TenantID:     tenantID,
		SubjectID:    subjectID,
		Region:       region,
		OverallScore: overallScore,
		RiskLevel:    riskLevel,
		TopFactors:   topFactors,
		EvaluatedAt:  at,
	}
}

// EventType returns the event type identifier.
func (e EvaluationCompleted) EventType() string { return EventTypeEvaluationCompleted }

// AggregateID returns the record ID as the aggregate identifier.
func (e EvaluationCompleted) AggregateID() uuid.UUID { return e.RecordID }

// HighRiskDetected is published when an evaluation reaches CRITICAL,
// triggering alerting and potential session termination downstream.
type HighRiskDetected struct {
	RecordID     uuid.UUID `json:"record_id"`
	TenantID     uuid.UUID `json:"tenant_id"`
	SubjectID    uuid.UUID `json:"subject_id"`
	Region       string    `json:"region"`
	OverallScore float64   `json:"overall_score"`
	TopFactors   []string  `json:"top_factors"`
	DetectedAt   time.Time `json:"detected_at"`
}

// NewHighRiskDetected builds a HighRiskDetected event.
func NewHighRiskDetected(
	recordID, tenantID, subjectID uuid.UUID,
	region string,
	overallScore float64,
	topFactors []string,
	at time.Time,
) HighRiskDetected {
	return HighRiskDetected{
		RecordID:     recordID,
		TenantID:     tenantID,
		SubjectID:    subjectID,
		Region:       region,
		OverallScore: overallScore,
		TopFactors:   topFactors,
		DetectedAt:   at,
	}
}

// EventType returns the event type identifier.
func (e HighRiskDetected) EventType() string { return EventTypeHighRiskDetected }

// AggregateID returns the record ID as the aggregate identifier.
func (e HighRiskDetected) AggregateID() uuid.UUID { return e.RecordID }

// AnomalyDetected is published for each anomaly label recorded with an
// evaluation.
type AnomalyDetected struct {
	RecordID    uuid.UUID `json:"record_id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	SubjectID   uuid.UUID `json:"subject_id"`
	Region      string    `json:"region"`
	AnomalyType string    `json:"anomaly_type"`
	Confidence  float64   `json:"confidence"`
	DetectedAt  time.Time `json:"detected_at"`
}

// NewAnomalyDetected builds an AnomalyDetected event.
func NewAnomalyDetected(
	recordID, tenantID, subjectID uuid.UUID,
	region string,
	anomalyType string,
	confidence float64,
	at time.Time,
) AnomalyDetected {
	return AnomalyDetected{
		RecordID:    recordID,
		TenantID:    tenantID,
		SubjectID:   subjectID,
		Region:      region,
		AnomalyType: anomalyType,
		Confidence:  confidence,
		DetectedAt:  at,
	}
}

// EventType returns the event type identifier.
func (e AnomalyDetected) EventType() string { return EventTypeAnomalyDetected }

// AggregateID returns the record ID as the aggregate identifier.
func (e AnomalyDetected) AggregateID() uuid.UUID { return e.RecordID }
