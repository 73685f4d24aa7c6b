package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/veridianid/risk-engine/internal/domain/event"
	"github.com/veridianid/risk-engine/internal/domain/valueobject"
)

// Anomaly is one anomaly label attached to a trust score record.
// Detection itself is an external concern; the engine only persists
// and aggregates the labels it is handed.
type Anomaly struct {
	Type       string
	Confidence float64
}

// TrustScoreRecord is the append-only aggregate persisted after each
// completed evaluation. Records are never updated or deleted except by
// tenant-level retention purges.
type TrustScoreRecord struct {
	id              uuid.UUID
	subjectID       uuid.UUID
	tenantID        uuid.UUID
	region          string
	dimensionScores map[valueobject.Dimension]float64
	overallScore    float64
	riskLevel       valueobject.RiskLevel
	anomalies       []Anomaly
	createdAt       time.Time

	domainEvents []event.DomainEvent
}

// NewTrustScoreRecord creates a record from a completed assessment and
// emits the corresponding domain events.
func NewTrustScoreRecord(
	subjectID, tenantID uuid.UUID,
	region string,
	assessment CombinedAssessment,
	anomalies []Anomaly,
	at time.Time,
) (*TrustScoreRecord, error) {
	if subjectID == uuid.Nil {
		return nil, fmt.Errorf("subject ID is required")
	}
	if tenantID == uuid.Nil {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if assessment.Level.IsZero() {
		return nil, fmt.Errorf("assessment has no risk level")
	}

	scores := make(map[valueobject.Dimension]float64, len(assessment.DimensionScores))
	for d, s := range assessment.DimensionScores {
		scores[d] = s
	}

	r := &TrustScoreRecord{
		id:              uuid.New(),
		subjectID:       subjectID,
		tenantID:        tenantID,
		region:          region,
		dimensionScores: scores,
		overallScore:    assessment.OverallScore,
		riskLevel:       assessment.Level,
		anomalies:       append([]Anomaly(nil), anomalies...),
		createdAt:       at.UTC(),
	}

	factorNames := make([]string, 0, len(assessment.TopFactors))
	for _, f := range assessment.TopFactors {
		factorNames = append(factorNames, f.Name)
	}

	r.domainEvents = append(r.domainEvents, event.NewEvaluationCompleted(
		r.id, r.tenantID, r.subjectID, r.region,
		r.overallScore, r.riskLevel.String(), factorNames, r.createdAt,
	))

	if r.riskLevel.AtLeast(valueobject.RiskLevelCritical) {
		r.domainEvents = append(r.domainEvents, event.NewHighRiskDetected(
			r.id, r.tenantID, r.subjectID, r.region,
			r.overallScore, factorNames, r.createdAt,
		))
	}

	for _, a := range r.anomalies {
		r.domainEvents = append(r.domainEvents, event.NewAnomalyDetected(
			r.id, r.tenantID, r.subjectID, r.region,
			a.Type, a.Confidence, r.createdAt,
		))
	}

	return r, nil
}

// ReconstructTrustScoreRecord rebuilds a record from persisted data
// (no validation, no events).
func ReconstructTrustScoreRecord(
	id, subjectID, tenantID uuid.UUID,
	region string,
	dimensionScores map[valueobject.Dimension]float64,
	overallScore float64,
	riskLevel valueobject.RiskLevel,
	anomalies []Anomaly,
	createdAt time.Time,
) *TrustScoreRecord {
	return &TrustScoreRecord{
		id:              id,
		subjectID:       subjectID,
		tenantID:        tenantID,
		region:          region,
		dimensionScores: dimensionScores,
		overallScore:    overallScore,
		riskLevel:       riskLevel,
		anomalies:       anomalies,
		createdAt:       createdAt,
	}
}

// --- Accessors ---

func (r *TrustScoreRecord) ID() uuid.UUID                    { return r.id }
func (r *TrustScoreRecord) SubjectID() uuid.UUID             { return r.subjectID }
func (r *TrustScoreRecord) TenantID() uuid.UUID              { return r.tenantID }
func (r *TrustScoreRecord) Region() string                   { return r.region }
func (r *TrustScoreRecord) OverallScore() float64            { return r.overallScore }
func (r *TrustScoreRecord) RiskLevel() valueobject.RiskLevel { return r.riskLevel }
func (r *TrustScoreRecord) Anomalies() []Anomaly             { return r.anomalies }
func (r *TrustScoreRecord) CreatedAt() time.Time             { return r.createdAt }

// DimensionScores returns a copy of the per-dimension scores.
func (r *TrustScoreRecord) DimensionScores() map[valueobject.Dimension]float64 {
	scores := make(map[valueobject.Dimension]float64, len(r.dimensionScores))
	for d, s := range r.dimensionScores {
		scores[d] = s
	}
	return scores
}

// DomainEvents returns all accumulated domain events and clears them.
func (r *TrustScoreRecord) DomainEvents() []event.DomainEvent {
	evts := r.domainEvents
	r.domainEvents = nil
	return evts
}
