package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/veridianid/risk-engine/internal/domain/model"
)

// EvaluateRiskRequest is the input DTO for the EvaluateRisk use case.
// Sub-context payloads are optional; absent slices of context score as
// degraded data.
type EvaluateRiskRequest struct {
	SubjectID uuid.UUID `json:"subject_id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Region    string    `json:"region"`
	Industry  string    `json:"industry"`
	Timestamp time.Time `json:"timestamp"`

	Account   *AccountPayload  `json:"account,omitempty"`
	Location  *LocationPayload `json:"location,omitempty"`
	Device    *DevicePayload   `json:"device,omitempty"`
	Anomalies []AnomalyPayload `json:"anomalies,omitempty"`
}

// AccountPayload carries account posture data.
type AccountPayload struct {
	AccountAgeDays    int             `json:"account_age_days"`
	FailedLogins24h   int             `json:"failed_logins_24h"`
	PasswordAgeDays   int             `json:"password_age_days"`
	MFAEnrolled       bool            `json:"mfa_enrolled"`
	DormantReactivate bool            `json:"dormant_reactivate"`
	TransactionAmount decimal.Decimal `json:"transaction_amount"`
	Currency          string          `json:"currency"`
}

// LocationSamplePayload is one historical location observation.
type LocationSamplePayload struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Country    string    `json:"country"`
	ObservedAt time.Time `json:"observed_at"`
}

// LocationPayload carries the current location and its history.
type LocationPayload struct {
	Latitude   float64                 `json:"latitude"`
	Longitude  float64                 `json:"longitude"`
	IPAddress  string                  `json:"ip_address"`
	Country    string                  `json:"country"`
	VPN        bool                    `json:"vpn"`
	Proxy      bool                    `json:"proxy"`
	TorExit    bool                    `json:"tor_exit"`
	NearBorder bool                    `json:"near_border"`
	History    []LocationSamplePayload `json:"history,omitempty"`
}

// DevicePayload carries device fingerprint and behavioral signals.
type DevicePayload struct {
	FingerprintID      string    `json:"fingerprint_id"`
	UserAgent          string    `json:"user_agent"`
	Known              bool      `json:"known"`
	Trusted            bool      `json:"trusted"`
	FirstSeenAt        time.Time `json:"first_seen_at"`
	TypingCadenceShift bool      `json:"typing_cadence_shift"`
	HeadlessIndicators bool      `json:"headless_indicators"`
	SeenDeviceCount    int       `json:"seen_device_count"`
}

// AnomalyPayload is one externally supplied anomaly label.
type AnomalyPayload struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// ToModel maps the request into the immutable domain RiskContext.
func (r EvaluateRiskRequest) ToModel() *model.RiskContext {
	rc := &model.RiskContext{
		SubjectID: r.SubjectID,
		TenantID:  r.TenantID,
		Region:    r.Region,
		Industry:  r.Industry,
		Timestamp: r.Timestamp,
	}

	if r.Account != nil {
		rc.Account = &model.AccountContext{
			AccountAgeDays:    r.Account.AccountAgeDays,
			FailedLogins24h:   r.Account.FailedLogins24h,
			PasswordAgeDays:   r.Account.PasswordAgeDays,
			MFAEnrolled:       r.Account.MFAEnrolled,
			DormantReactivate: r.Account.DormantReactivate,
			TransactionAmount: r.Account.TransactionAmount,
			Currency:          r.Account.Currency,
		}
	}

	if r.Location != nil {
		loc := &model.LocationContext{
			Latitude:   r.Location.Latitude,
			Longitude:  r.Location.Longitude,
			IPAddress:  r.Location.IPAddress,
			Country:    r.Location.Country,
			VPN:        r.Location.VPN,
			Proxy:      r.Location.Proxy,
			TorExit:    r.Location.TorExit,
			NearBorder: r.Location.NearBorder,
		}
		for _, s := range r.Location.History {
			loc.History = append(loc.History, model.LocationSample{
				Latitude:   s.Latitude,
				Longitude:  s.Longitude,
				Country:    s.Country,
				ObservedAt: s.ObservedAt,
			})
		}
		rc.Location = loc
	}

	if r.Device != nil {
		rc.Device = &model.DeviceContext{
			FingerprintID:      r.Device.FingerprintID,
			UserAgent:          r.Device.UserAgent,
			Known:              r.Device.Known,
			Trusted:            r.Device.Trusted,
			FirstSeenAt:        r.Device.FirstSeenAt,
			TypingCadenceShift: r.Device.TypingCadenceShift,
			HeadlessIndicators: r.Device.HeadlessIndicators,
			SeenDeviceCount:    r.Device.SeenDeviceCount,
		}
	}

	for _, a := range r.Anomalies {
		rc.ExternalAnomalies = append(rc.ExternalAnomalies, model.Anomaly{
			Type:       a.Type,
			Confidence: a.Confidence,
		})
	}

	return rc
}

// FactorPayload is one risk factor in a response.
type FactorPayload struct {
	Name        string  `json:"name"`
	Dimension   string  `json:"dimension"`
	Score       float64 `json:"score"`
	Detail      string  `json:"detail,omitempty"`
	EvaluatorID string  `json:"evaluator_id,omitempty"`
}

// EvaluationResponse is the outbound decision: the combined assessment
// plus the resolved required authentication factors.
type EvaluationResponse struct {
	RecordID        uuid.UUID          `json:"record_id"`
	SubjectID       uuid.UUID          `json:"subject_id"`
	TenantID        uuid.UUID          `json:"tenant_id"`
	Region          string             `json:"region"`
	OverallScore    float64            `json:"overall_score"`
	RiskLevel       string             `json:"risk_level"`
	DimensionScores map[string]float64 `json:"dimension_scores"`
	TopFactors      []FactorPayload    `json:"top_factors"`
	Recommendations []string           `json:"recommendations"`
	RequiredFactors []string           `json:"required_factors"`
	EvaluatedAt     time.Time          `json:"evaluated_at"`
}

// FromAssessment maps the combined assessment and resolved policy into
// the response DTO.
func FromAssessment(
	record *model.TrustScoreRecord,
	assessment model.CombinedAssessment,
	requiredFactors []string,
) EvaluationResponse {
	scores := make(map[string]float64, len(assessment.DimensionScores))
	for d, s := range assessment.DimensionScores {
		scores[d.String()] = s
	}

	factors := make([]FactorPayload, 0, len(assessment.TopFactors))
	for _, f := range assessment.TopFactors {
		factors = append(factors, FactorPayload{
			Name:        f.Name,
			Dimension:   f.Dimension.String(),
			Score:       f.Score,
			Detail:      f.Detail,
			EvaluatorID: f.EvaluatorID,
		})
	}

	return EvaluationResponse{
		RecordID:        record.ID(),
		SubjectID:       record.SubjectID(),
		TenantID:        record.TenantID(),
		Region:          record.Region(),
		OverallScore:    assessment.OverallScore,
		RiskLevel:       assessment.Level.String(),
		DimensionScores: scores,
		TopFactors:      factors,
		Recommendations: assessment.Recommendations,
		RequiredFactors: requiredFactors,
		EvaluatedAt:     record.CreatedAt(),
	}
}
