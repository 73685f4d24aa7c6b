package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RiskContext is the immutable input bundle for one risk evaluation.
// It is created per request and never mutated; evaluators receive it
// read-only. Sub-contexts are optional; an absent sub-context scores
// as degraded data, not as an error.
type RiskContext struct {
	SubjectID uuid.UUID
	TenantID  uuid.UUID
	Region    string
	Industry  string
	Timestamp time.Time

	Account  *AccountContext
	Location *LocationContext
	Device   *DeviceContext

	// ExternalAnomalies carries anomaly labels supplied by upstream
	// detection models; the engine persists them alongside its own.
	ExternalAnomalies []Anomaly
}

// Validate checks the minimum required fields for an evaluation request.
func (c *RiskContext) Validate() error {
	if c.SubjectID == uuid.Nil {
		return fmt.Errorf("subject ID is required")
	}
	if c.TenantID == uuid.Nil {
		return fmt.Errorf("tenant ID is required")
	}
	if c.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}
	return nil
}

// AccountContext is the account-posture slice of a RiskContext.
type AccountContext struct {
	AccountAgeDays    int
	FailedLogins24h   int
	PasswordAgeDays   int
	MFAEnrolled       bool
	DormantReactivate bool

	// Most recent transaction attempted in this session, if any.
	TransactionAmount decimal.Decimal
	Currency          string
}

// LocationSample is one historical location observation for a subject.
type LocationSample struct {
	Latitude   float64
	Longitude  float64
	Country    string
	ObservedAt time.Time
}

// LocationContext is the geolocation slice of a RiskContext.
type LocationContext struct {
	Latitude  float64
	Longitude float64
	IPAddress string
	Country   string

	VPN        bool
	Proxy      bool
	TorExit    bool
	NearBorder bool

	// History holds prior observed locations, most recent last.
	// An empty history is valid and scores with higher uncertainty.
	History []LocationSample
}

// LastSeen returns the most recent historical sample, if any.
func (l *LocationContext) LastSeen() (LocationSample, bool) {
	if len(l.History) == 0 {
		return LocationSample{}, false
	}
	return l.History[len(l.History)-1], true
}

// DeviceContext is the device/behavioral slice of a RiskContext.
type DeviceContext struct {
	FingerprintID string
	UserAgent     string

	Known       bool
	Trusted     bool
	FirstSeenAt time.Time

	// Behavioral signals collected by the session layer.
	TypingCadenceShift bool
	HeadlessIndicators bool
	SeenDeviceCount    int
}
