package grpc

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/veridianid/risk-engine/internal/application/dto"
	"github.com/veridianid/risk-engine/internal/application/usecase"
	"github.com/veridianid/risk-engine/pkg/auth"
)

// requireRole checks that the caller has at least one of the given roles.
func requireRole(ctx context.Context, roles ...string) error {
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		return status.Error(codes.Unauthenticated, "authentication required")
	}
	for _, role := range roles {
		if claims.HasRole(role) {
			return nil
		}
	}
	return status.Error(codes.PermissionDenied, "insufficient permissions")
}

// tenantIDFromContext extracts the tenant ID from JWT claims in the context.
func tenantIDFromContext(ctx context.Context) (uuid.UUID, error) {
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		return uuid.Nil, status.Error(codes.Unauthenticated, "authentication required")
	}
	return claims.TenantID, nil
}

// Compile-time assertion that RiskServiceHandler implements RiskServiceServer.
var _ RiskServiceServer = (*RiskServiceHandler)(nil)

// RiskServiceHandler implements the gRPC RiskServiceServer interface.
type RiskServiceHandler struct {
	UnimplementedRiskServiceServer
	evaluateRisk        *usecase.EvaluateRisk
	getTrustTrends      *usecase.GetTrustTrends
	getAnomalyFrequency *usecase.GetAnomalyFrequency
	purgeHistory        *usecase.PurgeHistory
	logger              *slog.Logger
}

// NewRiskServiceHandler creates a new gRPC handler.
func NewRiskServiceHandler(
	evaluateRisk *usecase.EvaluateRisk,
	getTrustTrends *usecase.GetTrustTrends,
	getAnomalyFrequency *usecase.GetAnomalyFrequency,
	purgeHistory *usecase.PurgeHistory,
	logger *slog.Logger,
) *RiskServiceHandler {
	return &RiskServiceHandler{
		evaluateRisk:        evaluateRisk,
		getTrustTrends:      getTrustTrends,
		getAnomalyFrequency: getAnomalyFrequency,
		purgeHistory:        purgeHistory,
		logger:              logger,
	}
}

// Proto-aligned request/response message types.

// AccountContextMsg represents the proto AccountContext message.
type AccountContextMsg struct {
	AccountAgeDays    int32  `json:"account_age_days"`
	FailedLogins24h   int32  `json:"failed_logins_24h"`
	PasswordAgeDays   int32  `json:"password_age_days"`
	MFAEnrolled       bool   `json:"mfa_enrolled"`
	DormantReactivate bool   `json:"dormant_reactivate"`
	TransactionAmount string `json:"transaction_amount"`
	Currency          string `json:"currency"`
}

// LocationSampleMsg represents the proto LocationSample message.
type LocationSampleMsg struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Country    string  `json:"country"`
	ObservedAt string  `json:"observed_at"`
}

// LocationContextMsg represents the proto LocationContext message.
type LocationContextMsg struct {
	Latitude   float64              `json:"latitude"`
	Longitude  float64              `json:"longitude"`
	IPAddress  string               `json:"ip_address"`
	Country    string               `json:"country"`
	VPN        bool                 `json:"vpn"`
	Proxy      bool                 `json:"proxy"`
	TorExit    bool                 `json:"tor_exit"`
	NearBorder bool                 `json:"near_border"`
	History    []*LocationSampleMsg `json:"history"`
}

// DeviceContextMsg represents the proto DeviceContext message.
type DeviceContextMsg struct {
	FingerprintID      string `json:"fingerprint_id"`
	UserAgent          string `json:"user_agent"`
	Known              bool   `json:"known"`
	Trusted            bool   `json:"trusted"`
	FirstSeenAt        string `json:"first_seen_at"`
	TypingCadenceShift bool   `json:"typing_cadence_shift"`
	HeadlessIndicators bool   `json:"headless_indicators"`
	SeenDeviceCount    int32  `json:"seen_device_count"`
}

// AnomalyMsg represents the proto Anomaly message.
type AnomalyMsg struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// RiskFactorMsg represents the proto RiskFactor message.
type RiskFactorMsg struct {
	Name        string  `json:"name"`
	Dimension   string  `json:"dimension"`
	Score       float64 `json:"score"`
	Detail      string  `json:"detail"`
	EvaluatorID string  `json:"evaluator_id"`
}

// EvaluateRiskRequest represents the proto EvaluateRiskRequest message.
type EvaluateRiskRequest struct {
	SubjectID string              `json:"subject_id"`
	Region    string              `json:"region"`
	Industry  string              `json:"industry"`
	Timestamp string              `json:"timestamp"`
	Account   *AccountContextMsg  `json:"account"`
	Location  *LocationContextMsg `json:"location"`
	Device    *DeviceContextMsg   `json:"device"`
	Anomalies []*AnomalyMsg       `json:"anomalies"`
}

// EvaluateRiskResponse represents the proto EvaluateRiskResponse message.
type EvaluateRiskResponse struct {
	RecordID        string             `json:"record_id"`
	SubjectID       string             `json:"subject_id"`
	Region          string             `json:"region"`
	OverallScore    float64            `json:"overall_score"`
	RiskLevel       string             `json:"risk_level"`
	DimensionScores map[string]float64 `json:"dimension_scores"`
	TopFactors      []*RiskFactorMsg   `json:"top_factors"`
	Recommendations []string           `json:"recommendations"`
	RequiredFactors []string           `json:"required_factors"`
	EvaluatedAt     string             `json:"evaluated_at"`
}

// GetTrustTrendsRequest represents the proto GetTrustTrendsRequest message.
type GetTrustTrendsRequest struct {
	SubjectID  string `json:"subject_id"`
	WindowDays int32  `json:"window_days"`
	Region     string `json:"region"`
}

// TrendStatsMsg represents the proto TrendStats message.
type TrendStatsMsg struct {
	Avg   float64 `json:"avg"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int32   `json:"count"`
}

// TrendBucketMsg represents the proto TrendBucket message.
type TrendBucketMsg struct {
	Day        string                    `json:"day"`
	Dimensions map[string]*TrendStatsMsg `json:"dimensions"`
	Overall    *TrendStatsMsg            `json:"overall"`
}

// GetTrustTrendsResponse represents the proto GetTrustTrendsResponse message.
type GetTrustTrendsResponse struct {
	Buckets []*TrendBucketMsg `json:"buckets"`
}

// GetAnomalyFrequencyRequest represents the proto GetAnomalyFrequencyRequest message.
type GetAnomalyFrequencyRequest struct {
	WindowDays int32  `json:"window_days"`
	Region     string `json:"region"`
}

// AnomalyStatMsg represents the proto AnomalyStat message.
type AnomalyStatMsg struct {
	Type          string  `json:"type"`
	Count         int32   `json:"count"`
	AvgConfidence float64 `json:"avg_confidence"`
	LastDetected  string  `json:"last_detected"`
}

// GetAnomalyFrequencyResponse represents the proto GetAnomalyFrequencyResponse message.
type GetAnomalyFrequencyResponse struct {
	Anomalies []*AnomalyStatMsg `json:"anomalies"`
}

// PurgeHistoryRequest represents the proto PurgeHistoryRequest message.
type PurgeHistoryRequest struct {
	Region string `json:"region"`
	Before string `json:"before"`
}

// PurgeHistoryResponse represents the proto PurgeHistoryResponse message.
type PurgeHistoryResponse struct {
	Deleted int64 `json:"deleted"`
}

// EvaluateRisk handles a risk evaluation request.
func (h *RiskServiceHandler) EvaluateRisk(ctx context.Context, req *EvaluateRiskRequest) (*EvaluateRiskResponse, error) {
	if err := requireRole(ctx, auth.RoleAdmin, auth.RoleOperator, auth.RoleAPIClient); err != nil {
		return nil, err
	}

	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	tenantID, err := tenantIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	subjectID, err := uuid.Parse(req.SubjectID)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid subject_id: %v", err)
	}

	timestamp := time.Now().UTC()
	if req.Timestamp != "" {
		timestamp, err = time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid timestamp: %v", err)
		}
	}

	ucReq := dto.EvaluateRiskRequest{
		SubjectID: subjectID,
		TenantID:  tenantID,
		Region:    req.Region,
		Industry:  req.Industry,
		Timestamp: timestamp,
	}

	if req.Account != nil {
		amount := decimal.Zero
		if req.Account.TransactionAmount != "" {
			amount, err = decimal.NewFromString(req.Account.TransactionAmount)
			if err != nil {
				return nil, status.Errorf(codes.InvalidArgument, "invalid transaction_amount: %v", err)
			}
		}
		ucReq.Account = &dto.AccountPayload{
			AccountAgeDays:    int(req.Account.AccountAgeDays),
			FailedLogins24h:   int(req.Account.FailedLogins24h),
			PasswordAgeDays:   int(req.Account.PasswordAgeDays),
			MFAEnrolled:       req.Account.MFAEnrolled,
			DormantReactivate: req.Account.DormantReactivate,
			TransactionAmount: amount,
			Currency:          req.Account.Currency,
		}
	}

	if req.Location != nil {
		loc := &dto.LocationPayload{
			Latitude:   req.Location.Latitude,
			Longitude:  req.Location.Longitude,
			IPAddress:  req.Location.IPAddress,
			Country:    req.Location.Country,
			VPN:        req.Location.VPN,
			Proxy:      req.Location.Proxy,
			TorExit:    req.Location.TorExit,
			NearBorder: req.Location.NearBorder,
		}
		for _, s := range req.Location.History {
			if s == nil {
				continue
			}
			observedAt, err := time.Parse(time.RFC3339, s.ObservedAt)
			if err != nil {
				return nil, status.Errorf(codes.InvalidArgument, "invalid location history observed_at: %v", err)
			}
			loc.History = append(loc.History, dto.LocationSamplePayload{
				Latitude:   s.Latitude,
				Longitude:  s.Longitude,
				Country:    s.Country,
				ObservedAt: observedAt,
			})
		}
		ucReq.Location = loc
	}

	if req.Device != nil {
		dev := &dto.DevicePayload{
			FingerprintID:      req.Device.FingerprintID,
			UserAgent:          req.Device.UserAgent,
			Known:              req.Device.Known,
			Trusted:            req.Device.Trusted,
			TypingCadenceShift: req.Device.TypingCadenceShift,
			HeadlessIndicators: req.Device.HeadlessIndicators,
			SeenDeviceCount:    int(req.Device.SeenDeviceCount),
		}
		if req.Device.FirstSeenAt != "" {
			firstSeen, err := time.Parse(time.RFC3339, req.Device.FirstSeenAt)
			if err != nil {
				return nil, status.Errorf(codes.InvalidArgument, "invalid device first_seen_at: %v", err)
			}
			dev.FirstSeenAt = firstSeen
		}
		ucReq.Device = dev
	}

	for _, a := range req.Anomalies {
		if a == nil {
			continue
		}
		ucReq.Anomalies = append(ucReq.Anomalies, dto.AnomalyPayload{
			Type:       a.Type,
			Confidence: a.Confidence,
		})
	}

	h.logger.Info("evaluating risk",
		slog.String("tenant_id", tenantID.String()),
		slog.String("subject_id", subjectID.String()),
		slog.String("region", req.Region),
	)

	result, err := h.evaluateRisk.Execute(ctx, ucReq)
	if err != nil {
		h.logger.Error("failed to evaluate risk",
			slog.String("subject_id", subjectID.String()),
			slog.String("error", err.Error()),
		)
		return nil, status.Error(codes.Internal, "internal error")
	}

	factors := make([]*RiskFactorMsg, 0, len(result.TopFactors))
	for _, f := range result.TopFactors {
		factors = append(factors, &RiskFactorMsg{
			Name:        f.Name,
			Dimension:   f.Dimension,
			Score:       f.Score,
			Detail:      f.Detail,
			EvaluatorID: f.EvaluatorID,
		})
	}

	return &EvaluateRiskResponse{
		RecordID:        result.RecordID.String(),
		SubjectID:       result.SubjectID.String(),
		Region:          result.Region,
		OverallScore:    result.OverallScore,
		RiskLevel:       result.RiskLevel,
		DimensionScores: result.DimensionScores,
		TopFactors:      factors,
		Recommendations: result.Recommendations,
		RequiredFactors: result.RequiredFactors,
		EvaluatedAt:     result.EvaluatedAt.UTC().Format(time.RFC3339),
	}, nil
}

// GetTrustTrends handles a trust score trend query.
func (h *RiskServiceHandler) GetTrustTrends(ctx context.Context, req *GetTrustTrendsRequest) (*GetTrustTrendsResponse, error) {
	if err := requireRole(ctx, auth.RoleAdmin, auth.RoleOperator, auth.RoleAuditor, auth.RoleAPIClient); err != nil {
		return nil, err
	}

	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	tenantID, err := tenantIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	subjectID, err := uuid.Parse(req.SubjectID)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid subject_id: %v", err)
	}

	result, err := h.getTrustTrends.Execute(ctx, dto.TrendsRequest{
		SubjectID:  subjectID,
		TenantID:   tenantID,
		WindowDays: int(req.WindowDays),
		Region:     req.Region,
	})
	if err != nil {
		h.logger.Error("failed to query trust trends",
			slog.String("subject_id", subjectID.String()),
			slog.String("error", err.Error()),
		)
		return nil, status.Error(codes.Internal, "internal error")
	}

	buckets := make([]*TrendBucketMsg, 0, len(result.Buckets))
	for _, b := range result.Buckets {
		dims := make(map[string]*TrendStatsMsg, len(b.Dimensions))
		for name, s := range b.Dimensions {
			dims[name] = trendStatsMsg(s)
		}
		buckets = append(buckets, &TrendBucketMsg{
			Day:        b.Day.UTC().Format(time.RFC3339),
			Dimensions: dims,
			Overall:    trendStatsMsg(b.Overall),
		})
	}

	return &GetTrustTrendsResponse{Buckets: buckets}, nil
}

func trendStatsMsg(s dto.TrendStatsPayload) *TrendStatsMsg {
	return &TrendStatsMsg{Avg: s.Avg, Min: s.Min, Max: s.Max, Count: int32(s.Count)}
}

// GetAnomalyFrequency handles an anomaly aggregation query.
func (h *RiskServiceHandler) GetAnomalyFrequency(ctx context.Context, req *GetAnomalyFrequencyRequest) (*GetAnomalyFrequencyResponse, error) {
	if err := requireRole(ctx, auth.RoleAdmin, auth.RoleOperator, auth.RoleAuditor, auth.RoleAPIClient); err != nil {
		return nil, err
	}

	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	tenantID, err := tenantIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	result, err := h.getAnomalyFrequency.Execute(ctx, dto.AnomalyFrequencyRequest{
		TenantID:   tenantID,
		WindowDays: int(req.WindowDays),
		Region:     req.Region,
	})
	if err != nil {
		h.logger.Error("failed to query anomaly frequency",
			slog.String("tenant_id", tenantID.String()),
			slog.String("error", err.Error()),
		)
		return nil, status.Error(codes.Internal, "internal error")
	}

	anomalies := make([]*AnomalyStatMsg, 0, len(result.Anomalies))
	for _, a := range result.Anomalies {
		anomalies = append(anomalies, &AnomalyStatMsg{
			Type:          a.Type,
			Count:         int32(a.Count),
			AvgConfidence: a.AvgConfidence,
			LastDetected:  a.LastDetected.UTC().Format(time.RFC3339),
		})
	}

	return &GetAnomalyFrequencyResponse{Anomalies: anomalies}, nil
}

// PurgeHistory handles a retention purge request. Admin only.
func (h *RiskServiceHandler) PurgeHistory(ctx context.Context, req *PurgeHistoryRequest) (*PurgeHistoryResponse, error) {
	if err := requireRole(ctx, auth.RoleAdmin); err != nil {
		return nil, err
	}

	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	tenantID, err := tenantIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	before, err := time.Parse(time.RFC3339, req.Before)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid before: %v", err)
	}

	deleted, err := h.purgeHistory.Execute(ctx, dto.PurgeHistoryRequest{
		TenantID: tenantID,
		Region:   req.Region,
		Before:   before,
	})
	if err != nil {
		h.logger.Error("failed to purge history",
			slog.String("tenant_id", tenantID.String()),
			slog.String("error", err.Error()),
		)
		return nil, status.Error(codes.Internal, "internal error")
	}

	return &PurgeHistoryResponse{Deleted: deleted}, nil
}
