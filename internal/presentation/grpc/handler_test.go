package grpc

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/veridianid/risk-engine/internal/application/usecase"
	"github.com/veridianid/risk-engine/internal/domain/event"
	"github.com/veridianid/risk-engine/internal/domain/evaluator"
	"github.com/veridianid/risk-engine/internal/domain/model"
	"github.com/veridianid/risk-engine/internal/domain/policy"
	"github.com/veridianid/risk-engine/internal/domain/port"
	"github.com/veridianid/risk-engine/internal/domain/service"
	"github.com/veridianid/risk-engine/internal/domain/valueobject"
	"github.com/veridianid/risk-engine/pkg/auth"
	"github.com/veridianid/risk-engine/pkg/testutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func contextWithClaims(roles ...string) context.Context {
	return auth.ContextWithClaims(context.Background(), &auth.Claims{
		UserID:   uuid.New(),
		TenantID: testutil.TestTenantID,
		Roles:    roles,
	})
}

func requireGRPCCode(t *testing.T, err error, code codes.Code) {
	t.Helper()
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok, "expected a gRPC status error, got %v", err)
	assert.Equal(t, code, st.Code())
}

type fixedEvaluator struct {
	dim   valueobject.Dimension
	score float64
}

func (f *fixedEvaluator) ID() string                       { return "fixed/" + f.dim.String() }
func (f *fixedEvaluator) Dimension() valueobject.Dimension { return f.dim }

func (f *fixedEvaluator) Evaluate(_ context.Context, _ *model.RiskContext) model.PartialAssessment {
	return model.PartialAssessment{
		Dimension: f.dim,
		Score:     f.score,
		Level:     valueobject.DefaultThresholds().Classify(f.score),
	}
}

type nopRecorder struct{}

func (nopRecorder) Enqueue(_ *model.TrustScoreRecord) bool { return true }

type nopPublisher struct{}

func (nopPublisher) Publish(_ context.Context, _ ...event.DomainEvent) error { return nil }

type stubHistoryRepo struct {
	buckets []port.TrendBucket
	stats   []port.AnomalyStat
	deleted int64
	err     error
}

func (s *stubHistoryRepo) Append(_ context.Context, _ *model.TrustScoreRecord) error { return s.err }

func (s *stubHistoryRepo) QuerySeries(_ context.Context, _ port.SeriesQuery) ([]port.TrendBucket, error) {
	return s.buckets, s.err
}

func (s *stubHistoryRepo) QueryAnomalyCounts(_ context.Context, _ port.AnomalyQuery) ([]port.AnomalyStat, error) {
	return s.stats, s.err
}

func (s *stubHistoryRepo) DeleteBefore(_ context.Context, _ uuid.UUID, _ string, _ time.Time) (int64, error) {
	return s.deleted, s.err
}

func newTestHandler(t *testing.T, repo port.HistoryRepository) *RiskServiceHandler {
	t.Helper()

	registry := evaluator.NewRegistry()
	require.NoError(t, registry.Register("", &fixedEvaluator{dim: valueobject.DimensionAccount, score: 0.2}))

	aggregator, err := service.NewAggregator(service.DefaultAggregatorConfig())
	require.NoError(t, err)

	resolver, err := policy.NewResolver([]policy.AuthPolicy{
		{Level: valueobject.RiskLevelLow, RequiredFactors: []string{"password"}},
		{Level: valueobject.RiskLevelMedium, RequiredFactors: []string{"password", "otp"}},
		{Level: valueobject.RiskLevelHigh, RequiredFactors: []string{"password", "otp", "device_attestation"}},
		{Level: valueobject.RiskLevelCritical, RequiredFactors: []string{"password", "otp", "manual_review"}},
	})
	require.NoError(t, err)

	logger := testLogger()
	return NewRiskServiceHandler(
		usecase.NewEvaluateRisk(registry, aggregator, resolver, nopRecorder{}, nopPublisher{}, 0, logger),
		usecase.NewGetTrustTrends(repo),
		usecase.NewGetAnomalyFrequency(repo),
		usecase.NewPurgeHistory(repo, logger),
		logger,
	)
}

func TestEvaluateRiskRPC(t *testing.T) {
	handler := newTestHandler(t, &stubHistoryRepo{})

	validReq := func() *EvaluateRiskRequest {
		return &EvaluateRiskRequest{
			SubjectID: testutil.TestSubjectID1.String(),
			Region:    "eu-west",
			Timestamp: testutil.TestEvaluationTime.Format(time.RFC3339),
		}
	}

	t.Run("requires authentication", func(t *testing.T) {
		_, err := handler.EvaluateRisk(context.Background(), validReq())
		requireGRPCCode(t, err, codes.Unauthenticated)
	})

	t.Run("rejects insufficient role", func(t *testing.T) {
		_, err := handler.EvaluateRisk(contextWithClaims(auth.RoleCustomer), validReq())
		requireGRPCCode(t, err, codes.PermissionDenied)
	})

	t.Run("rejects nil request", func(t *testing.T) {
		_, err := handler.EvaluateRisk(contextWithClaims(auth.RoleOperator), nil)
		requireGRPCCode(t, err, codes.InvalidArgument)
	})

	t.Run("rejects malformed subject id", func(t *testing.T) {
		req := validReq()
		req.SubjectID = "not-a-uuid"
		_, err := handler.EvaluateRisk(contextWithClaims(auth.RoleOperator), req)
		requireGRPCCode(t, err, codes.InvalidArgument)
	})

	t.Run("rejects malformed timestamp", func(t *testing.T) {
		req := validReq()
		req.Timestamp = "yesterday"
		_, err := handler.EvaluateRisk(contextWithClaims(auth.RoleOperator), req)
		requireGRPCCode(t, err, codes.InvalidArgument)
	})

	t.Run("rejects malformed transaction amount", func(t *testing.T) {
		req := validReq()
		req.Account = &AccountContextMsg{TransactionAmount: "lots"}
		_, err := handler.EvaluateRisk(contextWithClaims(auth.RoleOperator), req)
		requireGRPCCode(t, err, codes.InvalidArgument)
	})

	t.Run("evaluates with operator role", func(t *testing.T) {
		resp, err := handler.EvaluateRisk(contextWithClaims(auth.RoleOperator), validReq())
		require.NoError(t, err)

		assert.Equal(t, testutil.TestSubjectID1.String(), resp.SubjectID)
		assert.Equal(t, "eu-west", resp.Region)
		assert.Equal(t, "LOW", resp.RiskLevel)
		assert.Equal(t, []string{"password"}, resp.RequiredFactors)
		assert.InDelta(t, 0.2, resp.OverallScore, 1e-9)
		assert.NotEmpty(t, resp.RecordID)
		assert.NotEmpty(t, resp.EvaluatedAt)
	})

	t.Run("evaluates with api_client role", func(t *testing.T) {
		_, err := handler.EvaluateRisk(contextWithClaims(auth.RoleAPIClient), validReq())
		require.NoError(t, err)
	})
}

func TestGetTrustTrendsRPC(t *testing.T) {
	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	repo := &stubHistoryRepo{
		buckets: []port.TrendBucket{{
			Day:     day,
			Overall: port.TrendStats{Avg: 0.4, Min: 0.1, Max: 0.7, Count: 5},
			Dimensions: map[string]port.TrendStats{
				"device": {Avg: 0.3, Min: 0.3, Max: 0.3, Count: 5},
			},
		}},
	}
	handler := newTestHandler(t, repo)

	t.Run("auditor may read trends", func(t *testing.T) {
		resp, err := handler.GetTrustTrends(contextWithClaims(auth.RoleAuditor), &GetTrustTrendsRequest{
			SubjectID: testutil.TestSubjectID1.String(),
		})
		require.NoError(t, err)

		require.Len(t, resp.Buckets, 1)
		assert.Equal(t, day.Format(time.RFC3339), resp.Buckets[0].Day)
		assert.Equal(t, int32(5), resp.Buckets[0].Overall.Count)
		require.Contains(t, resp.Buckets[0].Dimensions, "device")
		assert.InDelta(t, 0.3, resp.Buckets[0].Dimensions["device"].Avg, 1e-9)
	})

	t.Run("customer may not", func(t *testing.T) {
		_, err := handler.GetTrustTrends(contextWithClaims(auth.RoleCustomer), &GetTrustTrendsRequest{
			SubjectID: testutil.TestSubjectID1.String(),
		})
		requireGRPCCode(t, err, codes.PermissionDenied)
	})

	t.Run("store failure maps to internal", func(t *testing.T) {
		failing := newTestHandler(t, &stubHistoryRepo{err: fmt.Errorf("connection reset")})
		_, err := failing.GetTrustTrends(contextWithClaims(auth.RoleAuditor), &GetTrustTrendsRequest{
			SubjectID: testutil.TestSubjectID1.String(),
		})
		requireGRPCCode(t, err, codes.Internal)
	})
}

func TestGetAnomalyFrequencyRPC(t *testing.T) {
	last := time.Date(2025, 6, 12, 8, 0, 0, 0, time.UTC)
	handler := newTestHandler(t, &stubHistoryRepo{
		stats: []port.AnomalyStat{
			{Type: "impossible_travel", Count: 7, AvgConfidence: 0.88, LastDetected: last},
		},
	})

	resp, err := handler.GetAnomalyFrequency(contextWithClaims(auth.RoleAuditor), &GetAnomalyFrequencyRequest{
		WindowDays: 7,
	})
	require.NoError(t, err)

	require.Len(t, resp.Anomalies, 1)
	assert.Equal(t, "impossible_travel", resp.Anomalies[0].Type)
	assert.Equal(t, int32(7), resp.Anomalies[0].Count)
	assert.Equal(t, last.Format(time.RFC3339), resp.Anomalies[0].LastDetected)
}

func TestPurgeHistoryRPC(t *testing.T) {
	handler := newTestHandler(t, &stubHistoryRepo{deleted: 17})

	validReq := &PurgeHistoryRequest{
		Region: "eu-west",
		Before: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Format(time.RFC3339),
	}

	t.Run("admin only", func(t *testing.T) {
		_, err := handler.PurgeHistory(contextWithClaims(auth.RoleOperator), validReq)
		requireGRPCCode(t, err, codes.PermissionDenied)

		_, err = handler.PurgeHistory(contextWithClaims(auth.RoleAuditor), validReq)
		requireGRPCCode(t, err, codes.PermissionDenied)
	})

	t.Run("rejects malformed cutoff", func(t *testing.T) {
		_, err := handler.PurgeHistory(contextWithClaims(auth.RoleAdmin), &PurgeHistoryRequest{Before: "soon"})
		requireGRPCCode(t, err, codes.InvalidArgument)
	})

	t.Run("deletes and reports count", func(t *testing.T) {
		resp, err := handler.PurgeHistory(contextWithClaims(auth.RoleAdmin), validReq)
		require.NoError(t, err)
		assert.Equal(t, int64(17), resp.Deleted)
	})
}
