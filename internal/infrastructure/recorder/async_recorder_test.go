package recorder_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridianid/risk-engine/internal/domain/model"
	"github.com/veridianid/risk-engine/internal/domain/port"
	"github.com/veridianid/risk-engine/internal/domain/valueobject"
	"github.com/veridianid/risk-engine/internal/infrastructure/recorder"
	"github.com/veridianid/risk-engine/pkg/testutil"
)

type countingRepo struct {
	mu       sync.Mutex
	appended []*model.TrustScoreRecord
	failures int
}

func (r *countingRepo) Append(_ context.Context, record *model.TrustScoreRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failures > 0 {
		r.failures--
		return fmt.Errorf("store unavailable")
	}
	r.appended = append(r.appended, record)
	return nil
}

func (r *countingRepo) QuerySeries(_ context.Context, _ port.SeriesQuery) ([]port.TrendBucket, error) {
	return nil, nil
}

func (r *countingRepo) QueryAnomalyCounts(_ context.Context, _ port.AnomalyQuery) ([]port.AnomalyStat, error) {
	return nil, nil
}

func (r *countingRepo) DeleteBefore(_ context.Context, _ uuid.UUID, _ string, _ time.Time) (int64, error) {
	return 0, nil
}

func (r *countingRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.appended)
}

func newRecord(t *testing.T) *model.TrustScoreRecord {
	t.Helper()
	record, err := model.NewTrustScoreRecord(
		testutil.TestSubjectID1, testutil.TestTenantID, "eu-west",
		model.CombinedAssessment{
			OverallScore: 0.2,
			Level:        valueobject.RiskLevelLow,
			DimensionScores: map[valueobject.Dimension]float64{
				valueobject.DimensionAccount: 0.2,
			},
		},
		nil, testutil.TestEvaluationTime,
	)
	require.NoError(t, err)
	return record
}

func TestAsyncRecorderPersistsEnqueuedRecords(t *testing.T) {
	repo := &countingRepo{}
	rec := recorder.NewAsyncRecorder(repo, 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
	rec.Start()

	for i := 0; i < 3; i++ {
		assert.True(t, rec.Enqueue(newRecord(t)))
	}
	rec.Close()

	assert.Equal(t, 3, repo.count())
}

func TestAsyncRecorderRetriesTransientFailures(t *testing.T) {
	repo := &countingRepo{failures: 1}
	rec := recorder.NewAsyncRecorder(repo, 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
	rec.Start()

	require.True(t, rec.Enqueue(newRecord(t)))
	rec.Close()

	assert.Equal(t, 1, repo.count())
}

func TestAsyncRecorderRejectsWhenQueueFull(t *testing.T) {
	// no worker running, so the queue never drains
	rec := recorder.NewAsyncRecorder(&countingRepo{}, 1, slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.True(t, rec.Enqueue(newRecord(t)))
	assert.False(t, rec.Enqueue(newRecord(t)))
}

func TestAsyncRecorderCloseIsIdempotent(t *testing.T) {
	rec := recorder.NewAsyncRecorder(&countingRepo{}, 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
	rec.Start()

	rec.Close()
	assert.NotPanics(t, rec.Close)
}
