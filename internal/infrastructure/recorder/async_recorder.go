package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/veridianid/risk-engine/internal/domain/model"
	"github.com/veridianid/risk-engine/internal/domain/port"
)

const (
	// DefaultQueueSize bounds the in-flight persistence queue.
	DefaultQueueSize = 1024

	// defaultWriteTimeout bounds a single store attempt including retries.
	defaultWriteTimeout = 10 * time.Second
)

// AsyncRecorder persists trust score records off the evaluation hot
// path. Enqueue never blocks; a full queue drops the record and the
// caller decides how loudly to complain.
type AsyncRecorder struct {
	repo   port.HistoryRepository
	queue  chan *model.TrustScoreRecord
	logger *slog.Logger

	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewAsyncRecorder creates a recorder writing to repo. queueSize <= 0
// selects DefaultQueueSize.
func NewAsyncRecorder(repo port.HistoryRepository, queueSize int, logger *slog.Logger) *AsyncRecorder {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &AsyncRecorder{
		repo:   repo,
		queue:  make(chan *model.TrustScoreRecord, queueSize),
		logger: logger,
	}
}

// Start launches the persistence worker. It returns immediately.
func (r *AsyncRecorder) Start() {
	r.wg.Add(1)
	go r.run()
}

// Enqueue hands a record to the persistence worker. It reports false
// when the queue is full; evaluation results are never delayed by a
// slow store.
func (r *AsyncRecorder) Enqueue(record *model.TrustScoreRecord) bool {
	select {
	case r.queue <- record:
		return true
	default:
		return false
	}
}

// Close stops accepting records, drains the queue, and waits for the
// worker to finish.
func (r *AsyncRecorder) Close() {
	r.stopOnce.Do(func() {
		close(r.queue)
	})
	r.wg.Wait()
}

func (r *AsyncRecorder) run() {
	defer r.wg.Done()

	for record := range r.queue {
		r.persist(record)
	}
}

// persist writes one record with exponential backoff. A record that
// still fails after the write timeout is logged and dropped; history is
// advisory and must not wedge the queue.
func (r *AsyncRecorder) persist(record *model.TrustScoreRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultWriteTimeout)
	defer cancel()

	policy := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)
	err := backoff.Retry(func() error {
		return r.repo.Append(ctx, record)
	}, policy)
	if err != nil {
		r.logger.Error("dropping trust score record after retries",
			slog.String("record_id", record.ID().String()),
			slog.String("tenant_id", record.TenantID().String()),
			slog.String("error", err.Error()),
		)
		return
	}

	r.logger.Debug("trust score record persisted",
		slog.String("record_id", record.ID().String()),
		slog.Int("queue_depth", len(r.queue)),
	)
}
