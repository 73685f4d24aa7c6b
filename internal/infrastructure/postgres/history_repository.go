package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veridianid/risk-engine/internal/domain/model"
	"github.com/veridianid/risk-engine/internal/domain/port"
	"github.com/veridianid/risk-engine/internal/domain/valueobject"
)

// HistoryRepository implements port.HistoryRepository using PostgreSQL.
// Dimension scores are stored in dedicated nullable columns so trend
// aggregation stays in SQL.
type HistoryRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository creates a PostgreSQL-backed trust score store.
func NewHistoryRepository(pool *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{pool: pool}
}

// Append persists one evaluation record and its anomaly labels.
func (r *HistoryRepository) Append(ctx context.Context, record *model.TrustScoreRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	scores := record.DimensionScores()
	dimCol := func(d valueobject.Dimension) *float64 {
		if s, ok := scores[d]; ok {
			return &s
		}
		return nil
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO trust_score_records (
			id, tenant_id, subject_id, region,
			overall_score, risk_level,
			account_score, location_score, device_score,
			regional_score, behavioral_score,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		record.ID(),
		record.TenantID(),
		record.SubjectID(),
		record.Region(),
		record.OverallScore(),
		record.RiskLevel().String(),
		dimCol(valueobject.DimensionAccount),
		dimCol(valueobject.DimensionLocation),
		dimCol(valueobject.DimensionDevice),
		dimCol(valueobject.DimensionRegional),
		dimCol(valueobject.DimensionBehavioral),
		record.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("insert trust score record: %w", err)
	}

	for _, a := range record.Anomalies() {
		_, err = tx.Exec(ctx, `
			INSERT INTO trust_score_anomalies (
				record_id, tenant_id, region, anomaly_type, confidence, created_at
			) VALUES ($1, $2, $3, $4, $5, $6)
		`,
			record.ID(), record.TenantID(), record.Region(),
			a.Type, a.Confidence, record.CreatedAt(),
		)
		if err != nil {
			return fmt.Errorf("insert anomaly label: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// QuerySeries returns sparse calendar-day buckets (UTC days) for a
// subject. Days without events are not returned.
func (r *HistoryRepository) QuerySeries(ctx context.Context, q port.SeriesQuery) ([]port.TrendBucket, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -q.WindowDays)

	query := `
		SELECT
			date_trunc('day', created_at AT TIME ZONE 'UTC') AS day,
			avg(overall_score), min(overall_score), max(overall_score), count(overall_score),
			avg(account_score), min(account_score), max(account_score), count(account_score),
			avg(location_score), min(location_score), max(location_score), count(location_score),
			avg(device_score), min(device_score), max(device_score), count(device_score),
			avg(regional_score), min(regional_score), max(regional_score), count(regional_score),
			avg(behavioral_score), min(behavioral_score), max(behavioral_score), count(behavioral_score)
		FROM trust_score_records
		WHERE tenant_id = $1 AND subject_id = $2 AND created_at >= $3
			AND ($4 = '' OR region = $4)
		GROUP BY day
		ORDER BY day
	`

	rows, err := r.pool.Query(ctx, query, q.TenantID, q.SubjectID, cutoff, q.Region)
	if err != nil {
		return nil, fmt.Errorf("query trust score series: %w", err)
	}
	defer rows.Close()

	dimensionOrder := []valueobject.Dimension{
		valueobject.DimensionAccount,
		valueobject.DimensionLocation,
		valueobject.DimensionDevice,
		valueobject.DimensionRegional,
		valueobject.DimensionBehavioral,
	}

	var buckets []port.TrendBucket
	for rows.Next() {
		var (
			day     time.Time
			overall statsColumns
			dims    [5]statsColumns
		)

		if err := rows.Scan(
			&day,
			&overall.avg, &overall.min, &overall.max, &overall.count,
			&dims[0].avg, &dims[0].min, &dims[0].max, &dims[0].count,
			&dims[1].avg, &dims[1].min, &dims[1].max, &dims[1].count,
			&dims[2].avg, &dims[2].min, &dims[2].max, &dims[2].count,
			&dims[3].avg, &dims[3].min, &dims[3].max, &dims[3].count,
			&dims[4].avg, &dims[4].min, &dims[4].max, &dims[4].count,
		); err != nil {
			return nil, fmt.Errorf("scan trend bucket: %w", err)
		}

		bucket := port.TrendBucket{
			Day:        day,
			Dimensions: make(map[string]port.TrendStats),
			Overall:    overall.toStats(),
		}
		for i, dim := range dimensionOrder {
			if dims[i].count > 0 {
				bucket.Dimensions[dim.String()] = dims[i].toStats()
			}
		}
		buckets = append(buckets, bucket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trend buckets: %w", err)
	}

	return buckets, nil
}

// statsColumns scans one avg/min/max/count column group; aggregates over
// all-NULL groups come back as NULL.
type statsColumns struct {
	avg   *float64
	min   *float64
	max   *float64
	count int
}

func (c statsColumns) toStats() port.TrendStats {
	stats := port.TrendStats{Count: c.count}
	if c.avg != nil {
		stats.Avg = *c.avg
	}
	if c.min != nil {
		stats.Min = *c.min
	}
	if c.max != nil {
		stats.Max = *c.max
	}
	return stats
}

// QueryAnomalyCounts returns per-type anomaly aggregates for a tenant.
func (r *HistoryRepository) QueryAnomalyCounts(ctx context.Context, q port.AnomalyQuery) ([]port.AnomalyStat, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -q.WindowDays)

	query := `
		SELECT anomaly_type, count(*), avg(confidence), max(created_at)
		FROM trust_score_anomalies
		WHERE tenant_id = $1 AND created_at >= $2
			AND ($3 = '' OR region = $3)
		GROUP BY anomaly_type
		ORDER BY count(*) DESC, anomaly_type
	`

	rows, err := r.pool.Query(ctx, query, q.TenantID, cutoff, q.Region)
	if err != nil {
		return nil, fmt.Errorf("query anomaly counts: %w", err)
	}
	defer rows.Close()

	var stats []port.AnomalyStat
	for rows.Next() {
		var s port.AnomalyStat
		if err := rows.Scan(&s.Type, &s.Count, &s.AvgConfidence, &s.LastDetected); err != nil {
			return nil, fmt.Errorf("scan anomaly stat: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate anomaly stats: %w", err)
	}

	return stats, nil
}

// DeleteBefore removes a tenant's records created before cutoff,
// optionally restricted to one region. Anomaly labels cascade.
func (r *HistoryRepository) DeleteBefore(ctx context.Context, tenantID uuid.UUID, region string, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM trust_score_records
		WHERE tenant_id = $1 AND created_at < $2
			AND ($3 = '' OR region = $3)
	`, tenantID, cutoff, region)
	if err != nil {
		return 0, fmt.Errorf("delete trust score records: %w", err)
	}
	return tag.RowsAffected(), nil
}
