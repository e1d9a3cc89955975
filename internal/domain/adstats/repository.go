package adstats

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// Repository provides access to daily stat samples
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates new stats repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

const sampleColumns = `id, placement_id, date, impressions, clicks, revenue, created_at, updated_at`

// GetRange returns samples for a placement (or the overall bucket when
// placementID is nil) between from and to inclusive. No ordering is
// promised; callers sort what they need sorted.
func (r *Repository) GetRange(ctx context.Context, placementID *uuid.UUID, from, to time.Time) ([]StatSample, error) {
	var samples []StatSample
	var err error

	if placementID == nil {
		query := `SELECT ` + sampleColumns + ` FROM ad_stats
			WHERE placement_id IS NULL AND date >= $1 AND date <= $2`
		err = r.db.SelectContext(ctx, &samples, query, from, to)
	} else {
		query := `SELECT ` + sampleColumns + ` FROM ad_stats
			WHERE placement_id = $1 AND date >= $2 AND date <= $3`
		err = r.db.SelectContext(ctx, &samples, query, *placementID, from, to)
	}
	if err != nil {
		return nil, err
	}
	return samples, nil
}

// IncrementDaily adds the given deltas to the daily row for the placement
// (nil for the overall bucket), creating the row when it does not exist.
// The unique index on (placement_id, date) is NULLS NOT DISTINCT so the
// overall bucket upserts the same way per-placement rows do.
func (r *Repository) IncrementDaily(ctx context.Context, placementID *uuid.UUID, date time.Time, impressions, clicks int64, revenue decimal.Decimal) error {
	query := `
		INSERT INTO ad_stats (id, placement_id, date, impressions, clicks, revenue, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (placement_id, date) DO UPDATE SET
			impressions = ad_stats.impressions + EXCLUDED.impressions,
			clicks = ad_stats.clicks + EXCLUDED.clicks,
			revenue = ad_stats.revenue + EXCLUDED.revenue,
			updated_at = NOW()`

	var pid uuid.NullUUID
	if placementID != nil {
		pid = uuid.NullUUID{UUID: *placementID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query, uuid.New(), pid, date, impressions, clicks, revenue)
	return err
}
