package adstats

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventType enumerates trackable delivery events
type EventType string

const (
	EventImpression EventType = "impression"
	EventClick      EventType = "click"
	EventRevenue    EventType = "revenue"
)

// StatSample is one placement's counters for one day. A sample with no
// placement id belongs to the overall bucket. Samples are append-only;
// deleting a placement never deletes its samples.
type StatSample struct {
	ID          uuid.UUID       `db:"id"`
	PlacementID uuid.NullUUID   `db:"placement_id"`
	Date        time.Time       `db:"date"`
	Impressions int64           `db:"impressions"`
	Clicks      int64           `db:"clicks"`
	Revenue     decimal.Decimal `db:"revenue"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

// CTR returns clicks/impressions, or 0 when there were no impressions
func (s *StatSample) CTR() float64 {
	if s.Impressions == 0 {
		return 0
	}
	return float64(s.Clicks) / float64(s.Impressions)
}
