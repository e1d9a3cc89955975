package adstats

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Event is one tracked delivery event on its way to the daily rows
type Event struct {
	PlacementID uuid.UUID
	Type        EventType
	Amount      decimal.Decimal
	At          time.Time
}

type bucketKey struct {
	placementID uuid.UUID
	overall     bool
	day         string
}

type bucket struct {
	impressions int64
	clicks      int64
	revenue     decimal.Decimal
	date        time.Time
}

// Collector buffers incoming events and periodically flushes them as
// daily increments. Every event lands in both its placement's row and
// the overall bucket.
type Collector struct {
	repo     Repo
	events   chan Event
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewCollector(repo Repo, interval time.Duration) *Collector {
	return &Collector{
		repo:     repo,
		events:   make(chan Event, 1024),
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Track queues an event for aggregation. Never blocks the delivery path;
// when the buffer is full the event is dropped and counted in the log.
func (c *Collector) Track(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	select {
	case c.events <- ev:
	default:
		log.Warn().Str("type", string(ev.Type)).Msg("Stats buffer full, dropping event")
	}
}

// Start runs the flush loop until Stop is called
func (c *Collector) Start() {
	go c.run()
	log.Info().Dur("interval", c.interval).Msg("Stats collector started")
}

// Stop drains the buffer, flushes once more and waits for the loop to exit
func (c *Collector) Stop() {
	close(c.stopCh)
	<-c.doneCh
	log.Info().Msg("Stats collector stopped")
}

func (c *Collector) run() {
	defer close(c.doneCh)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	pending := make(map[bucketKey]*bucket)

	for {
		select {
		case ev := <-c.events:
			c.accumulate(pending, ev)
		case <-ticker.C:
			c.flush(pending)
			pending = make(map[bucketKey]*bucket)
		case <-c.stopCh:
			for {
				select {
				case ev := <-c.events:
					c.accumulate(pending, ev)
					continue
				default:
				}
				break
			}
			c.flush(pending)
			return
		}
	}
}

func (c *Collector) accumulate(pending map[bucketKey]*bucket, ev Event) {
	day := truncateDay(ev.At)
	keys := []bucketKey{
		{placementID: ev.PlacementID, day: day.Format("2006-01-02")},
		{overall: true, day: day.Format("2006-01-02")},
	}
	for _, key := range keys {
		b := pending[key]
		if b == nil {
			b = &bucket{date: day, revenue: decimal.Zero}
			pending[key] = b
		}
		switch ev.Type {
		case EventImpression:
			b.impressions++
		case EventClick:
			b.clicks++
		case EventRevenue:
			b.revenue = b.revenue.Add(ev.Amount)
		}
	}
}

func (c *Collector) flush(pending map[bucketKey]*bucket) {
	if len(pending) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for key, b := range pending {
		var pid *uuid.UUID
		if !key.overall {
			id := key.placementID
			pid = &id
		}
		if err := c.repo.IncrementDaily(ctx, pid, b.date, b.impressions, b.clicks, b.revenue); err != nil {
			log.Error().Err(err).Str("day", key.day).Msg("Failed to flush stat increments")
		}
	}
}
