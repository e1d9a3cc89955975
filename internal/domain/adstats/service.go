package adstats

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repo is the sample store the service aggregates over
type Repo interface {
	GetRange(ctx context.Context, placementID *uuid.UUID, from, to time.Time) ([]StatSample, error)
	IncrementDaily(ctx context.Context, placementID *uuid.UUID, date time.Time, impressions, clicks int64, revenue decimal.Decimal) error
}

// DayStat is one day's aggregated counters
type DayStat struct {
	Date        string
	Impressions int64
	Clicks      int64
	Revenue     decimal.Decimal
	CTR         float64
}

// Summary is a windowed aggregate for a placement or for everything
type Summary struct {
	TotalImpressions int64
	TotalClicks      int64
	TotalRevenue     decimal.Decimal
	TotalCTR         float64
	Daily            map[string]DayStat
}

// Service computes reporting aggregates from stored samples
type Service struct {
	repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{repo: repo}
}

// OverallStats aggregates the overall bucket over the trailing window
func (s *Service) OverallStats(ctx context.Context, rangeDays int) (*Summary, error) {
	return s.statsFor(ctx, nil, rangeDays)
}

// PlacementStats aggregates one placement over the trailing window
func (s *Service) PlacementStats(ctx context.Context, placementID uuid.UUID, rangeDays int) (*Summary, error) {
	return s.statsFor(ctx, &placementID, rangeDays)
}

func (s *Service) statsFor(ctx context.Context, placementID *uuid.UUID, rangeDays int) (*Summary, error) {
	if rangeDays <= 0 {
		rangeDays = 30
	}
	to := truncateDay(time.Now().UTC())
	from := to.AddDate(0, 0, -(rangeDays - 1))

	samples, err := s.repo.GetRange(ctx, placementID, from, to)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		TotalRevenue: decimal.Zero,
		Daily:        make(map[string]DayStat, len(samples)),
	}
	for i := range samples {
		sample := &samples[i]
		day := sample.Date.Format("2006-01-02")

		ds := summary.Daily[day]
		ds.Date = day
		ds.Impressions += sample.Impressions
		ds.Clicks += sample.Clicks
		ds.Revenue = ds.Revenue.Add(sample.Revenue)
		if ds.Impressions > 0 {
			ds.CTR = float64(ds.Clicks) / float64(ds.Impressions)
		}
		summary.Daily[day] = ds

		summary.TotalImpressions += sample.Impressions
		summary.TotalClicks += sample.Clicks
		summary.TotalRevenue = summary.TotalRevenue.Add(sample.Revenue)
	}
	if summary.TotalImpressions > 0 {
		summary.TotalCTR = float64(summary.TotalClicks) / float64(summary.TotalImpressions)
	}

	return summary, nil
}

// ChartSeries flattens a summary's daily map into a date-ascending slice.
// Storage order is not trusted; the chart axis is made here.
func ChartSeries(summary *Summary) []DayStat {
	series := make([]DayStat, 0, len(summary.Daily))
	for _, ds := range summary.Daily {
		series = append(series, ds)
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Date < series[j].Date
	})
	return series
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
