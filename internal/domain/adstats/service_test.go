package adstats

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	mu      sync.Mutex
	samples []StatSample
	err     error
}

func (r *fakeRepo) GetRange(_ context.Context, placementID *uuid.UUID, from, to time.Time) ([]StatSample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []StatSample
	for _, s := range r.samples {
		if placementID == nil && s.PlacementID.Valid {
			continue
		}
		if placementID != nil && (!s.PlacementID.Valid || s.PlacementID.UUID != *placementID) {
			continue
		}
		if s.Date.Before(from) || s.Date.After(to) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeRepo) IncrementDaily(_ context.Context, placementID *uuid.UUID, date time.Time, impressions, clicks int64, revenue decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	var pid uuid.NullUUID
	if placementID != nil {
		pid = uuid.NullUUID{UUID: *placementID, Valid: true}
	}
	for i := range r.samples {
		s := &r.samples[i]
		if s.PlacementID == pid && s.Date.Equal(date) {
			s.Impressions += impressions
			s.Clicks += clicks
			s.Revenue = s.Revenue.Add(revenue)
			return nil
		}
	}
	r.samples = append(r.samples, StatSample{
		ID: uuid.New(), PlacementID: pid, Date: date,
		Impressions: impressions, Clicks: clicks, Revenue: revenue,
	})
	return nil
}

func (r *fakeRepo) sampleCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples)
}

func daysAgo(n int) time.Time {
	return truncateDay(time.Now().UTC()).AddDate(0, 0, -n)
}

func overallSample(day time.Time, impressions, clicks int64, revenue string) StatSample {
	rev, _ := decimal.NewFromString(revenue)
	return StatSample{ID: uuid.New(), Date: day, Impressions: impressions, Clicks: clicks, Revenue: rev}
}

func TestService_OverallStats(t *testing.T) {
	repo := &fakeRepo{samples: []StatSample{
		overallSample(daysAgo(1), 1000, 50, "12.345"),
		overallSample(daysAgo(0), 500, 10, "3.105"),
	}}
	service := NewService(repo)

	summary, err := service.OverallStats(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, int64(1500), summary.TotalImpressions)
	assert.Equal(t, int64(60), summary.TotalClicks)
	assert.InDelta(t, 0.04, summary.TotalCTR, 1e-9)
	assert.Len(t, summary.Daily, 2)

	// revenue keeps full precision until the DTO layer
	assert.True(t, summary.TotalRevenue.Equal(decimal.RequireFromString("15.45")))
}

func TestService_CTRGuard(t *testing.T) {
	repo := &fakeRepo{samples: []StatSample{
		overallSample(daysAgo(0), 0, 0, "0"),
	}}
	service := NewService(repo)

	summary, err := service.OverallStats(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, float64(0), summary.TotalCTR, "zero impressions must not divide")
}

func TestService_EmptyRange(t *testing.T) {
	service := NewService(&fakeRepo{})

	summary, err := service.OverallStats(context.Background(), 30)
	require.NoError(t, err, "empty range is not an error")
	assert.Zero(t, summary.TotalImpressions)
	assert.Zero(t, summary.TotalClicks)
	assert.True(t, summary.TotalRevenue.IsZero())
	assert.Empty(t, summary.Daily)
	assert.Empty(t, ChartSeries(summary))
}

func TestService_PlacementStatsScoped(t *testing.T) {
	target := uuid.New()
	other := uuid.New()
	repo := &fakeRepo{samples: []StatSample{
		{ID: uuid.New(), PlacementID: uuid.NullUUID{UUID: target, Valid: true}, Date: daysAgo(1), Impressions: 100, Clicks: 5, Revenue: decimal.Zero},
		{ID: uuid.New(), PlacementID: uuid.NullUUID{UUID: other, Valid: true}, Date: daysAgo(1), Impressions: 900, Clicks: 90, Revenue: decimal.Zero},
	}}
	service := NewService(repo)

	summary, err := service.PlacementStats(context.Background(), target, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(100), summary.TotalImpressions)
	assert.Equal(t, int64(5), summary.TotalClicks)
}

func TestService_AggregationStable(t *testing.T) {
	repo := &fakeRepo{samples: []StatSample{
		overallSample(daysAgo(2), 10, 1, "1.00"),
		overallSample(daysAgo(1), 20, 2, "2.00"),
	}}
	service := NewService(repo)

	first, err := service.OverallStats(context.Background(), 7)
	require.NoError(t, err)
	second, err := service.OverallStats(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, first.TotalImpressions, second.TotalImpressions)
	assert.Equal(t, first.TotalClicks, second.TotalClicks)
	assert.True(t, first.TotalRevenue.Equal(second.TotalRevenue))
	assert.Equal(t, ChartSeries(first), ChartSeries(second))
}

func TestChartSeries_Ordering(t *testing.T) {
	// storage order deliberately scrambled
	repo := &fakeRepo{samples: []StatSample{
		overallSample(daysAgo(0), 3, 0, "0"),
		overallSample(daysAgo(5), 1, 0, "0"),
		overallSample(daysAgo(2), 2, 0, "0"),
	}}
	service := NewService(repo)

	summary, err := service.OverallStats(context.Background(), 7)
	require.NoError(t, err)

	series := ChartSeries(summary)
	require.Len(t, series, 3)
	assert.True(t, sort.SliceIsSorted(series, func(i, j int) bool {
		return series[i].Date < series[j].Date
	}), "chart series must ascend by date")
}

func TestToResponse_RevenueRounding(t *testing.T) {
	repo := &fakeRepo{samples: []StatSample{
		overallSample(daysAgo(0), 10, 1, "1.005"),
	}}
	service := NewService(repo)

	summary, err := service.OverallStats(context.Background(), 7)
	require.NoError(t, err)

	resp := ToResponse(summary)
	assert.Equal(t, "1.01", resp.TotalRevenue)
	require.Len(t, resp.Chart, 1)
	assert.Equal(t, "1.01", resp.Chart[0].Revenue)
}
