package adstats

// TrackEventRequest is the public event ingestion payload
type TrackEventRequest struct {
	PlacementID string  `json:"placement_id" validate:"required,uuid"`
	Type        string  `json:"type" validate:"required,event_type"`
	Amount      float64 `json:"amount" validate:"omitempty,gte=0"`
}

// DayStatResponse is one chart point
type DayStatResponse struct {
	Date        string  `json:"date"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Revenue     string  `json:"revenue"`
	CTR         float64 `json:"ctr"`
}

// SummaryResponse is the reporting payload for a window
type SummaryResponse struct {
	TotalImpressions int64             `json:"total_impressions"`
	TotalClicks      int64             `json:"total_clicks"`
	TotalRevenue     string            `json:"total_revenue"`
	TotalCTR         float64           `json:"total_ctr"`
	Chart            []DayStatResponse `json:"chart"`
}

// ToResponse converts a summary to the wire shape. Revenue is rounded to
// two decimal places here and nowhere earlier.
func ToResponse(summary *Summary) *SummaryResponse {
	series := ChartSeries(summary)
	chart := make([]DayStatResponse, 0, len(series))
	for _, ds := range series {
		chart = append(chart, DayStatResponse{
			Date:        ds.Date,
			Impressions: ds.Impressions,
			Clicks:      ds.Clicks,
			Revenue:     ds.Revenue.StringFixed(2),
			CTR:         ds.CTR,
		})
	}
	return &SummaryResponse{
		TotalImpressions: summary.TotalImpressions,
		TotalClicks:      summary.TotalClicks,
		TotalRevenue:     summary.TotalRevenue.StringFixed(2),
		TotalCTR:         summary.TotalCTR,
		Chart:            chart,
	}
}
