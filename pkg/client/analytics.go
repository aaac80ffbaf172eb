package client

import (
	"context"
	"encoding/json"
	"fmt"
)

// DistributionDatapoint is one slice of a usage distribution.
type DistributionDatapoint struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// TimeseriesDatapoint is one day of usage counts. The wire format is a flat
// object holding the date plus dynamic name→count keys, for example
// {"date": "2024-01-15", "GMAIL__SEND_EMAIL": 5}, so it needs custom
// (un)marshalling.
type TimeseriesDatapoint struct {
	Date   string
	Counts map[string]int64
}

// UnmarshalJSON splits the flat wire object into date and counts.
func (d *TimeseriesDatapoint) UnmarshalJSON(data []byte) error {
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}

	d.Counts = make(map[string]int64, len(flat))
	for key, value := range flat {
		if key == "date" {
			if err := json.Unmarshal(value, &d.Date); err != nil {
				return fmt.Errorf("invalid date in timeseries datapoint: %w", err)
			}
			continue
		}
		var count int64
		if err := json.Unmarshal(value, &count); err != nil {
			return fmt.Errorf("invalid count for %q in timeseries datapoint: %w", key, err)
		}
		d.Counts[key] = count
	}
	return nil
}

// MarshalJSON restores the flat wire object.
func (d TimeseriesDatapoint) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(d.Counts)+1)
	flat["date"] = d.Date
	for name, count := range d.Counts {
		flat[name] = count
	}
	return json.Marshal(flat)
}

// AnalyticsService reads usage analytics.
type AnalyticsService struct {
	service
}

// AppUsageDistribution returns total usage per app.
func (s *AnalyticsService) AppUsageDistribution(ctx context.Context) ([]DistributionDatapoint, error) {
	return getSlice[DistributionDatapoint](ctx, s.client, "/analytics/app-usage-distribution")
}

// FunctionUsageDistribution returns total usage per function.
func (s *AnalyticsService) FunctionUsageDistribution(ctx context.Context) ([]DistributionDatapoint, error) {
	return getSlice[DistributionDatapoint](ctx, s.client, "/analytics/function-usage-distribution")
}

// AppUsageTimeseries returns daily usage counts per app.
func (s *AnalyticsService) AppUsageTimeseries(ctx context.Context) ([]TimeseriesDatapoint, error) {
	return getSlice[TimeseriesDatapoint](ctx, s.client, "/analytics/app-usage-timeseries")
}

// FunctionUsageTimeseries returns daily usage counts per function.
func (s *AnalyticsService) FunctionUsageTimeseries(ctx context.Context) ([]TimeseriesDatapoint, error) {
	return getSlice[TimeseriesDatapoint](ctx, s.client, "/analytics/function-usage-timeseries")
}

// getSlice fetches endpoints whose response body is a bare JSON array.
func getSlice[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	result, err := get[[]T](ctx, c, path, nil)
	if err != nil {
		return nil, err
	}
	return *result, nil
}
