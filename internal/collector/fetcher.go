package collector

import (
	"context"
	"time"

	"TrendSentinel/internal/model"
)

// Fetcher retrieves daily OHLCV bars from a market data provider.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.PricePoint, error)
	Name() string
}

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Bars map[string][]model.PricePoint
	Err  error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, symbol string, days int) ([]model.PricePoint, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if bars, ok := m.Bars[symbol]; ok {
		return bars, nil
	}
	return GenerateBars(100, days, time.Now()), nil
}

// GenerateBars builds a gently rising synthetic series ending at the given
// date, one bar per calendar day.
func GenerateBars(basePrice float64, count int, end time.Time) []model.PricePoint {
	bars := make([]model.PricePoint, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i)*0.001)
		bars[i] = model.PricePoint{
			Date:   end.AddDate(0, 0, -(count - 1 - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
