package strategy

import (
	"time"

	"TrendSentinel/internal/model"
)

var testBase = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// segment is a run of identical daily closes.
type segment struct {
	close float64
	count int
}

// makeSeries builds a daily series from segments, one bar per calendar day,
// highs and lows pinned to the close.
func makeSeries(ticker string, segments ...segment) model.PriceSeries {
	var bars []model.PricePoint
	i := 0
	for _, seg := range segments {
		for n := 0; n < seg.count; n++ {
			bars = append(bars, model.PricePoint{
				Date:   testBase.AddDate(0, 0, i),
				Open:   seg.close,
				High:   seg.close,
				Low:    seg.close,
				Close:  seg.close,
				Volume: 1_000_000,
			})
			i++
		}
	}
	return model.PriceSeries{Ticker: ticker, Bars: bars}
}

// rampSeries builds a daily series whose close rises by step per bar.
func rampSeries(ticker string, start, step float64, count int) model.PriceSeries {
	bars := make([]model.PricePoint, count)
	for i := 0; i < count; i++ {
		c := start + step*float64(i)
		bars[i] = model.PricePoint{
			Date:   testBase.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1_000_000,
		}
	}
	return model.PriceSeries{Ticker: ticker, Bars: bars}
}

func lastDate(s model.PriceSeries) time.Time {
	return s.Bars[len(s.Bars)-1].Date
}

// weeklyConditions builds a conditions series ending at end, one observation
// per week, oldest value first.
func weeklyConditions(end time.Time, values ...float64) model.ConditionsSeries {
	series := make(model.ConditionsSeries, len(values))
	for i, v := range values {
		series[i] = model.ConditionsPoint{
			Date:  end.AddDate(0, 0, -7*(len(values)-1-i)),
			Value: v,
		}
	}
	return series
}
