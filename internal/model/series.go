package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrMalformedSeries indicates a series whose dates are not strictly ascending.
var ErrMalformedSeries = errors.New("malformed series")

// PricePoint represents a single daily OHLCV bar.
type PricePoint struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries holds one ticker's daily bars, oldest first.
type PriceSeries struct {
	Ticker string
	Bars   []PricePoint
}

// Validate checks that bar dates are strictly ascending with no duplicates.
func (s PriceSeries) Validate() error {
	for i := 1; i < len(s.Bars); i++ {
		if !s.Bars[i].Date.After(s.Bars[i-1].Date) {
			return fmt.Errorf("%w: %s bars out of order at %s",
				ErrMalformedSeries, s.Ticker, s.Bars[i].Date.Format("2006-01-02"))
		}
	}
	return nil
}

// TrimTo returns the bars dated on or before asOf.
func (s PriceSeries) TrimTo(asOf time.Time) []PricePoint {
	bars := s.Bars
	for len(bars) > 0 && bars[len(bars)-1].Date.After(asOf) {
		bars = bars[:len(bars)-1]
	}
	return bars
}

// ConditionsPoint is one weekly observation of the financial-conditions index.
type ConditionsPoint struct {
	Date  time.Time // week-ending date
	Value float64
}

// ConditionsSeries holds weekly conditions observations, oldest first.
type ConditionsSeries []ConditionsPoint

// Validate checks that observation dates are strictly ascending.
func (s ConditionsSeries) Validate() error {
	for i := 1; i < len(s); i++ {
		if !s[i].Date.After(s[i-1].Date) {
			return fmt.Errorf("%w: conditions observations out of order at %s",
				ErrMalformedSeries, s[i].Date.Format("2006-01-02"))
		}
	}
	return nil
}

// At forward-fills the weekly series: it returns the most recent observation
// on or before the given date. ok is false when the date predates the series.
func (s ConditionsSeries) At(date time.Time) (ConditionsPoint, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if !s[i].Date.After(date) {
			return s[i], true
		}
	}
	return ConditionsPoint{}, false
}
