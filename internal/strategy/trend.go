package strategy

import (
	"time"

	"TrendSentinel/internal/calculator"
	"TrendSentinel/internal/model"
)

// Trend sub-score values for the four MA50/MA200/price alignments.
const (
	trendAlignedAbove = 30 // MA50 > MA200, price above MA50
	trendAlignedBelow = 15 // MA50 > MA200, price at or below MA50
	trendRecovering   = 5  // MA50 <= MA200, price above MA200
	trendBroken       = 0
)

// ScoreTrend converts the broad-market index series into a discrete trend
// sub-score from the MA50/MA200 alignment and where the close sits against
// them. Fails with insufficient history when MA200 is undefined for the date.
func ScoreTrend(index model.PriceSeries, asOf time.Time) (int, error) {
	if err := index.Validate(); err != nil {
		return 0, err
	}
	bars := index.TrimTo(asOf)

	ma200, err := calculator.SMA(bars, 200)
	if err != nil {
		return 0, err
	}
	ma50, err := calculator.SMA(bars, 50)
	if err != nil {
		return 0, err
	}
	price := bars[len(bars)-1].Close

	switch {
	case ma50 > ma200 && price > ma50:
		return trendAlignedAbove, nil
	case ma50 > ma200:
		return trendAlignedBelow, nil
	case price > ma200:
		return trendRecovering, nil
	default:
		return trendBroken, nil
	}
}
