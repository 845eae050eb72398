package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendSentinel/internal/calculator"
	"TrendSentinel/internal/model"
)

func TestScoreTrend(t *testing.T) {
	tests := []struct {
		name  string
		index model.PriceSeries
		want  int
	}{
		{
			// MA50 above MA200 and price above MA50
			name:  "aligned above",
			index: makeSeries("QQQ", segment{100, 200}, segment{120, 59}, segment{125, 1}),
			want:  trendAlignedAbove,
		},
		{
			// MA50 above MA200 but the close dipped under MA50
			name:  "aligned below",
			index: makeSeries("QQQ", segment{100, 200}, segment{120, 59}, segment{110, 1}),
			want:  trendAlignedBelow,
		},
		{
			// MA50 under MA200, close recovered above MA200
			name:  "recovering",
			index: makeSeries("QQQ", segment{120, 200}, segment{100, 59}, segment{115, 1}),
			want:  trendRecovering,
		},
		{
			name:  "broken",
			index: makeSeries("QQQ", segment{120, 200}, segment{100, 60}),
			want:  trendBroken,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ScoreTrend(tt.index, lastDate(tt.index))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScoreTrendInsufficientHistory(t *testing.T) {
	index := makeSeries("QQQ", segment{100, 150})
	_, err := ScoreTrend(index, lastDate(index))
	assert.ErrorIs(t, err, calculator.ErrInsufficientHistory)
}

func TestScoreTrendTrimsToDate(t *testing.T) {
	// future bars past the evaluation date must not affect the score
	index := makeSeries("QQQ", segment{100, 200}, segment{120, 59}, segment{125, 1})
	cutoff := lastDate(index)
	index.Bars = append(index.Bars, model.PricePoint{
		Date: cutoff.AddDate(0, 0, 1), Close: 1, High: 1, Low: 1, Open: 1,
	})

	got, err := ScoreTrend(index, cutoff)
	require.NoError(t, err)
	assert.Equal(t, trendAlignedAbove, got)
}

func TestScoreTrendMalformed(t *testing.T) {
	index := makeSeries("QQQ", segment{100, 210})
	index.Bars[5].Date = index.Bars[4].Date
	_, err := ScoreTrend(index, lastDate(index))
	assert.ErrorIs(t, err, model.ErrMalformedSeries)
}
