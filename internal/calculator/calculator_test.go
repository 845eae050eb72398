package calculator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendSentinel/internal/model"
)

func makeBars(closes []float64) []model.PricePoint {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.PricePoint, len(closes))
	for i, c := range closes {
		bars[i] = model.PricePoint{
			Date:   base.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func TestSMA(t *testing.T) {
	bars := makeBars([]float64{1, 2, 3, 4, 5})

	got, err := SMA(bars, 3)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, got, 1e-9)

	got, err = SMA(bars, 5)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, got, 1e-9)
}

func TestSMAInsufficientHistory(t *testing.T) {
	bars := makeBars([]float64{1, 2, 3})
	_, err := SMA(bars, 4)
	assert.ErrorIs(t, err, ErrInsufficientHistory)
}

func TestSMABadWindow(t *testing.T) {
	bars := makeBars([]float64{1, 2, 3})
	_, err := SMA(bars, 0)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInsufficientHistory)
}

func TestRollingHigh(t *testing.T) {
	bars := makeBars([]float64{10, 50, 20, 30, 40})

	got, err := RollingHigh(bars, 3)
	require.NoError(t, err)
	assert.InDelta(t, 40.0, got, 1e-9)

	got, err = RollingHigh(bars, 5)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, got, 1e-9)
}

func TestRollingHighUsesBarHigh(t *testing.T) {
	bars := makeBars([]float64{10, 10, 10})
	bars[1].High = 99
	got, err := RollingHigh(bars, 3)
	require.NoError(t, err)
	assert.InDelta(t, 99.0, got, 1e-9)
}

func TestRollingLow(t *testing.T) {
	bars := makeBars([]float64{10, 5, 20, 8, 40})
	got, err := RollingLow(bars, 3)
	require.NoError(t, err)
	assert.InDelta(t, 8.0, got, 1e-9)
}

func TestRollingWindowInsufficientHistory(t *testing.T) {
	bars := makeBars([]float64{1, 2})
	_, err := RollingHigh(bars, 3)
	assert.ErrorIs(t, err, ErrInsufficientHistory)
	_, err = RollingLow(bars, 3)
	assert.ErrorIs(t, err, ErrInsufficientHistory)
}

func TestAvgVolume(t *testing.T) {
	bars := makeBars([]float64{1, 1, 1, 1})
	bars[2].Volume = 2000
	bars[3].Volume = 3000

	got, err := AvgVolume(bars, 2)
	require.NoError(t, err)
	assert.InDelta(t, 2500.0, got, 1e-9)

	_, err = AvgVolume(bars[:1], 2)
	assert.ErrorIs(t, err, ErrInsufficientHistory)
}
