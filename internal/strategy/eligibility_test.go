package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendSentinel/internal/config"
	"TrendSentinel/internal/model"
)

func defaultFilters() config.FiltersConfig {
	return config.Default().Filters
}

func TestEvaluateEligibilityUptrendPasses(t *testing.T) {
	stock := rampSeries("AAPL", 100, 0.1, 260)

	got, err := EvaluateEligibility(stock, lastDate(stock), defaultFilters())
	require.NoError(t, err)

	assert.True(t, got.Passed)
	assert.True(t, got.TrendOK)
	assert.True(t, got.ExtensionOK)
	assert.True(t, got.DrawdownOK)
	assert.Empty(t, got.Reasons)
	assert.InDelta(t, 1.0, got.ExtensionRatio, 1e-9)
	assert.InDelta(t, 0.0, got.Drawdown20D, 1e-9)
}

func TestEvaluateEligibilityDowntrendFails(t *testing.T) {
	stock := rampSeries("TSLA", 126, -0.1, 260)

	got, err := EvaluateEligibility(stock, lastDate(stock), defaultFilters())
	require.NoError(t, err)

	assert.False(t, got.Passed)
	assert.False(t, got.TrendOK)
	assert.True(t, got.ExtensionOK)
	assert.True(t, got.DrawdownOK)
	assert.Equal(t, []string{"trend_down"}, got.Reasons)
}

func TestEvaluateEligibilityTooExtended(t *testing.T) {
	cfg := defaultFilters()
	cfg.High52wMaxMultiple = 0.7
	stock := rampSeries("NVDA", 100, 0.1, 260)

	got, err := EvaluateEligibility(stock, lastDate(stock), cfg)
	require.NoError(t, err)

	assert.False(t, got.Passed)
	assert.True(t, got.TrendOK)
	assert.False(t, got.ExtensionOK)
	assert.Equal(t, []string{"too_extended_52w"}, got.Reasons)
}

func TestEvaluateEligibilityDeepDrawdown(t *testing.T) {
	stock := rampSeries("AMD", 100, 0.1, 260)
	// intraday spike inside the trailing 20 sessions
	stock.Bars[250].High = 160

	got, err := EvaluateEligibility(stock, lastDate(stock), defaultFilters())
	require.NoError(t, err)

	assert.False(t, got.Passed)
	assert.True(t, got.TrendOK)
	assert.True(t, got.ExtensionOK)
	assert.False(t, got.DrawdownOK)
	assert.InDelta(t, (160-125.9)/160, got.Drawdown20D, 1e-9)
	assert.Equal(t, []string{"drawdown_too_large"}, got.Reasons)
}

func TestEvaluateEligibilityShortHistory(t *testing.T) {
	stock := rampSeries("IPO", 100, 0.1, 100)

	got, err := EvaluateEligibility(stock, lastDate(stock), defaultFilters())
	require.NoError(t, err)

	assert.False(t, got.Passed)
	assert.Equal(t, []string{"insufficient_history"}, got.Reasons)
}

func TestEvaluateEligibilityNoData(t *testing.T) {
	stock := rampSeries("NEW", 100, 0.1, 10)

	// evaluation date predates the listing
	got, err := EvaluateEligibility(stock, testBase.AddDate(0, 0, -30), defaultFilters())
	require.NoError(t, err)

	assert.False(t, got.Passed)
	assert.Equal(t, []string{"no_data"}, got.Reasons)
}

func TestEvaluateEligibilityMalformed(t *testing.T) {
	stock := rampSeries("BAD", 100, 0.1, 260)
	stock.Bars[10].Date = stock.Bars[9].Date

	_, err := EvaluateEligibility(stock, lastDate(stock), defaultFilters())
	assert.ErrorIs(t, err, model.ErrMalformedSeries)
}

func TestEvaluateEligibilityMultipleReasons(t *testing.T) {
	// downtrend with a recent spike so both trend and drawdown gates fail
	stock := rampSeries("XYZ", 126, -0.1, 260)
	stock.Bars[250].High = 130

	got, err := EvaluateEligibility(stock, lastDate(stock), defaultFilters())
	require.NoError(t, err)

	assert.False(t, got.Passed)
	assert.Contains(t, got.Reasons, "trend_down")
	assert.Contains(t, got.Reasons, "drawdown_too_large")
}
