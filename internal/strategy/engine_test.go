package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendSentinel/internal/config"
	"TrendSentinel/internal/model"
)

func engineConfig() *config.Config {
	cfg := config.Default()
	cfg.Symbols = []string{"AAPL", "MSFT", "BAD", "IPO"}
	return cfg
}

func TestEvaluateUniverse(t *testing.T) {
	regime := model.RegimeResult{State: model.RegimeNeutral, AllowNewEntries: true, MaxExposure: 0.5}

	eligible := rampSeries("AAPL", 100, 0.1, 260)
	breakingOut := rampSeries("MSFT", 100, 0.1, 260)
	breakingOut.Bars[259].Close = 126.6
	breakingOut.Bars[259].High = 126.6
	breakingOut.Bars[259].Volume = 1_300_000
	malformed := rampSeries("BAD", 100, 0.1, 260)
	malformed.Bars[3].Date = malformed.Bars[2].Date
	short := rampSeries("IPO", 100, 0.1, 50)

	stocks := []model.PriceSeries{short, malformed, breakingOut, eligible}
	asOf := lastDate(eligible)

	report := NewEngine(engineConfig()).EvaluateUniverse(regime, stocks, asOf)

	require.Len(t, report.Eligibility, 3)
	assert.Equal(t, []string{"AAPL", "MSFT"}, report.EligibleTickers())

	require.Len(t, report.Skipped, 1)
	assert.Contains(t, report.Skipped[0], "BAD")

	require.Len(t, report.Events, 1)
	assert.Equal(t, "MSFT", report.Events[0].Ticker)
	assert.Equal(t, model.TriggerBreakoutS, report.Events[0].Kind)
	assert.Equal(t, regime, report.Regime)
}

func TestEvaluateUniverseDeterministicOrder(t *testing.T) {
	regime := model.RegimeResult{AllowNewEntries: true}
	a := rampSeries("AAA", 100, 0.1, 260)
	b := rampSeries("BBB", 100, 0.1, 260)
	c := rampSeries("CCC", 100, 0.1, 260)
	asOf := lastDate(a)
	engine := NewEngine(engineConfig())

	first := engine.EvaluateUniverse(regime, []model.PriceSeries{c, a, b}, asOf)
	second := engine.EvaluateUniverse(regime, []model.PriceSeries{b, c, a}, asOf)

	require.Len(t, first.Eligibility, 3)
	assert.Equal(t, first.Eligibility, second.Eligibility)
	assert.Equal(t, []string{"AAA", "BBB", "CCC"}, first.EligibleTickers())
}

func TestEvaluateUniverseSkipsTriggersForIneligible(t *testing.T) {
	regime := model.RegimeResult{AllowNewEntries: true}

	// pullback shape without the uptrend qualification: eligibility rejects
	// on the 20-day drawdown, so no trigger is reported
	stock := makeSeries("XYZ", segment{60, 190}, segment{100, 61}, segment{75.2, 9})

	report := NewEngine(engineConfig()).EvaluateUniverse(regime, []model.PriceSeries{stock}, lastDate(stock))

	require.Len(t, report.Eligibility, 1)
	assert.False(t, report.Eligibility[0].Passed)
	assert.Empty(t, report.Events)
}

func TestEvaluateUniverseEmpty(t *testing.T) {
	regime := model.RegimeResult{AllowNewEntries: true}
	report := NewEngine(engineConfig()).EvaluateUniverse(regime, nil, testBase)

	assert.Empty(t, report.Eligibility)
	assert.Empty(t, report.Events)
	assert.Empty(t, report.Skipped)
}
