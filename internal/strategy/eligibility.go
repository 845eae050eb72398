package strategy

import (
	"time"

	"TrendSentinel/internal/calculator"
	"TrendSentinel/internal/config"
	"TrendSentinel/internal/model"
)

// Eligibility rejection reasons, tallied across the universe for reporting.
const (
	reasonNoData       = "no_data"
	reasonShortHistory = "insufficient_history"
	reasonTrendDown    = "trend_down"
	reasonTooExtended  = "too_extended_52w"
	reasonDeepDrawdown = "drawdown_too_large"
)

// EvaluateEligibility decides whether a stock currently qualifies as an
// investable uptrend candidate: in an uptrend, not already overextended
// against its 52-week high, and not in a steep 20-day drawdown. All three
// gates must pass. Missing history fails the filter rather than erroring:
// a newly listed ticker is simply not yet qualified.
func EvaluateEligibility(stock model.PriceSeries, asOf time.Time, cfg config.FiltersConfig) (model.EligibilityResult, error) {
	if err := stock.Validate(); err != nil {
		return model.EligibilityResult{}, err
	}

	res := model.EligibilityResult{Ticker: stock.Ticker}
	bars := stock.TrimTo(asOf)
	if len(bars) == 0 {
		res.Reasons = append(res.Reasons, reasonNoData)
		return res, nil
	}
	price := bars[len(bars)-1].Close

	ma50, err50 := calculator.SMA(bars, 50)
	ma200, err200 := calculator.SMA(bars, 200)
	high52w, errHigh52 := calculator.RollingHigh(bars, 252)
	high20, errHigh20 := calculator.RollingHigh(bars, 20)
	if err50 != nil || err200 != nil || errHigh52 != nil || errHigh20 != nil || high52w <= 0 || high20 <= 0 {
		res.Reasons = append(res.Reasons, reasonShortHistory)
		return res, nil
	}

	res.TrendOK = ma50 > ma200 && price > ma200
	if !res.TrendOK {
		res.Reasons = append(res.Reasons, reasonTrendDown)
	}

	res.ExtensionRatio = price / high52w
	res.ExtensionOK = res.ExtensionRatio <= cfg.High52wMaxMultiple*(1+cfg.Tolerance)
	if !res.ExtensionOK {
		res.Reasons = append(res.Reasons, reasonTooExtended)
	}

	res.Drawdown20D = (high20 - price) / high20
	res.DrawdownOK = res.Drawdown20D <= cfg.Drawdown20DMax
	if !res.DrawdownOK {
		res.Reasons = append(res.Reasons, reasonDeepDrawdown)
	}

	res.Passed = res.TrendOK && res.ExtensionOK && res.DrawdownOK
	return res, nil
}
