package strategy

import (
	"time"

	"TrendSentinel/internal/calculator"
	"TrendSentinel/internal/config"
	"TrendSentinel/internal/model"
)

const (
	retracementShallow = 0.25
	retracementDeep    = 0.50
	swingWindow        = 60 // reference high anchoring the retracement levels
	breakoutWindow     = 20
	ma200HoldWindow    = 10
)

// DetectTriggers evaluates the three entry triggers for one stock as of the
// evaluation date. Triggers are computed regardless of regime; every event is
// tagged with whether the regime currently allows new entries, and entry
// suppression is left to the notification layer. A trigger whose lookback is
// not yet covered simply does not fire. An empty result is a normal outcome.
func DetectTriggers(stock model.PriceSeries, asOf time.Time, regime model.RegimeResult, cfg *config.Config) ([]model.TriggerEvent, error) {
	if err := stock.Validate(); err != nil {
		return nil, err
	}
	bars := stock.TrimTo(asOf)
	if len(bars) == 0 {
		return nil, nil
	}
	last := bars[len(bars)-1]
	tol := cfg.Filters.Tolerance

	var events []model.TriggerEvent

	if swingHigh, err := calculator.RollingHigh(bars, swingWindow); err == nil {
		if cfg.Triggers.Pullback25.Enabled &&
			onRetracement(last.Close, swingHigh, retracementShallow, tol) &&
			stockTrendOK(bars) {
			events = append(events, model.TriggerEvent{
				Kind:           model.TriggerPullbackA,
				ReferenceHigh:  swingHigh,
				ReferencePrice: last.Close,
			})
		}
		if cfg.Triggers.Pullback50.Enabled &&
			onRetracement(last.Close, swingHigh, retracementDeep, tol) &&
			ma200Holding(bars) {
			events = append(events, model.TriggerEvent{
				Kind:           model.TriggerPullbackB,
				ReferenceHigh:  swingHigh,
				ReferencePrice: last.Close,
			})
		}
	}

	if cfg.Triggers.Breakout20D.Enabled && len(bars) > breakoutWindow {
		prior := bars[:len(bars)-1] // breakout reference excludes the evaluation day
		priorHigh, errHigh := calculator.RollingHigh(prior, breakoutWindow)
		priorVol, errVol := calculator.AvgVolume(prior, breakoutWindow)
		if errHigh == nil && errVol == nil && priorVol > 0 {
			volRatio := last.Volume / priorVol
			if last.Close > priorHigh*(1+tol) && volRatio >= cfg.Triggers.BreakoutVolumeMult {
				events = append(events, model.TriggerEvent{
					Kind:                 model.TriggerBreakoutS,
					ReferenceHigh:        priorHigh,
					ReferencePrice:       last.Close,
					ReferenceVolumeRatio: volRatio,
				})
			}
		}
	}

	for i := range events {
		events[i].Ticker = stock.Ticker
		events[i].AsOf = last.Date
		events[i].EligibleUnderRegime = regime.AllowNewEntries
	}
	return events, nil
}

// onRetracement reports whether the close sits on the retracement level: at
// or above the target and within tolerance of it. A close below the target
// has broken the level rather than bounced off it.
func onRetracement(price, swingHigh, retracement, tol float64) bool {
	target := swingHigh * (1 - retracement)
	return price >= target && price <= target*(1+tol)
}

// stockTrendOK is the per-stock uptrend gate shared with the eligibility
// filter: MA50 above MA200 and price above MA200.
func stockTrendOK(bars []model.PricePoint) bool {
	ma50, err50 := calculator.SMA(bars, 50)
	ma200, err200 := calculator.SMA(bars, 200)
	if err50 != nil || err200 != nil {
		return false
	}
	return ma50 > ma200 && bars[len(bars)-1].Close > ma200
}

// ma200Holding reports whether the 200-day average has not declined at any
// step over the trailing ten sessions. A deep retracement entry demands this
// stronger trend persistence than the shallow one.
func ma200Holding(bars []model.PricePoint) bool {
	if len(bars) < 200+ma200HoldWindow {
		return false
	}
	prev, err := calculator.SMA(bars[:len(bars)-ma200HoldWindow], 200)
	if err != nil {
		return false
	}
	for i := len(bars) - ma200HoldWindow + 1; i <= len(bars); i++ {
		cur, err := calculator.SMA(bars[:i], 200)
		if err != nil {
			return false
		}
		if cur < prev {
			return false
		}
		prev = cur
	}
	return true
}
