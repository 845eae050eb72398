package strategy

import (
	"time"

	"TrendSentinel/internal/config"
	"TrendSentinel/internal/model"
)

// ClassifyRegime combines the conditions and trend sub-scores into the
// composite regime decision for the evaluation date. It fails with
// insufficient history when either input series lacks the required lookback,
// and with a malformed-series error when dates are out of order.
func ClassifyRegime(conditions model.ConditionsSeries, index model.PriceSeries, asOf time.Time, cfg config.RegimeConfig) (model.RegimeResult, error) {
	cond, err := ScoreConditions(conditions, asOf)
	if err != nil {
		return model.RegimeResult{}, err
	}
	trend, err := ScoreTrend(index, asOf)
	if err != nil {
		return model.RegimeResult{}, err
	}
	return classify(cond, trend, cfg), nil
}

// classify applies the band mapping and the risk-off override. The -30
// recenters the composite so neutral conditions plus neutral trend land near
// the middle band.
func classify(cond ConditionsScore, trend int, cfg config.RegimeConfig) model.RegimeResult {
	composite := clip(cond.Score+float64(trend)-30, 0, 100)

	state := stateForScore(composite, cfg)
	exposure := exposureFor(state, cfg)

	riskOff := cond.ScoreChange4W < cfg.RiskOffScoreDrop
	if riskOff {
		exposure *= cfg.RiskOffHaircut
		state = stateForExposure(exposure, cfg)
	}

	return model.RegimeResult{
		CompositeScore:   composite,
		State:            state,
		MaxExposure:      exposure,
		AllowNewEntries:  state != model.RegimeRiskOff,
		ConditionsScore:  cond.Score,
		ConditionsLevel:  cond.Level,
		Change1W:         cond.Change1W,
		Change4W:         cond.Change4W,
		ScoreChange4W:    cond.ScoreChange4W,
		TrendScore:       trend,
		RiskOffTriggered: riskOff,
		ConditionsAsOf:   cond.AsOf,
	}
}

// stateForScore maps a composite score to its band. Lower bounds are
// inclusive, so a score exactly on a boundary takes the more permissive band.
func stateForScore(score float64, cfg config.RegimeConfig) model.RegimeState {
	switch {
	case score >= cfg.Bands.RiskOnMin:
		return model.RegimeRiskOn
	case score >= cfg.Bands.NeutralMin:
		return model.RegimeNeutral
	case score >= cfg.Bands.CautionMin:
		return model.RegimeCaution
	default:
		return model.RegimeRiskOff
	}
}

func exposureFor(state model.RegimeState, cfg config.RegimeConfig) float64 {
	switch state {
	case model.RegimeRiskOn:
		return cfg.Exposure.RiskOn
	case model.RegimeNeutral:
		return cfg.Exposure.Neutral
	case model.RegimeCaution:
		return cfg.Exposure.Caution
	default:
		return cfg.Exposure.RiskOff
	}
}

// stateForExposure returns the most permissive state whose default exposure
// the reduced exposure still covers. A haircut that drops below the Caution
// default therefore lands on RiskOff and stops new entries.
func stateForExposure(exposure float64, cfg config.RegimeConfig) model.RegimeState {
	switch {
	case exposure >= cfg.Exposure.RiskOn:
		return model.RegimeRiskOn
	case exposure >= cfg.Exposure.Neutral:
		return model.RegimeNeutral
	case exposure >= cfg.Exposure.Caution:
		return model.RegimeCaution
	default:
		return model.RegimeRiskOff
	}
}
