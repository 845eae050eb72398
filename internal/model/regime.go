package model

import "time"

// RegimeState is a coarse label for whether broad market conditions currently
// favor new equity exposure.
type RegimeState string

const (
	RegimeRiskOff RegimeState = "RISK_OFF"
	RegimeCaution RegimeState = "CAUTION"
	RegimeNeutral RegimeState = "NEUTRAL"
	RegimeRiskOn  RegimeState = "RISK_ON"
)

// RegimeResult is the composite market-regime decision for one daily run.
// It is derived fresh from the input series every run and never persisted
// as engine state.
type RegimeResult struct {
	CompositeScore  float64
	State           RegimeState
	MaxExposure     float64
	AllowNewEntries bool

	// Sub-score breakdown, kept for reporting and run history.
	ConditionsScore  float64
	ConditionsLevel  float64
	Change1W         float64
	Change4W         float64
	ScoreChange4W    float64
	TrendScore       int
	RiskOffTriggered bool
	ConditionsAsOf   time.Time
}
