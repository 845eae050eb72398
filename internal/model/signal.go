package model

import (
	"sort"
	"time"
)

// TriggerKind identifies one of the three entry triggers.
type TriggerKind string

const (
	TriggerPullbackA TriggerKind = "PULLBACK_25"
	TriggerPullbackB TriggerKind = "PULLBACK_50"
	TriggerBreakoutS TriggerKind = "BREAKOUT_20D"
)

// EligibilityResult records whether a ticker currently qualifies as an
// investable uptrend candidate, with the individual gate outcomes.
type EligibilityResult struct {
	Ticker         string
	Passed         bool
	TrendOK        bool
	ExtensionOK    bool
	DrawdownOK     bool
	ExtensionRatio float64
	Drawdown20D    float64
	Reasons        []string
}

// TriggerEvent is one fired entry trigger for one ticker on one date.
type TriggerEvent struct {
	Ticker               string
	Kind                 TriggerKind
	AsOf                 time.Time
	ReferenceHigh        float64
	ReferencePrice       float64
	ReferenceVolumeRatio float64 // volume / prior 20-day average, breakouts only
	EligibleUnderRegime  bool
}

// RunReport is the combined output of one daily batch run.
type RunReport struct {
	AsOf        time.Time
	Regime      RegimeResult
	Eligibility []EligibilityResult
	Events      []TriggerEvent
	Skipped     []string
}

// EligibleTickers returns the tickers that passed the eligibility filter,
// sorted.
func (r *RunReport) EligibleTickers() []string {
	var out []string
	for _, e := range r.Eligibility {
		if e.Passed {
			out = append(out, e.Ticker)
		}
	}
	sort.Strings(out)
	return out
}

// TriggeredTickers returns the distinct tickers with at least one fired
// trigger, sorted.
func (r *RunReport) TriggeredTickers() []string {
	seen := map[string]bool{}
	for _, ev := range r.Events {
		seen[ev.Ticker] = true
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// RejectionCounts tallies eligibility rejection reasons across the universe.
func (r *RunReport) RejectionCounts() map[string]int {
	counts := map[string]int{}
	for _, e := range r.Eligibility {
		for _, reason := range e.Reasons {
			counts[reason]++
		}
	}
	return counts
}
