package strategy

import (
	"fmt"
	"time"

	"TrendSentinel/internal/calculator"
	"TrendSentinel/internal/model"
)

// Conditions sub-score calibration. The level ramp spans the loose-to-tight
// band the index has historically occupied; the change adjustment saturates
// at +/-15 points once the momentum blend reaches 0.05 index points.
const (
	condLevelLoose   = 0.65
	condLevelSpan    = 1.3
	condAdjMaxPoints = 15.0
	condAdjSaturate  = 0.05
)

// ConditionsScore carries the conditions sub-score and the inputs it was
// derived from.
type ConditionsScore struct {
	Score         float64
	Level         float64
	Change1W      float64
	Change4W      float64
	ScoreChange4W float64
	AsOf          time.Time // week-ending date of the observation used
}

// ScoreConditions forward-fills the weekly conditions series to the
// evaluation date and maps the index level plus its 1-week and 4-week changes
// to a sub-score clamped to [0,100]. Lower (looser) levels score higher;
// tightening momentum pulls the score down, loosening pushes it up.
func ScoreConditions(series model.ConditionsSeries, asOf time.Time) (ConditionsScore, error) {
	if err := series.Validate(); err != nil {
		return ConditionsScore{}, err
	}

	now, ok := series.At(asOf)
	if !ok {
		return ConditionsScore{}, fmt.Errorf("%w: no conditions observation on or before %s",
			calculator.ErrInsufficientHistory, asOf.Format("2006-01-02"))
	}
	week, ok := series.At(asOf.AddDate(0, 0, -7))
	if !ok {
		return ConditionsScore{}, fmt.Errorf("%w: conditions series lacks 1-week lookback at %s",
			calculator.ErrInsufficientHistory, asOf.Format("2006-01-02"))
	}
	month, ok := series.At(asOf.AddDate(0, 0, -28))
	if !ok {
		return ConditionsScore{}, fmt.Errorf("%w: conditions series lacks 4-week lookback at %s",
			calculator.ErrInsufficientHistory, asOf.Format("2006-01-02"))
	}

	level := now.Value
	change1w := level - week.Value
	change4w := level - month.Value

	base := levelScore(level)
	momentum := 0.6*change1w + 0.1*change4w
	adj := -condAdjMaxPoints * clip(momentum/condAdjSaturate, -1, 1)

	return ConditionsScore{
		Score:         clip(base+adj, 0, 100),
		Level:         level,
		Change1W:      change1w,
		Change4W:      change4w,
		ScoreChange4W: base - levelScore(month.Value),
		AsOf:          now.Date,
	}, nil
}

// levelScore maps the raw index level to 0..100, monotone non-increasing.
func levelScore(level float64) float64 {
	return 100 * clip((condLevelLoose-level)/condLevelSpan, 0, 1)
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
