package calculator

import (
	"fmt"
	"math"

	"TrendSentinel/internal/model"
)

// RollingHigh returns the highest bar high over the trailing window ending at
// the last bar. To exclude the evaluation day, pass bars[:len(bars)-1].
func RollingHigh(bars []model.PricePoint, window int) (float64, error) {
	if window <= 0 {
		return 0, fmt.Errorf("window must be positive, got %d", window)
	}
	if len(bars) < window {
		return 0, fmt.Errorf("%w: rolling high(%d) needs %d bars, have %d",
			ErrInsufficientHistory, window, window, len(bars))
	}
	high := math.Inf(-1)
	for i := len(bars) - window; i < len(bars); i++ {
		if bars[i].High > high {
			high = bars[i].High
		}
	}
	return high, nil
}

// RollingLow returns the lowest bar low over the trailing window ending at
// the last bar.
func RollingLow(bars []model.PricePoint, window int) (float64, error) {
	if window <= 0 {
		return 0, fmt.Errorf("window must be positive, got %d", window)
	}
	if len(bars) < window {
		return 0, fmt.Errorf("%w: rolling low(%d) needs %d bars, have %d",
			ErrInsufficientHistory, window, window, len(bars))
	}
	low := math.Inf(1)
	for i := len(bars) - window; i < len(bars); i++ {
		if bars[i].Low < low {
			low = bars[i].Low
		}
	}
	return low, nil
}
