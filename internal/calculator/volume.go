package calculator

import (
	"fmt"

	"TrendSentinel/internal/model"
)

// AvgVolume computes the mean volume over the trailing window ending at the
// last bar.
func AvgVolume(bars []model.PricePoint, window int) (float64, error) {
	if window <= 0 {
		return 0, fmt.Errorf("window must be positive, got %d", window)
	}
	if len(bars) < window {
		return 0, fmt.Errorf("%w: avg volume(%d) needs %d bars, have %d",
			ErrInsufficientHistory, window, window, len(bars))
	}
	sum := 0.0
	for i := len(bars) - window; i < len(bars); i++ {
		sum += bars[i].Volume
	}
	return sum / float64(window), nil
}
