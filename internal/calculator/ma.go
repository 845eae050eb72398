package calculator

import (
	"errors"
	"fmt"

	"TrendSentinel/internal/model"
)

// ErrInsufficientHistory indicates a series shorter than the requested window.
var ErrInsufficientHistory = errors.New("insufficient history")

// SMA computes the simple moving average of the closes over the trailing
// window ending at the last bar. The evaluation bar counts toward the window.
func SMA(bars []model.PricePoint, window int) (float64, error) {
	if window <= 0 {
		return 0, fmt.Errorf("window must be positive, got %d", window)
	}
	if len(bars) < window {
		return 0, fmt.Errorf("%w: sma(%d) needs %d bars, have %d",
			ErrInsufficientHistory, window, window, len(bars))
	}
	sum := 0.0
	for i := len(bars) - window; i < len(bars); i++ {
		sum += bars[i].Close
	}
	return sum / float64(window), nil
}
