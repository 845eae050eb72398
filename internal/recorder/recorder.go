package recorder

import "TrendSentinel/internal/model"

// Recorder persists run history for later review.
type Recorder interface {
	RecordRun(report *model.RunReport) error
	Close() error
}
