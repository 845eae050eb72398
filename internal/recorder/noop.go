package recorder

import "TrendSentinel/internal/model"

// NoopRecorder discards run history. Used when no database path is
// configured.
type NoopRecorder struct{}

func (NoopRecorder) RecordRun(*model.RunReport) error { return nil }
func (NoopRecorder) Close() error                     { return nil }
