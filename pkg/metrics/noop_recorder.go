package metrics

import "context"

// NoopRecorder discards every metric. It is used when metrics are disabled.
type NoopRecorder struct{}

// Verify that NoopRecorder implements the MetricRecorder interface.
var _ MetricRecorder = (*NoopRecorder)(nil)

// NewNoopRecorder creates a NoopRecorder.
func NewNoopRecorder() *NoopRecorder {
	return &NoopRecorder{}
}

func (r *NoopRecorder) RecordRunStart(ctx context.Context, stage string) {}

func (r *NoopRecorder) RecordRunEnd(ctx context.Context, stage string, status string, durationSeconds float64) {
}

func (r *NoopRecorder) RecordSnapshotWritten(ctx context.Context, stage string, recordCount int) {}
