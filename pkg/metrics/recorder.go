// Package metrics defines the recorder interface the pipeline driver reports
// stage runs through, with Prometheus and no-op implementations.
package metrics

import "context"

// MetricRecorder receives the measurable events of a stage run.
type MetricRecorder interface {
	// RecordRunStart records the start of a stage run.
	RecordRunStart(ctx context.Context, stage string)
	// RecordRunEnd records the end of a stage run with its terminal status
	// and duration in seconds.
	RecordRunEnd(ctx context.Context, stage string, status string, durationSeconds float64)
	// RecordSnapshotWritten records a snapshot written to a tier and its
	// record count.
	RecordSnapshotWritten(ctx context.Context, stage string, recordCount int)
}
