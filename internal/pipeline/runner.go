package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tigerroll/standlake/internal/domain/model"
	"github.com/tigerroll/standlake/internal/manifest"
	"github.com/tigerroll/standlake/pkg/metrics"
	"github.com/tigerroll/standlake/pkg/util/exception"
	"github.com/tigerroll/standlake/pkg/util/logger"
)

// Runner drives a single stage run: it executes the handler under a span,
// reports metrics, and records the run's outcome in the manifest. The
// recorded outcome is what lets an external scheduler distinguish a run
// worth retrying from one that completed or legitimately had no input.
type Runner struct {
	handler  Handler
	repo     manifest.Repository
	recorder metrics.MetricRecorder
	tracer   trace.Tracer
}

// NewRunner creates a Runner for the given stage handler.
func NewRunner(handler Handler, repo manifest.Repository, recorder metrics.MetricRecorder, tracer trace.Tracer) *Runner {
	return &Runner{
		handler:  handler,
		repo:     repo,
		recorder: recorder,
		tracer:   tracer,
	}
}

// Run executes the stage once and returns its result. The returned error is
// non-nil only for failures the scheduler should treat as retryable signals;
// it always accompanies a Failed result.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	stage := r.handler.Name()
	started := time.Now()

	ctx, span := r.tracer.Start(ctx, "pipeline."+stage)
	defer span.End()

	r.recorder.RecordRunStart(ctx, stage)
	logger.Infof("Stage '%s' starting.", stage)

	result, err := r.handler.Execute(ctx)
	finished := time.Now()

	if err != nil {
		if result == nil {
			result = &Result{Status: StatusFailed, Message: exception.ExtractErrorMessage(err)}
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, exception.ExtractErrorMessage(err))
		logger.Errorf("Stage '%s' failed: %v", stage, err)
	} else {
		logger.Infof("Stage '%s' finished with status %s.", stage, result.Status)
	}

	span.SetAttributes(
		attribute.String("pipeline.stage", stage),
		attribute.String("pipeline.status", string(result.Status)),
		attribute.String("pipeline.token", result.Token),
		attribute.Int("pipeline.record_count", result.RecordCount),
	)

	if result.Status == StatusCompleted {
		r.recorder.RecordSnapshotWritten(ctx, stage, result.RecordCount)
	}
	r.recorder.RecordRunEnd(ctx, stage, string(result.Status), finished.Sub(started).Seconds())

	run := &model.StageRun{
		ID:          uuid.NewString(),
		Stage:       stage,
		Status:      string(result.Status),
		ObjectKey:   result.ObjectKey,
		Token:       result.Token,
		RecordCount: result.RecordCount,
		Message:     result.Message,
		StartedAt:   started,
		FinishedAt:  finished,
	}
	if recordErr := r.repo.RecordRun(ctx, run); recordErr != nil {
		// The run outcome stands even when the bookkeeping write fails.
		logger.Warnf("Failed to record run for stage '%s': %v", stage, recordErr)
	}

	return result, err
}
