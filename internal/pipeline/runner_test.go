package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/tigerroll/standlake/internal/domain/model"
	"github.com/tigerroll/standlake/pkg/metrics"
)

type stubHandler struct {
	name   string
	result *Result
	err    error
}

func (h *stubHandler) Name() string { return h.name }

func (h *stubHandler) Execute(ctx context.Context) (*Result, error) {
	return h.result, h.err
}

type recordingRepository struct {
	snapshots []*model.Snapshot
	runs      []*model.StageRun
	latest    *model.Snapshot
}

func (r *recordingRepository) RecordSnapshot(ctx context.Context, snapshot *model.Snapshot) error {
	r.snapshots = append(r.snapshots, snapshot)
	return nil
}

func (r *recordingRepository) LatestSnapshot(ctx context.Context, stage string) (*model.Snapshot, error) {
	return r.latest, nil
}

func (r *recordingRepository) RecordRun(ctx context.Context, run *model.StageRun) error {
	r.runs = append(r.runs, run)
	return nil
}

func newTestRunner(handler Handler, repo *recordingRepository) *Runner {
	tracer := tracenoop.NewTracerProvider().Tracer("test")
	return NewRunner(handler, repo, metrics.NewNoopRecorder(), tracer)
}

func TestRunnerRecordsCompletedRun(t *testing.T) {
	repo := &recordingRepository{}
	handler := &stubHandler{
		name: "fetch",
		result: &Result{
			Status:      StatusCompleted,
			ObjectKey:   "raw/plstandings_202401020900.json",
			Token:       "202401020900",
			RecordCount: 20,
		},
	}

	result, err := newTestRunner(handler, repo).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, result.Status)

	require.Len(t, repo.runs, 1)
	run := repo.runs[0]
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "fetch", run.Stage)
	assert.Equal(t, "COMPLETED", run.Status)
	assert.Equal(t, "202401020900", run.Token)
	assert.Equal(t, 20, run.RecordCount)
	assert.False(t, run.FinishedAt.Before(run.StartedAt))
}

func TestRunnerRecordsFailure(t *testing.T) {
	repo := &recordingRepository{}
	handler := &stubHandler{name: "convert", err: errors.New("no landing snapshot readable")}

	result, err := newTestRunner(handler, repo).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, StatusFailed, result.Status)

	require.Len(t, repo.runs, 1)
	assert.Equal(t, "FAILED", repo.runs[0].Status)
	assert.Contains(t, repo.runs[0].Message, "no landing snapshot readable")
}

func TestRunnerRecordsNoInput(t *testing.T) {
	repo := &recordingRepository{}
	handler := &stubHandler{
		name:   "transform",
		result: &Result{Status: StatusNoInput, Message: "no columnar snapshot found"},
	}

	result, err := newTestRunner(handler, repo).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusNoInput, result.Status)

	require.Len(t, repo.runs, 1)
	assert.Equal(t, "NO_INPUT", repo.runs[0].Status)
}
