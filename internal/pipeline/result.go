package pipeline

import "context"

// Status enumerates the terminal outcomes of a stage run.
type Status string

const (
	// StatusCompleted means the stage produced its snapshot.
	StatusCompleted Status = "COMPLETED"
	// StatusNoInput means the stage found nothing to process and wrote
	// nothing. This includes the fetch stage being denied by the upstream
	// API with an expected status.
	StatusNoInput Status = "NO_INPUT"
	// StatusFailed means the stage aborted before producing its snapshot.
	StatusFailed Status = "FAILED"
)

// Result describes the outcome of one stage run. A Completed result names
// the snapshot that was written; a NoInput result carries a message saying
// why nothing was written.
type Result struct {
	Status      Status
	ObjectKey   string
	Token       string
	RecordCount int
	Message     string
}

// Handler is one pipeline stage. Execute returns a non-nil Result on any
// outcome it handled itself (including NoInput); it returns an error only
// for failures that should abort the run and surface to the scheduler.
type Handler interface {
	Name() string
	Execute(ctx context.Context) (*Result, error)
}
