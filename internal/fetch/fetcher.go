package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	appconfig "github.com/tigerroll/standlake/internal/config"
	"github.com/tigerroll/standlake/internal/domain/entity"
	"github.com/tigerroll/standlake/internal/domain/model"
	"github.com/tigerroll/standlake/internal/manifest"
	"github.com/tigerroll/standlake/internal/pipeline"
	"github.com/tigerroll/standlake/pkg/storage"
	"github.com/tigerroll/standlake/pkg/util/exception"
	"github.com/tigerroll/standlake/pkg/util/logger"
)

// StageName identifies the landing stage in manifests, metrics and spans.
const StageName = "fetch"

// Fetcher is the landing stage handler. On a successful upstream response it
// flattens the standings rows and writes one landing snapshot; upstream
// denials and unexpected statuses end the run without a write and without an
// error, since retrying them is the scheduler's call on the next trigger.
type Fetcher struct {
	cfg      *appconfig.Config
	client   *Client
	resolver *storage.ConnectionResolver
	repo     manifest.Repository
	now      func() time.Time
	loc      *time.Location
}

// Verify that Fetcher implements the pipeline.Handler interface.
var _ pipeline.Handler = (*Fetcher)(nil)

// NewFetcher creates the landing stage handler. Snapshot tokens are rendered
// in the configured application timezone; an unknown timezone falls back to
// UTC with a warning.
func NewFetcher(cfg *appconfig.Config, client *Client, resolver *storage.ConnectionResolver, repo manifest.Repository) *Fetcher {
	loc, err := time.LoadLocation(cfg.Standlake.System.Timezone)
	if err != nil {
		logger.Warnf("Unknown timezone '%s'; snapshot tokens use UTC.", cfg.Standlake.System.Timezone)
		loc = time.UTC
	}
	return &Fetcher{
		cfg:      cfg,
		client:   client,
		resolver: resolver,
		repo:     repo,
		now:      time.Now,
		loc:      loc,
	}
}

// Name returns the stage name.
func (f *Fetcher) Name() string {
	return StageName
}

// Execute runs the landing stage once.
func (f *Fetcher) Execute(ctx context.Context) (*pipeline.Result, error) {
	status, body, err := f.client.Get(ctx)
	if err != nil {
		return nil, err
	}

	switch {
	case status >= 200 && status < 300:
		// Fall through to the write path.
	case status == 401 || status == 404:
		logger.Warnf("Upstream denied the standings request with status %d; nothing written.", status)
		return &pipeline.Result{
			Status:  pipeline.StatusNoInput,
			Message: fmt.Sprintf("upstream denied the request with status %d", status),
		}, nil
	default:
		logger.Errorf("Unexpected upstream status %d for standings request. Body: %s", status, string(body))
		return &pipeline.Result{
			Status:  pipeline.StatusNoInput,
			Message: fmt.Sprintf("unexpected upstream status %d", status),
		}, nil
	}

	var envelope entity.StandingsEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, exception.NewStageError(StageName, "failed to decode standings payload", err, false)
	}
	if len(envelope.Response) == 0 || len(envelope.Response[0].League.Standings) == 0 {
		return nil, exception.NewStageErrorf(StageName, "standings payload carries no standings table")
	}

	rows := envelope.Response[0].League.Standings[0]
	flattened := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		flattened = append(flattened, Flatten(row))
	}

	payload, err := json.Marshal(flattened)
	if err != nil {
		return nil, exception.NewStageError(StageName, "failed to encode landing snapshot", err, false)
	}

	pcfg := f.cfg.Standlake.Pipeline
	token := pipeline.NewToken(f.now(), f.loc)
	objectKey := pipeline.ObjectKey(pcfg.RawPrefix, pcfg.Basename, token, "json")

	conn, err := f.resolver.Resolve(ctx, pcfg.StorageRef)
	if err != nil {
		return nil, err
	}
	if err := conn.Upload(ctx, pcfg.Bucket, objectKey, bytes.NewReader(payload), "application/json"); err != nil {
		return nil, exception.NewStageError(StageName, "failed to upload landing snapshot", err, true)
	}

	snapshot := &model.Snapshot{
		ID:          uuid.NewString(),
		Stage:       StageName,
		ObjectKey:   objectKey,
		Token:       token,
		RecordCount: len(flattened),
		CreatedAt:   f.now(),
	}
	if err := f.repo.RecordSnapshot(ctx, snapshot); err != nil {
		return nil, err
	}

	logger.Infof("Landing snapshot '%s' written with %d rows.", objectKey, len(flattened))
	return &pipeline.Result{
		Status:      pipeline.StatusCompleted,
		ObjectKey:   objectKey,
		Token:       token,
		RecordCount: len(flattened),
	}, nil
}
