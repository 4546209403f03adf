// Package transform implements the final stage: it selects the latest
// columnar snapshot, derives the form points column and publishes the
// projected analytical snapshot.
package transform

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"

	appconfig "github.com/tigerroll/standlake/internal/config"
	"github.com/tigerroll/standlake/internal/convert"
	"github.com/tigerroll/standlake/internal/domain/model"
	"github.com/tigerroll/standlake/internal/manifest"
	"github.com/tigerroll/standlake/internal/pipeline"
	"github.com/tigerroll/standlake/pkg/storage"
	"github.com/tigerroll/standlake/pkg/util/exception"
	"github.com/tigerroll/standlake/pkg/util/logger"
)

// StageName identifies the final stage in manifests, metrics and spans.
const StageName = "transform"

// Transformer is the final stage handler.
type Transformer struct {
	cfg      *appconfig.Config
	resolver *storage.ConnectionResolver
	repo     manifest.Repository
	now      func() time.Time
}

// Verify that Transformer implements the pipeline.Handler interface.
var _ pipeline.Handler = (*Transformer)(nil)

// NewTransformer creates the final stage handler.
func NewTransformer(cfg *appconfig.Config, resolver *storage.ConnectionResolver, repo manifest.Repository) *Transformer {
	return &Transformer{
		cfg:      cfg,
		resolver: resolver,
		repo:     repo,
		now:      time.Now,
	}
}

// Name returns the stage name.
func (t *Transformer) Name() string {
	return StageName
}

// Execute runs the final stage once.
func (t *Transformer) Execute(ctx context.Context) (*pipeline.Result, error) {
	pcfg := t.cfg.Standlake.Pipeline

	conn, err := t.resolver.Resolve(ctx, pcfg.StorageRef)
	if err != nil {
		return nil, err
	}

	token, objectKey, found, err := pipeline.LatestInput(ctx, t.repo, conn, convert.StageName, pcfg.Bucket, pcfg.ColumnarPrefix, "parquet")
	if err != nil {
		return nil, err
	}
	if !found {
		logger.Infof("No columnar snapshot found under '%s/'; nothing to transform.", pcfg.ColumnarPrefix)
		return &pipeline.Result{
			Status:  pipeline.StatusNoInput,
			Message: "no columnar snapshot found",
		}, nil
	}

	standings, err := readColumnar(ctx, conn, pcfg.Bucket, objectKey)
	if err != nil {
		return nil, err
	}

	finals := make([]model.FinalStanding, 0, len(standings))
	for _, standing := range standings {
		final, err := standing.ToFinal()
		if err != nil {
			return nil, exception.NewStageError(StageName, "failed to derive form points", err, false)
		}
		finals = append(finals, final)
	}

	buf, err := writeFinalParquet(finals, pcfg.Compression)
	if err != nil {
		return nil, err
	}

	finalKey := pipeline.ObjectKey(pcfg.FinalPrefix, pcfg.FinalBasename, token, "parquet")
	if err := conn.Upload(ctx, pcfg.Bucket, finalKey, buf, "application/octet-stream"); err != nil {
		return nil, exception.NewStageError(StageName, "failed to upload final snapshot", err, true)
	}

	snapshot := &model.Snapshot{
		ID:          uuid.NewString(),
		Stage:       StageName,
		ObjectKey:   finalKey,
		Token:       token,
		RecordCount: len(finals),
		CreatedAt:   t.now(),
	}
	if err := t.repo.RecordSnapshot(ctx, snapshot); err != nil {
		return nil, err
	}

	logger.Infof("Final snapshot '%s' written with %d rows (from '%s').", finalKey, len(finals), objectKey)
	return &pipeline.Result{
		Status:      pipeline.StatusCompleted,
		ObjectKey:   finalKey,
		Token:       token,
		RecordCount: len(finals),
	}, nil
}

// readColumnar downloads and decodes one columnar snapshot.
func readColumnar(ctx context.Context, conn storage.StorageConnection, bucket, objectKey string) ([]model.Standing, error) {
	rc, err := conn.Download(ctx, bucket, objectKey)
	if err != nil {
		return nil, exception.NewStageError(StageName, "failed to download columnar snapshot", err, true)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, exception.NewStageError(StageName, "failed to read columnar snapshot", err, true)
	}

	bufFile, err := buffer.NewBufferFile(data)
	if err != nil {
		return nil, exception.NewStageError(StageName, "failed to buffer columnar snapshot", err, false)
	}
	pr, err := reader.NewParquetReader(bufFile, new(model.Standing), 1)
	if err != nil {
		return nil, exception.NewStageError(StageName, "failed to open columnar snapshot", err, false)
	}
	defer pr.ReadStop()

	standings := make([]model.Standing, pr.GetNumRows())
	if err := pr.Read(&standings); err != nil {
		return nil, exception.NewStageError(StageName, "failed to decode columnar snapshot", err, false)
	}
	return standings, nil
}

// writeFinalParquet renders the projected rows as one in-memory Parquet file
// with a single row group.
func writeFinalParquet(finals []model.FinalStanding, compression string) (*bytes.Buffer, error) {
	codec, err := pipeline.CompressionCodec(compression)
	if err != nil {
		return nil, exception.NewStageError(StageName, "invalid compression type", err, false)
	}

	buf := new(bytes.Buffer)
	pw, err := writer.NewParquetWriterFromWriter(buf, new(model.FinalStanding), int64(len(finals)))
	if err != nil {
		return nil, exception.NewStageError(StageName, "failed to create Parquet writer", err, false)
	}
	pw.CompressionType = codec

	for _, final := range finals {
		if err := pw.Write(final); err != nil {
			return nil, exception.NewStageError(StageName, "failed to write final row to Parquet", err, false)
		}
	}
	if err := pipeline.FinalizeParquet(pw); err != nil {
		return nil, exception.NewStageError(StageName, "failed to finalize Parquet file", err, false)
	}

	return buf, nil
}
