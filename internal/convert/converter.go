// Package convert implements the columnar stage: it selects the latest
// landing snapshot, decodes its flattened rows and rewrites them as one
// Parquet snapshot carrying the same timestamp token.
package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"github.com/xitongsys/parquet-go/writer"

	appconfig "github.com/tigerroll/standlake/internal/config"
	"github.com/tigerroll/standlake/internal/domain/model"
	"github.com/tigerroll/standlake/internal/fetch"
	"github.com/tigerroll/standlake/internal/manifest"
	"github.com/tigerroll/standlake/internal/pipeline"
	"github.com/tigerroll/standlake/pkg/storage"
	"github.com/tigerroll/standlake/pkg/util/exception"
	"github.com/tigerroll/standlake/pkg/util/logger"
)

// StageName identifies the columnar stage in manifests, metrics and spans.
const StageName = "convert"

// Converter is the columnar stage handler.
type Converter struct {
	cfg      *appconfig.Config
	resolver *storage.ConnectionResolver
	repo     manifest.Repository
	now      func() time.Time
}

// Verify that Converter implements the pipeline.Handler interface.
var _ pipeline.Handler = (*Converter)(nil)

// NewConverter creates the columnar stage handler.
func NewConverter(cfg *appconfig.Config, resolver *storage.ConnectionResolver, repo manifest.Repository) *Converter {
	return &Converter{
		cfg:      cfg,
		resolver: resolver,
		repo:     repo,
		now:      time.Now,
	}
}

// Name returns the stage name.
func (c *Converter) Name() string {
	return StageName
}

// Execute runs the columnar stage once.
func (c *Converter) Execute(ctx context.Context) (*pipeline.Result, error) {
	pcfg := c.cfg.Standlake.Pipeline

	conn, err := c.resolver.Resolve(ctx, pcfg.StorageRef)
	if err != nil {
		return nil, err
	}

	token, objectKey, found, err := pipeline.LatestInput(ctx, c.repo, conn, fetch.StageName, pcfg.Bucket, pcfg.RawPrefix, "json")
	if err != nil {
		return nil, err
	}
	if !found {
		logger.Infof("No landing snapshot found under '%s/'; nothing to convert.", pcfg.RawPrefix)
		return &pipeline.Result{
			Status:  pipeline.StatusNoInput,
			Message: "no landing snapshot found",
		}, nil
	}

	reader, err := conn.Download(ctx, pcfg.Bucket, objectKey)
	if err != nil {
		return nil, exception.NewStageError(StageName, "failed to download landing snapshot", err, true)
	}
	payload, err := io.ReadAll(reader)
	reader.Close()
	if err != nil {
		return nil, exception.NewStageError(StageName, "failed to read landing snapshot", err, true)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, exception.NewStageError(StageName, "failed to decode landing snapshot", err, false)
	}

	standings := make([]model.Standing, 0, len(rows))
	for _, row := range rows {
		var standing model.Standing
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &standing,
			WeaklyTypedInput: true,
		})
		if err != nil {
			return nil, exception.NewStageError(StageName, "failed to create row decoder", err, false)
		}
		if err := decoder.Decode(row); err != nil {
			return nil, exception.NewStageError(StageName, "failed to decode standings row", err, false)
		}
		standings = append(standings, standing)
	}

	buf, err := writeParquet(standings, pcfg.Compression)
	if err != nil {
		return nil, err
	}

	columnarKey := pipeline.ObjectKey(pcfg.ColumnarPrefix, pcfg.Basename, token, "parquet")
	if err := conn.Upload(ctx, pcfg.Bucket, columnarKey, buf, "application/octet-stream"); err != nil {
		return nil, exception.NewStageError(StageName, "failed to upload columnar snapshot", err, true)
	}

	snapshot := &model.Snapshot{
		ID:          uuid.NewString(),
		Stage:       StageName,
		ObjectKey:   columnarKey,
		Token:       token,
		RecordCount: len(standings),
		CreatedAt:   c.now(),
	}
	if err := c.repo.RecordSnapshot(ctx, snapshot); err != nil {
		return nil, err
	}

	logger.Infof("Columnar snapshot '%s' written with %d rows (from '%s').", columnarKey, len(standings), objectKey)
	return &pipeline.Result{
		Status:      pipeline.StatusCompleted,
		ObjectKey:   columnarKey,
		Token:       token,
		RecordCount: len(standings),
	}, nil
}

// writeParquet renders the standings as one in-memory Parquet file with a
// single row group.
func writeParquet(standings []model.Standing, compression string) (*bytes.Buffer, error) {
	codec, err := pipeline.CompressionCodec(compression)
	if err != nil {
		return nil, exception.NewStageError(StageName, "invalid compression type", err, false)
	}

	buf := new(bytes.Buffer)
	pw, err := writer.NewParquetWriterFromWriter(buf, new(model.Standing), int64(len(standings)))
	if err != nil {
		return nil, exception.NewStageError(StageName, "failed to create Parquet writer", err, false)
	}
	pw.CompressionType = codec

	for _, standing := range standings {
		if err := pw.Write(standing); err != nil {
			return nil, exception.NewStageError(StageName, "failed to write standings row to Parquet", err, false)
		}
	}
	if err := pipeline.FinalizeParquet(pw); err != nil {
		return nil, exception.NewStageError(StageName, "failed to finalize Parquet file", err, false)
	}

	return buf, nil
}
