package transform

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"

	appconfig "github.com/tigerroll/standlake/internal/config"
	"github.com/tigerroll/standlake/internal/domain/model"
	"github.com/tigerroll/standlake/internal/manifest"
	"github.com/tigerroll/standlake/internal/pipeline"
	"github.com/tigerroll/standlake/pkg/storage"
	"github.com/tigerroll/standlake/pkg/storage/local"
)

func newTestTransformer(t *testing.T) (*Transformer, string) {
	t.Helper()

	baseDir := t.TempDir()
	cfg := &appconfig.Config{}
	cfg.Standlake.Pipeline = appconfig.PipelineConfig{
		StorageRef:     "lake",
		ColumnarPrefix: "parquet",
		FinalPrefix:    "final",
		Basename:       "plstandings",
		FinalBasename:  "plstandings_final",
		Compression:    "SNAPPY",
	}
	cfg.Standlake.StorageConfigs = map[string]interface{}{
		"lake": map[string]interface{}{
			"type":     "local",
			"base_dir": baseDir,
		},
	}

	provider := local.NewLocalProvider(cfg)
	resolver := storage.NewConnectionResolver(
		map[string]storage.StorageProvider{"local": provider},
		cfg.Standlake.StorageConfigs,
	)

	transformer := NewTransformer(cfg, resolver, manifest.NewNoopRepository())
	transformer.now = func() time.Time { return time.Date(2024, 1, 2, 9, 10, 0, 0, time.UTC) }
	return transformer, baseDir
}

func writeColumnarSnapshot(t *testing.T, baseDir, token string, standings []model.Standing) {
	t.Helper()

	buf := new(bytes.Buffer)
	pw, err := writer.NewParquetWriterFromWriter(buf, new(model.Standing), int64(len(standings)))
	require.NoError(t, err)
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, standing := range standings {
		require.NoError(t, pw.Write(standing))
	}
	require.NoError(t, pw.WriteStop())

	dir := filepath.Join(baseDir, "parquet")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plstandings_"+token+".parquet"), buf.Bytes(), 0644))
}

func readFinalSnapshot(t *testing.T, path string) []model.FinalStanding {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	bufFile, err := buffer.NewBufferFile(data)
	require.NoError(t, err)
	pr, err := reader.NewParquetReader(bufFile, new(model.FinalStanding), 1)
	require.NoError(t, err)
	defer pr.ReadStop()

	finals := make([]model.FinalStanding, pr.GetNumRows())
	require.NoError(t, pr.Read(&finals))
	return finals
}

func TestTransformerPublishesFinalSnapshot(t *testing.T) {
	transformer, baseDir := newTestTransformer(t)

	writeColumnarSnapshot(t, baseDir, "202401010900", []model.Standing{
		{Rank: 1, TeamName: "Stale", Form: "LLLLL"},
	})
	writeColumnarSnapshot(t, baseDir, "202401020900", []model.Standing{
		{
			Rank: 1, TeamID: 42, TeamName: "Arsenal", Points: 89, GoalsDiff: 62,
			AllPlayed: 38, AllWin: 28, AllDraw: 5, AllLose: 5,
			AllGoalsFor: 91, AllGoalsAgainst: 29, Form: "WLWWD",
		},
		{
			Rank: 2, TeamID: 50, TeamName: "Manchester City", Points: 88, GoalsDiff: 61,
			AllPlayed: 38, AllWin: 27, AllDraw: 7, AllLose: 4,
			AllGoalsFor: 94, AllGoalsAgainst: 33, Form: "WWWWW",
		},
	})

	result, err := transformer.Execute(context.Background())
	require.NoError(t, err)
	require.Equal(t, pipeline.StatusCompleted, result.Status)
	assert.Equal(t, "202401020900", result.Token)
	assert.Equal(t, "final/plstandings_final_202401020900.parquet", result.ObjectKey)
	assert.Equal(t, 2, result.RecordCount)

	finals := readFinalSnapshot(t, filepath.Join(baseDir, "final", "plstandings_final_202401020900.parquet"))
	require.Len(t, finals, 2)
	assert.Equal(t, "Arsenal", finals[0].TeamName)
	assert.Equal(t, int32(10), finals[0].FormPoints)
	assert.Equal(t, int32(15), finals[1].FormPoints)
	assert.Equal(t, int32(62), finals[0].GoalsDiff)
}

func TestTransformerNoColumnarSnapshot(t *testing.T) {
	transformer, baseDir := newTestTransformer(t)

	result, err := transformer.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, pipeline.StatusNoInput, result.Status)

	_, statErr := os.Stat(filepath.Join(baseDir, "final"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestTransformerMalformedFormFails(t *testing.T) {
	transformer, baseDir := newTestTransformer(t)

	writeColumnarSnapshot(t, baseDir, "202401020900", []model.Standing{
		{Rank: 1, TeamName: "Arsenal", Form: "WW?WW"},
	})

	_, err := transformer.Execute(context.Background())
	require.Error(t, err)

	// A failed projection publishes nothing.
	_, statErr := os.Stat(filepath.Join(baseDir, "final"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestTransformerEmptyFormPublishesZeroPoints(t *testing.T) {
	transformer, baseDir := newTestTransformer(t)

	writeColumnarSnapshot(t, baseDir, "202401020900", []model.Standing{
		{Rank: 20, TeamName: "Luton", Form: ""},
	})

	result, err := transformer.Execute(context.Background())
	require.NoError(t, err)
	require.Equal(t, pipeline.StatusCompleted, result.Status)

	finals := readFinalSnapshot(t, filepath.Join(baseDir, "final", "plstandings_final_202401020900.parquet"))
	require.Len(t, finals, 1)
	assert.Equal(t, int32(0), finals[0].FormPoints)
}
