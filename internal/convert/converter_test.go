package convert

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/reader"

	appconfig "github.com/tigerroll/standlake/internal/config"
	"github.com/tigerroll/standlake/internal/domain/model"
	"github.com/tigerroll/standlake/internal/manifest"
	"github.com/tigerroll/standlake/internal/pipeline"
	"github.com/tigerroll/standlake/pkg/storage"
	"github.com/tigerroll/standlake/pkg/storage/local"
)

func newTestConverter(t *testing.T, repo manifest.Repository) (*Converter, string) {
	t.Helper()

	baseDir := t.TempDir()
	cfg := &appconfig.Config{}
	cfg.Standlake.Pipeline = appconfig.PipelineConfig{
		StorageRef:     "lake",
		RawPrefix:      "raw",
		ColumnarPrefix: "parquet",
		Basename:       "plstandings",
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

	converter := NewConverter(cfg, resolver, repo)
	converter.now = func() time.Time { return time.Date(2024, 1, 2, 9, 5, 0, 0, time.UTC) }
	return converter, baseDir
}

func writeLandingSnapshot(t *testing.T, baseDir, token string, rows []map[string]interface{}) {
	t.Helper()

	payload, err := json.Marshal(rows)
	require.NoError(t, err)
	dir := filepath.Join(baseDir, "raw")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plstandings_"+token+".json"), payload, 0644))
}

func landingRows() []map[string]interface{} {
	return []map[string]interface{}{
		{
			"rank":              float64(1),
			"team.id":           float64(42),
			"team.name":         "Arsenal",
			"points":            float64(89),
			"goalsDiff":         float64(62),
			"form":              "WWDWW",
			"all.played":        float64(38),
			"all.win":           float64(28),
			"all.draw":          float64(5),
			"all.lose":          float64(5),
			"all.goals.for":     float64(91),
			"all.goals.against": float64(29),
		},
		{
			"rank":      float64(2),
			"team.id":   float64(50),
			"team.name": "Manchester City",
			"points":    float64(88),
			"goalsDiff": float64(61),
			"form":      "WWWWD",
		},
	}
}

func readColumnarSnapshot(t *testing.T, path string) []model.Standing {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	bufFile, err := buffer.NewBufferFile(data)
	require.NoError(t, err)
	pr, err := reader.NewParquetReader(bufFile, new(model.Standing), 1)
	require.NoError(t, err)
	defer pr.ReadStop()

	standings := make([]model.Standing, pr.GetNumRows())
	require.NoError(t, pr.Read(&standings))
	return standings
}

func TestConverterSelectsLatestLandingSnapshot(t *testing.T) {
	converter, baseDir := newTestConverter(t, manifest.NewNoopRepository())

	writeLandingSnapshot(t, baseDir, "202401010900", []map[string]interface{}{
		{"rank": float64(1), "team.name": "Stale"},
	})
	writeLandingSnapshot(t, baseDir, "202401020900", landingRows())

	result, err := converter.Execute(context.Background())
	require.NoError(t, err)
	require.Equal(t, pipeline.StatusCompleted, result.Status)
	assert.Equal(t, "202401020900", result.Token)
	assert.Equal(t, "parquet/plstandings_202401020900.parquet", result.ObjectKey)
	assert.Equal(t, 2, result.RecordCount)

	standings := readColumnarSnapshot(t, filepath.Join(baseDir, "parquet", "plstandings_202401020900.parquet"))
	require.Len(t, standings, 2)
	assert.Equal(t, "Arsenal", standings[0].TeamName)
	assert.Equal(t, int32(42), standings[0].TeamID)
	assert.Equal(t, int32(91), standings[0].AllGoalsFor)
	assert.Equal(t, "WWWWD", standings[1].Form)
}

func TestConverterNoLandingSnapshot(t *testing.T) {
	converter, baseDir := newTestConverter(t, manifest.NewNoopRepository())

	result, err := converter.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, pipeline.StatusNoInput, result.Status)

	_, statErr := os.Stat(filepath.Join(baseDir, "parquet"))
	assert.True(t, os.IsNotExist(statErr))
}

type fixedLatestRepository struct {
	manifest.NoopRepository
	latest *model.Snapshot
}

func (r *fixedLatestRepository) LatestSnapshot(ctx context.Context, stage string) (*model.Snapshot, error) {
	return r.latest, nil
}

func TestConverterPrefersManifestOverListing(t *testing.T) {
	repo := &fixedLatestRepository{latest: &model.Snapshot{
		Stage:     "fetch",
		ObjectKey: "raw/plstandings_202401010900.json",
		Token:     "202401010900",
	}}
	converter, baseDir := newTestConverter(t, repo)

	// The listing-visible snapshot is newer, but the manifest names the
	// snapshot to consume.
	writeLandingSnapshot(t, baseDir, "202401010900", landingRows())
	writeLandingSnapshot(t, baseDir, "202401020900", []map[string]interface{}{
		{"rank": float64(9), "team.name": "Unindexed"},
	})

	result, err := converter.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "202401010900", result.Token)
	assert.Equal(t, 2, result.RecordCount)
}

func TestConverterIgnoresStrayObjectsInLandingTier(t *testing.T) {
	converter, baseDir := newTestConverter(t, manifest.NewNoopRepository())

	writeLandingSnapshot(t, baseDir, "202401020900", landingRows())
	// A scratch file whose apparent token sorts above every digit token.
	dir := filepath.Join(baseDir, "raw")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes_final.txt"), []byte("scratch"), 0644))

	result, err := converter.Execute(context.Background())
	require.NoError(t, err)
	require.Equal(t, pipeline.StatusCompleted, result.Status)
	assert.Equal(t, "202401020900", result.Token)
	assert.Equal(t, 2, result.RecordCount)
}

func TestConverterMalformedLandingSnapshotFails(t *testing.T) {
	converter, baseDir := newTestConverter(t, manifest.NewNoopRepository())

	dir := filepath.Join(baseDir, "raw")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plstandings_202401020900.json"), []byte("not json"), 0644))

	_, err := converter.Execute(context.Background())
	assert.Error(t, err)
}
