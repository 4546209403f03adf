package fetch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/tigerroll/standlake/internal/config"
	"github.com/tigerroll/standlake/internal/manifest"
	"github.com/tigerroll/standlake/internal/pipeline"
	"github.com/tigerroll/standlake/pkg/storage"
	"github.com/tigerroll/standlake/pkg/storage/local"
)

const standingsPayload = `{
	"get": "standings",
	"results": 1,
	"response": [{
		"league": {
			"id": 39,
			"name": "Premier League",
			"season": 2023,
			"standings": [[
				{
					"rank": 1,
					"team": {"id": 42, "name": "Arsenal", "logo": "https://example.com/42.png"},
					"points": 89,
					"goalsDiff": 62,
					"group": "Premier League",
					"form": "WWDWW",
					"status": "same",
					"description": "Champions League",
					"all": {"played": 38, "win": 28, "draw": 5, "lose": 5, "goals": {"for": 91, "against": 29}},
					"home": {"played": 19, "win": 15, "draw": 2, "lose": 2, "goals": {"for": 48, "against": 16}},
					"away": {"played": 19, "win": 13, "draw": 3, "lose": 3, "goals": {"for": 43, "against": 13}},
					"update": "2024-01-01T00:00:00+00:00"
				},
				{
					"rank": 2,
					"team": {"id": 50, "name": "Manchester City", "logo": "https://example.com/50.png"},
					"points": 88,
					"goalsDiff": 61,
					"group": "Premier League",
					"form": "WWWWD",
					"status": "same",
					"description": "Champions League",
					"all": {"played": 38, "win": 27, "draw": 7, "lose": 4, "goals": {"for": 94, "against": 33}},
					"home": {"played": 19, "win": 14, "draw": 4, "lose": 1, "goals": {"for": 51, "against": 17}},
					"away": {"played": 19, "win": 13, "draw": 3, "lose": 3, "goals": {"for": 43, "against": 16}},
					"update": "2024-01-01T00:00:00+00:00"
				}
			]]
		}
	}]
}`

// newTestFetcher wires a Fetcher against a local storage directory and the
// given upstream endpoint.
func newTestFetcher(t *testing.T, endpoint string) (*Fetcher, string) {
	t.Helper()

	baseDir := t.TempDir()
	cfg := &appconfig.Config{}
	cfg.Standlake.Fetch = appconfig.FetchConfig{
		Endpoint:       endpoint,
		Host:           "v3.football.api-sports.io",
		APIKey:         "test-key",
		League:         39,
		Season:         2023,
		TimeoutSeconds: 5,
	}
	cfg.Standlake.Pipeline = appconfig.PipelineConfig{
		StorageRef: "lake",
		RawPrefix:  "raw",
		Basename:   "plstandings",
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

	fetcher := NewFetcher(cfg, NewClient(cfg.Standlake.Fetch), resolver, manifest.NewNoopRepository())
	fetcher.now = func() time.Time { return time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC) }
	return fetcher, baseDir
}

func TestFetcherWritesFlattenedLandingSnapshot(t *testing.T) {
	var gotKey, gotHost string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-rapidapi-key")
		gotHost = r.Header.Get("x-rapidapi-host")
		assert.Equal(t, "39", r.URL.Query().Get("league"))
		assert.Equal(t, "2023", r.URL.Query().Get("season"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, standingsPayload)
	}))
	defer server.Close()

	fetcher, baseDir := newTestFetcher(t, server.URL)
	result, err := fetcher.Execute(context.Background())
	require.NoError(t, err)
	require.Equal(t, pipeline.StatusCompleted, result.Status)
	assert.Equal(t, "202401020900", result.Token)
	assert.Equal(t, 2, result.RecordCount)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "v3.football.api-sports.io", gotHost)

	written, err := os.ReadFile(filepath.Join(baseDir, "raw", "plstandings_202401020900.json"))
	require.NoError(t, err)

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(written, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Arsenal", rows[0]["team.name"])
	assert.Equal(t, float64(91), rows[0]["all.goals.for"])
	assert.Equal(t, float64(88), rows[1]["points"])
}

func TestFetcherDeniedStatusesWriteNothing(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusNotFound} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "denied", status)
		}))

		fetcher, baseDir := newTestFetcher(t, server.URL)
		result, err := fetcher.Execute(context.Background())
		server.Close()

		require.NoError(t, err, "status %d must not fail the run", status)
		assert.Equal(t, pipeline.StatusNoInput, result.Status)

		entries, err := os.ReadDir(baseDir)
		require.NoError(t, err)
		assert.Empty(t, entries, "status %d must not write a snapshot", status)
	}
}

func TestFetcherUnexpectedStatusWritesNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	fetcher, baseDir := newTestFetcher(t, server.URL)
	result, err := fetcher.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, pipeline.StatusNoInput, result.Status)
	assert.Contains(t, result.Message, "429")

	entries, err := os.ReadDir(baseDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFetcherRendersTokenInConfiguredTimezone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, standingsPayload)
	}))
	defer server.Close()

	fetcher, baseDir := newTestFetcher(t, server.URL)
	fetcher.loc = time.FixedZone("JST", 9*60*60)
	// 00:00 UTC is 09:00 local.
	fetcher.now = func() time.Time { return time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC) }

	result, err := fetcher.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "202401020900", result.Token)

	_, statErr := os.Stat(filepath.Join(baseDir, "raw", "plstandings_202401020900.json"))
	assert.NoError(t, statErr)
}

func TestFetcherUnknownTimezoneFallsBackToUTC(t *testing.T) {
	cfg := &appconfig.Config{}
	cfg.Standlake.System.Timezone = "Not/AZone"

	fetcher := NewFetcher(cfg, NewClient(cfg.Standlake.Fetch), nil, manifest.NewNoopRepository())
	assert.Equal(t, time.UTC, fetcher.loc)
}

func TestFetcherRejectsPayloadWithoutStandings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"get": "standings", "results": 0, "response": []}`)
	}))
	defer server.Close()

	fetcher, _ := newTestFetcher(t, server.URL)
	_, err := fetcher.Execute(context.Background())
	assert.Error(t, err)
}
