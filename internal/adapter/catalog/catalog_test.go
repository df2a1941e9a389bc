package catalog_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/burn-severity-etl/internal/adapter/catalog"
	"github.com/couchcryptid/burn-severity-etl/internal/domain"
	"github.com/couchcryptid/burn-severity-etl/internal/observability"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testGrid() domain.Grid {
	return domain.Grid{Width: 2, Height: 1, CRS: "EPSG:32755", OriginX: 500000, OriginY: 6000000, CellSize: 20}
}

func testAOI(t *testing.T) domain.AreaOfInterest {
	t.Helper()
	g := testGrid()
	aoi, err := domain.NewAreaOfInterest([]domain.Vertex{
		{X: g.OriginX, Y: g.OriginY - g.CellSize},
		{X: g.OriginX + 2*g.CellSize, Y: g.OriginY - g.CellSize},
		{X: g.OriginX + 2*g.CellSize, Y: g.OriginY},
		{X: g.OriginX, Y: g.OriginY},
	})
	require.NoError(t, err)
	return aoi
}

func writeScene(t *testing.T, dir string, scene domain.Scene) {
	t.Helper()
	data, err := json.Marshal(scene)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, scene.ID+".json"), data, 0o644))
}

func archiveScene(id, sensor string, at time.Time) domain.Scene {
	g := testGrid()
	return domain.Scene{
		ID:         id,
		Sensor:     sensor,
		AcquiredAt: at,
		Grid:       g,
		Bands:      map[string][]float64{"B8": {1, 2}, "B12": {3, 4}},
		Quality:    []uint32{0, 0},
	}
}

func TestArchive_FetchCollection(t *testing.T) {
	dir := t.TempDir()
	window := func(day int) time.Time {
		return time.Date(2020, 1, day, 0, 0, 0, 0, time.UTC)
	}

	// Written out of order; fetch must sort by acquisition time.
	writeScene(t, dir, archiveScene("s-late", "sentinel2", window(20)))
	writeScene(t, dir, archiveScene("s-early", "sentinel2", window(5)))
	writeScene(t, dir, archiveScene("s-wrong-sensor", "landsat8", window(10)))
	writeScene(t, dir, archiveScene("s-outside-window", "sentinel2", window(31)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "corrupt.json"), []byte("not json"), 0o644))

	arc, err := catalog.NewArchive(dir, testLogger())
	require.NoError(t, err)

	col, err := arc.FetchCollection(context.Background(), "sentinel2", window(1), window(31), testAOI(t))
	require.NoError(t, err)

	require.Len(t, col.Scenes, 2)
	assert.Equal(t, "s-early", col.Scenes[0].ID)
	assert.Equal(t, "s-late", col.Scenes[1].ID)
	assert.Equal(t, "sentinel2", col.Sensor)
}

func TestArchive_WindowIsHalfOpen(t *testing.T) {
	dir := t.TempDir()
	end := time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC)
	writeScene(t, dir, archiveScene("s-at-end", "sentinel2", end))

	arc, err := catalog.NewArchive(dir, testLogger())
	require.NoError(t, err)

	col, err := arc.FetchCollection(context.Background(), "sentinel2", end.AddDate(0, -1, 0), end, testAOI(t))
	require.NoError(t, err)
	assert.True(t, col.Empty(), "a scene acquired exactly at the end bound is excluded")
}

func TestArchive_FiltersByFootprint(t *testing.T) {
	dir := t.TempDir()
	far := archiveScene("s-far", "sentinel2", time.Date(2020, 1, 10, 0, 0, 0, 0, time.UTC))
	far.Grid.OriginX += 1e6
	writeScene(t, dir, far)

	arc, err := catalog.NewArchive(dir, testLogger())
	require.NoError(t, err)

	col, err := arc.FetchCollection(context.Background(), "sentinel2",
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC),
		testAOI(t))
	require.NoError(t, err)
	assert.True(t, col.Empty())
}

func TestArchive_MissingDirectory(t *testing.T) {
	_, err := catalog.NewArchive(filepath.Join(t.TempDir(), "nope"), testLogger())
	assert.Error(t, err)
}

// countingCatalog counts FetchCollection calls that reach it.
type countingCatalog struct {
	inner domain.ImageryCatalog
	calls atomic.Int64
}

func (c *countingCatalog) FetchCollection(ctx context.Context, sensor string, start, end time.Time, aoi domain.AreaOfInterest) (domain.ImageCollection, error) {
	c.calls.Add(1)
	return c.inner.FetchCollection(ctx, sensor, start, end, aoi)
}

func TestCachedCatalog(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2020, 1, 10, 0, 0, 0, 0, time.UTC)
	writeScene(t, dir, archiveScene("s-1", "sentinel2", at))

	arc, err := catalog.NewArchive(dir, testLogger())
	require.NoError(t, err)
	counting := &countingCatalog{inner: arc}
	cached := catalog.NewCachedCatalog(counting, 10, observability.NewMetricsForTesting())

	start := at.AddDate(0, 0, -5)
	end := at.AddDate(0, 0, 5)
	aoi := testAOI(t)

	first, err := cached.FetchCollection(context.Background(), "sentinel2", start, end, aoi)
	require.NoError(t, err)
	second, err := cached.FetchCollection(context.Background(), "sentinel2", start, end, aoi)
	require.NoError(t, err)

	assert.Equal(t, first.Scenes, second.Scenes)
	assert.Equal(t, int64(1), counting.calls.Load(), "second fetch must hit the cache")

	// A different window misses.
	_, err = cached.FetchCollection(context.Background(), "sentinel2", start.AddDate(0, 0, 1), end, aoi)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counting.calls.Load())
}

func TestCachedCatalog_EmptyCollectionsNotCached(t *testing.T) {
	dir := t.TempDir()
	arc, err := catalog.NewArchive(dir, testLogger())
	require.NoError(t, err)
	counting := &countingCatalog{inner: arc}
	cached := catalog.NewCachedCatalog(counting, 10, observability.NewMetricsForTesting())

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	aoi := testAOI(t)

	for range 2 {
		col, err := cached.FetchCollection(context.Background(), "sentinel2", start, end, aoi)
		require.NoError(t, err)
		assert.True(t, col.Empty())
	}
	assert.Equal(t, int64(2), counting.calls.Load(), "empty answers are retried")
}

func TestSeasonalityFile(t *testing.T) {
	g := testGrid()
	path := filepath.Join(t.TempDir(), "water.json")
	data, err := json.Marshal(map[string]any{
		"grid":   g,
		"values": []float64{11, -1},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	provider := catalog.NewSeasonalityFile(path)

	raster, err := provider.Seasonality(context.Background(), g)
	require.NoError(t, err)
	require.NotNil(t, raster)
	assert.Equal(t, []float64{11, -1}, raster.Values)
	assert.Equal(t, []bool{true, false}, raster.Valid, "negative values mean no water record")

	t.Run("grid mismatch", func(t *testing.T) {
		other := g
		other.Width = 3
		_, err := provider.Seasonality(context.Background(), other)
		var mismatch *domain.DimensionMismatchError
		assert.ErrorAs(t, err, &mismatch)
	})
}

func TestSeasonalityFile_Disabled(t *testing.T) {
	provider := catalog.NewSeasonalityFile("")

	raster, err := provider.Seasonality(context.Background(), testGrid())
	require.NoError(t, err)
	assert.Nil(t, raster)
}

func TestSeasonalityFile_BadLength(t *testing.T) {
	path := filepath.Join(t.TempDir(), "water.json")
	data, err := json.Marshal(map[string]any{
		"grid":   testGrid(),
		"values": []float64{1},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	provider := catalog.NewSeasonalityFile(path)
	_, err = provider.Seasonality(context.Background(), testGrid())
	assert.ErrorContains(t, err, "values")
}
