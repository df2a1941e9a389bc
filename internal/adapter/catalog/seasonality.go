package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/couchcryptid/burn-severity-etl/internal/domain"
)

// SeasonalityFile serves a surface-water seasonality raster from a JSON file:
// months per year with standing water per pixel. It implements
// domain.WaterProvider. The file is read once, on first use.
type SeasonalityFile struct {
	path string

	once   sync.Once
	raster *domain.FloatRaster
	err    error
}

// NewSeasonalityFile creates a water provider over a raster file. An empty
// path yields a provider that always answers "no data", which disables the
// water mask.
func NewSeasonalityFile(path string) *SeasonalityFile {
	return &SeasonalityFile{path: path}
}

// Seasonality returns the raster when it aligns with the requested grid. A
// grid the file does not cover is a configuration problem, not a silent
// no-op: analyses on unexpected grids must not quietly lose the water mask.
func (s *SeasonalityFile) Seasonality(_ context.Context, grid domain.Grid) (*domain.FloatRaster, error) {
	if s.path == "" {
		return nil, nil
	}

	s.once.Do(s.load)
	if s.err != nil {
		return nil, s.err
	}

	if !s.raster.Grid.Equal(grid) {
		return nil, &domain.DimensionMismatchError{Op: "water seasonality", A: grid, B: s.raster.Grid}
	}
	return s.raster, nil
}

func (s *SeasonalityFile) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.err = fmt.Errorf("read seasonality raster: %w", err)
		return
	}

	var raster struct {
		Grid   domain.Grid `json:"grid"`
		Values []float64   `json:"values"`
	}
	if err := json.Unmarshal(data, &raster); err != nil {
		s.err = fmt.Errorf("parse seasonality raster %s: %w", s.path, err)
		return
	}
	if len(raster.Values) != raster.Grid.Pixels() {
		s.err = fmt.Errorf("seasonality raster %s: %d values for a %dx%d grid",
			s.path, len(raster.Values), raster.Grid.Width, raster.Grid.Height)
		return
	}

	// Negative values mark pixels the water record does not cover.
	valid := make([]bool, len(raster.Values))
	for i, v := range raster.Values {
		valid[i] = v >= 0
	}
	s.raster = &domain.FloatRaster{Grid: raster.Grid, Values: raster.Values, Valid: valid}
}
