// Command genscene generates a synthetic scene archive for local runs and
// integration tests: pre-fire and post-fire acquisitions with realistic NBR
// contrast, quality-bit cloud cover, a surface-water raster, and a matching
// analysis request. Output is deterministic for a given seed.
//
// Usage:
//
//	go run ./cmd/genscene -out data/scenes -sensor sentinel2 -seed 42
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/burn-severity-etl/internal/domain"
)

// Acquisition dates straddle a notional fire in January 2020.
var (
	preBase  = time.Date(2019, time.November, 3, 0, 10, 0, 0, time.UTC)
	postBase = time.Date(2020, time.February, 4, 0, 10, 0, 0, time.UTC)
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output directory for the scene archive")
	sensorID := flag.String("sensor", "sentinel2", "sensor to generate scenes for")
	count := flag.Int("scenes", 3, "scenes per epoch")
	width := flag.Int("width", 64, "grid width in pixels")
	height := flag.Int("height", 64, "grid height in pixels")
	seed := flag.Int64("seed", 42, "random seed")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	sensor, err := domain.LookupSensor(*sensorID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(*seed))
	grid := domain.Grid{
		Width:    *width,
		Height:   *height,
		CRS:      "EPSG:32755",
		OriginX:  500000,
		OriginY:  6000000,
		CellSize: 20,
	}

	for i := 0; i < *count; i++ {
		pre := synthScene(rng, sensor, grid, fmt.Sprintf("%s-pre-%03d", sensor.ID, i), preBase.AddDate(0, 0, 5*i), false)
		if err := writeJSON(filepath.Join(*out, pre.ID+".json"), pre); err != nil {
			return err
		}
		post := synthScene(rng, sensor, grid, fmt.Sprintf("%s-post-%03d", sensor.ID, i), postBase.AddDate(0, 0, 5*i), true)
		if err := writeJSON(filepath.Join(*out, post.ID+".json"), post); err != nil {
			return err
		}
	}

	if err := writeJSON(filepath.Join(*out, "water.json"), waterRaster(grid)); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(*out, "request.json"), sampleRequest(sensor, grid)); err != nil {
		return err
	}

	fmt.Printf("wrote %d scenes to %s\n", 2*(*count), *out)
	return nil
}

// synthScene builds one acquisition. Pre-fire ground is healthy vegetation
// (high NIR, low SWIR2); post-fire ground has the ratio inverted, with the
// burn strongest in the north half of the grid. A random cloud band covers
// part of each scene so compositing has work to do.
func synthScene(rng *rand.Rand, sensor domain.Sensor, grid domain.Grid, id string, at time.Time, burned bool) domain.Scene {
	n := grid.Pixels()
	nir := make([]float64, n)
	swir2 := make([]float64, n)
	quality := make([]uint32, n)

	cloudStart := rng.Intn(grid.Height)
	cloudRows := rng.Intn(grid.Height/4 + 1)

	for row := 0; row < grid.Height; row++ {
		for col := 0; col < grid.Width; col++ {
			i := row*grid.Width + col
			noise := rng.Float64()*200 - 100

			severe := burned && row < grid.Height/2
			switch {
			case severe:
				nir[i] = 1500 + noise
				swir2[i] = 3500 + noise
			case burned:
				nir[i] = 2500 + noise
				swir2[i] = 2600 + noise
			default:
				nir[i] = 5000 + noise
				swir2[i] = 1000 + noise
			}

			if row >= cloudStart && row < cloudStart+cloudRows {
				quality[i] |= 1 << uint(sensor.Policy.CloudBit)
			}
		}
	}

	return domain.Scene{
		ID:         id,
		Sensor:     sensor.ID,
		AcquiredAt: at,
		Grid:       grid,
		Bands: map[string][]float64{
			sensor.NIRBand:   nir,
			sensor.SWIR2Band: swir2,
		},
		Quality: quality,
	}
}

// waterRaster places a permanent lake in the southeast corner.
func waterRaster(grid domain.Grid) map[string]any {
	values := make([]float64, grid.Pixels())
	for row := 0; row < grid.Height; row++ {
		for col := 0; col < grid.Width; col++ {
			if row > 3*grid.Height/4 && col > 3*grid.Width/4 {
				values[row*grid.Width+col] = 12
			}
		}
	}
	return map[string]any{"grid": grid, "values": values}
}

func sampleRequest(sensor domain.Sensor, grid domain.Grid) map[string]any {
	maxX := grid.OriginX + float64(grid.Width)*grid.CellSize
	minY := grid.OriginY - float64(grid.Height)*grid.CellSize
	return map[string]any{
		"sensor":     sensor.ID,
		"pre_start":  "2019-11-01T00:00:00Z",
		"pre_end":    "2019-12-01T00:00:00Z",
		"post_start": "2020-02-01T00:00:00Z",
		"post_end":   "2020-03-01T00:00:00Z",
		"aoi": [][2]float64{
			{grid.OriginX, minY},
			{maxX, minY},
			{maxX, grid.OriginY},
			{grid.OriginX, grid.OriginY},
		},
	}
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
