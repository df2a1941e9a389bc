package domain

import "time"

// Grid describes raster geometry: pixel dimensions, coordinate reference,
// and the placement of the pixel lattice in map coordinates. Every raster
// participating in one operation must carry an equal Grid.
type Grid struct {
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	CRS      string  `json:"crs"`
	OriginX  float64 `json:"origin_x"` // map X of the top-left corner
	OriginY  float64 `json:"origin_y"` // map Y of the top-left corner
	CellSize float64 `json:"cell_size"`
}

// Pixels returns the number of pixels in the grid.
func (g Grid) Pixels() int {
	return g.Width * g.Height
}

// Equal reports whether two grids share extent, resolution, and reference.
func (g Grid) Equal(o Grid) bool {
	return g == o
}

// CellCenter returns the map coordinates of the center of pixel (col, row).
// The grid is north-up: row 0 is the northernmost row.
func (g Grid) CellCenter(col, row int) (x, y float64) {
	x = g.OriginX + (float64(col)+0.5)*g.CellSize
	y = g.OriginY - (float64(row)+0.5)*g.CellSize
	return x, y
}

// Scene is one satellite acquisition: named band planes plus the sensor's
// integer quality plane, all in row-major order over the same grid.
type Scene struct {
	ID         string               `json:"id"`
	Sensor     string               `json:"sensor"`
	AcquiredAt time.Time            `json:"acquired_at"`
	Grid       Grid                 `json:"grid"`
	Bands      map[string][]float64 `json:"bands"`
	Quality    []uint32             `json:"quality"`
}

// ImageCollection is an ordered set of scenes covering one epoch. Scenes are
// sorted ascending by acquisition time; the mosaicker relies on that order.
type ImageCollection struct {
	Epoch  string
	Sensor string
	Start  time.Time
	End    time.Time
	Scenes []Scene
}

// Empty reports whether the collection holds no scenes.
func (c ImageCollection) Empty() bool {
	return len(c.Scenes) == 0
}

// MaskedRaster is a multi-band raster with a per-pixel validity plane.
// Invalid pixels are no-data, never zero: every downstream reduction must
// skip them. Pipeline stages treat MaskedRasters as immutable and allocate
// their outputs.
type MaskedRaster struct {
	Grid  Grid
	Bands map[string][]float64
	Valid []bool
}

// Band returns the named band plane.
func (m MaskedRaster) Band(name string) ([]float64, bool) {
	b, ok := m.Bands[name]
	return b, ok
}

// CountValid returns the number of valid pixels.
func (m MaskedRaster) CountValid() int {
	n := 0
	for _, v := range m.Valid {
		if v {
			n++
		}
	}
	return n
}

// FloatRaster is a single-band float raster with a validity plane, the output
// form of the index evaluator and the differencer.
type FloatRaster struct {
	Grid   Grid
	Values []float64
	Valid  []bool
}

// CountValid returns the number of valid pixels.
func (f FloatRaster) CountValid() int {
	n := 0
	for _, v := range f.Valid {
		if v {
			n++
		}
	}
	return n
}

// NoDataClass is the distinguished class value carried by pixels that were
// invalid in either composite or fell outside the severity scale range.
const NoDataClass uint8 = 255

// ClassRaster is the classified output: one small integer per pixel plus the
// parallel no-data mask. Classes[i] is NoDataClass wherever Valid[i] is false.
type ClassRaster struct {
	Grid    Grid
	Classes []uint8
	Valid   []bool
	Scale   SeverityScale
}

// CountValid returns the number of classified pixels.
func (c ClassRaster) CountValid() int {
	n := 0
	for _, v := range c.Valid {
		if v {
			n++
		}
	}
	return n
}

// Histogram returns the pixel count per class index, excluding no-data.
func (c ClassRaster) Histogram() map[uint8]int {
	h := make(map[uint8]int)
	for i, v := range c.Valid {
		if v {
			h[c.Classes[i]]++
		}
	}
	return h
}
