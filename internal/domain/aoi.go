package domain

import (
	"math"

	"github.com/ctessum/geom"
)

// Vertex is one polygon vertex in map coordinates.
type Vertex struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// AreaOfInterest is the closed study-boundary polygon. Construct it with
// NewAreaOfInterest, which enforces the geometric invariants.
type AreaOfInterest struct {
	ring geom.Polygon
}

// NewAreaOfInterest validates a vertex ring and builds the polygon. The ring
// may repeat the first vertex at the end; the closing duplicate is dropped.
// At least 3 distinct vertices are required and edges must not self-intersect.
func NewAreaOfInterest(vertices []Vertex) (AreaOfInterest, error) {
	if len(vertices) > 1 && vertices[0] == vertices[len(vertices)-1] {
		vertices = vertices[:len(vertices)-1]
	}

	distinct := make(map[Vertex]struct{}, len(vertices))
	for _, v := range vertices {
		distinct[v] = struct{}{}
	}
	if len(distinct) < 3 {
		return AreaOfInterest{}, invalidConfigf("area of interest needs at least 3 distinct vertices, got %d", len(distinct))
	}
	if selfIntersects(vertices) {
		return AreaOfInterest{}, invalidConfigf("area of interest polygon self-intersects")
	}

	ring := make([]geom.Point, len(vertices))
	for i, v := range vertices {
		ring[i] = geom.Point{X: v.X, Y: v.Y}
	}
	poly := geom.Polygon{ring}
	if math.Abs(poly.Area()) == 0 {
		return AreaOfInterest{}, invalidConfigf("area of interest polygon has zero area")
	}
	return AreaOfInterest{ring: poly}, nil
}

// Vertices returns the polygon ring without the closing duplicate.
func (a AreaOfInterest) Vertices() []Vertex {
	if len(a.ring) == 0 {
		return nil
	}
	out := make([]Vertex, len(a.ring[0]))
	for i, p := range a.ring[0] {
		out[i] = Vertex{X: p.X, Y: p.Y}
	}
	return out
}

// Contains reports whether the map coordinate lies inside or on the boundary
// of the polygon.
func (a AreaOfInterest) Contains(x, y float64) bool {
	return geom.Point{X: x, Y: y}.Within(a.ring) != geom.Outside
}

// Overlaps reports whether the polygon's bounding box intersects the grid's
// extent. Used for coarse footprint filtering; exact clipping is per pixel.
func (a AreaOfInterest) Overlaps(g Grid) bool {
	b := a.ring.Bounds()
	gMinX := g.OriginX
	gMaxX := g.OriginX + float64(g.Width)*g.CellSize
	gMaxY := g.OriginY
	gMinY := g.OriginY - float64(g.Height)*g.CellSize
	return b.Min.X < gMaxX && b.Max.X > gMinX && b.Min.Y < gMaxY && b.Max.Y > gMinY
}

// ClipMask rasterizes the polygon onto a grid: true where the pixel center
// falls inside or on the boundary.
func (a AreaOfInterest) ClipMask(g Grid) []bool {
	mask := make([]bool, g.Pixels())
	for row := 0; row < g.Height; row++ {
		for col := 0; col < g.Width; col++ {
			x, y := g.CellCenter(col, row)
			mask[row*g.Width+col] = a.Contains(x, y)
		}
	}
	return mask
}

// selfIntersects tests every pair of non-adjacent ring edges for a proper
// crossing. Quadratic, but AOI rings are small.
func selfIntersects(vertices []Vertex) bool {
	n := len(vertices)
	if n < 4 {
		return false
	}
	for i := 0; i < n; i++ {
		a1 := vertices[i]
		a2 := vertices[(i+1)%n]
		for j := i + 1; j < n; j++ {
			// Skip edges sharing a vertex with edge i.
			if j == i || (j+1)%n == i || j == (i+1)%n {
				continue
			}
			b1 := vertices[j]
			b2 := vertices[(j+1)%n]
			if segmentsCross(a1, a2, b1, b2) {
				return true
			}
		}
	}
	return false
}

// segmentsCross reports a proper crossing between segments a1-a2 and b1-b2.
func segmentsCross(a1, a2, b1, b2 Vertex) bool {
	d1 := cross(b1, b2, a1)
	d2 := cross(b1, b2, a2)
	d3 := cross(a1, a2, b1)
	d4 := cross(a1, a2, b2)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func cross(o, a, b Vertex) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}
