package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitSquare(t *testing.T) AreaOfInterest {
	t.Helper()
	aoi, err := NewAreaOfInterest([]Vertex{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
	})
	require.NoError(t, err)
	return aoi
}

func TestNewAreaOfInterest(t *testing.T) {
	t.Run("closing duplicate is dropped", func(t *testing.T) {
		aoi, err := NewAreaOfInterest([]Vertex{
			{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 0},
		})
		require.NoError(t, err)
		assert.Len(t, aoi.Vertices(), 3)
	})

	t.Run("too few distinct vertices", func(t *testing.T) {
		_, err := NewAreaOfInterest([]Vertex{{X: 0, Y: 0}, {X: 10, Y: 0}})
		var invalid *InvalidConfigurationError
		require.ErrorAs(t, err, &invalid)
		assert.Contains(t, err.Error(), "3 distinct vertices")
	})

	t.Run("repeated vertices do not count", func(t *testing.T) {
		_, err := NewAreaOfInterest([]Vertex{
			{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 0}, {X: 10, Y: 0},
		})
		assert.Error(t, err)
	})

	t.Run("self-intersecting bowtie rejected", func(t *testing.T) {
		_, err := NewAreaOfInterest([]Vertex{
			{X: 0, Y: 0}, {X: 10, Y: 10}, {X: 10, Y: 0}, {X: 0, Y: 10},
		})
		var invalid *InvalidConfigurationError
		require.ErrorAs(t, err, &invalid)
		assert.Contains(t, err.Error(), "self-intersects")
	})

	t.Run("collinear ring has zero area", func(t *testing.T) {
		_, err := NewAreaOfInterest([]Vertex{
			{X: 0, Y: 0}, {X: 5, Y: 5}, {X: 10, Y: 10},
		})
		assert.Error(t, err)
	})
}

func TestAreaOfInterest_Contains(t *testing.T) {
	aoi := unitSquare(t)

	assert.True(t, aoi.Contains(5, 5))
	assert.True(t, aoi.Contains(0, 5), "boundary points count as inside")
	assert.False(t, aoi.Contains(-1, 5))
	assert.False(t, aoi.Contains(5, 11))
}

func TestAreaOfInterest_Overlaps(t *testing.T) {
	aoi := unitSquare(t)

	inside := Grid{Width: 2, Height: 2, CRS: "EPSG:32755", OriginX: 2, OriginY: 8, CellSize: 2}
	assert.True(t, aoi.Overlaps(inside))

	disjoint := Grid{Width: 2, Height: 2, CRS: "EPSG:32755", OriginX: 100, OriginY: 100, CellSize: 2}
	assert.False(t, aoi.Overlaps(disjoint))
}

func TestAreaOfInterest_ClipMask(t *testing.T) {
	aoi := unitSquare(t)

	// 2x2 grid over [0,20]x[-10,10]: only the top-left center (5, 5) falls
	// inside the square.
	g := Grid{Width: 2, Height: 2, CRS: "EPSG:32755", OriginX: 0, OriginY: 10, CellSize: 10}
	mask := aoi.ClipMask(g)

	assert.Equal(t, []bool{true, false, false, false}, mask)
}
