package domain

import (
	"context"
	"time"
)

// ImageryCatalog supplies scene collections by sensor, date range, and
// footprint. Implementations return scenes ordered ascending by acquisition
// time; an empty collection is a legitimate answer and is surfaced by the
// mosaicker as EmptyCollectionError.
type ImageryCatalog interface {
	FetchCollection(ctx context.Context, sensor string, start, end time.Time, aoi AreaOfInterest) (ImageCollection, error)
}

// WaterProvider supplies the surface-water seasonality raster aligned to a
// grid: months per year with standing water, 0 through 12. A nil raster
// means no water data is available for the grid.
type WaterProvider interface {
	Seasonality(ctx context.Context, grid Grid) (*FloatRaster, error)
}
