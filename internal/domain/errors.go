package domain

import (
	"fmt"
	"time"
)

// EmptyCollectionError reports a date window that matched no scenes. It is
// fatal to the epoch: an all-invalid composite would silently hide a
// misconfigured window or footprint, so the pipeline aborts instead.
type EmptyCollectionError struct {
	Epoch  string
	Sensor string
	Start  time.Time
	End    time.Time
}

func (e *EmptyCollectionError) Error() string {
	return fmt.Sprintf("empty collection for %s epoch: sensor %s has no scenes in [%s, %s)",
		e.Epoch, e.Sensor, e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
}

// DimensionMismatchError reports binary raster operands that do not share
// grid geometry. This is a configuration or programming error, never a data
// condition.
type DimensionMismatchError struct {
	Op string
	A  Grid
	B  Grid
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s: grid mismatch: %dx%d %s vs %dx%d %s",
		e.Op, e.A.Width, e.A.Height, e.A.CRS, e.B.Width, e.B.Height, e.B.CRS)
}

// InvalidConfigurationError reports a request that fails validation before
// any raster work begins: unknown sensor, malformed thresholds, degenerate
// polygon.
type InvalidConfigurationError struct {
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	return "invalid configuration: " + e.Reason
}

func invalidConfigf(format string, args ...any) *InvalidConfigurationError {
	return &InvalidConfigurationError{Reason: fmt.Sprintf(format, args...)}
}
