// Package domain implements the burn-severity raster pipeline: masking,
// compositing, band-index evaluation, differencing, and classification.
//
// # Data Source
//
// Analysis requests arrive on the Kafka source topic as JSON documents naming
// a sensor, a pre-fire and a post-fire date window, and an area-of-interest
// polygon. The imagery catalog collaborator supplies the matching scenes:
// rectified, georeferenced multi-band rasters already aligned to a common
// grid. Reprojection and resampling happen upstream; every raster entering
// one operation here must share identical grid geometry.
//
// # Normalized Burn Ratio
//
// NBR is a normalized difference of the near-infrared and the second
// shortwave-infrared band:
//
//	NBR = (NIR − SWIR2) / (NIR + SWIR2)
//
// Healthy vegetation reflects strongly in NIR and weakly in SWIR2, so NBR is
// high before a fire and drops sharply over char and exposed soil. The
// difference between the pre-fire and post-fire composites,
//
//	dNBR = (NBR_pre − NBR_post) × 1000
//
// is the burn-severity signal. The ×1000 rescale is the standard USGS
// reporting convention; unscaled NBR lives in [-1, 1].
//
// Which two bands are "NIR" and "SWIR2" depends on the sensor:
//
//	sentinel2: B8 / B12
//	landsat8:  B5 / B7
//
// The mapping lives in the sensor registry, never at call sites, so adding a
// sensor is a registry entry rather than a new code path.
//
// # Quality masking
//
// Each scene carries an integer quality plane whose bits flag cloud, cirrus,
// cloud shadow, and snow, at positions that differ by sensor:
//
//	sentinel2 (QA60):    bit 10 cloud, bit 11 cirrus
//	landsat8 (pixel_qa): bit 5 cloud, bit 3 shadow, bit 4 snow
//
// The bits are decoded once into QualityFlags; a pixel is kept only when no
// configured flag is set. Persistent water (pixels with standing water in at
// least the cutoff number of months per year, default 10 of 12, per the
// surface-water seasonality plane) is always removed, as a final AND after
// the quality checks.
//
// # Compositing
//
// An epoch composite is built first-valid-wins: scenes are scanned in
// acquisition order (earliest first) and each pixel takes the band values of
// the first scene whose pixel survived masking. Pixels with no valid
// observation anywhere in the collection, and pixels outside the
// area-of-interest polygon, are no-data. The scan order is fixed, so the
// composite is bit-identical across repeated runs of the same collection.
//
// # Severity classification
//
// dNBR is bucketed by the ordered boundary list (USGS/UNOOSA convention):
//
//	[-1000, -251, -101, 99, 269, 439, 659, 2000]
//
// producing seven classes: Enhanced Regrowth (High), Enhanced Regrowth (Low),
// Unburned, Low, Moderate-Low, Moderate-High, and High Severity. Intervals
// are left-inclusive/right-exclusive, so a value exactly on a boundary
// classifies into the higher-severity side (99 is Low Severity, 98.999 is
// Unburned). The outer boundaries are the measurement scale limits; values
// outside them, and pixels invalid in either composite, get the distinguished
// no-data class and are never assigned a severity.
//
// # Error model
//
// Configuration problems fail fast before any raster work:
// InvalidConfigurationError for unknown sensors, non-monotonic thresholds, or
// degenerate polygons; EmptyCollectionError when a date window matches no
// scenes (a silent all-invalid composite would hide a misconfigured window);
// DimensionMismatchError when binary raster operands disagree on geometry.
// Per-pixel anomalies such as division by zero or missing observations never
// error; they produce no-data pixels.
//
// # ID Generation
//
// Result IDs are deterministic SHA-256 hashes of the request parameters
// (sensor, both windows, polygon, thresholds). Re-running an identical
// request produces the same ID, enabling idempotent upserts downstream and
// replay safety without coordination. See [AnalysisRequest.ID].
package domain
