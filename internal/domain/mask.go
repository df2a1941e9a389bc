package domain

// ComposeMask builds the keep-mask for one scene: the logical AND of the
// cloud masker's verdict and the persistent-water check. A pixel survives
// only when every check passes; any single triggered condition removes it.
//
// seasonality is the months-with-standing-water raster aligned to the scene
// grid; pixels at or above waterCutoff are always removed, regardless of
// cloud state. Pixels the seasonality raster has no data for are kept. Pass
// nil to skip the water check. The scene is untouched.
func ComposeMask(scene Scene, masker CloudMasker, seasonality *FloatRaster, waterCutoff float64) ([]bool, error) {
	valid, err := masker.CloudMask(scene)
	if err != nil {
		return nil, err
	}

	if seasonality == nil {
		return valid, nil
	}
	if !seasonality.Grid.Equal(scene.Grid) {
		return nil, &DimensionMismatchError{Op: "compose mask", A: scene.Grid, B: seasonality.Grid}
	}
	for i := range valid {
		if seasonality.Valid[i] && seasonality.Values[i] >= waterCutoff {
			valid[i] = false
		}
	}
	return valid, nil
}
