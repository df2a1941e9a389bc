package domain

// Difference subtracts the post-epoch index from the pre-epoch index per
// pixel and rescales by scaleFactor (1000 under the standard dNBR reporting
// convention). A pixel invalid in either input is invalid in the output.
func Difference(pre, post FloatRaster, scaleFactor float64) (FloatRaster, error) {
	if !pre.Grid.Equal(post.Grid) {
		return FloatRaster{}, &DimensionMismatchError{Op: "difference", A: pre.Grid, B: post.Grid}
	}

	out := FloatRaster{
		Grid:   pre.Grid,
		Values: make([]float64, pre.Grid.Pixels()),
		Valid:  make([]bool, pre.Grid.Pixels()),
	}
	for i := range out.Values {
		if !pre.Valid[i] || !post.Valid[i] {
			continue
		}
		out.Values[i] = (pre.Values[i] - post.Values[i]) * scaleFactor
		out.Valid[i] = true
	}
	return out, nil
}

// Classify buckets a scaled dNBR raster into the severity scale's ordered
// classes. Invalid pixels and values outside the scale range carry
// NoDataClass and stay invalid; no per-pixel condition ever aborts the
// operation.
func Classify(delta FloatRaster, scale SeverityScale) (ClassRaster, error) {
	if err := scale.Validate(); err != nil {
		return ClassRaster{}, err
	}

	out := ClassRaster{
		Grid:    delta.Grid,
		Classes: make([]uint8, delta.Grid.Pixels()),
		Valid:   make([]bool, delta.Grid.Pixels()),
		Scale:   scale,
	}
	for i := range out.Classes {
		out.Classes[i] = NoDataClass
		if !delta.Valid[i] {
			continue
		}
		if class, ok := scale.ClassIndex(delta.Values[i]); ok {
			out.Classes[i] = class
			out.Valid[i] = true
		}
	}
	return out, nil
}
