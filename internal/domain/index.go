package domain

// NormalizedDifference evaluates (A − B) / (A + B) per valid pixel,
// producing a single-band raster over the input geometry. Pixels invalid in
// the input stay invalid; pixels where A + B == 0 become invalid so a
// division by zero never leaks NaN or Inf into classification. The result is
// not clamped: values outside the nominal [-1, 1] range are preserved.
func NormalizedDifference(r MaskedRaster, bandA, bandB string) (FloatRaster, error) {
	a, ok := r.Band(bandA)
	if !ok {
		return FloatRaster{}, invalidConfigf("normalized difference: raster has no band %q", bandA)
	}
	b, ok := r.Band(bandB)
	if !ok {
		return FloatRaster{}, invalidConfigf("normalized difference: raster has no band %q", bandB)
	}

	out := FloatRaster{
		Grid:   r.Grid,
		Values: make([]float64, r.Grid.Pixels()),
		Valid:  make([]bool, r.Grid.Pixels()),
	}
	for i := range out.Values {
		if !r.Valid[i] {
			continue
		}
		sum := a[i] + b[i]
		if sum == 0 {
			continue
		}
		out.Values[i] = (a[i] - b[i]) / sum
		out.Valid[i] = true
	}
	return out, nil
}
