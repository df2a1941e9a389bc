package domain

// Mosaic reduces an epoch's collection into one composite, first-valid-wins:
// scenes are scanned earliest-first and each pixel takes the band values of
// the first scene whose validity plane keeps it. validity[i] is the keep-mask
// for c.Scenes[i] as produced by ComposeMask. Pixels outside the area of
// interest, and pixels no scene observed cleanly, are no-data.
//
// The scan order is fixed by the collection's acquisition ordering, so the
// composite is bit-identical across repeated runs of the same input.
func Mosaic(c ImageCollection, validity [][]bool, aoi AreaOfInterest) (MaskedRaster, error) {
	if c.Empty() {
		return MaskedRaster{}, &EmptyCollectionError{Epoch: c.Epoch, Sensor: c.Sensor, Start: c.Start, End: c.End}
	}
	if len(validity) != len(c.Scenes) {
		return MaskedRaster{}, invalidConfigf("mosaic: %d validity planes for %d scenes", len(validity), len(c.Scenes))
	}

	grid := c.Scenes[0].Grid
	for _, s := range c.Scenes[1:] {
		if !s.Grid.Equal(grid) {
			return MaskedRaster{}, &DimensionMismatchError{Op: "mosaic", A: grid, B: s.Grid}
		}
	}

	bandNames := make([]string, 0, len(c.Scenes[0].Bands))
	for name := range c.Scenes[0].Bands {
		bandNames = append(bandNames, name)
	}
	for _, s := range c.Scenes {
		for _, name := range bandNames {
			if len(s.Bands[name]) != grid.Pixels() {
				return MaskedRaster{}, invalidConfigf("mosaic: scene %s is missing band %q", s.ID, name)
			}
		}
	}

	out := MaskedRaster{
		Grid:  grid,
		Bands: make(map[string][]float64, len(bandNames)),
		Valid: make([]bool, grid.Pixels()),
	}
	for _, name := range bandNames {
		out.Bands[name] = make([]float64, grid.Pixels())
	}

	clip := aoi.ClipMask(grid)

	for i := 0; i < grid.Pixels(); i++ {
		if !clip[i] {
			continue
		}
		for s := range c.Scenes {
			if !validity[s][i] {
				continue
			}
			for _, name := range bandNames {
				out.Bands[name][i] = c.Scenes[s].Bands[name][i]
			}
			out.Valid[i] = true
			break
		}
	}

	return out, nil
}
