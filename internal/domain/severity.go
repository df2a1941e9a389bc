package domain

// SeverityClass labels one classification interval for display.
type SeverityClass struct {
	Label string `json:"label" yaml:"label"`
	Color string `json:"color" yaml:"color"` // hex RGB for map legends
}

// SeverityScale partitions the dNBR range into ordered classes. Boundaries
// are strictly increasing; k boundaries define k-1 left-inclusive,
// right-exclusive intervals, one per class. The scale is defined once as
// configuration and read-only thereafter.
type SeverityScale struct {
	Boundaries []float64       `json:"boundaries" yaml:"boundaries"`
	Classes    []SeverityClass `json:"classes" yaml:"classes"`
}

// DefaultSeverityScale returns the USGS/UNOOSA dNBR scale.
func DefaultSeverityScale() SeverityScale {
	return SeverityScale{
		Boundaries: []float64{-1000, -251, -101, 99, 269, 439, 659, 2000},
		Classes: []SeverityClass{
			{Label: "Enhanced Regrowth (High)", Color: "#7a8737"},
			{Label: "Enhanced Regrowth (Low)", Color: "#acbe4d"},
			{Label: "Unburned", Color: "#0ae042"},
			{Label: "Low Severity", Color: "#fff70b"},
			{Label: "Moderate-Low Severity", Color: "#ffaf38"},
			{Label: "Moderate-High Severity", Color: "#ff641b"},
			{Label: "High Severity", Color: "#a41fd6"},
		},
	}
}

// Validate checks the scale invariants: at least two boundaries, strictly
// increasing, and one class per interval.
func (s SeverityScale) Validate() error {
	if len(s.Boundaries) < 2 {
		return invalidConfigf("severity scale needs at least 2 boundaries, got %d", len(s.Boundaries))
	}
	for i := 1; i < len(s.Boundaries); i++ {
		if s.Boundaries[i] <= s.Boundaries[i-1] {
			return invalidConfigf("severity scale boundaries must be strictly increasing: %v <= %v at position %d",
				s.Boundaries[i], s.Boundaries[i-1], i)
		}
	}
	if len(s.Classes) != len(s.Boundaries)-1 {
		return invalidConfigf("severity scale has %d boundaries but %d classes, want %d",
			len(s.Boundaries), len(s.Classes), len(s.Boundaries)-1)
	}
	// Class indices are stored as uint8 with 255 reserved for no-data.
	if len(s.Classes) > 255 {
		return invalidConfigf("severity scale has %d classes, at most 255 are supported", len(s.Classes))
	}
	return nil
}

// ClassIndex buckets one value: the class i such that
// Boundaries[i] <= v < Boundaries[i+1]. A value exactly on a boundary falls
// into the higher-severity side. Values below the first boundary or at or
// above the last are outside the measurement scale; ok is false for those.
func (s SeverityScale) ClassIndex(v float64) (uint8, bool) {
	n := 0
	for _, t := range s.Boundaries {
		if t > v {
			break
		}
		n++
	}
	if n == 0 || n == len(s.Boundaries) {
		return 0, false
	}
	return uint8(n - 1), true
}
