package domain

import "sort"

// MaskPolicy names the quality band and the bit positions that flag invalid
// pixels for one sensor. A bit position of -1 means the sensor's quality band
// does not carry that flag.
type MaskPolicy struct {
	QualityBand string
	CloudBit    int
	CirrusBit   int
	ShadowBit   int
	SnowBit     int
}

// Sensor maps a platform identifier to its NBR band names and mask policy.
type Sensor struct {
	ID        string
	NIRBand   string
	SWIR2Band string
	Policy    MaskPolicy
}

// sensors is the registry of supported platforms. Adding a sensor means
// adding an entry here; no pipeline code branches on sensor identity.
var sensors = map[string]Sensor{
	"sentinel2": {
		ID:        "sentinel2",
		NIRBand:   "B8",
		SWIR2Band: "B12",
		Policy: MaskPolicy{
			QualityBand: "QA60",
			CloudBit:    10,
			CirrusBit:   11,
			ShadowBit:   -1,
			SnowBit:     -1,
		},
	},
	"landsat8": {
		ID:        "landsat8",
		NIRBand:   "B5",
		SWIR2Band: "B7",
		Policy: MaskPolicy{
			QualityBand: "pixel_qa",
			CloudBit:    5,
			CirrusBit:   -1,
			ShadowBit:   3,
			SnowBit:     4,
		},
	},
}

// LookupSensor resolves a sensor id, returning InvalidConfigurationError for
// unknown platforms.
func LookupSensor(id string) (Sensor, error) {
	s, ok := sensors[id]
	if !ok {
		return Sensor{}, invalidConfigf("unknown sensor %q (supported: %v)", id, SensorIDs())
	}
	return s, nil
}

// SensorIDs returns the supported sensor identifiers in sorted order.
func SensorIDs() []string {
	ids := make([]string, 0, len(sensors))
	for id := range sensors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
