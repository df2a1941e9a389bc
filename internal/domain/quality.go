package domain

import "fmt"

// QualityFlags is the decoded form of one pixel's quality word. Masking
// logic tests these fields instead of re-running bit arithmetic per stage.
type QualityFlags struct {
	Cloud  bool
	Cirrus bool
	Shadow bool
	Snow   bool
}

// Clear reports whether no invalidating flag is set.
func (f QualityFlags) Clear() bool {
	return !f.Cloud && !f.Cirrus && !f.Shadow && !f.Snow
}

// DecodeQualityFlags extracts the policy's configured bits from one quality
// word. Bits the policy marks absent (-1) decode as unset.
func DecodeQualityFlags(word uint32, p MaskPolicy) QualityFlags {
	bit := func(pos int) bool {
		return pos >= 0 && word&(1<<uint(pos)) != 0
	}
	return QualityFlags{
		Cloud:  bit(p.CloudBit),
		Cirrus: bit(p.CirrusBit),
		Shadow: bit(p.ShadowBit),
		Snow:   bit(p.SnowBit),
	}
}

// CloudMasker produces a per-pixel validity plane for one scene. The default
// implementation tests quality-band bits; a higher-fidelity scoring
// collaborator can be substituted without touching downstream stages.
type CloudMasker interface {
	CloudMask(scene Scene) ([]bool, error)
}

// BitmaskCloudMasker implements CloudMasker with the sensor registry's
// quality-bit policy.
type BitmaskCloudMasker struct{}

// CloudMask marks a pixel valid when none of the scene sensor's configured
// quality flags are set.
func (BitmaskCloudMasker) CloudMask(scene Scene) ([]bool, error) {
	sensor, err := LookupSensor(scene.Sensor)
	if err != nil {
		return nil, err
	}
	if len(scene.Quality) != scene.Grid.Pixels() {
		return nil, fmt.Errorf("scene %s: quality plane has %d pixels, grid has %d",
			scene.ID, len(scene.Quality), scene.Grid.Pixels())
	}

	valid := make([]bool, len(scene.Quality))
	for i, word := range scene.Quality {
		valid[i] = DecodeQualityFlags(word, sensor.Policy).Clear()
	}
	return valid, nil
}
