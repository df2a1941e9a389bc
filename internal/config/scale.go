package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/burn-severity-etl/internal/domain"
)

// LoadSeverityScale reads a severity-scale override from a YAML file. An
// empty path selects the built-in scale. The file carries the same shape as
// domain.SeverityScale:
//
//	boundaries: [-1000, -251, -101, 99, 269, 439, 659, 2000]
//	classes:
//	  - label: Enhanced Regrowth (High)
//	    color: "#7a8737"
//	  ...
func LoadSeverityScale(path string) (domain.SeverityScale, error) {
	if path == "" {
		return domain.DefaultSeverityScale(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.SeverityScale{}, fmt.Errorf("read severity scale: %w", err)
	}

	var scale domain.SeverityScale
	if err := yaml.Unmarshal(data, &scale); err != nil {
		return domain.SeverityScale{}, fmt.Errorf("parse severity scale %s: %w", path, err)
	}
	if err := scale.Validate(); err != nil {
		return domain.SeverityScale{}, fmt.Errorf("severity scale %s: %w", path, err)
	}
	return scale, nil
}
