package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSeverityScale(t *testing.T) {
	scale := DefaultSeverityScale()

	require.NoError(t, scale.Validate())
	assert.Len(t, scale.Boundaries, 8)
	assert.Len(t, scale.Classes, 7)
	assert.Equal(t, "Unburned", scale.Classes[2].Label)
}

func TestSeverityScale_ClassIndex(t *testing.T) {
	scale := DefaultSeverityScale()

	tests := []struct {
		name  string
		value float64
		class uint8
		ok    bool
	}{
		{"exactly on boundary goes to higher class", 99, 3, true},
		{"just under boundary stays unburned", 98.999, 2, true},
		{"high severity range", 666.7, 6, true},
		{"lowest boundary is inclusive", -1000, 0, true},
		{"negative regrowth", -150, 1, true},
		{"below scale range", -1500, 0, false},
		{"at upper scale limit", 2000, 0, false},
		{"above scale range", 5000, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			class, ok := scale.ClassIndex(tt.value)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.class, class)
			}
		})
	}
}

func TestSeverityScale_Validate(t *testing.T) {
	t.Run("non-monotonic boundaries", func(t *testing.T) {
		scale := SeverityScale{
			Boundaries: []float64{0, 100, 50},
			Classes:    []SeverityClass{{Label: "a"}, {Label: "b"}},
		}
		err := scale.Validate()

		require.Error(t, err)
		var cfgErr *InvalidConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Contains(t, err.Error(), "strictly increasing")
	})

	t.Run("duplicate boundary", func(t *testing.T) {
		scale := SeverityScale{
			Boundaries: []float64{0, 100, 100},
			Classes:    []SeverityClass{{Label: "a"}, {Label: "b"}},
		}
		require.Error(t, scale.Validate())
	})

	t.Run("too few boundaries", func(t *testing.T) {
		scale := SeverityScale{Boundaries: []float64{0}}
		require.Error(t, scale.Validate())
	})

	t.Run("class count mismatch", func(t *testing.T) {
		scale := SeverityScale{
			Boundaries: []float64{0, 100, 200},
			Classes:    []SeverityClass{{Label: "only one"}},
		}
		err := scale.Validate()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "classes")
	})

	t.Run("more classes than a uint8 index can hold", func(t *testing.T) {
		scale := wideScale(300)
		err := scale.Validate()

		require.Error(t, err)
		var cfgErr *InvalidConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Contains(t, err.Error(), "at most 255")
	})

	t.Run("255 classes keeps the no-data value distinct", func(t *testing.T) {
		scale := wideScale(255)
		require.NoError(t, scale.Validate())

		class, ok := scale.ClassIndex(254.5)
		require.True(t, ok)
		assert.Equal(t, uint8(254), class)
		assert.NotEqual(t, NoDataClass, class)
	})
}

// wideScale builds a scale of n unit-wide classes starting at 0.
func wideScale(n int) SeverityScale {
	boundaries := make([]float64, n+1)
	classes := make([]SeverityClass, n)
	for i := range boundaries {
		boundaries[i] = float64(i)
	}
	for i := range classes {
		classes[i] = SeverityClass{Label: "a"}
	}
	return SeverityScale{Boundaries: boundaries, Classes: classes}
}
