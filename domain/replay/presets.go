package replay

import (
	"fmt"
	"sort"
)

// Buffer length bounds accepted by OBS
const (
	MinBufferSeconds = 1
	MaxBufferSeconds = 21600
)

// DefaultPresetSeconds are the segment lengths offered when none are configured
var DefaultPresetSeconds = []int{15, 30, 60, 300, 900, 1800}

// Presets is a validated, ascending list of segment lengths in seconds
type Presets struct {
	values []int
}

// NewPresets validates values against [min, max] and returns them sorted.
// Duplicates and out of range values are rejected.
func NewPresets(values []int, min, max int) (Presets, error) {
	if min < 1 || max < min {
		return Presets{}, fmt.Errorf("invalid preset bounds [%d, %d]", min, max)
	}
	if len(values) == 0 {
		return Presets{}, fmt.Errorf("at least one preset is required")
	}

	sorted := append([]int(nil), values...)
	sort.Ints(sorted)

	for i, v := range sorted {
		if v < min || v > max {
			return Presets{}, fmt.Errorf("preset %d seconds is outside [%d, %d]", v, min, max)
		}
		if i > 0 && sorted[i-1] == v {
			return Presets{}, fmt.Errorf("duplicate preset %d seconds", v)
		}
	}

	return Presets{values: sorted}, nil
}

// DefaultPresets returns the built-in preset list
func DefaultPresets() Presets {
	p, _ := NewPresets(DefaultPresetSeconds, MinBufferSeconds, MaxBufferSeconds)
	return p
}

// Values returns a copy of the presets in ascending order
func (p Presets) Values() []int {
	return append([]int(nil), p.values...)
}

// Len returns the number of presets
func (p Presets) Len() int {
	return len(p.values)
}

// At returns the preset at the 1-based position n
func (p Presets) At(n int) (int, error) {
	if n < 1 || n > len(p.values) {
		return 0, fmt.Errorf("%w: position %d of %d", ErrPresetNotFound, n, len(p.values))
	}
	return p.values[n-1], nil
}
