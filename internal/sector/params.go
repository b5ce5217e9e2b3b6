package sector

import (
	"fmt"

	"defense-planner/internal/palette"
)

// Params configure an action sector around a player.
type Params struct {
	MaxRadiusMeters float64       `json:"max_radius_meters" yaml:"max_radius_meters"`
	AngleWidth      float64       `json:"angle_width" yaml:"angle_width"`
	Backwards       bool          `json:"backwards" yaml:"backwards"`
	Color           palette.Color `json:"color" yaml:"-"`
}

// Validate checks angle_width in (0, 360] and a positive radius.
func (p Params) Validate() error {
	if p.AngleWidth <= 0 || p.AngleWidth > 360 {
		return fmt.Errorf("%w: angle_width %.2f not in (0, 360]", ErrInvalidParams, p.AngleWidth)
	}
	if p.MaxRadiusMeters <= 0 {
		return fmt.Errorf("%w: max_radius_meters %.2f must be positive", ErrInvalidParams, p.MaxRadiusMeters)
	}
	return nil
}

// Preset names of the per-player sectors, drawn back to front in this order.
const (
	Primary  = "primary"
	Wide     = "wide"
	Backward = "backward"
)

// PresetNames lists the presets every player carries.
var PresetNames = []string{Primary, Wide, Backward}

// Presets maps a preset name to its parameters.
type Presets map[string]Params

// DefaultPresets returns the stock primary, wide and backward cones.
func DefaultPresets() Presets {
	return Presets{
		Primary:  {MaxRadiusMeters: 6, AngleWidth: 35, Color: palette.SectorGreen},
		Wide:     {MaxRadiusMeters: 2, AngleWidth: 240, Color: palette.SectorGreen},
		Backward: {MaxRadiusMeters: 1, AngleWidth: 120, Backwards: true, Color: palette.SectorGreen},
	}
}

// Clone returns an independent copy.
func (ps Presets) Clone() Presets {
	out := make(Presets, len(ps))
	for k, v := range ps {
		out[k] = v
	}
	return out
}

// Set validates and stores params under name. The wide and backward cones
// are complementary: widening one narrows the other so that together they
// cover the full circle, as long as the remainder is a valid width.
func (ps Presets) Set(name string, p Params) error {
	if _, ok := ps[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	if err := p.Validate(); err != nil {
		return err
	}
	ps[name] = p
	if name == Wide {
		if back, ok := ps[Backward]; ok && p.AngleWidth < 360 {
			back.AngleWidth = 360 - p.AngleWidth
			ps[Backward] = back
		}
	}
	return nil
}
