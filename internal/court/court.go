// Package court describes the volleyball court in pixel space.
package court

import (
	"fmt"

	"defense-planner/internal/spatial"
)

// DefaultScale is the number of pixels per meter.
const DefaultScale = 30.0

// Court holds the pixel geometry of a court drawn with the attacking half
// on top and the net as a horizontal line.
type Court struct {
	Scale    float64 // pixels per meter
	Width    float64 // px
	Length   float64 // px
	NetY     float64 // px
	Overhang float64 // px the net extends past each sideline
}

// New returns a court of widthM x lengthM meters at the given scale.
func New(scale, widthM, lengthM, overhang float64) Court {
	return Court{
		Scale:    scale,
		Width:    widthM * scale,
		Length:   lengthM * scale,
		NetY:     lengthM * scale / 2,
		Overhang: overhang,
	}
}

// Standard is the regulation 9 x 18 m court at 30 px/m.
func Standard() Court { return New(DefaultScale, 9, 18, 20) }

// AttackLineY is 3 m in front of the net on the attacking side.
func (c Court) AttackLineY() float64 { return c.NetY - c.Pixels(3) }

// DefenseLineY is 3 m behind the net on the defending side.
func (c Court) DefenseLineY() float64 { return c.NetY + c.Pixels(3) }

// Layout is the static court drawing a renderer needs, in pixels.
type Layout struct {
	Scale        float64 `json:"scale"`
	Width        float64 `json:"width"`
	Length       float64 `json:"length"`
	Overhang     float64 `json:"overhang"`
	NetY         float64 `json:"net_y"`
	AttackLineY  float64 `json:"attack_line_y"`
	DefenseLineY float64 `json:"defense_line_y"`
}

func (c Court) Layout() Layout {
	return Layout{
		Scale:        c.Scale,
		Width:        c.Width,
		Length:       c.Length,
		Overhang:     c.Overhang,
		NetY:         c.NetY,
		AttackLineY:  c.AttackLineY(),
		DefenseLineY: c.DefenseLineY(),
	}
}

// LeftPost and RightPost are where the net meets the sidelines.
func (c Court) LeftPost() spatial.Point  { return spatial.Pt(0, c.NetY) }
func (c Court) RightPost() spatial.Point { return spatial.Pt(c.Width, c.NetY) }

// BallBoundary keeps the ball in the attacking half.
func (c Court) BallBoundary() spatial.Rect {
	return spatial.R(0, 0, c.Width, c.Length/2)
}

// PlayerBoundary keeps defenders in the defending half, net overhang
// included.
func (c Court) PlayerBoundary() spatial.Rect {
	return spatial.R(-c.Overhang, c.NetY, c.Width+2*c.Overhang, c.Length-c.NetY)
}

// ToMeters converts a pixel position into meters.
func (c Court) ToMeters(p spatial.Point) spatial.Point { return p.Scale(1 / c.Scale) }

// ToPixels converts a position in meters into pixels.
func (c Court) ToPixels(p spatial.Point) spatial.Point { return p.Scale(c.Scale) }

// Pixels converts a length in meters into pixels.
func (c Court) Pixels(m float64) float64 { return m * c.Scale }

// SuggestName proposes a formation name from the ball position.
func (c Court) SuggestName(ball spatial.Point) string {
	m := c.ToMeters(ball)
	return fmt.Sprintf("Ball (%.1fm/%.1fm)", m.X, m.Y)
}
