// Package palette holds the display colors carried by sectors and zones.
// The engine never interprets them; they travel to the renderer as-is.
package palette

import (
	"encoding/json"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an 8-bit RGBA color encoded as [r, g, b, a] in JSON.
type Color color.RGBA

// RGBA builds a Color from components.
func RGBA(r, g, b, a uint8) Color { return Color{R: r, G: g, B: b, A: a} }

// Hex formats the color as #rrggbbaa.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// ParseHex accepts #rgb, #rrggbb and #rrggbbaa. Colors without an alpha
// component are opaque.
func ParseHex(s string) (Color, error) {
	s = strings.TrimSpace(s)
	alpha := uint8(255)
	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("palette: bad alpha in %q: %w", s, err)
		}
		alpha = uint8(a)
		s = s[:7]
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("palette: %w", err)
	}
	r, g, b := c.RGB255()
	return Color{R: r, G: g, B: b, A: alpha}, nil
}

// MarshalJSON encodes the color as [r, g, b, a].
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]uint8{c.R, c.G, c.B, c.A})
}

// UnmarshalJSON accepts [r, g, b, a] or [r, g, b].
func (c *Color) UnmarshalJSON(data []byte) error {
	var v []int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("color: %w", err)
	}
	if len(v) != 3 && len(v) != 4 {
		return fmt.Errorf("color: want 3 or 4 components, got %d", len(v))
	}
	for _, x := range v {
		if x < 0 || x > 255 {
			return fmt.Errorf("color: component %d out of range", x)
		}
	}
	*c = Color{R: uint8(v[0]), G: uint8(v[1]), B: uint8(v[2]), A: 255}
	if len(v) == 4 {
		c.A = uint8(v[3])
	}
	return nil
}

// Stock colors of the planner.
var (
	SectorGreen = RGBA(0, 255, 0, 100)
	ShadowGreen = RGBA(0, 255, 0, 128)
	AttackRed   = RGBA(255, 0, 0, 255)
	MarkerRed   = RGBA(255, 0, 0, 255)
	ZoneBlue    = RGBA(0, 120, 255, 80)
)
