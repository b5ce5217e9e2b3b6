// Package formation holds saved defensive formations: a ball position,
// per-player offsets from it and acceptance zones.
package formation

import (
	"encoding/json"
	"fmt"

	"defense-planner/internal/palette"
	"defense-planner/internal/spatial"
)

// Zone is an area a player is expected to cover for a formation.
type Zone struct {
	PlayerIndex int           `json:"player_index"`
	Rect        spatial.Rect  `json:"rect"`
	Color       palette.Color `json:"color"`
}

// Formation is a named snapshot of the ball and the roster around it.
// Offsets are index-aligned with the roster: player = Ball + Offsets[i].
type Formation struct {
	Name    string          `json:"name"`
	Ball    spatial.Point   `json:"ball"`
	Offsets []spatial.Point `json:"offsets"`
	Zones   []Zone          `json:"zones"`
}

// UnmarshalJSON defaults missing zones to an empty list.
func (f *Formation) UnmarshalJSON(data []byte) error {
	type plain Formation
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Zones == nil {
		p.Zones = []Zone{}
	}
	if p.Offsets == nil {
		p.Offsets = []spatial.Point{}
	}
	*f = Formation(p)
	return nil
}

// Capture builds a formation from absolute positions.
func Capture(name string, ball spatial.Point, players []spatial.Point, zones []Zone) Formation {
	offsets := make([]spatial.Point, len(players))
	for i, p := range players {
		offsets[i] = p.Sub(ball)
	}
	return Formation{Name: name, Ball: ball, Offsets: offsets, Zones: cloneZones(zones)}
}

// Positions returns the absolute player positions.
func (f Formation) Positions() []spatial.Point {
	out := make([]spatial.Point, len(f.Offsets))
	for i, o := range f.Offsets {
		out[i] = f.Ball.Add(o)
	}
	return out
}

// Validate checks the record is usable: a name and zones that point at
// players in the roster.
func (f Formation) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidRecord)
	}
	for i, z := range f.Zones {
		if err := validateZone(z, len(f.Offsets)); err != nil {
			return fmt.Errorf("zone %d: %w", i, err)
		}
	}
	return nil
}

func validateZone(z Zone, players int) error {
	if z.PlayerIndex < 0 || z.PlayerIndex >= players {
		return fmt.Errorf("%w: player_index %d outside roster of %d", ErrInvalidRecord, z.PlayerIndex, players)
	}
	if z.Rect.W < 0 || z.Rect.H < 0 {
		return fmt.Errorf("%w: negative zone size", ErrInvalidRecord)
	}
	return nil
}

// Clone returns a deep copy.
func (f Formation) Clone() Formation {
	out := f
	out.Offsets = append([]spatial.Point{}, f.Offsets...)
	out.Zones = cloneZones(f.Zones)
	return out
}

func cloneZones(zs []Zone) []Zone {
	return append([]Zone{}, zs...)
}
