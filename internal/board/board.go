// Package board is the live planning board: one ball, a roster of
// defenders and everything derived from their positions.
package board

import (
	"context"
	"errors"
	"fmt"

	"defense-planner/internal/court"
	"defense-planner/internal/formation"
	"defense-planner/internal/interpolation"
	"defense-planner/internal/palette"
	"defense-planner/internal/sector"
	"defense-planner/internal/spatial"
)

var ErrPlayerIndex = errors.New("player index out of range")

// Settings are fixed for the board's lifetime.
type Settings struct {
	Court        court.Court
	BallRadius   float64
	PlayerRadius float64
	SnapRadius   float64
	Presets      sector.Presets
	Shadow       sector.ShadowParams
	// OutlineSegments > 0 adds polygon outlines to every player sector.
	OutlineSegments int
}

type player struct {
	name    string
	center  spatial.Point
	presets sector.Presets
}

// Board is not safe for concurrent use.
type Board struct {
	settings Settings
	store    *formation.Store
	engine   *interpolation.Engine

	ball     spatial.Point
	players  []player
	zones    []formation.Zone
	triangle *interpolation.Triangle
	snapped  int
}

// New places the ball and players at their start positions and subscribes
// to store so the triangulation follows every change.
func New(s Settings, store *formation.Store, engine *interpolation.Engine, ball spatial.Point, starts []spatial.Point, names []string) *Board {
	b := &Board{
		settings: s,
		store:    store,
		engine:   engine,
		ball:     ball,
		players:  make([]player, len(starts)),
		zones:    []formation.Zone{},
		snapped:  -1,
	}
	for i, c := range starts {
		name := fmt.Sprintf("D%d", i+1)
		if i < len(names) && names[i] != "" {
			name = names[i]
		}
		b.players[i] = player{name: name, center: c, presets: s.Presets.Clone()}
	}
	store.Subscribe(b.onStoreChange)
	engine.Rebuild(store.List())
	return b
}

func (b *Board) onStoreChange(c formation.Change) {
	b.engine.Rebuild(b.store.List())
	b.triangle = nil

	switch c.Op {
	case formation.OpReplaced:
		b.snapped = -1
	case formation.OpDeleted:
		if b.snapped == c.Index {
			b.snapped = -1
		} else if b.snapped > c.Index {
			b.snapped--
		}
	case formation.OpZoneAdded, formation.OpZoneDeleted, formation.OpUpdated:
		if b.snapped == c.Index {
			b.zones = append([]formation.Zone{}, c.Formation.Zones...)
		}
	}
}

func (b *Board) ballSize() spatial.Size {
	return spatial.Size{W: 2 * b.settings.BallRadius, H: 2 * b.settings.BallRadius}
}

func (b *Board) playerSize() spatial.Size {
	return spatial.Size{W: 2 * b.settings.PlayerRadius, H: 2 * b.settings.PlayerRadius}
}

// MoveBall drags the ball to center. The position is clamped to the
// attacking half first; players then follow the interpolation, and a saved
// formation within the snap radius overrides it.
func (b *Board) MoveBall(center spatial.Point) Frame {
	b.ball = spatial.ClampCenter(center, b.ballSize(), b.settings.Court.BallBoundary())

	if res, ok := b.engine.Interpolate(b.ball); ok {
		b.placePlayers(res.Positions(b.ball))
		b.triangle = res.Triangle
	} else {
		b.triangle = nil
	}

	b.snapped = -1
	if i, ok := b.engine.SnapTarget(b.ball, b.settings.SnapRadius); ok {
		if f, err := b.store.Get(i); err == nil {
			b.lockOnto(i, f)
		}
	}
	return b.Frame()
}

// MovePlayer drags player i to center, clamped to the defending half.
func (b *Board) MovePlayer(i int, center spatial.Point) (Frame, error) {
	if err := b.checkPlayer(i); err != nil {
		return Frame{}, err
	}
	b.players[i].center = spatial.ClampCenter(center, b.playerSize(), b.settings.Court.PlayerBoundary())
	return b.Frame(), nil
}

// Recall jumps to saved formation i.
func (b *Board) Recall(i int) (Frame, error) {
	f, err := b.store.Get(i)
	if err != nil {
		return Frame{}, err
	}
	b.lockOnto(i, f)
	if res, ok := b.engine.Interpolate(b.ball); ok {
		b.triangle = res.Triangle
	} else {
		b.triangle = nil
	}
	return b.Frame(), nil
}

func (b *Board) lockOnto(i int, f formation.Formation) {
	b.ball = f.Ball
	b.placePlayers(f.Positions())
	b.zones = append([]formation.Zone{}, f.Zones...)
	b.snapped = i
}

// placePlayers moves players to centers; players past the end keep their
// position.
func (b *Board) placePlayers(centers []spatial.Point) {
	for i, c := range centers {
		if i >= len(b.players) {
			break
		}
		b.players[i].center = c
	}
}

// Capture saves the live board as a new formation. An empty name gets one
// derived from the ball position.
func (b *Board) Capture(ctx context.Context, name string) (int, error) {
	if name == "" {
		name = b.settings.Court.SuggestName(b.ball)
	}
	f := formation.Capture(name, b.ball, b.centers(), b.zones)
	i, err := b.store.Add(ctx, f)
	if err != nil && !errors.Is(err, formation.ErrPersist) {
		return -1, err
	}
	b.snapped = i
	return i, err
}

// Court returns the static court drawing.
func (b *Board) Court() court.Layout { return b.settings.Court.Layout() }

// ApplyTeam relabels the roster; extra names are ignored.
func (b *Board) ApplyTeam(names []string) Frame {
	for i, n := range names {
		if i >= len(b.players) {
			break
		}
		b.players[i].name = n
	}
	return b.Frame()
}

// SetSectorParams changes one preset of player i.
func (b *Board) SetSectorParams(i int, preset string, p sector.Params) (Frame, error) {
	if err := b.checkPlayer(i); err != nil {
		return Frame{}, err
	}
	if p.Color == (palette.Color{}) {
		if cur, ok := b.players[i].presets[preset]; ok {
			p.Color = cur.Color
		}
	}
	if err := b.players[i].presets.Set(preset, p); err != nil {
		return Frame{}, err
	}
	return b.Frame(), nil
}

// AddZone adds a live zone. It is stored with the next capture.
func (b *Board) AddZone(z formation.Zone) (Frame, error) {
	if err := b.checkPlayer(z.PlayerIndex); err != nil {
		return Frame{}, err
	}
	b.zones = append(b.zones, z)
	return b.Frame(), nil
}

// ClearZones drops all live zones.
func (b *Board) ClearZones() Frame {
	b.zones = []formation.Zone{}
	return b.Frame()
}

func (b *Board) centers() []spatial.Point {
	out := make([]spatial.Point, len(b.players))
	for i, p := range b.players {
		out[i] = p.center
	}
	return out
}

func (b *Board) checkPlayer(i int) error {
	if i < 0 || i >= len(b.players) {
		return fmt.Errorf("%w: %d (have %d)", ErrPlayerIndex, i, len(b.players))
	}
	return nil
}
