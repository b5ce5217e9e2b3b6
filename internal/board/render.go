package board

import (
	"defense-planner/internal/formation"
	"defense-planner/internal/palette"
	"defense-planner/internal/sector"
	"defense-planner/internal/spatial"
)

// Frame derives sectors, shadows, the attack cone and zone status from the
// current positions.
func (b *Board) Frame() Frame {
	c := b.settings.Court
	f := Frame{
		Ball:     b.ball,
		Attack:   sector.Attack(b.ball, c),
		Players:  make([]PlayerState, len(b.players)),
		Zones:    append([]formation.Zone{}, b.zones...),
		Markers:  []Marker{},
		Triangle: b.triangle,
		Mode:     string(b.engine.Mode()),
	}
	if b.snapped >= 0 {
		i := b.snapped
		f.Snapped = &i
	}

	for i, p := range b.players {
		ps := PlayerState{Index: i, Name: p.name, Center: p.center, InZone: b.inZone(i, p.center)}
		for _, name := range sector.PresetNames {
			params, ok := p.presets[name]
			if !ok {
				continue
			}
			arc := sector.Compute(p.center, b.ball, params, c)
			na := NamedArc{Preset: name, Color: params.Color, Arc: arc}
			if b.settings.OutlineSegments > 0 {
				na.Outline = arc.Polygon(b.settings.OutlineSegments)
				bb := na.Outline.Bounds()
				na.Bounds = &bb
			}
			ps.Sectors = append(ps.Sectors, na)
		}
		if sh, ok := sector.Shadow(b.ball, p.center, b.settings.Shadow); ok {
			ps.Shadow = &sh
		}
		f.Players[i] = ps
	}

	for i, fm := range b.store.List() {
		f.Markers = append(f.Markers, Marker{Index: i, Name: fm.Name, Ball: fm.Ball})
	}
	return f
}

func (b *Board) inZone(player int, center spatial.Point) bool {
	for _, z := range b.zones {
		if z.PlayerIndex == player && z.Rect.Contains(center) {
			return true
		}
	}
	return false
}

// Meshes triangulates every visible sector of the current frame.
func (b *Board) Meshes(segments int) ([]MeshPart, error) {
	f := b.Frame()
	var parts []MeshPart

	add := func(owner, kind string, col palette.Color, arc sector.Arc) error {
		if arc.Empty() {
			return nil
		}
		tris, err := arc.Mesh(segments)
		if err != nil {
			return err
		}
		parts = append(parts, MeshPart{Owner: owner, Kind: kind, Color: col, Triangles: tris})
		return nil
	}

	if err := add("ball", "attack", palette.AttackRed, f.Attack); err != nil {
		return nil, err
	}
	for _, p := range f.Players {
		for _, s := range p.Sectors {
			if err := add(p.Name, s.Preset, s.Color, s.Arc); err != nil {
				return nil, err
			}
		}
		if p.Shadow != nil {
			if err := add(p.Name, "shadow", palette.ShadowGreen, p.Shadow.Arc); err != nil {
				return nil, err
			}
		}
	}
	return parts, nil
}
