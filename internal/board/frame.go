package board

import (
	"defense-planner/internal/formation"
	"defense-planner/internal/interpolation"
	"defense-planner/internal/palette"
	"defense-planner/internal/sector"
	"defense-planner/internal/spatial"
)

// Frame is everything a renderer needs after one update.
type Frame struct {
	Ball     spatial.Point           `json:"ball"`
	Attack   sector.Arc              `json:"attack"`
	Players  []PlayerState           `json:"players"`
	Zones    []formation.Zone        `json:"zones"`
	Markers  []Marker                `json:"markers"`
	Triangle *interpolation.Triangle `json:"triangle,omitempty"`
	// Snapped is the formation the board is locked onto, if any.
	Snapped *int   `json:"snapped,omitempty"`
	Mode    string `json:"mode"`
}

type PlayerState struct {
	Index   int               `json:"index"`
	Name    string            `json:"name"`
	Center  spatial.Point     `json:"center"`
	Sectors []NamedArc        `json:"sectors"`
	Shadow  *sector.ShadowArc `json:"shadow,omitempty"`
	// InZone is true when the player stands in one of its live zones.
	InZone bool `json:"in_zone"`
}

// NamedArc is one preset sector of a player.
type NamedArc struct {
	Preset string        `json:"preset"`
	Color  palette.Color `json:"color"`
	sector.Arc
	Outline spatial.Polygon      `json:"outline,omitempty"`
	Bounds  *spatial.BoundingBox `json:"bounds,omitempty"`
}

// Marker is a saved formation's ball position drawn on the court.
type Marker struct {
	Index int           `json:"index"`
	Name  string        `json:"name"`
	Ball  spatial.Point `json:"ball"`
}

// MeshPart is a triangulated sector for fill-only renderers.
type MeshPart struct {
	Owner     string            `json:"owner"` // player name, or "ball"
	Kind      string            `json:"kind"`  // preset name, "shadow" or "attack"
	Color     palette.Color     `json:"color"`
	Triangles []sector.Triangle `json:"triangles"`
}
