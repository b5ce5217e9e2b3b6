// internal/interpolation/engine.go

package interpolation

import (
	"fmt"

	"defense-planner/internal/formation"
	"defense-planner/internal/spatial"
)

// Mode selects the interpolation strategy.
type Mode string

const (
	ModeTriangle Mode = "triangle"
	ModeNearest  Mode = "nearest"
)

// ParseMode accepts "triangle", "nearest" or "" (triangle).
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeTriangle:
		return ModeTriangle, nil
	case ModeNearest:
		return ModeNearest, nil
	}
	return "", fmt.Errorf("unknown interpolation mode %q", s)
}

// Engine caches the triangles of a formation set. Call Rebuild after every
// change to the formations.
type Engine struct {
	mode       Mode
	k          int
	formations []formation.Formation
	triangles  []Triangle
}

// NewEngine returns an engine; k is the neighbor count for ModeNearest.
func NewEngine(mode Mode, k int) *Engine {
	if k < 1 {
		k = 3
	}
	return &Engine{mode: mode, k: k}
}

func (e *Engine) Mode() Mode { return e.mode }

// Rebuild takes a snapshot of fs and regenerates the triangles.
func (e *Engine) Rebuild(fs []formation.Formation) {
	e.formations = make([]formation.Formation, len(fs))
	for i, f := range fs {
		e.formations[i] = f.Clone()
	}
	e.triangles = Rebuild(e.formations)
}

// Interpolate runs the configured strategy.
func (e *Engine) Interpolate(ball spatial.Point) (Result, bool) {
	if e.mode == ModeNearest {
		return NearestWeighted(ball, e.formations, e.k)
	}
	return Interpolate(ball, e.triangles)
}

// SnapTarget is FindSnapTarget over the engine's snapshot.
func (e *Engine) SnapTarget(ball spatial.Point, radius float64) (int, bool) {
	return FindSnapTarget(ball, e.formations, radius)
}
