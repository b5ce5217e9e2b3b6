// internal/interpolation/snap.go

package interpolation

import (
	"defense-planner/internal/formation"
	"defense-planner/internal/spatial"
)

// DefaultSnapRadius is how close, in pixels, the ball must come to a saved
// ball position to lock onto that formation.
const DefaultSnapRadius = 10.0

// FindSnapTarget returns the first formation, in store order, whose ball
// lies within radius of ball. The first match wins even if a later one is
// closer.
func FindSnapTarget(ball spatial.Point, fs []formation.Formation, radius float64) (int, bool) {
	balls := make([]spatial.Point, len(fs))
	for i, f := range fs {
		balls[i] = f.Ball
	}
	return spatial.FirstWithin(balls, spatial.Circle{Center: ball, Radius: radius})
}
