// internal/spatial/utils.go

package spatial

import "math"

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// AngleTo returns the direction of to-from in degrees, in [0, 360).
// The y axis is flipped so that 0 points along +x and 90 points up the
// screen. Coincident points yield 0.
func AngleTo(from, to Point) float64 {
	dx := to.X - from.X
	dy := to.Y - from.Y
	a := math.Mod(-math.Atan2(dy, dx)*180/math.Pi, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 || a == 0 {
		return 0
	}
	return a
}

// NetIntersection returns where the segment anchor->target crosses the
// horizontal line y = netY. It reports false when both points lie strictly
// on the same side of the line. A segment lying on the line yields
// (anchor.X, netY).
func NetIntersection(anchor, target Point, netY float64) (Point, bool) {
	if (anchor.Y < netY && target.Y < netY) || (anchor.Y > netY && target.Y > netY) {
		return Point{}, false
	}
	dx := target.X - anchor.X
	dy := target.Y - anchor.Y
	if dy == 0 {
		return Point{X: anchor.X, Y: netY}, true
	}
	return Point{X: anchor.X + (netY-anchor.Y)*dx/dy, Y: netY}, true
}

// Clamp keeps the top-left corner pos of a box of the given size inside
// boundary so the whole box stays within it. When the box is larger than
// the boundary the corner pins to the boundary's top-left edge.
func Clamp(pos Point, size Size, boundary Rect) Point {
	maxX := boundary.X + boundary.W - size.W
	maxY := boundary.Y + boundary.H - size.H
	return Point{
		X: math.Max(boundary.X, math.Min(pos.X, maxX)),
		Y: math.Max(boundary.Y, math.Min(pos.Y, maxY)),
	}
}

// ClampCenter applies Clamp to a box addressed by its center.
func ClampCenter(center Point, size Size, boundary Rect) Point {
	half := Point{X: size.W / 2, Y: size.H / 2}
	return Clamp(center.Sub(half), size, boundary).Add(half)
}
