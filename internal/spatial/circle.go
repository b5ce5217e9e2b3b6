// internal/spatial/circle.go

package spatial

// Circle is a round capture area around a point.
type Circle struct {
	Center Point
	Radius float64
}

// Contains reports whether p lies within the circle, boundary included.
func (c Circle) Contains(p Point) bool {
	dx := p.X - c.Center.X
	dy := p.Y - c.Center.Y
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

// FirstWithin returns the index of the first point inside c, in slice order.
func FirstWithin(points []Point, c Circle) (int, bool) {
	for i, p := range points {
		if c.Contains(p) {
			return i, true
		}
	}
	return -1, false
}
