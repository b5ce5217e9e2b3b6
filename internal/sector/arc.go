package sector

import (
	"math"

	"github.com/rclancey/earcut"

	"defense-planner/internal/spatial"
)

// Arc is a pie slice for a renderer. Angles are in degrees, 0 along +x and
// increasing counter-clockwise on screen (y grows downwards). A negative
// sweep runs clockwise.
type Arc struct {
	Center     spatial.Point `json:"center"`
	StartAngle float64       `json:"start_angle"`
	SweepAngle float64       `json:"sweep_angle"`
	Radius     float64       `json:"radius"`
}

// Triangle is one cell of a mesh.
type Triangle [3]spatial.Point

// PointAt returns the point on the arc's circle at angle deg.
func (a Arc) PointAt(deg float64) spatial.Point {
	rad := deg * math.Pi / 180
	return spatial.Point{
		X: a.Center.X + a.Radius*math.Cos(rad),
		Y: a.Center.Y - a.Radius*math.Sin(rad),
	}
}

// Empty reports whether the arc covers no area.
func (a Arc) Empty() bool { return a.Radius <= 0 || a.SweepAngle == 0 }

// Polygon approximates the slice with segments chords. The outline starts
// at the center unless the sweep covers the whole circle.
func (a Arc) Polygon(segments int) spatial.Polygon {
	if segments < 1 {
		segments = 1
	}
	if math.Abs(a.SweepAngle) >= 360 {
		poly := make(spatial.Polygon, 0, segments)
		for i := 0; i < segments; i++ {
			poly = append(poly, a.PointAt(a.StartAngle+360*float64(i)/float64(segments)))
		}
		return poly
	}
	poly := make(spatial.Polygon, 0, segments+2)
	poly = append(poly, a.Center)
	for i := 0; i <= segments; i++ {
		poly = append(poly, a.PointAt(a.StartAngle+a.SweepAngle*float64(i)/float64(segments)))
	}
	return poly
}

// Mesh triangulates Polygon(segments) for renderers that only fill
// triangles.
func (a Arc) Mesh(segments int) ([]Triangle, error) {
	if a.Empty() {
		return nil, ErrEmptyArc
	}
	return triangulate(a.Polygon(segments))
}

func triangulate(poly spatial.Polygon) ([]Triangle, error) {
	if len(poly) < 3 {
		return nil, ErrEmptyArc
	}

	// earcut wants [x0, y0, x1, y1, ...].
	coords := make([]float64, len(poly)*2)
	for i, p := range poly {
		coords[i*2] = p.X
		coords[i*2+1] = p.Y
	}

	indices, err := earcut.Earcut(coords, nil, 2)
	if err != nil {
		return nil, err
	}

	tris := make([]Triangle, 0, len(indices)/3)
	for i := 0; i+2 < len(indices); i += 3 {
		tris = append(tris, Triangle{poly[indices[i]], poly[indices[i+1]], poly[indices[i+2]]})
	}
	return tris, nil
}
