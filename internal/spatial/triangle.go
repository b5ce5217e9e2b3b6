// internal/spatial/triangle.go

package spatial

import "math"

// DegenerateEpsilon is the magnitude below which a triangle's signed
// double area is treated as zero.
const DegenerateEpsilon = 1e-10

// DegenerateWeights are returned by Barycentric for collinear triangles.
// They approximate an even split and do not reconstruct p.
var DegenerateWeights = [3]float64{0.33, 0.33, 0.34}

// PointInTriangle reports whether p lies inside triangle abc. Points on an
// edge or vertex count as inside.
func PointInTriangle(p, a, b, c Point) bool {
	d1 := edgeSign(p, a, b)
	d2 := edgeSign(p, b, c)
	d3 := edgeSign(p, c, a)

	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

func edgeSign(p1, p2, p3 Point) float64 {
	return (p1.X-p3.X)*(p2.Y-p3.Y) - (p2.X-p3.X)*(p1.Y-p3.Y)
}

// Barycentric returns weights (alpha, beta, gamma) with p = alpha*a +
// beta*b + gamma*c and alpha+beta+gamma = 1. Degenerate triangles yield
// DegenerateWeights.
func Barycentric(p, a, b, c Point) (alpha, beta, gamma float64) {
	denom := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	if math.Abs(denom) < DegenerateEpsilon {
		return DegenerateWeights[0], DegenerateWeights[1], DegenerateWeights[2]
	}
	alpha = ((b.Y-c.Y)*(p.X-c.X) + (c.X-b.X)*(p.Y-c.Y)) / denom
	beta = ((c.Y-a.Y)*(p.X-c.X) + (a.X-c.X)*(p.Y-c.Y)) / denom
	gamma = 1 - alpha - beta
	return alpha, beta, gamma
}

// TriangleArea returns the unsigned area of abc (shoelace formula).
func TriangleArea(a, b, c Point) float64 {
	return math.Abs(a.X*(b.Y-c.Y)+b.X*(c.Y-a.Y)+c.X*(a.Y-b.Y)) / 2
}

// Blend returns alpha*a + beta*b + gamma*c.
func Blend(a, b, c Point, alpha, beta, gamma float64) Point {
	return Point{
		X: alpha*a.X + beta*b.X + gamma*c.X,
		Y: alpha*a.Y + beta*b.Y + gamma*c.Y,
	}
}
