// internal/interpolation/triangulation.go

// Package interpolation derives live player offsets from saved formations:
// barycentric blending inside triangles of formation ball positions, a
// distance-weighted fallback, and snapping onto a saved formation.
package interpolation

import (
	"math"

	"defense-planner/internal/formation"
	"defense-planner/internal/spatial"
)

// Triangle is three formations whose ball positions span an interpolation
// cell.
type Triangle struct {
	Indices  [3]int           `json:"indices"`
	Vertices [3]spatial.Point `json:"vertices"`
	Area     float64          `json:"area"`

	offsets [3][]spatial.Point
}

// Result is one interpolation. Offsets holds one entry per player that all
// blended formations know about.
type Result struct {
	Offsets  []spatial.Point `json:"offsets"`
	Sources  []int           `json:"sources"`
	Weights  []float64       `json:"weights"`
	Triangle *Triangle       `json:"triangle,omitempty"`
}

// Positions returns ball + offset for every blended player.
func (r Result) Positions(ball spatial.Point) []spatial.Point {
	out := make([]spatial.Point, len(r.Offsets))
	for i, o := range r.Offsets {
		out[i] = ball.Add(o)
	}
	return out
}

// Rebuild enumerates every combination of three formations. Fewer than
// three formations yield no triangles.
func Rebuild(fs []formation.Formation) []Triangle {
	n := len(fs)
	if n < 3 {
		return nil
	}
	tris := make([]Triangle, 0, n*(n-1)*(n-2)/6)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for k := j + 1; k < n; k++ {
				a, b, c := fs[i].Ball, fs[j].Ball, fs[k].Ball
				tris = append(tris, Triangle{
					Indices:  [3]int{i, j, k},
					Vertices: [3]spatial.Point{a, b, c},
					Area:     spatial.TriangleArea(a, b, c),
					offsets:  [3][]spatial.Point{fs[i].Offsets, fs[j].Offsets, fs[k].Offsets},
				})
			}
		}
	}
	return tris
}

// Interpolate blends the formations of the smallest triangle containing
// ball. Equal areas keep the first triangle in enumeration order. It
// reports false when no triangle contains ball.
func Interpolate(ball spatial.Point, tris []Triangle) (Result, bool) {
	best := -1
	for i := range tris {
		v := tris[i].Vertices
		if !spatial.PointInTriangle(ball, v[0], v[1], v[2]) {
			continue
		}
		if best < 0 || tris[i].Area < tris[best].Area {
			best = i
		}
	}
	if best < 0 {
		return Result{}, false
	}

	tri := tris[best]
	v := tri.Vertices
	alpha, beta, gamma := spatial.Barycentric(ball, v[0], v[1], v[2])

	n := minLen(tri.offsets[0], tri.offsets[1], tri.offsets[2])
	offsets := make([]spatial.Point, n)
	for p := 0; p < n; p++ {
		offsets[p] = spatial.Blend(tri.offsets[0][p], tri.offsets[1][p], tri.offsets[2][p], alpha, beta, gamma)
	}

	return Result{
		Offsets:  offsets,
		Sources:  tri.Indices[:],
		Weights:  []float64{alpha, beta, gamma},
		Triangle: &tri,
	}, true
}

func minLen(lists ...[]spatial.Point) int {
	n := math.MaxInt
	for _, l := range lists {
		n = min(n, len(l))
	}
	return n
}
