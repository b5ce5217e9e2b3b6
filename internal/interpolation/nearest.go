// internal/interpolation/nearest.go

package interpolation

import (
	"sort"

	"defense-planner/internal/formation"
	"defense-planner/internal/spatial"
)

// NearestEpsilon keeps inverse-distance weights finite when the ball sits
// on a formation.
const NearestEpsilon = 0.001

// NearestWeighted blends the k formations nearest to ball with weights
// proportional to 1/(d+NearestEpsilon). It reports false when fewer than k
// formations exist.
func NearestWeighted(ball spatial.Point, fs []formation.Formation, k int) (Result, bool) {
	if k < 1 || len(fs) < k {
		return Result{}, false
	}

	type candidate struct {
		index int
		dist  float64
	}
	cands := make([]candidate, len(fs))
	for i, f := range fs {
		cands[i] = candidate{index: i, dist: spatial.Distance(ball, f.Ball)}
	}
	sort.SliceStable(cands, func(a, b int) bool { return cands[a].dist < cands[b].dist })
	cands = cands[:k]

	weights := make([]float64, k)
	var total float64
	for i, c := range cands {
		weights[i] = 1 / (c.dist + NearestEpsilon)
		total += weights[i]
	}

	sources := make([]int, k)
	lists := make([][]spatial.Point, k)
	for i, c := range cands {
		weights[i] /= total
		sources[i] = c.index
		lists[i] = fs[c.index].Offsets
	}

	n := minLen(lists...)
	offsets := make([]spatial.Point, n)
	for p := 0; p < n; p++ {
		var sum spatial.Point
		for i, l := range lists {
			sum = sum.Add(l[p].Scale(weights[i]))
		}
		offsets[p] = sum
	}

	return Result{Offsets: offsets, Sources: sources, Weights: weights}, true
}
