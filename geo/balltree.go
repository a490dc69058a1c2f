package geo

import (
	"math"
	"sort"

	"otodom-pipeline/models"
)

const leafSize = 8

type vec3 [3]float64

func chordDist(a, b vec3) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	dz := a[2] - b[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// ballTree partitions unit-sphere points into nested bounding balls. Each
// node stores the centroid of its subtree and the maximal chord distance from
// the centroid to any member point, which allows subtree pruning during
// nearest and radius queries.
type ballTree struct {
	vecs []vec3
	root *ballNode
}

type ballNode struct {
	center vec3
	radius float64

	// leaf payload: indices into vecs; inner nodes carry children instead
	idx         []int
	left, right *ballNode
}

func buildBallTree(points []models.ReferencePoint) *ballTree {
	t := &ballTree{vecs: make([]vec3, len(points))}
	idx := make([]int, len(points))
	for i, p := range points {
		t.vecs[i] = toUnitVec(p.Latitude, p.Longitude)
		idx[i] = i
	}
	t.root = t.build(idx)
	return t
}

func (t *ballTree) build(idx []int) *ballNode {
	node := &ballNode{center: t.centroid(idx)}
	for _, i := range idx {
		if d := chordDist(node.center, t.vecs[i]); d > node.radius {
			node.radius = d
		}
	}

	if len(idx) <= leafSize {
		node.idx = idx
		return node
	}

	dim := t.widestDim(idx)
	sort.Slice(idx, func(a, b int) bool {
		return t.vecs[idx[a]][dim] < t.vecs[idx[b]][dim]
	})
	mid := len(idx) / 2
	node.left = t.build(idx[:mid])
	node.right = t.build(idx[mid:])
	return node
}

func (t *ballTree) centroid(idx []int) vec3 {
	var c vec3
	for _, i := range idx {
		c[0] += t.vecs[i][0]
		c[1] += t.vecs[i][1]
		c[2] += t.vecs[i][2]
	}
	n := float64(len(idx))
	return vec3{c[0] / n, c[1] / n, c[2] / n}
}

func (t *ballTree) widestDim(idx []int) int {
	var lo, hi vec3
	for d := 0; d < 3; d++ {
		lo[d] = math.Inf(1)
		hi[d] = math.Inf(-1)
	}
	for _, i := range idx {
		for d := 0; d < 3; d++ {
			lo[d] = math.Min(lo[d], t.vecs[i][d])
			hi[d] = math.Max(hi[d], t.vecs[i][d])
		}
	}
	dim := 0
	for d := 1; d < 3; d++ {
		if hi[d]-lo[d] > hi[dim]-lo[dim] {
			dim = d
		}
	}
	return dim
}

// nearest returns the index of the point closest to q.
func (t *ballTree) nearest(q vec3) int {
	best := -1
	bestDist := math.Inf(1)
	t.searchNearest(t.root, q, &best, &bestDist)
	return best
}

func (t *ballTree) searchNearest(n *ballNode, q vec3, best *int, bestDist *float64) {
	if n == nil || chordDist(q, n.center)-n.radius > *bestDist {
		return
	}

	if n.idx != nil {
		for _, i := range n.idx {
			if d := chordDist(q, t.vecs[i]); d < *bestDist {
				*bestDist = d
				*best = i
			}
		}
		return
	}

	// descend into the closer child first for tighter pruning
	first, second := n.left, n.right
	if chordDist(q, n.right.center) < chordDist(q, n.left.center) {
		first, second = n.right, n.left
	}
	t.searchNearest(first, q, best, bestDist)
	t.searchNearest(second, q, best, bestDist)
}

// withinChord returns the indices of all points whose chord distance to q is
// at most limit.
func (t *ballTree) withinChord(q vec3, limit float64) []int {
	var out []int
	t.searchRadius(t.root, q, limit, &out)
	return out
}

func (t *ballTree) searchRadius(n *ballNode, q vec3, limit float64, out *[]int) {
	if n == nil || chordDist(q, n.center)-n.radius > limit {
		return
	}

	if n.idx != nil {
		for _, i := range n.idx {
			if chordDist(q, t.vecs[i]) <= limit {
				*out = append(*out, i)
			}
		}
		return
	}

	t.searchRadius(n.left, q, limit, out)
	t.searchRadius(n.right, q, limit, out)
}
