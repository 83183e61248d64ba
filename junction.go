package streamnet

import (
	"github.com/paulmach/orb"
)

type JunctionID int

// cellKey addresses one cell of the quantization grid used for junction detection
type cellKey struct {
	x int64
	y int64
}

// quantize maps point to its grid cell of given size
func quantize(p orb.Point, cellSize float64) cellKey {
	return cellKey{
		x: int64(p[0] / cellSize),
		y: int64(p[1] / cellSize),
	}
}

// unionFind unifies segment endpoints into junction nodes.
// Elements are endpoint indices (2*segment position + 0 for source, +1 for target)
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent}
}

func (uf *unionFind) find(i int) int {
	for uf.parent[i] != i {
		uf.parent[i] = uf.parent[uf.parent[i]]
		i = uf.parent[i]
	}
	return i
}

// union attaches the greater root under the smaller one so representative
// choice does not depend on merge order
func (uf *unionFind) union(i, j int) {
	ri, rj := uf.find(i), uf.find(j)
	if ri == rj {
		return
	}
	if ri < rj {
		uf.parent[rj] = ri
	} else {
		uf.parent[ri] = rj
	}
}
