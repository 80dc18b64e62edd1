package cluster

import "github.com/MadAppGang/kdbush"

// treeNodePoint adapts a treeNode into kdbush.Point by index, so kdbush
// never needs its own copy of the node's coordinates.
type treeNodePoint struct {
	src []treeNode
	idx int
}

func (p treeNodePoint) Coordinates() (float64, float64) {
	n := &p.src[p.idx]
	return n.x, n.y
}

// kdTree is a thin wrapper over kdbush.KDBush, the nodeSize-bucketed static
// spatial index MadAppGang-gocluster (and its iahmedov/naithar ports) build
// per zoom level for exactly this concern, satisfying the
// within_bounds/within_radius contract of SPEC_FULL.md §4.2. kdbush.NewBush
// keeps its Points slice in the caller's order and returns indices into it,
// so src's array-order identity — which the merge step and id packing both
// depend on — survives unchanged.
type kdTree struct {
	src  []treeNode
	bush *kdbush.KDBush
}

func buildKDTree(src []treeNode, nodeSize int) *kdTree {
	if len(src) == 0 {
		return &kdTree{src: src}
	}
	points := make([]kdbush.Point, len(src))
	for i := range src {
		points[i] = treeNodePoint{src: src, idx: i}
	}
	return &kdTree{src: src, bush: kdbush.NewBush(points, nodeSize)}
}

// withinBounds returns indices into src of every node whose (x,y) falls
// inside the axis-aligned rectangle, order unspecified.
func (t *kdTree) withinBounds(minX, minY, maxX, maxY float64) []int {
	if t.bush == nil {
		return nil
	}
	return t.bush.Range(minX, minY, maxX, maxY)
}

// withinRadius returns indices into src of every node within Euclidean
// distance r of (x,y), order unspecified. May include the query point
// itself if it is present in the tree.
func (t *kdTree) withinRadius(x, y, r float64) []int {
	if t.bush == nil {
		return nil
	}
	return t.bush.Within(&kdbush.SimplePoint{X: x, Y: y}, r)
}
