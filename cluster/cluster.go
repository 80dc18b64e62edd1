// Package cluster implements a hierarchical geographic point-clustering
// index: given a static set of longitude/latitude points, it precomputes a
// cluster/point partitioning for every zoom level in a configured range and
// answers viewport and descendant queries against it.
package cluster

import (
	"fmt"
	"math"
)

// Index is a hierarchical point-clustering index over an opaque input type
// T, accessed only through the getX/getY projections supplied to New. It is
// built once by Load and is read-only (and safe for concurrent reads) after
// Load returns.
type Index[T any] struct {
	opts Options
	getX func(T) (float64, bool)
	getY func(T) (float64, bool)

	points []T       // the points that survived projection, in original order
	n      int       // len(points); distinct from the caller's original slice length
	trees  []*kdTree // index z holds tree[z]; nil below opts.MinZoom
}

// New builds an Index for the given options and point accessors. It fails
// with ErrInvalidConfiguration if the options cannot support the id-packing
// scheme regardless of how many points are eventually loaded.
func New[T any](opts Options, getX, getY func(T) (float64, bool)) (*Index[T], error) {
	o := opts.withDefaults()
	if err := o.validate(0); err != nil {
		return nil, err
	}
	return &Index[T]{opts: o, getX: getX, getY: getY}, nil
}

// Options returns the (defaulted) configuration this index was built with.
func (ix *Index[T]) Options() Options { return ix.opts }

// Point returns the input point a leaf node's PointIndex refers to.
func (ix *Index[T]) Point(i int) T { return ix.points[i] }

// NumPoints returns the number of points that survived projection and were
// loaded into the index.
func (ix *Index[T]) NumPoints() int { return ix.n }

// Load projects, clusters, and indexes points. Points whose getX or getY
// yields a missing coordinate are silently dropped. Load is the only
// mutator; it must complete before any query is issued, and must not be
// called concurrently with itself or with queries.
func (ix *Index[T]) Load(points []T) error {
	valid := make([]T, 0, len(points))
	leaves := make([]treeNode, 0, len(points))
	for _, p := range points {
		x, okX := ix.getX(p)
		y, okY := ix.getY(p)
		if !okX || !okY {
			continue
		}
		leaves = append(leaves, newLeaf(lngX(x), latY(y), len(valid)))
		valid = append(valid, p)
	}

	n := len(valid)
	if err := ix.opts.validate(n); err != nil {
		return err
	}

	trees := make([]*kdTree, ix.opts.MaxZoom+2)
	trees[ix.opts.MaxZoom+1] = buildKDTree(leaves, ix.opts.NodeSize)
	if ix.opts.Log {
		fmt.Printf("cluster: loaded %d points, leaf tree at zoom %d\n", n, ix.opts.MaxZoom+1)
	}

	src := leaves
	for z := ix.opts.MaxZoom; z >= ix.opts.MinZoom; z-- {
		dest := ix.mergeStep(trees[z+1], src, z, n)
		trees[z] = buildKDTree(dest, ix.opts.NodeSize)
		if ix.opts.Log {
			fmt.Printf("cluster: zoom %d produced %d nodes\n", z, len(dest))
		}
		src = dest
	}

	ix.points = valid
	ix.n = n
	ix.trees = trees
	return nil
}

// mergeStep runs the greedy merge described in SPEC_FULL.md §4.4 over the
// node array of tree[z+1] (sourceTree, aliasing src), producing the node
// array for tree[z]. Neighbor lookups always consult sourceTree; zoom and
// parentID mutations land on src, which sourceTree aliases, so later pivots
// in this same pass observe earlier absorptions.
func (ix *Index[T]) mergeStep(sourceTree *kdTree, src []treeNode, z, n int) []treeNode {
	r := ix.opts.Radius / (float64(ix.opts.Extent) * math.Pow(2, float64(z)))
	dest := make([]treeNode, 0, len(src))

	for i := range src {
		p := &src[i]
		if p.zoom <= z {
			continue
		}
		p.zoom = z

		neighbors := sourceTree.withinRadius(p.x, p.y, r)
		n0 := p.numPoints
		total := n0

		eligible := neighbors[:0:0]
		for _, ni := range neighbors {
			b := &src[ni]
			if b.zoom > z {
				eligible = append(eligible, ni)
				total += b.numPoints
			}
		}

		if total > n0 && total >= ix.opts.MinPoints {
			id := encodeID(i, z+1, n)
			wx, wy := p.x*float64(n0), p.y*float64(n0)
			for _, ni := range eligible {
				b := &src[ni]
				b.zoom = z
				wx += b.x * float64(b.numPoints)
				wy += b.y * float64(b.numPoints)
				b.parentID = id
			}
			p.parentID = id
			dest = append(dest, newClusterNode(wx/float64(total), wy/float64(total), id, total))
			continue
		}

		dest = append(dest, *p)
		if total > 1 {
			for _, ni := range eligible {
				b := &src[ni]
				b.zoom = z
				dest = append(dest, *b)
			}
		}
	}

	return dest
}

// treeAt returns the tree for the given zoom, clamped to
// [MinZoom, MaxZoom+1].
func (ix *Index[T]) treeAt(zoom int) *kdTree {
	z := zoom
	if z < ix.opts.MinZoom {
		z = ix.opts.MinZoom
	}
	if z > ix.opts.MaxZoom+1 {
		z = ix.opts.MaxZoom + 1
	}
	return ix.trees[z]
}
