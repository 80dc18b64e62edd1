package cluster

import "math"

// infZoom is the "not yet absorbed" sentinel a node's zoom starts at.
const infZoom = math.MaxInt32

// noParent marks a node with no parent cluster yet.
const noParent = -1

// treeNode is the tagged union stored in every tree level: either a leaf
// that refers back to an input point, or a cluster aggregate. Both variants
// carry the same mutable build-time fields (zoom, parentID) so merge logic
// never has to special-case which one it is holding.
type treeNode struct {
	x, y      float64
	isCluster bool
	index     int // leaf: index into the loaded (valid-only) point list, see Index.Point
	id        int // cluster: bit-packed origin id; leaf: unused
	numPoints int // leaf: always 1; cluster: aggregate count
	zoom      int // mutable build-time state, see infZoom
	parentID  int // mutable build-time state, see noParent
}

func newLeaf(x, y float64, index int) treeNode {
	return treeNode{x: x, y: y, index: index, numPoints: 1, zoom: infZoom, parentID: noParent}
}

func newClusterNode(x, y float64, id, numPoints int) treeNode {
	return treeNode{x: x, y: y, isCluster: true, id: id, numPoints: numPoints, zoom: infZoom, parentID: noParent}
}

// Node is the opaque cluster/point handle returned to callers by the query
// operations. Coordinates are reprojected back to longitude/latitude.
type Node struct {
	lon, lat  float64
	isCluster bool
	id        int
	index     int
	numPoints int
}

// IsCluster reports whether this node aggregates more than one input point.
func (n Node) IsCluster() bool { return n.isCluster }

// Lon returns the node's longitude in degrees.
func (n Node) Lon() float64 { return n.lon }

// Lat returns the node's latitude in degrees.
func (n Node) Lat() float64 { return n.lat }

// ID returns the cluster id. For a leaf node this is undefined; use
// PointIndex instead.
func (n Node) ID() int { return n.id }

// NumPoints returns the aggregate point count (1 for a leaf).
func (n Node) NumPoints() int { return n.numPoints }

// PointIndex returns the index of the underlying input point and true, or
// (0, false) if this node is a cluster.
func (n Node) PointIndex() (int, bool) {
	if n.isCluster {
		return 0, false
	}
	return n.index, true
}

func (t treeNode) toNode() Node {
	return Node{
		lon:       xLng(t.x),
		lat:       yLat(t.y),
		isCluster: t.isCluster,
		id:        t.id,
		index:     t.index,
		numPoints: t.numPoints,
	}
}

// encodeID packs the origin index i (within the source tree array at z+1)
// and origin zoom z+1 into a cluster id, per the scheme in SPEC_FULL.md §3.
func encodeID(i, originZoom, n int) int {
	return (i << 5) + originZoom + n
}

func originIndex(id, n int) int {
	return (id - n) >> 5
}

func originZoom(id, n int) int {
	return (id - n) % 32
}
