package cluster

import (
	"errors"
	"math"
	"testing"
)

func TestProjectionRoundTrip(t *testing.T) {
	cases := []struct {
		lon, lat float64
	}{
		{0, 0},
		{-179.999, 0},
		{179.999, 0},
		{45, 45},
		{-122.4194, 37.7749},
		{0, 85},
		{0, -85},
	}

	const eps = 1e-9
	for _, c := range cases {
		x, y := lngX(c.lon), latY(c.lat)
		lon2, lat2 := xLng(x), yLat(y)
		if math.Abs(lon2-c.lon) > eps {
			t.Errorf("lon round-trip: got %v, want %v", lon2, c.lon)
		}
		if math.Abs(lat2-c.lat) > eps {
			t.Errorf("lat round-trip: got %v, want %v", lat2, c.lat)
		}
	}
}

func TestProjectionClampsPoles(t *testing.T) {
	if y := latY(90); y != 0 {
		t.Errorf("latY(90) = %v, want 0", y)
	}
	if y := latY(-90); y != 1 {
		t.Errorf("latY(-90) = %v, want 1", y)
	}
}

func TestLoadDropsInvalidPoints(t *testing.T) {
	ix, err := New(Options{}, GeoPointX, GeoPointY)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	points := []GeoPoint{
		NewGeoPoint(0, 0),
		{Lon: 10, Lat: 10, Valid: false},
		NewGeoPoint(20, 20),
	}
	if err := ix.Load(points); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ix.NumPoints() != 2 {
		t.Fatalf("NumPoints() = %d, want 2", ix.NumPoints())
	}
}

func TestSinglePointNeverClusters(t *testing.T) {
	ix, err := New(Options{}, GeoPointX, GeoPointY)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := ix.Load([]GeoPoint{NewGeoPoint(10, 10)}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	for z := ix.opts.MinZoom; z <= ix.opts.MaxZoom+1; z++ {
		nodes := ix.GetClustersAndPoints(-180, -90, 180, 90, float64(z))
		if len(nodes) != 1 {
			t.Fatalf("zoom %d: got %d nodes, want 1", z, len(nodes))
		}
		if nodes[0].IsCluster() {
			t.Fatalf("zoom %d: lone point reported as cluster", z)
		}
	}
}

func TestTwoClosePointsMergeAtHighZoom(t *testing.T) {
	ix, err := New(Options{}, GeoPointX, GeoPointY)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	points := []GeoPoint{
		NewGeoPoint(0, 0),
		NewGeoPoint(0.0001, 0.0001),
		NewGeoPoint(90, 45),
	}
	if err := ix.Load(points); err != nil {
		t.Fatalf("Load: %v", err)
	}

	highZoom := ix.GetClustersAndPoints(-180, -90, 180, 90, float64(ix.opts.MaxZoom))
	if len(highZoom) != 2 {
		t.Fatalf("at max zoom: got %d nodes, want 2 (one pair cluster, one lone leaf)", len(highZoom))
	}
	var clustered, lone int
	for _, n := range highZoom {
		if n.IsCluster() {
			clustered++
			if n.NumPoints() != 2 {
				t.Errorf("cluster numPoints = %d, want 2", n.NumPoints())
			}
		} else {
			lone++
		}
	}
	if clustered != 1 || lone != 1 {
		t.Fatalf("got %d clusters and %d lone points, want 1 and 1", clustered, lone)
	}

	// At the coarsest zoom the close pair is still clustered together, and
	// point counts are conserved across the whole tree regardless of how
	// far the third point is from the pair.
	lowZoom := ix.GetClustersAndPoints(-180, -90, 180, 90, 0)
	total := 0
	for _, n := range lowZoom {
		total += n.NumPoints()
	}
	if total != 3 {
		t.Fatalf("at zoom 0: total numPoints = %d, want 3", total)
	}
}

func TestMinPointsThreshold(t *testing.T) {
	ix, err := New(Options{MinPoints: 3, Radius: 1000}, GeoPointX, GeoPointY)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	points := []GeoPoint{NewGeoPoint(0, 0), NewGeoPoint(0.001, 0.001)}
	if err := ix.Load(points); err != nil {
		t.Fatalf("Load: %v", err)
	}
	nodes := ix.GetClustersAndPoints(-180, -90, 180, 90, 0)
	if len(nodes) != 2 {
		t.Fatalf("with minPoints=3 and only 2 neighbors, got %d nodes, want 2 unmerged leaves", len(nodes))
	}
	for _, n := range nodes {
		if n.IsCluster() {
			t.Errorf("node unexpectedly clustered below minPoints threshold")
		}
	}
}

func TestClusterChildrenSumInvariant(t *testing.T) {
	ix, err := New(Options{}, GeoPointX, GeoPointY)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	points := GenerateRandomPoints(200, -1, 1, -1, 1)
	if err := ix.Load(points); err != nil {
		t.Fatalf("Load: %v", err)
	}

	for z := ix.opts.MinZoom; z <= ix.opts.MaxZoom; z++ {
		tree := ix.trees[z]
		if tree == nil {
			continue
		}
		for _, n := range tree.src {
			if !n.isCluster {
				continue
			}
			children, err := ix.GetChildren(n.id)
			if err != nil {
				t.Fatalf("GetChildren(%d) at zoom %d: %v", n.id, z, err)
			}
			sum := 0
			var wx, wy float64
			for _, c := range children {
				sum += c.NumPoints()
				wx += lngX(c.Lon()) * float64(c.NumPoints())
				wy += latY(c.Lat()) * float64(c.NumPoints())
			}
			if sum != n.numPoints {
				t.Errorf("zoom %d cluster %d: children sum %d, want %d", z, n.id, sum, n.numPoints)
			}
			if math.Abs(wx/float64(sum)-n.x) > 1e-6 || math.Abs(wy/float64(sum)-n.y) > 1e-6 {
				t.Errorf("zoom %d cluster %d: centroid mismatch", z, n.id)
			}
		}
	}
}

func TestGetLeavesOffsetLimit(t *testing.T) {
	ix, err := New(Options{Radius: 1000}, GeoPointX, GeoPointY)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	points := make([]GeoPoint, 100)
	for i := range points {
		points[i] = NewGeoPoint(float64(i)*1e-6, float64(i)*1e-6)
	}
	if err := ix.Load(points); err != nil {
		t.Fatalf("Load: %v", err)
	}

	top := ix.GetClustersAndPoints(-180, -90, 180, 90, 0)
	if len(top) != 1 || !top[0].IsCluster() || top[0].NumPoints() != 100 {
		t.Fatalf("expected a single 100-point cluster, got %+v", top)
	}
	root := top[0].ID()

	leaves := ix.GetLeaves(root, 10, 0)
	if len(leaves) != 10 {
		t.Fatalf("limit=10 offset=0: got %d leaves, want 10", len(leaves))
	}

	tail := ix.GetLeaves(root, 10, 95)
	if len(tail) != 5 {
		t.Fatalf("limit=10 offset=95: got %d leaves, want 5", len(tail))
	}

	all := ix.GetLeaves(root, math.MaxInt32, 0)
	if len(all) != 100 {
		t.Fatalf("limit=all: got %d leaves, want 100", len(all))
	}
}

func TestAntimeridianSplitMatchesUnion(t *testing.T) {
	ix, err := New(Options{}, GeoPointX, GeoPointY)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	points := []GeoPoint{NewGeoPoint(-179, 0), NewGeoPoint(179, 0)}
	if err := ix.Load(points); err != nil {
		t.Fatalf("Load: %v", err)
	}

	split := ix.GetClustersAndPoints(170, -10, -170, 10, 0)
	east := ix.GetClustersAndPoints(170, -10, 180, 10, 0)
	west := ix.GetClustersAndPoints(-180, -10, -170, 10, 0)
	if len(split) != len(east)+len(west) {
		t.Fatalf("antimeridian split returned %d nodes, want %d (union of %d east + %d west)",
			len(split), len(east)+len(west), len(east), len(west))
	}
	if len(split) != 2 {
		t.Fatalf("expected both far-apart points, got %d", len(split))
	}
}

func TestFullGlobeEquivalence(t *testing.T) {
	ix, err := New(Options{}, GeoPointX, GeoPointY)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	points := GenerateRandomPoints(50, -180, 180, -85, 85)
	if err := ix.Load(points); err != nil {
		t.Fatalf("Load: %v", err)
	}

	full := ix.GetClustersAndPoints(-180, -90, 180, 90, 2)
	shifted := ix.GetClustersAndPoints(37, -90, 37+360, 90, 2)
	if len(full) != len(shifted) {
		t.Fatalf("shifted full-globe query returned %d nodes, want %d", len(shifted), len(full))
	}
}

func TestGetChildrenNotFoundForFabricatedID(t *testing.T) {
	ix, err := New(Options{}, GeoPointX, GeoPointY)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := ix.Load([]GeoPoint{NewGeoPoint(0, 0), NewGeoPoint(1, 1)}); err != nil {
		t.Fatalf("Load: %v", err)
	}
	_, err = ix.GetChildren(1 << 30)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetChildren(fabricated id) = %v, want ErrNotFound", err)
	}
}

func TestClusterExpansionZoomBounds(t *testing.T) {
	ix, err := New(Options{}, GeoPointX, GeoPointY)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	points := make([]GeoPoint, 50)
	for i := range points {
		points[i] = NewGeoPoint(float64(i)*1e-6, float64(i)*1e-6)
	}
	if err := ix.Load(points); err != nil {
		t.Fatalf("Load: %v", err)
	}
	top := ix.GetClustersAndPoints(-180, -90, 180, 90, 0)
	if len(top) != 1 || !top[0].IsCluster() {
		t.Fatalf("expected a single root cluster, got %+v", top)
	}
	id := top[0].ID()
	oz := originZoom(id, ix.n)

	z, err := ix.GetClusterExpansionZoom(id)
	if err != nil {
		t.Fatalf("GetClusterExpansionZoom: %v", err)
	}
	if z < oz-1 || z > ix.opts.MaxZoom+1 {
		t.Errorf("expansion zoom %d out of bounds [%d, %d]", z, oz-1, ix.opts.MaxZoom+1)
	}
}

func TestInvalidConfigurationRejected(t *testing.T) {
	_, err := New(Options{MaxZoom: 31}, GeoPointX, GeoPointY)
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("New with maxZoom=31 = %v, want ErrInvalidConfiguration", err)
	}
}

func TestIDRoundTrip(t *testing.T) {
	n := 1000
	id := encodeID(123, 5, n)
	if got := originIndex(id, n); got != 123 {
		t.Errorf("originIndex = %d, want 123", got)
	}
	if got := originZoom(id, n); got != 5 {
		t.Errorf("originZoom = %d, want 5", got)
	}
}
