package cluster

import "math"

// GetClustersAndPoints answers the viewport query of SPEC_FULL.md §4.5,
// splitting the query at the antimeridian when the viewport crosses it.
func (ix *Index[T]) GetClustersAndPoints(westLng, southLat, eastLng, northLat, zoom float64) []Node {
	minLng := normalizeLng(westLng)
	maxLng := normalizeLng(eastLng)
	if eastLng == 180 {
		maxLng = 180
	}
	southLat = clampLat(southLat)
	northLat = clampLat(northLat)

	if eastLng-westLng >= 360 {
		minLng, maxLng = -180, 180
	}

	if minLng > maxLng {
		east := ix.queryRect(minLng, southLat, 180, northLat, zoom)
		west := ix.queryRect(-180, southLat, maxLng, northLat, zoom)
		return append(east, west...)
	}
	return ix.queryRect(minLng, southLat, maxLng, northLat, zoom)
}

func normalizeLng(lng float64) float64 {
	return math.Mod(math.Mod(lng+180, 360)+360, 360) - 180
}

func clampLat(lat float64) float64 {
	if lat < -90 {
		return -90
	}
	if lat > 90 {
		return 90
	}
	return lat
}

func (ix *Index[T]) queryRect(minLng, southLat, maxLng, northLat, zoom float64) []Node {
	t := ix.treeAt(int(math.Floor(zoom)))
	if t == nil {
		return nil
	}
	minX, maxX := lngX(minLng), lngX(maxLng)
	// Y is inverted under Mercator: latY(northLat) is the smaller Y.
	minY, maxY := latY(northLat), latY(southLat)
	idxs := t.withinBounds(minX, minY, maxX, maxY)
	result := make([]Node, len(idxs))
	for i, idx := range idxs {
		result[i] = t.src[idx].toNode()
	}
	return result
}

// GetChildren returns the direct children of the cluster identified by id,
// per SPEC_FULL.md §4.6. It returns ErrNotFound if id decodes to an absent
// tree slot, an out-of-range pivot index, or a cluster with no surviving
// children.
func (ix *Index[T]) GetChildren(id int) ([]Node, error) {
	oz := originZoom(id, ix.n)
	oi := originIndex(id, ix.n)

	if oz < ix.opts.MinZoom+1 || oz > ix.opts.MaxZoom+1 {
		return nil, ErrNotFound
	}
	originTree := ix.trees[oz]
	if originTree == nil || oi < 0 || oi >= len(originTree.src) {
		return nil, ErrNotFound
	}

	origin := originTree.src[oi]
	r := ix.opts.Radius / (float64(ix.opts.Extent) * math.Pow(2, float64(oz-1)))

	neighbors := originTree.withinRadius(origin.x, origin.y, r)
	var children []Node
	for _, ni := range neighbors {
		n := originTree.src[ni]
		if n.parentID == id {
			children = append(children, n.toNode())
		}
	}
	if len(children) == 0 {
		return nil, ErrNotFound
	}
	return children, nil
}

// GetLeaves returns up to limit transitive leaf descendants of id, in
// preorder, skipping the first offset leaves. See SPEC_FULL.md §4.7.
func (ix *Index[T]) GetLeaves(id, limit, offset int) []Node {
	result := make([]Node, 0, min(limit, ix.n))
	skipped := 0

	var walk func(id int) (done bool)
	walk = func(id int) bool {
		children, err := ix.GetChildren(id)
		if err != nil {
			return false
		}
		for _, c := range children {
			if len(result) >= limit {
				return true
			}
			if c.IsCluster() {
				m := c.NumPoints()
				if skipped+m <= offset {
					skipped += m
					continue
				}
				if walk(c.ID()) {
					return true
				}
			} else {
				if skipped < offset {
					skipped++
				} else {
					result = append(result, c)
					if len(result) >= limit {
						return true
					}
				}
			}
		}
		return false
	}

	walk(id)
	return result
}

// GetClusterExpansionZoom returns the zoom at which the cluster identified
// by id first breaks apart into more than one visible child, or a child
// that is itself not a single cluster. See SPEC_FULL.md §4.8.
func (ix *Index[T]) GetClusterExpansionZoom(id int) (int, error) {
	z := originZoom(id, ix.n) - 1

	for {
		children, err := ix.GetChildren(id)
		if err != nil {
			return 0, err
		}
		if len(children) != 1 || !children[0].IsCluster() {
			break
		}
		id = children[0].ID()
		z++
		if z > ix.opts.MaxZoom {
			break
		}
	}
	return z, nil
}
