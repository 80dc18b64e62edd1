package cluster

import "math/rand"

// GeoPoint is a minimal longitude/latitude input point for demos, profiling,
// and tests. Library consumers are free to use their own T and accessors
// instead; GeoPoint just saves boilerplate for the common case.
type GeoPoint struct {
	Lon, Lat float64
	// Valid is false to simulate the "missing coordinate" drop case from
	// SPEC_FULL.md scenario S5; GeoPointX/GeoPointY report it as absent.
	Valid bool
}

// NewGeoPoint builds a valid GeoPoint.
func NewGeoPoint(lon, lat float64) GeoPoint {
	return GeoPoint{Lon: lon, Lat: lat, Valid: true}
}

// GeoPointX and GeoPointY are ready-made getX/getY accessors for
// New[GeoPoint].
func GeoPointX(p GeoPoint) (float64, bool) { return p.Lon, p.Valid }
func GeoPointY(p GeoPoint) (float64, bool) { return p.Lat, p.Valid }

// GenerateRandomPoints creates n uniformly distributed GeoPoints inside the
// given bounding box, using a fixed random seed for reproducibility —
// the same deterministic-seeding approach the teacher's benchmark and
// profiler code uses for generated point sets.
func GenerateRandomPoints(n int, minLng, maxLng, minLat, maxLat float64) []GeoPoint {
	r := rand.New(rand.NewSource(42))
	points := make([]GeoPoint, n)
	for i := 0; i < n; i++ {
		points[i] = NewGeoPoint(
			minLng+r.Float64()*(maxLng-minLng),
			minLat+r.Float64()*(maxLat-minLat),
		)
	}
	return points
}
