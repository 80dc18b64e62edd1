package cluster

import (
	"runtime"
	"testing"
)

func benchmarkLoad(b *testing.B, n int) {
	points := GenerateRandomPoints(n, -125.0, -65.0, 25.0, 49.0)

	var memBefore, memAfter runtime.MemStats
	runtime.ReadMemStats(&memBefore)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ix, err := New(Options{}, GeoPointX, GeoPointY)
		if err != nil {
			b.Fatalf("New: %v", err)
		}
		if err := ix.Load(points); err != nil {
			b.Fatalf("Load: %v", err)
		}
	}
	b.StopTimer()

	runtime.ReadMemStats(&memAfter)
	b.ReportMetric(float64(memAfter.TotalAlloc-memBefore.TotalAlloc)/float64(b.N), "B/op-total")
}

func BenchmarkLoad1000(b *testing.B)   { benchmarkLoad(b, 1000) }
func BenchmarkLoad10000(b *testing.B)  { benchmarkLoad(b, 10000) }
func BenchmarkLoad100000(b *testing.B) { benchmarkLoad(b, 100000) }

func BenchmarkGetClustersAndPoints(b *testing.B) {
	ix, err := New(Options{}, GeoPointX, GeoPointY)
	if err != nil {
		b.Fatalf("New: %v", err)
	}
	if err := ix.Load(GenerateRandomPoints(100000, -125.0, -65.0, 25.0, 49.0)); err != nil {
		b.Fatalf("Load: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ix.GetClustersAndPoints(-125, 25, -65, 49, 8)
	}
}
