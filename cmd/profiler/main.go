package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/mapcluster/supercluster/cluster"
)

var (
	cpuprofile  = flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile  = flag.String("memprofile", "", "write memory profile to file")
	heapprofile = flag.String("heapprofile", "", "write heap profile to file")
	numPoints   = flag.Int("points", 100000, "number of points to generate")
	zoomLevel   = flag.Int("zoom", 8, "zoom level to profile")
	testall     = flag.Bool("testall", false, "test all configurations")
)

func runSingleProfile(numPoints, zoomLevel int) {
	fmt.Printf("Profiling with %d points at zoom level %d\n", numPoints, zoomLevel)

	ix, err := cluster.New(cluster.Options{
		MinZoom:   0,
		MaxZoom:   16,
		MinPoints: 3,
		Radius:    40,
		Extent:    512,
		NodeSize:  64,
	}, cluster.GeoPointX, cluster.GeoPointY)
	if err != nil {
		fmt.Fprintf(os.Stderr, "New: %v\n", err)
		return
	}

	points := cluster.GenerateRandomPoints(numPoints, -125.0, -65.0, 25.0, 49.0)

	var memStatsBefore, memStatsAfter runtime.MemStats
	runtime.ReadMemStats(&memStatsBefore)

	start := time.Now()
	if err := ix.Load(points); err != nil {
		fmt.Fprintf(os.Stderr, "Load: %v\n", err)
		return
	}
	nodes := ix.GetClustersAndPoints(-125.0, 25.0, -65.0, 49.0, float64(zoomLevel))
	duration := time.Since(start)

	runtime.ReadMemStats(&memStatsAfter)
	allocMB := float64(memStatsAfter.TotalAlloc-memStatsBefore.TotalAlloc) / 1024 / 1024

	fmt.Printf("Load+query completed in %v, returned %d nodes\n", duration, len(nodes))
	fmt.Printf("Memory allocated: %.2f MB\n", allocMB)
	fmt.Printf("Memory usage: %.2f MB\n", float64(memStatsAfter.Alloc)/1024/1024)
}

func runProfileBattery() {
	pointCounts := []int{1000, 10000, 50000, 100000}
	zoomLevels := []int{2, 5, 8, 12, 15}

	fmt.Println("Running comprehensive profile battery...")
	fmt.Println("=======================================")
	fmt.Printf("%-10s | %-10s | %-15s | %-12s | %-10s\n", "Points", "Zoom", "Duration", "Memory (MB)", "GC Runs")
	fmt.Println("------------------------------------------------------------------------")

	for _, points := range pointCounts {
		for _, zoom := range zoomLevels {
			ix, err := cluster.New(cluster.Options{
				MinZoom:   0,
				MaxZoom:   16,
				MinPoints: 3,
				Radius:    40,
				Extent:    512,
				NodeSize:  64,
			}, cluster.GeoPointX, cluster.GeoPointY)
			if err != nil {
				fmt.Fprintf(os.Stderr, "New: %v\n", err)
				continue
			}

			testPoints := cluster.GenerateRandomPoints(points, -125.0, -65.0, 25.0, 49.0)

			var memStatsBefore, memStatsAfter runtime.MemStats
			runtime.ReadMemStats(&memStatsBefore)

			start := time.Now()
			if err := ix.Load(testPoints); err != nil {
				fmt.Fprintf(os.Stderr, "Load: %v\n", err)
				continue
			}
			ix.GetClustersAndPoints(-125.0, 25.0, -65.0, 49.0, float64(zoom))
			duration := time.Since(start)

			runtime.ReadMemStats(&memStatsAfter)
			memMB := float64(memStatsAfter.TotalAlloc-memStatsBefore.TotalAlloc) / 1024 / 1024
			gcRuns := memStatsAfter.NumGC - memStatsBefore.NumGC

			fmt.Printf("%-10d | %-10d | %-15s | %-12.2f | %-10d\n", points, zoom, duration, memMB, gcRuns)
		}
		fmt.Println("------------------------------------------------------------------------")
	}
}

func main() {
	flag.Parse()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			return
		}
		defer f.Close()

		fmt.Println("Starting CPU profiling...")
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			return
		}
		defer pprof.StopCPUProfile()
	}

	if *testall {
		runProfileBattery()
	} else {
		runSingleProfile(*numPoints, *zoomLevel)
	}

	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create memory profile: %v\n", err)
			return
		}
		defer f.Close()
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not write memory profile: %v\n", err)
		}
	}

	if *heapprofile != "" {
		f, err := os.Create(*heapprofile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create heap profile: %v\n", err)
			return
		}
		defer f.Close()

		memProfile := pprof.Lookup("heap")
		if memProfile == nil {
			fmt.Fprintf(os.Stderr, "Could not find heap profile\n")
			return
		}
		if err := memProfile.WriteTo(f, 0); err != nil {
			fmt.Fprintf(os.Stderr, "Could not write heap profile: %v\n", err)
		}
	}
}
