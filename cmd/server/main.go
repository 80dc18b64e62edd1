package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/mapcluster/supercluster/cluster"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// sessionStore holds several named indices in memory at once, the way the
// teacher's ClusterRunner keeps a map of loaded superclusters — minus the
// on-disk persistence and gRPC transport, since neither survives the
// transformation (see DESIGN.md).
type sessionStore struct {
	mu           sync.RWMutex
	indices      map[string]*cluster.Index[cluster.GeoPoint]
	lastAccessed map[string]time.Time
	maxSessions  int
}

func newSessionStore(maxSessions int) *sessionStore {
	s := &sessionStore{
		indices:      make(map[string]*cluster.Index[cluster.GeoPoint]),
		lastAccessed: make(map[string]time.Time),
		maxSessions:  maxSessions,
	}
	go s.cleanupInactive()
	return s
}

func (s *sessionStore) cleanupInactive() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		s.mu.Lock()
		now := time.Now()
		for id, last := range s.lastAccessed {
			if now.Sub(last) > 30*time.Minute {
				delete(s.indices, id)
				delete(s.lastAccessed, id)
			}
		}
		s.mu.Unlock()
	}
}

func (s *sessionStore) create(opts cluster.Options, points []cluster.GeoPoint) (string, error) {
	ix, err := cluster.New(opts, cluster.GeoPointX, cluster.GeoPointY)
	if err != nil {
		return "", err
	}
	if err := ix.Load(points); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.indices) >= s.maxSessions {
		var oldestID string
		var oldestTime time.Time
		first := true
		for id, t := range s.lastAccessed {
			if first || t.Before(oldestTime) {
				oldestID, oldestTime, first = id, t, false
			}
		}
		if oldestID != "" {
			delete(s.indices, oldestID)
			delete(s.lastAccessed, oldestID)
		}
	}

	id := uuid.New().String()
	s.indices[id] = ix
	s.lastAccessed[id] = time.Now()
	return id, nil
}

func (s *sessionStore) get(id string) (*cluster.Index[cluster.GeoPoint], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ix, ok := s.indices[id]
	if ok {
		s.lastAccessed[id] = time.Now()
	}
	return ix, ok
}

func nodeToGeoJSON(n cluster.Node) gin.H {
	properties := gin.H{
		"cluster":     n.IsCluster(),
		"point_count": n.NumPoints(),
	}
	if n.IsCluster() {
		properties["id"] = n.ID()
	}
	return gin.H{
		"type": "Feature",
		"geometry": gin.H{
			"type":        "Point",
			"coordinates": []float64{n.Lon(), n.Lat()},
		},
		"properties": properties,
	}
}

func nodesToFeatureCollection(nodes []cluster.Node) gin.H {
	features := make([]gin.H, len(nodes))
	for i, n := range nodes {
		features[i] = nodeToGeoJSON(n)
	}
	return gin.H{"type": "FeatureCollection", "features": features}
}

func main() {
	store := newSessionStore(16)

	r := gin.Default()

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	r.POST("/api/clusters", func(c *gin.Context) {
		var req struct {
			NumPoints int     `json:"numPoints"`
			MinLng    float64 `json:"minLng"`
			MaxLng    float64 `json:"maxLng"`
			MinLat    float64 `json:"minLat"`
			MaxLat    float64 `json:"maxLat"`
			Options   struct {
				MinZoom, MaxZoom, MinPoints, NodeSize int
				Radius                                float64
				Extent                                int
			} `json:"options"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if req.NumPoints <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "numPoints must be positive"})
			return
		}
		if req.MaxLng == 0 && req.MinLng == 0 {
			req.MinLng, req.MaxLng, req.MinLat, req.MaxLat = -125.0, -65.0, 25.0, 49.0
		}

		points := cluster.GenerateRandomPoints(req.NumPoints, req.MinLng, req.MaxLng, req.MinLat, req.MaxLat)
		id, err := store.create(cluster.Options{
			MinZoom:   req.Options.MinZoom,
			MaxZoom:   req.Options.MaxZoom,
			MinPoints: req.Options.MinPoints,
			Radius:    req.Options.Radius,
			Extent:    req.Options.Extent,
			NodeSize:  req.Options.NodeSize,
			Log:       true,
		}, points)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, cluster.ErrInvalidConfiguration) {
				status = http.StatusBadRequest
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id, "numPoints": req.NumPoints})
	})

	r.GET("/api/clusters/:id", func(c *gin.Context) {
		ix, ok := store.get(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}

		zoom, err1 := strconv.ParseFloat(c.Query("zoom"), 64)
		west, err2 := strconv.ParseFloat(c.Query("west"), 64)
		south, err3 := strconv.ParseFloat(c.Query("south"), 64)
		east, err4 := strconv.ParseFloat(c.Query("east"), 64)
		north, err5 := strconv.ParseFloat(c.Query("north"), 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "zoom, west, south, east, north are required numeric query params"})
			return
		}

		nodes := ix.GetClustersAndPoints(west, south, east, north, zoom)
		c.JSON(http.StatusOK, nodesToFeatureCollection(nodes))
	})

	r.GET("/api/clusters/:id/children/:clusterId", func(c *gin.Context) {
		ix, ok := store.get(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		clusterID, err := strconv.Atoi(c.Param("clusterId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cluster id"})
			return
		}
		children, err := ix.GetChildren(clusterID)
		if err != nil {
			respondClusterError(c, err)
			return
		}
		c.JSON(http.StatusOK, nodesToFeatureCollection(children))
	})

	r.GET("/api/clusters/:id/leaves/:clusterId", func(c *gin.Context) {
		ix, ok := store.get(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		clusterID, err := strconv.Atoi(c.Param("clusterId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cluster id"})
			return
		}
		limit := 10
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				limit = n
			}
		}
		offset := 0
		if v := c.Query("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				offset = n
			}
		}
		leaves := ix.GetLeaves(clusterID, limit, offset)
		c.JSON(http.StatusOK, nodesToFeatureCollection(leaves))
	})

	r.GET("/api/clusters/:id/expansion-zoom/:clusterId", func(c *gin.Context) {
		ix, ok := store.get(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		clusterID, err := strconv.Atoi(c.Param("clusterId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cluster id"})
			return
		}
		zoom, err := ix.GetClusterExpansionZoom(clusterID)
		if err != nil {
			respondClusterError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"expansionZoom": zoom})
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		fmt.Println("Starting server on :8000...")
		if err := r.Run(":8000"); err != nil {
			fmt.Printf("Server error: %v\n", err)
		}
	}()

	<-quit
	fmt.Println("\nShutting down server...")
}

func respondClusterError(c *gin.Context, err error) {
	if errors.Is(err, cluster.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
