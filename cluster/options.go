package cluster

import "fmt"

// Options configures an Index. All fields are optional; zero values take
// the defaults below, matching the teacher's NewSupercluster clamping.
type Options struct {
	MinZoom   int
	MaxZoom   int
	MinPoints int
	Radius    float64
	Extent    int
	NodeSize  int

	// Log gates plain diagnostic printing during Load, the way the
	// teacher's SuperclusterOptions.Log does.
	Log bool
}

const (
	defaultMaxZoom  = 16
	defaultNodeSize = 64
	defaultExtent   = 512
	defaultRadius   = 40
	defaultMinPts   = 2

	// hardMaxZoom keeps maxZoom+1 strictly below the 5-bit zoom field the
	// id-packing scheme reserves (see encodeID).
	hardMaxZoom = 30
)

func (o Options) withDefaults() Options {
	if o.MinZoom < 0 {
		o.MinZoom = 0
	}
	if o.MaxZoom <= 0 {
		o.MaxZoom = defaultMaxZoom
	}
	if o.MinZoom > o.MaxZoom {
		o.MinZoom = o.MaxZoom
	}
	if o.NodeSize <= 0 {
		o.NodeSize = defaultNodeSize
	}
	if o.Extent <= 0 {
		o.Extent = defaultExtent
	}
	if o.Radius <= 0 {
		o.Radius = defaultRadius
	}
	if o.MinPoints <= 0 {
		o.MinPoints = defaultMinPts
	}
	return o
}

// validate fails fast for configurations the id-packing scheme in §3
// cannot support, given a point count n.
func (o Options) validate(n int) error {
	if o.MaxZoom > hardMaxZoom {
		return fmt.Errorf("%w: maxZoom+1 (%d) must be < 32", ErrInvalidConfiguration, o.MaxZoom+1)
	}
	if n > 0 {
		// (n-1)<<5 + n must fit a Go int without overflow.
		maxIndex := n - 1
		if maxIndex > 0 && (maxIndex > (1<<(63-5))-1) {
			return fmt.Errorf("%w: point count %d overflows id packing", ErrInvalidConfiguration, n)
		}
		packed := (maxIndex << 5) + n
		if packed < maxIndex {
			return fmt.Errorf("%w: point count %d overflows id packing", ErrInvalidConfiguration, n)
		}
	}
	return nil
}
