package cluster

import "errors"

// ErrNotFound is returned when a cluster id decodes to a tree slot that is
// absent, an out-of-range array index, or a cluster with no surviving
// children at its origin zoom.
var ErrNotFound = errors.New("cluster: not found")

// ErrInvalidConfiguration is returned by New when Options cannot support
// the id-packing scheme the builder relies on.
var ErrInvalidConfiguration = errors.New("cluster: invalid configuration")
