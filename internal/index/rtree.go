// Package index provides the bounding-box spatial index used by the
// tolerance-based geometry scan. Query results may contain false positives;
// callers re-verify candidates with a comparator.
package index

import (
	"github.com/paulmach/orb"
	"github.com/tidwall/rtree"
)

// RTree is an in-memory R-tree over feature bounding boxes. It is built for
// a single detection run and discarded afterwards; not safe for concurrent
// mutation.
type RTree struct {
	tr rtree.RTreeG[int64]
}

// NewRTree creates an empty index.
func NewRTree() *RTree {
	return &RTree{}
}

// Insert adds a feature's bounding box under its id.
func (x *RTree) Insert(id int64, b orb.Bound) {
	x.tr.Insert([2]float64(b.Min), [2]float64(b.Max), id)
}

// Search returns the ids of all entries whose bounds intersect b.
func (x *RTree) Search(b orb.Bound) []int64 {
	var out []int64
	x.tr.Search([2]float64(b.Min), [2]float64(b.Max),
		func(_, _ [2]float64, id int64) bool {
			out = append(out, id)
			return true
		})
	return out
}

// Len returns the number of indexed entries.
func (x *RTree) Len() int {
	return x.tr.Len()
}
