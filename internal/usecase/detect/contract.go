package detect

import (
	"context"

	"github.com/paulmach/orb"

	"github.com/kailas-cloud/duplicheck/internal/domain/feature"
)

// FeatureSource is the readable dataset a detection run scans. Iteration is
// finite and in stable dataset order; aborting is done by returning an error
// from the callback.
type FeatureSource interface {
	// Count returns the total number of features in the dataset.
	Count(ctx context.Context) (int, error)
	// Iterate calls fn for every feature in dataset order.
	Iterate(ctx context.Context, fn func(feature.Feature) error) error
	// IterateIDs calls fn for every feature whose id is in ids. Unknown ids
	// are skipped.
	IterateIDs(ctx context.Context, ids []int64, fn func(feature.Feature) error) error
}

// SpatialIndex answers bounding-box intersection queries over inserted
// features. Results may contain false positives; the scan re-verifies every
// candidate with the geometry comparator.
type SpatialIndex interface {
	Insert(id int64, b orb.Bound)
	Search(b orb.Bound) []int64
}

// ProgressSink receives coarse progress updates. Report is fire-and-forget:
// it must not block, and nothing it does can fail the run.
type ProgressSink interface {
	Report(percent int, message string)
}

// ProgressFunc adapts a function to ProgressSink.
type ProgressFunc func(percent int, message string)

// Report implements ProgressSink.
func (f ProgressFunc) Report(percent int, message string) { f(percent, message) }
