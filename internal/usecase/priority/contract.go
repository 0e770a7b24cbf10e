package priority

import (
	"context"

	"github.com/kailas-cloud/duplicheck/internal/domain/feature"
)

// FeatureReader loads the member features of a group by id. Ids with no
// backing feature are silently skipped.
type FeatureReader interface {
	IterateIDs(ctx context.Context, ids []int64, fn func(feature.Feature) error) error
}
