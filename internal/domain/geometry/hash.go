package geometry

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"

	"github.com/kailas-cloud/duplicheck/internal/domain/feature"
)

// NullHash is the sentinel hash for nil or empty geometries.
const NullHash = "NULL"

// Hash returns a content hash of the normalized geometry's WKB encoding.
// Two geometries are exact duplicates iff their hashes are equal.
func Hash(g orb.Geometry, precision int) string {
	if g == nil || feature.IsEmptyGeometry(g) {
		return NullHash
	}
	data := wkb.MustMarshal(Normalize(g, precision))
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
