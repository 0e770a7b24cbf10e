package geometry

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/kailas-cloud/duplicheck/internal/domain/feature"
)

// Info is a diagnostic summary of one geometry.
type Info struct {
	Type      string
	Multipart bool
	Parts     int
	Vertices  int
	Area      float64
	Length    float64
	Centroid  orb.Point
	Bound     orb.Bound
}

// Describe summarizes a geometry for result presentation. A nil or empty
// geometry yields Type "NULL".
func Describe(g orb.Geometry) Info {
	if g == nil || feature.IsEmptyGeometry(g) {
		return Info{Type: "NULL"}
	}
	parts := Parts(g)
	centroid, _ := planar.CentroidArea(g)
	return Info{
		Type:      g.GeoJSONType(),
		Multipart: len(parts) > 1,
		Parts:     len(parts),
		Vertices:  len(collectVertices(g, nil)),
		Area:      planar.Area(g),
		Length:    planar.Length(g),
		Centroid:  centroid,
		Bound:     g.Bound(),
	}
}
