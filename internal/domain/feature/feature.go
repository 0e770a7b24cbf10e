// Package feature defines the read-only feature model the detection core
// consumes: an id, an optional geometry, and an ordered attribute table.
package feature

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Attr is one named attribute of a feature.
type Attr struct {
	Name  string
	Value Value
}

// Feature is an immutable vector feature. Geometry may be nil.
type Feature struct {
	id    int64
	geom  orb.Geometry
	attrs []Attr
	byIdx map[string]int
}

// New validates and creates a Feature. Attribute names must be unique.
func New(id int64, geom orb.Geometry, attrs []Attr) (Feature, error) {
	byIdx := make(map[string]int, len(attrs))
	for i, a := range attrs {
		if a.Name == "" {
			return Feature{}, fmt.Errorf("feature %d: empty attribute name", id)
		}
		if _, dup := byIdx[a.Name]; dup {
			return Feature{}, fmt.Errorf("feature %d: duplicate attribute %q", id, a.Name)
		}
		byIdx[a.Name] = i
	}
	return Feature{id: id, geom: geom, attrs: attrs, byIdx: byIdx}, nil
}

// Reconstruct creates a Feature without validation (trusted hydration).
func Reconstruct(id int64, geom orb.Geometry, attrs []Attr) Feature {
	byIdx := make(map[string]int, len(attrs))
	for i, a := range attrs {
		byIdx[a.Name] = i
	}
	return Feature{id: id, geom: geom, attrs: attrs, byIdx: byIdx}
}

// ID returns the feature id, unique within a dataset.
func (f Feature) ID() int64 { return f.id }

// Geometry returns the feature geometry, nil when the feature has none.
func (f Feature) Geometry() orb.Geometry { return f.geom }

// HasGeometry reports whether the feature carries a non-empty geometry.
func (f Feature) HasGeometry() bool {
	return f.geom != nil && !IsEmptyGeometry(f.geom)
}

// Value returns the value of the named attribute. A missing attribute reads
// as NULL with ok=false.
func (f Feature) Value(name string) (Value, bool) {
	i, ok := f.byIdx[name]
	if !ok {
		return Null(), false
	}
	return f.attrs[i].Value, true
}

// Attrs returns the attribute table in declaration order.
func (f Feature) Attrs() []Attr { return f.attrs }

// FieldNames returns the attribute names in declaration order.
func (f Feature) FieldNames() []string {
	names := make([]string, len(f.attrs))
	for i, a := range f.attrs {
		names[i] = a.Name
	}
	return names
}

// NullCount returns the number of NULL attribute values.
func (f Feature) NullCount() int {
	n := 0
	for _, a := range f.attrs {
		if a.Value.IsNull() {
			n++
		}
	}
	return n
}

// IsEmptyGeometry reports whether a geometry has no coordinates.
func IsEmptyGeometry(g orb.Geometry) bool {
	switch t := g.(type) {
	case nil:
		return true
	case orb.Point:
		return false
	case orb.MultiPoint:
		return len(t) == 0
	case orb.LineString:
		return len(t) == 0
	case orb.MultiLineString:
		return len(t) == 0
	case orb.Ring:
		return len(t) == 0
	case orb.Polygon:
		return len(t) == 0
	case orb.MultiPolygon:
		return len(t) == 0
	case orb.Collection:
		for _, sub := range t {
			if !IsEmptyGeometry(sub) {
				return false
			}
		}
		return true
	default:
		return true
	}
}
