// Package geometry decides whether two geometries represent the same
// real-world feature and produces stable hashes for exact-match grouping.
package geometry

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/kailas-cloud/duplicheck/internal/domain"
	"github.com/kailas-cloud/duplicheck/internal/domain/feature"
)

func isEmpty(g orb.Geometry) bool { return feature.IsEmptyGeometry(g) }

// Method selects the geometry comparison strategy.
type Method string

// Comparison methods.
const (
	MethodExactHash Method = "exact_hash"
	MethodCentroid  Method = "centroid"
	MethodShape     Method = "shape"
	MethodBBox      Method = "bbox"
)

// minBBoxOverlap is the intersection-over-union ratio two tolerance-grown
// bounds must exceed to count as duplicates.
const minBBoxOverlap = 0.9

// Comparator compares geometry pairs under a fixed tolerance and method.
type Comparator struct {
	tolerance          float64
	method             Method
	decomposeMultipart bool
	precision          int
}

// New creates a comparator with the default coordinate precision.
func New(tolerance float64, method Method, decomposeMultipart bool) *Comparator {
	return &Comparator{
		tolerance:          tolerance,
		method:             method,
		decomposeMultipart: decomposeMultipart,
		precision:          DefaultPrecision,
	}
}

// Hash hashes a geometry at the comparator's precision.
func (c *Comparator) Hash(g orb.Geometry) string {
	return Hash(g, c.precision)
}

// Compare reports whether two geometries match, with a confidence score in
// [0,1] and a human-readable reason. Nil or empty geometries never match,
// regardless of method.
func (c *Comparator) Compare(g1, g2 orb.Geometry) (bool, float64, string) {
	if g1 == nil || g2 == nil || isEmpty(g1) || isEmpty(g2) {
		return false, 0, "one or both geometries are NULL"
	}

	if c.decomposeMultipart {
		for _, p1 := range Parts(g1) {
			for _, p2 := range Parts(g2) {
				if ok, score, reason := c.compareSingle(p1, p2); ok {
					return ok, score, reason
				}
			}
		}
		return false, 0, "no matching parts found"
	}
	return c.compareSingle(g1, g2)
}

func (c *Comparator) compareSingle(g1, g2 orb.Geometry) (bool, float64, string) {
	switch c.method {
	case MethodCentroid:
		return c.compareCentroid(g1, g2)
	case MethodShape:
		return c.compareShape(g1, g2)
	case MethodBBox:
		return c.compareBBox(g1, g2)
	default:
		return c.compareExact(g1, g2)
	}
}

func (c *Comparator) compareExact(g1, g2 orb.Geometry) (bool, float64, string) {
	if c.Hash(g1) == c.Hash(g2) {
		return true, 1.0, "exact WKB match"
	}
	return false, 0, "WKB mismatch"
}

func (c *Comparator) compareCentroid(g1, g2 orb.Geometry) (bool, float64, string) {
	c1, _ := planar.CentroidArea(g1)
	c2, _ := planar.CentroidArea(g2)

	distance := planar.Distance(c1, c2)
	if distance > c.tolerance {
		return false, 0, fmt.Sprintf("centroid distance %.4f exceeds tolerance", distance)
	}
	return true, toleranceScore(distance, c.tolerance), fmt.Sprintf("centroid distance: %.4f", distance)
}

func (c *Comparator) compareShape(g1, g2 orb.Geometry) (bool, float64, string) {
	distance, err := directedHausdorff(g1, g2)
	if err != nil {
		// Shape distance not computable for this pair, fall back.
		return c.compareCentroid(g1, g2)
	}
	if distance > c.tolerance {
		return false, 0, fmt.Sprintf("shape distance %.4f exceeds tolerance", distance)
	}
	return true, toleranceScore(distance, c.tolerance), fmt.Sprintf("shape distance: %.4f", distance)
}

func (c *Comparator) compareBBox(g1, g2 orb.Geometry) (bool, float64, string) {
	b1 := g1.Bound().Pad(c.tolerance)
	b2 := g2.Bound().Pad(c.tolerance)

	if b1.Intersects(b2) {
		inter := intersectionArea(b1, b2)
		union := boundArea(b1) + boundArea(b2) - inter
		if union > 0 {
			ratio := inter / union
			if ratio > minBBoxOverlap {
				return true, ratio, fmt.Sprintf("bbox overlap: %.1f%%", ratio*100)
			}
		}
	}
	return false, 0, "insufficient bounding box overlap"
}

// toleranceScore maps a distance within tolerance to [0.5, 1.0].
func toleranceScore(distance, tolerance float64) float64 {
	if tolerance <= 0 {
		return 1.0
	}
	score := 1.0 - distance/tolerance
	if score < 0.5 {
		return 0.5
	}
	return score
}

// directedHausdorff returns the maximum over g1's vertices of the distance
// to the nearest point of g2. Pairs without extractable vertices yield
// domain.ErrShapeDistanceUnavailable.
func directedHausdorff(g1, g2 orb.Geometry) (float64, error) {
	vertices := collectVertices(g1, nil)
	if len(vertices) == 0 || isEmpty(g2) {
		return 0, domain.ErrShapeDistanceUnavailable
	}
	maxDist := 0.0
	for _, v := range vertices {
		if d := planar.DistanceFrom(g2, v); d > maxDist {
			maxDist = d
		}
	}
	return maxDist, nil
}

func collectVertices(g orb.Geometry, acc []orb.Point) []orb.Point {
	switch t := g.(type) {
	case orb.Point:
		return append(acc, t)
	case orb.MultiPoint:
		return append(acc, t...)
	case orb.LineString:
		return append(acc, t...)
	case orb.MultiLineString:
		for _, ls := range t {
			acc = append(acc, ls...)
		}
		return acc
	case orb.Ring:
		return append(acc, t...)
	case orb.Polygon:
		for _, r := range t {
			acc = append(acc, r...)
		}
		return acc
	case orb.MultiPolygon:
		for _, poly := range t {
			acc = collectVertices(poly, acc)
		}
		return acc
	case orb.Collection:
		for _, sub := range t {
			acc = collectVertices(sub, acc)
		}
		return acc
	default:
		return acc
	}
}

// Parts splits a geometry into its single-part components. Single-part
// geometries come back as a one-element slice.
func Parts(g orb.Geometry) []orb.Geometry {
	switch t := g.(type) {
	case nil:
		return nil
	case orb.MultiPoint:
		out := make([]orb.Geometry, 0, len(t))
		for _, p := range t {
			out = append(out, p)
		}
		return out
	case orb.MultiLineString:
		out := make([]orb.Geometry, 0, len(t))
		for _, ls := range t {
			out = append(out, ls)
		}
		return out
	case orb.MultiPolygon:
		out := make([]orb.Geometry, 0, len(t))
		for _, poly := range t {
			out = append(out, poly)
		}
		return out
	case orb.Collection:
		var out []orb.Geometry
		for _, sub := range t {
			out = append(out, Parts(sub)...)
		}
		return out
	default:
		return []orb.Geometry{g}
	}
}

func intersectionArea(a, b orb.Bound) float64 {
	minX := math.Max(a.Min[0], b.Min[0])
	minY := math.Max(a.Min[1], b.Min[1])
	maxX := math.Min(a.Max[0], b.Max[0])
	maxY := math.Min(a.Max[1], b.Max[1])
	if maxX < minX || maxY < minY {
		return 0
	}
	return (maxX - minX) * (maxY - minY)
}

func boundArea(b orb.Bound) float64 {
	return (b.Max[0] - b.Min[0]) * (b.Max[1] - b.Min[1])
}
