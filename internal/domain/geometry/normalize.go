package geometry

import (
	"math"

	"github.com/paulmach/orb"
)

// DefaultPrecision is the coordinate grid precision in decimal digits.
// Coordinates are snapped to a 10^-precision grid before hashing so that
// floating-point noise does not break exact matching.
const DefaultPrecision = 8

// Normalize returns a canonical copy of g: coordinates snapped to the
// precision grid, consecutive duplicate vertices removed, polygon rings
// wound exterior-CCW / holes-CW and rotated to a deterministic start vertex.
// Normalizing an already normalized geometry is a fixed point.
func Normalize(g orb.Geometry, precision int) orb.Geometry {
	if g == nil {
		return nil
	}
	scale := math.Pow(10, float64(precision))

	switch t := g.(type) {
	case orb.Point:
		return snapPoint(t, scale)
	case orb.MultiPoint:
		out := make(orb.MultiPoint, 0, len(t))
		for _, p := range t {
			out = append(out, snapPoint(p, scale))
		}
		return orb.MultiPoint(dedupePoints(out))
	case orb.LineString:
		return orb.LineString(dedupePoints(snapPoints(t, scale)))
	case orb.MultiLineString:
		out := make(orb.MultiLineString, 0, len(t))
		for _, ls := range t {
			out = append(out, orb.LineString(dedupePoints(snapPoints(ls, scale))))
		}
		return out
	case orb.Ring:
		return normalizeRing(t, scale, true)
	case orb.Polygon:
		return normalizePolygon(t, scale)
	case orb.MultiPolygon:
		out := make(orb.MultiPolygon, 0, len(t))
		for _, poly := range t {
			out = append(out, normalizePolygon(poly, scale))
		}
		return out
	case orb.Collection:
		out := make(orb.Collection, 0, len(t))
		for _, sub := range t {
			out = append(out, Normalize(sub, precision))
		}
		return out
	default:
		return g
	}
}

func snapPoint(p orb.Point, scale float64) orb.Point {
	return orb.Point{
		math.Round(p[0]*scale) / scale,
		math.Round(p[1]*scale) / scale,
	}
}

func snapPoints(pts []orb.Point, scale float64) []orb.Point {
	out := make([]orb.Point, len(pts))
	for i, p := range pts {
		out[i] = snapPoint(p, scale)
	}
	return out
}

// dedupePoints removes consecutive duplicate vertices.
func dedupePoints(pts []orb.Point) []orb.Point {
	if len(pts) < 2 {
		return pts
	}
	out := pts[:1]
	for _, p := range pts[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}

func normalizePolygon(poly orb.Polygon, scale float64) orb.Polygon {
	out := make(orb.Polygon, 0, len(poly))
	for i, ring := range poly {
		out = append(out, normalizeRing(ring, scale, i == 0))
	}
	return out
}

// normalizeRing snaps, dedupes, enforces winding (exterior CCW, holes CW)
// and rotates the ring to start at its lexicographically smallest vertex so
// the hash is independent of the input start point.
func normalizeRing(ring orb.Ring, scale float64, exterior bool) orb.Ring {
	pts := dedupePoints(snapPoints(ring, scale))
	if len(pts) == 0 {
		return orb.Ring(pts)
	}

	// Work on the open form; re-close at the end.
	if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	if len(pts) < 3 {
		return closeRing(pts)
	}

	if ccw := signedArea(pts) > 0; ccw != exterior {
		reversePoints(pts)
	}

	start := 0
	for i, p := range pts {
		if lessPoint(p, pts[start]) {
			start = i
		}
	}
	rotated := make([]orb.Point, 0, len(pts))
	rotated = append(rotated, pts[start:]...)
	rotated = append(rotated, pts[:start]...)

	return closeRing(rotated)
}

func closeRing(pts []orb.Point) orb.Ring {
	if len(pts) > 0 && pts[0] != pts[len(pts)-1] {
		pts = append(pts, pts[0])
	}
	return orb.Ring(pts)
}

// signedArea is positive for counter-clockwise rings (shoelace over the open
// vertex list).
func signedArea(pts []orb.Point) float64 {
	area := 0.0
	n := len(pts)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += pts[i][0]*pts[j][1] - pts[j][0]*pts[i][1]
	}
	return area / 2
}

func reversePoints(pts []orb.Point) {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}

func lessPoint(a, b orb.Point) bool {
	if a[0] != b[0] {
		return a[0] < b[0]
	}
	return a[1] < b[1]
}
