package index

import (
	"sort"
	"testing"

	"github.com/paulmach/orb"
)

func TestRTree_SearchIntersecting(t *testing.T) {
	x := NewRTree()
	x.Insert(1, orb.Point{0, 0}.Bound())
	x.Insert(2, orb.Point{0.4, 0}.Bound())
	x.Insert(3, orb.Point{100, 100}.Bound())

	if x.Len() != 3 {
		t.Fatalf("want 3 entries, got %d", x.Len())
	}

	got := x.Search(orb.Point{0, 0}.Bound().Pad(1.0))
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("want [1 2], got %v", got)
	}
}

func TestRTree_SelfIsCandidate(t *testing.T) {
	// A feature's own bound intersects its query rectangle; the scan is
	// responsible for skipping the seed id.
	x := NewRTree()
	x.Insert(7, orb.Point{5, 5}.Bound())
	got := x.Search(orb.Point{5, 5}.Bound().Pad(0.1))
	if len(got) != 1 || got[0] != 7 {
		t.Fatalf("want self candidate [7], got %v", got)
	}
}

func TestRTree_EmptySearch(t *testing.T) {
	x := NewRTree()
	if got := x.Search(orb.Point{1, 1}.Bound()); len(got) != 0 {
		t.Fatalf("want no candidates, got %v", got)
	}
}
