package group

import (
	"reflect"
	"testing"
)

func TestGroup_Basics(t *testing.T) {
	g := New(Geometry, 0.9, "test", 3, 1, 2)
	if g.Size() != 3 {
		t.Fatalf("want size 3, got %d", g.Size())
	}
	if !reflect.DeepEqual(g.IDs(), []int64{1, 2, 3}) {
		t.Fatalf("want sorted ids, got %v", g.IDs())
	}
	if !g.Contains(2) || g.Contains(4) {
		t.Fatal("membership check failed")
	}
}

func TestGroup_SuggestedKeepMustBeMember(t *testing.T) {
	g := New(Attribute, 1.0, "test", 1, 2)
	if err := g.SetSuggestedKeep(5); err == nil {
		t.Fatal("want error for non-member keep")
	}
	if err := g.SetSuggestedKeep(2); err != nil {
		t.Fatalf("want member keep accepted, got %v", err)
	}
	keep, ok := g.SuggestedKeep()
	if !ok || keep != 2 {
		t.Fatalf("want keep 2, got %d ok=%v", keep, ok)
	}
}

func TestGroup_MergeFrom(t *testing.T) {
	a := New(Geometry, 0.9, "a", 1, 2)
	a.SetMetadata("tolerance", "0.5")
	b := New(Attribute, 0.7, "b", 2, 3)
	b.SetMetadata("key", "paris")
	b.SetMetadata("tolerance", "ignored")

	a.MergeFrom(b)

	if !reflect.DeepEqual(a.IDs(), []int64{1, 2, 3}) {
		t.Fatalf("want union of ids, got %v", a.IDs())
	}
	if a.Confidence() != 0.7 {
		t.Fatalf("want min confidence 0.7, got %f", a.Confidence())
	}
	if a.DetectionType() != Geometry {
		t.Fatal("receiver keeps its detection type")
	}
	if a.Metadata()["key"] != "paris" {
		t.Fatal("want absorbed metadata key")
	}
	if a.Metadata()["tolerance"] != "0.5" {
		t.Fatal("existing metadata must win on merge")
	}
}
