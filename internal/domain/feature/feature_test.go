package feature

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestNew_RejectsDuplicateAttributeNames(t *testing.T) {
	_, err := New(1, nil, []Attr{
		{Name: "name", Value: Text("a")},
		{Name: "name", Value: Text("b")},
	})
	if err == nil {
		t.Fatal("want error for duplicate attribute name")
	}
}

func TestNew_RejectsEmptyAttributeName(t *testing.T) {
	_, err := New(1, nil, []Attr{{Name: "", Value: Text("a")}})
	if err == nil {
		t.Fatal("want error for empty attribute name")
	}
}

func TestFeature_ValueLookup(t *testing.T) {
	f := Reconstruct(1, nil, []Attr{
		{Name: "name", Value: Text("Paris")},
		{Name: "pop", Value: Null()},
	})

	v, ok := f.Value("name")
	if !ok || v.Text() != "Paris" {
		t.Fatalf("want Paris, got %q ok=%v", v.Text(), ok)
	}

	v, ok = f.Value("missing")
	if ok || !v.IsNull() {
		t.Fatalf("missing attribute must read as NULL, got %v ok=%v", v, ok)
	}

	if f.NullCount() != 1 {
		t.Fatalf("want 1 null, got %d", f.NullCount())
	}
}

func TestFeature_HasGeometry(t *testing.T) {
	cases := []struct {
		name string
		geom orb.Geometry
		want bool
	}{
		{"nil", nil, false},
		{"point", orb.Point{1, 2}, true},
		{"empty linestring", orb.LineString{}, false},
		{"empty polygon", orb.Polygon{}, false},
		{"polygon", orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}, true},
		{"empty collection", orb.Collection{orb.LineString{}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := Reconstruct(1, tc.geom, nil)
			if f.HasGeometry() != tc.want {
				t.Fatalf("HasGeometry = %v, want %v", f.HasGeometry(), tc.want)
			}
		})
	}
}

func TestFeature_FieldNamesOrder(t *testing.T) {
	f := Reconstruct(1, nil, []Attr{
		{Name: "b", Value: Int(1)},
		{Name: "a", Value: Int(2)},
	})
	names := f.FieldNames()
	if len(names) != 2 || names[0] != "b" || names[1] != "a" {
		t.Fatalf("want declaration order [b a], got %v", names)
	}
}
