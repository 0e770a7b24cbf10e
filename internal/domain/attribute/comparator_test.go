package attribute

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/duplicheck/internal/domain"
	"github.com/kailas-cloud/duplicheck/internal/domain/feature"
)

func feat(t *testing.T, id int64, attrs ...feature.Attr) feature.Feature {
	t.Helper()
	f, err := feature.New(id, nil, attrs)
	if err != nil {
		t.Fatalf("build feature: %v", err)
	}
	return f
}

func attr(name string, v feature.Value) feature.Attr {
	return feature.Attr{Name: name, Value: v}
}

func TestNew_RequiresFields(t *testing.T) {
	_, err := New(Config{})
	if !errors.Is(err, domain.ErrNoCompareFields) {
		t.Fatalf("want ErrNoCompareFields, got %v", err)
	}
}

func TestNew_RejectsBadThreshold(t *testing.T) {
	_, err := New(Config{Fields: []string{"name"}, FuzzyThreshold: 1.5})
	if !errors.Is(err, domain.ErrInvalidParams) {
		t.Fatalf("want ErrInvalidParams, got %v", err)
	}
}

func TestKey_NormalizationCollapsesVariants(t *testing.T) {
	c, _ := New(Config{Fields: []string{"name"}, Normalize: true})

	variants := []string{"Paris", " paris ", "PARIS", "pa\tris"}
	keys := make(map[Key]bool)
	for i, s := range variants[:3] {
		k, ok := c.Key(feat(t, int64(i), attr("name", feature.Text(s))))
		if !ok {
			t.Fatalf("want key for %q", s)
		}
		keys[k] = true
	}
	if len(keys) != 1 {
		t.Fatalf("want one key for Paris variants, got %d", len(keys))
	}

	lyon, _ := c.Key(feat(t, 9, attr("name", feature.Text("Lyon"))))
	if keys[lyon] {
		t.Fatal("Lyon must not share the Paris key")
	}
}

func TestKey_InternalWhitespaceCollapsed(t *testing.T) {
	c, _ := New(Config{Fields: []string{"name"}, Normalize: true})
	a, _ := c.Key(feat(t, 1, attr("name", feature.Text("new   york"))))
	b, _ := c.Key(feat(t, 2, attr("name", feature.Text("New York"))))
	if a != b {
		t.Fatalf("want collapsed whitespace keys to match, got %q vs %q", a, b)
	}
}

func TestKey_CaseSensitiveMode(t *testing.T) {
	c, _ := New(Config{Fields: []string{"name"}, Normalize: true, CaseSensitive: true})
	a, _ := c.Key(feat(t, 1, attr("name", feature.Text("Paris"))))
	b, _ := c.Key(feat(t, 2, attr("name", feature.Text("paris"))))
	if a == b {
		t.Fatal("case-sensitive keys must differ")
	}
}

func TestKey_IgnoreNullSuppressesKey(t *testing.T) {
	c, _ := New(Config{Fields: []string{"name", "code"}, IgnoreNull: true})
	_, ok := c.Key(feat(t, 1, attr("name", feature.Text("x")), attr("code", feature.Null())))
	if ok {
		t.Fatal("want suppressed key when a field is NULL and ignore_null is on")
	}
	// Missing field reads as NULL too.
	_, ok = c.Key(feat(t, 2, attr("name", feature.Text("x"))))
	if ok {
		t.Fatal("want suppressed key for missing field")
	}
}

func TestKey_NullParticipatesWithoutIgnoreNull(t *testing.T) {
	c, _ := New(Config{Fields: []string{"name", "code"}})
	a, ok := c.Key(feat(t, 1, attr("name", feature.Text("x")), attr("code", feature.Null())))
	if !ok {
		t.Fatal("want key with NULL element")
	}
	b, _ := c.Key(feat(t, 2, attr("name", feature.Text("x")), attr("code", feature.Null())))
	if a != b {
		t.Fatal("identical tuples with NULL must key equal")
	}
}

func TestKey_KindsDoNotCollide(t *testing.T) {
	c, _ := New(Config{Fields: []string{"v"}})
	a, _ := c.Key(feat(t, 1, attr("v", feature.Text("1"))))
	b, _ := c.Key(feat(t, 2, attr("v", feature.Int(1))))
	if a == b {
		t.Fatal("text \"1\" and integer 1 must key differently")
	}
}

func TestKey_NumericKindsShareKey(t *testing.T) {
	c, _ := New(Config{Fields: []string{"v"}})
	i, _ := c.Key(feat(t, 1, attr("v", feature.Int(1))))
	r, _ := c.Key(feat(t, 2, attr("v", feature.Real(1.0))))
	if i != r {
		t.Fatalf("integer 1 and real 1.0 must share a key, got %q and %q", i, r)
	}
	s, _ := c.Key(feat(t, 3, attr("v", feature.Text("1"))))
	if s == i {
		t.Fatal("text \"1\" must not share the numeric key")
	}
}

func TestCompare_ExactMatch(t *testing.T) {
	c, _ := New(Config{Fields: []string{"name"}, Normalize: true})
	ok, score, reason := c.Compare(
		feat(t, 1, attr("name", feature.Text("Paris"))),
		feat(t, 2, attr("name", feature.Text(" PARIS "))),
	)
	if !ok || score != 1.0 {
		t.Fatalf("want exact match, got ok=%v score=%f reason=%q", ok, score, reason)
	}
}

func TestCompare_SuppressedKeysNeverMatch(t *testing.T) {
	c, _ := New(Config{Fields: []string{"name"}, IgnoreNull: true})
	ok, _, _ := c.Compare(
		feat(t, 1, attr("name", feature.Null())),
		feat(t, 2, attr("name", feature.Null())),
	)
	if ok {
		t.Fatal("suppressed keys must not match, even against each other")
	}
}

func TestCompare_FuzzyMatch(t *testing.T) {
	c, _ := New(Config{Fields: []string{"name"}, FuzzyThreshold: 0.8})
	ok, score, _ := c.Compare(
		feat(t, 1, attr("name", feature.Text("strasbourg"))),
		feat(t, 2, attr("name", feature.Text("strasburg"))),
	)
	if !ok {
		t.Fatal("want fuzzy match above threshold")
	}
	if score < 0.8 || score >= 1.0 {
		t.Fatalf("want fuzzy score in [0.8,1), got %f", score)
	}

	ok, _, _ = c.Compare(
		feat(t, 3, attr("name", feature.Text("strasbourg"))),
		feat(t, 4, attr("name", feature.Text("lyon"))),
	)
	if ok {
		t.Fatal("want no fuzzy match for dissimilar strings")
	}
}

func TestCompare_NoFuzzyWhenThresholdZero(t *testing.T) {
	c, _ := New(Config{Fields: []string{"name"}})
	ok, _, _ := c.Compare(
		feat(t, 1, attr("name", feature.Text("strasbourg"))),
		feat(t, 2, attr("name", feature.Text("strasburg"))),
	)
	if ok {
		t.Fatal("near-matches must not match without a fuzzy threshold")
	}
}

func TestCompleteness(t *testing.T) {
	full := feat(t, 1, attr("a", feature.Text("x")), attr("b", feature.Int(2)))
	if got := Completeness(full); got != 1.0 {
		t.Fatalf("want 1.0, got %f", got)
	}
	half := feat(t, 2, attr("a", feature.Text("x")), attr("b", feature.Null()))
	if got := Completeness(half); got != 0.5 {
		t.Fatalf("want 0.5, got %f", got)
	}
	empty := feat(t, 3)
	if got := Completeness(empty); got != 1.0 {
		t.Fatalf("want 1.0 for featureless record, got %f", got)
	}
}

func TestDifferences(t *testing.T) {
	f1 := feat(t, 1,
		attr("name", feature.Text("Paris")),
		attr("pop", feature.Int(100)),
		attr("old", feature.Text("only1")),
	)
	f2 := feat(t, 2,
		attr("name", feature.Text("Paris")),
		attr("pop", feature.Int(200)),
		attr("new", feature.Text("only2")),
	)

	d := Differences(f1, f2)
	if _, ok := d.Same["name"]; !ok {
		t.Fatal("want name in Same")
	}
	pair, ok := d.Different["pop"]
	if !ok || pair.First.Int() != 100 || pair.Second.Int() != 200 {
		t.Fatalf("want pop difference 100/200, got %+v", pair)
	}
	if _, ok := d.OnlyInFirst["old"]; !ok {
		t.Fatal("want old in OnlyInFirst")
	}
	if _, ok := d.OnlyInSecond["new"]; !ok {
		t.Fatal("want new in OnlyInSecond")
	}
}
