package attribute

import "github.com/kailas-cloud/duplicheck/internal/domain/feature"

// ValuePair holds both sides of a differing field.
type ValuePair struct {
	First  feature.Value
	Second feature.Value
}

// Diff partitions the union of two features' fields by agreement.
type Diff struct {
	Same         map[string]feature.Value
	Different    map[string]ValuePair
	OnlyInFirst  map[string]feature.Value
	OnlyInSecond map[string]feature.Value
}

// Differences compares every field of both features, not just the configured
// comparison fields. Useful for presenting a side-by-side review.
func Differences(f1, f2 feature.Feature) Diff {
	d := Diff{
		Same:         make(map[string]feature.Value),
		Different:    make(map[string]ValuePair),
		OnlyInFirst:  make(map[string]feature.Value),
		OnlyInSecond: make(map[string]feature.Value),
	}

	seen := make(map[string]bool)
	for _, a := range f1.Attrs() {
		seen[a.Name] = true
		v2, ok := f2.Value(a.Name)
		switch {
		case !ok:
			d.OnlyInFirst[a.Name] = a.Value
		case a.Value.Equal(v2):
			d.Same[a.Name] = a.Value
		default:
			d.Different[a.Name] = ValuePair{First: a.Value, Second: v2}
		}
	}
	for _, a := range f2.Attrs() {
		if !seen[a.Name] {
			d.OnlyInSecond[a.Name] = a.Value
		}
	}
	return d
}
