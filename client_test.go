package duplicheck

import (
	"context"
	"testing"

	"github.com/paulmach/orb"
)

func TestDetection_ExactGeometry(t *testing.T) {
	c := New()

	report, err := c.Detection(
		Feature{ID: 1, Geometry: orb.Point{2.3522, 48.8566}},
		Feature{ID: 2, Geometry: orb.Point{2.3522, 48.8566}},
		Feature{ID: 3, Geometry: orb.Point{4.8357, 45.764}},
	).Do(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.Groups) != 1 {
		t.Fatalf("want 1 group, got %d", len(report.Groups))
	}
	g := report.Groups[0]
	if len(g.FeatureIDs) != 2 || g.FeatureIDs[0] != 1 || g.FeatureIDs[1] != 2 {
		t.Fatalf("want group [1 2], got %v", g.FeatureIDs)
	}
	if g.Confidence != 1.0 || g.DetectionType != "geometry" {
		t.Fatalf("unexpected group %+v", g)
	}
	if report.Stats.TotalFeatures != 3 || report.Stats.DuplicateFeatures != 2 {
		t.Fatalf("unexpected stats %+v", report.Stats)
	}
}

func TestDetection_ToleranceCentroid(t *testing.T) {
	c := New()

	report, err := c.Detection(
		Feature{ID: 1, Geometry: orb.Point{0, 0}},
		Feature{ID: 2, Geometry: orb.Point{0.5, 0}},
		Feature{ID: 3, Geometry: orb.Point{99, 99}},
	).Tolerance(1.0).Method("centroid").Do(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.Groups) != 1 {
		t.Fatalf("want 1 group, got %d", len(report.Groups))
	}
	if len(report.Groups[0].FeatureIDs) != 2 {
		t.Fatalf("want 2 members, got %v", report.Groups[0].FeatureIDs)
	}
}

func TestDetection_Attributes(t *testing.T) {
	c := New()

	report, err := c.Detection(
		Feature{ID: 1, Properties: map[string]any{"name": "Paris"}},
		Feature{ID: 2, Properties: map[string]any{"name": "  paris "}},
		Feature{ID: 3, Properties: map[string]any{"name": "Lyon"}},
	).Attributes("name").Do(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.Groups) != 1 {
		t.Fatalf("want 1 group, got %d", len(report.Groups))
	}
	if len(report.Groups[0].FeatureIDs) != 2 {
		t.Fatalf("want the Paris variants grouped, got %v", report.Groups[0].FeatureIDs)
	}
}

func TestDetection_PrioritySuggestsKeep(t *testing.T) {
	c := New()

	report, err := c.Detection(
		Feature{ID: 1, Properties: map[string]any{"name": "Paris", "pop": nil}},
		Feature{ID: 2, Properties: map[string]any{"name": "Paris", "pop": 2148000}},
	).Attributes("name").Priority().Do(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.Groups) != 1 {
		t.Fatalf("want 1 group, got %d", len(report.Groups))
	}
	keep := report.Groups[0].SuggestedKeep
	if keep == nil || *keep != 2 {
		t.Fatalf("want suggested keep 2, got %v", keep)
	}
}

func TestDetection_BothConsolidates(t *testing.T) {
	c := New()

	report, err := c.Detection(
		Feature{ID: 1, Geometry: orb.Point{10, 10}, Properties: map[string]any{"name": "Alpha"}},
		Feature{ID: 2, Geometry: orb.Point{10, 10}, Properties: map[string]any{"name": "Beta"}},
		Feature{ID: 3, Geometry: orb.Point{99, 99}, Properties: map[string]any{"name": "Beta"}},
	).Both("name").Do(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.Groups) != 1 {
		t.Fatalf("want 1 consolidated group, got %d", len(report.Groups))
	}
	if len(report.Groups[0].FeatureIDs) != 3 {
		t.Fatalf("want group [1 2 3], got %v", report.Groups[0].FeatureIDs)
	}
}

func TestDetection_ProgressCallback(t *testing.T) {
	var percents []int
	c := New(WithProgress(func(percent int, _ string) {
		percents = append(percents, percent)
	}))

	_, err := c.Detection(
		Feature{ID: 1, Geometry: orb.Point{1, 1}},
		Feature{ID: 2, Geometry: orb.Point{1, 1}},
	).Do(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(percents) == 0 || percents[len(percents)-1] != 100 {
		t.Fatalf("want progress ending at 100, got %v", percents)
	}
}

func TestDetection_InvalidOptions(t *testing.T) {
	c := New()

	if _, err := c.Detection(
		Feature{ID: 1, Geometry: orb.Point{1, 1}},
	).Attributes().Do(context.Background()); err == nil {
		t.Fatal("want error for attribute mode without fields")
	}

	if _, err := c.Detection(
		Feature{ID: 1, Geometry: orb.Point{1, 1}},
		Feature{ID: 1, Geometry: orb.Point{1, 1}},
	).Do(context.Background()); err == nil {
		t.Fatal("want error for duplicate feature ids")
	}
}
