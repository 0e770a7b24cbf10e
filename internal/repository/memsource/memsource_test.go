package memsource

import (
	"context"
	"errors"
	"testing"

	"github.com/paulmach/orb"

	"github.com/kailas-cloud/duplicheck/internal/domain"
	"github.com/kailas-cloud/duplicheck/internal/domain/feature"
)

func TestSource_AddAndCount(t *testing.T) {
	s := New()
	for i := int64(1); i <= 3; i++ {
		if err := s.Add(feature.Reconstruct(i, orb.Point{float64(i), 0}, nil)); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}
	n, err := s.Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Fatalf("want count 3, got %d", n)
	}
}

func TestSource_RejectsDuplicateID(t *testing.T) {
	s := New()
	if err := s.Add(feature.Reconstruct(7, nil, nil)); err != nil {
		t.Fatalf("first add: %v", err)
	}
	err := s.Add(feature.Reconstruct(7, nil, nil))
	if !errors.Is(err, domain.ErrInvalidSource) {
		t.Fatalf("want ErrInvalidSource, got %v", err)
	}
}

func TestSource_IterateOrder(t *testing.T) {
	s, err := FromFeatures([]feature.Feature{
		feature.Reconstruct(3, nil, nil),
		feature.Reconstruct(1, nil, nil),
		feature.Reconstruct(2, nil, nil),
	})
	if err != nil {
		t.Fatalf("from features: %v", err)
	}

	var got []int64
	err = s.Iterate(context.Background(), func(f feature.Feature) error {
		got = append(got, f.ID())
		return nil
	})
	if err != nil {
		t.Fatalf("iterate: %v", err)
	}
	want := []int64{3, 1, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("want order %v, got %v", want, got)
		}
	}
}

func TestSource_IterateIDsSkipsUnknown(t *testing.T) {
	s, _ := FromFeatures([]feature.Feature{
		feature.Reconstruct(1, nil, nil),
		feature.Reconstruct(2, nil, nil),
	})

	var got []int64
	err := s.IterateIDs(context.Background(), []int64{2, 99, 1}, func(f feature.Feature) error {
		got = append(got, f.ID())
		return nil
	})
	if err != nil {
		t.Fatalf("iterate ids: %v", err)
	}
	if len(got) != 2 || got[0] != 2 || got[1] != 1 {
		t.Fatalf("want [2 1], got %v", got)
	}
}

func TestSource_IterateCancelled(t *testing.T) {
	s, _ := FromFeatures([]feature.Feature{feature.Reconstruct(1, nil, nil)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Iterate(ctx, func(feature.Feature) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestSource_Get(t *testing.T) {
	s, _ := FromFeatures([]feature.Feature{
		feature.Reconstruct(5, orb.Point{1, 2}, nil),
	})
	f, ok := s.Get(5)
	if !ok || f.ID() != 5 {
		t.Fatalf("want feature 5, got ok=%v id=%d", ok, f.ID())
	}
	if _, ok := s.Get(6); ok {
		t.Fatal("want miss for unknown id")
	}
}
