// Package memsource provides an in-memory feature source. It backs the HTTP
// transport, where a request carries its whole dataset, and the engine tests.
package memsource

import (
	"context"
	"fmt"
	"sync"

	"github.com/kailas-cloud/duplicheck/internal/domain"
	"github.com/kailas-cloud/duplicheck/internal/domain/feature"
)

// Source holds features in insertion order and serves the detection engine's
// read contract. Safe for concurrent readers once populated.
type Source struct {
	mu    sync.RWMutex
	feats []feature.Feature
	byID  map[int64]int
}

// New creates an empty source.
func New() *Source {
	return &Source{byID: make(map[int64]int)}
}

// FromFeatures creates a source pre-populated with feats. Duplicate ids are
// rejected.
func FromFeatures(feats []feature.Feature) (*Source, error) {
	s := New()
	for _, f := range feats {
		if err := s.Add(f); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add appends a feature. The id must be unique within the source.
func (s *Source) Add(f feature.Feature) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.byID[f.ID()]; dup {
		return fmt.Errorf("%w: duplicate feature id %d", domain.ErrInvalidSource, f.ID())
	}
	s.byID[f.ID()] = len(s.feats)
	s.feats = append(s.feats, f)
	return nil
}

// Count reports the number of features held.
func (s *Source) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.feats), nil
}

// Iterate calls fn for every feature in insertion order.
func (s *Source) Iterate(ctx context.Context, fn func(feature.Feature) error) error {
	s.mu.RLock()
	feats := s.feats
	s.mu.RUnlock()

	for _, f := range feats {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

// IterateIDs calls fn for every requested id that exists, in the order the
// ids are given.
func (s *Source) IterateIDs(ctx context.Context, ids []int64, fn func(feature.Feature) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		i, ok := s.byID[id]
		if !ok {
			continue
		}
		if err := fn(s.feats[i]); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the feature with the given id.
func (s *Source) Get(id int64) (feature.Feature, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return feature.Feature{}, false
	}
	return s.feats[i], true
}
