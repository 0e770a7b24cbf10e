// Package priority suggests which feature of a duplicate group to keep,
// applying an ordered rule chain with deterministic tie-breaking.
package priority

import (
	"context"
	"fmt"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"go.uber.org/zap"

	"github.com/kailas-cloud/duplicheck/internal/domain"
	"github.com/kailas-cloud/duplicheck/internal/domain/feature"
	"github.com/kailas-cloud/duplicheck/internal/domain/group"
)

// Resolver applies priority rules to duplicate groups.
type Resolver struct {
	rules  Rules
	reader FeatureReader
	logger *zap.Logger
}

// New creates a resolver.
func New(rules Rules, reader FeatureReader, logger *zap.Logger) (*Resolver, error) {
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidParams, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{rules: rules, reader: reader, logger: logger}, nil
}

// Resolve populates every group's keep suggestion. Groups the chain cannot
// decide are left unset when the id fallback is disabled.
func (r *Resolver) Resolve(ctx context.Context, groups []*group.Group) error {
	for _, g := range groups {
		keep, ok, err := r.resolveGroup(ctx, g)
		if err != nil {
			return err
		}
		if !ok {
			g.ClearSuggestedKeep()
			continue
		}
		if err := g.SetSuggestedKeep(keep); err != nil {
			return fmt.Errorf("resolve group: %w", err)
		}
	}
	return nil
}

func (r *Resolver) resolveGroup(ctx context.Context, g *group.Group) (int64, bool, error) {
	ids := g.IDs()
	// Groups below the minimum size resolve to their sole member.
	if len(ids) < 2 {
		if len(ids) == 1 {
			return ids[0], true, nil
		}
		return 0, false, nil
	}

	features := make(map[int64]feature.Feature, len(ids))
	err := r.reader.IterateIDs(ctx, ids, func(f feature.Feature) error {
		features[f.ID()] = f
		return nil
	})
	if err != nil {
		return 0, false, fmt.Errorf("%w: %s", domain.ErrSourceRead, err)
	}
	if len(features) == 0 {
		return 0, false, nil
	}

	candidates := make([]int64, 0, len(features))
	for id := range features {
		candidates = append(candidates, id)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })

	if r.rules.Field != "" {
		if keep, ok := r.applyFieldRule(features, candidates); ok {
			return keep, true, nil
		}
	}
	if r.rules.Completeness {
		if keep, ok := applyCompletenessRule(features, candidates); ok {
			return keep, true, nil
		}
	}
	if r.rules.Area != "" {
		if keep, ok := applyAreaRule(r.rules.Area, features, candidates); ok {
			return keep, true, nil
		}
	}
	if r.rules.FIDFallback {
		return candidates[0], true, nil
	}
	return 0, false, nil
}

// applyFieldRule orders candidates by a field value. Unparseable dates fall
// back to lexical ordering; mutually non-comparable values leave the rule
// undecided.
func (r *Resolver) applyFieldRule(features map[int64]feature.Feature, candidates []int64) (int64, bool) {
	values := make(map[int64]feature.Value)
	for _, id := range candidates {
		v, _ := features[id].Value(r.rules.Field)
		if !v.IsNull() {
			values[id] = v
		}
	}
	if len(values) == 0 {
		return 0, false
	}

	order := r.rules.FieldOrder
	if order == "" {
		order = OrderHighest
	}

	switch order {
	case OrderHighest, OrderLowest:
		keep, err := extremeBy(candidates, values, order == OrderHighest)
		if err != nil {
			r.logger.Debug("field rule undecided", zap.String("field", r.rules.Field), zap.Error(err))
			return 0, false
		}
		return keep, true
	case OrderMostRecent, OrderOldest:
		return extremeByDate(candidates, values, order == OrderMostRecent), true
	default:
		return 0, false
	}
}

// extremeBy returns the candidate with the highest (or lowest) value.
// Iteration in ascending id order makes ties resolve to the smallest id.
func extremeBy(candidates []int64, values map[int64]feature.Value, highest bool) (int64, error) {
	var bestID int64
	var bestVal feature.Value
	first := true
	for _, id := range candidates {
		v, ok := values[id]
		if !ok {
			continue
		}
		if first {
			bestID, bestVal, first = id, v, false
			continue
		}
		c, err := v.Compare(bestVal)
		if err != nil {
			return 0, err
		}
		if (highest && c > 0) || (!highest && c < 0) {
			bestID, bestVal = id, v
		}
	}
	return bestID, nil
}

// extremeByDate orders by parsed date, falling back to lexical ordering when
// no candidate value parses as a date.
func extremeByDate(candidates []int64, values map[int64]feature.Value, mostRecent bool) int64 {
	dated := make(map[int64]int64) // id -> unix nanos
	for id, v := range values {
		if t, ok := parseDate(v); ok {
			dated[id] = t.UnixNano()
		}
	}

	if len(dated) == 0 {
		var bestID int64
		best := ""
		first := true
		for _, id := range candidates {
			v, ok := values[id]
			if !ok {
				continue
			}
			s := v.String()
			if first || (mostRecent && s > best) || (!mostRecent && s < best) {
				bestID, best, first = id, s, false
			}
		}
		return bestID
	}

	var bestID int64
	var best int64
	first := true
	for _, id := range candidates {
		ts, ok := dated[id]
		if !ok {
			continue
		}
		if first || (mostRecent && ts > best) || (!mostRecent && ts < best) {
			bestID, best, first = id, ts, false
		}
	}
	return bestID
}

// applyCompletenessRule keeps the candidate with the fewest NULL fields.
// A tie leaves the rule undecided.
func applyCompletenessRule(features map[int64]feature.Feature, candidates []int64) (int64, bool) {
	minNulls := -1
	var bestID int64
	ties := 0
	for _, id := range candidates {
		n := features[id].NullCount()
		switch {
		case minNulls < 0 || n < minNulls:
			minNulls, bestID, ties = n, id, 1
		case n == minNulls:
			ties++
		}
	}
	if ties != 1 {
		return 0, false
	}
	return bestID, true
}

// applyAreaRule keeps the largest or smallest polygon. Candidates without a
// polygon geometry are excluded; none left leaves the rule undecided.
func applyAreaRule(rule AreaRule, features map[int64]feature.Feature, candidates []int64) (int64, bool) {
	var bestID int64
	var best float64
	first := true
	for _, id := range candidates {
		g := features[id].Geometry()
		if !isPolygonal(g) {
			continue
		}
		area := planar.Area(g)
		if first || (rule == AreaLargest && area > best) || (rule == AreaSmallest && area < best) {
			bestID, best, first = id, area, false
		}
	}
	if first {
		return 0, false
	}
	return bestID, true
}

func isPolygonal(g orb.Geometry) bool {
	switch g.(type) {
	case orb.Polygon, orb.MultiPolygon:
		return true
	default:
		return false
	}
}
