// Package detect orchestrates duplicate detection: sampling, spatial
// indexing, the geometry and attribute scan passes, priority resolution and
// group consolidation.
package detect

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/duplicheck/internal/domain"
	"github.com/kailas-cloud/duplicheck/internal/domain/attribute"
	"github.com/kailas-cloud/duplicheck/internal/domain/feature"
	"github.com/kailas-cloud/duplicheck/internal/domain/geometry"
	"github.com/kailas-cloud/duplicheck/internal/domain/group"
	"github.com/kailas-cloud/duplicheck/internal/index"
	"github.com/kailas-cloud/duplicheck/internal/metrics"
	"github.com/kailas-cloud/duplicheck/internal/usecase/priority"
)

// Stats summarizes one detection run.
type Stats struct {
	TotalFeatures     int
	ScannedFeatures   int
	DuplicateGroups   int
	DuplicateFeatures int
	DuplicationRate   float64
	Mode              Mode
	Tolerance         float64
	Fields            []string
}

// Result is the output of one detection run.
type Result struct {
	Groups []*group.Group
	Stats  Stats
}

// Service runs duplicate detection over a feature source. A Service is
// reusable across runs, but a single Detect call holds exclusive mutable
// scan state and must not be invoked concurrently on the same instance.
type Service struct {
	source   FeatureSource
	progress ProgressSink
	newIndex func() SpatialIndex
	logger   *zap.Logger
	seed     int64
}

// New creates a detection service. progress may be nil; newIndex may be nil
// to use the built-in R-tree.
func New(source FeatureSource, newIndex func() SpatialIndex, progress ProgressSink, logger *zap.Logger) *Service {
	if newIndex == nil {
		newIndex = func() SpatialIndex { return index.NewRTree() }
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		source:   source,
		progress: progress,
		newIndex: newIndex,
		logger:   logger,
		seed:     time.Now().UnixNano(),
	}
}

// SetSampleSeed fixes the sampling RNG seed. Used by tests for determinism.
func (s *Service) SetSampleSeed(seed int64) { s.seed = seed }

// Detect runs one detection pass to completion on the calling goroutine.
// Cancel via ctx; the engine checks it between features and aborts with no
// partial result.
func (s *Service) Detect(ctx context.Context, params Params) (*Result, error) {
	start := time.Now()
	params = params.withDefaults()

	res, err := s.detect(ctx, params)

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.DetectionRunsTotal.WithLabelValues(string(params.Mode), status).Inc()
	metrics.DetectionDuration.WithLabelValues(string(params.Mode)).Observe(time.Since(start).Seconds())
	if res != nil {
		metrics.DuplicateGroupsFound.WithLabelValues(string(params.Mode)).Add(float64(len(res.Groups)))
		metrics.FeaturesScanned.Add(float64(res.Stats.ScannedFeatures))
	}
	return res, err
}

func (s *Service) detect(ctx context.Context, params Params) (*Result, error) {
	if s.source == nil {
		return nil, domain.ErrInvalidSource
	}
	if err := params.validate(); err != nil {
		return nil, err
	}

	total, err := s.source.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: count: %s", domain.ErrSourceRead, err)
	}

	r := &run{
		svc:      s,
		params:   params,
		total:    total,
		cache:    make(map[int64]feature.Feature, total),
		assigned: make(map[int64]bool),
	}
	r.report(0, fmt.Sprintf("analyzing %d features", total))

	if err := r.load(ctx); err != nil {
		return nil, err
	}

	var groups []*group.Group
	switch params.Mode {
	case ModeGeometry:
		groups, err = r.detectGeometry(ctx)
	case ModeAttribute:
		groups, err = r.detectAttribute(ctx)
	case ModeBoth:
		groups, err = r.detectGeometry(ctx)
		if err == nil {
			var attrGroups []*group.Group
			// The attribute pass sees every in-scope feature, including ones
			// the geometry pass already grouped; consolidation reconciles.
			attrGroups, err = r.detectAttribute(ctx)
			groups = append(groups, attrGroups...)
		}
	}
	if err != nil {
		return nil, err
	}

	if params.PriorityRules != nil {
		r.report(70, "resolving priorities")
		resolver, rerr := priority.New(*params.PriorityRules, r, s.logger)
		if rerr != nil {
			return nil, rerr
		}
		if rerr := resolver.Resolve(ctx, groups); rerr != nil {
			return nil, rerr
		}
	}

	r.report(90, "consolidating groups")
	groups = consolidate(groups)

	r.report(100, fmt.Sprintf("found %d duplicate groups", len(groups)))

	dupFeatures := 0
	for _, g := range groups {
		dupFeatures += g.Size()
	}
	rate := 0.0
	if total > 0 {
		rate = float64(dupFeatures) / float64(total)
	}

	s.logger.Info("detection run complete",
		zap.String("mode", string(params.Mode)),
		zap.Int("features", total),
		zap.Int("scanned", len(r.order)),
		zap.Int("groups", len(groups)),
		zap.Int("duplicate_features", dupFeatures),
	)

	return &Result{
		Groups: groups,
		Stats: Stats{
			TotalFeatures:     total,
			ScannedFeatures:   len(r.order),
			DuplicateGroups:   len(groups),
			DuplicateFeatures: dupFeatures,
			DuplicationRate:   rate,
			Mode:              params.Mode,
			Tolerance:         params.Tolerance,
			Fields:            params.Fields,
		},
	}, nil
}

// run holds the mutable state of one detection pass: the feature cache, the
// scan order, the spatial index and the visited set. It is created per
// Detect call and discarded at its end.
type run struct {
	svc      *Service
	params   Params
	total    int
	cache    map[int64]feature.Feature
	order    []int64
	assigned map[int64]bool
}

func (r *run) report(percent int, message string) {
	if r.svc.progress != nil {
		r.svc.progress.Report(percent, message)
	}
}

// load fills the feature cache, drawing a uniform random sample first when
// sampling is enabled and the dataset is larger than the sample size.
func (r *run) load(ctx context.Context) error {
	cacheFn := func(f feature.Feature) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.cache[f.ID()] = f
		r.order = append(r.order, f.ID())
		return nil
	}

	if r.params.SampleMode && r.total > r.params.SampleSize {
		r.report(5, fmt.Sprintf("sampling %d features", r.params.SampleSize))

		var ids []int64
		err := r.svc.source.Iterate(ctx, func(f feature.Feature) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ids = append(ids, f.ID())
			return nil
		})
		if err != nil {
			return wrapSourceErr(err)
		}

		rng := rand.New(rand.NewSource(r.svc.seed))
		rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
		if len(ids) > r.params.SampleSize {
			ids = ids[:r.params.SampleSize]
		}

		if err := r.svc.source.IterateIDs(ctx, ids, cacheFn); err != nil {
			return wrapSourceErr(err)
		}
		return nil
	}

	if err := r.svc.source.Iterate(ctx, cacheFn); err != nil {
		return wrapSourceErr(err)
	}
	return nil
}

// wrapSourceErr tags source iteration failures; cancellation passes through
// untagged so callers can match context errors directly.
func wrapSourceErr(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %s", domain.ErrSourceRead, err)
}

// IterateIDs serves the priority resolver from the run's own cache.
func (r *run) IterateIDs(_ context.Context, ids []int64, fn func(feature.Feature) error) error {
	for _, id := range ids {
		if f, ok := r.cache[id]; ok {
			if err := fn(f); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *run) detectGeometry(ctx context.Context) ([]*group.Group, error) {
	cmp := geometry.New(r.params.Tolerance, r.params.CompareMethod, r.params.DecomposeMultipart)
	if r.params.Tolerance == 0 {
		return r.detectByHash(ctx, cmp)
	}
	return r.detectByTolerance(ctx, cmp)
}

// detectByHash buckets features by exact geometry hash. Features without a
// geometry are skipped rather than bucketed under the NULL sentinel.
func (r *run) detectByHash(ctx context.Context, cmp *geometry.Comparator) ([]*group.Group, error) {
	buckets := make(map[string][]int64)
	bucketOrder := make([]string, 0)

	for i, id := range r.order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r.reportScan(i, "hashing geometries")

		f := r.cache[id]
		if !f.HasGeometry() {
			continue
		}
		h := cmp.Hash(f.Geometry())
		if len(buckets[h]) == 0 {
			bucketOrder = append(bucketOrder, h)
		}
		buckets[h] = append(buckets[h], id)
	}

	var groups []*group.Group
	for _, h := range bucketOrder {
		ids := buckets[h]
		if len(ids) < 2 {
			continue
		}
		g := group.New(group.Geometry, 1.0, "exact WKB match", ids...)
		g.SetMetadata("hash", h)
		groups = append(groups, g)
	}
	return groups, nil
}

// detectByTolerance scans features in dataset order, querying the spatial
// index for candidates within the tolerance-grown bounding box of the seed.
// Every group member is marked assigned so it never seeds a second group.
func (r *run) detectByTolerance(ctx context.Context, cmp *geometry.Comparator) ([]*group.Group, error) {
	r.report(10, "building spatial index")
	idx := r.svc.newIndex()
	for _, id := range r.order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f := r.cache[id]
		if f.HasGeometry() {
			idx.Insert(id, f.Geometry().Bound())
		}
	}
	r.report(20, "scanning for duplicates")

	var groups []*group.Group
	for i, id := range r.order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r.reportScan(i, "checking tolerance")

		if r.assigned[id] {
			continue
		}
		seed := r.cache[id]
		if !seed.HasGeometry() {
			continue
		}

		searchBound := seed.Geometry().Bound().Pad(r.params.Tolerance)
		members := []int64{id}
		lastScore := 0.9 // when no comparison decided the group
		for _, cid := range idx.Search(searchBound) {
			if cid == id || r.assigned[cid] {
				continue
			}
			cand, ok := r.cache[cid]
			if !ok || !cand.HasGeometry() {
				continue
			}
			if match, score, _ := cmp.Compare(seed.Geometry(), cand.Geometry()); match {
				members = append(members, cid)
				lastScore = score
			}
		}

		if len(members) > 1 {
			g := group.New(group.Geometry, lastScore,
				fmt.Sprintf("within %g tolerance", r.params.Tolerance), members...)
			g.SetMetadata("tolerance", strconv.FormatFloat(r.params.Tolerance, 'g', -1, 64))
			groups = append(groups, g)
			for _, m := range members {
				r.assigned[m] = true
			}
		} else {
			r.assigned[id] = true
		}
	}
	return groups, nil
}

// detectAttribute buckets features by composite key; features whose key is
// suppressed (NULL with ignore_null) are excluded from grouping.
func (r *run) detectAttribute(ctx context.Context) ([]*group.Group, error) {
	cmp, err := attribute.New(attribute.Config{
		Fields:         r.params.Fields,
		Normalize:      r.params.NormalizeAttributes,
		IgnoreNull:     r.params.IgnoreNull,
		CaseSensitive:  r.params.CaseSensitive,
		FuzzyThreshold: r.params.FuzzyThreshold,
	})
	if err != nil {
		return nil, err
	}

	buckets := make(map[attribute.Key][]int64)
	bucketOrder := make([]attribute.Key, 0)

	for i, id := range r.order {
		if cerr := ctx.Err(); cerr != nil {
			return nil, cerr
		}
		r.reportScan(i, "checking attributes")

		key, ok := cmp.Key(r.cache[id])
		if !ok {
			continue
		}
		if len(buckets[key]) == 0 {
			bucketOrder = append(bucketOrder, key)
		}
		buckets[key] = append(buckets[key], id)
	}

	fieldList := ""
	for i, f := range r.params.Fields {
		if i > 0 {
			fieldList += ", "
		}
		fieldList += f
	}

	var groups []*group.Group
	for _, key := range bucketOrder {
		ids := buckets[key]
		if len(ids) < 2 {
			continue
		}
		g := group.New(group.Attribute, 1.0, "matching fields: "+fieldList, ids...)
		g.SetMetadata("key", key.Display())
		groups = append(groups, g)
	}
	return groups, nil
}

// reportScan maps scan progress onto the 20-70% band.
func (r *run) reportScan(i int, message string) {
	if len(r.order) == 0 || i%1000 != 0 {
		return
	}
	percent := 20 + i*50/len(r.order)
	r.report(percent, fmt.Sprintf("%s (%d/%d)", message, i, len(r.order)))
}

// consolidate merges groups that share a feature, in detection order, so a
// feature belongs to exactly one output group. Groups are held in an arena
// slice; ownership is tracked by handle in featToHandle.
func consolidate(groups []*group.Group) []*group.Group {
	if len(groups) == 0 {
		return nil
	}

	arena := make([]*group.Group, 0, len(groups))
	featToHandle := make(map[int64]int)

	for _, g := range groups {
		// A group can bridge several earlier groups; merge them all into the
		// first one encountered.
		owner := -1
		for _, id := range g.IDs() {
			h, ok := featToHandle[id]
			if !ok {
				continue
			}
			if owner < 0 {
				owner = h
			} else if h != owner && arena[h] != nil {
				arena[owner].MergeFrom(arena[h])
				for _, mid := range arena[h].IDs() {
					featToHandle[mid] = owner
				}
				arena[h] = nil
			}
		}
		if owner >= 0 {
			arena[owner].MergeFrom(g)
			for _, id := range g.IDs() {
				featToHandle[id] = owner
			}
			continue
		}
		h := len(arena)
		arena = append(arena, g)
		for _, id := range g.IDs() {
			featToHandle[id] = h
		}
	}

	out := make([]*group.Group, 0, len(arena))
	for _, g := range arena {
		if g != nil {
			out = append(out, g)
		}
	}
	return out
}
