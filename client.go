// Package duplicheck is the embedded SDK entry point: duplicate detection
// over in-memory datasets without running the HTTP server.
package duplicheck

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/kailas-cloud/duplicheck/internal/domain/feature"
	"github.com/kailas-cloud/duplicheck/internal/repository/memsource"
	"github.com/kailas-cloud/duplicheck/internal/usecase/detect"
)

// Client is the duplicheck SDK entry point. A Client is cheap and safe to
// share; every Detection carries its own dataset and options.
type Client struct {
	logger   *zap.Logger
	progress func(percent int, message string)
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithProgress sets a progress callback. It is called inline during a run
// and must not block.
func WithProgress(fn func(percent int, message string)) Option {
	return func(c *Client) { c.progress = fn }
}

// New creates a duplicheck Client.
func New(opts ...Option) *Client {
	c := &Client{logger: zap.NewNop()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Feature is one input record: a stable id, an optional geometry and
// free-form properties.
type Feature struct {
	ID         int64
	Geometry   orb.Geometry
	Properties map[string]any
}

// Group is one detected set of duplicates.
type Group struct {
	FeatureIDs    []int64
	DetectionType string
	Confidence    float64
	Reason        string
	SuggestedKeep *int64
	Metadata      map[string]string
}

// Stats summarizes a finished run.
type Stats struct {
	TotalFeatures     int
	ScannedFeatures   int
	DuplicateGroups   int
	DuplicateFeatures int
	DuplicationRate   float64
}

// Report is the result of one detection run.
type Report struct {
	Groups []Group
	Stats  Stats
}

func toDomainFeature(f Feature) (feature.Feature, error) {
	var attrs []feature.Attr
	for name, raw := range f.Properties {
		attrs = append(attrs, feature.Attr{Name: name, Value: toValue(raw)})
	}
	df, err := feature.New(f.ID, f.Geometry, attrs)
	if err != nil {
		return feature.Feature{}, fmt.Errorf("duplicheck: feature %d: %w", f.ID, err)
	}
	return df, nil
}

// toValue maps a property to a typed attribute value.
func toValue(raw any) feature.Value {
	switch v := raw.(type) {
	case nil:
		return feature.Null()
	case string:
		return feature.Text(v)
	case bool:
		return feature.Text(strconv.FormatBool(v))
	case int:
		return feature.Int(int64(v))
	case int64:
		return feature.Int(v)
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1e15 {
			return feature.Int(int64(v))
		}
		return feature.Real(v)
	case float32:
		return feature.Real(float64(v))
	case time.Time:
		return feature.Date(v)
	default:
		return feature.Text(fmt.Sprint(v))
	}
}

func buildSource(feats []Feature) (*memsource.Source, error) {
	source := memsource.New()
	for _, f := range feats {
		df, err := toDomainFeature(f)
		if err != nil {
			return nil, err
		}
		if err := source.Add(df); err != nil {
			return nil, fmt.Errorf("duplicheck: %w", err)
		}
	}
	return source, nil
}

func reportFromResult(res *detect.Result) *Report {
	groups := make([]Group, len(res.Groups))
	for i, g := range res.Groups {
		grp := Group{
			FeatureIDs:    g.IDs(),
			DetectionType: string(g.DetectionType()),
			Confidence:    g.Confidence(),
			Reason:        g.Reason(),
			Metadata:      g.Metadata(),
		}
		if keep, ok := g.SuggestedKeep(); ok {
			grp.SuggestedKeep = &keep
		}
		groups[i] = grp
	}
	return &Report{
		Groups: groups,
		Stats: Stats{
			TotalFeatures:     res.Stats.TotalFeatures,
			ScannedFeatures:   res.Stats.ScannedFeatures,
			DuplicateGroups:   res.Stats.DuplicateGroups,
			DuplicateFeatures: res.Stats.DuplicateFeatures,
			DuplicationRate:   res.Stats.DuplicationRate,
		},
	}
}
