package duplicheck

import (
	"context"

	"github.com/kailas-cloud/duplicheck/internal/domain/geometry"
	"github.com/kailas-cloud/duplicheck/internal/usecase/detect"
	"github.com/kailas-cloud/duplicheck/internal/usecase/priority"
)

// Detection is a fluent builder for one detection run.
type Detection struct {
	c      *Client
	feats  []Feature
	params detect.Params
}

// Detection starts a run over the given features. Geometry mode with exact
// hashing is the default; chain option methods to change it.
func (c *Client) Detection(feats ...Feature) *Detection {
	return &Detection{
		c:     c,
		feats: feats,
		params: detect.Params{
			Mode:                detect.ModeGeometry,
			CompareMethod:       geometry.MethodExactHash,
			NormalizeAttributes: true,
		},
	}
}

// Add appends more features to the dataset.
func (d *Detection) Add(feats ...Feature) *Detection {
	d.feats = append(d.feats, feats...)
	return d
}

// Tolerance sets the geometry tolerance; zero means exact hashing.
func (d *Detection) Tolerance(t float64) *Detection {
	d.params.Tolerance = t
	return d
}

// Method sets the geometry comparison method: "exact_hash", "centroid",
// "shape" or "bbox".
func (d *Detection) Method(m string) *Detection {
	d.params.CompareMethod = geometry.Method(m)
	return d
}

// DecomposeMultipart compares multipart geometries part by part.
func (d *Detection) DecomposeMultipart() *Detection {
	d.params.DecomposeMultipart = true
	return d
}

// Attributes switches to attribute mode over the given fields. Combine with
// geometry settings via Both.
func (d *Detection) Attributes(fields ...string) *Detection {
	d.params.Mode = detect.ModeAttribute
	d.params.Fields = fields
	return d
}

// Both runs the geometry pass and then an attribute pass over fields,
// consolidating the results.
func (d *Detection) Both(fields ...string) *Detection {
	d.params.Mode = detect.ModeBoth
	d.params.Fields = fields
	return d
}

// RawAttributes disables attribute value normalization.
func (d *Detection) RawAttributes() *Detection {
	d.params.NormalizeAttributes = false
	return d
}

// IgnoreNull excludes features with NULL compare values from grouping.
func (d *Detection) IgnoreNull() *Detection {
	d.params.IgnoreNull = true
	return d
}

// CaseSensitive keeps letter case significant in attribute comparison.
func (d *Detection) CaseSensitive() *Detection {
	d.params.CaseSensitive = true
	return d
}

// Fuzzy enables fuzzy attribute matching with the given similarity
// threshold in (0, 1].
func (d *Detection) Fuzzy(threshold float64) *Detection {
	d.params.FuzzyThreshold = threshold
	return d
}

// Sample scans a uniform random sample of at most n features.
func (d *Detection) Sample(n int) *Detection {
	d.params.SampleMode = true
	d.params.SampleSize = n
	return d
}

// PriorityRules configures the keep-suggestion chain. Zero-valued fields
// disable the corresponding rule; the smallest-id fallback stays on unless
// NoFIDFallback is set.
type PriorityRules struct {
	Field         string
	FieldOrder    string // highest, lowest, most_recent, oldest
	Completeness  bool
	Area          string // largest, smallest
	NoFIDFallback bool
}

// Priority enables keep suggestions with the default rule chain: fewest
// NULL values, then smallest id.
func (d *Detection) Priority() *Detection {
	rules := priority.DefaultRules()
	rules.Completeness = true
	d.params.PriorityRules = &rules
	return d
}

// WithPriorityRules enables keep suggestions with an explicit rule chain.
func (d *Detection) WithPriorityRules(r PriorityRules) *Detection {
	rules := priority.Rules{
		Field:        r.Field,
		FieldOrder:   priority.Order(r.FieldOrder),
		Completeness: r.Completeness,
		Area:         priority.AreaRule(r.Area),
		FIDFallback:  !r.NoFIDFallback,
	}
	if rules.Field != "" && rules.FieldOrder == "" {
		rules.FieldOrder = priority.OrderHighest
	}
	d.params.PriorityRules = &rules
	return d
}

// Do executes the run.
func (d *Detection) Do(ctx context.Context) (*Report, error) {
	source, err := buildSource(d.feats)
	if err != nil {
		return nil, err
	}

	var sink detect.ProgressSink
	if d.c.progress != nil {
		sink = detect.ProgressFunc(d.c.progress)
	}

	svc := detect.New(source, nil, sink, d.c.logger)
	res, err := svc.Detect(ctx, d.params)
	if err != nil {
		return nil, err
	}
	return reportFromResult(res), nil
}
