package detect

import (
	"fmt"

	"github.com/kailas-cloud/duplicheck/internal/domain"
	"github.com/kailas-cloud/duplicheck/internal/domain/geometry"
	"github.com/kailas-cloud/duplicheck/internal/usecase/priority"
)

// Mode selects which detection pass(es) to run.
type Mode string

// Detection modes. ModeBoth runs the geometry pass and then the attribute
// pass over the same in-scope features, consolidating the results together.
const (
	ModeGeometry  Mode = "geometry"
	ModeAttribute Mode = "attribute"
	ModeBoth      Mode = "both"
)

// Default sizing knobs.
const (
	DefaultSampleSize    = 5000
	DefaultDiskThreshold = 50000
)

// Params configures one detection run.
type Params struct {
	Mode Mode

	// Geometry pass.
	Tolerance          float64
	CompareMethod      geometry.Method
	DecomposeMultipart bool

	// Attribute pass.
	Fields              []string
	NormalizeAttributes bool
	IgnoreNull          bool
	CaseSensitive       bool
	FuzzyThreshold      float64

	// Sampling.
	SampleMode bool
	SampleSize int

	// DiskThreshold is the feature count above which a source may choose to
	// serve reads from disk-backed storage. The engine only passes it along;
	// it holds no disk-backed state itself.
	DiskThreshold int

	// PriorityRules, when set, drive the keep suggestion per group.
	PriorityRules *priority.Rules
}

// withDefaults fills sizing defaults.
func (p Params) withDefaults() Params {
	if p.Mode == "" {
		p.Mode = ModeGeometry
	}
	if p.CompareMethod == "" {
		p.CompareMethod = geometry.MethodExactHash
	}
	if p.SampleSize <= 0 {
		p.SampleSize = DefaultSampleSize
	}
	if p.DiskThreshold <= 0 {
		p.DiskThreshold = DefaultDiskThreshold
	}
	return p
}

// validate fails fast on configuration errors; nothing is scanned when it
// returns one.
func (p Params) validate() error {
	switch p.Mode {
	case ModeGeometry, ModeAttribute, ModeBoth:
	default:
		return fmt.Errorf("%w: unknown mode %q", domain.ErrInvalidParams, p.Mode)
	}
	if p.Tolerance < 0 {
		return fmt.Errorf("%w: negative tolerance %g", domain.ErrInvalidParams, p.Tolerance)
	}
	switch p.CompareMethod {
	case geometry.MethodExactHash, geometry.MethodCentroid, geometry.MethodShape, geometry.MethodBBox:
	default:
		return fmt.Errorf("%w: unknown compare method %q", domain.ErrInvalidParams, p.CompareMethod)
	}
	if p.Mode == ModeAttribute || p.Mode == ModeBoth {
		if len(p.Fields) == 0 {
			return domain.ErrNoCompareFields
		}
	}
	if p.PriorityRules != nil {
		if err := p.PriorityRules.Validate(); err != nil {
			return fmt.Errorf("%w: %s", domain.ErrInvalidParams, err)
		}
	}
	return nil
}
