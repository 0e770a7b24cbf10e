// Package attribute builds composite comparison keys from feature fields and
// scores attribute-based similarity between features.
package attribute

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/duplicheck/internal/domain"
	"github.com/kailas-cloud/duplicheck/internal/domain/feature"
)

// Key is the opaque, comparable encoding of an ordered tuple of normalized
// field values. Keys are only ever compared for equality or used as map keys.
type Key string

// keySep separates tuple elements; keyNull marks a NULL element. Both are
// control characters that do not occur in real attribute data.
const (
	keySep  = "\x1f"
	keyNull = "\x00"
)

// keyNumeric is the shared kind prefix for integer and real elements.
const keyNumeric = 'n'

// Config configures an attribute comparator.
type Config struct {
	Fields         []string
	Normalize      bool
	IgnoreNull     bool
	CaseSensitive  bool
	FuzzyThreshold float64
}

// Comparator compares features by a composite key over configured fields.
type Comparator struct {
	cfg Config
}

// New validates the configuration and creates a comparator.
func New(cfg Config) (*Comparator, error) {
	if len(cfg.Fields) == 0 {
		return nil, domain.ErrNoCompareFields
	}
	if cfg.FuzzyThreshold < 0 || cfg.FuzzyThreshold > 1 {
		return nil, fmt.Errorf("%w: fuzzy threshold %f outside [0,1]",
			domain.ErrInvalidParams, cfg.FuzzyThreshold)
	}
	return &Comparator{cfg: cfg}, nil
}

// Fields returns the configured comparison fields.
func (c *Comparator) Fields() []string { return c.cfg.Fields }

// Key builds the grouping key for a feature. ok=false means the feature is
// excluded from grouping (a NULL field value with ignore_null enabled).
func (c *Comparator) Key(f feature.Feature) (Key, bool) {
	parts, ok := c.keyParts(f)
	if !ok {
		return "", false
	}
	var b strings.Builder
	for i, v := range parts {
		if i > 0 {
			b.WriteString(keySep)
		}
		if v.IsNull() {
			b.WriteString(keyNull)
			continue
		}
		// Numeric kinds share one canonical encoding so integer 1 and real
		// 1.0 bucket together, matching Value.Equal. Other kinds carry their
		// kind so Text("1") and Int(1) key differently.
		if v.Kind() == feature.KindInteger || v.Kind() == feature.KindReal {
			b.WriteByte(keyNumeric)
			b.WriteString(numericKeyForm(v))
			continue
		}
		b.WriteByte(byte('0' + v.Kind()))
		b.WriteString(v.String())
	}
	return Key(b.String()), true
}

// numericKeyForm renders any numeric value through float64 so equal numbers
// of different kinds encode identically.
func numericKeyForm(v feature.Value) string {
	f := v.Real()
	if v.Kind() == feature.KindInteger {
		f = float64(v.Int())
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Display renders a key for humans: the kind prefixes are stripped, NULL
// elements read as "NULL" and elements are pipe-separated.
func (k Key) Display() string {
	parts := strings.Split(string(k), keySep)
	out := make([]string, len(parts))
	for i, p := range parts {
		switch {
		case p == keyNull:
			out[i] = "NULL"
		case len(p) > 0:
			out[i] = p[1:]
		}
	}
	return strings.Join(out, " | ")
}

// keyParts reads and normalizes the configured field values. A missing field
// reads as NULL.
func (c *Comparator) keyParts(f feature.Feature) ([]feature.Value, bool) {
	parts := make([]feature.Value, 0, len(c.cfg.Fields))
	for _, name := range c.cfg.Fields {
		v, _ := f.Value(name)
		if v.IsNull() {
			if c.cfg.IgnoreNull {
				return nil, false
			}
			parts = append(parts, feature.Null())
			continue
		}
		if c.cfg.Normalize {
			v = normalizeValue(v, c.cfg.CaseSensitive)
		}
		parts = append(parts, v)
	}
	return parts, true
}

// Compare reports whether two features match on their composite keys, with a
// similarity score and reason. Suppressed keys never match, even against
// each other.
func (c *Comparator) Compare(f1, f2 feature.Feature) (bool, float64, string) {
	p1, ok1 := c.keyParts(f1)
	p2, ok2 := c.keyParts(f2)
	if !ok1 || !ok2 {
		return false, 0, "one or both features have NULL key values"
	}

	if partsEqual(p1, p2) {
		return true, 1.0, fmt.Sprintf("exact match on fields: %s", strings.Join(c.cfg.Fields, ", "))
	}

	if c.cfg.FuzzyThreshold > 0 {
		sim := keySimilarity(p1, p2)
		if sim >= c.cfg.FuzzyThreshold {
			return true, sim, fmt.Sprintf("fuzzy match (%.0f%% similarity)", sim*100)
		}
	}

	return false, 0, "no match"
}

func partsEqual(p1, p2 []feature.Value) bool {
	if len(p1) != len(p2) {
		return false
	}
	for i := range p1 {
		if !p1[i].Equal(p2[i]) {
			return false
		}
	}
	return true
}

// keySimilarity averages per-field similarity: Levenshtein for text pairs,
// exact equality for everything else, 1.0 for a NULL/NULL pair.
func keySimilarity(p1, p2 []feature.Value) float64 {
	if len(p1) != len(p2) || len(p1) == 0 {
		return 0
	}
	total := 0.0
	for i := range p1 {
		v1, v2 := p1[i], p2[i]
		switch {
		case v1.IsNull() || v2.IsNull():
			if v1.IsNull() && v2.IsNull() {
				total += 1.0
			}
		case v1.Kind() == feature.KindText && v2.Kind() == feature.KindText:
			total += Similarity(v1.Text(), v2.Text())
		case v1.Equal(v2):
			total += 1.0
		}
	}
	return total / float64(len(p1))
}

// Completeness scores how filled-in a feature is: 1 means no NULL fields.
func Completeness(f feature.Feature) float64 {
	total := len(f.Attrs())
	if total == 0 {
		return 1.0
	}
	return 1.0 - float64(f.NullCount())/float64(total)
}
