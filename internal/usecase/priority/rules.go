package priority

import (
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/duplicheck/internal/domain/feature"
)

// Order is the field-rule ordering mode.
type Order string

// Field orderings.
const (
	OrderHighest    Order = "highest"
	OrderLowest     Order = "lowest"
	OrderMostRecent Order = "most_recent"
	OrderOldest     Order = "oldest"
)

// AreaRule selects by polygon area.
type AreaRule string

// Area rules. Empty disables the rule.
const (
	AreaLargest  AreaRule = "largest"
	AreaSmallest AreaRule = "smallest"
)

// Rules configures the keep-suggestion chain. Rules apply in fixed order:
// field value, completeness, area, then the smallest-id fallback. Each rule
// either decides or falls through to the next.
type Rules struct {
	Field        string
	FieldOrder   Order
	Completeness bool
	Area         AreaRule
	FIDFallback  bool
}

// DefaultRules enables only the smallest-id fallback.
func DefaultRules() Rules {
	return Rules{FieldOrder: OrderHighest, FIDFallback: true}
}

// Validate checks enum fields.
func (r Rules) Validate() error {
	switch r.FieldOrder {
	case "", OrderHighest, OrderLowest, OrderMostRecent, OrderOldest:
	default:
		return fmt.Errorf("unknown field order %q", r.FieldOrder)
	}
	switch r.Area {
	case "", AreaLargest, AreaSmallest:
	default:
		return fmt.Errorf("unknown area rule %q", r.Area)
	}
	return nil
}

// Summary renders the active rule chain for display.
func (r Rules) Summary() string {
	var parts []string
	if r.Field != "" {
		order := r.FieldOrder
		if order == "" {
			order = OrderHighest
		}
		parts = append(parts, fmt.Sprintf("field %q (%s)", r.Field, strings.ReplaceAll(string(order), "_", " ")))
	}
	if r.Completeness {
		parts = append(parts, "fewest NULL values")
	}
	if r.Area != "" {
		parts = append(parts, fmt.Sprintf("%s area", r.Area))
	}
	if r.FIDFallback {
		parts = append(parts, "lowest id (fallback)")
	}
	if len(parts) == 0 {
		return "no rules configured"
	}
	return strings.Join(parts, ", then ")
}

// dateFormats are tried in order when a field rule needs date semantics.
var dateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02/01/2006 15:04:05",
}

// parseDate tries to read a value as a date. Date values pass through;
// text is matched against the common formats. ok=false means unparseable.
func parseDate(v feature.Value) (time.Time, bool) {
	switch v.Kind() {
	case feature.KindDate:
		return v.Date(), true
	case feature.KindText:
		s := strings.TrimSpace(v.Text())
		for _, layout := range dateFormats {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}
