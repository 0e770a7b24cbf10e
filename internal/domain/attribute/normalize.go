package attribute

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/kailas-cloud/duplicheck/internal/domain/feature"
)

// normalizeValue canonicalizes a value for key building. Text is trimmed,
// NFKC-normalized, lowercased unless caseSensitive, and internal whitespace
// runs collapse to single spaces. Numeric and date values pass through.
func normalizeValue(v feature.Value, caseSensitive bool) feature.Value {
	switch v.Kind() {
	case feature.KindText:
		return feature.Text(normalizeString(v.Text(), caseSensitive))
	default:
		return v
	}
}

func normalizeString(s string, caseSensitive bool) string {
	s = norm.NFKC.String(strings.TrimSpace(s))
	if !caseSensitive {
		s = strings.ToLower(s)
	}
	// Fields splits on any whitespace run, so this also collapses tabs
	// and newlines.
	return strings.Join(strings.Fields(s), " ")
}
