// Package group defines duplicate groups, the unit of detection output.
package group

import (
	"fmt"
	"sort"
)

// DetectionType says which pass produced a group.
type DetectionType string

// Detection types.
const (
	Geometry  DetectionType = "geometry"
	Attribute DetectionType = "attribute"
)

// Group is a set of features believed to be duplicates of one another.
// A group handed to callers always has at least two members; a feature
// belongs to at most one group after consolidation.
type Group struct {
	ids           map[int64]struct{}
	detectionType DetectionType
	confidence    float64
	reason        string
	suggestedKeep *int64
	metadata      map[string]string
}

// New creates a group from the given member ids.
func New(dt DetectionType, confidence float64, reason string, ids ...int64) *Group {
	g := &Group{
		ids:           make(map[int64]struct{}, len(ids)),
		detectionType: dt,
		confidence:    confidence,
		reason:        reason,
	}
	for _, id := range ids {
		g.ids[id] = struct{}{}
	}
	return g
}

// Add adds a feature id to the group.
func (g *Group) Add(id int64) { g.ids[id] = struct{}{} }

// Contains reports membership.
func (g *Group) Contains(id int64) bool {
	_, ok := g.ids[id]
	return ok
}

// Size returns the number of members.
func (g *Group) Size() int { return len(g.ids) }

// IDs returns the member ids in ascending order.
func (g *Group) IDs() []int64 {
	out := make([]int64, 0, len(g.ids))
	for id := range g.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DetectionType returns the pass that produced the group.
func (g *Group) DetectionType() DetectionType { return g.detectionType }

// Confidence returns the match confidence in [0,1].
func (g *Group) Confidence() float64 { return g.confidence }

// Reason returns the human-readable match explanation.
func (g *Group) Reason() string { return g.reason }

// SuggestedKeep returns the resolver's keep suggestion, ok=false when unset.
func (g *Group) SuggestedKeep() (int64, bool) {
	if g.suggestedKeep == nil {
		return 0, false
	}
	return *g.suggestedKeep, true
}

// SetSuggestedKeep records the keep suggestion. The id must be a member.
func (g *Group) SetSuggestedKeep(id int64) error {
	if !g.Contains(id) {
		return fmt.Errorf("suggested keep %d is not a group member", id)
	}
	g.suggestedKeep = &id
	return nil
}

// ClearSuggestedKeep unsets the keep suggestion.
func (g *Group) ClearSuggestedKeep() { g.suggestedKeep = nil }

// Metadata returns the open key-value bag, creating it on first use.
func (g *Group) Metadata() map[string]string {
	if g.metadata == nil {
		g.metadata = make(map[string]string)
	}
	return g.metadata
}

// SetMetadata records one metadata entry.
func (g *Group) SetMetadata(key, value string) { g.Metadata()[key] = value }

// MergeFrom absorbs another group: union of members, minimum confidence.
// The receiver's detection type, reason and keep suggestion are retained.
func (g *Group) MergeFrom(o *Group) {
	for id := range o.ids {
		g.ids[id] = struct{}{}
	}
	if o.confidence < g.confidence {
		g.confidence = o.confidence
	}
	for k, v := range o.metadata {
		if _, exists := g.Metadata()[k]; !exists {
			g.Metadata()[k] = v
		}
	}
}
