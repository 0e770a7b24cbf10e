package chi

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/kailas-cloud/duplicheck/internal/domain/feature"
	"github.com/kailas-cloud/duplicheck/internal/domain/group"
	"github.com/kailas-cloud/duplicheck/internal/usecase/detect"
	"github.com/kailas-cloud/duplicheck/internal/usecase/priority"
)

// DetectRequest is the POST /v1/detect body: a GeoJSON dataset plus options.
type DetectRequest struct {
	Features *geojson.FeatureCollection `json:"features"`
	Options  DetectOptions              `json:"options"`
}

// DetectOptions mirrors detect.Params on the wire. Omitted fields fall back
// to the server's configured detection defaults.
type DetectOptions struct {
	Mode               string           `json:"mode"`
	Tolerance          *float64         `json:"tolerance,omitempty"`
	CompareMethod      string           `json:"compare_method,omitempty"`
	DecomposeMultipart *bool            `json:"decompose_multipart,omitempty"`
	Fields             []string         `json:"fields,omitempty"`
	Normalize          *bool            `json:"normalize,omitempty"`
	IgnoreNull         bool             `json:"ignore_null,omitempty"`
	CaseSensitive      bool             `json:"case_sensitive,omitempty"`
	FuzzyThreshold     float64          `json:"fuzzy_threshold,omitempty"`
	SampleMode         bool             `json:"sample_mode,omitempty"`
	SampleSize         int              `json:"sample_size,omitempty"`
	Priority           *PriorityOptions `json:"priority,omitempty"`
}

// PriorityOptions mirrors priority.Rules on the wire.
type PriorityOptions struct {
	Field        string `json:"field,omitempty"`
	FieldOrder   string `json:"field_order,omitempty"`
	Completeness bool   `json:"completeness,omitempty"`
	Area         string `json:"area,omitempty"`
	FIDFallback  *bool  `json:"fid_fallback,omitempty"`
}

// Rules converts wire options to domain rules.
func (p *PriorityOptions) Rules() priority.Rules {
	r := priority.Rules{
		Field:        p.Field,
		FieldOrder:   priority.Order(p.FieldOrder),
		Completeness: p.Completeness,
		Area:         priority.AreaRule(p.Area),
		FIDFallback:  true,
	}
	if p.FIDFallback != nil {
		r.FIDFallback = *p.FIDFallback
	}
	if r.Field != "" && r.FieldOrder == "" {
		r.FieldOrder = priority.OrderHighest
	}
	return r
}

// DetectResponse is the POST /v1/detect reply.
type DetectResponse struct {
	RunID  string     `json:"run_id"`
	Groups []GroupDTO `json:"groups"`
	Stats  StatsDTO   `json:"stats"`
}

// GroupDTO is the wire form of a duplicate group.
type GroupDTO struct {
	FeatureIDs    []int64           `json:"feature_ids"`
	DetectionType string            `json:"detection_type"`
	Confidence    float64           `json:"confidence"`
	Reason        string            `json:"reason"`
	SuggestedKeep *int64            `json:"suggested_keep,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// StatsDTO is the wire form of run statistics.
type StatsDTO struct {
	TotalFeatures     int      `json:"total_features"`
	ScannedFeatures   int      `json:"scanned_features"`
	DuplicateGroups   int      `json:"duplicate_groups"`
	DuplicateFeatures int      `json:"duplicate_features"`
	DuplicationRate   float64  `json:"duplication_rate"`
	Mode              string   `json:"mode"`
	Tolerance         float64  `json:"tolerance"`
	Fields            []string `json:"fields,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func groupToDTO(g *group.Group) GroupDTO {
	dto := GroupDTO{
		FeatureIDs:    g.IDs(),
		DetectionType: string(g.DetectionType()),
		Confidence:    g.Confidence(),
		Reason:        g.Reason(),
		Metadata:      g.Metadata(),
	}
	if keep, ok := g.SuggestedKeep(); ok {
		dto.SuggestedKeep = &keep
	}
	return dto
}

func statsToDTO(s detect.Stats) StatsDTO {
	return StatsDTO{
		TotalFeatures:     s.TotalFeatures,
		ScannedFeatures:   s.ScannedFeatures,
		DuplicateGroups:   s.DuplicateGroups,
		DuplicateFeatures: s.DuplicateFeatures,
		DuplicationRate:   s.DuplicationRate,
		Mode:              string(s.Mode),
		Tolerance:         s.Tolerance,
		Fields:            s.Fields,
	}
}

// featureFromGeoJSON converts one GeoJSON feature. The id comes from the
// feature's own id when it is numeric, else from the "fid" property, else
// from the 1-based position in the collection.
func featureFromGeoJSON(pos int, gf *geojson.Feature) (feature.Feature, error) {
	id, ok := featureID(gf)
	if !ok {
		id = int64(pos + 1)
	}

	var attrs []feature.Attr
	for name, raw := range gf.Properties {
		if name == "fid" {
			continue
		}
		attrs = append(attrs, feature.Attr{Name: name, Value: valueFromJSON(raw)})
	}

	f, err := feature.New(id, gf.Geometry, attrs)
	if err != nil {
		return feature.Feature{}, fmt.Errorf("feature %d: %w", id, err)
	}
	return f, nil
}

func featureID(gf *geojson.Feature) (int64, bool) {
	switch id := gf.ID.(type) {
	case float64:
		if id == math.Trunc(id) {
			return int64(id), true
		}
	case string:
		if n, err := strconv.ParseInt(id, 10, 64); err == nil {
			return n, true
		}
	}
	if raw, ok := gf.Properties["fid"]; ok {
		if n, ok := raw.(float64); ok && n == math.Trunc(n) {
			return int64(n), true
		}
	}
	return 0, false
}

// valueFromJSON maps a decoded JSON property to a typed value. Integral
// numbers become integers; date-looking strings stay text, the priority
// rules parse them on demand.
func valueFromJSON(raw any) feature.Value {
	switch v := raw.(type) {
	case nil:
		return feature.Null()
	case string:
		return feature.Text(v)
	case bool:
		return feature.Text(strconv.FormatBool(v))
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1e15 {
			return feature.Int(int64(v))
		}
		return feature.Real(v)
	case time.Time:
		return feature.Date(v)
	default:
		return feature.Text(fmt.Sprint(v))
	}
}
