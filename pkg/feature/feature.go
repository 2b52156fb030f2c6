package feature

import (
	"fmt"
	"maps"
	"time"

	"github.com/matzehuels/sketchmap/pkg/geo"
	"github.com/matzehuels/sketchmap/pkg/style"
)

// Attribute keys set on features.
const (
	AttrID      = "id"
	AttrSubtype = "subtype"
)

// Feature is a drawn shape with its display ID, symbol and metrics.
type Feature struct {
	ID         string            `json:"id"`
	Type       geo.Type          `json:"type"`
	Geometry   geo.Geometry      `json:"geometry"`
	Style      style.Descriptor  `json:"style"`
	Length     *float64          `json:"length_m,omitempty"`
	Area       *float64          `json:"area_m2,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Subtype returns the subtype tag of the feature, if any.
func (f Feature) Subtype() style.Subtype {
	return style.Subtype(f.Attributes[AttrSubtype])
}

// clone returns a deep copy of f. Geometry is immutable and shared.
func (f Feature) clone() Feature {
	out := f
	if f.Length != nil {
		v := *f.Length
		out.Length = &v
	}
	if f.Area != nil {
		v := *f.Area
		out.Area = &v
	}
	if f.Style.Outline != nil {
		o := *f.Style.Outline
		out.Style.Outline = &o
	}
	out.Attributes = maps.Clone(f.Attributes)
	return out
}

// FormatID returns the display ID for the ordinal-th feature of type t.
func FormatID(t geo.Type, ordinal int) string {
	return fmt.Sprintf("%s-%d", t, ordinal)
}

// Metrics holds the measurements of a geometry.
type Metrics struct {
	Length float64 // meters
	Area   float64 // square meters
}

// ComputeMetrics measures g with engine. Polylines report their length,
// polygons their perimeter and area, points zero for both.
func ComputeMetrics(engine geo.Engine, g geo.Geometry) (Metrics, error) {
	var m Metrics
	var err error
	switch g.Type() {
	case geo.TypePolyline:
		m.Length, err = engine.Length(g, geo.Meters)
	case geo.TypePolygon:
		if m.Length, err = engine.Length(g, geo.Meters); err != nil {
			return Metrics{}, err
		}
		m.Area, err = engine.Area(g, geo.SquareMeters)
	}
	if err != nil {
		return Metrics{}, err
	}
	return m, nil
}
