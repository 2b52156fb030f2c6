package geo

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/matzehuels/sketchmap/pkg/errors"
)

// Type is the kind of a drawn geometry.
type Type string

// Geometry types, named as the drawing tool names them.
const (
	TypePoint    Type = "point"
	TypePolyline Type = "polyline"
	TypePolygon  Type = "polygon"
)

// Types lists the supported geometry types in drawing-toolbar order.
var Types = []Type{TypePoint, TypePolyline, TypePolygon}

// ParseType parses a geometry type name.
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypePoint, TypePolyline, TypePolygon:
		return t, nil
	}
	return "", errors.New(errors.ErrCodeInvalidGeometry, "unknown geometry type %q", s)
}

// MinVertices returns the number of vertices a shape of type t needs
// before it can be completed.
func (t Type) MinVertices() int {
	switch t {
	case TypePoint:
		return 1
	case TypePolyline:
		return 2
	case TypePolygon:
		return 3
	}
	return 0
}

// Geometry is an immutable drawn shape. The zero value is invalid; use
// [NewPoint], [NewPolyline] or [NewPolygon].
type Geometry struct {
	typ   Type
	point orb.Point
	paths orb.MultiLineString
	rings orb.Polygon
}

// NewPoint creates a point geometry at lon/lat.
func NewPoint(lon, lat float64) (Geometry, error) {
	p := orb.Point{lon, lat}
	if err := checkPoint(p); err != nil {
		return Geometry{}, err
	}
	return Geometry{typ: TypePoint, point: p}, nil
}

// NewPolyline creates a polyline from one or more paths. Every path needs at
// least two vertices.
func NewPolyline(paths ...orb.LineString) (Geometry, error) {
	if len(paths) == 0 {
		return Geometry{}, errors.New(errors.ErrCodeInvalidGeometry, "polyline needs at least one path")
	}
	out := make(orb.MultiLineString, len(paths))
	for i, path := range paths {
		if len(path) < TypePolyline.MinVertices() {
			return Geometry{}, errors.New(errors.ErrCodeInvalidGeometry, "polyline path %d has %d vertices, need %d", i, len(path), TypePolyline.MinVertices())
		}
		for _, p := range path {
			if err := checkPoint(p); err != nil {
				return Geometry{}, err
			}
		}
		out[i] = path.Clone()
	}
	return Geometry{typ: TypePolyline, paths: out}, nil
}

// NewPolygon creates a polygon from an outer ring and optional holes.
// Rings are closed if their last vertex differs from the first. Every ring
// needs at least three distinct vertices.
func NewPolygon(rings ...orb.Ring) (Geometry, error) {
	if len(rings) == 0 {
		return Geometry{}, errors.New(errors.ErrCodeInvalidGeometry, "polygon needs at least one ring")
	}
	out := make(orb.Polygon, len(rings))
	for i, ring := range rings {
		r := ring.Clone()
		if len(r) > 1 && r[0] == r[len(r)-1] {
			r = r[:len(r)-1]
		}
		if n := distinctVertices(r); n < TypePolygon.MinVertices() {
			return Geometry{}, errors.New(errors.ErrCodeInvalidGeometry, "polygon ring %d has %d distinct vertices, need %d", i, n, TypePolygon.MinVertices())
		}
		r = append(r, r[0])
		for _, p := range r {
			if err := checkPoint(p); err != nil {
				return Geometry{}, err
			}
		}
		out[i] = r
	}
	return Geometry{typ: TypePolygon, rings: out}, nil
}

// FromOrb converts an orb geometry into a Geometry. Supported inputs are
// Point, LineString, MultiLineString, Ring and Polygon.
func FromOrb(g orb.Geometry) (Geometry, error) {
	switch g := g.(type) {
	case orb.Point:
		return NewPoint(g[0], g[1])
	case orb.LineString:
		return NewPolyline(g)
	case orb.MultiLineString:
		return NewPolyline(g...)
	case orb.Ring:
		return NewPolygon(g)
	case orb.Polygon:
		return NewPolygon(g...)
	case nil:
		return Geometry{}, errors.New(errors.ErrCodeInvalidGeometry, "missing geometry")
	}
	return Geometry{}, errors.New(errors.ErrCodeInvalidGeometry, "unsupported geometry %s", g.GeoJSONType())
}

func distinctVertices(pts []orb.Point) int {
	seen := make(map[orb.Point]struct{}, len(pts))
	for _, p := range pts {
		seen[p] = struct{}{}
	}
	return len(seen)
}

func checkPoint(p orb.Point) error {
	if p[0] < -180 || p[0] > 180 || p[1] < -90 || p[1] > 90 {
		return errors.New(errors.ErrCodeInvalidGeometry, "coordinate out of range: [%g, %g]", p[0], p[1])
	}
	return nil
}

// Type returns the geometry type.
func (g Geometry) Type() Type { return g.typ }

// IsZero reports whether g is the zero Geometry.
func (g Geometry) IsZero() bool { return g.typ == "" }

// Point returns the point of a point geometry.
func (g Geometry) Point() orb.Point { return g.point }

// Paths returns a copy of the paths of a polyline.
func (g Geometry) Paths() orb.MultiLineString { return g.paths.Clone() }

// Rings returns a copy of the rings of a polygon.
func (g Geometry) Rings() orb.Polygon { return g.rings.Clone() }

// Orb returns the geometry as an orb value: Point, MultiLineString or
// Polygon. Returns nil for the zero Geometry.
func (g Geometry) Orb() orb.Geometry {
	switch g.typ {
	case TypePoint:
		return g.point
	case TypePolyline:
		return g.paths.Clone()
	case TypePolygon:
		return g.rings.Clone()
	}
	return nil
}

// GeoJSON returns the orb value used for GeoJSON output. A polyline with a
// single path is a LineString.
func (g Geometry) GeoJSON() orb.Geometry {
	if g.typ == TypePolyline && len(g.paths) == 1 {
		return g.paths[0].Clone()
	}
	return g.Orb()
}

// Parts returns the editable vertex lists of g: one part for a point, one per
// path for a polyline, one per ring for a polygon. Polygon rings are returned
// without their closing vertex.
func (g Geometry) Parts() [][]orb.Point {
	switch g.typ {
	case TypePoint:
		return [][]orb.Point{{g.point}}
	case TypePolyline:
		parts := make([][]orb.Point, len(g.paths))
		for i, p := range g.paths {
			parts[i] = append([]orb.Point(nil), p...)
		}
		return parts
	case TypePolygon:
		parts := make([][]orb.Point, len(g.rings))
		for i, r := range g.rings {
			parts[i] = append([]orb.Point(nil), r[:len(r)-1]...)
		}
		return parts
	}
	return nil
}

// FromParts builds a geometry of type t from vertex lists, the inverse of
// [Geometry.Parts].
func FromParts(t Type, parts [][]orb.Point) (Geometry, error) {
	switch t {
	case TypePoint:
		if len(parts) != 1 || len(parts[0]) != 1 {
			return Geometry{}, errors.New(errors.ErrCodeInvalidGeometry, "point needs exactly one vertex")
		}
		return NewPoint(parts[0][0][0], parts[0][0][1])
	case TypePolyline:
		paths := make([]orb.LineString, len(parts))
		for i, p := range parts {
			paths[i] = orb.LineString(p)
		}
		return NewPolyline(paths...)
	case TypePolygon:
		rings := make([]orb.Ring, len(parts))
		for i, p := range parts {
			rings[i] = orb.Ring(p)
		}
		return NewPolygon(rings...)
	}
	return Geometry{}, errors.New(errors.ErrCodeInvalidGeometry, "unknown geometry type %q", t)
}

// Coordinates returns the coordinate structure of g as used in tabular
// exports: the point, the list of paths or the list of rings.
func (g Geometry) Coordinates() any {
	switch g.typ {
	case TypePoint:
		return g.point
	case TypePolyline:
		return multiLinePoints(g.paths)
	case TypePolygon:
		return polygonPoints(g.rings)
	}
	return nil
}

func multiLinePoints(m orb.MultiLineString) [][]orb.Point {
	out := make([][]orb.Point, len(m))
	for i, ls := range m {
		out[i] = ls
	}
	return out
}

func polygonPoints(p orb.Polygon) [][]orb.Point {
	out := make([][]orb.Point, len(p))
	for i, r := range p {
		out[i] = r
	}
	return out
}

// Equal reports whether two geometries have the same type and coordinates.
func (g Geometry) Equal(other Geometry) bool {
	if g.typ != other.typ {
		return false
	}
	switch g.typ {
	case TypePoint:
		return g.point.Equal(other.point)
	case TypePolyline:
		return g.paths.Equal(other.paths)
	case TypePolygon:
		return g.rings.Equal(other.rings)
	}
	return true
}

// String returns a short description such as "polygon(1 ring, 4 vertices)".
func (g Geometry) String() string {
	switch g.typ {
	case TypePoint:
		return fmt.Sprintf("point(%g, %g)", g.point[0], g.point[1])
	case TypePolyline:
		n := 0
		for _, p := range g.paths {
			n += len(p)
		}
		return fmt.Sprintf("polyline(%d paths, %d vertices)", len(g.paths), n)
	case TypePolygon:
		n := 0
		for _, r := range g.rings {
			n += len(r) - 1
		}
		return fmt.Sprintf("polygon(%d rings, %d vertices)", len(g.rings), n)
	}
	return "empty"
}

// MarshalJSON encodes g as a GeoJSON geometry object.
func (g Geometry) MarshalJSON() ([]byte, error) {
	if g.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(geojson.NewGeometry(g.GeoJSON()))
}

// UnmarshalJSON decodes a GeoJSON geometry object.
func (g *Geometry) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*g = Geometry{}
		return nil
	}
	gj, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidGeometry, err, "decode geojson geometry")
	}
	out, err := FromOrb(gj.Geometry())
	if err != nil {
		return err
	}
	*g = out
	return nil
}
