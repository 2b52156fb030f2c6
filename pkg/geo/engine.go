package geo

import (
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
	"github.com/tidwall/geodesic"

	"github.com/matzehuels/sketchmap/pkg/errors"
)

// Engine measures geometries on the earth.
//
// Length of a point is 0, of a polyline the sum of its paths, of a polygon
// the sum of its ring perimeters. Area is 0 for points and polylines; for a
// polygon it is the outer ring minus the holes.
type Engine interface {
	// Name identifies the engine in configuration ("wgs84", "spherical").
	Name() string

	// Length returns the geodesic length of g in a length unit.
	Length(g Geometry, unit Unit) (float64, error)

	// Area returns the geodesic area of g in an area unit.
	Area(g Geometry, unit Unit) (float64, error)
}

// Engine names.
const (
	EngineWGS84     = "wgs84"
	EngineSpherical = "spherical"
)

// NewEngine returns the engine registered under name. An empty name selects
// [WGS84].
func NewEngine(name string) (Engine, error) {
	switch name {
	case "", EngineWGS84:
		return WGS84, nil
	case EngineSpherical:
		return Spherical, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown geometry engine %q (must be %q or %q)", name, EngineWGS84, EngineSpherical)
}

// WGS84 measures on the WGS84 ellipsoid using Karney's geodesic algorithms.
var WGS84 Engine = ellipsoidEngine{}

// Spherical measures on a sphere of the WGS84 equatorial radius.
var Spherical Engine = sphereEngine{}

// =============================================================================
// Ellipsoid
// =============================================================================

type ellipsoidEngine struct{}

func (ellipsoidEngine) Name() string { return EngineWGS84 }

func (e ellipsoidEngine) Length(g Geometry, unit Unit) (float64, error) {
	var total float64
	switch g.Type() {
	case TypePolyline:
		for _, path := range g.paths {
			perimeter, _ := ellipsoidMeasure(path, true)
			total += perimeter
		}
	case TypePolygon:
		for _, ring := range g.rings {
			perimeter, _ := ellipsoidMeasure(ring[:len(ring)-1], false)
			total += perimeter
		}
	}
	return fromMeters(total, unit)
}

func (e ellipsoidEngine) Area(g Geometry, unit Unit) (float64, error) {
	var total float64
	if g.Type() == TypePolygon {
		for i, ring := range g.rings {
			_, area := ellipsoidMeasure(ring[:len(ring)-1], false)
			if i == 0 {
				total += area
			} else {
				total -= area
			}
		}
	}
	return fromSquareMeters(math.Max(total, 0), unit)
}

// ellipsoidMeasure returns the length (or perimeter) and absolute area of
// the vertices. Rings are passed without their closing vertex.
func ellipsoidMeasure(pts []orb.Point, polyline bool) (length, area float64) {
	p := geodesic.WGS84.PolygonInit(polyline)
	for _, pt := range pts {
		p.AddPoint(pt[1], pt[0])
	}
	p.Compute(false, true, &area, &length)
	return length, math.Abs(area)
}

// =============================================================================
// Sphere
// =============================================================================

type sphereEngine struct{}

func (sphereEngine) Name() string { return EngineSpherical }

func (sphereEngine) Length(g Geometry, unit Unit) (float64, error) {
	var total float64
	switch g.Type() {
	case TypePolyline:
		for _, path := range g.paths {
			total += orbgeo.Length(path)
		}
	case TypePolygon:
		for _, ring := range g.rings {
			total += orbgeo.Length(orb.LineString(ring))
		}
	}
	return fromMeters(total, unit)
}

func (sphereEngine) Area(g Geometry, unit Unit) (float64, error) {
	var total float64
	if g.Type() == TypePolygon {
		for i, ring := range g.rings {
			area := math.Abs(orbgeo.Area(ring))
			if i == 0 {
				total += area
			} else {
				total -= area
			}
		}
	}
	return fromSquareMeters(math.Max(total, 0), unit)
}
