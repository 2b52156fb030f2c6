package geo

import "github.com/matzehuels/sketchmap/pkg/errors"

// Unit is a length or area unit name.
type Unit string

// Length units.
const (
	Meters     Unit = "meters"
	Kilometers Unit = "kilometers"
	Feet       Unit = "feet"
	Miles      Unit = "miles"
)

// Area units.
const (
	SquareMeters     Unit = "square-meters"
	SquareKilometers Unit = "square-kilometers"
	Hectares         Unit = "hectares"
	Acres            Unit = "acres"
)

// meters per unit
var lengthUnits = map[Unit]float64{
	Meters:     1,
	Kilometers: 1000,
	Feet:       0.3048,
	Miles:      1609.344,
}

// square meters per unit
var areaUnits = map[Unit]float64{
	SquareMeters:     1,
	SquareKilometers: 1e6,
	Hectares:         1e4,
	Acres:            4046.8564224,
}

// fromMeters converts a length in meters to unit u.
func fromMeters(m float64, u Unit) (float64, error) {
	f, ok := lengthUnits[u]
	if !ok {
		return 0, errors.New(errors.ErrCodeInvalidUnit, "unknown length unit %q", u)
	}
	return m / f, nil
}

// fromSquareMeters converts an area in square meters to unit u.
func fromSquareMeters(m2 float64, u Unit) (float64, error) {
	f, ok := areaUnits[u]
	if !ok {
		return 0, errors.New(errors.ErrCodeInvalidUnit, "unknown area unit %q", u)
	}
	return m2 / f, nil
}
