// Package style maps a drawing mode and an optional polygon subtype to the
// symbol applied to a completed shape.
//
// The mapping is a fixed lookup table with no state:
//
//	point     simple-marker  selected color, size 10
//	polyline  simple-line    selected color, width 2
//	polygon   simple-fill    selected color at 30% opacity, outline width 2
//
// Polygons tagged with a [Subtype] ignore the selected color and use the
// fill and outline colors of the subtype.
package style

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/sketchmap/pkg/errors"
	"github.com/matzehuels/sketchmap/pkg/geo"
)

// Kind is the symbol type of a descriptor.
type Kind string

// Symbol kinds.
const (
	KindMarker Kind = "simple-marker"
	KindLine   Kind = "simple-line"
	KindFill   Kind = "simple-fill"
)

// Default symbol dimensions.
const (
	MarkerSize   = 10
	LineWidth    = 2
	OutlineWidth = 2
	FillOpacity  = 0.3
)

// DefaultColor is the color selected when a session starts.
var DefaultColor = Color{R: 255, G: 0, B: 0, A: 1}

// Color is an RGB color with an alpha channel in [0, 1]. It marshals as
// [r, g, b, a].
type Color struct {
	R, G, B uint8
	A       float64
}

// ParseColor parses a "#rrggbb" or "#rgb" color, as delivered by the color
// picker. The result is opaque.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if len(s) == 4 && s[0] == '#' {
		s = "#" + strings.Repeat(s[1:2], 2) + strings.Repeat(s[2:3], 2) + strings.Repeat(s[3:4], 2)
	}
	if len(s) != 7 {
		return Color{}, errors.New(errors.ErrCodeInvalidStyle, "invalid color %q (want #rrggbb)", s)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, errors.Wrap(errors.ErrCodeInvalidStyle, err, "invalid color %q", s)
	}
	r, g, b := c.RGB255()
	return Color{R: r, G: g, B: b, A: 1}, nil
}

// MustParseColor is like [ParseColor] but panics on error. Intended for
// package-level tables.
func MustParseColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex returns the color as "#rrggbb", dropping alpha.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// WithAlpha returns c with alpha set to a.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

// MarshalJSON encodes c as [r, g, b, a].
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{c.R, c.G, c.B, c.A})
}

// UnmarshalJSON decodes [r, g, b] or [r, g, b, a], or a hex string.
func (c *Color) UnmarshalJSON(data []byte) error {
	var hex string
	if err := json.Unmarshal(data, &hex); err == nil {
		parsed, err := ParseColor(hex)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}
	var parts []float64
	if err := json.Unmarshal(data, &parts); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidStyle, err, "decode color")
	}
	if len(parts) != 3 && len(parts) != 4 {
		return errors.New(errors.ErrCodeInvalidStyle, "color needs 3 or 4 components, got %d", len(parts))
	}
	for _, v := range parts[:3] {
		if v < 0 || v > 255 {
			return errors.New(errors.ErrCodeInvalidStyle, "color component %g out of range", v)
		}
	}
	*c = Color{R: uint8(parts[0]), G: uint8(parts[1]), B: uint8(parts[2]), A: 1}
	if len(parts) == 4 {
		c.A = parts[3]
	}
	return nil
}

// Outline is the stroke of a fill symbol.
type Outline struct {
	Color Color   `json:"color"`
	Width float64 `json:"width"`
}

// Descriptor is the symbol applied to a graphic.
type Descriptor struct {
	Kind    Kind     `json:"type"`
	Color   Color    `json:"color"`
	Size    float64  `json:"size,omitempty"`
	Width   float64  `json:"width,omitempty"`
	Outline *Outline `json:"outline,omitempty"`
}

// Resolve returns the descriptor for a shape of type t drawn with the
// selected color. subtype only applies to polygons; [SubtypeNone] keeps the
// selected color.
func Resolve(t geo.Type, subtype Subtype, selected Color) Descriptor {
	switch t {
	case geo.TypePoint:
		return Descriptor{Kind: KindMarker, Color: selected, Size: MarkerSize}
	case geo.TypePolyline:
		return Descriptor{Kind: KindLine, Color: selected, Width: LineWidth}
	}

	fill := selected.WithAlpha(FillOpacity)
	outline := selected
	if p, ok := subtypes[subtype]; ok {
		fill, outline = p.fill, p.outline
	}
	return Descriptor{
		Kind:    KindFill,
		Color:   fill,
		Outline: &Outline{Color: outline, Width: OutlineWidth},
	}
}
