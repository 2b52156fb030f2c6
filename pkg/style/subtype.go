package style

import (
	"strings"

	"github.com/matzehuels/sketchmap/pkg/errors"
)

// Subtype is a land-use category applied to polygons for styling.
type Subtype string

// Subtypes offered by the polygon selector.
const (
	SubtypeNone        Subtype = ""
	SubtypeResidential Subtype = "residential"
	SubtypeCommercial  Subtype = "commercial"
	SubtypeIndustrial  Subtype = "industrial"
	SubtypeGreen       Subtype = "green"
	SubtypeOther       Subtype = "other"
)

// Subtypes lists the selectable subtypes in selector order.
var Subtypes = []Subtype{SubtypeResidential, SubtypeCommercial, SubtypeIndustrial, SubtypeGreen, SubtypeOther}

type palette struct {
	fill    Color
	outline Color
}

var subtypes = map[Subtype]palette{
	SubtypeResidential: {fill: Color{255, 215, 0, FillOpacity}, outline: Color{255, 215, 0, 1}},
	SubtypeCommercial:  {fill: Color{255, 0, 0, FillOpacity}, outline: Color{255, 0, 0, 1}},
	SubtypeIndustrial:  {fill: Color{128, 0, 128, FillOpacity}, outline: Color{128, 0, 128, 1}},
	SubtypeGreen:       {fill: Color{0, 128, 0, FillOpacity}, outline: Color{0, 128, 0, 1}},
	SubtypeOther:       {fill: Color{128, 128, 128, FillOpacity}, outline: Color{128, 128, 128, 1}},
}

// ParseSubtype parses a subtype name. The empty string and "none" parse to
// [SubtypeNone].
func ParseSubtype(s string) (Subtype, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "none" {
		return SubtypeNone, nil
	}
	if _, ok := subtypes[Subtype(s)]; ok {
		return Subtype(s), nil
	}
	return SubtypeNone, errors.New(errors.ErrCodeInvalidStyle, "unknown subtype %q", s)
}

// FillColor returns the fixed fill of a subtype.
func (s Subtype) FillColor() (Color, bool) {
	p, ok := subtypes[s]
	return p.fill, ok
}
