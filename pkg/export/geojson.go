package export

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb/geojson"

	"github.com/matzehuels/sketchmap/pkg/errors"
	"github.com/matzehuels/sketchmap/pkg/feature"
	"github.com/matzehuels/sketchmap/pkg/geo"
)

type collection struct {
	Type     string     `json:"type"`
	Features []gjRecord `json:"features"`
}

type gjRecord struct {
	Type       string            `json:"type"`
	Geometry   *geojson.Geometry `json:"geometry"`
	Properties map[string]any    `json:"properties"`
}

// GeoJSON encodes features as an indented GeoJSON FeatureCollection.
func GeoJSON(features []feature.Feature) ([]byte, error) {
	if err := checkNotEmpty(features); err != nil {
		return nil, err
	}
	out := collection{
		Type:     "FeatureCollection",
		Features: make([]gjRecord, len(features)),
	}
	for i, f := range features {
		out.Features[i] = gjRecord{
			Type:       "Feature",
			Geometry:   geojson.NewGeometry(f.Geometry.GeoJSON()),
			Properties: map[string]any{},
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode geojson: %w", err)
	}
	return data, nil
}

// ReadGeoJSON decodes the geometries of a FeatureCollection in order.
func ReadGeoJSON(data []byte) ([]geo.Geometry, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode feature collection")
	}
	out := make([]geo.Geometry, 0, len(fc.Features))
	for i, f := range fc.Features {
		g, err := geo.FromOrb(f.Geometry)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		out = append(out, g)
	}
	return out, nil
}
