// Package export serializes a session's features for download.
//
// # Formats
//
// Three formats are supported, each with a default artifact name:
//
//	GeoJSON     graphics.geojson      FeatureCollection, two-space indent
//	CSV         drawn_features.csv    ID,Type,Coordinates
//	HTML table  drawn_features.html   standalone document
//
// Every formatter refuses an empty feature list with an
// EMPTY_FEATURE_SET error, so callers never produce an empty download.
//
// # GeoJSON
//
// Each feature is written as
//
//	{"type": "Feature", "geometry": {...}, "properties": {}}
//
// Properties are always empty. A polyline with a single path is written as a
// LineString, otherwise as a MultiLineString. Use [ReadGeoJSON] to read the
// geometries back.
//
// # CSV
//
// The ID column is the 1-based row number, not the display ID. Points are
// written as "lon, lat"; polylines and polygons as the JSON array of their
// paths or rings. The output has no trailing newline:
//
//	ID,Type,Coordinates
//	1,point,"31.2357, 30.0444"
package export
