// Package geo holds the geometry model of drawn shapes and the engines that
// measure them.
//
// # Geometry
//
// A [Geometry] is one of three shapes drawn on the map, in WGS84 longitude /
// latitude order:
//
//   - point: a single [orb.Point]
//   - polyline: one or more paths ([orb.MultiLineString])
//   - polygon: an outer ring followed by optional holes ([orb.Polygon])
//
// Constructors validate coordinate ranges and vertex counts, and close
// polygon rings. A Geometry marshals to and from its standard GeoJSON
// geometry object; a single-path polyline is written as a LineString.
//
// # Engines
//
// An [Engine] computes geodesic length and area. Two engines are provided:
//
//   - [WGS84]: ellipsoidal geodesics (Karney) via github.com/tidwall/geodesic
//   - [Spherical]: great-circle approximation via github.com/paulmach/orb/geo
//
// Lengths are reported in a length [Unit] ("meters", "kilometers", ...),
// areas in an area unit ("square-meters", "hectares", ...).
//
// [orb.Point]: https://pkg.go.dev/github.com/paulmach/orb#Point
// [orb.MultiLineString]: https://pkg.go.dev/github.com/paulmach/orb#MultiLineString
// [orb.Polygon]: https://pkg.go.dev/github.com/paulmach/orb#Polygon
package geo
