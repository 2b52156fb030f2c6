// Package feature keeps the ordered list of shapes drawn in a session.
//
// # Registry
//
// A [Registry] owns the list. [Registry.Add] attributes a completed shape:
// it assigns the display ID, computes its metrics through a [geo.Engine],
// appends it and notifies subscribers. Readers only ever receive copies.
//
// # IDs
//
// Display IDs have the form "{type}-{ordinal}" where ordinal is the list
// length plus one at the time the feature is added:
//
//	point-1, polyline-2, polygon-3, ...
//
// Because the ordinal derives from the list length, [Registry.Clear] makes
// numbering start again at 1.
//
// # Metrics
//
// [ComputeMetrics] measures a geometry: polylines get a geodesic length in
// meters, polygons a perimeter in meters and an area in square meters,
// points nothing. On a [Feature] the metrics that do not apply are nil.
//
// # Concurrency
//
// A Registry is not safe for concurrent use. It is meant to be owned by a
// single session that serializes its events, the way a UI event loop does.
package feature
