// Package pkg provides the libraries behind sketchmap map drawing sessions.
//
// # Overview
//
// A session is a map view, a drawing tool and the ordered list of shapes
// drawn so far. The pkg directory is organized by concern:
//
//  1. [geo] - Geometry model, units and geodesic measurement engines
//  2. [style] - Symbols per drawing mode and polygon subtype
//  3. [feature] - Feature registry: display IDs, metrics, change events
//  4. [sketch] - Drawing tool state machine with undo/redo
//  5. [mapview] - Basemap, center and zoom limits
//  6. [panel] - Features list and attributes panel
//  7. [editor] - Toolbar commands tying view, tool, registry and panel
//  8. [export] - GeoJSON, CSV and HTML table artifacts
//  9. [session] - Persistence: memory, file, Redis and MongoDB stores
//  10. [server] - HTTP API over stored sessions
//
// # Data Flow
//
//	toolbar command / pointer input
//	         ↓
//	    [sketch] tool (create or update events)
//	         ↓
//	    [feature] registry (ID, style, metrics)
//	         ↓
//	    [panel] attributes, [export] artifacts
//	         ↓
//	    [session] store
//
// # Quick Start
//
//	e := editor.New(editor.Options{})
//	e.Run(ctx, editor.CmdDrawPoint, editor.Args{})
//	e.AddVertex(ctx, orb.Point{31.2357, 30.0444})
//	res, _ := e.Run(ctx, editor.CmdExportTable, editor.Args{})
//	fmt.Println(string(res.Artifacts[0].Data))
//	// ID,Type,Coordinates
//	// 1,point,"31.2357, 30.0444"
package pkg
