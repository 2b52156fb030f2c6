// Package editor is the controller of a drawing session. It owns the map
// view, the drawing tool, the feature registry and the side panel, and
// maps toolbar commands onto them.
//
// When the drawing tool completes a shape, the editor resolves its symbol
// from the selected color and polygon subtype, adds it to the registry and
// the panel shows its attributes. Exports read the full registry.
//
// An Editor is not safe for concurrent use; callers serialize access per
// session.
package editor

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"

	"github.com/matzehuels/sketchmap/pkg/errors"
	"github.com/matzehuels/sketchmap/pkg/export"
	"github.com/matzehuels/sketchmap/pkg/feature"
	"github.com/matzehuels/sketchmap/pkg/geo"
	"github.com/matzehuels/sketchmap/pkg/mapview"
	"github.com/matzehuels/sketchmap/pkg/observability"
	"github.com/matzehuels/sketchmap/pkg/panel"
	"github.com/matzehuels/sketchmap/pkg/sketch"
	"github.com/matzehuels/sketchmap/pkg/style"
)

// Options configures a new Editor. Zero fields take defaults.
type Options struct {
	SessionID string
	Engine    geo.Engine
	View      *mapview.View
	Color     *style.Color
	Logger    *log.Logger
}

// Result describes the outcome of a command.
type Result struct {
	Command   Command           `json:"command"`
	Zoom      int               `json:"zoom"`
	Active    string            `json:"active_tool,omitempty"`
	Feature   *feature.Feature  `json:"feature,omitempty"`
	Artifacts []export.Artifact `json:"-"`
}

// Editor is one drawing session.
type Editor struct {
	id       string
	view     mapview.View
	color    style.Color
	subtype  style.Subtype
	registry *feature.Registry
	tool     *sketch.Model
	panel    *panel.Panel
	edited   map[string]geo.Geometry
	logger   *log.Logger

	// set by the create handler while the tool completes a shape
	added  *feature.Feature
	addErr error
}

// New creates an editor with an empty registry and an idle tool.
func New(opts Options) *Editor {
	e := &Editor{
		id:     opts.SessionID,
		view:   mapview.Default(),
		color:  style.DefaultColor,
		tool:   sketch.NewModel(),
		panel:  panel.New(),
		edited: make(map[string]geo.Geometry),
		logger: opts.Logger,
	}
	if opts.View != nil {
		e.view = *opts.View
	}
	if opts.Color != nil {
		e.color = *opts.Color
	}
	if e.logger == nil {
		e.logger = log.Default()
	}
	e.registry = feature.NewRegistry(opts.Engine)
	e.panel.Resolve(e.live)
	e.panel.Attach(e.registry)
	e.tool.OnCreate(e.handleCreate)
	e.tool.OnUpdate(e.handleUpdate)
	return e
}

// ID returns the session ID the editor was created with.
func (e *Editor) ID() string { return e.id }

// View returns the current map view.
func (e *Editor) View() mapview.View { return e.view }

// Color returns the selected color.
func (e *Editor) Color() style.Color { return e.color }

// Subtype returns the subtype applied to the next polygon.
func (e *Editor) Subtype() style.Subtype { return e.subtype }

// Registry returns the feature registry.
func (e *Editor) Registry() *feature.Registry { return e.registry }

// Tool returns the drawing tool.
func (e *Editor) Tool() *sketch.Model { return e.tool }

// Panel returns the side panel.
func (e *Editor) Panel() *panel.Panel { return e.panel }

// Features returns a snapshot of the drawn features as attributed, before
// any edit.
func (e *Editor) Features() []feature.Feature { return e.registry.List() }

// Layer returns the features as drawn on the map: edited features carry
// their edited geometry and the metrics measured on it.
func (e *Editor) Layer() []feature.Feature {
	list := e.registry.List()
	for i, f := range list {
		list[i] = e.live(f)
	}
	return list
}

// live returns f with its edited geometry, if any, and metrics recomputed
// for that geometry.
func (e *Editor) live(f feature.Feature) feature.Feature {
	g, ok := e.edited[f.ID]
	if !ok {
		return f
	}
	m, err := feature.ComputeMetrics(e.registry.Engine(), g)
	if err != nil {
		e.logger.Warn("measure edited feature", "session", e.id, "id", f.ID, "error", err)
		return f
	}
	f.Geometry = g
	switch f.Type {
	case geo.TypePolyline:
		f.Length = &m.Length
	case geo.TypePolygon:
		f.Length, f.Area = &m.Length, &m.Area
	}
	return f
}

// Geometry returns the geometry shown on the map for feature id: the edited
// shape if it was edited, the original otherwise.
func (e *Editor) Geometry(id string) (geo.Geometry, error) {
	if g, ok := e.edited[id]; ok {
		return g, nil
	}
	f, err := e.registry.Get(id)
	if err != nil {
		return geo.Geometry{}, err
	}
	return f.Geometry, nil
}

// ===== Commands =====

// Run executes a toolbar command.
func (e *Editor) Run(ctx context.Context, cmd Command, args Args) (Result, error) {
	start := time.Now()
	res, err := e.run(cmd, args)
	observability.Editor().OnCommand(ctx, e.id, string(cmd), time.Since(start), err)
	if err != nil {
		e.logger.Debug("command failed", "session", e.id, "command", cmd, "error", err)
		return Result{}, err
	}
	res.Command = cmd
	res.Zoom = e.view.Zoom
	res.Active = e.tool.Active()
	for _, a := range res.Artifacts {
		observability.Export().OnExport(ctx, string(a.Format), e.registry.Len(), len(a.Data), nil)
	}
	e.logger.Debug("command", "session", e.id, "command", cmd, "active", res.Active)
	return res, nil
}

func (e *Editor) run(cmd Command, args Args) (Result, error) {
	switch cmd {
	case CmdDrawPoint:
		return Result{}, e.draw(geo.TypePoint, style.SubtypeNone)
	case CmdDrawPolyline:
		return Result{}, e.draw(geo.TypePolyline, style.SubtypeNone)
	case CmdDrawPolygon:
		st, err := style.ParseSubtype(args.Subtype)
		if err != nil {
			return Result{}, err
		}
		return Result{}, e.draw(geo.TypePolygon, st)
	case CmdEditGraphic:
		return Result{}, e.EditGraphic()
	case CmdUndo:
		return Result{}, e.tool.Undo()
	case CmdRedo:
		return Result{}, e.tool.Redo()
	case CmdZoomIn:
		e.view.ZoomIn()
		return Result{}, nil
	case CmdZoomOut:
		e.view.ZoomOut()
		return Result{}, nil
	case CmdClearGraphics:
		e.ClearGraphics()
		return Result{}, nil
	case CmdExportGeoJSON:
		a, err := e.ExportGeoJSON()
		if err != nil {
			return Result{}, err
		}
		return Result{Artifacts: []export.Artifact{a}}, nil
	case CmdExportTable:
		arts, err := e.ExportTable()
		if err != nil {
			return Result{}, err
		}
		return Result{Artifacts: arts}, nil
	case CmdColorPicker:
		return Result{}, e.SetColor(args.Color)
	}
	return Result{}, errors.New(errors.ErrCodeInvalidCommand, "unknown command %q", cmd)
}

func (e *Editor) draw(t geo.Type, st style.Subtype) error {
	if err := e.tool.Create(t); err != nil {
		return err
	}
	e.subtype = st
	return nil
}

// SetColor sets the selected color from a "#rrggbb" value. Shapes already
// drawn keep their color.
func (e *Editor) SetColor(hex string) error {
	c, err := style.ParseColor(hex)
	if err != nil {
		return err
	}
	e.color = c
	return nil
}

// EditGraphic puts the tool in update mode on the most recent feature.
func (e *Editor) EditGraphic() error {
	last, ok := e.registry.Last()
	if !ok {
		return errors.Localized(errors.ErrCodeEmptyFeatureSet, errors.MsgNothingToEdit, "no features to edit")
	}
	g, err := e.Geometry(last.ID)
	if err != nil {
		return err
	}
	return e.tool.Update(last.ID, g)
}

// ClearGraphics removes every feature and empties the panel. An edit in
// progress is cancelled since its feature is gone.
func (e *Editor) ClearGraphics() {
	if _, editing := e.tool.Editing(); editing {
		e.tool.Cancel()
	}
	e.registry.Clear()
	clear(e.edited)
	e.logger.Debug("cleared graphics", "session", e.id)
}

// ExportGeoJSON serializes the features as graphics.geojson.
func (e *Editor) ExportGeoJSON() (export.Artifact, error) {
	return export.Build(export.FormatGeoJSON, e.Layer())
}

// ExportTable serializes the features as drawn_features.csv plus the HTML
// table view.
func (e *Editor) ExportTable() ([]export.Artifact, error) {
	features := e.Layer()
	csv, err := export.Build(export.FormatCSV, features)
	if err != nil {
		return nil, err
	}
	html, err := export.Build(export.FormatHTML, features)
	if err != nil {
		return nil, err
	}
	return []export.Artifact{csv, html}, nil
}

// Export serializes the features in format f.
func (e *Editor) Export(f export.Format) (export.Artifact, error) {
	return export.Build(f, e.Layer())
}

// Select shows the attributes of feature id in the panel and returns the
// feature as drawn on the map.
func (e *Editor) Select(id string) (feature.Feature, error) {
	f, err := e.registry.Select(id)
	if err != nil {
		return feature.Feature{}, err
	}
	return e.live(f), nil
}

// ===== Pointer input =====

// AddVertex adds a vertex to the shape being drawn. It returns the new
// feature when the vertex completes the shape, as it does in point mode.
func (e *Editor) AddVertex(ctx context.Context, p orb.Point) (*feature.Feature, error) {
	e.added, e.addErr = nil, nil
	if err := e.tool.AddVertex(p); err != nil {
		return nil, err
	}
	return e.takeAdded(ctx)
}

// MoveVertex moves a vertex of the active shape.
func (e *Editor) MoveVertex(part, index int, p orb.Point) error {
	return e.tool.MoveVertex(part, index, p)
}

// Complete finishes the active drawing or edit. It returns the new feature
// for a drawing and nil for an edit.
func (e *Editor) Complete(ctx context.Context) (*feature.Feature, error) {
	e.added, e.addErr = nil, nil
	if err := e.tool.Complete(); err != nil {
		return nil, err
	}
	return e.takeAdded(ctx)
}

// Cancel abandons the active drawing or edit.
func (e *Editor) Cancel() {
	e.tool.Cancel()
}

func (e *Editor) takeAdded(ctx context.Context) (*feature.Feature, error) {
	f, err := e.added, e.addErr
	e.added, e.addErr = nil, nil
	if err != nil {
		return nil, err
	}
	if f != nil {
		observability.Editor().OnFeatureAdded(ctx, e.id, f.ID, string(f.Type))
	}
	return f, nil
}

// ===== Tool events =====

func (e *Editor) handleCreate(ev sketch.CreateEvent) {
	switch ev.State {
	case sketch.StateComplete:
	case sketch.StateCancel:
		e.subtype = style.SubtypeNone
		return
	default:
		return
	}

	st := style.SubtypeNone
	if ev.Tool == geo.TypePolygon {
		st = e.subtype
	}
	var attrs map[string]string
	if st != style.SubtypeNone {
		attrs = map[string]string{feature.AttrSubtype: string(st)}
	}
	f, err := e.registry.Add(ev.Tool, ev.Geometry, style.Resolve(ev.Tool, st, e.color), attrs)
	e.subtype = style.SubtypeNone
	if err != nil {
		e.addErr = err
		return
	}
	e.added = &f
	e.logger.Info("feature added", "session", e.id, "id", f.ID, "vertices", ev.Vertices)
}

func (e *Editor) handleUpdate(ev sketch.UpdateEvent) {
	if ev.State != sketch.StateComplete {
		return
	}
	e.edited[ev.FeatureID] = ev.Geometry
	e.logger.Info("feature edited", "session", e.id, "id", ev.FeatureID)
	if f, ok := e.panel.Shown(); ok && f.ID == ev.FeatureID {
		_, _ = e.registry.Select(ev.FeatureID)
	}
}
