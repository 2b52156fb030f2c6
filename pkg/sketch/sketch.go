// Package sketch implements the drawing tool: a small state machine that
// collects vertices for a new shape, or edits the vertices of an existing
// one, and reports its progress through events.
//
// A create operation goes through
//
//	start -> active (one per vertex) -> complete | cancel
//
// Point mode completes on its first vertex. Polylines need two vertices and
// polygons three before [Model.Complete] succeeds; polygon rings are closed
// automatically. Vertex additions and moves can be undone and redone while
// an operation is active.
package sketch

import (
	"github.com/paulmach/orb"

	"github.com/matzehuels/sketchmap/pkg/errors"
	"github.com/matzehuels/sketchmap/pkg/geo"
)

// State is the phase of a tool operation.
type State string

// Operation states.
const (
	StateStart    State = "start"
	StateActive   State = "active"
	StateComplete State = "complete"
	StateCancel   State = "cancel"
)

// ToolUpdate is the name [Model.Active] reports while editing.
const ToolUpdate = "update"

// CreateEvent reports the progress of a create operation. Geometry is set
// only when State is [StateComplete].
type CreateEvent struct {
	State    State
	Tool     geo.Type
	Vertices int
	Geometry geo.Geometry
}

// UpdateEvent reports the progress of an edit. Geometry holds the current
// shape for every state except [StateCancel], where it is the original.
type UpdateEvent struct {
	State     State
	FeatureID string
	Geometry  geo.Geometry
}

// Model is the drawing tool. The zero value is not usable; call [NewModel].
type Model struct {
	mode      geo.Type // shape being created or edited
	updating  bool
	featureID string
	original  geo.Geometry
	parts     [][]orb.Point
	undo      [][][]orb.Point
	redo      [][][]orb.Point

	onCreate []func(CreateEvent)
	onUpdate []func(UpdateEvent)
}

// NewModel returns an idle drawing tool.
func NewModel() *Model {
	return &Model{}
}

// OnCreate registers fn for create events.
func (m *Model) OnCreate(fn func(CreateEvent)) {
	m.onCreate = append(m.onCreate, fn)
}

// OnUpdate registers fn for update events.
func (m *Model) OnUpdate(fn func(UpdateEvent)) {
	m.onUpdate = append(m.onUpdate, fn)
}

func (m *Model) emitCreate(ev CreateEvent) {
	for _, fn := range m.onCreate {
		fn(ev)
	}
}

func (m *Model) emitUpdate(ev UpdateEvent) {
	for _, fn := range m.onUpdate {
		fn(ev)
	}
}

// Active returns the name of the active tool: the geometry type being
// drawn, [ToolUpdate] while editing, or "" when idle.
func (m *Model) Active() string {
	switch {
	case m.updating:
		return ToolUpdate
	case m.mode != "":
		return string(m.mode)
	}
	return ""
}

// Mode returns the geometry type of the active operation.
func (m *Model) Mode() (geo.Type, bool) {
	return m.mode, m.mode != ""
}

// Editing returns the ID of the feature being edited.
func (m *Model) Editing() (string, bool) {
	return m.featureID, m.updating
}

// Vertices returns a copy of the vertices collected so far, one list per
// part.
func (m *Model) Vertices() [][]orb.Point {
	return clonePart(m.parts)
}

// CanUndo reports whether there is a step to undo.
func (m *Model) CanUndo() bool { return len(m.undo) > 0 }

// CanRedo reports whether there is a step to redo.
func (m *Model) CanRedo() bool { return len(m.redo) > 0 }

// Create starts drawing a new shape of type t. An active operation is
// cancelled first.
func (m *Model) Create(t geo.Type) error {
	if _, err := geo.ParseType(string(t)); err != nil {
		return err
	}
	m.Cancel()
	m.mode = t
	m.parts = [][]orb.Point{nil}
	m.emitCreate(CreateEvent{State: StateStart, Tool: t})
	return nil
}

// AddVertex appends a vertex to the shape being created. In point mode the
// operation completes immediately.
func (m *Model) AddVertex(p orb.Point) error {
	if m.mode == "" || m.updating {
		return errors.New(errors.ErrCodeNoActiveTool, "no create operation is active")
	}
	if _, err := geo.NewPoint(p[0], p[1]); err != nil {
		return err
	}
	m.checkpoint()
	last := len(m.parts) - 1
	m.parts[last] = append(m.parts[last], p)
	m.emitCreate(CreateEvent{State: StateActive, Tool: m.mode, Vertices: m.vertexCount()})

	if m.mode == geo.TypePoint {
		return m.Complete()
	}
	return nil
}

// MoveVertex moves vertex index of part to p.
func (m *Model) MoveVertex(part, index int, p orb.Point) error {
	if m.mode == "" {
		return errors.New(errors.ErrCodeNoActiveTool, "no drawing is active")
	}
	if part < 0 || part >= len(m.parts) || index < 0 || index >= len(m.parts[part]) {
		return errors.New(errors.ErrCodeInvalidInput, "vertex %d of part %d does not exist", index, part)
	}
	if _, err := geo.NewPoint(p[0], p[1]); err != nil {
		return err
	}
	m.checkpoint()
	m.parts[part][index] = p
	m.emitActive()
	return nil
}

// Update starts editing the geometry of feature id. An active operation is
// cancelled first.
func (m *Model) Update(id string, g geo.Geometry) error {
	if g.IsZero() {
		return errors.New(errors.ErrCodeInvalidGeometry, "nothing to edit")
	}
	m.Cancel()
	m.mode = g.Type()
	m.updating = true
	m.featureID = id
	m.original = g
	m.parts = g.Parts()
	m.emitUpdate(UpdateEvent{State: StateStart, FeatureID: id, Geometry: g})
	return nil
}

// Complete finishes the active operation. The shape must have enough
// vertices for its type; otherwise the operation stays active.
func (m *Model) Complete() error {
	if m.mode == "" {
		return errors.New(errors.ErrCodeNoActiveTool, "no drawing is active")
	}
	g, err := geo.FromParts(m.mode, m.parts)
	if err != nil {
		return err
	}
	if m.updating {
		id := m.featureID
		m.reset()
		m.emitUpdate(UpdateEvent{State: StateComplete, FeatureID: id, Geometry: g})
		return nil
	}
	t := m.mode
	n := m.vertexCount()
	m.reset()
	m.emitCreate(CreateEvent{State: StateComplete, Tool: t, Vertices: n, Geometry: g})
	return nil
}

// Cancel abandons the active operation. It does nothing when idle.
func (m *Model) Cancel() {
	if m.mode == "" {
		return
	}
	if m.updating {
		id, g := m.featureID, m.original
		m.reset()
		m.emitUpdate(UpdateEvent{State: StateCancel, FeatureID: id, Geometry: g})
		return
	}
	t, n := m.mode, m.vertexCount()
	m.reset()
	m.emitCreate(CreateEvent{State: StateCancel, Tool: t, Vertices: n})
}

// Undo reverts the last vertex change. It fails when no operation is
// active and does nothing when there is nothing to undo.
func (m *Model) Undo() error {
	if m.mode == "" {
		return errors.Localized(errors.ErrCodeNoActiveTool, errors.MsgUndoNoTool, "no drawing is active to undo")
	}
	if len(m.undo) == 0 {
		return nil
	}
	m.redo = append(m.redo, clonePart(m.parts))
	m.parts = m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	m.emitActive()
	return nil
}

// Redo reapplies the last undone vertex change. It fails when no operation
// is active and does nothing when there is nothing to redo.
func (m *Model) Redo() error {
	if m.mode == "" {
		return errors.Localized(errors.ErrCodeNoActiveTool, errors.MsgRedoNoTool, "no drawing is active to redo")
	}
	if len(m.redo) == 0 {
		return nil
	}
	m.undo = append(m.undo, clonePart(m.parts))
	m.parts = m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	m.emitActive()
	return nil
}

func (m *Model) emitActive() {
	if m.updating {
		g, _ := geo.FromParts(m.mode, m.parts)
		m.emitUpdate(UpdateEvent{State: StateActive, FeatureID: m.featureID, Geometry: g})
		return
	}
	m.emitCreate(CreateEvent{State: StateActive, Tool: m.mode, Vertices: m.vertexCount()})
}

func (m *Model) checkpoint() {
	m.undo = append(m.undo, clonePart(m.parts))
	m.redo = nil
}

func (m *Model) vertexCount() int {
	n := 0
	for _, p := range m.parts {
		n += len(p)
	}
	return n
}

func (m *Model) reset() {
	m.mode = ""
	m.updating = false
	m.featureID = ""
	m.original = geo.Geometry{}
	m.parts = nil
	m.undo = nil
	m.redo = nil
}

func clonePart(parts [][]orb.Point) [][]orb.Point {
	if parts == nil {
		return nil
	}
	out := make([][]orb.Point, len(parts))
	for i, p := range parts {
		out[i] = append([]orb.Point(nil), p...)
	}
	return out
}
