package sketch

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/paulmach/orb"

	"github.com/matzehuels/sketchmap/pkg/errors"
	"github.com/matzehuels/sketchmap/pkg/geo"
)

type recorder struct {
	creates []CreateEvent
	updates []UpdateEvent
}

func newRecorded() (*Model, *recorder) {
	m := NewModel()
	r := &recorder{}
	m.OnCreate(func(ev CreateEvent) { r.creates = append(r.creates, ev) })
	m.OnUpdate(func(ev UpdateEvent) { r.updates = append(r.updates, ev) })
	return m, r
}

func (r *recorder) createStates() []State {
	out := make([]State, len(r.creates))
	for i, ev := range r.creates {
		out[i] = ev.State
	}
	return out
}

func TestPointCompletesOnFirstVertex(t *testing.T) {
	m, rec := newRecorded()
	if err := m.Create(geo.TypePoint); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if m.Active() != "point" {
		t.Errorf("Active() = %q, want point", m.Active())
	}
	if err := m.AddVertex(orb.Point{31.2357, 30.0444}); err != nil {
		t.Fatalf("AddVertex() error: %v", err)
	}

	want := []State{StateStart, StateActive, StateComplete}
	if got := rec.createStates(); !reflect.DeepEqual(got, want) {
		t.Errorf("states = %v, want %v", got, want)
	}
	last := rec.creates[len(rec.creates)-1]
	if last.Geometry.Type() != geo.TypePoint || !last.Geometry.Point().Equal(orb.Point{31.2357, 30.0444}) {
		t.Errorf("complete geometry = %v", last.Geometry)
	}
	if m.Active() != "" {
		t.Errorf("Active() after complete = %q, want idle", m.Active())
	}
}

func TestMinimumVertices(t *testing.T) {
	tests := []struct {
		mode geo.Type
		need int
	}{
		{geo.TypePolyline, 2},
		{geo.TypePolygon, 3},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			m, rec := newRecorded()
			m.Create(tt.mode)
			for i := 0; i < tt.need-1; i++ {
				m.AddVertex(orb.Point{float64(i), float64(i * i)})
			}
			if err := m.Complete(); !errors.Is(err, errors.ErrCodeInvalidGeometry) {
				t.Fatalf("Complete() with %d vertices error = %v, want INVALID_GEOMETRY", tt.need-1, err)
			}
			if m.Active() != string(tt.mode) {
				t.Fatalf("tool should stay active after a failed complete")
			}
			m.AddVertex(orb.Point{5, 1})
			if err := m.Complete(); err != nil {
				t.Fatalf("Complete() error: %v", err)
			}
			last := rec.creates[len(rec.creates)-1]
			if last.State != StateComplete || last.Geometry.Type() != tt.mode || last.Vertices != tt.need {
				t.Errorf("complete event = %+v", last)
			}
		})
	}
}

func TestPolygonClosed(t *testing.T) {
	m, rec := newRecorded()
	m.Create(geo.TypePolygon)
	for _, p := range []orb.Point{{0, 0}, {1, 0}, {1, 1}} {
		m.AddVertex(p)
	}
	if err := m.Complete(); err != nil {
		t.Fatal(err)
	}
	ring := rec.creates[len(rec.creates)-1].Geometry.Rings()[0]
	if len(ring) != 4 || !ring.Closed() {
		t.Errorf("ring = %v, want closed with 4 points", ring)
	}
}

func TestPolygonRejectsReturnToStart(t *testing.T) {
	m, rec := newRecorded()
	m.Create(geo.TypePolygon)
	for _, p := range []orb.Point{{0, 0}, {1, 0}, {0, 0}} {
		m.AddVertex(p)
	}
	if err := m.Complete(); !errors.Is(err, errors.ErrCodeInvalidGeometry) {
		t.Fatalf("Complete() error = %v, want INVALID_GEOMETRY", err)
	}
	if m.Active() != "polygon" {
		t.Errorf("Active() = %q, want polygon", m.Active())
	}
	for _, ev := range rec.creates {
		if ev.State == StateComplete {
			t.Errorf("unexpected complete event %+v", ev)
		}
	}
}

func TestUndoRedo(t *testing.T) {
	m, _ := newRecorded()

	if err := m.Undo(); !errors.Is(err, errors.ErrCodeNoActiveTool) {
		t.Errorf("Undo() idle error = %v, want NO_ACTIVE_DRAWING_TOOL", err)
	} else if got := errors.UserMessageIn(err, errors.LangArabic); got != "مفيش رسم شغال حالياً للتراجع!" {
		t.Errorf("undo message = %q", got)
	}
	if err := m.Redo(); !errors.Is(err, errors.ErrCodeNoActiveTool) {
		t.Errorf("Redo() idle error = %v, want NO_ACTIVE_DRAWING_TOOL", err)
	} else if got := errors.UserMessageIn(err, errors.LangArabic); got != "مفيش رسم شغال حالياً لإعادة!" {
		t.Errorf("redo message = %q", got)
	}

	m.Create(geo.TypePolyline)
	if err := m.Undo(); err != nil {
		t.Errorf("Undo() with empty history error = %v", err)
	}
	m.AddVertex(orb.Point{0, 0})
	m.AddVertex(orb.Point{1, 1})
	m.AddVertex(orb.Point{2, 2})

	m.Undo()
	m.Undo()
	if got := m.Vertices(); len(got[0]) != 1 {
		t.Fatalf("vertices after two undos = %v", got)
	}
	m.Redo()
	if got := m.Vertices(); len(got[0]) != 2 || !got[0][1].Equal(orb.Point{1, 1}) {
		t.Fatalf("vertices after redo = %v", got)
	}

	m.AddVertex(orb.Point{9, 9})
	if m.CanRedo() {
		t.Error("a new vertex should discard the redo history")
	}
}

func TestUpdate(t *testing.T) {
	m, rec := newRecorded()
	orig, _ := geo.NewPolyline(orb.LineString{{0, 0}, {1, 1}})

	if err := m.Update("polyline-1", orig); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if m.Active() != ToolUpdate {
		t.Errorf("Active() = %q, want update", m.Active())
	}
	if err := m.AddVertex(orb.Point{3, 3}); !errors.Is(err, errors.ErrCodeNoActiveTool) {
		t.Errorf("AddVertex() while editing error = %v", err)
	}
	if err := m.MoveVertex(0, 5, orb.Point{2, 2}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("MoveVertex(out of range) error = %v", err)
	}
	if err := m.MoveVertex(0, 1, orb.Point{2, 2}); err != nil {
		t.Fatalf("MoveVertex() error: %v", err)
	}
	m.Undo()
	m.Redo()
	if err := m.Complete(); err != nil {
		t.Fatalf("Complete() error: %v", err)
	}

	states := make([]State, len(rec.updates))
	for i, ev := range rec.updates {
		states[i] = ev.State
	}
	want := []State{StateStart, StateActive, StateActive, StateActive, StateComplete}
	if !reflect.DeepEqual(states, want) {
		t.Errorf("update states = %v, want %v", states, want)
	}
	done := rec.updates[len(rec.updates)-1]
	wantGeom, _ := geo.NewPolyline(orb.LineString{{0, 0}, {2, 2}})
	if done.FeatureID != "polyline-1" || !done.Geometry.Equal(wantGeom) {
		t.Errorf("complete = %+v", done)
	}
	if len(rec.creates) != 0 {
		t.Errorf("editing emitted %d create events", len(rec.creates))
	}
}

func TestCancel(t *testing.T) {
	m, rec := newRecorded()
	m.Cancel()
	if len(rec.creates)+len(rec.updates) != 0 {
		t.Error("Cancel() while idle should not emit")
	}

	m.Create(geo.TypePolygon)
	m.AddVertex(orb.Point{0, 0})
	m.Create(geo.TypePolyline)

	want := []State{StateStart, StateActive, StateCancel, StateStart}
	if got := rec.createStates(); !reflect.DeepEqual(got, want) {
		t.Errorf("states = %v, want %v", got, want)
	}

	orig, _ := geo.NewPoint(1, 1)
	m.Update("point-1", orig)
	m.MoveVertex(0, 0, orb.Point{2, 2})
	m.Cancel()
	last := rec.updates[len(rec.updates)-1]
	if last.State != StateCancel || !last.Geometry.Equal(orig) {
		t.Errorf("cancel event = %+v, want original geometry", last)
	}
}

func TestSnapshotRestore(t *testing.T) {
	m, _ := newRecorded()
	m.Create(geo.TypePolygon)
	m.AddVertex(orb.Point{0, 0})
	m.AddVertex(orb.Point{1, 0})
	m.Undo()

	data, err := json.Marshal(m.Snapshot())
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	n, rec := newRecorded()
	if err := n.Restore(s); err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	if n.Active() != "polygon" || !n.CanRedo() || !n.CanUndo() {
		t.Errorf("restored Active()=%q CanUndo=%v CanRedo=%v", n.Active(), n.CanUndo(), n.CanRedo())
	}
	n.Redo()
	n.AddVertex(orb.Point{1, 1})
	if err := n.Complete(); err != nil {
		t.Fatalf("Complete() after restore error: %v", err)
	}
	if got := rec.creates[len(rec.creates)-1]; got.Vertices != 3 {
		t.Errorf("restored polygon has %d vertices, want 3", got.Vertices)
	}

	if err := n.Restore(Snapshot{Mode: "circle", Parts: [][]orb.Point{nil}}); err == nil {
		t.Error("Restore() accepted unknown mode")
	}
}
