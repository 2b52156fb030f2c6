package editor

import (
	"fmt"

	"github.com/matzehuels/sketchmap/pkg/feature"
	"github.com/matzehuels/sketchmap/pkg/geo"
	"github.com/matzehuels/sketchmap/pkg/mapview"
	"github.com/matzehuels/sketchmap/pkg/sketch"
	"github.com/matzehuels/sketchmap/pkg/style"
)

// Snapshot is the serializable state of an editor.
type Snapshot struct {
	View     mapview.View            `json:"view"`
	Color    style.Color             `json:"color"`
	Subtype  style.Subtype           `json:"subtype,omitempty"`
	Engine   string                  `json:"engine"`
	Features []feature.Feature       `json:"features"`
	Edited   map[string]geo.Geometry `json:"edited,omitempty"`
	Tool     sketch.Snapshot         `json:"tool"`
	Shown    string                  `json:"shown,omitempty"`
}

// Snapshot captures the editor state.
func (e *Editor) Snapshot() Snapshot {
	s := Snapshot{
		View:     e.view,
		Color:    e.color,
		Subtype:  e.subtype,
		Engine:   e.registry.Engine().Name(),
		Features: e.registry.List(),
		Tool:     e.tool.Snapshot(),
	}
	if len(e.edited) > 0 {
		s.Edited = make(map[string]geo.Geometry, len(e.edited))
		for id, g := range e.edited {
			s.Edited[id] = g
		}
	}
	if f, ok := e.panel.Shown(); ok {
		s.Shown = f.ID
	}
	return s
}

// Restore replaces the editor state with s. The features list and the
// attributes panel are rebuilt. On error the editor is left unchanged.
func (e *Editor) Restore(s Snapshot) error {
	if err := s.View.Validate(); err != nil {
		return fmt.Errorf("view: %w", err)
	}
	for id := range s.Edited {
		if !hasFeature(s.Features, id) {
			return fmt.Errorf("edited feature %q is not in the list", id)
		}
	}
	if s.Shown != "" && !hasFeature(s.Features, s.Shown) {
		return fmt.Errorf("shown feature %q is not in the list", s.Shown)
	}
	check := sketch.NewModel()
	if err := check.Restore(s.Tool); err != nil {
		return fmt.Errorf("tool: %w", err)
	}
	if err := e.registry.Restore(s.Features); err != nil {
		return err
	}

	_ = e.tool.Restore(s.Tool)
	e.view = s.View
	e.color = s.Color
	e.subtype = s.Subtype
	clear(e.edited)
	for id, g := range s.Edited {
		e.edited[id] = g
	}
	if s.Shown != "" {
		_, _ = e.registry.Select(s.Shown)
	}
	return nil
}

func hasFeature(list []feature.Feature, id string) bool {
	for _, f := range list {
		if f.ID == id {
			return true
		}
	}
	return false
}
