package sketch

import (
	"github.com/paulmach/orb"

	"github.com/matzehuels/sketchmap/pkg/errors"
	"github.com/matzehuels/sketchmap/pkg/geo"
)

// Snapshot is the serializable state of a [Model]. The zero value is an
// idle tool.
type Snapshot struct {
	Mode      geo.Type        `json:"mode,omitempty"`
	Updating  bool            `json:"updating,omitempty"`
	FeatureID string          `json:"feature_id,omitempty"`
	Original  geo.Geometry    `json:"original"`
	Parts     [][]orb.Point   `json:"parts,omitempty"`
	Undo      [][][]orb.Point `json:"undo,omitempty"`
	Redo      [][][]orb.Point `json:"redo,omitempty"`
}

// Snapshot captures the current operation, including its undo history.
func (m *Model) Snapshot() Snapshot {
	s := Snapshot{
		Mode:      m.mode,
		Updating:  m.updating,
		FeatureID: m.featureID,
		Original:  m.original,
		Parts:     clonePart(m.parts),
	}
	for _, u := range m.undo {
		s.Undo = append(s.Undo, clonePart(u))
	}
	for _, r := range m.redo {
		s.Redo = append(s.Redo, clonePart(r))
	}
	return s
}

// Restore replaces the current operation with s without emitting events.
// Listeners are kept.
func (m *Model) Restore(s Snapshot) error {
	if s.Mode == "" {
		m.reset()
		return nil
	}
	if _, err := geo.ParseType(string(s.Mode)); err != nil {
		return err
	}
	if s.Updating && s.Original.Type() != s.Mode {
		return errors.New(errors.ErrCodeInvalidInput, "edit of %s has %s original", s.Mode, s.Original.Type())
	}
	if len(s.Parts) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "active %s has no parts", s.Mode)
	}
	m.mode = s.Mode
	m.updating = s.Updating
	m.featureID = s.FeatureID
	m.original = s.Original
	m.parts = clonePart(s.Parts)
	m.undo = nil
	for _, u := range s.Undo {
		m.undo = append(m.undo, clonePart(u))
	}
	m.redo = nil
	for _, r := range s.Redo {
		m.redo = append(m.redo, clonePart(r))
	}
	return nil
}
