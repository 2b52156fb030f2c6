package feature

import (
	"maps"
	"time"

	"github.com/matzehuels/sketchmap/pkg/errors"
	"github.com/matzehuels/sketchmap/pkg/geo"
	"github.com/matzehuels/sketchmap/pkg/style"
)

// EventKind identifies a registry change.
type EventKind int

const (
	// EventAdded fires after a feature is appended.
	EventAdded EventKind = iota
	// EventSelected fires when a feature is selected for display.
	EventSelected
	// EventCleared fires after the list is emptied.
	EventCleared
	// EventRestored fires after the list is replaced from storage.
	EventRestored
)

// String returns the event name.
func (k EventKind) String() string {
	switch k {
	case EventAdded:
		return "added"
	case EventSelected:
		return "selected"
	case EventCleared:
		return "cleared"
	case EventRestored:
		return "restored"
	}
	return "unknown"
}

// Event describes a registry change. Feature is set for EventAdded and
// EventSelected. Features holds the full list for EventRestored.
type Event struct {
	Kind     EventKind
	Feature  *Feature
	Features []Feature
}

// Listener receives registry events.
type Listener func(Event)

type subscription struct {
	id int
	fn Listener
}

// Registry is the ordered list of features of one session.
type Registry struct {
	engine    geo.Engine
	features  []Feature
	listeners []subscription
	nextSub   int
	now       func() time.Time
}

// NewRegistry creates an empty registry measuring with engine. A nil
// engine selects [geo.WGS84].
func NewRegistry(engine geo.Engine) *Registry {
	if engine == nil {
		engine = geo.WGS84
	}
	return &Registry{
		engine: engine,
		now:    time.Now,
	}
}

// Engine returns the engine used for metrics.
func (r *Registry) Engine() geo.Engine { return r.engine }

// Subscribe registers fn for registry events and returns a function that
// removes it. Listeners run in subscription order.
func (r *Registry) Subscribe(fn Listener) (unsubscribe func()) {
	id := r.nextSub
	r.nextSub++
	r.listeners = append(r.listeners, subscription{id: id, fn: fn})
	return func() {
		for i, s := range r.listeners {
			if s.id == id {
				r.listeners = append(r.listeners[:i:i], r.listeners[i+1:]...)
				return
			}
		}
	}
}

func (r *Registry) notify(ev Event) {
	for _, s := range r.listeners {
		s.fn(ev)
	}
}

// Add attributes a completed shape and appends it. The geometry must be of
// type t. attrs are copied; the "id" attribute is always set to the
// assigned display ID.
func (r *Registry) Add(t geo.Type, g geo.Geometry, s style.Descriptor, attrs map[string]string) (Feature, error) {
	if _, err := geo.ParseType(string(t)); err != nil {
		return Feature{}, err
	}
	if g.Type() != t {
		return Feature{}, errors.New(errors.ErrCodeInvalidGeometry, "geometry is a %s, not a %s", g.Type(), t)
	}

	m, err := ComputeMetrics(r.engine, g)
	if err != nil {
		return Feature{}, err
	}

	id := FormatID(t, len(r.features)+1)
	f := Feature{
		ID:         id,
		Type:       t,
		Geometry:   g,
		Style:      s,
		Attributes: maps.Clone(attrs),
		CreatedAt:  r.now(),
	}
	if f.Attributes == nil {
		f.Attributes = make(map[string]string, 1)
	}
	f.Attributes[AttrID] = id

	switch t {
	case geo.TypePolyline:
		f.Length = &m.Length
	case geo.TypePolygon:
		f.Length = &m.Length
		f.Area = &m.Area
	}

	r.features = append(r.features, f)
	out := f.clone()
	r.notify(Event{Kind: EventAdded, Feature: &out})
	return f.clone(), nil
}

// List returns a copy of the features in insertion order.
func (r *Registry) List() []Feature {
	out := make([]Feature, len(r.features))
	for i, f := range r.features {
		out[i] = f.clone()
	}
	return out
}

// Len returns the number of features.
func (r *Registry) Len() int { return len(r.features) }

// Last returns the most recently added feature.
func (r *Registry) Last() (Feature, bool) {
	if len(r.features) == 0 {
		return Feature{}, false
	}
	return r.features[len(r.features)-1].clone(), true
}

// Get returns the feature with the given display ID without selecting it.
func (r *Registry) Get(id string) (Feature, error) {
	for _, f := range r.features {
		if f.ID == id {
			return f.clone(), nil
		}
	}
	return Feature{}, errors.New(errors.ErrCodeNotFound, "feature %q not found", id)
}

// Select returns the feature with the given display ID and notifies
// subscribers so its attributes can be shown.
func (r *Registry) Select(id string) (Feature, error) {
	f, err := r.Get(id)
	if err != nil {
		return Feature{}, err
	}
	sel := f.clone()
	r.notify(Event{Kind: EventSelected, Feature: &sel})
	return f, nil
}

// Clear removes all features.
func (r *Registry) Clear() {
	r.features = nil
	r.notify(Event{Kind: EventCleared})
}

// Restore replaces the list with features, keeping their IDs. It is used
// to rehydrate a stored session. Every ID must match its position in the
// list, as [Registry.Add] would have assigned it.
func (r *Registry) Restore(features []Feature) error {
	list := make([]Feature, len(features))
	for i, f := range features {
		if want := FormatID(f.Type, i+1); f.ID != want {
			return errors.New(errors.ErrCodeInvalidInput, "feature %d has id %q, want %q", i, f.ID, want)
		}
		if f.Geometry.Type() != f.Type {
			return errors.New(errors.ErrCodeInvalidGeometry, "feature %s: geometry is a %s", f.ID, f.Geometry.Type())
		}
		list[i] = f.clone()
	}
	r.features = list
	r.notify(Event{Kind: EventRestored, Features: r.List()})
	return nil
}
