// Package session persists drawing sessions.
//
// A [Session] wraps the serializable state of an [editor.Editor] with an ID
// and timestamps. Stores implement the [Store] interface, with backends:
//   - memory: In-memory storage for development/testing
//   - file: JSON files in a directory, for the CLI
//   - redis: Redis-backed storage for multi-instance deployments
//   - mongo: MongoDB-backed storage
//
// # Usage
//
//	store, err := session.Open(ctx, session.Config{Backend: session.BackendFile})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	sess := session.New(0)
//	ed, err := sess.Editor(logger)
//	// ... run commands against ed ...
//	sess.Capture(ed)
//	err = store.Set(ctx, sess)
//
// Get returns nil, nil when a session does not exist or has expired.
package session

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/sketchmap/pkg/editor"
	"github.com/matzehuels/sketchmap/pkg/errors"
	"github.com/matzehuels/sketchmap/pkg/geo"
)

// Session is a stored drawing session.
type Session struct {
	ID        string          `json:"id"`
	State     editor.Snapshot `json:"state"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	ExpiresAt time.Time       `json:"expires_at,omitzero"`
}

// New creates a session with a fresh ID and the initial editor state.
// A zero ttl never expires.
func New(ttl time.Duration) *Session {
	return NewWithEngine(ttl, nil)
}

// NewWithEngine is like [New] but measures features with engine.
func NewWithEngine(ttl time.Duration, engine geo.Engine) *Session {
	now := time.Now()
	s := &Session{
		ID:        NewID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if ttl > 0 {
		s.ExpiresAt = now.Add(ttl)
	}
	s.State = editor.New(editor.Options{SessionID: s.ID, Engine: engine, Logger: log.New(io.Discard)}).Snapshot()
	return s
}

// NewID returns a random session ID.
func NewID() string {
	return uuid.NewString()
}

// IsExpired reports whether the session has an expiry in the past.
func (s *Session) IsExpired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// Editor rebuilds a live editor from the stored state.
func (s *Session) Editor(logger *log.Logger) (*editor.Editor, error) {
	engine, err := geo.NewEngine(s.State.Engine)
	if err != nil {
		return nil, err
	}
	e := editor.New(editor.Options{SessionID: s.ID, Engine: engine, Logger: logger})
	if err := e.Restore(s.State); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "restore session %s", s.ID)
	}
	return e, nil
}

// Capture stores the current state of e in s.
func (s *Session) Capture(e *editor.Editor) {
	s.State = e.Snapshot()
	s.UpdatedAt = time.Now()
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, s *Session) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// List returns all live sessions, most recently updated first.
	List(ctx context.Context) ([]*Session, error)

	// Cleanup removes expired sessions (may be no-op when the backend expires keys).
	Cleanup(ctx context.Context) error

	// Close releases the backend.
	Close() error
}

// Load returns the session with the given ID or a SESSION_NOT_FOUND error.
func Load(ctx context.Context, store Store, id string) (*Session, error) {
	if err := errors.ValidateSessionID(id); err != nil {
		return nil, err
	}
	s, err := store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	if s == nil {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id)
	}
	return s, nil
}

func sortByUpdated(list []*Session) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].UpdatedAt.After(list[j].UpdatedAt)
	})
}
