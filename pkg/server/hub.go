package server

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sketchmap/pkg/editor"
	"github.com/matzehuels/sketchmap/pkg/errors"
	"github.com/matzehuels/sketchmap/pkg/session"
)

// Hub hands out live editors and serializes access per session. Editors
// are loaded from the store on first use and written back after every
// mutating call.
type Hub struct {
	store  session.Store
	logger *log.Logger

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	sess *session.Session
	ed   *editor.Editor
	used time.Time

	// retired entries are no longer in the map; holders must fetch a new one
	retired bool
}

// NewHub creates a hub over store.
func NewHub(store session.Store, logger *log.Logger) *Hub {
	return &Hub{store: store, logger: logger, entries: make(map[string]*entry)}
}

// acquire returns the live entry for id, locked.
func (h *Hub) acquire(id string) *entry {
	for {
		h.mu.Lock()
		e, ok := h.entries[id]
		if !ok {
			e = &entry{}
			h.entries[id] = e
		}
		h.mu.Unlock()

		e.mu.Lock()
		if !e.retired {
			return e
		}
		e.mu.Unlock()
	}
}

// retire removes e from the hub. The caller holds e.mu.
func (h *Hub) retire(id string, e *entry) {
	e.retired = true
	e.sess, e.ed = nil, nil
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.entries[id] == e {
		delete(h.entries, id)
	}
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id)
}

// Do runs fn with exclusive access to the editor of session id. When
// persist is set and fn succeeds, the session is saved. When fn or the save
// fails the cached editor is discarded, so the next call starts from the
// stored state.
func (h *Hub) Do(ctx context.Context, id string, persist bool, fn func(*editor.Editor) error) error {
	e := h.acquire(id)
	defer e.mu.Unlock()

	if e.sess != nil && e.sess.IsExpired() {
		h.retire(id, e)
		return notFound(id)
	}
	if e.ed == nil {
		sess, err := session.Load(ctx, h.store, id)
		if err != nil {
			h.retire(id, e)
			return err
		}
		ed, err := sess.Editor(h.logger)
		if err != nil {
			h.retire(id, e)
			return err
		}
		e.sess, e.ed = sess, ed
	}
	e.used = time.Now()

	if err := fn(e.ed); err != nil {
		h.retire(id, e)
		return err
	}
	if !persist {
		return nil
	}
	e.sess.Capture(e.ed)
	if err := h.store.Set(ctx, e.sess); err != nil {
		h.retire(id, e)
		return err
	}
	return nil
}

// Create stores a new session and returns it.
func (h *Hub) Create(ctx context.Context, sess *session.Session) error {
	return h.store.Set(ctx, sess)
}

// Delete removes session id from the store and the hub. Calls waiting on
// the session observe SESSION_NOT_FOUND.
func (h *Hub) Delete(ctx context.Context, id string) error {
	e := h.acquire(id)
	defer e.mu.Unlock()
	if _, err := session.Load(ctx, h.store, id); err != nil {
		h.retire(id, e)
		return err
	}
	if err := h.store.Delete(ctx, id); err != nil {
		return err
	}
	h.retire(id, e)
	return nil
}

// Len returns the number of cached editors.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Sweep discards cached editors whose session has expired or that were not
// used for longer than idle. A zero idle keeps unexpired editors. It returns
// the number of editors discarded.
func (h *Hub) Sweep(idle time.Duration) int {
	now := time.Now()
	n := 0
	for id, e := range h.snapshot() {
		e.mu.Lock()
		stale := e.sess != nil && e.sess.IsExpired()
		if idle > 0 && now.Sub(e.used) > idle {
			stale = true
		}
		if stale && !e.retired {
			h.retire(id, e)
			n++
		}
		e.mu.Unlock()
	}
	return n
}

// Evict forgets every cached editor. Sessions are reloaded on next use.
func (h *Hub) Evict() {
	for id, e := range h.snapshot() {
		e.mu.Lock()
		if !e.retired {
			h.retire(id, e)
		}
		e.mu.Unlock()
	}
}

func (h *Hub) snapshot() map[string]*entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return maps.Clone(h.entries)
}
