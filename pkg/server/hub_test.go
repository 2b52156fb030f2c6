package server

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sketchmap/pkg/editor"
	"github.com/matzehuels/sketchmap/pkg/errors"
	"github.com/matzehuels/sketchmap/pkg/session"
)

func newTestHub(t *testing.T, ttl time.Duration) (*Hub, session.Store, string) {
	t.Helper()
	store := session.NewMemoryStore()
	h := NewHub(store, log.New(io.Discard))
	sess := session.New(ttl)
	if err := h.Create(context.Background(), sess); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	return h, store, sess.ID
}

func zoomIn(e *editor.Editor) error {
	_, err := e.Run(context.Background(), editor.CmdZoomIn, editor.Args{})
	return err
}

func TestHubRejectsExpiredSession(t *testing.T) {
	ctx := context.Background()
	h, store, id := newTestHub(t, 50*time.Millisecond)

	if err := h.Do(ctx, id, true, zoomIn); err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	if err := h.Do(ctx, id, true, zoomIn); !errors.Is(err, errors.ErrCodeSessionNotFound) {
		t.Fatalf("Do(expired) error = %v, want SESSION_NOT_FOUND", err)
	}
	if h.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after expiry", h.Len())
	}
	if sess, _ := store.Get(ctx, id); sess != nil {
		t.Errorf("expired session was stored again")
	}
}

func TestHubDeleteWhileQueued(t *testing.T) {
	ctx := context.Background()
	for range 20 {
		h, store, id := newTestHub(t, 0)

		hold := make(chan struct{})
		holding := make(chan struct{})
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = h.Do(ctx, id, false, func(*editor.Editor) error {
				close(holding)
				<-hold
				return nil
			})
		}()
		<-holding

		var delErr, doErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			delErr = h.Delete(ctx, id)
		}()
		go func() {
			defer wg.Done()
			doErr = h.Do(ctx, id, true, zoomIn)
		}()
		time.Sleep(5 * time.Millisecond)
		close(hold)
		wg.Wait()

		if delErr != nil {
			t.Fatalf("Delete() error: %v", delErr)
		}
		if doErr != nil && !errors.Is(doErr, errors.ErrCodeSessionNotFound) {
			t.Fatalf("Do() error = %v, want nil or SESSION_NOT_FOUND", doErr)
		}
		if sess, _ := store.Get(ctx, id); sess != nil {
			t.Fatal("deleted session is back in the store")
		}
		if err := h.Do(ctx, id, false, func(*editor.Editor) error { return nil }); !errors.Is(err, errors.ErrCodeSessionNotFound) {
			t.Fatalf("Do(after delete) error = %v, want SESSION_NOT_FOUND", err)
		}
	}
}

func TestHubFailedCallReloads(t *testing.T) {
	ctx := context.Background()
	h, _, id := newTestHub(t, 0)

	err := h.Do(ctx, id, true, func(e *editor.Editor) error {
		if err := zoomIn(e); err != nil {
			return err
		}
		return errors.New(errors.ErrCodeInvalidInput, "rejected")
	})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("Do() error = %v, want INVALID_INPUT", err)
	}

	var zoom int
	if err := h.Do(ctx, id, false, func(e *editor.Editor) error {
		zoom = e.View().Zoom
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if zoom != 10 {
		t.Errorf("zoom = %d, want 10 (change from failed call discarded)", zoom)
	}
}

func TestHubSweep(t *testing.T) {
	ctx := context.Background()
	h, _, id := newTestHub(t, 0)
	short := session.New(30 * time.Millisecond)
	if err := h.Create(ctx, short); err != nil {
		t.Fatal(err)
	}
	for _, sid := range []string{id, short.ID} {
		if err := h.Do(ctx, sid, true, zoomIn); err != nil {
			t.Fatalf("Do(%s) error: %v", sid, err)
		}
	}

	if n := h.Sweep(0); n != 0 {
		t.Errorf("Sweep(0) = %d, want 0", n)
	}
	time.Sleep(60 * time.Millisecond)
	if n := h.Sweep(0); n != 1 {
		t.Errorf("Sweep(0) after expiry = %d, want 1", n)
	}
	if n := h.Sweep(time.Millisecond); n != 1 {
		t.Errorf("Sweep(idle) = %d, want 1", n)
	}
	if h.Len() != 0 {
		t.Errorf("Len() = %d, want 0", h.Len())
	}

	var zoom int
	if err := h.Do(ctx, id, false, func(e *editor.Editor) error {
		zoom = e.View().Zoom
		return nil
	}); err != nil {
		t.Fatalf("Do() after sweep error: %v", err)
	}
	if zoom != 11 {
		t.Errorf("zoom after reload = %d, want 11", zoom)
	}
}
