package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/paulmach/orb"

	"github.com/matzehuels/sketchmap/pkg/buildinfo"
	"github.com/matzehuels/sketchmap/pkg/editor"
	"github.com/matzehuels/sketchmap/pkg/errors"
	"github.com/matzehuels/sketchmap/pkg/export"
	"github.com/matzehuels/sketchmap/pkg/feature"
	"github.com/matzehuels/sketchmap/pkg/geo"
	"github.com/matzehuels/sketchmap/pkg/mapview"
	"github.com/matzehuels/sketchmap/pkg/panel"
	"github.com/matzehuels/sketchmap/pkg/session"
)

// =============================================================================
// Response types
// =============================================================================

type sessionSummary struct {
	ID        string    `json:"id"`
	Features  int       `json:"features"`
	UpdatedAt time.Time `json:"updated_at"`
}

type sessionState struct {
	ID         string            `json:"id"`
	View       mapview.View      `json:"view"`
	Color      string            `json:"color"`
	Subtype    string            `json:"subtype,omitempty"`
	ActiveTool string            `json:"active_tool,omitempty"`
	Vertices   [][]orb.Point     `json:"vertices,omitempty"`
	Features   []feature.Feature `json:"features"`
}

type panelView struct {
	Items          []string `json:"items"`
	ListHTML       string   `json:"list_html"`
	AttributesHTML string   `json:"attributes_html"`
}

type stepResult struct {
	ActiveTool string           `json:"active_tool,omitempty"`
	Vertices   [][]orb.Point    `json:"vertices,omitempty"`
	Feature    *feature.Feature `json:"feature,omitempty"`
}

func stateOf(e *editor.Editor) sessionState {
	return sessionState{
		ID:         e.ID(),
		View:       e.View(),
		Color:      e.Color().Hex(),
		Subtype:    string(e.Subtype()),
		ActiveTool: e.Tool().Active(),
		Vertices:   e.Tool().Vertices(),
		Features:   e.Layer(),
	}
}

func panelOf(p *panel.Panel) panelView {
	return panelView{Items: p.Items(), ListHTML: p.ListHTML(), AttributesHTML: p.AttributesHTML()}
}

func stepOf(e *editor.Editor, f *feature.Feature) stepResult {
	return stepResult{ActiveTool: e.Tool().Active(), Vertices: e.Tool().Vertices(), Feature: f}
}

// decodeBody decodes an optional JSON body into v. An empty body leaves v
// untouched.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || stderrors.Is(err, io.EOF) {
		return nil
	}
	return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
}

// =============================================================================
// Sessions
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := buildinfo.Fields()
	body["status"] = "ok"
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Engine string `json:"engine"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	engine := s.cfg.Engine
	if req.Engine != "" {
		e, err := geo.NewEngine(req.Engine)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		engine = e
	}
	sess := session.NewWithEngine(s.cfg.SessionTTL, engine)
	if err := s.hub.Create(r.Context(), sess); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("session created", "session", sess.ID, "engine", engine.Name())
	writeJSON(w, http.StatusCreated, map[string]string{"id": sess.ID})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	list, err := s.cfg.Store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]sessionSummary, len(list))
	for i, sess := range list {
		out[i] = sessionSummary{ID: sess.ID, Features: len(sess.State.Features), UpdatedAt: sess.UpdatedAt}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	var st sessionState
	err := s.hub.Do(r.Context(), chi.URLParam(r, "id"), false, func(e *editor.Editor) error {
		st = stateOf(e)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.hub.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Commands and pointer input
// =============================================================================

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	cmd, err := editor.ParseCommand(chi.URLParam(r, "command"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var args editor.Args
	if err := decodeBody(r, &args); err != nil {
		s.writeError(w, r, err)
		return
	}

	var res editor.Result
	err = s.hub.Do(r.Context(), chi.URLParam(r, "id"), true, func(e *editor.Editor) error {
		var err error
		res, err = e.Run(r.Context(), cmd, args)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if len(res.Artifacts) == 0 {
		writeJSON(w, http.StatusOK, res)
		return
	}
	a := res.Artifacts[0]
	if cmd == editor.CmdExportTable && r.URL.Query().Get("view") == "html" && len(res.Artifacts) > 1 {
		writeArtifact(w, res.Artifacts[1], false)
		return
	}
	writeArtifact(w, a, true)
}

type vertexRequest struct {
	Lon *float64 `json:"lon"`
	Lat *float64 `json:"lat"`
}

func (v vertexRequest) point() (orb.Point, error) {
	if v.Lon == nil || v.Lat == nil {
		return orb.Point{}, errors.New(errors.ErrCodeInvalidGeometry, "lon and lat are required")
	}
	return orb.Point{*v.Lon, *v.Lat}, nil
}

func (s *Server) handleAddVertex(w http.ResponseWriter, r *http.Request) {
	var req vertexRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := req.point()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var out stepResult
	err = s.hub.Do(r.Context(), chi.URLParam(r, "id"), true, func(e *editor.Editor) error {
		f, err := e.AddVertex(r.Context(), p)
		if err != nil {
			return err
		}
		out = stepOf(e, f)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMoveVertex(w http.ResponseWriter, r *http.Request) {
	part, err1 := strconv.Atoi(chi.URLParam(r, "part"))
	index, err2 := strconv.Atoi(chi.URLParam(r, "index"))
	if err1 != nil || err2 != nil {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "part and index must be integers"))
		return
	}
	var req vertexRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := req.point()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var out stepResult
	err = s.hub.Do(r.Context(), chi.URLParam(r, "id"), true, func(e *editor.Editor) error {
		if err := e.MoveVertex(part, index, p); err != nil {
			return err
		}
		out = stepOf(e, nil)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	var out stepResult
	err := s.hub.Do(r.Context(), chi.URLParam(r, "id"), true, func(e *editor.Editor) error {
		f, err := e.Complete(r.Context())
		if err != nil {
			return err
		}
		out = stepOf(e, f)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	var out stepResult
	err := s.hub.Do(r.Context(), chi.URLParam(r, "id"), true, func(e *editor.Editor) error {
		e.Cancel()
		out = stepOf(e, nil)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// Features, panel and exports
// =============================================================================

func (s *Server) handleListFeatures(w http.ResponseWriter, r *http.Request) {
	var st sessionState
	err := s.hub.Do(r.Context(), chi.URLParam(r, "id"), false, func(e *editor.Editor) error {
		st = stateOf(e)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st.Features)
}

func (s *Server) handleSelectFeature(w http.ResponseWriter, r *http.Request) {
	fid := chi.URLParam(r, "fid")
	if err := errors.ValidateFeatureID(fid); err != nil {
		s.writeError(w, r, err)
		return
	}
	var out struct {
		Feature feature.Feature `json:"feature"`
		Panel   panelView       `json:"panel"`
	}
	err := s.hub.Do(r.Context(), chi.URLParam(r, "id"), true, func(e *editor.Editor) error {
		f, err := e.Select(fid)
		if err != nil {
			return err
		}
		out.Feature = f
		out.Panel = panelOf(e.Panel())
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePanel(w http.ResponseWriter, r *http.Request) {
	var out panelView
	err := s.hub.Do(r.Context(), chi.URLParam(r, "id"), false, func(e *editor.Editor) error {
		out = panelOf(e.Panel())
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var a export.Artifact
	err = s.hub.Do(r.Context(), chi.URLParam(r, "id"), false, func(e *editor.Editor) error {
		var err error
		a, err = e.Export(format)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeArtifact(w, a, format != export.FormatHTML)
}

func writeArtifact(w http.ResponseWriter, a export.Artifact, download bool) {
	w.Header().Set("Content-Type", a.ContentType)
	if download {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.Name))
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(a.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(a.Data)
}
