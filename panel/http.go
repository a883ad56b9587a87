package panel

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hazyhaar/slotdiff/schedule"
)

// Screenshotter captures the page as PNG.
type Screenshotter interface {
	Screenshot(ctx context.Context) ([]byte, error)
}

// Server exposes the panel over HTTP.
type Server struct {
	Panel *Panel
	// Shots serves GET /screenshot. Nil disables it.
	Shots Screenshotter
}

var validate = validator.New(validator.WithRequiredStructEnabled())

type sideParam struct {
	Side string `validate:"required,oneof=a b"`
}

// RegisterHTTP mounts the panel endpoints on r.
func (s *Server) RegisterHTTP(r chi.Router) {
	r.Get("/snapshots", s.handleStatus)
	r.Post("/snapshots/{side}", s.handleSave)
	r.Delete("/snapshots", s.handleClearAll)
	r.Post("/compare", s.handleCompare)
	r.Post("/highlight/clear", s.handleClearHighlight)
	r.Get("/screenshot", s.handleScreenshot)
}

// GET /snapshots
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	entries, err := s.Panel.Status(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	s.json(w, http.StatusOK, entries)
}

// POST /snapshots/{side}
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	p := sideParam{Side: strings.ToLower(chi.URLParam(r, "side"))}
	if err := validate.Struct(p); err != nil {
		s.json(w, http.StatusBadRequest, errorBody{Error: "side must be a or b"})
		return
	}
	side, _ := schedule.ParseSide(p.Side)

	snap, err := s.Panel.SaveSnapshot(r.Context(), side)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.json(w, http.StatusCreated, map[string]any{
		"side":      side,
		"id":        snap.ID,
		"url":       snap.URL,
		"timestamp": snap.Timestamp,
		"slotCount": len(snap.Data),
	})
}

// DELETE /snapshots
func (s *Server) handleClearAll(w http.ResponseWriter, r *http.Request) {
	if err := s.Panel.ClearAll(r.Context()); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /compare
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	cmp, err := s.Panel.Compare(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	s.json(w, http.StatusOK, cmp)
}

// POST /highlight/clear
func (s *Server) handleClearHighlight(w http.ResponseWriter, r *http.Request) {
	if err := s.Panel.ClearHighlight(r.Context()); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /screenshot
func (s *Server) handleScreenshot(w http.ResponseWriter, r *http.Request) {
	if s.Shots == nil {
		s.json(w, http.StatusNotImplemented, errorBody{Error: "no live page attached"})
		return
	}
	png, err := s.Shots.Screenshot(r.Context())
	if err != nil {
		s.Panel.logger.Error("panel: screenshot failed", "error", err)
		s.json(w, http.StatusBadGateway, errorBody{Error: ErrOperationFailed.Error()})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

type errorBody struct {
	Error string `json:"error"`
}

// statusOf maps panel errors to HTTP statuses.
func statusOf(err error) int {
	var ee *ExtractError
	switch {
	case errors.Is(err, ErrMissingSnapshot):
		return http.StatusConflict
	case errors.As(err, &ee):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrOperationFailed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		s.Panel.logger.Error("panel: request failed", "error", err)
	}
	s.json(w, status, errorBody{Error: err.Error()})
}

func (s *Server) json(w http.ResponseWriter, status int, v any) {
	out, err := sonic.Marshal(v)
	if err != nil {
		s.Panel.logger.Error("panel: encode response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(out)
}
