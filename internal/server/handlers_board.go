package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/projboard/projboard/internal/view"
	"github.com/projboard/projboard/pkg/types"
)

// DropResponse is the body of a successful drop.
type DropResponse struct {
	Accepted bool `json:"accepted"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Projects int    `json:"projects"`
	Version  uint64 `json:"version"`
}

// boardPage handles GET /
func (s *Server) boardPage(w http.ResponseWriter, r *http.Request) {
	html, err := s.board.HTML()
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}
	writeHTML(w, http.StatusOK, html)
}

// health handles GET /health
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Projects: s.store.Len(),
		Version:  s.board.Version(),
	})
}

// listFragment handles GET /board/list/{status}
// Returns the rendered list element.
func (s *Server) listFragment(w http.ResponseWriter, r *http.Request) {
	status, ok := statusParam(w, r)
	if !ok {
		return
	}

	html, err := s.board.ListHTML(status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}
	writeHTML(w, http.StatusOK, html)
}

// dropOnList handles POST /board/list/{status}/drop
// The body is the DataTransfer the browser saw when the card was dropped.
func (s *Server) dropOnList(w http.ResponseWriter, r *http.Request) {
	status, ok := statusParam(w, r)
	if !ok {
		return
	}

	var dt view.DataTransfer
	if err := json.NewDecoder(r.Body).Decode(&dt); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid request body: "+err.Error())
		return
	}

	accepted, err := s.board.Drop(status, &dt)
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}
	if !accepted {
		writeErrorWithDetails(w, http.StatusUnsupportedMediaType, ErrCodeUnsupportedPayload,
			"drop payload must declare "+view.PayloadType+" first",
			map[string]any{"types": dt.Types})
		return
	}

	writeJSON(w, http.StatusOK, DropResponse{Accepted: true})
}

// statusParam parses the {status} URL parameter, writing a 404 when it names no list.
func statusParam(w http.ResponseWriter, r *http.Request) (types.ProjectStatus, bool) {
	status, err := types.ParseProjectStatus(chi.URLParam(r, "status"))
	if err != nil {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
		return 0, false
	}
	return status, true
}
