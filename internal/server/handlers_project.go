package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/projboard/projboard/internal/logging"
	"github.com/projboard/projboard/internal/view"
	"github.com/projboard/projboard/pkg/types"
)

// CreateProjectRequest is the body of POST /project.
// People accepts a JSON number or a string, the way a form field would carry it.
type CreateProjectRequest struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	People      PeopleValue `json:"people"`
}

// PeopleValue is a headcount field kept in its raw text form until validation.
type PeopleValue string

// UnmarshalJSON accepts a string, a number or null.
func (p *PeopleValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*p = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = PeopleValue(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*p = PeopleValue(n.String())
	}
	return nil
}

// MoveProjectRequest is the body of POST /project/{projectID}/move.
type MoveProjectRequest struct {
	Status *types.ProjectStatus `json:"status"`
}

// MoveProjectResponse reports whether the project changed status.
type MoveProjectResponse struct {
	Moved bool `json:"moved"`
}

// listProjects handles GET /project
// Returns every project in insertion order, optionally filtered by ?status=.
func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	projects := s.store.Projects()

	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := types.ParseProjectStatus(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
			return
		}
		projects = types.FilterByStatus(projects, status)
	}

	writeJSON(w, http.StatusOK, projects)
}

// getProject handles GET /project/{projectID}
func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	p, ok := s.store.Get(projectID)
	if !ok {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "project not found")
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// createProject handles POST /project
// Accepts JSON or a form submission. Plain browser form posts are redirected back to the board.
func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	values, isForm, err := decodeFormValues(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid request body")
		return
	}

	p, err := s.board.Submit(values)
	if err != nil {
		if errors.Is(err, view.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, ErrCodeInvalidInput, view.InvalidInputMessage)
			return
		}
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}

	if isForm && wantsHTML(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// moveProject handles POST /project/{projectID}/move
// Unknown projects and unchanged statuses are not errors; the response reports moved=false.
func (s *Server) moveProject(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	var req MoveProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Status == nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "status is required")
		return
	}

	moved := s.board.Move(projectID, *req.Status)
	logging.Info().
		Str("projectID", projectID).
		Str("status", req.Status.String()).
		Bool("moved", moved).
		Msg("Project move requested")

	writeJSON(w, http.StatusOK, MoveProjectResponse{Moved: moved})
}

// decodeFormValues reads a submission from a JSON body or from form fields.
func decodeFormValues(r *http.Request) (view.FormValues, bool, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if mediaType == "multipart/form-data" {
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				return view.FormValues{}, true, err
			}
		} else if err := r.ParseForm(); err != nil {
			return view.FormValues{}, true, err
		}
		return view.FormValues{
			Title:       r.PostForm.Get("title"),
			Description: r.PostForm.Get("description"),
			People:      r.PostForm.Get("people"),
		}, true, nil

	default:
		var req CreateProjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return view.FormValues{}, false, err
		}
		return view.FormValues{
			Title:       req.Title,
			Description: req.Description,
			People:      string(req.People),
		}, false, nil
	}
}

// wantsHTML reports whether the client prefers an HTML response over JSON.
func wantsHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") && !strings.Contains(accept, "application/json")
}
