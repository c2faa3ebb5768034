package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"orbit-tracker/internal/domain"
	"orbit-tracker/internal/tracker"
)

type ApplicationsHandler struct {
	Svc *tracker.Service
	Log logrus.FieldLogger
}

// applicationBody is the JSON accepted by Create, Update and Delete.
// ID is only read by Update and Delete.
type applicationBody struct {
	ID      string `json:"id"`
	Company string `json:"company"`
	Role    string `json:"role"`
	Status  string `json:"status"`
	Notes   string `json:"notes"`
}

func (b applicationBody) fields() domain.Fields {
	return domain.Fields{
		Company: b.Company,
		Role:    b.Role,
		Status:  domain.Status(b.Status),
		Notes:   b.Notes,
	}
}

type updateResponse struct {
	Success     bool               `json:"success"`
	Application domain.Application `json:"application"`
}

type deleteResponse struct {
	Success bool `json:"success"`
	Deleted bool `json:"deleted"`
}

func (h ApplicationsHandler) List(w http.ResponseWriter, r *http.Request) {
	apps, err := h.Svc.List(r.Context())
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	WriteJSON(w, http.StatusOK, apps)
}

func (h ApplicationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body applicationBody
	if err := decodeJSON(w, r, &body); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}

	app, err := h.Svc.Create(r.Context(), body.fields())
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	WriteJSON(w, http.StatusCreated, app)
}

func (h ApplicationsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var body applicationBody
	if err := decodeJSON(w, r, &body); err != nil {
		if errors.Is(err, errEmptyBody) && identifier(r, "") == "" {
			writeServiceError(w, r, h.Log, tracker.ErrMissingIdentifier)
			return
		}
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}

	app, err := h.Svc.Update(r.Context(), identifier(r, body.ID), body.fields())
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	WriteJSON(w, http.StatusOK, updateResponse{Success: true, Application: app})
}

func (h ApplicationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	// The body is optional; it only matters when no id is in the URL.
	var body struct {
		ID string `json:"id"`
	}
	if err := decodeJSON(w, r, &body); err != nil && !errors.Is(err, errEmptyBody) {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}

	deleted, err := h.Svc.Delete(r.Context(), identifier(r, body.ID))
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	WriteJSON(w, http.StatusOK, deleteResponse{Success: true, Deleted: deleted})
}

// identifier picks the record id: path segment, then ?id=, then body id.
func identifier(r *http.Request, bodyID string) string {
	if id := pathID(r); id != "" {
		return id
	}
	if id := strings.TrimSpace(r.URL.Query().Get("id")); id != "" {
		return id
	}
	return strings.TrimSpace(bodyID)
}

func pathID(r *http.Request) string {
	rest, ok := strings.CutPrefix(r.URL.Path, "/applications/")
	if !ok {
		return ""
	}
	return strings.TrimSpace(strings.Trim(rest, "/"))
}
