package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"orbit-tracker/internal/tracker"
)

type APIError struct {
	Error struct {
		Code      string            `json:"code"`
		Message   string            `json:"message"`
		RequestID string            `json:"request_id,omitempty"`
		Fields    map[string]string `json:"fields,omitempty"`
	} `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeErrorFields(w, r, status, code, message, nil)
}

func writeErrorFields(w http.ResponseWriter, r *http.Request, status int, code, message string, fields map[string]string) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = RequestIDFrom(r.Context())
	e.Error.Fields = fields
	WriteJSON(w, status, e)
}

// writeServiceError maps gateway errors onto the fixed status/code pairs.
// Store failures are logged with their cause; clients get a generic message.
func writeServiceError(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, err error) {
	var verr *tracker.ValidationError
	switch {
	case errors.As(err, &verr):
		writeErrorFields(w, r, http.StatusBadRequest, "validation_error", verr.Error(), verr.Fields)
	case errors.Is(err, tracker.ErrMissingIdentifier):
		WriteError(w, r, http.StatusBadRequest, "missing_identifier", "an application id is required")
	case errors.Is(err, tracker.ErrNotFound):
		WriteError(w, r, http.StatusNotFound, "not_found", "application not found")
	case errors.Is(err, tracker.ErrStoreUnavailable):
		log.WithField("request_id", RequestIDFrom(r.Context())).WithError(err).Error("store unavailable")
		WriteError(w, r, http.StatusInternalServerError, "store_unavailable", "the application store is unavailable")
	default:
		log.WithField("request_id", RequestIDFrom(r.Context())).WithError(err).Error("unhandled error")
		WriteError(w, r, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
