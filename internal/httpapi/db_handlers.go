package httpapi

import (
	"net"
	"net/http"

	"github.com/sirupsen/logrus"
)

type DBHandler struct {
	Store Checkpointer
	Log   logrus.FieldLogger
}

// Checkpoint folds the sqlite WAL into the main database file. Only local
// callers may trigger it.
func (h DBHandler) Checkpoint(w http.ResponseWriter, r *http.Request) {
	if !isLoopback(r) {
		WriteError(w, r, http.StatusForbidden, "forbidden", "checkpoint is only allowed from localhost")
		return
	}
	if h.Store == nil {
		WriteError(w, r, http.StatusNotFound, "not_supported", "the active store has no write-ahead log")
		return
	}

	if err := h.Store.Checkpoint(r.Context()); err != nil {
		h.Log.WithField("request_id", RequestIDFrom(r.Context())).WithError(err).Error("checkpoint failed")
		WriteError(w, r, http.StatusInternalServerError, "store_unavailable", "checkpoint failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func isLoopback(r *http.Request) bool {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
