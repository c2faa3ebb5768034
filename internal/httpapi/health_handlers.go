package httpapi

import (
	"context"
	"net/http"
	"time"

	"orbit-tracker/internal/tracker"
)

type HealthHandler struct {
	Svc *tracker.Service
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Svc.Ping(ctx); err != nil {
		WriteError(w, r, http.StatusServiceUnavailable, "store_unavailable", "the application store is unavailable")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"backend": h.Svc.Backend(),
	})
}
