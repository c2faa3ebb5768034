package httpapi

import (
	"net/http"
	"strings"
	"sync/atomic"

	"orbit-tracker/internal/config"
	"orbit-tracker/internal/secrets"
)

type SecretsHandler struct {
	CfgVal *atomic.Value // stores config.Config
}

type setSupabaseKeyReq struct {
	Key string `json:"key"`
}

// SetSupabaseKey stores the key for the configured project in the OS
// keychain. It takes effect on the next start.
func (h SecretsHandler) SetSupabaseKey(w http.ResponseWriter, r *http.Request) {
	if !isLoopback(r) {
		WriteError(w, r, http.StatusForbidden, "forbidden", "secrets can only be set from localhost")
		return
	}

	var req setSupabaseKeyReq
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Key) == "" {
		writeErrorFields(w, r, http.StatusBadRequest, "validation_error", "key is required", map[string]string{"key": "is required"})
		return
	}

	cfg := h.CfgVal.Load().(config.Config)
	if cfg.Store.Supabase.URL == "" {
		writeErrorFields(w, r, http.StatusBadRequest, "validation_error", "store.supabase.url is not configured",
			map[string]string{"store.supabase.url": "is required"})
		return
	}
	if err := secrets.SetSupabaseKey(cfg.Store.Supabase.URL, req.Key); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "internal_error", "failed to store key: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
