package httpapi

import (
	"net/http"

	"orbit-tracker/internal/config"
	"orbit-tracker/internal/logging"
	"orbit-tracker/internal/metrics"
)

// NewMux returns the raw mux so main() can still attach /shutdown (needs srv+token).
func NewMux(d Deps) *http.ServeMux {
	log := d.Log
	if log == nil {
		log = logging.Discard()
	}
	mux := http.NewServeMux()

	// Applications
	ah := ApplicationsHandler{Svc: d.Service, Log: log}
	mux.HandleFunc("/applications", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:    ah.List,
		http.MethodPost:   ah.Create,
		http.MethodPut:    ah.Update,
		http.MethodDelete: ah.Delete,
	}))
	mux.HandleFunc("/applications/", methodMux(map[string]http.HandlerFunc{
		http.MethodPut:    ah.Update, // expects /applications/{id}
		http.MethodDelete: ah.Delete,
	}))

	// Health + metrics
	hh := HealthHandler{Svc: d.Service}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))
	mux.Handle("/metrics", metrics.Handler())

	// Config
	if d.CfgVal != nil {
		ch := ConfigHandler{
			CfgVal:      d.CfgVal,
			UserCfgPath: d.UserCfgPath,
			LoadCfg:     d.LoadCfg,
		}
		mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
			http.MethodGet: ch.Get,
			http.MethodPut: ch.Put,
		}))
		mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
			http.MethodGet: ch.Path,
		}))
		mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
			http.MethodGet: ch.Validate,
		}))

		// Secrets (use CfgVal, NOT a snapshot cfg)
		sh := SecretsHandler{CfgVal: d.CfgVal}
		mux.HandleFunc("/secrets/supabase", methodMux(map[string]http.HandlerFunc{
			http.MethodPost: sh.SetSupabaseKey,
		}))
	}

	// DB maintenance
	dh := DBHandler{Store: d.Checkpointer, Log: log}
	mux.HandleFunc("/db/checkpoint", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: dh.Checkpoint,
	}))

	return mux
}

// NewHandler wraps mux in the standard middleware chain.
func NewHandler(mux http.Handler, d Deps, cfg config.Config) http.Handler {
	log := d.Log
	if log == nil {
		log = logging.Discard()
	}
	return Chain(mux,
		RequestID,
		Recover(log),
		AccessLog(log),
		Metrics,
		RateLimit(cfg.Server.RateLimit.RequestsPerSecond, cfg.Server.RateLimit.Burst),
		Cors(cfg.Server.CORSOrigins),
	)
}
