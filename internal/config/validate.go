package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy of cfg and the problems
// found in it. Secrets are only checked for presence.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Server.Addr = strings.TrimSpace(out.Server.Addr)
	out.Server.CORSOrigins = trimList(out.Server.CORSOrigins)
	out.Store.Backend = strings.ToLower(strings.TrimSpace(out.Store.Backend))
	out.Store.SQLite.Path = strings.TrimSpace(out.Store.SQLite.Path)
	out.Store.Postgres.DSN = strings.TrimSpace(out.Store.Postgres.DSN)
	out.Store.Supabase.URL = strings.TrimSpace(out.Store.Supabase.URL)
	out.Store.Supabase.Table = strings.TrimSpace(out.Store.Supabase.Table)
	out.Log.Level = strings.ToLower(strings.TrimSpace(out.Log.Level))
	out.Log.Format = strings.ToLower(strings.TrimSpace(out.Log.Format))

	// ---- server ----
	if host, port, err := net.SplitHostPort(out.Server.Addr); err != nil || port == "" {
		res.addErr("server.addr must be host:port (got %q)", out.Server.Addr)
	} else if host == "" || host == "0.0.0.0" || host == "::" {
		res.addWarn("server.addr %q listens on every interface; the API has no authentication.", out.Server.Addr)
	}
	if out.Server.ReadHeaderTimeoutSeconds <= 0 {
		res.addErr("server.read_header_timeout_seconds must be > 0")
	}
	rl := out.Server.RateLimit
	if rl.RequestsPerSecond < 0 {
		res.addErr("server.rate_limit.requests_per_second must be >= 0")
	}
	if rl.RequestsPerSecond > 0 && rl.Burst < 1 {
		res.addErr("server.rate_limit.burst must be >= 1 when rate limiting is on")
	}
	for _, o := range out.Server.CORSOrigins {
		if o == "*" {
			res.addWarn("server.cors_origins contains \"*\"; any web page can call the API.")
		}
	}

	// ---- log ----
	if out.Log.Level != "" {
		if _, err := logrus.ParseLevel(out.Log.Level); err != nil {
			res.addErr("log.level %q is not a log level", out.Log.Level)
		}
	}
	switch out.Log.Format {
	case "", "text", "json":
	default:
		res.addErr("log.format must be text or json")
	}

	// ---- store ----
	switch out.Store.Backend {
	case "sqlite":
		if out.Store.SQLite.Path == "" {
			res.addErr("store.sqlite.path is required when store.backend=sqlite")
		}
		if out.Store.SQLite.CheckpointSeconds < 0 {
			res.addErr("store.sqlite.checkpoint_seconds must be >= 0")
		} else if out.Store.SQLite.CheckpointSeconds > 0 && out.Store.SQLite.CheckpointSeconds < 10 {
			res.addWarn("store.sqlite.checkpoint_seconds is very low (%d).", out.Store.SQLite.CheckpointSeconds)
		}
	case "postgres":
		if out.Store.Postgres.DSN == "" {
			res.addErr("store.postgres.dsn is required when store.backend=postgres")
		}
	case "supabase":
		if out.Store.Supabase.URL == "" {
			res.addErr("store.supabase.url is required when store.backend=supabase")
		} else if u, err := url.Parse(out.Store.Supabase.URL); err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
			res.addErr("store.supabase.url must be an http(s) URL")
		} else if u.Scheme == "http" {
			res.addWarn("store.supabase.url uses plain http; the API key is sent in the clear.")
		}
		if out.Store.Supabase.Table == "" {
			out.Store.Supabase.Table = "applications"
		}
		if out.Store.Supabase.TimeoutSeconds <= 0 {
			res.addErr("store.supabase.timeout_seconds must be > 0")
		}
		if out.Store.Supabase.APIKey == "" {
			res.addWarn("no Supabase API key in the environment; the OS keychain will be tried.")
		}
	default:
		res.addErr("store.backend must be sqlite, postgres or supabase (got %q)", out.Store.Backend)
	}

	return out, res
}
