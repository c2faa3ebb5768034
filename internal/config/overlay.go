// config/overlay.go
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads .env files from dirs into the process environment.
// Missing files are skipped and variables already set are left alone.
func LoadDotEnv(dirs ...string) error {
	for _, d := range dirs {
		p := filepath.Join(d, ".env")
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return err
		}
		if err := godotenv.Load(p); err != nil {
			return err
		}
	}
	return nil
}

// OverlayEnv applies environment overrides on top of the file config.
// getenv is os.Getenv when nil.
func OverlayEnv(cfg *Config, getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	set(&cfg.Server.Addr, "ORBIT_ADDR")
	set(&cfg.Server.ShutdownToken, "ORBIT_SHUTDOWN_TOKEN")
	set(&cfg.Log.Level, "ORBIT_LOG_LEVEL")
	set(&cfg.Store.Backend, "ORBIT_STORE_BACKEND")
	set(&cfg.Store.SQLite.Path, "ORBIT_SQLITE_PATH")
	set(&cfg.Store.Postgres.DSN, "ORBIT_POSTGRES_DSN")

	// The hosted front end's .env uses the NEXT_PUBLIC_ names.
	set(&cfg.Store.Supabase.URL, "NEXT_PUBLIC_SUPABASE_URL")
	set(&cfg.Store.Supabase.URL, "SUPABASE_URL")
	set(&cfg.Store.Supabase.APIKey, "NEXT_PUBLIC_SUPABASE_ANON_KEY")
	set(&cfg.Store.Supabase.APIKey, "SUPABASE_ANON_KEY")
}

// ResolvePath makes a relative data file path absolute under dataDir.
func ResolvePath(dataDir, p string) string {
	if p == "" || p == ":memory:" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dataDir, p)
}
