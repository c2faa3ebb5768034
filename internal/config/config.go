// internal/config/config.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"orbit-tracker/internal/logging"
)

type RateLimit struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
	Burst             int     `yaml:"burst" json:"burst"`
}

type Config struct {
	Server struct {
		Addr                     string    `yaml:"addr" json:"addr"`
		CORSOrigins              []string  `yaml:"cors_origins,omitempty" json:"cors_origins"`
		ReadHeaderTimeoutSeconds int       `yaml:"read_header_timeout_seconds" json:"read_header_timeout_seconds"`
		RateLimit                RateLimit `yaml:"rate_limit" json:"rate_limit"`
		ShutdownToken            string    `yaml:"-" json:"-"`
	} `yaml:"server" json:"server"`

	Log logging.Config `yaml:"log" json:"log"`

	Store struct {
		Backend string `yaml:"backend" json:"backend"` // sqlite | postgres | supabase

		SQLite struct {
			Path              string `yaml:"path" json:"path"`
			CheckpointSeconds int    `yaml:"checkpoint_seconds" json:"checkpoint_seconds"`
		} `yaml:"sqlite" json:"sqlite"`

		Postgres struct {
			DSN     string `yaml:"dsn" json:"dsn"`
			Migrate bool   `yaml:"migrate" json:"migrate"`
		} `yaml:"postgres" json:"postgres"`

		Supabase struct {
			URL            string `yaml:"url" json:"url"`
			Table          string `yaml:"table" json:"table"`
			TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
			// APIKey is never written to disk; it comes from the
			// environment or the OS keychain.
			APIKey string `yaml:"-" json:"-"`
		} `yaml:"supabase" json:"supabase"`
	} `yaml:"store" json:"store"`
}

// Default is the configuration written on first start.
func Default() Config {
	var cfg Config
	cfg.Server.Addr = "127.0.0.1:38471"
	cfg.Server.ReadHeaderTimeoutSeconds = 5
	cfg.Server.RateLimit = RateLimit{RequestsPerSecond: 20, Burst: 40}
	cfg.Log = logging.Config{Level: "info", Format: "text"}
	cfg.Store.Backend = "sqlite"
	cfg.Store.SQLite.Path = "orbit.db"
	cfg.Store.SQLite.CheckpointSeconds = 300
	cfg.Store.Supabase.Table = "applications"
	cfg.Store.Supabase.TimeoutSeconds = 15
	return cfg
}

// Load reads path on top of Default, so missing keys keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
