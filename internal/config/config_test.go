package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	_, v := NormalizeAndValidate(Default())
	assert.True(t, v.OK(), "errors: %v", v.Errors)
	assert.Empty(t, v.Warnings)
}

func TestEnsureUserConfigWritesDefaultsOnce(t *testing.T) {
	dir := t.TempDir()

	p, err := EnsureUserConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.yml"), p)

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	require.NoError(t, os.WriteFile(p, []byte("server:\n  addr: 127.0.0.1:9000\n"), 0o644))
	p2, err := EnsureUserConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, p, p2)

	cfg, err = Load(p)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.Store.Backend, "missing keys keep defaults")
}

func TestSaveAtomicKeepsBackupAndRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yml")

	require.NoError(t, SaveAtomic(p, Default()))

	cfg := Default()
	cfg.Server.Addr = "127.0.0.1:4000"
	require.NoError(t, SaveAtomic(p, cfg))

	bak, err := Load(p + ".bak")
	require.NoError(t, err)
	assert.Equal(t, Default().Server.Addr, bak.Server.Addr)

	bad := Default()
	bad.Store.Backend = "mongo"
	err = SaveAtomic(p, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.backend")

	cur, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:4000", cur.Server.Addr)
}

func TestSaveAtomicNeverWritesSecrets(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yml")
	cfg := Default()
	cfg.Store.Supabase.APIKey = "super-secret"
	cfg.Server.ShutdownToken = "tok"
	require.NoError(t, SaveAtomic(p, cfg))

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "super-secret")
	assert.NotContains(t, string(b), "tok\n")
}

func TestNormalizeAndValidate(t *testing.T) {
	cases := []struct {
		name    string
		mut     func(*Config)
		wantErr string
		warn    string
	}{
		{name: "bad addr", mut: func(c *Config) { c.Server.Addr = "localhost" }, wantErr: "server.addr"},
		{name: "wildcard addr", mut: func(c *Config) { c.Server.Addr = ":8080" }, warn: "every interface"},
		{name: "negative rps", mut: func(c *Config) { c.Server.RateLimit.RequestsPerSecond = -1 }, wantErr: "requests_per_second"},
		{name: "no burst", mut: func(c *Config) { c.Server.RateLimit.Burst = 0 }, wantErr: "burst"},
		{name: "rate limit off", mut: func(c *Config) { c.Server.RateLimit = RateLimit{} }},
		{name: "bad level", mut: func(c *Config) { c.Log.Level = "loud" }, wantErr: "log.level"},
		{name: "bad format", mut: func(c *Config) { c.Log.Format = "xml" }, wantErr: "log.format"},
		{name: "unknown backend", mut: func(c *Config) { c.Store.Backend = "mongo" }, wantErr: "store.backend"},
		{name: "sqlite path", mut: func(c *Config) { c.Store.SQLite.Path = " " }, wantErr: "store.sqlite.path"},
		{name: "postgres dsn", mut: func(c *Config) { c.Store.Backend = "postgres" }, wantErr: "store.postgres.dsn"},
		{name: "supabase url", mut: func(c *Config) { c.Store.Backend = "supabase" }, wantErr: "store.supabase.url"},
		{
			name: "supabase http",
			mut: func(c *Config) {
				c.Store.Backend = "supabase"
				c.Store.Supabase.URL = "http://localhost:54321"
				c.Store.Supabase.APIKey = "k"
			},
			warn: "plain http",
		},
		{name: "cors wildcard", mut: func(c *Config) { c.Server.CORSOrigins = []string{"*"} }, warn: "any web page"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mut(&cfg)
			_, v := NormalizeAndValidate(cfg)

			if tc.wantErr == "" {
				assert.True(t, v.OK(), "errors: %v", v.Errors)
			} else {
				require.False(t, v.OK())
				assert.Contains(t, v.Errors[0], tc.wantErr)
			}
			if tc.warn != "" {
				require.NotEmpty(t, v.Warnings)
				assert.Contains(t, v.Warnings[0], tc.warn)
			}
		})
	}
}

func TestNormalizeTrimsAndDedupes(t *testing.T) {
	cfg := Default()
	cfg.Store.Backend = " SQLite "
	cfg.Server.CORSOrigins = []string{" http://localhost:3000", "HTTP://LOCALHOST:3000", ""}

	out, v := NormalizeAndValidate(cfg)
	require.True(t, v.OK(), "errors: %v", v.Errors)
	assert.Equal(t, "sqlite", out.Store.Backend)
	assert.Equal(t, []string{"http://localhost:3000"}, out.Server.CORSOrigins)
}

func TestOverlayEnv(t *testing.T) {
	env := map[string]string{
		"ORBIT_ADDR":                    "127.0.0.1:5555",
		"ORBIT_STORE_BACKEND":           "supabase",
		"NEXT_PUBLIC_SUPABASE_URL":      "https://front.supabase.co",
		"SUPABASE_URL":                  "https://abc.supabase.co",
		"NEXT_PUBLIC_SUPABASE_ANON_KEY": "anon-from-next",
		"ORBIT_SHUTDOWN_TOKEN":          " tok ",
	}
	cfg := Default()
	OverlayEnv(&cfg, func(k string) string { return env[k] })

	assert.Equal(t, "127.0.0.1:5555", cfg.Server.Addr)
	assert.Equal(t, "supabase", cfg.Store.Backend)
	assert.Equal(t, "https://abc.supabase.co", cfg.Store.Supabase.URL)
	assert.Equal(t, "anon-from-next", cfg.Store.Supabase.APIKey)
	assert.Equal(t, "tok", cfg.Server.ShutdownToken)
	assert.Equal(t, "orbit.db", cfg.Store.SQLite.Path)
}

func TestLoadDotEnvSkipsMissingAndKeepsExisting(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("ORBIT_TEST_DOTENV_A=from-file\nORBIT_TEST_DOTENV_B=from-file\n"), 0o644))
	t.Setenv("ORBIT_TEST_DOTENV_B", "from-env")
	t.Setenv("ORBIT_TEST_DOTENV_A", "")
	require.NoError(t, os.Unsetenv("ORBIT_TEST_DOTENV_A"))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing"), dir))
	t.Cleanup(func() { _ = os.Unsetenv("ORBIT_TEST_DOTENV_A") })

	assert.Equal(t, "from-file", os.Getenv("ORBIT_TEST_DOTENV_A"))
	assert.Equal(t, "from-env", os.Getenv("ORBIT_TEST_DOTENV_B"))
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, filepath.Join("/data", "orbit.db"), ResolvePath("/data", "orbit.db"))
	assert.Equal(t, "/abs/x.db", ResolvePath("/data", "/abs/x.db"))
	assert.Equal(t, ":memory:", ResolvePath("/data", ":memory:"))
}
