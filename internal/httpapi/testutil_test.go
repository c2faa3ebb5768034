package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"orbit-tracker/internal/config"
	"orbit-tracker/internal/domain"
	"orbit-tracker/internal/logging"
	"orbit-tracker/internal/store"
	"orbit-tracker/internal/tracker"
)

type testServer struct {
	srv *httptest.Server
	cfg *atomic.Value
}

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *testServer {
	t.Helper()

	db, err := store.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.MigrateSQLite(context.Background(), db))
	st := store.NewSQLStore(db, store.SQLite)

	return newTestServerWith(t, st, st, mutate...)
}

func newTestServerWith(t *testing.T, repo tracker.Repository, cp Checkpointer, mutate ...func(*config.Config)) *testServer {
	t.Helper()

	cfg := config.Default()
	cfg.Server.RateLimit = config.RateLimit{}
	for _, m := range mutate {
		m(&cfg)
	}
	var cfgVal atomic.Value
	cfgVal.Store(cfg)

	cfgPath := t.TempDir() + "/config.yml"
	require.NoError(t, config.SaveAtomic(cfgPath, cfg))

	d := Deps{
		Service:     tracker.New(repo),
		Log:         logging.Discard(),
		CfgVal:      &cfgVal,
		UserCfgPath: cfgPath,
		LoadCfg:     func() (config.Config, error) { return config.Load(cfgPath) },
	}
	if cp != nil {
		d.Checkpointer = cp
	}

	srv := httptest.NewServer(NewHandler(NewMux(d), d, cfg))
	t.Cleanup(srv.Close)

	return &testServer{srv: srv, cfg: &cfgVal}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, ts.srv.URL+path, rdr)
	require.NoError(t, err)
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := ts.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func decodeError(t *testing.T, b []byte) APIError {
	t.Helper()
	var e APIError
	require.NoError(t, json.Unmarshal(b, &e), string(b))
	return e
}

// downRepo fails every call, like an unreachable backend.
type downRepo struct{}

var errDown = errors.New("dial tcp 10.0.0.1:5432: connection refused")

func (downRepo) List(context.Context) ([]domain.Application, error) { return nil, errDown }
func (downRepo) Create(context.Context, domain.Fields) (domain.Application, error) {
	return domain.Application{}, errDown
}
func (downRepo) Update(context.Context, string, domain.Fields) (domain.Application, error) {
	return domain.Application{}, errDown
}
func (downRepo) Delete(context.Context, string) (bool, error) { return false, errDown }
func (downRepo) Ping(context.Context) error                   { return errDown }
func (downRepo) Name() string                                 { return "down" }

// panicRepo panics on List so Recover can be observed end to end.
type panicRepo struct{ downRepo }

func (panicRepo) List(context.Context) ([]domain.Application, error) { panic("boom") }
