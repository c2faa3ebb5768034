package main

import (
	"context"
	"time"

	"orbit-tracker/internal/config"
	"orbit-tracker/internal/httpapi"
	"orbit-tracker/internal/secrets"
	"orbit-tracker/internal/store"
	"orbit-tracker/internal/supabase"
	"orbit-tracker/internal/tracker"
)

// openStore builds the repository named by cfg.Store.Backend. The
// checkpointer is nil for backends without a local write-ahead log.
func openStore(ctx context.Context, cfg config.Config, dataDir string) (tracker.Repository, httpapi.Checkpointer, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Store.Backend {
	case "postgres":
		db, err := store.OpenPostgres(cfg.Store.Postgres.DSN)
		if err != nil {
			return nil, nil, noop, err
		}
		if cfg.Store.Postgres.Migrate {
			if err := store.MigratePostgres(ctx, db); err != nil {
				_ = db.Close()
				return nil, nil, noop, err
			}
		}
		return store.NewSQLStore(db, store.Postgres), nil, db.Close, nil

	case "supabase":
		sc := cfg.Store.Supabase
		key, err := secrets.SupabaseKey(sc.URL, sc.APIKey)
		if err != nil {
			return nil, nil, noop, err
		}
		client, err := supabase.New(supabase.Config{
			URL:     sc.URL,
			APIKey:  key,
			Timeout: time.Duration(sc.TimeoutSeconds) * time.Second,
		})
		if err != nil {
			return nil, nil, noop, err
		}
		return store.NewSupabaseStore(client, sc.Table), nil, noop, nil

	default:
		path := config.ResolvePath(dataDir, cfg.Store.SQLite.Path)
		db, err := store.OpenSQLite(path)
		if err != nil {
			return nil, nil, noop, err
		}
		if err := store.MigrateSQLite(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, noop, err
		}
		s := store.NewSQLStore(db, store.SQLite)
		return s, s, db.Close, nil
	}
}
