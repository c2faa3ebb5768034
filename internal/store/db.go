package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// OpenSQLite opens the local database file. ":memory:" gives a private
// in-memory database, which only survives while its single connection does.
func OpenSQLite(path string) (*sql.DB, error) {
	memory := path == ":memory:"

	// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	if memory {
		dsn = "file::memory:?_pragma=busy_timeout(5000)"
	}

	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// sqlite wants a single writer
	pool.SetMaxOpenConns(1)
	if memory {
		pool.SetConnMaxLifetime(0)
		pool.SetConnMaxIdleTime(0)
	} else {
		pool.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := ping(pool); err != nil {
		_ = pool.Close()
		return nil, err
	}
	return pool, nil
}

// OpenPostgres opens a lib/pq pool against dsn.
func OpenPostgres(dsn string) (*sql.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres dsn is empty")
	}
	pool, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	pool.SetMaxOpenConns(10)
	pool.SetMaxIdleConns(2)
	pool.SetConnMaxLifetime(5 * time.Minute)

	if err := ping(pool); err != nil {
		_ = pool.Close()
		return nil, err
	}
	return pool, nil
}

func ping(pool *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return pool.PingContext(ctx)
}
