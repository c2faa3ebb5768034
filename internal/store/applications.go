package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"orbit-tracker/internal/domain"
)

type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// rebind turns ? placeholders into $n for postgres.
func (d Dialect) rebind(q string) string {
	if d != Postgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d Dialect) timeArg(t time.Time) any {
	if d == SQLite {
		return t.UTC().Format(sqliteTimeLayout)
	}
	return t.UTC()
}

// tiebreak orders rows created within the same instant, newest insert first.
// Postgres ids are random, so it uses the seq ordinal instead.
func (d Dialect) tiebreak() string {
	if d == SQLite {
		return "rowid DESC"
	}
	return "seq DESC"
}

// SQLStore keeps applications in a database/sql table.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
	newID   func() string
}

func NewSQLStore(db *sql.DB, d Dialect) *SQLStore {
	return &SQLStore{
		db:      db,
		dialect: d,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

func (s *SQLStore) Name() string { return string(s.dialect) }

func (s *SQLStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLStore) List(ctx context.Context) ([]domain.Application, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
SELECT id, company, role, status, notes, created_at
FROM applications
ORDER BY created_at DESC, %s;`, s.dialect.tiebreak()))
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	out := []domain.Application{}
	for rows.Next() {
		var (
			a      domain.Application
			status sql.NullString
			notes  sql.NullString
			ts     timeColumn
		)
		if err := rows.Scan(&a.ID, &a.Company, &a.Role, &status, &notes, &ts); err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		a.Status = domain.Status(status.String)
		if a.Status == "" {
			a.Status = domain.StatusApplied
		}
		a.Notes = notes.String
		a.CreatedAt = ts.t
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLStore) Create(ctx context.Context, f domain.Fields) (domain.Application, error) {
	a := domain.Application{
		ID:        s.newID(),
		Company:   f.Company,
		Role:      f.Role,
		Status:    f.Status,
		Notes:     f.Notes,
		CreatedAt: s.now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, s.dialect.rebind(`
INSERT INTO applications(id, company, role, status, notes, created_at)
VALUES(?,?,?,?,?,?);`),
		a.ID, a.Company, a.Role, string(a.Status), a.Notes, s.dialect.timeArg(a.CreatedAt))
	if err != nil {
		return domain.Application{}, fmt.Errorf("insert application: %w", err)
	}
	if s.dialect == Postgres {
		// timestamptz keeps microseconds
		a.CreatedAt = a.CreatedAt.Truncate(time.Microsecond)
	}
	return a, nil
}

// Update replaces the mutable columns in one statement and reads created_at
// back through RETURNING.
func (s *SQLStore) Update(ctx context.Context, id string, f domain.Fields) (domain.Application, error) {
	var ts timeColumn
	err := s.db.QueryRowContext(ctx, s.dialect.rebind(`
UPDATE applications
SET company = ?, role = ?, status = ?, notes = ?
WHERE id = ?
RETURNING created_at;`),
		f.Company, f.Role, string(f.Status), f.Notes, id,
	).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Application{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Application{}, fmt.Errorf("update application: %w", err)
	}
	return domain.Application{
		ID:        id,
		Company:   f.Company,
		Role:      f.Role,
		Status:    f.Status,
		Notes:     f.Notes,
		CreatedAt: ts.t,
	}, nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.dialect.rebind(`DELETE FROM applications WHERE id = ?;`), id)
	if err != nil {
		return false, fmt.Errorf("delete application: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Checkpoint flushes the sqlite WAL into the main file. Other dialects
// have nothing to do.
func (s *SQLStore) Checkpoint(ctx context.Context) error {
	if s.dialect != SQLite {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `PRAGMA wal_checkpoint(FULL);`)
	return err
}
