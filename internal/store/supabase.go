package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"orbit-tracker/internal/domain"
	"orbit-tracker/internal/supabase"
)

// SupabaseStore keeps applications in a hosted PostgREST table. The table
// assigns id and created_at through its column defaults.
type SupabaseStore struct {
	client *supabase.Client
	table  string
}

func NewSupabaseStore(c *supabase.Client, table string) *SupabaseStore {
	if strings.TrimSpace(table) == "" {
		table = "applications"
	}
	return &SupabaseStore{client: c, table: table}
}

func (s *SupabaseStore) Name() string { return "supabase" }

func (s *SupabaseStore) Ping(ctx context.Context) error { return s.client.Ping(ctx) }

type supabaseWrite struct {
	Company string `json:"company"`
	Role    string `json:"role"`
	Status  string `json:"status"`
	Notes   string `json:"notes"`
}

// supabaseRow tolerates numeric ids and nullable text columns.
type supabaseRow struct {
	ID        json.RawMessage `json:"id"`
	Company   *string         `json:"company"`
	Role      *string         `json:"role"`
	Status    *string         `json:"status"`
	Notes     *string         `json:"notes"`
	CreatedAt *string         `json:"created_at"`
}

func (r supabaseRow) application() (domain.Application, error) {
	a := domain.Application{
		ID:      rawID(r.ID),
		Company: deref(r.Company),
		Role:    deref(r.Role),
		Status:  domain.Status(deref(r.Status)),
		Notes:   deref(r.Notes),
	}
	if a.Status == "" {
		a.Status = domain.StatusApplied
	}
	if r.CreatedAt != nil && *r.CreatedAt != "" {
		t, err := parseTime(*r.CreatedAt)
		if err != nil {
			return domain.Application{}, err
		}
		a.CreatedAt = t
	}
	return a, nil
}

func rawID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if string(raw) == "null" {
		return ""
	}
	return string(raw)
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func decodeRows(resp *supabase.Response) ([]domain.Application, error) {
	if err := resp.Err(); err != nil {
		return nil, err
	}
	var rows []supabaseRow
	if err := resp.JSON(&rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	out := make([]domain.Application, 0, len(rows))
	for _, r := range rows {
		a, err := r.application()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *SupabaseStore) List(ctx context.Context) ([]domain.Application, error) {
	resp, err := s.client.From(s.table).
		Select("*").
		Order("created_at", false).
		Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return decodeRows(resp)
}

func (s *SupabaseStore) Create(ctx context.Context, f domain.Fields) (domain.Application, error) {
	resp, err := s.client.From(s.table).ExecuteInsert(ctx, []supabaseWrite{toWrite(f)})
	if err != nil {
		return domain.Application{}, fmt.Errorf("insert application: %w", err)
	}
	rows, err := decodeRows(resp)
	if err != nil {
		return domain.Application{}, err
	}
	if len(rows) == 0 {
		return domain.Application{}, fmt.Errorf("insert application: store returned no row")
	}
	return rows[0], nil
}

func (s *SupabaseStore) Update(ctx context.Context, id string, f domain.Fields) (domain.Application, error) {
	resp, err := s.client.From(s.table).Eq("id", id).ExecuteUpdate(ctx, toWrite(f))
	if err != nil {
		return domain.Application{}, fmt.Errorf("update application: %w", err)
	}
	rows, err := decodeRows(resp)
	if err != nil {
		return domain.Application{}, err
	}
	if len(rows) == 0 {
		return domain.Application{}, domain.ErrNotFound
	}
	return rows[0], nil
}

func (s *SupabaseStore) Delete(ctx context.Context, id string) (bool, error) {
	resp, err := s.client.From(s.table).Eq("id", id).ExecuteDelete(ctx)
	if err != nil {
		return false, fmt.Errorf("delete application: %w", err)
	}
	rows, err := decodeRows(resp)
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

func toWrite(f domain.Fields) supabaseWrite {
	return supabaseWrite{
		Company: f.Company,
		Role:    f.Role,
		Status:  string(f.Status),
		Notes:   f.Notes,
	}
}
