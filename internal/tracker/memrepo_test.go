package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"orbit-tracker/internal/domain"
)

// memRepo is an in-memory Repository that counts round-trips.
type memRepo struct {
	mu    sync.Mutex
	rows  []domain.Application
	seq   int
	calls int
	err   error
}

func (m *memRepo) Name() string { return "memory" }

func (m *memRepo) Ping(context.Context) error { return m.err }

func (m *memRepo) List(context.Context) ([]domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.Application, 0, len(m.rows))
	for i := len(m.rows) - 1; i >= 0; i-- {
		out = append(out, m.rows[i])
	}
	return out, nil
}

func (m *memRepo) Create(_ context.Context, f domain.Fields) (domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return domain.Application{}, m.err
	}
	m.seq++
	a := domain.Application{
		ID:        fmt.Sprintf("app-%d", m.seq),
		Company:   f.Company,
		Role:      f.Role,
		Status:    f.Status,
		Notes:     f.Notes,
		CreatedAt: time.Date(2025, 1, 1, 0, 0, m.seq, 0, time.UTC),
	}
	m.rows = append(m.rows, a)
	return a, nil
}

func (m *memRepo) Update(_ context.Context, id string, f domain.Fields) (domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return domain.Application{}, m.err
	}
	for i, a := range m.rows {
		if a.ID == id {
			a.Company, a.Role, a.Status, a.Notes = f.Company, f.Role, f.Status, f.Notes
			m.rows[i] = a
			return a, nil
		}
	}
	return domain.Application{}, domain.ErrNotFound
}

func (m *memRepo) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return false, m.err
	}
	for i, a := range m.rows {
		if a.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

var errBackendDown = errors.New("dial tcp: connection refused")
