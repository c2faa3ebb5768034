package tracker

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"orbit-tracker/internal/domain"
	"orbit-tracker/internal/logging"
	"orbit-tracker/internal/metrics"
)

// Repository is the persisted applications table. Implementations live in
// internal/store.
type Repository interface {
	List(ctx context.Context) ([]domain.Application, error)
	Create(ctx context.Context, f domain.Fields) (domain.Application, error)
	Update(ctx context.Context, id string, f domain.Fields) (domain.Application, error)
	Delete(ctx context.Context, id string) (deleted bool, err error)
	Ping(ctx context.Context) error
	Name() string
}

// Service validates requests and forwards each one to the repository in a
// single round-trip. It holds no state of its own.
type Service struct {
	repo Repository
	log  *logrus.Logger
	now  func() time.Time
}

type Option func(*Service)

func WithLogger(l *logrus.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func New(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, log: logging.Discard(), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Backend names the repository in use.
func (s *Service) Backend() string { return s.repo.Name() }

func (s *Service) Ping(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return &storeError{op: "ping", err: err}
	}
	return nil
}

// List returns every application, newest first.
func (s *Service) List(ctx context.Context) ([]domain.Application, error) {
	start := s.now()
	apps, err := s.repo.List(ctx)
	s.observe(ctx, "list", start, err)
	if err != nil {
		return nil, &storeError{op: "list", err: err}
	}
	if apps == nil {
		apps = []domain.Application{}
	}
	return apps, nil
}

func (s *Service) Create(ctx context.Context, f domain.Fields) (domain.Application, error) {
	clean, err := normalize(f)
	if err != nil {
		return domain.Application{}, err
	}

	start := s.now()
	app, err := s.repo.Create(ctx, clean)
	s.observe(ctx, "create", start, err)
	if err != nil {
		return domain.Application{}, &storeError{op: "create", err: err}
	}
	return app, nil
}

// Update replaces the mutable fields of id. A missing row is ErrNotFound.
func (s *Service) Update(ctx context.Context, id string, f domain.Fields) (domain.Application, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Application{}, ErrMissingIdentifier
	}
	clean, err := normalize(f)
	if err != nil {
		return domain.Application{}, err
	}

	start := s.now()
	app, err := s.repo.Update(ctx, id, clean)
	s.observe(ctx, "update", start, err)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return domain.Application{}, ErrNotFound
	case err != nil:
		return domain.Application{}, &storeError{op: "update", err: err}
	}
	return app, nil
}

// Delete removes id. Deleting a missing id reports deleted=false without error.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, ErrMissingIdentifier
	}

	start := s.now()
	deleted, err := s.repo.Delete(ctx, id)
	s.observe(ctx, "delete", start, err)
	if err != nil {
		return false, &storeError{op: "delete", err: err}
	}
	return deleted, nil
}

func (s *Service) observe(ctx context.Context, op string, start time.Time, err error) {
	d := s.now().Sub(start)
	outcome := "ok"
	switch {
	case errors.Is(err, domain.ErrNotFound):
		outcome = "not_found"
	case err != nil:
		outcome = "error"
	}
	metrics.ObserveStoreOp(op, outcome, d)

	entry := s.log.WithFields(logrus.Fields{
		"op":      op,
		"backend": s.repo.Name(),
		"dur_ms":  d.Milliseconds(),
	})
	if id := RequestID(ctx); id != "" {
		entry = entry.WithField("request_id", id)
	}
	if err != nil && outcome == "error" {
		entry.WithError(err).Warn("store call failed")
		return
	}
	entry.Debug("store call")
}
