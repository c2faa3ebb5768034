// Package reminders keeps the client's date-tagged notes in a JSON file.
// They never reach the application store.
package reminders

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"orbit-tracker/internal/domain"
)

const dataFileName = "reminders.json"

var (
	ErrBadDate   = errors.New("date must be YYYY-MM-DD")
	ErrEmptyText = errors.New("reminder text is required")
	ErrNoSuch    = errors.New("no such reminder")
)

type Store struct {
	path string
	lock *flock.Flock
	now  func() time.Time
}

// DefaultDir is ORBIT_HOME, or ~/.orbit.
func DefaultDir() (string, error) {
	if d := strings.TrimSpace(os.Getenv("ORBIT_HOME")); d != "" {
		return d, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	return filepath.Join(home, ".orbit"), nil
}

func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	p := filepath.Join(dir, dataFileName)
	return &Store{
		path: p,
		lock: flock.New(p + ".lock"),
		now:  time.Now,
	}, nil
}

func (s *Store) Path() string { return s.path }

// List returns the reminders ordered by date, oldest first.
func (s *Store) List() ([]domain.Reminder, error) {
	var out []domain.Reminder
	err := s.update(func(items []domain.Reminder) ([]domain.Reminder, bool, error) {
		out = items
		return items, false, nil
	})
	return out, err
}

func (s *Store) Add(date, text string) (domain.Reminder, error) {
	d, err := time.Parse(domain.DateLayout, strings.TrimSpace(date))
	if err != nil {
		return domain.Reminder{}, fmt.Errorf("%w (got %q)", ErrBadDate, date)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Reminder{}, ErrEmptyText
	}

	r := domain.Reminder{
		ID:        uuid.NewString(),
		Date:      d.Format(domain.DateLayout),
		Text:      text,
		CreatedAt: s.now().UTC(),
	}
	err = s.update(func(items []domain.Reminder) ([]domain.Reminder, bool, error) {
		return append(items, r), true, nil
	})
	if err != nil {
		return domain.Reminder{}, err
	}
	return r, nil
}

// SetDone marks the n-th reminder (1-based, in List order).
func (s *Store) SetDone(n int, done bool) (domain.Reminder, error) {
	var got domain.Reminder
	err := s.update(func(items []domain.Reminder) ([]domain.Reminder, bool, error) {
		if n < 1 || n > len(items) {
			return nil, false, fmt.Errorf("%w: #%d", ErrNoSuch, n)
		}
		items[n-1].Done = done
		got = items[n-1]
		return items, true, nil
	})
	return got, err
}

// Remove deletes the n-th reminder (1-based, in List order).
func (s *Store) Remove(n int) (domain.Reminder, error) {
	var got domain.Reminder
	err := s.update(func(items []domain.Reminder) ([]domain.Reminder, bool, error) {
		if n < 1 || n > len(items) {
			return nil, false, fmt.Errorf("%w: #%d", ErrNoSuch, n)
		}
		got = items[n-1]
		return append(items[:n-1], items[n:]...), true, nil
	})
	return got, err
}

// update runs fn on the sorted list under the file lock and saves the
// result when fn reports a change.
func (s *Store) update(fn func([]domain.Reminder) ([]domain.Reminder, bool, error)) error {
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", s.lock.Path(), err)
	}
	defer func() { _ = s.lock.Unlock() }()

	items, err := s.load()
	if err != nil {
		return err
	}
	sortReminders(items)

	items, changed, err := fn(items)
	if err != nil || !changed {
		return err
	}
	sortReminders(items)
	return s.save(items)
}

func (s *Store) load() ([]domain.Reminder, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []domain.Reminder{}, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	if len(strings.TrimSpace(string(b))) == 0 {
		return []domain.Reminder{}, nil
	}
	var items []domain.Reminder
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("json unmarshal %s: %w", s.path, err)
	}
	if items == nil {
		items = []domain.Reminder{}
	}
	return items, nil
}

func (s *Store) save(items []domain.Reminder) error {
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), dataFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}

func sortReminders(items []domain.Reminder) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Date != items[j].Date {
			return items[i].Date < items[j].Date
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}
