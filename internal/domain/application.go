package domain

import (
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned by repositories when no application matches an id.
var ErrNotFound = errors.New("application not found")

type Status string

const (
	StatusApplied      Status = "Applied"
	StatusInterviewing Status = "Interviewing"
	StatusRejected     Status = "Rejected"
	StatusOffer        Status = "Offer"
)

// AllStatuses returns the statuses in display order.
func AllStatuses() []Status {
	return []Status{StatusApplied, StatusInterviewing, StatusRejected, StatusOffer}
}

// ParseStatus matches s case-insensitively. An empty string is Applied.
func ParseStatus(s string) (Status, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return StatusApplied, true
	}
	for _, st := range AllStatuses() {
		if strings.EqualFold(s, string(st)) {
			return st, true
		}
	}
	return "", false
}

// Application is one tracked internship application.
type Application struct {
	ID        string    `json:"id"`
	Company   string    `json:"company"`
	Role      string    `json:"role"`
	Status    Status    `json:"status"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// Fields holds the mutable part of an Application.
type Fields struct {
	Company string `json:"company"`
	Role    string `json:"role"`
	Status  Status `json:"status"`
	Notes   string `json:"notes"`
}

func (a Application) Fields() Fields {
	return Fields{
		Company: a.Company,
		Role:    a.Role,
		Status:  a.Status,
		Notes:   a.Notes,
	}
}
