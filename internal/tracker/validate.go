package tracker

import (
	"strings"

	"orbit-tracker/internal/domain"
)

// normalize trims input and resolves the status. It runs before any store call.
func normalize(in domain.Fields) (domain.Fields, error) {
	out := domain.Fields{
		Company: strings.TrimSpace(in.Company),
		Role:    strings.TrimSpace(in.Role),
		Notes:   strings.TrimSpace(in.Notes),
	}

	bad := map[string]string{}
	if out.Company == "" {
		bad["company"] = "is required"
	}
	if out.Role == "" {
		bad["role"] = "is required"
	}
	st, ok := domain.ParseStatus(string(in.Status))
	if !ok {
		bad["status"] = "must be one of Applied, Interviewing, Rejected, Offer"
	}
	out.Status = st

	if len(bad) > 0 {
		return domain.Fields{}, &ValidationError{Fields: bad}
	}
	return out, nil
}
