// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"strings"
	"time"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/entity"
	"tradebook/internal/core/id"
	"tradebook/internal/domain"
)

// DateLayout is the wire format of business dates.
const DateLayout = "2006-01-02"

// --- List Response ---

// ListResponse wraps list results with pagination.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// FromListResult maps every item of r with fn.
func FromListResult[T any](r domain.ListResult[T], fn func(T) any) ListResponse {
	items := make([]any, len(r.Items))
	for i, it := range r.Items {
		items[i] = fn(it)
	}
	return ListResponse{
		Items:      items,
		TotalCount: r.TotalCount,
		Limit:      r.Limit,
		Offset:     r.Offset,
	}
}

// --- ID Response ---

// IDResponse for create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// NewIDResponse creates ID response.
func NewIDResponse(i id.ID) IDResponse {
	return IDResponse{ID: i.String()}
}

// --- Error Response ---

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// --- Dates ---

// ParseDate accepts a plain date or an RFC 3339 timestamp. The result is
// truncated to the calendar date written in s.
func ParseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return entity.TruncateDay(t), nil
	}
	return time.Time{}, apperror.NewValidation("invalid date, expected YYYY-MM-DD").
		WithDetail("field", field).
		WithDetail("value", s)
}

// DateOrToday parses s, falling back to the current date when empty.
func DateOrToday(field, s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return entity.TruncateDay(time.Now().UTC()), nil
	}
	return ParseDate(field, s)
}

// ParseDateRange reads optional from/to bounds.
func ParseDateRange(from, to string) (domain.DateRange, error) {
	var r domain.DateRange
	if from != "" {
		t, err := ParseDate("from", from)
		if err != nil {
			return r, err
		}
		r.From = &t
	}
	if to != "" {
		t, err := ParseDate("to", to)
		if err != nil {
			return r, err
		}
		r.To = &t
	}
	if r.From != nil && r.To != nil && r.To.Before(*r.From) {
		return r, apperror.NewValidation("to must not be before from")
	}
	return r, nil
}

// ParseID parses a required path or body id.
func ParseID(field, s string) (id.ID, error) {
	parsed, err := id.Parse(s)
	if err != nil {
		return id.ID{}, apperror.NewValidation("invalid id format").
			WithDetail("field", field).
			WithDetail("value", s)
	}
	return parsed, nil
}

// ParseOptionalID parses an id that may be omitted.
func ParseOptionalID(field string, s *string) (*id.ID, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	parsed, err := ParseID(field, *s)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
