package entity

import (
	"context"
	"time"

	"tradebook/internal/core/apperror"
)

// Document is the base type for immutable financial records (invoices, payments).
// Documents are append-only: once stored they are never updated or deleted.
type Document struct {
	BaseEntity

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`
}

// NewDocument creates a new Document dated at the start of date's day (UTC).
func NewDocument(date time.Time) Document {
	return Document{
		BaseEntity: NewBaseEntity(),
		Date:       TruncateDay(date),
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}
	return nil
}

// TruncateDay drops the time of day, keeping the calendar date of t's own
// offset. Business dates carry no finer ordering.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
