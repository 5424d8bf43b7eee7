// Package payment provides party-directed cash movements independent of invoices.
package payment

import (
	"context"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/entity"
	"tradebook/internal/core/id"
	"tradebook/internal/core/types"
)

// Mode is how a payment was made.
type Mode string

const (
	ModeCash   Mode = "cash"
	ModeOnline Mode = "online"
	ModeCheque Mode = "cheque"
)

// Valid reports whether m is a known payment mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeCash, ModeOnline, ModeCheque:
		return true
	}
	return false
}

// Payment is money received from a customer or paid to a supplier. Its
// direction follows the party's type.
type Payment struct {
	entity.Document

	PartyID   id.ID       `db:"party_id" json:"partyId"`
	Amount    types.Money `db:"amount" json:"amount"`
	Mode      Mode        `db:"mode" json:"mode"`
	Reference *string     `db:"reference" json:"reference,omitempty"`
	Notes     *string     `db:"notes" json:"notes,omitempty"`
}

// Validate implements entity.Validatable interface.
func (p *Payment) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}
	if !p.Amount.IsPositive() {
		return apperror.NewValidation("amount must be greater than zero").
			WithDetail("field", "amount")
	}
	if !types.Round2(p.Amount).Equal(p.Amount) {
		return apperror.NewValidation("amount must have at most two decimal places").
			WithDetail("field", "amount")
	}
	if !p.Mode.Valid() {
		return apperror.NewValidation("payment mode must be cash, online or cheque").
			WithDetail("field", "mode").
			WithDetail("value", string(p.Mode))
	}
	return nil
}
