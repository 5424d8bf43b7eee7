// Package party provides the Party catalog: customers and suppliers.
package party

import (
	"context"
	"regexp"
	"strings"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/entity"
	"tradebook/internal/core/types"
)

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Party is a customer or supplier.
type Party struct {
	entity.Catalog

	Mobile string  `db:"mobile" json:"mobile"`
	Email  *string `db:"email" json:"email,omitempty"`
	Type   Type    `db:"type" json:"type"`

	// OpeningBalance seeds the running balance; its meaning follows Type
	// (receivable for customers, payable for suppliers).
	OpeningBalance types.Money `db:"opening_balance" json:"openingBalance"`

	TaxID   *string `db:"tax_id" json:"taxId,omitempty"`
	Address *string `db:"address" json:"address,omitempty"`
}

// NewParty creates a new Party with required fields.
func NewParty(name, mobile string, t Type, openingBalance types.Money) *Party {
	return &Party{
		Catalog:        entity.NewCatalog(name),
		Mobile:         strings.TrimSpace(mobile),
		Type:           t,
		OpeningBalance: openingBalance,
	}
}

// Validate implements entity.Validatable interface.
func (p *Party) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if strings.TrimSpace(p.Mobile) == "" {
		return apperror.NewValidation("mobile is required").
			WithDetail("field", "mobile")
	}

	if !p.Type.Valid() {
		return apperror.NewValidation("party type must be Customer or Supplier").
			WithDetail("field", "type").
			WithDetail("value", string(p.Type))
	}

	if p.Email != nil && *p.Email != "" && !emailRE.MatchString(*p.Email) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email")
	}

	return nil
}
