// Package invoice provides sales and purchase invoices, the single write path
// that moves stock.
package invoice

import (
	"context"
	"time"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/entity"
	"tradebook/internal/core/id"
	"tradebook/internal/core/types"
	"tradebook/internal/domain/catalogs/party"
	"tradebook/internal/domain/pricing"
	"tradebook/internal/domain/registers/stock"
)

// Type is the invoice direction.
type Type string

const (
	TypeSales    Type = "SALES"
	TypePurchase Type = "PURCHASE"
)

// Valid reports whether t is a known direction.
func (t Type) Valid() bool {
	return t == TypeSales || t == TypePurchase
}

// PartyType is the party type an invoice of this direction is issued to.
func (t Type) PartyType() party.Type {
	if t == TypeSales {
		return party.TypeCustomer
	}
	return party.TypeSupplier
}

// StockDirection is the movement direction of this invoice's lines.
func (t Type) StockDirection() stock.Direction {
	if t == TypeSales {
		return stock.DirectionOut
	}
	return stock.DirectionIn
}

// PaymentMode is how an invoice is settled.
type PaymentMode string

const (
	PaymentCash   PaymentMode = "cash"
	PaymentCredit PaymentMode = "credit"
	PaymentOnline PaymentMode = "online"
	PaymentCheque PaymentMode = "cheque"
)

// Valid reports whether m is a known payment mode.
func (m PaymentMode) Valid() bool {
	switch m {
	case PaymentCash, PaymentCredit, PaymentOnline, PaymentCheque:
		return true
	}
	return false
}

// Line is one row of an invoice. Name and TaxPercent are snapshots taken when
// the invoice was created.
type Line struct {
	LineNo          int            `db:"line_no" json:"lineNo"`
	ItemID          *id.ID         `db:"item_id" json:"itemId,omitempty"`
	Name            string         `db:"name" json:"name"`
	Qty             types.Quantity `db:"qty" json:"qty"`
	Rate            types.Money    `db:"rate" json:"rate"`
	DiscountPercent types.Percent  `db:"discount_percent" json:"discountPercent"`
	TaxPercent      types.Percent  `db:"tax_percent" json:"taxPercent"`

	// Amount is the taxable value of the line.
	Amount    types.Money `db:"amount" json:"amount"`
	TaxAmount types.Money `db:"tax_amount" json:"taxAmount"`
}

func (l Line) pricingInput() pricing.LineInput {
	return pricing.LineInput{
		Qty:             l.Qty,
		Rate:            l.Rate,
		DiscountPercent: l.DiscountPercent,
		TaxPercent:      l.TaxPercent,
	}
}

// Invoice is an immutable financial document.
type Invoice struct {
	entity.Document

	InvoiceNo string `db:"invoice_no" json:"invoiceNo"`
	PartyID   id.ID  `db:"party_id" json:"partyId"`
	PartyName string `db:"party_name" json:"partyName"`
	Type      Type   `db:"type" json:"type"`

	Lines []Line `db:"-" json:"items"`

	Subtotal   types.Money `db:"subtotal" json:"subtotal"`
	TaxAmount  types.Money `db:"tax_amount" json:"taxAmount"`
	RoundOff   types.Money `db:"round_off" json:"roundOff"`
	GrandTotal types.Money `db:"grand_total" json:"grandTotal"`

	PaymentMode    PaymentMode `db:"payment_mode" json:"paymentMode"`
	PaymentDetails *string     `db:"payment_details" json:"paymentDetails,omitempty"`

	// DueDate is set iff PaymentMode is credit.
	DueDate *time.Time `db:"due_date" json:"dueDate,omitempty"`
}

// IsCredit reports whether the invoice is left open for later payment.
func (inv *Invoice) IsCredit() bool {
	return inv.PaymentMode == PaymentCredit
}

// Price computes line amounts and invoice totals from the line inputs.
func (inv *Invoice) Price() {
	amounts := make([]pricing.LineAmounts, len(inv.Lines))
	for i := range inv.Lines {
		a := pricing.Line(inv.Lines[i].pricingInput())
		inv.Lines[i].LineNo = i + 1
		inv.Lines[i].Amount = a.Taxable
		inv.Lines[i].TaxAmount = a.Tax
		amounts[i] = a
	}

	totals := pricing.Sum(amounts, inv.RoundOff)
	inv.Subtotal = totals.Subtotal
	inv.TaxAmount = totals.Tax
	inv.GrandTotal = totals.GrandTotal
}

// Posting returns the stock effect of the invoice.
func (inv *Invoice) Posting() stock.Posting {
	lines := make([]stock.PostingLine, 0, len(inv.Lines))
	for _, l := range inv.Lines {
		lines = append(lines, stock.PostingLine{ItemID: l.ItemID, Qty: l.Qty})
	}
	return stock.Posting{
		ReferenceID: inv.InvoiceNo,
		Direction:   inv.Type.StockDirection(),
		Lines:       lines,
	}
}

// Validate implements entity.Validatable interface.
func (inv *Invoice) Validate(ctx context.Context) error {
	if err := inv.Document.Validate(ctx); err != nil {
		return err
	}
	if !inv.Type.Valid() {
		return apperror.NewValidation("invoice type must be SALES or PURCHASE").
			WithDetail("field", "type")
	}
	if !inv.PaymentMode.Valid() {
		return apperror.NewValidation("invalid payment mode").
			WithDetail("field", "paymentMode").
			WithDetail("value", string(inv.PaymentMode))
	}
	if len(inv.Lines) == 0 {
		return apperror.NewValidation("invoice must have at least one line").
			WithDetail("field", "items")
	}
	if err := pricing.ValidateRoundOff(inv.RoundOff); err != nil {
		return err
	}
	for i, l := range inv.Lines {
		if err := pricing.ValidateLine(i, l.pricingInput()); err != nil {
			return err
		}
	}
	return nil
}
