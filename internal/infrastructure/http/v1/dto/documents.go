package dto

import (
	"tradebook/internal/core/types"
	"tradebook/internal/domain/documents/invoice"
	"tradebook/internal/domain/documents/payment"
)

// --- Invoice ---

// InvoiceLineRequest is one cart line.
type InvoiceLineRequest struct {
	ItemID          *string        `json:"itemId"`
	Name            string         `json:"name"`
	Qty             types.Quantity `json:"qty"`
	Rate            types.Money    `json:"rate"`
	DiscountPercent types.Percent  `json:"discountPercent"`
	TaxPercent      *types.Percent `json:"taxPercent"`
}

// CreateInvoiceRequest is the request body for creating an invoice.
type CreateInvoiceRequest struct {
	Type           invoice.Type         `json:"type" binding:"required"`
	PartyID        string               `json:"partyId" binding:"required"`
	Date           string               `json:"date"`
	PaymentMode    invoice.PaymentMode  `json:"paymentMode" binding:"required"`
	PaymentDetails *string              `json:"paymentDetails"`
	RoundOff       types.Money          `json:"roundOff"`
	Items          []InvoiceLineRequest `json:"items"`
}

// ToInput converts the request into service input.
func (r *CreateInvoiceRequest) ToInput() (invoice.CreateInput, error) {
	partyID, err := ParseID("partyId", r.PartyID)
	if err != nil {
		return invoice.CreateInput{}, err
	}
	date, err := DateOrToday("date", r.Date)
	if err != nil {
		return invoice.CreateInput{}, err
	}

	lines := make([]invoice.LineInput, len(r.Items))
	for i, l := range r.Items {
		itemID, err := ParseOptionalID("itemId", l.ItemID)
		if err != nil {
			return invoice.CreateInput{}, err
		}
		lines[i] = invoice.LineInput{
			ItemID:          itemID,
			Name:            l.Name,
			Qty:             l.Qty,
			Rate:            l.Rate,
			DiscountPercent: l.DiscountPercent,
			TaxPercent:      l.TaxPercent,
		}
	}

	return invoice.CreateInput{
		Type:           r.Type,
		PartyID:        partyID,
		Date:           date,
		PaymentMode:    r.PaymentMode,
		PaymentDetails: r.PaymentDetails,
		RoundOff:       r.RoundOff,
		Lines:          lines,
	}, nil
}

// --- Payment ---

// RecordPaymentRequest is the request body for recording a payment.
type RecordPaymentRequest struct {
	PartyID   string       `json:"partyId" binding:"required"`
	Amount    types.Money  `json:"amount"`
	Date      string       `json:"date"`
	Mode      payment.Mode `json:"mode" binding:"required"`
	Reference string       `json:"reference"`
	Notes     string       `json:"notes"`
}

// ToInput converts the request into service input.
func (r *RecordPaymentRequest) ToInput() (payment.RecordInput, error) {
	partyID, err := ParseID("partyId", r.PartyID)
	if err != nil {
		return payment.RecordInput{}, err
	}
	date, err := DateOrToday("date", r.Date)
	if err != nil {
		return payment.RecordInput{}, err
	}
	return payment.RecordInput{
		PartyID:   partyID,
		Amount:    r.Amount,
		Date:      date,
		Mode:      r.Mode,
		Reference: r.Reference,
		Notes:     r.Notes,
	}, nil
}
