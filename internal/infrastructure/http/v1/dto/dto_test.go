package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/id"
	"tradebook/internal/core/types"
	"tradebook/internal/domain/documents/invoice"
)

func TestCreateInvoiceRequestToInput(t *testing.T) {
	partyID := id.New()
	itemID := id.New()
	body := `{
		"type": "SALES",
		"partyId": "` + partyID.String() + `",
		"date": "2026-03-01",
		"paymentMode": "credit",
		"roundOff": "0.20",
		"items": [
			{"itemId": "` + itemID.String() + `", "qty": 2.5, "rate": "40", "discountPercent": "10"},
			{"name": "Delivery", "qty": 1, "rate": "50", "taxPercent": "0"}
		]
	}`

	var req CreateInvoiceRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	in, err := req.ToInput()
	require.NoError(t, err)

	assert.Equal(t, invoice.TypeSales, in.Type)
	assert.Equal(t, partyID, in.PartyID)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), in.Date)
	assert.True(t, in.RoundOff.Equal(types.MustMoney("0.2")))
	require.Len(t, in.Lines, 2)
	assert.Equal(t, itemID, *in.Lines[0].ItemID)
	assert.Equal(t, types.MustQuantity("2.5"), in.Lines[0].Qty)
	assert.Nil(t, in.Lines[0].TaxPercent)
	assert.Nil(t, in.Lines[1].ItemID)
	require.NotNil(t, in.Lines[1].TaxPercent)
	assert.True(t, in.Lines[1].TaxPercent.IsZero())
}

func TestCreateInvoiceRequestRejectsBadIDs(t *testing.T) {
	req := CreateInvoiceRequest{Type: invoice.TypeSales, PartyID: "nope", PaymentMode: invoice.PaymentCash}
	_, err := req.ToInput()
	assert.True(t, apperror.IsValidation(err))

	bad := "also-nope"
	req = CreateInvoiceRequest{
		Type:        invoice.TypeSales,
		PartyID:     id.New().String(),
		PaymentMode: invoice.PaymentCash,
		Items:       []InvoiceLineRequest{{ItemID: &bad}},
	}
	_, err = req.ToInput()
	assert.True(t, apperror.IsValidation(err))
}

func TestParseDateRange(t *testing.T) {
	r, err := ParseDateRange("2026-01-01", "2026-01-31")
	require.NoError(t, err)
	require.NotNil(t, r.From)
	require.NotNil(t, r.To)
	assert.Equal(t, 31, r.To.Day())

	r, err = ParseDateRange("", "")
	require.NoError(t, err)
	assert.True(t, r.IsZero())

	_, err = ParseDateRange("2026-02-01", "2026-01-01")
	assert.True(t, apperror.IsValidation(err))

	_, err = ParseDateRange("01/02/2026", "")
	assert.True(t, apperror.IsValidation(err))
}

func TestParseDateRangeTruncatesTimestamps(t *testing.T) {
	r, err := ParseDateRange("2024-03-10T01:00:00+05:30", "2024-03-12T18:45:00Z")
	require.NoError(t, err)
	require.NotNil(t, r.From)
	require.NotNil(t, r.To)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), *r.From)
	assert.Equal(t, time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC), *r.To)

	// A document dated on the upper bound stays inside the range.
	assert.True(t, r.Contains(time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)))
}

func TestParseDateKeepsOffsetCalendarDay(t *testing.T) {
	d, err := ParseDate("date", "2024-03-10T23:30:00-05:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), d)
}
