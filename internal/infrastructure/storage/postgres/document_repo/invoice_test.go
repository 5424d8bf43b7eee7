package document_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradebook/internal/core/id"
	"tradebook/internal/domain"
	"tradebook/internal/domain/documents/invoice"
)

func TestInvoiceListQuery(t *testing.T) {
	repo := NewInvoiceRepo(nil)
	partyID := id.New()
	sales := invoice.TypeSales
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	q := repo.listQuery(invoice.ListFilter{
		PartyID: &partyID,
		Type:    &sales,
		Dates:   domain.DateRange{From: &from},
	})
	sql, args, err := newestFirst(q).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM doc_invoices WHERE date >= $1 AND party_id = $2 AND type = $3")
	assert.Contains(t, sql, "ORDER BY date DESC, created_at DESC, id DESC")
	assert.Equal(t, []any{from, partyID, sales}, args)
}

func TestByPartyOrdersByDocumentOrder(t *testing.T) {
	repo := NewPaymentRepo(nil)
	partyID := id.New()
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	sql, args, err := repo.byParty(partyID, domain.DateRange{To: &to}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM doc_payments WHERE party_id = $1 AND date <= $2 ORDER BY date, created_at, id")
	assert.Equal(t, []any{partyID, to}, args)
}

func TestInvoiceInsertSkipsLines(t *testing.T) {
	repo := NewInvoiceRepo(nil)
	inv := &invoice.Invoice{InvoiceNo: "INV-2024-00001", Type: invoice.TypeSales}
	inv.Lines = []invoice.Line{{Name: "Widget"}}

	sql, _, err := repo.insertQuery(inv).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "INSERT INTO doc_invoices")
	assert.Contains(t, sql, "invoice_no")
	assert.NotContains(t, sql, "lines")
}
