package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tradebook/internal/core/id"
	"tradebook/internal/domain"
	"tradebook/internal/domain/documents/invoice"
	"tradebook/internal/infrastructure/storage/postgres"
)

const (
	invoicesTable     = "doc_invoices"
	invoiceLinesTable = "doc_invoice_lines"
)

var invoiceLineColumns = []string{
	"invoice_id", "line_no", "item_id", "name", "qty",
	"rate", "discount_percent", "tax_percent", "amount", "tax_amount",
}

// lineRow is an invoice line together with its owning invoice.
type lineRow struct {
	InvoiceID id.ID `db:"invoice_id"`
	invoice.Line
}

// InvoiceRepo implements invoice.Repository.
type InvoiceRepo struct {
	*BaseDocumentRepo[*invoice.Invoice]
	batch *postgres.BatchInserter
}

var _ invoice.Repository = (*InvoiceRepo)(nil)

// NewInvoiceRepo creates a new invoice repository.
func NewInvoiceRepo(txManager *postgres.TxManager) *InvoiceRepo {
	return &InvoiceRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*invoice.Invoice](
			txManager,
			invoicesTable, "invoice",
			postgres.ExtractDBColumns[invoice.Invoice](),
			func() *invoice.Invoice { return &invoice.Invoice{} },
		),
		batch: postgres.NewBatchInserter(txManager),
	}
}

// Create inserts the header and copies all lines. It must run inside a
// transaction.
func (r *InvoiceRepo) Create(ctx context.Context, inv *invoice.Invoice) error {
	if err := r.insert(ctx, inv); err != nil {
		return err
	}

	rows := make([][]any, 0, len(inv.Lines))
	for _, l := range inv.Lines {
		rows = append(rows, []any{
			inv.ID, l.LineNo, l.ItemID, l.Name, l.Qty,
			l.Rate, l.DiscountPercent, l.TaxPercent, l.Amount, l.TaxAmount,
		})
	}
	if _, err := r.batch.CopyFromSlice(ctx, invoiceLinesTable, invoiceLineColumns, rows); err != nil {
		return postgres.StorageError("copy invoice lines", err)
	}
	return nil
}

// GetByID returns the invoice with its lines.
func (r *InvoiceRepo) GetByID(ctx context.Context, invoiceID id.ID) (*invoice.Invoice, error) {
	inv, err := r.getByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := r.attachLines(ctx, []*invoice.Invoice{inv}); err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *InvoiceRepo) listQuery(filter invoice.ListFilter) squirrel.SelectBuilder {
	q := withDates(r.baseSelect(), filter.Dates)
	if filter.PartyID != nil {
		q = q.Where(squirrel.Eq{"party_id": *filter.PartyID})
	}
	if filter.Type != nil {
		q = q.Where(squirrel.Eq{"type": *filter.Type})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"invoice_no": pattern},
			squirrel.ILike{"party_name": pattern},
		})
	}
	return q
}

// List returns invoices with lines, newest first.
func (r *InvoiceRepo) List(ctx context.Context, filter invoice.ListFilter) (domain.ListResult[*invoice.Invoice], error) {
	result, err := r.page(ctx, r.listQuery(filter), filter.ListFilter)
	if err != nil {
		return result, err
	}
	if err := r.attachLines(ctx, result.Items); err != nil {
		return result, err
	}
	return result, nil
}

// ListByParty returns the party's invoice headers in document order.
func (r *InvoiceRepo) ListByParty(ctx context.Context, partyID id.ID, dates domain.DateRange) ([]*invoice.Invoice, error) {
	return r.findAll(ctx, r.byParty(partyID, dates))
}

// attachLines loads the lines of all invoices with one query.
func (r *InvoiceRepo) attachLines(ctx context.Context, invoices []*invoice.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}

	byID := make(map[id.ID]*invoice.Invoice, len(invoices))
	ids := make([]id.ID, 0, len(invoices))
	for _, inv := range invoices {
		inv.Lines = []invoice.Line{}
		byID[inv.ID] = inv
		ids = append(ids, inv.ID)
	}

	sql, args, err := r.Builder().
		Select(invoiceLineColumns...).
		From(invoiceLinesTable).
		Where(squirrel.Eq{"invoice_id": ids}).
		OrderBy("invoice_id", "line_no").
		ToSql()
	if err != nil {
		return fmt.Errorf("build lines query: %w", err)
	}

	var rows []lineRow
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return postgres.StorageError("list invoice lines", err)
	}
	for _, row := range rows {
		inv := byID[row.InvoiceID]
		inv.Lines = append(inv.Lines, row.Line)
	}
	return nil
}
