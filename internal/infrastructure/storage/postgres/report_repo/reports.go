// Package report_repo provides PostgreSQL implementations for report repositories.
package report_repo

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tradebook/internal/core/types"
	"tradebook/internal/domain/reports"
	"tradebook/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ reports.Repository = (*ReportRepo)(nil)

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// PartyTotals sums credit invoices by direction and all payments per party.
func (r *ReportRepo) PartyTotals(ctx context.Context) ([]reports.PartyTotals, error) {
	var out []reports.PartyTotals
	err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &out, `
		WITH inv AS (
			SELECT party_id,
			       SUM(grand_total) FILTER (WHERE type = 'SALES')    AS credit_sales,
			       SUM(grand_total) FILTER (WHERE type = 'PURCHASE') AS credit_purchases
			FROM doc_invoices
			WHERE payment_mode = 'credit'
			GROUP BY party_id
		), pay AS (
			SELECT party_id, SUM(amount) AS payments
			FROM doc_payments
			GROUP BY party_id
		)
		SELECT COALESCE(inv.party_id, pay.party_id) AS party_id,
		       COALESCE(inv.credit_sales, 0)        AS credit_sales,
		       COALESCE(inv.credit_purchases, 0)    AS credit_purchases,
		       COALESCE(pay.payments, 0)            AS payments
		FROM inv
		FULL OUTER JOIN pay ON pay.party_id = inv.party_id
	`)
	if err != nil {
		return nil, postgres.StorageError("party totals", err)
	}
	return out, nil
}

// InvoiceTotals sums grand totals of all invoices by direction.
func (r *ReportRepo) InvoiceTotals(ctx context.Context) (reports.InvoiceTotals, error) {
	var totals reports.InvoiceTotals
	err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &totals, `
		SELECT COALESCE(SUM(grand_total) FILTER (WHERE type = 'SALES'), 0)    AS sales,
		       COALESCE(SUM(grand_total) FILTER (WHERE type = 'PURCHASE'), 0) AS purchases
		FROM doc_invoices
	`)
	if err != nil {
		return totals, postgres.StorageError("invoice totals", err)
	}
	return totals, nil
}

// CountLowStock counts items whose stock is below threshold.
func (r *ReportRepo) CountLowStock(ctx context.Context, threshold types.Quantity) (int, error) {
	var n int
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx,
		"SELECT COUNT(*) FROM cat_items WHERE stock < $1", threshold,
	).Scan(&n)
	if err != nil {
		return 0, postgres.StorageError("count low stock", err)
	}
	return n, nil
}

func (r *ReportRepo) recentQuery(limit int) squirrel.SelectBuilder {
	return r.builder.
		Select("id", "invoice_no", "party_name", "type", "grand_total", "date").
		From("doc_invoices").
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit))
}

// RecentInvoices returns the most recently created invoices.
func (r *ReportRepo) RecentInvoices(ctx context.Context, limit int) ([]reports.RecentInvoice, error) {
	sql, args, err := r.recentQuery(limit).ToSql()
	if err != nil {
		return nil, err
	}

	var out []reports.RecentInvoice
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, postgres.StorageError("recent invoices", err)
	}
	return out, nil
}
