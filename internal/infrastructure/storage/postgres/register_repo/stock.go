// Package register_repo provides PostgreSQL implementations for register repositories.
package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tradebook/internal/core/id"
	"tradebook/internal/core/types"
	"tradebook/internal/domain"
	"tradebook/internal/domain/registers/stock"
	"tradebook/internal/infrastructure/storage/postgres"
)

const stockMovementsTable = "reg_stock_movements"

var movementColumns = []string{
	"line_id", "reference_id", "item_id", "item_name",
	"qty", "direction", "reason", "created_at",
}

// StockRepo implements stock.Repository.
type StockRepo struct {
	txManager *postgres.TxManager
	batch     *postgres.BatchInserter
	builder   squirrel.StatementBuilderType
}

var _ stock.Repository = (*StockRepo)(nil)

// NewStockRepo creates a new stock register repository.
func NewStockRepo(txManager *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txManager: txManager,
		batch:     postgres.NewBatchInserter(txManager),
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// AddStock increments the stock column in place, so concurrent documents
// never overwrite each other's effect.
func (r *StockRepo) AddStock(ctx context.Context, itemID id.ID, delta types.Quantity) (string, bool, error) {
	var name string
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx,
		"UPDATE cat_items SET stock = stock + $1 WHERE id = $2 RETURNING name",
		delta, itemID,
	).Scan(&name)
	if err != nil {
		if pgxscan.NotFound(err) {
			return "", false, nil
		}
		return "", false, postgres.StorageError("add stock", err)
	}
	return name, true, nil
}

// CreateMovements batch inserts movements with COPY. It must run inside a
// transaction.
func (r *StockRepo) CreateMovements(ctx context.Context, movements []stock.Movement) error {
	if len(movements) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(movements))
	for _, m := range movements {
		rows = append(rows, []any{
			m.LineID, m.ReferenceID, m.ItemID, m.ItemName,
			m.Qty, m.Direction, m.Reason, m.CreatedAt,
		})
	}
	if _, err := r.batch.CopyFromSlice(ctx, stockMovementsTable, movementColumns, rows); err != nil {
		return postgres.StorageError("copy stock movements", err)
	}
	return nil
}

func (r *StockRepo) movementsQuery(filter stock.MovementFilter) squirrel.SelectBuilder {
	q := r.builder.Select(movementColumns...).From(stockMovementsTable)
	if filter.ItemID != nil {
		q = q.Where(squirrel.Eq{"item_id": *filter.ItemID})
	}
	if filter.ReferenceID != "" {
		q = q.Where(squirrel.Eq{"reference_id": filter.ReferenceID})
	}
	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"item_name": "%" + filter.Search + "%"})
	}
	return q
}

// ListMovements returns movements newest first.
func (r *StockRepo) ListMovements(ctx context.Context, filter stock.MovementFilter) (domain.ListResult[stock.Movement], error) {
	page := filter.ListFilter.Normalize()
	result := domain.ListResult[stock.Movement]{Limit: page.Limit, Offset: page.Offset}
	q := r.movementsQuery(filter)
	querier := r.txManager.GetQuerier(ctx)

	countSQL, countArgs, err := r.builder.Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, postgres.StorageError("count stock movements", err)
	}

	sql, args, err := q.OrderBy("created_at DESC", "line_id DESC").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset)).
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	result.Items = []stock.Movement{}
	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, postgres.StorageError("list stock movements", err)
	}
	return result, nil
}

// ListItemStock returns every item ordered by name.
func (r *StockRepo) ListItemStock(ctx context.Context) ([]stock.ItemStock, error) {
	var out []stock.ItemStock
	err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &out, `
		SELECT id, name, unit, purchase_rate, opening_stock, stock
		FROM cat_items
		ORDER BY name, id
	`)
	if err != nil {
		return nil, postgres.StorageError("list item stock", err)
	}
	return out, nil
}

// ListItemBalances returns every item with the sum of its movements.
func (r *StockRepo) ListItemBalances(ctx context.Context) ([]stock.ItemBalance, error) {
	var out []stock.ItemBalance
	err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &out, `
		SELECT i.id, i.name, i.unit, i.purchase_rate, i.opening_stock, i.stock,
		       COALESCE(m.total, 0) AS movement_sum
		FROM cat_items i
		LEFT JOIN (
			SELECT item_id, SUM(qty)::BIGINT AS total
			FROM reg_stock_movements
			GROUP BY item_id
		) m ON m.item_id = i.id
		ORDER BY i.name, i.id
	`)
	if err != nil {
		return nil, postgres.StorageError("list item balances", err)
	}
	return out, nil
}

// ListUnappliedReferences returns numbers of invoices with stocked lines but
// no movements.
func (r *StockRepo) ListUnappliedReferences(ctx context.Context) ([]string, error) {
	var out []string
	err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &out, `
		SELECT inv.invoice_no
		FROM doc_invoices inv
		WHERE EXISTS (
			SELECT 1
			FROM doc_invoice_lines l
			JOIN cat_items i ON i.id = l.item_id
			WHERE l.invoice_id = inv.id
		)
		AND NOT EXISTS (
			SELECT 1 FROM reg_stock_movements m WHERE m.reference_id = inv.invoice_no
		)
		ORDER BY inv.invoice_no
	`)
	if err != nil {
		return nil, postgres.StorageError("list unapplied references", err)
	}
	return out, nil
}
