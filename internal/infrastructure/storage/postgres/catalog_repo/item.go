package catalog_repo

import (
	"context"

	"tradebook/internal/domain"
	"tradebook/internal/domain/catalogs/item"
	"tradebook/internal/infrastructure/storage/postgres"
)

const itemTable = "cat_items"

// ItemRepo implements item.Repository. The stock column is written only by
// the stock register.
type ItemRepo struct {
	*BaseCatalogRepo[*item.Item]
}

var _ item.Repository = (*ItemRepo)(nil)

// NewItemRepo creates a new item repository.
func NewItemRepo(txManager *postgres.TxManager) *ItemRepo {
	return &ItemRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*item.Item](
			txManager,
			itemTable, "item",
			postgres.ExtractDBColumns[item.Item](),
			func() *item.Item { return &item.Item{} },
			"stock", "opening_stock",
		),
	}
}

// List returns items ordered by name.
func (r *ItemRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*item.Item], error) {
	q := r.baseSelect()
	if filter.Search != "" {
		q = q.Where(searchWhere(filter.Search, "barcode"))
	}
	return r.Page(ctx, q, filter)
}
