package memory

import (
	"context"
	"slices"
	"strings"

	"tradebook/internal/core/id"
	"tradebook/internal/core/types"
	"tradebook/internal/domain"
	"tradebook/internal/domain/catalogs/item"
	"tradebook/internal/domain/documents/invoice"
	"tradebook/internal/domain/registers/stock"
)

// StockRepo implements stock.Repository.
type StockRepo struct {
	store *Store
}

var _ stock.Repository = (*StockRepo)(nil)

// Stock returns the stock register repository.
func (s *Store) Stock() *StockRepo { return &StockRepo{store: s} }

func (r *StockRepo) AddStock(ctx context.Context, itemID id.ID, delta types.Quantity) (string, bool, error) {
	var (
		name  string
		found bool
	)
	err := r.store.write(ctx, "stock.add", func(st *state) error {
		it, ok := st.items[itemID]
		if !ok {
			return nil
		}
		it.Stock += delta
		st.items[itemID] = it
		name, found = it.Name, true
		return nil
	})
	return name, found, err
}

func (r *StockRepo) CreateMovements(ctx context.Context, movements []stock.Movement) error {
	if len(movements) == 0 {
		return nil
	}
	return r.store.write(ctx, "stock.movements", func(st *state) error {
		st.movements = append(st.movements, movements...)
		return nil
	})
}

func (r *StockRepo) ListMovements(ctx context.Context, filter stock.MovementFilter) (domain.ListResult[stock.Movement], error) {
	var all []stock.Movement
	err := r.store.read(ctx, "stock.list", func(st *state) error {
		for i := len(st.movements) - 1; i >= 0; i-- {
			m := st.movements[i]
			if filter.ItemID != nil && m.ItemID != *filter.ItemID {
				continue
			}
			if filter.ReferenceID != "" && m.ReferenceID != filter.ReferenceID {
				continue
			}
			if !matchesSearch(m.ItemName, filter.Search) {
				continue
			}
			all = append(all, m)
		}
		return nil
	})
	if err != nil {
		return domain.ListResult[stock.Movement]{}, err
	}
	return domain.Paginate(all, filter.ListFilter), nil
}

func itemStock(it item.Item) stock.ItemStock {
	return stock.ItemStock{
		ItemID:       it.ID,
		Name:         it.Name,
		Unit:         it.Unit,
		PurchaseRate: it.PurchaseRate,
		OpeningStock: it.OpeningStock,
		Stock:        it.Stock,
	}
}

func (r *StockRepo) ListItemStock(ctx context.Context) ([]stock.ItemStock, error) {
	var out []stock.ItemStock
	err := r.store.read(ctx, "stock.items", func(st *state) error {
		for _, it := range st.items {
			out = append(out, itemStock(it))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortByName(out, func(s stock.ItemStock) (string, id.ID) { return s.Name, s.ItemID })
	return out, nil
}

func (r *StockRepo) ListItemBalances(ctx context.Context) ([]stock.ItemBalance, error) {
	var out []stock.ItemBalance
	err := r.store.read(ctx, "stock.balances", func(st *state) error {
		sums := make(map[id.ID]types.Quantity, len(st.items))
		for _, m := range st.movements {
			sums[m.ItemID] += m.Qty
		}
		for _, it := range st.items {
			out = append(out, stock.ItemBalance{ItemStock: itemStock(it), MovementSum: sums[it.ID]})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortByName(out, func(b stock.ItemBalance) (string, id.ID) { return b.Name, b.ItemID })
	return out, nil
}

func (r *StockRepo) ListUnappliedReferences(ctx context.Context) ([]string, error) {
	var out []string
	err := r.store.read(ctx, "stock.unapplied", func(st *state) error {
		applied := make(map[string]bool, len(st.movements))
		for _, m := range st.movements {
			applied[m.ReferenceID] = true
		}
		for _, inv := range st.invoices {
			if applied[inv.InvoiceNo] {
				continue
			}
			stocked := slices.ContainsFunc(inv.Lines, func(l invoice.Line) bool {
				if l.ItemID == nil {
					return false
				}
				_, ok := st.items[*l.ItemID]
				return ok
			})
			if stocked {
				out = append(out, inv.InvoiceNo)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(out, strings.Compare)
	return out, nil
}
