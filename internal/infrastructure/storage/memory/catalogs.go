package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/id"
	"tradebook/internal/domain"
	"tradebook/internal/domain/catalogs/item"
	"tradebook/internal/domain/catalogs/party"
	"tradebook/internal/domain/documents/invoice"
	"tradebook/internal/domain/documents/payment"
)

func matchesSearch(name, search string) bool {
	return search == "" || strings.Contains(strings.ToLower(name), strings.ToLower(search))
}

// --- Parties ---

// PartyRepo implements party.Repository.
type PartyRepo struct {
	store *Store
}

var _ party.Repository = (*PartyRepo)(nil)

// Parties returns the party repository.
func (s *Store) Parties() *PartyRepo { return &PartyRepo{store: s} }

func (r *PartyRepo) Create(ctx context.Context, p *party.Party) error {
	return r.store.write(ctx, "party.create", func(st *state) error {
		if _, ok := st.parties[p.ID]; ok {
			return apperror.NewDuplicate("party", "id", p.ID.String())
		}
		st.parties[p.ID] = *p
		return nil
	})
}

func (r *PartyRepo) GetByID(ctx context.Context, partyID id.ID) (*party.Party, error) {
	var out party.Party
	err := r.store.read(ctx, "party.get", func(st *state) error {
		p, ok := st.parties[partyID]
		if !ok {
			return apperror.NewNotFound("party", partyID.String())
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetByIDForShare is GetByID; transactions already hold the store lock.
func (r *PartyRepo) GetByIDForShare(ctx context.Context, partyID id.ID) (*party.Party, error) {
	return r.GetByID(ctx, partyID)
}

// GetByIDForUpdate is GetByID; transactions already hold the store lock.
func (r *PartyRepo) GetByIDForUpdate(ctx context.Context, partyID id.ID) (*party.Party, error) {
	return r.GetByID(ctx, partyID)
}

func (r *PartyRepo) Update(ctx context.Context, p *party.Party) error {
	return r.store.write(ctx, "party.update", func(st *state) error {
		current, ok := st.parties[p.ID]
		if !ok {
			return apperror.NewNotFound("party", p.ID.String())
		}
		if current.Version != p.Version {
			return apperror.NewConcurrentModification("party", p.ID.String())
		}
		updated := *p
		updated.CreatedAt = current.CreatedAt
		updated.Touch()
		st.parties[p.ID] = updated
		p.Version = updated.Version
		p.UpdatedAt = updated.UpdatedAt
		return nil
	})
}

func (r *PartyRepo) List(ctx context.Context, filter party.ListFilter) (domain.ListResult[*party.Party], error) {
	var all []*party.Party
	err := r.store.read(ctx, "party.list", func(st *state) error {
		for _, p := range st.parties {
			if filter.Type != nil && p.Type != *filter.Type {
				continue
			}
			if !matchesSearch(p.Name, filter.Search) && !strings.Contains(p.Mobile, filter.Search) {
				continue
			}
			all = append(all, &p)
		}
		return nil
	})
	if err != nil {
		return domain.ListResult[*party.Party]{}, err
	}
	sortByName(all, func(p *party.Party) (string, id.ID) { return p.Name, p.ID })
	return domain.Paginate(all, filter.ListFilter), nil
}

func (r *PartyRepo) ListAll(ctx context.Context) ([]*party.Party, error) {
	var all []*party.Party
	err := r.store.read(ctx, "party.list", func(st *state) error {
		for _, p := range st.parties {
			all = append(all, &p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortByName(all, func(p *party.Party) (string, id.ID) { return p.Name, p.ID })
	return all, nil
}

func (r *PartyRepo) HasActivity(ctx context.Context, partyID id.ID) (bool, error) {
	var found bool
	err := r.store.read(ctx, "party.activity", func(st *state) error {
		found = slices.ContainsFunc(st.invoices, func(inv invoice.Invoice) bool { return inv.PartyID == partyID }) ||
			slices.ContainsFunc(st.payments, func(p payment.Payment) bool { return p.PartyID == partyID })
		return nil
	})
	return found, err
}

// --- Items ---

// ItemRepo implements item.Repository.
type ItemRepo struct {
	store *Store
}

var _ item.Repository = (*ItemRepo)(nil)

// Items returns the item repository.
func (s *Store) Items() *ItemRepo { return &ItemRepo{store: s} }

func (r *ItemRepo) Create(ctx context.Context, it *item.Item) error {
	return r.store.write(ctx, "item.create", func(st *state) error {
		if _, ok := st.items[it.ID]; ok {
			return apperror.NewDuplicate("item", "id", it.ID.String())
		}
		st.items[it.ID] = *it
		return nil
	})
}

func (r *ItemRepo) GetByID(ctx context.Context, itemID id.ID) (*item.Item, error) {
	var out item.Item
	err := r.store.read(ctx, "item.get", func(st *state) error {
		it, ok := st.items[itemID]
		if !ok {
			return apperror.NewNotFound("item", itemID.String())
		}
		out = it
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ItemRepo) Update(ctx context.Context, it *item.Item) error {
	return r.store.write(ctx, "item.update", func(st *state) error {
		current, ok := st.items[it.ID]
		if !ok {
			return apperror.NewNotFound("item", it.ID.String())
		}
		if current.Version != it.Version {
			return apperror.NewConcurrentModification("item", it.ID.String())
		}
		updated := *it
		updated.CreatedAt = current.CreatedAt
		updated.OpeningStock = current.OpeningStock
		updated.Stock = current.Stock
		updated.Touch()
		st.items[it.ID] = updated

		it.Version = updated.Version
		it.UpdatedAt = updated.UpdatedAt
		it.Stock = updated.Stock
		it.OpeningStock = updated.OpeningStock
		return nil
	})
}

func (r *ItemRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*item.Item], error) {
	var all []*item.Item
	err := r.store.read(ctx, "item.list", func(st *state) error {
		for _, it := range st.items {
			if !matchesSearch(it.Name, filter.Search) {
				continue
			}
			all = append(all, &it)
		}
		return nil
	})
	if err != nil {
		return domain.ListResult[*item.Item]{}, err
	}
	sortByName(all, func(it *item.Item) (string, id.ID) { return it.Name, it.ID })
	return domain.Paginate(all, filter), nil
}

// sortByName orders records by name, then id, so map iteration order never leaks.
func sortByName[T any](records []T, key func(T) (string, id.ID)) {
	slices.SortFunc(records, func(a, b T) int {
		an, aid := key(a)
		bn, bid := key(b)
		if c := cmp.Compare(an, bn); c != 0 {
			return c
		}
		return cmp.Compare(aid.String(), bid.String())
	})
}
