package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/id"
	"tradebook/internal/domain"
	"tradebook/internal/domain/catalogs/party"
	"tradebook/internal/infrastructure/storage/postgres"
)

const partyTable = "cat_parties"

// PartyRepo implements party.Repository.
type PartyRepo struct {
	*BaseCatalogRepo[*party.Party]
}

var _ party.Repository = (*PartyRepo)(nil)

// NewPartyRepo creates a new party repository.
func NewPartyRepo(txManager *postgres.TxManager) *PartyRepo {
	return &PartyRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*party.Party](
			txManager,
			partyTable, "party",
			postgres.ExtractDBColumns[party.Party](),
			func() *party.Party { return &party.Party{} },
		),
	}
}

func (r *PartyRepo) listQuery(filter party.ListFilter) squirrel.SelectBuilder {
	q := r.baseSelect()
	if filter.Type != nil {
		q = q.Where(squirrel.Eq{"type": *filter.Type})
	}
	if filter.Search != "" {
		q = q.Where(searchWhere(filter.Search, "mobile"))
	}
	return q
}

// List returns parties ordered by name.
func (r *PartyRepo) List(ctx context.Context, filter party.ListFilter) (domain.ListResult[*party.Party], error) {
	return r.Page(ctx, r.listQuery(filter), filter.ListFilter)
}

// ListAll returns every party ordered by name.
func (r *PartyRepo) ListAll(ctx context.Context) ([]*party.Party, error) {
	return r.FindAll(ctx, r.baseSelect().OrderBy("name", "id"))
}

// GetByIDForShare reads a party and holds a share lock on its row.
func (r *PartyRepo) GetByIDForShare(ctx context.Context, partyID id.ID) (*party.Party, error) {
	return r.getLocked(ctx, partyID, "FOR SHARE")
}

// GetByIDForUpdate reads a party and holds a write lock on its row.
func (r *PartyRepo) GetByIDForUpdate(ctx context.Context, partyID id.ID) (*party.Party, error) {
	return r.getLocked(ctx, partyID, "FOR UPDATE")
}

func (r *PartyRepo) getLocked(ctx context.Context, partyID id.ID, lock string) (*party.Party, error) {
	p, err := r.FindOne(ctx, r.lockQuery(partyID, lock))
	if apperror.IsNotFound(err) {
		return nil, apperror.NewNotFound("party", partyID.String())
	}
	return p, err
}

func (r *PartyRepo) lockQuery(partyID id.ID, lock string) squirrel.SelectBuilder {
	return r.baseSelect().Where(squirrel.Eq{"id": partyID}).Suffix(lock)
}

// HasActivity reports whether any invoice or payment references the party.
func (r *PartyRepo) HasActivity(ctx context.Context, partyID id.ID) (bool, error) {
	var active bool
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM doc_invoices WHERE party_id = $1)
		    OR EXISTS (SELECT 1 FROM doc_payments WHERE party_id = $1)
	`, partyID).Scan(&active)
	if err != nil {
		return false, postgres.StorageError("check party activity", err)
	}
	return active, nil
}
