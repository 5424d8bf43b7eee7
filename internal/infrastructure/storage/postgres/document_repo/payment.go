package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"tradebook/internal/core/id"
	"tradebook/internal/domain"
	"tradebook/internal/domain/documents/payment"
	"tradebook/internal/infrastructure/storage/postgres"
)

const paymentsTable = "doc_payments"

// PaymentRepo implements payment.Repository.
type PaymentRepo struct {
	*BaseDocumentRepo[*payment.Payment]
}

var _ payment.Repository = (*PaymentRepo)(nil)

// NewPaymentRepo creates a new payment repository.
func NewPaymentRepo(txManager *postgres.TxManager) *PaymentRepo {
	return &PaymentRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*payment.Payment](
			txManager,
			paymentsTable, "payment",
			postgres.ExtractDBColumns[payment.Payment](),
			func() *payment.Payment { return &payment.Payment{} },
		),
	}
}

// Create inserts a payment.
func (r *PaymentRepo) Create(ctx context.Context, p *payment.Payment) error {
	return r.insert(ctx, p)
}

// GetByID returns a payment or a NotFound error.
func (r *PaymentRepo) GetByID(ctx context.Context, paymentID id.ID) (*payment.Payment, error) {
	return r.getByID(ctx, paymentID)
}

// List returns payments newest first.
func (r *PaymentRepo) List(ctx context.Context, filter payment.ListFilter) (domain.ListResult[*payment.Payment], error) {
	q := r.baseSelect()
	if filter.PartyID != nil {
		q = q.Where(squirrel.Eq{"party_id": *filter.PartyID})
	}
	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"reference": "%" + filter.Search + "%"})
	}
	return r.page(ctx, q, filter.ListFilter)
}

// ListByParty returns the party's payments in document order.
func (r *PaymentRepo) ListByParty(ctx context.Context, partyID id.ID, dates domain.DateRange) ([]*payment.Payment, error) {
	return r.findAll(ctx, r.byParty(partyID, dates))
}
