package memory

import (
	"context"
	"slices"
	"strings"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/id"
	"tradebook/internal/domain"
	"tradebook/internal/domain/documents/invoice"
	"tradebook/internal/domain/documents/payment"
)

// --- Invoices ---

// InvoiceRepo implements invoice.Repository. Records are kept in creation order.
type InvoiceRepo struct {
	store *Store
}

var _ invoice.Repository = (*InvoiceRepo)(nil)

// Invoices returns the invoice repository.
func (s *Store) Invoices() *InvoiceRepo { return &InvoiceRepo{store: s} }

func copyInvoice(inv invoice.Invoice, withLines bool) *invoice.Invoice {
	if withLines {
		inv.Lines = slices.Clone(inv.Lines)
	} else {
		inv.Lines = nil
	}
	return &inv
}

func (r *InvoiceRepo) Create(ctx context.Context, inv *invoice.Invoice) error {
	return r.store.write(ctx, "invoice.create", func(st *state) error {
		for _, existing := range st.invoices {
			if existing.ID == inv.ID {
				return apperror.NewDuplicate("invoice", "id", inv.ID.String())
			}
			if existing.InvoiceNo == inv.InvoiceNo {
				return apperror.NewDuplicate("invoice", "invoiceNo", inv.InvoiceNo)
			}
		}
		st.invoices = append(st.invoices, *copyInvoice(*inv, true))
		return nil
	})
}

func (r *InvoiceRepo) GetByID(ctx context.Context, invoiceID id.ID) (*invoice.Invoice, error) {
	var out *invoice.Invoice
	err := r.store.read(ctx, "invoice.get", func(st *state) error {
		for _, inv := range st.invoices {
			if inv.ID == invoiceID {
				out = copyInvoice(inv, true)
				return nil
			}
		}
		return apperror.NewNotFound("invoice", invoiceID.String())
	})
	return out, err
}

func (r *InvoiceRepo) List(ctx context.Context, filter invoice.ListFilter) (domain.ListResult[*invoice.Invoice], error) {
	var all []*invoice.Invoice
	err := r.store.read(ctx, "invoice.list", func(st *state) error {
		for i := len(st.invoices) - 1; i >= 0; i-- {
			inv := st.invoices[i]
			if filter.PartyID != nil && inv.PartyID != *filter.PartyID {
				continue
			}
			if filter.Type != nil && inv.Type != *filter.Type {
				continue
			}
			if !filter.Dates.Contains(inv.Date) {
				continue
			}
			if filter.Search != "" &&
				!matchesSearch(inv.PartyName, filter.Search) &&
				!strings.Contains(strings.ToLower(inv.InvoiceNo), strings.ToLower(filter.Search)) {
				continue
			}
			all = append(all, copyInvoice(inv, true))
		}
		return nil
	})
	if err != nil {
		return domain.ListResult[*invoice.Invoice]{}, err
	}
	slices.SortStableFunc(all, func(a, b *invoice.Invoice) int { return b.Date.Compare(a.Date) })
	return domain.Paginate(all, filter.ListFilter), nil
}

func (r *InvoiceRepo) ListByParty(ctx context.Context, partyID id.ID, dates domain.DateRange) ([]*invoice.Invoice, error) {
	var out []*invoice.Invoice
	err := r.store.read(ctx, "invoice.list", func(st *state) error {
		for _, inv := range st.invoices {
			if inv.PartyID == partyID && dates.Contains(inv.Date) {
				out = append(out, copyInvoice(inv, false))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(out, func(a, b *invoice.Invoice) int { return a.Date.Compare(b.Date) })
	return out, nil
}

// --- Payments ---

// PaymentRepo implements payment.Repository. Records are kept in creation order.
type PaymentRepo struct {
	store *Store
}

var _ payment.Repository = (*PaymentRepo)(nil)

// Payments returns the payment repository.
func (s *Store) Payments() *PaymentRepo { return &PaymentRepo{store: s} }

func (r *PaymentRepo) Create(ctx context.Context, p *payment.Payment) error {
	return r.store.write(ctx, "payment.create", func(st *state) error {
		if slices.ContainsFunc(st.payments, func(existing payment.Payment) bool { return existing.ID == p.ID }) {
			return apperror.NewDuplicate("payment", "id", p.ID.String())
		}
		st.payments = append(st.payments, *p)
		return nil
	})
}

func (r *PaymentRepo) GetByID(ctx context.Context, paymentID id.ID) (*payment.Payment, error) {
	var out payment.Payment
	err := r.store.read(ctx, "payment.get", func(st *state) error {
		i := slices.IndexFunc(st.payments, func(p payment.Payment) bool { return p.ID == paymentID })
		if i < 0 {
			return apperror.NewNotFound("payment", paymentID.String())
		}
		out = st.payments[i]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *PaymentRepo) List(ctx context.Context, filter payment.ListFilter) (domain.ListResult[*payment.Payment], error) {
	var all []*payment.Payment
	err := r.store.read(ctx, "payment.list", func(st *state) error {
		for i := len(st.payments) - 1; i >= 0; i-- {
			p := st.payments[i]
			if filter.PartyID != nil && p.PartyID != *filter.PartyID {
				continue
			}
			all = append(all, &p)
		}
		return nil
	})
	if err != nil {
		return domain.ListResult[*payment.Payment]{}, err
	}
	slices.SortStableFunc(all, func(a, b *payment.Payment) int { return b.Date.Compare(a.Date) })
	return domain.Paginate(all, filter.ListFilter), nil
}

func (r *PaymentRepo) ListByParty(ctx context.Context, partyID id.ID, dates domain.DateRange) ([]*payment.Payment, error) {
	var out []*payment.Payment
	err := r.store.read(ctx, "payment.list", func(st *state) error {
		for _, p := range st.payments {
			if p.PartyID == partyID && dates.Contains(p.Date) {
				out = append(out, &p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(out, func(a, b *payment.Payment) int { return a.Date.Compare(b.Date) })
	return out, nil
}
