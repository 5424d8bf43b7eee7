package invoice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/entity"
	"tradebook/internal/core/id"
	"tradebook/internal/core/numerator"
	"tradebook/internal/core/tx"
	"tradebook/internal/core/types"
	"tradebook/internal/domain"
	"tradebook/internal/domain/catalogs/item"
	"tradebook/internal/domain/catalogs/party"
	"tradebook/internal/domain/registers/stock"
	"tradebook/pkg/logger"
)

// PartyReader resolves invoice parties. GetByIDForShare must keep the party
// from changing until the surrounding transaction ends.
type PartyReader interface {
	GetByID(ctx context.Context, id id.ID) (*party.Party, error)
	GetByIDForShare(ctx context.Context, id id.ID) (*party.Party, error)
}

// ItemReader resolves line items for snapshots.
type ItemReader interface {
	GetByID(ctx context.Context, id id.ID) (*item.Item, error)
}

// StockApplier applies the stock effect of an invoice.
type StockApplier interface {
	ApplyInvoice(ctx context.Context, p stock.Posting) ([]stock.Movement, error)
}

// Service assembles and stores invoices.
type Service struct {
	repo      Repository
	parties   PartyReader
	items     ItemReader
	stock     StockApplier
	numerator numerator.Generator
	events    domain.EventPublisher
	txManager tx.Manager
	cfg       Config
	hooks     *domain.HookRegistry[*Invoice]
}

// NewService creates a new invoice service.
func NewService(
	repo Repository,
	parties PartyReader,
	items ItemReader,
	stockApplier StockApplier,
	num numerator.Generator,
	events domain.EventPublisher,
	txManager tx.Manager,
	cfg Config,
) *Service {
	if cfg.CreditDueDays <= 0 {
		cfg.CreditDueDays = DefaultCreditDueDays
	}
	return &Service{
		repo:      repo,
		parties:   parties,
		items:     items,
		stock:     stockApplier,
		numerator: num,
		events:    events,
		txManager: txManager,
		cfg:       cfg,
		hooks:     domain.NewHookRegistry[*Invoice](),
	}
}

// Hooks exposes lifecycle hooks. BeforeCreate hooks run inside the creating
// transaction, AfterCreate hooks after commit.
func (s *Service) Hooks() *domain.HookRegistry[*Invoice] {
	return s.hooks
}

// LineInput is one cart entry.
type LineInput struct {
	ItemID          *id.ID
	Name            string
	Qty             types.Quantity
	Rate            types.Money
	DiscountPercent types.Percent
	// TaxPercent defaults to the item's rate when nil.
	TaxPercent *types.Percent
}

// CreateInput is a validated-by-Create request to issue an invoice.
type CreateInput struct {
	Type           Type
	PartyID        id.ID
	Date           time.Time
	PaymentMode    PaymentMode
	PaymentDetails *string
	RoundOff       types.Money
	Lines          []LineInput
}

// Create validates the cart, snapshots party and item data, prices the
// lines and stores the invoice together with its stock movements in one
// transaction. Nothing is persisted when any step fails.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Invoice, error) {
	inv, err := s.assemble(ctx, in)
	if err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		// the party may have changed type since assemble read it
		p, err := s.parties.GetByIDForShare(ctx, inv.PartyID)
		if err = bindParty(inv, p, err); err != nil {
			return err
		}

		cfg := numerator.DefaultConfig(NumberPrefix)
		number, err := s.numerator.GetNextNumber(ctx, cfg, &numerator.Options{Strategy: NumeratorStrategy}, inv.Date)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		inv.InvoiceNo = number

		if err := s.hooks.Run(ctx, domain.BeforeCreate, inv); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, inv); err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		if _, err := s.stock.ApplyInvoice(ctx, inv.Posting()); err != nil {
			return fmt.Errorf("apply stock: %w", err)
		}
		return s.events.Publish(ctx, domain.Event{
			AggregateType: "invoice",
			AggregateID:   inv.ID.String(),
			EventType:     domain.EventInvoiceCreated,
			Payload:       inv,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "invoice created",
		"invoice_id", inv.ID,
		"invoice_no", inv.InvoiceNo,
		"type", inv.Type,
		"grand_total", inv.GrandTotal,
	)

	if err := s.hooks.Run(ctx, domain.AfterCreate, inv); err != nil {
		logger.Warn(ctx, "after-create hook failed", "invoice_id", inv.ID, "error", err)
	}
	return inv, nil
}

// assemble builds and prices the invoice without touching storage writes.
func (s *Service) assemble(ctx context.Context, in CreateInput) (*Invoice, error) {
	inv := &Invoice{
		Document:       entity.NewDocument(in.Date),
		PartyID:        in.PartyID,
		Type:           in.Type,
		RoundOff:       in.RoundOff,
		PaymentMode:    in.PaymentMode,
		PaymentDetails: in.PaymentDetails,
		Lines:          make([]Line, len(in.Lines)),
	}
	for i, l := range in.Lines {
		inv.Lines[i] = Line{
			ItemID:          l.ItemID,
			Name:            strings.TrimSpace(l.Name),
			Qty:             l.Qty,
			Rate:            l.Rate,
			DiscountPercent: l.DiscountPercent,
		}
		if l.TaxPercent != nil {
			inv.Lines[i].TaxPercent = *l.TaxPercent
		}
	}

	// tax is validated again after item snapshots fill the omitted rates
	if err := inv.Validate(ctx); err != nil {
		return nil, err
	}

	p, err := s.parties.GetByID(ctx, in.PartyID)
	if err = bindParty(inv, p, err); err != nil {
		return nil, err
	}

	for i := range inv.Lines {
		if err := s.snapshotItem(ctx, &inv.Lines[i], in.Lines[i].TaxPercent == nil); err != nil {
			return nil, err
		}
		if inv.Lines[i].Name == "" {
			return nil, apperror.NewValidation("line name is required when the item is unknown").
				WithDetail("field", fmt.Sprintf("lines[%d].name", i))
		}
	}
	if err := inv.Validate(ctx); err != nil {
		return nil, err
	}

	inv.Price()
	if inv.IsCredit() {
		due := inv.Date.AddDate(0, 0, s.cfg.CreditDueDays)
		inv.DueDate = &due
	}
	return inv, nil
}

// bindParty checks the result of a party lookup against the invoice
// direction and snapshots the party name.
func bindParty(inv *Invoice, p *party.Party, err error) error {
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewValidation("party not found").
				WithDetail("field", "partyId").
				WithDetail("value", inv.PartyID.String())
		}
		return fmt.Errorf("resolve party: %w", err)
	}
	if p.Type != inv.Type.PartyType() {
		return apperror.NewPartyTypeMismatch(string(inv.Type), string(p.Type))
	}
	inv.PartyName = p.Name
	return nil
}

// snapshotItem copies item master data onto the line. Unknown items leave
// the line ad hoc: it is totalled but moves no stock.
func (s *Service) snapshotItem(ctx context.Context, line *Line, takeTax bool) error {
	if line.ItemID == nil {
		return nil
	}

	it, err := s.items.GetByID(ctx, *line.ItemID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("resolve item %s: %w", line.ItemID, err)
	}

	line.Name = it.Name
	if takeTax {
		line.TaxPercent = it.TaxPercent
	}
	return nil
}

// GetByID returns an invoice or a NotFound error.
func (s *Service) GetByID(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	return s.repo.GetByID(ctx, invoiceID)
}

// List returns invoices newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Invoice], error) {
	filter.ListFilter = filter.ListFilter.Normalize()
	return s.repo.List(ctx, filter)
}
