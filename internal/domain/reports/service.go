package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"tradebook/internal/core/id"
	"tradebook/internal/core/tx"
	"tradebook/internal/core/types"
	"tradebook/internal/domain"
	"tradebook/internal/domain/catalogs/party"
	"tradebook/internal/domain/documents/invoice"
	"tradebook/internal/domain/documents/payment"
)

var tracer = otel.Tracer("tradebook/reports")

// DefaultLowStockThreshold counts items with fewer than 10 units as low.
var DefaultLowStockThreshold = types.NewQuantity(10)

// PartyReader reads parties.
type PartyReader interface {
	GetByID(ctx context.Context, id id.ID) (*party.Party, error)
	ListAll(ctx context.Context) ([]*party.Party, error)
}

// InvoiceReader reads a party's invoices.
type InvoiceReader interface {
	ListByParty(ctx context.Context, partyID id.ID, dates domain.DateRange) ([]*invoice.Invoice, error)
}

// PaymentReader reads a party's payments.
type PaymentReader interface {
	ListByParty(ctx context.Context, partyID id.ID, dates domain.DateRange) ([]*payment.Payment, error)
}

// Config tunes report output.
type Config struct {
	LowStockThreshold types.Quantity
	RecentInvoices    int
}

// Service provides report generation operations. Every report reads from one
// snapshot, so a concurrently created invoice is seen whole or not at all.
type Service struct {
	repo      Repository
	parties   PartyReader
	invoices  InvoiceReader
	payments  PaymentReader
	txManager tx.ReadOnlyManager
	cfg       Config
}

// NewService creates a new reports service.
func NewService(
	repo Repository,
	parties PartyReader,
	invoices InvoiceReader,
	payments PaymentReader,
	txManager tx.ReadOnlyManager,
	cfg Config,
) *Service {
	if cfg.LowStockThreshold <= 0 {
		cfg.LowStockThreshold = DefaultLowStockThreshold
	}
	if cfg.RecentInvoices <= 0 {
		cfg.RecentInvoices = 5
	}
	return &Service{
		repo:      repo,
		parties:   parties,
		invoices:  invoices,
		payments:  payments,
		txManager: txManager,
		cfg:       cfg,
	}
}

// PartyLedger returns the chronological ledger of one party. An unknown
// party is a NotFound error, never an empty ledger.
func (s *Service) PartyLedger(ctx context.Context, partyID id.ID, dates domain.DateRange) (*PartyLedger, error) {
	ctx, span := tracer.Start(ctx, "reports.party_ledger")
	defer span.End()
	span.SetAttributes(attribute.String("party.id", partyID.String()))

	var ledger *PartyLedger
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		p, err := s.parties.GetByID(ctx, partyID)
		if err != nil {
			return err
		}
		invoices, err := s.invoices.ListByParty(ctx, partyID, dates)
		if err != nil {
			return fmt.Errorf("list invoices: %w", err)
		}
		payments, err := s.payments.ListByParty(ctx, partyID, dates)
		if err != nil {
			return fmt.Errorf("list payments: %w", err)
		}

		rows := BuildLedger(p, invoices, payments)
		closing := p.OpeningBalance
		if len(rows) > 0 {
			closing = rows[len(rows)-1].Balance
		}
		ledger = &PartyLedger{
			PartyID:        p.ID,
			PartyName:      p.Name,
			PartyType:      p.Type,
			OpeningBalance: p.OpeningBalance,
			From:           dates.From,
			To:             dates.To,
			Rows:           rows,
			ClosingBalance: closing,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("ledger.rows", len(ledger.Rows)))
	return ledger, nil
}

// Outstanding computes the current balance of every party in one pass over
// the aggregated totals.
func (s *Service) Outstanding(ctx context.Context) (*Outstanding, error) {
	ctx, span := tracer.Start(ctx, "reports.outstanding")
	defer span.End()

	var report *Outstanding
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		report, err = s.outstanding(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *Service) outstanding(ctx context.Context) (*Outstanding, error) {
	parties, err := s.parties.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list parties: %w", err)
	}
	totals, err := s.repo.PartyTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("party totals: %w", err)
	}

	byParty := make(map[id.ID]PartyTotals, len(totals))
	for _, t := range totals {
		byParty[t.PartyID] = t
	}

	report := &Outstanding{
		Rows:        make([]OutstandingRow, 0, len(parties)),
		Receivables: decimal.Zero,
		Payables:    decimal.Zero,
		GeneratedAt: time.Now().UTC(),
	}
	for _, p := range parties {
		row := OutstandingFor(p, byParty[p.ID])
		report.Rows = append(report.Rows, row)
		if !row.CurrentBalance.IsPositive() {
			continue
		}
		if p.Type == party.TypeCustomer {
			report.Receivables = report.Receivables.Add(row.CurrentBalance)
		} else {
			report.Payables = report.Payables.Add(row.CurrentBalance)
		}
	}
	return report, nil
}

// Dashboard summarises sales, purchases, balances and stock.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	ctx, span := tracer.Start(ctx, "reports.dashboard")
	defer span.End()

	var d *Dashboard
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		totals, err := s.repo.InvoiceTotals(ctx)
		if err != nil {
			return fmt.Errorf("invoice totals: %w", err)
		}
		outstanding, err := s.outstanding(ctx)
		if err != nil {
			return err
		}
		low, err := s.repo.CountLowStock(ctx, s.cfg.LowStockThreshold)
		if err != nil {
			return fmt.Errorf("count low stock: %w", err)
		}
		recent, err := s.repo.RecentInvoices(ctx, s.cfg.RecentInvoices)
		if err != nil {
			return fmt.Errorf("recent invoices: %w", err)
		}

		d = &Dashboard{
			TotalSales:        totals.Sales,
			TotalPurchase:     totals.Purchases,
			Receivables:       outstanding.Receivables,
			Payables:          outstanding.Payables,
			LowStock:          low,
			LowStockThreshold: s.cfg.LowStockThreshold,
			RecentInvoices:    recent,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}
