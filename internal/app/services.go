package app

import (
	"context"

	"tradebook/internal/config"
	"tradebook/internal/domain/catalogs/item"
	"tradebook/internal/domain/catalogs/party"
	"tradebook/internal/domain/documents/invoice"
	"tradebook/internal/domain/documents/payment"
	"tradebook/internal/domain/registers/stock"
	"tradebook/internal/domain/reports"
	"tradebook/internal/infrastructure/metrics"
)

// Services is the domain service graph shared by the API and the CLI.
type Services struct {
	Parties  *party.Service
	Items    *item.Service
	Invoices *invoice.Service
	Payments *payment.Service
	Stock    *stock.Service
	Reports  *reports.Service
}

// NewServices builds every service on top of st. m may be nil.
func NewServices(st *Storage, cfg *config.Config, m *metrics.Metrics) *Services {
	stockSvc := stock.NewService(st.Stock, st.TxManager, st.Numerator, st.Events)

	invoiceSvc := invoice.NewService(
		st.Invoices,
		st.Parties,
		st.Items,
		stockSvc,
		st.Numerator,
		st.Events,
		st.TxManager,
		invoice.Config{CreditDueDays: cfg.CreditDueDays},
	)

	if m != nil {
		invoiceSvc.Hooks().OnAfterCreate(func(_ context.Context, inv *invoice.Invoice) error {
			m.InvoicesCreated.WithLabelValues(string(inv.Type), string(inv.PaymentMode)).Inc()
			return nil
		})
	}

	return &Services{
		Parties:  party.NewService(st.Parties, st.TxManager),
		Items:    item.NewService(st.Items),
		Invoices: invoiceSvc,
		Payments: payment.NewService(st.Payments, st.Parties, st.Events, st.TxManager),
		Stock:    stockSvc,
		Reports: reports.NewService(
			st.Reports,
			st.Parties,
			st.Invoices,
			st.Payments,
			st.TxManager,
			reports.Config{LowStockThreshold: cfg.LowStockThreshold},
		),
	}
}
