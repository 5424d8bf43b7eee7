package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/entity"
	"tradebook/internal/core/id"
	"tradebook/internal/core/numerator"
	"tradebook/internal/core/tx"
	"tradebook/internal/core/types"
	"tradebook/internal/domain"
	"tradebook/pkg/logger"
)

var tracer = otel.Tracer("tradebook/stock")

// Service keeps Item.Stock consistent with the applied documents.
type Service struct {
	repo      Repository
	txManager tx.ReadOnlyManager
	numerator numerator.Generator
	events    domain.EventPublisher
}

// NewService creates a new stock register service.
func NewService(repo Repository, txManager tx.ReadOnlyManager, num numerator.Generator, events domain.EventPublisher) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		numerator: num,
		events:    events,
	}
}

// ApplyInvoice increments stock for every line of p that references an
// existing item and logs one movement per such line. Lines whose item cannot
// be resolved are skipped. It joins the caller's transaction when ctx has one.
func (s *Service) ApplyInvoice(ctx context.Context, p Posting) ([]Movement, error) {
	if p.Direction != DirectionIn && p.Direction != DirectionOut {
		return nil, fmt.Errorf("apply %s: unsupported direction %q", p.ReferenceID, p.Direction)
	}

	var movements []Movement
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		movements = make([]Movement, 0, len(p.Lines))
		for _, line := range p.Lines {
			if line.ItemID == nil {
				continue
			}

			delta := Delta(p.Direction, line.Qty)
			name, found, err := s.repo.AddStock(ctx, *line.ItemID, delta)
			if err != nil {
				return fmt.Errorf("add stock %s: %w", line.ItemID, err)
			}
			if !found {
				logger.Debug(ctx, "skipping line with unknown item",
					"reference_id", p.ReferenceID, "item_id", line.ItemID)
				continue
			}

			movements = append(movements, Movement{
				MovementBase: entity.NewMovementBase(p.ReferenceID),
				ItemID:       *line.ItemID,
				ItemName:     name,
				Qty:          delta,
				Direction:    p.Direction,
			})
		}

		if len(movements) == 0 {
			return nil
		}
		if err := s.repo.CreateMovements(ctx, movements); err != nil {
			return fmt.Errorf("create movements: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "applied stock posting",
		"reference_id", p.ReferenceID,
		"direction", p.Direction,
		"movements", len(movements),
	)
	return movements, nil
}

// AdjustInput is a manual stock correction.
type AdjustInput struct {
	ItemID id.ID
	Delta  types.Quantity
	Reason string
}

// Adjust applies a manual correction in its own transaction.
func (s *Service) Adjust(ctx context.Context, in AdjustInput) (*Movement, error) {
	if in.Delta.IsZero() {
		return nil, apperror.NewValidation("adjustment quantity must not be zero").
			WithDetail("field", "qty")
	}

	var m *Movement
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		ref, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("ADJ"), nil, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("generate adjustment number: %w", err)
		}

		name, found, err := s.repo.AddStock(ctx, in.ItemID, in.Delta)
		if err != nil {
			return fmt.Errorf("add stock %s: %w", in.ItemID, err)
		}
		if !found {
			return apperror.NewNotFound("item", in.ItemID.String())
		}

		m = &Movement{
			MovementBase: entity.NewMovementBase(ref),
			ItemID:       in.ItemID,
			ItemName:     name,
			Qty:          in.Delta,
			Direction:    DirectionAdjustment,
		}
		if in.Reason != "" {
			m.Reason = &in.Reason
		}

		if err := s.repo.CreateMovements(ctx, []Movement{*m}); err != nil {
			return fmt.Errorf("create movements: %w", err)
		}

		return s.events.Publish(ctx, domain.Event{
			AggregateType: "item",
			AggregateID:   in.ItemID.String(),
			EventType:     domain.EventStockAdjusted,
			Payload:       m,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock adjusted", "item_id", in.ItemID, "delta", in.Delta, "reference_id", m.ReferenceID)
	return m, nil
}

// ValuationRow is one item of the stock report.
type ValuationRow struct {
	ItemID       id.ID          `json:"id"`
	Name         string         `json:"name"`
	Unit         string         `json:"unit"`
	PurchaseRate types.Money    `json:"purchaseRate"`
	Stock        types.Quantity `json:"stock"`
	Value        types.Money    `json:"value"`
}

// Valuation is the stock report.
type Valuation struct {
	Items       []ValuationRow `json:"items"`
	TotalValue  types.Money    `json:"totalValue"`
	GeneratedAt time.Time      `json:"generatedAt"`
}

// Valuation values every item at stock * purchaseRate, sorted by name.
// Always computed from current item state.
func (s *Service) Valuation(ctx context.Context) (*Valuation, error) {
	ctx, span := tracer.Start(ctx, "stock.valuation")
	defer span.End()

	var items []ItemStock
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		items, err = s.repo.ListItemStock(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("stock valuation: %w", err)
	}

	report := &Valuation{
		Items:       make([]ValuationRow, 0, len(items)),
		TotalValue:  decimal.Zero,
		GeneratedAt: time.Now().UTC(),
	}
	for _, it := range items {
		value := types.Round2(it.Stock.Decimal().Mul(it.PurchaseRate))
		report.Items = append(report.Items, ValuationRow{
			ItemID:       it.ItemID,
			Name:         it.Name,
			Unit:         it.Unit,
			PurchaseRate: it.PurchaseRate,
			Stock:        it.Stock,
			Value:        value,
		})
		report.TotalValue = report.TotalValue.Add(value)
	}
	span.SetAttributes(attribute.Int("stock.items", len(items)))

	return report, nil
}

// Movements returns movement history, newest first.
func (s *Service) Movements(ctx context.Context, filter MovementFilter) (domain.ListResult[Movement], error) {
	filter.ListFilter = filter.ListFilter.Normalize()
	return s.repo.ListMovements(ctx, filter)
}

// Discrepancy is an item whose stock is not explained by its movements.
type Discrepancy struct {
	ItemID       id.ID          `json:"itemId"`
	Name         string         `json:"name"`
	OpeningStock types.Quantity `json:"openingStock"`
	Stock        types.Quantity `json:"stock"`
	MovementSum  types.Quantity `json:"movementSum"`
	Difference   types.Quantity `json:"difference"`
}

// ReconcileReport lists everything Reconcile found.
type ReconcileReport struct {
	ItemsChecked      int           `json:"itemsChecked"`
	Discrepancies     []Discrepancy `json:"discrepancies"`
	UnappliedInvoices []string      `json:"unappliedInvoices"`
}

// Clean reports whether the register is consistent.
func (r *ReconcileReport) Clean() bool {
	return len(r.Discrepancies) == 0 && len(r.UnappliedInvoices) == 0
}

// Reconcile checks Stock == OpeningStock + Σ movements for every item and
// looks for invoices with no stock effect. Findings are returned in the
// report and as a PartialApplication error for manual reconciliation.
func (s *Service) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	ctx, span := tracer.Start(ctx, "stock.reconcile")
	defer span.End()

	var (
		balances []ItemBalance
		refs     []string
	)
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		if balances, err = s.repo.ListItemBalances(ctx); err != nil {
			return err
		}
		refs, err = s.repo.ListUnappliedReferences(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("reconcile stock: %w", err)
	}

	report := &ReconcileReport{
		ItemsChecked:      len(balances),
		Discrepancies:     []Discrepancy{},
		UnappliedInvoices: refs,
	}
	if report.UnappliedInvoices == nil {
		report.UnappliedInvoices = []string{}
	}
	for _, b := range balances {
		expected := b.OpeningStock + b.MovementSum
		if b.Stock == expected {
			continue
		}
		report.Discrepancies = append(report.Discrepancies, Discrepancy{
			ItemID:       b.ItemID,
			Name:         b.Name,
			OpeningStock: b.OpeningStock,
			Stock:        b.Stock,
			MovementSum:  b.MovementSum,
			Difference:   b.Stock - expected,
		})
	}

	if report.Clean() {
		logger.Info(ctx, "stock register consistent", "items", report.ItemsChecked)
		return report, nil
	}

	logger.Error(ctx, "stock register inconsistent",
		"discrepancies", len(report.Discrepancies),
		"unapplied_invoices", report.UnappliedInvoices,
	)
	return report, apperror.NewPartialApplication("stock register does not match documents").
		WithDetail("discrepancies", report.Discrepancies).
		WithDetail("unapplied_invoices", report.UnappliedInvoices)
}
