package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/entity"
	"tradebook/internal/core/id"
	"tradebook/internal/core/tx"
	"tradebook/internal/core/types"
	"tradebook/internal/domain"
	"tradebook/internal/domain/catalogs/party"
	"tradebook/pkg/logger"
)

// PartyReader resolves payment parties.
type PartyReader interface {
	GetByID(ctx context.Context, id id.ID) (*party.Party, error)
}

// Service records payments.
type Service struct {
	repo      Repository
	parties   PartyReader
	events    domain.EventPublisher
	txManager tx.Manager
}

// NewService creates a new payment service.
func NewService(repo Repository, parties PartyReader, events domain.EventPublisher, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		parties:   parties,
		events:    events,
		txManager: txManager,
	}
}

// RecordInput is a request to record a payment.
type RecordInput struct {
	PartyID   id.ID
	Amount    types.Money
	Date      time.Time
	Mode      Mode
	Reference string
	Notes     string
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Record validates and stores a payment together with its outbox event.
func (s *Service) Record(ctx context.Context, in RecordInput) (*Payment, error) {
	p := &Payment{
		Document:  entity.NewDocument(in.Date),
		PartyID:   in.PartyID,
		Amount:    in.Amount,
		Mode:      in.Mode,
		Reference: optional(in.Reference),
		Notes:     optional(in.Notes),
	}
	if err := p.Validate(ctx); err != nil {
		return nil, err
	}

	if _, err := s.parties.GetByID(ctx, in.PartyID); err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewValidation("party not found").
				WithDetail("field", "partyId").
				WithDetail("value", in.PartyID.String())
		}
		return nil, fmt.Errorf("resolve party: %w", err)
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, p); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
		return s.events.Publish(ctx, domain.Event{
			AggregateType: "payment",
			AggregateID:   p.ID.String(),
			EventType:     domain.EventPaymentRecorded,
			Payload:       p,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "payment recorded", "payment_id", p.ID, "party_id", p.PartyID, "amount", p.Amount)
	return p, nil
}

// GetByID returns a payment or a NotFound error.
func (s *Service) GetByID(ctx context.Context, paymentID id.ID) (*Payment, error) {
	return s.repo.GetByID(ctx, paymentID)
}

// List returns payments newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Payment], error) {
	filter.ListFilter = filter.ListFilter.Normalize()
	return s.repo.List(ctx, filter)
}
