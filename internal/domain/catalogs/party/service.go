package party

import (
	"context"
	"fmt"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/id"
	"tradebook/internal/core/tx"
	"tradebook/internal/domain"
	"tradebook/pkg/logger"
)

// Service provides business logic for the Party catalog.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new Party service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// Create validates and stores a new party.
func (s *Service) Create(ctx context.Context, p *Party) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return fmt.Errorf("create party: %w", err)
	}
	logger.Info(ctx, "party created", "party_id", p.ID, "type", p.Type)
	return nil
}

// GetByID returns a party or a NotFound error.
func (s *Service) GetByID(ctx context.Context, partyID id.ID) (*Party, error) {
	return s.repo.GetByID(ctx, partyID)
}

// List returns parties ordered by name.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Party], error) {
	filter.ListFilter = filter.ListFilter.Normalize()
	return s.repo.List(ctx, filter)
}

// Update stores changed master data. The type of a party that already has
// invoices or payments is frozen, because the ledger's sign convention
// depends on it.
func (s *Service) Update(ctx context.Context, p *Party) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetByIDForUpdate(ctx, p.ID)
		if err != nil {
			return err
		}

		if current.Type != p.Type {
			active, err := s.repo.HasActivity(ctx, p.ID)
			if err != nil {
				return fmt.Errorf("check party activity: %w", err)
			}
			if active {
				return apperror.NewBusinessRule(apperror.CodePartyTypeLocked,
					"party type cannot change once invoices or payments reference the party").
					WithDetail("party_id", p.ID.String()).
					WithDetail("type", string(current.Type))
			}
		}

		if err := s.repo.Update(ctx, p); err != nil {
			return fmt.Errorf("update party: %w", err)
		}
		logger.Info(ctx, "party updated", "party_id", p.ID, "version", p.Version)
		return nil
	})
}
