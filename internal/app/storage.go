// Package app assembles storage, services and their dependencies from config.
package app

import (
	"context"
	"fmt"

	"tradebook/internal/config"
	"tradebook/internal/core/idempotency"
	"tradebook/internal/core/numerator"
	"tradebook/internal/core/tx"
	"tradebook/internal/domain"
	"tradebook/internal/domain/catalogs/item"
	"tradebook/internal/domain/catalogs/party"
	"tradebook/internal/domain/documents/invoice"
	"tradebook/internal/domain/documents/payment"
	"tradebook/internal/domain/registers/stock"
	"tradebook/internal/domain/reports"
	"tradebook/internal/infrastructure/storage/memory"
	"tradebook/internal/infrastructure/storage/postgres"
	"tradebook/internal/infrastructure/storage/postgres/catalog_repo"
	"tradebook/internal/infrastructure/storage/postgres/document_repo"
	"tradebook/internal/infrastructure/storage/postgres/register_repo"
	"tradebook/internal/infrastructure/storage/postgres/report_repo"
	pgnumerator "tradebook/pkg/numerator"
)

// Storage is one storage backend seen through the domain interfaces.
type Storage struct {
	Parties     party.Repository
	Items       item.Repository
	Invoices    invoice.Repository
	Payments    payment.Repository
	Stock       stock.Repository
	Reports     reports.Repository
	Numerator   numerator.Generator
	Events      domain.EventPublisher
	TxManager   tx.ReadOnlyManager
	Idempotency idempotency.Store

	// Pool and PgTx are set only for the postgres backend.
	Pool *postgres.Pool
	PgTx *postgres.TxManager

	// Memory is set only for the memory backend.
	Memory *memory.Store
}

// OpenStorage connects the backend selected by cfg.StorageDriver.
func OpenStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
		if cfg.DBMaxConns > 0 {
			poolCfg.MaxConns = cfg.DBMaxConns
		}
		pool, err := postgres.NewPool(ctx, poolCfg)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return NewPostgresStorage(pool, cfg), nil
	case config.DriverMemory:
		return NewMemoryStorage(memory.New(), cfg), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// NewPostgresStorage wires the Postgres repositories around pool.
func NewPostgresStorage(pool *postgres.Pool, cfg *config.Config) *Storage {
	txm := postgres.NewTxManager(pool)
	return &Storage{
		Parties:  catalog_repo.NewPartyRepo(txm),
		Items:    catalog_repo.NewItemRepo(txm),
		Invoices: document_repo.NewInvoiceRepo(txm),
		Payments: document_repo.NewPaymentRepo(txm),
		Stock:    register_repo.NewStockRepo(txm),
		Reports:  report_repo.NewReportRepo(txm),
		Numerator: pgnumerator.NewWithResolver(func(ctx context.Context) pgnumerator.Querier {
			return txm.GetQuerier(ctx)
		}),
		Events:      postgres.NewOutboxPublisher(txm),
		TxManager:   txm,
		Idempotency: postgres.NewIdempotencyStore(txm, cfg.IdempotencyTTL),
		Pool:        pool,
		PgTx:        txm,
	}
}

// NewMemoryStorage wires the in-memory backend.
func NewMemoryStorage(store *memory.Store, cfg *config.Config) *Storage {
	return &Storage{
		Parties:     store.Parties(),
		Items:       store.Items(),
		Invoices:    store.Invoices(),
		Payments:    store.Payments(),
		Stock:       store.Stock(),
		Reports:     store.Reports(),
		Numerator:   store.Numerator(),
		Events:      store.Outbox(),
		TxManager:   store.TxManager(),
		Idempotency: memory.NewIdempotencyStore(cfg.IdempotencyTTL),
		Memory:      store,
	}
}

// Ping checks that the backend is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	if s.Pool == nil {
		return nil
	}
	return s.Pool.Ping(ctx)
}

// Close releases backend resources.
func (s *Storage) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}
