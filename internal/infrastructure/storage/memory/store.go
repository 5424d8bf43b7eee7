// Package memory is a process-local storage backend. It implements every
// repository the domain needs with the same contracts as the Postgres
// backend and backs tests and STORAGE_DRIVER=memory.
//
// A transaction holds a store-wide lock; a failed transaction restores the
// state captured when it began.
package memory

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/id"
	"tradebook/internal/core/tx"
	"tradebook/internal/domain/catalogs/item"
	"tradebook/internal/domain/catalogs/party"
	"tradebook/internal/domain/documents/invoice"
	"tradebook/internal/domain/documents/payment"
	"tradebook/internal/domain/registers/stock"
)

var errReadOnly = errors.New("write in read-only transaction")

type state struct {
	parties   map[id.ID]party.Party
	items     map[id.ID]item.Item
	invoices  []invoice.Invoice
	payments  []payment.Payment
	movements []stock.Movement
	sequences map[string]int64
	outbox    []OutboxMessage
}

func newState() *state {
	return &state{
		parties:   make(map[id.ID]party.Party),
		items:     make(map[id.ID]item.Item),
		sequences: make(map[string]int64),
	}
}

// clone copies the containers. Stored records are values that are replaced,
// never mutated in place, so element copies are enough.
func (st *state) clone() *state {
	return &state{
		parties:   maps.Clone(st.parties),
		items:     maps.Clone(st.items),
		invoices:  slices.Clone(st.invoices),
		payments:  slices.Clone(st.payments),
		movements: slices.Clone(st.movements),
		sequences: maps.Clone(st.sequences),
		outbox:    slices.Clone(st.outbox),
	}
}

// Store holds all records.
type Store struct {
	mu   sync.Mutex
	data *state

	faultMu sync.Mutex
	faults  map[string]error
}

// New creates an empty store.
func New() *Store {
	return &Store{
		data:   newState(),
		faults: make(map[string]error),
	}
}

// Fail makes every later call of op fail with a StorageUnavailable error
// wrapping err. Ops are named "<record>.<action>", e.g. "stock.add".
func (s *Store) Fail(op string, err error) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	s.faults[op] = err
}

// ClearFaults removes all injected failures.
func (s *Store) ClearFaults() {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	clear(s.faults)
}

func (s *Store) fault(op string) error {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	if err, ok := s.faults[op]; ok {
		return apperror.NewStorageUnavailable(op, err)
	}
	return nil
}

// --- transactions ---

type txKey struct{}

type txMarker struct {
	store    *Store
	readOnly bool
}

func (s *Store) activeTx(ctx context.Context) *txMarker {
	if m, ok := ctx.Value(txKey{}).(*txMarker); ok && m.store == s {
		return m
	}
	return nil
}

// read runs fn against the current state, taking the lock unless ctx is
// already inside one of this store's transactions.
func (s *Store) read(ctx context.Context, op string, fn func(st *state) error) error {
	if err := s.fault(op); err != nil {
		return err
	}
	if s.activeTx(ctx) != nil {
		return fn(s.data)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// write is read for mutations; it refuses to run in a read-only transaction.
func (s *Store) write(ctx context.Context, op string, fn func(st *state) error) error {
	if err := s.fault(op); err != nil {
		return err
	}
	if m := s.activeTx(ctx); m != nil {
		if m.readOnly {
			return apperror.NewInternal(errReadOnly).WithDetail("operation", op)
		}
		return fn(s.data)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// TxManager implements tx.ReadOnlyManager for the store.
type TxManager struct {
	store *Store
}

var _ tx.ReadOnlyManager = (*TxManager)(nil)

// TxManager returns the store's transaction manager.
func (s *Store) TxManager() *TxManager {
	return &TxManager{store: s}
}

// RunInTransaction executes fn holding the store lock. Nested calls reuse
// the outer transaction.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s := m.store
	if s.activeTx(ctx) != nil {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	backup := s.data.clone()
	if err := fn(context.WithValue(ctx, txKey{}, &txMarker{store: s})); err != nil {
		s.data = backup
		return err
	}
	return nil
}

// ReadOnly executes fn holding the store lock; writes through ctx fail.
func (m *TxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	s := m.store
	if s.activeTx(ctx) != nil {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, &txMarker{store: s, readOnly: true}))
}
