package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/numerator"
	"tradebook/internal/core/types"
	"tradebook/internal/domain"
	"tradebook/internal/domain/catalogs/item"
	"tradebook/internal/domain/catalogs/party"
)

func TestTransactionRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	it := item.NewItem("Widget", "pcs", types.NewQuantity(10))
	require.NoError(t, s.Items().Create(ctx, it))

	boom := errors.New("boom")
	err := s.TxManager().RunInTransaction(ctx, func(ctx context.Context) error {
		_, found, err := s.Stock().AddStock(ctx, it.ID, types.NewQuantity(-3))
		require.NoError(t, err)
		require.True(t, found)

		_, err = s.Numerator().GetNextNumber(ctx, numerator.DefaultConfig("INV"), nil, time.Now())
		require.NoError(t, err)
		require.NoError(t, s.Outbox().Publish(ctx, domain.Event{EventType: domain.EventInvoiceCreated}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Items().GetByID(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantity(10), got.Stock)
	assert.Empty(t, s.Outbox().Events())

	number, err := s.Numerator().GetNextNumber(ctx, numerator.DefaultConfig("INV"), nil, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-00001", number)
}

func TestNestedTransactionJoinsOuter(t *testing.T) {
	ctx := context.Background()
	s := New()
	tm := s.TxManager()

	err := tm.RunInTransaction(ctx, func(ctx context.Context) error {
		return tm.RunInTransaction(ctx, func(ctx context.Context) error {
			return s.Parties().Create(ctx, party.NewParty("Acme", "555", party.TypeCustomer, decimal.Zero))
		})
	})
	require.NoError(t, err)

	all, err := s.Parties().ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestReadOnlyRejectsWrites(t *testing.T) {
	ctx := context.Background()
	s := New()

	err := s.TxManager().ReadOnly(ctx, func(ctx context.Context) error {
		return s.Parties().Create(ctx, party.NewParty("Acme", "555", party.TypeCustomer, decimal.Zero))
	})
	require.Error(t, err)

	all, err := s.Parties().ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestFaultInjection(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.Fail("party.list", errors.New("connection reset"))

	_, err := s.Parties().ListAll(ctx)
	assert.True(t, apperror.IsStorageUnavailable(err))
	assert.True(t, apperror.IsRetryable(err))

	s.ClearFaults()
	_, err = s.Parties().ListAll(ctx)
	assert.NoError(t, err)
}

func TestPartyUpdateOptimisticLock(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := party.NewParty("Acme", "555", party.TypeCustomer, decimal.Zero)
	require.NoError(t, s.Parties().Create(ctx, p))

	stale := *p
	p.Name = "Acme Ltd"
	require.NoError(t, s.Parties().Update(ctx, p))
	assert.Equal(t, 2, p.Version)

	stale.Name = "Acme Old"
	err := s.Parties().Update(ctx, &stale)
	assert.Equal(t, apperror.CodeConcurrentModification, mustAppError(t, err).Code)
}

func TestItemUpdateKeepsStock(t *testing.T) {
	ctx := context.Background()
	s := New()
	it := item.NewItem("Widget", "pcs", types.NewQuantity(10))
	require.NoError(t, s.Items().Create(ctx, it))

	_, _, err := s.Stock().AddStock(ctx, it.ID, types.NewQuantity(5))
	require.NoError(t, err)

	it.Stock = types.NewQuantity(999)
	it.SaleRate = types.MustMoney("12.50")
	require.NoError(t, s.Items().Update(ctx, it))

	got, err := s.Items().GetByID(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantity(15), got.Stock)
	assert.True(t, got.SaleRate.Equal(types.MustMoney("12.50")))
}

func TestIdempotencyStore(t *testing.T) {
	ctx := context.Background()
	s := NewIdempotencyStore(time.Hour)

	replay, err := s.AcquireKey(ctx, "k1", "u1", "POST /invoices", "h1")
	require.NoError(t, err)
	assert.Nil(t, replay)

	_, err = s.AcquireKey(ctx, "k1", "u1", "POST /invoices", "h1")
	assert.Equal(t, apperror.CodeIdempotency, mustAppError(t, err).Code)

	_, err = s.AcquireKey(ctx, "k1", "u1", "POST /invoices", "other")
	assert.Equal(t, "Idempotency key mismatch", mustAppError(t, err).Message)

	require.NoError(t, s.CompleteKey(ctx, "k1", 201, "application/json", map[string]string{"id": "x"}))
	replay, err = s.AcquireKey(ctx, "k1", "u1", "POST /invoices", "h1")
	require.NoError(t, err)
	require.NotNil(t, replay)
	assert.Equal(t, 201, replay.StatusCode)
	assert.JSONEq(t, `{"id":"x"}`, string(replay.Body))

	require.NoError(t, s.ReleaseKey(ctx, "k1"))
	replay, err = s.AcquireKey(ctx, "k1", "u1", "POST /invoices", "h1")
	require.NoError(t, err)
	assert.Nil(t, replay)
}

func TestIdempotencyStaleKeyIsReclaimed(t *testing.T) {
	ctx := context.Background()
	s := NewIdempotencyStore(time.Hour)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	_, err := s.AcquireKey(ctx, "k", "u", "op", "h")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	replay, err := s.AcquireKey(ctx, "k", "u", "op", "h")
	require.NoError(t, err)
	assert.Nil(t, replay)
}

func mustAppError(t *testing.T, err error) *apperror.AppError {
	t.Helper()
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	return appErr
}
