package payment_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/id"
	"tradebook/internal/core/types"
	"tradebook/internal/domain"
	"tradebook/internal/domain/catalogs/party"
	"tradebook/internal/domain/documents/payment"
	"tradebook/internal/infrastructure/storage/memory"
)

func newService(t *testing.T) (*payment.Service, *memory.Store, *party.Party) {
	t.Helper()
	s := memory.New()
	p := party.NewParty("Acme", "9000000001", party.TypeCustomer, decimal.Zero)
	require.NoError(t, s.Parties().Create(context.Background(), p))
	return payment.NewService(s.Payments(), s.Parties(), s.Outbox(), s.TxManager()), s, p
}

func TestRecord(t *testing.T) {
	ctx := context.Background()
	svc, store, p := newService(t)

	got, err := svc.Record(ctx, payment.RecordInput{
		PartyID:   p.ID,
		Amount:    types.MustMoney("300"),
		Date:      time.Date(2026, 4, 2, 10, 30, 0, 0, time.UTC),
		Mode:      payment.ModeOnline,
		Reference: " UPI-778 ",
	})
	require.NoError(t, err)
	require.NotNil(t, got.Reference)
	assert.Equal(t, "UPI-778", *got.Reference)
	assert.Nil(t, got.Notes)
	assert.Equal(t, time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC), got.Date)

	stored, err := svc.GetByID(ctx, got.ID)
	require.NoError(t, err)
	assert.True(t, stored.Amount.Equal(types.MustMoney("300")))

	events := store.Outbox().Events()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventPaymentRecorded, events[0].EventType)
}

func TestRecordValidation(t *testing.T) {
	svc, _, p := newService(t)
	valid := payment.RecordInput{
		PartyID: p.ID,
		Amount:  types.MustMoney("10"),
		Date:    time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
		Mode:    payment.ModeCash,
	}

	tests := []struct {
		name   string
		mutate func(in *payment.RecordInput)
	}{
		{"zero amount", func(in *payment.RecordInput) { in.Amount = decimal.Zero }},
		{"negative amount", func(in *payment.RecordInput) { in.Amount = types.MustMoney("-5") }},
		{"sub-cent amount", func(in *payment.RecordInput) { in.Amount = types.MustMoney("1.005") }},
		{"credit mode", func(in *payment.RecordInput) { in.Mode = "credit" }},
		{"unknown party", func(in *payment.RecordInput) { in.PartyID = id.New() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := svc.Record(context.Background(), in)
			assert.True(t, apperror.IsValidation(err), "got %v", err)
		})
	}
}
