package party_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/types"
	"tradebook/internal/domain"
	"tradebook/internal/domain/catalogs/party"
	"tradebook/internal/domain/documents/payment"
	"tradebook/internal/infrastructure/storage/memory"
)

func TestUpdateLocksTypeOnceActive(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	svc := party.NewService(s.Parties(), s.TxManager())

	p := party.NewParty("Acme", "9000000001", party.TypeCustomer, types.MustMoney("1000"))
	require.NoError(t, svc.Create(ctx, p))

	// no documents yet: the type may still be corrected
	p.Type = party.TypeSupplier
	require.NoError(t, svc.Update(ctx, p))

	payments := payment.NewService(s.Payments(), s.Parties(), s.Outbox(), s.TxManager())
	_, err := payments.Record(ctx, payment.RecordInput{
		PartyID: p.ID,
		Amount:  types.MustMoney("50"),
		Date:    time.Now(),
		Mode:    payment.ModeCash,
	})
	require.NoError(t, err)

	p.Type = party.TypeCustomer
	err = svc.Update(ctx, p)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodePartyTypeLocked, appErr.Code)

	p.Type = party.TypeSupplier
	p.Name = "Acme Traders"
	require.NoError(t, svc.Update(ctx, p))

	got, err := svc.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Traders", got.Name)
	assert.Equal(t, party.TypeSupplier, got.Type)
}

func TestCreateValidation(t *testing.T) {
	s := memory.New()
	svc := party.NewService(s.Parties(), s.TxManager())
	bad := "not-an-email"

	tests := []struct {
		name string
		p    *party.Party
	}{
		{"no name", party.NewParty(" ", "1", party.TypeCustomer, decimal.Zero)},
		{"no mobile", party.NewParty("Acme", "", party.TypeCustomer, decimal.Zero)},
		{"bad type", party.NewParty("Acme", "1", "Vendor", decimal.Zero)},
		{"bad email", func() *party.Party {
			p := party.NewParty("Acme", "1", party.TypeCustomer, decimal.Zero)
			p.Email = &bad
			return p
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, apperror.IsValidation(svc.Create(context.Background(), tt.p)))
		})
	}
}

func TestListFiltersByType(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	svc := party.NewService(s.Parties(), s.TxManager())

	require.NoError(t, svc.Create(ctx, party.NewParty("Zed", "1", party.TypeCustomer, decimal.Zero)))
	require.NoError(t, svc.Create(ctx, party.NewParty("Bolt Co", "2", party.TypeSupplier, decimal.Zero)))
	require.NoError(t, svc.Create(ctx, party.NewParty("Acme", "3", party.TypeCustomer, decimal.Zero)))

	customers := party.TypeCustomer
	res, err := svc.List(ctx, party.ListFilter{ListFilter: domain.DefaultListFilter(), Type: &customers})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Acme", res.Items[0].Name)
	assert.Equal(t, "Zed", res.Items[1].Name)
}
