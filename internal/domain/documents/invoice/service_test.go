package invoice_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/id"
	"tradebook/internal/core/numerator"
	"tradebook/internal/core/types"
	"tradebook/internal/domain"
	"tradebook/internal/domain/catalogs/item"
	"tradebook/internal/domain/catalogs/party"
	"tradebook/internal/domain/documents/invoice"
	"tradebook/internal/domain/registers/stock"
	"tradebook/internal/infrastructure/storage/memory"
)

var day1 = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

type fixture struct {
	store    *memory.Store
	service  *invoice.Service
	customer *party.Party
	supplier *party.Party
	widget   *item.Item
}

func newFixture(t *testing.T, num numerator.Generator) *fixture {
	t.Helper()
	ctx := context.Background()
	s := memory.New()
	if num == nil {
		num = s.Numerator()
	}

	stockService := stock.NewService(s.Stock(), s.TxManager(), s.Numerator(), s.Outbox())
	f := &fixture{
		store: s,
		service: invoice.NewService(s.Invoices(), s.Parties(), s.Items(), stockService,
			num, s.Outbox(), s.TxManager(), invoice.DefaultConfig()),
		customer: party.NewParty("Acme", "9000000001", party.TypeCustomer, decimal.Zero),
		supplier: party.NewParty("Acme Supplies", "9000000002", party.TypeSupplier, decimal.Zero),
		widget:   item.NewItem("Widget", "pcs", types.NewQuantity(10)),
	}
	f.widget.TaxPercent = types.MustMoney("12")
	require.NoError(t, s.Parties().Create(ctx, f.customer))
	require.NoError(t, s.Parties().Create(ctx, f.supplier))
	require.NoError(t, s.Items().Create(ctx, f.widget))
	return f
}

func (f *fixture) stockOf(t *testing.T) types.Quantity {
	t.Helper()
	it, err := f.store.Items().GetByID(context.Background(), f.widget.ID)
	require.NoError(t, err)
	return it.Stock
}

func pct(s string) *types.Percent {
	p := types.MustMoney(s)
	return &p
}

func saleOf(f *fixture, qty int64) invoice.CreateInput {
	return invoice.CreateInput{
		Type:        invoice.TypeSales,
		PartyID:     f.customer.ID,
		Date:        day1,
		PaymentMode: invoice.PaymentCredit,
		Lines: []invoice.LineInput{{
			ItemID: &f.widget.ID,
			Qty:    types.NewQuantity(qty),
			Rate:   types.MustMoney("100"),
		}},
	}
}

func TestCreateTotalsAndRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	in := invoice.CreateInput{
		Type:        invoice.TypeSales,
		PartyID:     f.customer.ID,
		Date:        day1.Add(15 * time.Hour),
		PaymentMode: invoice.PaymentCash,
		Lines: []invoice.LineInput{
			{Name: "Service A", Qty: types.NewQuantity(2), Rate: types.MustMoney("100"),
				DiscountPercent: types.MustMoney("10"), TaxPercent: pct("18")},
			{Name: "Service B", Qty: types.NewQuantity(1), Rate: types.MustMoney("50"),
				TaxPercent: pct("5")},
		},
	}

	created, err := f.service.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-00001", created.InvoiceNo)
	assert.Equal(t, day1, created.Date)
	assert.Equal(t, "Acme", created.PartyName)
	assert.Equal(t, "230", created.Subtotal.String())
	assert.Equal(t, "34.9", created.TaxAmount.String())
	assert.Equal(t, "264.9", created.GrandTotal.String())
	assert.Nil(t, created.DueDate)

	got, err := f.service.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.InvoiceNo, got.InvoiceNo)
	require.Len(t, got.Lines, 2)
	assert.Equal(t, 1, got.Lines[0].LineNo)
	assert.Equal(t, "180", got.Lines[0].Amount.String())
	assert.Equal(t, "32.4", got.Lines[0].TaxAmount.String())
	assert.True(t, got.GrandTotal.Equal(created.GrandTotal))

	events := f.store.Outbox().Events()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventInvoiceCreated, events[0].EventType)
	assert.Equal(t, created.ID.String(), events[0].AggregateID)
}

func TestCreateMovesStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.service.Create(ctx, saleOf(f, 3))
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantity(7), f.stockOf(t))

	_, err = f.service.Create(ctx, invoice.CreateInput{
		Type:        invoice.TypePurchase,
		PartyID:     f.supplier.ID,
		Date:        day1,
		PaymentMode: invoice.PaymentCash,
		Lines:       []invoice.LineInput{{ItemID: &f.widget.ID, Qty: types.NewQuantity(5), Rate: types.MustMoney("40")}},
	})
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantity(12), f.stockOf(t))
}

func TestCreateSnapshotsItem(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	in := saleOf(f, 1)
	in.Lines[0].Name = "typed by clerk"
	created, err := f.service.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "Widget", created.Lines[0].Name)
	assert.Equal(t, "12", created.Lines[0].TaxPercent.String())

	// later master data changes do not reach stored invoices
	f.widget.Name = "Widget v2"
	require.NoError(t, f.store.Items().Update(ctx, f.widget))
	got, err := f.service.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget", got.Lines[0].Name)
}

func TestCreateWithUnknownItemIsAdHoc(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	unknown := id.New()
	in := saleOf(f, 1)
	in.Lines[0].ItemID = &unknown
	in.Lines[0].Name = "Custom part"

	created, err := f.service.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "Custom part", created.Lines[0].Name)
	assert.Equal(t, types.NewQuantity(10), f.stockOf(t))

	in.Lines[0].Name = ""
	_, err = f.service.Create(ctx, in)
	assert.True(t, apperror.IsValidation(err))
}

func TestCreateCreditSetsDueDate(t *testing.T) {
	f := newFixture(t, nil)

	created, err := f.service.Create(context.Background(), saleOf(f, 1))
	require.NoError(t, err)
	require.NotNil(t, created.DueDate)
	assert.Equal(t, day1.AddDate(0, 0, 15), *created.DueDate)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t, nil)

	tests := []struct {
		name   string
		mutate func(in *invoice.CreateInput)
	}{
		{"empty cart", func(in *invoice.CreateInput) { in.Lines = nil }},
		{"zero qty", func(in *invoice.CreateInput) { in.Lines[0].Qty = 0 }},
		{"negative rate", func(in *invoice.CreateInput) { in.Lines[0].Rate = types.MustMoney("-1") }},
		{"discount over 100", func(in *invoice.CreateInput) { in.Lines[0].DiscountPercent = types.MustMoney("101") }},
		{"tax over 100", func(in *invoice.CreateInput) { in.Lines[0].TaxPercent = pct("150") }},
		{"bad payment mode", func(in *invoice.CreateInput) { in.PaymentMode = "barter" }},
		{"bad type", func(in *invoice.CreateInput) { in.Type = "RETURN" }},
		{"missing date", func(in *invoice.CreateInput) { in.Date = time.Time{} }},
		{"round off too large", func(in *invoice.CreateInput) { in.RoundOff = types.MustMoney("1.5") }},
		{"unknown party", func(in *invoice.CreateInput) { in.PartyID = id.New() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := saleOf(f, 1)
			tt.mutate(&in)

			_, err := f.service.Create(context.Background(), in)
			assert.True(t, apperror.IsValidation(err), "got %v", err)
		})
	}

	assert.Equal(t, types.NewQuantity(10), f.stockOf(t))
	assert.Empty(t, f.store.Outbox().Events())
}

func TestCreateRejectsPartyTypeMismatch(t *testing.T) {
	f := newFixture(t, nil)

	in := saleOf(f, 1)
	in.PartyID = f.supplier.ID
	_, err := f.service.Create(context.Background(), in)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodePartyTypeMismatch, appErr.Code)
	assert.Equal(t, 422, appErr.HTTPStatus)
}

// staleParties answers GetByID from snapshots taken earlier, as a reader
// racing a concurrent party update would see them.
type staleParties struct {
	*memory.PartyRepo
	snapshots map[id.ID]party.Party
}

func (r staleParties) GetByID(_ context.Context, partyID id.ID) (*party.Party, error) {
	p := r.snapshots[partyID]
	return &p, nil
}

func TestCreateRechecksPartyTypeInTransaction(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	parties := staleParties{PartyRepo: f.store.Parties(), snapshots: map[id.ID]party.Party{f.customer.ID: *f.customer}}
	stockService := stock.NewService(f.store.Stock(), f.store.TxManager(), f.store.Numerator(), f.store.Outbox())
	service := invoice.NewService(f.store.Invoices(), parties, f.store.Items(), stockService,
		f.store.Numerator(), f.store.Outbox(), f.store.TxManager(), invoice.DefaultConfig())

	// the party turns into a supplier after the snapshot was read
	f.customer.Type = party.TypeSupplier
	require.NoError(t, f.store.Parties().Update(ctx, f.customer))

	_, err := service.Create(ctx, saleOf(f, 1))
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodePartyTypeMismatch, appErr.Code)

	res, err := service.List(ctx, invoice.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Equal(t, types.NewQuantity(10), f.stockOf(t))
}

func TestCreateRollsBackWhenStockFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.store.Fail("stock.add", errors.New("connection reset"))

	_, err := f.service.Create(ctx, saleOf(f, 3))
	require.True(t, apperror.IsStorageUnavailable(err))

	f.store.ClearFaults()
	res, err := f.service.List(ctx, invoice.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Equal(t, types.NewQuantity(10), f.stockOf(t))
	assert.Empty(t, f.store.Outbox().Events())

	// the number of the failed invoice is reused
	created, err := f.service.Create(ctx, saleOf(f, 3))
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-00001", created.InvoiceNo)
}

func TestCreateFailsWhenNumberingFails(t *testing.T) {
	ctx := context.Background()
	num := numerator.GeneratorFunc(func(context.Context, numerator.Config, *numerator.Options, time.Time) (string, error) {
		return "", errors.New("sequence locked")
	})
	f := newFixture(t, num)

	_, err := f.service.Create(ctx, saleOf(f, 3))
	require.Error(t, err)
	assert.Equal(t, types.NewQuantity(10), f.stockOf(t))
}

func TestCreateHooks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	var after []string
	f.service.Hooks().OnBeforeCreate(func(ctx context.Context, inv *invoice.Invoice) error {
		if inv.GrandTotal.GreaterThan(types.MustMoney("1000")) {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule, "credit limit exceeded")
		}
		return nil
	})
	f.service.Hooks().OnAfterCreate(func(ctx context.Context, inv *invoice.Invoice) error {
		after = append(after, inv.InvoiceNo)
		return errors.New("notification failed")
	})

	_, err := f.service.Create(ctx, saleOf(f, 20))
	require.Error(t, err)
	assert.Equal(t, types.NewQuantity(10), f.stockOf(t))

	created, err := f.service.Create(ctx, saleOf(f, 1))
	require.NoError(t, err)
	assert.Equal(t, []string{created.InvoiceNo}, after)
}

func TestConcurrentCreatesGetDistinctNumbers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	const n = 20
	var wg sync.WaitGroup
	numbers := make([]string, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inv, err := f.service.Create(ctx, saleOf(f, 1))
			if assert.NoError(t, err) {
				numbers[i] = inv.InvoiceNo
			}
		}()
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for _, num := range numbers {
		assert.False(t, seen[num], "duplicate %s", num)
		seen[num] = true
	}
	assert.Equal(t, types.NewQuantity(-10), f.stockOf(t))
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	for _, d := range []time.Time{day1, day1.AddDate(0, 0, 2), day1.AddDate(0, 0, 1)} {
		in := saleOf(f, 1)
		in.Date = d
		_, err := f.service.Create(ctx, in)
		require.NoError(t, err)
	}

	res, err := f.service.List(ctx, invoice.ListFilter{})
	require.NoError(t, err)
	require.Len(t, res.Items, 3)
	assert.Equal(t, "INV-2026-00002", res.Items[0].InvoiceNo)
	assert.Equal(t, "INV-2026-00003", res.Items[1].InvoiceNo)
	assert.Equal(t, "INV-2026-00001", res.Items[2].InvoiceNo)

	purchases := invoice.TypePurchase
	res, err = f.service.List(ctx, invoice.ListFilter{Type: &purchases})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
}
