package app

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradebook/internal/config"
	"tradebook/internal/core/types"
	"tradebook/internal/domain/catalogs/item"
	"tradebook/internal/domain/catalogs/party"
	"tradebook/internal/domain/documents/invoice"
	"tradebook/internal/infrastructure/metrics"
	"tradebook/internal/infrastructure/storage/memory"
)

func testConfig() *config.Config {
	return &config.Config{
		StorageDriver:     config.DriverMemory,
		IdempotencyTTL:    time.Hour,
		LowStockThreshold: types.NewQuantity(10),
		CreditDueDays:     15,
	}
}

func TestOpenStorageMemory(t *testing.T) {
	st, err := OpenStorage(context.Background(), testConfig())
	require.NoError(t, err)
	defer st.Close()

	assert.NotNil(t, st.Memory)
	assert.Nil(t, st.Pool)
	assert.NoError(t, st.Ping(context.Background()))
}

func TestOpenStorageUnknownDriver(t *testing.T) {
	cfg := testConfig()
	cfg.StorageDriver = "sqlite"

	_, err := OpenStorage(context.Background(), cfg)
	assert.ErrorContains(t, err, "sqlite")
}

func TestServicesCountInvoices(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	m := metrics.New()
	st := NewMemoryStorage(memory.New(), cfg)
	svc := NewServices(st, cfg, m)

	customer := party.NewParty("Asha Traders", "9800000001", party.TypeCustomer, types.Zero())
	require.NoError(t, svc.Parties.Create(ctx, customer))
	soap := item.NewItem("Soap", "pcs", types.NewQuantity(50))
	soap.SaleRate = types.MustMoney("20")
	require.NoError(t, svc.Items.Create(ctx, soap))

	inv, err := svc.Invoices.Create(ctx, invoice.CreateInput{
		Type:        invoice.TypeSales,
		PartyID:     customer.ID,
		Date:        time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		PaymentMode: invoice.PaymentCredit,
		Lines: []invoice.LineInput{
			{ItemID: &soap.ID, Qty: types.NewQuantity(5), Rate: types.MustMoney("20")},
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, inv.InvoiceNo)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.InvoicesCreated.WithLabelValues("SALES", "credit")))

	got, err := svc.Items.GetByID(ctx, soap.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantity(45), got.Stock)
}
