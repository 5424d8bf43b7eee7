package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordHTTPRequest(t *testing.T) {
	m := New()
	m.RecordHTTPRequest("POST", "/api/v1/invoices", 201, 20*time.Millisecond)
	m.RecordHTTPRequest("POST", "/api/v1/invoices", 201, 10*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/invoices", "201")))
}

func TestRecordOutboxPublish(t *testing.T) {
	m := New()
	m.RecordOutboxPublish("InvoiceCreated", true, time.Millisecond)
	m.RecordOutboxPublish("InvoiceCreated", false, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboxPublished.WithLabelValues("InvoiceCreated", "failure")))
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New()
	m.InvoicesCreated.WithLabelValues("SALES", "credit").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `tradebook_invoices_created_total{payment_mode="credit",type="SALES"} 1`)
}
