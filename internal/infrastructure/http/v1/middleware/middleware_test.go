package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradebook/internal/core/apperror"
	appctx "tradebook/internal/core/context"
	"tradebook/internal/infrastructure/storage/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(Recovery(), Trace(), ErrorHandler())
	r.Use(mw...)
	return r
}

func TestErrorHandlerRendersAppError(t *testing.T) {
	r := newEngine()
	r.GET("/x", func(c *gin.Context) {
		_ = c.Error(apperror.NewNotFound("invoice", "42"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"NOT_FOUND"`)
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))
}

func TestErrorHandlerHidesUnknownErrors(t *testing.T) {
	r := newEngine()
	r.GET("/x", func(c *gin.Context) {
		_ = c.Error(errors.New("pq: relation does not exist"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "relation")
}

func TestRecoveryRendersPanic(t *testing.T) {
	r := newEngine()
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), apperror.CodeInternal)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestIdempotencyReplaysCompletedResponse(t *testing.T) {
	store := memory.NewIdempotencyStore(time.Hour)
	calls := 0
	r := newEngine(Idempotency(store))
	r.POST("/invoices", func(c *gin.Context) {
		calls++
		body := gin.H{"invoiceNo": "INV-2026-00001"}
		CompleteIdempotency(c, http.StatusCreated, "application/json", body)
		c.JSON(http.StatusCreated, body)
	})

	send := func(payload string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/invoices", strings.NewReader(payload))
		req.Header.Set(HeaderIdempotencyKey, "k-1")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	first := send(`{"a":1}`)
	require.Equal(t, http.StatusCreated, first.Code)

	second := send(`{"a":1}`)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get(HeaderIdempotentReplay))
	assert.Equal(t, 1, calls)

	mismatch := send(`{"a":2}`)
	assert.Equal(t, http.StatusConflict, mismatch.Code)
}

func TestIdempotencyReleasesKeyOnRetryableError(t *testing.T) {
	store := memory.NewIdempotencyStore(time.Hour)
	fail := true
	r := newEngine(Idempotency(store))
	r.POST("/payments", func(c *gin.Context) {
		if fail {
			_ = c.Error(apperror.NewStorageUnavailable("insert payment", errors.New("conn reset")))
			return
		}
		CompleteIdempotency(c, http.StatusCreated, "application/json", gin.H{"ok": true})
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(`{}`))
		req.Header.Set(HeaderIdempotencyKey, "k-2")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusServiceUnavailable, send())
	fail = false
	assert.Equal(t, http.StatusCreated, send())
}

type staticValidator struct{}

func (staticValidator) ValidateToken(token string) (*appctx.UserContext, error) {
	if token != "good" {
		return nil, errors.New("bad signature")
	}
	return &appctx.UserContext{UserID: "u-1"}, nil
}

func TestAuth(t *testing.T) {
	r := newEngine(Auth(staticValidator{}))
	r.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, appctx.GetUserID(c.Request.Context()))
	})

	tests := []struct {
		header string
		status int
	}{
		{"", http.StatusUnauthorized},
		{"Basic abc", http.StatusUnauthorized},
		{"Bearer bad", http.StatusUnauthorized},
		{"Bearer good", http.StatusOK},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, tt.status, rec.Code, tt.header)
	}
}
