package serverApp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	config "order-ledger/configs"
	"order-ledger/internal/common/enum"
	"order-ledger/internal/common/errs"
	ledgerPkg "order-ledger/internal/pkg/ledger"
	"order-ledger/internal/pkg/metrics"
	"order-ledger/internal/pkg/table"
	"order-ledger/internal/pkg/validation"
	invoiceRepo "order-ledger/internal/repository/invoice"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContainer(t *testing.T) *Container {
	t.Helper()
	ctx := context.Background()

	store := table.NewMemoryStore()
	require.NoError(t, store.EnsureSheet(ctx, "ORDER", ledgerPkg.Header))
	require.NoError(t, store.EnsureSheet(ctx, "INVOICE", invoiceRepo.Header))

	c, err := NewContainer(&config.SetupServerDto{
		Env: &config.Config{
			AppTimezone:     "UTC",
			KVDriver:        enum.KVMemory,
			LedgerSheet:     "ORDER",
			InvoiceSheet:    "INVOICE",
			CounterMode:     enum.CounterAtomic,
			PaymentProvider: enum.DOKU,
		},
		Tables: store,
	}, metrics.New(prometheus.NewRegistry(), metrics.Config{}), nil)
	require.NoError(t, err)
	return c
}

func TestNewContainerRequiresRedisClient(t *testing.T) {
	_, err := NewContainer(&config.SetupServerDto{
		Env: &config.Config{AppTimezone: "UTC", KVDriver: enum.KVRedis},
	}, nil, nil)
	assert.Error(t, err)
}

func TestAPIRoutes(t *testing.T) {
	require.NoError(t, validation.Setup())
	gin.SetMode(gin.TestMode)
	e := gin.New()
	Setup(e, newContainer(t), Backends{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders",
		strings.NewReader(`{"customer_name":"Alice","items":[{"name":"pen","quantity":2,"unit_price":1000}]}`))
	req.Header.Set("Content-Type", "application/json")
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ledger/ORDER/blocks/Alice", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/invoices", strings.NewReader(`{"customer_name":"Alice"}`))
	req.Header.Set("Content-Type", "application/json")
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestOrderSubmitHandler(t *testing.T) {
	require.NoError(t, validation.Setup())
	c := newContainer(t)
	handle := OrderSubmitHandler(c.LedgerService)
	ctx := context.Background()

	err := handle(ctx, &amqp.Delivery{Body: []byte(`{"customer_name":"Bob","items":[{"name":"cup","quantity":1,"unit_price":3000}]}`)})
	require.NoError(t, err)

	_, items, err := c.LedgerService.CustomerItems(ctx, "", "Bob")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	err = handle(ctx, &amqp.Delivery{Body: []byte(`not json`)})
	assert.ErrorIs(t, err, errs.ErrValidation)

	err = handle(ctx, &amqp.Delivery{Body: []byte(`null`)})
	assert.ErrorIs(t, err, errs.ErrValidation)

	err = handle(ctx, &amqp.Delivery{Body: []byte(`{"customer_name":"Bob","items":[]}`)})
	assert.ErrorIs(t, err, errs.ErrValidation)

	err = handle(ctx, &amqp.Delivery{Body: []byte(`{"sheet":"NOPE","customer_name":"Bob","items":[{"name":"cup","quantity":1,"unit_price":1}]}`)})
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
