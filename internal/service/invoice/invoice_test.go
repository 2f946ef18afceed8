package invoice

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"order-ledger/internal/common/enum"
	"order-ledger/internal/common/errs"
	"order-ledger/internal/pkg/doku"
	"order-ledger/internal/pkg/exporter"
	"order-ledger/internal/pkg/helper"
	"order-ledger/internal/pkg/intake"
	"order-ledger/internal/pkg/invoiceid"
	"order-ledger/internal/pkg/kvstore"
	ledgerPkg "order-ledger/internal/pkg/ledger"
	"order-ledger/internal/pkg/metrics"
	"order-ledger/internal/pkg/notify"
	"order-ledger/internal/pkg/rabbitmq"
	"order-ledger/internal/pkg/table"
	"order-ledger/internal/repository"
	invoiceRepo "order-ledger/internal/repository/invoice"
	ledgerRepo "order-ledger/internal/repository/ledger"
	ledgerService "order-ledger/internal/service/ledger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jakarta = time.FixedZone("WIB", 7*60*60)

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut bool
}

func (f *fakeStorage) GetBucketName() string { return "invoices" }

func (f *fakeStorage) UploadFile(_ context.Context, key string, fileBytes []byte, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPut {
		return errors.New("access denied")
	}
	f.objects[key] = fileBytes
	return nil
}

func (f *fakeStorage) WaitUntilExists(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[key]; !ok {
		return errors.New("not found")
	}
	return nil
}

func (f *fakeStorage) GetPresignedURL(_ context.Context, key string) (string, error) {
	return "https://files.test/" + key, nil
}

type fakePublisher struct {
	events []string
}

func (f *fakePublisher) Publish(context.Context, string, *rabbitmq.Message) error { return nil }

func (f *fakePublisher) PublishEvent(_ context.Context, queue, eventType string, _ interface{}) error {
	f.events = append(f.events, queue+"/"+eventType)
	return nil
}

type fixture struct {
	svc       IService
	store     *table.MemoryStore
	storage   *fakeStorage
	publisher *fakePublisher
	registry  *prometheus.Registry
	webhook   chan notify.Payload
}

func newFixture(t *testing.T, gateway http.HandlerFunc, hookStatus int) *fixture {
	t.Helper()
	ctx := context.Background()

	store := table.NewMemoryStore()
	require.NoError(t, store.EnsureSheet(ctx, "ORDER", ledgerPkg.Header))
	require.NoError(t, store.EnsureSheet(ctx, "INVOICE", invoiceRepo.Header))
	sheet, err := store.Sheet(ctx, "ORDER")
	require.NoError(t, err)
	require.NoError(t, sheet.AppendRow(ctx, table.Row{"Alice", "pen", "2", "1000"}))
	require.NoError(t, sheet.AppendRow(ctx, table.Row{"", "book", "1", "5000"}))
	require.NoError(t, sheet.AppendRow(ctx, table.Row{"Bob", "", "", ""}))

	gatewaySrv := httptest.NewServer(gateway)
	t.Cleanup(gatewaySrv.Close)

	webhook := make(chan notify.Payload, 1)
	hookSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p notify.Payload
		_ = json.NewDecoder(r.Body).Decode(&p)
		webhook <- p
		w.WriteHeader(hookStatus)
	}))
	t.Cleanup(hookSrv.Close)

	httpClient := helper.NewHTTPClient(&helper.ClientConfig{RequestTimeout: 5})
	now := func() time.Time { return time.Date(2024, 3, 9, 3, 0, 0, 0, time.UTC) }
	reg := prometheus.NewRegistry()
	m := metrics.New(reg, metrics.Config{ServiceName: "test"})

	rp := repository.IRepository{
		Ledger:  ledgerRepo.NewRepo(store),
		Invoice: invoiceRepo.NewRepo(store),
	}
	storage := &fakeStorage{objects: map[string][]byte{}}
	publisher := &fakePublisher{}

	svc := NewService(rp, Deps{
		Items: ledgerService.NewService(rp, intake.LineParser{}, m, "ORDER"),
		IDs: invoiceid.New(kvstore.NewMemory(), invoiceid.Config{
			Location: jakarta,
			Mode:     enum.CounterAtomic,
			Now:      now,
		}),
		Payments: doku.Setup(&doku.Config{
			ClientID:   "BRN-0001",
			SecretKey:  "secret",
			SandboxURL: gatewaySrv.URL,
		}, httpClient),
		Exporter:  exporter.NewPDF(jakarta, t.TempDir()),
		Storage:   storage,
		Notifier:  notify.NewDispatcher(hookSrv.URL, httpClient),
		Publisher: publisher,
		Metrics:   m,
	}, Config{
		InvoiceSheet:      "INVOICE",
		ProviderName:      "doku",
		PaymentDueMinutes: 60,
		Location:          jakarta,
		Now:               now,
	})

	return &fixture{svc: svc, store: store, storage: storage, publisher: publisher, registry: reg, webhook: webhook}
}

func dokuOK(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	if !strings.Contains(string(body), `"amount":8000`) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	_, _ = w.Write([]byte(`{"message":["SUCCESS"],"response":{"order":{"session_id":"s-1"},"payment":{"url":"https://pay.test/abc","token_id":"abc"}}}`))
}

func aliceRequest() *CreateInvoiceRequest {
	return &CreateInvoiceRequest{CustomerName: "Alice", Phone: "0812-1234-5678", Discount: 1000, Shipping: 2000}
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	total := 0.0
	for _, f := range families {
		if f.GetName() == name {
			for _, m := range f.GetMetric() {
				total += m.GetCounter().GetValue()
			}
		}
	}
	return total
}

func TestCreateInvoice(t *testing.T) {
	fx := newFixture(t, dokuOK, http.StatusOK)
	ctx := context.Background()

	res, err := fx.svc.Create(ctx, aliceRequest())
	require.NoError(t, err)

	assert.Equal(t, "INV-20240309-0001", res.Invoice.ID)
	assert.Equal(t, 7000.0, res.Invoice.Subtotal)
	assert.Equal(t, 8000.0, res.Invoice.Total)
	assert.Equal(t, "https://pay.test/abc", res.PaymentURL)
	assert.Empty(t, res.PaymentError)
	assert.Equal(t, "https://files.test/invoices/20240309/INV-20240309-0001.pdf", res.FileURL)
	assert.True(t, res.Notified)

	hook := <-fx.webhook
	assert.Equal(t, "6281212345678", hook.PhoneNumber)
	assert.Equal(t, "Rp 8.000", hook.TotalAmount)
	assert.Equal(t, "https://pay.test/abc", hook.PaymentURL)
	assert.Equal(t, exporter.MimePDF, hook.MimeType)

	sheet, err := fx.store.Sheet(ctx, "INVOICE")
	require.NoError(t, err)
	last, err := sheet.LastRowIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, last)

	assert.Equal(t, []string{EventQueue + "/" + EventInvoiceCreated}, fx.publisher.events)
	assert.Equal(t, 1.0, counterValue(t, fx.registry, "invoices_created_total"))

	second, err := fx.svc.Create(ctx, aliceRequest())
	require.NoError(t, err)
	assert.Equal(t, "INV-20240309-0002", second.Invoice.ID)
}

func TestCreateInvoiceLeavesOrderSheetUntouched(t *testing.T) {
	fx := newFixture(t, dokuOK, http.StatusOK)
	ctx := context.Background()

	orders, err := fx.store.Sheet(ctx, "ORDER")
	require.NoError(t, err)
	before, err := orders.ReadRows(ctx, 1, 4, len(ledgerPkg.Header))
	require.NoError(t, err)

	res, err := fx.svc.Create(ctx, aliceRequest())
	require.NoError(t, err)

	last, err := orders.LastRowIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, last)
	after, err := orders.ReadRows(ctx, 1, 4, len(ledgerPkg.Header))
	require.NoError(t, err)
	assert.Equal(t, before, after)

	invoices, err := fx.store.Sheet(ctx, "INVOICE")
	require.NoError(t, err)
	ids, err := invoices.ReadColumn(ctx, 1, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{res.Invoice.ID, res.Invoice.ID}, ids)
}

func TestCreateInvoiceGatewayFailure(t *testing.T) {
	fx := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error_messages":["internal error"]}`))
	}, http.StatusOK)

	res, err := fx.svc.Create(context.Background(), aliceRequest())
	require.NoError(t, err)
	assert.Empty(t, res.PaymentURL)
	assert.Equal(t, "internal error", res.PaymentError)
	assert.Equal(t, "INV-20240309-0001", res.Invoice.ID)
	assert.Equal(t, 8000.0, res.Invoice.Total)
	assert.NotEmpty(t, res.FileURL)
	assert.True(t, res.Notified)

	hook := <-fx.webhook
	assert.Empty(t, hook.PaymentURL)
	assert.Equal(t, res.FileURL, hook.FileURL)
	assert.Equal(t, 1.0, counterValue(t, fx.registry, "payment_link_failures_total"))
}

func TestCreateInvoiceSideEffectFailuresDoNotFail(t *testing.T) {
	fx := newFixture(t, dokuOK, http.StatusBadGateway)
	fx.storage.failPut = true

	res, err := fx.svc.Create(context.Background(), aliceRequest())
	require.NoError(t, err)
	assert.Empty(t, res.FileURL)
	assert.False(t, res.Notified)
	assert.Equal(t, "https://pay.test/abc", res.PaymentURL)
	assert.Empty(t, (<-fx.webhook).FileURL)
	assert.Equal(t, 1.0, counterValue(t, fx.registry, "notification_failures_total"))
}

func TestCreateInvoiceRejects(t *testing.T) {
	fx := newFixture(t, dokuOK, http.StatusOK)
	ctx := context.Background()

	cases := map[string]struct {
		req  *CreateInvoiceRequest
		kind error
	}{
		"missing name":      {&CreateInvoiceRequest{Phone: "0812"}, errs.ErrValidation},
		"missing phone":     {&CreateInvoiceRequest{CustomerName: "Alice"}, errs.ErrValidation},
		"negative discount": {&CreateInvoiceRequest{CustomerName: "Alice", Phone: "0812", Discount: -1}, errs.ErrValidation},
		"unknown customer":  {&CreateInvoiceRequest{CustomerName: "Dave", Phone: "0812"}, errs.ErrNotFound},
		"no items":          {&CreateInvoiceRequest{CustomerName: "Bob", Phone: "0812"}, errs.ErrValidation},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := fx.svc.Create(ctx, tc.req)
			assert.ErrorIs(t, err, tc.kind)
		})
	}

	res := fx.svc.CreateInvoice(ctx, &CreateInvoiceRequest{CustomerName: "Dave", Phone: "0812"})
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Empty(t, fx.publisher.events)
}
