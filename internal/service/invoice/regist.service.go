package invoice

import (
	"context"
	"time"

	types "order-ledger/internal/common/type"
	ledgerPkg "order-ledger/internal/pkg/ledger"
	"order-ledger/internal/pkg/metrics"
	"order-ledger/internal/pkg/notify"
	"order-ledger/internal/pkg/rabbitmq"
	s3aws "order-ledger/internal/pkg/storage/s3"
	"order-ledger/internal/repository"
)

const (
	EventQueue          = "invoice.events"
	EventInvoiceCreated = "invoice.created"
)

// ItemSource reads a customer's ordered items from the ledger.
type ItemSource interface {
	CustomerItems(ctx context.Context, sheet, customerName string) (ledgerPkg.Block, []types.LineItem, error)
}

type IDIssuer interface {
	Next(ctx context.Context) (string, error)
}

// PaymentLinkProvider never returns an error; failures are reported
// through PaymentResult.
type PaymentLinkProvider interface {
	CreatePaymentLink(ctx context.Context, req *types.PaymentRequest) *types.PaymentResult
}

type Exporter interface {
	Export(ctx context.Context, inv *types.Invoice) (*types.Document, error)
}

type Notifier interface {
	Notify(ctx context.Context, s notify.Summary) error
}

type Config struct {
	InvoiceSheet       string
	ProviderName       string
	PaymentDueMinutes  int
	PaymentMethodTypes []string
	Location           *time.Location
	Now                func() time.Time
}

// Deps wires the collaborators. Exporter, Storage and Publisher are
// optional; without them the matching step is skipped.
type Deps struct {
	Items     ItemSource
	IDs       IDIssuer
	Payments  PaymentLinkProvider
	Exporter  Exporter
	Storage   s3aws.Is3
	Notifier  Notifier
	Publisher rabbitmq.IPublisher
	Metrics   *metrics.Metrics
}

type Service struct {
	rp   repository.IRepository
	deps Deps
	cfg  Config
}

type IService interface {
	CreateInvoice(ctx context.Context, req *CreateInvoiceRequest) *types.Response
	Create(ctx context.Context, req *CreateInvoiceRequest) (*CreateInvoiceResponse, error)
}

func NewService(rp repository.IRepository, deps Deps, cfg Config) IService {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{rp: rp, deps: deps, cfg: cfg}
}

type CreateInvoiceRequest struct {
	Sheet              string   `json:"sheet"`
	CustomerName       string   `json:"customer_name" binding:"required"`
	Phone              string   `json:"phone" binding:"required,phone"`
	Discount           float64  `json:"discount" binding:"gte=0"`
	Shipping           float64  `json:"shipping" binding:"gte=0"`
	PaymentMethodTypes []string `json:"payment_method_types"`
}

type CreateInvoiceResponse struct {
	Invoice      *types.Invoice `json:"invoice"`
	PaymentURL   string         `json:"payment_url"`
	PaymentError string         `json:"payment_error,omitempty"`
	FileURL      string         `json:"file_url"`
	Notified     bool           `json:"notified"`
}

type InvoiceCreatedEvent struct {
	InvoiceID    string  `json:"invoice_id"`
	CustomerName string  `json:"customer_name"`
	Phone        string  `json:"phone"`
	Total        float64 `json:"total"`
	PaymentURL   string  `json:"payment_url"`
	FileURL      string  `json:"file_url"`
}
