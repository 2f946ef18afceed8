package ledger

import (
	"context"

	types "order-ledger/internal/common/type"
	"order-ledger/internal/pkg/intake"
	ledgerPkg "order-ledger/internal/pkg/ledger"
	"order-ledger/internal/pkg/metrics"
	"order-ledger/internal/repository"
)

// MaxSubmitAttempts bounds retries after a concurrent modification.
const MaxSubmitAttempts = 3

type Service struct {
	rp           repository.IRepository
	parser       intake.Parser
	metrics      *metrics.Metrics
	defaultSheet string
}

type IService interface {
	SubmitOrder(ctx context.Context, req *SubmitOrderRequest) *types.Response
	ParseOrder(ctx context.Context, req *ParseOrderRequest) *types.Response
	ListBlocks(ctx context.Context, sheet string) *types.Response
	GetCustomerItems(ctx context.Context, sheet, customerName string) *types.Response
	ListDuplicates(ctx context.Context, sheet string) *types.Response

	Submit(ctx context.Context, req *SubmitOrderRequest) (*SubmitOrderResponse, error)
	CustomerItems(ctx context.Context, sheet, customerName string) (ledgerPkg.Block, []types.LineItem, error)
}

func NewService(rp repository.IRepository, parser intake.Parser, m *metrics.Metrics, defaultSheet string) IService {
	return &Service{
		rp:           rp,
		parser:       parser,
		metrics:      m,
		defaultSheet: defaultSheet,
	}
}

type SubmitOrderRequest struct {
	Sheet        string           `json:"sheet"`
	CustomerName string           `json:"customer_name" binding:"required" validate:"required"`
	Items        []types.LineItem `json:"items" binding:"required,min=1,dive" validate:"required,min=1,dive"`
}

type SubmitOrderResponse struct {
	Sheet    string          `json:"sheet"`
	Block    ledgerPkg.Block `json:"block"`
	Written  int             `json:"written"`
	Attempts int             `json:"attempts"`
}

type ParseOrderRequest struct {
	Text string `json:"text" binding:"required"`
}

type ParseOrderResponse struct {
	Items []types.LineItem `json:"items"`
	Total float64          `json:"total"`
}

type CustomerItemsResponse struct {
	Block ledgerPkg.Block  `json:"block"`
	Items []types.LineItem `json:"items"`
	Total float64          `json:"total"`
}

type DuplicatesResponse struct {
	Sheet string   `json:"sheet"`
	Names []string `json:"names"`
}
