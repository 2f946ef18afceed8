package ledger

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"order-ledger/internal/common/errs"
	types "order-ledger/internal/common/type"
	"order-ledger/internal/pkg/helper"
	ledgerPkg "order-ledger/internal/pkg/ledger"
	"order-ledger/internal/pkg/logger"
	"order-ledger/internal/pkg/metrics"

	"github.com/samber/lo"
)

func (s *Service) sheetName(sheet string) string {
	return lo.CoalesceOrEmpty(strings.TrimSpace(sheet), s.defaultSheet)
}

func (s *Service) SubmitOrder(ctx context.Context, req *SubmitOrderRequest) *types.Response {
	res, err := s.Submit(ctx, req)
	if err != nil {
		return helper.ParseResponse(&types.Response{Error: err})
	}
	return helper.ParseResponse(&types.Response{
		Code:    http.StatusCreated,
		Message: "Order recorded",
		Data:    res,
	})
}

// Submit writes the order into the customer's block, creating the block when
// the customer has none. Rows moved by another writer trigger a fresh lookup
// and a retry with the items not yet written.
func (s *Service) Submit(ctx context.Context, req *SubmitOrderRequest) (*SubmitOrderResponse, error) {
	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		return nil, errs.Validation("customer name is required")
	}
	if len(req.Items) == 0 {
		return nil, errs.Validation("item list is empty")
	}

	sheetName := s.sheetName(req.Sheet)
	sheet, err := s.rp.Ledger.Sheet(ctx, sheetName)
	if err != nil {
		return nil, err
	}

	unlock := s.rp.Ledger.LockSheet(sheetName)
	defer unlock()

	remaining := req.Items
	written := 0
	for attempt := 1; attempt <= MaxSubmitAttempts; attempt++ {
		var target *ledgerPkg.Block
		mode := metrics.AppendNewBlock

		block, err := ledgerPkg.FindByName(ctx, sheet, name)
		switch {
		case err == nil:
			target = &block
			mode = metrics.AppendInsert
		case !errors.Is(err, errs.ErrNotFound):
			return nil, err
		}

		res, err := ledgerPkg.AppendItems(ctx, sheet, target, name, remaining)
		written += res.Written
		remaining = remaining[res.Written:]
		s.metrics.ItemsAppended(mode, res.Written)

		if err == nil {
			return &SubmitOrderResponse{
				Sheet:    sheetName,
				Block:    res.Block,
				Written:  written,
				Attempts: attempt,
			}, nil
		}
		if !errors.Is(err, errs.ErrConcurrencyHazard) {
			return nil, err
		}

		s.metrics.LedgerConflict(sheetName)
		logger.Warning.Printf("ledger %s changed under %q (attempt %d, %d written): %v", sheetName, name, attempt, written, err)
	}

	return nil, errs.Conflict("order for %q still conflicting after %d attempts, %d of %d items written",
		name, MaxSubmitAttempts, written, len(req.Items))
}

func (s *Service) ParseOrder(ctx context.Context, req *ParseOrderRequest) *types.Response {
	items, err := s.parser.Parse(ctx, req.Text)
	if err != nil {
		return helper.ParseResponse(&types.Response{Error: err})
	}
	return helper.ParseResponse(&types.Response{
		Code: http.StatusOK,
		Data: ParseOrderResponse{Items: items, Total: types.Subtotal(items)},
	})
}

func (s *Service) ListBlocks(ctx context.Context, sheet string) *types.Response {
	t, err := s.rp.Ledger.Sheet(ctx, s.sheetName(sheet))
	if err != nil {
		return helper.ParseResponse(&types.Response{Error: err})
	}
	blocks, err := ledgerPkg.Reconstruct(ctx, t)
	if err != nil {
		return helper.ParseResponse(&types.Response{Error: err})
	}
	return helper.ParseResponse(&types.Response{Code: http.StatusOK, Data: blocks})
}

func (s *Service) GetCustomerItems(ctx context.Context, sheet, customerName string) *types.Response {
	block, items, err := s.CustomerItems(ctx, sheet, customerName)
	if err != nil {
		return helper.ParseResponse(&types.Response{Error: err})
	}
	return helper.ParseResponse(&types.Response{
		Code: http.StatusOK,
		Data: CustomerItemsResponse{Block: block, Items: items, Total: types.Subtotal(items)},
	})
}

// CustomerItems reads the items of the customer's first block.
func (s *Service) CustomerItems(ctx context.Context, sheet, customerName string) (ledgerPkg.Block, []types.LineItem, error) {
	t, err := s.rp.Ledger.Sheet(ctx, s.sheetName(sheet))
	if err != nil {
		return ledgerPkg.Block{}, nil, err
	}
	block, err := ledgerPkg.FindByName(ctx, t, customerName)
	if err != nil {
		return ledgerPkg.Block{}, nil, err
	}
	items, err := ledgerPkg.ReadItems(ctx, t, block)
	if err != nil {
		return ledgerPkg.Block{}, nil, err
	}
	return block, items, nil
}

func (s *Service) ListDuplicates(ctx context.Context, sheet string) *types.Response {
	name := s.sheetName(sheet)
	t, err := s.rp.Ledger.Sheet(ctx, name)
	if err != nil {
		return helper.ParseResponse(&types.Response{Error: err})
	}
	blocks, err := ledgerPkg.Reconstruct(ctx, t)
	if err != nil {
		return helper.ParseResponse(&types.Response{Error: err})
	}
	return helper.ParseResponse(&types.Response{
		Code: http.StatusOK,
		Data: DuplicatesResponse{Sheet: name, Names: ledgerPkg.Duplicates(blocks)},
	})
}
