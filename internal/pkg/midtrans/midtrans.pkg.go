// Package midtrans requests Snap payment links as an alternative to DOKU.
package midtrans

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	types "order-ledger/internal/common/type"
	"order-ledger/internal/pkg/logger"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/samber/lo"
)

type Config struct {
	ServerKey   string
	Environment string // "sandbox" or "production"
}

type MidtransClient struct {
	Snap snap.Client
}

func Setup(cfg *Config) *MidtransClient {
	env := midtrans.Sandbox
	if strings.EqualFold(cfg.Environment, "production") {
		env = midtrans.Production
	}

	var snapClient snap.Client
	snapClient.New(cfg.ServerKey, env)

	return &MidtransClient{Snap: snapClient}
}

// CreatePaymentLink never returns an error; failures come back as an
// unsuccessful PaymentResult.
func (m *MidtransClient) CreatePaymentLink(_ context.Context, req *types.PaymentRequest) *types.PaymentResult {
	resp, mErr := m.Snap.CreateTransaction(BuildSnapRequest(req))
	res := ParseSnapResult(resp, mErr)
	if !res.Success {
		logger.Warning.Printf("midtrans snap for %s failed: %s", req.InvoiceNumber, res.ErrorMessage)
	}
	return res
}

func BuildSnapRequest(req *types.PaymentRequest) *snap.Request {
	out := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.InvoiceNumber,
			GrossAmt: types.RoundAmount(req.Amount),
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.CustomerName,
			Phone: req.CustomerPhone,
		},
	}

	if len(req.Items) > 0 {
		items := lo.Map(req.Items, func(i types.LineItem, idx int) midtrans.ItemDetails {
			return midtrans.ItemDetails{
				ID:    strconv.Itoa(idx + 1),
				Name:  i.Name,
				Price: types.RoundAmount(i.UnitPrice),
				Qty:   int32(types.RoundAmount(i.Quantity)),
			}
		})
		out.Items = &items
	}
	if req.PaymentDueDateMinutes > 0 {
		out.Expiry = &snap.ExpiryDetails{Unit: "minute", Duration: int64(req.PaymentDueDateMinutes)}
	}
	if len(req.PaymentMethodTypes) > 0 {
		out.EnabledPayments = lo.Map(req.PaymentMethodTypes, func(p string, _ int) snap.SnapPaymentType {
			return snap.SnapPaymentType(p)
		})
	}
	return out
}

func ParseSnapResult(resp *snap.Response, mErr *midtrans.Error) *types.PaymentResult {
	if mErr != nil {
		msg := lo.CoalesceOrEmpty(mErr.Message, "Unknown error")
		body := ""
		if mErr.RawApiResponse != nil {
			body = string(mErr.RawApiResponse.RawBody)
		}
		return types.PaymentFailure(msg, mErr.StatusCode, body)
	}
	if resp == nil || resp.RedirectURL == "" {
		msg := "Unknown error"
		if resp != nil && len(resp.ErrorMessages) > 0 {
			msg = strings.Join(resp.ErrorMessages, ", ")
		}
		return types.PaymentFailure(msg, 0, "")
	}

	return &types.PaymentResult{
		Success:    true,
		PaymentURL: resp.RedirectURL,
		TokenID:    resp.Token,
		HTTPStatus: http.StatusCreated,
	}
}
