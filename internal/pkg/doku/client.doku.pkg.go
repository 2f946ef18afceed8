// Package doku requests hosted checkout links from the DOKU payment gateway.
package doku

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"order-ledger/internal/common/enum"
	types "order-ledger/internal/common/type"
	"order-ledger/internal/pkg/helper"
	"order-ledger/internal/pkg/logger"

	"github.com/samber/lo"
)

const (
	EndpointPath  = "/checkout/v1/payment"
	ProductionURL = "https://api.doku.com"
	SandboxURL    = "https://api-sandbox.doku.com"
)

type Config struct {
	ClientID    string
	SecretKey   string
	Environment string
	// ProductionURL and SandboxURL override the gateway hosts when set.
	ProductionURL string
	SandboxURL    string
}

type Client struct {
	http          *helper.HTTPClient
	signer        *Signer
	environment   string
	productionURL string
	sandboxURL    string
}

func Setup(cfg *Config, httpClient *helper.HTTPClient) *Client {
	return &Client{
		http:          httpClient,
		signer:        NewSigner(cfg.ClientID, cfg.SecretKey),
		environment:   cfg.Environment,
		productionURL: lo.CoalesceOrEmpty(cfg.ProductionURL, ProductionURL),
		sandboxURL:    lo.CoalesceOrEmpty(cfg.SandboxURL, SandboxURL),
	}
}

// BaseURL picks production only for a case-insensitive "production".
func (c *Client) BaseURL(environment string) string {
	if strings.EqualFold(strings.TrimSpace(environment), "production") {
		return c.productionURL
	}
	return c.sandboxURL
}

// CreatePaymentLink uses the configured environment.
func (c *Client) CreatePaymentLink(ctx context.Context, req *types.PaymentRequest) *types.PaymentResult {
	return c.RequestPaymentURL(ctx, req, c.environment)
}

// RequestPaymentURL never returns an error: every failure, transport
// included, comes back as an unsuccessful PaymentResult.
func (c *Client) RequestPaymentURL(ctx context.Context, req *types.PaymentRequest, environment string) *types.PaymentResult {
	body, err := helper.JSONToByte(buildCheckoutRequest(req))
	if err != nil {
		return types.PaymentFailure(fmt.Sprintf("failed to encode request: %v", err), 0, "")
	}

	headers := c.signer.SignRequest(body, EndpointPath)
	resp, err := c.http.Request(&helper.HTTPRequestPayload{
		Method: enum.POST,
		URL:    c.BaseURL(environment) + EndpointPath,
		Body:   body,
	}, &helper.HTTPRequestConfig{
		Ctx:     ctx,
		Headers: headers.Header(),
	})
	if err != nil {
		logger.Warning.Printf("doku request for %s failed: %v", req.InvoiceNumber, err)
		return types.PaymentFailure(err.Error(), 0, "")
	}

	return parseCheckoutResponse(resp.StatusCode, resp.Body)
}

func buildCheckoutRequest(req *types.PaymentRequest) checkoutRequest {
	out := checkoutRequest{
		Order: orderRequest{
			Amount:        types.RoundAmount(req.Amount),
			InvoiceNumber: req.InvoiceNumber,
			Currency:      lo.CoalesceOrEmpty(req.Currency, types.CurrencyIDR),
		},
		Payment: paymentRequest{
			PaymentDueDate:     req.PaymentDueDateMinutes,
			PaymentMethodTypes: req.PaymentMethodTypes,
		},
		Customer: customerRequest{
			Name:  req.CustomerName,
			Phone: req.CustomerPhone,
		},
	}
	if len(req.Items) > 0 {
		out.Order.LineItems = lo.Map(req.Items, func(i types.LineItem, _ int) lineItem {
			return lineItem{
				Name:     i.Name,
				Price:    types.RoundAmount(i.UnitPrice),
				Quantity: types.RoundAmount(i.Quantity),
			}
		})
	}
	return out
}

func parseCheckoutResponse(status int, body []byte) *types.PaymentResult {
	var parsed checkoutResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return types.PaymentFailure("Unknown error", status, string(body))
	}

	if status != http.StatusOK || parsed.Response == nil {
		return types.PaymentFailure(parsed.failureMessage(), status, string(body))
	}

	return &types.PaymentResult{
		Success:     true,
		PaymentURL:  parsed.Response.Payment.URL,
		TokenID:     parsed.Response.Payment.TokenID,
		SessionID:   parsed.Response.Order.SessionID,
		ExpiredDate: parsed.Response.Payment.ExpiredDate,
		HTTPStatus:  status,
	}
}
