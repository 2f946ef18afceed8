// Package notify posts a one-shot webhook summarizing a finished invoice.
package notify

import (
	"context"

	"order-ledger/internal/common/enum"
	"order-ledger/internal/common/errs"
	types "order-ledger/internal/common/type"
	"order-ledger/internal/pkg/helper"
	"order-ledger/internal/pkg/logger"
)

// Summary is what the webhook is told about an invoice.
type Summary struct {
	Invoice    *types.Invoice
	FileURL    string
	FileName   string
	MimeType   string
	PaymentURL string
}

type Payload struct {
	FileURL      string `json:"file_url"`
	CustomerName string `json:"customer_name"`
	PhoneNumber  string `json:"phone_number"`
	TotalAmount  string `json:"total_amount"`
	InvoiceID    string `json:"invoice_id"`
	MimeType     string `json:"mime_type"`
	FileName     string `json:"file_name"`
	Items        string `json:"items"`
	PaymentURL   string `json:"payment_url"`
}

type Dispatcher struct {
	http       *helper.HTTPClient
	webhookURL string
}

func NewDispatcher(webhookURL string, httpClient *helper.HTTPClient) *Dispatcher {
	return &Dispatcher{http: httpClient, webhookURL: webhookURL}
}

func BuildPayload(s Summary) Payload {
	return Payload{
		FileURL:      s.FileURL,
		CustomerName: s.Invoice.CustomerName,
		PhoneNumber:  NormalizePhone(s.Invoice.Phone),
		TotalAmount:  FormatCurrency(s.Invoice.Total),
		InvoiceID:    s.Invoice.ID,
		MimeType:     s.MimeType,
		FileName:     s.FileName,
		Items:        FormatItems(s.Invoice.Items),
		PaymentURL:   s.PaymentURL,
	}
}

// Notify makes a single attempt. Any non-2xx status or transport failure
// is returned as errs.ErrNotification; callers log it and carry on.
func (d *Dispatcher) Notify(ctx context.Context, s Summary) error {
	if d.webhookURL == "" {
		return errs.Notification("webhook url is not configured")
	}

	resp, err := d.http.Request(&helper.HTTPRequestPayload{
		Method: enum.POST,
		URL:    d.webhookURL,
		Body:   BuildPayload(s),
	}, &helper.HTTPRequestConfig{Ctx: ctx})
	if err != nil {
		return errs.Notification("invoice %s: %v", s.Invoice.ID, err)
	}
	if !resp.IsSuccess() {
		return errs.Notification("invoice %s: webhook answered %d: %s", s.Invoice.ID, resp.StatusCode, string(resp.Body))
	}

	logger.Info.Printf("webhook notified for invoice %s", s.Invoice.ID)
	return nil
}
