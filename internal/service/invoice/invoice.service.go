package invoice

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"order-ledger/internal/common/errs"
	types "order-ledger/internal/common/type"
	"order-ledger/internal/pkg/helper"
	"order-ledger/internal/pkg/invoiceid"
	"order-ledger/internal/pkg/logger"
	"order-ledger/internal/pkg/notify"

	"github.com/samber/lo"
)

func (s *Service) CreateInvoice(ctx context.Context, req *CreateInvoiceRequest) *types.Response {
	res, err := s.Create(ctx, req)
	if err != nil {
		return helper.ParseResponse(&types.Response{Error: err})
	}
	return helper.ParseResponse(&types.Response{
		Code:    http.StatusCreated,
		Message: "Invoice created",
		Data:    res,
	})
}

// Create issues an invoice for the customer's ledger items. Only reading the
// ledger, issuing the id and recording the invoice rows can fail the call;
// payment link, document, webhook and event problems are logged and
// reflected in the response.
func (s *Service) Create(ctx context.Context, req *CreateInvoiceRequest) (*CreateInvoiceResponse, error) {
	name := strings.TrimSpace(req.CustomerName)
	phone := strings.TrimSpace(req.Phone)
	switch {
	case name == "":
		return nil, errs.Validation("customer name is required")
	case phone == "":
		return nil, errs.Validation("phone is required")
	case req.Discount < 0 || req.Shipping < 0:
		return nil, errs.Validation("discount and shipping must not be negative")
	}

	_, items, err := s.deps.Items.CustomerItems(ctx, req.Sheet, name)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, errs.Validation("customer %q has no items", name)
	}

	id, err := s.deps.IDs.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to issue invoice id: %w", err)
	}
	inv := types.NewInvoice(id, s.cfg.Now().In(s.cfg.Location), name, phone, items, req.Discount, req.Shipping)

	if err := s.rp.Invoice.Append(ctx, s.cfg.InvoiceSheet, inv); err != nil {
		return nil, err
	}
	s.deps.Metrics.InvoiceCreated()
	logger.Info.Printf("invoice %s issued for %q, total %s", inv.ID, inv.CustomerName, notify.FormatCurrency(inv.Total))

	res := &CreateInvoiceResponse{Invoice: inv}

	payment := s.requestPayment(ctx, inv, req.PaymentMethodTypes)
	if payment.Success {
		res.PaymentURL = payment.PaymentURL
	} else {
		res.PaymentError = payment.ErrorMessage
		s.deps.Metrics.PaymentLinkFailed(s.cfg.ProviderName)
		logger.Error.Printf("payment link for %s failed (status %d): %s", inv.ID, payment.HTTPStatus, payment.ErrorMessage)
	}

	doc := s.storeDocument(ctx, inv)

	summary := notify.Summary{Invoice: inv, PaymentURL: res.PaymentURL}
	if doc != nil {
		res.FileURL = doc.url
		summary.FileURL = doc.url
		summary.FileName = doc.FileName
		summary.MimeType = doc.MimeType
	}
	if err := s.deps.Notifier.Notify(ctx, summary); err != nil {
		s.deps.Metrics.NotificationFailed()
		logger.Error.Printf("notification for %s failed: %v", inv.ID, err)
	} else {
		res.Notified = true
	}

	s.publishCreated(ctx, res)
	return res, nil
}

func (s *Service) requestPayment(ctx context.Context, inv *types.Invoice, methods []string) *types.PaymentResult {
	if s.deps.Payments == nil {
		return types.PaymentFailure("payment provider is not configured", 0, "")
	}
	return s.deps.Payments.CreatePaymentLink(ctx, &types.PaymentRequest{
		InvoiceNumber:         inv.ID,
		Amount:                inv.Total,
		Currency:              types.CurrencyIDR,
		CustomerName:          inv.CustomerName,
		CustomerPhone:         notify.NormalizePhone(inv.Phone),
		Items:                 inv.Items,
		PaymentDueDateMinutes: s.cfg.PaymentDueMinutes,
		PaymentMethodTypes:    lo.Ternary(len(methods) > 0, methods, s.cfg.PaymentMethodTypes),
	})
}

type storedDocument struct {
	*types.Document
	url string
}

// storeDocument exports, uploads, waits for the object and presigns it.
// Returns nil when any step fails.
func (s *Service) storeDocument(ctx context.Context, inv *types.Invoice) *storedDocument {
	if s.deps.Exporter == nil || s.deps.Storage == nil {
		return nil
	}

	doc, err := s.deps.Exporter.Export(ctx, inv)
	if err != nil {
		logger.Error.Printf("export of %s failed: %v", inv.ID, err)
		return nil
	}
	defer func() {
		if doc.Cleanup == nil {
			return
		}
		if err := doc.Cleanup(ctx); err != nil {
			logger.Warning.Printf("cleanup of %s failed: %v", doc.FileName, err)
		}
	}()

	key := ObjectKey(inv, doc.FileName)
	if err := s.deps.Storage.UploadFile(ctx, key, doc.Content, doc.MimeType); err != nil {
		logger.Error.Printf("upload of %s failed: %v", key, err)
		return nil
	}
	if err := s.deps.Storage.WaitUntilExists(ctx, key); err != nil {
		logger.Error.Printf("%s did not appear in storage: %v", key, err)
		return nil
	}
	url, err := s.deps.Storage.GetPresignedURL(ctx, key)
	if err != nil {
		logger.Error.Printf("presign of %s failed: %v", key, err)
		return nil
	}
	return &storedDocument{Document: doc, url: url}
}

// ObjectKey groups invoice documents by issue date.
func ObjectKey(inv *types.Invoice, fileName string) string {
	return fmt.Sprintf("invoices/%s/%s", invoiceid.DateKey(inv.Date), fileName)
}

func (s *Service) publishCreated(ctx context.Context, res *CreateInvoiceResponse) {
	if s.deps.Publisher == nil {
		return
	}
	err := s.deps.Publisher.PublishEvent(ctx, EventQueue, EventInvoiceCreated, InvoiceCreatedEvent{
		InvoiceID:    res.Invoice.ID,
		CustomerName: res.Invoice.CustomerName,
		Phone:        res.Invoice.Phone,
		Total:        res.Invoice.Total,
		PaymentURL:   res.PaymentURL,
		FileURL:      res.FileURL,
	})
	if err != nil {
		logger.Warning.Printf("failed to publish %s for %s: %v", EventInvoiceCreated, res.Invoice.ID, err)
	}
}
