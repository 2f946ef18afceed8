package doku

import (
	"encoding/json"
	"strings"
)

type checkoutRequest struct {
	Order    orderRequest    `json:"order"`
	Payment  paymentRequest  `json:"payment"`
	Customer customerRequest `json:"customer"`
}

type orderRequest struct {
	Amount        int64      `json:"amount"`
	InvoiceNumber string     `json:"invoice_number"`
	Currency      string     `json:"currency"`
	LineItems     []lineItem `json:"line_items,omitempty"`
}

type lineItem struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"quantity"`
}

type paymentRequest struct {
	PaymentDueDate     int      `json:"payment_due_date"`
	PaymentMethodTypes []string `json:"payment_method_types,omitempty"`
}

type customerRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type checkoutResponse struct {
	Message       json.RawMessage   `json:"message"`
	ErrorMessages []string          `json:"error_messages"`
	Response      *checkoutPayload  `json:"response"`
	Error         *checkoutErrorMsg `json:"error"`
}

type checkoutPayload struct {
	Order struct {
		SessionID     string `json:"session_id"`
		InvoiceNumber string `json:"invoice_number"`
	} `json:"order"`
	Payment struct {
		URL         string `json:"url"`
		TokenID     string `json:"token_id"`
		ExpiredDate string `json:"expired_date"`
	} `json:"payment"`
}

type checkoutErrorMsg struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// message accepts both "message": "..." and "message": ["...", ...].
func (r *checkoutResponse) message() string {
	if len(r.Message) == 0 {
		return ""
	}
	var single string
	if err := json.Unmarshal(r.Message, &single); err == nil {
		return single
	}
	var many []string
	if err := json.Unmarshal(r.Message, &many); err == nil {
		return strings.Join(many, ", ")
	}
	return ""
}

func (r *checkoutResponse) failureMessage() string {
	if len(r.ErrorMessages) > 0 {
		return strings.Join(r.ErrorMessages, ", ")
	}
	if msg := r.message(); msg != "" {
		return msg
	}
	if r.Error != nil && r.Error.Message != "" {
		return r.Error.Message
	}
	return "Unknown error"
}
