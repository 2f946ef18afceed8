package types

const CurrencyIDR = "IDR"

// PaymentRequest is derived from an Invoice and never persisted.
type PaymentRequest struct {
	InvoiceNumber         string
	Amount                float64
	Currency              string
	CustomerName          string
	CustomerPhone         string
	Items                 []LineItem
	PaymentDueDateMinutes int
	PaymentMethodTypes    []string
}

// PaymentResult is either a payment link or a failure description.
// Gateways never return an error alongside it.
type PaymentResult struct {
	Success     bool   `json:"success"`
	PaymentURL  string `json:"payment_url,omitempty"`
	TokenID     string `json:"token_id,omitempty"`
	SessionID   string `json:"session_id,omitempty"`
	ExpiredDate string `json:"expired_date,omitempty"`

	ErrorMessage string `json:"error_message,omitempty"`
	HTTPStatus   int    `json:"http_status,omitempty"`
	RawBody      string `json:"-"`
}

func PaymentFailure(message string, status int, body string) *PaymentResult {
	return &PaymentResult{
		Success:      false,
		ErrorMessage: message,
		HTTPStatus:   status,
		RawBody:      body,
	}
}
