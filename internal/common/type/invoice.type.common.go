package types

import (
	"math"
	"time"

	"github.com/samber/lo"
)

// LineItem is one ordered product on a customer's ledger block.
type LineItem struct {
	Name      string  `json:"name" binding:"required" validate:"required"`
	Quantity  float64 `json:"quantity" binding:"gte=0" validate:"gte=0"`
	UnitPrice float64 `json:"unit_price" binding:"gte=0" validate:"gte=0"`
}

func (i LineItem) Total() float64 {
	return i.Quantity * i.UnitPrice
}

// Invoice is built once per generation request and never mutated afterwards.
type Invoice struct {
	ID           string     `json:"id"`
	Date         time.Time  `json:"date"`
	CustomerName string     `json:"customer_name"`
	Phone        string     `json:"phone"`
	Items        []LineItem `json:"items"`
	Discount     float64    `json:"discount"`
	Shipping     float64    `json:"shipping"`
	Subtotal     float64    `json:"subtotal"`
	Total        float64    `json:"total"`
}

// Subtotal sums quantity×unitPrice over items.
func Subtotal(items []LineItem) float64 {
	return lo.SumBy(items, func(i LineItem) float64 { return i.Total() })
}

// NewInvoice computes subtotal and total from the given parts.
func NewInvoice(id string, date time.Time, customerName, phone string, items []LineItem, discount, shipping float64) *Invoice {
	subtotal := Subtotal(items)
	return &Invoice{
		ID:           id,
		Date:         date,
		CustomerName: customerName,
		Phone:        phone,
		Items:        append([]LineItem(nil), items...),
		Discount:     discount,
		Shipping:     shipping,
		Subtotal:     subtotal,
		Total:        subtotal - discount + shipping,
	}
}

// RoundAmount rounds to whole currency units.
func RoundAmount(v float64) int64 {
	return int64(math.Round(v))
}
