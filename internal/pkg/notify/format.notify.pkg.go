package notify

import (
	"strings"

	types "order-ledger/internal/common/type"
	"order-ledger/internal/pkg/ledger"

	"github.com/samber/lo"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const countryCode = "62"

var idr = message.NewPrinter(language.Indonesian)

// NormalizePhone turns local and +62 numbers into 62xxxxxxxxxx.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(phone) {
		if (r >= '0' && r <= '9') || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}
	digits := strings.TrimPrefix(b.String(), "+")

	switch {
	case digits == "":
		return ""
	case strings.HasPrefix(digits, "0"):
		return countryCode + digits[1:]
	case strings.HasPrefix(digits, countryCode):
		return digits
	default:
		return countryCode + digits
	}
}

// FormatCurrency renders whole rupiah with "." thousands separators.
func FormatCurrency(amount float64) string {
	return "Rp " + idr.Sprintf("%d", types.RoundAmount(amount))
}

func FormatItems(items []types.LineItem) string {
	lines := lo.Map(items, func(i types.LineItem, _ int) string {
		return "- " + i.Name + " x " + ledger.FormatNumber(i.Quantity) + ", " + FormatCurrency(i.Total())
	})
	return strings.Join(lines, "\n")
}
