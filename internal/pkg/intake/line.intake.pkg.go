package intake

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"order-ledger/internal/common/errs"
	types "order-ledger/internal/common/type"
	"order-ledger/internal/pkg/helper"
)

// linePattern matches "pen x2 @1000", "pen x 2 @ Rp 1.000" and "pen @1000".
var linePattern = regexp.MustCompile(`(?i)^(.+?)(?:\s+x\s*([0-9]+(?:[.,][0-9]+)?))?\s*@\s*(.+)$`)

// LineParser reads one item per line. Blank lines and list bullets are ignored.
type LineParser struct{}

func (LineParser) Parse(_ context.Context, text string) ([]types.LineItem, error) {
	items := make([]types.LineItem, 0)
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		line = strings.TrimSpace(strings.TrimLeft(line, "-*•"))
		if line == "" {
			continue
		}

		item, err := parseLine(line)
		if err != nil {
			return nil, errs.Validation("line %d %q: %v", i+1, line, err)
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, errs.Validation("no items found")
	}
	return items, nil
}

func parseLine(line string) (types.LineItem, error) {
	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return types.LineItem{}, errs.Validation("expected \"name x<qty> @<price>\"")
	}

	qty := 1.0
	if m[2] != "" {
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[2], ",", "."), 64)
		if err != nil {
			return types.LineItem{}, err
		}
		qty = v
	}

	price, err := helper.StringToFloat64(m[3])
	if err != nil {
		return types.LineItem{}, err
	}

	return types.LineItem{
		Name:      strings.TrimSpace(m[1]),
		Quantity:  qty,
		UnitPrice: *price,
	}, nil
}
