// Package intake turns free-text orders into line items.
package intake

import (
	"context"
	"fmt"
	"strings"

	"order-ledger/internal/common/errs"
	types "order-ledger/internal/common/type"
	ai "order-ledger/internal/pkg/ai-connector"
	"order-ledger/internal/pkg/helper"
	"order-ledger/internal/pkg/logger"

	"github.com/google/generative-ai-go/genai"
	"github.com/samber/lo"
)

type Parser interface {
	Parse(ctx context.Context, text string) ([]types.LineItem, error)
}

type prompter interface {
	GeminiPromptWithSchema(ctx context.Context, prompt string, schema *genai.Schema) (*ai.PromptResult, error)
}

// GeminiParser asks the model for structured items and falls back to the
// line parser when the model fails or returns nothing usable.
type GeminiParser struct {
	client   prompter
	fallback Parser
}

// NewParser picks Gemini when the client is configured.
func NewParser(client *ai.AiClient) Parser {
	if client.Enabled() {
		return &GeminiParser{client: client, fallback: LineParser{}}
	}
	return LineParser{}
}

var itemsSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"items": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":       {Type: genai.TypeString, Description: "product name"},
					"quantity":   {Type: genai.TypeNumber, Description: "ordered quantity, 1 when not stated"},
					"unit_price": {Type: genai.TypeNumber, Description: "price per unit in rupiah"},
				},
				Required: []string{"name", "quantity", "unit_price"},
			},
		},
	},
	Required: []string{"items"},
}

type geminiItems struct {
	Items []types.LineItem `json:"items"`
}

const promptTemplate = `Extract the ordered products from the customer message below.
Prices are in Indonesian rupiah; "." separates thousands and "," decimals.
Return every product once with its quantity and unit price.

Message:
%s`

func (g *GeminiParser) Parse(ctx context.Context, text string) ([]types.LineItem, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errs.Validation("no items found")
	}

	items, err := g.ask(ctx, text)
	if err != nil {
		logger.Warning.Printf("gemini order parsing failed, using line parser: %v", err)
		return g.fallback.Parse(ctx, text)
	}
	return items, nil
}

func (g *GeminiParser) ask(ctx context.Context, text string) ([]types.LineItem, error) {
	res, err := g.client.GeminiPromptWithSchema(ctx, fmt.Sprintf(promptTemplate, text), itemsSchema)
	if err != nil {
		return nil, err
	}

	parsed, err := helper.StringToStruct[geminiItems](res.Response)
	if err != nil {
		return nil, fmt.Errorf("failed to decode gemini items: %w", err)
	}

	items := lo.Filter(parsed.Items, func(i types.LineItem, _ int) bool {
		return strings.TrimSpace(i.Name) != "" && i.Quantity >= 0 && i.UnitPrice >= 0
	})
	if len(items) == 0 {
		return nil, fmt.Errorf("gemini returned no usable items")
	}
	return items, nil
}
