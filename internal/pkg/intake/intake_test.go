package intake

import (
	"context"
	"errors"
	"testing"

	"order-ledger/internal/common/errs"
	types "order-ledger/internal/common/type"
	ai "order-ledger/internal/pkg/ai-connector"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineParser(t *testing.T) {
	items, err := LineParser{}.Parse(context.Background(), `
- pen x2 @1000
* Book X 1 @ Rp 5.000
ink @250,5
`)
	require.NoError(t, err)
	assert.Equal(t, []types.LineItem{
		{Name: "pen", Quantity: 2, UnitPrice: 1000},
		{Name: "Book", Quantity: 1, UnitPrice: 5000},
		{Name: "ink", Quantity: 1, UnitPrice: 250.5},
	}, items)
}

func TestLineParserRejects(t *testing.T) {
	for _, text := range []string{"", "  \n ", "pen x2", "pen x2 @abc"} {
		_, err := LineParser{}.Parse(context.Background(), text)
		assert.ErrorIs(t, err, errs.ErrValidation, text)
	}
}

type fakePrompter struct {
	response string
	err      error
	prompts  []string
}

func (f *fakePrompter) GeminiPromptWithSchema(_ context.Context, prompt string, schema *genai.Schema) (*ai.PromptResult, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return nil, f.err
	}
	return &ai.PromptResult{Response: f.response}, nil
}

func TestGeminiParser(t *testing.T) {
	fake := &fakePrompter{response: `{"items":[{"name":"pen","quantity":2,"unit_price":1000},{"name":"","quantity":1,"unit_price":1}]}`}
	p := &GeminiParser{client: fake, fallback: LineParser{}}

	items, err := p.Parse(context.Background(), "two pens, a thousand each")
	require.NoError(t, err)
	assert.Equal(t, []types.LineItem{{Name: "pen", Quantity: 2, UnitPrice: 1000}}, items)
	require.Len(t, fake.prompts, 1)
	assert.Contains(t, fake.prompts[0], "two pens, a thousand each")
}

func TestGeminiParserFallsBack(t *testing.T) {
	cases := map[string]*fakePrompter{
		"error":    {err: errors.New("quota exceeded")},
		"bad json": {response: "not json"},
		"empty":    {response: `{"items":[]}`},
	}
	for name, fake := range cases {
		t.Run(name, func(t *testing.T) {
			p := &GeminiParser{client: fake, fallback: LineParser{}}
			items, err := p.Parse(context.Background(), "pen x2 @1000")
			require.NoError(t, err)
			assert.Equal(t, []types.LineItem{{Name: "pen", Quantity: 2, UnitPrice: 1000}}, items)
		})
	}
}

func TestNewParserWithoutKey(t *testing.T) {
	client, err := ai.NewAiClient(context.Background(), &ai.Config{})
	require.NoError(t, err)
	assert.IsType(t, LineParser{}, NewParser(client))
}
