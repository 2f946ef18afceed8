package exporter

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	types "order-ledger/internal/common/type"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDFExport(t *testing.T) {
	ctx := context.Background()
	inv := types.NewInvoice("INV-20240309-0001", time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), "Alice", "08112411915",
		[]types.LineItem{{Name: "pen", Quantity: 2, UnitPrice: 1000}, {Name: "book", Quantity: 1, UnitPrice: 5000}},
		1000, 2000)

	doc, err := NewPDF(time.UTC, t.TempDir()).Export(ctx, inv)
	require.NoError(t, err)

	assert.Equal(t, "INV-20240309-0001.pdf", doc.FileName)
	assert.Equal(t, MimePDF, doc.MimeType)
	assert.True(t, bytes.HasPrefix(doc.Content, []byte("%PDF-")))

	staged, err := os.ReadFile(doc.Path)
	require.NoError(t, err)
	assert.Equal(t, doc.Content, staged)

	require.NoError(t, doc.Cleanup(ctx))
	_, err = os.Stat(doc.Path)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, doc.Cleanup(ctx))
}

func TestPDFExportCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPDF(nil, "").Export(ctx, &types.Invoice{ID: "INV-1"})
	assert.ErrorIs(t, err, context.Canceled)
}
