// Package exporter renders invoices into downloadable documents.
package exporter

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	types "order-ledger/internal/common/type"
	"order-ledger/internal/pkg/ledger"
	"order-ledger/internal/pkg/notify"

	"github.com/jung-kurt/gofpdf"
)

const MimePDF = "application/pdf"

type PDF struct {
	loc    *time.Location
	tmpDir string
}

// NewPDF renders dates in loc and stages files under tmpDir ("" uses the
// system temp dir).
func NewPDF(loc *time.Location, tmpDir string) *PDF {
	if loc == nil {
		loc = time.Local
	}
	return &PDF{loc: loc, tmpDir: tmpDir}
}

func (p *PDF) Export(ctx context.Context, inv *types.Invoice) (*types.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(inv.ID, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "INVOICE "+inv.ID)
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 6, "Date: "+inv.Date.In(p.loc).Format("02 January 2006"))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Bill To: "+inv.CustomerName)
	pdf.Ln(6)
	pdf.Cell(0, 6, "Phone: "+inv.Phone)
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 11)
	widths := []float64{80, 25, 40, 45}
	for i, h := range []string{"Item", "Qty", "Unit Price", "Total"} {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 11)
	for _, item := range inv.Items {
		pdf.CellFormat(widths[0], 7, item.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, ledger.FormatNumber(item.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, notify.FormatCurrency(item.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, notify.FormatCurrency(item.Total()), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	label := widths[0] + widths[1] + widths[2]
	for _, row := range [][2]string{
		{"Sub Total", notify.FormatCurrency(inv.Subtotal)},
		{"Discount", notify.FormatCurrency(inv.Discount)},
		{"Shipping Fee", notify.FormatCurrency(inv.Shipping)},
		{"Total", notify.FormatCurrency(inv.Total)},
	} {
		pdf.CellFormat(label, 7, row[0], "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, row[1], "", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice %s: %w", inv.ID, err)
	}

	f, err := os.CreateTemp(p.tmpDir, inv.ID+"-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to stage invoice %s: %w", inv.ID, err)
	}
	path := f.Name()
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to stage invoice %s: %w", inv.ID, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to stage invoice %s: %w", inv.ID, err)
	}

	return &types.Document{
		FileName: inv.ID + ".pdf",
		MimeType: MimePDF,
		Content:  buf.Bytes(),
		Path:     path,
		Cleanup: func(context.Context) error {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return err
			}
			return nil
		},
	}, nil
}
