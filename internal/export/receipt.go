package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/fleetworks/fleetledger/internal/models"
)

// BuildReceiptPDF renders a receipt for one executed settlement batch: its
// ledger entries in write order plus the batch total.
func BuildReceiptPDF(batchID string, txns []models.LedgerTransaction) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Settlement Receipt")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Batch: %s", batchID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Entries: %d", len(txns)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", time.Now().UTC().Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(45, 6, "Entity", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Type", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Period", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Amount", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Completed", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)

	total := decimal.Zero
	for _, t := range txns {
		completed := time.Unix(t.CompletedAt, 0).UTC().Format("2006-01-02")
		pdf.CellFormat(45, 6, t.EntityID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, string(t.Type), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, t.PeriodKey, "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, t.Amount.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, completed, "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		total = total.Add(t.Amount)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Batch Total: %s", total.StringFixed(2)))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
