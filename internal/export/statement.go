// Package export renders settlement statements and receipts for download.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/fleetworks/fleetledger/internal/models"
	"github.com/fleetworks/fleetledger/internal/service"
)

// BuildStatementXLSX renders a period statement workbook: a summary sheet
// with the per-component totals and an items sheet with the month-by-month
// profit and waterfall figures.
func BuildStatementXLSX(summary *service.PeriodSummary, registration string) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	monthsSheet := "months"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(monthsSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Settlement Statement")
	_ = f.SetCellValue(summarySheet, "A3", "Vehicle")
	_ = f.SetCellValue(summarySheet, "B3", registration)
	_ = f.SetCellValue(summarySheet, "A4", "Period")
	_ = f.SetCellValue(summarySheet, "B4", summary.Breakdown.Period.Key())
	_ = f.SetCellValue(summarySheet, "A5", "Profit")
	_ = f.SetCellValue(summarySheet, "B5", summary.Breakdown.Profit.String())

	_ = f.SetCellValue(summarySheet, "A7", "Component")
	_ = f.SetCellValue(summarySheet, "B7", "Computed")
	_ = f.SetCellValue(summarySheet, "C7", "Outstanding")
	_ = f.SetCellValue(summarySheet, "D7", "All Months Positive")
	for i, c := range summary.Components {
		row := i + 8
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), string(c.Type))
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), c.Computed.String())
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("C%d", row), c.Outstanding.String())
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("D%d", row), c.AllMonthsPositive)
	}

	_ = f.SetCellValue(monthsSheet, "A1", "Month")
	_ = f.SetCellValue(monthsSheet, "B1", "Earnings")
	_ = f.SetCellValue(monthsSheet, "C1", "Expenses")
	_ = f.SetCellValue(monthsSheet, "D1", "Profit")
	_ = f.SetCellValue(monthsSheet, "E1", "GST")
	_ = f.SetCellValue(monthsSheet, "F1", "Service Charge")
	_ = f.SetCellValue(monthsSheet, "G1", "Partner Share")
	_ = f.SetCellValue(monthsSheet, "H1", "Owner Payment")
	for i, m := range summary.Breakdown.Months {
		row := i + 2
		_ = f.SetCellValue(monthsSheet, fmt.Sprintf("A%d", row), models.MonthKey(m.Year, m.Month))
		_ = f.SetCellValue(monthsSheet, fmt.Sprintf("B%d", row), m.Earnings.String())
		_ = f.SetCellValue(monthsSheet, fmt.Sprintf("C%d", row), m.Expenses.String())
		_ = f.SetCellValue(monthsSheet, fmt.Sprintf("D%d", row), m.Profit.String())
		_ = f.SetCellValue(monthsSheet, fmt.Sprintf("E%d", row), m.Waterfall.GST.String())
		_ = f.SetCellValue(monthsSheet, fmt.Sprintf("F%d", row), m.Waterfall.ServiceCharge.String())
		_ = f.SetCellValue(monthsSheet, fmt.Sprintf("G%d", row), m.Waterfall.PartnerShare.String())
		_ = f.SetCellValue(monthsSheet, fmt.Sprintf("H%d", row), m.Waterfall.OwnerPayment.String())
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
