package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fleetworks/fleetledger/internal/calculator"
	"github.com/fleetworks/fleetledger/internal/models"
	"github.com/fleetworks/fleetledger/internal/service"
)

func testSummary() *service.PeriodSummary {
	month := calculator.MonthBreakdown{
		MonthProfit: calculator.MonthProfit{
			Year:     2026,
			Month:    time.January,
			Earnings: decimal.RequireFromString("20000"),
			Expenses: decimal.RequireFromString("10000"),
			Profit:   decimal.RequireFromString("10000"),
		},
		Waterfall: models.WaterfallResult{
			GST:           decimal.RequireFromString("400"),
			ServiceCharge: decimal.RequireFromString("1000"),
			PartnerShare:  decimal.RequireFromString("4300"),
			OwnerPayment:  decimal.RequireFromString("4300"),
		},
	}
	return &service.PeriodSummary{
		VehicleID: "veh-1",
		Breakdown: calculator.PeriodBreakdown{
			Period: models.NewMonthlyPeriod(2026, time.January),
			Months: []calculator.MonthBreakdown{month},
			Profit: decimal.RequireFromString("10000"),
			Totals: month.Waterfall,
		},
		Components: []service.ComponentSummary{
			{
				Type:              models.TxGST,
				Computed:          decimal.RequireFromString("400"),
				Outstanding:       decimal.RequireFromString("400"),
				AllMonthsPositive: true,
			},
		},
	}
}

func TestBuildStatementXLSX(t *testing.T) {
	data, err := BuildStatementXLSX(testSummary(), "KA-01-1234")
	if err != nil {
		t.Fatalf("BuildStatementXLSX failed: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected workbook bytes")
	}
	// XLSX is a zip archive.
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Error("expected zip container signature")
	}
}

func TestBuildReceiptPDF(t *testing.T) {
	txns := []models.LedgerTransaction{
		{
			EntityID:    "veh-1",
			Type:        models.TxEMI,
			Amount:      decimal.RequireFromString("5150"),
			PeriodKey:   "2026-01",
			Status:      models.TxCompleted,
			BatchID:     "batch-1",
			CompletedAt: time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC).Unix(),
		},
	}
	data, err := BuildReceiptPDF("batch-1", txns)
	if err != nil {
		t.Fatalf("BuildReceiptPDF failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("expected PDF signature")
	}
}
