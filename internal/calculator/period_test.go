package calculator

import (
	"testing"
	"time"

	"github.com/fleetworks/fleetledger/internal/models"
)

func unixDate(year int, month time.Month, day int) int64 {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC).Unix()
}

func TestAggregatePeriod(t *testing.T) {
	earnings := []models.EarningRecord{
		{VehicleID: "v1", AmountPaid: dec("12000"), EarnedAt: unixDate(2026, time.January, 5), Status: models.EarningStatusPaid},
		{VehicleID: "v1", AmountPaid: dec("3000"), EarnedAt: unixDate(2026, time.January, 20), Status: models.EarningStatusPaid},
		{VehicleID: "v1", AmountPaid: dec("8000"), EarnedAt: unixDate(2026, time.February, 10), Status: models.EarningStatusPaid},
		// Pending earnings never count.
		{VehicleID: "v1", AmountPaid: dec("9999"), EarnedAt: unixDate(2026, time.January, 6), Status: "pending"},
		// Outside the period.
		{VehicleID: "v1", AmountPaid: dec("5000"), EarnedAt: unixDate(2026, time.April, 1), Status: models.EarningStatusPaid},
		{VehicleID: "v1", AmountPaid: dec("5000"), EarnedAt: unixDate(2025, time.January, 1), Status: models.EarningStatusPaid},
	}
	expenses := []models.ExpenseRecord{
		{VehicleID: "v1", Amount: dec("5000"), IncurredAt: unixDate(2026, time.January, 15), Status: models.ExpenseStatusApproved},
		{VehicleID: "v1", Amount: dec("9000"), IncurredAt: unixDate(2026, time.February, 12), Status: models.ExpenseStatusApproved},
		// Rejected expenses never count.
		{VehicleID: "v1", Amount: dec("1234"), IncurredAt: unixDate(2026, time.February, 13), Status: "rejected"},
	}

	period, err := models.NewQuarterlyPeriod(2026, 1)
	if err != nil {
		t.Fatalf("NewQuarterlyPeriod failed: %v", err)
	}

	pp, err := AggregatePeriod(period, earnings, expenses)
	if err != nil {
		t.Fatalf("AggregatePeriod failed: %v", err)
	}

	if len(pp.Months) != 3 {
		t.Fatalf("months = %d, want 3", len(pp.Months))
	}

	// January: 15000 earned, 5000 spent, profit 10000.
	jan := pp.Months[0]
	if !jan.Earnings.Equal(dec("15000")) {
		t.Errorf("jan earnings = %s, want 15000", jan.Earnings)
	}
	if !jan.Profit.Equal(dec("10000")) {
		t.Errorf("jan profit = %s, want 10000", jan.Profit)
	}

	// February: 8000 earned, 9000 spent, profit may be negative.
	feb := pp.Months[1]
	if !feb.Profit.Equal(dec("-1000")) {
		t.Errorf("feb profit = %s, want -1000", feb.Profit)
	}

	// March: no records at all.
	mar := pp.Months[2]
	if !mar.Profit.IsZero() {
		t.Errorf("mar profit = %s, want 0", mar.Profit)
	}

	// Period total is the sum of per-month profit, losses included.
	if !pp.Total.Equal(dec("9000")) {
		t.Errorf("total = %s, want 9000", pp.Total)
	}
}

func TestAggregatePeriodRejectsBadPeriods(t *testing.T) {
	tests := []struct {
		name   string
		period models.Period
	}{
		{
			name:   "unknown type",
			period: models.Period{Type: "weekly", Year: 2026, Months: []time.Month{time.January}},
		},
		{
			name:   "quarterly with wrong month count",
			period: models.Period{Type: models.PeriodQuarterly, Year: 2026, Months: []time.Month{time.January, time.February}},
		},
		{
			name:   "non-contiguous months",
			period: models.Period{Type: models.PeriodQuarterly, Year: 2026, Months: []time.Month{time.January, time.March, time.April}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := AggregatePeriod(tt.period, nil, nil); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
