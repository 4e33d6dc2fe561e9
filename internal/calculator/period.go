// Package calculator implements the pure settlement computations: monthly
// profit aggregation, the payout waterfall and penalty math. Everything here
// is side-effect free; persistence and sequencing live in the service layer.
package calculator

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fleetworks/fleetledger/internal/models"
)

// MonthProfit is the aggregated figure for one month of a period.
type MonthProfit struct {
	Year     int
	Month    time.Month
	Earnings decimal.Decimal
	Expenses decimal.Decimal
	Profit   decimal.Decimal // Earnings - Expenses, may be negative
}

// PeriodProfit is the per-month profit array plus the period total. The
// per-month array is retained because the waterfall is never applied to the
// period total: each month's sign is evaluated independently.
type PeriodProfit struct {
	Period models.Period
	Months []MonthProfit
	Total  decimal.Decimal
}

// AggregatePeriod sums raw earning/expense records into monthly profit
// figures for the given period. Only "paid" earnings and "approved" expenses
// count; records outside the period are ignored. Timestamps are bucketed by
// UTC calendar month.
func AggregatePeriod(period models.Period, earnings []models.EarningRecord, expenses []models.ExpenseRecord) (PeriodProfit, error) {
	if err := period.Validate(); err != nil {
		return PeriodProfit{}, err
	}

	months := make([]MonthProfit, len(period.Months))
	slot := make(map[time.Month]int, len(period.Months))
	for i, m := range period.Months {
		months[i] = MonthProfit{
			Year:     period.Year,
			Month:    m,
			Earnings: decimal.Zero,
			Expenses: decimal.Zero,
		}
		slot[m] = i
	}

	for _, e := range earnings {
		if e.Status != models.EarningStatusPaid {
			continue
		}
		t := time.Unix(e.EarnedAt, 0).UTC()
		if t.Year() != period.Year {
			continue
		}
		if i, ok := slot[t.Month()]; ok {
			months[i].Earnings = months[i].Earnings.Add(e.AmountPaid)
		}
	}

	for _, x := range expenses {
		if x.Status != models.ExpenseStatusApproved {
			continue
		}
		t := time.Unix(x.IncurredAt, 0).UTC()
		if t.Year() != period.Year {
			continue
		}
		if i, ok := slot[t.Month()]; ok {
			months[i].Expenses = months[i].Expenses.Add(x.Amount)
		}
	}

	total := decimal.Zero
	for i := range months {
		months[i].Profit = months[i].Earnings.Sub(months[i].Expenses)
		total = total.Add(months[i].Profit)
	}

	return PeriodProfit{Period: period, Months: months, Total: total}, nil
}
