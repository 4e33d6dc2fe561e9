package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/fleetworks/fleetledger/internal/models"
)

// GSTRate is the statutory rate applied to positive monthly profit.
var GSTRate = decimal.RequireFromString("0.04")

// Waterfall derives the four payout components from a single month's profit.
// Deduction order is fixed: GST, then service charge, then the partner split
// of whatever remains. A non-positive month yields zero for every component.
func Waterfall(profit decimal.Decimal, terms models.VehicleTerms) models.WaterfallResult {
	res := models.ZeroWaterfall()

	if profit.Sign() > 0 {
		res.GST = profit.Mul(GSTRate)
		if terms.IsPartnership {
			res.ServiceCharge = profit.Mul(terms.ServiceChargeRate)
		}
	}

	remaining := profit.Sub(res.GST).Sub(res.ServiceCharge)
	if remaining.Sign() > 0 {
		if terms.IsPartnership {
			res.PartnerShare = remaining.Mul(terms.PartnershipPct)
			res.OwnerPayment = remaining.Sub(res.PartnerShare)
		} else {
			res.OwnerPayment = remaining
		}
	}

	return res
}

// MonthBreakdown pairs one month's profit with its waterfall.
type MonthBreakdown struct {
	MonthProfit
	Waterfall models.WaterfallResult
}

// PeriodBreakdown is the waterfall applied month by month across a period.
// Totals are the sum of per-month results, never the waterfall applied to the
// summed profit: a loss month contributes zero to every component regardless
// of other months' surplus.
type PeriodBreakdown struct {
	Period models.Period
	Months []MonthBreakdown
	Profit decimal.Decimal
	Totals models.WaterfallResult
}

// BreakdownPeriod computes the per-month waterfall for an aggregated period.
func BreakdownPeriod(pp PeriodProfit, terms models.VehicleTerms) PeriodBreakdown {
	out := PeriodBreakdown{
		Period: pp.Period,
		Months: make([]MonthBreakdown, len(pp.Months)),
		Profit: pp.Total,
		Totals: models.ZeroWaterfall(),
	}
	for i, m := range pp.Months {
		w := Waterfall(m.Profit, terms)
		out.Months[i] = MonthBreakdown{MonthProfit: m, Waterfall: w}
		out.Totals = out.Totals.Add(w)
	}
	return out
}

// AllMonthsPositive reports whether every month in the period produced a
// strictly positive value for the component. It gates whether a period may be
// presented as fully settled rather than partially payable.
func (b PeriodBreakdown) AllMonthsPositive(t models.TransactionType) bool {
	if len(b.Months) == 0 {
		return false
	}
	for _, m := range b.Months {
		if m.Waterfall.Component(t).Sign() <= 0 {
			return false
		}
	}
	return true
}
