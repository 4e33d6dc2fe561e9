package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Default terms applied when a vehicle profile does not override them.
var (
	DefaultPartnershipPct    = decimal.RequireFromString("0.5")
	DefaultServiceChargeRate = decimal.RequireFromString("0.1")
)

// Vehicle is the per-vehicle profile driving settlement terms.
type Vehicle struct {
	// ID is the unique identifier for the vehicle (UUID format).
	ID string

	// Registration is the plate / fleet number, display only.
	Registration string

	// IsPartnership marks vehicles run under a partner agreement; it gates
	// the service charge and partner share in the waterfall.
	IsPartnership bool

	// PartnershipPct is the partner's share of remaining profit (0..1).
	PartnershipPct decimal.Decimal

	// ServiceChargeRate is the management charge rate on positive profit
	// (0..1), applied to partnership vehicles only.
	ServiceChargeRate decimal.Decimal

	// Loan is the financing terms, nil for vehicles bought outright.
	Loan *Loan

	// Assignment is the active rent agreement, nil when the vehicle is not
	// currently assigned.
	Assignment *Assignment

	// CreatedAt is the Unix timestamp when the profile was created.
	CreatedAt int64
}

// Loan carries the amortization schedule the EMI obligation queue is built
// from. The schedule is owned by the external financing system; the engine
// never recomputes installment amounts.
type Loan struct {
	// Principal is the financed amount, display only.
	Principal decimal.Decimal

	// Schedule is the ordered list of installments, due-date ascending.
	Schedule []EMIEntry
}

// EMIEntry is one installment in a loan amortization schedule.
type EMIEntry struct {
	// Sequence is the installment number starting at 0.
	Sequence int

	// DueDate is when the installment falls due (UTC midnight).
	DueDate time.Time

	// Amount is the fixed installment amount.
	Amount decimal.Decimal
}

// Assignment is a weekly rent agreement for a vehicle: one rent obligation
// per week from StartDate for DurationWeeks weeks.
type Assignment struct {
	// DriverName identifies the assigned driver, display only.
	DriverName string

	// StartDate is the first day of the first rent week (UTC midnight).
	StartDate time.Time

	// WeeklyRent is the fixed rent collected per week.
	WeeklyRent decimal.Decimal

	// DurationWeeks is the agreed number of rent weeks.
	DurationWeeks int
}

// Terms returns the vehicle's waterfall terms with defaults filled in for
// zero-valued rates.
func (v *Vehicle) Terms() VehicleTerms {
	t := VehicleTerms{
		IsPartnership:     v.IsPartnership,
		PartnershipPct:    v.PartnershipPct,
		ServiceChargeRate: v.ServiceChargeRate,
	}
	if t.PartnershipPct.IsZero() {
		t.PartnershipPct = DefaultPartnershipPct
	}
	if t.ServiceChargeRate.IsZero() {
		t.ServiceChargeRate = DefaultServiceChargeRate
	}
	return t
}

// VehicleTerms is the minimal input the waterfall needs.
type VehicleTerms struct {
	IsPartnership     bool
	PartnershipPct    decimal.Decimal
	ServiceChargeRate decimal.Decimal
}
