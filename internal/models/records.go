package models

import "github.com/shopspring/decimal"

// Earning and expense records are produced and validated by the host
// application; the engine only reads them. Status values other than the ones
// below are ignored by aggregation.
const (
	EarningStatusPaid     = "paid"
	ExpenseStatusApproved = "approved"
)

// EarningRecord is one collected trip/contract payment for a vehicle.
type EarningRecord struct {
	// ID is the unique identifier for the record (UUID format).
	ID string

	// VehicleID is the vehicle this earning belongs to.
	VehicleID string

	// AmountPaid is the amount actually collected.
	AmountPaid decimal.Decimal

	// EarnedAt is the Unix timestamp of the earning.
	EarnedAt int64

	// Status is "paid" for records that count toward profit.
	Status string
}

// ExpenseRecord is one approved cost charged against a vehicle.
type ExpenseRecord struct {
	// ID is the unique identifier for the record (UUID format).
	ID string

	// VehicleID is the vehicle this expense belongs to.
	VehicleID string

	// Amount is the expense amount.
	Amount decimal.Decimal

	// IncurredAt is the Unix timestamp of the expense.
	IncurredAt int64

	// Status is "approved" for records that count toward profit.
	Status string
}
