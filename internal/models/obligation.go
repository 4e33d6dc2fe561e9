package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ObligationClass separates the two obligation queues kept per vehicle.
type ObligationClass string

const (
	// ObligationEMI is a loan installment from the amortization schedule.
	ObligationEMI ObligationClass = "emi"

	// ObligationRent is one rent week derived from the assignment.
	ObligationRent ObligationClass = "rent"
)

// ObligationState classifies an obligation relative to "now".
type ObligationState string

const (
	// StateFuture: not yet payable.
	StateFuture ObligationState = "future"

	// StateDueSoon: payable now. For EMIs this means within the configured
	// lead window before the due date; for rent it is the week containing
	// today.
	StateDueSoon ObligationState = "due_soon"

	// StateOverdue: due date passed without settlement.
	StateOverdue ObligationState = "overdue"

	// StatePaid: settled via the ledger; terminal.
	StatePaid ObligationState = "paid"
)

// Obligation is one schedulable payable unit. Obligations are created when
// the loan or assignment is created, flipped to paid by a successful
// settlement, and never deleted.
type Obligation struct {
	// VehicleID is the vehicle the obligation belongs to.
	VehicleID string

	// Class is the queue the obligation lives in (emi or rent).
	Class ObligationClass

	// Index is the position in the class's due-date-ascending queue,
	// starting at 0. The oldest-first invariant is expressed in terms of
	// this index: index k may settle only after all indices < k.
	Index int

	// DueDate is when the obligation falls due (UTC midnight).
	DueDate time.Time

	// Amount is the fixed amount owed, excluding any penalty.
	Amount decimal.Decimal

	// Paid reports whether the obligation has been settled.
	Paid bool

	// PaidAt is the Unix timestamp of settlement, 0 while unpaid.
	PaidAt int64
}
