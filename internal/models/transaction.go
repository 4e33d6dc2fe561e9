package models

import "github.com/shopspring/decimal"

// TransactionType identifies what a ledger entry settles.
type TransactionType string

const (
	// Waterfall payouts.
	TxGST           TransactionType = "gst"
	TxServiceCharge TransactionType = "service_charge"
	TxPartnerShare  TransactionType = "partner_share"
	TxOwnerPayment  TransactionType = "owner_payment"

	// Obligation collections.
	TxEMI  TransactionType = "emi"
	TxRent TransactionType = "rent"
)

// WaterfallTypes lists the four payout components in waterfall order.
var WaterfallTypes = []TransactionType{TxGST, TxServiceCharge, TxPartnerShare, TxOwnerPayment}

// IsWaterfall reports whether the type is one of the four payout components.
func (t TransactionType) IsWaterfall() bool {
	switch t {
	case TxGST, TxServiceCharge, TxPartnerShare, TxOwnerPayment:
		return true
	}
	return false
}

// IsCollection reports whether settling this type collects cash (EMI/rent)
// rather than paying it out.
func (t TransactionType) IsCollection() bool {
	return t == TxEMI || t == TxRent
}

// TransactionStatus is the recorded outcome of a ledger entry.
type TransactionStatus string

const (
	TxCompleted TransactionStatus = "completed"
	TxReversed  TransactionStatus = "reversed"
)

// PaymentStatus is the derived state of an (entity, type, period) tuple.
type PaymentStatus string

const (
	PaymentUnpaid    PaymentStatus = "unpaid"
	PaymentCompleted PaymentStatus = "completed"
	PaymentReversed  PaymentStatus = "reversed"
)

// LedgerTransaction is one append-only settlement log entry. Once written its
// fields are never mutated; corrections are additional entries for the same
// (entity, type, period) tuple.
type LedgerTransaction struct {
	// ID is the unique identifier for the entry (UUID format).
	ID string

	// EntityID is the settled entity, normally a vehicle ID.
	EntityID string

	// Type is what the entry settles.
	Type TransactionType

	// Amount is the settled amount (obligation amount plus penalty for EMI
	// collections).
	Amount decimal.Decimal

	// PeriodKey is the month key ("2026-03") the entry settles.
	PeriodKey string

	// Status is completed or reversed.
	Status TransactionStatus

	// BatchID groups entries written by one settlement batch.
	BatchID string

	// CreatedAt is the Unix timestamp the entry was written.
	CreatedAt int64

	// CompletedAt is the Unix timestamp the settlement took effect. The
	// entry with the greatest CompletedAt wins when deriving paid state; a
	// zero value is treated as the earliest possible time.
	CompletedAt int64
}

// CompanyEntityID is the entity key for the company-aggregate cash balance.
const CompanyEntityID = "company"

// CashBalance is a running cash total, mutated atomically alongside each
// ledger write: incremented on collections, decremented on payouts.
type CashBalance struct {
	// EntityID is a vehicle ID or CompanyEntityID.
	EntityID string

	// Amount is the current balance.
	Amount decimal.Decimal

	// UpdatedAt is the Unix timestamp of the last adjustment.
	UpdatedAt int64
}
