// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/fleetworks/fleetledger/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadySettled is returned by ApplySettlement when the target obligation
// is already marked paid; the whole apply is rolled back.
var ErrAlreadySettled = errors.New("obligation already settled")

// ObligationKey identifies one obligation inside its vehicle/class queue.
type ObligationKey struct {
	VehicleID string
	Class     models.ObligationClass
	Index     int
}

// SettlementApply is one atomic settlement unit: a ledger append, an optional
// obligation flip and the cash balance deltas, committed together or not at
// all. The engine treats this as the storage layer's transaction boundary.
type SettlementApply struct {
	// Transaction is the ledger entry to append.
	Transaction models.LedgerTransaction

	// MarkPaid names the obligation to flip to paid, nil for waterfall
	// payouts.
	MarkPaid *ObligationKey

	// VehicleDelta and CompanyDelta adjust the running balances: positive
	// for collections, negative for payouts.
	VehicleDelta decimal.Decimal
	CompanyDelta decimal.Decimal
}

// Store defines the interface for settlement engine persistence. The
// abstraction allows swapping storage backends (SQLite, PostgreSQL, ...)
// without changing the service layer, and lets tests inject failures.
type Store interface {
	// Operators.
	CreateOperator(ctx context.Context, op *models.Operator) error
	GetOperatorByEmail(ctx context.Context, email string) (*models.Operator, error)

	// Vehicles. CreateVehicle persists the profile and the obligation
	// queues derived from its loan schedule and assignment in one
	// transaction. GetVehicle rebuilds the loan schedule from the stored
	// EMI obligations.
	CreateVehicle(ctx context.Context, v *models.Vehicle, obligations []models.Obligation) error
	GetVehicle(ctx context.Context, id string) (*models.Vehicle, error)
	ListVehicles(ctx context.Context) ([]*models.Vehicle, error)

	// Raw earning/expense records, externally produced and immutable here.
	AddEarnings(ctx context.Context, recs []models.EarningRecord) error
	AddExpenses(ctx context.Context, recs []models.ExpenseRecord) error
	ListEarnings(ctx context.Context, vehicleID string, year int) ([]models.EarningRecord, error)
	ListExpenses(ctx context.Context, vehicleID string, year int) ([]models.ExpenseRecord, error)

	// Obligations, ordered due-date ascending.
	ListObligations(ctx context.Context, vehicleID string, class models.ObligationClass) ([]models.Obligation, error)
	GetObligation(ctx context.Context, key ObligationKey) (*models.Obligation, error)

	// Append-only ledger. AppendTransaction never updates an existing row.
	AppendTransaction(ctx context.Context, txn *models.LedgerTransaction) error
	ListTransactions(ctx context.Context, entityID string, typ models.TransactionType, periodKey string) ([]models.LedgerTransaction, error)
	ListBatchTransactions(ctx context.Context, batchID string) ([]models.LedgerTransaction, error)

	// Cash balances.
	GetBalance(ctx context.Context, entityID string) (models.CashBalance, error)
	ListBalances(ctx context.Context) ([]models.CashBalance, error)

	// ApplySettlement commits one SettlementApply atomically.
	ApplySettlement(ctx context.Context, apply SettlementApply) error

	// Close releases any resources held by the store.
	Close() error
}
