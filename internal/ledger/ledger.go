// Package ledger derives paid state from the append-only settlement log.
//
// The log is never edited in place: the current state of an
// (entity, type, period) tuple is the status of its latest entry, and
// corrections are modeled as additional entries with status "reversed".
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fleetworks/fleetledger/internal/models"
	"github.com/fleetworks/fleetledger/internal/storage"
)

// CurrentStatus returns the derived state of a tuple given all its matching
// transactions: the status of the entry with the greatest CompletedAt wins
// (a zero CompletedAt is the earliest possible time; ties go to the most
// recently created entry). No entries at all means unpaid.
func CurrentStatus(txns []models.LedgerTransaction) models.PaymentStatus {
	if len(txns) == 0 {
		return models.PaymentUnpaid
	}
	latest := txns[0]
	for _, t := range txns[1:] {
		if t.CompletedAt > latest.CompletedAt ||
			(t.CompletedAt == latest.CompletedAt && t.CreatedAt > latest.CreatedAt) {
			latest = t
		}
	}
	if latest.Status == models.TxReversed {
		return models.PaymentReversed
	}
	return models.PaymentCompleted
}

// Outstanding returns how much of a computed total is still payable. Only a
// tuple whose current status is completed counts its completed amounts as
// paid; a reversed tuple owes the full computed total again. The result is
// never negative.
func Outstanding(computedTotal decimal.Decimal, txns []models.LedgerTransaction) decimal.Decimal {
	paid := decimal.Zero
	if CurrentStatus(txns) == models.PaymentCompleted {
		for _, t := range txns {
			if t.Status == models.TxCompleted {
				paid = paid.Add(t.Amount)
			}
		}
	}
	out := computedTotal.Sub(paid)
	if out.Sign() < 0 {
		return decimal.Zero
	}
	return out
}

// NewTransaction builds a ledger entry ready to persist.
func NewTransaction(entityID string, typ models.TransactionType, amount decimal.Decimal, periodKey, batchID string, status models.TransactionStatus, now time.Time) models.LedgerTransaction {
	return models.LedgerTransaction{
		ID:          uuid.New().String(),
		EntityID:    entityID,
		Type:        typ,
		Amount:      amount,
		PeriodKey:   periodKey,
		Status:      status,
		BatchID:     batchID,
		CreatedAt:   now.Unix(),
		CompletedAt: now.Unix(),
	}
}

// Service answers paid-state questions against the persisted log and writes
// reversal entries. Settlement writes themselves go through the store's
// atomic apply; the service never mutates existing rows.
type Service struct {
	store storage.Store
	now   func() time.Time
}

// NewService creates a ledger service over the given store.
func NewService(store storage.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Status returns the current paid state of an (entity, type, period) tuple.
func (s *Service) Status(ctx context.Context, entityID string, typ models.TransactionType, periodKey string) (models.PaymentStatus, error) {
	txns, err := s.store.ListTransactions(ctx, entityID, typ, periodKey)
	if err != nil {
		return "", err
	}
	return CurrentStatus(txns), nil
}

// Outstanding returns the still-payable remainder of a computed total for a
// tuple.
func (s *Service) Outstanding(ctx context.Context, entityID string, typ models.TransactionType, periodKey string, computedTotal decimal.Decimal) (decimal.Decimal, error) {
	txns, err := s.store.ListTransactions(ctx, entityID, typ, periodKey)
	if err != nil {
		return decimal.Zero, err
	}
	return Outstanding(computedTotal, txns), nil
}

// Reverse appends a reversal entry for a tuple. The prior completed entry is
// never edited; after the reversal the tuple reads as reversed and its full
// computed total is outstanding again. Administrative callers only; no
// batch flow creates reversals.
func (s *Service) Reverse(ctx context.Context, entityID string, typ models.TransactionType, periodKey string, amount decimal.Decimal) (models.LedgerTransaction, error) {
	txn := NewTransaction(entityID, typ, amount, periodKey, "", models.TxReversed, s.now())
	if err := s.store.AppendTransaction(ctx, &txn); err != nil {
		return models.LedgerTransaction{}, err
	}
	return txn, nil
}
