package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fleetworks/fleetledger/internal/models"
	"github.com/fleetworks/fleetledger/internal/storage"
)

// AppendTransaction persists a new ledger entry. Entries are append-only:
// there is no update or delete path anywhere in this package.
func (s *SQLiteStore) AppendTransaction(ctx context.Context, txn *models.LedgerTransaction) error {
	prepareTransaction(txn)
	_, err := s.db.ExecContext(ctx, insertTransactionSQL, transactionArgs(txn)...)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

const insertTransactionSQL = `
	INSERT INTO transactions (id, entity_id, type, amount, period_key, status, batch_id, created_at, completed_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

func prepareTransaction(txn *models.LedgerTransaction) {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	if txn.CreatedAt == 0 {
		txn.CreatedAt = time.Now().Unix()
	}
	if txn.Status == "" {
		txn.Status = models.TxCompleted
	}
}

func transactionArgs(txn *models.LedgerTransaction) []interface{} {
	var batchID interface{}
	if txn.BatchID != "" {
		batchID = txn.BatchID
	}
	return []interface{}{
		txn.ID, txn.EntityID, string(txn.Type), txn.Amount.String(), txn.PeriodKey,
		string(txn.Status), batchID, txn.CreatedAt, txn.CompletedAt,
	}
}

// ListTransactions retrieves every entry for one (entity, type, period)
// tuple, oldest first.
func (s *SQLiteStore) ListTransactions(ctx context.Context, entityID string, typ models.TransactionType, periodKey string) ([]models.LedgerTransaction, error) {
	rows, err := s.db.QueryContext(ctx,
		selectTransactionSQL+` WHERE entity_id = ? AND type = ? AND period_key = ? ORDER BY created_at, id`,
		entityID, string(typ), periodKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return collectTransactions(rows)
}

// ListBatchTransactions retrieves every entry written by one settlement
// batch, in write order.
func (s *SQLiteStore) ListBatchTransactions(ctx context.Context, batchID string) ([]models.LedgerTransaction, error) {
	rows, err := s.db.QueryContext(ctx,
		selectTransactionSQL+` WHERE batch_id = ? ORDER BY created_at, id`,
		batchID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list batch transactions: %w", err)
	}
	return collectTransactions(rows)
}

const selectTransactionSQL = `
	SELECT id, entity_id, type, amount, period_key, status, batch_id, created_at, completed_at
	FROM transactions`

func collectTransactions(rows *sql.Rows) ([]models.LedgerTransaction, error) {
	defer rows.Close()

	var txns []models.LedgerTransaction
	for rows.Next() {
		var t models.LedgerTransaction
		var typ, status, amount string
		var batchID sql.NullString
		if err := rows.Scan(&t.ID, &t.EntityID, &typ, &amount, &t.PeriodKey, &status, &batchID, &t.CreatedAt, &t.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.Type = models.TransactionType(typ)
		t.Status = models.TransactionStatus(status)
		t.BatchID = batchID.String
		var err error
		if t.Amount, err = decFromText(amount); err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txns, nil
}

// GetBalance retrieves one running cash balance; a missing row reads as zero.
func (s *SQLiteStore) GetBalance(ctx context.Context, entityID string) (models.CashBalance, error) {
	bal := models.CashBalance{EntityID: entityID, Amount: decimal.Zero}
	var amount string
	err := s.db.QueryRowContext(ctx,
		`SELECT amount, updated_at FROM balances WHERE entity_id = ?`, entityID,
	).Scan(&amount, &bal.UpdatedAt)
	if err == sql.ErrNoRows {
		return bal, nil
	}
	if err != nil {
		return bal, fmt.Errorf("failed to get balance: %w", err)
	}
	if bal.Amount, err = decFromText(amount); err != nil {
		return bal, err
	}
	return bal, nil
}

// ListBalances retrieves all running cash balances.
func (s *SQLiteStore) ListBalances(ctx context.Context) ([]models.CashBalance, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT entity_id, amount, updated_at FROM balances ORDER BY entity_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list balances: %w", err)
	}
	defer rows.Close()

	var balances []models.CashBalance
	for rows.Next() {
		var b models.CashBalance
		var amount string
		if err := rows.Scan(&b.EntityID, &amount, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		if b.Amount, err = decFromText(amount); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate balances: %w", err)
	}
	return balances, nil
}

// ApplySettlement commits one settlement unit atomically: the ledger append,
// the optional obligation flip and both balance adjustments succeed or fail
// together. Flipping an already-paid obligation aborts the whole unit with
// ErrAlreadySettled.
func (s *SQLiteStore) ApplySettlement(ctx context.Context, apply storage.SettlementApply) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	txn := apply.Transaction
	prepareTransaction(&txn)
	if _, err := tx.ExecContext(ctx, insertTransactionSQL, transactionArgs(&txn)...); err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	now := time.Now().Unix()
	if apply.MarkPaid != nil {
		res, err := tx.ExecContext(ctx,
			`UPDATE obligations SET paid = 1, paid_at = ?
			 WHERE vehicle_id = ? AND class = ? AND idx = ? AND paid = 0`,
			now, apply.MarkPaid.VehicleID, string(apply.MarkPaid.Class), apply.MarkPaid.Index,
		)
		if err != nil {
			return fmt.Errorf("failed to mark obligation paid: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if affected == 0 {
			return storage.ErrAlreadySettled
		}
	}

	if err := adjustBalance(ctx, tx, txn.EntityID, apply.VehicleDelta, now); err != nil {
		return err
	}
	if err := adjustBalance(ctx, tx, models.CompanyEntityID, apply.CompanyDelta, now); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// adjustBalance reads the current balance inside the transaction, applies the
// delta in Go (amounts are decimal TEXT, not SQL-summable) and writes the new
// value back.
func adjustBalance(ctx context.Context, tx *sql.Tx, entityID string, delta decimal.Decimal, now int64) error {
	if delta.IsZero() {
		return nil
	}

	current := decimal.Zero
	var amount string
	err := tx.QueryRowContext(ctx, `SELECT amount FROM balances WHERE entity_id = ?`, entityID).Scan(&amount)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to read balance: %w", err)
	}
	if err == nil {
		if current, err = decFromText(amount); err != nil {
			return err
		}
	}

	next := current.Add(delta)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO balances (entity_id, amount, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(entity_id) DO UPDATE SET amount = excluded.amount, updated_at = excluded.updated_at`,
		entityID, next.String(), now,
	)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	return nil
}
