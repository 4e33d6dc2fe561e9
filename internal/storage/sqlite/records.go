package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fleetworks/fleetledger/internal/models"
)

// AddEarnings persists a batch of earning records.
func (s *SQLiteStore) AddEarnings(ctx context.Context, recs []models.EarningRecord) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i := range recs {
		r := &recs[i]
		if r.ID == "" {
			r.ID = uuid.New().String()
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO earnings (id, vehicle_id, amount_paid, earned_at, status) VALUES (?, ?, ?, ?, ?)`,
			r.ID, r.VehicleID, r.AmountPaid.String(), r.EarnedAt, r.Status,
		)
		if err != nil {
			return fmt.Errorf("failed to insert earning: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// AddExpenses persists a batch of expense records.
func (s *SQLiteStore) AddExpenses(ctx context.Context, recs []models.ExpenseRecord) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i := range recs {
		r := &recs[i]
		if r.ID == "" {
			r.ID = uuid.New().String()
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO expenses (id, vehicle_id, amount, incurred_at, status) VALUES (?, ?, ?, ?, ?)`,
			r.ID, r.VehicleID, r.Amount.String(), r.IncurredAt, r.Status,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func yearBounds(year int) (int64, int64) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start.Unix(), start.AddDate(1, 0, 0).Unix()
}

// ListEarnings retrieves a vehicle's earning records for one calendar year.
func (s *SQLiteStore) ListEarnings(ctx context.Context, vehicleID string, year int) ([]models.EarningRecord, error) {
	from, to := yearBounds(year)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, vehicle_id, amount_paid, earned_at, status
		 FROM earnings WHERE vehicle_id = ? AND earned_at >= ? AND earned_at < ?
		 ORDER BY earned_at`,
		vehicleID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list earnings: %w", err)
	}
	defer rows.Close()

	var recs []models.EarningRecord
	for rows.Next() {
		var r models.EarningRecord
		var amount string
		if err := rows.Scan(&r.ID, &r.VehicleID, &amount, &r.EarnedAt, &r.Status); err != nil {
			return nil, fmt.Errorf("failed to scan earning: %w", err)
		}
		if r.AmountPaid, err = decFromText(amount); err != nil {
			return nil, err
		}
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate earnings: %w", err)
	}
	return recs, nil
}

// ListExpenses retrieves a vehicle's expense records for one calendar year.
func (s *SQLiteStore) ListExpenses(ctx context.Context, vehicleID string, year int) ([]models.ExpenseRecord, error) {
	from, to := yearBounds(year)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, vehicle_id, amount, incurred_at, status
		 FROM expenses WHERE vehicle_id = ? AND incurred_at >= ? AND incurred_at < ?
		 ORDER BY incurred_at`,
		vehicleID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var recs []models.ExpenseRecord
	for rows.Next() {
		var r models.ExpenseRecord
		var amount string
		if err := rows.Scan(&r.ID, &r.VehicleID, &amount, &r.IncurredAt, &r.Status); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		if r.Amount, err = decFromText(amount); err != nil {
			return nil, err
		}
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return recs, nil
}
