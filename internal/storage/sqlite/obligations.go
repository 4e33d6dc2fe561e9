package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fleetworks/fleetledger/internal/models"
	"github.com/fleetworks/fleetledger/internal/storage"
)

// ListObligations retrieves one vehicle/class queue, due-date ascending.
func (s *SQLiteStore) ListObligations(ctx context.Context, vehicleID string, class models.ObligationClass) ([]models.Obligation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT vehicle_id, class, idx, due_date, amount, paid, paid_at
		 FROM obligations WHERE vehicle_id = ? AND class = ?
		 ORDER BY due_date, idx`,
		vehicleID, string(class),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list obligations: %w", err)
	}
	defer rows.Close()

	var obs []models.Obligation
	for rows.Next() {
		o, err := scanObligation(rows)
		if err != nil {
			return nil, err
		}
		obs = append(obs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate obligations: %w", err)
	}
	return obs, nil
}

// GetObligation retrieves a single obligation by its queue key.
func (s *SQLiteStore) GetObligation(ctx context.Context, key storage.ObligationKey) (*models.Obligation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT vehicle_id, class, idx, due_date, amount, paid, paid_at
		 FROM obligations WHERE vehicle_id = ? AND class = ? AND idx = ?`,
		key.VehicleID, string(key.Class), key.Index,
	)
	o, err := scanObligation(row)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func scanObligation(row rowScanner) (models.Obligation, error) {
	var o models.Obligation
	var class, amount string
	var due int64

	err := row.Scan(&o.VehicleID, &class, &o.Index, &due, &amount, &o.Paid, &o.PaidAt)
	if err == sql.ErrNoRows {
		return o, fmt.Errorf("obligation: %w", storage.ErrNotFound)
	}
	if err != nil {
		return o, fmt.Errorf("failed to scan obligation: %w", err)
	}

	o.Class = models.ObligationClass(class)
	o.DueDate = time.Unix(due, 0).UTC()
	if o.Amount, err = decFromText(amount); err != nil {
		return o, err
	}
	return o, nil
}
