package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fleetworks/fleetledger/internal/models"
)

// CreateOperator inserts a new operator into the database.
func (s *SQLiteStore) CreateOperator(ctx context.Context, op *models.Operator) error {
	query := `
		INSERT INTO operators (id, email, display_name, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		op.ID,
		op.Email,
		op.DisplayName,
		op.PasswordHash,
		op.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create operator: %w", err)
	}

	return nil
}

// GetOperatorByEmail retrieves an operator by their email address.
func (s *SQLiteStore) GetOperatorByEmail(ctx context.Context, email string) (*models.Operator, error) {
	query := `
		SELECT id, email, display_name, password_hash, created_at
		FROM operators
		WHERE email = ?
	`

	op := &models.Operator{}
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&op.ID,
		&op.Email,
		&op.DisplayName,
		&op.PasswordHash,
		&op.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil // Operator not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get operator by email: %w", err)
	}

	return op, nil
}
