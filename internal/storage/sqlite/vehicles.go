package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fleetworks/fleetledger/internal/models"
	"github.com/fleetworks/fleetledger/internal/storage"
)

// CreateVehicle persists a vehicle profile together with the obligation
// queues derived from its loan schedule and assignment. Everything commits in
// one transaction so a vehicle can never exist with half a queue.
func (s *SQLiteStore) CreateVehicle(ctx context.Context, v *models.Vehicle, obligations []models.Obligation) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	if v.CreatedAt == 0 {
		v.CreatedAt = time.Now().Unix()
	}
	if v.PartnershipPct.IsZero() {
		v.PartnershipPct = models.DefaultPartnershipPct
	}
	if v.ServiceChargeRate.IsZero() {
		v.ServiceChargeRate = models.DefaultServiceChargeRate
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var loanPrincipal, driverName, weeklyRent interface{}
	var assignmentStart, durationWeeks interface{}
	if v.Loan != nil {
		loanPrincipal = v.Loan.Principal.String()
	}
	if v.Assignment != nil {
		driverName = v.Assignment.DriverName
		assignmentStart = v.Assignment.StartDate.UTC().Unix()
		weeklyRent = v.Assignment.WeeklyRent.String()
		durationWeeks = v.Assignment.DurationWeeks
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO vehicles (id, registration, is_partnership, partnership_pct, service_charge_rate,
		                       loan_principal, driver_name, assignment_start, weekly_rent, duration_weeks, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.Registration, v.IsPartnership, v.PartnershipPct.String(), v.ServiceChargeRate.String(),
		loanPrincipal, driverName, assignmentStart, weeklyRent, durationWeeks, v.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert vehicle: %w", err)
	}

	for _, o := range obligations {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO obligations (vehicle_id, class, idx, due_date, amount, paid, paid_at)
			 VALUES (?, ?, ?, ?, ?, 0, 0)`,
			v.ID, string(o.Class), o.Index, o.DueDate.UTC().Unix(), o.Amount.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert obligation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetVehicle retrieves a vehicle profile, rebuilding the loan schedule from
// the stored EMI obligations.
func (s *SQLiteStore) GetVehicle(ctx context.Context, id string) (*models.Vehicle, error) {
	v, err := s.scanVehicle(s.db.QueryRowContext(ctx,
		`SELECT id, registration, is_partnership, partnership_pct, service_charge_rate,
		        loan_principal, driver_name, assignment_start, weekly_rent, duration_weeks, created_at
		 FROM vehicles WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}

	if v.Loan != nil {
		emis, err := s.ListObligations(ctx, v.ID, models.ObligationEMI)
		if err != nil {
			return nil, err
		}
		for _, o := range emis {
			v.Loan.Schedule = append(v.Loan.Schedule, models.EMIEntry{
				Sequence: o.Index,
				DueDate:  o.DueDate,
				Amount:   o.Amount,
			})
		}
	}
	return v, nil
}

// ListVehicles retrieves all vehicle profiles without their schedules.
func (s *SQLiteStore) ListVehicles(ctx context.Context) ([]*models.Vehicle, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, registration, is_partnership, partnership_pct, service_charge_rate,
		        loan_principal, driver_name, assignment_start, weekly_rent, duration_weeks, created_at
		 FROM vehicles ORDER BY registration`)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []*models.Vehicle
	for rows.Next() {
		v, err := s.scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vehicles: %w", err)
	}
	return vehicles, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *SQLiteStore) scanVehicle(row rowScanner) (*models.Vehicle, error) {
	v := &models.Vehicle{}
	var pct, rate string
	var loanPrincipal, driverName, weeklyRent sql.NullString
	var assignmentStart, durationWeeks sql.NullInt64

	err := row.Scan(&v.ID, &v.Registration, &v.IsPartnership, &pct, &rate,
		&loanPrincipal, &driverName, &assignmentStart, &weeklyRent, &durationWeeks, &v.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("vehicle: %w", storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan vehicle: %w", err)
	}

	if v.PartnershipPct, err = decFromText(pct); err != nil {
		return nil, err
	}
	if v.ServiceChargeRate, err = decFromText(rate); err != nil {
		return nil, err
	}

	if loanPrincipal.Valid {
		principal, err := decFromText(loanPrincipal.String)
		if err != nil {
			return nil, err
		}
		v.Loan = &models.Loan{Principal: principal}
	}

	if assignmentStart.Valid {
		rent, err := decFromText(weeklyRent.String)
		if err != nil {
			return nil, err
		}
		v.Assignment = &models.Assignment{
			DriverName:    driverName.String,
			StartDate:     time.Unix(assignmentStart.Int64, 0).UTC(),
			WeeklyRent:    rent,
			DurationWeeks: int(durationWeeks.Int64),
		}
	}
	return v, nil
}
