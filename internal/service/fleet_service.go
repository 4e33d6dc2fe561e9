package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fleetworks/fleetledger/internal/models"
	"github.com/fleetworks/fleetledger/internal/scheduler"
	"github.com/fleetworks/fleetledger/internal/storage"
)

// FleetService handles vehicle registration and raw record ingestion. The
// engine never edits what it ingests: obligation queues are derived once at
// registration and records are append-only inputs to aggregation.
type FleetService struct {
	store  storage.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewFleetService creates a fleet service with the given storage backend.
func NewFleetService(store storage.Store, logger *slog.Logger) *FleetService {
	return &FleetService{store: store, logger: logger, now: time.Now}
}

// RegisterVehicle persists a vehicle profile along with the obligation queues
// derived from its loan schedule and rent assignment.
func (s *FleetService) RegisterVehicle(ctx context.Context, v *models.Vehicle) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	if v.CreatedAt == 0 {
		v.CreatedAt = s.now().Unix()
	}

	emis := scheduler.BuildEMIQueue(v.ID, v.Loan)
	rents := scheduler.BuildRentQueue(v.ID, v.Assignment)
	obligations := append(emis, rents...)

	if err := s.store.CreateVehicle(ctx, v, obligations); err != nil {
		return fmt.Errorf("failed to register vehicle: %w", err)
	}

	s.logger.Info("Vehicle registered",
		"vehicle_id", v.ID,
		"registration", v.Registration,
		"emi_count", len(emis),
		"rent_count", len(rents),
		"partnership", v.IsPartnership,
	)
	return nil
}

// GetVehicle retrieves one vehicle profile.
func (s *FleetService) GetVehicle(ctx context.Context, id string) (*models.Vehicle, error) {
	return s.store.GetVehicle(ctx, id)
}

// ListVehicles retrieves all vehicle profiles.
func (s *FleetService) ListVehicles(ctx context.Context) ([]*models.Vehicle, error) {
	return s.store.ListVehicles(ctx)
}

// IngestEarnings appends externally produced earning records.
func (s *FleetService) IngestEarnings(ctx context.Context, vehicleID string, recs []models.EarningRecord) error {
	for i := range recs {
		recs[i].VehicleID = vehicleID
	}
	if err := s.store.AddEarnings(ctx, recs); err != nil {
		return fmt.Errorf("failed to ingest earnings: %w", err)
	}
	s.logger.Info("Earnings ingested", "vehicle_id", vehicleID, "count", len(recs))
	return nil
}

// IngestExpenses appends externally produced expense records.
func (s *FleetService) IngestExpenses(ctx context.Context, vehicleID string, recs []models.ExpenseRecord) error {
	for i := range recs {
		recs[i].VehicleID = vehicleID
	}
	if err := s.store.AddExpenses(ctx, recs); err != nil {
		return fmt.Errorf("failed to ingest expenses: %w", err)
	}
	s.logger.Info("Expenses ingested", "vehicle_id", vehicleID, "count", len(recs))
	return nil
}

// Balances retrieves every running cash balance, company aggregate included.
func (s *FleetService) Balances(ctx context.Context) ([]models.CashBalance, error) {
	return s.store.ListBalances(ctx)
}
