package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fleetworks/fleetledger/internal/calculator"
	"github.com/fleetworks/fleetledger/internal/ledger"
	"github.com/fleetworks/fleetledger/internal/models"
	"github.com/fleetworks/fleetledger/internal/scheduler"
	"github.com/fleetworks/fleetledger/internal/storage"
)

// ComponentSummary is one payout component across a period: the computed
// total, how much of it is still payable after the ledger is consulted, and
// whether every month produced a positive figure.
type ComponentSummary struct {
	Type              models.TransactionType
	Computed          decimal.Decimal
	Outstanding       decimal.Decimal
	AllMonthsPositive bool
}

// PeriodSummary is the full settlement view for one vehicle and period.
type PeriodSummary struct {
	VehicleID  string
	Breakdown  calculator.PeriodBreakdown
	Components []ComponentSummary
}

// ObligationView is one obligation annotated with its current state and, for
// overdue EMIs, an advisory penalty suggestion.
type ObligationView struct {
	models.Obligation
	State            models.ObligationState
	DaysOverdue      int
	SuggestedPenalty decimal.Decimal
}

// ObligationSummary holds both classified queues for a vehicle.
type ObligationSummary struct {
	VehicleID string
	EMIs      []ObligationView
	Rents     []ObligationView
}

// SummaryService builds read-only views over the engine's state.
type SummaryService struct {
	store     storage.Store
	ledger    *ledger.Service
	scheduler scheduler.Config
	now       func() time.Time
}

// NewSummaryService creates a summary service over the given store.
func NewSummaryService(store storage.Store, cfg scheduler.Config) *SummaryService {
	return &SummaryService{
		store:     store,
		ledger:    ledger.NewService(store),
		scheduler: cfg,
		now:       time.Now,
	}
}

// PeriodSummary aggregates a vehicle's period: per-month profit and
// waterfall, plus per-component computed totals and the actually-payable
// remainder. Outstanding is summed month by month so a partially paid period
// reports only what remains.
func (s *SummaryService) PeriodSummary(ctx context.Context, vehicleID string, period models.Period) (*PeriodSummary, error) {
	breakdown, err := loadPeriodBreakdown(ctx, s.store, vehicleID, period)
	if err != nil {
		return nil, err
	}

	summary := &PeriodSummary{
		VehicleID:  vehicleID,
		Breakdown:  breakdown,
		Components: make([]ComponentSummary, 0, len(models.WaterfallTypes)),
	}
	for _, typ := range models.WaterfallTypes {
		cs := ComponentSummary{
			Type:              typ,
			Computed:          breakdown.Totals.Component(typ),
			Outstanding:       decimal.Zero,
			AllMonthsPositive: breakdown.AllMonthsPositive(typ),
		}
		for _, m := range breakdown.Months {
			computed := m.Waterfall.Component(typ)
			if computed.Sign() <= 0 {
				continue
			}
			key := models.MonthKey(m.Year, m.Month)
			outstanding, err := s.ledger.Outstanding(ctx, vehicleID, typ, key, computed)
			if err != nil {
				return nil, fmt.Errorf("failed to check outstanding for %s: %w", key, err)
			}
			cs.Outstanding = cs.Outstanding.Add(outstanding)
		}
		summary.Components = append(summary.Components, cs)
	}

	return summary, nil
}

// Obligations returns both queues for a vehicle, classified against today
// and annotated with advisory penalty hints for overdue EMIs.
func (s *SummaryService) Obligations(ctx context.Context, vehicleID string) (*ObligationSummary, error) {
	// The vehicle must exist even if both queues are empty.
	if _, err := s.store.GetVehicle(ctx, vehicleID); err != nil {
		return nil, fmt.Errorf("failed to load vehicle: %w", err)
	}

	now := s.now()
	summary := &ObligationSummary{VehicleID: vehicleID}

	emis, err := s.store.ListObligations(ctx, vehicleID, models.ObligationEMI)
	if err != nil {
		return nil, fmt.Errorf("failed to load emi obligations: %w", err)
	}
	for _, o := range emis {
		summary.EMIs = append(summary.EMIs, s.annotate(o, now))
	}

	rents, err := s.store.ListObligations(ctx, vehicleID, models.ObligationRent)
	if err != nil {
		return nil, fmt.Errorf("failed to load rent obligations: %w", err)
	}
	for _, o := range rents {
		summary.Rents = append(summary.Rents, s.annotate(o, now))
	}

	return summary, nil
}

func (s *SummaryService) annotate(o models.Obligation, now time.Time) ObligationView {
	view := ObligationView{
		Obligation:       o,
		State:            scheduler.Classify(o, now, s.scheduler),
		SuggestedPenalty: decimal.Zero,
	}
	if view.State == models.StateOverdue {
		view.DaysOverdue = calculator.DaysOverdue(o.DueDate, now)
		if o.Class == models.ObligationEMI {
			view.SuggestedPenalty = calculator.SuggestPenalty(o.Amount, view.DaysOverdue)
		}
	}
	return view
}
