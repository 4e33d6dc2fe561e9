package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fleetworks/fleetledger/internal/calculator"
	"github.com/fleetworks/fleetledger/internal/ledger"
	"github.com/fleetworks/fleetledger/internal/metrics"
	"github.com/fleetworks/fleetledger/internal/models"
	"github.com/fleetworks/fleetledger/internal/scheduler"
	"github.com/fleetworks/fleetledger/internal/storage"
)

// ErrDuplicateSettlement is returned when an instruction targets something
// already settled: an obligation index that is paid, or a payout whose every
// targeted month reads as completed in the ledger. Nothing is written.
var ErrDuplicateSettlement = errors.New("settlement already recorded")

// ErrNoEligibleObligation is returned when an obligation instruction targets
// a queue with nothing currently payable.
var ErrNoEligibleObligation = errors.New("no eligible obligation to settle")

// SettlementInstruction is one unit of work in a batch. Exactly one of the
// two shapes is used: an obligation collection (Class + Indices, optional
// Penalties keyed by obligation index) or a waterfall payout (Component +
// Period).
type SettlementInstruction struct {
	VehicleID string

	// Obligation collection.
	Class     models.ObligationClass
	Indices   []int
	Penalties map[int]string

	// Waterfall payout. Months optionally restricts the payout to a subset
	// of the period's months (1-12); empty pays every month in the period.
	Component models.TransactionType
	Period    models.Period
	Months    []int
}

func (in SettlementInstruction) isObligation() bool {
	return in.Class != ""
}

// RedirectedSettlement records that a requested obligation index was
// substituted with the oldest eligible one to preserve oldest-first order.
type RedirectedSettlement struct {
	VehicleID      string
	Class          models.ObligationClass
	RequestedIndex int
	SettledIndex   int
}

// InstructionError pairs a failed instruction's position with the reason.
type InstructionError struct {
	Index int
	Err   string
}

// BatchResult summarizes one ExecuteBatch run. A batch never aborts on an
// item failure: counts always add up to the number of instructions the run
// reached before the context (if any) was cancelled.
type BatchResult struct {
	BatchID      string
	SuccessCount int
	FailureCount int
	Applied      []models.LedgerTransaction
	Redirects    []RedirectedSettlement
	Errors       []InstructionError
}

// SettlementService executes settlement batches against the store. Each
// instruction is isolated: its writes commit atomically via the store and a
// failure never rolls back earlier instructions.
type SettlementService struct {
	store     storage.Store
	ledger    *ledger.Service
	scheduler scheduler.Config
	logger    *slog.Logger
	now       func() time.Time
}

// NewSettlementService creates a settlement service with the given storage
// backend and scheduling config.
func NewSettlementService(store storage.Store, cfg scheduler.Config, logger *slog.Logger) *SettlementService {
	return &SettlementService{
		store:     store,
		ledger:    ledger.NewService(store),
		scheduler: cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// ExecuteBatch runs the instructions sequentially under a fresh batch ID.
// Cancellation stops between instructions and returns the result so far along
// with the context error; completed writes are never undone.
func (s *SettlementService) ExecuteBatch(ctx context.Context, instructions []SettlementInstruction) (*BatchResult, error) {
	result := &BatchResult{BatchID: uuid.New().String()}
	s.logger.Info("Executing settlement batch", "batch_id", result.BatchID, "instructions", len(instructions))

	for i, in := range instructions {
		if err := ctx.Err(); err != nil {
			s.logger.Warn("Batch cancelled", "batch_id", result.BatchID, "processed", i)
			return result, err
		}

		var err error
		if in.isObligation() {
			err = s.settleObligations(ctx, result, in)
		} else {
			err = s.settleWaterfall(ctx, result, in)
		}

		if err != nil {
			result.FailureCount++
			result.Errors = append(result.Errors, InstructionError{Index: i, Err: err.Error()})
			metrics.IncSettlement(instructionType(in), metrics.ResultError)
			s.logger.Error("Instruction failed", "batch_id", result.BatchID, "instruction", i, "vehicle_id", in.VehicleID, "error", err)
			continue
		}
		result.SuccessCount++
		metrics.IncSettlement(instructionType(in), metrics.ResultSuccess)
	}

	s.logger.Info("Batch complete", "batch_id", result.BatchID, "succeeded", result.SuccessCount, "failed", result.FailureCount)
	return result, nil
}

// BatchTransactions returns the ledger entries one batch wrote, in write
// order. An unknown batch ID yields an empty slice.
func (s *SettlementService) BatchTransactions(ctx context.Context, batchID string) ([]models.LedgerTransaction, error) {
	return s.store.ListBatchTransactions(ctx, batchID)
}

// settleObligations settles one obligation per requested index, oldest
// eligible first. A request that skips ahead of the queue is redirected to
// the oldest eligible obligation instead of failing; a request naming an
// already-paid obligation is a duplicate and writes nothing.
func (s *SettlementService) settleObligations(ctx context.Context, result *BatchResult, in SettlementInstruction) error {
	if len(in.Indices) == 0 {
		return fmt.Errorf("instruction for vehicle %s selects no obligations", in.VehicleID)
	}

	queue, err := s.store.ListObligations(ctx, in.VehicleID, in.Class)
	if err != nil {
		return fmt.Errorf("failed to load obligations: %w", err)
	}

	now := s.now()
	for _, requested := range in.Indices {
		if obligationPaid(queue, requested) {
			return ErrDuplicateSettlement
		}
		target, ok := scheduler.OldestEligible(queue, now, s.scheduler)
		if !ok {
			return ErrNoEligibleObligation
		}

		amount := target.Amount
		if in.Class == models.ObligationEMI {
			amount = AmountWithPenalty(amount, in.Penalties[target.Index])
		}

		txn := ledger.NewTransaction(
			in.VehicleID,
			obligationTransactionType(in.Class),
			amount,
			models.MonthKey(target.DueDate.Year(), target.DueDate.Month()),
			result.BatchID,
			models.TxCompleted,
			now,
		)
		apply := storage.SettlementApply{
			Transaction: txn,
			MarkPaid: &storage.ObligationKey{
				VehicleID: in.VehicleID,
				Class:     in.Class,
				Index:     target.Index,
			},
			VehicleDelta: amount,
			CompanyDelta: amount,
		}
		if err := s.store.ApplySettlement(ctx, apply); err != nil {
			return fmt.Errorf("failed to settle %s obligation %d: %w", in.Class, target.Index, err)
		}

		result.Applied = append(result.Applied, txn)
		if target.Index != requested {
			metrics.IncRedirection()
			result.Redirects = append(result.Redirects, RedirectedSettlement{
				VehicleID:      in.VehicleID,
				Class:          in.Class,
				RequestedIndex: requested,
				SettledIndex:   target.Index,
			})
			s.logger.Info("Settlement redirected to oldest eligible",
				"vehicle_id", in.VehicleID, "class", in.Class,
				"requested", requested, "settled", target.Index)
		}

		// Keep the in-memory queue consistent for the next index.
		for qi := range queue {
			if queue[qi].Index == target.Index {
				queue[qi].Paid = true
				queue[qi].PaidAt = now.Unix()
			}
		}
	}

	return nil
}

func instructionType(in SettlementInstruction) string {
	if in.isObligation() {
		return string(in.Class)
	}
	return string(in.Component)
}

func obligationTransactionType(class models.ObligationClass) models.TransactionType {
	if class == models.ObligationRent {
		return models.TxRent
	}
	return models.TxEMI
}

func obligationPaid(queue []models.Obligation, index int) bool {
	for _, o := range queue {
		if o.Index == index {
			return o.Paid
		}
	}
	return false
}

// settleWaterfall pays out one component month by month across the period,
// or across the instruction's month subset when one is given. Each month pays
// only its still-outstanding remainder; an instruction whose every targeted
// month already reads completed fails with ErrDuplicateSettlement so that
// re-submitting a paid period writes nothing.
func (s *SettlementService) settleWaterfall(ctx context.Context, result *BatchResult, in SettlementInstruction) error {
	if !in.Component.IsWaterfall() {
		return fmt.Errorf("unknown payout component %q", in.Component)
	}
	for _, sel := range in.Months {
		if !in.Period.Contains(time.Date(in.Period.Year, time.Month(sel), 1, 0, 0, 0, 0, time.UTC)) {
			return fmt.Errorf("month %d is outside period %s", sel, in.Period.Key())
		}
	}

	breakdown, err := loadPeriodBreakdown(ctx, s.store, in.VehicleID, in.Period)
	if err != nil {
		return err
	}

	now := s.now()
	applied := 0
	owed := 0
	for _, m := range breakdown.Months {
		if !monthSelected(in.Months, m.Month) {
			continue
		}
		computed := m.Waterfall.Component(in.Component)
		if computed.Sign() <= 0 {
			continue
		}
		owed++

		key := models.MonthKey(m.Year, m.Month)
		outstanding, err := s.ledger.Outstanding(ctx, in.VehicleID, in.Component, key, computed)
		if err != nil {
			return fmt.Errorf("failed to check outstanding for %s: %w", key, err)
		}
		if outstanding.IsZero() {
			continue
		}

		txn := ledger.NewTransaction(in.VehicleID, in.Component, outstanding, key, result.BatchID, models.TxCompleted, now)
		apply := storage.SettlementApply{
			Transaction:  txn,
			VehicleDelta: outstanding.Neg(),
			CompanyDelta: outstanding.Neg(),
		}
		if err := s.store.ApplySettlement(ctx, apply); err != nil {
			return fmt.Errorf("failed to pay %s for %s: %w", in.Component, key, err)
		}
		result.Applied = append(result.Applied, txn)
		applied++
	}

	if owed > 0 && applied == 0 {
		return ErrDuplicateSettlement
	}
	if owed == 0 {
		return fmt.Errorf("no positive %s in period %s", in.Component, in.Period.Key())
	}
	return nil
}

func monthSelected(selection []int, m time.Month) bool {
	if len(selection) == 0 {
		return true
	}
	for _, sel := range selection {
		if time.Month(sel) == m {
			return true
		}
	}
	return false
}

// loadPeriodBreakdown aggregates a vehicle's records for the period and runs
// the per-month waterfall under the vehicle's terms.
func loadPeriodBreakdown(ctx context.Context, store storage.Store, vehicleID string, period models.Period) (calculator.PeriodBreakdown, error) {
	vehicle, err := store.GetVehicle(ctx, vehicleID)
	if err != nil {
		return calculator.PeriodBreakdown{}, fmt.Errorf("failed to load vehicle: %w", err)
	}
	earnings, err := store.ListEarnings(ctx, vehicleID, period.Year)
	if err != nil {
		return calculator.PeriodBreakdown{}, fmt.Errorf("failed to load earnings: %w", err)
	}
	expenses, err := store.ListExpenses(ctx, vehicleID, period.Year)
	if err != nil {
		return calculator.PeriodBreakdown{}, fmt.Errorf("failed to load expenses: %w", err)
	}
	pp, err := calculator.AggregatePeriod(period, earnings, expenses)
	if err != nil {
		return calculator.PeriodBreakdown{}, err
	}
	return calculator.BreakdownPeriod(pp, vehicle.Terms()), nil
}

// AmountWithPenalty is the amount an EMI settlement records for an obligation
// given a raw penalty string. Also usable for pre-submission display.
func AmountWithPenalty(amount decimal.Decimal, rawPenalty string) decimal.Decimal {
	return amount.Add(calculator.ParsePenalty(rawPenalty))
}
