package service

import (
	"context"
	"testing"
	"time"

	"github.com/fleetworks/fleetledger/internal/models"
	"github.com/fleetworks/fleetledger/internal/scheduler"
)

func TestPeriodSummary(t *testing.T) {
	store, settle, cleanup := setupSettlementTest(t)
	defer cleanup()
	ctx := context.Background()

	svc := NewSummaryService(store, scheduler.Config{})
	svc.now = func() time.Time { return testNow }

	period, err := models.NewQuarterlyPeriod(2026, 1)
	if err != nil {
		t.Fatalf("NewQuarterlyPeriod failed: %v", err)
	}

	summary, err := svc.PeriodSummary(ctx, "veh-1", period)
	if err != nil {
		t.Fatalf("PeriodSummary failed: %v", err)
	}

	if len(summary.Breakdown.Months) != 3 {
		t.Fatalf("expected 3 months in Q1, got %d", len(summary.Breakdown.Months))
	}
	if !summary.Breakdown.Profit.Equal(dec("5000")) {
		t.Errorf("expected quarter profit 5000 (10000 - 5000 + 0), got %s", summary.Breakdown.Profit)
	}

	byType := make(map[models.TransactionType]ComponentSummary)
	for _, c := range summary.Components {
		byType[c.Type] = c
	}

	// Only January is positive, so totals equal January's waterfall and
	// nothing has been paid yet.
	gst := byType[models.TxGST]
	if !gst.Computed.Equal(dec("400")) || !gst.Outstanding.Equal(dec("400")) {
		t.Errorf("gst mismatch: computed %s outstanding %s", gst.Computed, gst.Outstanding)
	}
	partner := byType[models.TxPartnerShare]
	if !partner.Computed.Equal(dec("4300")) || !partner.Outstanding.Equal(dec("4300")) {
		t.Errorf("partner share mismatch: computed %s outstanding %s", partner.Computed, partner.Outstanding)
	}
	// February's loss month blocks the all-positive gate for every component.
	for typ, c := range byType {
		if c.AllMonthsPositive {
			t.Errorf("expected AllMonthsPositive false for %s with a loss month", typ)
		}
	}

	// After paying the partner share, only that component's outstanding
	// drops; the others still owe their full computed totals.
	if _, err := settle.ExecuteBatch(ctx, []SettlementInstruction{
		{VehicleID: "veh-1", Component: models.TxPartnerShare, Period: period},
	}); err != nil {
		t.Fatalf("ExecuteBatch failed: %v", err)
	}

	summary, err = svc.PeriodSummary(ctx, "veh-1", period)
	if err != nil {
		t.Fatalf("PeriodSummary failed: %v", err)
	}
	for _, c := range summary.Components {
		switch c.Type {
		case models.TxPartnerShare:
			if !c.Outstanding.IsZero() {
				t.Errorf("expected partner share fully settled, outstanding %s", c.Outstanding)
			}
		case models.TxGST:
			if !c.Outstanding.Equal(dec("400")) {
				t.Errorf("expected gst still outstanding 400, got %s", c.Outstanding)
			}
		}
	}
}

func TestPeriodSummaryAllMonthsPositive(t *testing.T) {
	store, _, cleanup := setupSettlementTest(t)
	defer cleanup()
	ctx := context.Background()

	svc := NewSummaryService(store, scheduler.Config{})
	svc.now = func() time.Time { return testNow }

	// January alone is all-positive.
	summary, err := svc.PeriodSummary(ctx, "veh-1", models.NewMonthlyPeriod(2026, time.January))
	if err != nil {
		t.Fatalf("PeriodSummary failed: %v", err)
	}
	for _, c := range summary.Components {
		if !c.AllMonthsPositive {
			t.Errorf("expected AllMonthsPositive true for %s in January", c.Type)
		}
	}
}

func TestObligationSummary(t *testing.T) {
	store, _, cleanup := setupSettlementTest(t)
	defer cleanup()
	ctx := context.Background()

	svc := NewSummaryService(store, scheduler.Config{})
	svc.now = func() time.Time { return testNow }

	summary, err := svc.Obligations(ctx, "veh-1")
	if err != nil {
		t.Fatalf("Obligations failed: %v", err)
	}

	if len(summary.EMIs) != 6 {
		t.Fatalf("expected 6 EMI obligations, got %d", len(summary.EMIs))
	}
	if len(summary.Rents) != 4 {
		t.Fatalf("expected 4 rent weeks, got %d", len(summary.Rents))
	}

	// As of March 15: EMIs for Jan 10, Feb 10, Mar 10 are overdue, the rest
	// future. Overdue EMIs carry the advisory hint max(100, 2% of 5000).
	for i, v := range summary.EMIs {
		wantOverdue := i <= 2
		if wantOverdue {
			if v.State != models.StateOverdue {
				t.Errorf("EMI %d: expected overdue, got %s", i, v.State)
			}
			if !v.SuggestedPenalty.Equal(dec("100")) {
				t.Errorf("EMI %d: expected penalty hint 100, got %s", i, v.SuggestedPenalty)
			}
			if v.DaysOverdue <= 0 {
				t.Errorf("EMI %d: expected positive days overdue", i)
			}
		} else {
			if v.State != models.StateFuture {
				t.Errorf("EMI %d: expected future, got %s", i, v.State)
			}
			if !v.SuggestedPenalty.IsZero() {
				t.Errorf("EMI %d: future obligations carry no hint", i)
			}
		}
	}

	// All four rent weeks ended before mid-March; none carry penalty hints.
	for i, v := range summary.Rents {
		if v.State != models.StateOverdue {
			t.Errorf("rent %d: expected overdue, got %s", i, v.State)
		}
		if !v.SuggestedPenalty.IsZero() {
			t.Errorf("rent %d: rent never carries a penalty hint", i)
		}
	}

	if _, err := svc.Obligations(ctx, "missing"); err == nil {
		t.Error("expected error for unknown vehicle")
	}
}
