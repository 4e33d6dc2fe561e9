package ledger_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fleetworks/fleetledger/internal/ledger"
	"github.com/fleetworks/fleetledger/internal/models"
	"github.com/fleetworks/fleetledger/internal/storage/sqlite"
)

// TestServiceReverseRoundTrip drives append, Status and Outstanding through a
// real store: after a reversal the tuple reads reversed and owes its full
// computed total again, while the original completed row stays untouched.
func TestServiceReverseRoundTrip(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "fleetledger-test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()
	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}
	defer func() {
		store.Close()
		os.Remove(tmpFile.Name())
	}()

	ctx := context.Background()
	svc := ledger.NewService(store)
	computed := decimal.RequireFromString("400")

	status, err := svc.Status(ctx, "veh-1", models.TxGST, "2026-01")
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status != models.PaymentUnpaid {
		t.Fatalf("expected unpaid before any entry, got %s", status)
	}

	paidAt := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	txn := ledger.NewTransaction("veh-1", models.TxGST, computed, "2026-01", "", models.TxCompleted, paidAt)
	if err := store.AppendTransaction(ctx, &txn); err != nil {
		t.Fatalf("AppendTransaction failed: %v", err)
	}

	status, err = svc.Status(ctx, "veh-1", models.TxGST, "2026-01")
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status != models.PaymentCompleted {
		t.Fatalf("expected completed after append, got %s", status)
	}
	out, err := svc.Outstanding(ctx, "veh-1", models.TxGST, "2026-01", computed)
	if err != nil {
		t.Fatalf("Outstanding failed: %v", err)
	}
	if !out.IsZero() {
		t.Errorf("expected nothing outstanding after payment, got %s", out)
	}

	rev, err := svc.Reverse(ctx, "veh-1", models.TxGST, "2026-01", computed)
	if err != nil {
		t.Fatalf("Reverse failed: %v", err)
	}
	if rev.Status != models.TxReversed {
		t.Errorf("expected reversed entry, got %s", rev.Status)
	}

	txns, err := store.ListTransactions(ctx, "veh-1", models.TxGST, "2026-01")
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("reversal must append, not edit: expected 2 entries, got %d", len(txns))
	}

	status, err = svc.Status(ctx, "veh-1", models.TxGST, "2026-01")
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status != models.PaymentReversed {
		t.Errorf("expected reversed after reversal, got %s", status)
	}
	out, err = svc.Outstanding(ctx, "veh-1", models.TxGST, "2026-01", computed)
	if err != nil {
		t.Fatalf("Outstanding failed: %v", err)
	}
	if !out.Equal(computed) {
		t.Errorf("expected full total outstanding after reversal, got %s", out)
	}
}
