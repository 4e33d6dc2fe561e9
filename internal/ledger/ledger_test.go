package ledger

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fleetworks/fleetledger/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCurrentStatus(t *testing.T) {
	tests := []struct {
		name string
		txns []models.LedgerTransaction
		want models.PaymentStatus
	}{
		{
			name: "no transactions means unpaid",
			txns: nil,
			want: models.PaymentUnpaid,
		},
		{
			name: "single completed",
			txns: []models.LedgerTransaction{
				{Status: models.TxCompleted, CompletedAt: 100},
			},
			want: models.PaymentCompleted,
		},
		{
			name: "later reversal wins",
			txns: []models.LedgerTransaction{
				{Status: models.TxCompleted, CompletedAt: 100},
				{Status: models.TxReversed, CompletedAt: 200},
			},
			want: models.PaymentReversed,
		},
		{
			name: "completion after reversal wins again",
			txns: []models.LedgerTransaction{
				{Status: models.TxCompleted, CompletedAt: 100},
				{Status: models.TxReversed, CompletedAt: 200},
				{Status: models.TxCompleted, CompletedAt: 300},
			},
			want: models.PaymentCompleted,
		},
		{
			name: "missing completedAt is the earliest possible time",
			txns: []models.LedgerTransaction{
				{Status: models.TxReversed, CompletedAt: 0},
				{Status: models.TxCompleted, CompletedAt: 50},
			},
			want: models.PaymentCompleted,
		},
		{
			name: "equal completedAt breaks ties by createdAt",
			txns: []models.LedgerTransaction{
				{Status: models.TxCompleted, CompletedAt: 100, CreatedAt: 10},
				{Status: models.TxReversed, CompletedAt: 100, CreatedAt: 20},
			},
			want: models.PaymentReversed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CurrentStatus(tt.txns); got != tt.want {
				t.Errorf("CurrentStatus = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestOutstanding(t *testing.T) {
	tests := []struct {
		name  string
		total string
		txns  []models.LedgerTransaction
		want  string
	}{
		{
			name:  "nothing paid",
			total: "400",
			txns:  nil,
			want:  "400",
		},
		{
			name:  "fully paid",
			total: "400",
			txns: []models.LedgerTransaction{
				{Status: models.TxCompleted, Amount: dec("400"), CompletedAt: 100},
			},
			want: "0",
		},
		{
			name:  "partially paid",
			total: "400",
			txns: []models.LedgerTransaction{
				{Status: models.TxCompleted, Amount: dec("150"), CompletedAt: 100},
			},
			want: "250",
		},
		{
			name:  "reversed tuple owes the full total again",
			total: "400",
			txns: []models.LedgerTransaction{
				{Status: models.TxCompleted, Amount: dec("400"), CompletedAt: 100},
				{Status: models.TxReversed, Amount: dec("400"), CompletedAt: 200},
			},
			want: "400",
		},
		{
			name:  "overpayment clamps to zero",
			total: "400",
			txns: []models.LedgerTransaction{
				{Status: models.TxCompleted, Amount: dec("500"), CompletedAt: 100},
			},
			want: "0",
		},
		{
			name:  "negative computed total clamps to zero",
			total: "-500",
			txns:  nil,
			want:  "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Outstanding(dec(tt.total), tt.txns)
			if !got.Equal(dec(tt.want)) {
				t.Errorf("Outstanding = %s, want %s", got, tt.want)
			}
		})
	}
}
