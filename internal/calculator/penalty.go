package calculator

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	penaltyFixedMinimum = decimal.NewFromInt(100)
	lateFeeRate         = decimal.RequireFromString("0.02")
)

// DaysOverdue returns whole days past due, zero when not yet due.
func DaysOverdue(due, asOf time.Time) int {
	if !asOf.After(due) {
		return 0
	}
	return int(asOf.Sub(due).Hours() / 24)
}

// SuggestPenalty returns the advisory late-fee hint for an overdue EMI:
// max(fixed minimum, installment * late fee rate). The hint is display only;
// the penalty actually applied is whatever value accompanies the settlement
// instruction. Rent obligations carry no penalty concept.
func SuggestPenalty(installment decimal.Decimal, daysOverdue int) decimal.Decimal {
	if daysOverdue <= 0 {
		return decimal.Zero
	}
	pct := installment.Mul(lateFeeRate)
	if pct.LessThan(penaltyFixedMinimum) {
		return penaltyFixedMinimum
	}
	return pct
}

// ParsePenalty parses a caller-supplied penalty string leniently: blanks,
// garbage and negative values all resolve to zero rather than an error.
func ParsePenalty(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.Sign() < 0 {
		return decimal.Zero
	}
	return d
}
