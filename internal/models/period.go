package models

import (
	"errors"
	"fmt"
	"time"
)

// PeriodType identifies how many months a settlement period spans.
type PeriodType string

const (
	PeriodMonthly   PeriodType = "monthly"
	PeriodQuarterly PeriodType = "quarterly"
	PeriodYearly    PeriodType = "yearly"
)

var (
	ErrUnknownPeriodType   = errors.New("unknown period type")
	ErrPeriodMonthCount    = errors.New("month list does not match period type")
	ErrPeriodNotContiguous = errors.New("period months must be contiguous")
)

// Period is a settlement window. The month list is explicit so downstream
// waterfall computation can evaluate each month's sign independently instead
// of working from a period total.
type Period struct {
	// Type is the declared span of the period.
	Type PeriodType

	// Year is the calendar year the period belongs to.
	Year int

	// Months is the ordered, contiguous list of months the period covers:
	// one entry for monthly, three for quarterly, twelve for yearly.
	Months []time.Month
}

// NewMonthlyPeriod builds a single-month period.
func NewMonthlyPeriod(year int, month time.Month) Period {
	return Period{Type: PeriodMonthly, Year: year, Months: []time.Month{month}}
}

// NewQuarterlyPeriod builds a three-month period for quarter 1-4.
func NewQuarterlyPeriod(year, quarter int) (Period, error) {
	if quarter < 1 || quarter > 4 {
		return Period{}, fmt.Errorf("invalid quarter %d", quarter)
	}
	first := time.Month((quarter-1)*3 + 1)
	return Period{
		Type:   PeriodQuarterly,
		Year:   year,
		Months: []time.Month{first, first + 1, first + 2},
	}, nil
}

// NewYearlyPeriod builds a twelve-month period covering the whole year.
func NewYearlyPeriod(year int) Period {
	months := make([]time.Month, 12)
	for i := range months {
		months[i] = time.Month(i + 1)
	}
	return Period{Type: PeriodYearly, Year: year, Months: months}
}

// Validate checks the month list against the declared type: the list must be
// contiguous and carry exactly 1, 3 or 12 months.
func (p Period) Validate() error {
	var want int
	switch p.Type {
	case PeriodMonthly:
		want = 1
	case PeriodQuarterly:
		want = 3
	case PeriodYearly:
		want = 12
	default:
		return ErrUnknownPeriodType
	}
	if len(p.Months) != want {
		return ErrPeriodMonthCount
	}
	for i := 1; i < len(p.Months); i++ {
		if p.Months[i] != p.Months[i-1]+1 {
			return ErrPeriodNotContiguous
		}
	}
	return nil
}

// Key returns the period's storage key: "2026-03" for monthly, "2026-Q1" for
// quarterly and "2026" for yearly.
func (p Period) Key() string {
	switch p.Type {
	case PeriodQuarterly:
		return fmt.Sprintf("%04d-Q%d", p.Year, (int(p.Months[0])-1)/3+1)
	case PeriodYearly:
		return fmt.Sprintf("%04d", p.Year)
	default:
		return MonthKey(p.Year, p.Months[0])
	}
}

// Contains reports whether the instant falls inside the period. All period
// math is done in UTC.
func (p Period) Contains(t time.Time) bool {
	t = t.UTC()
	if t.Year() != p.Year {
		return false
	}
	for _, m := range p.Months {
		if t.Month() == m {
			return true
		}
	}
	return false
}

// MonthKey returns the per-month ledger period key, e.g. "2026-03". Waterfall
// payments are always ledgered per month even when viewed through a
// quarterly or yearly period.
func MonthKey(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}
