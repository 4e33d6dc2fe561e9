package scheduler

import (
	"time"

	"github.com/fleetworks/fleetledger/internal/models"
)

const defaultEMILeadDays = 3

// Config tunes obligation classification.
type Config struct {
	// EMILeadDays is how many days before its due date an EMI becomes
	// payable (DUE_SOON). Zero or negative selects the default of 3.
	EMILeadDays int
}

func (c Config) emiLeadDays() int {
	if c.EMILeadDays <= 0 {
		return defaultEMILeadDays
	}
	return c.EMILeadDays
}

// Classify derives the state of one obligation relative to now.
//
// EMIs: OVERDUE once the due date has passed, DUE_SOON within the lead window
// before it, FUTURE otherwise. Rent: the week containing today is DUE_SOON,
// weeks fully in the past are OVERDUE, later weeks FUTURE. Paid is terminal.
func Classify(o models.Obligation, now time.Time, cfg Config) models.ObligationState {
	if o.Paid {
		return models.StatePaid
	}

	today := dateOnly(now)
	due := dateOnly(o.DueDate)

	if o.Class == models.ObligationRent {
		weekEnd := due.AddDate(0, 0, 7)
		switch {
		case !today.Before(weekEnd):
			return models.StateOverdue
		case !today.Before(due):
			return models.StateDueSoon
		default:
			return models.StateFuture
		}
	}

	switch {
	case today.After(due):
		return models.StateOverdue
	case !today.Before(due.AddDate(0, 0, -cfg.emiLeadDays())):
		return models.StateDueSoon
	default:
		return models.StateFuture
	}
}

// Eligible reports whether an obligation in the given state may be selected
// for settlement.
func Eligible(state models.ObligationState) bool {
	return state == models.StateDueSoon || state == models.StateOverdue
}

// EligibleQueue returns the unpaid obligations that are currently payable,
// due-date ascending. This is the queue the selection rule operates on.
func EligibleQueue(obs []models.Obligation, now time.Time, cfg Config) []models.Obligation {
	var out []models.Obligation
	for _, o := range obs {
		if Eligible(Classify(o, now, cfg)) {
			out = append(out, o)
		}
	}
	SortQueue(out)
	return out
}

// OldestEligible returns the first payable obligation, if any.
func OldestEligible(obs []models.Obligation, now time.Time, cfg Config) (models.Obligation, bool) {
	q := EligibleQueue(obs, now, cfg)
	if len(q) == 0 {
		return models.Obligation{}, false
	}
	return q[0], true
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
