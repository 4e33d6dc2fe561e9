// Package scheduler builds and orders the per-vehicle obligation queues and
// enforces the oldest-first selection rule. Like the calculator package it is
// pure: the service layer owns persistence and settlement side effects.
package scheduler

import (
	"sort"

	"github.com/fleetworks/fleetledger/internal/models"
)

// BuildEMIQueue derives the EMI obligation queue from a loan amortization
// schedule. Entries are ordered due-date ascending and indexed from 0; the
// index is the obligation's permanent position in the queue.
func BuildEMIQueue(vehicleID string, loan *models.Loan) []models.Obligation {
	if loan == nil || len(loan.Schedule) == 0 {
		return nil
	}

	entries := make([]models.EMIEntry, len(loan.Schedule))
	copy(entries, loan.Schedule)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].DueDate.Before(entries[j].DueDate)
	})

	queue := make([]models.Obligation, len(entries))
	for i, e := range entries {
		queue[i] = models.Obligation{
			VehicleID: vehicleID,
			Class:     models.ObligationEMI,
			Index:     i,
			DueDate:   e.DueDate.UTC(),
			Amount:    e.Amount,
		}
	}
	return queue
}

// BuildRentQueue derives the rent-week obligation queue from an assignment:
// one obligation per week, starting at the assignment start date, for the
// agreed duration.
func BuildRentQueue(vehicleID string, a *models.Assignment) []models.Obligation {
	if a == nil || a.DurationWeeks <= 0 {
		return nil
	}

	queue := make([]models.Obligation, a.DurationWeeks)
	for i := 0; i < a.DurationWeeks; i++ {
		queue[i] = models.Obligation{
			VehicleID: vehicleID,
			Class:     models.ObligationRent,
			Index:     i,
			DueDate:   a.StartDate.UTC().AddDate(0, 0, 7*i),
			Amount:    a.WeeklyRent,
		}
	}
	return queue
}

// SortQueue orders obligations due-date ascending, breaking ties by index.
// Queues loaded from storage are already ordered; this keeps callers honest
// when they assemble obligations from other sources.
func SortQueue(obs []models.Obligation) {
	sort.Slice(obs, func(i, j int) bool {
		if obs[i].DueDate.Equal(obs[j].DueDate) {
			return obs[i].Index < obs[j].Index
		}
		return obs[i].DueDate.Before(obs[j].DueDate)
	})
}
