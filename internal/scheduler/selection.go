package scheduler

import "github.com/fleetworks/fleetledger/internal/models"

// DeriveSequentialSelection applies the oldest-first selection rule.
//
// Selecting an obligation implicitly selects every earlier unsettled one: the
// new selection is the prefix of the eligible queue through the target.
// Deselecting an obligation also deselects everything after it: the new
// selection is the prefix strictly before the target. The result is therefore
// always a contiguous oldest-first prefix: it is impossible to hold
// obligation k selected without k-1, k-2, ...
//
// A target that is not in the eligible queue leaves the selection unchanged.
func DeriveSequentialSelection(target int, orderedEligible []models.Obligation, current []int) []int {
	found := false
	for _, o := range orderedEligible {
		if o.Index == target {
			found = true
			break
		}
	}
	if !found {
		return current
	}

	selected := false
	for _, i := range current {
		if i == target {
			selected = true
			break
		}
	}

	var out []int
	for _, o := range orderedEligible {
		if selected && o.Index == target {
			break
		}
		out = append(out, o.Index)
		if !selected && o.Index == target {
			break
		}
	}
	return out
}

// SelectAllEligible selects the entire eligible queue.
func SelectAllEligible(orderedEligible []models.Obligation) []int {
	out := make([]int, len(orderedEligible))
	for i, o := range orderedEligible {
		out[i] = o.Index
	}
	return out
}

// Toggle applies DeriveSequentialSelection to a session and returns the
// updated copy. Penalty entries for indices that dropped out of the selection
// are pruned so stale penalties cannot ride along into settlement.
func Toggle(session models.SettlementSession, target int, orderedEligible []models.Obligation) models.SettlementSession {
	session.Selected = DeriveSequentialSelection(target, orderedEligible, session.Selected)

	if session.Penalties != nil {
		kept := make(map[int]string, len(session.Penalties))
		for i, p := range session.Penalties {
			if session.IsSelected(i) {
				kept[i] = p
			}
		}
		session.Penalties = kept
	}
	return session
}
