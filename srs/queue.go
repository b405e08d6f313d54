package srs

import (
	"sort"
	"time"
)

// DueItems returns the ids of all cards due at now, ordered for review.
//
// Suspended cards and cards with a future due time are excluded. Ordering
// is by due time ascending; ties break on state priority
// (Learning/Relearning before Review before New), then on id for
// determinism. The query is pure: it holds no state and always reflects the
// supplied collection.
func DueItems(cards []Card, now time.Time) []string {
	due := make([]Card, 0, len(cards))
	for _, c := range cards {
		if c.State == Suspended {
			continue
		}
		if c.Due.After(now) {
			continue
		}
		due = append(due, c)
	}

	sort.Slice(due, func(i, j int) bool {
		if !due[i].Due.Equal(due[j].Due) {
			return due[i].Due.Before(due[j].Due)
		}
		pi, pj := due[i].State.queuePriority(), due[j].State.queuePriority()
		if pi != pj {
			return pi < pj
		}
		return due[i].ID < due[j].ID
	})

	ids := make([]string, len(due))
	for i, c := range due {
		ids[i] = c.ID
	}
	return ids
}
