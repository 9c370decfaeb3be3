package scheduler

import (
	"sort"

	"github.com/ghuser/todoreminder/services/notification/domain/models"
)

// ReconcilePlan is the set of Notifier calls that turns pending into desired.
type ReconcilePlan struct {
	Schedule  []models.Notification
	Cancel    []string
	Unchanged []string
}

// Plan compares desired with pending by item id. A notification is
// rescheduled when its title or trigger differs; pending ids missing from
// desired are cancelled. Both inputs must hold unique item ids. The result
// does not depend on input order.
func Plan(desired, pending []models.Notification) ReconcilePlan {
	current := make(map[string]models.Notification, len(pending))
	for _, n := range pending {
		current[n.ItemID] = n
	}

	var p ReconcilePlan
	for _, n := range desired {
		if cur, ok := current[n.ItemID]; ok && cur.Same(n) {
			p.Unchanged = append(p.Unchanged, n.ItemID)
		} else {
			p.Schedule = append(p.Schedule, n)
		}
		delete(current, n.ItemID)
	}
	for id := range current {
		p.Cancel = append(p.Cancel, id)
	}

	sort.Slice(p.Schedule, func(i, j int) bool { return p.Schedule[i].ItemID < p.Schedule[j].ItemID })
	sort.Strings(p.Cancel)
	sort.Strings(p.Unchanged)
	return p
}
