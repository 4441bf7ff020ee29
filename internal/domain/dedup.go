package domain

import "sort"

type DedupResult struct {
	GroupsProcessed int `json:"groups_processed"`
	Deleted         int `json:"duplicates_deleted"`
	Remaining       int `json:"total_alerts_remaining"`
}

// DedupGroup is one set of alerts sharing a title. Keep carries the summed
// trigger count; Delete lists the ids to remove.
type DedupGroup struct {
	Title  string
	Keep   Alert
	Delete []string
}

// PlanTitleDedup groups alerts by title and, for every group with more than
// one member, keeps the most recently seen alert. Ties on the timestamp keep
// the smallest id so the plan is deterministic. Groups come back in the order
// their title first appears in alerts.
func PlanTitleDedup(alerts []Alert) []DedupGroup {
	byTitle := make(map[string][]Alert)
	order := make([]string, 0)
	for _, alert := range alerts {
		if _, ok := byTitle[alert.Title]; !ok {
			order = append(order, alert.Title)
		}
		byTitle[alert.Title] = append(byTitle[alert.Title], alert)
	}

	groups := make([]DedupGroup, 0)
	for _, title := range order {
		members := byTitle[title]
		if len(members) < 2 {
			continue
		}
		sort.SliceStable(members, func(i, j int) bool {
			ti, tj := members[i].LastSeen(), members[j].LastSeen()
			if !ti.Equal(tj) {
				return ti.After(tj)
			}
			return members[i].ID < members[j].ID
		})

		keep := members[0]
		total := 0
		deleteIDs := make([]string, 0, len(members)-1)
		for i, member := range members {
			total += member.TriggerCount
			if i > 0 {
				deleteIDs = append(deleteIDs, member.ID)
			}
		}
		keep.TriggerCount = total
		groups = append(groups, DedupGroup{Title: title, Keep: keep, Delete: deleteIDs})
	}
	return groups
}
