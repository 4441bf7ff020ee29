package usecase

import (
	"time"

	"github.com/NasaVasa/newsalerts/internal/domain"
)

type MergeAction int

const (
	MergeInsert MergeAction = iota
	MergeBump
	MergeReplace
)

func (a MergeAction) String() string {
	switch a {
	case MergeBump:
		return "bump"
	case MergeReplace:
		return "replace"
	}
	return "insert"
}

// DecideMerge reconciles a freshly synthesized alert with the stored alert of
// the same source item. The returned alert is what should be persisted.
func DecideMerge(existing *domain.Alert, incoming domain.Alert, now time.Time) (MergeAction, domain.Alert) {
	triggered := now
	if existing == nil || incoming.SourceID == "" {
		incoming.TriggerCount = 1
		if incoming.LastTriggered == nil {
			incoming.LastTriggered = &triggered
		}
		return MergeInsert, incoming
	}

	if existing.Title == incoming.Title {
		merged := *existing
		merged.TriggerCount = existing.TriggerCount + 1
		merged.LastTriggered = &triggered
		return MergeBump, merged
	}

	merged := incoming
	merged.ID = existing.ID
	merged.CreatedAt = existing.CreatedAt
	merged.TriggerCount = existing.TriggerCount + 1
	merged.LastTriggered = &triggered
	return MergeReplace, merged
}
