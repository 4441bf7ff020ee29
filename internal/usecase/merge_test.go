package usecase

import (
	"testing"
	"time"

	"github.com/NasaVasa/newsalerts/internal/domain"
)

func TestDecideMerge(t *testing.T) {
	created := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	now := time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC)
	existing := &domain.Alert{
		ID:           "alert-1",
		Title:        "Critical: Crisis - MERVAL",
		SourceID:     "article-1",
		CreatedAt:    created,
		TriggerCount: 3,
		Priority:     domain.PriorityCritical,
	}

	t.Run("insert without existing", func(t *testing.T) {
		incoming := domain.Alert{ID: "new", Title: "x", SourceID: "article-9", TriggerCount: 7}
		action, got := DecideMerge(nil, incoming, now)
		if action != MergeInsert {
			t.Fatalf("action = %s, want insert", action)
		}
		if got.TriggerCount != 1 || got.LastTriggered == nil || !got.LastTriggered.Equal(now) {
			t.Errorf("inserted alert = %+v", got)
		}
	})

	t.Run("insert without source id", func(t *testing.T) {
		action, _ := DecideMerge(existing, domain.Alert{ID: "new", Title: existing.Title}, now)
		if action != MergeInsert {
			t.Fatalf("action = %s, want insert", action)
		}
	})

	t.Run("same title bumps", func(t *testing.T) {
		incoming := domain.Alert{ID: "new", Title: existing.Title, SourceID: "article-1", Description: "fresh"}
		action, got := DecideMerge(existing, incoming, now)
		if action != MergeBump {
			t.Fatalf("action = %s, want bump", action)
		}
		if got.ID != "alert-1" || got.TriggerCount != 4 || got.Description != "" {
			t.Errorf("bumped alert = %+v", got)
		}
		if !got.LastTriggered.Equal(now) {
			t.Errorf("lastTriggered = %v, want %v", got.LastTriggered, now)
		}
		if existing.TriggerCount != 3 {
			t.Error("existing alert was mutated")
		}
	})

	t.Run("different title replaces", func(t *testing.T) {
		incoming := domain.Alert{
			ID:        "new",
			Title:     "Important: Baja - GGAL",
			SourceID:  "article-1",
			CreatedAt: now,
			Priority:  domain.PriorityHigh,
		}
		action, got := DecideMerge(existing, incoming, now)
		if action != MergeReplace {
			t.Fatalf("action = %s, want replace", action)
		}
		if got.ID != "alert-1" || !got.CreatedAt.Equal(created) {
			t.Errorf("identity not preserved: %+v", got)
		}
		if got.Title != incoming.Title || got.Priority != domain.PriorityHigh || got.TriggerCount != 4 {
			t.Errorf("replaced alert = %+v", got)
		}
	})
}
