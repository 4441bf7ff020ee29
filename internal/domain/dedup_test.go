package domain

import (
	"testing"
	"time"
)

func TestPlanTitleDedup(t *testing.T) {
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	later := base.Add(time.Hour)
	alerts := []Alert{
		{ID: "a", Title: "Critical: Crisis - YPF", CreatedAt: base, TriggerCount: 1},
		{ID: "b", Title: "Critical: Crisis - YPF", CreatedAt: base, LastTriggered: &later, TriggerCount: 2},
		{ID: "c", Title: "Suba - GGAL", CreatedAt: base, TriggerCount: 1},
		{ID: "d", Title: "Critical: Crisis - YPF", CreatedAt: base.Add(30 * time.Minute), TriggerCount: 3},
	}

	groups := PlanTitleDedup(alerts)
	if len(groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(groups))
	}
	group := groups[0]
	if group.Keep.ID != "b" {
		t.Errorf("kept %q, want b", group.Keep.ID)
	}
	if group.Keep.TriggerCount != 6 {
		t.Errorf("trigger count = %d, want 6", group.Keep.TriggerCount)
	}
	if len(group.Delete) != 2 || group.Delete[0] != "d" || group.Delete[1] != "a" {
		t.Errorf("delete = %v, want [d a]", group.Delete)
	}
}

func TestPlanTitleDedupTieKeepsSmallestID(t *testing.T) {
	ts := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	groups := PlanTitleDedup([]Alert{
		{ID: "z", Title: "x", CreatedAt: ts, TriggerCount: 1},
		{ID: "m", Title: "x", CreatedAt: ts, TriggerCount: 1},
	})
	if len(groups) != 1 || groups[0].Keep.ID != "m" {
		t.Fatalf("unexpected plan: %+v", groups)
	}
}

func TestPlanTitleDedupIdempotent(t *testing.T) {
	ts := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	alerts := []Alert{
		{ID: "1", Title: "x", CreatedAt: ts, TriggerCount: 1},
		{ID: "2", Title: "x", CreatedAt: ts.Add(time.Minute), TriggerCount: 1},
		{ID: "3", Title: "y", CreatedAt: ts, TriggerCount: 1},
	}
	first := PlanTitleDedup(alerts)
	if len(first) != 1 {
		t.Fatalf("first pass groups = %d, want 1", len(first))
	}

	remaining := []Alert{first[0].Keep, alerts[2]}
	if second := PlanTitleDedup(remaining); len(second) != 0 {
		t.Errorf("second pass groups = %d, want 0", len(second))
	}
}

func TestPriorityRank(t *testing.T) {
	if !(PriorityCritical.Rank() > PriorityHigh.Rank() && PriorityHigh.Rank() > PriorityMedium.Rank() && PriorityMedium.Rank() > PriorityLow.Rank()) {
		t.Error("priority ranks out of order")
	}
	if Priority("urgent").Valid() || Priority("urgent").Rank() != 0 {
		t.Error("unknown priority should be invalid with rank 0")
	}
}
