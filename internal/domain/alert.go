package domain

import (
	"fmt"
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

func ParsePriority(value string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(value)))
	if !p.Valid() {
		return "", fmt.Errorf("invalid priority %q", value)
	}
	return p, nil
}

// Rank orders priorities from low (1) to critical (4). Unknown values rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityCritical:
		return 4
	}
	return 0
}

type AlertType string

const (
	AlertTypePrice     AlertType = "price"
	AlertTypeVolume    AlertType = "volume"
	AlertTypeNews      AlertType = "news"
	AlertTypeSentiment AlertType = "sentiment"
)

type Alert struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Type          AlertType      `json:"type"`
	Enabled       bool           `json:"enabled"`
	Icon          string         `json:"icon"`
	Config        map[string]any `json:"config"`
	CreatedAt     time.Time      `json:"createdAt"`
	LastTriggered *time.Time     `json:"lastTriggered,omitempty"`
	TriggerCount  int            `json:"triggerCount"`
	Priority      Priority       `json:"priority"`
	SourceTitle   string         `json:"sourceTitle,omitempty"`
	SourceID      string         `json:"sourceId,omitempty"`
	Keywords      []string       `json:"keywords"`
	Metadata      map[string]any `json:"metadata"`
}

// LastSeen is LastTriggered when set, CreatedAt otherwise.
func (a Alert) LastSeen() time.Time {
	if a.LastTriggered != nil {
		return *a.LastTriggered
	}
	return a.CreatedAt
}
