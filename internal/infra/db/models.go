package db

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type articleModel struct {
	ID          string `gorm:"primaryKey"`
	Title       string `gorm:"not null"`
	Content     string
	Source      string
	URL         string
	Category    string
	Keywords    datatypes.JSON
	PublishedAt *time.Time `gorm:"index"`
	IngestedAt  time.Time  `gorm:"autoCreateTime"`
}

func (articleModel) TableName() string { return "news" }

type postModel struct {
	ID           string `gorm:"primaryKey"`
	Text         string `gorm:"not null"`
	Author       string
	Username     string
	PostedAt     *time.Time `gorm:"column:created_at;index"`
	RetweetCount int
	LikeCount    int
	ReplyCount   int
	Hashtags     datatypes.JSON
	Mentions     datatypes.JSON
	URL          string
	IngestedAt   time.Time `gorm:"autoCreateTime"`
}

func (postModel) TableName() string { return "tweets" }

type alertModel struct {
	ID            string `gorm:"primaryKey"`
	Title         string `gorm:"index;not null"`
	Description   string
	Type          string `gorm:"not null"`
	Enabled       bool
	Icon          string
	Config        datatypes.JSONMap
	CreatedAt     time.Time `gorm:"index"`
	LastTriggered *time.Time
	TriggerCount  int
	Priority      string `gorm:"index"`
	SourceTitle   string
	SourceID      string `gorm:"index"`
	Keywords      datatypes.JSON
	Metadata      datatypes.JSONMap
	UpdatedAt     time.Time
}

func (alertModel) TableName() string { return "alerts" }

type runLockModel struct {
	Name       string    `gorm:"primaryKey"`
	Holder     string    `gorm:"not null"`
	AcquiredAt time.Time `gorm:"not null"`
}

func (runLockModel) TableName() string { return "run_locks" }

func encodeStrings(values []string) datatypes.JSON {
	if values == nil {
		values = []string{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(raw)
}

func decodeStrings(raw datatypes.JSON) []string {
	values := make([]string, 0)
	if len(raw) == 0 {
		return values
	}
	if err := json.Unmarshal(raw, &values); err != nil {
		return make([]string, 0)
	}
	return values
}

func encodeMap(values map[string]any) datatypes.JSONMap {
	if values == nil {
		return datatypes.JSONMap{}
	}
	return datatypes.JSONMap(values)
}

func decodeMap(values datatypes.JSONMap) map[string]any {
	if values == nil {
		return map[string]any{}
	}
	return map[string]any(values)
}
