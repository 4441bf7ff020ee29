package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/NasaVasa/newsalerts/internal/domain"
	"github.com/google/uuid"
)

// Namespace for ids derived from records exported without one.
var idNamespace = uuid.MustParse("6f1c2b9e-3a4d-4e8f-9b2a-51c7d0e4a6f3")

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type articleRecord struct {
	MongoID     ObjectID     `json:"_id"`
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Content     string       `json:"content"`
	Source      string       `json:"source"`
	URL         string       `json:"url"`
	PublishedAt FlexibleTime `json:"published_date"`
	Category    string       `json:"category"`
	Keywords    []string     `json:"keywords"`
}

type postRecord struct {
	MongoID      ObjectID     `json:"_id"`
	ID           string       `json:"id"`
	Text         string       `json:"text"`
	Author       string       `json:"author"`
	Username     string       `json:"username"`
	CreatedAt    FlexibleTime `json:"created_at"`
	RetweetCount int          `json:"retweet_count"`
	LikeCount    int          `json:"like_count"`
	ReplyCount   int          `json:"reply_count"`
	Hashtags     []string     `json:"hashtags"`
	Mentions     []string     `json:"mentions"`
	URL          string       `json:"url"`
}

// alertRecord reads alerts exported by the HTTP API or straight from the
// document store.
type alertRecord struct {
	MongoID       ObjectID       `json:"_id"`
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Type          string         `json:"type"`
	Enabled       *bool          `json:"enabled"`
	Icon          string         `json:"icon"`
	Config        map[string]any `json:"config"`
	CreatedAt     FlexibleTime   `json:"createdAt"`
	LastTriggered FlexibleTime   `json:"lastTriggered"`
	TriggerCount  int            `json:"triggerCount"`
	Priority      string         `json:"priority"`
	SourceTitle   string         `json:"sourceTitle"`
	SourceID      string         `json:"sourceId"`
	Keywords      []string       `json:"keywords"`
	Metadata      map[string]any `json:"metadata"`
}

// ObjectID is a document id exported either as a plain string or as
// {"$oid": "..."}.
type ObjectID string

func (o *ObjectID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*o = ""
		return nil
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapped struct {
			OID string `json:"$oid"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return err
		}
		*o = ObjectID(wrapped.OID)
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*o = ObjectID(raw)
	return nil
}

// FlexibleTime accepts RFC 3339 as well as the zone-less ISO timestamps
// found in document-store exports. Zone-less values are read as UTC.
type FlexibleTime struct {
	Time  time.Time
	Valid bool
}

func (t *FlexibleTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = FlexibleTime{}
		return nil
	}
	// {"$date": "..."} extended JSON.
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapped struct {
			Date json.RawMessage `json:"$date"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return err
		}
		return t.UnmarshalJSON(wrapped.Date)
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*t = FlexibleTime{}
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			*t = FlexibleTime{Time: parsed.UTC(), Valid: true}
			return nil
		}
	}
	return fmt.Errorf("unsupported timestamp %q", raw)
}

func (t FlexibleTime) ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	value := t.Time
	return &value
}

func (r articleRecord) toDomain() domain.Article {
	return domain.Article{
		ID:          recordID(string(r.MongoID), r.ID, "article", r.URL, r.Title),
		Title:       r.Title,
		Content:     r.Content,
		Source:      r.Source,
		URL:         r.URL,
		Category:    r.Category,
		Keywords:    r.Keywords,
		PublishedAt: r.PublishedAt.ptr(),
	}
}

func (r postRecord) toDomain() domain.Post {
	return domain.Post{
		ID:           recordID(string(r.MongoID), r.ID, "post", r.URL, r.Username+"\x00"+r.Text),
		Text:         r.Text,
		Author:       r.Author,
		Username:     r.Username,
		CreatedAt:    r.CreatedAt.ptr(),
		RetweetCount: r.RetweetCount,
		LikeCount:    r.LikeCount,
		ReplyCount:   r.ReplyCount,
		Hashtags:     r.Hashtags,
		Mentions:     r.Mentions,
		URL:          r.URL,
	}
}

func (r alertRecord) toDomain() domain.Alert {
	enabled := true
	if r.Enabled != nil {
		enabled = *r.Enabled
	}
	return domain.Alert{
		ID:            recordID(string(r.MongoID), r.ID, "alert", r.SourceID, r.Title),
		Title:         r.Title,
		Description:   r.Description,
		Type:          domain.AlertType(r.Type),
		Enabled:       enabled,
		Icon:          r.Icon,
		Config:        r.Config,
		CreatedAt:     r.CreatedAt.Time,
		LastTriggered: r.LastTriggered.ptr(),
		TriggerCount:  r.TriggerCount,
		Priority:      domain.Priority(strings.ToLower(r.Priority)),
		SourceTitle:   r.SourceTitle,
		SourceID:      r.SourceID,
		Keywords:      r.Keywords,
		Metadata:      r.Metadata,
	}
}

// recordID keeps an exported id when present. Otherwise the id is derived
// from the content so re-importing the same record upserts it.
func recordID(mongoID, id, kind, url, body string) string {
	if mongoID != "" {
		return mongoID
	}
	if id != "" {
		return id
	}
	return uuid.NewSHA1(idNamespace, []byte(kind+"\x00"+url+"\x00"+body)).String()
}
