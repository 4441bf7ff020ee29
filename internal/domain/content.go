package domain

import "time"

type Article struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Source      string     `json:"source"`
	URL         string     `json:"url"`
	Category    string     `json:"category"`
	Keywords    []string   `json:"keywords"`
	PublishedAt *time.Time `json:"published_date,omitempty"`
}

type Post struct {
	ID           string     `json:"id"`
	Text         string     `json:"text"`
	Author       string     `json:"author"`
	Username     string     `json:"username"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	RetweetCount int        `json:"retweet_count"`
	LikeCount    int        `json:"like_count"`
	ReplyCount   int        `json:"reply_count"`
	Hashtags     []string   `json:"hashtags"`
	Mentions     []string   `json:"mentions"`
	URL          string     `json:"url"`
}

// Engagement is the virality proxy of a post.
func (p Post) Engagement() int {
	return p.RetweetCount + p.LikeCount + p.ReplyCount
}
