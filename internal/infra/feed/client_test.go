package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

const articlesJSON = `[
  {"_id": {"$oid": "65f0c1"}, "title": "Crisis financiera", "published_date": "2025-03-12T10:30:00", "keywords": ["crisis"]},
  {"id": "n2", "title": "YPF anuncia resultados", "published_date": {"$date": "2025-03-12T11:00:00Z"}},
  {"title": "Sin id", "url": "https://example.com/a", "published_date": null}
]`

func TestDecodeArticles(t *testing.T) {
	articles, err := DecodeArticles(strings.NewReader(articlesJSON))
	if err != nil {
		t.Fatalf("DecodeArticles: %v", err)
	}
	if len(articles) != 3 {
		t.Fatalf("articles = %d, want 3", len(articles))
	}
	if articles[0].ID != "65f0c1" || articles[1].ID != "n2" {
		t.Errorf("ids = %s %s", articles[0].ID, articles[1].ID)
	}
	want := time.Date(2025, 3, 12, 10, 30, 0, 0, time.UTC)
	if articles[0].PublishedAt == nil || !articles[0].PublishedAt.Equal(want) {
		t.Errorf("published = %v, want %v", articles[0].PublishedAt, want)
	}
	if articles[1].PublishedAt == nil || articles[1].PublishedAt.Hour() != 11 {
		t.Errorf("extended json date = %v", articles[1].PublishedAt)
	}
	if articles[2].PublishedAt != nil || articles[2].ID == "" {
		t.Errorf("undated article = %+v", articles[2])
	}

	again, err := DecodeArticles(strings.NewReader(articlesJSON))
	if err != nil {
		t.Fatalf("DecodeArticles again: %v", err)
	}
	if again[2].ID != articles[2].ID {
		t.Error("derived id should be stable across imports")
	}
}

func TestDecodeAlerts(t *testing.T) {
	const alertsJSON = `[
  {"_id": {"$oid": "65f0d2"}, "title": "Critical: Crisis - MERVAL", "type": "news", "priority": "CRITICAL",
   "createdAt": "2025-03-12T10:30:00", "lastTriggered": {"$date": "2025-03-12T12:00:00Z"}, "triggerCount": 3,
   "sourceId": "n1", "keywords": ["crisis"], "metadata": {"score": 1.5}},
  {"title": "Disabled", "enabled": false, "sourceId": "t9"}
]`
	alerts, err := DecodeAlerts(strings.NewReader(alertsJSON))
	if err != nil {
		t.Fatalf("DecodeAlerts: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("alerts = %d, want 2", len(alerts))
	}
	first := alerts[0]
	if first.ID != "65f0d2" || first.Priority != "critical" || first.TriggerCount != 3 || !first.Enabled {
		t.Errorf("first alert = %+v", first)
	}
	if first.CreatedAt.Hour() != 10 || first.LastTriggered == nil || first.LastTriggered.Hour() != 12 {
		t.Errorf("times = %v / %v", first.CreatedAt, first.LastTriggered)
	}
	if first.Metadata["score"] != 1.5 {
		t.Errorf("metadata = %v", first.Metadata)
	}
	second := alerts[1]
	if second.Enabled || second.ID == "" || !second.CreatedAt.IsZero() {
		t.Errorf("second alert = %+v", second)
	}

	again, err := DecodeAlerts(strings.NewReader(alertsJSON))
	if err != nil {
		t.Fatalf("DecodeAlerts again: %v", err)
	}
	if again[1].ID != second.ID {
		t.Error("derived alert id should be stable across imports")
	}
}

func TestDecodeRejectsBadTimestamp(t *testing.T) {
	_, err := DecodePosts(strings.NewReader(`[{"id": "p1", "created_at": "yesterday"}]`))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestClientLoadsFileAndHTTP(t *testing.T) {
	postsJSON := `[{"id": "p1", "text": "crash en $GGAL", "username": "trader", "like_count": 600, "created_at": "2025-03-12 14:00:00"}]`
	path := filepath.Join(t.TempDir(), "tweets.json")
	if err := os.WriteFile(path, []byte(postsJSON), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	client := NewClient(time.Second, zap.NewNop())

	posts, err := client.LoadPosts(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadPosts file: %v", err)
	}
	if len(posts) != 1 || posts[0].Engagement() != 600 || posts[0].CreatedAt == nil {
		t.Errorf("posts = %+v", posts)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(articlesJSON))
	}))
	defer server.Close()

	articles, err := client.LoadArticles(context.Background(), server.URL+"/news")
	if err != nil {
		t.Fatalf("LoadArticles http: %v", err)
	}
	if len(articles) != 3 {
		t.Errorf("articles = %d, want 3", len(articles))
	}
	if _, err := client.LoadArticles(context.Background(), server.URL+"/missing"); err == nil {
		t.Error("expected error for 404")
	}
}
