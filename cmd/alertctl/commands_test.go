package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestImportGenerateDedupeClear(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", filepath.Join(dir, fmt.Sprintf("%s.db", uuid.NewString())))
	t.Setenv("LOG_LEVEL", "error")

	news := filepath.Join(dir, "news.json")
	tweets := filepath.Join(dir, "tweets.json")
	if err := os.WriteFile(news, []byte(`[{"_id": "n1", "title": "Crisis financiera: caída del 8% en el mercado"}]`), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(tweets, []byte(`[{"_id": "t1", "text": "Se viene un crash en $GGAL", "like_count": 600}]`), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := runCmd(t, "import", "--articles", news, "--posts", tweets)
	if err != nil {
		t.Fatalf("import: %v\n%s", err, out)
	}
	var imported map[string]int
	if err := json.Unmarshal([]byte(out), &imported); err != nil {
		t.Fatalf("decode import output %q: %v", out, err)
	}
	if imported["articles"] != 1 || imported["posts"] != 1 {
		t.Errorf("import result = %v", imported)
	}

	out, err = runCmd(t, "generate")
	if err != nil {
		t.Fatalf("generate: %v\n%s", err, out)
	}
	var generated map[string]any
	if err := json.Unmarshal([]byte(out), &generated); err != nil {
		t.Fatalf("decode generate output: %v", err)
	}
	if generated["alerts_created"] != float64(2) {
		t.Errorf("generate result = %v", generated)
	}

	if out, err = runCmd(t, "dedupe"); err != nil || !strings.Contains(out, `"total_alerts_remaining": 2`) {
		t.Errorf("dedupe = %q, %v", out, err)
	}

	if _, err := runCmd(t, "clear"); err == nil {
		t.Error("clear without --yes should fail")
	}
	if out, err = runCmd(t, "clear", "--yes"); err != nil || !strings.Contains(out, `"deleted_count": 2`) {
		t.Errorf("clear = %q, %v", out, err)
	}
}

func TestGenerateRejectsUnknownSource(t *testing.T) {
	if _, err := runCmd(t, "generate", "--source", "rss"); err == nil {
		t.Fatal("expected error")
	}
}

func TestImportRequiresInput(t *testing.T) {
	if _, err := runCmd(t, "import"); err == nil {
		t.Fatal("expected error")
	}
}

func TestImportAlertsSkipsStoredIDs(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", filepath.Join(dir, fmt.Sprintf("%s.db", uuid.NewString())))
	t.Setenv("LOG_LEVEL", "error")

	export := filepath.Join(dir, "alerts.json")
	body := `[
  {"_id": "al1", "title": "Critical: Crisis - MERVAL", "type": "news", "priority": "critical", "createdAt": "2025-03-12T10:30:00", "sourceId": "n1"},
  {"_id": "al2", "title": "Social alert: Crash - GGAL", "type": "sentiment", "priority": "high", "sourceId": "t1"}
]`
	if err := os.WriteFile(export, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	for i, want := range []int{2, 0} {
		out, err := runCmd(t, "import", "--alerts", export)
		if err != nil {
			t.Fatalf("import #%d: %v\n%s", i+1, err, out)
		}
		var imported map[string]int
		if err := json.Unmarshal([]byte(out), &imported); err != nil {
			t.Fatalf("decode import output %q: %v", out, err)
		}
		if imported["alerts"] != want || imported["articles"] != 0 {
			t.Errorf("import #%d result = %v, want %d alerts", i+1, imported, want)
		}
	}

	if out, err := runCmd(t, "dedupe"); err != nil || !strings.Contains(out, `"total_alerts_remaining": 2`) {
		t.Errorf("dedupe = %q, %v", out, err)
	}
}
