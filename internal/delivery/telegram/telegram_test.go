package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/NasaVasa/newsalerts/internal/domain"
	"github.com/NasaVasa/newsalerts/internal/usecase"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, f.err
}

func sampleAlert() domain.Alert {
	return domain.Alert{
		ID:           "a1",
		Title:        "Critical: Crisis - MERVAL",
		Description:  "Detected 'crisis' (score 1.50) in: Crisis financiera",
		Priority:     domain.PriorityCritical,
		TriggerCount: 3,
		Config:       map[string]any{"symbol": "MERVAL", "relevanceScore": 1.5},
		Metadata:     map[string]any{"url": "https://example.com/crisis"},
	}
}

func TestFormatAlert(t *testing.T) {
	got := FormatAlert(sampleAlert())
	want := "[CRITICAL] Critical: Crisis - MERVAL\n" +
		"Detected 'crisis' (score 1.50) in: Crisis financiera\n" +
		"Symbol: MERVAL | Score: 1.50 | Seen 3x\n" +
		"https://example.com/crisis"
	if got != want {
		t.Errorf("FormatAlert =\n%s\nwant\n%s", got, want)
	}

	bare := FormatAlert(domain.Alert{Title: "x", Priority: domain.PriorityLow, TriggerCount: 1})
	if bare != "[LOW] x" {
		t.Errorf("bare alert = %q", bare)
	}
}

func TestNotifierSendsToChat(t *testing.T) {
	sender := &fakeSender{}
	notifier := NewNotifier(sender, 42, 0, zap.NewNop())
	if err := notifier.Notify(context.Background(), sampleAlert()); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(sender.sent) != 1 || sender.sent[0].ChatID != 42 {
		t.Fatalf("sent = %+v", sender.sent)
	}
	if !strings.HasPrefix(sender.sent[0].Text, "[CRITICAL]") {
		t.Errorf("text = %q", sender.sent[0].Text)
	}
}

func TestNotifierPropagatesErrors(t *testing.T) {
	sender := &fakeSender{err: errors.New("forbidden")}
	notifier := NewNotifier(sender, 42, 5, zap.NewNop())
	if err := notifier.Notify(context.Background(), sampleAlert()); err == nil {
		t.Fatal("expected send error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	limited := NewNotifier(&fakeSender{}, 42, 0.001, zap.NewNop())
	_ = limited.Notify(context.Background(), sampleAlert())
	if err := limited.Notify(ctx, sampleAlert()); err == nil {
		t.Fatal("expected limiter error on cancelled context")
	}
}

func TestParseListLimit(t *testing.T) {
	tests := []struct {
		args    string
		want    int
		wantErr bool
	}{
		{"", defaultListLimit, false},
		{" 5 ", 5, false},
		{"500", maxListLimit, false},
		{"0", 0, true},
		{"many", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseListLimit(tt.args)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseListLimit(%q) = %d, %v", tt.args, got, err)
		}
	}
}

func TestParseSourceArg(t *testing.T) {
	if source, err := ParseSourceArg(" News "); err != nil || source != usecase.SourceNews {
		t.Errorf("ParseSourceArg = %s, %v", source, err)
	}
	if _, err := ParseSourceArg("rss"); !errors.Is(err, ErrInvalidArguments) {
		t.Errorf("err = %v", err)
	}
}

func TestFormatAlertList(t *testing.T) {
	alerts := []domain.Alert{
		{Title: "one", Priority: domain.PriorityHigh, TriggerCount: 1},
		{Title: "two", Priority: domain.PriorityLow, TriggerCount: 2},
		{Title: "three", Priority: domain.PriorityMedium, TriggerCount: 1},
	}
	got := formatAlertList(alerts, 2)
	want := "Latest alerts:\n- [high] one (x1)\n- [low] two (x2)\n...and 1 more"
	if got != want {
		t.Errorf("formatAlertList =\n%s\nwant\n%s", got, want)
	}
}

func command(chatID int64, text string) tgbotapi.Update {
	name := strings.Fields(text)[0]
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: chatID},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(name)}},
	}}
}

func TestHandlersRejectForeignChats(t *testing.T) {
	sender := &fakeSender{}
	handlers := NewHandlers(nil, 7, zap.NewNop())

	handlers.HandleUpdate(context.Background(), sender, command(99, "/generate news"))
	handlers.HandleUpdate(context.Background(), sender, command(99, "/dedupe"))
	handlers.HandleUpdate(context.Background(), sender, command(99, "/help"))
	handlers.HandleUpdate(context.Background(), sender, command(99, "/launch"))
	handlers.HandleUpdate(context.Background(), sender, tgbotapi.Update{})

	if len(sender.sent) != 4 {
		t.Fatalf("replies = %d, want 4", len(sender.sent))
	}
	for i := 0; i < 2; i++ {
		if sender.sent[i].Text != "Not allowed from this chat." {
			t.Errorf("reply %d = %q", i, sender.sent[i].Text)
		}
	}
	if sender.sent[2].Text != HelpText {
		t.Errorf("help reply = %q", sender.sent[2].Text)
	}
	if !strings.HasPrefix(sender.sent[3].Text, "Unknown command.") {
		t.Errorf("unknown reply = %q", sender.sent[3].Text)
	}
}
