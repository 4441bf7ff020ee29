package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/NasaVasa/newsalerts/internal/domain"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Bot struct {
	api         *tgbotapi.BotAPI
	handlers    *Handlers
	pollTimeout int
}

func NewAPI(token string) (*tgbotapi.BotAPI, error) {
	return tgbotapi.NewBotAPI(token)
}

func NewBot(api *tgbotapi.BotAPI, handlers *Handlers, pollTimeout int) *Bot {
	return &Bot{api: api, handlers: handlers, pollTimeout: pollTimeout}
}

func (b *Bot) Start(ctx context.Context) error {
	config := tgbotapi.NewUpdate(0)
	config.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(config)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handlers.HandleUpdate(ctx, b.api, update)
		}
	}
}

// Sender is the part of the bot API the notifier needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier posts alerts to a single chat, throttled to stay under the
// Telegram per-chat limits.
type Notifier struct {
	api     Sender
	chatID  int64
	limiter *rate.Limiter
	logger  *zap.Logger
}

func NewNotifier(api Sender, chatID int64, ratePerSec float64, logger *zap.Logger) *Notifier {
	limit := rate.Inf
	if ratePerSec > 0 {
		limit = rate.Limit(ratePerSec)
	}
	return &Notifier{api: api, chatID: chatID, limiter: rate.NewLimiter(limit, 1), logger: logger}
}

func (n *Notifier) Notify(ctx context.Context, alert domain.Alert) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return err
	}
	n.logger.Info("telegram notify send", zap.Int64("chat_id", n.chatID), zap.String("alert_id", alert.ID), zap.String("priority", string(alert.Priority)))
	msg := tgbotapi.NewMessage(n.chatID, FormatAlert(alert))
	msg.DisableWebPagePreview = true
	if _, err := n.api.Send(msg); err != nil {
		n.logger.Warn("failed to notify", zap.String("alert_id", alert.ID), zap.Error(err))
		return err
	}
	return nil
}

func FormatAlert(alert domain.Alert) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("[%s] %s\n", strings.ToUpper(string(alert.Priority)), alert.Title))
	if alert.Description != "" {
		builder.WriteString(alert.Description)
		builder.WriteString("\n")
	}

	details := make([]string, 0, 3)
	if symbol, ok := alert.Config["symbol"].(string); ok && symbol != "" {
		details = append(details, "Symbol: "+symbol)
	}
	if score, ok := alert.Config["relevanceScore"].(float64); ok {
		details = append(details, fmt.Sprintf("Score: %.2f", score))
	}
	if alert.TriggerCount > 1 {
		details = append(details, fmt.Sprintf("Seen %dx", alert.TriggerCount))
	}
	if len(details) > 0 {
		builder.WriteString(strings.Join(details, " | "))
		builder.WriteString("\n")
	}

	if url, ok := alert.Metadata["url"].(string); ok && url != "" {
		builder.WriteString(url)
		builder.WriteString("\n")
	}
	return strings.TrimRight(builder.String(), "\n")
}
