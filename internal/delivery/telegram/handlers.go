package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/NasaVasa/newsalerts/internal/domain"
	"github.com/NasaVasa/newsalerts/internal/usecase"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const maxMessageLen = 3800

type Handlers struct {
	alertUC     *usecase.AlertUsecase
	adminChatID int64
	logger      *zap.Logger
}

func NewHandlers(alertUC *usecase.AlertUsecase, adminChatID int64, logger *zap.Logger) *Handlers {
	return &Handlers{alertUC: alertUC, adminChatID: adminChatID, logger: logger}
}

func (h *Handlers) HandleUpdate(ctx context.Context, api Sender, update tgbotapi.Update) {
	if update.Message == nil {
		return
	}
	if update.Message.IsCommand() {
		h.handleCommand(ctx, api, update)
	}
}

func (h *Handlers) handleCommand(ctx context.Context, api Sender, update tgbotapi.Update) {
	command := update.Message.Command()
	args := update.Message.CommandArguments()
	chatID := update.Message.Chat.ID

	h.logger.Info(
		"telegram command received",
		zap.Int64("chat_id", chatID),
		zap.String("command", command),
		zap.String("args", args),
	)

	switch command {
	case "start", "help":
		h.reply(api, chatID, HelpText)
	case "alerts":
		limit, err := ParseListLimit(args)
		if err != nil {
			h.reply(api, chatID, "Usage: /alerts [n]")
			return
		}
		alerts, err := h.alertUC.ListAlerts(ctx)
		if err != nil {
			h.logger.Warn("alerts list failed", zap.Error(err))
			h.reply(api, chatID, h.errorMessage(err))
			return
		}
		if len(alerts) == 0 {
			h.reply(api, chatID, "No alerts yet.")
			return
		}
		h.reply(api, chatID, formatAlertList(alerts, limit))
	case "generate":
		if !h.allowed(chatID) {
			h.reply(api, chatID, "Not allowed from this chat.")
			return
		}
		source, err := ParseSourceArg(args)
		if err != nil {
			h.reply(api, chatID, "Usage: /generate [all|news|tweets]")
			return
		}
		result, err := h.alertUC.Generate(ctx, source)
		if err != nil {
			h.logger.Warn("generate command failed", zap.Error(err))
			h.reply(api, chatID, h.errorMessage(err))
			return
		}
		h.reply(api, chatID, fmt.Sprintf(
			"Processed %d news and %d tweets.\nCreated %d, updated %d, skipped %d.",
			result.NewsProcessed, result.TweetsProcessed, result.Created, result.Updated, result.Skipped,
		))
	case "dedupe":
		if !h.allowed(chatID) {
			h.reply(api, chatID, "Not allowed from this chat.")
			return
		}
		result, err := h.alertUC.CleanDuplicates(ctx)
		if err != nil {
			h.logger.Warn("dedupe command failed", zap.Error(err))
			h.reply(api, chatID, h.errorMessage(err))
			return
		}
		h.reply(api, chatID, fmt.Sprintf(
			"Merged %d groups, deleted %d duplicates. %d alerts remain.",
			result.GroupsProcessed, result.Deleted, result.Remaining,
		))
	default:
		h.logger.Warn("unknown command", zap.Int64("chat_id", chatID), zap.String("command", command))
		h.reply(api, chatID, "Unknown command.\n\n"+HelpText)
	}
}

func (h *Handlers) allowed(chatID int64) bool {
	return h.adminChatID != 0 && chatID == h.adminChatID
}

func (h *Handlers) errorMessage(err error) string {
	if errors.Is(err, usecase.ErrRunInProgress) {
		return "Another run is in progress, try again shortly."
	}
	h.logger.Warn("unhandled error", zap.Error(err))
	return "Something went wrong. Please try again."
}

func formatAlertList(alerts []domain.Alert, limit int) string {
	header := "Latest alerts:\n"
	var builder strings.Builder
	builder.WriteString(header)
	shown := 0
	for _, alert := range alerts {
		if shown == limit {
			break
		}
		line := fmt.Sprintf("- [%s] %s (x%d)\n", alert.Priority, alert.Title, alert.TriggerCount)
		if builder.Len()+len(line) > maxMessageLen {
			break
		}
		builder.WriteString(line)
		shown++
	}
	if remaining := len(alerts) - shown; remaining > 0 {
		builder.WriteString(fmt.Sprintf("...and %d more", remaining))
	}
	return strings.TrimRight(builder.String(), "\n")
}

func (h *Handlers) reply(api Sender, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := api.Send(msg); err != nil {
		h.logger.Warn("failed to send message", zap.Error(err))
	}
}
