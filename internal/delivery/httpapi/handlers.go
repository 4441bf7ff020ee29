package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/NasaVasa/newsalerts/internal/usecase"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultRecentNews   = 50
	defaultRecentTweets = 100
)

type generateResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	usecase.GenerateResult
}

func (h *Handlers) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Financial news alerts API",
		"endpoints": gin.H{
			"health":           "GET /health",
			"news":             "GET /news",
			"news_recent":      "GET /news/recent?limit=50",
			"tweets":           "GET /tweets",
			"tweets_recent":    "GET /tweets/recent?limit=100",
			"alerts":           "GET /alerts",
			"generate":         "POST /alerts/generate",
			"generate_news":    "POST /alerts/generate/news",
			"generate_tweets":  "POST /alerts/generate/tweets",
			"clean_duplicates": "POST /alerts/clean-duplicates",
			"clear_alerts":     "DELETE /alerts",
			"live_alerts":      "GET /ws/alerts",
		},
	})
}

func (h *Handlers) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()
	if err := h.contentUC.Health(ctx); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": "disconnected", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "database": "connected"})
}

func (h *Handlers) ListNews(c *gin.Context) {
	articles, err := h.contentUC.ListNews(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, articles)
}

func (h *Handlers) RecentNews(c *gin.Context) {
	limit, ok := queryLimit(c, defaultRecentNews)
	if !ok {
		return
	}
	articles, err := h.contentUC.RecentNews(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, articles)
}

func (h *Handlers) ListTweets(c *gin.Context) {
	posts, err := h.contentUC.ListTweets(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *Handlers) RecentTweets(c *gin.Context) {
	limit, ok := queryLimit(c, defaultRecentTweets)
	if !ok {
		return
	}
	posts, err := h.contentUC.RecentTweets(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *Handlers) ListAlerts(c *gin.Context) {
	alerts, err := h.alertUC.ListAlerts(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, alerts)
}

func (h *Handlers) Generate(source usecase.Source) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := h.alertUC.Generate(c.Request.Context(), source)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, generateResponse{
			Success: true,
			Message: fmt.Sprintf(
				"Processed %d news and %d tweets: %d alerts created, %d updated",
				result.NewsProcessed, result.TweetsProcessed, result.Created, result.Updated,
			),
			GenerateResult: *result,
		})
	}
}

func (h *Handlers) CleanDuplicates(c *gin.Context) {
	result, err := h.alertUC.CleanDuplicates(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":                true,
		"groups_processed":       result.GroupsProcessed,
		"duplicates_deleted":     result.Deleted,
		"total_alerts_remaining": result.Remaining,
		"message":                fmt.Sprintf("Removed %d duplicate alerts", result.Deleted),
	})
}

func (h *Handlers) DeleteAlerts(c *gin.Context) {
	deleted, err := h.alertUC.DeleteAll(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"deleted_count": deleted,
		"message":       fmt.Sprintf("Deleted %d alerts", deleted),
	})
}

func (h *Handlers) fail(c *gin.Context, err error) {
	if errors.Is(err, usecase.ErrRunInProgress) {
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})
		return
	}
	h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal error"})
}

func queryLimit(c *gin.Context, fallback int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return fallback, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "limit must be a positive integer"})
		return 0, false
	}
	return limit, true
}
