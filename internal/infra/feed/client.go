package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/NasaVasa/newsalerts/internal/domain"
	"go.uber.org/zap"
)

// Client loads content exports from a local file or an HTTP endpoint. Both
// must hold a JSON array of records.
type Client struct {
	client *http.Client
	logger *zap.Logger
}

func NewClient(timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{client: &http.Client{Timeout: timeout}, logger: logger}
}

func (c *Client) LoadArticles(ctx context.Context, location string) ([]domain.Article, error) {
	body, err := c.open(ctx, location)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return DecodeArticles(body)
}

func (c *Client) LoadPosts(ctx context.Context, location string) ([]domain.Post, error) {
	body, err := c.open(ctx, location)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return DecodePosts(body)
}

func (c *Client) LoadAlerts(ctx context.Context, location string) ([]domain.Alert, error) {
	body, err := c.open(ctx, location)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return DecodeAlerts(body)
}

func DecodeArticles(r io.Reader) ([]domain.Article, error) {
	var records []articleRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode articles: %w", err)
	}
	articles := make([]domain.Article, 0, len(records))
	for _, record := range records {
		articles = append(articles, record.toDomain())
	}
	return articles, nil
}

func DecodePosts(r io.Reader) ([]domain.Post, error) {
	var records []postRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	posts := make([]domain.Post, 0, len(records))
	for _, record := range records {
		posts = append(posts, record.toDomain())
	}
	return posts, nil
}

func DecodeAlerts(r io.Reader) ([]domain.Alert, error) {
	var records []alertRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode alerts: %w", err)
	}
	alerts := make([]domain.Alert, 0, len(records))
	for _, record := range records {
		alerts = append(alerts, record.toDomain())
	}
	return alerts, nil
}

func (c *Client) open(ctx context.Context, location string) (io.ReadCloser, error) {
	if !strings.HasPrefix(location, "http://") && !strings.HasPrefix(location, "https://") {
		return os.Open(location)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	request.Header.Set("Accept", "application/json")

	start := time.Now()
	c.logger.Info("feed request start", zap.String("url", location))
	response, err := c.client.Do(request)
	if err != nil {
		c.logger.Error("feed request failed", zap.String("url", location), zap.Error(err))
		return nil, err
	}
	c.logger.Info(
		"feed request complete",
		zap.String("url", location),
		zap.Int("status", response.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		response.Body.Close()
		return nil, fmt.Errorf("feed error: status %d", response.StatusCode)
	}
	return response.Body, nil
}
