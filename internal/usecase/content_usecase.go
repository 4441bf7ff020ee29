package usecase

import (
	"context"

	"github.com/NasaVasa/newsalerts/internal/domain"
	"go.uber.org/zap"
)

type ImportResult struct {
	Articles int `json:"articles"`
	Posts    int `json:"posts"`
}

type ContentUsecase struct {
	content domain.ContentRepository
	logger  *zap.Logger
}

func NewContentUsecase(content domain.ContentRepository, logger *zap.Logger) *ContentUsecase {
	return &ContentUsecase{content: content, logger: logger}
}

func (u *ContentUsecase) ListNews(ctx context.Context) ([]domain.Article, error) {
	return u.content.ListArticles(ctx)
}

func (u *ContentUsecase) RecentNews(ctx context.Context, limit int) ([]domain.Article, error) {
	return u.content.ListRecentArticles(ctx, limit, 0)
}

func (u *ContentUsecase) ListTweets(ctx context.Context) ([]domain.Post, error) {
	return u.content.ListPosts(ctx)
}

func (u *ContentUsecase) RecentTweets(ctx context.Context, limit int) ([]domain.Post, error) {
	return u.content.ListRecentPosts(ctx, limit, 0)
}

func (u *ContentUsecase) Import(ctx context.Context, articles []domain.Article, posts []domain.Post) (ImportResult, error) {
	var result ImportResult
	var err error
	if len(articles) > 0 {
		if result.Articles, err = u.content.SaveArticles(ctx, articles); err != nil {
			return result, err
		}
	}
	if len(posts) > 0 {
		if result.Posts, err = u.content.SavePosts(ctx, posts); err != nil {
			return result, err
		}
	}
	u.logger.Info("content imported", zap.Int("articles", result.Articles), zap.Int("posts", result.Posts))
	return result, nil
}

func (u *ContentUsecase) Health(ctx context.Context) error {
	return u.content.Ping(ctx)
}
