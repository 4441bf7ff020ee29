package db

import (
	"context"
	"time"

	"github.com/NasaVasa/newsalerts/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// contentBatchSize keeps one upsert statement under SQLite's bound parameter
// limit for the widest content table.
const contentBatchSize = 500

// Undated rows sort after dated ones on every backend.
const (
	articlesNewestFirst = "CASE WHEN published_at IS NULL THEN 1 ELSE 0 END, published_at DESC, ingested_at DESC, id"
	postsNewestFirst    = "CASE WHEN created_at IS NULL THEN 1 ELSE 0 END, created_at DESC, ingested_at DESC, id"
)

type ContentRepository struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

func (r *ContentRepository) ListRecentArticles(ctx context.Context, limit int, maxAge time.Duration) ([]domain.Article, error) {
	query := r.db.WithContext(ctx).Order(articlesNewestFirst)
	if maxAge > 0 {
		query = query.Where("published_at IS NULL OR published_at >= ?", time.Now().UTC().Add(-maxAge))
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var models []articleModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return mapArticlesToDomain(models), nil
}

func (r *ContentRepository) ListRecentPosts(ctx context.Context, limit int, maxAge time.Duration) ([]domain.Post, error) {
	query := r.db.WithContext(ctx).Order(postsNewestFirst)
	if maxAge > 0 {
		query = query.Where("created_at IS NULL OR created_at >= ?", time.Now().UTC().Add(-maxAge))
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var models []postModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return mapPostsToDomain(models), nil
}

func (r *ContentRepository) ListArticles(ctx context.Context) ([]domain.Article, error) {
	return r.ListRecentArticles(ctx, 0, 0)
}

func (r *ContentRepository) ListPosts(ctx context.Context) ([]domain.Post, error) {
	return r.ListRecentPosts(ctx, 0, 0)
}

// SaveArticles upserts by id and returns the number of distinct articles
// written. When an id repeats, the last occurrence wins. Re-imported articles
// keep their ingestion time.
func (r *ContentRepository) SaveArticles(ctx context.Context, articles []domain.Article) (int, error) {
	if len(articles) == 0 {
		return 0, nil
	}
	models := make([]articleModel, 0, len(articles))
	for _, article := range articles {
		models = append(models, mapArticleToModel(article))
	}
	models = lastByID(models, func(m articleModel) string { return m.ID })
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "content", "source", "url", "category", "keywords", "published_at"}),
		}).
		CreateInBatches(&models, contentBatchSize).Error
	if err != nil {
		return 0, err
	}
	return len(models), nil
}

func (r *ContentRepository) SavePosts(ctx context.Context, posts []domain.Post) (int, error) {
	if len(posts) == 0 {
		return 0, nil
	}
	models := make([]postModel, 0, len(posts))
	for _, post := range posts {
		models = append(models, mapPostToModel(post))
	}
	models = lastByID(models, func(m postModel) string { return m.ID })
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"text", "author", "username", "created_at", "retweet_count", "like_count",
				"reply_count", "hashtags", "mentions", "url",
			}),
		}).
		CreateInBatches(&models, contentBatchSize).Error
	if err != nil {
		return 0, err
	}
	return len(models), nil
}

func (r *ContentRepository) Ping(ctx context.Context) error {
	return ping(ctx, r.db)
}

// lastByID drops repeated ids, keeping the position of the first occurrence
// and the values of the last. Postgres rejects an upsert that touches the same
// row twice in one statement.
func lastByID[T any](models []T, id func(T) string) []T {
	index := make(map[string]int, len(models))
	unique := make([]T, 0, len(models))
	for _, model := range models {
		key := id(model)
		if i, ok := index[key]; ok {
			unique[i] = model
			continue
		}
		index[key] = len(unique)
		unique = append(unique, model)
	}
	return unique
}

func mapArticlesToDomain(models []articleModel) []domain.Article {
	articles := make([]domain.Article, 0, len(models))
	for _, model := range models {
		articles = append(articles, domain.Article{
			ID:          model.ID,
			Title:       model.Title,
			Content:     model.Content,
			Source:      model.Source,
			URL:         model.URL,
			Category:    model.Category,
			Keywords:    decodeStrings(model.Keywords),
			PublishedAt: utcPtr(model.PublishedAt),
		})
	}
	return articles
}

func mapArticleToModel(article domain.Article) articleModel {
	return articleModel{
		ID:          article.ID,
		Title:       article.Title,
		Content:     article.Content,
		Source:      article.Source,
		URL:         article.URL,
		Category:    article.Category,
		Keywords:    encodeStrings(article.Keywords),
		PublishedAt: utcPtr(article.PublishedAt),
	}
}

func mapPostsToDomain(models []postModel) []domain.Post {
	posts := make([]domain.Post, 0, len(models))
	for _, model := range models {
		posts = append(posts, domain.Post{
			ID:           model.ID,
			Text:         model.Text,
			Author:       model.Author,
			Username:     model.Username,
			CreatedAt:    utcPtr(model.PostedAt),
			RetweetCount: model.RetweetCount,
			LikeCount:    model.LikeCount,
			ReplyCount:   model.ReplyCount,
			Hashtags:     decodeStrings(model.Hashtags),
			Mentions:     decodeStrings(model.Mentions),
			URL:          model.URL,
		})
	}
	return posts
}

func mapPostToModel(post domain.Post) postModel {
	return postModel{
		ID:           post.ID,
		Text:         post.Text,
		Author:       post.Author,
		Username:     post.Username,
		PostedAt:     utcPtr(post.CreatedAt),
		RetweetCount: post.RetweetCount,
		LikeCount:    post.LikeCount,
		ReplyCount:   post.ReplyCount,
		Hashtags:     encodeStrings(post.Hashtags),
		Mentions:     encodeStrings(post.Mentions),
		URL:          post.URL,
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
