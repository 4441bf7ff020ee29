package domain

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

type ContentRepository interface {
	// ListRecentArticles returns at most limit articles newest first. Articles
	// without a publish date are always included. maxAge <= 0 disables the
	// age filter.
	ListRecentArticles(ctx context.Context, limit int, maxAge time.Duration) ([]Article, error)
	ListRecentPosts(ctx context.Context, limit int, maxAge time.Duration) ([]Post, error)
	ListArticles(ctx context.Context) ([]Article, error)
	ListPosts(ctx context.Context) ([]Post, error)
	SaveArticles(ctx context.Context, articles []Article) (int, error)
	SavePosts(ctx context.Context, posts []Post) (int, error)
	Ping(ctx context.Context) error
}

type AlertRepository interface {
	FindBySourceID(ctx context.Context, sourceID string) (*Alert, error)
	Create(ctx context.Context, alert *Alert) error
	Update(ctx context.Context, alert *Alert) error
	BulkInsert(ctx context.Context, alerts []Alert) (int, error)
	ListAll(ctx context.Context, newestFirst bool) ([]Alert, error)
	DeleteAll(ctx context.Context) (int, error)
	DeduplicateByTitle(ctx context.Context) (DedupResult, error)
	Ping(ctx context.Context) error
}

// RunLock serializes maintenance runs across processes sharing one store.
// release must be called exactly once after a successful acquire.
type RunLock interface {
	TryAcquire(ctx context.Context, name string) (release func(context.Context) error, acquired bool, err error)
}
