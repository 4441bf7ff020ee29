package usecase

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/NasaVasa/newsalerts/internal/analysis"
	"github.com/NasaVasa/newsalerts/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrRunInProgress = errors.New("alert run already in progress")
	ErrInvalidSource = errors.New("invalid source")
)

// runLockName keys the shared lock row held by generate, clean-up, clear and
// import runs.
const runLockName = "alerts"

type Source string

const (
	SourceAll    Source = "all"
	SourceNews   Source = "news"
	SourceTweets Source = "tweets"
)

func ParseSource(value string) (Source, error) {
	switch Source(value) {
	case "", SourceAll:
		return SourceAll, nil
	case SourceNews, SourceTweets:
		return Source(value), nil
	}
	return "", ErrInvalidSource
}

type Notifier interface {
	Notify(ctx context.Context, alert domain.Alert) error
}

type GenerateOptions struct {
	ArticleWindow     int
	PostWindow        int
	MaxAge            time.Duration
	Workers           int
	StoreTimeout      time.Duration
	NotifyMinPriority domain.Priority
}

func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		ArticleWindow:     100,
		PostWindow:        200,
		Workers:           4,
		StoreTimeout:      5 * time.Second,
		NotifyMinPriority: domain.PriorityHigh,
	}
}

type GenerateResult struct {
	NewsProcessed   int            `json:"news_processed"`
	TweetsProcessed int            `json:"tweets_processed"`
	Created         int            `json:"alerts_created"`
	Updated         int            `json:"alerts_updated"`
	Skipped         int            `json:"alerts_skipped"`
	Alerts          []domain.Alert `json:"alerts"`
}

type AlertUsecase struct {
	content  domain.ContentRepository
	alerts   domain.AlertRepository
	locker   domain.RunLock
	analyzer *analysis.Analyzer
	clock    *analysis.MarketClock
	notifier Notifier
	opts     GenerateOptions
	logger   *zap.Logger

	runMu sync.Mutex

	// Notifications outlive the run that produced them and stop on Close.
	notifyCtx  context.Context
	stopNotify context.CancelFunc
	notifyWG   sync.WaitGroup
}

// NewAlertUsecase wires the alert pipeline. locker may be nil, in which case
// runs are only serialized within this process.
func NewAlertUsecase(content domain.ContentRepository, alerts domain.AlertRepository, locker domain.RunLock, analyzer *analysis.Analyzer, clock *analysis.MarketClock, notifier Notifier, opts GenerateOptions, logger *zap.Logger) *AlertUsecase {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if !opts.NotifyMinPriority.Valid() {
		opts.NotifyMinPriority = domain.PriorityHigh
	}
	notifyCtx, stopNotify := context.WithCancel(context.Background())
	return &AlertUsecase{
		content:    content,
		alerts:     alerts,
		locker:     locker,
		analyzer:   analyzer,
		clock:      clock,
		notifier:   notifier,
		opts:       opts,
		logger:     logger,
		notifyCtx:  notifyCtx,
		stopNotify: stopNotify,
	}
}

// Flush blocks until every queued notification has been attempted.
func (u *AlertUsecase) Flush() {
	u.notifyWG.Wait()
}

// Close drops notifications that are still waiting to be sent.
func (u *AlertUsecase) Close() {
	u.stopNotify()
	u.notifyWG.Wait()
}

// Generate analyzes the recent content window and persists the resulting
// alerts. Only one run (generate, clean-up, clear or import) may be active at
// a time across every process sharing the store.
func (u *AlertUsecase) Generate(ctx context.Context, source Source) (*GenerateResult, error) {
	release, err := u.acquireRun(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	start := time.Now()
	now := u.clock.Now().UTC()
	marketHours := u.marketHours()
	result := &GenerateResult{Alerts: make([]domain.Alert, 0)}
	candidates := make([]*domain.Alert, 0)

	if source == SourceAll || source == SourceNews {
		articles, err := u.recentArticles(ctx)
		if err != nil {
			return nil, err
		}
		result.NewsProcessed = len(articles)
		alerts, err := analyzeAll(ctx, u.opts.Workers, articles, func(article domain.Article) (*domain.Alert, bool) {
			return u.analyzer.AnalyzeArticle(article, now, marketHours)
		})
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, alerts...)
	}

	if source == SourceAll || source == SourceTweets {
		posts, err := u.recentPosts(ctx)
		if err != nil {
			return nil, err
		}
		result.TweetsProcessed = len(posts)
		alerts, err := analyzeAll(ctx, u.opts.Workers, posts, func(post domain.Post) (*domain.Alert, bool) {
			return u.analyzer.AnalyzePost(post, now, marketHours)
		})
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, alerts...)
	}

	pending := make([]domain.Alert, 0)
	for _, candidate := range candidates {
		action, stored, err := u.upsert(ctx, *candidate, now)
		if err != nil {
			if storeErr := u.storeFailure(ctx, err); storeErr != nil {
				u.dispatch(pending)
				return result, storeErr
			}
			u.logger.Warn("alert persist failed", zap.String("source_id", candidate.SourceID), zap.String("title", candidate.Title), zap.Error(err))
			result.Skipped++
			continue
		}

		if action == MergeInsert {
			result.Created++
		} else {
			result.Updated++
		}
		result.Alerts = append(result.Alerts, stored)

		if action != MergeBump && u.shouldNotify(stored) {
			pending = append(pending, stored)
		}
	}
	u.dispatch(pending)

	u.logger.Info(
		"alert generation complete",
		zap.String("source", string(source)),
		zap.Bool("market_hours", marketHours),
		zap.Int("news_processed", result.NewsProcessed),
		zap.Int("tweets_processed", result.TweetsProcessed),
		zap.Int("alerts_created", result.Created),
		zap.Int("alerts_updated", result.Updated),
		zap.Int("alerts_skipped", result.Skipped),
		zap.Duration("duration", time.Since(start)),
	)
	return result, nil
}

func (u *AlertUsecase) ListAlerts(ctx context.Context) ([]domain.Alert, error) {
	return u.alerts.ListAll(ctx, true)
}

func (u *AlertUsecase) DeleteAll(ctx context.Context) (int, error) {
	release, err := u.acquireRun(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	deleted, err := u.alerts.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	u.logger.Info("alerts cleared", zap.Int("deleted", deleted))
	return deleted, nil
}

func (u *AlertUsecase) CleanDuplicates(ctx context.Context) (domain.DedupResult, error) {
	release, err := u.acquireRun(ctx)
	if err != nil {
		return domain.DedupResult{}, err
	}
	defer release()

	result, err := u.alerts.DeduplicateByTitle(ctx)
	if err != nil {
		return domain.DedupResult{}, err
	}
	u.logger.Info(
		"duplicate alerts cleaned",
		zap.Int("groups_processed", result.GroupsProcessed),
		zap.Int("duplicates_deleted", result.Deleted),
		zap.Int("remaining", result.Remaining),
	)
	return result, nil
}

// ImportAlerts bulk loads previously exported alerts. Alerts whose id is
// already stored are left untouched and not counted.
func (u *AlertUsecase) ImportAlerts(ctx context.Context, alerts []domain.Alert) (int, error) {
	release, err := u.acquireRun(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	now := u.clock.Now().UTC()
	batch := make([]domain.Alert, 0, len(alerts))
	for _, alert := range alerts {
		batch = append(batch, normalizeImported(alert, now))
	}
	inserted, err := u.alerts.BulkInsert(ctx, batch)
	if err != nil {
		return 0, fmt.Errorf("import alerts: %w", err)
	}
	u.logger.Info("alerts imported", zap.Int("received", len(alerts)), zap.Int("inserted", inserted))
	return inserted, nil
}

func normalizeImported(alert domain.Alert, now time.Time) domain.Alert {
	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	if alert.Type == "" {
		alert.Type = domain.AlertTypeNews
	}
	if !alert.Priority.Valid() {
		alert.Priority = domain.PriorityMedium
	}
	if alert.TriggerCount < 1 {
		alert.TriggerCount = 1
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = now
	}
	return alert
}

// acquireRun takes the in-process lock first and then the shared lock row,
// so a second process working on the same store is turned away as well.
func (u *AlertUsecase) acquireRun(ctx context.Context) (func(), error) {
	if !u.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	if u.locker == nil {
		return u.runMu.Unlock, nil
	}

	opCtx, cancel := u.storeContext(ctx)
	defer cancel()
	releaseRow, acquired, err := u.locker.TryAcquire(opCtx, runLockName)
	if err != nil {
		u.runMu.Unlock()
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !acquired {
		u.runMu.Unlock()
		return nil, ErrRunInProgress
	}
	return func() {
		releaseCtx, cancel := u.storeContext(context.WithoutCancel(ctx))
		defer cancel()
		if err := releaseRow(releaseCtx); err != nil {
			u.logger.Warn("run lock release failed", zap.Error(err))
		}
		u.runMu.Unlock()
	}, nil
}

func (u *AlertUsecase) upsert(ctx context.Context, alert domain.Alert, now time.Time) (MergeAction, domain.Alert, error) {
	opCtx, cancel := u.storeContext(ctx)
	defer cancel()

	var existing *domain.Alert
	if alert.SourceID != "" {
		found, err := u.alerts.FindBySourceID(opCtx, alert.SourceID)
		switch {
		case err == nil:
			existing = found
		case !errors.Is(err, domain.ErrNotFound):
			return MergeInsert, domain.Alert{}, err
		}
	}

	action, merged := DecideMerge(existing, alert, now)
	var err error
	if action == MergeInsert {
		err = u.alerts.Create(opCtx, &merged)
	} else {
		err = u.alerts.Update(opCtx, &merged)
	}
	if err != nil {
		return action, domain.Alert{}, err
	}
	u.logger.Debug("alert stored", zap.String("action", action.String()), zap.String("alert_id", merged.ID), zap.String("source_id", merged.SourceID))
	return action, merged, nil
}

func (u *AlertUsecase) shouldNotify(alert domain.Alert) bool {
	return u.notifier != nil && alert.Priority.Rank() >= u.opts.NotifyMinPriority.Rank()
}

// dispatch sends notifications in the background so rate limited channels
// never hold the run lock or depend on the caller's deadline.
func (u *AlertUsecase) dispatch(alerts []domain.Alert) {
	if len(alerts) == 0 {
		return
	}
	u.notifyWG.Add(1)
	go func() {
		defer u.notifyWG.Done()
		for i, alert := range alerts {
			if err := u.notifier.Notify(u.notifyCtx, alert); err != nil {
				if u.notifyCtx.Err() != nil {
					u.logger.Warn("alert notifications dropped on shutdown", zap.Int("dropped", len(alerts)-i))
					return
				}
				u.logger.Warn("alert notification failed", zap.String("alert_id", alert.ID), zap.Error(err))
			}
		}
	}()
}

func (u *AlertUsecase) recentArticles(ctx context.Context) ([]domain.Article, error) {
	opCtx, cancel := u.storeContext(ctx)
	defer cancel()
	articles, err := u.content.ListRecentArticles(opCtx, u.opts.ArticleWindow, u.opts.MaxAge)
	if err != nil {
		return nil, fmt.Errorf("list recent articles: %w", err)
	}
	return articles, nil
}

func (u *AlertUsecase) recentPosts(ctx context.Context) ([]domain.Post, error) {
	opCtx, cancel := u.storeContext(ctx)
	defer cancel()
	posts, err := u.content.ListRecentPosts(opCtx, u.opts.PostWindow, u.opts.MaxAge)
	if err != nil {
		return nil, fmt.Errorf("list recent posts: %w", err)
	}
	return posts, nil
}

func (u *AlertUsecase) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if u.opts.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, u.opts.StoreTimeout)
}

// marketHours fails open, see analysis.MarketClock.
func (u *AlertUsecase) marketHours() bool {
	open, err := u.clock.IsMarketHours()
	if err != nil {
		u.logger.Debug("market timezone unavailable, assuming market hours", zap.Error(err))
	}
	return open
}

// storeFailure separates a dead store or cancelled run from a single bad
// record. It returns nil when the run may continue with the next alert.
func (u *AlertUsecase) storeFailure(ctx context.Context, err error) error {
	if fatalStoreError(ctx, err) {
		return fmt.Errorf("persist alerts: %w", err)
	}
	opCtx, cancel := u.storeContext(ctx)
	defer cancel()
	if pingErr := u.alerts.Ping(opCtx); pingErr != nil {
		return fmt.Errorf("persist alerts: store unavailable: %w", errors.Join(err, pingErr))
	}
	return nil
}

func fatalStoreError(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone)
}

func analyzeAll[T any](ctx context.Context, workers int, items []T, analyze func(T) (*domain.Alert, bool)) ([]*domain.Alert, error) {
	results := make([]*domain.Alert, len(items))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i, item := range items {
		i, item := i, item
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			if alert, ok := analyze(item); ok {
				results[i] = alert
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	alerts := make([]*domain.Alert, 0, len(results))
	for _, alert := range results {
		if alert != nil {
			alerts = append(alerts, alert)
		}
	}
	return alerts, nil
}
