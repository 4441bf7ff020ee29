package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/NasaVasa/newsalerts/internal/analysis"
	"github.com/NasaVasa/newsalerts/internal/config"
	"github.com/NasaVasa/newsalerts/internal/delivery/httpapi"
	"github.com/NasaVasa/newsalerts/internal/delivery/telegram"
	"github.com/NasaVasa/newsalerts/internal/delivery/ws"
	"github.com/NasaVasa/newsalerts/internal/domain"
	"github.com/NasaVasa/newsalerts/internal/infra/db"
	"github.com/NasaVasa/newsalerts/internal/infra/feed"
	"github.com/NasaVasa/newsalerts/internal/infra/log"
	"github.com/NasaVasa/newsalerts/internal/usecase"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	shutdownTimeout = 10 * time.Second
	feedTimeout     = 30 * time.Second
)

// Core is the storage and usecase layer shared by the server and the CLI.
type Core struct {
	Logger    *zap.Logger
	AlertUC   *usecase.AlertUsecase
	ContentUC *usecase.ContentUsecase
	Feed      *feed.Client

	db *gorm.DB
}

// NewCore connects storage and builds the usecases. notifiers receive every
// new or replaced alert at or above NOTIFY_MIN_PRIORITY.
func NewCore(cfg config.Config, logger *zap.Logger, notifiers ...usecase.Notifier) (*Core, error) {
	minPriority, err := domain.ParsePriority(cfg.NotifyMinPriority)
	if err != nil {
		return nil, err
	}

	dbConn, err := db.Open(cfg, logger)
	if err != nil {
		return nil, err
	}

	contentRepo := db.NewContentRepository(dbConn)
	alertRepo := db.NewAlertRepository(dbConn)
	runLock := db.NewRunLock(dbConn, cfg.RunLockTTL)
	clock := analysis.NewMarketClock(cfg.MarketTimezone, time.Now)
	analyzer := analysis.NewAnalyzer(analysis.DefaultLexicon())

	var notifier usecase.Notifier
	if len(notifiers) > 0 {
		notifier = usecase.Notifiers(notifiers)
	}
	opts := usecase.GenerateOptions{
		ArticleWindow:     cfg.ArticleWindow,
		PostWindow:        cfg.PostWindow,
		MaxAge:            cfg.MaxItemAge,
		Workers:           cfg.AnalysisWorkers,
		StoreTimeout:      cfg.StoreTimeout,
		NotifyMinPriority: minPriority,
	}

	return &Core{
		Logger:    logger,
		AlertUC:   usecase.NewAlertUsecase(contentRepo, alertRepo, runLock, analyzer, clock, notifier, opts, logger.Named("alerts")),
		ContentUC: usecase.NewContentUsecase(contentRepo, logger.Named("content")),
		Feed:      feed.NewClient(feedTimeout, logger.Named("feed")),
		db:        dbConn,
	}, nil
}

// Close drops notifications still queued and closes the database.
func (c *Core) Close() error {
	c.AlertUC.Close()
	return db.Close(c.db)
}

type App struct {
	server    *http.Server
	hub       *ws.Hub
	bot       *telegram.Bot
	scheduler *usecase.Scheduler
	core      *Core
	logger    *zap.Logger
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := log.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	var notifiers []usecase.Notifier
	var hub *ws.Hub
	if cfg.LiveFeed {
		hub = ws.NewHub(logger.Named("ws"))
		notifiers = append(notifiers, hub)
	}

	var api *tgbotapi.BotAPI
	if cfg.TelegramEnabled() {
		botAPI, err := telegram.NewAPI(cfg.TelegramBotToken)
		if err != nil {
			return nil, err
		}
		api = botAPI
		notifiers = append(notifiers, telegram.NewNotifier(botAPI, cfg.TelegramChatID, cfg.TelegramRatePerSec, logger.Named("telegram")))
	}

	core, err := NewCore(cfg, logger, notifiers...)
	if err != nil {
		return nil, err
	}

	var bot *telegram.Bot
	if api != nil && cfg.TelegramCommands {
		handlers := telegram.NewHandlers(core.AlertUC, cfg.TelegramChatID, logger.Named("telegram"))
		bot = telegram.NewBot(api, handlers, cfg.TelegramPollTimeout)
	}

	var feedHandler http.Handler
	if hub != nil {
		feedHandler = hub
	}
	router := httpapi.NewRouter(httpapi.NewHandlers(core.AlertUC, core.ContentUC, logger.Named("http")), feedHandler, logger.Named("http"))

	return &App{
		server:    &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 10 * time.Second},
		hub:       hub,
		bot:       bot,
		scheduler: usecase.NewScheduler(core.AlertUC, cfg.GenerateInterval, logger.Named("scheduler")),
		core:      core,
		logger:    logger,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("newsalerts service starting", zap.String("addr", a.server.Addr))
	a.scheduler.Start(ctx)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})
	if a.bot != nil {
		group.Go(func() error {
			return a.bot.Start(groupCtx)
		})
	}

	a.logger.Info("newsalerts service started")
	return group.Wait()
}

func (a *App) Shutdown() {
	a.logger.Info("newsalerts service shutting down")
	a.scheduler.Stop()
	if a.hub != nil {
		a.hub.Close()
	}
	if err := a.core.Close(); err != nil {
		a.logger.Warn("failed to close database", zap.Error(err))
	}
	_ = a.logger.Sync()
}
