package httpapi

import (
	"net/http"
	"time"

	"github.com/NasaVasa/newsalerts/internal/usecase"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const healthTimeout = 2 * time.Second

type Handlers struct {
	alertUC   *usecase.AlertUsecase
	contentUC *usecase.ContentUsecase
	logger    *zap.Logger
}

func NewHandlers(alertUC *usecase.AlertUsecase, contentUC *usecase.ContentUsecase, logger *zap.Logger) *Handlers {
	return &Handlers{alertUC: alertUC, contentUC: contentUC, logger: logger}
}

// NewRouter wires every endpoint. feed may be nil when the live alert feed
// is disabled.
func NewRouter(handlers *Handlers, feed http.Handler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	r.GET("/", handlers.Index)
	r.GET("/health", handlers.Health)

	r.GET("/news", handlers.ListNews)
	r.GET("/news/recent", handlers.RecentNews)
	r.GET("/tweets", handlers.ListTweets)
	r.GET("/tweets/recent", handlers.RecentTweets)

	alerts := r.Group("/alerts")
	{
		alerts.GET("", handlers.ListAlerts)
		alerts.DELETE("", handlers.DeleteAlerts)
		alerts.POST("/generate", handlers.Generate(usecase.SourceAll))
		alerts.POST("/generate/news", handlers.Generate(usecase.SourceNews))
		alerts.POST("/generate/tweets", handlers.Generate(usecase.SourceTweets))
		alerts.POST("/clean-duplicates", handlers.CleanDuplicates)
	}

	if feed != nil {
		r.GET("/ws/alerts", gin.WrapH(feed))
	}
	return r
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info(
			"http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
