package config

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	HTTPAddr string `env:"HTTP_ADDR,default=:8000"`

	DBDriver          string        `env:"DB_DRIVER,default=postgres"`
	DBDSN             string        `env:"DB_DSN"`
	DBHost            string        `env:"DB_HOST,default=localhost"`
	DBPort            int           `env:"DB_PORT,default=5432"`
	DBUser            string        `env:"DB_USER"`
	DBPassword        string        `env:"DB_PASSWORD"`
	DBName            string        `env:"DB_NAME,default=newsalerts"`
	DBSSLMode         string        `env:"DB_SSLMODE,default=disable"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS,default=10"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS,default=25"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME,default=30m"`

	ArticleWindow    int           `env:"ARTICLE_WINDOW,default=100"`
	PostWindow       int           `env:"POST_WINDOW,default=200"`
	MaxItemAge       time.Duration `env:"MAX_ITEM_AGE,default=0s"`
	AnalysisWorkers  int           `env:"ANALYSIS_WORKERS,default=4"`
	StoreTimeout     time.Duration `env:"STORE_TIMEOUT,default=5s"`
	RunLockTTL       time.Duration `env:"RUN_LOCK_TTL,default=10m"`
	MarketTimezone   string        `env:"MARKET_TIMEZONE,default=America/Argentina/Buenos_Aires"`
	GenerateInterval time.Duration `env:"GENERATE_INTERVAL,default=0s"`
	LiveFeed         bool          `env:"LIVE_FEED,default=true"`

	TelegramBotToken    string  `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID      int64   `env:"TELEGRAM_CHAT_ID"`
	TelegramRatePerSec  float64 `env:"TELEGRAM_RATE_PER_SEC,default=1"`
	TelegramPollTimeout int     `env:"TELEGRAM_POLL_TIMEOUT,default=30"`
	TelegramCommands    bool    `env:"TELEGRAM_COMMANDS,default=false"`
	NotifyMinPriority   string  `env:"NOTIFY_MIN_PRIORITY,default=high"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=json"`
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(ctx context.Context) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}
