package config

import (
	"time"

	"github.com/twbrandon7/lexi-connect/internal/pkg/env"
)

type Config struct {
	AuthSecret      string
	TokenIssuer     string
	TokenTTL        time.Duration
	DetailCacheKeys int64
	DetailCacheCost int64
	DB              dbConfig
	Http            httpConfig
	AI              aiConfig
	Redis           redisConfig
}

type dbConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type httpConfig struct {
	ListenAddr      string
	IdleTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type aiConfig struct {
	APIKey   string
	BaseURL  string
	Model    string
	TTSModel string
	Voice    string
	Timeout  time.Duration
}

// redisConfig is optional: an empty host disables the cross-instance watch
// bridge and notifications stay process-local.
type redisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Channel  string
}

func (c redisConfig) Enabled() bool {
	return c.Host != ""
}

func FromEnv() Config {
	return Config{
		AuthSecret:      env.RequireString("AUTH_SECRET"),
		TokenIssuer:     env.String("TOKEN_ISSUER", "lexi-connect"),
		TokenTTL:        env.Duration("TOKEN_TTL", 24*time.Hour),
		DetailCacheKeys: env.Int64("DETAIL_CACHE_KEYS", 10000),
		DetailCacheCost: env.Int64("DETAIL_CACHE_COST", 10000),
		DB: dbConfig{
			Host:     env.String("DB_HOST", "localhost"),
			Port:     env.String("DB_PORT", "5432"),
			User:     env.String("DB_USER", "postgres"),
			Password: env.String("DB_PASSWORD", "password"),
			Name:     env.String("DB_NAME", "lexi_connect"),
		},
		Http: httpConfig{
			ListenAddr:      env.String("HTTP_LISTEN_ADDR", ":8080"),
			IdleTimeout:     env.Duration("HTTP_IDLE_TIMEOUT", 60*time.Second),
			ReadTimeout:     env.Duration("HTTP_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    env.Duration("HTTP_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: env.Duration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		AI: aiConfig{
			APIKey:   env.RequireString("AI_API_KEY"),
			BaseURL:  env.String("AI_BASE_URL", ""),
			Model:    env.String("AI_MODEL", "gpt-4o-mini"),
			TTSModel: env.String("AI_TTS_MODEL", "tts-1"),
			Voice:    env.String("AI_TTS_VOICE", "alloy"),
			Timeout:  env.Duration("AI_TIMEOUT", 30*time.Second),
		},
		Redis: redisConfig{
			Host:     env.String("REDIS_HOST", ""),
			Port:     env.String("REDIS_PORT", "6379"),
			Password: env.String("REDIS_PASSWORD", ""),
			DB:       env.Int("REDIS_DB", 0),
			Channel:  env.String("REDIS_WATCH_CHANNEL", "lexi-connect:watch"),
		},
	}
}
