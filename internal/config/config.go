package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Configはアプリ全体の設定
type Config struct {
	Port string `envconfig:"PORT" default:"8080"` // サーバーポート

	// DATABASE_URLがあればPOSTGRES_*より優先
	DatabaseURL      string `envconfig:"DATABASE_URL"`
	PostgresUser     string `envconfig:"POSTGRES_USER"`
	PostgresPassword string `envconfig:"POSTGRES_PASSWORD"`
	PostgresDB       string `envconfig:"POSTGRES_DB"`
	PostgresHost     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	PostgresPort     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	PostgresSSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`

	JWTSecret      string        `envconfig:"JWT_SECRET"` // JWT署名シークレット
	AccessTokenTTL time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"24h"`

	GoEnv string `envconfig:"GO_ENV" default:"dev"` // dev/prod
	FEURL string `envconfig:"FE_URL"`               // CORS許可オリジン

	LogFile  string `envconfig:"LOG_FILE" default:"./logs/app.log"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// 空ならダッシュボードはキャッシュしない
	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	StatsCacheTTL time.Duration `envconfig:"STATS_CACHE_TTL" default:"30s"`

	CartCleanupQueue int `envconfig:"CART_CLEANUP_QUEUE" default:"256"`

	// 起動時に管理者を用意する（両方あるときだけ）
	AdminEmail    string `envconfig:"ADMIN_EMAIL"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`
}

// .envを読み込み（無くてもよい）、環境変数からConfigを作る
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// 必須チェック
func (c Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.DatabaseURL == "" {
		if c.PostgresUser == "" {
			return errors.New("POSTGRES_USER is required")
		}
		if c.PostgresDB == "" {
			return errors.New("POSTGRES_DB is required")
		}
		if c.PostgresHost == "" {
			return errors.New("POSTGRES_HOST is required")
		}
	}
	if c.AccessTokenTTL <= 0 {
		return errors.New("ACCESS_TOKEN_TTL must be > 0")
	}
	if c.CartCleanupQueue < 1 {
		return errors.New("CART_CLEANUP_QUEUE must be >= 1")
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	return nil
}

func (c Config) IsProd() bool {
	return c.GoEnv == "prod"
}
