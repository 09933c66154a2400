package configs

import (
	"fmt"
	"strings"
	"sync"

	"nika.id/configs/configslog"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every environment-driven setting of the application.
type Config struct {
	AppEnv  string `env:"APP_ENV" envDefault:"production"`
	AppPort string `env:"APP_PORT" envDefault:"3000"`
	// Public base URL. The NEXT_PUBLIC_ prefix is kept so existing deployments keep their .env.
	AppURL string `env:"NEXT_PUBLIC_APP_URL" envDefault:"http://localhost:3000"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName     string `env:"DB_NAME" envDefault:"nika"`
	DBSSLMode  string `env:"DB_SSL_MODE" envDefault:"disable"`

	JWTSecret string `env:"JWT_SECRET" envDefault:"change-me-in-production"`

	MidtransServerKey    string `env:"MIDTRANS_SERVER_KEY"`
	MidtransClientKey    string `env:"MIDTRANS_CLIENT_KEY"`
	MidtransIsProduction bool   `env:"MIDTRANS_IS_PRODUCTION" envDefault:"false"`

	MinioEndpoint  string `env:"MINIO_ENDPOINT"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY"`
	MinioBucket    string `env:"MINIO_BUCKET" envDefault:"nika"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`
	MinioPublicURL string `env:"MINIO_PUBLIC_URL"`
	UploadDir      string `env:"UPLOAD_DIR" envDefault:"./uploads"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URL"`

	PlansFile     string `env:"PLANS_FILE"`
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

// IsDevelopment reports whether development-only tools (webhook simulator) are enabled.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, "development")
}

// DSN builds the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

// GoogleEnabled reports whether Google sign-in is configured.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

var (
	cfg     *Config
	cfgOnce sync.Once
	cfgErr  error
)

// Load reads .env (when present) and parses the environment once.
func Load() (*Config, error) {
	cfgOnce.Do(func() {
		if err := godotenv.Load(); err != nil {
			configslog.SLog.Debug(".env file not found, using process environment")
		}
		var c Config
		if err := env.Parse(&c); err != nil {
			cfgErr = fmt.Errorf("parse env: %w", err)
			return
		}
		c.AppURL = strings.TrimRight(c.AppURL, "/")
		cfg = &c
	})
	return cfg, cfgErr
}

// Get returns the loaded config. Load must have succeeded before.
func Get() *Config {
	if cfg == nil {
		panic("configs.Get called before configs.Load")
	}
	return cfg
}
