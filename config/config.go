package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Identity   IdentityConfig
	Payment    PaymentConfig
	AWS        AWSConfig
	Translator TranslatorConfig
	Discord    DiscordConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all (e.g. http://localhost:3000,http://localhost:3001)
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is (e.g. postgres://localhost:5432/hfy?sslmode=disable)
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr              string
	Password          string
	DB                int
	ContentTTLMinutes int
}

// IdentityConfig holds settings for the external identity provider.
// Access tokens are issued by the provider and validated locally with the
// shared JWT secret; the admin API is used to ban accounts on deletion.
type IdentityConfig struct {
	JWTSecret        string
	ProviderBaseURL  string
	ProviderAdminKey string
}

// PaymentConfig holds settings for the external payment provider.
type PaymentConfig struct {
	BaseURL       string
	SecretKey     string
	WebhookSecret string
	Currency      string
}

// AWSConfig holds AWS credentials and the S3 media bucket name.
type AWSConfig struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	MediaBucket          string
	PresignExpireMinutes int
}

// TranslatorConfig holds settings for the machine-translation service used to
// prefill draft translations. An empty BaseURL disables the integration.
type TranslatorConfig struct {
	BaseURL string
	APIKey  string
}

// DiscordConfig holds bot credentials for registration notifications.
// An empty BotToken disables the integration.
type DiscordConfig struct {
	BotToken  string
	ChannelID string
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (e.g. DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()      // .env
	_ = godotenv.Load("env") // env (no leading dot)

	readTimeout, _ := strconv.Atoi(getEnv("READ_TIMEOUT_SEC", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("WRITE_TIMEOUT_SEC", "30"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        readTimeout,
			WriteTimeout:       writeTimeout,
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:3001"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", "postgres://localhost:5432/hfy?sslmode=disable"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "hfy"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:              getEnv("REDIS_ADDR", "localhost:6379"),
			Password:          getEnv("REDIS_PASSWORD", ""),
			DB:                redisDB,
			ContentTTLMinutes: getEnvInt("REDIS_CONTENT_TTL_MINUTES", 10),
		},
		Identity: IdentityConfig{
			JWTSecret:        getEnv("IDENTITY_JWT_SECRET", "change-me-in-production"),
			ProviderBaseURL:  getEnv("IDENTITY_PROVIDER_URL", ""),
			ProviderAdminKey: getEnv("IDENTITY_PROVIDER_ADMIN_KEY", ""),
		},
		Payment: PaymentConfig{
			BaseURL:       getEnv("PAYMENT_PROVIDER_URL", ""),
			SecretKey:     getEnv("PAYMENT_SECRET_KEY", ""),
			WebhookSecret: getEnv("PAYMENT_WEBHOOK_SECRET", ""),
			Currency:      getEnv("PAYMENT_CURRENCY", "eur"),
		},
		AWS: AWSConfig{
			Region:               getEnv("AWS_REGION", "eu-central-1"),
			AccessKeyID:          getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
			MediaBucket:          getEnv("AWS_S3_MEDIA_BUCKET", "hfy-media-bucket"),
			PresignExpireMinutes: getEnvInt("AWS_PRESIGN_EXPIRE_MINUTES", 15),
		},
		Translator: TranslatorConfig{
			BaseURL: getEnv("TRANSLATOR_URL", ""),
			APIKey:  getEnv("TRANSLATOR_API_KEY", ""),
		},
		Discord: DiscordConfig{
			BotToken:  getEnv("DISCORD_BOT_TOKEN", ""),
			ChannelID: getEnv("DISCORD_CHANNEL_ID", ""),
		},
	}
	return cfg, nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
