// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ranksight/ranksight-backend/internal/models"
	"github.com/ranksight/ranksight-backend/internal/platform"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Shopify     ShopifyConfig
	Platforms   PlatformsConfig
	Plans       PlansConfig
	AWS         AWSConfig
	Payment     PaymentConfig
	Frontend    FrontendConfig
}

type FrontendConfig struct {
	BaseURL string
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type JWTConfig struct {
	SecretKey      string
	AccessTokenTTL int // in hours
}

type ShopifyConfig struct {
	APIVersion     string
	RequestTimeout int // in seconds
	PageSize       int
}

type PlatformsConfig struct {
	RequestTimeout int // in seconds
	Credentials    map[models.PlatformType]platform.Credentials
}

type PlansConfig struct {
	FilePath string
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
}

type PaymentConfig struct {
	StripeSecretKey     string
	StripeWebhookSecret string
	PriceIDs            map[models.PlanID]string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 60),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "ranksight"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			SecretKey:      getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenTTL: getEnvAsInt("JWT_ACCESS_TTL", 24),
		},
		Shopify: ShopifyConfig{
			APIVersion:     getEnv("SHOPIFY_API_VERSION", "2024-07"),
			RequestTimeout: getEnvAsInt("SHOPIFY_REQUEST_TIMEOUT", 20),
			PageSize:       getEnvAsInt("SHOPIFY_PAGE_SIZE", 50),
		},
		Platforms: PlatformsConfig{
			RequestTimeout: getEnvAsInt("PLATFORM_REQUEST_TIMEOUT", 30),
			Credentials: map[models.PlatformType]platform.Credentials{
				models.PlatformOpenAI: {
					APIKey:  getEnv("OPENAI_API_KEY", ""),
					Model:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
					BaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
				},
				models.PlatformAnthropic: {
					APIKey:  getEnv("ANTHROPIC_API_KEY", ""),
					Model:   getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
					BaseURL: getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com/v1"),
				},
				models.PlatformGemini: {
					APIKey:  getEnv("GEMINI_API_KEY", ""),
					Model:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
					BaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai"),
				},
				models.PlatformPerplexity: {
					APIKey:  getEnv("PERPLEXITY_API_KEY", ""),
					Model:   getEnv("PERPLEXITY_MODEL", "sonar"),
					BaseURL: getEnv("PERPLEXITY_BASE_URL", "https://api.perplexity.ai"),
				},
			},
		},
		Plans: PlansConfig{
			FilePath: getEnv("PLANS_FILE", "plans.yaml"),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:        getEnv("AWS_S3_BUCKET", "ranksight-exports"),
		},
		Payment: PaymentConfig{
			StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			PriceIDs: map[models.PlanID]string{
				models.PlanStarter: getEnv("STRIPE_PRICE_STARTER", ""),
				models.PlanGrowth:  getEnv("STRIPE_PRICE_GROWTH", ""),
				models.PlanPro:     getEnv("STRIPE_PRICE_PRO", ""),
			},
		},
		Frontend: FrontendConfig{
			BaseURL: getEnv("FRONTEND_BASE_URL", "http://localhost:3000"),
		},
	}

	return config, config.Validate()
}

// IsDevelopment gates dev-shop behavior such as quota bypass.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) Validate() error {
	if c.JWT.SecretKey == "your-secret-key-change-in-production" && c.Environment == "production" {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	if c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
