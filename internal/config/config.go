package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config chứa toàn bộ application configuration
// Struct này được populate từ environment variables
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Admin    AdminConfig
	Security SecurityConfig
	Cache    CacheConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

type DatabaseConfig struct {
	URL      string // DATABASE_URL, override các field bên dưới
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Host     string // rỗng: dùng in-memory cache (single instance)
	Password string
	DB       int
}

type JWTConfig struct {
	Secret      string
	Issuer      string
	Audience    string
	ExpiryHours int
}

// Expiry trả về thời gian sống của access token
func (j JWTConfig) Expiry() time.Duration {
	return time.Duration(j.ExpiryHours) * time.Hour
}

// AdminConfig là tài khoản admin mặc định được seed lúc startup
type AdminConfig struct {
	Email    string
	Password string
}

type SecurityConfig struct {
	BcryptCost          int
	RateLimitRPS        float64
	RateLimitBurst      int
	LoginMaxAttempts    int
	LoginLockoutMinutes int
}

// LoginLockout trả về cửa sổ đếm số lần login sai
func (s SecurityConfig) LoginLockout() time.Duration {
	return time.Duration(s.LoginLockoutMinutes) * time.Minute
}

type CacheConfig struct {
	TTLSeconds int
}

func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// Load đọc config từ environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Book Catalog API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "book_catalog"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     os.Getenv("REDIS_HOST"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:      os.Getenv("JWT_SECRET"),
			Issuer:      getEnv("JWT_ISSUER", "book-catalog-api"),
			Audience:    getEnv("JWT_AUDIENCE", "book-catalog-clients"),
			ExpiryHours: getEnvInt("JWT_EXPIRY_HOURS", 24),
		},
		Admin: AdminConfig{
			Email:    os.Getenv("ADMIN_EMAIL"),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
		Security: SecurityConfig{
			BcryptCost:          getEnvInt("BCRYPT_COST", 12),
			RateLimitRPS:        getEnvFloat("RATE_LIMIT_RPS", 20),
			RateLimitBurst:      getEnvInt("RATE_LIMIT_BURST", 40),
			LoginMaxAttempts:    getEnvInt("LOGIN_MAX_ATTEMPTS", 0),
			LoginLockoutMinutes: getEnvInt("LOGIN_LOCKOUT_MINUTES", 15),
		},
		Cache: CacheConfig{
			TTLSeconds: getEnvInt("CACHE_TTL_SECONDS", 60),
		},
	}

	// Validate critical config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate kiểm tra config có hợp lệ không
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if c.JWT.ExpiryHours <= 0 {
		return errors.New("JWT_EXPIRY_HOURS must be positive")
	}
	if c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST out of range: %d", c.Security.BcryptCost)
	}
	// Throttling bật thì cửa sổ đếm phải > 0, nếu không counter không bao giờ hết hạn
	if c.Security.LoginMaxAttempts > 0 && c.Security.LoginLockoutMinutes <= 0 {
		return errors.New("LOGIN_LOCKOUT_MINUTES must be positive when LOGIN_MAX_ATTEMPTS is set")
	}

	// Production environment không được dùng secret mặc định
	if c.App.Environment == "production" {
		if c.JWT.Secret == defaultJWTSecret {
			return errors.New("JWT_SECRET must be changed in production")
		}
		if c.Database.URL == "" && c.Database.Password == "" {
			return errors.New("DB_PASSWORD must be set in production")
		}
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}
