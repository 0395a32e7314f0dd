package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultJWTSecret is the development signing key. Load refuses it in production.
const DefaultJWTSecret = "change-me-in-production"

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	JWT    JWTConfig
	S3     S3Config
	Redis  RedisConfig
	Log    LogConfig
	CORS   CORSConfig
	Upload UploadConfig
	Seed   SeedConfig
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	Environment     string        `mapstructure:"environment"`
	LoginRateLimit  int           `mapstructure:"login_rate_limit"`
	LoginRateWindow time.Duration `mapstructure:"login_rate_window"`
}

// IsProduction reports whether the server runs with production hardening.
func (s *ServerConfig) IsProduction() bool {
	return s.Environment == "production" || s.Environment == "prod"
}

// IsDevelopment reports whether development-only helpers (seeding, insecure cookies) are enabled.
func (s *ServerConfig) IsDevelopment() bool {
	return s.Environment == "development" || s.Environment == "dev"
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_expiry"`
	Issuer             string        `mapstructure:"issuer"`
}

// S3Config holds the raw upload archive settings.
type S3Config struct {
	Enabled   bool   `mapstructure:"enabled"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// RedisConfig holds the monthly KPI cache settings.
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// UploadConfig bounds multipart report uploads.
type UploadConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
}

// SeedConfig holds the development superuser credentials.
type SeedConfig struct {
	DevEmail    string `mapstructure:"dev_email"`
	DevPassword string `mapstructure:"dev_password"`
}

// Load reads configuration from environment variables with the RESTAU_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RESTAU")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.login_rate_limit", 10)
	v.SetDefault("server.login_rate_window", "1m")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "restau")
	v.SetDefault("db.password", "restau_secret")
	v.SetDefault("db.name", "restau_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", DefaultJWTSecret)
	v.SetDefault("jwt.access_expiry", "60m")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("jwt.issuer", "restau")

	// S3 defaults
	v.SetDefault("s3.enabled", false)
	v.SetDefault("s3.region", "eu-west-3")
	v.SetDefault("s3.bucket", "restau-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.prefix", "bk")

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "10m")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "text")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:5173,http://127.0.0.1:5173,http://localhost:3000")

	v.SetDefault("upload.max_file_size_mb", 10)

	v.SetDefault("seed.dev_email", "dev@restau.com")
	v.SetDefault("seed.dev_password", "dev1234")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":              "RESTAU_SERVER_PORT",
		"server.read_timeout":      "RESTAU_SERVER_READ_TIMEOUT",
		"server.write_timeout":     "RESTAU_SERVER_WRITE_TIMEOUT",
		"server.environment":       "RESTAU_SERVER_ENVIRONMENT",
		"server.login_rate_limit":  "RESTAU_SERVER_LOGIN_RATE_LIMIT",
		"server.login_rate_window": "RESTAU_SERVER_LOGIN_RATE_WINDOW",
		"db.host":                  "RESTAU_DB_HOST",
		"db.port":                  "RESTAU_DB_PORT",
		"db.user":                  "RESTAU_DB_USER",
		"db.password":              "RESTAU_DB_PASSWORD",
		"db.name":                  "RESTAU_DB_NAME",
		"db.sslmode":               "RESTAU_DB_SSLMODE",
		"db.max_open":              "RESTAU_DB_MAX_OPEN",
		"db.max_idle":              "RESTAU_DB_MAX_IDLE",
		"jwt.secret":               "RESTAU_JWT_SECRET",
		"jwt.access_expiry":        "RESTAU_JWT_ACCESS_EXPIRY",
		"jwt.refresh_expiry":       "RESTAU_JWT_REFRESH_EXPIRY",
		"jwt.issuer":               "RESTAU_JWT_ISSUER",
		"s3.enabled":               "RESTAU_S3_ENABLED",
		"s3.region":                "RESTAU_S3_REGION",
		"s3.bucket":                "RESTAU_S3_BUCKET",
		"s3.endpoint":              "RESTAU_S3_ENDPOINT",
		"s3.access_key":            "RESTAU_S3_ACCESS_KEY",
		"s3.secret_key":            "RESTAU_S3_SECRET_KEY",
		"s3.prefix":                "RESTAU_S3_PREFIX",
		"redis.enabled":            "RESTAU_REDIS_ENABLED",
		"redis.addr":               "RESTAU_REDIS_ADDR",
		"redis.password":           "RESTAU_REDIS_PASSWORD",
		"redis.db":                 "RESTAU_REDIS_DB",
		"redis.ttl":                "RESTAU_REDIS_TTL",
		"log.level":                "RESTAU_LOG_LEVEL",
		"log.format":               "RESTAU_LOG_FORMAT",
		"cors.allowed_origins":     "RESTAU_CORS_ALLOWED_ORIGINS",
		"upload.max_file_size_mb":  "RESTAU_UPLOAD_MAX_FILE_SIZE_MB",
		"seed.dev_email":           "RESTAU_SEED_DEV_EMAIL",
		"seed.dev_password":        "RESTAU_SEED_DEV_PASSWORD",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Hosting platforms set a PORT env var. Use it if RESTAU_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("RESTAU_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:            serverPort,
		ReadTimeout:     v.GetDuration("server.read_timeout"),
		WriteTimeout:    v.GetDuration("server.write_timeout"),
		Environment:     v.GetString("server.environment"),
		LoginRateLimit:  v.GetInt("server.login_rate_limit"),
		LoginRateWindow: v.GetDuration("server.login_rate_window"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:             v.GetString("jwt.secret"),
		AccessTokenExpiry:  v.GetDuration("jwt.access_expiry"),
		RefreshTokenExpiry: v.GetDuration("jwt.refresh_expiry"),
		Issuer:             v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Enabled:   v.GetBool("s3.enabled"),
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
		Prefix:    v.GetString("s3.prefix"),
	}
	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("redis.enabled"),
		Addr:     v.GetString("redis.addr"),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
		TTL:      v.GetDuration("redis.ttl"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}
	cfg.Upload = UploadConfig{
		MaxFileSizeMB: v.GetInt64("upload.max_file_size_mb"),
	}
	cfg.Seed = SeedConfig{
		DevEmail:    v.GetString("seed.dev_email"),
		DevPassword: v.GetString("seed.dev_password"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that are unsafe to run.
func (c *Config) Validate() error {
	if c.Server.IsProduction() && (c.JWT.Secret == "" || c.JWT.Secret == DefaultJWTSecret) {
		return errors.New("config: RESTAU_JWT_SECRET must be set in production")
	}
	if c.JWT.AccessTokenExpiry <= 0 || c.JWT.RefreshTokenExpiry <= 0 {
		return errors.New("config: jwt expiries must be positive")
	}
	return nil
}
