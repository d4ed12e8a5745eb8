package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	S3         S3Config
	Log        LogConfig
	CORS       CORSConfig
	Validation ValidationConfig
}

// ValidationConfig holds validation run settings.
type ValidationConfig struct {
	DefaultCountry  string `mapstructure:"default_country"`
	DefaultLanguage string `mapstructure:"default_language"`
	ProfilePath     string `mapstructure:"profile_path"`
	ParallelSheets  bool   `mapstructure:"parallel_sheets"`
	MaxWorkers      int    `mapstructure:"max_workers"`
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
	MaxUploadSizeMB int64         `mapstructure:"max_upload_size_mb"`
}

// MaxUploadBytes returns the upload limit in bytes.
func (s *ServerConfig) MaxUploadBytes() int64 {
	return s.MaxUploadSizeMB << 20
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
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

// S3Config holds AWS S3 settings for the report archive.
type S3Config struct {
	Enabled       bool   `mapstructure:"enabled"`
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	Prefix        string `mapstructure:"prefix"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the SURVEYDQ_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SURVEYDQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.max_upload_size_mb", 50)

	// DB defaults
	v.SetDefault("db.enabled", false)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "surveydq")
	v.SetDefault("db.password", "surveydq_secret")
	v.SetDefault("db.name", "surveydq_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 10)
	v.SetDefault("db.max_idle", 5)

	// S3 defaults
	v.SetDefault("s3.enabled", false)
	v.SetDefault("s3.region", "eu-west-1")
	v.SetDefault("s3.bucket", "surveydq-reports")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.prefix", "reports")
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Validation defaults
	v.SetDefault("validation.default_country", "GHA")
	v.SetDefault("validation.default_language", "EN")
	v.SetDefault("validation.profile_path", "")
	v.SetDefault("validation.parallel_sheets", false)
	v.SetDefault("validation.max_workers", 4)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                 "SURVEYDQ_SERVER_PORT",
		"server.read_timeout":         "SURVEYDQ_SERVER_READ_TIMEOUT",
		"server.write_timeout":        "SURVEYDQ_SERVER_WRITE_TIMEOUT",
		"server.environment":          "SURVEYDQ_SERVER_ENVIRONMENT",
		"server.max_upload_size_mb":   "SURVEYDQ_SERVER_MAX_UPLOAD_SIZE_MB",
		"db.enabled":                  "SURVEYDQ_DB_ENABLED",
		"db.host":                     "SURVEYDQ_DB_HOST",
		"db.port":                     "SURVEYDQ_DB_PORT",
		"db.user":                     "SURVEYDQ_DB_USER",
		"db.password":                 "SURVEYDQ_DB_PASSWORD",
		"db.name":                     "SURVEYDQ_DB_NAME",
		"db.sslmode":                  "SURVEYDQ_DB_SSLMODE",
		"db.max_open":                 "SURVEYDQ_DB_MAX_OPEN",
		"db.max_idle":                 "SURVEYDQ_DB_MAX_IDLE",
		"s3.enabled":                  "SURVEYDQ_S3_ENABLED",
		"s3.region":                   "SURVEYDQ_S3_REGION",
		"s3.bucket":                   "SURVEYDQ_S3_BUCKET",
		"s3.endpoint":                 "SURVEYDQ_S3_ENDPOINT",
		"s3.access_key":               "SURVEYDQ_S3_ACCESS_KEY",
		"s3.secret_key":               "SURVEYDQ_S3_SECRET_KEY",
		"s3.prefix":                   "SURVEYDQ_S3_PREFIX",
		"s3.presign_expiry":           "SURVEYDQ_S3_PRESIGN_EXPIRY",
		"log.level":                   "SURVEYDQ_LOG_LEVEL",
		"log.format":                  "SURVEYDQ_LOG_FORMAT",
		"cors.allowed_origins":        "SURVEYDQ_CORS_ALLOWED_ORIGINS",
		"validation.default_country":  "SURVEYDQ_VALIDATION_DEFAULT_COUNTRY",
		"validation.default_language": "SURVEYDQ_VALIDATION_DEFAULT_LANGUAGE",
		"validation.profile_path":     "SURVEYDQ_VALIDATION_PROFILE_PATH",
		"validation.parallel_sheets":  "SURVEYDQ_VALIDATION_PARALLEL_SHEETS",
		"validation.max_workers":      "SURVEYDQ_VALIDATION_MAX_WORKERS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if SURVEYDQ_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("SURVEYDQ_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:            serverPort,
		ReadTimeout:     v.GetDuration("server.read_timeout"),
		WriteTimeout:    v.GetDuration("server.write_timeout"),
		Environment:     v.GetString("server.environment"),
		MaxUploadSizeMB: v.GetInt64("server.max_upload_size_mb"),
	}
	cfg.DB = DBConfig{
		Enabled:  v.GetBool("db.enabled"),
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Enabled:       v.GetBool("s3.enabled"),
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		Prefix:        v.GetString("s3.prefix"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
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

	cfg.Validation = ValidationConfig{
		DefaultCountry:  strings.ToUpper(v.GetString("validation.default_country")),
		DefaultLanguage: strings.ToUpper(v.GetString("validation.default_language")),
		ProfilePath:     v.GetString("validation.profile_path"),
		ParallelSheets:  v.GetBool("validation.parallel_sheets"),
		MaxWorkers:      v.GetInt("validation.max_workers"),
	}
	if cfg.Validation.MaxWorkers < 1 {
		cfg.Validation.MaxWorkers = 1
	}

	return cfg, nil
}
