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
	Server    ServerConfig
	DB        DBConfig
	JWT       JWTConfig
	S3        S3Config
	Log       LogConfig
	CORS      CORSConfig
	Queue     QueueConfig
	Retrieval RetrievalConfig
	GapFill   GapFillConfig
	OCR       OCRConfig
	Pipeline  PipelineConfig
	Email     EmailConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
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
	Secret            string        `mapstructure:"secret"`
	AccessTokenExpiry time.Duration `mapstructure:"access_expiry"`
	Issuer            string        `mapstructure:"issuer"`
}

// S3Config holds AWS S3 settings for uploaded documents.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// QueueConfig holds extraction queue worker settings.
type QueueConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	MaxRetries       int `mapstructure:"max_retries"`
	Concurrency      int `mapstructure:"concurrency"`
}

// RetrievalConfig holds knowledge retrieval settings.
type RetrievalConfig struct {
	// KnowledgeFile points at a YAML knowledge source loaded at startup.
	// Empty disables the file source.
	KnowledgeFile string `mapstructure:"knowledge_file"`
	// UseDB enables the PostgreSQL knowledge repository.
	UseDB        bool `mapstructure:"use_db"`
	CacheTTLSecs int  `mapstructure:"cache_ttl_secs"`
}

// GapFillConfig holds gap-filling settings.
type GapFillConfig struct {
	// Provider selects the generator backend: "local" or "openai".
	Provider         string `mapstructure:"provider"`
	APIKey           string `mapstructure:"api_key"`
	BaseURL          string `mapstructure:"base_url"`
	Model            string `mapstructure:"model"`
	Concurrency      int    `mapstructure:"concurrency"`
	CallTimeoutSecs  int    `mapstructure:"call_timeout_secs"`
	MaxRetries       int    `mapstructure:"max_retries"`
	RetryBaseDelayMS int    `mapstructure:"retry_base_delay_ms"`
	Skip             bool   `mapstructure:"skip"`
}

// OCRConfig holds image text recognition settings.
type OCRConfig struct {
	Binary   string `mapstructure:"binary"`
	Language string `mapstructure:"language"`
}

// PipelineConfig holds pipeline-wide settings.
type PipelineConfig struct {
	// FallbackFormat, when set, handles documents whose format cannot be
	// sniffed instead of rejecting them.
	FallbackFormat string `mapstructure:"fallback_format"`
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
}

// Load reads configuration from environment variables with the REQSMITH_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("REQSMITH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "reqsmith")
	v.SetDefault("db.password", "reqsmith_secret")
	v.SetDefault("db.name", "reqsmith_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.issuer", "reqsmith")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "reqsmith-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 50)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Queue defaults
	v.SetDefault("queue.poll_interval_secs", 5)
	v.SetDefault("queue.max_retries", 3)
	v.SetDefault("queue.concurrency", 4)

	// Retrieval defaults
	v.SetDefault("retrieval.knowledge_file", "")
	v.SetDefault("retrieval.use_db", false)
	v.SetDefault("retrieval.cache_ttl_secs", 300)

	// Gap fill defaults
	v.SetDefault("gap_fill.provider", "local")
	v.SetDefault("gap_fill.api_key", "")
	v.SetDefault("gap_fill.base_url", "")
	v.SetDefault("gap_fill.model", "")
	v.SetDefault("gap_fill.concurrency", 4)
	v.SetDefault("gap_fill.call_timeout_secs", 30)
	v.SetDefault("gap_fill.max_retries", 3)
	v.SetDefault("gap_fill.retry_base_delay_ms", 500)
	v.SetDefault("gap_fill.skip", false)

	// OCR defaults
	v.SetDefault("ocr.binary", "tesseract")
	v.SetDefault("ocr.language", "eng")

	// Pipeline defaults
	v.SetDefault("pipeline.fallback_format", "")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@reqsmith.dev")
	v.SetDefault("email.from_name", "ReqSmith")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                  "REQSMITH_SERVER_PORT",
		"server.read_timeout":          "REQSMITH_SERVER_READ_TIMEOUT",
		"server.write_timeout":         "REQSMITH_SERVER_WRITE_TIMEOUT",
		"server.environment":           "REQSMITH_SERVER_ENVIRONMENT",
		"db.host":                      "REQSMITH_DB_HOST",
		"db.port":                      "REQSMITH_DB_PORT",
		"db.user":                      "REQSMITH_DB_USER",
		"db.password":                  "REQSMITH_DB_PASSWORD",
		"db.name":                      "REQSMITH_DB_NAME",
		"db.sslmode":                   "REQSMITH_DB_SSLMODE",
		"db.max_open":                  "REQSMITH_DB_MAX_OPEN",
		"db.max_idle":                  "REQSMITH_DB_MAX_IDLE",
		"jwt.secret":                   "REQSMITH_JWT_SECRET",
		"jwt.access_expiry":            "REQSMITH_JWT_ACCESS_EXPIRY",
		"jwt.issuer":                   "REQSMITH_JWT_ISSUER",
		"s3.region":                    "REQSMITH_S3_REGION",
		"s3.bucket":                    "REQSMITH_S3_BUCKET",
		"s3.endpoint":                  "REQSMITH_S3_ENDPOINT",
		"s3.access_key":                "REQSMITH_S3_ACCESS_KEY",
		"s3.secret_key":                "REQSMITH_S3_SECRET_KEY",
		"s3.max_file_size_mb":          "REQSMITH_S3_MAX_FILE_SIZE_MB",
		"log.level":                    "REQSMITH_LOG_LEVEL",
		"log.format":                   "REQSMITH_LOG_FORMAT",
		"cors.allowed_origins":         "REQSMITH_CORS_ALLOWED_ORIGINS",
		"queue.poll_interval_secs":     "REQSMITH_QUEUE_POLL_INTERVAL_SECS",
		"queue.max_retries":            "REQSMITH_QUEUE_MAX_RETRIES",
		"queue.concurrency":            "REQSMITH_QUEUE_CONCURRENCY",
		"retrieval.knowledge_file":     "REQSMITH_RETRIEVAL_KNOWLEDGE_FILE",
		"retrieval.use_db":             "REQSMITH_RETRIEVAL_USE_DB",
		"retrieval.cache_ttl_secs":     "REQSMITH_RETRIEVAL_CACHE_TTL_SECS",
		"gap_fill.provider":            "REQSMITH_GAP_FILL_PROVIDER",
		"gap_fill.api_key":             "REQSMITH_GAP_FILL_API_KEY",
		"gap_fill.base_url":            "REQSMITH_GAP_FILL_BASE_URL",
		"gap_fill.model":               "REQSMITH_GAP_FILL_MODEL",
		"gap_fill.concurrency":         "REQSMITH_GAP_FILL_CONCURRENCY",
		"gap_fill.call_timeout_secs":   "REQSMITH_GAP_FILL_CALL_TIMEOUT_SECS",
		"gap_fill.max_retries":         "REQSMITH_GAP_FILL_MAX_RETRIES",
		"gap_fill.retry_base_delay_ms": "REQSMITH_GAP_FILL_RETRY_BASE_DELAY_MS",
		"gap_fill.skip":                "REQSMITH_GAP_FILL_SKIP",
		"ocr.binary":                   "REQSMITH_OCR_BINARY",
		"ocr.language":                 "REQSMITH_OCR_LANGUAGE",
		"pipeline.fallback_format":     "REQSMITH_PIPELINE_FALLBACK_FORMAT",
		"email.provider":               "REQSMITH_EMAIL_PROVIDER",
		"email.region":                 "REQSMITH_EMAIL_REGION",
		"email.from_address":           "REQSMITH_EMAIL_FROM_ADDRESS",
		"email.from_name":              "REQSMITH_EMAIL_FROM_NAME",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if REQSMITH_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("REQSMITH_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
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
		Secret:            v.GetString("jwt.secret"),
		AccessTokenExpiry: v.GetDuration("jwt.access_expiry"),
		Issuer:            v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
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
	cfg.Queue = QueueConfig{
		PollIntervalSecs: v.GetInt("queue.poll_interval_secs"),
		MaxRetries:       v.GetInt("queue.max_retries"),
		Concurrency:      v.GetInt("queue.concurrency"),
	}
	cfg.Retrieval = RetrievalConfig{
		KnowledgeFile: v.GetString("retrieval.knowledge_file"),
		UseDB:         v.GetBool("retrieval.use_db"),
		CacheTTLSecs:  v.GetInt("retrieval.cache_ttl_secs"),
	}
	cfg.GapFill = GapFillConfig{
		Provider:         v.GetString("gap_fill.provider"),
		APIKey:           v.GetString("gap_fill.api_key"),
		BaseURL:          v.GetString("gap_fill.base_url"),
		Model:            v.GetString("gap_fill.model"),
		Concurrency:      v.GetInt("gap_fill.concurrency"),
		CallTimeoutSecs:  v.GetInt("gap_fill.call_timeout_secs"),
		MaxRetries:       v.GetInt("gap_fill.max_retries"),
		RetryBaseDelayMS: v.GetInt("gap_fill.retry_base_delay_ms"),
		Skip:             v.GetBool("gap_fill.skip"),
	}
	cfg.OCR = OCRConfig{
		Binary:   v.GetString("ocr.binary"),
		Language: v.GetString("ocr.language"),
	}
	cfg.Pipeline = PipelineConfig{
		FallbackFormat: v.GetString("pipeline.fallback_format"),
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
	}

	return cfg, nil
}
