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
	Server   ServerConfig
	Upstream UpstreamConfig
	Upload   UploadConfig
	Export   ExportConfig
	Storage  StorageConfig
	Log      LogConfig
	CORS     CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// UpstreamConfig selects and configures the inference endpoint.
type UpstreamConfig struct {
	Mode        string  `mapstructure:"mode"`
	WebhookURL  string  `mapstructure:"webhook_url"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float32 `mapstructure:"temperature"`
	TimeoutSecs int     `mapstructure:"timeout_secs"`
	PromptFile  string  `mapstructure:"prompt_file"`
}

// Timeout returns the client timeout. Zero means the transport default.
func (u *UpstreamConfig) Timeout() time.Duration {
	if u.TimeoutSecs <= 0 {
		return 0
	}
	return time.Duration(u.TimeoutSecs) * time.Second
}

// UploadConfig bounds user attachments.
type UploadConfig struct {
	MaxFileSizeMB     int64 `mapstructure:"max_file_size_mb"`
	MaxFiles          int   `mapstructure:"max_files"`
	EncodeConcurrency int   `mapstructure:"encode_concurrency"`
}

// MaxFileBytes returns the per-file limit in bytes.
func (u *UploadConfig) MaxFileBytes() int64 {
	return u.MaxFileSizeMB * 1024 * 1024
}

// ExportConfig holds report export settings.
type ExportConfig struct {
	Compress bool `mapstructure:"compress"`
}

// StorageConfig holds the optional object storage used to hand off exported reports.
type StorageConfig struct {
	Provider      string `mapstructure:"provider"`
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	Prefix        string `mapstructure:"prefix"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// Enabled reports whether exported reports can be handed off to storage.
func (s *StorageConfig) Enabled() bool {
	return s.Provider != "" && s.Provider != "none"
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

// Load reads configuration from environment variables with the XPERTO_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("XPERTO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "180s")
	v.SetDefault("server.environment", "development")

	// Upstream defaults
	v.SetDefault("upstream.mode", "webhook")
	v.SetDefault("upstream.webhook_url", "")
	v.SetDefault("upstream.api_key", "")
	v.SetDefault("upstream.model", "")
	v.SetDefault("upstream.base_url", "")
	v.SetDefault("upstream.temperature", 0.1)
	v.SetDefault("upstream.timeout_secs", 0)
	v.SetDefault("upstream.prompt_file", "")

	// Upload defaults
	v.SetDefault("upload.max_file_size_mb", 20)
	v.SetDefault("upload.max_files", 5)
	v.SetDefault("upload.encode_concurrency", 4)

	// Export defaults
	v.SetDefault("export.compress", true)

	// Storage defaults (disabled)
	v.SetDefault("storage.provider", "none")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.bucket", "xperto-reports")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.prefix", "reports")
	v.SetDefault("storage.presign_expiry", 900)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":               "XPERTO_SERVER_PORT",
		"server.read_timeout":       "XPERTO_SERVER_READ_TIMEOUT",
		"server.write_timeout":      "XPERTO_SERVER_WRITE_TIMEOUT",
		"server.environment":        "XPERTO_SERVER_ENVIRONMENT",
		"upstream.mode":             "XPERTO_UPSTREAM_MODE",
		"upstream.webhook_url":      "XPERTO_UPSTREAM_WEBHOOK_URL",
		"upstream.api_key":          "XPERTO_UPSTREAM_API_KEY",
		"upstream.model":            "XPERTO_UPSTREAM_MODEL",
		"upstream.base_url":         "XPERTO_UPSTREAM_BASE_URL",
		"upstream.temperature":      "XPERTO_UPSTREAM_TEMPERATURE",
		"upstream.timeout_secs":     "XPERTO_UPSTREAM_TIMEOUT_SECS",
		"upstream.prompt_file":      "XPERTO_UPSTREAM_PROMPT_FILE",
		"upload.max_file_size_mb":   "XPERTO_UPLOAD_MAX_FILE_SIZE_MB",
		"upload.max_files":          "XPERTO_UPLOAD_MAX_FILES",
		"upload.encode_concurrency": "XPERTO_UPLOAD_ENCODE_CONCURRENCY",
		"export.compress":           "XPERTO_EXPORT_COMPRESS",
		"storage.provider":          "XPERTO_STORAGE_PROVIDER",
		"storage.region":            "XPERTO_STORAGE_REGION",
		"storage.bucket":            "XPERTO_STORAGE_BUCKET",
		"storage.endpoint":          "XPERTO_STORAGE_ENDPOINT",
		"storage.access_key":        "XPERTO_STORAGE_ACCESS_KEY",
		"storage.secret_key":        "XPERTO_STORAGE_SECRET_KEY",
		"storage.prefix":            "XPERTO_STORAGE_PREFIX",
		"storage.presign_expiry":    "XPERTO_STORAGE_PRESIGN_EXPIRY",
		"log.level":                 "XPERTO_LOG_LEVEL",
		"log.format":                "XPERTO_LOG_FORMAT",
		"cors.allowed_origins":      "XPERTO_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Render set a PORT env var. Use it if XPERTO_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("XPERTO_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Upstream = UpstreamConfig{
		Mode:        strings.ToLower(strings.TrimSpace(v.GetString("upstream.mode"))),
		WebhookURL:  v.GetString("upstream.webhook_url"),
		APIKey:      v.GetString("upstream.api_key"),
		Model:       v.GetString("upstream.model"),
		BaseURL:     v.GetString("upstream.base_url"),
		Temperature: float32(v.GetFloat64("upstream.temperature")),
		TimeoutSecs: v.GetInt("upstream.timeout_secs"),
		PromptFile:  v.GetString("upstream.prompt_file"),
	}
	cfg.Upload = UploadConfig{
		MaxFileSizeMB:     v.GetInt64("upload.max_file_size_mb"),
		MaxFiles:          v.GetInt("upload.max_files"),
		EncodeConcurrency: v.GetInt("upload.encode_concurrency"),
	}
	cfg.Export = ExportConfig{
		Compress: v.GetBool("export.compress"),
	}
	cfg.Storage = StorageConfig{
		Provider:      strings.ToLower(v.GetString("storage.provider")),
		Region:        v.GetString("storage.region"),
		Bucket:        v.GetString("storage.bucket"),
		Endpoint:      v.GetString("storage.endpoint"),
		AccessKey:     v.GetString("storage.access_key"),
		SecretKey:     v.GetString("storage.secret_key"),
		Prefix:        v.GetString("storage.prefix"),
		PresignExpiry: v.GetInt64("storage.presign_expiry"),
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

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants that must hold before the server starts.
func (c *Config) Validate() error {
	if c.Upload.MaxFileSizeMB <= 0 {
		return fmt.Errorf("upload.max_file_size_mb must be positive, got %d", c.Upload.MaxFileSizeMB)
	}
	if c.Upload.MaxFiles <= 0 {
		return fmt.Errorf("upload.max_files must be positive, got %d", c.Upload.MaxFiles)
	}
	if c.Upload.EncodeConcurrency <= 0 {
		c.Upload.EncodeConcurrency = 1
	}
	if c.Upstream.Temperature < 0 || c.Upstream.Temperature > 2 {
		return fmt.Errorf("upstream.temperature must be within [0,2], got %v", c.Upstream.Temperature)
	}
	if c.Storage.Enabled() && c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required when storage.provider is %q", c.Storage.Provider)
	}
	return nil
}
