package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the server looks for its config file.
const DefaultPath = "config.yaml"

// FileConfig represents configuration loaded from YAML. Every field can be
// overridden with a STUDYHUB_* environment variable.
type FileConfig struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"logLevel"`

	DatabaseURL string `yaml:"databaseURL"`

	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`

	SessionTTL     string `yaml:"sessionTTL"`
	JWTSecret      string `yaml:"jwtSecret"`
	CookieName     string `yaml:"cookieName"`
	CookieSecure   bool   `yaml:"cookieSecure"`
	DownloadURLTTL string `yaml:"downloadURLTTL"`

	MinioEndpoint  string `yaml:"minioEndpoint"`
	MinioAccessKey string `yaml:"minioAccessKey"`
	MinioSecretKey string `yaml:"minioSecretKey"`
	MinioBucket    string `yaml:"minioBucket"`
	MinioUseSSL    bool   `yaml:"minioUseSSL"`

	AMQPURL      string `yaml:"amqpURL"`
	AMQPExchange string `yaml:"amqpExchange"`

	// ActivityStream enables the Redis stream publisher when no AMQP
	// broker is configured.
	ActivityStream string `yaml:"activityStream"`

	MaxUploadBytes           int64    `yaml:"maxUploadBytes"`
	SignupRateLimitPerMinute int      `yaml:"signupRateLimitPerMinute"`
	LoginRateLimitPerMinute  int      `yaml:"loginRateLimitPerMinute"`
	TrustedProxyCIDRs        []string `yaml:"trustedProxyCidrs"`
}

// Load reads config from path (defaults to config.yaml) and applies
// environment overrides.
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	applyEnv(&cfg)
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *FileConfig) {
	setString := func(env string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			*dst = v
		}
	}
	setString("STUDYHUB_PORT", &cfg.Port)
	setString("STUDYHUB_LOG_LEVEL", &cfg.LogLevel)
	setString("STUDYHUB_DATABASE_URL", &cfg.DatabaseURL)
	setString("STUDYHUB_REDIS_ADDR", &cfg.RedisAddr)
	setString("STUDYHUB_REDIS_PASSWORD", &cfg.RedisPassword)
	setString("STUDYHUB_SESSION_TTL", &cfg.SessionTTL)
	setString("STUDYHUB_JWT_SECRET", &cfg.JWTSecret)
	setString("STUDYHUB_COOKIE_NAME", &cfg.CookieName)
	setString("STUDYHUB_DOWNLOAD_URL_TTL", &cfg.DownloadURLTTL)
	setString("STUDYHUB_MINIO_ENDPOINT", &cfg.MinioEndpoint)
	setString("STUDYHUB_MINIO_ACCESS_KEY", &cfg.MinioAccessKey)
	setString("STUDYHUB_MINIO_SECRET_KEY", &cfg.MinioSecretKey)
	setString("STUDYHUB_MINIO_BUCKET", &cfg.MinioBucket)
	setString("STUDYHUB_AMQP_URL", &cfg.AMQPURL)
	setString("STUDYHUB_AMQP_EXCHANGE", &cfg.AMQPExchange)
	setString("STUDYHUB_ACTIVITY_STREAM", &cfg.ActivityStream)

	if v := os.Getenv("STUDYHUB_COOKIE_SECURE"); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			cfg.CookieSecure = b
		}
	}
	if v := os.Getenv("STUDYHUB_MINIO_USE_SSL"); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			cfg.MinioUseSSL = b
		}
	}
	if v := os.Getenv("STUDYHUB_MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.MaxUploadBytes = n
		}
	}
	if v := os.Getenv("STUDYHUB_SIGNUP_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SignupRateLimitPerMinute = n
		}
	}
	if v := os.Getenv("STUDYHUB_LOGIN_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.LoginRateLimitPerMinute = n
		}
	}
	if v := os.Getenv("STUDYHUB_TRUSTED_PROXY_CIDRS"); v != "" {
		cfg.TrustedProxyCIDRs = splitCSV(v)
	}
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml or STUDYHUB_PORT)")
	}
	if cfg.SignupRateLimitPerMinute < 0 || cfg.LoginRateLimitPerMinute < 0 {
		return errors.New("config: rate limits must be >= 0")
	}
	if (cfg.SignupRateLimitPerMinute > 0 || cfg.LoginRateLimitPerMinute > 0) && strings.TrimSpace(cfg.RedisAddr) == "" {
		return errors.New("config: redisAddr is required when rate limiting is enabled")
	}
	if cfg.MinioEndpoint != "" && strings.TrimSpace(cfg.MinioBucket) == "" {
		return errors.New("config: minioBucket is required when minioEndpoint is set")
	}
	if cfg.AMQPURL != "" && strings.TrimSpace(cfg.AMQPExchange) == "" {
		return errors.New("config: amqpExchange is required when amqpURL is set")
	}
	if cfg.ActivityStream != "" && strings.TrimSpace(cfg.RedisAddr) == "" {
		return errors.New("config: redisAddr is required when activityStream is set")
	}
	return nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// ParseTTL parses an optional duration string, returning fallback when the
// string is empty.
func ParseTTL(value string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	dur, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", value, err)
	}
	return dur, nil
}
