package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	pkglogger "github.com/campusloop/campusloop-backend/pkg/logger"
	"gopkg.in/yaml.v3"
)

// Config 애플리케이션 설정
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	Storage  StorageConfig  `yaml:"storage"`
	KV       KVConfig       `yaml:"kv"`
	Chat     ChatConfig     `yaml:"chat"`
	CORS     CORSConfig     `yaml:"cors"`
}

type ServerConfig struct {
	Port int    `yaml:"port"`
	Env  string `yaml:"env"`
	// requests per minute per client IP (public) and per user (/api/v1); needs redis
	RateLimitPerMin int `yaml:"rate_limit_per_min"`
}

type DatabaseConfig struct {
	Driver          string `yaml:"driver"` // mysql, postgres, sqlite
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	DBName          string `yaml:"dbname"`
	Path            string `yaml:"path"` // sqlite file
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime"` // seconds
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type JWTConfig struct {
	Secret    string        `yaml:"secret"`
	ExpiresIn time.Duration `yaml:"expires_in"`
}

type StorageConfig struct {
	S3Enabled       bool   `yaml:"s3_enabled"`
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Bucket          string `yaml:"bucket"`
	CDNURL          string `yaml:"cdn_url"`
	BasePath        string `yaml:"base_path"`
	ForcePathStyle  bool   `yaml:"force_path_style"`
	UploadDir       string `yaml:"upload_dir"`
	MaxUploadBytes  int64  `yaml:"max_upload_bytes"`
}

// KVConfig selects the backend of the per-user key-value store
type KVConfig struct {
	Driver string `yaml:"driver"` // memory, redis, gorm
	Prefix string `yaml:"prefix"`
}

type ChatConfig struct {
	AutoReplyDelay     time.Duration `yaml:"auto_reply_delay"`
	SessionIdleTimeout time.Duration `yaml:"session_idle_timeout"`
}

type CORSConfig struct {
	AllowOrigins string `yaml:"allow_origins"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Port: 5000, Env: "local", RateLimitPerMin: 120},
		Database: DatabaseConfig{Driver: "sqlite", Path: "campusloop.db", Host: "localhost", Port: 3306, MaxIdleConns: 10, MaxOpenConns: 100, ConnMaxLifetime: 3600},
		Redis:    RedisConfig{Host: "localhost", Port: 6379, PoolSize: 10},
		JWT:      JWTConfig{Secret: "default_secret_key", ExpiresIn: 7 * 24 * time.Hour},
		Storage:  StorageConfig{UploadDir: "./uploads", Region: "us-east-1", MaxUploadBytes: 10 << 20},
		KV:       KVConfig{Driver: "gorm", Prefix: "kv:"},
		Chat:     ChatConfig{AutoReplyDelay: time.Second, SessionIdleTimeout: 30 * time.Minute},
		CORS:     CORSConfig{AllowOrigins: "*"},
	}
}

// Load reads the YAML file at path (a missing file is not an error) and applies env overrides
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		pkglogger.Warn("config file %s not found, using defaults", path)
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Server.Env, "APP_ENV")
	setString(&cfg.JWT.Secret, "JWT_SECRET")
	setString(&cfg.Database.Driver, "DB_DRIVER")
	setString(&cfg.Database.Host, "DB_HOST")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.DBName, "DB_NAME")
	setString(&cfg.Database.Path, "DB_PATH")
	setString(&cfg.Redis.Host, "REDIS_HOST")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.KV.Driver, "KV_DRIVER")
	setString(&cfg.Storage.Bucket, "STORAGE_BUCKET")
	setString(&cfg.Storage.Endpoint, "STORAGE_ENDPOINT")
	setString(&cfg.Storage.AccessKeyID, "STORAGE_ACCESS_KEY_ID")
	setString(&cfg.Storage.SecretAccessKey, "STORAGE_SECRET_ACCESS_KEY")
	setString(&cfg.CORS.AllowOrigins, "CORS_ALLOW_ORIGINS")

	for env, dst := range map[string]*int{
		"PORT":               &cfg.Server.Port,
		"DB_PORT":            &cfg.Database.Port,
		"REDIS_PORT":         &cfg.Redis.Port,
		"RATE_LIMIT_PER_MIN": &cfg.Server.RateLimitPerMin,
	} {
		if v := os.Getenv(env); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", env, err)
			}
			*dst = n
		}
	}

	if v := os.Getenv("REDIS_ENABLED"); v != "" {
		cfg.Redis.Enabled = v == "true" || v == "1"
	}

	// JWT_EXPIRES_IN: seconds, or a Go duration ("168h")
	if v := os.Getenv("JWT_EXPIRES_IN"); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("JWT_EXPIRES_IN: %w", err)
		}
		cfg.JWT.ExpiresIn = d
	}
	return nil
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func parseDuration(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.KV.Driver {
	case "memory", "redis", "gorm":
	default:
		return fmt.Errorf("unsupported kv driver %q", c.KV.Driver)
	}
	if c.KV.Driver == "redis" && !c.Redis.Enabled {
		return errors.New("kv driver redis requires redis.enabled")
	}
	if c.JWT.ExpiresIn <= 0 {
		return errors.New("jwt.expires_in must be positive")
	}
	if c.Chat.AutoReplyDelay < 0 {
		return errors.New("chat.auto_reply_delay must not be negative")
	}
	return nil
}

// IsDevelopment reports whether the server runs in a local/dev environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "" || c.Server.Env == "local" || c.Server.Env == "development" || c.Server.Env == "dev"
}

// GetDSN builds the driver specific data source name
func (d DatabaseConfig) GetDSN() string {
	switch d.Driver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			d.User, d.Password, d.Host, d.Port, d.DBName)
	case "postgres":
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			d.Host, d.Port, d.User, d.Password, d.DBName)
	default:
		return d.Path
	}
}

// LogResolved logs the effective configuration without secrets
func LogResolved(c *Config) {
	pkglogger.GetLogger().Info().
		Str("env", c.Server.Env).
		Int("port", c.Server.Port).
		Str("db_driver", c.Database.Driver).
		Str("db_host", c.Database.Host).
		Bool("redis", c.Redis.Enabled).
		Str("kv_driver", c.KV.Driver).
		Bool("s3", c.Storage.S3Enabled).
		Dur("jwt_expires_in", c.JWT.ExpiresIn).
		Dur("auto_reply_delay", c.Chat.AutoReplyDelay).
		Str("cors", strings.TrimSpace(c.CORS.AllowOrigins)).
		Msg("config resolved")
}
