// Package config loads server configuration and builds the document store
// and media backends it describes.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tendant/heritage-content/pkg/heritage"
	"github.com/tendant/heritage-content/pkg/heritage/media"
	fsmedia "github.com/tendant/heritage-content/pkg/heritage/media/fs"
	memorymedia "github.com/tendant/heritage-content/pkg/heritage/media/memory"
	s3media "github.com/tendant/heritage-content/pkg/heritage/media/s3"
	"github.com/tendant/heritage-content/pkg/heritage/seed"
	"github.com/tendant/heritage-content/pkg/heritage/store"
	"github.com/tendant/heritage-content/pkg/heritage/store/memory"
	"github.com/tendant/heritage-content/pkg/heritage/store/mongo"
	"github.com/tendant/heritage-content/pkg/heritage/store/postgres"
)

// Database backends
const (
	DatabaseMemory   = "memory"
	DatabaseMongo    = "mongo"
	DatabasePostgres = "postgres"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageFS     = "fs"
	StorageS3     = "s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of
// the defaults, in order, and validates the result.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:               "8001",
		Environment:        "development",
		DBName:             "heritage",
		SeedOnStartup:      true,
		StorageURL:         "memory://",
		S3:                 S3Config{Region: "us-east-1"},
		CORSAllowedOrigins: []string{"*"},
		LogLevel:           "info",
		LogFormat:          "text",
		ShutdownTimeout:    10 * time.Second,
		RequestTimeout:     60 * time.Second,
	}
}

// ServerConfig represents server configuration for the heritage API.
// Field tags drive cleanenv for both environment variables and YAML files.
type ServerConfig struct {
	Port        string `yaml:"port" env:"PORT" env-default:"8001"`
	Environment string `yaml:"environment" env:"ENVIRONMENT" env-default:"development"`

	// MongoURL selects the document store: empty or "memory" for the
	// in-process store, mongodb:// or mongodb+srv:// for MongoDB,
	// postgres:// or postgresql:// for PostgreSQL.
	MongoURL string `yaml:"mongo_url" env:"MONGO_URL"`
	// DBName is the Mongo database, or the Postgres schema
	DBName string `yaml:"db_name" env:"DB_NAME" env-default:"heritage"`

	// No env-default: cleanenv would overwrite a false read from a file
	SeedOnStartup bool   `yaml:"seed_on_startup" env:"SEED_ON_STARTUP"`
	SeedFile      string `yaml:"seed_file" env:"SEED_FILE"`

	// StorageURL selects the media backend: memory://, file:///path or
	// s3://bucket?region=...&endpoint=...&path_style=true
	StorageURL string   `yaml:"storage_url" env:"STORAGE_URL" env-default:"memory://"`
	S3         S3Config `yaml:"s3"`

	CORSAllowedOrigins []string `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"*" env-separator:","`
	AdminAPIKeySHA256  string   `yaml:"admin_api_key_sha256" env:"ADMIN_API_KEY_SHA256"`
	AdminJWTSecret     string   `yaml:"admin_jwt_secret" env:"ADMIN_JWT_SECRET"`

	LogLevel        string        `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat       string        `yaml:"log_format" env:"LOG_FORMAT" env-default:"text"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT" env-default:"60s"`
}

// S3Config holds credentials for the s3:// media backend
type S3Config struct {
	Region          string `yaml:"region" env:"AWS_REGION" env-default:"us-east-1"`
	AccessKeyID     string `yaml:"access_key_id" env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"AWS_SECRET_ACCESS_KEY"`
	Endpoint        string `yaml:"endpoint" env:"AWS_S3_ENDPOINT"`
	UsePathStyle    bool   `yaml:"use_path_style" env:"AWS_S3_USE_PATH_STYLE"`
	PresignDuration int    `yaml:"presign_duration" env:"AWS_S3_PRESIGN_DURATION" env-default:"3600"`
	CreateBucket    bool   `yaml:"create_bucket" env:"AWS_S3_CREATE_BUCKET"`
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("port must be numeric, got %q", c.Port)
	}
	if _, err := c.DatabaseType(); err != nil {
		return err
	}
	if c.DBName == "" {
		return errors.New("db_name is required")
	}
	if _, _, err := c.storageTarget(); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be 'text' or 'json', got %q", c.LogFormat)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// DatabaseType detects the document store backend from MongoURL
func (c *ServerConfig) DatabaseType() (string, error) {
	u := strings.TrimSpace(c.MongoURL)
	switch {
	case u == "" || u == "memory":
		return DatabaseMemory, nil
	case strings.HasPrefix(u, "mongodb://"), strings.HasPrefix(u, "mongodb+srv://"):
		return DatabaseMongo, nil
	case strings.HasPrefix(u, "postgres://"), strings.HasPrefix(u, "postgresql://"):
		return DatabasePostgres, nil
	}
	return "", fmt.Errorf("unsupported MONGO_URL format: %s (use 'memory', 'mongodb://...' or 'postgresql://...')", redact(u))
}

// StorageType detects the media backend from StorageURL
func (c *ServerConfig) StorageType() (string, error) {
	kind, _, err := c.storageTarget()
	return kind, err
}

func (c *ServerConfig) storageTarget() (string, *url.URL, error) {
	raw := strings.TrimSpace(c.StorageURL)
	if raw == "" || raw == "memory" || raw == "memory://" {
		return StorageMemory, nil, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", nil, fmt.Errorf("invalid STORAGE_URL: %w", err)
	}
	switch u.Scheme {
	case "file":
		if u.Host+u.Path == "" {
			return "", nil, errors.New("filesystem path cannot be empty in STORAGE_URL")
		}
		return StorageFS, u, nil
	case "s3":
		if u.Host == "" {
			return "", nil, errors.New("S3 bucket name cannot be empty in STORAGE_URL")
		}
		return StorageS3, u, nil
	}
	return "", nil, fmt.Errorf("unsupported STORAGE_URL format: %s (use 'memory://', 'file://...', or 's3://...')", raw)
}

// BuildStore opens the document store selected by MongoURL and prepares the
// heritage collections.
func (c *ServerConfig) BuildStore(ctx context.Context) (store.Store, error) {
	dbType, err := c.DatabaseType()
	if err != nil {
		return nil, err
	}
	specs := heritage.CollectionSpecs()

	switch dbType {
	case DatabaseMongo:
		st, err := mongo.Open(ctx, c.MongoURL, c.DBName, specs...)
		if err != nil {
			return nil, err
		}
		return st, nil
	case DatabasePostgres:
		st, err := postgres.Open(ctx, c.MongoURL, c.DBName, specs...)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return memory.New(specs...), nil
	}
}

// BuildMediaStore creates the media backend selected by StorageURL
func (c *ServerConfig) BuildMediaStore(ctx context.Context) (media.BlobStore, error) {
	kind, u, err := c.storageTarget()
	if err != nil {
		return nil, err
	}

	switch kind {
	case StorageFS:
		backend, err := fsmedia.New(fsmedia.Config{BaseDir: u.Host + u.Path})
		if err != nil {
			return nil, err
		}
		return backend, nil
	case StorageS3:
		cfg := s3media.Config{
			Bucket:                 u.Host,
			Region:                 c.S3.Region,
			AccessKeyID:            c.S3.AccessKeyID,
			SecretAccessKey:        c.S3.SecretAccessKey,
			Endpoint:               c.S3.Endpoint,
			UsePathStyle:           c.S3.UsePathStyle,
			PresignDuration:        c.S3.PresignDuration,
			CreateBucketIfNotExist: c.S3.CreateBucket,
		}
		q := u.Query()
		if v := q.Get("region"); v != "" {
			cfg.Region = v
		}
		if v := q.Get("endpoint"); v != "" {
			cfg.Endpoint = v
		}
		if v := q.Get("path_style"); v != "" {
			cfg.UsePathStyle, _ = strconv.ParseBool(v)
		}
		backend, err := s3media.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return backend, nil
	default:
		return memorymedia.New(), nil
	}
}

// Fixtures returns the seed content: SeedFile when set, otherwise the
// embedded defaults.
func (c *ServerConfig) Fixtures() (*heritage.Fixtures, error) {
	return seed.LoadFile(c.SeedFile)
}

// Addr returns the listen address for the HTTP server
func (c *ServerConfig) Addr() string {
	return ":" + c.Port
}

// ParseLevel converts a LOG_LEVEL value into a slog level
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", s, err)
	}
	return level, nil
}

// redact hides the password of a connection string
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}
