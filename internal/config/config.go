package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// MinPartSize is the smallest part accepted by S3 compatible providers (except the last one)
const MinPartSize = 5 << 20

// Storage providers
const (
	ProviderMinio  = "minio"
	ProviderS3     = "s3"
	ProviderMemory = "memory"
)

type Config struct {
	Env      Env
	Server   ServerConfig
	Storage  StorageConfig
	Minio    MinioConfig
	S3       S3Config
	Transfer TransferConfig
	Presign  PresignConfig
	Download DownloadConfig
	Database DatabaseConfig
	NATS     NATSConfig
	Cleanup  CleanupConfig
}

type Env struct {
	Env string `envconfig:"ENV" default:"DEV"`
}

type ServerConfig struct {
	Host           string        `envconfig:"SERVER_HOST" default:"localhost"`
	Port           string        `envconfig:"SERVER_PORT" default:"8080"`
	MaxBodySize    int64         `envconfig:"SERVER_MAX_BODY_SIZE" default:"2147483647"` // ~2GB
	RequestTimeout time.Duration `envconfig:"SERVER_REQUEST_TIMEOUT" default:"10m"`
	FormMemory     int64         `envconfig:"SERVER_FORM_MEMORY" default:"33554432"` // 32MB
}

type StorageConfig struct {
	Provider      string   `envconfig:"STORAGE_PROVIDER" default:"minio"`
	MemoryBuckets []string `envconfig:"STORAGE_MEMORY_BUCKETS" default:"default"` // buckets created by the memory provider
}

type MinioConfig struct {
	Endpoint  string `envconfig:"MINIO_ENDPOINT"`
	AccessKey string `envconfig:"MINIO_ACCESS_KEY"`
	SecretKey string `envconfig:"MINIO_SECRET_KEY"`
	Region    string `envconfig:"MINIO_REGION"`
	UseSSL    bool   `envconfig:"MINIO_USE_SSL" default:"false"`
}

type S3Config struct {
	Region       string `envconfig:"S3_REGION" default:"us-east-1"`
	Endpoint     string `envconfig:"S3_ENDPOINT"`
	AccessKey    string `envconfig:"S3_ACCESS_KEY"`
	SecretKey    string `envconfig:"S3_SECRET_KEY"`
	UsePathStyle bool   `envconfig:"S3_USE_PATH_STYLE" default:"false"`
}

type TransferConfig struct {
	MinSizeBeforePartUpload int64         `envconfig:"TRANSFER_MIN_SIZE_BEFORE_PART_UPLOAD" default:"16777216"` // 16MB
	PartSize                int64         `envconfig:"TRANSFER_PART_SIZE" default:"8388608"`                     // 8MB
	MaxConcurrentRequests   int           `envconfig:"TRANSFER_MAX_CONCURRENT_REQUESTS" default:"10"`
	RetryAttempts           int           `envconfig:"TRANSFER_RETRY_ATTEMPTS" default:"3"`
	RetryInitialInterval    time.Duration `envconfig:"TRANSFER_RETRY_INITIAL_INTERVAL" default:"200ms"`
	RetryMaxInterval        time.Duration `envconfig:"TRANSFER_RETRY_MAX_INTERVAL" default:"5s"`
	PartTimeout             time.Duration `envconfig:"TRANSFER_PART_TIMEOUT" default:"2m"`
	CleanupTimeout          time.Duration `envconfig:"TRANSFER_CLEANUP_TIMEOUT" default:"30s"`
	// ProgressInterval throttles journal progress writes. Every snapshot is written when 0.
	ProgressInterval time.Duration `envconfig:"TRANSFER_PROGRESS_INTERVAL" default:"5s"`
}

type PresignConfig struct {
	DefaultTTL time.Duration `envconfig:"PRESIGN_DEFAULT_TTL" default:"1m"`
	MaxTTL     time.Duration `envconfig:"PRESIGN_MAX_TTL" default:"168h"`
}

type DownloadConfig struct {
	Dir string `envconfig:"DOWNLOAD_DIR" default:"downloads"`
}

type DatabaseConfig struct {
	Host           string        `envconfig:"DB_HOST" required:"true"`
	Port           int           `envconfig:"DB_PORT" default:"5432"`
	User           string        `envconfig:"DB_USER" required:"true"`
	Password       string        `envconfig:"DB_PASSWORD" required:"true"`
	Name           string        `envconfig:"DB_NAME" required:"true"`
	SSLMode        string        `envconfig:"DB_SSLMODE" default:"disable"`
	MaxOpenCons    int           `envconfig:"DB_MAX_OPEN_CONS" default:"25"`
	MaxIdleCons    int           `envconfig:"DB_MAX_IDLE_CONS" default:"5"`
	ConMaxLifeTime time.Duration `envconfig:"DB_CONMAX_LIFE_TIME" default:"5m"`
}

// DSN returns the lib/pq connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Name,
		c.SSLMode,
	)
}

type NATSConfig struct {
	URL           string `envconfig:"NATS_URL"`
	StreamName    string `envconfig:"NATS_STREAM_NAME" default:"TRANSFERS"`
	SubjectPrefix string `envconfig:"NATS_SUBJECT_PREFIX" default:"transfers"`
}

type CleanupConfig struct {
	Every      time.Duration `envconfig:"CLEANUP_EVERY" default:"15m"`
	StaleAfter time.Duration `envconfig:"CLEANUP_STALE_AFTER" default:"1h"`
}

func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks constraints spanning several fields
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Provider {
	case ProviderMinio:
		if c.Minio.Endpoint == "" || c.Minio.AccessKey == "" || c.Minio.SecretKey == "" {
			errs = append(errs, errors.New("minio provider requires MINIO_ENDPOINT, MINIO_ACCESS_KEY and MINIO_SECRET_KEY"))
		}
	case ProviderS3, ProviderMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown storage provider %q", c.Storage.Provider))
	}

	errs = append(errs, c.Transfer.Validate(), c.Presign.Validate())
	return errors.Join(errs...)
}

// Validate checks the transfer tuning parameters
func (c TransferConfig) Validate() error {
	var errs []error
	if c.PartSize < MinPartSize {
		errs = append(errs, fmt.Errorf("part size %d is below the provider minimum %d", c.PartSize, MinPartSize))
	}
	if c.MinSizeBeforePartUpload < c.PartSize {
		errs = append(errs, fmt.Errorf("multipart threshold %d is below part size %d", c.MinSizeBeforePartUpload, c.PartSize))
	}
	if c.MaxConcurrentRequests < 1 {
		errs = append(errs, errors.New("max concurrent requests must be at least 1"))
	}
	if c.RetryAttempts < 1 {
		errs = append(errs, errors.New("retry attempts must be at least 1"))
	}
	return errors.Join(errs...)
}

// Validate checks the presign durations
func (c PresignConfig) Validate() error {
	if c.DefaultTTL <= 0 || c.MaxTTL <= 0 {
		return errors.New("presign durations must be positive")
	}
	if c.DefaultTTL > c.MaxTTL {
		return fmt.Errorf("presign default ttl %s exceeds max ttl %s", c.DefaultTTL, c.MaxTTL)
	}
	return nil
}
