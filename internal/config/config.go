// Package config loads propdesk settings from an optional YAML file and
// PROPDESK_* environment variables. Environment values win.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"propdesk/internal/blob"
	blobcore "propdesk/internal/blob/core"
	"propdesk/internal/core"
	"propdesk/internal/infra/blob/fs"
	"propdesk/internal/infra/blob/s3"
	"propdesk/internal/infra/persistence/memory"
	"propdesk/internal/infra/persistence/sqlite"
)

// FileEnv names the variable pointing at the YAML config file.
const FileEnv = "PROPDESK_CONFIG"

// Config is the complete runtime configuration.
type Config struct {
	Storage      StorageConfig `yaml:"storage"`
	Blob         BlobConfig    `yaml:"blob"`
	HTTP         HTTPConfig    `yaml:"http"`
	Log          LogConfig     `yaml:"log"`
	Assist       AssistConfig  `yaml:"assist"`
	Seed         bool          `yaml:"seed"`
	StrictTheory bool          `yaml:"strict_theory"`
}

// StorageConfig selects the entity store backend.
type StorageConfig struct {
	Driver       core.StorageDriver `yaml:"driver"`
	SQLitePath   string             `yaml:"sqlite_path"`
	PostgresDSN  string             `yaml:"postgres_dsn"`
	HistoryDepth int                `yaml:"history_depth"`
}

// BlobConfig selects where snapshot archives are written.
type BlobConfig struct {
	Driver    blobcore.Driver `yaml:"driver"`
	FSRoot    string          `yaml:"fs_root"`
	Bucket    string          `yaml:"s3_bucket"`
	Region    string          `yaml:"s3_region"`
	Endpoint  string          `yaml:"s3_endpoint"`
	PathStyle bool            `yaml:"s3_path_style"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig selects the zap preset and level.
type LogConfig struct {
	Mode  string `yaml:"mode"`
	Level string `yaml:"level"`
}

// AssistConfig configures the text suggestion client. An empty APIKey
// disables assistance.
type AssistConfig struct {
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Storage: StorageConfig{
			Driver:       core.StorageMemory,
			SQLitePath:   sqlite.DefaultPath,
			HistoryDepth: memory.DefaultHistoryDepth,
		},
		Blob: BlobConfig{
			Driver: blobcore.DriverFilesystem,
			FSRoot: fs.DefaultRoot,
			Region: s3.DefaultRegion,
		},
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Mode:  "production",
			Level: "info",
		},
		Assist: AssistConfig{
			Model:   "gemini-2.5-flash",
			BaseURL: "https://generativelanguage.googleapis.com/v1beta",
			Timeout: 30 * time.Second,
		},
		Seed: true,
	}
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Load reads the process environment.
func Load() (Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom builds a Config from defaults, then the file named by
// PROPDESK_CONFIG, then environment overrides.
func LoadFrom(lookup LookupFunc) (Config, error) {
	cfg := Default()
	if path, ok := lookup(FileEnv); ok && path != "" {
		raw, err := os.ReadFile(path) // #nosec G304 -- operator supplied path
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := cfg.mergeYAML(raw); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeYAML(raw []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv(lookup LookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	var storageDriver, blobDriver string
	str("PROPDESK_STORAGE_DRIVER", &storageDriver)
	if storageDriver != "" {
		c.Storage.Driver = core.StorageDriver(strings.ToLower(storageDriver))
	}
	str("PROPDESK_SQLITE_PATH", &c.Storage.SQLitePath)
	str("PROPDESK_POSTGRES_DSN", &c.Storage.PostgresDSN)
	integer("PROPDESK_HISTORY_DEPTH", &c.Storage.HistoryDepth)

	str("PROPDESK_BLOB_DRIVER", &blobDriver)
	if blobDriver != "" {
		c.Blob.Driver = blobcore.Driver(strings.ToLower(blobDriver))
	}
	str("PROPDESK_BLOB_FS_ROOT", &c.Blob.FSRoot)
	str("PROPDESK_BLOB_S3_BUCKET", &c.Blob.Bucket)
	str("PROPDESK_BLOB_S3_REGION", &c.Blob.Region)
	str("PROPDESK_BLOB_S3_ENDPOINT", &c.Blob.Endpoint)
	boolean("PROPDESK_BLOB_S3_PATH_STYLE", &c.Blob.PathStyle)

	str("PROPDESK_HTTP_ADDR", &c.HTTP.Addr)
	duration("PROPDESK_HTTP_SHUTDOWN_TIMEOUT", &c.HTTP.ShutdownTimeout)
	str("PROPDESK_LOG_MODE", &c.Log.Mode)
	str("PROPDESK_LOG_LEVEL", &c.Log.Level)
	boolean("PROPDESK_SEED", &c.Seed)
	boolean("PROPDESK_STRICT_THEORY", &c.StrictTheory)

	for _, key := range []string{"PROPDESK_ASSIST_API_KEY", "GEMINI_API_KEY", "API_KEY"} {
		if v, ok := lookup(key); ok && v != "" {
			c.Assist.APIKey = v
			break
		}
	}
	str("PROPDESK_ASSIST_MODEL", &c.Assist.Model)
	str("PROPDESK_ASSIST_BASE_URL", &c.Assist.BaseURL)
	duration("PROPDESK_ASSIST_TIMEOUT", &c.Assist.Timeout)
	return errors.Join(errs...)
}

// Validate rejects settings no component can run with.
func (c Config) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case core.StorageMemory, core.StorageSQLite, core.StoragePostgres:
	default:
		errs = append(errs, fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver))
	}
	if c.Storage.Driver == core.StoragePostgres && c.Storage.PostgresDSN == "" {
		errs = append(errs, errors.New("storage.postgres_dsn is required for the postgres driver"))
	}
	if c.Storage.HistoryDepth < 0 {
		errs = append(errs, errors.New("storage.history_depth must not be negative"))
	}
	switch c.Blob.Driver {
	case blobcore.DriverFilesystem, blobcore.DriverMemory:
	case blobcore.DriverS3:
		if c.Blob.Bucket == "" {
			errs = append(errs, errors.New("blob.s3_bucket is required for the s3 driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("blob.driver: unknown driver %q", c.Blob.Driver))
	}
	switch c.Log.Mode {
	case "development", "production":
	default:
		errs = append(errs, fmt.Errorf("log.mode: expected development or production, got %q", c.Log.Mode))
	}
	if c.Assist.Timeout <= 0 {
		errs = append(errs, errors.New("assist.timeout must be positive"))
	}
	return errors.Join(errs...)
}

// StorageOptions converts the storage section for core.OpenPersistentStore.
func (c Config) StorageOptions() core.StorageOptions {
	return core.StorageOptions{
		Driver:       c.Storage.Driver,
		SQLitePath:   c.Storage.SQLitePath,
		PostgresDSN:  c.Storage.PostgresDSN,
		HistoryDepth: c.Storage.HistoryDepth,
	}
}

// BlobOptions converts the blob section for blob.Open. S3 credentials come
// from the default AWS chain.
func (c Config) BlobOptions() blob.Options {
	return blob.Options{
		Driver: c.Blob.Driver,
		FSRoot: c.Blob.FSRoot,
		S3: s3.Config{
			Bucket:    c.Blob.Bucket,
			Region:    c.Blob.Region,
			Endpoint:  c.Blob.Endpoint,
			PathStyle: c.Blob.PathStyle,
		},
	}
}
