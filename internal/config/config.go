package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the TrueSight server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Storage  StorageConfig
	Upload   UploadConfig
	Pipeline PipelineConfig
	Renderer RendererConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// StorageConfig selects and configures the blob backend for uploaded media.
type StorageConfig struct {
	Backend string // "local" or "s3"
	Local   LocalStorageConfig
	S3      S3StorageConfig
}

type LocalStorageConfig struct {
	Path string
}

type S3StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type UploadConfig struct {
	MaxSizeMB int64
}

// PipelineConfig is the analysis pipeline policy: pacing, concurrency, the
// scorer seed, and the fusion weights. The weights are illustrative policy
// constants, not a trained result, so they live in config.
type PipelineConfig struct {
	StageDelay    time.Duration
	MaxConcurrent int
	Seed          int64
	VideoWeight   float64
	AudioWeight   float64
	LipsyncWeight float64
}

// RendererConfig points at the external PDF rendering service. An empty
// BaseURL disables PDF export.
type RendererConfig struct {
	BaseURL string
	Timeout time.Duration
}

var validStorageBackends = map[string]bool{
	"local": true,
	"s3":    true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("TRUESIGHT_PORT", 8080),
			Env:  envString("TRUESIGHT_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Storage: StorageConfig{
			Backend: envString("STORAGE_BACKEND", "local"),
			Local: LocalStorageConfig{
				Path: envString("STORAGE_LOCAL_PATH", "./data/media"),
			},
			S3: S3StorageConfig{
				Endpoint:  os.Getenv("MINIO_ENDPOINT"),
				AccessKey: os.Getenv("MINIO_ACCESS_KEY_ID"),
				SecretKey: os.Getenv("MINIO_SECRET_ACCESS_KEY"),
				Bucket:    os.Getenv("MINIO_BUCKET_NAME"),
				UseSSL:    envBool("MINIO_USE_SSL", false),
			},
		},
		Upload: UploadConfig{
			MaxSizeMB: int64(envInt("UPLOAD_MAX_SIZE_MB", 200)),
		},
		Pipeline: PipelineConfig{
			StageDelay:    envDuration("PIPELINE_STAGE_DELAY", 400*time.Millisecond),
			MaxConcurrent: envInt("PIPELINE_MAX_CONCURRENT", 8),
			Seed:          int64(envInt("PIPELINE_SEED", 1)),
			VideoWeight:   envFloat("FUSION_VIDEO_WEIGHT", 0.45),
			AudioWeight:   envFloat("FUSION_AUDIO_WEIGHT", 0.30),
			LipsyncWeight: envFloat("FUSION_LIPSYNC_WEIGHT", 0.25),
		},
		Renderer: RendererConfig{
			BaseURL: os.Getenv("RENDERER_BASE_URL"),
			Timeout: envDuration("RENDERER_TIMEOUT", 30*time.Second),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if !validStorageBackends[c.Storage.Backend] {
		return fmt.Errorf("STORAGE_BACKEND must be one of local, s3; got %q", c.Storage.Backend)
	}
	if c.Storage.Backend == "s3" {
		if c.Storage.S3.Endpoint == "" || c.Storage.S3.AccessKey == "" ||
			c.Storage.S3.SecretKey == "" || c.Storage.S3.Bucket == "" {
			return fmt.Errorf("MINIO_ENDPOINT, MINIO_ACCESS_KEY_ID, MINIO_SECRET_ACCESS_KEY, and MINIO_BUCKET_NAME are required when STORAGE_BACKEND is s3")
		}
	}

	if c.Upload.MaxSizeMB <= 0 {
		return fmt.Errorf("UPLOAD_MAX_SIZE_MB must be positive, got %d", c.Upload.MaxSizeMB)
	}

	if c.Pipeline.MaxConcurrent <= 0 {
		return fmt.Errorf("PIPELINE_MAX_CONCURRENT must be positive, got %d", c.Pipeline.MaxConcurrent)
	}
	wsum := c.Pipeline.VideoWeight + c.Pipeline.AudioWeight + c.Pipeline.LipsyncWeight
	if c.Pipeline.VideoWeight < 0 || c.Pipeline.AudioWeight < 0 || c.Pipeline.LipsyncWeight < 0 {
		return fmt.Errorf("fusion weights must be non-negative")
	}
	if math.Abs(wsum-1) > 1e-9 {
		return fmt.Errorf("fusion weights must sum to 1, got %g", wsum)
	}

	if c.Renderer.BaseURL != "" &&
		!strings.HasPrefix(c.Renderer.BaseURL, "http://") &&
		!strings.HasPrefix(c.Renderer.BaseURL, "https://") {
		return fmt.Errorf("RENDERER_BASE_URL must start with http:// or https://, got %q", c.Renderer.BaseURL)
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
