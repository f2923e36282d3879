package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrMissingInput is returned when no readable input document is given.
var ErrMissingInput = errors.New("input document not found")

type Config struct {
	// Extraction
	Input                  string `mapstructure:"input"`
	OutDir                 string `mapstructure:"out_dir"`
	MaxSectionChars        int    `mapstructure:"max_section_chars"`
	IncludeSectionMetadata bool   `mapstructure:"include_section_metadata"`
	PreviewHTML            bool   `mapstructure:"preview_html"`
	PdftotextFallback      bool   `mapstructure:"pdftotext_fallback"`
	RepairWorkers          int    `mapstructure:"repair_workers"`

	LogLevel string `mapstructure:"log_level"`

	// Server
	Port   string `mapstructure:"port"`
	APIKey string `mapstructure:"api_key"`

	// Worker pool
	WorkerCount  int `mapstructure:"worker_count"`
	MaxQueueSize int `mapstructure:"max_queue_size"`

	// Upload limits
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`

	// Job state
	JobTTL time.Duration `mapstructure:"job_ttl"`
}

// SetDefaults registers every key with its default so that environment
// overrides are picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("input", "")
	v.SetDefault("out_dir", "output")
	v.SetDefault("max_section_chars", 8000)
	v.SetDefault("include_section_metadata", true)
	v.SetDefault("preview_html", false)
	v.SetDefault("pdftotext_fallback", true)
	v.SetDefault("repair_workers", 4)
	v.SetDefault("log_level", "info")
	v.SetDefault("port", "8090")
	v.SetDefault("api_key", "")
	v.SetDefault("worker_count", 2)
	v.SetDefault("max_queue_size", 50)
	v.SetDefault("max_upload_bytes", 52428800) // 50MB
	v.SetDefault("job_ttl", time.Hour)
}

// New returns a viper instance with defaults, DOCOUTLINE_ environment
// overrides and the config file. Without cfgFile, ./docoutline.yaml is
// read when present.
func New(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix("DOCOUTLINE")
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("docoutline")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// Load decodes v into a Config and repairs out-of-range values.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if cfg.OutDir == "" {
		cfg.OutDir = "output"
	}
	if cfg.MaxSectionChars <= 0 {
		cfg.MaxSectionChars = 8000
	}
	if cfg.MaxSectionChars < 1000 {
		cfg.MaxSectionChars = 1000
	}
	if cfg.RepairWorkers <= 0 {
		cfg.RepairWorkers = 4
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 50
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg, nil
}

// ValidateExtract checks that the input document exists.
func (c Config) ValidateExtract() error {
	if c.Input == "" {
		return fmt.Errorf("%w: no input given", ErrMissingInput)
	}
	info, err := os.Stat(c.Input)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrMissingInput, c.Input)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrMissingInput, c.Input)
	}
	return nil
}

// ValidateServe checks the settings server mode needs.
func (c Config) ValidateServe() error {
	if c.APIKey == "" {
		return fmt.Errorf("DOCOUTLINE_API_KEY is required")
	}
	return nil
}

// SlogLevel maps log_level to a slog level; unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
