// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	dbPath := cfg.Storage.DatabasePath
//	policy := cfg.Reconcile.Policy()
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/canary-hr/attendance-reconciler/internal/adapters/sheets"
	"github.com/canary-hr/attendance-reconciler/internal/domain/matcher"
	"github.com/canary-hr/attendance-reconciler/internal/domain/reconciler"
	"github.com/canary-hr/attendance-reconciler/internal/domain/similarity"
)

// Config represents the entire application configuration
type Config struct {
	Reconcile     ReconcileConfig     `yaml:"reconcile" validate:"required"`
	Storage       StorageConfig       `yaml:"storage"`
	API           APIConfig           `yaml:"api"`
	Export        ExportConfig        `yaml:"export"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ReconcileConfig holds the reconciliation policy
type ReconcileConfig struct {
	KeyStrategy      string  `yaml:"key_strategy" validate:"omitempty,oneof=code code_name"`
	NameThreshold    float64 `yaml:"name_threshold" validate:"gte=0,lte=1"`
	Tolerance        float64 `yaml:"tolerance" validate:"gte=0"`
	EmitOrphans      bool    `yaml:"emit_orphans"`
	StrictHeaders    bool    `yaml:"strict_headers"`
	IncompleteBucket string  `yaml:"incomplete_bucket" validate:"omitempty,oneof=both either"`
	CodeDigitsOnly   bool    `yaml:"code_digits_only"`
}

// StorageConfig holds database configuration. An empty path disables the
// run ledger.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// APIConfig holds HTTP server settings
type APIConfig struct {
	Port           int      `yaml:"port" validate:"gte=0,lte=65535"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxUploadMB    int      `yaml:"max_upload_mb" validate:"gte=0"`
}

// ExportConfig holds report export settings
type ExportConfig struct {
	FileName string `yaml:"file_name" validate:"omitempty,endswith=.xlsx"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json maven"`
}

// Default values
const (
	DefaultDatabasePath = "reconcile_runs.db"
	DefaultPort         = 8085
	DefaultMaxUploadMB  = 20
)

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${RECONCILE_DB_PATH})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := &Config{
		Reconcile: ReconcileConfig{
			KeyStrategy:      getEnv("RECONCILE_KEY_STRATEGY", string(matcher.StrategyCode)),
			NameThreshold:    getEnvFloat("RECONCILE_NAME_THRESHOLD", similarity.DefaultThreshold),
			Tolerance:        getEnvFloat("RECONCILE_TOLERANCE", 0),
			EmitOrphans:      getEnvBool("RECONCILE_EMIT_ORPHANS", false),
			StrictHeaders:    getEnvBool("RECONCILE_STRICT_HEADERS", false),
			IncompleteBucket: getEnv("RECONCILE_INCOMPLETE_BUCKET", string(reconciler.BucketBoth)),
			CodeDigitsOnly:   getEnvBool("RECONCILE_CODE_DIGITS_ONLY", false),
		},
		Storage: StorageConfig{
			DatabasePath: getEnv("RECONCILE_DB_PATH", DefaultDatabasePath),
		},
		API: APIConfig{
			Port:           getEnvInt("API_PORT", DefaultPort),
			AllowedOrigins: splitList(os.Getenv("API_ALLOWED_ORIGINS")),
			MaxUploadMB:    getEnvInt("API_MAX_UPLOAD_MB", DefaultMaxUploadMB),
		},
		Export: ExportConfig{
			FileName: getEnv("EXPORT_FILE_NAME", sheets.DefaultReportFile),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnv_WithPath("config.yaml")
}

// LoadOrEnv_WithPath tries to load from specified path, falls back to environment variables
func LoadOrEnv_WithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

// applyDefaults fills zero values left by a sparse YAML file.
func (c *Config) applyDefaults() {
	if c.Reconcile.KeyStrategy == "" {
		c.Reconcile.KeyStrategy = string(matcher.StrategyCode)
	}
	if c.Reconcile.NameThreshold == 0 {
		c.Reconcile.NameThreshold = similarity.DefaultThreshold
	}
	if c.Reconcile.IncompleteBucket == "" {
		c.Reconcile.IncompleteBucket = string(reconciler.BucketBoth)
	}
	if c.API.Port == 0 {
		c.API.Port = DefaultPort
	}
	if c.API.MaxUploadMB == 0 {
		c.API.MaxUploadMB = DefaultMaxUploadMB
	}
	if c.Export.FileName == "" {
		c.Export.FileName = sheets.DefaultReportFile
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Policy converts the reconcile section into an engine policy.
func (r ReconcileConfig) Policy() reconciler.Policy {
	p := reconciler.DefaultPolicy()
	if r.KeyStrategy != "" {
		p.KeyStrategy = matcher.KeyStrategy(r.KeyStrategy)
	}
	if r.NameThreshold > 0 {
		p.NameThreshold = r.NameThreshold
	}
	p.Tolerance = r.Tolerance
	p.EmitOrphans = r.EmitOrphans
	p.StrictHeaders = r.StrictHeaders
	if r.IncompleteBucket != "" {
		p.IncompleteBucket = reconciler.IncompleteBucket(r.IncompleteBucket)
	}
	p.CodeDigitsOnly = r.CodeDigitsOnly
	return p
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(val)); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
