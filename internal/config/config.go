package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable, e.g. PWC_SERVER_PORT.
const EnvPrefix = "PWC"

// ConfigFileEnv names the variable that points at an explicit YAML file.
const ConfigFileEnv = EnvPrefix + "_CONFIG_FILE"

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server" envconfig:"SERVER"`
	Security   SecurityConfig   `yaml:"security" envconfig:"SECURITY"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Processing ProcessingConfig `yaml:"processing" envconfig:"PROCESSING"`
	Telemetry  TelemetryConfig  `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST"`
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// ProcessingConfig controls how uploaded workbooks are converted.
type ProcessingConfig struct {
	// Sheet is the worksheet read from uploads. Empty means the first sheet.
	Sheet        string `yaml:"sheet" envconfig:"SHEET"`
	Workers      int    `yaml:"workers" envconfig:"WORKERS"`
	OutputFormat string `yaml:"output_format" envconfig:"OUTPUT_FORMAT"`
	// DateColumn and ValueColumn prefill the upload form.
	DateColumn  string `yaml:"date_column" envconfig:"DATE_COLUMN"`
	ValueColumn string `yaml:"value_column" envconfig:"VALUE_COLUMN"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	ServiceName     string  `yaml:"service_name" envconfig:"SERVICE_NAME"`
	Environment     string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter   string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	MetricsExporter string  `yaml:"metrics_exporter" envconfig:"METRICS_EXPORTER"`
	SampleRatio     float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
}

// Load loads configuration from defaults, the config file if one is found, then
// environment variables. Later sources win.
func Load() (*Config, error) {
	return LoadFile(getConfigFilePath())
}

// LoadFile is Load with an explicit YAML file. An empty path skips the file.
func LoadFile(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Only variables that are set overwrite fields, so file values survive.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg. Keys absent from the file keep their value.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", filePath, err)
	}
	return nil
}

// validate validates the configuration
func (c *Config) validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid server port: %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, errors.New("server read timeout must be positive"))
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, errors.New("server write timeout must be positive"))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("server max upload bytes must be positive"))
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("at least one allowed origin must be specified"))
	}
	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		errs = append(errs, errors.New("rate limit rps and burst must be positive"))
	}

	c.Logging.Level = strings.ToLower(c.Logging.Level)
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid logging level: %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("invalid logging format: %q", c.Logging.Format))
	}
	switch c.Logging.Output {
	case "console":
	case "file", "both":
		if c.Logging.FilePath == "" {
			errs = append(errs, errors.New("logging file path is required for file output"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid logging output: %q", c.Logging.Output))
	}

	if c.Processing.Workers < 0 {
		errs = append(errs, fmt.Errorf("processing workers must not be negative: %d", c.Processing.Workers))
	}
	c.Processing.OutputFormat = strings.ToLower(c.Processing.OutputFormat)
	if c.Processing.OutputFormat != "xlsx" && c.Processing.OutputFormat != "csv" {
		errs = append(errs, fmt.Errorf("invalid output format: %q", c.Processing.OutputFormat))
	}

	switch c.Telemetry.TraceExporter {
	case "stdout", "none":
	default:
		errs = append(errs, fmt.Errorf("invalid trace exporter: %q", c.Telemetry.TraceExporter))
	}
	switch c.Telemetry.MetricsExporter {
	case "prometheus", "none":
	default:
		errs = append(errs, fmt.Errorf("invalid metrics exporter: %q", c.Telemetry.MetricsExporter))
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("sample ratio must be between 0 and 1: %v", c.Telemetry.SampleRatio))
	}

	return errors.Join(errs...)
}

// getConfigFilePath returns the path to the config file, or "" when none exists.
func getConfigFilePath() string {
	if explicit := os.Getenv(ConfigFileEnv); explicit != "" {
		return explicit
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  60 * time.Second,
			MaxUploadBytes:  32 << 20,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     10,
				Burst:   20,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Processing: ProcessingConfig{
			Workers:      runtime.NumCPU(),
			OutputFormat: "xlsx",
		},
		Telemetry: TelemetryConfig{
			ServiceName:     "partial-week-converter",
			Environment:     "development",
			TraceExporter:   "none",
			MetricsExporter: "prometheus",
			SampleRatio:     1,
		},
	}
}
