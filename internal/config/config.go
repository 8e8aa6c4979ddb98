package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// FullMonthCycle is the complete reporting-year month order, starting at the
// fiscal anchor month. The active horizon (ReportingConfig.Months) is always
// a prefix-ordered subset of this cycle; it also drives calendar-successor
// labels for forecasting.
var FullMonthCycle = []string{"Aug", "Sep", "Oct", "Nov", "Dec", "Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul"}

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Reporting ReportingConfig `yaml:"reporting" envconfig:"REPORTING"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"60s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	WebDir  string `yaml:"web_dir" envconfig:"WEB_DIR" default:"web"`
	LogsDir string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// ReportingConfig carries the versioned reporting-horizon data. Earlier
// revisions of the dashboard hard-coded a 3-month horizon with a 5-day
// business week; both values changed between revisions, so they live in
// configuration rather than code.
type ReportingConfig struct {
	// Year is the fixed reporting year applied to day-only dates.
	Year int `yaml:"year" envconfig:"YEAR" default:"2025"`

	// Months is the ordered set of canonical month tokens the dashboard
	// recognizes. Records resolving outside it are treated as undefined.
	Months []string `yaml:"months" envconfig:"MONTHS" default:"Aug,Sep,Oct,Nov"`

	// WeekLengthDays is the bucket span: 5 for a Sun-Thu business week,
	// 7 for a full Sun-Sat week.
	WeekLengthDays int `yaml:"week_length_days" envconfig:"WEEK_LENGTH_DAYS" default:"7"`

	// CacheTTL is the validity window of the loaded table before the data
	// directory is re-scanned.
	CacheTTL time.Duration `yaml:"cache_ttl" envconfig:"CACHE_TTL" default:"10m"`

	// SheetName and HeaderRowOffset locate the data block inside each
	// agent's Excel workbook.
	SheetName       string `yaml:"sheet_name" envconfig:"SHEET_NAME" default:"الرئيسة"`
	HeaderRowOffset int    `yaml:"header_row_offset" envconfig:"HEADER_ROW_OFFSET" default:"11"`

	// Test-fixture exclusion: rows from DenySource whose phone number falls
	// in [DenyPhoneLow, DenyPhoneHigh] are dropped during merge.
	DenySource   string `yaml:"deny_source" envconfig:"DENY_SOURCE" default:"Shouq"`
	DenyPhoneLow int64  `yaml:"deny_phone_low" envconfig:"DENY_PHONE_LOW" default:"599940931"`
	DenyPhoneHigh int64 `yaml:"deny_phone_high" envconfig:"DENY_PHONE_HIGH" default:"599940952"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	var cfg Config

	// Load from environment variables first
	if err := envconfig.Process("CALLPULSE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// Load from config file if exists
	configFile := getConfigFilePath()
	if configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence)
func mergeConfigs(fileConfig, envConfig Config) Config {
	if envConfig.Server.Port == 0 {
		envConfig.Server.Port = fileConfig.Server.Port
	}
	if envConfig.Server.ReadTimeout == 0 {
		envConfig.Server.ReadTimeout = fileConfig.Server.ReadTimeout
	}
	if envConfig.Paths.DataDir == "" {
		envConfig.Paths.DataDir = fileConfig.Paths.DataDir
	}
	if len(envConfig.Reporting.Months) == 0 {
		envConfig.Reporting.Months = fileConfig.Reporting.Months
	}
	if envConfig.Reporting.WeekLengthDays == 0 {
		envConfig.Reporting.WeekLengthDays = fileConfig.Reporting.WeekLengthDays
	}
	if envConfig.Reporting.CacheTTL == 0 {
		envConfig.Reporting.CacheTTL = fileConfig.Reporting.CacheTTL
	}

	return envConfig
}

// GetDataDir returns the resolved data directory path
func (c *Config) GetDataDir() string {
	if filepath.IsAbs(c.Paths.DataDir) {
		return c.Paths.DataDir
	}
	wd, err := os.Getwd()
	if err != nil {
		return c.Paths.DataDir
	}
	return filepath.Join(wd, c.Paths.DataDir)
}

// GetWebDir returns the resolved web directory path
func (c *Config) GetWebDir() string {
	if filepath.IsAbs(c.Paths.WebDir) {
		return c.Paths.WebDir
	}
	wd, err := os.Getwd()
	if err != nil {
		return c.Paths.WebDir
	}
	return filepath.Join(wd, c.Paths.WebDir)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if err := c.Reporting.Validate(); err != nil {
		return err
	}

	// Always JSON format, dual output
	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output != "both" && c.Logging.Output != "file" && c.Logging.Output != "console" {
		c.Logging.Output = "both"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	return nil
}

// Validate checks the reporting horizon data for internal consistency.
func (r *ReportingConfig) Validate() error {
	if r.Year < 2000 || r.Year > 2100 {
		return fmt.Errorf("invalid reporting year: %d", r.Year)
	}

	if len(r.Months) == 0 {
		return fmt.Errorf("reporting months must not be empty")
	}
	cycle := make(map[string]bool, len(FullMonthCycle))
	for _, m := range FullMonthCycle {
		cycle[m] = true
	}
	for _, m := range r.Months {
		if !cycle[m] {
			return fmt.Errorf("unknown reporting month token: %q", m)
		}
	}

	if r.WeekLengthDays != 5 && r.WeekLengthDays != 7 {
		return fmt.Errorf("week length must be 5 or 7 days, got %d", r.WeekLengthDays)
	}

	if r.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive")
	}

	if r.DenyPhoneLow > r.DenyPhoneHigh {
		return fmt.Errorf("deny phone range is inverted")
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  60 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: "logs/app.log",
		},
		Paths: PathsConfig{
			DataDir: "data",
			WebDir:  "web",
			LogsDir: "logs",
		},
		Reporting: DefaultReporting(),
	}
}

// DefaultReporting returns the current-revision reporting horizon: four
// months starting at August, full Sun-Sat weeks, ten-minute cache.
func DefaultReporting() ReportingConfig {
	return ReportingConfig{
		Year:            2025,
		Months:          []string{"Aug", "Sep", "Oct", "Nov"},
		WeekLengthDays:  7,
		CacheTTL:        10 * time.Minute,
		SheetName:       "الرئيسة",
		HeaderRowOffset: 11,
		DenySource:      "Shouq",
		DenyPhoneLow:    599940931,
		DenyPhoneHigh:   599940952,
	}
}
