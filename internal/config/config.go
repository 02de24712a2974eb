package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Search    SearchConfig    `yaml:"search"`
	Rera      ReraConfig      `yaml:"rera"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Grading   GradingConfig   `yaml:"grading"`
	Nurture   NurtureConfig   `yaml:"nurture"`
	Cleanup   CleanupConfig   `yaml:"cleanup"`
	Logging   LoggingConfig   `yaml:"logging"`
	Timezone  string          `yaml:"timezone"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Type     string         `yaml:"type"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// MySQLConfig contains MySQL connection settings
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// PostgresConfig contains PostgreSQL connection settings
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// SearchConfig contains search engine settings
type SearchConfig struct {
	Meilisearch MeilisearchConfig `yaml:"meilisearch"`
}

// MeilisearchConfig contains Meilisearch connection settings
type MeilisearchConfig struct {
	Host   string `yaml:"host"`
	APIKey string `yaml:"api_key"`
}

// ReraConfig contains settings for the RERA registry client and sync jobs
type ReraConfig struct {
	RegistryBaseURL   string `yaml:"registry_base_url"`
	TimeoutSeconds    int    `yaml:"timeout_seconds"`
	MaxRetries        int    `yaml:"max_retries"`
	RetryDelaySeconds int    `yaml:"retry_delay_seconds"`
	BulkDelaySeconds  int    `yaml:"bulk_delay_seconds"`
	StalenessDays     int    `yaml:"staleness_days"`
	AutoSyncEnabled   bool   `yaml:"auto_sync_enabled"`
	AutoSyncTime      string `yaml:"auto_sync_time"`
	MaxRequestsPerDay int    `yaml:"max_requests_per_day"`
	HeadlessFallback  bool   `yaml:"headless_fallback"`
	UserAgent         string `yaml:"user_agent"`
}

// RateLimitConfig contains rate limiting settings for registry-facing endpoints
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	RequestsPerHour   int  `yaml:"requests_per_hour"`
}

// GradingConfig maps overall score thresholds to letter grades.
// The cut points are a policy choice owned by the advisory team, not
// a fact of the scoring rubric itself.
type GradingConfig struct {
	Thresholds []GradeThreshold `yaml:"thresholds"`
}

// GradeThreshold assigns a grade to overall totals at or above Min
type GradeThreshold struct {
	Grade string `yaml:"grade"`
	Min   int    `yaml:"min"`
}

// NurtureConfig contains lead nurturing settings
type NurtureConfig struct {
	Enabled          bool   `yaml:"enabled"`
	DailyRunTime     string `yaml:"daily_run_time"`
	WhatsAppEndpoint string `yaml:"whatsapp_endpoint"`
	WhatsAppToken    string `yaml:"whatsapp_token"`
	SenderNumber     string `yaml:"sender_number"`
}

// CleanupConfig contains settings for physical deletion of removed properties
type CleanupConfig struct {
	RetentionDays    int `yaml:"retention_days"`
	MaxDeletionCount int `yaml:"max_deletion_count"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level        string `yaml:"level"`
	LogRequests  bool   `yaml:"log_requests"`
	LogResponses bool   `yaml:"log_responses"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Rera: ReraConfig{
			RegistryBaseURL:   "https://rera.example.gov.in",
			TimeoutSeconds:    30,
			MaxRetries:        3,
			RetryDelaySeconds: 2,
			BulkDelaySeconds:  1,
			StalenessDays:     30,
			AutoSyncEnabled:   false,
			AutoSyncTime:      "02:30",
			MaxRequestsPerDay: 2000,
			HeadlessFallback:  true,
			UserAgent:         "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 30,
			RequestsPerHour:   600,
		},
		Grading: GradingConfig{
			Thresholds: []GradeThreshold{
				{Grade: "A+", Min: 90},
				{Grade: "A", Min: 80},
				{Grade: "B+", Min: 70},
				{Grade: "B", Min: 60},
				{Grade: "C+", Min: 50},
				{Grade: "C", Min: 40},
				{Grade: "D", Min: 0},
			},
		},
		Nurture: NurtureConfig{
			Enabled:      false,
			DailyRunTime: "09:00",
		},
		Cleanup: CleanupConfig{
			RetentionDays:    90,
			MaxDeletionCount: 10000,
		},
		Logging: LoggingConfig{
			Level:        "info",
			LogRequests:  true,
			LogResponses: false,
		},
		Timezone: "Asia/Kolkata",
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filepath string) (*Config, error) {
	// Start with default config
	config := DefaultConfig()

	// If file doesn't exist, return default config
	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// GetTimeout returns the registry request timeout as a duration
func (c *ReraConfig) GetTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GetRetryDelay returns the retry delay as a duration
func (c *ReraConfig) GetRetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySeconds) * time.Second
}

// GetBulkDelay returns the delay between bulk verification items
func (c *ReraConfig) GetBulkDelay() time.Duration {
	return time.Duration(c.BulkDelaySeconds) * time.Second
}

// GetStalenessWindow returns how old a verification may be before
// auto-sync considers the record outdated
func (c *ReraConfig) GetStalenessWindow() time.Duration {
	return time.Duration(c.StalenessDays) * 24 * time.Hour
}

// GetLocation resolves the configured timezone, falling back to the
// system timezone when unset or invalid
func (c *Config) GetLocation() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
