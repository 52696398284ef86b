package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string        `toml:"environment"` // "development" or "production"
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Logging     LoggingConfig `toml:"logging"`
	Alert       AlertConfig   `toml:"alert"`
	Upload      UploadConfig  `toml:"upload"`
	Mail        MailConfig    `toml:"mail"`
	AI          AIConfig      `toml:"ai"`
	Claude      ClaudeConfig  `toml:"claude"`
	Gemini      GeminiConfig  `toml:"gemini"`
	Users       UsersConfig   `toml:"users"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Type   string       `toml:"type"` // only "badger" is supported
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
	SyncWrites     bool   `toml:"sync_writes"`
	InMemory       bool   `toml:"in_memory"`
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // default "15:04:05"
	FileName   string   `toml:"file_name"`   // joined with Dir
	Dir        string   `toml:"dir"`         // empty means "logs" next to the executable
}

// AlertConfig controls the daily alert correlation job
type AlertConfig struct {
	Enabled         bool   `toml:"enabled"`
	Schedule        string `toml:"schedule"`  // 5-field cron expression
	Timezone        string `toml:"timezone"`  // IANA zone the schedule is evaluated in
	Threshold       int64  `toml:"threshold"` // an error type must occur more than this many times
	ApplicationName string `toml:"application_name"`
	Subject         string `toml:"subject"`
}

// UploadConfig gates log file uploads
type UploadConfig struct {
	MaxSizeBytes      int64    `toml:"max_size_bytes"`
	AllowedExtensions []string `toml:"allowed_extensions"`
}

// MailConfig is the outbound SMTP configuration
type MailConfig struct {
	SMTPHost     string `toml:"smtp_host"`
	SMTPPort     int    `toml:"smtp_port"`
	SMTPUsername string `toml:"smtp_username"`
	SMTPPassword string `toml:"smtp_password"`
	SMTPFrom     string `toml:"smtp_from"`
	SMTPFromName string `toml:"smtp_from_name"`
	SMTPUseTLS   bool   `toml:"smtp_use_tls"` // STARTTLS on 587, implicit TLS on 465
	Timeout      string `toml:"timeout"`
}

// AIProvider represents the AI provider type
type AIProvider string

const (
	AIProviderClaude AIProvider = "claude"
	AIProviderGemini AIProvider = "gemini"
)

// AIConfig holds the fix-suggestion call policy
type AIConfig struct {
	Enabled     bool       `toml:"enabled"`
	Provider    AIProvider `toml:"provider"`
	Timeout     string     `toml:"timeout"`     // per attempt
	MaxRetries  int        `toml:"max_retries"` // retries after the first attempt
	RetryDelay  string     `toml:"retry_delay"`
	RateLimit   string     `toml:"rate_limit"` // minimum interval between provider calls
	Temperature float64    `toml:"temperature"`
	MaxTokens   int        `toml:"max_tokens"`
	Stream      bool       `toml:"stream"`
	Role        string     `toml:"role"` // role reported on responses
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// UsersConfig points at the user directory seed file
type UsersConfig struct {
	SeedFile string `toml:"seed_file"` // .toml, .yaml or .yml
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Type: "badger",
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout", "file"},
			TimeFormat: "15:04:05",
			FileName:   "loganalyzer.log",
		},
		Alert: AlertConfig{
			Enabled:         true,
			Schedule:        "0 9 * * *", // 09:00 daily
			Timezone:        "Asia/Kolkata",
			Threshold:       10,
			ApplicationName: "Log Analyzer",
			Subject:         "[ALERT] Error Threshold Exceeded in Log Analyzer",
		},
		Upload: UploadConfig{
			MaxSizeBytes:      10 * 1024 * 1024, // 10MB
			AllowedExtensions: []string{".log", ".txt", ".gz"},
		},
		Mail: MailConfig{
			SMTPPort:     587,
			SMTPFromName: "Log Analyzer",
			SMTPUseTLS:   true,
			Timeout:      "30s",
		},
		AI: AIConfig{
			Enabled:     true,
			Provider:    AIProviderClaude,
			Timeout:     "9s",
			MaxRetries:  2,
			RetryDelay:  "500ms",
			RateLimit:   "1s",
			Temperature: 0.7,
			MaxTokens:   1024,
			Stream:      false,
			Role:        "assistant",
		},
		Claude: ClaudeConfig{
			Model: "claude-haiku-4-5",
		},
		Gemini: GeminiConfig{
			Model: "gemini-2.5-flash",
		},
		Users: UsersConfig{
			SeedFile: "./users.toml",
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority: default -> file1 -> file2 -> ... -> env
// Later files override earlier files. CLI flags are applied by the caller.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		// Unmarshal into config (merges with existing values, later values override)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("LOGANALYZER_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("LOGANALYZER_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("LOGANALYZER_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if badgerPath := os.Getenv("LOGANALYZER_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("LOGANALYZER_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("LOGANALYZER_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Alert configuration
	if enabled := os.Getenv("LOGANALYZER_ALERT_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			config.Alert.Enabled = b
		}
	}
	if schedule := os.Getenv("LOGANALYZER_ALERT_SCHEDULE"); schedule != "" {
		config.Alert.Schedule = schedule
	}
	if tz := os.Getenv("LOGANALYZER_ALERT_TIMEZONE"); tz != "" {
		config.Alert.Timezone = tz
	}

	// Mail configuration
	if host := os.Getenv("LOGANALYZER_SMTP_HOST"); host != "" {
		config.Mail.SMTPHost = host
	}
	if port := os.Getenv("LOGANALYZER_SMTP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Mail.SMTPPort = p
		}
	}
	if user := os.Getenv("LOGANALYZER_SMTP_USERNAME"); user != "" {
		config.Mail.SMTPUsername = user
	}
	if pass := os.Getenv("LOGANALYZER_SMTP_PASSWORD"); pass != "" {
		config.Mail.SMTPPassword = pass
	}
	if from := os.Getenv("LOGANALYZER_SMTP_FROM"); from != "" {
		config.Mail.SMTPFrom = from
	}

	// AI configuration
	if provider := os.Getenv("LOGANALYZER_AI_PROVIDER"); provider != "" {
		config.AI.Provider = AIProvider(strings.ToLower(provider))
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}
	if key := os.Getenv("LOGANALYZER_CLAUDE_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if key := os.Getenv("LOGANALYZER_GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
}

// Validate checks values that would otherwise fail later at wiring time
func (c *Config) Validate() error {
	if err := ValidateJobSchedule(c.Alert.Schedule); err != nil {
		return fmt.Errorf("alert.schedule: %w", err)
	}
	if _, err := c.Alert.Location(); err != nil {
		return fmt.Errorf("alert.timezone: %w", err)
	}
	if c.Alert.Threshold < 0 {
		return fmt.Errorf("alert.threshold must not be negative")
	}
	if c.Upload.MaxSizeBytes <= 0 {
		return fmt.Errorf("upload.max_size_bytes must be positive")
	}
	for name, value := range map[string]string{
		"ai.timeout":     c.AI.Timeout,
		"ai.retry_delay": c.AI.RetryDelay,
		"ai.rate_limit":  c.AI.RateLimit,
		"mail.timeout":   c.Mail.Timeout,
	} {
		if _, err := ParseDuration(value, 0); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if c.AI.MaxRetries < 0 {
		return fmt.Errorf("ai.max_retries must not be negative")
	}
	return nil
}

// Location resolves the alert timezone, defaulting to local time
func (a AlertConfig) Location() (*time.Location, error) {
	if strings.TrimSpace(a.Timezone) == "" {
		return time.Local, nil
	}
	return time.LoadLocation(a.Timezone)
}

// ParseDuration parses value, returning fallback when value is empty
func ParseDuration(value string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", value, err)
	}
	return d, nil
}

// ValidateJobSchedule validates a 5-field cron schedule expression
func ValidateJobSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	if len(strings.Fields(schedule)) != 5 {
		return fmt.Errorf("invalid cron format: expected 5 fields")
	}
	return nil
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
