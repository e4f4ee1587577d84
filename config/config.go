package config

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/poiesic/lostfound/ai"
	"github.com/poiesic/lostfound/match"
	"github.com/poiesic/lostfound/notify"
)

// Config is the application configuration.
type Config struct {
	LogLevel  slog.Level      `yaml:"log_level"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Matching  MatchingConfig  `yaml:"matching"`
	Notify    NotifyConfig    `yaml:"notify"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	HTTP      HTTPConfig      `yaml:"http"`
}

// Validate validates every section.
func (c *Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Embedding.Validate(); err != nil {
		return fmt.Errorf("embedding: %w", err)
	}
	if err := c.Matching.Validate(); err != nil {
		return fmt.Errorf("matching: %w", err)
	}
	if err := c.Notify.Validate(); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	if err := c.SMTP.Validate(); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http: %w", err)
	}
	return nil
}

// DatabaseConfig locates the badger database directory.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the database configuration.
func (c *DatabaseConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// EmbeddingConfig points at an OpenAI-compatible embeddings endpoint.
type EmbeddingConfig struct {
	Host    string        `yaml:"host"`
	Model   string        `yaml:"model"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// Validate validates the embedding configuration.
func (c *EmbeddingConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Host, validation.Required, is.URL),
		validation.Field(&c.Model, validation.Required),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

// AIConfig converts the section into an ai.Config.
func (c *EmbeddingConfig) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(c.Host),
		ai.WithEmbeddingModel(c.Model),
		ai.WithToken(c.Token),
		ai.WithTimeout(c.Timeout),
	)
}

// MatchingConfig holds the thresholds a score must exceed.
type MatchingConfig struct {
	SemanticThreshold float64 `yaml:"semantic_threshold"`
	CoarseThreshold   float64 `yaml:"coarse_threshold"`
}

// Validate validates the matching configuration.
func (c *MatchingConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SemanticThreshold, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.CoarseThreshold, validation.Min(0.0), validation.Max(1.0)),
	)
}

// NotifyConfig tunes alert delivery.
type NotifyConfig struct {
	PoolSize    int           `yaml:"pool_size"`
	MaxAttempts int           `yaml:"max_attempts"`
	RetryDelay  time.Duration `yaml:"retry_delay"`
}

// Validate validates the notify configuration.
func (c *NotifyConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.PoolSize, validation.Min(0)),
		validation.Field(&c.MaxAttempts, validation.Required, validation.Min(1)),
		validation.Field(&c.RetryDelay, validation.Min(time.Duration(0))),
	)
}

// Options converts the section, together with the coarse threshold, into notifier options.
func (c *NotifyConfig) Options(threshold float64, logger *slog.Logger) []notify.Option {
	opts := []notify.Option{
		notify.WithThreshold(threshold),
		notify.WithRetry(c.MaxAttempts, c.RetryDelay),
		notify.WithLogger(logger),
	}
	if c.PoolSize > 0 {
		opts = append(opts, notify.WithPoolSize(c.PoolSize))
	}
	return opts
}

// SMTPConfig configures outbound email. Alerts are only sent when Enabled is true.
type SMTPConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	SSL      bool   `yaml:"ssl"`
}

// Validate validates the SMTP configuration. Host and From are only required when enabled.
func (c *SMTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Host, validation.When(c.Enabled, validation.Required)),
		validation.Field(&c.Port, validation.Min(0), validation.Max(65535)),
		validation.Field(&c.From, validation.When(c.Enabled, validation.Required), is.EmailFormat),
	)
}

// MailerConfig converts the section into notify.SMTPConfig.
func (c *SMTPConfig) MailerConfig() notify.SMTPConfig {
	return notify.SMTPConfig{
		Host:     c.Host,
		Port:     c.Port,
		Username: c.Username,
		Password: c.Password,
		From:     c.From,
		SSL:      c.SSL,
	}
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
	// Token, when set, is required as a bearer token on every request except health checks.
	Token string `yaml:"token"`
}

// Address returns the HTTP listen address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// NewDefaultConfig returns a Config with the default values.
func NewDefaultConfig() *Config {
	aiDefaults := ai.DefaultConfig()
	return &Config{
		LogLevel: slog.LevelInfo,
		Database: DatabaseConfig{
			Path: "./lostfound.db",
		},
		Embedding: EmbeddingConfig{
			Host:    aiDefaults.EmbeddingHost,
			Model:   aiDefaults.EmbeddingModel,
			Token:   aiDefaults.Token,
			Timeout: aiDefaults.Timeout,
		},
		Matching: MatchingConfig{
			SemanticThreshold: match.DefaultSemanticThreshold,
			CoarseThreshold:   match.DefaultCoarseThreshold,
		},
		Notify: NotifyConfig{
			MaxAttempts: 1,
			RetryDelay:  time.Second,
		},
		HTTP: HTTPConfig{
			Port: 8080,
		},
	}
}

// LoadFile loads filename over the defaults. An empty filename yields the validated defaults.
func LoadFile(filename string) (*Config, error) {
	cfg := NewDefaultConfig()
	if filename == "" {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err := Load(filename, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
