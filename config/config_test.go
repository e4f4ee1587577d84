package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 0.30, cfg.Matching.SemanticThreshold)
	assert.Equal(t, 0.50, cfg.Matching.CoarseThreshold)
	assert.Equal(t, "all-minilm", cfg.Embedding.Model)
	assert.Equal(t, 1, cfg.Notify.MaxAttempts)
	assert.False(t, cfg.SMTP.Enabled)
	assert.Equal(t, ":8080", cfg.HTTP.Address())
}

func TestLoadFile(t *testing.T) {
	t.Setenv("LOSTFOUND_SMTP_PASSWORD", "s3cret")
	path := writeConfig(t, `
log_level: debug
database:
  path: /var/lib/lostfound
matching:
  semantic_threshold: 0.4
notify:
  pool_size: 4
  max_attempts: 3
  retry_delay: 250ms
smtp:
  enabled: true
  host: smtp.example.com
  username: alerts
  password: ${LOSTFOUND_SMTP_PASSWORD}
  from: alerts@example.com
http:
  port: 9090
  token: abc
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "/var/lib/lostfound", cfg.Database.Path)
	assert.Equal(t, 0.4, cfg.Matching.SemanticThreshold)
	assert.Equal(t, 0.50, cfg.Matching.CoarseThreshold, "unset fields keep their defaults")
	assert.Equal(t, 4, cfg.Notify.PoolSize)
	assert.Equal(t, 3, cfg.Notify.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Notify.RetryDelay)
	assert.Equal(t, "s3cret", cfg.SMTP.Password)
	assert.Equal(t, ":9090", cfg.HTTP.Address())
	assert.Equal(t, "abc", cfg.HTTP.Token)

	mailer := cfg.SMTP.MailerConfig()
	assert.Equal(t, "smtp.example.com", mailer.Host)
	assert.Equal(t, "alerts@example.com", mailer.From)
	assert.Equal(t, "s3cret", mailer.Password)

	assert.Len(t, cfg.Notify.Options(cfg.Matching.CoarseThreshold, nil), 4)
}

func TestLoadFileEmptyPath(t *testing.T) {
	cfg, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, NewDefaultConfig(), cfg)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFileMalformed(t *testing.T) {
	path := writeConfig(t, "matching: [unclosed\n")
	_, err := LoadFile(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestLoadFileValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"threshold above one", "matching:\n  semantic_threshold: 1.5\n"},
		{"negative coarse threshold", "matching:\n  coarse_threshold: -0.1\n"},
		{"zero attempts", "notify:\n  max_attempts: 0\n"},
		{"empty database path", "database:\n  path: \"\"\n"},
		{"port out of range", "http:\n  port: 70000\n"},
		{"smtp enabled without host", "smtp:\n  enabled: true\n  from: a@example.com\n"},
		{"smtp bad sender", "smtp:\n  from: not-an-address\n"},
		{"empty model", "embedding:\n  model: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, tt.body))
			assert.ErrorContains(t, err, "config validation failed")
		})
	}
}

func TestSMTPDisabledNeedsNothing(t *testing.T) {
	c := SMTPConfig{}
	assert.NoError(t, c.Validate())
}

func TestEmbeddingAIConfig(t *testing.T) {
	c := EmbeddingConfig{Host: "http://embed:8000", Model: "text-embedding-3-small", Timeout: 5 * time.Second}
	aiCfg := c.AIConfig()
	require.NoError(t, aiCfg.Validate())
	assert.Equal(t, "http://embed:8000/v1", aiCfg.EmbeddingHost)
	assert.Equal(t, "text-embedding-3-small", aiCfg.EmbeddingModel)
	assert.Equal(t, "none", aiCfg.Token)
	assert.Equal(t, 5*time.Second, aiCfg.Timeout)
}

func TestLoadWithDefaults(t *testing.T) {
	fallback := writeConfig(t, "http:\n  port: 7070\n")

	cfg := NewDefaultConfig()
	require.NoError(t, LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"), fallback, cfg))
	assert.Equal(t, 7070, cfg.HTTP.Port)

	err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"), "", NewDefaultConfig())
	assert.ErrorContains(t, err, "config file not found")
}
