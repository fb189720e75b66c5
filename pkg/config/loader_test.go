package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_DefaultsAreComplete(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sentinel", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Mode)
	assert.Equal(t, 8080, cfg.API.Port)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, "statistical", cfg.Detector.Method)
	assert.Equal(t, 20, cfg.Detector.WindowSize)
	assert.Equal(t, 2.5, cfg.Detector.Sensitivity)
	assert.Equal(t, 30*time.Second, cfg.Monitor.Interval)
	assert.Equal(t, "sim", cfg.Actuator.Mode)
	assert.True(t, cfg.Remediation.Enabled)
	assert.Equal(t, 1000, cfg.WebSocket.SeenLimit)

	// Three services times three metrics
	assert.Len(t, cfg.Monitor.Targets, 9)
	for _, target := range cfg.Monitor.Targets {
		assert.NotEmpty(t, target.Service)
		assert.NotEmpty(t, target.Metric)
		assert.NotEmpty(t, target.Query)
	}
}

func TestLoad_DefaultsPassValidation(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
app:
  mode: production
api:
  port: 9191
  jwt_secret: a-real-secret
  admin_password: a-real-password
detector:
  method: isolation_forest
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.App.Mode)
	assert.Equal(t, 9191, cfg.API.Port)
	assert.Equal(t, "isolation_forest", cfg.Detector.Method)
	// Untouched keys keep their defaults
	assert.Equal(t, "sentinel", cfg.App.Name)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("SENTINEL_API_PORT", "7070")
	t.Setenv("SENTINEL_APP_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.API.Port)
	assert.Equal(t, "debug", cfg.App.LogLevel)
}

func TestLoad_MalformedFileFails(t *testing.T) {
	path := writeConfigFile(t, "app: [this is not\n  a mapping")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *Config)
	}{
		{"unknown mode", func(cfg *Config) { cfg.App.Mode = "staging" }},
		{"unknown log level", func(cfg *Config) { cfg.App.LogLevel = "verbose" }},
		{"port out of range", func(cfg *Config) { cfg.API.Port = 70000 }},
		{"unknown detector method", func(cfg *Config) { cfg.Detector.Method = "oracle" }},
		{"score cutoff out of range", func(cfg *Config) { cfg.Detector.ScoreCutoff = 1.5 }},
		{"no targets", func(cfg *Config) { cfg.Monitor.Targets = nil }},
		{"incomplete target", func(cfg *Config) {
			cfg.Monitor.Targets = []TargetConfig{{Service: "orders"}}
		}},
		{"timeout exceeds interval", func(cfg *Config) {
			cfg.Telemetry.Timeout = time.Minute
			cfg.Monitor.Interval = 30 * time.Second
		}},
		{"http actuator without endpoint", func(cfg *Config) {
			cfg.Actuator.Mode = "http"
			cfg.Actuator.Endpoint = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_ProductionRequiresRealCredentials(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.App.Mode = "production"
	assert.Error(t, cfg.Validate())

	cfg.API.JWTSecret = "a-real-secret"
	cfg.API.AdminPassword = "a-real-password"
	assert.NoError(t, cfg.Validate())
}
