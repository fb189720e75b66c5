package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/sentinel")
	}

	v.SetEnvPrefix("SENTINEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "sentinel")
	v.SetDefault("app.mode", "development")
	v.SetDefault("app.log_level", "info")

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.jwt_secret", "change-me-in-production")
	v.SetDefault("api.token_expiry", "24h")
	v.SetDefault("api.admin_user", "admin")
	v.SetDefault("api.admin_password", "admin")
	v.SetDefault("api.rate_limit_rps", 50.0)
	v.SetDefault("api.rate_limit_burst", 100)

	// Database defaults (persistence is optional)
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "sentinel")
	v.SetDefault("database.user", "sentinel")
	v.SetDefault("database.password", "sentinel")
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.ssl_mode", "disable")

	// Telemetry defaults
	v.SetDefault("telemetry.endpoint", "http://localhost:9090")
	v.SetDefault("telemetry.timeout", "5s")

	// Detector defaults
	v.SetDefault("detector.method", "statistical")
	v.SetDefault("detector.window_size", 20)
	v.SetDefault("detector.sensitivity", 2.5)
	v.SetDefault("detector.num_trees", 100)
	v.SetDefault("detector.subsample_size", 64)
	v.SetDefault("detector.train_samples", 50)
	v.SetDefault("detector.score_cutoff", 0.6)

	// Monitor defaults
	v.SetDefault("monitor.interval", "30s")
	v.SetDefault("monitor.history", 100)
	v.SetDefault("monitor.targets", defaultTargets())

	// Remediation defaults
	v.SetDefault("remediation.enabled", true)
	v.SetDefault("remediation.interval", "30s")

	// Actuator defaults
	v.SetDefault("actuator.mode", "sim")
	v.SetDefault("actuator.endpoint", "http://localhost:9000")
	v.SetDefault("actuator.timeout", "10s")

	// Policy defaults
	v.SetDefault("policies.file", "configs/policies.yaml")

	// Event bus defaults
	v.SetDefault("events.buffer_size", 100)

	// WebSocket defaults
	v.SetDefault("websocket.seen_limit", 1000)
}

func defaultTargets() []map[string]interface{} {
	services := []string{"orders", "users", "payments"}

	queries := map[string]string{
		"latency":    `histogram_quantile(0.95, sum(rate(http_request_duration_seconds_bucket{service="%s"}[1m])) by (le)) * 1000`,
		"error_rate": `sum(rate(http_requests_total{service="%s",status=~"5.."}[1m])) / sum(rate(http_requests_total{service="%s"}[1m]))`,
		"cpu_usage":  `avg(rate(container_cpu_usage_seconds_total{service="%s"}[1m])) * 100`,
	}

	var targets []map[string]interface{}
	for _, service := range services {
		for _, metric := range []string{"latency", "error_rate", "cpu_usage"} {
			query := queries[metric]
			query = strings.ReplaceAll(query, "%s", service)
			targets = append(targets, map[string]interface{}{
				"service": service,
				"metric":  metric,
				"query":   query,
			})
		}
	}
	return targets
}
