package config

import (
	"errors"
	"fmt"
)

func (c *Config) Validate() error {
	var errs []error

	// App validation
	if c.App.Name == "" {
		errs = append(errs, errors.New("app.name is required"))
	}

	validModes := map[string]bool{"development": true, "production": true, "test": true}
	if !validModes[c.App.Mode] {
		errs = append(errs, fmt.Errorf("app.mode must be one of: development, production, test"))
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.App.LogLevel] {
		errs = append(errs, fmt.Errorf("app.log_level must be one of: debug, info, warn, error"))
	}

	// API validation
	if c.API.Port <= 0 || c.API.Port > 65535 {
		errs = append(errs, errors.New("api.port must be between 1 and 65535"))
	}
	if c.App.Mode == "production" && c.API.JWTSecret == "change-me-in-production" {
		errs = append(errs, errors.New("api.jwt_secret must be changed in production"))
	}
	if c.App.Mode == "production" && c.API.AdminPassword == "admin" {
		errs = append(errs, errors.New("api.admin_password must be changed in production"))
	}

	// Database validation only matters when persistence is on
	if c.Database.Enabled {
		if c.Database.Host == "" {
			errs = append(errs, errors.New("database.host is required"))
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, errors.New("database.port must be between 1 and 65535"))
		}
		if c.Database.Name == "" {
			errs = append(errs, errors.New("database.name is required"))
		}
		if c.Database.MaxConnections <= 0 {
			errs = append(errs, errors.New("database.max_connections must be positive"))
		}
	}

	// Telemetry validation
	if c.Telemetry.Endpoint == "" {
		errs = append(errs, errors.New("telemetry.endpoint is required"))
	}
	if c.Telemetry.Timeout <= 0 {
		errs = append(errs, errors.New("telemetry.timeout must be positive"))
	}

	// Detector validation
	switch c.Detector.Method {
	case "statistical", "isolation_forest":
	default:
		errs = append(errs, fmt.Errorf("detector.method must be statistical or isolation_forest"))
	}
	if c.Detector.WindowSize <= 0 {
		errs = append(errs, errors.New("detector.window_size must be positive"))
	}
	if c.Detector.Sensitivity <= 0 {
		errs = append(errs, errors.New("detector.sensitivity must be positive"))
	}
	if c.Detector.ScoreCutoff <= 0 || c.Detector.ScoreCutoff >= 1 {
		errs = append(errs, errors.New("detector.score_cutoff must be between 0 and 1"))
	}

	// Monitor validation
	if c.Monitor.Interval <= 0 {
		errs = append(errs, errors.New("monitor.interval must be positive"))
	}
	if c.Telemetry.Timeout >= c.Monitor.Interval {
		errs = append(errs, errors.New("telemetry.timeout must be less than monitor.interval"))
	}
	if len(c.Monitor.Targets) == 0 {
		errs = append(errs, errors.New("monitor.targets must not be empty"))
	}
	for i, t := range c.Monitor.Targets {
		if t.Service == "" || t.Metric == "" || t.Query == "" {
			errs = append(errs, fmt.Errorf("monitor.targets[%d] requires service, metric and query", i))
		}
	}

	// Remediation validation
	if c.Remediation.Interval <= 0 {
		errs = append(errs, errors.New("remediation.interval must be positive"))
	}

	// Actuator validation
	switch c.Actuator.Mode {
	case "sim", "http":
	default:
		errs = append(errs, fmt.Errorf("actuator.mode must be sim or http"))
	}
	if c.Actuator.Mode == "http" && c.Actuator.Endpoint == "" {
		errs = append(errs, errors.New("actuator.endpoint is required when actuator.mode is http"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}
