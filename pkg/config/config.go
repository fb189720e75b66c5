package config

import "time"

type Config struct {
	App         AppConfig         `mapstructure:"app"`
	API         APIConfig         `mapstructure:"api"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry"`
	Detector    DetectorConfig    `mapstructure:"detector"`
	Monitor     MonitorConfig     `mapstructure:"monitor"`
	Remediation RemediationConfig `mapstructure:"remediation"`
	Actuator    ActuatorConfig    `mapstructure:"actuator"`
	Policies    PoliciesConfig    `mapstructure:"policies"`
	Events      EventsConfig      `mapstructure:"events"`
	WebSocket   WebSocketConfig   `mapstructure:"websocket"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	Mode     string `mapstructure:"mode"`
	LogLevel string `mapstructure:"log_level"`
}

type APIConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	JWTSecret      string        `mapstructure:"jwt_secret"`
	TokenExpiry    time.Duration `mapstructure:"token_expiry"`
	AdminUser      string        `mapstructure:"admin_user"`
	AdminPassword  string        `mapstructure:"admin_password"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
}

type DatabaseConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	SSLMode        string `mapstructure:"ssl_mode"`
}

type TelemetryConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type DetectorConfig struct {
	Method        string  `mapstructure:"method"`
	WindowSize    int     `mapstructure:"window_size"`
	Sensitivity   float64 `mapstructure:"sensitivity"`
	NumTrees      int     `mapstructure:"num_trees"`
	SubsampleSize int     `mapstructure:"subsample_size"`
	TrainSamples  int     `mapstructure:"train_samples"`
	ScoreCutoff   float64 `mapstructure:"score_cutoff"`
}

type TargetConfig struct {
	Service string `mapstructure:"service"`
	Metric  string `mapstructure:"metric"`
	Query   string `mapstructure:"query"`
}

type MonitorConfig struct {
	Interval time.Duration  `mapstructure:"interval"`
	History  int            `mapstructure:"history"`
	Targets  []TargetConfig `mapstructure:"targets"`
}

type RemediationConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

type ActuatorConfig struct {
	Mode     string        `mapstructure:"mode"`
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type PoliciesConfig struct {
	File string `mapstructure:"file"`
}

type EventsConfig struct {
	BufferSize int `mapstructure:"buffer_size"`
}

type WebSocketConfig struct {
	SeenLimit int `mapstructure:"seen_limit"`
}
