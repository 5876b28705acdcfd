package config

import "time"

// Default values applied to unset configuration fields.
const (
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultKeyHeader      = "X-Api-Key"
	DefaultProfileName    = "standard"
	DefaultSweepSchedule  = "@every 5m"
	DefaultSweepIdleTTL   = 30 * time.Minute

	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"
	DefaultMetricsPath = "/metrics"
)

// DefaultProfile is the bucket profile installed when no profiles are
// configured: 100 tokens per second with bursts up to 1000.
var DefaultProfile = ProfileConfig{
	Capacity:     1000,
	Quantum:      100,
	FillInterval: time.Second,
}

// ApplyDefaults fills unset fields of cfg with default values. It is called
// by LoadConfig after parsing and before validation.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	if cfg.Limits.KeyHeader == "" {
		cfg.Limits.KeyHeader = DefaultKeyHeader
	}
	if len(cfg.Limits.Profiles) == 0 {
		cfg.Limits.Profiles = map[string]ProfileConfig{
			DefaultProfileName: DefaultProfile,
		}
	}
	if cfg.Limits.DefaultProfile == "" {
		cfg.Limits.DefaultProfile = DefaultProfileName
	}
	if cfg.Limits.Sweep.Schedule == "" && cfg.Limits.Sweep.IdleTTL == 0 {
		cfg.Limits.Sweep.Schedule = DefaultSweepSchedule
	}
	if cfg.Limits.Sweep.IdleTTL == 0 {
		cfg.Limits.Sweep.IdleTTL = DefaultSweepIdleTTL
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
}
