package config

import (
	"time"

	"sluice-hq/sluice/pkg/limits"
)

// Config is the root configuration structure for Sluice.
type Config struct {
	// Server contains HTTP gateway server configuration.
	Server ServerConfig `yaml:"server"`

	// Limits contains the rate limit profiles and key extraction settings.
	Limits LimitsConfig `yaml:"limits"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP gateway server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port". Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out response
	// writes. Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout. Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown. Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LimitsConfig contains rate limiting configuration.
type LimitsConfig struct {
	// KeyHeader is the request header holding the client key. Requests
	// without the header fall back to the client address.
	// Default: "X-Api-Key"
	KeyHeader string `yaml:"key_header"`

	// DefaultProfile names the profile applied to requests. It must exist
	// in Profiles. Default: "standard"
	DefaultProfile string `yaml:"default_profile"`

	// Profiles maps profile names to bucket parameters.
	Profiles map[string]ProfileConfig `yaml:"profiles"`

	// Sweep configures removal of idle per-key buckets.
	Sweep SweepConfig `yaml:"sweep"`
}

// ProfileConfig contains the token bucket parameters of one profile.
type ProfileConfig struct {
	// Capacity is the maximum number of tokens the bucket holds. Must be
	// greater than zero.
	Capacity int64 `yaml:"capacity"`

	// Quantum is the number of tokens added per fill interval. Must be
	// greater than zero.
	Quantum int64 `yaml:"quantum"`

	// FillInterval is the duration of one refill tick. Must be at least
	// one second.
	FillInterval time.Duration `yaml:"fill_interval"`
}

// SweepConfig contains idle bucket sweep configuration.
type SweepConfig struct {
	// Schedule is a cron expression (or "@every ..." descriptor) for the
	// sweep. Empty disables sweeping. Default: "@every 5m"
	Schedule string `yaml:"schedule"`

	// IdleTTL is how long a bucket may go unused before it is removed.
	// Default: 30m
	IdleTTL time.Duration `yaml:"idle_ttl"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging configures the structured logger.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format: json or text. Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Disabled turns off the metrics endpoint. Metrics are served by
	// default.
	Disabled bool `yaml:"disabled"`

	// Path is the metrics endpoint path. Default: "/metrics"
	Path string `yaml:"path"`
}

// ProfileSet converts the configured profiles into the limits package's
// representation.
func (c LimitsConfig) ProfileSet() map[string]limits.Profile {
	set := make(map[string]limits.Profile, len(c.Profiles))
	for name, p := range c.Profiles {
		set[name] = limits.Profile{
			Capacity:     p.Capacity,
			Quantum:      p.Quantum,
			FillInterval: p.FillInterval,
		}
	}
	return set
}
