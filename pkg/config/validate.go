package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"

	"sluice-hq/sluice/pkg/ratelimit"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field
	// (e.g. "limits.profiles.standard.capacity").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a
// configuration. It implements the error interface and provides access to
// all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any rules fail. All errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateLimits(&cfg.Limits)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "must not be empty",
		})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.shutdown_timeout",
			Message: "must not be negative",
		})
	}

	return errs
}

func validateLimits(cfg *LimitsConfig) []FieldError {
	var errs []FieldError

	if len(cfg.Profiles) == 0 {
		errs = append(errs, FieldError{
			Field:   "limits.profiles",
			Message: "at least one profile must be configured",
		})
	}

	for name, p := range cfg.Profiles {
		prefix := "limits.profiles." + name
		if p.Capacity <= 0 {
			errs = append(errs, FieldError{
				Field:   prefix + ".capacity",
				Message: "must be greater than zero",
			})
		}
		if p.Quantum <= 0 {
			errs = append(errs, FieldError{
				Field:   prefix + ".quantum",
				Message: "must be greater than zero",
			})
		}
		if p.FillInterval < ratelimit.MinFillInterval {
			errs = append(errs, FieldError{
				Field:   prefix + ".fill_interval",
				Message: fmt.Sprintf("must be at least %s", ratelimit.MinFillInterval),
			})
		}
	}

	if cfg.DefaultProfile != "" {
		if _, ok := cfg.Profiles[cfg.DefaultProfile]; !ok {
			errs = append(errs, FieldError{
				Field:   "limits.default_profile",
				Message: fmt.Sprintf("profile %q is not configured", cfg.DefaultProfile),
			})
		}
	}

	if cfg.Sweep.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Sweep.Schedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "limits.sweep.schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
		if cfg.Sweep.IdleTTL <= 0 {
			errs = append(errs, FieldError{
				Field:   "limits.sweep.idle_ttl",
				Message: "must be greater than zero when sweeping is enabled",
			})
		}
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("unknown level %q (expected debug, info, warn, or error)", cfg.Logging.Level),
		})
	}

	switch cfg.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("unknown format %q (expected json or text)", cfg.Logging.Format),
		})
	}

	if !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "must start with /",
		})
	}

	return errs
}
