// Package config provides configuration loading and validation for Sluice.
//
// Configuration is read from a YAML file, filled in with defaults, optionally
// overridden from SLUICE_* environment variables, and validated as a whole
// before use. Validation collects every problem instead of stopping at the
// first, so a broken file is reported completely in one pass.
//
// The Watcher reloads the file on change (debounced) and hands the new,
// validated configuration to a callback; a file that fails to load or
// validate is logged and ignored, keeping the previous configuration active.
package config
