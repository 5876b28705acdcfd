package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateConfig_Valid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
limits:
  profiles:
    standard:
      capacity: 1000
      quantum: 100
      fill_interval: "1s"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	prev := cfgFile
	defer func() { cfgFile = prev }()
	cfgFile = path

	if err := validateConfig(validateCmd, nil); err != nil {
		t.Errorf("validateConfig() error = %v", err)
	}
}

func TestValidateConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
limits:
  profiles:
    broken:
      capacity: -1
      quantum: 0
      fill_interval: "10ms"
  default_profile: "broken"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	prev := cfgFile
	defer func() { cfgFile = prev }()
	cfgFile = path

	if err := validateConfig(validateCmd, nil); err == nil {
		t.Error("validateConfig() expected error for invalid config, got nil")
	}
}

func TestValidateConfig_MissingFile(t *testing.T) {
	prev := cfgFile
	defer func() { cfgFile = prev }()
	cfgFile = filepath.Join(t.TempDir(), "nope.yaml")

	if err := validateConfig(validateCmd, nil); err == nil {
		t.Error("validateConfig() expected error for missing file, got nil")
	}
}
