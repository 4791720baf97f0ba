package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestLoadPoolConfigFromEnv_ReadsTaggedFields verifies environment variables
// matching PoolConfig's env tags populate the returned config.
func TestLoadPoolConfigFromEnv_ReadsTaggedFields(t *testing.T) {
	// Arrange
	t.Setenv("THREADPOOL_WORKERS", "6")
	t.Setenv("THREADPOOL_HISTORY_CAPACITY", "250")

	// Act
	cfg, err := LoadPoolConfigFromEnv("")

	// Assert
	if err != nil {
		t.Fatalf("LoadPoolConfigFromEnv() err = %v, want nil", err)
	}
	if cfg.Workers != 6 {
		t.Fatalf("Workers = %d, want 6", cfg.Workers)
	}
	if cfg.HistoryCapacity != 250 {
		t.Fatalf("HistoryCapacity = %d, want 250", cfg.HistoryCapacity)
	}
	if cfg.Logger == nil {
		t.Fatal("applyDefaults did not fill Logger")
	}
}

// TestLoadPoolConfigFromEnv_MissingEnvFile verifies an explicit but absent
// env file path is reported as an error rather than silently ignored.
func TestLoadPoolConfigFromEnv_MissingEnvFile(t *testing.T) {
	// Act
	_, err := LoadPoolConfigFromEnv(filepath.Join(t.TempDir(), "does-not-exist.env"))

	// Assert
	if err == nil {
		t.Fatal("LoadPoolConfigFromEnv() err = nil, want an error for a missing env file")
	}
}

// TestLoadPoolConfigFromYAML_ReadsFile verifies a YAML file's fields
// populate the returned config.
func TestLoadPoolConfigFromYAML_ReadsFile(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	path := filepath.Join(dir, "pool.yaml")
	writeFile(t, path, "workers: 12\nhistoryCapacity: 40\nidlePollInterval: 5ms\n")

	// Act
	cfg, err := LoadPoolConfigFromYAML(path)

	// Assert
	if err != nil {
		t.Fatalf("LoadPoolConfigFromYAML() err = %v, want nil", err)
	}
	if cfg.Workers != 12 {
		t.Fatalf("Workers = %d, want 12", cfg.Workers)
	}
	if cfg.HistoryCapacity != 40 {
		t.Fatalf("HistoryCapacity = %d, want 40", cfg.HistoryCapacity)
	}
	if cfg.IdlePollInterval != 5*time.Millisecond {
		t.Fatalf("IdlePollInterval = %v, want 5ms", cfg.IdlePollInterval)
	}
}

// TestLoadPoolConfigFromYAML_MissingFile verifies a missing file path
// surfaces a wrapped error instead of a nil config.
func TestLoadPoolConfigFromYAML_MissingFile(t *testing.T) {
	// Act
	_, err := LoadPoolConfigFromYAML(filepath.Join(t.TempDir(), "missing.yaml"))

	// Assert
	if err == nil {
		t.Fatal("LoadPoolConfigFromYAML() err = nil, want an error for a missing file")
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing test fixture %s: %v", path, err)
	}
}
