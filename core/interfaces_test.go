package core

import "testing"

// TestDefaultPoolConfig_NonNilCollaborators verifies every collaborator
// field has a usable default, so a zero-value PoolConfig never reaches a nil
// Logger/Metrics/PanicHandler/RejectedTaskHandler at runtime.
func TestDefaultPoolConfig_NonNilCollaborators(t *testing.T) {
	// Act
	cfg := DefaultPoolConfig()

	// Assert
	if cfg.Logger == nil || cfg.Metrics == nil || cfg.PanicHandler == nil || cfg.RejectedTaskHandler == nil {
		t.Fatalf("DefaultPoolConfig() left a nil collaborator: %+v", cfg)
	}
	if cfg.Workers < 1 {
		t.Fatalf("Workers = %d, want >= 1", cfg.Workers)
	}
	if cfg.IdlePollInterval <= 0 {
		t.Fatalf("IdlePollInterval = %v, want > 0", cfg.IdlePollInterval)
	}
}

// TestApplyDefaults_PreservesExplicitValues verifies applyDefaults only
// fills zero-valued fields, leaving explicitly set ones untouched.
func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	// Arrange
	cfg := &PoolConfig{Workers: 16, Logger: NewNoOpLogger()}

	// Act
	cfg.applyDefaults()

	// Assert
	if cfg.Workers != 16 {
		t.Fatalf("Workers = %d, want 16", cfg.Workers)
	}
	if _, ok := cfg.Logger.(*NoOpLogger); !ok {
		t.Fatalf("Logger = %T, want *NoOpLogger", cfg.Logger)
	}
	if cfg.Metrics == nil {
		t.Fatal("applyDefaults left Metrics nil")
	}
}

// TestNilMetrics_SafeNoOp verifies every NilMetrics method is callable
// without panicking, since it's the zero-configuration default.
func TestNilMetrics_SafeNoOp(t *testing.T) {
	// Arrange
	var m NilMetrics

	// Act & Assert (no panic)
	m.RecordTaskDuration(PriorityHigh, 0)
	m.RecordTaskPanic(nil)
	m.RecordQueueDepth("global", 0)
	m.RecordTaskRejected("reason")
	m.RecordSteal()
}
