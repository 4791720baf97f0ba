package core

import "testing"

// TestExecutionHistory_RecentMostRecentFirst verifies recent() returns
// records newest-first.
func TestExecutionHistory_RecentMostRecentFirst(t *testing.T) {
	// Arrange
	h := newExecutionHistory(10)
	for i := 0; i < 3; i++ {
		h.add(TaskExecutionRecord{Name: string(rune('a' + i))})
	}

	// Act
	records := h.recent(0)

	// Assert
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}
	if records[0].Name != "c" || records[1].Name != "b" || records[2].Name != "a" {
		t.Fatalf("records not newest-first: %v", records)
	}
}

// TestExecutionHistory_WrapsAtCapacity verifies the ring buffer discards the
// oldest records once capacity is exceeded.
func TestExecutionHistory_WrapsAtCapacity(t *testing.T) {
	// Arrange
	h := newExecutionHistory(2)

	// Act
	h.add(TaskExecutionRecord{Name: "a"})
	h.add(TaskExecutionRecord{Name: "b"})
	h.add(TaskExecutionRecord{Name: "c"})
	records := h.recent(0)

	// Assert
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if records[0].Name != "c" || records[1].Name != "b" {
		t.Fatalf("records = %v, want [c b]", records)
	}
}

// TestExecutionHistory_LimitCapsResults verifies a positive limit caps the
// number of records returned.
func TestExecutionHistory_LimitCapsResults(t *testing.T) {
	// Arrange
	h := newExecutionHistory(10)
	for i := 0; i < 5; i++ {
		h.add(TaskExecutionRecord{})
	}

	// Act
	records := h.recent(2)

	// Assert
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
}

// TestExecutionHistory_ZeroCapacityDiscardsEverything verifies a
// zero-capacity history never retains records.
func TestExecutionHistory_ZeroCapacityDiscardsEverything(t *testing.T) {
	// Arrange
	h := newExecutionHistory(0)

	// Act
	h.add(TaskExecutionRecord{Name: "a"})
	records := h.recent(0)

	// Assert
	if records != nil {
		t.Fatalf("records = %v, want nil", records)
	}
}
