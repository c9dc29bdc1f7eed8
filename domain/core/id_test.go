package core

import (
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestDeriveModelID tests the deterministic model id derivation
func TestDeriveModelID(t *testing.T) {
	tests := []struct {
		fileRef  FileRef
		target   string
		expected ModelID
	}{
		{"upload_abc123.csv", "Churn", "upload_abc123_Churn"},
		{"upload_abc123.xlsx", "Churn", "upload_abc123_Churn"},
		{"noext", "y", "noext_y"},
	}

	for _, test := range tests {
		got := DeriveModelID(test.fileRef, test.target)
		if got != test.expected {
			t.Errorf("DeriveModelID(%q, %q) = %q, want %q", test.fileRef, test.target, got, test.expected)
		}
	}

	// Same inputs must always derive the same id.
	a := DeriveModelID("data.csv", "Churn")
	b := DeriveModelID("data.csv", "Churn")
	if a != b {
		t.Errorf("derivation is not deterministic: %q vs %q", a, b)
	}
}

// TestParseFileRef tests file reference validation
func TestParseFileRef(t *testing.T) {
	tests := []struct {
		input    string
		hasError bool
	}{
		{"prediction_123.csv", false},
		{"", true},
		{"   ", true},
		{"../escape.csv", true},
		{"dir/file.csv", true},
	}

	for _, test := range tests {
		_, err := ParseFileRef(test.input)
		if test.hasError && err == nil {
			t.Errorf("Expected error for input %q, but got none", test.input)
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input %q: %v", test.input, err)
		}
	}
}
