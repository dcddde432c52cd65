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

func TestIDIsEmpty(t *testing.T) {
	if !ID("").IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}
	if ID("not-empty").IsEmpty() {
		t.Error("Expected non-empty ID to not be empty")
	}
}

// TestParseReportID tests report ID parsing
func TestParseReportID(t *testing.T) {
	generated := NewReportID()

	tests := []struct {
		input    string
		hasError bool
	}{
		{generated.String(), false},
		{"", true},
		{"   ", true},
		{"not-a-uuid", true},
	}

	for _, tt := range tests {
		result, err := ParseReportID(tt.input)
		if tt.hasError {
			if err == nil {
				t.Errorf("ParseReportID(%q) expected error, got nil", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseReportID(%q) unexpected error: %v", tt.input, err)
		}
		if result != generated {
			t.Errorf("ParseReportID(%q) = %q, want %q", tt.input, result, generated)
		}
	}
}

func TestHash(t *testing.T) {
	h := NewHash([]byte("abc"))
	if want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"; h.String() != want {
		t.Errorf("NewHash(abc) = %s, want %s", h, want)
	}
	if h.Short() != "ba7816bf8f01" {
		t.Errorf("Short() = %s", h.Short())
	}
	if Hash("abc").Short() != "abc" {
		t.Error("Short() should keep hashes shorter than 12 characters")
	}
	if !Hash("").IsEmpty() {
		t.Error("empty hash should report IsEmpty")
	}
}
