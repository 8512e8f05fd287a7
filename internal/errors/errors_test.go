package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil error", err: nil, expected: ""},
		{name: "simple error", err: errors.New("document changed"), expected: "Error: document changed"},
		{
			name:     "wrapped error",
			err:      fmt.Errorf("failed to save state: %w", errors.New("conflict")),
			expected: "Error: failed to save state: conflict",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.err); got != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, got, tt.expected)
			}
		})
	}
}

func TestFatalNil(t *testing.T) {
	// Must return without exiting
	Fatal(nil)
}
