package errors

import (
	"errors"
	"testing"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		msg      string
		expected string
	}{
		{
			name:     "wrap nil error",
			err:      nil,
			msg:      "additional context",
			expected: "",
		},
		{
			name:     "wrap standard error",
			err:      errors.New("original error"),
			msg:      "additional context",
			expected: "additional context: original error",
		},
		{
			name:     "wrap sentinel",
			err:      ErrRemoteMetadata,
			msg:      "probing index",
			expected: "probing index: failed to read remote metadata",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Wrap(tt.err, tt.msg)
			if tt.err == nil {
				if result != nil {
					t.Errorf("Expected nil, got %v", result)
				}
				return
			}
			if result.Error() != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result.Error())
			}
			if !errors.Is(result, tt.err) {
				t.Errorf("Expected wrapped error to contain original error")
			}
		})
	}
}

func TestWrapf(t *testing.T) {
	err := errors.New("boom")
	wrapped := Wrapf(err, "fetching %s", "index.0.xz")
	if wrapped.Error() != "fetching index.0.xz: boom" {
		t.Errorf("unexpected message: %q", wrapped.Error())
	}
	if !errors.Is(wrapped, err) {
		t.Errorf("Expected wrapped error to contain original error")
	}
	if Wrapf(nil, "fetching %s", "x") != nil {
		t.Errorf("Expected nil for nil error")
	}
}
