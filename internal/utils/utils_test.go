package utils

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestCleanFilename(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Plain title",
			input:    "My Video",
			expected: "My Video",
		},
		{
			name:     "Unsafe characters removed",
			input:    `a<b>c:d"e/f\g|h?i*j`,
			expected: "abcdefghij",
		},
		{
			name:     "Control characters removed",
			input:    "line\x00one\x1ftwo",
			expected: "lineonetwo",
		},
		{
			name:     "Whitespace collapsed",
			input:    "  lots \t of\n  space  ",
			expected: "lots of space",
		},
		{
			name:     "Empty title",
			input:    "",
			expected: "download",
		},
		{
			name:     "Only unsafe characters",
			input:    "???",
			expected: "download",
		},
		{
			name:     "Non ASCII kept",
			input:    "ویدیو تست",
			expected: "ویدیو تست",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanFilename(tc.input); got != tc.expected {
				t.Errorf("CleanFilename(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestCleanFilenameLength(t *testing.T) {
	got := CleanFilename(strings.Repeat("x", 250))
	if len([]rune(got)) != 100 {
		t.Errorf("Expected 100 characters, got %d", len([]rune(got)))
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 10); got != "hello" {
		t.Errorf("Expected untouched string, got %q", got)
	}
	if got := Truncate("hello", 2); got != "he" {
		t.Errorf("Expected 'he', got %q", got)
	}
	if got := Truncate("héllo", 2); got != "hé" {
		t.Errorf("Expected rune-safe truncation, got %q", got)
	}
	if got := Truncate("hello", 0); got != "" {
		t.Errorf("Expected empty string, got %q", got)
	}
}

func TestGenerateIDs(t *testing.T) {
	correlationID := GenerateCorrelationID()
	if correlationID == "" {
		t.Error("Expected non-empty correlation ID")
	}

	requestID := GenerateRequestID()
	if !strings.HasPrefix(requestID, "req_") {
		t.Errorf("Expected request ID to start with req_, got %s", requestID)
	}

	if correlationID == requestID {
		t.Error("Correlation ID and request ID should be different")
	}
}

func TestContextIDs(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "corr")
	ctx = WithRequestID(ctx, "req")

	if GetCorrelationID(ctx) != "corr" {
		t.Error("Expected correlation ID to round-trip through context")
	}
	if GetRequestID(ctx) != "req" {
		t.Error("Expected request ID to round-trip through context")
	}

	entry := LoggerFromContext(ctx)
	if entry.Data["correlation_id"] != "corr" || entry.Data["request_id"] != "req" {
		t.Errorf("Expected IDs in log fields, got %v", entry.Data)
	}
}

func TestAppErrors(t *testing.T) {
	cause := errors.New("boom")
	err := NewDownloadError(cause)

	if err.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", err.StatusCode)
	}
	if !errors.Is(err, cause) {
		t.Error("Expected AppError to unwrap to its cause")
	}
	if strings.Contains(err.Message, "boom") {
		t.Error("Cause must not leak into the client message")
	}

	tooLarge := NewFileTooLargeError(3 * 1024 * 1024)
	if tooLarge.Message != "File too large (3.0MB)" {
		t.Errorf("Unexpected message %q", tooLarge.Message)
	}
	if tooLarge.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected 413, got %d", tooLarge.StatusCode)
	}
}
