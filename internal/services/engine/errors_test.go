package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		name        string
		diagnostics string
		expected    ErrorKind
	}{
		{
			name:        "private video",
			diagnostics: "ERROR: [youtube] abc: Private video. Sign in if you've been granted access to this video",
			expected:    KindPrivate,
		},
		{
			name:        "http 403",
			diagnostics: "ERROR: unable to download video data: HTTP Error 403: Forbidden",
			expected:    KindForbidden,
		},
		{
			name:        "blocked",
			diagnostics: "ERROR: The uploader has not made this video available in your country; blocked",
			expected:    KindForbidden,
		},
		{
			name:        "bot check",
			diagnostics: "ERROR: [youtube] abc: Sign in to confirm you're not a bot",
			expected:    KindForbidden,
		},
		{
			name:        "unavailable",
			diagnostics: "ERROR: [youtube] abc: Video unavailable",
			expected:    KindNotFound,
		},
		{
			name:        "unsupported",
			diagnostics: "ERROR: Unsupported URL: https://example.com/",
			expected:    KindUnsupported,
		},
		{
			name:        "anything else",
			diagnostics: "ERROR: Postprocessing: ffmpeg not found",
			expected:    KindFailed,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Classify(errors.New("exit status 1"), tc.diagnostics)
			require.NotNil(t, err)
			assert.Equal(t, tc.expected, err.Kind)
			assert.Equal(t, tc.diagnostics, err.Message)
		})
	}
}

func TestClassifyUsesErrorText(t *testing.T) {
	err := Classify(errors.New("can't bypass age restriction: video is private"), "")
	assert.Equal(t, KindPrivate, err.Kind)
	assert.Equal(t, "can't bypass age restriction: video is private", err.Message)
}

func TestClassifyKeepsEngineErrors(t *testing.T) {
	original := &Error{Kind: KindNotFound, Message: "gone"}
	wrapped := fmt.Errorf("context: %w", original)

	assert.Same(t, original, Classify(wrapped, "HTTP Error 403"))
	assert.Nil(t, Classify(nil, "anything"))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(ErrNoInfo))
	assert.Equal(t, KindForbidden, KindOf(fmt.Errorf("wrap: %w", &Error{Kind: KindForbidden})))
	assert.Equal(t, KindFailed, KindOf(errors.New("plain")))
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("exit status 1")
	err := Classify(cause, "HTTP Error 404: Not Found")
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "not_found")
}
