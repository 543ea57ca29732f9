package utils

import (
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrorCodeValidationError   ErrorCode = "VALIDATION_ERROR"
	ErrorCodeMissingURL        ErrorCode = "MISSING_URL"
	ErrorCodeInvalidURL        ErrorCode = "INVALID_URL"
	ErrorCodeInvalidFormat     ErrorCode = "INVALID_FORMAT"
	ErrorCodeUnsupportedURL    ErrorCode = "UNSUPPORTED_URL"
	ErrorCodePrivateContent    ErrorCode = "PRIVATE_CONTENT"
	ErrorCodeAccessDenied      ErrorCode = "ACCESS_DENIED"
	ErrorCodeMediaNotFound     ErrorCode = "MEDIA_NOT_FOUND"
	ErrorCodeFileTooLarge      ErrorCode = "FILE_TOO_LARGE"
	ErrorCodeRequestTooLarge   ErrorCode = "REQUEST_TOO_LARGE"
	ErrorCodeExtractionFailed  ErrorCode = "EXTRACTION_FAILED"
	ErrorCodeDownloadFailed    ErrorCode = "DOWNLOAD_FAILED"
	ErrorCodeEndpointNotFound  ErrorCode = "ENDPOINT_NOT_FOUND"
	ErrorCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrorCodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrorCodeInternalError     ErrorCode = "INTERNAL_ERROR"
)

type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	StatusCode int                    `json:"-"`
	Err        error                  `json:"-"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewError(code ErrorCode, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    make(map[string]interface{}),
	}
}

func NewErrorWithDetails(code ErrorCode, message string, statusCode int, details map[string]interface{}) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	}
}

// WithCause keeps the underlying error for logging; it never reaches the client.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// Common error constructors
func NewValidationError(message string, details map[string]interface{}) *AppError {
	return NewErrorWithDetails(ErrorCodeValidationError, message, http.StatusBadRequest, details)
}

func NewMissingURLError() *AppError {
	return NewError(ErrorCodeMissingURL, "URL is required", http.StatusBadRequest)
}

func NewInvalidURLError() *AppError {
	return NewError(ErrorCodeInvalidURL, "Invalid URL format", http.StatusBadRequest)
}

func NewInvalidFormatError(format string) *AppError {
	return NewErrorWithDetails(
		ErrorCodeInvalidFormat,
		"Format must be mp4 or mp3",
		http.StatusBadRequest,
		map[string]interface{}{
			"provided": format,
		},
	)
}

func NewUnsupportedURLError() *AppError {
	return NewError(ErrorCodeUnsupportedURL, "This URL is not supported", http.StatusBadRequest)
}

func NewPrivateContentError() *AppError {
	return NewError(ErrorCodePrivateContent, "This video is private and cannot be accessed", http.StatusUnauthorized)
}

func NewAccessDeniedError() *AppError {
	return NewError(ErrorCodeAccessDenied, "The source denied access to this media from this server", http.StatusForbidden)
}

func NewMediaNotFoundError(message string) *AppError {
	return NewError(ErrorCodeMediaNotFound, message, http.StatusNotFound)
}

func NewFileTooLargeError(size int64) *AppError {
	return NewErrorWithDetails(
		ErrorCodeFileTooLarge,
		fmt.Sprintf("File too large (%.1fMB)", float64(size)/1024/1024),
		http.StatusRequestEntityTooLarge,
		map[string]interface{}{
			"size_bytes": size,
		},
	)
}

func NewRequestTooLargeError() *AppError {
	return NewError(ErrorCodeRequestTooLarge, "Request too large", http.StatusRequestEntityTooLarge)
}

func NewExtractionError(err error) *AppError {
	return NewError(
		ErrorCodeExtractionFailed,
		"Failed to retrieve media information",
		http.StatusInternalServerError,
	).WithCause(err)
}

func NewDownloadError(err error) *AppError {
	return NewError(
		ErrorCodeDownloadFailed,
		"Failed to download media",
		http.StatusInternalServerError,
	).WithCause(err)
}

func NewEndpointNotFoundError() *AppError {
	return NewError(ErrorCodeEndpointNotFound, "Endpoint not found", http.StatusNotFound)
}

func NewUnauthorizedError() *AppError {
	return NewError(
		ErrorCodeUnauthorized,
		"Invalid or missing authentication",
		http.StatusUnauthorized,
	)
}

func NewRateLimitError() *AppError {
	return NewError(
		ErrorCodeRateLimitExceeded,
		"Too many requests",
		http.StatusTooManyRequests,
	)
}

func NewInternalError() *AppError {
	return NewError(
		ErrorCodeInternalError,
		"Internal server error",
		http.StatusInternalServerError,
	)
}
