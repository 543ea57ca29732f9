package models

import (
	"strings"
)

// Format selects the container the caller wants back.
type Format string

const (
	FormatMP4 Format = "mp4"
	FormatMP3 Format = "mp3"

	DefaultFormat = FormatMP4
)

// ParseFormat normalises a user supplied format. An empty value selects mp4.
func ParseFormat(raw string) (Format, bool) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return DefaultFormat, true
	case FormatMP4, FormatMP3:
		return f, true
	default:
		return "", false
	}
}

// MimeType is the Content-Type sent with a finished download.
func (f Format) MimeType() string {
	if f == FormatMP3 {
		return "audio/mpeg"
	}
	return "video/mp4"
}

// Extension is the file extension without the leading dot.
func (f Format) Extension() string {
	return string(f)
}

type InfoRequest struct {
	URL string `json:"url" binding:"required,mediaurl" example:"https://www.youtube.com/watch?v=dQw4w9WgXcQ"`
}

type DownloadRequest struct {
	URL    string `json:"url" binding:"required,mediaurl" example:"https://www.youtube.com/watch?v=dQw4w9WgXcQ"`
	Format string `json:"format,omitempty" example:"mp4" enums:"mp4,mp3"`
}

type MediaInfoResponse struct {
	Title       string  `json:"title"`
	Thumbnail   string  `json:"thumbnail"`
	Duration    float64 `json:"duration"`
	Uploader    string  `json:"uploader"`
	ViewCount   int64   `json:"view_count"`
	UploadDate  string  `json:"upload_date"`
	Description string  `json:"description"`
	ID          string  `json:"id"`
	WebpageURL  string  `json:"webpage_url"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Engine    string `json:"engine"`
	Timestamp string `json:"timestamp"`
}

type ReadinessResponse struct {
	Ready     bool                   `json:"ready"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
}

type CheckResult struct {
	Ready bool   `json:"ready"`
	Error string `json:"error,omitempty"`
}

type DirectoryResponse struct {
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
	Note      string            `json:"note"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}
