package engine

import (
	"context"

	"github.com/denisAlshanov/mediagrab/internal/models"
)

// Engine is the media extraction backend. Implementations locate the media,
// download it and transcode it into the requested container.
type Engine interface {
	// Name identifies the backend in logs and health output
	Name() string

	// ExtractInfo retrieves metadata without downloading the media
	ExtractInfo(ctx context.Context, url string) (*MediaInfo, error)

	// Download writes the transcoded media into req.OutputDir
	Download(ctx context.Context, req DownloadRequest) (*DownloadResult, error)

	// Check reports whether the backend's executables are usable
	Check(ctx context.Context) error
}

// MediaInfo contains descriptive metadata reported by the engine
type MediaInfo struct {
	ID          string
	Title       string
	Thumbnail   string
	Duration    float64
	Uploader    string
	ViewCount   int64
	UploadDate  string
	Description string
	WebpageURL  string
}

type DownloadRequest struct {
	URL       string
	Format    models.Format
	OutputDir string
}

type DownloadResult struct {
	Path string
	Info *MediaInfo
}
