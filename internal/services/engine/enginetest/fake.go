// Package enginetest provides an in-memory engine.Engine for tests.
package enginetest

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/denisAlshanov/mediagrab/internal/models"
	"github.com/denisAlshanov/mediagrab/internal/services/engine"
)

// MP3Bytes starts with an ID3 tag so content sniffing reports audio/mpeg.
var MP3Bytes = append([]byte("ID3\x04\x00\x00\x00\x00\x00\x00"), make([]byte, 64)...)

// MP4Bytes is a minimal ftyp box recognised as video/mp4.
var MP4Bytes = append([]byte("\x00\x00\x00\x18ftypisom\x00\x00\x02\x00isomiso2"), make([]byte, 64)...)

// Fake is a configurable engine. Nil funcs fall back to canned successes.
type Fake struct {
	InfoFunc     func(ctx context.Context, url string) (*engine.MediaInfo, error)
	DownloadFunc func(ctx context.Context, req engine.DownloadRequest) (*engine.DownloadResult, error)
	CheckErr     error

	mu            sync.Mutex
	infoCalls     []string
	downloadCalls []engine.DownloadRequest
}

func (f *Fake) Name() string {
	return "fake"
}

func (f *Fake) Check(ctx context.Context) error {
	return f.CheckErr
}

func (f *Fake) ExtractInfo(ctx context.Context, url string) (*engine.MediaInfo, error) {
	f.mu.Lock()
	f.infoCalls = append(f.infoCalls, url)
	f.mu.Unlock()

	if f.InfoFunc != nil {
		return f.InfoFunc(ctx, url)
	}
	return SampleInfo(url), nil
}

func (f *Fake) Download(ctx context.Context, req engine.DownloadRequest) (*engine.DownloadResult, error) {
	f.mu.Lock()
	f.downloadCalls = append(f.downloadCalls, req)
	f.mu.Unlock()

	if f.DownloadFunc != nil {
		return f.DownloadFunc(ctx, req)
	}

	content := MP4Bytes
	if req.Format == models.FormatMP3 {
		content = MP3Bytes
	}
	path, err := WriteOutput(req, content)
	if err != nil {
		return nil, err
	}
	return &engine.DownloadResult{Path: path, Info: SampleInfo(req.URL)}, nil
}

// InfoCalls returns the URLs passed to ExtractInfo
func (f *Fake) InfoCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.infoCalls...)
}

// DownloadCalls returns the requests passed to Download
func (f *Fake) DownloadCalls() []engine.DownloadRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]engine.DownloadRequest(nil), f.downloadCalls...)
}

// WriteOutput writes content where a real engine would leave its result
func WriteOutput(req engine.DownloadRequest, content []byte) (string, error) {
	ext := req.Format.Extension()
	path := filepath.Join(req.OutputDir, "download_"+ext+"."+ext)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return "", err
	}
	return path, nil
}

// SampleInfo returns fully populated metadata
func SampleInfo(url string) *engine.MediaInfo {
	return &engine.MediaInfo{
		ID:          "dQw4w9WgXcQ",
		Title:       "Never Gonna Give You Up",
		Thumbnail:   "https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg",
		Duration:    212,
		Uploader:    "Rick Astley",
		ViewCount:   1500000000,
		UploadDate:  "20091025",
		Description: "The official video for Never Gonna Give You Up",
		WebpageURL:  url,
	}
}
