package youtube

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"

	"github.com/denisAlshanov/mediagrab/internal/config"
	"github.com/denisAlshanov/mediagrab/internal/models"
	"github.com/denisAlshanov/mediagrab/internal/services/engine"
	"github.com/denisAlshanov/mediagrab/internal/utils"
)

var videoIDPattern = regexp.MustCompile(`(?:youtube\.com/(?:watch\?(?:.*&)?v=|embed/|v/|shorts/)|youtu\.be/)([a-zA-Z0-9_-]{11})`)

var youtubeHosts = map[string]bool{
	"youtube.com":       true,
	"www.youtube.com":   true,
	"m.youtube.com":     true,
	"music.youtube.com": true,
	"youtu.be":          true,
}

// Client is an engine.Engine that talks to YouTube directly and uses
// ffmpeg for muxing and transcoding. It only understands YouTube URLs.
type Client struct {
	client     *youtube.Client
	httpClient *http.Client
	ffmpegPath string
	mp3Bitrate string
}

// NewClient creates a new YouTube client
func NewClient(cfg *config.EngineConfig) *Client {
	httpClient := &http.Client{
		Timeout: cfg.SocketTimeout,
	}

	ytClient := &youtube.Client{
		HTTPClient: httpClient,
	}

	ffmpegPath := cfg.FFmpegPath
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}

	return &Client{
		client:     ytClient,
		httpClient: httpClient,
		ffmpegPath: ffmpegPath,
		mp3Bitrate: strings.TrimSuffix(strings.ToLower(cfg.MP3Quality), "k") + "k",
	}
}

func (c *Client) Name() string {
	return "youtube"
}

// Check verifies that ffmpeg is available for muxing
func (c *Client) Check(ctx context.Context) error {
	if _, err := exec.LookPath(c.ffmpegPath); err != nil {
		return fmt.Errorf("ffmpeg not found: %w", err)
	}
	return nil
}

// IsYouTubeURL checks if the provided URL points at YouTube
func (c *Client) IsYouTubeURL(rawURL string) bool {
	u, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return false
	}
	return youtubeHosts[strings.ToLower(u.Hostname())]
}

// ParseYouTubeURL extracts video ID from YouTube URL
func (c *Client) ParseYouTubeURL(rawURL string) (string, error) {
	if !c.IsYouTubeURL(rawURL) {
		return "", &engine.Error{Kind: engine.KindUnsupported, Message: "unsupported URL: not a YouTube link"}
	}

	matches := videoIDPattern.FindStringSubmatch(rawURL)
	if len(matches) > 1 {
		return matches[1], nil
	}

	return "", &engine.Error{Kind: engine.KindUnsupported, Message: "unsupported URL: no video ID found"}
}

// ExtractInfo retrieves video metadata
func (c *Client) ExtractInfo(ctx context.Context, rawURL string) (*engine.MediaInfo, error) {
	videoID, err := c.ParseYouTubeURL(rawURL)
	if err != nil {
		return nil, err
	}

	video, err := c.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, engine.Classify(fmt.Errorf("failed to get video info: %w", err), "")
	}

	return toMediaInfo(video), nil
}

// Download fetches the streams and converts them into the requested format
func (c *Client) Download(ctx context.Context, req engine.DownloadRequest) (*engine.DownloadResult, error) {
	videoID, err := c.ParseYouTubeURL(req.URL)
	if err != nil {
		return nil, err
	}

	video, err := c.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, engine.Classify(fmt.Errorf("failed to get video: %w", err), "")
	}

	audioFormat := c.getBestAudioFormat(video.Formats)
	if audioFormat == nil {
		return nil, &engine.Error{Kind: engine.KindFailed, Message: "no suitable audio format found"}
	}

	audioPath := filepath.Join(req.OutputDir, "audio.stream")
	if err := c.downloadStream(ctx, video, audioFormat, audioPath); err != nil {
		return nil, engine.Classify(fmt.Errorf("failed to download audio stream: %w", err), "")
	}

	outputPath := filepath.Join(req.OutputDir, "download_"+req.Format.Extension()+"."+req.Format.Extension())

	if req.Format == models.FormatMP3 {
		if err := c.transcodeAudio(ctx, audioPath, outputPath); err != nil {
			return nil, &engine.Error{Kind: engine.KindFailed, Message: "failed to transcode audio", Err: err}
		}
	} else {
		videoFormat := c.getBestVideoFormat(video.Formats)
		if videoFormat == nil {
			return nil, &engine.Error{Kind: engine.KindFailed, Message: "no suitable video format found"}
		}

		videoPath := filepath.Join(req.OutputDir, "video.stream")
		if err := c.downloadStream(ctx, video, videoFormat, videoPath); err != nil {
			return nil, engine.Classify(fmt.Errorf("failed to download video stream: %w", err), "")
		}

		if err := c.mergeVideoAudio(ctx, videoPath, audioPath, outputPath); err != nil {
			return nil, &engine.Error{Kind: engine.KindFailed, Message: "failed to merge video and audio", Err: err}
		}
		os.Remove(videoPath)
	}
	os.Remove(audioPath)

	return &engine.DownloadResult{
		Path: outputPath,
		Info: toMediaInfo(video),
	}, nil
}

func toMediaInfo(video *youtube.Video) *engine.MediaInfo {
	info := &engine.MediaInfo{
		ID:          video.ID,
		Title:       video.Title,
		Description: video.Description,
		Duration:    video.Duration.Seconds(),
		Uploader:    video.Author,
		ViewCount:   int64(video.Views),
		WebpageURL:  "https://www.youtube.com/watch?v=" + video.ID,
	}

	if !video.PublishDate.IsZero() {
		info.UploadDate = video.PublishDate.Format("20060102")
	}

	// Thumbnails are ordered smallest first
	if len(video.Thumbnails) > 0 {
		info.Thumbnail = video.Thumbnails[len(video.Thumbnails)-1].URL
	}

	return info
}

// getBestVideoFormat selects the highest resolution mp4 video-only format
func (c *Client) getBestVideoFormat(formats youtube.FormatList) *youtube.Format {
	var bestFormat *youtube.Format

	for i := range formats {
		format := &formats[i]
		if !strings.HasPrefix(format.MimeType, "video/mp4") || format.AudioChannels > 0 {
			continue
		}
		if bestFormat == nil || format.Height > bestFormat.Height ||
			(format.Height == bestFormat.Height && format.Bitrate > bestFormat.Bitrate) {
			bestFormat = format
		}
	}

	// Fallback to any video-only format
	if bestFormat == nil {
		for i := range formats {
			format := &formats[i]
			if strings.HasPrefix(format.MimeType, "video/") && format.AudioChannels == 0 {
				return format
			}
		}
	}

	return bestFormat
}

// getBestAudioFormat selects the best audio-only format, preferring m4a
func (c *Client) getBestAudioFormat(formats youtube.FormatList) *youtube.Format {
	var bestFormat *youtube.Format

	for i := range formats {
		format := &formats[i]
		if !strings.HasPrefix(format.MimeType, "audio/mp4") {
			continue
		}
		if bestFormat == nil || format.Bitrate > bestFormat.Bitrate {
			bestFormat = format
		}
	}

	if bestFormat == nil {
		for i := range formats {
			format := &formats[i]
			if !strings.HasPrefix(format.MimeType, "audio/") {
				continue
			}
			if bestFormat == nil || format.Bitrate > bestFormat.Bitrate {
				bestFormat = format
			}
		}
	}

	return bestFormat
}

// downloadStream downloads a stream to a file
func (c *Client) downloadStream(ctx context.Context, video *youtube.Video, format *youtube.Format, outputPath string) error {
	stream, _, err := c.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return fmt.Errorf("failed to get stream: %w", err)
	}
	defer stream.Close()

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, stream); err != nil {
		return fmt.Errorf("failed to write stream to file: %w", err)
	}

	return nil
}

// mergeVideoAudio merges video and audio files using FFmpeg
func (c *Client) mergeVideoAudio(ctx context.Context, videoPath, audioPath, outputPath string) error {
	return c.runFFmpeg(ctx,
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy", // Copy video stream without re-encoding
		"-c:a", "aac",
		"-movflags", "+faststart",
		"-y",
		outputPath,
	)
}

// transcodeAudio converts an audio stream to MP3 with libmp3lame
func (c *Client) transcodeAudio(ctx context.Context, audioPath, outputPath string) error {
	return c.runFFmpeg(ctx,
		"-i", audioPath,
		"-vn",
		"-codec:a", "libmp3lame",
		"-b:a", c.mp3Bitrate,
		"-y",
		outputPath,
	)
}

func (c *Client) runFFmpeg(ctx context.Context, args ...string) error {
	if _, err := exec.LookPath(c.ffmpegPath); err != nil {
		return fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	started := time.Now()
	cmd := exec.CommandContext(ctx, c.ffmpegPath, append([]string{"-hide_banner", "-loglevel", "error"}, args...)...)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg failed: %w, output: %s", err, string(output))
	}

	utils.LogDebug(ctx, "ffmpeg finished", utils.Fields{
		"duration": time.Since(started).String(),
	})
	return nil
}
