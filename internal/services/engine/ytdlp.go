package engine

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lrstanley/go-ytdlp"

	"github.com/denisAlshanov/mediagrab/internal/config"
	"github.com/denisAlshanov/mediagrab/internal/models"
	"github.com/denisAlshanov/mediagrab/internal/utils"
)

const (
	mp4FormatSelector = "best[ext=mp4]/bestvideo[ext=mp4]+bestaudio[ext=m4a]/best"
	mp3FormatSelector = "bestaudio/best"
)

// YtDlp runs extraction through the yt-dlp executable
type YtDlp struct {
	cfg       *config.EngineConfig
	installed bool
}

// NewYtDlp creates a yt-dlp backed engine
func NewYtDlp(cfg *config.EngineConfig) *YtDlp {
	return &YtDlp{cfg: cfg}
}

func (e *YtDlp) Name() string {
	return "yt-dlp"
}

// Install downloads a managed yt-dlp binary into the user cache.
func (e *YtDlp) Install(ctx context.Context) error {
	if _, err := ytdlp.Install(ctx, nil); err != nil {
		return fmt.Errorf("failed to install yt-dlp: %w", err)
	}
	e.installed = true
	return nil
}

// Check verifies that the yt-dlp executable can be found
func (e *YtDlp) Check(ctx context.Context) error {
	if e.installed && e.cfg.BinaryPath == "" {
		return nil
	}

	binary := e.cfg.BinaryPath
	if binary == "" {
		binary = "yt-dlp"
	}
	if _, err := exec.LookPath(binary); err != nil {
		return fmt.Errorf("yt-dlp not found: %w", err)
	}
	return nil
}

// ExtractInfo retrieves metadata without downloading the media
func (e *YtDlp) ExtractInfo(ctx context.Context, url string) (*MediaInfo, error) {
	cmd := e.command(e.cfg.InfoSocketTimeout.Seconds()).
		DumpSingleJSON()

	result, err := cmd.Run(ctx, url)
	if err != nil {
		return nil, Classify(err, stderrOf(result))
	}

	info, err := parseInfoJSON([]byte(result.Stdout))
	if err != nil {
		return nil, err
	}
	if info.WebpageURL == "" {
		info.WebpageURL = url
	}
	return info, nil
}

// Download fetches and transcodes the media into req.OutputDir
func (e *YtDlp) Download(ctx context.Context, req DownloadRequest) (*DownloadResult, error) {
	outputTemplate := filepath.Join(req.OutputDir, "download_"+req.Format.Extension()+".%(ext)s")

	cmd := e.command(e.cfg.SocketTimeout.Seconds()).
		Output(outputTemplate).
		DumpJSON().
		NoSimulate()

	switch req.Format {
	case models.FormatMP3:
		cmd.Format(mp3FormatSelector).
			ExtractAudio().
			AudioFormat("mp3").
			AudioQuality(e.cfg.MP3Quality)
	default:
		cmd.Format(mp4FormatSelector).
			MergeOutputFormat("mp4")
	}

	utils.LogDebug(ctx, "Running yt-dlp download", utils.Fields{
		"format":     req.Format,
		"output_dir": req.OutputDir,
	})

	result, err := cmd.Run(ctx, req.URL)
	if err != nil {
		return nil, Classify(err, stderrOf(result))
	}

	info, err := parseInfoJSON([]byte(firstJSONLine(result.Stdout)))
	if err != nil {
		// The file may still be usable; only the title is lost.
		utils.LogWarn(ctx, "Failed to parse yt-dlp metadata after download", utils.Fields{"error": err.Error()})
		info = &MediaInfo{}
	}

	path, err := locateOutput(req.OutputDir, req.Format)
	if err != nil {
		return nil, err
	}

	return &DownloadResult{Path: path, Info: info}, nil
}

// command builds the options shared by info and download runs
func (e *YtDlp) command(socketTimeout float64) *ytdlp.Command {
	cmd := ytdlp.New().
		Quiet().
		NoWarnings().
		NoCheckCertificates().
		NoPlaylist().
		SocketTimeout(socketTimeout).
		Retries(strconv.Itoa(e.cfg.Retries)).
		FragmentRetries(strconv.Itoa(e.cfg.FragmentRetries))

	if e.cfg.BinaryPath != "" {
		cmd.SetExecutable(e.cfg.BinaryPath)
	}
	if e.cfg.FFmpegPath != "" && e.cfg.FFmpegPath != "ffmpeg" {
		cmd.FFmpegLocation(e.cfg.FFmpegPath)
	}
	return cmd
}

type rawThumbnail struct {
	URL string `json:"url"`
}

type rawInfo struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Thumbnail   string         `json:"thumbnail"`
	Thumbnails  []rawThumbnail `json:"thumbnails"`
	Duration    float64        `json:"duration"`
	Uploader    string         `json:"uploader"`
	ViewCount   float64        `json:"view_count"`
	UploadDate  string         `json:"upload_date"`
	Description string         `json:"description"`
	WebpageURL  string         `json:"webpage_url"`
}

// parseInfoJSON converts yt-dlp's info dict into MediaInfo
func parseInfoJSON(data []byte) (*MediaInfo, error) {
	data = []byte(strings.TrimSpace(string(data)))
	if len(data) == 0 || string(data) == "null" {
		return nil, ErrNoInfo
	}

	var raw rawInfo
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &Error{Kind: KindFailed, Message: "failed to decode yt-dlp output", Err: err}
	}

	info := &MediaInfo{
		ID:          raw.ID,
		Title:       raw.Title,
		Thumbnail:   raw.Thumbnail,
		Duration:    raw.Duration,
		Uploader:    raw.Uploader,
		ViewCount:   int64(raw.ViewCount),
		UploadDate:  raw.UploadDate,
		Description: raw.Description,
		WebpageURL:  raw.WebpageURL,
	}

	if info.Thumbnail == "" && len(raw.Thumbnails) > 0 {
		info.Thumbnail = raw.Thumbnails[len(raw.Thumbnails)-1].URL
	}

	return info, nil
}

// firstJSONLine returns the first line of yt-dlp --dump-json output
func firstJSONLine(stdout string) string {
	scanner := bufio.NewScanner(strings.NewReader(stdout))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "{") {
			return line
		}
	}
	return ""
}

// locateOutput finds the finished file in a per-request output directory.
// The expected name is download_<format>.<format>; otherwise the largest
// completed file is used.
func locateOutput(dir string, format models.Format) (string, error) {
	expected := filepath.Join(dir, "download_"+format.Extension()+"."+format.Extension())
	if fi, err := os.Stat(expected); err == nil && fi.Mode().IsRegular() {
		return expected, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read output directory: %w", err)
	}

	var best string
	var bestSize int64 = -1
	for _, entry := range entries {
		if !entry.Type().IsRegular() || isPartialFile(entry.Name()) {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		if fi.Size() > bestSize {
			best = filepath.Join(dir, entry.Name())
			bestSize = fi.Size()
		}
	}

	if best == "" {
		return "", &Error{Kind: KindFailed, Message: "no output file produced"}
	}

	// yt-dlp reports the pre-conversion name; audio always ends up as .mp3
	if format == models.FormatMP3 && filepath.Ext(best) != ".mp3" {
		converted := strings.TrimSuffix(best, filepath.Ext(best)) + ".mp3"
		if _, err := os.Stat(converted); err == nil {
			return converted, nil
		}
	}

	return best, nil
}

func isPartialFile(name string) bool {
	for _, suffix := range []string{".part", ".ytdl", ".temp", ".tmp"} {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return strings.Contains(name, ".part-Frag")
}

func stderrOf(result *ytdlp.Result) string {
	if result == nil {
		return ""
	}
	return result.Stderr
}
