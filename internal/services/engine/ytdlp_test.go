package engine

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denisAlshanov/mediagrab/internal/config"
	"github.com/denisAlshanov/mediagrab/internal/models"
)

func TestParseInfoJSON(t *testing.T) {
	data := []byte(`{
		"id": "dQw4w9WgXcQ",
		"title": "Never Gonna Give You Up",
		"thumbnail": "https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg",
		"duration": 212,
		"uploader": "Rick Astley",
		"view_count": 1500000000,
		"upload_date": "20091025",
		"description": "The official video",
		"webpage_url": "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"formats": [{"format_id": "18"}]
	}`)

	info, err := parseInfoJSON(data)
	require.NoError(t, err)

	assert.Equal(t, "dQw4w9WgXcQ", info.ID)
	assert.Equal(t, "Never Gonna Give You Up", info.Title)
	assert.Equal(t, float64(212), info.Duration)
	assert.Equal(t, "Rick Astley", info.Uploader)
	assert.Equal(t, int64(1500000000), info.ViewCount)
	assert.Equal(t, "20091025", info.UploadDate)
	assert.Equal(t, "https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg", info.Thumbnail)
}

func TestParseInfoJSONThumbnailFallback(t *testing.T) {
	info, err := parseInfoJSON([]byte(`{"id":"x","thumbnails":[{"url":"small.jpg"},{"url":"large.jpg"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "large.jpg", info.Thumbnail)
}

func TestParseInfoJSONEmpty(t *testing.T) {
	_, err := parseInfoJSON([]byte("  "))
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = parseInfoJSON([]byte("null"))
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = parseInfoJSON([]byte("{not json"))
	assert.Equal(t, KindFailed, KindOf(err))
}

func TestFirstJSONLine(t *testing.T) {
	out := "[download] Destination: x\n{\"id\":\"a\"}\n{\"id\":\"b\"}\n"
	assert.Equal(t, `{"id":"a"}`, firstJSONLine(out))
	assert.Equal(t, "", firstJSONLine("no json here"))
}

func TestLocateOutput(t *testing.T) {
	t.Run("expected name", func(t *testing.T) {
		dir := t.TempDir()
		expected := filepath.Join(dir, "download_mp4.mp4")
		require.NoError(t, os.WriteFile(expected, []byte("video"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "download_mp4.f137.mp4"), []byte("much bigger fragment"), 0o644))

		path, err := locateOutput(dir, models.FormatMP4)
		require.NoError(t, err)
		assert.Equal(t, expected, path)
	})

	t.Run("largest completed file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "download_mp4.webm"), []byte("abc"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "download_mp4.mkv"), []byte("abcdef"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "download_mp4.mkv.part"), []byte("abcdefghijkl"), 0o644))

		path, err := locateOutput(dir, models.FormatMP4)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "download_mp4.mkv"), path)
	})

	t.Run("nothing produced", func(t *testing.T) {
		_, err := locateOutput(t.TempDir(), models.FormatMP3)
		assert.Equal(t, KindFailed, KindOf(err))
	})
}

func TestYtDlpCheckMissingBinary(t *testing.T) {
	e := NewYtDlp(&config.EngineConfig{BinaryPath: filepath.Join(t.TempDir(), "missing-yt-dlp")})
	assert.Equal(t, "yt-dlp", e.Name())
	assert.Error(t, e.Check(context.Background()))
}

// writeFakeYtDlp installs a shell script standing in for yt-dlp. It records
// its arguments one per line in the returned args file, then runs body.
func writeFakeYtDlp(t *testing.T, body string) (binary, argsFile string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script executables are not supported on windows")
	}

	dir := t.TempDir()
	binary = filepath.Join(dir, "yt-dlp")
	argsFile = filepath.Join(dir, "args")

	script := "#!/bin/sh\n" +
		"for a in \"$@\"; do printf '%s\\n' \"$a\"; done > '" + argsFile + "'\n" +
		body + "\n"
	require.NoError(t, os.WriteFile(binary, []byte(script), 0o755))
	return binary, argsFile
}

func readArgs(t *testing.T, argsFile string) []string {
	t.Helper()
	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

// flagValue returns the argument following flag, or "" when absent
func flagValue(args []string, flag string) string {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

func testEngineConfig(binary string) *config.EngineConfig {
	return &config.EngineConfig{
		BinaryPath:        binary,
		SocketTimeout:     30 * time.Second,
		InfoSocketTimeout: 15 * time.Second,
		Retries:           3,
		FragmentRetries:   3,
		MP3Quality:        "192",
	}
}

func TestYtDlpExtractInfo(t *testing.T) {
	binary, argsFile := writeFakeYtDlp(t,
		`printf '%s\n' '{"id":"dQw4w9WgXcQ","title":"Never Gonna Give You Up","duration":212,"uploader":"Rick Astley","view_count":42}'`)

	e := NewYtDlp(testEngineConfig(binary))
	info, err := e.ExtractInfo(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)

	assert.Equal(t, "Never Gonna Give You Up", info.Title)
	assert.Equal(t, int64(42), info.ViewCount)
	assert.Equal(t, "https://youtu.be/dQw4w9WgXcQ", info.WebpageURL)

	args := readArgs(t, argsFile)
	assert.Contains(t, args, "--dump-single-json")
	assert.Contains(t, args, "--quiet")
	assert.Contains(t, args, "--no-warnings")
	assert.Contains(t, args, "--no-check-certificates")
	assert.Contains(t, args, "--no-playlist")
	assert.Equal(t, "15", flagValue(args, "--socket-timeout"))
	assert.Equal(t, "3", flagValue(args, "--retries"))
	assert.Equal(t, "3", flagValue(args, "--fragment-retries"))
	assert.Equal(t, "https://youtu.be/dQw4w9WgXcQ", args[len(args)-1])
}

func TestYtDlpDownloadMP3(t *testing.T) {
	outDir := t.TempDir()
	binary, argsFile := writeFakeYtDlp(t,
		"printf 'ID3audio' > '"+filepath.Join(outDir, "download_mp3.mp3")+"'\n"+
			`printf '%s\n' '{"id":"abc","title":"Song"}'`)

	e := NewYtDlp(testEngineConfig(binary))
	result, err := e.Download(context.Background(), DownloadRequest{
		URL:       "https://youtu.be/abc",
		Format:    models.FormatMP3,
		OutputDir: outDir,
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(outDir, "download_mp3.mp3"), result.Path)
	assert.Equal(t, "Song", result.Info.Title)

	args := readArgs(t, argsFile)
	assert.Equal(t, filepath.Join(outDir, "download_mp3.%(ext)s"), flagValue(args, "--output"))
	assert.Equal(t, "bestaudio/best", flagValue(args, "--format"))
	assert.Contains(t, args, "--extract-audio")
	assert.Equal(t, "mp3", flagValue(args, "--audio-format"))
	assert.Equal(t, "192", flagValue(args, "--audio-quality"))
	assert.Equal(t, "30", flagValue(args, "--socket-timeout"))
	assert.Contains(t, args, "--dump-json")
	assert.Contains(t, args, "--no-simulate")
	assert.NotContains(t, args, "--merge-output-format")
}

func TestYtDlpDownloadMP4(t *testing.T) {
	outDir := t.TempDir()
	binary, argsFile := writeFakeYtDlp(t,
		"printf 'video' > '"+filepath.Join(outDir, "download_mp4.mp4")+"'\n"+
			`printf '%s\n' '{"id":"abc","title":"Clip"}'`)

	e := NewYtDlp(testEngineConfig(binary))
	result, err := e.Download(context.Background(), DownloadRequest{
		URL:       "https://youtu.be/abc",
		Format:    models.FormatMP4,
		OutputDir: outDir,
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(outDir, "download_mp4.mp4"), result.Path)

	args := readArgs(t, argsFile)
	assert.Equal(t, filepath.Join(outDir, "download_mp4.%(ext)s"), flagValue(args, "--output"))
	assert.Equal(t, mp4FormatSelector, flagValue(args, "--format"))
	assert.Equal(t, "mp4", flagValue(args, "--merge-output-format"))
	assert.NotContains(t, args, "--extract-audio")
}

func TestYtDlpDownloadForcesMP3Extension(t *testing.T) {
	outDir := t.TempDir()
	// yt-dlp may keep the pre-conversion stream when the template was overridden
	binary, _ := writeFakeYtDlp(t,
		"printf 'original-audio-stream' > '"+filepath.Join(outDir, "clip.webm")+"'\n"+
			"printf 'ID3' > '"+filepath.Join(outDir, "clip.mp3")+"'\n"+
			`printf '%s\n' '{"id":"abc"}'`)

	e := NewYtDlp(testEngineConfig(binary))
	result, err := e.Download(context.Background(), DownloadRequest{
		URL:       "https://youtu.be/abc",
		Format:    models.FormatMP3,
		OutputDir: outDir,
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "clip.mp3"), result.Path)
}

func TestYtDlpFailureIsClassified(t *testing.T) {
	binary, _ := writeFakeYtDlp(t,
		"echo 'ERROR: [youtube] abc: Private video. Sign in if you have been granted access to this video' >&2\nexit 1")

	e := NewYtDlp(testEngineConfig(binary))

	_, err := e.ExtractInfo(context.Background(), "https://youtu.be/abc")
	assert.Equal(t, KindPrivate, KindOf(err))

	_, err = e.Download(context.Background(), DownloadRequest{
		URL:       "https://youtu.be/abc",
		Format:    models.FormatMP4,
		OutputDir: t.TempDir(),
	})
	assert.Equal(t, KindPrivate, KindOf(err))
}
