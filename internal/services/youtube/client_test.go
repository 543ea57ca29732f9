package youtube

import (
	"testing"
	"time"

	"github.com/kkdai/youtube/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denisAlshanov/mediagrab/internal/config"
	"github.com/denisAlshanov/mediagrab/internal/services/engine"
)

func newTestClient() *Client {
	return NewClient(&config.EngineConfig{SocketTimeout: time.Second, MP3Quality: "192"})
}

func TestParseYouTubeURL(t *testing.T) {
	c := newTestClient()

	testCases := []struct {
		name     string
		url      string
		expected string
		kind     engine.ErrorKind
		wantErr  bool
	}{
		{name: "watch", url: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", expected: "dQw4w9WgXcQ"},
		{name: "watch with extra params", url: "https://www.youtube.com/watch?list=abc&v=dQw4w9WgXcQ", expected: "dQw4w9WgXcQ"},
		{name: "short link", url: "https://youtu.be/dQw4w9WgXcQ", expected: "dQw4w9WgXcQ"},
		{name: "mobile", url: "https://m.youtube.com/watch?v=dQw4w9WgXcQ", expected: "dQw4w9WgXcQ"},
		{name: "shorts", url: "https://www.youtube.com/shorts/dQw4w9WgXcQ", expected: "dQw4w9WgXcQ"},
		{name: "embed", url: "https://www.youtube.com/embed/dQw4w9WgXcQ", expected: "dQw4w9WgXcQ"},
		{name: "other host", url: "https://vimeo.com/12345", kind: engine.KindUnsupported, wantErr: true},
		{name: "channel page", url: "https://www.youtube.com/@somebody", kind: engine.KindUnsupported, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := c.ParseYouTubeURL(tc.url)
			if tc.wantErr {
				require.Error(t, err)
				assert.Equal(t, tc.kind, engine.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, id)
		})
	}
}

func TestBestFormats(t *testing.T) {
	c := newTestClient()
	formats := youtube.FormatList{
		{ItagNo: 18, MimeType: `video/mp4; codecs="avc1.42001E, mp4a.40.2"`, Height: 360, AudioChannels: 2},
		{ItagNo: 137, MimeType: `video/mp4; codecs="avc1.640028"`, Height: 1080, Bitrate: 4000000},
		{ItagNo: 136, MimeType: `video/mp4; codecs="avc1.4d401f"`, Height: 720, Bitrate: 2000000},
		{ItagNo: 248, MimeType: `video/webm; codecs="vp9"`, Height: 1440},
		{ItagNo: 140, MimeType: `audio/mp4; codecs="mp4a.40.2"`, Bitrate: 130000, AudioChannels: 2},
		{ItagNo: 251, MimeType: `audio/webm; codecs="opus"`, Bitrate: 160000, AudioChannels: 2},
	}

	video := c.getBestVideoFormat(formats)
	require.NotNil(t, video)
	assert.Equal(t, 137, video.ItagNo)

	audio := c.getBestAudioFormat(formats)
	require.NotNil(t, audio)
	assert.Equal(t, 140, audio.ItagNo)

	webmOnly := youtube.FormatList{{ItagNo: 251, MimeType: `audio/webm; codecs="opus"`, Bitrate: 160000}}
	audio = c.getBestAudioFormat(webmOnly)
	require.NotNil(t, audio)
	assert.Equal(t, 251, audio.ItagNo)

	assert.Nil(t, c.getBestVideoFormat(webmOnly))
}

func TestToMediaInfo(t *testing.T) {
	video := &youtube.Video{
		ID:          "dQw4w9WgXcQ",
		Title:       "Never Gonna Give You Up",
		Author:      "Rick Astley",
		Description: "The official video",
		Views:       42,
		Duration:    212 * time.Second,
		PublishDate: time.Date(2009, 10, 25, 0, 0, 0, 0, time.UTC),
		Thumbnails: youtube.Thumbnails{
			{URL: "small.jpg", Width: 120},
			{URL: "large.jpg", Width: 1280},
		},
	}

	info := toMediaInfo(video)
	assert.Equal(t, "Never Gonna Give You Up", info.Title)
	assert.Equal(t, "Rick Astley", info.Uploader)
	assert.Equal(t, float64(212), info.Duration)
	assert.Equal(t, int64(42), info.ViewCount)
	assert.Equal(t, "20091025", info.UploadDate)
	assert.Equal(t, "large.jpg", info.Thumbnail)
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", info.WebpageURL)
}

func TestMP3Bitrate(t *testing.T) {
	assert.Equal(t, "192k", newTestClient().mp3Bitrate)
	assert.Equal(t, "320k", NewClient(&config.EngineConfig{MP3Quality: "320K"}).mp3Bitrate)
}
