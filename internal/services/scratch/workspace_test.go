package scratch

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denisAlshanov/mediagrab/internal/config"
)

func newTestWorkspace(t *testing.T, staleAfter time.Duration) *Workspace {
	t.Helper()
	ws, err := NewWorkspace(&config.DownloadConfig{TempDir: t.TempDir(), StaleAfter: staleAfter})
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func TestNewWorkspace(t *testing.T) {
	ws := newTestWorkspace(t, time.Hour)

	info, err := os.Stat(ws.Root())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.True(t, strings.HasPrefix(filepath.Base(ws.Root()), rootPrefix))
}

func TestCreateDirIsUnique(t *testing.T) {
	ws := newTestWorkspace(t, time.Hour)

	a, err := ws.CreateDir()
	require.NoError(t, err)
	b, err := ws.CreateDir()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Equal(t, ws.Root(), filepath.Dir(a))
}

func TestFileCloseRemovesDirectory(t *testing.T) {
	ctx := context.Background()
	ws := newTestWorkspace(t, time.Hour)

	dir, err := ws.CreateDir()
	require.NoError(t, err)
	path := filepath.Join(dir, "download_mp3.mp3")
	require.NoError(t, os.WriteFile(path, []byte("ID3 audio"), 0o600))

	f, err := ws.Open(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, int64(9), f.Size())

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "ID3 audio", string(data))

	require.NoError(t, f.Close())
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))

	// Second close is a no-op
	assert.NoError(t, f.Close())
}

func TestReleaseOutsideRootIsIgnored(t *testing.T) {
	ws := newTestWorkspace(t, time.Hour)
	outside := t.TempDir()

	ws.Release(context.Background(), outside)

	_, err := os.Stat(outside)
	assert.NoError(t, err)
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	ws := newTestWorkspace(t, time.Hour)

	stale, err := ws.CreateDir()
	require.NoError(t, err)
	fresh, err := ws.CreateDir()
	require.NoError(t, err)

	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	removed := ws.Sweep(ctx, time.Now())
	assert.Equal(t, 1, removed)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh)
	assert.NoError(t, err)
}

func TestSweepDisabled(t *testing.T) {
	ws := newTestWorkspace(t, 0)
	_, err := ws.CreateDir()
	require.NoError(t, err)

	assert.Equal(t, 0, ws.Sweep(context.Background(), time.Now().Add(24*time.Hour)))
}

func TestWritableAndClose(t *testing.T) {
	ws, err := NewWorkspace(&config.DownloadConfig{TempDir: t.TempDir()})
	require.NoError(t, err)

	assert.NoError(t, ws.Writable())
	require.NoError(t, ws.Close())

	_, err = os.Stat(ws.Root())
	assert.True(t, os.IsNotExist(err))
}
