package scratch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/denisAlshanov/mediagrab/internal/config"
	"github.com/denisAlshanov/mediagrab/internal/utils"
)

const rootPrefix = "yt_downloader_"

// Workspace owns the scratch directory used for in-flight downloads.
// Every request gets its own subdirectory so concurrent downloads never
// share output paths.
type Workspace struct {
	root       string
	staleAfter time.Duration
}

// NewWorkspace creates a fresh scratch root under cfg.TempDir
func NewWorkspace(cfg *config.DownloadConfig) (*Workspace, error) {
	base := cfg.TempDir
	if base == "" {
		base = os.TempDir()
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create temp base %s: %w", base, err)
	}

	root, err := os.MkdirTemp(base, rootPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}

	return &Workspace{
		root:       root,
		staleAfter: cfg.StaleAfter,
	}, nil
}

func (w *Workspace) Root() string {
	return w.root
}

// CreateDir makes a new, empty directory for one request
func (w *Workspace) CreateDir() (string, error) {
	dir := filepath.Join(w.root, uuid.New().String())
	if err := os.Mkdir(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create request directory: %w", err)
	}
	return dir, nil
}

// Release removes a request directory. Failures are logged, not returned.
func (w *Workspace) Release(ctx context.Context, dir string) {
	if dir == "" || filepath.Dir(dir) != w.root {
		utils.LogWarn(ctx, "Refusing to remove directory outside scratch root", utils.Fields{"dir": dir})
		return
	}

	if err := os.RemoveAll(dir); err != nil {
		utils.LogError(ctx, "Failed to clean up scratch directory", err, utils.Fields{"dir": dir})
		return
	}

	utils.LogDebug(ctx, "Scratch directory removed", utils.Fields{"dir": filepath.Base(dir)})
}

// Open wraps a produced file so that closing it releases its request directory
func (w *Workspace) Open(ctx context.Context, path string) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	return &File{
		file:      file,
		size:      info.Size(),
		dir:       filepath.Dir(path),
		workspace: w,
		ctx:       ctx,
	}, nil
}

// Sweep removes request directories last modified before now-staleAfter.
// These are left behind only when the process dies mid-request.
func (w *Workspace) Sweep(ctx context.Context, now time.Time) int {
	if w.staleAfter <= 0 {
		return 0
	}

	entries, err := os.ReadDir(w.root)
	if err != nil {
		utils.LogError(ctx, "Failed to read scratch root", err)
		return 0
	}

	removed := 0
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) < w.staleAfter {
			continue
		}
		if err := os.RemoveAll(filepath.Join(w.root, entry.Name())); err != nil {
			utils.LogError(ctx, "Failed to remove stale scratch entry", err, utils.Fields{"entry": entry.Name()})
			continue
		}
		removed++
	}

	if removed > 0 {
		utils.LogInfo(ctx, "Removed stale scratch entries", utils.Fields{"count": removed})
	}
	return removed
}

// StartJanitor sweeps stale entries until ctx is cancelled
func (w *Workspace) StartJanitor(ctx context.Context) {
	if w.staleAfter <= 0 {
		return
	}

	interval := w.staleAfter / 2
	if interval < time.Minute {
		interval = time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				w.Sweep(ctx, now)
			}
		}
	}()
}

// Writable checks that a request directory can be created and removed
func (w *Workspace) Writable() error {
	dir, err := w.CreateDir()
	if err != nil {
		return err
	}
	return os.Remove(dir)
}

// Close removes the scratch root and everything under it
func (w *Workspace) Close() error {
	return os.RemoveAll(w.root)
}
