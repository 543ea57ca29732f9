package downloader

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/denisAlshanov/mediagrab/internal/config"
	"github.com/denisAlshanov/mediagrab/internal/models"
	"github.com/denisAlshanov/mediagrab/internal/services/engine"
	"github.com/denisAlshanov/mediagrab/internal/services/scratch"
	"github.com/denisAlshanov/mediagrab/internal/utils"
)

// Download is a finished, transcoded file ready to be streamed.
// Closing File deletes it from the scratch workspace.
type Download struct {
	File        *scratch.File
	Size        int64
	ContentType string
	FileName    string
}

type Downloader struct {
	engine    engine.Engine
	workspace *scratch.Workspace
	config    *config.DownloadConfig
	semaphore chan struct{}
}

func NewDownloader(eng engine.Engine, workspace *scratch.Workspace, cfg *config.DownloadConfig) *Downloader {
	d := &Downloader{
		engine:    eng,
		workspace: workspace,
		config:    cfg,
	}
	if cfg.MaxConcurrentDownloads > 0 {
		d.semaphore = make(chan struct{}, cfg.MaxConcurrentDownloads)
	}
	return d
}

func (d *Downloader) EngineName() string {
	return d.engine.Name()
}

// Info fetches metadata for url without downloading any media
func (d *Downloader) Info(ctx context.Context, url string) (*engine.MediaInfo, error) {
	if d.config.InfoTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.InfoTimeout)
		defer cancel()
	}

	utils.LogInfo(ctx, "Fetching media info", utils.Fields{
		"url":    utils.Truncate(url, 50),
		"engine": d.engine.Name(),
	})

	info, err := d.engine.ExtractInfo(ctx, url)
	if err != nil {
		utils.LogError(ctx, "Engine failed to extract info", err, utils.Fields{
			"kind": engine.KindOf(err).String(),
		})
		return nil, mapEngineError(err, utils.NewExtractionError)
	}
	if info == nil {
		return nil, utils.NewMediaNotFoundError("Could not extract video info")
	}

	utils.LogInfo(ctx, "Media info retrieved", utils.Fields{
		"title": utils.Truncate(info.Title, 30),
	})
	return info, nil
}

// Download fetches url, transcodes it to format and returns the open file.
// The caller must Close the returned File.
func (d *Downloader) Download(ctx context.Context, url string, format models.Format) (*Download, error) {
	if d.semaphore != nil {
		select {
		case d.semaphore <- struct{}{}:
			defer func() { <-d.semaphore }()
		case <-ctx.Done():
			return nil, utils.NewDownloadError(ctx.Err())
		}
	}

	if d.config.DownloadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.DownloadTimeout)
		defer cancel()
	}

	utils.LogInfo(ctx, "Download requested", utils.Fields{
		"url":    utils.Truncate(url, 50),
		"format": format,
		"engine": d.engine.Name(),
	})

	dir, err := d.workspace.CreateDir()
	if err != nil {
		utils.LogError(ctx, "Failed to prepare scratch directory", err)
		return nil, utils.NewInternalError().WithCause(err)
	}

	// Stays true until ownership of dir passes to the returned File
	cleanup := true
	defer func() {
		if cleanup {
			d.workspace.Release(context.WithoutCancel(ctx), dir)
		}
	}()

	result, err := d.engine.Download(ctx, engine.DownloadRequest{
		URL:       url,
		Format:    format,
		OutputDir: dir,
	})
	if err != nil {
		utils.LogError(ctx, "Engine failed to download", err, utils.Fields{
			"kind": engine.KindOf(err).String(),
		})
		return nil, mapEngineError(err, utils.NewDownloadError)
	}
	if result == nil || result.Path == "" {
		return nil, utils.NewDownloadError(errors.New("engine returned no output"))
	}

	stat, err := os.Stat(result.Path)
	if err != nil {
		utils.LogError(ctx, "File not found after download", err, utils.Fields{"path": result.Path})
		return nil, utils.NewError(utils.ErrorCodeDownloadFailed, "File not found after download", http.StatusInternalServerError).WithCause(err)
	}

	if d.config.MaxFileSize > 0 && stat.Size() > d.config.MaxFileSize {
		utils.LogWarn(ctx, "Downloaded file exceeds size limit", utils.Fields{
			"size_bytes": stat.Size(),
			"limit":      d.config.MaxFileSize,
		})
		return nil, utils.NewFileTooLargeError(stat.Size())
	}

	d.verifyContainer(ctx, result.Path, format)

	file, err := d.workspace.Open(context.WithoutCancel(ctx), result.Path)
	if err != nil {
		utils.LogError(ctx, "Failed to open downloaded file", err)
		return nil, utils.NewDownloadError(err)
	}
	cleanup = false

	title := ""
	if result.Info != nil {
		title = result.Info.Title
	}
	if title == "" {
		title = "video"
	}

	utils.LogInfo(ctx, "Download completed", utils.Fields{
		"file":    utils.Truncate(title, 30),
		"size_mb": float64(stat.Size()) / 1024 / 1024,
	})

	return &Download{
		File:        file,
		Size:        file.Size(),
		ContentType: format.MimeType(),
		FileName:    utils.CleanFilename(title) + "." + format.Extension(),
	}, nil
}

// verifyContainer sniffs the produced file and logs when it does not look
// like the container the caller asked for.
func (d *Downloader) verifyContainer(ctx context.Context, path string, format models.Format) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		utils.LogWarn(ctx, "Could not sniff downloaded file", utils.Fields{"error": err.Error()})
		return
	}

	if !matchesFormat(mtype, format) {
		utils.LogWarn(ctx, "Downloaded file does not match requested format", utils.Fields{
			"requested": format,
			"detected":  mtype.String(),
		})
	}
}

func matchesFormat(mtype *mimetype.MIME, format models.Format) bool {
	switch format {
	case models.FormatMP3:
		return mtype.Is("audio/mpeg")
	default:
		return mtype.Is("video/mp4") || strings.HasPrefix(mtype.String(), "video/")
	}
}

// mapEngineError turns an engine failure into the error returned to clients
func mapEngineError(err error, fallback func(error) *utils.AppError) *utils.AppError {
	switch engine.KindOf(err) {
	case engine.KindPrivate:
		return utils.NewPrivateContentError().WithCause(err)
	case engine.KindForbidden:
		return utils.NewAccessDeniedError().WithCause(err)
	case engine.KindNotFound:
		return utils.NewMediaNotFoundError("Could not extract video info").WithCause(err)
	case engine.KindUnsupported:
		return utils.NewUnsupportedURLError().WithCause(err)
	default:
		return fallback(err)
	}
}
