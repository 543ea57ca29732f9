package handlers

import (
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/denisAlshanov/mediagrab/internal/api/middleware"
	"github.com/denisAlshanov/mediagrab/internal/models"
	"github.com/denisAlshanov/mediagrab/internal/services/downloader"
	"github.com/denisAlshanov/mediagrab/internal/services/engine"
	"github.com/denisAlshanov/mediagrab/internal/utils"
)

const descriptionLimit = 200

type MediaHandler struct {
	downloader *downloader.Downloader
}

func NewMediaHandler(d *downloader.Downloader) *MediaHandler {
	return &MediaHandler{downloader: d}
}

// Info godoc
// @Summary Get media metadata
// @Description Resolve a media URL and return its metadata without downloading it
// @Tags media
// @Accept json
// @Produce json
// @Param request body models.InfoRequest true "Media URL"
// @Success 200 {object} models.MediaInfoResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/info [post]
// @Security ApiKeyAuth
func (h *MediaHandler) Info(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.InfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, bindError(err))
		return
	}
	url := strings.TrimSpace(req.URL)

	info, err := h.downloader.Info(ctx, url)
	if err != nil {
		h.errorResponse(c, asAppError(err))
		return
	}

	c.JSON(http.StatusOK, toInfoResponse(info, url))
}

// Download godoc
// @Summary Download media
// @Description Download a media URL as mp4 video or mp3 audio. The file is streamed and never kept on the server.
// @Tags media
// @Accept json
// @Produce video/mp4
// @Produce audio/mpeg
// @Param request body models.DownloadRequest true "Media URL and output format"
// @Success 200 {file} binary "Media file"
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 413 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/download [post]
// @Security ApiKeyAuth
func (h *MediaHandler) Download(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, bindError(err))
		return
	}

	format, ok := models.ParseFormat(req.Format)
	if !ok {
		h.errorResponse(c, utils.NewInvalidFormatError(req.Format))
		return
	}

	dl, err := h.downloader.Download(ctx, strings.TrimSpace(req.URL), format)
	if err != nil {
		h.errorResponse(c, asAppError(err))
		return
	}
	defer dl.File.Close()

	c.DataFromReader(http.StatusOK, dl.Size, dl.ContentType, dl.File, map[string]string{
		"Content-Disposition": contentDisposition(dl.FileName),
		"Cache-Control":       "no-store, no-cache, must-revalidate, max-age=0",
		"Pragma":              "no-cache",
		"Expires":             "0",
	})

	utils.LogInfo(ctx, "Download streamed", utils.Fields{
		"file":       utils.Truncate(dl.FileName, 30),
		"size_bytes": dl.Size,
	})
}

func (h *MediaHandler) errorResponse(c *gin.Context, err *utils.AppError) {
	middleware.RespondError(c, err)
}

// contentDisposition builds an attachment header; non-ASCII names use the
// RFC 2231 filename* form.
func contentDisposition(name string) string {
	if value := mime.FormatMediaType("attachment", map[string]string{"filename": name}); value != "" {
		return value
	}
	return `attachment; filename="download"`
}

func asAppError(err error) *utils.AppError {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return utils.NewInternalError().WithCause(err)
}

func toInfoResponse(info *engine.MediaInfo, requestedURL string) models.MediaInfoResponse {
	resp := models.MediaInfoResponse{
		Title:      info.Title,
		Thumbnail:  info.Thumbnail,
		Duration:   info.Duration,
		Uploader:   info.Uploader,
		ViewCount:  info.ViewCount,
		UploadDate: info.UploadDate,
		ID:         info.ID,
		WebpageURL: info.WebpageURL,
	}

	if resp.Title == "" {
		resp.Title = "Untitled"
	}
	if resp.Uploader == "" {
		resp.Uploader = "Unknown"
	}
	if resp.WebpageURL == "" {
		resp.WebpageURL = requestedURL
	}
	if info.Description != "" {
		resp.Description = utils.Truncate(info.Description, descriptionLimit) + "..."
	}

	return resp
}
