// Package main provides the entry point for the YouTube Downloader service.
// @title YouTube Downloader API
// @version 1.0
// @description Fetches metadata for media URLs and streams them back as mp4 video or mp3 audio.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @BasePath /

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description API key authentication

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/denisAlshanov/mediagrab/docs" // Import for swagger docs
	"github.com/denisAlshanov/mediagrab/internal/api/handlers"
	"github.com/denisAlshanov/mediagrab/internal/api/router"
	"github.com/denisAlshanov/mediagrab/internal/config"
	"github.com/denisAlshanov/mediagrab/internal/services/auth"
	"github.com/denisAlshanov/mediagrab/internal/services/downloader"
	"github.com/denisAlshanov/mediagrab/internal/services/engine"
	"github.com/denisAlshanov/mediagrab/internal/services/scratch"
	"github.com/denisAlshanov/mediagrab/internal/services/youtube"
	"github.com/denisAlshanov/mediagrab/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	utils.Configure(cfg.Log.Level, cfg.Log.Format)
	logger := utils.GetLogger()
	logger.Info("Starting YouTube Downloader service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eng, err := newEngine(ctx, &cfg.Engine)
	if err != nil {
		logger.Fatalf("Failed to initialize extraction engine: %v", err)
	}
	if err := eng.Check(ctx); err != nil {
		logger.Warnf("Extraction engine %s is not ready: %v", eng.Name(), err)
	}

	workspace, err := scratch.NewWorkspace(&cfg.Download)
	if err != nil {
		logger.Fatalf("Failed to create scratch workspace: %v", err)
	}
	workspace.StartJanitor(ctx)
	logger.Infof("Scratch workspace at %s", workspace.Root())

	downloaderService := downloader.NewDownloader(eng, workspace, &cfg.Download)
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey: cfg.API.JWTSecret,
		Issuer:    cfg.API.JWTIssuer,
	})

	// Initialize handlers
	mediaHandler := handlers.NewMediaHandler(downloaderService)
	healthHandler := handlers.NewHealthHandler(eng, workspace)

	r := router.NewRouter(cfg, mediaHandler, healthHandler, jwtService)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r.Handler(),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof("Starting server on %s (engine: %s, auth: %t)", server.Addr, eng.Name(), cfg.API.AuthEnabled())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		logger.Errorf("Failed to start server: %v", err)
		exitCode = 1
	}
	stop()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	if err := workspace.Close(); err != nil {
		logger.Errorf("Failed to remove scratch workspace: %v", err)
	}

	logger.Info("Server shutdown complete")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func newEngine(ctx context.Context, cfg *config.EngineConfig) (engine.Engine, error) {
	switch cfg.Backend {
	case config.EngineBackendYouTube:
		return youtube.NewClient(cfg), nil
	default:
		ytdlp := engine.NewYtDlp(cfg)
		if cfg.AutoInstall {
			utils.GetLogger().Info("Installing yt-dlp...")
			if err := ytdlp.Install(ctx); err != nil {
				return nil, err
			}
		}
		return ytdlp, nil
	}
}
