package main

import (
	"context"
	"errors"
	"log"
	"log/slog"

	"github.com/dpetrov/imgvault/internal/assist"
	"github.com/dpetrov/imgvault/internal/assist/claude"
	"github.com/dpetrov/imgvault/internal/auth"
	"github.com/dpetrov/imgvault/internal/blobstore/local"
	"github.com/dpetrov/imgvault/internal/config"
	"github.com/dpetrov/imgvault/internal/db"
	"github.com/dpetrov/imgvault/internal/logging"
	"github.com/dpetrov/imgvault/internal/service"
	"github.com/dpetrov/imgvault/internal/store"
	"github.com/dpetrov/imgvault/internal/web"
	"github.com/dpetrov/imgvault/internal/web/templates"
)

func main() {
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	accountStore := store.NewAccountStore(database)
	imageStore := store.NewImageStore(database)

	blobs, err := local.NewDiskStore(cfg.BlobPath)
	if err != nil {
		logger.Error("failed to initialize blob store", "error", err)
		return
	}

	authn := auth.NewAuthenticator(accountStore, logger)
	sessions := auth.NewSessionManager(cfg.SecureCookies)
	imageService := service.NewImageService(imageStore, blobs, cfg.MaxUploadBytes, logger)

	server := web.NewServer(
		imageService, authn, sessions,
		newResponder(cfg, logger),
		templates.FS, cfg.MaxUploadBytes, logger,
	)

	if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}

func newResponder(cfg *config.Config, logger *slog.Logger) assist.Responder {
	if cfg.AnthropicAPIKey == "" {
		logger.Warn("ANTHROPIC_API_KEY not set, chat answers will be unavailable")
		return unconfiguredResponder{}
	}
	logger.Info("using Anthropic responder", "model", cfg.AnthropicModel)
	return claude.New(cfg.AnthropicAPIKey, cfg.AnthropicModel)
}

// unconfiguredResponder stands in when no API key is configured. The web
// layer turns its error into the standard fallback answer.
type unconfiguredResponder struct{}

func (unconfiguredResponder) Respond(context.Context, string) (string, error) {
	return "", errors.New("no assist backend configured")
}
