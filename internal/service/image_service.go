package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/dpetrov/imgvault/internal/blobstore"
	"github.com/dpetrov/imgvault/internal/domain"
)

// Validation failures surfaced to the upload boundary.
var (
	ErrEmptyFilename    = errors.New("filename required")
	ErrEmptyContentType = errors.New("content type required")
	ErrContentTooLarge  = errors.New("content exceeds size limit")
)

// imageRepository is the subset of store.ImageStore that ImageService requires.
type imageRepository interface {
	Create(ctx context.Context, ownerID int64, filename, mimeType, storageKey string, sizeBytes int64) (*domain.Image, error)
	GetByID(ctx context.Context, id int64) (*domain.Image, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Image, error)
	Delete(ctx context.Context, id int64) error
}

// ImageService mediates every read and write of owned images: an account can
// only ever see or mutate images it owns.
type ImageService struct {
	images   imageRepository
	blobs    blobstore.BlobStore
	maxBytes int64
	logger   *slog.Logger
}

func NewImageService(images imageRepository, blobs blobstore.BlobStore, maxBytes int64, logger *slog.Logger) *ImageService {
	return &ImageService{images: images, blobs: blobs, maxBytes: maxBytes, logger: logger}
}

// Store validates and persists a new image owned by ownerID. Nothing is
// written when validation fails.
func (s *ImageService) Store(ctx context.Context, ownerID int64, filename, mimeType string, content []byte) (*domain.Image, error) {
	filename = sanitizeFilename(filename)
	if filename == "" {
		return nil, ErrEmptyFilename
	}
	if strings.TrimSpace(mimeType) == "" {
		return nil, ErrEmptyContentType
	}
	if int64(len(content)) > s.maxBytes {
		return nil, ErrContentTooLarge
	}

	key, err := s.blobs.Store(ctx, fmt.Sprintf("acct_%d", ownerID), mimeType, bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to store image content: %w", err)
	}

	img, err := s.images.Create(ctx, ownerID, filename, mimeType, key, int64(len(content)))
	if err != nil {
		if derr := s.blobs.Delete(ctx, key); derr != nil {
			s.logger.Error("failed to clean up blob after create failure", "key", key, "error", derr)
		}
		return nil, fmt.Errorf("failed to record image: %w", err)
	}

	s.logger.Info("image stored", "image_id", img.ID, "owner_id", ownerID, "bytes", len(content))
	return img, nil
}

// Fetch returns the image record and its content for the owner. Callers must
// close the reader.
func (s *ImageService) Fetch(ctx context.Context, imageID, requesterID int64) (*domain.Image, io.ReadCloser, error) {
	img, err := s.authorize(ctx, imageID, requesterID)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.blobs.Open(ctx, img.StorageKey)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to open image content: %w", err)
	}
	return img, rc, nil
}

// Delete removes the image for its owner. The metadata row goes first; a
// leftover blob is logged, not fatal.
func (s *ImageService) Delete(ctx context.Context, imageID, requesterID int64) error {
	img, err := s.authorize(ctx, imageID, requesterID)
	if err != nil {
		return err
	}

	if err := s.images.Delete(ctx, img.ID); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, img.StorageKey); err != nil {
		s.logger.Error("failed to delete blob for removed image", "key", img.StorageKey, "error", err)
	}

	s.logger.Info("image deleted", "image_id", img.ID, "owner_id", requesterID)
	return nil
}

// ListOwned returns the requester's images in upload order.
func (s *ImageService) ListOwned(ctx context.Context, ownerID int64) ([]*domain.Image, error) {
	return s.images.ListByOwner(ctx, ownerID)
}

// authorize resolves the image and checks ownership: ErrNotFound when the
// image does not exist, ErrForbidden when it belongs to someone else.
func (s *ImageService) authorize(ctx context.Context, imageID, requesterID int64) (*domain.Image, error) {
	img, err := s.images.GetByID(ctx, imageID)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, domain.ErrNotFound
	}
	if img.OwnerID != requesterID {
		return nil, domain.ErrForbidden
	}
	return img, nil
}

// sanitizeFilename reduces a client-supplied name to a bare display name.
// The name is never used as a filesystem path, but stripping directories
// keeps garbage like "../../x" out of the UI.
func sanitizeFilename(filename string) string {
	filename = path.Base(strings.TrimSpace(strings.ReplaceAll(filename, "\\", "/")))
	if filename == "." || filename == "/" {
		return ""
	}
	return filename
}
