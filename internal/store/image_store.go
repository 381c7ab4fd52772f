package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dpetrov/imgvault/internal/domain"
)

type ImageStore struct {
	db *sql.DB
}

func NewImageStore(db *sql.DB) *ImageStore {
	return &ImageStore{db: db}
}

func (s *ImageStore) Create(ctx context.Context, ownerID int64, filename, mimeType, storageKey string, sizeBytes int64) (*domain.Image, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO images (owner_id, filename, mime_type, storage_key, size_bytes)
		VALUES (?, ?, ?, ?, ?)
	`, ownerID, filename, mimeType, storageKey, sizeBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create image: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *ImageStore) GetByID(ctx context.Context, id int64) (*domain.Image, error) {
	img := &domain.Image{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, filename, mime_type, storage_key, size_bytes, uploaded_at
		FROM images WHERE id = ?
	`, id).Scan(&img.ID, &img.OwnerID, &img.Filename, &img.MimeType, &img.StorageKey, &img.SizeBytes, &img.UploadedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get image: %w", err)
	}

	return img, nil
}

// ListByOwner returns the owner's images in upload order.
func (s *ImageStore) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Image, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, filename, mime_type, storage_key, size_bytes, uploaded_at
		FROM images WHERE owner_id = ? ORDER BY id ASC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	defer rows.Close()

	var images []*domain.Image
	for rows.Next() {
		img := &domain.Image{}
		if err := rows.Scan(&img.ID, &img.OwnerID, &img.Filename, &img.MimeType, &img.StorageKey, &img.SizeBytes, &img.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, img)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating images: %w", err)
	}

	return images, nil
}

func (s *ImageStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM images WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Count returns the total number of image rows. Used by tests to assert that
// rejected uploads leave no record behind.
func (s *ImageStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM images`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count images: %w", err)
	}
	return n, nil
}
